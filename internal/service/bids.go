package service

import (
	"context"
	"fmt"
	"strings"

	"gigs/internal/models"
	"gigs/internal/policy"
)

// CreateBid holds a share lock on the gig while inserting so that a hire on
// the same gig either sees the new bid or makes the insert fail.
func (s *Service) CreateBid(ctx context.Context, caller models.Identity, gigId, message string, price float64) (models.Bid, error) {
	if err := requireCaller(caller); err != nil {
		return models.Bid{}, fmt.Errorf("service.Service.CreateBid: %w", err)
	}

	if len(strings.TrimSpace(message)) == 0 {
		return models.Bid{}, fmt.Errorf("service.Service.CreateBid: %w: message is required", models.ErrInvalidInput)
	}
	if !validAmount(price) {
		return models.Bid{}, fmt.Errorf("service.Service.CreateBid: %w: price must be positive, below %.0f and have at most 2 decimals", models.ErrInvalidInput, MaxAmount)
	}

	var bid models.Bid
	err := s.repo.WithTx(ctx, func(ctx context.Context) error {
		gig, err := s.repo.GetGigForShare(ctx, gigId)
		if err != nil {
			return err
		}

		if policy.IsOwner(caller, gig) {
			return fmt.Errorf("%w: owner cannot bid on own gig", models.ErrForbidden)
		}
		if !policy.CanBid(caller, gig) {
			return models.ErrGigAssigned
		}

		bid, err = s.repo.AddBid(ctx, models.Bid{
			GigId:    gig.Id,
			BidderId: caller.UserId,
			Message:  message,
			Price:    price,
		})
		return err
	})
	if err != nil {
		return models.Bid{}, fmt.Errorf("service.Service.CreateBid: %w", err)
	}

	return bid, nil
}

// ListBidsForGig checks that the gig exists before checking ownership.
func (s *Service) ListBidsForGig(ctx context.Context, caller models.Identity, gigId string) ([]models.BidWithBidder, error) {
	if err := requireCaller(caller); err != nil {
		return nil, fmt.Errorf("service.Service.ListBidsForGig: %w", err)
	}

	gig, err := s.repo.GetGig(ctx, gigId)
	if err != nil {
		return nil, fmt.Errorf("service.Service.ListBidsForGig: %w", err)
	}

	if !policy.CanViewBidsForGig(caller, gig) {
		return nil, fmt.Errorf("service.Service.ListBidsForGig: %w", models.ErrForbidden)
	}

	bids, err := s.repo.ListBidsByGig(ctx, gig.Id)
	if err != nil {
		return nil, fmt.Errorf("service.Service.ListBidsForGig: %w", err)
	}
	return bids, nil
}

func (s *Service) ListMyBids(ctx context.Context, caller models.Identity) ([]models.BidWithGig, error) {
	if err := requireCaller(caller); err != nil {
		return nil, fmt.Errorf("service.Service.ListMyBids: %w", err)
	}

	bids, err := s.repo.ListBidsByBidder(ctx, caller.UserId)
	if err != nil {
		return nil, fmt.Errorf("service.Service.ListMyBids: %w", err)
	}
	return bids, nil
}
