package service

import (
	"context"
	"errors"
	"fmt"

	"gigs/internal/models"
	"gigs/internal/policy"
)

// Hire marks the bid hired, rejects the remaining pending bids of its gig and
// assigns the gig, all in one transaction. The gig row is locked first, so of
// two concurrent hires on one gig the second observes the gig assigned and
// fails with models.ErrGigAssigned.
func (s *Service) Hire(ctx context.Context, caller models.Identity, bidId string) error {
	if err := requireCaller(caller); err != nil {
		return fmt.Errorf("service.Service.Hire: %w", err)
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context) error {
		bid, err := s.repo.GetBid(ctx, bidId)
		if err != nil {
			return err
		}

		gig, err := s.repo.GetGigForUpdate(ctx, bid.GigId)
		if err != nil {
			return err
		}

		if !policy.CanHire(caller, gig) {
			return models.ErrForbidden
		}
		if gig.Status != models.GigOpen {
			return models.ErrGigAssigned
		}
		if bid.Status != models.BidPending {
			return models.ErrBidNotPending
		}

		if err = s.repo.SetBidStatus(ctx, bid.Id, models.BidHired); err != nil {
			return fmt.Errorf("%w: %w", models.ErrHireFailed, err)
		}
		if err = s.repo.SetBidStatusForOthers(ctx, gig.Id, bid.Id, models.BidRejected); err != nil {
			return fmt.Errorf("%w: %w", models.ErrHireFailed, err)
		}
		if err = s.repo.SetGigStatus(ctx, gig.Id, models.GigAssigned); err != nil {
			return fmt.Errorf("%w: %w", models.ErrHireFailed, err)
		}
		return nil
	})

	if err != nil && !isDomainErr(err) {
		// begin, read or commit failure
		err = fmt.Errorf("%w: %w", models.ErrHireFailed, err)
	}
	if err != nil {
		return fmt.Errorf("service.Service.Hire: %w", err)
	}
	return nil
}

func isDomainErr(err error) bool {
	for _, target := range []error{models.ErrNotFound, models.ErrForbidden, models.ErrConflict, models.ErrHireFailed} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
