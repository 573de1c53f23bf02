package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"gigs/internal/models"
)

// Repository is the storage the service runs on. Methods called inside the
// fn passed to WithTx join that transaction.
type Repository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	Ping(ctx context.Context) error

	AddGig(ctx context.Context, gig models.Gig) (models.Gig, error)
	GetGig(ctx context.Context, id string) (models.Gig, error)
	GetGigForUpdate(ctx context.Context, id string) (models.Gig, error)
	GetGigForShare(ctx context.Context, id string) (models.Gig, error)
	ListOpenGigs(ctx context.Context, search string, limit, offset int) ([]models.Gig, error)
	ListGigsByOwner(ctx context.Context, ownerId string) ([]models.Gig, error)
	SetGigStatus(ctx context.Context, id string, status models.GigStatus) error

	AddBid(ctx context.Context, bid models.Bid) (models.Bid, error)
	GetBid(ctx context.Context, id string) (models.Bid, error)
	ListBidsByGig(ctx context.Context, gigId string) ([]models.BidWithBidder, error)
	ListBidsByBidder(ctx context.Context, bidderId string) ([]models.BidWithGig, error)
	SetBidStatus(ctx context.Context, id string, status models.BidStatus) error
	SetBidStatusForOthers(ctx context.Context, gigId, excludeId string, status models.BidStatus) error

	AddUser(ctx context.Context, user models.User) (models.User, error)
	UserByEmail(ctx context.Context, email string) (models.User, error)
	UserByUUID(ctx context.Context, id string) (models.User, error)
}

type TokenIssuer interface {
	Issue(userId string) (string, error)
}

type Service struct {
	repo   Repository
	issuer TokenIssuer
}

func NewService(repo Repository, issuer TokenIssuer) *Service {
	return &Service{repo: repo, issuer: issuer}
}

func (s *Service) Ping(ctx context.Context) error {
	err := s.repo.Ping(ctx)
	if err != nil {
		return fmt.Errorf("service.Service.Ping: %w", err)
	}
	return nil
}

func requireCaller(caller models.Identity) error {
	if !caller.Valid() {
		return models.ErrUnauthenticated
	}
	return nil
}

// MaxAmount bounds budgets and prices to what the NUMERIC(14, 2) columns hold.
const MaxAmount = 1e12

// validAmount accepts positive amounts below MaxAmount with at most two
// decimal places.
func validAmount(v float64) bool {
	if !(v > 0) || v >= MaxAmount {
		return false
	}
	_, frac, ok := strings.Cut(strconv.FormatFloat(v, 'f', -1, 64), ".")
	return !ok || len(frac) <= 2
}
