package service

import (
	"context"
	"fmt"
	"strings"

	"gigs/internal/models"
)

func (s *Service) CreateGig(ctx context.Context, caller models.Identity, title, description string, budget float64) (models.Gig, error) {
	if err := requireCaller(caller); err != nil {
		return models.Gig{}, fmt.Errorf("service.Service.CreateGig: %w", err)
	}

	title = strings.TrimSpace(title)
	if len(title) == 0 || len(strings.TrimSpace(description)) == 0 {
		return models.Gig{}, fmt.Errorf("service.Service.CreateGig: %w: title and description are required", models.ErrInvalidInput)
	}
	if !validAmount(budget) {
		return models.Gig{}, fmt.Errorf("service.Service.CreateGig: %w: budget must be positive, below %.0f and have at most 2 decimals", models.ErrInvalidInput, MaxAmount)
	}

	gig, err := s.repo.AddGig(ctx, models.Gig{
		Title:       title,
		Description: description,
		Budget:      budget,
		OwnerId:     caller.UserId,
	})
	if err != nil {
		return gig, fmt.Errorf("service.Service.CreateGig: %w", err)
	}
	return gig, nil
}

func (s *Service) GetGig(ctx context.Context, id string) (models.Gig, error) {
	gig, err := s.repo.GetGig(ctx, id)
	if err != nil {
		return gig, fmt.Errorf("service.Service.GetGig: %w", err)
	}
	return gig, nil
}

func (s *Service) ListOpenGigs(ctx context.Context, search string, limit, offset int) ([]models.Gig, error) {
	gigs, err := s.repo.ListOpenGigs(ctx, strings.TrimSpace(search), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("service.Service.ListOpenGigs: %w", err)
	}
	return gigs, nil
}

func (s *Service) ListMyGigs(ctx context.Context, caller models.Identity) ([]models.Gig, error) {
	if err := requireCaller(caller); err != nil {
		return nil, fmt.Errorf("service.Service.ListMyGigs: %w", err)
	}

	gigs, err := s.repo.ListGigsByOwner(ctx, caller.UserId)
	if err != nil {
		return nil, fmt.Errorf("service.Service.ListMyGigs: %w", err)
	}
	return gigs, nil
}
