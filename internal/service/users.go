package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"gigs/internal/auth"
	"gigs/internal/models"
)

func (s *Service) Register(ctx context.Context, name, email, password string) (models.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	if len(name) == 0 || len(email) == 0 || len(password) == 0 {
		return models.User{}, fmt.Errorf("service.Service.Register: %w: name, email and password are required", models.ErrInvalidInput)
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return models.User{}, fmt.Errorf("service.Service.Register: %w: malformed email", models.ErrInvalidInput)
	}
	if len(password) < auth.MinPasswordLength {
		return models.User{}, fmt.Errorf("service.Service.Register: %w: password must be at least %d characters", models.ErrInvalidInput, auth.MinPasswordLength)
	}
	if len(password) > auth.MaxPasswordBytes {
		return models.User{}, fmt.Errorf("service.Service.Register: %w: password must be at most %d bytes", models.ErrInvalidInput, auth.MaxPasswordBytes)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, fmt.Errorf("service.Service.Register: %w", err)
	}

	user, err := s.repo.AddUser(ctx, models.User{Name: name, Email: email, PasswordHash: hash})
	if err != nil {
		return models.User{}, fmt.Errorf("service.Service.Register: %w", err)
	}
	return user, nil
}

// Login reports models.ErrUnauthenticated for both unknown email and wrong password.
func (s *Service) Login(ctx context.Context, email, password string) (models.User, string, error) {
	user, err := s.repo.UserByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, models.ErrNotFound) {
		return models.User{}, "", fmt.Errorf("service.Service.Login: %w: invalid credentials", models.ErrUnauthenticated)
	} else if err != nil {
		return models.User{}, "", fmt.Errorf("service.Service.Login: %w", err)
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return models.User{}, "", fmt.Errorf("service.Service.Login: %w: invalid credentials", models.ErrUnauthenticated)
	}

	token, err := s.issuer.Issue(user.Id)
	if err != nil {
		return models.User{}, "", fmt.Errorf("service.Service.Login: %w", err)
	}
	return user, token, nil
}

func (s *Service) Me(ctx context.Context, caller models.Identity) (models.User, error) {
	if err := requireCaller(caller); err != nil {
		return models.User{}, fmt.Errorf("service.Service.Me: %w", err)
	}

	user, err := s.repo.UserByUUID(ctx, caller.UserId)
	if errors.Is(err, models.ErrNotFound) {
		// token outlived its account
		return models.User{}, fmt.Errorf("service.Service.Me: %w", models.ErrUnauthenticated)
	} else if err != nil {
		return models.User{}, fmt.Errorf("service.Service.Me: %w", err)
	}
	return user, nil
}
