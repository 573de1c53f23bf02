// Package auth issues and validates bearer credentials and hashes passwords.
package auth

import (
	"errors"
	"fmt"
	"time"

	"gigs/internal/config"
	"gigs/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const MinPasswordLength = 6

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

var ErrEmptySecret = errors.New("jwt secret must not be empty")

// Guard resolves tokens into caller identities. It keeps no per-call state.
type Guard struct {
	secret []byte
	now    func() time.Time
}

// Issuer signs tokens that Guard accepts.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewGuard(cfg *config.AuthConfig) (*Guard, error) {
	if len(cfg.JWTSecret) == 0 {
		return nil, fmt.Errorf("auth.NewGuard: %w", ErrEmptySecret)
	}
	return &Guard{secret: []byte(cfg.JWTSecret), now: time.Now}, nil
}

func NewIssuer(cfg *config.AuthConfig) (*Issuer, error) {
	if len(cfg.JWTSecret) == 0 {
		return nil, fmt.Errorf("auth.NewIssuer: %w", ErrEmptySecret)
	}
	return &Issuer{secret: []byte(cfg.JWTSecret), ttl: cfg.TokenTTL, now: time.Now}, nil
}

func (i *Issuer) Issue(userId string) (string, error) {
	now := i.now()
	claims := jwt.RegisteredClaims{
		Subject:  userId,
		IssuedAt: jwt.NewNumericDate(now),
	}
	if i.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(i.ttl))
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("auth.Issuer.Issue: %w", err)
	}
	return token, nil
}

func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

// Authenticate returns models.ErrUnauthenticated for empty, malformed,
// wrongly signed or expired tokens and for tokens without a user subject.
func (g *Guard) Authenticate(token string) (models.Identity, error) {
	if len(token) == 0 {
		return models.Identity{}, fmt.Errorf("auth.Guard.Authenticate: %w", models.ErrUnauthenticated)
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return g.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(g.now),
	)
	if err != nil {
		return models.Identity{}, fmt.Errorf("auth.Guard.Authenticate: %w: %w", models.ErrUnauthenticated, err)
	}

	if uuid.Validate(claims.Subject) != nil {
		return models.Identity{}, fmt.Errorf("auth.Guard.Authenticate: %w: bad subject", models.ErrUnauthenticated)
	}

	return models.Identity{UserId: claims.Subject}, nil
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("auth.HashPassword: %w", err)
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
