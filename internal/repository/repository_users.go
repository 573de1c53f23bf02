package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"gigs/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

var userColumns = []string{"id", "name", "email", "password_hash", "created_at"}

func (repo *Repository) AddUser(ctx context.Context, user models.User) (models.User, error) {
	user.Id = uuid.NewString()

	query, args, err := repo.builder.
		Insert("users").
		Columns("id", "name", "email", "password_hash").
		Values(user.Id, user.Name, user.Email, user.PasswordHash).
		Suffix("RETURNING created_at").
		ToSql()
	if err != nil {
		return user, fmt.Errorf("repository.Repository.AddUser: %w", err)
	}

	err = repo.conn(ctx).QueryRowContext(ctx, query, args...).Scan(&user.CreatedAt)
	if isUniqueViolation(err) {
		return user, fmt.Errorf("repository.Repository.AddUser: %w", models.ErrEmailTaken)
	} else if err != nil {
		return user, fmt.Errorf("repository.Repository.AddUser: %w", err)
	}

	return user, nil
}

func (repo *Repository) UserByEmail(ctx context.Context, email string) (models.User, error) {
	user, err := repo.getUser(ctx, squirrel.Expr("LOWER(email) = ?", strings.ToLower(email)))
	if err != nil {
		return user, fmt.Errorf("repository.Repository.UserByEmail: %w", err)
	}
	return user, nil
}

func (repo *Repository) UserByUUID(ctx context.Context, id string) (models.User, error) {
	if !validUUID(id) {
		return models.User{}, fmt.Errorf("repository.Repository.UserByUUID: %w", models.ErrNoUser)
	}

	user, err := repo.getUser(ctx, squirrel.Eq{"id": id})
	if err != nil {
		return user, fmt.Errorf("repository.Repository.UserByUUID: %w", err)
	}
	return user, nil
}

func (repo *Repository) getUser(ctx context.Context, pred squirrel.Sqlizer) (models.User, error) {
	var user models.User

	query, args, err := repo.builder.Select(userColumns...).From("users").Where(pred).Limit(1).ToSql()
	if err != nil {
		return user, err
	}

	row := repo.conn(ctx).QueryRowContext(ctx, query, args...)
	err = row.Scan(&user.Id, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return user, models.ErrNoUser
	}
	return user, err
}
