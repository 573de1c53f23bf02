package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gigs/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

var gigColumns = []string{"id", "title", "description", "budget", "owner_id", "status", "created_at"}

func (repo *Repository) AddGig(ctx context.Context, gig models.Gig) (models.Gig, error) {
	gig.Id = uuid.NewString()
	gig.Status = models.GigOpen

	query, args, err := repo.builder.
		Insert("gigs").
		Columns("id", "title", "description", "budget", "owner_id", "status").
		Values(gig.Id, gig.Title, gig.Description, gig.Budget, gig.OwnerId, gig.Status).
		Suffix("RETURNING budget, created_at").
		ToSql()
	if err != nil {
		return gig, fmt.Errorf("repository.Repository.AddGig: %w", err)
	}

	err = repo.conn(ctx).QueryRowContext(ctx, query, args...).Scan(&gig.Budget, &gig.CreatedAt)
	if isRejectedValue(err) {
		return gig, fmt.Errorf("repository.Repository.AddGig: %w: gig value is out of range", models.ErrInvalidInput)
	} else if err != nil {
		return gig, fmt.Errorf("repository.Repository.AddGig: %w", err)
	}

	return gig, nil
}

func (repo *Repository) GetGig(ctx context.Context, id string) (models.Gig, error) {
	gig, err := repo.getGig(ctx, id, "")
	if err != nil {
		return gig, fmt.Errorf("repository.Repository.GetGig: %w", err)
	}
	return gig, nil
}

// GetGigForUpdate locks the gig row until the surrounding transaction ends.
func (repo *Repository) GetGigForUpdate(ctx context.Context, id string) (models.Gig, error) {
	if txFromContext(ctx) == nil {
		return models.Gig{}, fmt.Errorf("repository.Repository.GetGigForUpdate: %w", errNoTx)
	}
	gig, err := repo.getGig(ctx, id, "FOR UPDATE")
	if err != nil {
		return gig, fmt.Errorf("repository.Repository.GetGigForUpdate: %w", err)
	}
	return gig, nil
}

// GetGigForShare blocks concurrent FOR UPDATE readers of the gig row until the
// surrounding transaction ends.
func (repo *Repository) GetGigForShare(ctx context.Context, id string) (models.Gig, error) {
	if txFromContext(ctx) == nil {
		return models.Gig{}, fmt.Errorf("repository.Repository.GetGigForShare: %w", errNoTx)
	}
	gig, err := repo.getGig(ctx, id, "FOR SHARE")
	if err != nil {
		return gig, fmt.Errorf("repository.Repository.GetGigForShare: %w", err)
	}
	return gig, nil
}

func (repo *Repository) getGig(ctx context.Context, id, lock string) (models.Gig, error) {
	var gig models.Gig
	if !validUUID(id) {
		return gig, models.ErrNoGig
	}

	q := repo.builder.Select(gigColumns...).From("gigs").Where(squirrel.Eq{"id": id})
	if lock != "" {
		q = q.Suffix(lock)
	}

	query, args, err := q.ToSql()
	if err != nil {
		return gig, err
	}

	err = scanGig(repo.conn(ctx).QueryRowContext(ctx, query, args...), &gig)
	if errors.Is(err, sql.ErrNoRows) {
		return gig, models.ErrNoGig
	}
	return gig, err
}

// ListOpenGigs returns open gigs newest first. A non-empty search filters
// titles case-insensitively by substring.
func (repo *Repository) ListOpenGigs(ctx context.Context, search string, limit, offset int) ([]models.Gig, error) {
	q := repo.builder.
		Select(gigColumns...).
		From("gigs").
		Where(squirrel.Eq{"status": models.GigOpen})
	if search != "" {
		q = q.Where(squirrel.ILike{"title": containsPattern(search)})
	}
	q = applyPaging(q.OrderBy("created_at DESC", "id DESC"), limit, offset)

	gigs, err := repo.queryGigs(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repository.Repository.ListOpenGigs: %w", err)
	}
	return gigs, nil
}

func (repo *Repository) ListGigsByOwner(ctx context.Context, ownerId string) ([]models.Gig, error) {
	if !validUUID(ownerId) {
		return []models.Gig{}, nil
	}

	q := repo.builder.
		Select(gigColumns...).
		From("gigs").
		Where(squirrel.Eq{"owner_id": ownerId}).
		OrderBy("created_at DESC", "id DESC")

	gigs, err := repo.queryGigs(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repository.Repository.ListGigsByOwner: %w", err)
	}
	return gigs, nil
}

// SetGigStatus is only valid inside a transaction.
func (repo *Repository) SetGigStatus(ctx context.Context, id string, status models.GigStatus) error {
	tx := txFromContext(ctx)
	if tx == nil {
		return fmt.Errorf("repository.Repository.SetGigStatus: %w", errNoTx)
	}

	query, args, err := repo.builder.
		Update("gigs").
		Set("status", status).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("repository.Repository.SetGigStatus: %w", err)
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("repository.Repository.SetGigStatus: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("repository.Repository.SetGigStatus: %w", models.ErrNoGig)
	}
	return nil
}

func (repo *Repository) queryGigs(ctx context.Context, q squirrel.SelectBuilder) ([]models.Gig, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := repo.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []models.Gig{}
	for rows.Next() {
		var gig models.Gig
		err = scanGig(rows, &gig)
		if err != nil {
			return nil, fmt.Errorf("rows scan error: %w", err)
		}
		result = append(result, gig)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanGig(row scanner, gig *models.Gig) error {
	return row.Scan(&gig.Id, &gig.Title, &gig.Description, &gig.Budget, &gig.OwnerId, &gig.Status, &gig.CreatedAt)
}
