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

var bidColumns = []string{"b.id", "b.gig_id", "b.bidder_id", "b.message", "b.price", "b.status", "b.created_at"}

func (repo *Repository) AddBid(ctx context.Context, bid models.Bid) (models.Bid, error) {
	bid.Id = uuid.NewString()
	bid.Status = models.BidPending

	query, args, err := repo.builder.
		Insert("bids").
		Columns("id", "gig_id", "bidder_id", "message", "price", "status").
		Values(bid.Id, bid.GigId, bid.BidderId, bid.Message, bid.Price, bid.Status).
		Suffix("RETURNING price, created_at").
		ToSql()
	if err != nil {
		return bid, fmt.Errorf("repository.Repository.AddBid: %w", err)
	}

	err = repo.conn(ctx).QueryRowContext(ctx, query, args...).Scan(&bid.Price, &bid.CreatedAt)
	if isForeignKeyViolation(err) {
		return bid, fmt.Errorf("repository.Repository.AddBid: %w", models.ErrNoGig)
	} else if isRejectedValue(err) {
		return bid, fmt.Errorf("repository.Repository.AddBid: %w: bid value is out of range", models.ErrInvalidInput)
	} else if err != nil {
		return bid, fmt.Errorf("repository.Repository.AddBid: %w", err)
	}

	return bid, nil
}

func (repo *Repository) GetBid(ctx context.Context, id string) (models.Bid, error) {
	var bid models.Bid
	if !validUUID(id) {
		return bid, fmt.Errorf("repository.Repository.GetBid: %w", models.ErrNoBid)
	}

	query, args, err := repo.builder.
		Select(bidColumns...).
		From("bids b").
		Where(squirrel.Eq{"b.id": id}).
		ToSql()
	if err != nil {
		return bid, fmt.Errorf("repository.Repository.GetBid: %w", err)
	}

	err = scanBid(repo.conn(ctx).QueryRowContext(ctx, query, args...), &bid)
	if errors.Is(err, sql.ErrNoRows) {
		return bid, fmt.Errorf("repository.Repository.GetBid: %w", models.ErrNoBid)
	} else if err != nil {
		return bid, fmt.Errorf("repository.Repository.GetBid: %w", err)
	}

	return bid, nil
}

// ListBidsByGig returns the bids of a gig newest first, each with its bidder's
// public details.
func (repo *Repository) ListBidsByGig(ctx context.Context, gigId string) ([]models.BidWithBidder, error) {
	result := []models.BidWithBidder{}
	if !validUUID(gigId) {
		return result, nil
	}

	query, args, err := repo.builder.
		Select(append(bidColumns, "COALESCE(u.name, '')", "COALESCE(u.email, '')")...).
		From("bids b").
		LeftJoin("users u ON u.id = b.bidder_id").
		Where(squirrel.Eq{"b.gig_id": gigId}).
		OrderBy("b.created_at DESC", "b.id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("repository.Repository.ListBidsByGig: %w", err)
	}

	rows, err := repo.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository.Repository.ListBidsByGig: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var bid models.BidWithBidder
		err = rows.Scan(&bid.Id, &bid.GigId, &bid.BidderId, &bid.Message, &bid.Price, &bid.Status, &bid.CreatedAt,
			&bid.BidderName, &bid.BidderEmail)
		if err != nil {
			return nil, fmt.Errorf("repository.Repository.ListBidsByGig: rows scan error: %w", err)
		}
		result = append(result, bid)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("repository.Repository.ListBidsByGig: %w", rows.Err())
	}

	return result, nil
}

// ListBidsByBidder returns the bidder's bids newest first. Bids whose gig
// cannot be resolved carry a nil Gig and GigMissing set.
func (repo *Repository) ListBidsByBidder(ctx context.Context, bidderId string) ([]models.BidWithGig, error) {
	result := []models.BidWithGig{}
	if !validUUID(bidderId) {
		return result, nil
	}

	query, args, err := repo.builder.
		Select(append(bidColumns, "g.id", "g.title", "g.description", "g.budget", "g.owner_id", "g.status", "g.created_at")...).
		From("bids b").
		LeftJoin("gigs g ON g.id = b.gig_id").
		Where(squirrel.Eq{"b.bidder_id": bidderId}).
		OrderBy("b.created_at DESC", "b.id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("repository.Repository.ListBidsByBidder: %w", err)
	}

	rows, err := repo.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository.Repository.ListBidsByBidder: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var bid models.BidWithGig
		var gid, title, description, ownerId, status sql.NullString
		var budget sql.NullFloat64
		var createdAt sql.NullTime
		err = rows.Scan(&bid.Id, &bid.GigId, &bid.BidderId, &bid.Message, &bid.Price, &bid.Status, &bid.CreatedAt,
			&gid, &title, &description, &budget, &ownerId, &status, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("repository.Repository.ListBidsByBidder: rows scan error: %w", err)
		}

		if gid.Valid {
			bid.Gig = &models.Gig{
				Id:          gid.String,
				Title:       title.String,
				Description: description.String,
				Budget:      budget.Float64,
				OwnerId:     ownerId.String,
				Status:      models.GigStatus(status.String),
				CreatedAt:   createdAt.Time,
			}
		} else {
			bid.GigMissing = true
		}
		result = append(result, bid)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("repository.Repository.ListBidsByBidder: %w", rows.Err())
	}

	return result, nil
}

// SetBidStatus is only valid inside a transaction.
func (repo *Repository) SetBidStatus(ctx context.Context, id string, status models.BidStatus) error {
	tx := txFromContext(ctx)
	if tx == nil {
		return fmt.Errorf("repository.Repository.SetBidStatus: %w", errNoTx)
	}

	query, args, err := repo.builder.
		Update("bids").
		Set("status", status).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("repository.Repository.SetBidStatus: %w", err)
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("repository.Repository.SetBidStatus: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("repository.Repository.SetBidStatus: %w", models.ErrNoBid)
	}
	return nil
}

// SetBidStatusForOthers moves every pending bid of the gig except excludeId
// to status. It is only valid inside a transaction.
func (repo *Repository) SetBidStatusForOthers(ctx context.Context, gigId, excludeId string, status models.BidStatus) error {
	tx := txFromContext(ctx)
	if tx == nil {
		return fmt.Errorf("repository.Repository.SetBidStatusForOthers: %w", errNoTx)
	}

	query, args, err := repo.builder.
		Update("bids").
		Set("status", status).
		Where(squirrel.Eq{"gig_id": gigId, "status": models.BidPending}).
		Where(squirrel.NotEq{"id": excludeId}).
		ToSql()
	if err != nil {
		return fmt.Errorf("repository.Repository.SetBidStatusForOthers: %w", err)
	}

	_, err = tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("repository.Repository.SetBidStatusForOthers: %w", err)
	}
	return nil
}

func scanBid(row scanner, bid *models.Bid) error {
	return row.Scan(&bid.Id, &bid.GigId, &bid.BidderId, &bid.Message, &bid.Price, &bid.Status, &bid.CreatedAt)
}
