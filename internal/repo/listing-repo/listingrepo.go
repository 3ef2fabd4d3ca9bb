package listingrepo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/GlebRadaev/carbonledger/internal/domain"
	"github.com/GlebRadaev/carbonledger/internal/pg"
)

type Repository struct {
	db        pg.Database
	txManager pg.TXManager
}

func New(db pg.Database, txManager pg.TXManager) *Repository {
	return &Repository{
		db:        db,
		txManager: txManager,
	}
}

const listingColumns = `id, seller_id, title, co2_amount, available_amount, listing_type, status, price_per_kg, starting_bid, reserve_price, auction_start_time, auction_end_time, winner_id, expires_at, created_at, updated_at`

func scanListing(row pgx.Row) (*domain.Listing, error) {
	var l domain.Listing
	err := row.Scan(&l.ID, &l.SellerID, &l.Title, &l.CO2Amount, &l.AvailableAmount,
		&l.Type, &l.Status, &l.PricePerKg, &l.StartingBid, &l.ReservePrice,
		&l.AuctionStart, &l.AuctionEnd, &l.WinnerID, &l.ExpiresAt, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *Repository) Create(ctx context.Context, listing *domain.Listing) (*domain.Listing, error) {
	query := `
        INSERT INTO listings
            (seller_id, title, co2_amount, available_amount, listing_type, status,
             price_per_kg, starting_bid, reserve_price, auction_start_time, auction_end_time, expires_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        RETURNING id, created_at, updated_at
    `
	err := r.db.QueryRow(ctx, query, listing.SellerID, listing.Title, listing.CO2Amount,
		listing.AvailableAmount, listing.Type, listing.Status, listing.PricePerKg,
		listing.StartingBid, listing.ReservePrice, listing.AuctionStart, listing.AuctionEnd,
		listing.ExpiresAt).Scan(&listing.ID, &listing.CreatedAt, &listing.UpdatedAt)
	if err != nil {
		zap.L().Error("can't save listing", zap.Error(err))
		return nil, err
	}
	return listing, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	query := `
        SELECT ` + listingColumns + `
        FROM listings
        WHERE id = $1
    `
	listing, err := scanListing(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		zap.L().Error("can't find listing", zap.Error(err))
		return nil, err
	}
	return listing, nil
}

// GetByIDForUpdate locks the listing row. Bid acceptance and auction closure
// both take this lock, so they never interleave on the same listing.
func (r *Repository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	query := `
        SELECT ` + listingColumns + `
        FROM listings
        WHERE id = $1
        FOR UPDATE
    `
	listing, err := scanListing(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		zap.L().Error("can't lock listing", zap.Error(err))
		return nil, err
	}
	return listing, nil
}

// ClaimStatus transitions status only if the listing is still in the
// expected state. Returns false when another writer got there first, which
// makes the transition safe across concurrent sweep instances.
func (r *Repository) ClaimStatus(ctx context.Context, id uuid.UUID, from, to domain.ListingStatus, winnerID *uuid.UUID) (bool, error) {
	query := `
        UPDATE listings
        SET status = $1, winner_id = COALESCE($2, winner_id), updated_at = now()
        WHERE id = $3 AND status = $4
    `
	tag, err := r.db.Exec(ctx, query, to, winnerID, id, from)
	if err != nil {
		zap.L().Error("failed to claim listing status", zap.Error(err))
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// DecrementAvailable reduces available_amount, never below zero. Returns the
// updated listing, or nil when the remaining amount was insufficient.
func (r *Repository) DecrementAvailable(ctx context.Context, id uuid.UUID, amount float64) (*domain.Listing, error) {
	query := `
        UPDATE listings
        SET available_amount = available_amount - $1, updated_at = now()
        WHERE id = $2 AND available_amount >= $1
        RETURNING ` + listingColumns + `
    `
	var updated *domain.Listing
	err := r.txManager.Begin(ctx, func(ctx context.Context) error {
		var err error
		updated, err = scanListing(r.db.QueryRow(ctx, query, amount, id))
		if err != nil {
			if err == pgx.ErrNoRows {
				updated = nil
				return nil
			}
			zap.L().Error("failed to decrement available amount", zap.Error(err))
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *Repository) FindExpiredAuctions(ctx context.Context, now time.Time, limit int) ([]domain.Listing, error) {
	query := `
        SELECT ` + listingColumns + `
        FROM listings
        WHERE listing_type = 'AUCTION' AND status = 'ACTIVE' AND auction_end_time < $1
        ORDER BY auction_end_time ASC
        LIMIT $2
    `
	return r.queryListings(ctx, query, now, limit)
}

func (r *Repository) FindPendingPayment(ctx context.Context, limit int) ([]domain.Listing, error) {
	query := `
        SELECT ` + listingColumns + `
        FROM listings
        WHERE status = 'PENDING_PAYMENT'
        ORDER BY updated_at ASC
        LIMIT $1
    `
	return r.queryListings(ctx, query, limit)
}

func (r *Repository) queryListings(ctx context.Context, query string, args ...interface{}) ([]domain.Listing, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		zap.L().Error("can't get listings", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var listings []domain.Listing
	for rows.Next() {
		var l domain.Listing
		err := rows.Scan(&l.ID, &l.SellerID, &l.Title, &l.CO2Amount, &l.AvailableAmount,
			&l.Type, &l.Status, &l.PricePerKg, &l.StartingBid, &l.ReservePrice,
			&l.AuctionStart, &l.AuctionEnd, &l.WinnerID, &l.ExpiresAt, &l.CreatedAt, &l.UpdatedAt)
		if err != nil {
			zap.L().Error("can't scan listing row", zap.Error(err))
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, nil
}
