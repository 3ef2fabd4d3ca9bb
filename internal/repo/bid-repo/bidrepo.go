package bidrepo

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/GlebRadaev/carbonledger/internal/domain"
	"github.com/GlebRadaev/carbonledger/internal/pg"
)

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

const bidColumns = `id, listing_id, bidder_id, amount, status, is_winning, created_at, updated_at`

func scanBid(row pgx.Row) (*domain.Bid, error) {
	var b domain.Bid
	err := row.Scan(&b.ID, &b.ListingID, &b.BidderID, &b.Amount, &b.Status, &b.IsWinning, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Bid, error) {
	query := `
        SELECT ` + bidColumns + `
        FROM bids
        WHERE id = $1
    `
	bid, err := scanBid(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		zap.L().Error("can't find bid", zap.Error(err))
		return nil, err
	}
	return bid, nil
}

// FindHighestActive returns the current winning candidate. Ties in amount
// resolve to the earliest bid, though the accept path never creates ties.
func (r *Repository) FindHighestActive(ctx context.Context, listingID uuid.UUID) (*domain.Bid, error) {
	query := `
        SELECT ` + bidColumns + `
        FROM bids
        WHERE listing_id = $1 AND status = 'ACTIVE'
        ORDER BY amount DESC, created_at ASC
        LIMIT 1
    `
	bid, err := scanBid(r.db.QueryRow(ctx, query, listingID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		zap.L().Error("can't find highest bid", zap.Error(err))
		return nil, err
	}
	return bid, nil
}

// FindHighestLive is FindHighestActive widened to OUTBID bids. Used when the
// leading bid is cancelled and a demoted bid has to be promoted back.
func (r *Repository) FindHighestLive(ctx context.Context, listingID uuid.UUID) (*domain.Bid, error) {
	query := `
        SELECT ` + bidColumns + `
        FROM bids
        WHERE listing_id = $1 AND status IN ('ACTIVE', 'OUTBID')
        ORDER BY amount DESC, created_at ASC
        LIMIT 1
    `
	bid, err := scanBid(r.db.QueryRow(ctx, query, listingID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		zap.L().Error("can't find highest live bid", zap.Error(err))
		return nil, err
	}
	return bid, nil
}

func (r *Repository) FindWon(ctx context.Context, listingID uuid.UUID) (*domain.Bid, error) {
	query := `
        SELECT ` + bidColumns + `
        FROM bids
        WHERE listing_id = $1 AND status = 'WON'
    `
	bid, err := scanBid(r.db.QueryRow(ctx, query, listingID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		zap.L().Error("can't find won bid", zap.Error(err))
		return nil, err
	}
	return bid, nil
}

func (r *Repository) FindUserBid(ctx context.Context, listingID, bidderID uuid.UUID) (*domain.Bid, error) {
	query := `
        SELECT ` + bidColumns + `
        FROM bids
        WHERE listing_id = $1 AND bidder_id = $2
    `
	bid, err := scanBid(r.db.QueryRow(ctx, query, listingID, bidderID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		zap.L().Error("can't find user bid", zap.Error(err))
		return nil, err
	}
	return bid, nil
}

func (r *Repository) Create(ctx context.Context, bid *domain.Bid) (*domain.Bid, error) {
	query := `
        INSERT INTO bids (listing_id, bidder_id, amount, status, is_winning)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at
    `
	err := r.db.QueryRow(ctx, query, bid.ListingID, bid.BidderID, bid.Amount, bid.Status, bid.IsWinning).
		Scan(&bid.ID, &bid.CreatedAt, &bid.UpdatedAt)
	if err != nil {
		zap.L().Error("can't save bid", zap.Error(err))
		return nil, err
	}
	return bid, nil
}

func (r *Repository) Update(ctx context.Context, bid *domain.Bid) (*domain.Bid, error) {
	query := `
        UPDATE bids
        SET amount = $1, status = $2, is_winning = $3, updated_at = now()
        WHERE id = $4
        RETURNING ` + bidColumns + `
    `
	updated, err := scanBid(r.db.QueryRow(ctx, query, bid.Amount, bid.Status, bid.IsWinning, bid.ID))
	if err != nil {
		zap.L().Error("failed to update bid", zap.Error(err))
		return nil, err
	}
	return updated, nil
}

// MarkOthersOutbid demotes every other ACTIVE bid on the listing.
func (r *Repository) MarkOthersOutbid(ctx context.Context, listingID, winningBidID uuid.UUID) error {
	query := `
        UPDATE bids
        SET status = 'OUTBID', is_winning = FALSE, updated_at = now()
        WHERE listing_id = $1 AND id <> $2 AND status = 'ACTIVE'
    `
	_, err := r.db.Exec(ctx, query, listingID, winningBidID)
	if err != nil {
		zap.L().Error("failed to mark bids outbid", zap.Error(err))
		return err
	}
	return nil
}

// ResolveLost moves every non-terminal bid except the given one to LOST.
// Used on auction closure so no bid is left in a live state.
func (r *Repository) ResolveLost(ctx context.Context, listingID uuid.UUID, exceptBidID *uuid.UUID) error {
	query := `
        UPDATE bids
        SET status = 'LOST', is_winning = FALSE, updated_at = now()
        WHERE listing_id = $1 AND ($2::uuid IS NULL OR id <> $2)
          AND status NOT IN ('WON', 'LOST', 'CANCELLED')
    `
	_, err := r.db.Exec(ctx, query, listingID, exceptBidID)
	if err != nil {
		zap.L().Error("failed to resolve losing bids", zap.Error(err))
		return err
	}
	return nil
}

func (r *Repository) FindByListing(ctx context.Context, listingID uuid.UUID) ([]domain.Bid, error) {
	query := `
        SELECT ` + bidColumns + `
        FROM bids
        WHERE listing_id = $1
        ORDER BY amount DESC, created_at ASC
    `
	rows, err := r.db.Query(ctx, query, listingID)
	if err != nil {
		zap.L().Error("can't get bids", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var bids []domain.Bid
	for rows.Next() {
		var b domain.Bid
		err := rows.Scan(&b.ID, &b.ListingID, &b.BidderID, &b.Amount, &b.Status, &b.IsWinning, &b.CreatedAt, &b.UpdatedAt)
		if err != nil {
			zap.L().Error("can't scan bid row", zap.Error(err))
			return nil, err
		}
		bids = append(bids, b)
	}
	return bids, nil
}
