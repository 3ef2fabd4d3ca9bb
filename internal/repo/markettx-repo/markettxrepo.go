package markettxrepo

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

const marketTxColumns = `id, listing_id, buyer_id, seller_id, transaction_type, co2_amount, price_per_kg, total_price, created_at`

func scanMarketTx(row pgx.Row) (*domain.MarketTransaction, error) {
	var t domain.MarketTransaction
	err := row.Scan(&t.ID, &t.ListingID, &t.BuyerID, &t.SellerID, &t.Type,
		&t.CO2Amount, &t.PricePerKg, &t.TotalPrice, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *Repository) Create(ctx context.Context, tx *domain.MarketTransaction) (*domain.MarketTransaction, error) {
	query := `
        INSERT INTO marketplace_transactions
            (listing_id, buyer_id, seller_id, transaction_type, co2_amount, price_per_kg, total_price)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, created_at
    `
	err := r.db.QueryRow(ctx, query, tx.ListingID, tx.BuyerID, tx.SellerID, tx.Type,
		tx.CO2Amount, tx.PricePerKg, tx.TotalPrice).Scan(&tx.ID, &tx.CreatedAt)
	if err != nil {
		zap.L().Error("can't save marketplace transaction", zap.Error(err))
		return nil, err
	}
	return tx, nil
}

// FindByKey resolves the settlement idempotency key. A retried settlement
// finds its earlier record here instead of charging the buyer again.
func (r *Repository) FindByKey(ctx context.Context, listingID, buyerID uuid.UUID, txType string) (*domain.MarketTransaction, error) {
	query := `
        SELECT ` + marketTxColumns + `
        FROM marketplace_transactions
        WHERE listing_id = $1 AND buyer_id = $2 AND transaction_type = $3
    `
	tx, err := scanMarketTx(r.db.QueryRow(ctx, query, listingID, buyerID, txType))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		zap.L().Error("can't find marketplace transaction by key", zap.Error(err))
		return nil, err
	}
	return tx, nil
}

func (r *Repository) GetTotalRevenueBySeller(ctx context.Context, sellerID uuid.UUID) (float64, error) {
	query := `
        SELECT COALESCE(SUM(total_price), 0)
        FROM marketplace_transactions
        WHERE seller_id = $1
    `
	var revenue float64
	if err := r.db.QueryRow(ctx, query, sellerID).Scan(&revenue); err != nil {
		zap.L().Error("can't get seller revenue", zap.Error(err))
		return 0, err
	}
	return revenue, nil
}

func (r *Repository) GetTotalSpendingByBuyer(ctx context.Context, buyerID uuid.UUID) (float64, error) {
	query := `
        SELECT COALESCE(SUM(total_price), 0)
        FROM marketplace_transactions
        WHERE buyer_id = $1
    `
	var spending float64
	if err := r.db.QueryRow(ctx, query, buyerID).Scan(&spending); err != nil {
		zap.L().Error("can't get buyer spending", zap.Error(err))
		return 0, err
	}
	return spending, nil
}
