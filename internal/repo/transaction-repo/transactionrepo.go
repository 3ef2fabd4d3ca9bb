package transactionrepo

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/GlebRadaev/carbonledger/internal/domain"
	"github.com/GlebRadaev/carbonledger/internal/pg"
)

// Repository owns the append-only ledger log. Rows are never updated or
// deleted once written.
type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

const transactionColumns = `id, user_id, transaction_type, amount, balance_before, balance_after, related_user_id, related_trip_id, related_listing_id, description, created_at`

func scanTransaction(row pgx.Row) (*domain.LedgerTransaction, error) {
	var t domain.LedgerTransaction
	err := row.Scan(&t.ID, &t.UserID, &t.Type, &t.Amount, &t.BalanceBefore, &t.BalanceAfter,
		&t.RelatedUserID, &t.RelatedTripID, &t.RelatedListingID, &t.Description, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *Repository) Append(ctx context.Context, tx *domain.LedgerTransaction) (*domain.LedgerTransaction, error) {
	query := `
        INSERT INTO ledger_transactions
            (user_id, transaction_type, amount, balance_before, balance_after,
             related_user_id, related_trip_id, related_listing_id, description)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING id, created_at
    `
	err := r.db.QueryRow(ctx, query, tx.UserID, tx.Type, tx.Amount, tx.BalanceBefore, tx.BalanceAfter,
		tx.RelatedUserID, tx.RelatedTripID, tx.RelatedListingID, tx.Description).Scan(&tx.ID, &tx.CreatedAt)
	if err != nil {
		zap.L().Error("can't append ledger transaction", zap.Error(err))
		return nil, err
	}
	return tx, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*domain.LedgerTransaction, error) {
	query := `
        SELECT ` + transactionColumns + `
        FROM ledger_transactions
        WHERE id = $1
    `
	tx, err := scanTransaction(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		zap.L().Error("can't find ledger transaction", zap.Error(err))
		return nil, err
	}
	return tx, nil
}

// FindByTripRef looks up an existing transaction for the trip dedupe key.
// Replayed verification events hit this before any balance change.
func (r *Repository) FindByTripRef(ctx context.Context, userID, tripID uuid.UUID, txType domain.TransactionType) (*domain.LedgerTransaction, error) {
	query := `
        SELECT ` + transactionColumns + `
        FROM ledger_transactions
        WHERE user_id = $1 AND related_trip_id = $2 AND transaction_type = $3
    `
	tx, err := scanTransaction(r.db.QueryRow(ctx, query, userID, tripID, txType))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		zap.L().Error("can't find transaction by trip ref", zap.Error(err))
		return nil, err
	}
	return tx, nil
}

// FindByListingRef resolves the settlement-side dedupe key. The related user
// keeps the seller's SOLD records distinct per buyer.
func (r *Repository) FindByListingRef(ctx context.Context, userID uuid.UUID, relatedUserID *uuid.UUID, listingID uuid.UUID, txType domain.TransactionType) (*domain.LedgerTransaction, error) {
	query := `
        SELECT ` + transactionColumns + `
        FROM ledger_transactions
        WHERE user_id = $1 AND related_user_id IS NOT DISTINCT FROM $2
          AND related_listing_id = $3 AND transaction_type = $4
    `
	tx, err := scanTransaction(r.db.QueryRow(ctx, query, userID, relatedUserID, listingID, txType))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		zap.L().Error("can't find transaction by listing ref", zap.Error(err))
		return nil, err
	}
	return tx, nil
}

func (r *Repository) FindByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]domain.LedgerTransaction, error) {
	query := `
        SELECT ` + transactionColumns + `
        FROM ledger_transactions
        WHERE user_id = $1
        ORDER BY created_at DESC
        LIMIT $2
    `
	return r.queryTransactions(ctx, query, userID, limit)
}

// FindRecent is the cross-account activity feed, newest first.
func (r *Repository) FindRecent(ctx context.Context, limit int) ([]domain.LedgerTransaction, error) {
	query := `
        SELECT ` + transactionColumns + `
        FROM ledger_transactions
        ORDER BY created_at DESC
        LIMIT $1
    `
	return r.queryTransactions(ctx, query, limit)
}

func (r *Repository) queryTransactions(ctx context.Context, query string, args ...interface{}) ([]domain.LedgerTransaction, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		zap.L().Error("can't get ledger transactions", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var transactions []domain.LedgerTransaction
	for rows.Next() {
		var t domain.LedgerTransaction
		err := rows.Scan(&t.ID, &t.UserID, &t.Type, &t.Amount, &t.BalanceBefore, &t.BalanceAfter,
			&t.RelatedUserID, &t.RelatedTripID, &t.RelatedListingID, &t.Description, &t.CreatedAt)
		if err != nil {
			zap.L().Error("can't scan ledger transaction row", zap.Error(err))
			return nil, err
		}
		transactions = append(transactions, t)
	}
	return transactions, nil
}
