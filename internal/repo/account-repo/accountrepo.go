package accountrepo

import (
	"context"

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

const accountColumns = `id, user_id, balance, total_earned, total_spent, total_transferred_in, total_transferred_out, created_at, updated_at`

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var a domain.Account
	err := row.Scan(&a.ID, &a.UserID, &a.Balance, &a.TotalEarned, &a.TotalSpent,
		&a.TotalTransferredIn, &a.TotalTransferredOut, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *Repository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Account, error) {
	query := `
        SELECT ` + accountColumns + `
        FROM accounts
        WHERE user_id = $1
    `
	account, err := scanAccount(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		zap.L().Error("failed to get account", zap.Error(err))
		return nil, err
	}
	return account, nil
}

// GetByUserIDForUpdate locks the account row until the surrounding
// transaction commits. Per-account mutations are serialized through it.
func (r *Repository) GetByUserIDForUpdate(ctx context.Context, userID uuid.UUID) (*domain.Account, error) {
	query := `
        SELECT ` + accountColumns + `
        FROM accounts
        WHERE user_id = $1
        FOR UPDATE
    `
	account, err := scanAccount(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		zap.L().Error("failed to lock account", zap.Error(err))
		return nil, err
	}
	return account, nil
}

func (r *Repository) Create(ctx context.Context, userID uuid.UUID) (*domain.Account, error) {
	query := `
        INSERT INTO accounts (user_id)
        VALUES ($1)
        RETURNING ` + accountColumns + `
    `
	account, err := scanAccount(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		zap.L().Error("failed to create account", zap.Error(err))
		return nil, err
	}
	return account, nil
}

func (r *Repository) Update(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	var updated *domain.Account
	query := `
        UPDATE accounts
        SET balance = $1, total_earned = $2, total_spent = $3,
            total_transferred_in = $4, total_transferred_out = $5, updated_at = now()
        WHERE user_id = $6
        RETURNING ` + accountColumns + `
	`
	err := r.txManager.Begin(ctx, func(ctx context.Context) error {
		var err error
		updated, err = scanAccount(r.db.QueryRow(ctx, query,
			account.Balance, account.TotalEarned, account.TotalSpent,
			account.TotalTransferredIn, account.TotalTransferredOut, account.UserID))
		if err != nil {
			zap.L().Error("failed to update account", zap.Error(err))
			return err
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *Repository) GetStatistics(ctx context.Context) (*domain.Statistics, error) {
	query := `
        SELECT COUNT(*),
               COALESCE(SUM(balance), 0),
               COALESCE(SUM(total_earned), 0),
               COALESCE(SUM(total_spent), 0),
               COALESCE(SUM(total_transferred_out), 0),
               COALESCE(AVG(balance), 0)
        FROM accounts
    `
	var stats domain.Statistics
	err := r.db.QueryRow(ctx, query).Scan(&stats.TotalAccounts, &stats.TotalCredits,
		&stats.TotalEarned, &stats.TotalSpent, &stats.TotalTransferred, &stats.AverageBalance)
	if err != nil {
		zap.L().Error("failed to get statistics", zap.Error(err))
		return nil, err
	}
	return &stats, nil
}
