package accountrepo

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/GlebRadaev/carbonledger/internal/domain"
	"github.com/GlebRadaev/carbonledger/internal/pg"
)

func NewMock(t *testing.T) (*Repository, pgxmock.PgxPoolIface, *pg.MockTXManager) {
	ctrl := gomock.NewController(t)
	mockTxManager := pg.NewMockTXManager(ctrl)

	mockDB, err := pgxmock.NewPool()
	assert.NoError(t, err)
	repo := New(mockDB, mockTxManager)
	defer mockDB.Close()
	defer ctrl.Finish()

	return repo, mockDB, mockTxManager
}

func accountRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "user_id", "balance", "total_earned", "total_spent",
		"total_transferred_in", "total_transferred_out", "created_at", "updated_at",
	})
}

func TestRepository_GetByUserID(t *testing.T) {
	repo, mock, _ := NewMock(t)

	accountID := uuid.New()
	userID := uuid.New()
	now := time.Now()
	selectQuery := regexp.QuoteMeta(`SELECT id, user_id, balance, total_earned, total_spent, total_transferred_in, total_transferred_out, created_at, updated_at FROM accounts WHERE user_id = $1`)

	tests := []struct {
		name      string
		mockSetup func()
		expectErr bool
		result    *domain.Account
	}{
		{
			name: "Existing account is returned",
			mockSetup: func() {
				rows := accountRows().
					AddRow(accountID, userID, 120.5, 200.0, 79.5, 0.0, 0.0, now, now)
				mock.ExpectQuery(selectQuery).WithArgs(userID).WillReturnRows(rows)
			},
			result: &domain.Account{
				ID:          accountID,
				UserID:      userID,
				Balance:     120.5,
				TotalEarned: 200.0,
				TotalSpent:  79.5,
				CreatedAt:   now,
				UpdatedAt:   now,
			},
		},
		{
			name: "Missing account returns nil without error",
			mockSetup: func() {
				mock.ExpectQuery(selectQuery).WithArgs(userID).WillReturnError(pgx.ErrNoRows)
			},
			result: nil,
		},
		{
			name: "Database error",
			mockSetup: func() {
				mock.ExpectQuery(selectQuery).WithArgs(userID).WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			result, err := repo.GetByUserID(context.Background(), userID)

			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.result, result)
		})
	}
}

func TestRepository_Create(t *testing.T) {
	repo, mock, _ := NewMock(t)

	accountID := uuid.New()
	userID := uuid.New()
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO accounts (user_id) VALUES ($1) RETURNING id, user_id, balance, total_earned, total_spent, total_transferred_in, total_transferred_out, created_at, updated_at`)).
		WithArgs(userID).
		WillReturnRows(accountRows().AddRow(accountID, userID, 0.0, 0.0, 0.0, 0.0, 0.0, now, now))

	account, err := repo.Create(context.Background(), userID)
	assert.NoError(t, err)
	assert.Equal(t, userID, account.UserID)
	assert.Zero(t, account.Balance)
}

func TestRepository_Update(t *testing.T) {
	repo, mock, txManager := NewMock(t)

	accountID := uuid.New()
	userID := uuid.New()
	now := time.Now()

	txManager.EXPECT().
		Begin(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn pg.TransactionalFn) error {
			return fn(ctx)
		})

	mock.ExpectQuery(`UPDATE accounts SET balance = \$1`).
		WithArgs(60.0, 200.0, 140.0, 0.0, 0.0, userID).
		WillReturnRows(accountRows().AddRow(accountID, userID, 60.0, 200.0, 140.0, 0.0, 0.0, now, now))

	updated, err := repo.Update(context.Background(), &domain.Account{
		UserID:      userID,
		Balance:     60.0,
		TotalEarned: 200.0,
		TotalSpent:  140.0,
	})
	assert.NoError(t, err)
	assert.Equal(t, 60.0, updated.Balance)
	assert.Equal(t, 140.0, updated.TotalSpent)
}

func TestRepository_GetStatistics(t *testing.T) {
	repo, mock, _ := NewMock(t)

	rows := pgxmock.NewRows([]string{"count", "sum", "earned", "spent", "transferred", "avg"}).
		AddRow(3, 300.0, 450.0, 150.0, 20.0, 100.0)
	mock.ExpectQuery(`SELECT COUNT\(\*\)`).WillReturnRows(rows)

	stats, err := repo.GetStatistics(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, &domain.Statistics{
		TotalAccounts:    3,
		TotalCredits:     300.0,
		TotalEarned:      450.0,
		TotalSpent:       150.0,
		TotalTransferred: 20.0,
		AverageBalance:   100.0,
	}, stats)
}
