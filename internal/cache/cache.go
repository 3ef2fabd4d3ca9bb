// Package cache is a Redis read-through cache for the ledger's hot read
// paths. Every failure is logged and swallowed: callers fall back to the
// database, a broken cache never breaks a request.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GlebRadaev/carbonledger/internal/domain"
)

const (
	accountTTL    = 5 * time.Minute
	statisticsTTL = time.Minute
	recentTTL     = time.Minute

	accountKeyPrefix = "account:"
	statisticsKey    = "stats:global"
	recentKey        = "transactions:recent"
)

type Cache struct {
	client *redis.Client
}

func New(client *redis.Client) *Cache {
	return &Cache{client: client}
}

func (c *Cache) GetAccount(ctx context.Context, userID uuid.UUID) *domain.Account {
	data, err := c.client.Get(ctx, accountKeyPrefix+userID.String()).Bytes()
	if err != nil {
		if err != redis.Nil {
			zap.L().Warn("cache read failed", zap.Error(err))
		}
		return nil
	}

	var account domain.Account
	if err := json.Unmarshal(data, &account); err != nil {
		zap.L().Warn("can't decode cached account", zap.Error(err))
		return nil
	}
	return &account
}

func (c *Cache) SetAccount(ctx context.Context, account *domain.Account) {
	data, err := json.Marshal(account)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, accountKeyPrefix+account.UserID.String(), data, accountTTL).Err(); err != nil {
		zap.L().Warn("cache write failed", zap.Error(err))
	}
}

func (c *Cache) GetStatistics(ctx context.Context) *domain.Statistics {
	data, err := c.client.Get(ctx, statisticsKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			zap.L().Warn("cache read failed", zap.Error(err))
		}
		return nil
	}

	var stats domain.Statistics
	if err := json.Unmarshal(data, &stats); err != nil {
		zap.L().Warn("can't decode cached statistics", zap.Error(err))
		return nil
	}
	return &stats
}

func (c *Cache) SetStatistics(ctx context.Context, stats *domain.Statistics) {
	data, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, statisticsKey, data, statisticsTTL).Err(); err != nil {
		zap.L().Warn("cache write failed", zap.Error(err))
	}
}

func (c *Cache) GetRecentTransactions(ctx context.Context) []domain.LedgerTransaction {
	data, err := c.client.Get(ctx, recentKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			zap.L().Warn("cache read failed", zap.Error(err))
		}
		return nil
	}

	var transactions []domain.LedgerTransaction
	if err := json.Unmarshal(data, &transactions); err != nil {
		zap.L().Warn("can't decode cached transactions", zap.Error(err))
		return nil
	}
	return transactions
}

func (c *Cache) SetRecentTransactions(ctx context.Context, transactions []domain.LedgerTransaction) {
	data, err := json.Marshal(transactions)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, recentKey, data, recentTTL).Err(); err != nil {
		zap.L().Warn("cache write failed", zap.Error(err))
	}
}

// Invalidate drops the per-user entries and the global aggregates, which any
// balance mutation makes stale.
func (c *Cache) Invalidate(ctx context.Context, userIDs ...uuid.UUID) {
	keys := make([]string, 0, len(userIDs)+2)
	for _, id := range userIDs {
		keys = append(keys, accountKeyPrefix+id.String())
	}
	keys = append(keys, statisticsKey, recentKey)

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		zap.L().Warn("cache invalidation failed", zap.Error(err))
	}
}
