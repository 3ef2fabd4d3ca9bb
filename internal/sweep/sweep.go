// Package sweep runs the marketplace housekeeping loop: closing ended
// auctions and settling listings stuck in PENDING_PAYMENT. It is safe to run
// on every instance, the status claims in the repos make each transition
// single-winner.
package sweep

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/GlebRadaev/carbonledger/internal/domain"
)

const batchLimit = 100

var inFlight sync.Map

type ListingRepo interface {
	FindExpiredAuctions(ctx context.Context, now time.Time, limit int) ([]domain.Listing, error)
	FindPendingPayment(ctx context.Context, limit int) ([]domain.Listing, error)
}

type AuctionCloser interface {
	CloseAuction(ctx context.Context, listingID uuid.UUID) (*domain.Listing, error)
}

type Settler interface {
	SettleAuctionWin(ctx context.Context, listingID uuid.UUID) (*domain.MarketTransaction, error)
}

type Service struct {
	listingRepo ListingRepo
	auctions    AuctionCloser
	settlements Settler
	workerPool  WorkerPoolI
	interval    time.Duration
}

func New(listingRepo ListingRepo, auctions AuctionCloser, settlements Settler, interval time.Duration) *Service {
	return &Service{
		listingRepo: listingRepo,
		auctions:    auctions,
		settlements: settlements,
		workerPool:  NewWorkerPool(10),
		interval:    interval,
	}
}

func (s *Service) Start(ctx context.Context) {
	zap.L().Info("sweep started", zap.Duration("interval", s.interval))
	go s.run(ctx)
}

func (s *Service) run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			zap.L().Info("sweep stopped")
			return
		case <-ticker.C:
			s.closeExpired(ctx)
			s.settlePending(ctx)
		}
	}
}

func (s *Service) closeExpired(ctx context.Context) {
	expired, err := s.listingRepo.FindExpiredAuctions(ctx, time.Now(), batchLimit)
	if err != nil {
		zap.L().Error("can't fetch expired auctions", zap.Error(err))
		return
	}

	s.dispatch(ctx, expired, func(ctx context.Context, listingID uuid.UUID) error {
		_, err := s.auctions.CloseAuction(ctx, listingID)
		return err
	})
}

func (s *Service) settlePending(ctx context.Context) {
	pending, err := s.listingRepo.FindPendingPayment(ctx, batchLimit)
	if err != nil {
		zap.L().Error("can't fetch pending listings", zap.Error(err))
		return
	}

	s.dispatch(ctx, pending, func(ctx context.Context, listingID uuid.UUID) error {
		_, err := s.settlements.SettleAuctionWin(ctx, listingID)
		return err
	})
}

// dispatch fans the batch out over the worker pool. The in-flight map keeps
// a slow listing from being picked up again by the next tick.
func (s *Service) dispatch(ctx context.Context, listings []domain.Listing, handle func(ctx context.Context, listingID uuid.UUID) error) {
	var g errgroup.Group
	for _, listing := range listings {
		listingID := listing.ID

		if _, loaded := inFlight.LoadOrStore(listingID, struct{}{}); loaded {
			continue
		}

		g.Go(func() error {
			err := s.workerPool.AddTask(ctx, func() error {
				defer inFlight.Delete(listingID)
				return handle(ctx, listingID)
			})
			if err != nil {
				inFlight.Delete(listingID)
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		zap.L().Error("sweep dispatch failed", zap.Error(err))
	}
}

func (s *Service) Close() {
	s.workerPool.Close()
}
