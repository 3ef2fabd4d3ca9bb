package auctionservice

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GlebRadaev/carbonledger/internal/domain"
	"github.com/GlebRadaev/carbonledger/internal/pg"
)

// MinBidIncrement is the smallest amount a new bid must exceed the current
// leader by.
const MinBidIncrement = 100.0

const closeBatchSize = 100

type ListingRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Listing, error)
	ClaimStatus(ctx context.Context, id uuid.UUID, from, to domain.ListingStatus, winnerID *uuid.UUID) (bool, error)
	FindExpiredAuctions(ctx context.Context, now time.Time, limit int) ([]domain.Listing, error)
}

type BidRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Bid, error)
	FindHighestActive(ctx context.Context, listingID uuid.UUID) (*domain.Bid, error)
	FindHighestLive(ctx context.Context, listingID uuid.UUID) (*domain.Bid, error)
	FindUserBid(ctx context.Context, listingID, bidderID uuid.UUID) (*domain.Bid, error)
	Create(ctx context.Context, bid *domain.Bid) (*domain.Bid, error)
	Update(ctx context.Context, bid *domain.Bid) (*domain.Bid, error)
	MarkOthersOutbid(ctx context.Context, listingID, winningBidID uuid.UUID) error
	ResolveLost(ctx context.Context, listingID uuid.UUID, exceptBidID *uuid.UUID) error
	FindByListing(ctx context.Context, listingID uuid.UUID) ([]domain.Bid, error)
}

// Service runs the bidding rules. All writes happen under the listing row
// lock so placement, cancellation and closure serialize per listing.
type Service struct {
	listingRepo ListingRepo
	bidRepo     BidRepo
	txManager   pg.TXManager
	now         func() time.Time
}

func New(listingRepo ListingRepo, bidRepo BidRepo, txManager pg.TXManager) *Service {
	return &Service{
		listingRepo: listingRepo,
		bidRepo:     bidRepo,
		txManager:   txManager,
		now:         time.Now,
	}
}

// PlaceBid accepts or rejects a bid on an auction listing. A bidder with an
// existing row, live or cancelled, raises it in place instead of creating a
// second one.
func (s *Service) PlaceBid(ctx context.Context, listingID, bidderID uuid.UUID, amount float64) (*domain.Bid, error) {
	if amount <= 0 {
		return nil, &domain.InvalidBidError{Reason: "amount must be greater than 0"}
	}

	var bid *domain.Bid
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		listing, err := s.listingRepo.GetByIDForUpdate(ctx, listingID)
		if err != nil {
			return err
		}
		if listing == nil {
			return domain.ErrListingNotFound
		}
		if listing.Type != domain.ListingAuction {
			return fmt.Errorf("%w: listing is not an auction", domain.ErrInvalidOperation)
		}
		if listing.Status != domain.ListingActive {
			return fmt.Errorf("%w: auction is %s", domain.ErrInvalidState, listing.Status)
		}
		if listing.SellerID == bidderID {
			return fmt.Errorf("%w: seller cannot bid on own listing", domain.ErrInvalidOperation)
		}

		now := s.now()
		if !listing.AuctionStarted(now) {
			return &domain.InvalidBidError{Reason: "auction has not started yet"}
		}
		if listing.AuctionEnded(now) {
			return &domain.InvalidBidError{Reason: "auction has already ended"}
		}

		minimum, err := s.minimumBid(ctx, listing)
		if err != nil {
			return err
		}
		if amount < minimum {
			return &domain.InvalidBidError{Minimum: minimum}
		}

		// One row per (listing, bidder): a cancelled bid is revived the same
		// way a live one is raised, so a re-bid never inserts a second row.
		existing, err := s.bidRepo.FindUserBid(ctx, listingID, bidderID)
		if err != nil {
			return err
		}
		if existing != nil {
			existing.Amount = amount
			existing.Status = domain.BidActive
			existing.IsWinning = true
			bid, err = s.bidRepo.Update(ctx, existing)
		} else {
			bid, err = s.bidRepo.Create(ctx, &domain.Bid{
				ListingID: listingID,
				BidderID:  bidderID,
				Amount:    amount,
				Status:    domain.BidActive,
				IsWinning: true,
			})
		}
		if err != nil {
			return err
		}

		return s.bidRepo.MarkOthersOutbid(ctx, listingID, bid.ID)
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("bid placed",
		zap.String("listingID", listingID.String()),
		zap.String("bidderID", bidderID.String()),
		zap.Float64("amount", amount))
	return bid, nil
}

func (s *Service) minimumBid(ctx context.Context, listing *domain.Listing) (float64, error) {
	highest, err := s.bidRepo.FindHighestActive(ctx, listing.ID)
	if err != nil {
		return 0, err
	}
	if highest == nil {
		if listing.StartingBid != nil {
			return *listing.StartingBid, nil
		}
		return MinBidIncrement, nil
	}
	return highest.Amount + MinBidIncrement, nil
}

// CancelBid withdraws the bidder's own bid. When the cancelled bid was the
// leader, the highest remaining live bid is promoted back to ACTIVE.
func (s *Service) CancelBid(ctx context.Context, bidID, bidderID uuid.UUID) (*domain.Bid, error) {
	var cancelled *domain.Bid
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		bid, err := s.bidRepo.GetByID(ctx, bidID)
		if err != nil {
			return err
		}
		if bid == nil {
			return domain.ErrBidNotFound
		}
		if bid.BidderID != bidderID {
			return domain.ErrUnauthorized
		}

		listing, err := s.listingRepo.GetByIDForUpdate(ctx, bid.ListingID)
		if err != nil {
			return err
		}
		if listing == nil {
			return domain.ErrListingNotFound
		}
		if listing.AuctionEnded(s.now()) {
			return fmt.Errorf("%w: auction has already ended", domain.ErrInvalidOperation)
		}
		if bid.Status != domain.BidActive && bid.Status != domain.BidOutbid {
			return fmt.Errorf("%w: bid is %s", domain.ErrInvalidState, bid.Status)
		}

		wasWinning := bid.IsWinning
		bid.Status = domain.BidCancelled
		bid.IsWinning = false
		cancelled, err = s.bidRepo.Update(ctx, bid)
		if err != nil {
			return err
		}

		if !wasWinning {
			return nil
		}
		next, err := s.bidRepo.FindHighestLive(ctx, bid.ListingID)
		if err != nil {
			return err
		}
		if next == nil {
			return nil
		}
		next.Status = domain.BidActive
		next.IsWinning = true
		_, err = s.bidRepo.Update(ctx, next)
		return err
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("bid cancelled",
		zap.String("bidID", bidID.String()),
		zap.String("bidderID", bidderID.String()))
	return cancelled, nil
}

func (s *Service) GetBids(ctx context.Context, listingID uuid.UUID) ([]domain.Bid, error) {
	listing, err := s.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, domain.ErrListingNotFound
	}
	return s.bidRepo.FindByListing(ctx, listingID)
}

// CloseAuction resolves one ended auction. The winner's bid moves to WON and
// the listing waits in PENDING_PAYMENT for settlement; with no acceptable
// winner the listing is CANCELLED and every bid resolves to LOST.
func (s *Service) CloseAuction(ctx context.Context, listingID uuid.UUID) (*domain.Listing, error) {
	var closed *domain.Listing
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		listing, err := s.listingRepo.GetByIDForUpdate(ctx, listingID)
		if err != nil {
			return err
		}
		if listing == nil {
			return domain.ErrListingNotFound
		}
		if listing.Type != domain.ListingAuction {
			return fmt.Errorf("%w: listing is not an auction", domain.ErrInvalidOperation)
		}
		if listing.Status != domain.ListingActive {
			// Another sweep instance already closed it.
			closed = listing
			return nil
		}
		if !listing.AuctionEnded(s.now()) {
			return fmt.Errorf("%w: auction has not ended yet", domain.ErrInvalidState)
		}

		winner, err := s.bidRepo.FindHighestActive(ctx, listingID)
		if err != nil {
			return err
		}

		if winner == nil || (listing.ReservePrice != nil && winner.Amount < *listing.ReservePrice) {
			closed, err = s.cancel(ctx, listing, winner)
			return err
		}

		claimed, err := s.listingRepo.ClaimStatus(ctx, listingID, domain.ListingActive, domain.ListingPendingPayment, &winner.BidderID)
		if err != nil {
			return err
		}
		if !claimed {
			closed = listing
			return nil
		}

		winner.Status = domain.BidWon
		winner.IsWinning = true
		if _, err := s.bidRepo.Update(ctx, winner); err != nil {
			return err
		}
		if err := s.bidRepo.ResolveLost(ctx, listingID, &winner.ID); err != nil {
			return err
		}

		listing.Status = domain.ListingPendingPayment
		listing.WinnerID = &winner.BidderID
		closed = listing

		zap.L().Info("auction closed with winner",
			zap.String("listingID", listingID.String()),
			zap.String("winnerID", winner.BidderID.String()),
			zap.Float64("amount", winner.Amount))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return closed, nil
}

func (s *Service) cancel(ctx context.Context, listing *domain.Listing, highest *domain.Bid) (*domain.Listing, error) {
	claimed, err := s.listingRepo.ClaimStatus(ctx, listing.ID, domain.ListingActive, domain.ListingCancelled, nil)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return listing, nil
	}
	if err := s.bidRepo.ResolveLost(ctx, listing.ID, nil); err != nil {
		return nil, err
	}
	listing.Status = domain.ListingCancelled

	if highest == nil {
		zap.L().Info("auction closed without bids", zap.String("listingID", listing.ID.String()))
	} else {
		zap.L().Info("auction closed below reserve",
			zap.String("listingID", listing.ID.String()),
			zap.Float64("highestBid", highest.Amount),
			zap.Float64("reservePrice", *listing.ReservePrice))
	}
	return listing, nil
}

// CloseExpiredAuctions closes every auction whose end time has passed.
// Failures on one listing don't stop the rest of the batch.
func (s *Service) CloseExpiredAuctions(ctx context.Context) (int, error) {
	expired, err := s.listingRepo.FindExpiredAuctions(ctx, s.now(), closeBatchSize)
	if err != nil {
		return 0, err
	}

	closed := 0
	for _, listing := range expired {
		if _, err := s.CloseAuction(ctx, listing.ID); err != nil {
			zap.L().Error("can't close auction",
				zap.String("listingID", listing.ID.String()), zap.Error(err))
			continue
		}
		closed++
	}
	return closed, nil
}
