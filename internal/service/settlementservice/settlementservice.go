package settlementservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/GlebRadaev/carbonledger/internal/domain"
	"github.com/GlebRadaev/carbonledger/internal/events"
)

const (
	retryBaseDelay = 500 * time.Millisecond
	retryMaxCount  = 3
)

// LedgerClient moves credits between accounts. Implementations are either
// the in-process ledger or an HTTP client against a remote credit service,
// both deduplicate on the related refs so a retried call settles once.
type LedgerClient interface {
	Credit(ctx context.Context, req domain.LedgerEntryRequest) (*domain.Account, error)
	Debit(ctx context.Context, req domain.LedgerEntryRequest) (*domain.Account, error)
	GetBalance(ctx context.Context, userID uuid.UUID) (*domain.Account, error)
}

type ListingRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error)
	ClaimStatus(ctx context.Context, id uuid.UUID, from, to domain.ListingStatus, winnerID *uuid.UUID) (bool, error)
	DecrementAvailable(ctx context.Context, id uuid.UUID, amount float64) (*domain.Listing, error)
	FindPendingPayment(ctx context.Context, limit int) ([]domain.Listing, error)
}

type BidRepo interface {
	FindWon(ctx context.Context, listingID uuid.UUID) (*domain.Bid, error)
}

type MarketTxRepo interface {
	Create(ctx context.Context, tx *domain.MarketTransaction) (*domain.MarketTransaction, error)
	FindByKey(ctx context.Context, listingID, buyerID uuid.UUID, txType string) (*domain.MarketTransaction, error)
	GetTotalRevenueBySeller(ctx context.Context, sellerID uuid.UUID) (float64, error)
	GetTotalSpendingByBuyer(ctx context.Context, buyerID uuid.UUID) (float64, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, event interface{}) error
}

// Service coordinates a settlement across the ledger and the marketplace
// tables. The ledger legs deliberately run outside one DB transaction, the
// ledger may live in another process, so the coordinator relies on
// idempotency keys plus explicit partial-failure reporting instead.
type Service struct {
	ledger       LedgerClient
	listingRepo  ListingRepo
	bidRepo      BidRepo
	marketTxRepo MarketTxRepo
	publisher    EventPublisher
}

func New(ledger LedgerClient, listingRepo ListingRepo, bidRepo BidRepo, marketTxRepo MarketTxRepo, publisher EventPublisher) *Service {
	return &Service{
		ledger:       ledger,
		listingRepo:  listingRepo,
		bidRepo:      bidRepo,
		marketTxRepo: marketTxRepo,
		publisher:    publisher,
	}
}

// PurchaseFixedPrice settles a partial or full buy of a fixed price listing.
// The ledger moves amountKg between buyer and seller while the market
// transaction records the money side at the listing's price.
func (s *Service) PurchaseFixedPrice(ctx context.Context, listingID, buyerID uuid.UUID, amountKg float64) (*domain.MarketTransaction, error) {
	if amountKg <= 0 {
		return nil, fmt.Errorf("%w: purchase amount must be greater than 0", domain.ErrInvalidOperation)
	}

	listing, err := s.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, domain.ErrListingNotFound
	}
	if listing.Type != domain.ListingFixedPrice {
		return nil, fmt.Errorf("%w: listing is not fixed price", domain.ErrInvalidOperation)
	}
	if listing.Status != domain.ListingActive {
		return nil, fmt.Errorf("%w: listing is %s", domain.ErrInvalidState, listing.Status)
	}
	if listing.Expired(time.Now()) {
		return nil, fmt.Errorf("%w: listing has expired", domain.ErrInvalidState)
	}
	if listing.SellerID == buyerID {
		return nil, fmt.Errorf("%w: seller cannot buy own listing", domain.ErrInvalidOperation)
	}
	if amountKg > listing.AvailableAmount {
		return nil, fmt.Errorf("%w: requested %.2f kg, only %.2f kg available", domain.ErrInvalidOperation, amountKg, listing.AvailableAmount)
	}

	existing, err := s.marketTxRepo.FindByKey(ctx, listingID, buyerID, domain.MarketPurchase)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		zap.L().Info("duplicate purchase settlement skipped",
			zap.String("listingID", listingID.String()),
			zap.String("buyerID", buyerID.String()))
		return existing, nil
	}

	totalPrice := *listing.PricePerKg * amountKg
	marketTx, err := s.settle(ctx, listing, buyerID, amountKg, *listing.PricePerKg, totalPrice, domain.MarketPurchase)
	if err != nil {
		return nil, err
	}

	updated, err := s.listingRepo.DecrementAvailable(ctx, listingID, amountKg)
	if err != nil {
		return nil, err
	}
	if updated != nil && updated.AvailableAmount == 0 {
		claimed, err := s.listingRepo.ClaimStatus(ctx, listingID, domain.ListingActive, domain.ListingSold, &buyerID)
		if err != nil {
			return nil, err
		}
		if claimed {
			s.publish(ctx, events.KeyListingSold, events.ListingSold{
				ListingID: listingID,
				SellerID:  listing.SellerID,
				BuyerID:   buyerID,
			})
		}
	}

	s.publish(ctx, events.KeyCreditPurchased, events.CreditPurchased{
		ListingID:  listingID,
		BuyerID:    buyerID,
		SellerID:   listing.SellerID,
		CO2Amount:  amountKg,
		TotalPrice: totalPrice,
	})

	zap.L().Info("fixed price purchase settled",
		zap.String("listingID", listingID.String()),
		zap.String("buyerID", buyerID.String()),
		zap.Float64("amountKg", amountKg),
		zap.Float64("totalPrice", totalPrice))
	return marketTx, nil
}

// SettleAuctionWin charges the winner of a closed auction and releases the
// full listing amount to them. Called by the sweep for listings parked in
// PENDING_PAYMENT.
func (s *Service) SettleAuctionWin(ctx context.Context, listingID uuid.UUID) (*domain.MarketTransaction, error) {
	listing, err := s.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, domain.ErrListingNotFound
	}
	if listing.Status != domain.ListingPendingPayment {
		return nil, fmt.Errorf("%w: listing is %s", domain.ErrInvalidState, listing.Status)
	}
	if listing.WinnerID == nil {
		return nil, fmt.Errorf("%w: pending listing has no winner", domain.ErrInvalidState)
	}
	buyerID := *listing.WinnerID

	existing, err := s.marketTxRepo.FindByKey(ctx, listingID, buyerID, domain.MarketAuctionWin)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		// Settled earlier but the status flip was lost; finish the flip.
		if _, err := s.listingRepo.ClaimStatus(ctx, listingID, domain.ListingPendingPayment, domain.ListingSold, nil); err != nil {
			return nil, err
		}
		return existing, nil
	}

	wonBid, err := s.bidRepo.FindWon(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if wonBid == nil {
		return nil, fmt.Errorf("%w: no won bid for pending listing", domain.ErrInvalidState)
	}

	pricePerKg := wonBid.Amount / listing.CO2Amount
	marketTx, err := s.settle(ctx, listing, buyerID, listing.CO2Amount, pricePerKg, wonBid.Amount, domain.MarketAuctionWin)
	if err != nil {
		return nil, err
	}

	claimed, err := s.listingRepo.ClaimStatus(ctx, listingID, domain.ListingPendingPayment, domain.ListingSold, nil)
	if err != nil {
		return nil, err
	}
	if claimed {
		s.publish(ctx, events.KeyListingSold, events.ListingSold{
			ListingID: listingID,
			SellerID:  listing.SellerID,
			BuyerID:   buyerID,
		})
	}

	s.publish(ctx, events.KeyCreditPurchased, events.CreditPurchased{
		ListingID:  listingID,
		BuyerID:    buyerID,
		SellerID:   listing.SellerID,
		CO2Amount:  listing.CO2Amount,
		TotalPrice: wonBid.Amount,
	})

	zap.L().Info("auction win settled",
		zap.String("listingID", listingID.String()),
		zap.String("buyerID", buyerID.String()),
		zap.Float64("amount", wonBid.Amount))
	return marketTx, nil
}

// SettlePendingPayments drives SettleAuctionWin over every listing waiting
// for payment. Partial settlements are logged and left for reconciliation,
// the rest of the batch keeps going.
func (s *Service) SettlePendingPayments(ctx context.Context, limit int) (int, error) {
	pending, err := s.listingRepo.FindPendingPayment(ctx, limit)
	if err != nil {
		return 0, err
	}

	settled := 0
	for _, listing := range pending {
		if _, err := s.SettleAuctionWin(ctx, listing.ID); err != nil {
			zap.L().Error("can't settle pending listing",
				zap.String("listingID", listing.ID.String()), zap.Error(err))
			continue
		}
		settled++
	}
	return settled, nil
}

// settle moves amountKg of credits from buyer to seller and records the
// market transaction. The buyer is debited the credit kilograms, not the
// monetary price; the money side lives only in the market record.
func (s *Service) settle(ctx context.Context, listing *domain.Listing, buyerID uuid.UUID, amountKg, pricePerKg, totalPrice float64, txType string) (*domain.MarketTransaction, error) {
	debitReq := domain.LedgerEntryRequest{
		UserID:           buyerID,
		Amount:           amountKg,
		Type:             domain.TransactionPurchased,
		RelatedUserID:    &listing.SellerID,
		RelatedListingID: &listing.ID,
	}
	if _, err := s.withRetry(ctx, "debit buyer", func(ctx context.Context) (*domain.Account, error) {
		return s.ledger.Debit(ctx, debitReq)
	}); err != nil {
		return nil, fmt.Errorf("debit buyer: %w", err)
	}

	creditReq := domain.LedgerEntryRequest{
		UserID:           listing.SellerID,
		Amount:           amountKg,
		Type:             domain.TransactionSold,
		RelatedUserID:    &buyerID,
		RelatedListingID: &listing.ID,
	}
	if _, err := s.withRetry(ctx, "credit seller", func(ctx context.Context) (*domain.Account, error) {
		return s.ledger.Credit(ctx, creditReq)
	}); err != nil {
		// The buyer has paid. Surface exactly what completed so the ledger
		// can be reconciled instead of silently diverging.
		return nil, &domain.PartialSettlementError{
			ListingID: listing.ID,
			BuyerID:   buyerID,
			SellerID:  listing.SellerID,
			Amount:    amountKg,
			Completed: "debit_buyer",
			Failed:    "credit_seller",
			Err:       err,
		}
	}

	marketTx, err := s.marketTxRepo.Create(ctx, &domain.MarketTransaction{
		ListingID:  listing.ID,
		BuyerID:    buyerID,
		SellerID:   listing.SellerID,
		Type:       txType,
		CO2Amount:  amountKg,
		PricePerKg: pricePerKg,
		TotalPrice: totalPrice,
	})
	if err != nil {
		return nil, &domain.PartialSettlementError{
			ListingID: listing.ID,
			BuyerID:   buyerID,
			SellerID:  listing.SellerID,
			Amount:    amountKg,
			Completed: "credit_seller",
			Failed:    "record_transaction",
			Err:       err,
		}
	}
	return marketTx, nil
}

// withRetry retries a ledger call on transient upstream failures only.
// Business rejections like insufficient funds fail immediately.
func (s *Service) withRetry(ctx context.Context, step string, call func(ctx context.Context) (*domain.Account, error)) (*domain.Account, error) {
	backoff := retry.WithMaxRetries(retryMaxCount, retry.NewExponential(retryBaseDelay))

	var account *domain.Account
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var err error
		account, err = call(ctx)
		if err != nil {
			if errors.Is(err, domain.ErrUpstreamUnavailable) {
				zap.L().Warn("ledger unavailable, retrying", zap.String("step", step), zap.Error(err))
				return retry.RetryableError(err)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

func (s *Service) GetSellerRevenue(ctx context.Context, sellerID uuid.UUID) (float64, error) {
	return s.marketTxRepo.GetTotalRevenueBySeller(ctx, sellerID)
}

func (s *Service) GetBuyerSpending(ctx context.Context, buyerID uuid.UUID) (float64, error) {
	return s.marketTxRepo.GetTotalSpendingByBuyer(ctx, buyerID)
}

func (s *Service) publish(ctx context.Context, key string, event interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, key, event); err != nil {
		zap.L().Error("failed to publish event", zap.String("routingKey", key), zap.Error(err))
	}
}
