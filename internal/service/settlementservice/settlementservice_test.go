package settlementservice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"

	"github.com/GlebRadaev/carbonledger/internal/domain"
)

func NewMock(t *testing.T) (*Service, *MockLedgerClient, *MockListingRepo, *MockBidRepo, *MockMarketTxRepo) {
	ctrl := gomock.NewController(t)
	ledger := NewMockLedgerClient(ctrl)
	listingRepo := NewMockListingRepo(ctrl)
	bidRepo := NewMockBidRepo(ctrl)
	marketTxRepo := NewMockMarketTxRepo(ctrl)
	service := New(ledger, listingRepo, bidRepo, marketTxRepo, nil)
	defer ctrl.Finish()
	return service, ledger, listingRepo, bidRepo, marketTxRepo
}

func fixedPriceListing(sellerID uuid.UUID) *domain.Listing {
	price := 50.0
	return &domain.Listing{
		ID:              uuid.New(),
		SellerID:        sellerID,
		CO2Amount:       10,
		AvailableAmount: 10,
		Type:            domain.ListingFixedPrice,
		Status:          domain.ListingActive,
		PricePerKg:      &price,
	}
}

func TestPurchaseFixedPrice(t *testing.T) {
	sellerID := uuid.New()
	buyerID := uuid.New()

	t.Run("Full purchase debits kilograms and sells out the listing", func(t *testing.T) {
		service, ledger, listingRepo, _, marketTxRepo := NewMock(t)
		listing := fixedPriceListing(sellerID)

		listingRepo.EXPECT().GetByID(gomock.Any(), listing.ID).Return(listing, nil)
		marketTxRepo.EXPECT().FindByKey(gomock.Any(), listing.ID, buyerID, domain.MarketPurchase).Return(nil, nil)
		ledger.EXPECT().Debit(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, req domain.LedgerEntryRequest) (*domain.Account, error) {
				assert.Equal(t, buyerID, req.UserID)
				assert.Equal(t, 10.0, req.Amount)
				assert.Equal(t, domain.TransactionPurchased, req.Type)
				assert.Equal(t, &listing.ID, req.RelatedListingID)
				return &domain.Account{UserID: buyerID}, nil
			})
		ledger.EXPECT().Credit(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, req domain.LedgerEntryRequest) (*domain.Account, error) {
				assert.Equal(t, sellerID, req.UserID)
				assert.Equal(t, 10.0, req.Amount)
				assert.Equal(t, domain.TransactionSold, req.Type)
				return &domain.Account{UserID: sellerID}, nil
			})
		marketTxRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, tx *domain.MarketTransaction) (*domain.MarketTransaction, error) {
				assert.Equal(t, 500.0, tx.TotalPrice)
				assert.Equal(t, 10.0, tx.CO2Amount)
				return tx, nil
			})
		soldOut := *listing
		soldOut.AvailableAmount = 0
		listingRepo.EXPECT().DecrementAvailable(gomock.Any(), listing.ID, 10.0).Return(&soldOut, nil)
		listingRepo.EXPECT().ClaimStatus(gomock.Any(), listing.ID,
			domain.ListingActive, domain.ListingSold, &buyerID).Return(true, nil)

		tx, err := service.PurchaseFixedPrice(context.Background(), listing.ID, buyerID, 10)
		assert.NoError(t, err)
		assert.Equal(t, domain.MarketPurchase, tx.Type)
	})

	t.Run("Partial purchase keeps the listing active", func(t *testing.T) {
		service, ledger, listingRepo, _, marketTxRepo := NewMock(t)
		listing := fixedPriceListing(sellerID)

		listingRepo.EXPECT().GetByID(gomock.Any(), listing.ID).Return(listing, nil)
		marketTxRepo.EXPECT().FindByKey(gomock.Any(), listing.ID, buyerID, domain.MarketPurchase).Return(nil, nil)
		ledger.EXPECT().Debit(gomock.Any(), gomock.Any()).Return(&domain.Account{}, nil)
		ledger.EXPECT().Credit(gomock.Any(), gomock.Any()).Return(&domain.Account{}, nil)
		marketTxRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, tx *domain.MarketTransaction) (*domain.MarketTransaction, error) {
				return tx, nil
			})
		remaining := *listing
		remaining.AvailableAmount = 6
		listingRepo.EXPECT().DecrementAvailable(gomock.Any(), listing.ID, 4.0).Return(&remaining, nil)

		tx, err := service.PurchaseFixedPrice(context.Background(), listing.ID, buyerID, 4)
		assert.NoError(t, err)
		assert.Equal(t, 200.0, tx.TotalPrice)
	})

	t.Run("Repeated settlement returns the earlier record", func(t *testing.T) {
		service, _, listingRepo, _, marketTxRepo := NewMock(t)
		listing := fixedPriceListing(sellerID)
		earlier := &domain.MarketTransaction{ID: uuid.New(), ListingID: listing.ID, BuyerID: buyerID}

		listingRepo.EXPECT().GetByID(gomock.Any(), listing.ID).Return(listing, nil)
		marketTxRepo.EXPECT().FindByKey(gomock.Any(), listing.ID, buyerID, domain.MarketPurchase).Return(earlier, nil)

		tx, err := service.PurchaseFixedPrice(context.Background(), listing.ID, buyerID, 10)
		assert.NoError(t, err)
		assert.Equal(t, earlier, tx)
	})

	t.Run("Insufficient buyer funds fail without touching the seller", func(t *testing.T) {
		service, ledger, listingRepo, _, marketTxRepo := NewMock(t)
		listing := fixedPriceListing(sellerID)

		listingRepo.EXPECT().GetByID(gomock.Any(), listing.ID).Return(listing, nil)
		marketTxRepo.EXPECT().FindByKey(gomock.Any(), listing.ID, buyerID, domain.MarketPurchase).Return(nil, nil)
		ledger.EXPECT().Debit(gomock.Any(), gomock.Any()).
			Return(nil, &domain.InsufficientFundsError{Requested: 10, Available: 3})

		tx, err := service.PurchaseFixedPrice(context.Background(), listing.ID, buyerID, 10)
		var insufficient *domain.InsufficientFundsError
		assert.ErrorAs(t, err, &insufficient)
		assert.Nil(t, tx)
	})

	t.Run("Credit failure after debit reports a partial settlement", func(t *testing.T) {
		service, ledger, listingRepo, _, marketTxRepo := NewMock(t)
		listing := fixedPriceListing(sellerID)

		listingRepo.EXPECT().GetByID(gomock.Any(), listing.ID).Return(listing, nil)
		marketTxRepo.EXPECT().FindByKey(gomock.Any(), listing.ID, buyerID, domain.MarketPurchase).Return(nil, nil)
		ledger.EXPECT().Debit(gomock.Any(), gomock.Any()).Return(&domain.Account{}, nil)
		ledger.EXPECT().Credit(gomock.Any(), gomock.Any()).Return(nil, errors.New("seller account corrupt"))

		tx, err := service.PurchaseFixedPrice(context.Background(), listing.ID, buyerID, 10)
		var partial *domain.PartialSettlementError
		assert.ErrorAs(t, err, &partial)
		assert.Equal(t, "debit_buyer", partial.Completed)
		assert.Equal(t, "credit_seller", partial.Failed)
		assert.Nil(t, tx)
	})

	t.Run("Transient ledger failure is retried", func(t *testing.T) {
		service, ledger, listingRepo, _, marketTxRepo := NewMock(t)
		listing := fixedPriceListing(sellerID)

		listingRepo.EXPECT().GetByID(gomock.Any(), listing.ID).Return(listing, nil)
		marketTxRepo.EXPECT().FindByKey(gomock.Any(), listing.ID, buyerID, domain.MarketPurchase).Return(nil, nil)
		ledger.EXPECT().Debit(gomock.Any(), gomock.Any()).Return(nil, domain.ErrUpstreamUnavailable)
		ledger.EXPECT().Debit(gomock.Any(), gomock.Any()).Return(&domain.Account{}, nil)
		ledger.EXPECT().Credit(gomock.Any(), gomock.Any()).Return(&domain.Account{}, nil)
		marketTxRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, tx *domain.MarketTransaction) (*domain.MarketTransaction, error) {
				return tx, nil
			})
		remaining := *listing
		remaining.AvailableAmount = 5
		listingRepo.EXPECT().DecrementAvailable(gomock.Any(), listing.ID, 5.0).Return(&remaining, nil)

		tx, err := service.PurchaseFixedPrice(context.Background(), listing.ID, buyerID, 5)
		assert.NoError(t, err)
		assert.NotNil(t, tx)
	})

	t.Run("Requesting more than available is rejected", func(t *testing.T) {
		service, _, listingRepo, _, _ := NewMock(t)
		listing := fixedPriceListing(sellerID)

		listingRepo.EXPECT().GetByID(gomock.Any(), listing.ID).Return(listing, nil)

		tx, err := service.PurchaseFixedPrice(context.Background(), listing.ID, buyerID, 15)
		assert.ErrorIs(t, err, domain.ErrInvalidOperation)
		assert.Nil(t, tx)
	})

	t.Run("Expired listing cannot be purchased", func(t *testing.T) {
		service, _, listingRepo, _, _ := NewMock(t)
		listing := fixedPriceListing(sellerID)
		expiresAt := time.Now().Add(-time.Hour)
		listing.ExpiresAt = &expiresAt

		listingRepo.EXPECT().GetByID(gomock.Any(), listing.ID).Return(listing, nil)

		tx, err := service.PurchaseFixedPrice(context.Background(), listing.ID, buyerID, 5)
		assert.ErrorIs(t, err, domain.ErrInvalidState)
		assert.Nil(t, tx)
	})

	t.Run("Self purchase is rejected", func(t *testing.T) {
		service, _, listingRepo, _, _ := NewMock(t)
		listing := fixedPriceListing(sellerID)

		listingRepo.EXPECT().GetByID(gomock.Any(), listing.ID).Return(listing, nil)

		tx, err := service.PurchaseFixedPrice(context.Background(), listing.ID, sellerID, 5)
		assert.ErrorIs(t, err, domain.ErrInvalidOperation)
		assert.Nil(t, tx)
	})
}

func TestSettleAuctionWin(t *testing.T) {
	sellerID := uuid.New()
	winnerID := uuid.New()

	pendingListing := func() *domain.Listing {
		return &domain.Listing{
			ID:        uuid.New(),
			SellerID:  sellerID,
			CO2Amount: 10,
			Type:      domain.ListingAuction,
			Status:    domain.ListingPendingPayment,
			WinnerID:  &winnerID,
		}
	}

	t.Run("Winner pays the bid and receives the full amount", func(t *testing.T) {
		service, ledger, listingRepo, bidRepo, marketTxRepo := NewMock(t)
		listing := pendingListing()
		wonBid := &domain.Bid{ID: uuid.New(), ListingID: listing.ID, BidderID: winnerID, Amount: 900, Status: domain.BidWon}

		listingRepo.EXPECT().GetByID(gomock.Any(), listing.ID).Return(listing, nil)
		marketTxRepo.EXPECT().FindByKey(gomock.Any(), listing.ID, winnerID, domain.MarketAuctionWin).Return(nil, nil)
		bidRepo.EXPECT().FindWon(gomock.Any(), listing.ID).Return(wonBid, nil)
		ledger.EXPECT().Debit(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, req domain.LedgerEntryRequest) (*domain.Account, error) {
				assert.Equal(t, winnerID, req.UserID)
				assert.Equal(t, 10.0, req.Amount)
				return &domain.Account{}, nil
			})
		ledger.EXPECT().Credit(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, req domain.LedgerEntryRequest) (*domain.Account, error) {
				assert.Equal(t, sellerID, req.UserID)
				assert.Equal(t, 10.0, req.Amount)
				return &domain.Account{}, nil
			})
		marketTxRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, tx *domain.MarketTransaction) (*domain.MarketTransaction, error) {
				assert.Equal(t, 900.0, tx.TotalPrice)
				assert.Equal(t, 90.0, tx.PricePerKg)
				assert.Equal(t, domain.MarketAuctionWin, tx.Type)
				return tx, nil
			})
		listingRepo.EXPECT().ClaimStatus(gomock.Any(), listing.ID,
			domain.ListingPendingPayment, domain.ListingSold, nil).Return(true, nil)

		tx, err := service.SettleAuctionWin(context.Background(), listing.ID)
		assert.NoError(t, err)
		assert.Equal(t, domain.MarketAuctionWin, tx.Type)
	})

	t.Run("Already settled listing just finishes the status flip", func(t *testing.T) {
		service, _, listingRepo, _, marketTxRepo := NewMock(t)
		listing := pendingListing()
		earlier := &domain.MarketTransaction{ID: uuid.New(), ListingID: listing.ID, BuyerID: winnerID}

		listingRepo.EXPECT().GetByID(gomock.Any(), listing.ID).Return(listing, nil)
		marketTxRepo.EXPECT().FindByKey(gomock.Any(), listing.ID, winnerID, domain.MarketAuctionWin).Return(earlier, nil)
		listingRepo.EXPECT().ClaimStatus(gomock.Any(), listing.ID,
			domain.ListingPendingPayment, domain.ListingSold, nil).Return(true, nil)

		tx, err := service.SettleAuctionWin(context.Background(), listing.ID)
		assert.NoError(t, err)
		assert.Equal(t, earlier, tx)
	})

	t.Run("Non-pending listing is rejected", func(t *testing.T) {
		service, _, listingRepo, _, _ := NewMock(t)
		listing := pendingListing()
		listing.Status = domain.ListingSold

		listingRepo.EXPECT().GetByID(gomock.Any(), listing.ID).Return(listing, nil)

		tx, err := service.SettleAuctionWin(context.Background(), listing.ID)
		assert.ErrorIs(t, err, domain.ErrInvalidState)
		assert.Nil(t, tx)
	})
}

func TestSettlePendingPayments(t *testing.T) {
	service, ledger, listingRepo, bidRepo, marketTxRepo := NewMock(t)
	sellerID := uuid.New()
	winnerID := uuid.New()
	listing := domain.Listing{
		ID:        uuid.New(),
		SellerID:  sellerID,
		CO2Amount: 10,
		Type:      domain.ListingAuction,
		Status:    domain.ListingPendingPayment,
		WinnerID:  &winnerID,
	}
	broke := domain.Listing{
		ID:        uuid.New(),
		SellerID:  sellerID,
		CO2Amount: 5,
		Type:      domain.ListingAuction,
		Status:    domain.ListingPendingPayment,
		WinnerID:  &winnerID,
	}

	listingRepo.EXPECT().FindPendingPayment(gomock.Any(), 10).
		Return([]domain.Listing{listing, broke}, nil)

	// First listing settles cleanly.
	listingRepo.EXPECT().GetByID(gomock.Any(), listing.ID).Return(&listing, nil)
	marketTxRepo.EXPECT().FindByKey(gomock.Any(), listing.ID, winnerID, domain.MarketAuctionWin).Return(nil, nil)
	bidRepo.EXPECT().FindWon(gomock.Any(), listing.ID).
		Return(&domain.Bid{ID: uuid.New(), Amount: 500, BidderID: winnerID}, nil)
	ledger.EXPECT().Debit(gomock.Any(), gomock.Any()).Return(&domain.Account{}, nil)
	ledger.EXPECT().Credit(gomock.Any(), gomock.Any()).Return(&domain.Account{}, nil)
	marketTxRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, tx *domain.MarketTransaction) (*domain.MarketTransaction, error) {
			return tx, nil
		})
	listingRepo.EXPECT().ClaimStatus(gomock.Any(), listing.ID,
		domain.ListingPendingPayment, domain.ListingSold, nil).Return(true, nil)

	// Second winner cannot pay; the batch keeps going.
	listingRepo.EXPECT().GetByID(gomock.Any(), broke.ID).Return(&broke, nil)
	marketTxRepo.EXPECT().FindByKey(gomock.Any(), broke.ID, winnerID, domain.MarketAuctionWin).Return(nil, nil)
	bidRepo.EXPECT().FindWon(gomock.Any(), broke.ID).
		Return(&domain.Bid{ID: uuid.New(), Amount: 300, BidderID: winnerID}, nil)
	ledger.EXPECT().Debit(gomock.Any(), gomock.Any()).
		Return(nil, &domain.InsufficientFundsError{Requested: 5, Available: 1})

	settled, err := service.SettlePendingPayments(context.Background(), 10)
	assert.NoError(t, err)
	assert.Equal(t, 1, settled)
}
