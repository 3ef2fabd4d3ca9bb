package auctionservice

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"

	"github.com/GlebRadaev/carbonledger/internal/domain"
	"github.com/GlebRadaev/carbonledger/internal/pg"
)

func NewMock(t *testing.T) (*Service, *MockListingRepo, *MockBidRepo) {
	ctrl := gomock.NewController(t)
	listingRepo := NewMockListingRepo(ctrl)
	bidRepo := NewMockBidRepo(ctrl)
	txManager := pg.NewMockTXManager(ctrl)
	txManager.EXPECT().Begin(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, fn pg.TransactionalFn) error {
			return fn(ctx)
		},
	).AnyTimes()
	service := New(listingRepo, bidRepo, txManager)
	defer ctrl.Finish()
	return service, listingRepo, bidRepo
}

func activeAuction(sellerID uuid.UUID) *domain.Listing {
	start := time.Now().Add(-time.Hour)
	end := time.Now().Add(time.Hour)
	startingBid := 500.0
	return &domain.Listing{
		ID:           uuid.New(),
		SellerID:     sellerID,
		CO2Amount:    10,
		Type:         domain.ListingAuction,
		Status:       domain.ListingActive,
		StartingBid:  &startingBid,
		AuctionStart: &start,
		AuctionEnd:   &end,
	}
}

func TestPlaceBid(t *testing.T) {
	sellerID := uuid.New()
	bidderID := uuid.New()

	tests := []struct {
		name            string
		amount          float64
		prepareMock     func(listingRepo *MockListingRepo, bidRepo *MockBidRepo, listing *domain.Listing)
		expectedMinimum float64
		expectedError   error
	}{
		{
			name:   "First bid at the starting amount",
			amount: 500,
			prepareMock: func(listingRepo *MockListingRepo, bidRepo *MockBidRepo, listing *domain.Listing) {
				listingRepo.EXPECT().GetByIDForUpdate(gomock.Any(), listing.ID).Return(listing, nil)
				bidRepo.EXPECT().FindHighestActive(gomock.Any(), listing.ID).Return(nil, nil)
				bidRepo.EXPECT().FindUserBid(gomock.Any(), listing.ID, bidderID).Return(nil, nil)
				bidRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, b *domain.Bid) (*domain.Bid, error) {
						b.ID = uuid.New()
						return b, nil
					})
				bidRepo.EXPECT().MarkOthersOutbid(gomock.Any(), listing.ID, gomock.Any()).Return(nil)
			},
		},
		{
			name:   "Bid below the required increment",
			amount: 750,
			prepareMock: func(listingRepo *MockListingRepo, bidRepo *MockBidRepo, listing *domain.Listing) {
				listingRepo.EXPECT().GetByIDForUpdate(gomock.Any(), listing.ID).Return(listing, nil)
				bidRepo.EXPECT().FindHighestActive(gomock.Any(), listing.ID).
					Return(&domain.Bid{ID: uuid.New(), Amount: 700}, nil)
			},
			expectedError: &domain.InvalidBidError{Minimum: 800},
		},
		{
			name:   "Equal bid rejected",
			amount: 700,
			prepareMock: func(listingRepo *MockListingRepo, bidRepo *MockBidRepo, listing *domain.Listing) {
				listingRepo.EXPECT().GetByIDForUpdate(gomock.Any(), listing.ID).Return(listing, nil)
				bidRepo.EXPECT().FindHighestActive(gomock.Any(), listing.ID).
					Return(&domain.Bid{ID: uuid.New(), Amount: 700}, nil)
			},
			expectedError: &domain.InvalidBidError{Minimum: 800},
		},
		{
			name:   "Bid below the starting amount",
			amount: 400,
			prepareMock: func(listingRepo *MockListingRepo, bidRepo *MockBidRepo, listing *domain.Listing) {
				listingRepo.EXPECT().GetByIDForUpdate(gomock.Any(), listing.ID).Return(listing, nil)
				bidRepo.EXPECT().FindHighestActive(gomock.Any(), listing.ID).Return(nil, nil)
			},
			expectedError: &domain.InvalidBidError{Minimum: 500},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, listingRepo, bidRepo := NewMock(t)
			listing := activeAuction(sellerID)
			tt.prepareMock(listingRepo, bidRepo, listing)

			bid, err := service.PlaceBid(context.Background(), listing.ID, bidderID, tt.amount)
			if tt.expectedError != nil {
				var invalid *domain.InvalidBidError
				assert.ErrorAs(t, err, &invalid)
				expected := tt.expectedError.(*domain.InvalidBidError)
				assert.Equal(t, expected.Minimum, invalid.Minimum)
				assert.Nil(t, bid)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, domain.BidActive, bid.Status)
				assert.True(t, bid.IsWinning)
			}
		})
	}
}

func TestPlaceBidRejectsSeller(t *testing.T) {
	service, listingRepo, _ := NewMock(t)
	sellerID := uuid.New()
	listing := activeAuction(sellerID)

	listingRepo.EXPECT().GetByIDForUpdate(gomock.Any(), listing.ID).Return(listing, nil)

	bid, err := service.PlaceBid(context.Background(), listing.ID, sellerID, 600)
	assert.ErrorIs(t, err, domain.ErrInvalidOperation)
	assert.Nil(t, bid)
}

func TestPlaceBidRejectsFixedPrice(t *testing.T) {
	service, listingRepo, _ := NewMock(t)
	listing := activeAuction(uuid.New())
	listing.Type = domain.ListingFixedPrice

	listingRepo.EXPECT().GetByIDForUpdate(gomock.Any(), listing.ID).Return(listing, nil)

	bid, err := service.PlaceBid(context.Background(), listing.ID, uuid.New(), 600)
	assert.ErrorIs(t, err, domain.ErrInvalidOperation)
	assert.Nil(t, bid)
}

func TestPlaceBidRejectsEndedAuction(t *testing.T) {
	service, listingRepo, _ := NewMock(t)
	listing := activeAuction(uuid.New())
	past := time.Now().Add(-time.Minute)
	listing.AuctionEnd = &past

	listingRepo.EXPECT().GetByIDForUpdate(gomock.Any(), listing.ID).Return(listing, nil)

	bid, err := service.PlaceBid(context.Background(), listing.ID, uuid.New(), 600)
	var invalid *domain.InvalidBidError
	assert.ErrorAs(t, err, &invalid)
	assert.Nil(t, bid)
}

func TestPlaceBidRaisesExistingBid(t *testing.T) {
	service, listingRepo, bidRepo := NewMock(t)
	bidderID := uuid.New()
	listing := activeAuction(uuid.New())
	existing := &domain.Bid{
		ID:        uuid.New(),
		ListingID: listing.ID,
		BidderID:  bidderID,
		Amount:    600,
		Status:    domain.BidOutbid,
	}

	listingRepo.EXPECT().GetByIDForUpdate(gomock.Any(), listing.ID).Return(listing, nil)
	bidRepo.EXPECT().FindHighestActive(gomock.Any(), listing.ID).
		Return(&domain.Bid{ID: uuid.New(), Amount: 700}, nil)
	bidRepo.EXPECT().FindUserBid(gomock.Any(), listing.ID, bidderID).Return(existing, nil)
	bidRepo.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, b *domain.Bid) (*domain.Bid, error) {
			assert.Equal(t, existing.ID, b.ID)
			assert.Equal(t, 800.0, b.Amount)
			assert.Equal(t, domain.BidActive, b.Status)
			return b, nil
		})
	bidRepo.EXPECT().MarkOthersOutbid(gomock.Any(), listing.ID, existing.ID).Return(nil)

	bid, err := service.PlaceBid(context.Background(), listing.ID, bidderID, 800)
	assert.NoError(t, err)
	assert.Equal(t, existing.ID, bid.ID)
}

func TestPlaceBidRevivesCancelledBid(t *testing.T) {
	service, listingRepo, bidRepo := NewMock(t)
	bidderID := uuid.New()
	listing := activeAuction(uuid.New())
	cancelled := &domain.Bid{
		ID:        uuid.New(),
		ListingID: listing.ID,
		BidderID:  bidderID,
		Amount:    600,
		Status:    domain.BidCancelled,
	}

	listingRepo.EXPECT().GetByIDForUpdate(gomock.Any(), listing.ID).Return(listing, nil)
	bidRepo.EXPECT().FindHighestActive(gomock.Any(), listing.ID).
		Return(&domain.Bid{ID: uuid.New(), Amount: 700}, nil)
	bidRepo.EXPECT().FindUserBid(gomock.Any(), listing.ID, bidderID).Return(cancelled, nil)
	// The cancelled row is revived instead of inserting a second one, which
	// the per-(listing, bidder) uniqueness would reject.
	bidRepo.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, b *domain.Bid) (*domain.Bid, error) {
			assert.Equal(t, cancelled.ID, b.ID)
			assert.Equal(t, 800.0, b.Amount)
			assert.Equal(t, domain.BidActive, b.Status)
			assert.True(t, b.IsWinning)
			return b, nil
		})
	bidRepo.EXPECT().MarkOthersOutbid(gomock.Any(), listing.ID, cancelled.ID).Return(nil)

	bid, err := service.PlaceBid(context.Background(), listing.ID, bidderID, 800)
	assert.NoError(t, err)
	assert.Equal(t, cancelled.ID, bid.ID)
}

func TestCancelBid(t *testing.T) {
	service, listingRepo, bidRepo := NewMock(t)
	bidderID := uuid.New()
	listing := activeAuction(uuid.New())

	t.Run("Cancelling the leader promotes the runner-up", func(t *testing.T) {
		leader := &domain.Bid{
			ID:        uuid.New(),
			ListingID: listing.ID,
			BidderID:  bidderID,
			Amount:    800,
			Status:    domain.BidActive,
			IsWinning: true,
		}
		runnerUp := &domain.Bid{
			ID:        uuid.New(),
			ListingID: listing.ID,
			BidderID:  uuid.New(),
			Amount:    700,
			Status:    domain.BidOutbid,
		}

		bidRepo.EXPECT().GetByID(gomock.Any(), leader.ID).Return(leader, nil)
		listingRepo.EXPECT().GetByIDForUpdate(gomock.Any(), listing.ID).Return(listing, nil)
		bidRepo.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, b *domain.Bid) (*domain.Bid, error) {
				assert.Equal(t, domain.BidCancelled, b.Status)
				assert.False(t, b.IsWinning)
				return b, nil
			})
		bidRepo.EXPECT().FindHighestLive(gomock.Any(), listing.ID).Return(runnerUp, nil)
		bidRepo.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, b *domain.Bid) (*domain.Bid, error) {
				assert.Equal(t, runnerUp.ID, b.ID)
				assert.Equal(t, domain.BidActive, b.Status)
				assert.True(t, b.IsWinning)
				return b, nil
			})

		cancelled, err := service.CancelBid(context.Background(), leader.ID, bidderID)
		assert.NoError(t, err)
		assert.Equal(t, domain.BidCancelled, cancelled.Status)
	})

	t.Run("Only the owner can cancel", func(t *testing.T) {
		bid := &domain.Bid{ID: uuid.New(), ListingID: listing.ID, BidderID: uuid.New(), Status: domain.BidActive}
		bidRepo.EXPECT().GetByID(gomock.Any(), bid.ID).Return(bid, nil)

		cancelled, err := service.CancelBid(context.Background(), bid.ID, bidderID)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
		assert.Nil(t, cancelled)
	})

	t.Run("Cancel after auction end is rejected", func(t *testing.T) {
		ended := activeAuction(uuid.New())
		past := time.Now().Add(-time.Minute)
		ended.AuctionEnd = &past
		bid := &domain.Bid{ID: uuid.New(), ListingID: ended.ID, BidderID: bidderID, Status: domain.BidActive}

		bidRepo.EXPECT().GetByID(gomock.Any(), bid.ID).Return(bid, nil)
		listingRepo.EXPECT().GetByIDForUpdate(gomock.Any(), ended.ID).Return(ended, nil)

		cancelled, err := service.CancelBid(context.Background(), bid.ID, bidderID)
		assert.ErrorIs(t, err, domain.ErrInvalidOperation)
		assert.Nil(t, cancelled)
	})
}

func TestCloseAuction(t *testing.T) {
	endedAuction := func() *domain.Listing {
		listing := activeAuction(uuid.New())
		past := time.Now().Add(-time.Minute)
		listing.AuctionEnd = &past
		return listing
	}

	t.Run("Winner moves the listing to pending payment", func(t *testing.T) {
		service, listingRepo, bidRepo := NewMock(t)
		listing := endedAuction()
		winner := &domain.Bid{
			ID:        uuid.New(),
			ListingID: listing.ID,
			BidderID:  uuid.New(),
			Amount:    900,
			Status:    domain.BidActive,
			IsWinning: true,
		}

		listingRepo.EXPECT().GetByIDForUpdate(gomock.Any(), listing.ID).Return(listing, nil)
		bidRepo.EXPECT().FindHighestActive(gomock.Any(), listing.ID).Return(winner, nil)
		listingRepo.EXPECT().ClaimStatus(gomock.Any(), listing.ID,
			domain.ListingActive, domain.ListingPendingPayment, &winner.BidderID).Return(true, nil)
		bidRepo.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, b *domain.Bid) (*domain.Bid, error) {
				assert.Equal(t, domain.BidWon, b.Status)
				return b, nil
			})
		bidRepo.EXPECT().ResolveLost(gomock.Any(), listing.ID, &winner.ID).Return(nil)

		closed, err := service.CloseAuction(context.Background(), listing.ID)
		assert.NoError(t, err)
		assert.Equal(t, domain.ListingPendingPayment, closed.Status)
		assert.Equal(t, &winner.BidderID, closed.WinnerID)
	})

	t.Run("No bids cancels the listing", func(t *testing.T) {
		service, listingRepo, bidRepo := NewMock(t)
		listing := endedAuction()

		listingRepo.EXPECT().GetByIDForUpdate(gomock.Any(), listing.ID).Return(listing, nil)
		bidRepo.EXPECT().FindHighestActive(gomock.Any(), listing.ID).Return(nil, nil)
		listingRepo.EXPECT().ClaimStatus(gomock.Any(), listing.ID,
			domain.ListingActive, domain.ListingCancelled, nil).Return(true, nil)
		bidRepo.EXPECT().ResolveLost(gomock.Any(), listing.ID, nil).Return(nil)

		closed, err := service.CloseAuction(context.Background(), listing.ID)
		assert.NoError(t, err)
		assert.Equal(t, domain.ListingCancelled, closed.Status)
	})

	t.Run("Reserve price unmet cancels and loses all bids", func(t *testing.T) {
		service, listingRepo, bidRepo := NewMock(t)
		listing := endedAuction()
		reserve := 1000.0
		listing.ReservePrice = &reserve
		highest := &domain.Bid{ID: uuid.New(), ListingID: listing.ID, Amount: 900, Status: domain.BidActive}

		listingRepo.EXPECT().GetByIDForUpdate(gomock.Any(), listing.ID).Return(listing, nil)
		bidRepo.EXPECT().FindHighestActive(gomock.Any(), listing.ID).Return(highest, nil)
		listingRepo.EXPECT().ClaimStatus(gomock.Any(), listing.ID,
			domain.ListingActive, domain.ListingCancelled, nil).Return(true, nil)
		bidRepo.EXPECT().ResolveLost(gomock.Any(), listing.ID, nil).Return(nil)

		closed, err := service.CloseAuction(context.Background(), listing.ID)
		assert.NoError(t, err)
		assert.Equal(t, domain.ListingCancelled, closed.Status)
	})

	t.Run("Already closed listing is returned as is", func(t *testing.T) {
		service, listingRepo, _ := NewMock(t)
		listing := endedAuction()
		listing.Status = domain.ListingSold

		listingRepo.EXPECT().GetByIDForUpdate(gomock.Any(), listing.ID).Return(listing, nil)

		closed, err := service.CloseAuction(context.Background(), listing.ID)
		assert.NoError(t, err)
		assert.Equal(t, domain.ListingSold, closed.Status)
	})

	t.Run("Closing before the end time is rejected", func(t *testing.T) {
		service, listingRepo, _ := NewMock(t)
		listing := activeAuction(uuid.New())

		listingRepo.EXPECT().GetByIDForUpdate(gomock.Any(), listing.ID).Return(listing, nil)

		closed, err := service.CloseAuction(context.Background(), listing.ID)
		assert.ErrorIs(t, err, domain.ErrInvalidState)
		assert.Nil(t, closed)
	})
}

func TestCloseExpiredAuctions(t *testing.T) {
	service, listingRepo, bidRepo := NewMock(t)
	listing := activeAuction(uuid.New())
	past := time.Now().Add(-time.Minute)
	listing.AuctionEnd = &past

	listingRepo.EXPECT().FindExpiredAuctions(gomock.Any(), gomock.Any(), closeBatchSize).
		Return([]domain.Listing{*listing}, nil)
	listingRepo.EXPECT().GetByIDForUpdate(gomock.Any(), listing.ID).Return(listing, nil)
	bidRepo.EXPECT().FindHighestActive(gomock.Any(), listing.ID).Return(nil, nil)
	listingRepo.EXPECT().ClaimStatus(gomock.Any(), listing.ID,
		domain.ListingActive, domain.ListingCancelled, nil).Return(true, nil)
	bidRepo.EXPECT().ResolveLost(gomock.Any(), listing.ID, nil).Return(nil)

	closed, err := service.CloseExpiredAuctions(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, closed)
}
