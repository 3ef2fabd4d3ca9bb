package market

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"

	"github.com/GlebRadaev/carbonledger/internal/domain"
	"github.com/GlebRadaev/carbonledger/internal/dto"
)

func NewMock(t *testing.T) (*MarketHandler, *MockListingService, *MockAuctionService, *MockSettlementService) {
	ctrl := gomock.NewController(t)
	listings := NewMockListingService(ctrl)
	auctions := NewMockAuctionService(ctrl)
	settlements := NewMockSettlementService(ctrl)
	handler := New(listings, auctions, settlements)
	defer ctrl.Finish()
	return handler, listings, auctions, settlements
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestCreateListingHandler(t *testing.T) {
	handler, listings, _, _ := NewMock(t)
	sellerID := uuid.New()

	tests := []struct {
		name         string
		body         string
		prepareMock  func()
		expectedCode int
	}{
		{
			name: "Listing created",
			body: fmt.Sprintf(`{"sellerId":%q,"title":"Bike credits","co2Amount":50,"type":"FIXED_PRICE","pricePerKg":12.5}`, sellerID),
			prepareMock: func() {
				listings.EXPECT().
					Create(gomock.Any(), gomock.Any()).
					Return(&domain.Listing{ID: uuid.New(), SellerID: sellerID, Status: domain.ListingDraft}, nil)
			},
			expectedCode: http.StatusCreated,
		},
		{
			name: "Validation failure",
			body: fmt.Sprintf(`{"sellerId":%q,"title":"Bike credits","co2Amount":-1,"type":"FIXED_PRICE"}`, sellerID),
			prepareMock: func() {
				listings.EXPECT().
					Create(gomock.Any(), gomock.Any()).
					Return(nil, domain.ErrInvalidOperation)
			},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Missing seller id",
			body:         `{"title":"Bike credits","co2Amount":50,"type":"FIXED_PRICE"}`,
			prepareMock:  func() {},
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			r := httptest.NewRequest(http.MethodPost, "/api/market/listings", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()
			handler.CreateListing(w, r)
			assert.Equal(t, tt.expectedCode, w.Code)
		})
	}
}

func TestPlaceBidHandler(t *testing.T) {
	handler, _, auctions, _ := NewMock(t)
	listingID := uuid.New()
	bidderID := uuid.New()

	tests := []struct {
		name         string
		body         string
		prepareMock  func()
		expectedCode int
	}{
		{
			name: "Bid accepted",
			body: fmt.Sprintf(`{"bidderId":%q,"amount":800}`, bidderID),
			prepareMock: func() {
				auctions.EXPECT().
					PlaceBid(gomock.Any(), listingID, bidderID, 800.0).
					Return(&domain.Bid{ListingID: listingID, BidderID: bidderID, Amount: 800, Status: domain.BidActive, IsWinning: true}, nil)
			},
			expectedCode: http.StatusCreated,
		},
		{
			name: "Bid below minimum",
			body: fmt.Sprintf(`{"bidderId":%q,"amount":500}`, bidderID),
			prepareMock: func() {
				auctions.EXPECT().
					PlaceBid(gomock.Any(), listingID, bidderID, 500.0).
					Return(nil, &domain.InvalidBidError{Minimum: 800})
			},
			expectedCode: http.StatusUnprocessableEntity,
		},
		{
			name: "Auction already closed",
			body: fmt.Sprintf(`{"bidderId":%q,"amount":800}`, bidderID),
			prepareMock: func() {
				auctions.EXPECT().
					PlaceBid(gomock.Any(), listingID, bidderID, 800.0).
					Return(nil, domain.ErrInvalidState)
			},
			expectedCode: http.StatusConflict,
		},
		{
			name:         "Missing bidder id",
			body:         `{"amount":800}`,
			prepareMock:  func() {},
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			r := httptest.NewRequest(http.MethodPost, "/api/market/listings/"+listingID.String()+"/bids", bytes.NewBufferString(tt.body))
			r = withURLParam(r, "listingID", listingID.String())
			w := httptest.NewRecorder()
			handler.PlaceBid(w, r)
			assert.Equal(t, tt.expectedCode, w.Code)

			if tt.expectedCode == http.StatusUnprocessableEntity {
				var body map[string]interface{}
				_ = json.NewDecoder(w.Body).Decode(&body)
				assert.Equal(t, 800.0, body["minimumBid"])
			}
		})
	}
}

func TestPurchaseHandler(t *testing.T) {
	handler, _, _, settlements := NewMock(t)
	listingID := uuid.New()
	buyerID := uuid.New()

	tests := []struct {
		name         string
		body         string
		prepareMock  func()
		expectedCode int
	}{
		{
			name: "Purchase settled",
			body: fmt.Sprintf(`{"buyerId":%q,"amountKg":10}`, buyerID),
			prepareMock: func() {
				settlements.EXPECT().
					PurchaseFixedPrice(gomock.Any(), listingID, buyerID, 10.0).
					Return(&domain.MarketTransaction{
						ListingID:  listingID,
						BuyerID:    buyerID,
						Type:       domain.MarketPurchase,
						CO2Amount:  10,
						PricePerKg: 50,
						TotalPrice: 500,
					}, nil)
			},
			expectedCode: http.StatusCreated,
		},
		{
			name: "Buyer cannot cover the purchase",
			body: fmt.Sprintf(`{"buyerId":%q,"amountKg":10}`, buyerID),
			prepareMock: func() {
				settlements.EXPECT().
					PurchaseFixedPrice(gomock.Any(), listingID, buyerID, 10.0).
					Return(nil, &domain.InsufficientFundsError{Requested: 10, Available: 2})
			},
			expectedCode: http.StatusPaymentRequired,
		},
		{
			name: "Listing not found",
			body: fmt.Sprintf(`{"buyerId":%q,"amountKg":10}`, buyerID),
			prepareMock: func() {
				settlements.EXPECT().
					PurchaseFixedPrice(gomock.Any(), listingID, buyerID, 10.0).
					Return(nil, domain.ErrListingNotFound)
			},
			expectedCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			r := httptest.NewRequest(http.MethodPost, "/api/market/listings/"+listingID.String()+"/purchase", bytes.NewBufferString(tt.body))
			r = withURLParam(r, "listingID", listingID.String())
			w := httptest.NewRecorder()
			handler.Purchase(w, r)
			assert.Equal(t, tt.expectedCode, w.Code)

			if tt.expectedCode == http.StatusCreated {
				var body dto.MarketTransactionResponseDTO
				_ = json.NewDecoder(w.Body).Decode(&body)
				assert.Equal(t, 500.0, body.TotalPrice)
			}
		})
	}
}

func TestGetListingHandler(t *testing.T) {
	handler, listings, _, _ := NewMock(t)
	listingID := uuid.New()

	t.Run("Listing returned", func(t *testing.T) {
		listings.EXPECT().
			GetByID(gomock.Any(), listingID).
			Return(&domain.Listing{ID: listingID, Title: "Train credits", Status: domain.ListingActive}, nil)

		r := httptest.NewRequest(http.MethodGet, "/api/market/listings/"+listingID.String(), nil)
		r = withURLParam(r, "listingID", listingID.String())
		w := httptest.NewRecorder()
		handler.GetListing(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		var body dto.ListingResponseDTO
		_ = json.NewDecoder(w.Body).Decode(&body)
		assert.Equal(t, "Train credits", body.Title)
	})

	t.Run("Unknown listing", func(t *testing.T) {
		listings.EXPECT().
			GetByID(gomock.Any(), listingID).
			Return(nil, domain.ErrListingNotFound)

		r := httptest.NewRequest(http.MethodGet, "/api/market/listings/"+listingID.String(), nil)
		r = withURLParam(r, "listingID", listingID.String())
		w := httptest.NewRecorder()
		handler.GetListing(w, r)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Invalid listing id", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/market/listings/abc", nil)
		r = withURLParam(r, "listingID", "abc")
		w := httptest.NewRecorder()
		handler.GetListing(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCancelBidHandler(t *testing.T) {
	handler, _, auctions, _ := NewMock(t)
	bidID := uuid.New()
	bidderID := uuid.New()

	t.Run("Bid cancelled", func(t *testing.T) {
		auctions.EXPECT().
			CancelBid(gomock.Any(), bidID, bidderID).
			Return(&domain.Bid{ID: bidID, BidderID: bidderID, Status: domain.BidCancelled}, nil)

		body := fmt.Sprintf(`{"bidderId":%q}`, bidderID)
		r := httptest.NewRequest(http.MethodPost, "/api/market/bids/"+bidID.String()+"/cancel", bytes.NewBufferString(body))
		r = withURLParam(r, "bidID", bidID.String())
		w := httptest.NewRecorder()
		handler.CancelBid(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Not the bid owner", func(t *testing.T) {
		auctions.EXPECT().
			CancelBid(gomock.Any(), bidID, bidderID).
			Return(nil, domain.ErrUnauthorized)

		body := fmt.Sprintf(`{"bidderId":%q}`, bidderID)
		r := httptest.NewRequest(http.MethodPost, "/api/market/bids/"+bidID.String()+"/cancel", bytes.NewBufferString(body))
		r = withURLParam(r, "bidID", bidID.String())
		w := httptest.NewRecorder()
		handler.CancelBid(w, r)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestGetSellerRevenueHandler(t *testing.T) {
	handler, _, _, settlements := NewMock(t)
	sellerID := uuid.New()

	settlements.EXPECT().
		GetSellerRevenue(gomock.Any(), sellerID).
		Return(1250.0, nil)

	r := httptest.NewRequest(http.MethodGet, "/api/market/sellers/"+sellerID.String()+"/revenue", nil)
	r = withURLParam(r, "userID", sellerID.String())
	w := httptest.NewRecorder()
	handler.GetSellerRevenue(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]float64
	_ = json.NewDecoder(w.Body).Decode(&body)
	assert.Equal(t, 1250.0, body["totalRevenue"])
}
