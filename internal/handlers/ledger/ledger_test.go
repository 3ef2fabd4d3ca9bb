package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
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

func NewMock(t *testing.T) (*LedgerHandler, *MockService) {
	ctrl := gomock.NewController(t)
	service := NewMockService(ctrl)
	handler := New(service)
	defer ctrl.Finish()
	return handler, service
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestCreateAccountHandler(t *testing.T) {
	handler, service := NewMock(t)
	userID := uuid.New()

	tests := []struct {
		name         string
		body         string
		prepareMock  func()
		expectedCode int
	}{
		{
			name: "Account created",
			body: fmt.Sprintf(`{"userId":%q}`, userID),
			prepareMock: func() {
				service.EXPECT().
					CreateAccount(gomock.Any(), userID).
					Return(&domain.Account{UserID: userID}, nil)
			},
			expectedCode: http.StatusCreated,
		},
		{
			name: "Duplicate account",
			body: fmt.Sprintf(`{"userId":%q}`, userID),
			prepareMock: func() {
				service.EXPECT().
					CreateAccount(gomock.Any(), userID).
					Return(nil, domain.ErrDuplicateAccount)
			},
			expectedCode: http.StatusConflict,
		},
		{
			name:         "Missing user id",
			body:         `{}`,
			prepareMock:  func() {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Malformed body",
			body:         `{`,
			prepareMock:  func() {},
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			r := httptest.NewRequest(http.MethodPost, "/api/ledger/accounts", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()
			handler.CreateAccount(w, r)
			assert.Equal(t, tt.expectedCode, w.Code)
		})
	}
}

func TestGetBalanceHandler(t *testing.T) {
	handler, service := NewMock(t)
	userID := uuid.New()

	tests := []struct {
		name         string
		userID       string
		prepareMock  func()
		expectedCode int
		expectedBody dto.AccountResponseDTO
	}{
		{
			name:   "Balance returned",
			userID: userID.String(),
			prepareMock: func() {
				service.EXPECT().
					GetBalance(gomock.Any(), userID).
					Return(&domain.Account{UserID: userID, Balance: 120.5, TotalEarned: 200}, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: dto.AccountResponseDTO{UserID: userID, Balance: 120.5, TotalEarned: 200},
		},
		{
			name:   "Unknown account",
			userID: userID.String(),
			prepareMock: func() {
				service.EXPECT().
					GetBalance(gomock.Any(), userID).
					Return(nil, domain.ErrAccountNotFound)
			},
			expectedCode: http.StatusNotFound,
		},
		{
			name:         "Invalid user id",
			userID:       "not-a-uuid",
			prepareMock:  func() {},
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			r := httptest.NewRequest(http.MethodGet, "/api/ledger/balance/"+tt.userID, nil)
			r = withURLParam(r, "userID", tt.userID)
			w := httptest.NewRecorder()
			handler.GetBalance(w, r)
			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedCode == http.StatusOK {
				var body dto.AccountResponseDTO
				_ = json.NewDecoder(w.Body).Decode(&body)
				assert.Equal(t, tt.expectedBody, body)
			}
		})
	}
}

func TestDebitHandler(t *testing.T) {
	handler, service := NewMock(t)
	userID := uuid.New()

	tests := []struct {
		name         string
		body         string
		prepareMock  func()
		expectedCode int
	}{
		{
			name: "Debit applied",
			body: fmt.Sprintf(`{"userId":%q,"type":"PURCHASED_FROM_MARKETPLACE","amount":40}`, userID),
			prepareMock: func() {
				service.EXPECT().
					Debit(gomock.Any(), gomock.Any()).
					Return(&domain.Account{UserID: userID, Balance: 60}, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name: "Insufficient funds",
			body: fmt.Sprintf(`{"userId":%q,"type":"PURCHASED_FROM_MARKETPLACE","amount":500}`, userID),
			prepareMock: func() {
				service.EXPECT().
					Debit(gomock.Any(), gomock.Any()).
					Return(nil, &domain.InsufficientFundsError{Requested: 500, Available: 100})
			},
			expectedCode: http.StatusPaymentRequired,
		},
		{
			name: "Invalid entry",
			body: fmt.Sprintf(`{"userId":%q,"type":"EARNED_FROM_TRIP","amount":40}`, userID),
			prepareMock: func() {
				service.EXPECT().
					Debit(gomock.Any(), gomock.Any()).
					Return(nil, domain.ErrInvalidOperation)
			},
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			r := httptest.NewRequest(http.MethodPost, "/api/ledger/debit", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()
			handler.Debit(w, r)
			assert.Equal(t, tt.expectedCode, w.Code)
		})
	}
}

func TestGetTransactionsHandler(t *testing.T) {
	handler, service := NewMock(t)
	userID := uuid.New()

	t.Run("History returned", func(t *testing.T) {
		service.EXPECT().
			GetTransactions(gomock.Any(), userID, 50).
			Return([]domain.LedgerTransaction{{UserID: userID, Amount: 25.5, Type: domain.TransactionEarned}}, nil)

		r := httptest.NewRequest(http.MethodGet, "/api/ledger/transactions/"+userID.String(), nil)
		r = withURLParam(r, "userID", userID.String())
		w := httptest.NewRecorder()
		handler.GetTransactions(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		var body []dto.TransactionResponseDTO
		_ = json.NewDecoder(w.Body).Decode(&body)
		assert.Len(t, body, 1)
		assert.Equal(t, 25.5, body[0].Amount)
	})

	t.Run("Empty history returns no content", func(t *testing.T) {
		service.EXPECT().
			GetTransactions(gomock.Any(), userID, 10).
			Return(nil, nil)

		r := httptest.NewRequest(http.MethodGet, "/api/ledger/transactions/"+userID.String()+"?limit=10", nil)
		r = withURLParam(r, "userID", userID.String())
		w := httptest.NewRecorder()
		handler.GetTransactions(w, r)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("Service failure", func(t *testing.T) {
		service.EXPECT().
			GetTransactions(gomock.Any(), userID, 50).
			Return(nil, errors.New("database error"))

		r := httptest.NewRequest(http.MethodGet, "/api/ledger/transactions/"+userID.String(), nil)
		r = withURLParam(r, "userID", userID.String())
		w := httptest.NewRecorder()
		handler.GetTransactions(w, r)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestGetStatisticsHandler(t *testing.T) {
	handler, service := NewMock(t)

	service.EXPECT().
		GetStatistics(gomock.Any()).
		Return(&domain.Statistics{TotalAccounts: 2, TotalCredits: 300}, nil)

	r := httptest.NewRequest(http.MethodGet, "/api/ledger/statistics", nil)
	w := httptest.NewRecorder()
	handler.GetStatistics(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	var body dto.StatisticsResponseDTO
	_ = json.NewDecoder(w.Body).Decode(&body)
	assert.Equal(t, 2, body.TotalAccounts)
	assert.Equal(t, 300.0, body.TotalCredits)
}
