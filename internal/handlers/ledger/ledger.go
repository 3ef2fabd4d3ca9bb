package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/GlebRadaev/carbonledger/internal/domain"
	"github.com/GlebRadaev/carbonledger/internal/dto"
	"github.com/GlebRadaev/carbonledger/internal/service/ledgerservice"
	"github.com/GlebRadaev/carbonledger/pkg/utils"
)

const (
	defaultHistoryLimit = 50
	defaultRecentLimit  = 20
)

type Service interface {
	CreateAccount(ctx context.Context, userID uuid.UUID) (*domain.Account, error)
	Credit(ctx context.Context, req domain.LedgerEntryRequest) (*domain.Account, error)
	Debit(ctx context.Context, req domain.LedgerEntryRequest) (*domain.Account, error)
	Transfer(ctx context.Context, fromUserID, toUserID uuid.UUID, amount float64, description string) (*ledgerservice.TransferResult, error)
	GetBalance(ctx context.Context, userID uuid.UUID) (*domain.Account, error)
	GetStatistics(ctx context.Context) (*domain.Statistics, error)
	GetTransactions(ctx context.Context, userID uuid.UUID, limit int) ([]domain.LedgerTransaction, error)
	GetRecentTransactions(ctx context.Context, limit int) ([]domain.LedgerTransaction, error)
}

type LedgerHandler struct {
	ledgerService Service
}

func New(ledgerService Service) *LedgerHandler {
	return &LedgerHandler{
		ledgerService: ledgerService,
	}
}

func (h *LedgerHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAccountRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == uuid.Nil {
		utils.RespondWithError(w, http.StatusBadRequest, "userId is required")
		return
	}

	account, err := h.ledgerService.CreateAccount(r.Context(), req.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateAccount) {
			utils.RespondWithError(w, http.StatusConflict, err.Error())
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, toAccountDTO(account))
}

func (h *LedgerHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	account, err := h.ledgerService.GetBalance(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, toAccountDTO(account))
}

func (h *LedgerHandler) Credit(w http.ResponseWriter, r *http.Request) {
	h.applyEntry(w, r, h.ledgerService.Credit)
}

func (h *LedgerHandler) Debit(w http.ResponseWriter, r *http.Request) {
	h.applyEntry(w, r, h.ledgerService.Debit)
}

func (h *LedgerHandler) applyEntry(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, req domain.LedgerEntryRequest) (*domain.Account, error)) {
	var req domain.LedgerEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == uuid.Nil {
		utils.RespondWithError(w, http.StatusBadRequest, "userId is required")
		return
	}

	account, err := apply(r.Context(), req)
	if err != nil {
		respondLedgerError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, toAccountDTO(account))
}

func (h *LedgerHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req dto.TransferRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.ledgerService.Transfer(r.Context(), req.FromUserID, req.ToUserID, req.Amount, req.Description)
	if err != nil {
		respondLedgerError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"sender":   toAccountDTO(result.Sender),
		"receiver": toAccountDTO(result.Receiver),
	})
}

func (h *LedgerHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	transactions, err := h.ledgerService.GetTransactions(r.Context(), userID, limit)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch transactions")
		return
	}
	if len(transactions) == 0 {
		utils.RespondWithJSON(w, http.StatusNoContent, nil)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, toTransactionDTOs(transactions))
}

// GetRecentTransactions serves the cross-account activity feed.
func (h *LedgerHandler) GetRecentTransactions(w http.ResponseWriter, r *http.Request) {
	limit := defaultRecentLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	transactions, err := h.ledgerService.GetRecentTransactions(r.Context(), limit)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch transactions")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, toTransactionDTOs(transactions))
}

func toTransactionDTOs(transactions []domain.LedgerTransaction) []dto.TransactionResponseDTO {
	resp := make([]dto.TransactionResponseDTO, 0, len(transactions))
	for _, tx := range transactions {
		resp = append(resp, dto.TransactionResponseDTO{
			ID:               tx.ID,
			UserID:           tx.UserID,
			Type:             string(tx.Type),
			Amount:           tx.Amount,
			BalanceBefore:    tx.BalanceBefore,
			BalanceAfter:     tx.BalanceAfter,
			RelatedUserID:    tx.RelatedUserID,
			RelatedTripID:    tx.RelatedTripID,
			RelatedListingID: tx.RelatedListingID,
			Description:      tx.Description,
			CreatedAt:        tx.CreatedAt,
		})
	}
	return resp
}

func (h *LedgerHandler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.ledgerService.GetStatistics(r.Context())
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch statistics")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.StatisticsResponseDTO{
		TotalAccounts:    stats.TotalAccounts,
		TotalCredits:     stats.TotalCredits,
		TotalEarned:      stats.TotalEarned,
		TotalSpent:       stats.TotalSpent,
		TotalTransferred: stats.TotalTransferred,
		AverageBalance:   stats.AverageBalance,
	})
}

func respondLedgerError(w http.ResponseWriter, err error) {
	var insufficient *domain.InsufficientFundsError
	switch {
	case errors.As(err, &insufficient):
		utils.RespondWithJSON(w, http.StatusPaymentRequired, map[string]interface{}{
			"message":   insufficient.Error(),
			"requested": insufficient.Requested,
			"available": insufficient.Available,
		})
	case errors.Is(err, domain.ErrAccountNotFound):
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidOperation):
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func toAccountDTO(account *domain.Account) dto.AccountResponseDTO {
	return dto.AccountResponseDTO{
		UserID:              account.UserID,
		Balance:             account.Balance,
		TotalEarned:         account.TotalEarned,
		TotalSpent:          account.TotalSpent,
		TotalTransferredIn:  account.TotalTransferredIn,
		TotalTransferredOut: account.TotalTransferredOut,
		UpdatedAt:           account.UpdatedAt,
	}
}
