package ledgerclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GlebRadaev/carbonledger/internal/domain"
	"github.com/GlebRadaev/carbonledger/internal/dto"
	"github.com/GlebRadaev/carbonledger/pkg/clients"
)

type HTTPClientI interface {
	Get(url string, headers http.Header) (int, []byte, http.Header, error)
	Post(url string, headers http.Header, body []byte) (int, []byte, http.Header, error)
}

// HTTP talks to a remote credit service. The related refs inside the request
// body are the remote side's idempotency keys, so resending after a timeout
// is safe.
type HTTP struct {
	baseURL string
	client  HTTPClientI
}

func NewHTTP(baseURL string) *HTTP {
	return &HTTP{
		baseURL: baseURL,
		client:  clients.NewHTTPClient(),
	}
}

func (c *HTTP) Credit(ctx context.Context, req domain.LedgerEntryRequest) (*domain.Account, error) {
	return c.post(ctx, "/api/ledger/credit", req)
}

func (c *HTTP) Debit(ctx context.Context, req domain.LedgerEntryRequest) (*domain.Account, error) {
	return c.post(ctx, "/api/ledger/debit", req)
}

func (c *HTTP) GetBalance(ctx context.Context, userID uuid.UUID) (*domain.Account, error) {
	url := fmt.Sprintf("%s/api/ledger/balance/%s", c.baseURL, userID)
	status, body, _, err := c.client.Get(url, nil)
	if err != nil {
		zap.L().Error("credit service unreachable", zap.String("url", url), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	return c.decode(status, body)
}

func (c *HTTP) post(ctx context.Context, path string, req domain.LedgerEntryRequest) (*domain.Account, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	headers := http.Header{}
	headers.Set("Content-Type", "application/json")

	url := c.baseURL + path
	status, body, _, err := c.client.Post(url, headers, payload)
	if err != nil {
		zap.L().Error("credit service unreachable", zap.String("url", url), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	return c.decode(status, body)
}

func (c *HTTP) decode(status int, body []byte) (*domain.Account, error) {
	switch {
	case status == http.StatusOK || status == http.StatusCreated:
		var resp dto.AccountResponseDTO
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("can't decode credit service response: %w", err)
		}
		return &domain.Account{
			UserID:              resp.UserID,
			Balance:             resp.Balance,
			TotalEarned:         resp.TotalEarned,
			TotalSpent:          resp.TotalSpent,
			TotalTransferredIn:  resp.TotalTransferredIn,
			TotalTransferredOut: resp.TotalTransferredOut,
			UpdatedAt:           resp.UpdatedAt,
		}, nil
	case status == http.StatusPaymentRequired:
		var resp struct {
			Requested float64 `json:"requested"`
			Available float64 `json:"available"`
		}
		// Body decode failure still yields the right error type.
		_ = json.Unmarshal(body, &resp)
		return nil, &domain.InsufficientFundsError{Requested: resp.Requested, Available: resp.Available}
	case status == http.StatusNotFound:
		return nil, domain.ErrAccountNotFound
	case status >= http.StatusInternalServerError:
		return nil, fmt.Errorf("%w: credit service returned %d", domain.ErrUpstreamUnavailable, status)
	default:
		return nil, fmt.Errorf("%w: credit service returned %d", domain.ErrInvalidOperation, status)
	}
}
