// Package ledgerclient provides the settlement engine's view of the credit
// ledger. The local client calls the in-process service directly; the HTTP
// client talks to a remote credit service with the same semantics.
package ledgerclient

import (
	"context"

	"github.com/google/uuid"

	"github.com/GlebRadaev/carbonledger/internal/domain"
	"github.com/GlebRadaev/carbonledger/internal/service/ledgerservice"
)

type Local struct {
	service *ledgerservice.Service
}

func NewLocal(service *ledgerservice.Service) *Local {
	return &Local{service: service}
}

func (c *Local) Credit(ctx context.Context, req domain.LedgerEntryRequest) (*domain.Account, error) {
	return c.service.Credit(ctx, req)
}

func (c *Local) Debit(ctx context.Context, req domain.LedgerEntryRequest) (*domain.Account, error) {
	return c.service.Debit(ctx, req)
}

func (c *Local) GetBalance(ctx context.Context, userID uuid.UUID) (*domain.Account, error) {
	return c.service.GetBalance(ctx, userID)
}
