package domain

import "github.com/google/uuid"

// LedgerEntryRequest describes one balance mutation. The same shape travels
// over the ledger client boundary, so related refs double as the retry
// idempotency key.
type LedgerEntryRequest struct {
	UserID           uuid.UUID       `json:"userId"`
	Amount           float64         `json:"amount"`
	Type             TransactionType `json:"type"`
	RelatedUserID    *uuid.UUID      `json:"relatedUserId,omitempty"`
	RelatedTripID    *uuid.UUID      `json:"relatedTripId,omitempty"`
	RelatedListingID *uuid.UUID      `json:"relatedListingId,omitempty"`
	Description      string          `json:"description,omitempty"`
}
