package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrAccountNotFound     = errors.New("credit account not found")
	ErrListingNotFound     = errors.New("listing not found")
	ErrBidNotFound         = errors.New("bid not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrDuplicateAccount    = errors.New("credit account already exists")
	ErrInvalidOperation    = errors.New("invalid operation")
	ErrInvalidState        = errors.New("operation not allowed in current state")
	ErrUnauthorized        = errors.New("actor does not own the resource")
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")
)

// InsufficientFundsError carries the shortfall so a client can self-correct
// without another round trip.
type InsufficientFundsError struct {
	Requested float64
	Available float64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: requested %.2f, available %.2f", e.Requested, e.Available)
}

// InvalidBidError names the minimum acceptable amount.
type InvalidBidError struct {
	Minimum float64
	Reason  string
}

func (e *InvalidBidError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid bid: %s", e.Reason)
	}
	return fmt.Sprintf("invalid bid: amount must be at least %.2f", e.Minimum)
}

// PartialSettlementError marks a settlement that failed after an irreversible
// step. It is never swallowed: the coordinator returns it with the completed
// step named so reconciliation can compensate.
type PartialSettlementError struct {
	ListingID uuid.UUID
	BuyerID   uuid.UUID
	SellerID  uuid.UUID
	Amount    float64
	Completed string
	Failed    string
	Err       error
}

func (e *PartialSettlementError) Error() string {
	return fmt.Sprintf("partial settlement for listing %s: step %q succeeded, step %q failed: %v",
		e.ListingID, e.Completed, e.Failed, e.Err)
}

func (e *PartialSettlementError) Unwrap() error { return e.Err }
