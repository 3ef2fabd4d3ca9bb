package domain

import (
	"time"

	"github.com/google/uuid"
)

type TransactionType string

const (
	TransactionEarned      TransactionType = "EARNED_FROM_TRIP"
	TransactionPurchased   TransactionType = "PURCHASED_FROM_MARKETPLACE"
	TransactionSold        TransactionType = "SOLD_ON_MARKETPLACE"
	TransactionTransferIn  TransactionType = "TRANSFERRED_IN"
	TransactionTransferOut TransactionType = "TRANSFERRED_OUT"
	TransactionAdjustment  TransactionType = "ADJUSTMENT"
)

// Credits returns true for types that increase the balance.
func (t TransactionType) Credits() bool {
	switch t {
	case TransactionEarned, TransactionSold, TransactionTransferIn:
		return true
	}
	return false
}

type ListingType string

const (
	ListingFixedPrice ListingType = "FIXED_PRICE"
	ListingAuction    ListingType = "AUCTION"
)

type ListingStatus string

const (
	ListingDraft          ListingStatus = "DRAFT"
	ListingActive         ListingStatus = "ACTIVE"
	ListingPendingPayment ListingStatus = "PENDING_PAYMENT"
	ListingSold           ListingStatus = "SOLD"
	ListingExpired        ListingStatus = "EXPIRED"
	ListingCancelled      ListingStatus = "CANCELLED"
)

func (s ListingStatus) Terminal() bool {
	return s == ListingSold || s == ListingExpired || s == ListingCancelled
}

type BidStatus string

const (
	BidActive    BidStatus = "ACTIVE"
	BidOutbid    BidStatus = "OUTBID"
	BidWon       BidStatus = "WON"
	BidLost      BidStatus = "LOST"
	BidCancelled BidStatus = "CANCELLED"
)

type Account struct {
	ID                  uuid.UUID `db:"id"`
	UserID              uuid.UUID `db:"user_id"`
	Balance             float64   `db:"balance"`
	TotalEarned         float64   `db:"total_earned"`
	TotalSpent          float64   `db:"total_spent"`
	TotalTransferredIn  float64   `db:"total_transferred_in"`
	TotalTransferredOut float64   `db:"total_transferred_out"`
	CreatedAt           time.Time `db:"created_at"`
	UpdatedAt           time.Time `db:"updated_at"`
}

// Apply mutates the balance and the running total matching the type.
// Amount is always positive; the type carries the sign.
func (a *Account) Apply(t TransactionType, amount float64) {
	switch t {
	case TransactionEarned, TransactionSold:
		a.Balance += amount
		a.TotalEarned += amount
	case TransactionTransferIn:
		a.Balance += amount
		a.TotalTransferredIn += amount
	case TransactionPurchased:
		a.Balance -= amount
		a.TotalSpent += amount
	case TransactionTransferOut:
		a.Balance -= amount
		a.TotalTransferredOut += amount
	case TransactionAdjustment:
		a.Balance -= amount
		a.TotalSpent += amount
	}
}

type LedgerTransaction struct {
	ID               uuid.UUID       `db:"id"`
	UserID           uuid.UUID       `db:"user_id"`
	Type             TransactionType `db:"transaction_type"`
	Amount           float64         `db:"amount"`
	BalanceBefore    float64         `db:"balance_before"`
	BalanceAfter     float64         `db:"balance_after"`
	RelatedUserID    *uuid.UUID      `db:"related_user_id"`
	RelatedTripID    *uuid.UUID      `db:"related_trip_id"`
	RelatedListingID *uuid.UUID      `db:"related_listing_id"`
	Description      string          `db:"description"`
	CreatedAt        time.Time       `db:"created_at"`
}

type Listing struct {
	ID              uuid.UUID     `db:"id"`
	SellerID        uuid.UUID     `db:"seller_id"`
	Title           string        `db:"title"`
	CO2Amount       float64       `db:"co2_amount"`
	AvailableAmount float64       `db:"available_amount"`
	Type            ListingType   `db:"listing_type"`
	Status          ListingStatus `db:"status"`
	PricePerKg      *float64      `db:"price_per_kg"`
	StartingBid     *float64      `db:"starting_bid"`
	ReservePrice    *float64      `db:"reserve_price"`
	AuctionStart    *time.Time    `db:"auction_start_time"`
	AuctionEnd      *time.Time    `db:"auction_end_time"`
	WinnerID        *uuid.UUID    `db:"winner_id"`
	ExpiresAt       *time.Time    `db:"expires_at"`
	CreatedAt       time.Time     `db:"created_at"`
	UpdatedAt       time.Time     `db:"updated_at"`
}

func (l *Listing) AuctionEnded(now time.Time) bool {
	return l.AuctionEnd != nil && !now.Before(*l.AuctionEnd)
}

func (l *Listing) AuctionStarted(now time.Time) bool {
	return l.AuctionStart == nil || !now.Before(*l.AuctionStart)
}

func (l *Listing) Expired(now time.Time) bool {
	return l.ExpiresAt != nil && now.After(*l.ExpiresAt)
}

type Bid struct {
	ID        uuid.UUID `db:"id"`
	ListingID uuid.UUID `db:"listing_id"`
	BidderID  uuid.UUID `db:"bidder_id"`
	Amount    float64   `db:"amount"`
	Status    BidStatus `db:"status"`
	IsWinning bool      `db:"is_winning"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// MarketTransaction records one marketplace settlement. Distinct from the
// ledger transaction log: price here is denominated in the listing currency,
// while the ledger moves credit kilograms.
type MarketTransaction struct {
	ID         uuid.UUID `db:"id"`
	ListingID  uuid.UUID `db:"listing_id"`
	BuyerID    uuid.UUID `db:"buyer_id"`
	SellerID   uuid.UUID `db:"seller_id"`
	Type       string    `db:"transaction_type"`
	CO2Amount  float64   `db:"co2_amount"`
	PricePerKg float64   `db:"price_per_kg"`
	TotalPrice float64   `db:"total_price"`
	CreatedAt  time.Time `db:"created_at"`
}

const (
	MarketPurchase   = "PURCHASE"
	MarketAuctionWin = "AUCTION_WIN"
)

type Statistics struct {
	TotalAccounts    int     `db:"total_accounts"`
	TotalCredits     float64 `db:"total_credits"`
	TotalEarned      float64 `db:"total_earned"`
	TotalSpent       float64 `db:"total_spent"`
	TotalTransferred float64 `db:"total_transferred"`
	AverageBalance   float64 `db:"average_balance"`
}
