package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateListingRequestDTO struct {
	SellerID     uuid.UUID  `json:"sellerId"`
	Title        string     `json:"title"`
	CO2Amount    float64    `json:"co2Amount"`
	Type         string     `json:"type"`
	PricePerKg   *float64   `json:"pricePerKg,omitempty"`
	StartingBid  *float64   `json:"startingBid,omitempty"`
	ReservePrice *float64   `json:"reservePrice,omitempty"`
	AuctionStart *time.Time `json:"auctionStartTime,omitempty"`
	AuctionEnd   *time.Time `json:"auctionEndTime,omitempty"`
	ExpiresAt    *time.Time `json:"expiresAt,omitempty"`
}

type ListingResponseDTO struct {
	ID              uuid.UUID  `json:"id"`
	SellerID        uuid.UUID  `json:"sellerId"`
	Title           string     `json:"title,omitempty"`
	CO2Amount       float64    `json:"co2Amount"`
	AvailableAmount float64    `json:"availableAmount"`
	Type            string     `json:"type"`
	Status          string     `json:"status"`
	PricePerKg      *float64   `json:"pricePerKg,omitempty"`
	StartingBid     *float64   `json:"startingBid,omitempty"`
	ReservePrice    *float64   `json:"reservePrice,omitempty"`
	AuctionStart    *time.Time `json:"auctionStartTime,omitempty"`
	AuctionEnd      *time.Time `json:"auctionEndTime,omitempty"`
	WinnerID        *uuid.UUID `json:"winnerId,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

type PlaceBidRequestDTO struct {
	BidderID uuid.UUID `json:"bidderId"`
	Amount   float64   `json:"amount"`
}

type BidResponseDTO struct {
	ID        uuid.UUID `json:"id"`
	ListingID uuid.UUID `json:"listingId"`
	BidderID  uuid.UUID `json:"bidderId"`
	Amount    float64   `json:"amount"`
	Status    string    `json:"status"`
	IsWinning bool      `json:"isWinning"`
	CreatedAt time.Time `json:"createdAt"`
}

type PurchaseRequestDTO struct {
	BuyerID  uuid.UUID `json:"buyerId"`
	AmountKg float64   `json:"amountKg"`
}

type MarketTransactionResponseDTO struct {
	ID         uuid.UUID `json:"id"`
	ListingID  uuid.UUID `json:"listingId"`
	BuyerID    uuid.UUID `json:"buyerId"`
	SellerID   uuid.UUID `json:"sellerId"`
	Type       string    `json:"type"`
	CO2Amount  float64   `json:"co2Amount"`
	PricePerKg float64   `json:"pricePerKg"`
	TotalPrice float64   `json:"totalPrice"`
	CreatedAt  time.Time `json:"createdAt"`
}
