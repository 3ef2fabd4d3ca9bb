package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateAccountRequestDTO struct {
	UserID uuid.UUID `json:"userId"`
}

type AccountResponseDTO struct {
	UserID              uuid.UUID `json:"userId"`
	Balance             float64   `json:"balance"`
	TotalEarned         float64   `json:"totalEarned"`
	TotalSpent          float64   `json:"totalSpent"`
	TotalTransferredIn  float64   `json:"totalTransferredIn"`
	TotalTransferredOut float64   `json:"totalTransferredOut"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

type TransferRequestDTO struct {
	FromUserID  uuid.UUID `json:"fromUserId"`
	ToUserID    uuid.UUID `json:"toUserId"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description,omitempty"`
}

type TransactionResponseDTO struct {
	ID               uuid.UUID  `json:"id"`
	UserID           uuid.UUID  `json:"userId"`
	Type             string     `json:"type"`
	Amount           float64    `json:"amount"`
	BalanceBefore    float64    `json:"balanceBefore"`
	BalanceAfter     float64    `json:"balanceAfter"`
	RelatedUserID    *uuid.UUID `json:"relatedUserId,omitempty"`
	RelatedTripID    *uuid.UUID `json:"relatedTripId,omitempty"`
	RelatedListingID *uuid.UUID `json:"relatedListingId,omitempty"`
	Description      string     `json:"description,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
}

type StatisticsResponseDTO struct {
	TotalAccounts    int     `json:"totalAccounts"`
	TotalCredits     float64 `json:"totalCredits"`
	TotalEarned      float64 `json:"totalEarned"`
	TotalSpent       float64 `json:"totalSpent"`
	TotalTransferred float64 `json:"totalTransferred"`
	AverageBalance   float64 `json:"averageBalance"`
}
