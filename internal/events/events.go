package events

import (
	"time"

	"github.com/google/uuid"
)

// Routing keys carried in every stream entry. Consumers filter on these.
const (
	KeyCreditIssued        = "credit.issued"
	KeyCreditPurchased     = "credit.purchased"
	KeyListingCreated      = "listing.created"
	KeyListingSold         = "listing.sold"
	KeyVerificationApprove = "verification.approved"
	KeyCertificateRevoked  = "certificate.revoked"
)

type CreditIssued struct {
	UserID        uuid.UUID  `json:"userId"`
	Amount        float64    `json:"amount"`
	Type          string     `json:"type"`
	RelatedTripID *uuid.UUID `json:"relatedTripId,omitempty"`
	Description   string     `json:"description,omitempty"`
}

type CreditPurchased struct {
	ListingID  uuid.UUID `json:"listingId"`
	BuyerID    uuid.UUID `json:"buyerId"`
	SellerID   uuid.UUID `json:"sellerId"`
	CO2Amount  float64   `json:"co2Amount"`
	TotalPrice float64   `json:"totalPrice"`
}

type ListingCreated struct {
	ListingID uuid.UUID `json:"listingId"`
	SellerID  uuid.UUID `json:"sellerId"`
	Type      string    `json:"type"`
	CO2Amount float64   `json:"co2Amount"`
}

type ListingSold struct {
	ListingID uuid.UUID `json:"listingId"`
	SellerID  uuid.UUID `json:"sellerId"`
	BuyerID   uuid.UUID `json:"buyerId"`
}

// VerificationApproved arrives from the trip verification pipeline. UserID
// and TripID may come as bare numeric identifiers from legacy publishers,
// NormalizeID maps those onto the UUID keyspace.
type VerificationApproved struct {
	UserID        string    `json:"userId"`
	TripID        string    `json:"tripId"`
	CreditsEarned float64   `json:"creditsEarned"`
	ApprovedAt    time.Time `json:"approvedAt"`
}

type CertificateRevoked struct {
	CertificateID string  `json:"certificateId"`
	UserID        string  `json:"userId"`
	Amount        float64 `json:"amount"`
	Reason        string  `json:"reason,omitempty"`
}
