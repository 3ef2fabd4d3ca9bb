package listingservice

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GlebRadaev/carbonledger/internal/domain"
	"github.com/GlebRadaev/carbonledger/internal/events"
	"github.com/GlebRadaev/carbonledger/internal/pg"
)

type ListingRepo interface {
	Create(ctx context.Context, listing *domain.Listing) (*domain.Listing, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Listing, error)
	ClaimStatus(ctx context.Context, id uuid.UUID, from, to domain.ListingStatus, winnerID *uuid.UUID) (bool, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, event interface{}) error
}

type Service struct {
	listingRepo ListingRepo
	txManager   pg.TXManager
	publisher   EventPublisher
	now         func() time.Time
}

func New(listingRepo ListingRepo, txManager pg.TXManager, publisher EventPublisher) *Service {
	return &Service{
		listingRepo: listingRepo,
		txManager:   txManager,
		publisher:   publisher,
		now:         time.Now,
	}
}

type CreateRequest struct {
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

// Create validates the pricing shape and stores the listing as DRAFT. The
// type decides which pricing fields are required; the other family must be
// absent.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*domain.Listing, error) {
	if req.CO2Amount <= 0 {
		return nil, fmt.Errorf("%w: co2 amount must be greater than 0", domain.ErrInvalidOperation)
	}

	listingType := domain.ListingType(req.Type)
	switch listingType {
	case domain.ListingFixedPrice:
		if req.PricePerKg == nil || *req.PricePerKg <= 0 {
			return nil, fmt.Errorf("%w: fixed price listing requires a positive price per kg", domain.ErrInvalidOperation)
		}
		if req.StartingBid != nil || req.ReservePrice != nil || req.AuctionEnd != nil {
			return nil, fmt.Errorf("%w: fixed price listing cannot carry auction fields", domain.ErrInvalidOperation)
		}
	case domain.ListingAuction:
		if req.StartingBid == nil || *req.StartingBid <= 0 {
			return nil, fmt.Errorf("%w: auction listing requires a positive starting bid", domain.ErrInvalidOperation)
		}
		if req.AuctionEnd == nil {
			return nil, fmt.Errorf("%w: auction listing requires an end time", domain.ErrInvalidOperation)
		}
		if req.AuctionStart != nil && !req.AuctionEnd.After(*req.AuctionStart) {
			return nil, fmt.Errorf("%w: auction end time must be after the start time", domain.ErrInvalidOperation)
		}
		if req.PricePerKg != nil {
			return nil, fmt.Errorf("%w: auction listing cannot carry a fixed price", domain.ErrInvalidOperation)
		}
		if req.ReservePrice != nil && *req.ReservePrice < *req.StartingBid {
			return nil, fmt.Errorf("%w: reserve price cannot be below the starting bid", domain.ErrInvalidOperation)
		}
	default:
		return nil, fmt.Errorf("%w: unknown listing type %q", domain.ErrInvalidOperation, req.Type)
	}

	listing, err := s.listingRepo.Create(ctx, &domain.Listing{
		SellerID:        req.SellerID,
		Title:           req.Title,
		CO2Amount:       req.CO2Amount,
		AvailableAmount: req.CO2Amount,
		Type:            listingType,
		Status:          domain.ListingDraft,
		PricePerKg:      req.PricePerKg,
		StartingBid:     req.StartingBid,
		ReservePrice:    req.ReservePrice,
		AuctionStart:    req.AuctionStart,
		AuctionEnd:      req.AuctionEnd,
		ExpiresAt:       req.ExpiresAt,
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("listing created",
		zap.String("listingID", listing.ID.String()),
		zap.String("sellerID", req.SellerID.String()),
		zap.String("type", req.Type))
	return listing, nil
}

// Activate publishes a DRAFT listing to the marketplace.
func (s *Service) Activate(ctx context.Context, listingID, sellerID uuid.UUID) (*domain.Listing, error) {
	var activated *domain.Listing
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		listing, err := s.listingRepo.GetByIDForUpdate(ctx, listingID)
		if err != nil {
			return err
		}
		if listing == nil {
			return domain.ErrListingNotFound
		}
		if listing.SellerID != sellerID {
			return domain.ErrUnauthorized
		}
		if listing.Status != domain.ListingDraft {
			return fmt.Errorf("%w: listing is %s", domain.ErrInvalidState, listing.Status)
		}
		if listing.AuctionEnded(s.now()) {
			return fmt.Errorf("%w: auction end time has already passed", domain.ErrInvalidOperation)
		}

		claimed, err := s.listingRepo.ClaimStatus(ctx, listingID, domain.ListingDraft, domain.ListingActive, nil)
		if err != nil {
			return err
		}
		if !claimed {
			return fmt.Errorf("%w: listing is no longer a draft", domain.ErrInvalidState)
		}
		listing.Status = domain.ListingActive
		activated = listing
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.publisher != nil {
		err := s.publisher.Publish(ctx, events.KeyListingCreated, events.ListingCreated{
			ListingID: activated.ID,
			SellerID:  activated.SellerID,
			Type:      string(activated.Type),
			CO2Amount: activated.CO2Amount,
		})
		if err != nil {
			zap.L().Error("failed to publish listing event", zap.Error(err))
		}
	}
	return activated, nil
}

func (s *Service) GetByID(ctx context.Context, listingID uuid.UUID) (*domain.Listing, error) {
	listing, err := s.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, domain.ErrListingNotFound
	}
	return listing, nil
}
