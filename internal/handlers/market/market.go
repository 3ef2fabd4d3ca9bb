package market

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/GlebRadaev/carbonledger/internal/domain"
	"github.com/GlebRadaev/carbonledger/internal/dto"
	"github.com/GlebRadaev/carbonledger/internal/service/listingservice"
	"github.com/GlebRadaev/carbonledger/pkg/utils"
)

type ListingService interface {
	Create(ctx context.Context, req listingservice.CreateRequest) (*domain.Listing, error)
	Activate(ctx context.Context, listingID, sellerID uuid.UUID) (*domain.Listing, error)
	GetByID(ctx context.Context, listingID uuid.UUID) (*domain.Listing, error)
}

type AuctionService interface {
	PlaceBid(ctx context.Context, listingID, bidderID uuid.UUID, amount float64) (*domain.Bid, error)
	CancelBid(ctx context.Context, bidID, bidderID uuid.UUID) (*domain.Bid, error)
	GetBids(ctx context.Context, listingID uuid.UUID) ([]domain.Bid, error)
}

type SettlementService interface {
	PurchaseFixedPrice(ctx context.Context, listingID, buyerID uuid.UUID, amountKg float64) (*domain.MarketTransaction, error)
	GetSellerRevenue(ctx context.Context, sellerID uuid.UUID) (float64, error)
	GetBuyerSpending(ctx context.Context, buyerID uuid.UUID) (float64, error)
}

type MarketHandler struct {
	listingService    ListingService
	auctionService    AuctionService
	settlementService SettlementService
}

func New(listingService ListingService, auctionService AuctionService, settlementService SettlementService) *MarketHandler {
	return &MarketHandler{
		listingService:    listingService,
		auctionService:    auctionService,
		settlementService: settlementService,
	}
}

func (h *MarketHandler) CreateListing(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateListingRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SellerID == uuid.Nil {
		utils.RespondWithError(w, http.StatusBadRequest, "sellerId is required")
		return
	}

	listing, err := h.listingService.Create(r.Context(), listingservice.CreateRequest{
		SellerID:     req.SellerID,
		Title:        req.Title,
		CO2Amount:    req.CO2Amount,
		Type:         req.Type,
		PricePerKg:   req.PricePerKg,
		StartingBid:  req.StartingBid,
		ReservePrice: req.ReservePrice,
		AuctionStart: req.AuctionStart,
		AuctionEnd:   req.AuctionEnd,
		ExpiresAt:    req.ExpiresAt,
	})
	if err != nil {
		respondMarketError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, toListingDTO(listing))
}

func (h *MarketHandler) ActivateListing(w http.ResponseWriter, r *http.Request) {
	listingID, err := uuid.Parse(chi.URLParam(r, "listingID"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid listing id")
		return
	}

	var req struct {
		SellerID uuid.UUID `json:"sellerId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	listing, err := h.listingService.Activate(r.Context(), listingID, req.SellerID)
	if err != nil {
		respondMarketError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, toListingDTO(listing))
}

func (h *MarketHandler) GetListing(w http.ResponseWriter, r *http.Request) {
	listingID, err := uuid.Parse(chi.URLParam(r, "listingID"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid listing id")
		return
	}

	listing, err := h.listingService.GetByID(r.Context(), listingID)
	if err != nil {
		respondMarketError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, toListingDTO(listing))
}

func (h *MarketHandler) PlaceBid(w http.ResponseWriter, r *http.Request) {
	listingID, err := uuid.Parse(chi.URLParam(r, "listingID"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid listing id")
		return
	}

	var req dto.PlaceBidRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.BidderID == uuid.Nil {
		utils.RespondWithError(w, http.StatusBadRequest, "bidderId is required")
		return
	}

	bid, err := h.auctionService.PlaceBid(r.Context(), listingID, req.BidderID, req.Amount)
	if err != nil {
		respondMarketError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, toBidDTO(bid))
}

func (h *MarketHandler) CancelBid(w http.ResponseWriter, r *http.Request) {
	bidID, err := uuid.Parse(chi.URLParam(r, "bidID"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid bid id")
		return
	}

	var req struct {
		BidderID uuid.UUID `json:"bidderId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	bid, err := h.auctionService.CancelBid(r.Context(), bidID, req.BidderID)
	if err != nil {
		respondMarketError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, toBidDTO(bid))
}

func (h *MarketHandler) GetBids(w http.ResponseWriter, r *http.Request) {
	listingID, err := uuid.Parse(chi.URLParam(r, "listingID"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid listing id")
		return
	}

	bids, err := h.auctionService.GetBids(r.Context(), listingID)
	if err != nil {
		respondMarketError(w, err)
		return
	}

	resp := make([]dto.BidResponseDTO, 0, len(bids))
	for i := range bids {
		resp = append(resp, toBidDTO(&bids[i]))
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *MarketHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	listingID, err := uuid.Parse(chi.URLParam(r, "listingID"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid listing id")
		return
	}

	var req dto.PurchaseRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.BuyerID == uuid.Nil {
		utils.RespondWithError(w, http.StatusBadRequest, "buyerId is required")
		return
	}

	tx, err := h.settlementService.PurchaseFixedPrice(r.Context(), listingID, req.BuyerID, req.AmountKg)
	if err != nil {
		respondMarketError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dto.MarketTransactionResponseDTO{
		ID:         tx.ID,
		ListingID:  tx.ListingID,
		BuyerID:    tx.BuyerID,
		SellerID:   tx.SellerID,
		Type:       tx.Type,
		CO2Amount:  tx.CO2Amount,
		PricePerKg: tx.PricePerKg,
		TotalPrice: tx.TotalPrice,
		CreatedAt:  tx.CreatedAt,
	})
}

func (h *MarketHandler) GetSellerRevenue(w http.ResponseWriter, r *http.Request) {
	sellerID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	revenue, err := h.settlementService.GetSellerRevenue(r.Context(), sellerID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch revenue")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]float64{"totalRevenue": revenue})
}

func (h *MarketHandler) GetBuyerSpending(w http.ResponseWriter, r *http.Request) {
	buyerID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	spending, err := h.settlementService.GetBuyerSpending(r.Context(), buyerID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch spending")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]float64{"totalSpending": spending})
}

func respondMarketError(w http.ResponseWriter, err error) {
	var insufficient *domain.InsufficientFundsError
	var invalidBid *domain.InvalidBidError
	var partial *domain.PartialSettlementError
	switch {
	case errors.As(err, &insufficient):
		utils.RespondWithJSON(w, http.StatusPaymentRequired, map[string]interface{}{
			"message":   insufficient.Error(),
			"requested": insufficient.Requested,
			"available": insufficient.Available,
		})
	case errors.As(err, &invalidBid):
		utils.RespondWithJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"message":    invalidBid.Error(),
			"minimumBid": invalidBid.Minimum,
		})
	case errors.As(err, &partial):
		utils.RespondWithError(w, http.StatusInternalServerError, partial.Error())
	case errors.Is(err, domain.ErrListingNotFound), errors.Is(err, domain.ErrBidNotFound):
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		utils.RespondWithError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrInvalidState):
		utils.RespondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrInvalidOperation):
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func toListingDTO(listing *domain.Listing) dto.ListingResponseDTO {
	return dto.ListingResponseDTO{
		ID:              listing.ID,
		SellerID:        listing.SellerID,
		Title:           listing.Title,
		CO2Amount:       listing.CO2Amount,
		AvailableAmount: listing.AvailableAmount,
		Type:            string(listing.Type),
		Status:          string(listing.Status),
		PricePerKg:      listing.PricePerKg,
		StartingBid:     listing.StartingBid,
		ReservePrice:    listing.ReservePrice,
		AuctionStart:    listing.AuctionStart,
		AuctionEnd:      listing.AuctionEnd,
		WinnerID:        listing.WinnerID,
		CreatedAt:       listing.CreatedAt,
	}
}

func toBidDTO(bid *domain.Bid) dto.BidResponseDTO {
	return dto.BidResponseDTO{
		ID:        bid.ID,
		ListingID: bid.ListingID,
		BidderID:  bid.BidderID,
		Amount:    bid.Amount,
		Status:    string(bid.Status),
		IsWinning: bid.IsWinning,
		CreatedAt: bid.CreatedAt,
	}
}
