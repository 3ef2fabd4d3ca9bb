package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	ledgerhandlers "github.com/GlebRadaev/carbonledger/internal/handlers/ledger"
	markethandlers "github.com/GlebRadaev/carbonledger/internal/handlers/market"
	"github.com/GlebRadaev/carbonledger/internal/service"
)

type LedgerHandler interface {
	CreateAccount(w http.ResponseWriter, r *http.Request)
	GetBalance(w http.ResponseWriter, r *http.Request)
	Credit(w http.ResponseWriter, r *http.Request)
	Debit(w http.ResponseWriter, r *http.Request)
	Transfer(w http.ResponseWriter, r *http.Request)
	GetTransactions(w http.ResponseWriter, r *http.Request)
	GetRecentTransactions(w http.ResponseWriter, r *http.Request)
	GetStatistics(w http.ResponseWriter, r *http.Request)
}

type MarketHandler interface {
	CreateListing(w http.ResponseWriter, r *http.Request)
	ActivateListing(w http.ResponseWriter, r *http.Request)
	GetListing(w http.ResponseWriter, r *http.Request)
	PlaceBid(w http.ResponseWriter, r *http.Request)
	CancelBid(w http.ResponseWriter, r *http.Request)
	GetBids(w http.ResponseWriter, r *http.Request)
	Purchase(w http.ResponseWriter, r *http.Request)
	GetSellerRevenue(w http.ResponseWriter, r *http.Request)
	GetBuyerSpending(w http.ResponseWriter, r *http.Request)
}

type Handlers struct {
	LedgerHandler LedgerHandler
	MarketHandler MarketHandler
}

func New(s *service.Services) *Handlers {
	return &Handlers{
		LedgerHandler: ledgerhandlers.New(s.LedgerService),
		MarketHandler: markethandlers.New(s.ListingService, s.AuctionService, s.SettlementService),
	}
}

func (h *Handlers) InitRoutes(r chi.Router) chi.Router {
	r.Use(
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
	)
	r.Route("/api/ledger", func(r chi.Router) {
		r.Post("/accounts", h.LedgerHandler.CreateAccount)
		r.Get("/balance/{userID}", h.LedgerHandler.GetBalance)
		r.Post("/credit", h.LedgerHandler.Credit)
		r.Post("/debit", h.LedgerHandler.Debit)
		r.Post("/transfer", h.LedgerHandler.Transfer)
		r.Get("/transactions", h.LedgerHandler.GetRecentTransactions)
		r.Get("/transactions/{userID}", h.LedgerHandler.GetTransactions)
		r.Get("/statistics", h.LedgerHandler.GetStatistics)
	})
	r.Route("/api/market", func(r chi.Router) {
		r.Route("/listings", func(r chi.Router) {
			r.Post("/", h.MarketHandler.CreateListing)
			r.Get("/{listingID}", h.MarketHandler.GetListing)
			r.Post("/{listingID}/activate", h.MarketHandler.ActivateListing)
			r.Get("/{listingID}/bids", h.MarketHandler.GetBids)
			r.Post("/{listingID}/bids", h.MarketHandler.PlaceBid)
			r.Post("/{listingID}/purchase", h.MarketHandler.Purchase)
		})
		r.Post("/bids/{bidID}/cancel", h.MarketHandler.CancelBid)
		r.Get("/sellers/{userID}/revenue", h.MarketHandler.GetSellerRevenue)
		r.Get("/buyers/{userID}/spending", h.MarketHandler.GetBuyerSpending)
	})

	return r
}
