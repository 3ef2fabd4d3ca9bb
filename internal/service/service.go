package service

import (
	"github.com/GlebRadaev/carbonledger/internal/clients/ledgerclient"
	"github.com/GlebRadaev/carbonledger/internal/pg"
	"github.com/GlebRadaev/carbonledger/internal/repo"
	auctionservice "github.com/GlebRadaev/carbonledger/internal/service/auctionservice"
	ledgerservice "github.com/GlebRadaev/carbonledger/internal/service/ledgerservice"
	listingservice "github.com/GlebRadaev/carbonledger/internal/service/listingservice"
	settlementservice "github.com/GlebRadaev/carbonledger/internal/service/settlementservice"
)

// Deps carries the optional collaborators the services are built with. Cache
// and Publisher may be nil, the services degrade to uncached and silent.
type Deps struct {
	TXManager pg.TXManager
	Cache     ledgerservice.Cache
	Publisher ledgerservice.EventPublisher

	// CreditAddress switches the settlement engine to a remote ledger.
	// When empty the in-process ledger service is used directly.
	CreditAddress string
}

type Services struct {
	LedgerService     *ledgerservice.Service
	ListingService    *listingservice.Service
	AuctionService    *auctionservice.Service
	SettlementService *settlementservice.Service
}

func New(repo *repo.Repositories, deps Deps) *Services {
	ledgerService := ledgerservice.New(repo.AccountRepo, repo.TransactionRepo, deps.TXManager, deps.Cache, deps.Publisher)
	listingService := listingservice.New(repo.ListingRepo, deps.TXManager, deps.Publisher)
	auctionService := auctionservice.New(repo.ListingRepo, repo.BidRepo, deps.TXManager)

	var ledger settlementservice.LedgerClient
	if deps.CreditAddress != "" {
		ledger = ledgerclient.NewHTTP(deps.CreditAddress)
	} else {
		ledger = ledgerclient.NewLocal(ledgerService)
	}
	settlementService := settlementservice.New(ledger, repo.ListingRepo, repo.BidRepo, repo.MarketTxRepo, deps.Publisher)

	return &Services{
		LedgerService:     ledgerService,
		ListingService:    listingService,
		AuctionService:    auctionService,
		SettlementService: settlementService,
	}
}
