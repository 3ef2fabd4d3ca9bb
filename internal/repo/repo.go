package repo

import (
	"github.com/GlebRadaev/carbonledger/internal/pg"
	accountrepo "github.com/GlebRadaev/carbonledger/internal/repo/account-repo"
	bidrepo "github.com/GlebRadaev/carbonledger/internal/repo/bid-repo"
	listingrepo "github.com/GlebRadaev/carbonledger/internal/repo/listing-repo"
	markettxrepo "github.com/GlebRadaev/carbonledger/internal/repo/markettx-repo"
	transactionrepo "github.com/GlebRadaev/carbonledger/internal/repo/transaction-repo"
	"github.com/GlebRadaev/carbonledger/internal/service/ledgerservice"
	"github.com/GlebRadaev/carbonledger/internal/service/settlementservice"
)

type Repositories struct {
	AccountRepo     ledgerservice.AccountRepo
	TransactionRepo ledgerservice.TransactionRepo

	// The listing and bid repos back several services with different views
	// of the same table, so they stay concrete here.
	ListingRepo  *listingrepo.Repository
	BidRepo      *bidrepo.Repository
	MarketTxRepo settlementservice.MarketTxRepo
}

func New(conn pg.Database, txManager pg.TXManager) *Repositories {
	accountRepo := accountrepo.New(conn, txManager)
	transactionRepo := transactionrepo.New(conn)
	listingRepo := listingrepo.New(conn, txManager)
	bidRepo := bidrepo.New(conn)
	marketTxRepo := markettxrepo.New(conn)

	return &Repositories{
		AccountRepo:     accountRepo,
		TransactionRepo: transactionRepo,
		ListingRepo:     listingRepo,
		BidRepo:         bidRepo,
		MarketTxRepo:    marketTxRepo,
	}
}
