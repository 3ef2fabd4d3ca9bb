package ledgerservice

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GlebRadaev/carbonledger/internal/domain"
	"github.com/GlebRadaev/carbonledger/internal/events"
	"github.com/GlebRadaev/carbonledger/internal/pg"
)

type AccountRepo interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Account, error)
	GetByUserIDForUpdate(ctx context.Context, userID uuid.UUID) (*domain.Account, error)
	Create(ctx context.Context, userID uuid.UUID) (*domain.Account, error)
	Update(ctx context.Context, account *domain.Account) (*domain.Account, error)
	GetStatistics(ctx context.Context) (*domain.Statistics, error)
}

type TransactionRepo interface {
	Append(ctx context.Context, tx *domain.LedgerTransaction) (*domain.LedgerTransaction, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.LedgerTransaction, error)
	FindByTripRef(ctx context.Context, userID, tripID uuid.UUID, txType domain.TransactionType) (*domain.LedgerTransaction, error)
	FindByListingRef(ctx context.Context, userID uuid.UUID, relatedUserID *uuid.UUID, listingID uuid.UUID, txType domain.TransactionType) (*domain.LedgerTransaction, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]domain.LedgerTransaction, error)
	FindRecent(ctx context.Context, limit int) ([]domain.LedgerTransaction, error)
}

// Cache is the optional read-through cache in front of the read paths.
// Implementations must swallow their own failures; a broken cache never
// breaks the ledger.
type Cache interface {
	GetAccount(ctx context.Context, userID uuid.UUID) *domain.Account
	SetAccount(ctx context.Context, account *domain.Account)
	GetStatistics(ctx context.Context) *domain.Statistics
	SetStatistics(ctx context.Context, stats *domain.Statistics)
	GetRecentTransactions(ctx context.Context) []domain.LedgerTransaction
	SetRecentTransactions(ctx context.Context, transactions []domain.LedgerTransaction)
	Invalidate(ctx context.Context, userIDs ...uuid.UUID)
}

type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, event interface{}) error
}

// Service is the single writer for accounts and the ledger log. Every
// mutation runs in one DB transaction and appends exactly one transaction
// record, so the log always reconstructs the balance.
type Service struct {
	accountRepo     AccountRepo
	transactionRepo TransactionRepo
	txManager       pg.TXManager
	cache           Cache
	publisher       EventPublisher
}

func New(accountRepo AccountRepo, transactionRepo TransactionRepo, txManager pg.TXManager, cache Cache, publisher EventPublisher) *Service {
	return &Service{
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		txManager:       txManager,
		cache:           cache,
		publisher:       publisher,
	}
}

// recentFeedLimit is the page size the recent feed caches.
const recentFeedLimit = 20

type TransferResult struct {
	Sender              *domain.Account
	Receiver            *domain.Account
	SenderTransaction   *domain.LedgerTransaction
	ReceiverTransaction *domain.LedgerTransaction
}

func (s *Service) CreateAccount(ctx context.Context, userID uuid.UUID) (*domain.Account, error) {
	var account *domain.Account
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		existing, err := s.accountRepo.GetByUserID(ctx, userID)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrDuplicateAccount
		}
		account, err = s.accountRepo.Create(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	zap.L().Info("credit account created", zap.String("userID", userID.String()))
	return account, nil
}

// Credit increases the balance. The account is created lazily, and replays
// carrying a related trip or listing ref return the current account without
// a second transaction record.
func (s *Service) Credit(ctx context.Context, req domain.LedgerEntryRequest) (*domain.Account, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be greater than 0", domain.ErrInvalidOperation)
	}
	if !req.Type.Credits() {
		return nil, fmt.Errorf("%w: %s is not a credit type", domain.ErrInvalidOperation, req.Type)
	}

	var account *domain.Account
	var applied bool
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		var err error
		account, err = s.accountRepo.GetByUserIDForUpdate(ctx, req.UserID)
		if err != nil {
			return err
		}
		if account == nil {
			account, err = s.accountRepo.Create(ctx, req.UserID)
			if err != nil {
				return err
			}
		}

		dup, err := s.findDuplicate(ctx, req)
		if err != nil {
			return err
		}
		if dup != nil {
			zap.L().Info("duplicate credit skipped",
				zap.String("userID", req.UserID.String()),
				zap.String("transactionID", dup.ID.String()))
			return nil
		}

		account, _, err = s.apply(ctx, account, req)
		applied = err == nil
		return err
	})
	if err != nil {
		return nil, err
	}

	if applied {
		s.invalidate(ctx, req.UserID)
		s.publish(ctx, events.KeyCreditIssued, events.CreditIssued{
			UserID:        req.UserID,
			Amount:        req.Amount,
			Type:          string(req.Type),
			RelatedTripID: req.RelatedTripID,
			Description:   req.Description,
		})
	}
	return account, nil
}

// Debit decreases the balance. Unlike Credit it never creates an account and
// rejects any amount the balance cannot cover.
func (s *Service) Debit(ctx context.Context, req domain.LedgerEntryRequest) (*domain.Account, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be greater than 0", domain.ErrInvalidOperation)
	}
	if req.Type.Credits() {
		return nil, fmt.Errorf("%w: %s is not a debit type", domain.ErrInvalidOperation, req.Type)
	}

	var account *domain.Account
	var applied bool
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		var err error
		account, err = s.accountRepo.GetByUserIDForUpdate(ctx, req.UserID)
		if err != nil {
			return err
		}
		if account == nil {
			return domain.ErrAccountNotFound
		}

		dup, err := s.findDuplicate(ctx, req)
		if err != nil {
			return err
		}
		if dup != nil {
			zap.L().Info("duplicate debit skipped",
				zap.String("userID", req.UserID.String()),
				zap.String("transactionID", dup.ID.String()))
			return nil
		}

		if account.Balance < req.Amount {
			return &domain.InsufficientFundsError{Requested: req.Amount, Available: account.Balance}
		}

		account, _, err = s.apply(ctx, account, req)
		applied = err == nil
		return err
	})
	if err != nil {
		return nil, err
	}

	if applied {
		s.invalidate(ctx, req.UserID)
	}
	return account, nil
}

// Transfer moves credits between two users as one atomic unit: either both
// transaction records are written or neither is.
func (s *Service) Transfer(ctx context.Context, fromUserID, toUserID uuid.UUID, amount float64, description string) (*TransferResult, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: transfer amount must be greater than 0", domain.ErrInvalidOperation)
	}
	if fromUserID == toUserID {
		return nil, fmt.Errorf("%w: cannot transfer credits to yourself", domain.ErrInvalidOperation)
	}

	result := &TransferResult{}
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		sender, err := s.accountRepo.GetByUserIDForUpdate(ctx, fromUserID)
		if err != nil {
			return err
		}
		if sender == nil {
			return domain.ErrAccountNotFound
		}
		if sender.Balance < amount {
			return &domain.InsufficientFundsError{Requested: amount, Available: sender.Balance}
		}

		receiver, err := s.accountRepo.GetByUserIDForUpdate(ctx, toUserID)
		if err != nil {
			return err
		}
		if receiver == nil {
			receiver, err = s.accountRepo.Create(ctx, toUserID)
			if err != nil {
				return err
			}
		}

		outDesc := description
		if outDesc == "" {
			outDesc = fmt.Sprintf("Credits transferred to user %s", toUserID)
		}
		result.Sender, result.SenderTransaction, err = s.apply(ctx, sender, domain.LedgerEntryRequest{
			UserID:        fromUserID,
			Amount:        amount,
			Type:          domain.TransactionTransferOut,
			RelatedUserID: &toUserID,
			Description:   outDesc,
		})
		if err != nil {
			return err
		}

		inDesc := description
		if inDesc == "" {
			inDesc = fmt.Sprintf("Credits received from user %s", fromUserID)
		}
		result.Receiver, result.ReceiverTransaction, err = s.apply(ctx, receiver, domain.LedgerEntryRequest{
			UserID:        toUserID,
			Amount:        amount,
			Type:          domain.TransactionTransferIn,
			RelatedUserID: &fromUserID,
			Description:   inDesc,
		})
		if err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, fromUserID, toUserID)
	zap.L().Info("transfer completed",
		zap.String("from", fromUserID.String()),
		zap.String("to", toUserID.String()),
		zap.Float64("amount", amount))
	return result, nil
}

func (s *Service) GetBalance(ctx context.Context, userID uuid.UUID) (*domain.Account, error) {
	if s.cache != nil {
		if account := s.cache.GetAccount(ctx, userID); account != nil {
			return account, nil
		}
	}

	account, err := s.accountRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, domain.ErrAccountNotFound
	}
	if s.cache != nil {
		s.cache.SetAccount(ctx, account)
	}
	return account, nil
}

func (s *Service) GetStatistics(ctx context.Context) (*domain.Statistics, error) {
	if s.cache != nil {
		if stats := s.cache.GetStatistics(ctx); stats != nil {
			return stats, nil
		}
	}

	stats, err := s.accountRepo.GetStatistics(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.SetStatistics(ctx, stats)
	}
	return stats, nil
}

func (s *Service) GetTransactions(ctx context.Context, userID uuid.UUID, limit int) ([]domain.LedgerTransaction, error) {
	return s.transactionRepo.FindByUserID(ctx, userID, limit)
}

// GetRecentTransactions is the cross-account activity feed. Only the default
// page is cached; the cache entry is dropped on every mutation.
func (s *Service) GetRecentTransactions(ctx context.Context, limit int) ([]domain.LedgerTransaction, error) {
	if s.cache != nil && limit == recentFeedLimit {
		if transactions := s.cache.GetRecentTransactions(ctx); transactions != nil {
			return transactions, nil
		}
	}

	transactions, err := s.transactionRepo.FindRecent(ctx, limit)
	if err != nil {
		return nil, err
	}
	if s.cache != nil && limit == recentFeedLimit {
		s.cache.SetRecentTransactions(ctx, transactions)
	}
	return transactions, nil
}

func (s *Service) GetTransaction(ctx context.Context, id uuid.UUID) (*domain.LedgerTransaction, error) {
	tx, err := s.transactionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, domain.ErrTransactionNotFound
	}
	return tx, nil
}

func (s *Service) findDuplicate(ctx context.Context, req domain.LedgerEntryRequest) (*domain.LedgerTransaction, error) {
	if req.RelatedTripID != nil {
		return s.transactionRepo.FindByTripRef(ctx, req.UserID, *req.RelatedTripID, req.Type)
	}
	if req.RelatedListingID != nil {
		return s.transactionRepo.FindByListingRef(ctx, req.UserID, req.RelatedUserID, *req.RelatedListingID, req.Type)
	}
	return nil, nil
}

func (s *Service) apply(ctx context.Context, account *domain.Account, req domain.LedgerEntryRequest) (*domain.Account, *domain.LedgerTransaction, error) {
	balanceBefore := account.Balance
	account.Apply(req.Type, req.Amount)

	updated, err := s.accountRepo.Update(ctx, account)
	if err != nil {
		return nil, nil, err
	}

	appended, err := s.transactionRepo.Append(ctx, &domain.LedgerTransaction{
		UserID:           req.UserID,
		Type:             req.Type,
		Amount:           req.Amount,
		BalanceBefore:    balanceBefore,
		BalanceAfter:     updated.Balance,
		RelatedUserID:    req.RelatedUserID,
		RelatedTripID:    req.RelatedTripID,
		RelatedListingID: req.RelatedListingID,
		Description:      defaultDescription(req),
	})
	if err != nil {
		return nil, nil, err
	}
	return updated, appended, nil
}

func defaultDescription(req domain.LedgerEntryRequest) string {
	if req.Description != "" {
		return req.Description
	}
	switch req.Type {
	case domain.TransactionEarned:
		return "Credits earned from trip"
	case domain.TransactionPurchased:
		return "Credits spent on marketplace purchase"
	case domain.TransactionSold:
		return "Credits sold on marketplace"
	default:
		return string(req.Type)
	}
}

func (s *Service) invalidate(ctx context.Context, userIDs ...uuid.UUID) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, userIDs...)
	}
}

func (s *Service) publish(ctx context.Context, key string, event interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, key, event); err != nil {
		zap.L().Error("failed to publish event", zap.String("routingKey", key), zap.Error(err))
	}
}
