package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GlebRadaev/carbonledger/internal/domain"
)

type Ledger interface {
	Credit(ctx context.Context, req domain.LedgerEntryRequest) (*domain.Account, error)
	Debit(ctx context.Context, req domain.LedgerEntryRequest) (*domain.Account, error)
}

// Consumer applies external lifecycle events to the ledger. Both handlers
// pass a related ref, so the ledger's dedupe makes redelivery harmless.
type Consumer struct {
	ledger Ledger
}

func NewConsumer(ledger Ledger) *Consumer {
	return &Consumer{ledger: ledger}
}

// Handle dispatches one stream entry. Keys the marketplace itself publishes
// are acknowledged without action.
func (c *Consumer) Handle(ctx context.Context, routingKey string, payload []byte) error {
	switch routingKey {
	case KeyVerificationApprove:
		return c.handleVerificationApproved(ctx, payload)
	case KeyCertificateRevoked:
		return c.handleCertificateRevoked(ctx, payload)
	default:
		return nil
	}
}

func (c *Consumer) handleVerificationApproved(ctx context.Context, payload []byte) error {
	var event VerificationApproved
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("can't decode verification event: %w", err)
	}
	if event.CreditsEarned <= 0 {
		zap.L().Warn("verification event without credits skipped", zap.String("tripID", event.TripID))
		return nil
	}

	userID, err := NormalizeID(event.UserID)
	if err != nil {
		return fmt.Errorf("bad user id in verification event: %w", err)
	}
	tripID, err := NormalizeID(event.TripID)
	if err != nil {
		return fmt.Errorf("bad trip id in verification event: %w", err)
	}

	_, err = c.ledger.Credit(ctx, domain.LedgerEntryRequest{
		UserID:        userID,
		Amount:        event.CreditsEarned,
		Type:          domain.TransactionEarned,
		RelatedTripID: &tripID,
	})
	if err != nil {
		return err
	}

	zap.L().Info("verification credit applied",
		zap.String("userID", userID.String()),
		zap.String("tripID", tripID.String()),
		zap.Float64("credits", event.CreditsEarned))
	return nil
}

func (c *Consumer) handleCertificateRevoked(ctx context.Context, payload []byte) error {
	var event CertificateRevoked
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("can't decode revocation event: %w", err)
	}
	if event.Amount <= 0 {
		zap.L().Warn("revocation event without amount skipped", zap.String("certificateID", event.CertificateID))
		return nil
	}

	userID, err := NormalizeID(event.UserID)
	if err != nil {
		return fmt.Errorf("bad user id in revocation event: %w", err)
	}
	certID, err := NormalizeID(event.CertificateID)
	if err != nil {
		return fmt.Errorf("bad certificate id in revocation event: %w", err)
	}

	// The certificate id rides in the trip ref slot purely as a dedupe key
	// for redelivered revocations.
	_, err = c.ledger.Debit(ctx, domain.LedgerEntryRequest{
		UserID:        userID,
		Amount:        event.Amount,
		Type:          domain.TransactionAdjustment,
		RelatedTripID: &certID,
		Description:   fmt.Sprintf("Credits revoked for certificate %s", event.CertificateID),
	})
	if err != nil {
		return err
	}

	zap.L().Info("revocation adjustment applied",
		zap.String("userID", userID.String()),
		zap.String("certificateID", event.CertificateID),
		zap.Float64("amount", event.Amount))
	return nil
}

// NormalizeID accepts either a UUID or a bare numeric identifier from legacy
// publishers. Numeric ids are zero padded into a fixed region of the UUID
// keyspace so the same number always maps to the same UUID.
func NormalizeID(raw string) (uuid.UUID, error) {
	if id, err := uuid.Parse(raw); err == nil {
		return id, nil
	}

	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return uuid.Nil, fmt.Errorf("id %q is neither a UUID nor numeric", raw)
	}

	digits := fmt.Sprintf("%012d", n)
	if len(digits) > 12 {
		return uuid.Nil, fmt.Errorf("numeric id %q too large to normalize", raw)
	}
	return uuid.Parse("00000000-0000-0000-0000-" + digits)
}
