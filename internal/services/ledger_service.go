package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/adstudio/backend/internal/audit"
	"github.com/adstudio/backend/internal/config"
	"github.com/adstudio/backend/internal/events"
	"github.com/adstudio/backend/internal/metrics"
	"github.com/adstudio/backend/internal/models"
	"github.com/adstudio/backend/internal/storage"
)

var (
	ErrInvalidAmount    = errors.New("amount must be a positive integer")
	ErrMissingUser      = errors.New("user id is required")
	ErrMissingReference = errors.New("purchases require a reference id")
)

const publishTimeout = 5 * time.Second

// GrantRequest adds credits. Setting PriceUSD records the grant as a purchase.
type GrantRequest struct {
	UserID      string `validate:"required"`
	Amount      int64  `validate:"gt=0"`
	Reason      string
	ReferenceID string
	PriceUSD    decimal.NullDecimal
}

type debitRequest struct {
	UserID string `validate:"required"`
	Amount int64  `validate:"gt=0"`
}

// CreditsLedger is the only component allowed to change a balance. It holds
// no state of its own; every call is one atomic store operation.
type CreditsLedger struct {
	store     storage.LedgerStore
	cfg       *config.CreditsConfig
	validator *validator.Validate
	publisher events.Publisher
	audit     *audit.Logger
	metrics   *metrics.Metrics
	logger    logrus.FieldLogger
}

func NewCreditsLedger(store storage.LedgerStore, cfg *config.CreditsConfig, logger logrus.FieldLogger, publisher events.Publisher, m *metrics.Metrics) *CreditsLedger {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &CreditsLedger{
		store:     store,
		cfg:       cfg,
		validator: validator.New(),
		publisher: publisher,
		audit:     audit.NewLogger(logger),
		metrics:   m,
		logger:    logger,
	}
}

// EnsureProvisioned creates the user's balance record with the welcome bonus
// if it does not exist yet. Safe to call on every sign-in; concurrent calls
// create at most one record.
func (l *CreditsLedger) EnsureProvisioned(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, ErrMissingUser
	}

	receipt, created, err := l.store.Provision(ctx, models.CreditEntry{
		UserID:      userID,
		Amount:      l.cfg.WelcomeBonus,
		Kind:        models.KindGrant,
		Description: "Welcome bonus",
		ReferenceID: l.cfg.WelcomeReference,
	})
	if err != nil {
		l.metrics.ObserveLedger("provision", "error")
		l.audit.LogError("PROVISION", userID, l.cfg.WelcomeBonus, err)
		return false, fmt.Errorf("provision credits for %s: %w", userID, err)
	}
	if !created {
		l.metrics.ObserveLedger("provision", "exists")
		return false, nil
	}

	l.metrics.ObserveLedger("provision", "ok")
	l.recordMutation(ctx, "PROVISION", receipt)
	return true, nil
}

// Balance is a pure read. It returns storage.ErrAccountNotFound for a user
// that was never provisioned.
func (l *CreditsLedger) Balance(ctx context.Context, userID string) (int64, error) {
	if userID == "" {
		return 0, ErrMissingUser
	}
	return l.store.Balance(ctx, userID)
}

// ProvisionedBalance provisions the user if needed and then reads the
// balance. Unlike Balance it may write.
func (l *CreditsLedger) ProvisionedBalance(ctx context.Context, userID string) (int64, error) {
	if _, err := l.EnsureProvisioned(ctx, userID); err != nil {
		return 0, err
	}
	return l.Balance(ctx, userID)
}

// Grant adds credits and reports whether anything was applied. A purchase
// whose reference was already recorded is a no-op: (false, nil).
func (l *CreditsLedger) Grant(ctx context.Context, req GrantRequest) (bool, error) {
	if err := l.validate(req); err != nil {
		return false, err
	}

	kind := models.KindGrant
	if req.PriceUSD.Valid {
		kind = models.KindPurchase
		if req.ReferenceID == "" {
			return false, ErrMissingReference
		}
	}

	receipt, err := l.store.Grant(ctx, models.CreditEntry{
		UserID:      req.UserID,
		Amount:      req.Amount,
		Kind:        kind,
		Description: req.Reason,
		ReferenceID: req.ReferenceID,
		PriceUSD:    req.PriceUSD,
	})
	if errors.Is(err, storage.ErrDuplicateReference) {
		l.metrics.ObserveLedger("grant", "duplicate")
		l.audit.LogRejected("PURCHASE", req.UserID, req.Amount, "duplicate reference "+req.ReferenceID)
		return false, nil
	}
	if err != nil {
		l.metrics.ObserveLedger("grant", "error")
		l.audit.LogError("GRANT", req.UserID, req.Amount, err)
		return false, fmt.Errorf("grant credits to %s: %w", req.UserID, err)
	}

	l.metrics.ObserveLedger("grant", "ok")
	l.recordMutation(ctx, "GRANT", receipt)
	return true, nil
}

// Debit takes amount credits if the balance covers it. Insufficient funds is
// (false, nil), never an error.
func (l *CreditsLedger) Debit(ctx context.Context, userID string, amount int64, description string) (bool, error) {
	if err := l.validate(debitRequest{UserID: userID, Amount: amount}); err != nil {
		return false, err
	}

	receipt, ok, err := l.store.Debit(ctx, userID, amount, description)
	if err != nil {
		l.metrics.ObserveLedger("debit", "error")
		l.audit.LogError("DEBIT", userID, amount, err)
		return false, fmt.Errorf("debit credits from %s: %w", userID, err)
	}
	if !ok {
		l.metrics.ObserveLedger("debit", "insufficient")
		l.audit.LogRejected("DEBIT", userID, amount, "insufficient credits")
		return false, nil
	}

	l.metrics.ObserveLedger("debit", "ok")
	l.recordMutation(ctx, "DEBIT", receipt)
	return true, nil
}

// History returns the user's newest transactions first. limit is clamped to
// the configured range.
func (l *CreditsLedger) History(ctx context.Context, userID string, limit int) ([]models.CreditTransaction, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}
	return l.store.History(ctx, userID, l.cfg.ClampHistoryLimit(limit))
}

func (l *CreditsLedger) Ping(ctx context.Context) error {
	return l.store.Ping(ctx)
}

func (l *CreditsLedger) validate(req any) error {
	err := l.validator.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Field() == "UserID" {
				return ErrMissingUser
			}
		}
		return ErrInvalidAmount
	}
	return err
}

// recordMutation runs after commit. Nothing here can fail the operation.
func (l *CreditsLedger) recordMutation(ctx context.Context, eventType string, receipt *models.CreditReceipt) {
	record := receipt.Transaction
	l.metrics.ObserveCredits(string(record.Kind), record.Amount)
	l.audit.LogMutation(eventType, record.ID, record.UserID, record.Amount, receipt.Balance, map[string]string{
		"kind":        string(record.Kind),
		"description": record.Description,
		"reference":   record.ReferenceID,
	})

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	err := l.publisher.Publish(pubCtx, record.UserID, events.CreditTransactionRecorded{
		Type:          events.TypeCreditTransaction,
		TransactionID: record.ID,
		UserID:        record.UserID,
		Kind:          string(record.Kind),
		Amount:        record.Amount,
		Balance:       receipt.Balance,
		ReferenceID:   record.ReferenceID,
		OccurredAt:    record.CreatedAt,
	})
	if err != nil {
		l.logger.WithError(err).WithFields(logrus.Fields{
			"user_id":        record.UserID,
			"transaction_id": record.ID,
		}).Warn("Failed to publish credit event")
	}
}
