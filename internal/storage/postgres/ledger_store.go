package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/adstudio/backend/internal/models"
	"github.com/adstudio/backend/internal/storage"
)

const uniqueViolation = "23505"

// LedgerStore is the PostgreSQL ledger. Row locks taken by the relative
// UPDATE/upsert statements serialize concurrent mutations for one user.
type LedgerStore struct {
	db *sql.DB
}

var _ storage.LedgerStore = (*LedgerStore)(nil)

func NewLedgerStore(db *sql.DB) *LedgerStore {
	return &LedgerStore{db: db}
}

func (s *LedgerStore) Provision(ctx context.Context, entry models.CreditEntry) (*models.CreditReceipt, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("begin provision: %w", err)
	}
	defer tx.Rollback()

	var balance int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO user_credits (user_id, credits, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO NOTHING
		RETURNING credits`,
		entry.UserID, entry.Amount).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("create credit account: %w", err)
	}

	record, err := appendTransaction(ctx, tx, entry)
	if err != nil {
		return nil, false, err
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("commit provision: %w", err)
	}
	return &models.CreditReceipt{Transaction: record, Balance: balance}, true, nil
}

func (s *LedgerStore) Grant(ctx context.Context, entry models.CreditEntry) (*models.CreditReceipt, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin grant: %w", err)
	}
	defer tx.Rollback()

	var balance int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO user_credits (user_id, credits, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET credits = user_credits.credits + EXCLUDED.credits, updated_at = NOW()
		RETURNING credits`,
		entry.UserID, entry.Amount).Scan(&balance)
	if err != nil {
		return nil, fmt.Errorf("increment credits: %w", err)
	}

	record, err := appendTransaction(ctx, tx, entry)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit grant: %w", err)
	}
	return &models.CreditReceipt{Transaction: record, Balance: balance}, nil
}

func (s *LedgerStore) Debit(ctx context.Context, userID string, amount int64, description string) (*models.CreditReceipt, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("begin debit: %w", err)
	}
	defer tx.Rollback()

	// Check and decrement in one statement so two debits cannot both see
	// enough credits.
	var balance int64
	err = tx.QueryRowContext(ctx, `
		UPDATE user_credits
		SET credits = credits - $2, updated_at = NOW()
		WHERE user_id = $1 AND credits >= $2
		RETURNING credits`,
		userID, amount).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("decrement credits: %w", err)
	}

	record, err := appendTransaction(ctx, tx, models.CreditEntry{
		UserID:      userID,
		Amount:      -amount,
		Kind:        models.KindDebit,
		Description: description,
	})
	if err != nil {
		return nil, false, err
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("commit debit: %w", err)
	}
	return &models.CreditReceipt{Transaction: record, Balance: balance}, true, nil
}

func (s *LedgerStore) Balance(ctx context.Context, userID string) (int64, error) {
	var credits int64
	err := s.db.QueryRowContext(ctx,
		`SELECT credits FROM user_credits WHERE user_id = $1`, userID).Scan(&credits)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, storage.ErrAccountNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("query balance: %w", err)
	}
	return credits, nil
}

func (s *LedgerStore) History(ctx context.Context, userID string, limit int) ([]models.CreditTransaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, amount, kind, description, price_usd, reference_id, created_at
		FROM credit_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	history := make([]models.CreditTransaction, 0, limit)
	for rows.Next() {
		var (
			record    models.CreditTransaction
			kind      string
			reference sql.NullString
		)
		if err := rows.Scan(&record.ID, &record.UserID, &record.Amount, &kind,
			&record.Description, &record.PriceUSD, &reference, &record.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		record.Kind = models.TransactionKind(kind)
		record.ReferenceID = reference.String
		history = append(history, record)
	}
	return history, rows.Err()
}

func (s *LedgerStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

const (
	insertTransaction = `
		INSERT INTO credit_transactions (user_id, amount, kind, description, price_usd, reference_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())`
	purchaseConflict = `
		ON CONFLICT (reference_id) WHERE kind = 'purchase' DO NOTHING`
	returningRow = `
		RETURNING id, created_at`
)

func insertTransactionQuery(kind models.TransactionKind) string {
	if kind == models.KindPurchase {
		return insertTransaction + purchaseConflict + returningRow
	}
	return insertTransaction + returningRow
}

// appendTransaction writes the log row inside tx. Purchases are inserted with
// ON CONFLICT against the partial unique index so a replayed reference comes
// back as zero rows instead of aborting the transaction.
func appendTransaction(ctx context.Context, tx *sql.Tx, entry models.CreditEntry) (models.CreditTransaction, error) {
	record := models.CreditTransaction{
		UserID:      entry.UserID,
		Amount:      entry.Amount,
		Kind:        entry.Kind,
		Description: entry.Description,
		PriceUSD:    entry.PriceUSD,
		ReferenceID: entry.ReferenceID,
	}

	query := insertTransactionQuery(entry.Kind)

	err := tx.QueryRowContext(ctx, query,
		entry.UserID, entry.Amount, string(entry.Kind), entry.Description,
		entry.PriceUSD, nullString(entry.ReferenceID)).Scan(&record.ID, &record.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) && entry.Kind == models.KindPurchase {
		return record, storage.ErrDuplicateReference
	}
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return record, storage.ErrDuplicateReference
		}
		return record, fmt.Errorf("append credit transaction: %w", err)
	}
	return record, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
