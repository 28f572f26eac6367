// Package memory is an in-process LedgerStore with the same atomicity
// guarantees as the PostgreSQL one. It backs local runs (DATABASE_DRIVER=memory)
// and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/adstudio/backend/internal/models"
	"github.com/adstudio/backend/internal/storage"
)

type LedgerStore struct {
	mu           sync.Mutex
	balances     map[string]*models.CreditAccount
	transactions []models.CreditTransaction
	purchases    map[string]struct{}
	nextID       int64
	now          func() time.Time
}

var _ storage.LedgerStore = (*LedgerStore)(nil)

func NewLedgerStore() *LedgerStore {
	return &LedgerStore{
		balances:  make(map[string]*models.CreditAccount),
		purchases: make(map[string]struct{}),
		now:       time.Now,
	}
}

func (s *LedgerStore) Provision(ctx context.Context, entry models.CreditEntry) (*models.CreditReceipt, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.balances[entry.UserID]; ok {
		return nil, false, nil
	}
	receipt := s.apply(entry)
	return &receipt, true, nil
}

func (s *LedgerStore) Grant(ctx context.Context, entry models.CreditEntry) (*models.CreditReceipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.Kind == models.KindPurchase {
		if _, seen := s.purchases[entry.ReferenceID]; seen {
			return nil, storage.ErrDuplicateReference
		}
	}
	receipt := s.apply(entry)
	return &receipt, nil
}

func (s *LedgerStore) Debit(ctx context.Context, userID string, amount int64, description string) (*models.CreditReceipt, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.balances[userID]
	if !ok || account.Credits < amount {
		return nil, false, nil
	}
	receipt := s.apply(models.CreditEntry{
		UserID:      userID,
		Amount:      -amount,
		Kind:        models.KindDebit,
		Description: description,
	})
	return &receipt, true, nil
}

func (s *LedgerStore) Balance(ctx context.Context, userID string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.balances[userID]
	if !ok {
		return 0, storage.ErrAccountNotFound
	}
	return account.Credits, nil
}

func (s *LedgerStore) History(ctx context.Context, userID string, limit int) ([]models.CreditTransaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var history []models.CreditTransaction
	for _, record := range s.transactions {
		if record.UserID == userID {
			history = append(history, record)
		}
	}
	sort.SliceStable(history, func(i, j int) bool {
		if !history[i].CreatedAt.Equal(history[j].CreatedAt) {
			return history[i].CreatedAt.After(history[j].CreatedAt)
		}
		return history[i].ID > history[j].ID
	})
	if len(history) > limit {
		history = history[:limit]
	}
	return history, nil
}

func (s *LedgerStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

// apply mutates the balance and appends the record. Caller holds mu.
func (s *LedgerStore) apply(entry models.CreditEntry) models.CreditReceipt {
	now := s.now()

	account, ok := s.balances[entry.UserID]
	if !ok {
		account = &models.CreditAccount{UserID: entry.UserID}
		s.balances[entry.UserID] = account
	}
	account.Credits += entry.Amount
	account.UpdatedAt = now

	s.nextID++
	record := models.CreditTransaction{
		ID:          s.nextID,
		UserID:      entry.UserID,
		Amount:      entry.Amount,
		Kind:        entry.Kind,
		Description: entry.Description,
		PriceUSD:    entry.PriceUSD,
		ReferenceID: entry.ReferenceID,
		CreatedAt:   now,
	}
	s.transactions = append(s.transactions, record)
	if entry.Kind == models.KindPurchase {
		s.purchases[entry.ReferenceID] = struct{}{}
	}

	return models.CreditReceipt{Transaction: record, Balance: account.Credits}
}
