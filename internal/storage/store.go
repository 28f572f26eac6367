// Package storage defines the persistence contract for the credits ledger.
package storage

import (
	"context"
	"errors"

	"github.com/adstudio/backend/internal/models"
)

var (
	// ErrAccountNotFound is returned by Balance for a user with no balance record.
	ErrAccountNotFound = errors.New("credit account not found")
	// ErrDuplicateReference is returned when a purchase reference was already recorded.
	ErrDuplicateReference = errors.New("duplicate purchase reference")
)

// LedgerStore persists balances and the transaction log. Every mutating
// method changes the balance and appends exactly one record atomically, or
// does neither.
type LedgerStore interface {
	// Provision creates the balance record at entry.Amount and appends entry,
	// unless the user already has a record. created reports which happened.
	Provision(ctx context.Context, entry models.CreditEntry) (receipt *models.CreditReceipt, created bool, err error)

	// Grant adds entry.Amount to the balance, creating the record if absent.
	// A purchase whose ReferenceID is already recorded fails with
	// ErrDuplicateReference and leaves nothing behind.
	Grant(ctx context.Context, entry models.CreditEntry) (*models.CreditReceipt, error)

	// Debit subtracts amount if and only if the balance covers it. ok is
	// false, with no mutation, when funds are insufficient or the user has
	// no record.
	Debit(ctx context.Context, userID string, amount int64, description string) (receipt *models.CreditReceipt, ok bool, err error)

	Balance(ctx context.Context, userID string) (int64, error)

	// History returns up to limit records, newest first.
	History(ctx context.Context, userID string, limit int) ([]models.CreditTransaction, error)

	Ping(ctx context.Context) error
}
