package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionKind string

const (
	KindGrant    TransactionKind = "grant"
	KindDebit    TransactionKind = "debit"
	KindPurchase TransactionKind = "purchase"
)

// CreditAccount is one row of user_credits.
type CreditAccount struct {
	UserID    string    `json:"userId" db:"user_id"`
	Credits   int64     `json:"credits" db:"credits"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// CreditTransaction is one immutable row of credit_transactions. Amount is
// signed: grants and purchases are positive, debits negative, so the sum over
// a user's rows always equals CreditAccount.Credits.
type CreditTransaction struct {
	ID          int64               `json:"id" db:"id"`
	UserID      string              `json:"userId" db:"user_id"`
	Amount      int64               `json:"amount" db:"amount"`
	Kind        TransactionKind     `json:"type" db:"kind"`
	Description string              `json:"description" db:"description"`
	PriceUSD    decimal.NullDecimal `json:"priceUsd" db:"price_usd" swaggertype:"string"`
	ReferenceID string              `json:"referenceId,omitempty" db:"reference_id"`
	CreatedAt   time.Time           `json:"createdAt" db:"created_at"`
}

// CreditEntry describes a balance change before it is recorded.
type CreditEntry struct {
	UserID      string
	Amount      int64
	Kind        TransactionKind
	Description string
	ReferenceID string
	PriceUSD    decimal.NullDecimal
}

// CreditReceipt is what a committed mutation hands back: the appended record
// and the balance right after it.
type CreditReceipt struct {
	Transaction CreditTransaction
	Balance     int64
}
