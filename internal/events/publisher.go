package events

import (
	"context"
	"time"
)

const TypeCreditTransaction = "credits.transaction_recorded"

// CreditTransactionRecorded is emitted after a ledger mutation commits.
type CreditTransactionRecorded struct {
	Type          string    `json:"type"`
	TransactionID int64     `json:"transactionId"`
	UserID        string    `json:"userId"`
	Kind          string    `json:"kind"`
	Amount        int64     `json:"amount"`
	Balance       int64     `json:"balance"`
	ReferenceID   string    `json:"referenceId,omitempty"`
	OccurredAt    time.Time `json:"occurredAt"`
}

type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
	Close() error
}

// NoopPublisher drops events. Used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, any) error { return nil }
func (NoopPublisher) Close() error                                { return nil }
