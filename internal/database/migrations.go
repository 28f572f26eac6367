package database

import (
	"context"
	"database/sql"
	"fmt"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL UNIQUE,
		password TEXT,
		image TEXT,
		provider TEXT NOT NULL DEFAULT 'credentials',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS user_credits (
		user_id TEXT PRIMARY KEY,
		credits BIGINT NOT NULL DEFAULT 0 CHECK (credits >= 0),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS credit_transactions (
		id BIGSERIAL PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES user_credits(user_id),
		amount BIGINT NOT NULL,
		kind TEXT NOT NULL CHECK (kind IN ('grant', 'debit', 'purchase')),
		description TEXT NOT NULL DEFAULT '',
		price_usd NUMERIC(10, 2),
		reference_id TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_credit_transactions_user_created
		ON credit_transactions (user_id, created_at DESC, id DESC)`,
	// One purchase per payment session; redelivered webhooks hit this index.
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_credit_transactions_purchase_ref
		ON credit_transactions (reference_id) WHERE kind = 'purchase'`,
}

// RunMigrations applies the schema. Every statement is idempotent.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
