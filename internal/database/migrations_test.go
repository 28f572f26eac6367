package database

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adstudio/backend/internal/config"
)

func TestRunMigrations(t *testing.T) {
	t.Run("applies every statement in order", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS user_credits").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS credit_transactions").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_credit_transactions_user_created").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("CREATE UNIQUE INDEX IF NOT EXISTS idx_credit_transactions_purchase_ref").WillReturnResult(sqlmock.NewResult(0, 0))

		assert.NoError(t, RunMigrations(context.Background(), db))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stops at first failure", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").WillReturnError(errors.New("permission denied"))

		err = RunMigrations(context.Background(), db)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "migration 1 failed")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestConnString(t *testing.T) {
	dsn := ConnString(config.DatabaseConfig{
		Host: "db", Port: "5432", User: "app", Password: "secret", Name: "adstudio", SSLMode: "disable",
	})
	assert.Equal(t, "host=db port=5432 user=app password=secret dbname=adstudio sslmode=disable", dsn)
}
