package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/adstudio/backend/internal/config"
)

// ConnString renders the lib/pq keyword/value DSN.
func ConnString(cfg config.DatabaseConfig) string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode,
	)
}

// OpenPostgres opens and pings the connection pool. The caller owns the
// returned handle and closes it on shutdown.
func OpenPostgres(ctx context.Context, cfg config.DatabaseConfig, logger logrus.FieldLogger) (*sql.DB, error) {
	db, err := sql.Open("postgres", ConnString(cfg))
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	logger.WithFields(logrus.Fields{
		"host": cfg.Host,
		"name": cfg.Name,
	}).Info("Database connection established")
	return db, nil
}
