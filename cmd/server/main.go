package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/adstudio/backend/docs"
	"github.com/adstudio/backend/internal/config"
	"github.com/adstudio/backend/internal/database"
	"github.com/adstudio/backend/internal/events"
	"github.com/adstudio/backend/internal/events/kafka"
	"github.com/adstudio/backend/internal/imagegen"
	"github.com/adstudio/backend/internal/logging"
	"github.com/adstudio/backend/internal/metrics"
	"github.com/adstudio/backend/internal/payments"
	"github.com/adstudio/backend/internal/services"
	"github.com/adstudio/backend/internal/storage"
	"github.com/adstudio/backend/internal/storage/memory"
	"github.com/adstudio/backend/internal/storage/postgres"
)

// @title AI Studio Backend API
// @version 1.0
// @description Credits ledger, checkout and image studio API for AI product photoshoots
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	logger := logging.NewLogger(cfg.LogLevel, cfg.LogJSON)
	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Fatal("Server exited")
	}
}

func run(cfg *config.Config, logger *logrus.Logger) error {
	ctx := context.Background()

	docs.SwaggerInfo.Host = "localhost:" + cfg.Port

	var (
		db    *sql.DB
		store storage.LedgerStore
	)
	switch cfg.Database.Driver {
	case "memory":
		logger.Warn("Using in-memory ledger; balances are lost on restart")
		store = memory.NewLedgerStore()
	default:
		var err error
		db, err = database.OpenPostgres(ctx, cfg.Database, logger)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := database.RunMigrations(ctx, db); err != nil {
			return err
		}
		store = postgres.NewLedgerStore(db)
	}

	redisClient := database.InitRedis(ctx, cfg.Redis, logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	var publisher events.Publisher = events.NoopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		logger.WithField("topic", cfg.Kafka.Topic).Info("Publishing ledger events to Kafka")
	}
	defer publisher.Close()

	m := metrics.New("adstudio")
	ledger := services.NewCreditsLedger(store, cfg.Credits, logger.WithField("component", "ledger"), publisher, m)

	voiceService := services.NewVoicePromptService(ctx, logger)
	defer voiceService.Close()

	r := newRouter(cfg, routerDeps{
		db:        db,
		redis:     redisClient,
		ledger:    ledger,
		checkout:  payments.NewClient(cfg.Stripe, logger),
		generator: imagegen.NewClient(cfg.OpenAI, logger),
		voice:     voiceService,
		metrics:   m,
		logger:    logger,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // image generation is slow
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("port", cfg.Port).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	logger.Info("Server shutting down...")
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Info("Server stopped")
	return nil
}

type routerDeps struct {
	db        *sql.DB
	redis     *redis.Client
	ledger    *services.CreditsLedger
	checkout  services.CheckoutProvider
	generator services.ImageGenerator
	voice     *services.VoicePromptService
	metrics   *metrics.Metrics
	logger    logrus.FieldLogger
}
