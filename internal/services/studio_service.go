package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/adstudio/backend/internal/config"
	"github.com/adstudio/backend/internal/metrics"
)

var (
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrRateLimited         = errors.New("too many image requests")
	ErrImageGeneration     = errors.New("image generation failed")
)

// ImageGenerator renders product images and returns their URLs.
type ImageGenerator interface {
	GenerateProductImage(ctx context.Context, description string) (string, error)
	EditProductImage(ctx context.Context, imageURL, prompt string) (string, error)
}

type StudioResult struct {
	ImageURL string `json:"imageUrl" example:"https://images.example/out.png"`
	Credits  int64  `json:"credits" example:"7"`
}

// StudioService charges for image actions. Each action is debited before the
// image API is called and refunded if the call fails.
type StudioService struct {
	ledger    *CreditsLedger
	generator ImageGenerator
	redis     *redis.Client
	cfg       *config.CreditsConfig
	metrics   *metrics.Metrics
	logger    logrus.FieldLogger
}

func NewStudioService(ledger *CreditsLedger, generator ImageGenerator, redisClient *redis.Client, cfg *config.CreditsConfig, m *metrics.Metrics, logger logrus.FieldLogger) *StudioService {
	return &StudioService{
		ledger:    ledger,
		generator: generator,
		redis:     redisClient,
		cfg:       cfg,
		metrics:   m,
		logger:    logger.WithField("component", "studio"),
	}
}

func (s *StudioService) Generate(ctx context.Context, userID, description string) (*StudioResult, error) {
	return s.run(ctx, userID, "generate", "Image generation", func(ctx context.Context) (string, error) {
		return s.generator.GenerateProductImage(ctx, description)
	})
}

func (s *StudioService) Edit(ctx context.Context, userID, imageURL, prompt string) (*StudioResult, error) {
	return s.run(ctx, userID, "edit", "Image editing", func(ctx context.Context) (string, error) {
		return s.generator.EditProductImage(ctx, imageURL, prompt)
	})
}

func (s *StudioService) run(ctx context.Context, userID, action, description string, render func(context.Context) (string, error)) (*StudioResult, error) {
	log := s.logger.WithFields(logrus.Fields{"user_id": userID, "action": action})

	if err := s.checkRateLimit(ctx, userID); err != nil {
		s.metrics.ObserveImage(action, "rate_limited")
		return nil, err
	}

	if _, err := s.ledger.EnsureProvisioned(ctx, userID); err != nil {
		return nil, err
	}

	ok, err := s.ledger.Debit(ctx, userID, s.cfg.ActionCost, description)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.metrics.ObserveImage(action, "insufficient_credits")
		return nil, ErrInsufficientCredits
	}

	imageURL, renderErr := render(ctx)
	if renderErr != nil {
		s.metrics.ObserveImage(action, "failed")
		log.WithError(renderErr).Warn("Image API call failed, refunding")
		s.refund(ctx, userID, log)
		return nil, fmt.Errorf("%w: %v", ErrImageGeneration, renderErr)
	}

	s.metrics.ObserveImage(action, "ok")

	balance, err := s.ledger.Balance(ctx, userID)
	if err != nil {
		log.WithError(err).Warn("Failed to read balance after debit")
	}
	return &StudioResult{ImageURL: imageURL, Credits: balance}, nil
}

// refund outlives a cancelled request: the debit is already committed.
func (s *StudioService) refund(ctx context.Context, userID string, log logrus.FieldLogger) {
	refundCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	_, err := s.ledger.Grant(refundCtx, GrantRequest{
		UserID: userID,
		Amount: s.cfg.ActionCost,
		Reason: "Refund: image generation failed",
	})
	if err != nil {
		log.WithError(err).Error("Refund failed")
	}
}

// checkRateLimit is a fixed-window counter per user. Redis outages fail open.
func (s *StudioService) checkRateLimit(ctx context.Context, userID string) error {
	if s.redis == nil || s.cfg.StudioRateLimit <= 0 {
		return nil
	}

	key := "studio:ratelimit:" + userID
	count, err := s.redis.Incr(ctx, key).Result()
	if err != nil {
		s.logger.WithError(err).Warn("Rate limit check failed")
		return nil
	}
	if count == 1 {
		if err := s.redis.Expire(ctx, key, s.cfg.StudioRateWindow).Err(); err != nil {
			s.logger.WithError(err).Warn("Failed to set rate limit window")
		}
	}
	if count > int64(s.cfg.StudioRateLimit) {
		return ErrRateLimited
	}
	return nil
}
