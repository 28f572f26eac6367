// Package imagegen calls the OpenAI images API to render product photoshoots.
package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/circuitbreaker"
	"github.com/sirupsen/logrus"

	"github.com/adstudio/backend/internal/config"
)

var (
	// ErrRejected is a 4xx from the API, usually a content policy refusal.
	ErrRejected = errors.New("image request rejected")
	// ErrUnavailable means the breaker is open and no request was sent.
	ErrUnavailable = errors.New("image service unavailable")
)

const (
	imageSize    = "1024x1024"
	imageQuality = "standard"
)

type Client struct {
	http    *http.Client
	apiKey  string
	baseURL string
	model   string
	breaker circuitbreaker.CircuitBreaker[string]
	logger  logrus.FieldLogger
}

type generationRequest struct {
	Model   string `json:"model"`
	Prompt  string `json:"prompt"`
	N       int    `json:"n"`
	Size    string `json:"size"`
	Quality string `json:"quality"`
}

type generationResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
}

func NewClient(cfg config.OpenAIConfig, logger logrus.FieldLogger) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 90 * time.Second
	}

	log := logger.WithField("component", "imagegen")
	breaker := circuitbreaker.NewBuilder[string]().
		WithFailureThresholdRatio(5, 10).
		WithDelay(30 * time.Second).
		WithSuccessThreshold(1).
		HandleIf(func(_ string, err error) bool {
			// refusals are the caller's problem, not an outage
			return err != nil && !errors.Is(err, ErrRejected)
		}).
		OnStateChanged(func(event circuitbreaker.StateChangedEvent) {
			log.WithFields(logrus.Fields{
				"from_state": stateName(event.OldState),
				"to_state":   stateName(event.NewState),
			}).Warn("circuit breaker state change")
		}).
		Build()

	return &Client{
		http:    &http.Client{Timeout: timeout},
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		model:   cfg.Model,
		breaker: breaker,
		logger:  log,
	}
}

// GenerateProductImage renders a studio shot of the described product and
// returns the hosted image URL.
func (c *Client) GenerateProductImage(ctx context.Context, description string) (string, error) {
	return c.generate(ctx, productPrompt(description))
}

// EditProductImage re-renders imageURL with the requested change.
func (c *Client) EditProductImage(ctx context.Context, imageURL, prompt string) (string, error) {
	return c.generate(ctx, editPrompt(imageURL, prompt))
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	url, err := failsafe.With[string](c.breaker).WithContext(ctx).Get(func() (string, error) {
		return c.requestImage(ctx, prompt)
	})
	if errors.Is(err, circuitbreaker.ErrOpen) {
		return "", ErrUnavailable
	}
	return url, err
}

func (c *Client) requestImage(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", errors.New("openai: api key is not set")
	}

	payload, err := json.Marshal(generationRequest{
		Model:   c.model,
		Prompt:  prompt,
		N:       1,
		Size:    imageSize,
		Quality: imageQuality,
	})
	if err != nil {
		return "", fmt.Errorf("openai: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/images/generations", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("openai: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("openai: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		msg := strings.TrimSpace(string(body))
		if resp.StatusCode < http.StatusInternalServerError && resp.StatusCode != http.StatusTooManyRequests {
			return "", fmt.Errorf("%w: status %d: %s", ErrRejected, resp.StatusCode, msg)
		}
		return "", fmt.Errorf("openai: unexpected status %s: %s", resp.Status, msg)
	}

	var out generationResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("openai: decode response: %w", err)
	}
	if len(out.Data) == 0 || out.Data[0].URL == "" {
		return "", errors.New("openai: response contained no image")
	}

	c.logger.WithField("duration_ms", time.Since(start).Milliseconds()).Debug("Image generated")
	return out.Data[0].URL, nil
}

func stateName(state circuitbreaker.State) string {
	switch state {
	case circuitbreaker.OpenState:
		return "open"
	case circuitbreaker.HalfOpenState:
		return "half-open"
	default:
		return "closed"
	}
}
