package config

import (
	"time"

	"github.com/spf13/viper"
)

type CreditsConfig struct {
	WelcomeBonus        int64
	WelcomeReference    string
	ActionCost          int64
	MinPurchase         int64
	MaxPurchase         int64
	CentsPerCredit      int64
	DefaultHistoryLimit int
	MaxHistoryLimit     int
	StudioRateLimit     int
	StudioRateWindow    time.Duration
}

func creditsFromViper(v *viper.Viper) *CreditsConfig {
	d := DefaultCreditsConfig()
	return &CreditsConfig{
		WelcomeBonus:        v.GetInt64("credits.welcome_bonus"),
		WelcomeReference:    v.GetString("credits.welcome_reference"),
		ActionCost:          v.GetInt64("credits.action_cost"),
		MinPurchase:         v.GetInt64("credits.min_purchase"),
		MaxPurchase:         v.GetInt64("credits.max_purchase"),
		CentsPerCredit:      v.GetInt64("credits.cents_per_credit"),
		DefaultHistoryLimit: v.GetInt("credits.history_limit"),
		MaxHistoryLimit:     v.GetInt("credits.history_max"),
		StudioRateLimit:     v.GetInt("studio.rate_limit"),
		StudioRateWindow:    positiveDuration(v, "studio.rate_window", d.StudioRateWindow),
	}
}

// DefaultCreditsConfig returns the built-in economics without consulting the environment.
func DefaultCreditsConfig() *CreditsConfig {
	return &CreditsConfig{
		WelcomeBonus:        10,
		WelcomeReference:    "initial_credits",
		ActionCost:          3,
		MinPurchase:         10,
		MaxPurchase:         1000,
		CentsPerCredit:      10,
		DefaultHistoryLimit: 50,
		MaxHistoryLimit:     100,
		StudioRateLimit:     20,
		StudioRateWindow:    time.Minute,
	}
}

// ClampHistoryLimit maps a requested page size onto [1, MaxHistoryLimit].
func (c *CreditsConfig) ClampHistoryLimit(limit int) int {
	if limit <= 0 {
		limit = c.DefaultHistoryLimit
	}
	if limit > c.MaxHistoryLimit {
		limit = c.MaxHistoryLimit
	}
	if limit < 1 {
		limit = 1
	}
	return limit
}

// PriceCents is the checkout price for a credit pack.
func (c *CreditsConfig) PriceCents(credits int64) int64 {
	return credits * c.CentsPerCredit
}

// positiveDuration falls back when the value is unparseable or not positive.
func positiveDuration(v *viper.Viper, key string, fallback time.Duration) time.Duration {
	if d := v.GetDuration(key); d > 0 {
		return d
	}
	return fallback
}
