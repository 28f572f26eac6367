package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults without env file", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), ".env"))
		require.NoError(t, err)

		assert.Equal(t, "8080", cfg.Port)
		assert.Equal(t, "postgres", cfg.Database.Driver)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5*time.Minute, cfg.Database.ConnMaxLifetime)
		assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
		assert.Equal(t, 24*time.Hour, cfg.JWT.Expiry())
		assert.Equal(t, "dall-e-3", cfg.OpenAI.Model)
		assert.Empty(t, cfg.Kafka.Brokers)
		assert.False(t, cfg.Google.Enabled())
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("DATABASE_DRIVER", "memory")
		t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
		t.Setenv("APP_BASE_URL", "https://studio.example.com/")
		t.Setenv("GOOGLE_CLIENT_ID", "id")
		t.Setenv("GOOGLE_CLIENT_SECRET", "secret")

		cfg, err := Load(filepath.Join(t.TempDir(), ".env"))
		require.NoError(t, err)

		assert.Equal(t, "memory", cfg.Database.Driver)
		assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
		assert.Equal(t, "https://studio.example.com", cfg.BaseURL)
		assert.True(t, cfg.Google.Enabled())
	})
}

func TestLoad_EnvFile(t *testing.T) {
	writeEnvFile := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		return path
	}

	t.Run("values from the file reach the config", func(t *testing.T) {
		path := writeEnvFile(t, "DATABASE_HOST=db.internal\nSTRIPE_SECRET_KEY=sk_test_x\nCREDITS_ACTION_COST=7\nSTUDIO_RATE_WINDOW=30s\n")

		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, "db.internal", cfg.Database.Host)
		assert.Equal(t, "sk_test_x", cfg.Stripe.SecretKey)
		assert.Equal(t, int64(7), cfg.Credits.ActionCost)
		assert.Equal(t, 30*time.Second, cfg.Credits.StudioRateWindow)
		assert.Equal(t, "5432", cfg.Database.Port)
		assert.Equal(t, int64(10), cfg.Credits.WelcomeBonus)
	})

	t.Run("environment wins over the file", func(t *testing.T) {
		path := writeEnvFile(t, "DATABASE_HOST=db.internal\nCREDITS_ACTION_COST=7\n")
		t.Setenv("DATABASE_HOST", "db.override")
		t.Setenv("CREDITS_ACTION_COST", "9")

		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, "db.override", cfg.Database.Host)
		assert.Equal(t, int64(9), cfg.Credits.ActionCost)
	})

	t.Run("unreadable file is an error", func(t *testing.T) {
		_, err := Load(t.TempDir())
		assert.Error(t, err)
	})
}

func TestCreditsConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), ".env"))
		require.NoError(t, err)
		assert.Equal(t, DefaultCreditsConfig(), cfg.Credits)
		assert.Equal(t, int64(1000), cfg.Credits.PriceCents(100))
	})

	t.Run("env override", func(t *testing.T) {
		t.Setenv("CREDITS_ACTION_COST", "5")
		t.Setenv("STUDIO_RATE_WINDOW", "not-a-duration")

		cfg, err := Load(filepath.Join(t.TempDir(), ".env"))
		require.NoError(t, err)
		assert.Equal(t, int64(5), cfg.Credits.ActionCost)
		assert.Equal(t, time.Minute, cfg.Credits.StudioRateWindow)
	})

	t.Run("history limit clamp", func(t *testing.T) {
		cfg := DefaultCreditsConfig()
		assert.Equal(t, 50, cfg.ClampHistoryLimit(0))
		assert.Equal(t, 50, cfg.ClampHistoryLimit(-3))
		assert.Equal(t, 2, cfg.ClampHistoryLimit(2))
		assert.Equal(t, 100, cfg.ClampHistoryLimit(500))
	})
}
