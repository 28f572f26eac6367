package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the process-wide configuration, loaded once in main and passed
// down to every component that needs it.
type Config struct {
	Port     string
	BaseURL  string
	LogLevel string
	LogJSON  bool

	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Argon2   Argon2Config
	Stripe   StripeConfig
	Google   GoogleConfig
	OpenAI   OpenAIConfig
	Kafka    KafkaConfig
	Credits  *CreditsConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver          string
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

func (c RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

type JWTConfig struct {
	SecretKey   string
	ExpiryHours int
}

func (c JWTConfig) Expiry() time.Duration {
	return time.Duration(c.ExpiryHours) * time.Hour
}

type Argon2Config struct {
	Time       uint32
	Memory     uint32
	Threads    uint8
	KeyLength  uint32
	SaltLength int
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
}

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
}

func (c GoogleConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

var envBindings = map[string]string{
	"port":      "PORT",
	"base_url":  "APP_BASE_URL",
	"log.level": "LOG_LEVEL",
	"log.json":  "LOG_JSON",

	"database.driver":   "DATABASE_DRIVER",
	"database.host":     "DATABASE_HOST",
	"database.port":     "DATABASE_PORT",
	"database.user":     "DATABASE_USER",
	"database.password": "DATABASE_PASSWORD",
	"database.name":     "DATABASE_NAME",
	"database.ssl_mode": "DATABASE_SSL_MODE",

	"redis.host":     "REDIS_HOST",
	"redis.port":     "REDIS_PORT",
	"redis.password": "REDIS_PASSWORD",
	"redis.db":       "REDIS_DB",

	"jwt.secret_key":     "JWT_SECRET_KEY",
	"jwt.expiry_hours":   "JWT_EXPIRY_HOURS",
	"argon2.time":        "ARGON2_TIME",
	"argon2.memory":      "ARGON2_MEMORY",
	"argon2.threads":     "ARGON2_THREADS",
	"argon2.key_length":  "ARGON2_KEY_LENGTH",
	"argon2.salt_length": "ARGON2_SALT_LENGTH",

	"stripe.secret_key":     "STRIPE_SECRET_KEY",
	"stripe.webhook_secret": "STRIPE_WEBHOOK_SECRET",

	"google.client_id":     "GOOGLE_CLIENT_ID",
	"google.client_secret": "GOOGLE_CLIENT_SECRET",

	"openai.api_key":  "OPENAI_API_KEY",
	"openai.base_url": "OPENAI_BASE_URL",
	"openai.model":    "OPENAI_IMAGE_MODEL",
	"openai.timeout":  "OPENAI_TIMEOUT",

	"kafka.brokers": "KAFKA_BROKERS",
	"kafka.topic":   "KAFKA_TOPIC",

	"credits.welcome_bonus":     "CREDITS_WELCOME_BONUS",
	"credits.welcome_reference": "CREDITS_WELCOME_REFERENCE",
	"credits.action_cost":       "CREDITS_ACTION_COST",
	"credits.min_purchase":      "CREDITS_MIN_PURCHASE",
	"credits.max_purchase":      "CREDITS_MAX_PURCHASE",
	"credits.cents_per_credit":  "CREDITS_CENTS_PER_CREDIT",
	"credits.history_limit":     "CREDITS_HISTORY_LIMIT",
	"credits.history_max":       "CREDITS_HISTORY_MAX",
	"studio.rate_limit":         "STUDIO_RATE_LIMIT",
	"studio.rate_window":        "STUDIO_RATE_WINDOW",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("base_url", "http://localhost:3000")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", true)

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.name", "adstudio")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", time.Minute*5)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("jwt.expiry_hours", 24)
	v.SetDefault("argon2.time", 1)
	v.SetDefault("argon2.memory", 64*1024)
	v.SetDefault("argon2.threads", 4)
	v.SetDefault("argon2.key_length", 32)
	v.SetDefault("argon2.salt_length", 16)

	v.SetDefault("openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("openai.model", "dall-e-3")
	v.SetDefault("openai.timeout", 90*time.Second)

	v.SetDefault("kafka.topic", "credits.transactions")

	d := DefaultCreditsConfig()
	v.SetDefault("credits.welcome_bonus", d.WelcomeBonus)
	v.SetDefault("credits.welcome_reference", d.WelcomeReference)
	v.SetDefault("credits.action_cost", d.ActionCost)
	v.SetDefault("credits.min_purchase", d.MinPurchase)
	v.SetDefault("credits.max_purchase", d.MaxPurchase)
	v.SetDefault("credits.cents_per_credit", d.CentsPerCredit)
	v.SetDefault("credits.history_limit", d.DefaultHistoryLimit)
	v.SetDefault("credits.history_max", d.MaxHistoryLimit)
	v.SetDefault("studio.rate_limit", d.StudioRateLimit)
	v.SetDefault("studio.rate_window", d.StudioRateWindow)
}

// Load reads the .env file at path, when present, and the environment into a
// Config. Environment variables win over the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, err
		}
	}
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, os.ErrNotExist) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}

	// The env file format keys values by variable name (database_host), so
	// copy them under the nested keys. They sit at default precedence, below
	// the bound environment variables.
	for key, env := range envBindings {
		if fileKey := strings.ToLower(env); v.InConfig(fileKey) {
			v.SetDefault(key, v.Get(fileKey))
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Port:     v.GetString("port"),
		BaseURL:  strings.TrimRight(v.GetString("base_url"), "/"),
		LogLevel: v.GetString("log.level"),
		LogJSON:  v.GetBool("log.json"),
		Database: DatabaseConfig{
			Driver:          v.GetString("database.driver"),
			Host:            v.GetString("database.host"),
			Port:            v.GetString("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			Name:            v.GetString("database.name"),
			SSLMode:         v.GetString("database.ssl_mode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("database.conn_max_lifetime"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetString("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			SecretKey:   v.GetString("jwt.secret_key"),
			ExpiryHours: v.GetInt("jwt.expiry_hours"),
		},
		Argon2: Argon2Config{
			Time:       v.GetUint32("argon2.time"),
			Memory:     v.GetUint32("argon2.memory"),
			Threads:    uint8(v.GetUint("argon2.threads")),
			KeyLength:  v.GetUint32("argon2.key_length"),
			SaltLength: v.GetInt("argon2.salt_length"),
		},
		Stripe: StripeConfig{
			SecretKey:     v.GetString("stripe.secret_key"),
			WebhookSecret: v.GetString("stripe.webhook_secret"),
		},
		Google: GoogleConfig{
			ClientID:     v.GetString("google.client_id"),
			ClientSecret: v.GetString("google.client_secret"),
		},
		OpenAI: OpenAIConfig{
			APIKey:  v.GetString("openai.api_key"),
			BaseURL: strings.TrimRight(v.GetString("openai.base_url"), "/"),
			Model:   v.GetString("openai.model"),
			Timeout: v.GetDuration("openai.timeout"),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(v.GetString("kafka.brokers")),
			Topic:   v.GetString("kafka.topic"),
		},
		Credits: creditsFromViper(v),
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
