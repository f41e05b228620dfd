package config

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Mongo    MongoConfig
	Redis    RedisConfig
	Identity IdentityConfig
	Payments PaymentsConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=library_system"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// IdentityConfig points at the external identity provider that issues the
// bearer tokens this service verifies. Tokens are only ever verified here,
// never minted.
type IdentityConfig struct {
	// Issuer is the expected iss claim, e.g. https://tenant.auth.example.com.
	Issuer string `env:"IDENTITY_ISSUER"`
	// Audience is the expected aud claim for this API.
	Audience string `env:"IDENTITY_AUDIENCE"`
	// JWKSURL overrides the signing-key endpoint. Empty derives
	// <issuer>/.well-known/jwks.json.
	JWKSURL string `env:"IDENTITY_JWKS_URL"`
	// HTTPTimeout bounds every JWKS fetch so a slow provider cannot stall
	// request handling.
	HTTPTimeout time.Duration `env:"IDENTITY_HTTP_TIMEOUT, default=10s"`
}

// PaymentsConfig points at the hosted checkout provider.
type PaymentsConfig struct {
	BaseURL   string `env:"PAYMENTS_BASE_URL, default=https://api.payflow.example.com"`
	SecretKey string `env:"PAYMENTS_SECRET_KEY"`
	// SuccessURL and CancelURL are where the hosted page redirects the
	// customer after checkout.
	SuccessURL  string        `env:"PAYMENTS_SUCCESS_URL, default=http://localhost:3000/checkout/success"`
	CancelURL   string        `env:"PAYMENTS_CANCEL_URL,  default=http://localhost:3000/checkout/cancel"`
	HTTPTimeout time.Duration `env:"PAYMENTS_HTTP_TIMEOUT, default=15s"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(logger *slog.Logger) *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		logger.Error("Failed to load configuration", "error", err)
		panic(err)
	}
	if err := cfg.validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		panic(err)
	}
	return &cfg
}

// validate rejects configurations that would silently disable verification.
func (c *Config) validate() error {
	if c.Identity.Issuer == "" {
		return fmt.Errorf("IDENTITY_ISSUER is required")
	}
	if c.Identity.Audience == "" {
		return fmt.Errorf("IDENTITY_AUDIENCE is required")
	}
	return nil
}
