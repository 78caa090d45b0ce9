// Package config loads service configuration from the environment. All
// tunables the auth core depends on (signing secret, token TTL, password
// policy) are explicit here rather than read ad hoc at the point of use.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the full service configuration.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string `env:"METRODOCS_ADDR" envDefault:":8080"`
	// DatabaseDSN points at PostgreSQL. When empty the server falls back
	// to the in-memory account store (dev mode only).
	DatabaseDSN string `env:"METRODOCS_PG_DSN"`
	// TokenSecret is the process-wide HS256 signing secret. Required.
	TokenSecret string `env:"METRODOCS_AUTH_SECRET"`
	// TokenTTL bounds issued bearer tokens.
	TokenTTL time.Duration `env:"METRODOCS_TOKEN_TTL" envDefault:"24h"`
	// TokenIssuer is stamped into and required from tokens.
	TokenIssuer string `env:"METRODOCS_TOKEN_ISSUER" envDefault:"metrodocs"`
	// MinPasswordLength applies at registration.
	MinPasswordLength int `env:"METRODOCS_MIN_PASSWORD_LENGTH" envDefault:"8"`
	// RateLimitPerSecond / RateLimitBurst shape the per-IP token bucket
	// in front of the API.
	RateLimitPerSecond int `env:"METRODOCS_RATE_LIMIT_PER_SECOND" envDefault:"10"`
	RateLimitBurst     int `env:"METRODOCS_RATE_LIMIT_BURST" envDefault:"20"`
	// MaxBodyBytes caps request body size.
	MaxBodyBytes int64 `env:"METRODOCS_MAX_BODY_BYTES" envDefault:"1048576"`
}

// Load parses configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if strings.TrimSpace(cfg.TokenSecret) == "" {
		return Config{}, errors.New("METRODOCS_AUTH_SECRET is required")
	}
	if cfg.MinPasswordLength <= 0 {
		return Config{}, errors.New("METRODOCS_MIN_PASSWORD_LENGTH must be positive")
	}
	if cfg.TokenTTL <= 0 {
		return Config{}, errors.New("METRODOCS_TOKEN_TTL must be positive")
	}
	return cfg, nil
}
