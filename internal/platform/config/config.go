// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values. A local '.env' file is
honored in development through 'joho/godotenv'.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, TokenCodec) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/netip"
	"runtime"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// # Environment Defaults

const (
	devAccessTTL   = 1 * time.Hour
	prodAccessTTL  = 3 * time.Hour
	devRefreshTTL  = 5 * 24 * time.Hour
	prodRefreshTTL = 30 * 24 * time.Hour

	refreshSecretPrefix = "refresh-"
)

// # Configuration Schema

// Config holds all runtime configuration for the authd API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value store (Redis) backing the mail outbox.
	RedisURL string `env:"REDIS_URL,required"`

	// Token signing
	JWTSecret           string        `env:"JWT_SECRET_KEY,required"`
	RefreshSecret       string        `env:"REFRESH_TOKEN_SECRET_KEY"`
	JWTVersion          int           `env:"JWT_VERSION"           envDefault:"1"`
	RefreshTokenVersion int           `env:"REFRESH_TOKEN_VERSION" envDefault:"1"`
	AccessTokenTTL      time.Duration `env:"ACCESS_TOKEN_TTL"`
	RefreshTokenTTL     time.Duration `env:"REFRESH_TOKEN_TTL"`

	// One-time codes and password hashing
	OneTimeCodeWindow time.Duration `env:"ONE_TIME_CODE_WINDOW" envDefault:"15m"`
	BcryptCost        int           `env:"BCRYPT_COST"          envDefault:"10"`
	HashWorkers       int64         `env:"HASH_WORKERS"`

	// Outbound mail (SMTP). An empty host selects the logging transport.
	Email EmailConfig `envPrefix:"EMAIL_"`

	// Admin bootstrap used by cmd/seed
	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
	AdminName     string `env:"ADMIN_NAME" envDefault:"Administrator"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`

	// TrustedProxies lists the CIDRs (e.g. "10.0.0.0/8,127.0.0.1/32") whose
	// X-Real-IP / X-Forwarded-For headers are honored. Empty trusts nobody.
	TrustedProxies []netip.Prefix `env:"TRUSTED_PROXIES" envSeparator:","`
}

// EmailConfig groups the SMTP settings.
type EmailConfig struct {
	Host      string `env:"HOST"`
	Port      int    `env:"PORT"       envDefault:"587"`
	Username  string `env:"USERNAME"`
	Password  string `env:"PASSWORD"`
	FromEmail string `env:"FROM_EMAIL" envDefault:"no-reply@authd.local"`
	FromName  string `env:"FROM_NAME"  envDefault:"authd"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
//
// A '.env' file in the working directory is read first when present; real
// environment variables always win over it.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: failed to read .env file: %w", err)
	}

	cfg := &Config{}

	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	cfg.applyDerivedDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDerivedDefaults fills in values whose default depends on other fields.
func (c *Config) applyDerivedDefaults() {
	if c.RefreshSecret == "" {
		c.RefreshSecret = refreshSecretPrefix + c.JWTSecret
	}

	if c.HashWorkers == 0 {
		c.HashWorkers = int64(runtime.NumCPU())
	}

	if c.AccessTokenTTL == 0 {
		c.AccessTokenTTL = devAccessTTL
		if c.IsProduction() {
			c.AccessTokenTTL = prodAccessTTL
		}
	}

	if c.RefreshTokenTTL == 0 {
		c.RefreshTokenTTL = devRefreshTTL
		if c.IsProduction() {
			c.RefreshTokenTTL = prodRefreshTTL
		}
	}
}

func (c *Config) validate() error {
	if c.RefreshSecret == c.JWTSecret {
		return errors.New("config: REFRESH_TOKEN_SECRET_KEY must differ from JWT_SECRET_KEY")
	}
	if c.OneTimeCodeWindow <= 0 {
		return errors.New("config: ONE_TIME_CODE_WINDOW must be positive")
	}
	if c.HashWorkers < 1 {
		return errors.New("config: HASH_WORKERS must be at least 1")
	}
	return nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
