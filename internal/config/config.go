// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// knownWeakPeppers contains default/example secrets that must be rejected.
var knownWeakPeppers = []string{
	"change-me-to-a-long-random-value",
	"REPLACE_WITH_YOUR_OWN_PEPPER_VALUE",
	"pepper",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath     string `env:"NIPPO_DB_PATH" envDefault:"./data/nippo.db"`
	Pepper     string `env:"NIPPO_PEPPER,required"`
	ServerHost string `env:"NIPPO_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"NIPPO_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"NIPPO_ENV" envDefault:"development"`
	LogLevel   string `env:"NIPPO_LOG_LEVEL" envDefault:"info"`

	// EnforceAuthorization selects the authorization profile. When false,
	// admin and ownership checks are skipped (the simplified deployment
	// mode); the checked profile is the default.
	EnforceAuthorization bool `env:"NIPPO_ENFORCE_AUTHZ" envDefault:"true"`

	// RowsPerPage is the page size for employee and report listings.
	RowsPerPage int `env:"NIPPO_ROWS_PER_PAGE" envDefault:"15"`

	// Login rate limiting
	LoginRateLimit float64 `env:"NIPPO_LOGIN_RATE_LIMIT" envDefault:"0.5"`
	LoginBurst     int     `env:"NIPPO_LOGIN_BURST" envDefault:"5"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// MinPepperLength is the minimum required length for the pepper secret.
// The pepper doubles as the PBKDF2 salt, so it must carry real entropy.
const MinPepperLength = 16

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	// Validate the pepper secret. It is never logged or persisted.
	if len(cfg.Pepper) < MinPepperLength {
		return nil, fmt.Errorf("NIPPO_PEPPER must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinPepperLength, len(cfg.Pepper))
	}

	for _, weak := range knownWeakPeppers {
		if cfg.Pepper == weak {
			return nil, fmt.Errorf("NIPPO_PEPPER is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if !hasMinimumEntropy(cfg.Pepper) {
		slog.Warn("NIPPO_PEPPER has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	if cfg.RowsPerPage < 1 {
		return nil, fmt.Errorf("NIPPO_ROWS_PER_PAGE must be positive, got %d", cfg.RowsPerPage)
	}

	return cfg, nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
