// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected in production.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath     string `env:"EMAS_DB_PATH" envDefault:"./data/emas.db"`
	JWTSecret  string `env:"EMAS_JWT_SECRET,required"`
	TokenTTL   int    `env:"EMAS_TOKEN_TTL_HOURS" envDefault:"24"` // Bearer token lifetime in hours
	ServerHost string `env:"EMAS_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"EMAS_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"EMAS_ENV" envDefault:"development"`
	LogLevel   string `env:"EMAS_LOG_LEVEL" envDefault:"info"`

	// Upload configuration
	UploadsDir        string   `env:"EMAS_UPLOADS_DIR" envDefault:"./uploads"`
	AllowedExtensions []string `env:"EMAS_UPLOAD_EXTENSIONS" envSeparator:","` // Empty = built-in default list
	MaxUploadMB       int      `env:"EMAS_UPLOAD_MAX_MB" envDefault:"10"`

	// Cache configuration
	RedisURL     string `env:"EMAS_REDIS_URL"`                        // Optional Redis URL for the content cache
	CachePrefix  string `env:"EMAS_CACHE_PREFIX" envDefault:"emas:"`  // Redis key prefix
	CacheTTL     int    `env:"EMAS_CACHE_TTL" envDefault:"300"`       // Content cache TTL in seconds
	CacheMaxSize int    `env:"EMAS_CACHE_MAX_SIZE" envDefault:"1000"` // Max memory cache entries

	// Contact notification mail
	MailEnabled  bool   `env:"EMAS_MAIL_ENABLED" envDefault:"false"`
	MailHost     string `env:"EMAS_MAIL_HOST"`
	MailPort     int    `env:"EMAS_MAIL_PORT" envDefault:"587"`
	MailUsername string `env:"EMAS_MAIL_USERNAME"`
	MailPassword string `env:"EMAS_MAIL_PASSWORD"`
	MailFrom     string `env:"EMAS_MAIL_FROM" envDefault:"noreply@emasmetal.com"`
	MailTo       string `env:"EMAS_MAIL_TO" envDefault:"info@emasmetal.com"`

	// Bootstrap admin and sample content seeding
	DoSeed        bool   `env:"EMAS_DO_SEED" envDefault:"false"`
	AdminUsername string `env:"EMAS_ADMIN_USERNAME" envDefault:"admin"`
	AdminEmail    string `env:"EMAS_ADMIN_EMAIL" envDefault:"admin@emasmetal.com"`
	AdminPassword string `env:"EMAS_ADMIN_PASSWORD"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// MailConfigured returns true if outbound mail is enabled and a host is set.
func (c Config) MailConfigured() bool {
	return c.MailEnabled && c.MailHost != ""
}

// MaxUploadBytes returns the upload size cap in bytes.
func (c Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) * 1024 * 1024
}

// MinJWTSecretLength is the minimum required length for the token signing secret.
const MinJWTSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	// Validate token signing secret length
	if len(cfg.JWTSecret) < MinJWTSecretLength {
		return nil, fmt.Errorf("EMAS_JWT_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinJWTSecretLength, len(cfg.JWTSecret))
	}

	// Reject known weak/default secrets
	for _, weak := range knownWeakSecrets {
		if cfg.JWTSecret == weak {
			return nil, fmt.Errorf("EMAS_JWT_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	// Warn about low-entropy secrets
	if !hasMinimumEntropy(cfg.JWTSecret) {
		slog.Warn("EMAS_JWT_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("EMAS_TOKEN_TTL_HOURS must be positive, got %d", cfg.TokenTTL)
	}

	if cfg.MaxUploadMB <= 0 {
		return nil, fmt.Errorf("EMAS_UPLOAD_MAX_MB must be positive, got %d", cfg.MaxUploadMB)
	}

	if cfg.DoSeed && cfg.AdminPassword == "" {
		return nil, fmt.Errorf("EMAS_ADMIN_PASSWORD is required when EMAS_DO_SEED is enabled")
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
