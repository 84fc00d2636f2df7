// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/robfig/cron/v3"
)

// knownWeakSecrets contains default/example secrets that must be rejected in production.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath        string `env:"PARTSADMIN_DB_PATH" envDefault:"./data/partsadmin.db"`
	SessionSecret string `env:"PARTSADMIN_SESSION_SECRET,required"`
	ServerHost    string `env:"PARTSADMIN_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"PARTSADMIN_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"PARTSADMIN_ENV" envDefault:"development"`
	LogLevel      string `env:"PARTSADMIN_LOG_LEVEL" envDefault:"info"`

	// Extra host:port origins allowed to post forms, e.g. behind a proxy
	TrustedOrigins []string `env:"PARTSADMIN_TRUSTED_ORIGINS" envSeparator:","`

	// Catalog backend
	APIURL        string        `env:"PARTSADMIN_API_URL" envDefault:"http://localhost:8000/api/v1"`
	APITimeout    time.Duration `env:"PARTSADMIN_API_TIMEOUT" envDefault:"10s"`
	UploadTimeout time.Duration `env:"PARTSADMIN_UPLOAD_TIMEOUT" envDefault:"120s"` // Quote extraction is slow
	APIRateLimit  float64       `env:"PARTSADMIN_API_RATE_LIMIT" envDefault:"20"`   // Requests per second, 0 disables
	APIRateBurst  int           `env:"PARTSADMIN_API_RATE_BURST" envDefault:"40"`
	ServiceToken  string        `env:"PARTSADMIN_SERVICE_TOKEN"` // Used by background jobs only
	MaxUploadMB   int64         `env:"PARTSADMIN_MAX_UPLOAD_MB" envDefault:"50"`

	// Cache configuration
	RedisURL     string `env:"PARTSADMIN_REDIS_URL"`                             // Optional Redis URL for distributed caching
	CachePrefix  string `env:"PARTSADMIN_CACHE_PREFIX" envDefault:"partsadmin:"` // Redis key prefix
	CacheTTL     int    `env:"PARTSADMIN_CACHE_TTL" envDefault:"300"`            // Default cache TTL in seconds
	CacheMaxSize int    `env:"PARTSADMIN_CACHE_MAX_SIZE" envDefault:"10000"`     // Max memory cache entries

	// Background refresh of the approval badge counts
	CountRefreshSchedule string `env:"PARTSADMIN_COUNT_REFRESH_SCHEDULE" envDefault:"*/5 * * * *"`

	// Activity log retention, 0 keeps everything
	ActivityRetentionDays int `env:"PARTSADMIN_ACTIVITY_RETENTION_DAYS" envDefault:"90"`

	// GeoLite2-Country database for sign-in locations, optional
	GeoIPDBPath string `env:"PARTSADMIN_GEOIP_DB_PATH"`
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

// BackgroundRefreshEnabled returns true if the scheduler has a token to call the backend with.
func (c Config) BackgroundRefreshEnabled() bool {
	return c.ServiceToken != "" && c.CountRefreshSchedule != ""
}

// MaxUploadBytes returns the upload size limit in bytes.
func (c Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

// ActivityRetention returns how long activity entries are kept.
func (c Config) ActivityRetention() time.Duration {
	return time.Duration(c.ActivityRetentionDays) * 24 * time.Hour
}

// MinSessionSecretLength is the minimum required length for the session secret.
// AES-256 requires 32 bytes minimum for secure encryption.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("PARTSADMIN_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, fmt.Errorf("PARTSADMIN_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("PARTSADMIN_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	u, err := url.Parse(cfg.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("PARTSADMIN_API_URL must be an absolute URL, got %q", cfg.APIURL)
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")

	if cfg.APITimeout <= 0 || cfg.UploadTimeout <= 0 {
		return nil, fmt.Errorf("PARTSADMIN_API_TIMEOUT and PARTSADMIN_UPLOAD_TIMEOUT must be positive")
	}

	if cfg.CountRefreshSchedule != "" {
		if _, err := cron.ParseStandard(cfg.CountRefreshSchedule); err != nil {
			return nil, fmt.Errorf("PARTSADMIN_COUNT_REFRESH_SCHEDULE: %w", err)
		}
	}

	for _, origin := range cfg.TrustedOrigins {
		if strings.Contains(origin, "://") {
			return nil, fmt.Errorf("PARTSADMIN_TRUSTED_ORIGINS takes host:port values, got %q", origin)
		}
	}

	if cfg.ActivityRetentionDays < 0 {
		return nil, fmt.Errorf("PARTSADMIN_ACTIVITY_RETENTION_DAYS must not be negative")
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
