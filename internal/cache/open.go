// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"
)

// Config selects and tunes the backend.
type Config struct {
	// RedisURL switches to Redis when set, e.g. redis://localhost:6379/0.
	RedisURL string
	Prefix   string
	// FallbackToMemory keeps the console running when Redis is down.
	FallbackToMemory bool
	TTL              time.Duration
	MaxEntries       int
}

// Open builds the backend described by cfg and wraps it in a Manager.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}
	memory := func() Backend {
		return NewMemory(MemoryOptions{DefaultTTL: cfg.TTL, MaxEntries: cfg.MaxEntries, SweepEvery: time.Minute})
	}

	if cfg.RedisURL == "" {
		return NewManager(memory(), BackendMemory, cfg.TTL, logger), nil
	}

	rc, err := DialRedis(ctx, cfg.RedisURL, cfg.Prefix, cfg.TTL)
	if err == nil {
		logger.Info("using redis cache", "url", redactURL(cfg.RedisURL))
		return NewManager(rc, BackendRedis, cfg.TTL, logger), nil
	}
	if !cfg.FallbackToMemory {
		return nil, fmt.Errorf("connecting to redis at %s: %w", redactURL(cfg.RedisURL), err)
	}
	logger.Warn("redis unavailable, using memory cache", "url", redactURL(cfg.RedisURL), "error", err)
	return NewManager(memory(), BackendMemory, cfg.TTL, logger), nil
}

// redactURL hides the password of a Redis URL.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "redis://invalid"
	}
	return u.Redacted()
}
