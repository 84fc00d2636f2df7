// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cache keeps catalog reference lists and approval counts between
// requests. Entries are JSON blobs keyed "<entity>:<filter>" so a mutation
// can drop every list of one entity at once.
package cache

import (
	"context"
	"errors"
	"time"
)

// Backend names.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Entities cached by the console.
const (
	EntityTranslations   = "translations"
	EntityCategories     = "categories"
	EntityHSCodes        = "hscodes"
	EntityCountries      = "countries"
	EntityManufacturers  = "manufacturers"
	EntityPorts          = "ports"
	EntityPositions      = "positions"
	EntityPriceTiers     = "price_tiers"
	EntityParts          = "parts"
	EntityApprovalCounts = "approval_counts"
)

var (
	// ErrMiss is returned when a key is absent or expired.
	ErrMiss = errors.New("cache miss")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("cache closed")
)

// Key builds the cache key for an entity list under a filter.
func Key(entity, filter string) string {
	return entity + ":" + filter
}

// Backend stores raw entries. Implementations are safe for concurrent use.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value for ttl; zero ttl means the backend default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeleteByPrefix(ctx context.Context, prefix string) error
	Clear(ctx context.Context) error
	Stats() Stats
	Close() error
}

// Stats counts lookups since start or the last clear.
type Stats struct {
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	Items   int     `json:"items"`
	HitRate float64 `json:"hit_rate"`
}

func newStats(hits, misses int64, items int) Stats {
	s := Stats{Hits: hits, Misses: misses, Items: items}
	if total := hits + misses; total > 0 {
		s.HitRate = float64(hits) / float64(total) * 100
	}
	return s
}
