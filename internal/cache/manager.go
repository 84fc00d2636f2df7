// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"
)

// Manager is the typed front of a Backend. Lists are fetched once and
// reused across screens until a mutation invalidates their entity.
type Manager struct {
	backend Backend
	kind    string
	ttl     time.Duration
	logger  *slog.Logger
	loads   singleflight.Group
}

// NewManager wraps backend. kind is reported on the dashboard.
func NewManager(backend Backend, kind string, ttl time.Duration, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{backend: backend, kind: kind, ttl: ttl, logger: logger}
}

// BackendType returns BackendMemory or BackendRedis.
func (m *Manager) BackendType() string { return m.kind }

// Stats returns the backend counters.
func (m *Manager) Stats() Stats { return m.backend.Stats() }

// Ping checks that a remote backend answers. Memory backends always do.
func (m *Manager) Ping(ctx context.Context) error {
	if p, ok := m.backend.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Close releases the backend.
func (m *Manager) Close() error { return m.backend.Close() }

// InvalidateEntity drops every cached list of entity, whatever its filter.
func (m *Manager) InvalidateEntity(ctx context.Context, entity string) {
	if err := m.backend.DeleteByPrefix(ctx, entity+":"); err != nil {
		m.logger.Warn("cache invalidation failed", "entity", entity, "error", err)
		return
	}
	m.logger.Debug("cache invalidated", "entity", entity)
}

// ClearAll drops every entry and resets the counters.
func (m *Manager) ClearAll(ctx context.Context) error {
	if err := m.backend.Clear(ctx); err != nil {
		return err
	}
	m.logger.Info("cache cleared", "backend", m.kind)
	return nil
}

// Lookup reads a cached value without loading it. Undecodable entries
// count as absent.
func Lookup[T any](ctx context.Context, m *Manager, entity, filter string) (T, bool) {
	var v T
	raw, err := m.backend.Get(ctx, Key(entity, filter))
	if err != nil {
		return v, false
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		m.logger.Debug("dropping undecodable cache entry", "key", Key(entity, filter), "error", err)
		return v, false
	}
	return v, true
}

// Store writes value for entity and filter.
func Store[T any](ctx context.Context, m *Manager, entity, filter string, value T) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return m.backend.Set(ctx, Key(entity, filter), raw, m.ttl)
}

// Fetch returns the cached value for entity and filter, loading it on a
// miss. Concurrent misses on one key share a single load. Load errors
// are returned and nothing is cached.
func Fetch[T any](ctx context.Context, m *Manager, entity, filter string, load func(context.Context) (T, error)) (T, error) {
	if v, ok := Lookup[T](ctx, m, entity, filter); ok {
		return v, nil
	}

	key := Key(entity, filter)
	res, err, _ := m.loads.Do(key, func() (any, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if err := Store(ctx, m, entity, filter, v); err != nil {
			m.logger.Debug("cache store failed", "key", key, "error", err)
		}
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return res.(T), nil
}
