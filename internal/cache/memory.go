// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryOptions configures an in-process cache.
type MemoryOptions struct {
	DefaultTTL time.Duration
	// MaxEntries caps the entry count; 0 means unbounded.
	MaxEntries int
	// SweepEvery removes expired entries periodically; 0 disables it.
	SweepEvery time.Duration
}

type memoryEntry struct {
	value   []byte
	expires time.Time
}

// Memory is a map-backed Backend for single-instance deployments.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	opts    MemoryOptions
	hits    int64
	misses  int64
	closed  bool
	stop    chan struct{}
	now     func() time.Time
}

// NewMemory creates a memory backend and starts its sweeper when asked to.
func NewMemory(opts MemoryOptions) *Memory {
	if opts.DefaultTTL <= 0 {
		opts.DefaultTTL = 5 * time.Minute
	}
	m := &Memory{
		entries: make(map[string]memoryEntry),
		opts:    opts,
		stop:    make(chan struct{}),
		now:     time.Now,
	}
	if opts.SweepEvery > 0 {
		go m.sweepLoop(opts.SweepEvery)
	}
	return m
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	e, ok := m.entries[key]
	if ok && !m.now().Before(e.expires) {
		delete(m.entries, key)
		ok = false
	}
	if !ok {
		m.misses++
		return nil, ErrMiss
	}
	m.hits++
	return append([]byte(nil), e.value...), nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = m.opts.DefaultTTL
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if _, exists := m.entries[key]; !exists && m.opts.MaxEntries > 0 && len(m.entries) >= m.opts.MaxEntries {
		m.makeRoomLocked()
	}
	m.entries[key] = memoryEntry{value: append([]byte(nil), value...), expires: m.now().Add(ttl)}
	return nil
}

// makeRoomLocked drops expired entries, then the one closest to expiry.
func (m *Memory) makeRoomLocked() {
	m.sweepLocked()
	if len(m.entries) < m.opts.MaxEntries {
		return
	}
	var victim string
	var soonest time.Time
	for k, e := range m.entries {
		if victim == "" || e.expires.Before(soonest) {
			victim, soonest = k, e.expires
		}
	}
	delete(m.entries, victim)
}

func (m *Memory) sweepLocked() {
	now := m.now()
	for k, e := range m.entries {
		if !now.Before(e.expires) {
			delete(m.entries, k)
		}
	}
}

func (m *Memory) DeleteByPrefix(_ context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	for k := range m.entries {
		if strings.HasPrefix(k, prefix) {
			delete(m.entries, k)
		}
	}
	return nil
}

// Clear drops all entries and zeroes the counters.
func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	clear(m.entries)
	m.hits, m.misses = 0, 0
	return nil
}

func (m *Memory) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return newStats(m.hits, m.misses, len(m.entries))
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.stop)
	}
	return nil
}

func (m *Memory) sweepLoop(every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			m.mu.Lock()
			m.sweepLocked()
			m.mu.Unlock()
		case <-m.stop:
			return
		}
	}
}

var _ Backend = (*Memory)(nil)
