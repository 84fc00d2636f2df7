// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClockedMemory(t *testing.T, opts MemoryOptions) (*Memory, *time.Time) {
	t.Helper()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	m := NewMemory(opts)
	m.now = func() time.Time { return now }
	t.Cleanup(func() { _ = m.Close() })
	return m, &now
}

func TestMemory_GetSet(t *testing.T) {
	m, _ := newClockedMemory(t, MemoryOptions{DefaultTTL: time.Minute})
	ctx := context.Background()

	_, err := m.Get(ctx, "ports:")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, m.Set(ctx, "ports:", []byte(`["PTLIS"]`), 0))
	got, err := m.Get(ctx, "ports:")
	require.NoError(t, err)
	assert.Equal(t, `["PTLIS"]`, string(got))

	got[0] = 'X'
	again, _ := m.Get(ctx, "ports:")
	assert.Equal(t, `["PTLIS"]`, string(again), "callers must not mutate stored entries")

	s := m.Stats()
	assert.Equal(t, int64(2), s.Hits)
	assert.Equal(t, int64(1), s.Misses)
	assert.Equal(t, 1, s.Items)
	assert.InDelta(t, 66.7, s.HitRate, 0.1)
}

func TestMemory_Expiry(t *testing.T) {
	m, now := newClockedMemory(t, MemoryOptions{DefaultTTL: time.Minute})
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "hscodes:", []byte("1"), 0))
	require.NoError(t, m.Set(ctx, "countries:", []byte("2"), time.Hour))

	*now = now.Add(2 * time.Minute)

	_, err := m.Get(ctx, "hscodes:")
	assert.ErrorIs(t, err, ErrMiss)
	_, err = m.Get(ctx, "countries:")
	assert.NoError(t, err)
	assert.Equal(t, 1, m.Stats().Items)
}

func TestMemory_MaxEntriesEvictsSoonestExpiring(t *testing.T) {
	m, _ := newClockedMemory(t, MemoryOptions{DefaultTTL: time.Hour, MaxEntries: 2})
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, m.Set(ctx, "b", []byte("2"), time.Hour))
	require.NoError(t, m.Set(ctx, "c", []byte("3"), time.Hour))

	_, err := m.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrMiss)
	_, err = m.Get(ctx, "b")
	assert.NoError(t, err)
	_, err = m.Get(ctx, "c")
	assert.NoError(t, err)

	// Overwriting an existing key never evicts.
	require.NoError(t, m.Set(ctx, "b", []byte("4"), time.Hour))
	assert.Equal(t, 2, m.Stats().Items)
}

func TestMemory_DeleteByPrefix(t *testing.T) {
	m, _ := newClockedMemory(t, MemoryOptions{})
	ctx := context.Background()

	for _, k := range []string{"translations:q=brake", "translations:", "translations_old:", "ports:"} {
		require.NoError(t, m.Set(ctx, k, []byte("x"), 0))
	}
	require.NoError(t, m.DeleteByPrefix(ctx, "translations:"))

	_, err := m.Get(ctx, "translations:")
	assert.ErrorIs(t, err, ErrMiss)
	_, err = m.Get(ctx, "translations_old:")
	assert.NoError(t, err)
	_, err = m.Get(ctx, "ports:")
	assert.NoError(t, err)
}

func TestMemory_ClearResetsCounters(t *testing.T) {
	m, _ := newClockedMemory(t, MemoryOptions{})
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "k", []byte("v"), 0))
	_, _ = m.Get(ctx, "k")
	_, _ = m.Get(ctx, "missing")

	require.NoError(t, m.Clear(ctx))
	assert.Equal(t, Stats{}, m.Stats())
}

func TestMemory_Closed(t *testing.T) {
	m := NewMemory(MemoryOptions{SweepEvery: time.Millisecond})
	require.NoError(t, m.Close())
	require.NoError(t, m.Close())

	ctx := context.Background()
	_, err := m.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, m.Set(ctx, "k", nil, 0), ErrClosed)
	assert.ErrorIs(t, m.DeleteByPrefix(ctx, "k"), ErrClosed)
	assert.ErrorIs(t, m.Clear(ctx), ErrClosed)
}
