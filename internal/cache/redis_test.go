// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dialTestRedis connects to PARTSADMIN_TEST_REDIS_URL or skips.
func dialTestRedis(t *testing.T, prefix string) *Redis {
	t.Helper()
	url := os.Getenv("PARTSADMIN_TEST_REDIS_URL")
	if url == "" {
		t.Skip("PARTSADMIN_TEST_REDIS_URL not set")
	}
	r, err := DialRedis(context.Background(), url, prefix, time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = r.Clear(context.Background())
		_ = r.Close()
	})
	require.NoError(t, r.Clear(context.Background()))
	return r
}

func TestRedis_GetSetAndPrefixes(t *testing.T) {
	r := dialTestRedis(t, "partsadmin-test:")
	ctx := context.Background()

	_, err := r.Get(ctx, "ports:")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, r.Set(ctx, "ports:", []byte(`["PTLIS"]`), 0))
	require.NoError(t, r.Set(ctx, "hscodes:", []byte(`[]`), time.Second))
	got, err := r.Get(ctx, "ports:")
	require.NoError(t, err)
	assert.Equal(t, `["PTLIS"]`, string(got))
	assert.NoError(t, r.Ping(ctx))

	require.NoError(t, r.DeleteByPrefix(ctx, "ports:"))
	_, err = r.Get(ctx, "ports:")
	assert.ErrorIs(t, err, ErrMiss)

	s := r.Stats()
	assert.Equal(t, int64(1), s.Hits)
	assert.Equal(t, 1, s.Items)
}

func TestRedis_ClearLeavesForeignKeys(t *testing.T) {
	ours := dialTestRedis(t, "partsadmin-test-a:")
	theirs := dialTestRedis(t, "partsadmin-test-b:")
	ctx := context.Background()

	require.NoError(t, ours.Set(ctx, "k", []byte("1"), 0))
	require.NoError(t, theirs.Set(ctx, "k", []byte("2"), 0))

	require.NoError(t, ours.Clear(ctx))

	_, err := ours.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
	got, err := theirs.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "2", string(got))
}

func TestDialRedis_BadURL(t *testing.T) {
	_, err := DialRedis(context.Background(), "not a url", "", 0)
	assert.Error(t, err)
}
