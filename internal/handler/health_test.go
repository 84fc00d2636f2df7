// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/partsadmin/internal/cache"
	"github.com/olegiv/partsadmin/internal/testutil"
)

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func newTestCache() *cache.Manager {
	return cache.NewManager(cache.NewMemory(cache.MemoryOptions{DefaultTTL: time.Minute}), cache.BackendMemory, time.Minute, testutil.TestLoggerSilent())
}

func TestOverall(t *testing.T) {
	tests := []struct {
		name   string
		checks map[string]Check
		want   string
		code   int
	}{
		{"all healthy", map[string]Check{"database": {Status: stateHealthy}, "backend": {Status: stateHealthy}}, stateHealthy, http.StatusOK},
		{"backend down", map[string]Check{"database": {Status: stateHealthy}, "backend": {Status: stateDegraded}}, stateDegraded, http.StatusOK},
		{"database down", map[string]Check{"database": {Status: stateUnhealthy}, "backend": {Status: stateHealthy}}, stateUnhealthy, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, code := overall(tt.checks)
			assert.Equal(t, tt.want, state)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestRunChecks(t *testing.T) {
	db := testutil.TestDB(t)
	h := NewHealthHandler(db, fakePinger{err: errors.New("connection refused")}, newTestCache(), nil, "test")

	checks := h.runChecks(context.Background())
	require.Len(t, checks, 3)
	assert.Equal(t, stateHealthy, checks["database"].Status)
	assert.Equal(t, stateDegraded, checks["backend"].Status)
	assert.Equal(t, "connection refused", checks["backend"].Message)
	assert.Equal(t, stateHealthy, checks["cache"].Status)
	assert.Contains(t, checks["cache"].Message, "memory, 0 hits")
}

func TestRunChecks_NothingConfigured(t *testing.T) {
	h := NewHealthHandler(testutil.TestDB(t), nil, nil, nil, "test")

	checks := h.runChecks(context.Background())
	assert.Equal(t, "not configured", checks["backend"].Message)
	assert.Equal(t, "disabled", checks["cache"].Message)
}

func TestHealth_AnonymousGetsStatusOnly(t *testing.T) {
	h := NewHealthHandler(testutil.TestDB(t), fakePinger{}, newTestCache(), nil, "test")

	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health?verbose=true", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, map[string]any{"status": stateHealthy}, body)
}

func TestHealth_DatabaseClosed(t *testing.T) {
	db := testutil.TestDB(t)
	require.NoError(t, db.Close())
	h := NewHealthHandler(db, fakePinger{}, nil, nil, "test")

	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), stateUnhealthy)

	rec = httptest.NewRecorder()
	h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.NotContains(t, rec.Body.String(), "message")
}

func TestReadiness(t *testing.T) {
	h := NewHealthHandler(testutil.TestDB(t), fakePinger{err: errors.New("down")}, nil, nil, "test")

	rec := httptest.NewRecorder()
	h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ready"}`, rec.Body.String())
}
