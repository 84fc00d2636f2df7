// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"database/sql"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/olegiv/partsadmin/internal/cache"
	"github.com/olegiv/partsadmin/internal/session"
)

const healthCheckTimeout = 3 * time.Second

// Check states.
const (
	stateHealthy   = "healthy"
	stateDegraded  = "degraded"
	stateUnhealthy = "unhealthy"
)

// Pinger is anything the health check can probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports whether the console can serve reviewers.
type HealthHandler struct {
	db      *sql.DB
	backend Pinger
	cache   *cache.Manager
	sm      *scs.SessionManager
	version string
	started time.Time
}

// NewHealthHandler creates a new health handler. backend, cm and sm may be nil.
func NewHealthHandler(db *sql.DB, backend Pinger, cm *cache.Manager, sm *scs.SessionManager, version string) *HealthHandler {
	return &HealthHandler{db: db, backend: backend, cache: cm, sm: sm, version: version, started: time.Now()}
}

// Check is the result of one probe.
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// HealthReport is the signed-in view of /health.
type HealthReport struct {
	Status    string           `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
	Uptime    string           `json:"uptime"`
	Version   string           `json:"version"`
	Checks    map[string]Check `json:"checks"`
	Runtime   *RuntimeInfo     `json:"runtime,omitempty"`
}

// RuntimeInfo is included with ?verbose=true.
type RuntimeInfo struct {
	GoVersion  string `json:"go_version"`
	Goroutines int    `json:"goroutines"`
	CPUs       int    `json:"cpus"`
	HeapAlloc  string `json:"heap_alloc"`
	Sys        string `json:"sys"`
}

// probe times fn and turns its error into failState.
func probe(ctx context.Context, fn func(context.Context) error, okMessage, failState string) Check {
	start := time.Now()
	err := fn(ctx)
	latency := time.Since(start).Round(time.Microsecond).String()
	if err != nil {
		return Check{Status: failState, Message: err.Error(), Latency: latency}
	}
	return Check{Status: stateHealthy, Message: okMessage, Latency: latency}
}

// runChecks probes the local database, the catalog backend and the cache
// concurrently.
func (h *HealthHandler) runChecks(ctx context.Context) map[string]Check {
	var (
		mu     sync.Mutex
		checks = make(map[string]Check, 3)
		g      errgroup.Group
	)
	set := func(name string, c Check) {
		mu.Lock()
		checks[name] = c
		mu.Unlock()
	}

	g.Go(func() error {
		set("database", probe(ctx, h.db.PingContext, "connected", stateUnhealthy))
		return nil
	})
	g.Go(func() error {
		if h.backend == nil {
			set("backend", Check{Status: stateDegraded, Message: "not configured"})
			return nil
		}
		set("backend", probe(ctx, h.backend.Ping, "reachable", stateDegraded))
		return nil
	})
	g.Go(func() error {
		if h.cache == nil {
			set("cache", Check{Status: stateHealthy, Message: "disabled"})
			return nil
		}
		stats := h.cache.Stats()
		msg := h.cache.BackendType() + ", " + humanize.Comma(stats.Hits) + " hits, " + humanize.Comma(stats.Misses) + " misses"
		set("cache", probe(ctx, h.cache.Ping, msg, stateDegraded))
		return nil
	})
	_ = g.Wait()
	return checks
}

// overall folds the checks: a dead database fails the console, anything
// else only degrades it.
func overall(checks map[string]Check) (string, int) {
	state := stateHealthy
	for name, c := range checks {
		switch {
		case name == "database" && c.Status != stateHealthy:
			return stateUnhealthy, http.StatusServiceUnavailable
		case c.Status != stateHealthy:
			state = stateDegraded
		}
	}
	return state, http.StatusOK
}

// Health handles GET /health. Anonymous callers only get the status.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	checks := h.runChecks(ctx)
	state, code := overall(checks)

	if !h.isSignedIn(r) {
		writeJSON(w, code, map[string]string{"status": state})
		return
	}

	report := HealthReport{
		Status:    state,
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(h.started).Round(time.Second).String(),
		Version:   h.version,
		Checks:    checks,
	}
	if r.URL.Query().Get("verbose") == "true" {
		report.Runtime = runtimeInfo()
	}
	writeJSON(w, code, report)
}

// Liveness handles GET /health/live.
func (h *HealthHandler) Liveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// Readiness handles GET /health/ready. Only the local database gates
// readiness; reviewers can still sign in to see backend errors.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	db := probe(ctx, h.db.PingContext, "", stateUnhealthy)
	if db.Status == stateHealthy {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
		return
	}
	resp := map[string]string{"status": "not_ready"}
	if h.isSignedIn(r) {
		resp["message"] = db.Message
	}
	writeJSON(w, http.StatusServiceUnavailable, resp)
}

// isSignedIn reports whether the request carries a signed-in session.
// scs panics when the session was not loaded, so that counts as anonymous.
func (h *HealthHandler) isSignedIn(r *http.Request) (ok bool) {
	if h.sm == nil {
		return false
	}
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return session.Token(r.Context(), h.sm) != ""
}

func runtimeInfo() *RuntimeInfo {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return &RuntimeInfo{
		GoVersion:  runtime.Version(),
		Goroutines: runtime.NumGoroutine(),
		CPUs:       runtime.NumCPU(),
		HeapAlloc:  humanize.IBytes(m.HeapAlloc),
		Sys:        humanize.IBytes(m.Sys),
	}
}
