// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"
)

const msgDeadline = "The catalog took too long to answer. Try again in a moment."

// Deadline bounds how long a handler may run. Paths ending with a key of
// slow get that budget instead of def; quote uploads wait on extraction.
// When the budget runs out the client gets 503 and later writes are dropped.
func Deadline(def time.Duration, slow map[string]time.Duration) func(http.Handler) http.Handler {
	budget := func(path string) time.Duration {
		for suffix, d := range slow {
			if strings.HasSuffix(path, suffix) {
				return d
			}
		}
		return def
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), budget(r.URL.Path))
			defer cancel()

			gw := &guardedWriter{ResponseWriter: w}
			done := make(chan struct{})
			go func() {
				defer close(done)
				next.ServeHTTP(gw, r.WithContext(ctx))
			}()

			select {
			case <-done:
			case <-ctx.Done():
				if gw.expire() {
					deny(w, r, http.StatusServiceUnavailable, msgDeadline)
				}
			}
		})
	}
}

// guardedWriter serializes writes so the deadline response and a late
// handler never interleave.
type guardedWriter struct {
	http.ResponseWriter
	mu      sync.Mutex
	started bool
	expired bool
}

// expire stops further writes and reports whether the response is still
// untouched.
func (g *guardedWriter) expire() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.expired = true
	return !g.started
}

func (g *guardedWriter) WriteHeader(code int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.expired || g.started {
		return
	}
	g.started = true
	g.ResponseWriter.WriteHeader(code)
}

func (g *guardedWriter) Write(b []byte) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.expired {
		return 0, http.ErrHandlerTimeout
	}
	g.started = true
	return g.ResponseWriter.Write(b)
}
