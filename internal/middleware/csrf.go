// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net/http"
	"strconv"

	"filippo.io/csrf/gorilla"
)

const msgCSRFRejected = "This form was sent from another site or has expired. Reload the page and try again."

// CSRFOptions configures cross-site request protection. The check relies
// on Fetch metadata, so there is no token to embed in forms.
type CSRFOptions struct {
	// Key authenticates legacy tokens; 32 bytes.
	Key []byte
	// Development trusts plain-HTTP localhost origins on Port.
	Development bool
	Port        int
	// TrustedOrigins are extra host:port values, e.g. a reverse proxy.
	TrustedOrigins []string
	Logger         *slog.Logger
}

func (o CSRFOptions) trusted() []string {
	origins := append([]string(nil), o.TrustedOrigins...)
	if o.Development {
		port := strconv.Itoa(o.Port)
		origins = append(origins, "localhost:"+port, "127.0.0.1:"+port)
	}
	return origins
}

// CSRF rejects state-changing requests that did not come from the console.
func CSRF(opts CSRFOptions) func(http.Handler) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	onFailure := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reason := "unknown"
		if err := csrf.FailureReason(r); err != nil {
			reason = err.Error()
		}
		logger.Warn("cross-site request rejected",
			"category", "auth",
			"reason", reason,
			"method", r.Method,
			"path", r.URL.Path,
			"origin", r.Header.Get("Origin"),
			"sec_fetch_site", r.Header.Get("Sec-Fetch-Site"),
		)
		deny(w, r, http.StatusForbidden, msgCSRFRejected)
	})

	csrfOpts := []csrf.Option{csrf.ErrorHandler(onFailure)}
	if origins := opts.trusted(); len(origins) > 0 {
		csrfOpts = append(csrfOpts, csrf.TrustedOrigins(origins))
	}
	return csrf.Protect(opts.Key, csrfOpts...)
}
