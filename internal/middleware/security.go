// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"strings"
)

// SecurityOptions shapes the console's response headers.
type SecurityOptions struct {
	// Development drops HSTS so plain-HTTP localhost keeps working.
	Development bool
	// APIOrigin may be framed; the quote editor previews the uploaded
	// document straight from the catalog backend.
	APIOrigin string
}

// csp renders the Content-Security-Policy. Scripts and styles only come
// from the embedded bundle.
func (o SecurityOptions) csp() string {
	frames := "'self'"
	if o.APIOrigin != "" {
		frames += " " + o.APIOrigin
	}
	return strings.Join([]string{
		"default-src 'self'",
		"script-src 'self'",
		"style-src 'self'",
		"img-src 'self' data: blob:",
		"connect-src 'self'",
		"frame-src " + frames,
		"frame-ancestors 'none'",
		"object-src 'none'",
		"base-uri 'self'",
		"form-action 'self'",
	}, "; ")
}

// headers returns the fixed set written on every response.
func (o SecurityOptions) headers() http.Header {
	h := http.Header{}
	h.Set("Content-Security-Policy", o.csp())
	h.Set("X-Frame-Options", "DENY")
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("Referrer-Policy", "same-origin")
	h.Set("Permissions-Policy", "camera=(), geolocation=(), microphone=(), payment=(), usb=()")
	h.Set("Cross-Origin-Opener-Policy", "same-origin")
	if !o.Development {
		h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
	}
	return h
}

// SecurityHeaders writes the console's security headers before the
// handler runs, so a handler may still override one of them.
func SecurityHeaders(opts SecurityOptions) func(http.Handler) http.Handler {
	fixed := opts.headers()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			for k, v := range fixed {
				h[k] = v
			}
			next.ServeHTTP(w, r)
		})
	}
}
