// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// authorization, and request context handling.
package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/olegiv/partsadmin/internal/catalog"
	"github.com/olegiv/partsadmin/internal/session"
)

const (
	loginPath       = "/login"
	msgSignInAgain  = "Your session has expired. Sign in again."
	msgForbiddenFor = "Forbidden: insufficient permissions"
)

type userKey struct{}

// WithUser returns a copy of ctx carrying the reviewer u.
func WithUser(ctx context.Context, u session.User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// Auth lets through requests whose session holds a backend token. Pages
// are sent to the sign-in form; script requests get 401 and the page
// navigates there itself.
func Auth(sm *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch {
			case session.Token(r.Context(), sm) != "":
				next.ServeHTTP(w, r)
			case wantsJSON(r):
				deny(w, r, http.StatusUnauthorized, msgSignInAgain)
			default:
				http.Redirect(w, r, loginPath, http.StatusSeeOther)
			}
		})
	}
}

// LoadUser attaches the signed-in reviewer, the backend token and the
// request ID to the context so the catalog client forwards them.
func LoadUser(sm *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if id := chimw.GetReqID(ctx); id != "" {
				ctx = catalog.WithRequestID(ctx, id)
			}
			if u, ok := session.CurrentUser(ctx, sm); ok {
				ctx = catalog.WithToken(WithUser(ctx, u), session.Token(ctx, sm))
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUser returns the reviewer attached by LoadUser, or nil.
func GetUser(r *http.Request) *session.User {
	if u, ok := r.Context().Value(userKey{}).(session.User); ok {
		return &u
	}
	return nil
}

// GetUserEmail is the email of GetUser, or "".
func GetUserEmail(r *http.Request) string {
	if u := GetUser(r); u != nil {
		return u.Email
	}
	return ""
}

var roleRank = map[string]int{
	session.RoleEditor: 1,
	session.RoleAdmin:  2,
}

// RequireRole rejects reviewers ranked below minRole. Admins outrank editors.
func RequireRole(minRole string) func(http.Handler) http.Handler {
	need := roleRank[minRole]

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u := GetUser(r)
			if u == nil {
				http.Redirect(w, r, loginPath, http.StatusSeeOther)
				return
			}
			if roleRank[u.Role] < need {
				slog.Warn("access denied",
					"category", "auth",
					"path", r.URL.Path,
					"actor", u.Email,
					"role", u.Role,
					"required_role", minRole,
				)
				deny(w, r, http.StatusForbidden, msgForbiddenFor)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin is RequireRole(session.RoleAdmin).
func RequireAdmin() func(http.Handler) http.Handler {
	return RequireRole(session.RoleAdmin)
}
