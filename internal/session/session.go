// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session keeps each administrator's backend token and profile in
// a server-side session.
package session

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
)

// Session keys.
const (
	KeyToken     = "token"
	KeyUserID    = "user_id"
	KeyUserName  = "user_name"
	KeyUserEmail = "user_email"
	KeyUserRole  = "user_role"
	KeyFlash     = "flash"
	KeyFlashType = "flash_type"
)

// Roles shown in the admin UI.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
)

// New creates a new session manager configured with SQLite store.
func New(db *sql.DB, isDev bool) *scs.SessionManager {
	sm := scs.New()

	sm.Store = sqlite3store.New(db)

	sm.Lifetime = 24 * time.Hour
	sm.IdleTimeout = 2 * time.Hour
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Path = "/"
	sm.Cookie.Secure = !isDev
	if !isDev {
		sm.Cookie.Name = "__Host-session"
	}

	return sm
}

// User is the signed-in administrator as stored in the session.
type User struct {
	ID    string
	Name  string
	Email string
	Role  string
}

// IsAdmin reports whether u may use admin-only screens.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// SignIn stores the backend token and user, renewing the session token.
func SignIn(ctx context.Context, sm *scs.SessionManager, token string, u User) error {
	if err := sm.RenewToken(ctx); err != nil {
		return err
	}
	sm.Put(ctx, KeyToken, token)
	sm.Put(ctx, KeyUserID, u.ID)
	sm.Put(ctx, KeyUserName, u.Name)
	sm.Put(ctx, KeyUserEmail, u.Email)
	sm.Put(ctx, KeyUserRole, u.Role)
	return nil
}

// SignOut destroys the session.
func SignOut(ctx context.Context, sm *scs.SessionManager) error {
	return sm.Destroy(ctx)
}

// Token returns the backend token, or "" when signed out.
func Token(ctx context.Context, sm *scs.SessionManager) string {
	return sm.GetString(ctx, KeyToken)
}

// CurrentUser returns the signed-in user. ok is false when signed out.
func CurrentUser(ctx context.Context, sm *scs.SessionManager) (User, bool) {
	if Token(ctx, sm) == "" {
		return User{}, false
	}
	return User{
		ID:    sm.GetString(ctx, KeyUserID),
		Name:  sm.GetString(ctx, KeyUserName),
		Email: sm.GetString(ctx, KeyUserEmail),
		Role:  sm.GetString(ctx, KeyUserRole),
	}, true
}

// Flash queues a message shown on the next rendered page.
func Flash(ctx context.Context, sm *scs.SessionManager, message, flashType string) {
	sm.Put(ctx, KeyFlash, message)
	sm.Put(ctx, KeyFlashType, flashType)
}

// PopFlash returns and clears the queued message. flashType defaults to "info".
func PopFlash(ctx context.Context, sm *scs.SessionManager) (message, flashType string) {
	message = sm.PopString(ctx, KeyFlash)
	if message == "" {
		return "", ""
	}
	flashType = sm.PopString(ctx, KeyFlashType)
	if flashType == "" {
		flashType = "info"
	}
	return message, flashType
}
