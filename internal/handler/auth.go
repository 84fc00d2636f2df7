// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/olegiv/partsadmin/internal/catalog"
	"github.com/olegiv/partsadmin/internal/logging"
	"github.com/olegiv/partsadmin/internal/middleware"
	"github.com/olegiv/partsadmin/internal/render"
	"github.com/olegiv/partsadmin/internal/session"
	"github.com/olegiv/partsadmin/internal/store"
)

// AuthHandler handles sign-in, sign-out and the profile screen.
type AuthHandler struct {
	Deps
	loginProtection *middleware.LoginProtection
}

// NewAuthHandler creates a new AuthHandler. lp may be nil.
func NewAuthHandler(d Deps, lp *middleware.LoginProtection) *AuthHandler {
	return &AuthHandler{Deps: d, loginProtection: lp}
}

// LoginData holds data for the login template.
type LoginData struct {
	Email string
}

// LoginForm renders the login page. Signed-in users go to the dashboard.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if session.Token(r.Context(), h.SessionManager) != "" {
		http.Redirect(w, r, redirectAdmin, http.StatusSeeOther)
		return
	}
	h.render(w, r, "auth/login", render.TemplateData{Title: "Sign in", Data: LoginData{}})
}

// Login handles POST /login. The credentials are checked by the backend;
// the returned token is kept in the server-side session only.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.Renderer, redirectLogin) {
		return
	}

	email := formText(r, "email")
	password := r.FormValue("password")
	if email == "" || password == "" {
		flashError(w, r, h.Renderer, redirectLogin, "Email and password are required")
		return
	}

	if h.loginProtection != nil {
		if locked, remaining := h.loginProtection.IsAccountLocked(email); locked {
			h.record(r, logging.Entry{Category: store.CategoryAuth, Message: "Login attempt on locked account", Actor: email})
			flashError(w, r, h.Renderer, redirectLogin, "Account temporarily locked. Try again in "+formatDuration(remaining)+".")
			return
		}
	}

	auth, err := h.API.Login(r.Context(), email, password)
	if err != nil {
		h.loginFailed(w, r, email, err)
		return
	}

	ctx := catalog.WithToken(r.Context(), auth.AccessToken)
	me, err := h.API.Me(ctx)
	if err != nil {
		h.logger().Error("loading signed-in account failed", "error", err)
		flashError(w, r, h.Renderer, redirectLogin, catalog.Detail(err, "Could not load your account"))
		return
	}
	if !me.IsActive {
		flashError(w, r, h.Renderer, redirectLogin, "This account is disabled")
		return
	}

	if h.loginProtection != nil {
		h.loginProtection.RecordSuccessfulLogin(email)
	}

	user := session.User{ID: me.ID, Name: me.DisplayName(), Email: me.Email, Role: session.RoleEditor}
	if me.IsSuperuser {
		user.Role = session.RoleAdmin
	}
	if err := session.SignIn(r.Context(), h.SessionManager, auth.AccessToken, user); err != nil {
		logAndInternalError(w, "session renewal error", "error", err)
		return
	}

	h.record(r, logging.Entry{Category: store.CategoryAuth, Message: "User logged in", Actor: user.Email, Details: h.clientDetails(r)})
	flashSuccess(w, r, h.Renderer, redirectAdmin, "Welcome back, "+user.Name+"!")
}

// loginFailed counts a rejected sign-in and explains it to the user.
func (h *AuthHandler) loginFailed(w http.ResponseWriter, r *http.Request, email string, err error) {
	if !errors.Is(err, catalog.ErrUnauthorized) && catalog.StatusCode(err) != http.StatusBadRequest {
		h.logger().Error("login request failed", "error", err)
		flashError(w, r, h.Renderer, redirectLogin, catalog.Detail(err, "Sign-in is unavailable, please try again later"))
		return
	}

	h.record(r, logging.Entry{Category: store.CategoryAuth, Message: "Login failed", Actor: email, Details: h.clientDetails(r)})
	if h.loginProtection != nil {
		if locked, lockDuration := h.loginProtection.RecordFailedAttempt(email); locked {
			flashError(w, r, h.Renderer, redirectLogin, "Too many failed attempts. Account locked for "+formatDuration(lockDuration)+".")
			return
		}
		if remaining := h.loginProtection.RemainingAttempts(email); remaining <= 3 && remaining > 0 {
			flashError(w, r, h.Renderer, redirectLogin, fmt.Sprintf("Invalid email or password. %d attempts remaining.", remaining))
			return
		}
	}
	flashError(w, r, h.Renderer, redirectLogin, "Invalid email or password")
}

// Logout handles POST /logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if token := session.Token(ctx, h.SessionManager); token != "" {
		if err := h.API.Logout(catalog.WithToken(ctx, token)); err != nil {
			h.logger().Debug("backend logout failed", "error", err)
		}
	}
	if user, ok := session.CurrentUser(ctx, h.SessionManager); ok {
		h.record(r, logging.Entry{Category: store.CategoryAuth, Message: "User logged out", Actor: user.Email})
	}

	if err := session.SignOut(ctx, h.SessionManager); err != nil {
		h.logger().Error("session destroy error", "error", err)
	}
	flashAndRedirect(w, r, h.Renderer, redirectLogin, "You have been logged out", "info")
}

// ProfileData holds data for the profile template.
type ProfileData struct {
	Account *catalog.User
}

// Profile handles GET /admin/profile.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	me, err := h.API.Me(r.Context())
	if err != nil {
		h.fail(w, r, redirectAdmin, "Could not load your account", err)
		return
	}
	h.render(w, r, "admin/profile", render.TemplateData{Title: "Profile", Data: ProfileData{Account: me}})
}

// ChangePassword handles POST /admin/profile/password.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	redirect := redirectAdmin + RouteProfile
	if !parseFormOrRedirect(w, r, h.Renderer, redirect) {
		return
	}

	current := r.FormValue("current_password")
	next := r.FormValue("new_password")
	switch {
	case current == "" || next == "":
		flashError(w, r, h.Renderer, redirect, "Both passwords are required")
		return
	case next != r.FormValue("confirm_password"):
		flashError(w, r, h.Renderer, redirect, "The new passwords do not match")
		return
	case len(next) < 8:
		flashError(w, r, h.Renderer, redirect, "The new password must be at least 8 characters")
		return
	}

	if err := h.API.ChangePassword(r.Context(), current, next); err != nil {
		h.fail(w, r, redirect, "Could not change the password", err)
		return
	}
	h.record(r, logging.Entry{Category: store.CategoryAuth, Message: "Password changed"})
	flashSuccess(w, r, h.Renderer, redirect, "Password changed")
}

// formatDuration formats a duration into a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%d seconds", int(d.Seconds()))
	}
	if d < time.Hour {
		mins := int(d.Minutes())
		if mins == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", mins)
	}
	hours := int(d.Hours())
	if hours == 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", hours)
}
