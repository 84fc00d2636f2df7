// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/partsadmin/internal/catalog"
	"github.com/olegiv/partsadmin/internal/render"
	"github.com/olegiv/partsadmin/internal/session"
)

// Shared redirect targets.
const (
	redirectLogin     = "/login"
	redirectAdmin     = "/admin"
	redirectApprovals = "/admin/approvals"
)

// msgSessionExpired is shown when the backend rejects the stored token.
const msgSessionExpired = "Your session has expired. Please sign in again."

// flashAndRedirect sets a flash message and redirects to the given URL.
// Uses http.StatusSeeOther (303) for POST redirects.
func flashAndRedirect(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message, messageType string) {
	renderer.SetFlash(r, message, messageType)
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// flashError sets an error flash message and redirects to the given URL.
func flashError(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message string) {
	flashAndRedirect(w, r, renderer, url, message, "error")
}

// flashSuccess sets a success flash message and redirects to the given URL.
func flashSuccess(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message string) {
	flashAndRedirect(w, r, renderer, url, message, "success")
}

// parseFormOrRedirect parses the request form and redirects with an error message on failure.
// Returns true if parsing succeeded, false if it failed (and redirect was performed).
func parseFormOrRedirect(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, redirectURL string) bool {
	if err := r.ParseForm(); err != nil {
		flashError(w, r, renderer, redirectURL, "Invalid form data")
		return false
	}
	return true
}

// logAndHTTPError logs an error and writes an HTTP error response.
func logAndHTTPError(w http.ResponseWriter, message string, statusCode int, logMsg string, args ...any) {
	slog.Error(logMsg, args...)
	http.Error(w, message, statusCode)
}

// logAndInternalError logs an error and writes a 500 Internal Server Error response.
func logAndInternalError(w http.ResponseWriter, logMsg string, args ...any) {
	logAndHTTPError(w, "Internal Server Error", http.StatusInternalServerError, logMsg, args...)
}

// renderOrError renders a template and turns a template failure into a 500.
func renderOrError(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, status int, name string, data render.TemplateData) {
	if err := renderer.RenderStatus(w, r, status, name, data); err != nil {
		logAndInternalError(w, "failed to render template", "template", name, "error", err)
	}
}

// expireSession ends the session and sends the user to the login page.
func expireSession(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, sm *scs.SessionManager) {
	if sm != nil {
		if err := session.SignOut(r.Context(), sm); err != nil {
			slog.Warn("failed to destroy expired session", "error", err)
		}
	}
	flashError(w, r, renderer, redirectLogin, msgSessionExpired)
}

// backendError handles a failed catalog call. A rejected token ends the
// session; anything else is flashed with the backend's detail, or fallback
// when the backend gave none.
func backendError(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, sm *scs.SessionManager, redirectURL, fallback string, err error) {
	if errors.Is(err, catalog.ErrUnauthorized) {
		expireSession(w, r, renderer, sm)
		return
	}
	slog.Warn("catalog request failed", "path", r.URL.Path, "error", err)
	flashError(w, r, renderer, redirectURL, catalog.Detail(err, fallback))
}

// requireRecord loads a record by its backend ID. On failure it flashes a
// message and redirects; the bool reports whether the caller may continue.
//
// Example usage:
//
//	part, ok := requireRecord(w, r, h.renderer, h.sm, "/admin/parts", "Part", id,
//	    func(id string) (*catalog.Part, error) { return h.api.Part(r.Context(), id) })
func requireRecord[T any](
	w http.ResponseWriter,
	r *http.Request,
	renderer *render.Renderer,
	sm *scs.SessionManager,
	redirectURL string,
	entityName string,
	id string,
	load func(id string) (*T, error),
) (*T, bool) {
	rec, err := load(id)
	if err != nil {
		switch {
		case catalog.IsNotFound(err):
			flashError(w, r, renderer, redirectURL, entityName+" not found")
		default:
			backendError(w, r, renderer, sm, redirectURL, "Error loading "+entityName, err)
		}
		return nil, false
	}
	return rec, true
}

// requireRecordJSON is requireRecord for JSON endpoints.
func requireRecordJSON[T any](
	w http.ResponseWriter,
	entityName string,
	id string,
	load func(id string) (*T, error),
) (*T, bool) {
	rec, err := load(id)
	if err != nil {
		switch {
		case catalog.IsNotFound(err):
			writeJSONError(w, http.StatusNotFound, entityName+" not found")
		case errors.Is(err, catalog.ErrUnauthorized):
			writeJSONError(w, http.StatusUnauthorized, msgSessionExpired)
		default:
			slog.Warn("failed to load "+entityName, "error", err, "id", id)
			writeJSONError(w, http.StatusBadGateway, catalog.Detail(err, "Error loading "+entityName))
		}
		return nil, false
	}
	return rec, true
}

// isUnauthorized reports whether the backend rejected the session token.
func isUnauthorized(err error) bool {
	return errors.Is(err, catalog.ErrUnauthorized)
}
