// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/partsadmin/internal/catalog"
	"github.com/olegiv/partsadmin/internal/geoip"
	"github.com/olegiv/partsadmin/internal/logging"
	"github.com/olegiv/partsadmin/internal/middleware"
	"github.com/olegiv/partsadmin/internal/render"
	"github.com/olegiv/partsadmin/internal/validate"
)

// Deps are the collaborators shared by the admin handlers.
type Deps struct {
	API            *catalog.Client
	Renderer       *render.Renderer
	SessionManager *scs.SessionManager
	Lookups        *Lookups
	Recorder       *logging.Recorder
	Logger         *slog.Logger

	// Geo resolves sign-in countries; nil records local addresses only.
	Geo *geoip.Locator

	// MaxUploadBytes bounds quote document uploads.
	MaxUploadBytes int64
}

func (d Deps) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}

// fail reports a failed backend call and redirects to redirectURL.
func (d Deps) fail(w http.ResponseWriter, r *http.Request, redirectURL, fallback string, err error) {
	backendError(w, r, d.Renderer, d.SessionManager, redirectURL, fallback, err)
}

// record writes a reviewer action to the activity log.
func (d Deps) record(r *http.Request, e logging.Entry) {
	if d.Recorder == nil {
		return
	}
	if e.Actor == "" {
		e.Actor = middleware.GetUserEmail(r)
	}
	d.Recorder.Record(r.Context(), e)
}

// render writes a page, turning template failures into a 500.
func (d Deps) render(w http.ResponseWriter, r *http.Request, name string, data render.TemplateData) {
	renderOrError(w, r, d.Renderer, http.StatusOK, name, data)
}

// renderStatus is render with an explicit status, used to re-show forms.
func (d Deps) renderStatus(w http.ResponseWriter, r *http.Request, status int, name string, data render.TemplateData) {
	renderOrError(w, r, d.Renderer, status, name, data)
}

// warn logs a list that failed to load and returns the banner shown
// above the page.
func (d Deps) warn(r *http.Request, what string, err error) string {
	d.logger().Warn("loading list failed", "list", what, "path", r.URL.Path, "error", err)
	return "Could not load " + what + ": " + catalog.Detail(err, "backend unavailable")
}

// listFailed handles a list that could not be loaded for a page. A rejected
// token ends the session and returns true; otherwise a warning banner is
// added and the page renders without the list.
func (d Deps) listFailed(w http.ResponseWriter, r *http.Request, td *render.TemplateData, what string, err error) bool {
	if isUnauthorized(err) {
		expireSession(w, r, d.Renderer, d.SessionManager)
		return true
	}
	td.Warnings = append(td.Warnings, d.warn(r, what, err))
	return false
}

// formError re-renders a form page after a failed save: field errors go
// next to their inputs, a backend error becomes the page's flash.
func (d Deps) formError(w http.ResponseWriter, r *http.Request, name string, td render.TemplateData, what string, err error) {
	if isUnauthorized(err) {
		expireSession(w, r, d.Renderer, d.SessionManager)
		return
	}
	if fieldErrs, ok := validate.AsErrors(err); ok {
		td.Errors = fieldErrs
	} else {
		d.logger().Warn("saving "+what+" failed", "path", r.URL.Path, "error", err)
		td.Flash = catalog.Detail(err, "Failed to save "+what)
		td.FlashType = "error"
	}
	d.renderStatus(w, r, http.StatusUnprocessableEntity, name, td)
}
