// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/partsadmin/internal/guide"
	"github.com/olegiv/partsadmin/internal/render"
)

// GuideHandler serves the reviewer guide.
type GuideHandler struct {
	Deps
	guide *guide.Guide
}

// NewGuideHandler creates a new GuideHandler.
func NewGuideHandler(d Deps, g *guide.Guide) *GuideHandler {
	return &GuideHandler{Deps: d, guide: g}
}

// GuideData holds data for the guide template.
type GuideData struct {
	Entries []guide.Entry
	Page    *guide.Page
}

// Index handles GET /admin/guide.
func (h *GuideHandler) Index(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "admin/guide", render.TemplateData{
		Title: "Guide",
		Nav:   navGuide,
		Data:  GuideData{Entries: h.guide.List()},
	})
}

// Show handles GET /admin/guide/{slug}.
func (h *GuideHandler) Show(w http.ResponseWriter, r *http.Request) {
	page, err := h.guide.Render(chi.URLParam(r, "slug"))
	if err != nil {
		if errors.Is(err, guide.ErrNotFound) {
			flashError(w, r, h.Renderer, redirectAdmin+RouteGuide, "Guide not found")
			return
		}
		logAndInternalError(w, "failed to render guide", "error", err)
		return
	}
	h.render(w, r, "admin/guide", render.TemplateData{
		Title: page.Title,
		Nav:   navGuide,
		Data:  GuideData{Entries: h.guide.List(), Page: &page},
	})
}
