// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/olegiv/partsadmin/internal/approval"
	"github.com/olegiv/partsadmin/internal/cache"
	"github.com/olegiv/partsadmin/internal/catalog"
	"github.com/olegiv/partsadmin/internal/logging"
	"github.com/olegiv/partsadmin/internal/render"
	"github.com/olegiv/partsadmin/internal/store"
)

// DashboardHandler handles the admin landing page.
type DashboardHandler struct {
	Deps
	approvals *approval.Service
	cache     *cache.Manager
}

// NewDashboardHandler creates a new DashboardHandler. cm may be nil.
func NewDashboardHandler(d Deps, approvals *approval.Service, cm *cache.Manager) *DashboardHandler {
	return &DashboardHandler{Deps: d, approvals: approvals, cache: cm}
}

// DashboardData holds data for the dashboard template.
type DashboardData struct {
	Stats        *catalog.DashboardStats
	Pending      approval.Counts
	CacheBackend string
	CacheStats   cache.Stats
}

// Dashboard handles GET /admin.
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	data := DashboardData{Stats: &catalog.DashboardStats{}}
	td := render.TemplateData{Title: "Dashboard", Nav: navDashboard}

	stats, err := h.API.DashboardStats(r.Context())
	if err != nil {
		if h.listFailed(w, r, &td, "statistics", err) {
			return
		}
	} else {
		data.Stats = stats
	}

	if counts, err := h.approvals.BadgeCounts(r.Context()); err != nil {
		td.Warnings = append(td.Warnings, h.warn(r, "pending approvals", err))
	} else {
		data.Pending = counts
	}

	if h.cache != nil {
		data.CacheBackend = h.cache.BackendType()
		data.CacheStats = h.cache.Stats()
	}

	td.Data = data
	h.render(w, r, "admin/dashboard", td)
}

// ClearCache handles POST /admin/cache/clear.
func (h *DashboardHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		flashAndRedirect(w, r, h.Renderer, redirectAdmin, "Caching is disabled", "info")
		return
	}
	if err := h.cache.ClearAll(r.Context()); err != nil {
		h.logger().Error("clearing cache failed", "error", err)
		flashError(w, r, h.Renderer, redirectAdmin, "Could not clear the cache")
		return
	}
	h.record(r, logging.Entry{Category: store.CategoryCache, Message: "Cache cleared"})
	flashSuccess(w, r, h.Renderer, redirectAdmin, "Cache cleared")
}
