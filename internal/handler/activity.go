// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/olegiv/partsadmin/internal/render"
	"github.com/olegiv/partsadmin/internal/store"
)

// ActivityPerPage is the number of activity rows per page.
const ActivityPerPage = 25

// ActivityHandler shows the local activity log.
type ActivityHandler struct {
	Deps
	queries *store.Queries
}

// NewActivityHandler creates a new ActivityHandler.
func NewActivityHandler(d Deps, db *sql.DB) *ActivityHandler {
	return &ActivityHandler{Deps: d, queries: store.New(db)}
}

// ActivityRow is an activity entry prepared for display.
type ActivityRow struct {
	store.Activity
	Details     string
	DetailsLong bool
}

// detailsLengthThreshold is the max chars before details are collapsible.
const detailsLengthThreshold = 80

// formatMetadata converts JSON metadata to "key: value" text.
func formatMetadata(metadata string) string {
	if metadata == "" || metadata == "{}" {
		return ""
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(metadata), &data); err != nil {
		return metadata
	}
	if len(data) == 0 {
		return ""
	}

	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		var s string
		switch v := data[key].(type) {
		case string:
			s = v
		case float64:
			s = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			s = strconv.FormatBool(v)
		default:
			if b, err := json.Marshal(v); err == nil {
				s = string(b)
			}
		}
		parts = append(parts, key+": "+s)
	}
	return strings.Join(parts, ", ")
}

// ActivityListData holds data for the activity template.
type ActivityListData struct {
	Rows       []ActivityRow
	Total      int64
	Level      string
	Category   string
	Levels     []string
	Categories []string
	Pagination Pagination
}

var (
	activityLevels     = []string{store.LevelInfo, store.LevelWarning, store.LevelError}
	activityCategories = []string{
		store.CategoryApproval,
		store.CategoryTranslation,
		store.CategoryEquivalence,
		store.CategoryUpload,
		store.CategoryAuth,
		store.CategoryCache,
		store.CategorySystem,
	}
)

// List handles GET /admin/activity.
func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := store.ListActivitiesParams{Level: q.Get("level"), Category: q.Get("category")}

	total, err := h.queries.CountActivities(r.Context(), params)
	if err != nil {
		logAndInternalError(w, "failed to count activity", "error", err)
		return
	}

	pagination := buildPagination(pageParam(r), int(total), ActivityPerPage, redirectAdmin+RouteActivity, q)
	params.Limit = ActivityPerPage
	params.Offset = int64((pagination.CurrentPage - 1) * ActivityPerPage)

	items, err := h.queries.ListActivities(r.Context(), params)
	if err != nil {
		logAndInternalError(w, "failed to list activity", "error", err)
		return
	}

	rows := make([]ActivityRow, 0, len(items))
	for _, a := range items {
		details := formatMetadata(a.Metadata)
		rows = append(rows, ActivityRow{Activity: a, Details: details, DetailsLong: len(details) > detailsLengthThreshold})
	}

	h.render(w, r, "admin/activity", render.TemplateData{
		Title: "Activity",
		Nav:   navActivity,
		Data: ActivityListData{
			Rows:       rows,
			Total:      total,
			Level:      params.Level,
			Category:   params.Category,
			Levels:     activityLevels,
			Categories: activityCategories,
			Pagination: pagination,
		},
	})
}
