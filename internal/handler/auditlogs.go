// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"net/http"
	"slices"

	"github.com/olegiv/partsadmin/internal/catalog"
	"github.com/olegiv/partsadmin/internal/render"
)

// AuditLogsPerPage is the number of audit entries per page.
const AuditLogsPerPage = 20

var (
	auditActions  = []string{"CREATE", "UPDATE", "DELETE", "LOGIN", "LOGOUT"}
	auditEntities = []AuditEntity{
		{Value: "parts", Label: "Parts"},
		{Value: "manufacturers", Label: "Manufacturers"},
		{Value: "translations", Label: "Translations"},
		{Value: "auth", Label: "Authentication"},
	}
)

// AuditEntity is an entity type offered by the audit log filter.
type AuditEntity struct {
	Value string
	Label string
}

// AuditLogsHandler shows the backend's audit trail.
type AuditLogsHandler struct {
	Deps
}

// NewAuditLogsHandler creates a new AuditLogsHandler.
func NewAuditLogsHandler(d Deps) *AuditLogsHandler {
	return &AuditLogsHandler{Deps: d}
}

// AuditLogRow is an audit entry prepared for display.
type AuditLogRow struct {
	catalog.AuditLog
	Who     string
	Subject string
	Changes string
	Badge   string
}

func auditBadge(action string) string {
	switch action {
	case "CREATE", "LOGIN":
		return "badge-success"
	case "UPDATE":
		return "badge-warning"
	case "DELETE":
		return "badge-danger"
	}
	return "badge-muted"
}

// AuditLogsData holds data for the audit log template.
type AuditLogsData struct {
	Rows       []AuditLogRow
	Total      int
	Action     string
	EntityType string
	Actions    []string
	Entities   []AuditEntity
	Pagination Pagination
}

func auditLogRow(l catalog.AuditLog) AuditLogRow {
	row := AuditLogRow{AuditLog: l, Who: l.Username, Subject: l.EntityIdentifier, Badge: auditBadge(l.Action)}
	if row.Who == "" {
		row.Who = "System"
	}
	if row.Subject == "" {
		row.Subject = l.EntityID
	}
	if len(l.Changes) > 0 {
		if b, err := json.MarshalIndent(l.Changes, "", "  "); err == nil {
			row.Changes = string(b)
		}
	}
	return row
}

// List handles GET /admin/audit-logs. Unknown filter values are dropped
// rather than sent to the backend.
func (h *AuditLogsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := catalog.AuditLogFilter{
		Action:     q.Get("action"),
		EntityType: q.Get("entity_type"),
		Page:       pageParam(r),
		PageSize:   AuditLogsPerPage,
	}
	if !slices.Contains(auditActions, filter.Action) {
		filter.Action = ""
	}
	if !slices.ContainsFunc(auditEntities, func(e AuditEntity) bool { return e.Value == filter.EntityType }) {
		filter.EntityType = ""
	}
	td := render.TemplateData{Title: "Audit logs", Nav: navAuditLogs}

	result, err := h.API.AuditLogs(r.Context(), filter)
	if err != nil {
		if h.listFailed(w, r, &td, "audit logs", err) {
			return
		}
		result = &catalog.Page[catalog.AuditLog]{}
	}

	rows := make([]AuditLogRow, 0, len(result.Items))
	for _, l := range result.Items {
		rows = append(rows, auditLogRow(l))
	}
	td.Data = AuditLogsData{
		Rows:       rows,
		Total:      result.Total,
		Action:     filter.Action,
		EntityType: filter.EntityType,
		Actions:    auditActions,
		Entities:   auditEntities,
		Pagination: buildPagination(filter.Page, result.Total, AuditLogsPerPage, redirectAdmin+RouteAuditLogs, q),
	}
	h.render(w, r, "admin/audit_logs", td)
}
