// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package catalog

import (
	"context"
	"time"
)

// AuditLogs lists the backend's audit trail, newest first.
func (c *Client) AuditLogs(ctx context.Context, f AuditLogFilter) (*Page[AuditLog], error) {
	q := pageQuery(f.Page, f.PageSize)
	setIf(q, "action", f.Action)
	setIf(q, "entity_type", f.EntityType)
	setIf(q, "user_id", f.UserID)
	if !f.Start.IsZero() {
		q.Set("start_date", f.Start.UTC().Format(time.RFC3339))
	}
	if !f.End.IsZero() {
		q.Set("end_date", f.End.UTC().Format(time.RFC3339))
	}

	var out Page[AuditLog]
	if err := c.get(ctx, "/audit-logs/", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
