// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/olegiv/partsadmin/internal/catalog"
)

func TestAuditLogRow(t *testing.T) {
	row := auditLogRow(catalog.AuditLog{
		Action:     "DELETE",
		EntityType: "parts",
		EntityID:   "p-9",
		Changes:    map[string]any{"part_name": "Pad"},
	})
	assert.Equal(t, "System", row.Who)
	assert.Equal(t, "p-9", row.Subject)
	assert.Equal(t, "badge-danger", row.Badge)
	assert.Equal(t, "{\n  \"part_name\": \"Pad\"\n}", row.Changes)

	row = auditLogRow(catalog.AuditLog{Action: "LOGOUT", Username: "rita", EntityIdentifier: "BRK-001", EntityID: "p-1"})
	assert.Equal(t, "rita", row.Who)
	assert.Equal(t, "BRK-001", row.Subject)
	assert.Equal(t, "badge-muted", row.Badge)
	assert.Empty(t, row.Changes)
}

func TestAuditBadge(t *testing.T) {
	tests := map[string]string{
		"CREATE": "badge-success",
		"LOGIN":  "badge-success",
		"UPDATE": "badge-warning",
		"DELETE": "badge-danger",
		"":       "badge-muted",
	}
	for action, want := range tests {
		assert.Equal(t, want, auditBadge(action), action)
	}
}
