// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package logging

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/olegiv/partsadmin/internal/store"
)

// Entry is a reviewer action worth keeping in the activity log.
type Entry struct {
	Category   string
	Message    string
	Actor      string
	EntityType string
	EntityID   string
	Details    map[string]string
}

// Recorder writes reviewer actions to the activity log and the logger.
type Recorder struct {
	queries *store.Queries
	logger  *slog.Logger
}

// NewRecorder creates a recorder. db may be nil, in which case entries
// are only logged.
func NewRecorder(db *sql.DB, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Recorder{logger: logger}
	if db != nil {
		r.queries = store.New(db)
	}
	return r
}

// Record stores e. Storage failures are logged, never returned.
func (r *Recorder) Record(ctx context.Context, e Entry) {
	r.logger.Info(e.Message,
		"category", e.Category,
		"actor", e.Actor,
		"entity_type", e.EntityType,
		"entity_id", e.EntityID,
	)
	if r.queries == nil {
		return
	}
	details := e.Details
	if details == nil {
		details = map[string]string{}
	}
	_, err := r.queries.CreateActivity(context.WithoutCancel(ctx), store.CreateActivityParams{
		Level:      store.LevelInfo,
		Category:   e.Category,
		Message:    e.Message,
		Actor:      e.Actor,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		Metadata:   metadataJSON(details),
	})
	if err != nil {
		r.logger.Error("recording activity failed", "error", err)
	}
}
