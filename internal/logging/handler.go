// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging provides a slog handler that copies warnings and errors
// into the activity log, the recorder used for review actions, and logger
// setup.
package logging

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/olegiv/partsadmin/internal/store"
)

// ActivityHandler is a slog.Handler that wraps another handler and also
// writes records at or above its level to the activity log.
type ActivityHandler struct {
	inner   slog.Handler
	queries *store.Queries
	level   slog.Level // Minimum level to forward to the activity log (default: WARN)
	attrs   []slog.Attr
}

// NewActivityHandler wraps inner, copying WARN and above to db.
func NewActivityHandler(inner slog.Handler, db *sql.DB) *ActivityHandler {
	return NewActivityHandlerWithLevel(inner, db, slog.LevelWarn)
}

// NewActivityHandlerWithLevel wraps inner with a custom minimum level.
func NewActivityHandlerWithLevel(inner slog.Handler, db *sql.DB, level slog.Level) *ActivityHandler {
	return &ActivityHandler{
		inner:   inner,
		queries: store.New(db),
		level:   level,
	}
}

// Enabled implements slog.Handler.
func (h *ActivityHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *ActivityHandler) Handle(ctx context.Context, r slog.Record) error {
	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}

	if r.Level >= h.level {
		h.write(r)
	}

	return nil
}

// WithAttrs implements slog.Handler.
func (h *ActivityHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &ActivityHandler{
		inner:   h.inner.WithAttrs(attrs),
		queries: h.queries,
		level:   h.level,
		attrs:   merged,
	}
}

// WithGroup implements slog.Handler.
func (h *ActivityHandler) WithGroup(name string) slog.Handler {
	return &ActivityHandler{
		inner:   h.inner.WithGroup(name),
		queries: h.queries,
		level:   h.level,
		attrs:   h.attrs,
	}
}

// write stores r using a background context so the row is kept even when
// the request that logged it was cancelled.
func (h *ActivityHandler) write(r slog.Record) {
	fields := make(map[string]string, r.NumAttrs()+len(h.attrs))
	var category string

	collect := func(a slog.Attr) bool {
		if a.Key == "category" {
			category = a.Value.String()
			return true
		}
		fields[a.Key] = a.Value.String()
		return true
	}
	for _, a := range h.attrs {
		collect(a)
	}
	r.Attrs(collect)

	if category == "" {
		category = inferCategory(r.Message)
	}

	_, _ = h.queries.CreateActivity(context.Background(), store.CreateActivityParams{
		Level:      levelName(r.Level),
		Category:   category,
		Message:    r.Message,
		Actor:      fields["actor"],
		EntityType: fields["entity_type"],
		EntityID:   fields["entity_id"],
		Metadata:   metadataJSON(fields),
		CreatedAt:  r.Time,
	})
}

func levelName(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return store.LevelError
	case level >= slog.LevelWarn:
		return store.LevelWarning
	default:
		return store.LevelInfo
	}
}

// inferCategory guesses a category from the message text.
func inferCategory(msg string) string {
	msg = strings.ToLower(msg)
	switch {
	case strings.Contains(msg, "login") || strings.Contains(msg, "logout") || strings.Contains(msg, "unauthorized") || strings.Contains(msg, "session"):
		return store.CategoryAuth
	case strings.Contains(msg, "approv") || strings.Contains(msg, "reject") || strings.Contains(msg, "pending"):
		return store.CategoryApproval
	case strings.Contains(msg, "translation"):
		return store.CategoryTranslation
	case strings.Contains(msg, "equivalence"):
		return store.CategoryEquivalence
	case strings.Contains(msg, "upload"):
		return store.CategoryUpload
	case strings.Contains(msg, "cache"):
		return store.CategoryCache
	default:
		return store.CategorySystem
	}
}

func metadataJSON(fields map[string]string) string {
	if len(fields) == 0 {
		return "{}"
	}
	b, err := json.Marshal(fields)
	if err != nil {
		return "{}"
	}
	return string(b)
}
