// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries runs the application's SQL statements.
type Queries struct {
	db DBTX
}

// New creates Queries over db.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns Queries bound to tx.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// Activity levels.
const (
	LevelInfo    = "info"
	LevelWarning = "warning"
	LevelError   = "error"
)

// Activity categories.
const (
	CategoryApproval    = "approval"
	CategoryTranslation = "translation"
	CategoryEquivalence = "equivalence"
	CategoryUpload      = "upload"
	CategoryAuth        = "auth"
	CategoryCache       = "cache"
	CategorySystem      = "system"
)

// Activity is one row of the activity log.
type Activity struct {
	ID         int64
	Level      string
	Category   string
	Message    string
	Actor      string
	EntityType string
	EntityID   string
	Metadata   string
	CreatedAt  time.Time
}

// CreateActivityParams are the columns of a new activity row.
type CreateActivityParams struct {
	Level      string
	Category   string
	Message    string
	Actor      string
	EntityType string
	EntityID   string
	Metadata   string
	CreatedAt  time.Time
}

const createActivity = `INSERT INTO activity_log (
    level, category, message, actor, entity_type, entity_id, metadata, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

// CreateActivity inserts an activity row.
func (q *Queries) CreateActivity(ctx context.Context, arg CreateActivityParams) (Activity, error) {
	if arg.Level == "" {
		arg.Level = LevelInfo
	}
	if arg.Category == "" {
		arg.Category = CategorySystem
	}
	if arg.Metadata == "" {
		arg.Metadata = "{}"
	}
	if arg.CreatedAt.IsZero() {
		arg.CreatedAt = time.Now()
	}
	res, err := q.db.ExecContext(ctx, createActivity,
		arg.Level,
		arg.Category,
		arg.Message,
		arg.Actor,
		arg.EntityType,
		arg.EntityID,
		arg.Metadata,
		arg.CreatedAt.UTC(),
	)
	if err != nil {
		return Activity{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Activity{}, err
	}
	return Activity{
		ID:         id,
		Level:      arg.Level,
		Category:   arg.Category,
		Message:    arg.Message,
		Actor:      arg.Actor,
		EntityType: arg.EntityType,
		EntityID:   arg.EntityID,
		Metadata:   arg.Metadata,
		CreatedAt:  arg.CreatedAt.UTC(),
	}, nil
}

// ListActivitiesParams filters and pages the activity log. Empty filters
// match everything.
type ListActivitiesParams struct {
	Level    string
	Category string
	Limit    int64
	Offset   int64
}

const listActivities = `SELECT id, level, category, message, actor, entity_type, entity_id, metadata, created_at
FROM activity_log
WHERE (? = '' OR level = ?) AND (? = '' OR category = ?)
ORDER BY created_at DESC, id DESC
LIMIT ? OFFSET ?`

// ListActivities returns activity rows, newest first.
func (q *Queries) ListActivities(ctx context.Context, arg ListActivitiesParams) ([]Activity, error) {
	rows, err := q.db.QueryContext(ctx, listActivities,
		arg.Level, arg.Level,
		arg.Category, arg.Category,
		arg.Limit, arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []Activity
	for rows.Next() {
		var a Activity
		if err := rows.Scan(&a.ID, &a.Level, &a.Category, &a.Message, &a.Actor, &a.EntityType, &a.EntityID, &a.Metadata, &a.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countActivities = `SELECT COUNT(*) FROM activity_log
WHERE (? = '' OR level = ?) AND (? = '' OR category = ?)`

// CountActivities counts rows matching the filters of arg.
func (q *Queries) CountActivities(ctx context.Context, arg ListActivitiesParams) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countActivities, arg.Level, arg.Level, arg.Category, arg.Category).Scan(&n)
	return n, err
}

const deleteActivitiesBefore = `DELETE FROM activity_log WHERE created_at < ?`

// DeleteActivitiesBefore removes rows older than t and returns how many went.
func (q *Queries) DeleteActivitiesBefore(ctx context.Context, t time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteActivitiesBefore, t.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
