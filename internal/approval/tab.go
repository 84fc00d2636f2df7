// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package approval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"
)

// ErrReasonRequired is returned when a rejection has no reason.
var ErrReasonRequired = errors.New("rejection reason is required")

// Field is a labelled column of a pending row.
type Field struct {
	Label string
	Value string
}

// Row is one pending record as shown in a tab.
type Row struct {
	ID          string
	Name        string
	Status      Status
	SubmittedAt time.Time
	Fields      []Field
	Record      any
}

// Dependency is reference data a tab needs besides its pending list.
type Dependency struct {
	Name string
	Load func(ctx context.Context) error
}

// Source provides the records and review actions of one entity kind.
type Source interface {
	Kind() Kind
	Pending(ctx context.Context) ([]Row, error)
	Approve(ctx context.Context, id string) error
	Reject(ctx context.Context, id, reason string) error
	Update(ctx context.Context, id string, form url.Values) error
	Dependencies() []Dependency
}

// Tab holds the pending list of one kind. Nothing is loaded until the tab
// becomes active; each activation loads the list and every dependency once.
type Tab struct {
	source   Source
	notifier *Notifier
	logger   *slog.Logger

	mu      sync.Mutex
	active  bool
	rows    []Row
	loadErr error
	onCount func(int)
}

// NewTab creates an inactive tab over src. notifier may be nil.
func NewTab(src Source, notifier *Notifier, logger *slog.Logger) *Tab {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tab{source: src, notifier: notifier, logger: logger}
}

// Kind returns the entity kind of the tab.
func (t *Tab) Kind() Kind { return t.source.Kind() }

// Source returns the underlying source, for reference data lookups.
func (t *Tab) Source() Source { return t.source }

// Active reports whether the tab is the selected one.
func (t *Tab) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

// Rows returns the current pending rows.
func (t *Tab) Rows() []Row {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Row, len(t.rows))
	copy(out, t.rows)
	return out
}

// Count returns the number of pending rows.
func (t *Tab) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.rows)
}

// Err returns the error of the last load, if any.
func (t *Tab) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loadErr
}

// Row finds a pending row by ID.
func (t *Tab) Row(id string) (Row, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, r := range t.rows {
		if r.ID == id {
			return r, true
		}
	}
	return Row{}, false
}

// OnCountChange sets the callback invoked with the new row count after
// every list change.
func (t *Tab) OnCountChange(fn func(int)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onCount = fn
}

// SetActive selects or deselects the tab. Loading happens only when an
// inactive tab becomes active.
func (t *Tab) SetActive(ctx context.Context, active bool) error {
	t.mu.Lock()
	wasActive := t.active
	t.active = active
	t.mu.Unlock()

	if !active || wasActive {
		return nil
	}

	errs := []error{t.reload(ctx)}
	for _, dep := range t.source.Dependencies() {
		if err := dep.Load(ctx); err != nil {
			t.logger.Warn("loading tab dependency failed",
				"kind", t.Kind(),
				"dependency", dep.Name,
				"error", err,
			)
			errs = append(errs, fmt.Errorf("loading %s: %w", dep.Name, err))
		}
	}
	return errors.Join(errs...)
}

// Refresh reloads the pending list.
func (t *Tab) Refresh(ctx context.Context) error {
	return t.reload(ctx)
}

func (t *Tab) reload(ctx context.Context) error {
	rows, err := t.source.Pending(ctx)

	t.mu.Lock()
	if err != nil {
		t.loadErr = err
		t.mu.Unlock()
		t.logger.Warn("loading pending records failed", "kind", t.Kind(), "error", err)
		return fmt.Errorf("loading pending %s: %w", t.Kind(), err)
	}
	pending := make([]Row, 0, len(rows))
	for _, r := range rows {
		if r.Status == "" {
			r.Status = StatusPendingApproval
		}
		if ValidTransition(ActionApprove, r.Status) {
			pending = append(pending, r)
		}
	}
	t.rows = pending
	t.loadErr = nil
	onCount := t.onCount
	n := len(pending)
	t.mu.Unlock()

	if onCount != nil {
		onCount(n)
	}
	return nil
}

// Apply runs a mutation. On success the pending list is reloaded and the
// notifier is told the kind changed. On failure the list is left as it was
// and the mutation's error is returned unchanged.
func (t *Tab) Apply(ctx context.Context, mutate func(context.Context) error) error {
	if err := mutate(ctx); err != nil {
		return err
	}
	// The mutation already happened; a failed reload only shows up in Err.
	_ = t.reload(ctx)
	if t.notifier != nil {
		t.notifier.Notify(ctx, t.Kind())
	}
	return nil
}

// Approve approves the record with the given ID.
func (t *Tab) Approve(ctx context.Context, id string) error {
	return t.Apply(ctx, func(ctx context.Context) error {
		return t.source.Approve(ctx, id)
	})
}

// Reject rejects the record with the given ID. The reason must not be blank.
func (t *Tab) Reject(ctx context.Context, id, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ErrReasonRequired
	}
	return t.Apply(ctx, func(ctx context.Context) error {
		return t.source.Reject(ctx, id, reason)
	})
}

// Update saves edits to a pending record.
func (t *Tab) Update(ctx context.Context, id string, form url.Values) error {
	return t.Apply(ctx, func(ctx context.Context) error {
		return t.source.Update(ctx, id, form)
	})
}
