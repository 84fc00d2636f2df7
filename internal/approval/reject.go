// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package approval

import (
	"context"
	"strings"
)

// RejectDialog is the state of the rejection form for one record.
type RejectDialog struct {
	EntityType string
	EntityName string
	ID         string
	Reason     string
	Submitting bool
	Open       bool
	Err        error
}

// NewRejectDialog opens a dialog for rejecting the given record.
func NewRejectDialog(kind Kind, id, name string) *RejectDialog {
	return &RejectDialog{
		EntityType: kind.Singular(),
		EntityName: name,
		ID:         id,
		Open:       true,
	}
}

// Title is the dialog heading.
func (d *RejectDialog) Title() string {
	return "Reject " + d.EntityType + ": " + d.EntityName
}

// CanSubmit reports whether the confirm button is enabled.
func (d *RejectDialog) CanSubmit() bool {
	return !d.Submitting && strings.TrimSpace(d.Reason) != ""
}

// Submit calls reject with the trimmed reason. On failure the dialog stays
// open, keeps the typed reason and records the error. On success the reason
// is cleared and the dialog closes.
func (d *RejectDialog) Submit(ctx context.Context, reject func(ctx context.Context, reason string) error) error {
	if !d.CanSubmit() {
		return ErrReasonRequired
	}

	d.Submitting = true
	err := reject(ctx, strings.TrimSpace(d.Reason))
	d.Submitting = false

	if err != nil {
		d.Err = err
		return err
	}
	d.Err = nil
	d.Reason = ""
	d.Open = false
	return nil
}

// Cancel closes the dialog and discards the reason.
func (d *RejectDialog) Cancel() {
	d.Reason = ""
	d.Err = nil
	d.Open = false
}
