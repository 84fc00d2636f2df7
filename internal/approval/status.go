// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package approval implements the review workflow for catalog records
// submitted by non-admin users: per-entity pending lists, approve and
// reject actions, and notification of pending count changes.
package approval

import (
	"errors"
	"fmt"

	"github.com/olegiv/partsadmin/internal/catalog"
)

// Status is the approval state of a catalog record.
type Status string

// Approval states.
const (
	StatusDraft           Status = catalog.StatusDraft
	StatusPendingApproval Status = catalog.StatusPendingApproval
	StatusApproved        Status = catalog.StatusApproved
	StatusRejected        Status = catalog.StatusRejected
)

// Action is a review decision.
type Action string

// Review actions.
const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

// ErrInvalidTransition is returned when a review action does not apply to
// the record's current status.
var ErrInvalidTransition = errors.New("invalid status transition")

var transitionMap = map[Action][]Status{
	ActionApprove: {StatusPendingApproval},
	ActionReject:  {StatusPendingApproval},
}

// Target returns the status an action moves a record to.
func (a Action) Target() Status {
	switch a {
	case ActionApprove:
		return StatusApproved
	case ActionReject:
		return StatusRejected
	}
	return ""
}

// ValidTransition reports whether action may be applied to a record in
// status from.
func ValidTransition(action Action, from Status) bool {
	allowed, ok := transitionMap[action]
	if !ok {
		return false
	}
	for _, status := range allowed {
		if status == from {
			return true
		}
	}
	return false
}

// ValidateTransition checks a status change. Only pending records may be
// approved or rejected.
func ValidateTransition(from, to Status) error {
	for action := range transitionMap {
		if action.Target() == to && ValidTransition(action, from) {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}

// IsTerminal reports whether no review action applies to s.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Label returns a human-readable status name.
func (s Status) Label() string {
	switch s {
	case StatusDraft:
		return "Draft"
	case StatusPendingApproval:
		return "Pending approval"
	case StatusApproved:
		return "Approved"
	case StatusRejected:
		return "Rejected"
	}
	return string(s)
}
