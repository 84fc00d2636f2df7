// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package translation implements editing of pending translations,
// including merging a pending record into an existing translation that
// already carries the chosen English name.
package translation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/olegiv/partsadmin/internal/catalog"
	"github.com/olegiv/partsadmin/internal/validate"
)

// DefaultDriveSide is used when a record has no drive side marker.
const DefaultDriveSide = "no"

// ErrMergeIncomplete is returned when the existing translation was updated
// but the pending duplicate could not be deleted.
var ErrMergeIncomplete = errors.New("merge incomplete: duplicate translation was not deleted")

// Mode tells what saving the session will do.
type Mode string

// Edit modes.
const (
	ModeRename Mode = "rename"
	ModeMerge  Mode = "merge"
)

// Form holds the editable translation fields.
type Form struct {
	PartNameEN        string `form:"part_name_en" json:"part_name_en" validate:"required,max=60"`
	PartNamePR        string `form:"part_name_pr" json:"part_name_pr" validate:"max=60"`
	PartNameFR        string `form:"part_name_fr" json:"part_name_fr" validate:"max=60"`
	HSCode            string `form:"hs_code" json:"hs_code" validate:"max=14"`
	CategoryEN        string `form:"category_en" json:"category_en" validate:"max=60"`
	DriveSideSpecific string `form:"drive_side_specific" json:"drive_side_specific" validate:"omitempty,oneof=yes no"`
	AlternativeNames  string `form:"alternative_names" json:"alternative_names"`
	Links             string `form:"links" json:"links" validate:"max=1024"`
}

// FormFrom copies the editable fields of t.
func FormFrom(t catalog.Translation) Form {
	drive := t.DriveSideSpecific
	if drive == "" {
		drive = DefaultDriveSide
	}
	return Form{
		PartNameEN:        t.PartNameEN,
		PartNamePR:        t.PartNamePR,
		PartNameFR:        t.PartNameFR,
		HSCode:            t.HSCode,
		CategoryEN:        t.CategoryEN,
		DriveSideSpecific: drive,
		AlternativeNames:  t.AlternativeNames,
		Links:             t.Links,
	}
}

// Validate checks field lengths and the drive side marker.
func (f Form) Validate() error {
	return validate.Struct(f)
}

// Payload returns the write shape of the form. Empty optional fields are
// omitted; the drive side is always sent.
func (f Form) Payload() catalog.TranslationPayload {
	drive := strings.TrimSpace(f.DriveSideSpecific)
	if drive == "" {
		drive = DefaultDriveSide
	}
	return catalog.TranslationPayload{
		PartNameEN:        strings.TrimSpace(f.PartNameEN),
		PartNamePR:        strings.TrimSpace(f.PartNamePR),
		PartNameFR:        strings.TrimSpace(f.PartNameFR),
		HSCode:            strings.TrimSpace(f.HSCode),
		CategoryEN:        strings.TrimSpace(f.CategoryEN),
		DriveSideSpecific: drive,
		AlternativeNames:  strings.TrimSpace(f.AlternativeNames),
		Links:             strings.TrimSpace(f.Links),
	}
}

// EditSession is the state of the edit form for one pending translation.
type EditSession struct {
	Editing  catalog.Translation
	Form     Form
	TargetID string
	Warning  string
}

// NewEditSession starts editing a translation in rename mode.
func NewEditSession(editing catalog.Translation) *EditSession {
	return &EditSession{Editing: editing, Form: FormFrom(editing)}
}

// Mode returns ModeMerge when saving will fold the record into another one.
func (s *EditSession) Mode() Mode {
	if s.TargetID != "" && s.TargetID != s.Editing.ID {
		return ModeMerge
	}
	return ModeRename
}

// Find returns the translation other than the edited one whose English
// name equals name, ignoring case.
func (s *EditSession) Find(name string, all []catalog.Translation) (catalog.Translation, bool) {
	for _, t := range all {
		if t.ID != s.Editing.ID && strings.EqualFold(t.PartNameEN, name) {
			return t, true
		}
	}
	return catalog.Translation{}, false
}

// ChangeName sets the English name. If another translation already has it,
// the session switches to merge mode and the form takes that record's
// values; otherwise only the name changes.
func (s *EditSession) ChangeName(name string, all []catalog.Translation) {
	if existing, ok := s.Find(name, all); ok {
		s.Form = FormFrom(existing)
		s.TargetID = existing.ID
		s.Warning = fmt.Sprintf("Warning: %q already exists. Saving will update the existing record and remove this pending request.", existing.PartNameEN)
		return
	}
	s.Form.PartNameEN = name
	s.TargetID = ""
	s.Warning = ""
}

// Payload returns the payload that Save will send.
func (s *EditSession) Payload() catalog.TranslationPayload {
	return s.Form.Payload()
}

// API is the part of the catalog client Save needs.
type API interface {
	UpdateTranslation(ctx context.Context, id string, p catalog.TranslationPayload) (*catalog.Translation, error)
	DeleteTranslation(ctx context.Context, id string) error
}

// Result describes a successful save.
type Result struct {
	Mode     Mode
	TargetID string
	Name     string
}

// Message is the confirmation shown to the reviewer.
func (r Result) Message() string {
	if r.Mode == ModeMerge {
		return fmt.Sprintf("Merged into %q successfully.", r.Name)
	}
	return "Translation updated successfully"
}

// Save writes the session. In rename mode the edited record is updated.
// In merge mode the target is updated first and the edited record is then
// deleted; a failed update deletes nothing, and a failed delete returns
// ErrMergeIncomplete wrapping the cause.
func (s *EditSession) Save(ctx context.Context, api API) (Result, error) {
	if err := s.Form.Validate(); err != nil {
		return Result{}, err
	}
	payload := s.Payload()

	if s.Mode() == ModeRename {
		if _, err := api.UpdateTranslation(ctx, s.Editing.ID, payload); err != nil {
			return Result{}, err
		}
		return Result{Mode: ModeRename, TargetID: s.Editing.ID, Name: payload.PartNameEN}, nil
	}

	if _, err := api.UpdateTranslation(ctx, s.TargetID, payload); err != nil {
		return Result{}, err
	}
	if err := api.DeleteTranslation(ctx, s.Editing.ID); err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrMergeIncomplete, err)
	}
	return Result{Mode: ModeMerge, TargetID: s.TargetID, Name: payload.PartNameEN}, nil
}

// State is the session as reported to the edit screen.
type State struct {
	Form     Form   `json:"form"`
	Mode     Mode   `json:"mode"`
	TargetID string `json:"target_id,omitempty"`
	Warning  string `json:"warning,omitempty"`
}

// State returns a snapshot of the session.
func (s *EditSession) State() State {
	return State{Form: s.Form, Mode: s.Mode(), TargetID: s.TargetID, Warning: s.Warning}
}
