// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package equivalence adds interchangeable-part links in bulk and
// summarises what the backend did with each listed part.
package equivalence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/olegiv/partsadmin/internal/catalog"
)

// ErrNoPartIDs is returned when the bulk input holds no part identifiers.
var ErrNoPartIDs = errors.New("no part IDs entered")

// API is the part of the catalog client bulk creation needs.
type API interface {
	BulkCreateEquivalences(ctx context.Context, partID string, partIDs []string) (*catalog.BulkEquivalenceResult, error)
}

// ParseLines returns the non-empty trimmed lines of text, in order.
// Duplicates are kept; the backend reports them as skipped.
func ParseLines(text string) []string {
	lines := strings.Split(text, "\n")
	ids := make([]string, 0, len(lines))
	for _, line := range lines {
		if id := strings.TrimSpace(line); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// BulkAdd links partID to every part listed in text with a single backend
// call. Nothing is sent when text holds no identifiers.
func BulkAdd(ctx context.Context, api API, partID, text string) (Summary, error) {
	ids := ParseLines(text)
	if len(ids) == 0 {
		return Summary{}, ErrNoPartIDs
	}
	res, err := api.BulkCreateEquivalences(ctx, partID, ids)
	if err != nil {
		return Summary{}, err
	}
	return NewSummary(len(ids), *res), nil
}

// Summary is the outcome of a bulk add.
type Summary struct {
	Submitted        int
	Created          int
	Skipped          int
	AutoCreatedParts []string
	Errors           []string
}

// NewSummary builds a summary from the backend result.
func NewSummary(submitted int, res catalog.BulkEquivalenceResult) Summary {
	return Summary{
		Submitted:        submitted,
		Created:          res.Created,
		Skipped:          res.Skipped,
		AutoCreatedParts: res.AutoCreatedParts,
		Errors:           res.Errors,
	}
}

// HasErrors reports whether any listed part failed.
func (s Summary) HasErrors() bool { return len(s.Errors) > 0 }

// Section is one rendered category of the summary.
type Section struct {
	Key     string
	Title   string
	Count   int
	Entries []string
	Level   string
}

// Sections returns the four categories in display order (created,
// auto-created, skipped, errors). Every category is present even when
// empty so reviewers can tell zero from missing.
func (s Summary) Sections() []Section {
	errLevel := "success"
	if s.HasErrors() {
		errLevel = "error"
	}
	return []Section{
		{Key: "created", Title: "Added " + plural(s.Created, "equivalence"), Count: s.Created, Level: "success"},
		{Key: "auto_created_parts", Title: "Auto-created " + plural(len(s.AutoCreatedParts), "new part") + " (pending approval)", Count: len(s.AutoCreatedParts), Entries: s.AutoCreatedParts, Level: "info"},
		{Key: "skipped", Title: "Skipped " + plural(s.Skipped, "duplicate"), Count: s.Skipped, Level: "warning"},
		{Key: "errors", Title: plural(len(s.Errors), "error"), Count: len(s.Errors), Entries: s.Errors, Level: errLevel},
	}
}

// Message is a plain-text rendering used for flash messages and logs.
func (s Summary) Message() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Successfully added %s.", plural(s.Created, "equivalence"))
	if n := len(s.AutoCreatedParts); n > 0 {
		fmt.Fprintf(&b, "\n\nAuto-created %s (pending approval):\n%s", plural(n, "new part"), strings.Join(s.AutoCreatedParts, "\n"))
	}
	if s.Skipped > 0 {
		fmt.Fprintf(&b, "\n\nSkipped %s.", plural(s.Skipped, "duplicate"))
	}
	if s.HasErrors() {
		fmt.Fprintf(&b, "\n\nErrors:\n%s", strings.Join(s.Errors, "\n"))
	}
	return b.String()
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
