// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package combo implements the filtering rules of a creatable select box:
// a text input with a dropdown of known options that also accepts values
// which do not exist yet.
package combo

import (
	"strings"

	"golang.org/x/text/cases"
)

// Option is one selectable entry.
type Option struct {
	Value     string `json:"value"`
	Label     string `json:"label"`
	IsPending bool   `json:"is_pending,omitempty"`
}

// View is the dropdown shown for a given input text.
type View struct {
	Query      string   `json:"query"`
	Options    []Option `json:"options"`
	ShowCreate bool     `json:"show_create"`
	CreateText string   `json:"create_text,omitempty"`
	NoMatches  bool     `json:"no_matches"`
}

// fold builds a Caser per call; a Caser must not be shared between goroutines.
func fold(s string) string {
	return cases.Fold().String(s)
}

// Filter returns the options whose label contains query, ignoring case.
// An empty query returns all options.
func Filter(options []Option, query string) []Option {
	if query == "" {
		return options
	}
	q := fold(query)
	out := make([]Option, 0, len(options))
	for _, opt := range options {
		if strings.Contains(fold(opt.Label), q) {
			out = append(out, opt)
		}
	}
	return out
}

// ShowCreate reports whether the "create" entry is offered: query is
// non-empty and no option value equals it exactly.
func ShowCreate(options []Option, query string) bool {
	if query == "" {
		return false
	}
	for _, opt := range options {
		if opt.Value == query {
			return false
		}
	}
	return true
}

// Build computes the dropdown for query.
func Build(options []Option, query string) View {
	filtered := Filter(options, query)
	if filtered == nil {
		filtered = []Option{}
	}
	v := View{
		Query:      query,
		Options:    filtered,
		ShowCreate: ShowCreate(options, query),
	}
	if v.ShowCreate {
		v.CreateText = CreateLabel(query)
	}
	v.NoMatches = len(v.Options) == 0 && !v.ShowCreate
	return v
}

// CreateLabel is the text of the "create" entry.
func CreateLabel(query string) string {
	return `Create "` + query + `"`
}

// Limit truncates the option list of v to n entries. n <= 0 leaves v unchanged.
func (v View) Limit(n int) View {
	if n > 0 && len(v.Options) > n {
		v.Options = v.Options[:n]
	}
	return v
}
