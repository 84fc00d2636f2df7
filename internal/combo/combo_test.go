// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package combo

import (
	"testing"
)

var testOptions = []Option{
	{Value: "Brake Pad", Label: "Brake Pad"},
	{Value: "Brake Disc", Label: "Brake Disc", IsPending: true},
	{Value: "Oil Filter", Label: "Oil Filter"},
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"empty returns all", "", []string{"Brake Pad", "Brake Disc", "Oil Filter"}},
		{"case insensitive", "bRaKe", []string{"Brake Pad", "Brake Disc"}},
		{"substring", "filt", []string{"Oil Filter"}},
		{"no match", "wiper", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(testOptions, tt.query)
			if len(got) != len(tt.want) {
				t.Fatalf("Filter(%q) returned %d options, want %d", tt.query, len(got), len(tt.want))
			}
			for i, opt := range got {
				if opt.Label != tt.want[i] {
					t.Errorf("Filter(%q)[%d] = %q, want %q", tt.query, i, opt.Label, tt.want[i])
				}
			}
		})
	}
}

func TestFilter_Subset(t *testing.T) {
	for _, q := range []string{"", "a", "BRAKE", "disc", "zz"} {
		for _, opt := range Filter(testOptions, q) {
			found := false
			for _, src := range testOptions {
				if src == opt {
					found = true
				}
			}
			if !found {
				t.Errorf("Filter(%q) returned %v which is not an input option", q, opt)
			}
		}
	}
}

func TestShowCreate(t *testing.T) {
	tests := []struct {
		query string
		want  bool
	}{
		{"", false},
		{"Brake Pad", false},
		{"brake pad", true},
		{"Brake Pad ", true},
		{"Wiper Blade", true},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			if got := ShowCreate(testOptions, tt.query); got != tt.want {
				t.Errorf("ShowCreate(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestBuild(t *testing.T) {
	v := Build(testOptions, "wiper")
	if !v.ShowCreate {
		t.Error("ShowCreate = false for a new value")
	}
	if v.CreateText != `Create "wiper"` {
		t.Errorf("CreateText = %q", v.CreateText)
	}
	if v.NoMatches {
		t.Error("NoMatches = true while the create entry is shown")
	}
	if len(v.Options) != 0 {
		t.Errorf("Options = %v, want none", v.Options)
	}

	v = Build(nil, "")
	if !v.NoMatches {
		t.Error("NoMatches = false with no options and empty query")
	}
	if v.Options == nil {
		t.Error("Options should be an empty slice, not nil")
	}

	v = Build(testOptions, "Oil Filter")
	if v.ShowCreate || v.NoMatches || len(v.Options) != 1 {
		t.Errorf("Build exact match = %+v", v)
	}
}

func TestView_Limit(t *testing.T) {
	v := Build(testOptions, "").Limit(2)
	if len(v.Options) != 2 {
		t.Errorf("Limit(2) kept %d options", len(v.Options))
	}
	if got := Build(testOptions, "").Limit(0); len(got.Options) != 3 {
		t.Errorf("Limit(0) kept %d options", len(got.Options))
	}
}
