// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package validate

import (
	"testing"
)

type portForm struct {
	PortCode string `form:"port_code" validate:"required,max=10"`
	Type     string `form:"type" validate:"omitempty,oneof=Sea Air Land"`
	Website  string `json:"website" validate:"omitempty,url"`
	Internal string `form:"-"`
}

func TestStruct(t *testing.T) {
	if err := Struct(portForm{PortCode: "FRLEH", Type: "Sea"}); err != nil {
		t.Fatalf("valid form rejected: %v", err)
	}

	err := Struct(portForm{PortCode: "", Type: "River", Website: "not a url"})
	errs, ok := AsErrors(err)
	if !ok {
		t.Fatalf("expected Errors, got %T", err)
	}

	want := map[string]string{
		"port_code": "is required",
		"type":      "must be one of: Sea, Air, Land",
		"website":   "must be a valid URL",
	}
	for field, msg := range want {
		if got := errs.Field(field); got != msg {
			t.Errorf("Field(%q) = %q, want %q", field, got, msg)
		}
	}
}

func TestErrors_Error(t *testing.T) {
	e := Errors{"b": "is required", "a": "is invalid"}
	if got := e.Error(); got != "a: is invalid; b: is required" {
		t.Errorf("Error() = %q", got)
	}
}

func TestStruct_Max(t *testing.T) {
	errs, ok := AsErrors(Struct(portForm{PortCode: "ABCDEFGHIJK"}))
	if !ok || errs.Field("port_code") != "must be at most 10 characters" {
		t.Errorf("got %v", errs)
	}
}
