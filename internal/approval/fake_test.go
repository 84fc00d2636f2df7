// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package approval

import (
	"context"
	"sync"

	"github.com/olegiv/partsadmin/internal/catalog"
)

// fakeBackend records every call in order and serves canned data.
type fakeBackend struct {
	mu    sync.Mutex
	calls []string

	summary       catalog.ApprovalSummary
	pendingParts  []catalog.PendingPart
	pendingItems  map[string][]catalog.PendingItem
	hsCodes       []catalog.HSCode
	translations  []catalog.Translation
	categories    []catalog.Category
	countries     []catalog.Country
	rejectReasons []string

	failWith map[string]error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		pendingItems: map[string][]catalog.PendingItem{},
		failWith:     map[string]error{},
	}
}

func (f *fakeBackend) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return f.failWith[call]
}

func (f *fakeBackend) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *fakeBackend) count(call string) int {
	n := 0
	for _, c := range f.Calls() {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakeBackend) ApprovalSummary(context.Context) (*catalog.ApprovalSummary, error) {
	if err := f.record("ApprovalSummary"); err != nil {
		return nil, err
	}
	s := f.summary
	return &s, nil
}

func (f *fakeBackend) PendingParts(context.Context, int, int) ([]catalog.PendingPart, error) {
	if err := f.record("PendingParts"); err != nil {
		return nil, err
	}
	return f.pendingParts, nil
}

func (f *fakeBackend) PendingItems(_ context.Context, entityType string) ([]catalog.PendingItem, error) {
	if err := f.record("PendingItems:" + entityType); err != nil {
		return nil, err
	}
	return f.pendingItems[entityType], nil
}

func (f *fakeBackend) ApprovePart(_ context.Context, id, _ string) error {
	if err := f.record("ApprovePart"); err != nil {
		return err
	}
	f.removePart(id)
	return nil
}

func (f *fakeBackend) RejectPart(_ context.Context, id, reason string) error {
	if err := f.record("RejectPart"); err != nil {
		return err
	}
	f.mu.Lock()
	f.rejectReasons = append(f.rejectReasons, reason)
	f.mu.Unlock()
	f.removePart(id)
	return nil
}

func (f *fakeBackend) removePart(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.pendingParts[:0]
	for _, p := range f.pendingParts {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	f.pendingParts = kept
}

func (f *fakeBackend) UpdatePart(context.Context, string, catalog.PartPayload) (*catalog.Part, error) {
	return &catalog.Part{}, f.record("UpdatePart")
}

func (f *fakeBackend) ApproveTranslation(context.Context, string, string) error {
	return f.record("ApproveTranslation")
}

func (f *fakeBackend) RejectTranslation(context.Context, string, string) error {
	return f.record("RejectTranslation")
}

func (f *fakeBackend) UpdateTranslation(context.Context, string, catalog.TranslationPayload) (*catalog.Translation, error) {
	return &catalog.Translation{}, f.record("UpdateTranslation")
}

func (f *fakeBackend) Translations(context.Context, catalog.TranslationFilter) (*catalog.Page[catalog.Translation], error) {
	if err := f.record("Translations"); err != nil {
		return nil, err
	}
	return &catalog.Page[catalog.Translation]{Items: f.translations}, nil
}

func (f *fakeBackend) Categories(context.Context) ([]catalog.Category, error) {
	if err := f.record("Categories"); err != nil {
		return nil, err
	}
	return f.categories, nil
}

func (f *fakeBackend) HSCodes(_ context.Context, filter catalog.HSCodeFilter) (*catalog.Page[catalog.HSCode], error) {
	if err := f.record("HSCodes:" + filter.Status); err != nil {
		return nil, err
	}
	var items []catalog.HSCode
	for _, c := range f.hsCodes {
		if c.ApprovalStatus == filter.Status {
			items = append(items, c)
		}
	}
	return &catalog.Page[catalog.HSCode]{Items: items}, nil
}

func (f *fakeBackend) ApproveHSCode(context.Context, string, string) error {
	return f.record("ApproveHSCode")
}

func (f *fakeBackend) RejectHSCode(context.Context, string, string) error {
	return f.record("RejectHSCode")
}

func (f *fakeBackend) UpdateHSCode(context.Context, string, catalog.HSCodePayload) (*catalog.HSCode, error) {
	return &catalog.HSCode{}, f.record("UpdateHSCode")
}

func (f *fakeBackend) ApproveManufacturer(context.Context, string) error {
	return f.record("ApproveManufacturer")
}

func (f *fakeBackend) RejectManufacturer(context.Context, string, string) error {
	return f.record("RejectManufacturer")
}

func (f *fakeBackend) UpdateManufacturer(context.Context, string, catalog.ManufacturerPayload) (*catalog.Manufacturer, error) {
	return &catalog.Manufacturer{}, f.record("UpdateManufacturer")
}

func (f *fakeBackend) ApprovePort(context.Context, string, string) error {
	return f.record("ApprovePort")
}

func (f *fakeBackend) RejectPort(context.Context, string, string) error {
	return f.record("RejectPort")
}

func (f *fakeBackend) UpdatePort(context.Context, string, catalog.PortPayload) (*catalog.Port, error) {
	return &catalog.Port{}, f.record("UpdatePort")
}

func (f *fakeBackend) Countries(context.Context) ([]catalog.Country, error) {
	if err := f.record("Countries"); err != nil {
		return nil, err
	}
	return f.countries, nil
}

var _ Backend = (*fakeBackend)(nil)
var _ Backend = (*catalog.Client)(nil)
