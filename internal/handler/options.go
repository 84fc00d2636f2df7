// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/partsadmin/internal/catalog"
	"github.com/olegiv/partsadmin/internal/combo"
)

// maxOptions bounds the dropdown of a combo box.
const maxOptions = 50

// OptionsHandler serves the dropdown entries of the creatable select boxes.
type OptionsHandler struct {
	Deps
}

// NewOptionsHandler creates a new OptionsHandler.
func NewOptionsHandler(d Deps) *OptionsHandler {
	return &OptionsHandler{Deps: d}
}

type optionSource func(ctx context.Context, l *Lookups) ([]combo.Option, error)

var optionSources = map[string]optionSource{
	"translations": func(ctx context.Context, l *Lookups) ([]combo.Option, error) {
		items, err := l.Translations(ctx)
		out := make([]combo.Option, 0, len(items))
		for _, t := range items {
			out = append(out, combo.Option{
				Value:     t.PartNameEN,
				Label:     t.PartNameEN,
				IsPending: t.ApprovalStatus == catalog.StatusPendingApproval,
			})
		}
		return out, err
	},
	"categories": func(ctx context.Context, l *Lookups) ([]combo.Option, error) {
		items, err := l.Categories(ctx)
		out := make([]combo.Option, 0, len(items))
		for _, c := range items {
			out = append(out, combo.Option{Value: c.CategoryNameEN, Label: c.CategoryNameEN})
		}
		return out, err
	},
	"hscodes": func(ctx context.Context, l *Lookups) ([]combo.Option, error) {
		items, err := l.HSCodes(ctx)
		out := make([]combo.Option, 0, len(items))
		for _, c := range items {
			label := c.HSCode
			if c.DescriptionEN != "" {
				label += " - " + c.DescriptionEN
			}
			out = append(out, combo.Option{Value: c.HSCode, Label: label})
		}
		return out, err
	},
	"manufacturers": func(ctx context.Context, l *Lookups) ([]combo.Option, error) {
		items, err := l.Manufacturers(ctx)
		out := make([]combo.Option, 0, len(items))
		for _, m := range items {
			out = append(out, combo.Option{
				Value:     m.MfgID,
				Label:     m.MfgName,
				IsPending: m.ApprovalStatus == catalog.StatusPendingApproval,
			})
		}
		return out, err
	},
	"ports": func(ctx context.Context, l *Lookups) ([]combo.Option, error) {
		items, err := l.Ports(ctx)
		out := make([]combo.Option, 0, len(items))
		for _, p := range items {
			label := p.PortCode
			if p.PortName != "" {
				label += " - " + p.PortName
			}
			out = append(out, combo.Option{
				Value:     p.PortCode,
				Label:     label,
				IsPending: p.ApprovalStatus == catalog.StatusPendingApproval,
			})
		}
		return out, err
	},
	"countries": func(ctx context.Context, l *Lookups) ([]combo.Option, error) {
		items, err := l.Countries(ctx)
		out := make([]combo.Option, 0, len(items))
		for _, c := range items {
			out = append(out, combo.Option{Value: c.Code, Label: c.Name + " (" + c.Code + ")"})
		}
		return out, err
	},
}

// Options handles GET /admin/options/{kind}?q=. The response is the
// dropdown for the typed text: matching options and whether to offer a
// "create" entry.
func (h *OptionsHandler) Options(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	load, ok := optionSources[kind]
	if !ok {
		writeJSONError(w, http.StatusNotFound, "Unknown option list")
		return
	}

	options, err := load(r.Context(), h.Lookups)
	if err != nil {
		if isUnauthorized(err) {
			writeJSONError(w, http.StatusUnauthorized, msgSessionExpired)
			return
		}
		h.logger().Warn("loading options failed", "kind", kind, "error", err)
		writeJSONError(w, http.StatusBadGateway, catalog.Detail(err, "Could not load options"))
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	writeJSON(w, http.StatusOK, combo.Build(options, query).Limit(maxOptions))
}
