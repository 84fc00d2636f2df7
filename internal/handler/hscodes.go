// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/olegiv/partsadmin/internal/cache"
	"github.com/olegiv/partsadmin/internal/catalog"
	"github.com/olegiv/partsadmin/internal/logging"
	"github.com/olegiv/partsadmin/internal/render"
	"github.com/olegiv/partsadmin/internal/store"
	"github.com/olegiv/partsadmin/internal/validate"
)

// HSCodesHandler handles the HS code and tariff screens.
type HSCodesHandler struct {
	Deps
}

// NewHSCodesHandler creates a new HSCodesHandler.
func NewHSCodesHandler(d Deps) *HSCodesHandler {
	return &HSCodesHandler{Deps: d}
}

// hsCodeForm is the HS code form. The code itself is fixed after creation.
type hsCodeForm struct {
	HSCode        string `form:"hs_code" validate:"max=14"`
	DescriptionEN string `form:"description_en" validate:"required,max=500"`
	DescriptionPR string `form:"description_pr" validate:"max=500"`
	DescriptionPT string `form:"description_pt" validate:"max=500"`
}

func hsCodeFormFrom(c catalog.HSCode) hsCodeForm {
	return hsCodeForm{HSCode: c.HSCode, DescriptionEN: c.DescriptionEN, DescriptionPR: c.DescriptionPR, DescriptionPT: c.DescriptionPT}
}

func hsCodeFormFromRequest(r *http.Request) hsCodeForm {
	return hsCodeForm{
		HSCode:        formText(r, "hs_code"),
		DescriptionEN: formText(r, "description_en"),
		DescriptionPR: formText(r, "description_pr"),
		DescriptionPT: formText(r, "description_pt"),
	}
}

func (f hsCodeForm) payload() catalog.HSCodePayload {
	return catalog.HSCodePayload{HSCode: f.HSCode, DescriptionEN: f.DescriptionEN, DescriptionPR: f.DescriptionPR, DescriptionPT: f.DescriptionPT}
}

// HSCodesListData holds data for the HS code list template.
type HSCodesListData struct {
	Codes      []catalog.HSCode
	Search     string
	Status     string
	Statuses   []string
	Pagination Pagination
}

// HSCodeFormData holds data for the HS code form template.
type HSCodeFormData struct {
	Form   hsCodeForm
	IsEdit bool
}

// HSCodeDetailData holds data for the HS code detail template.
type HSCodeDetailData struct {
	Code      *catalog.HSCodeWithTariffs
	Countries []catalog.Country
}

func hsCodeURL(code string) string {
	return adminHSCodes + "/" + url.PathEscape(code)
}

// List handles GET /admin/hscodes.
func (h *HSCodesHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := pageParam(r)
	filter := catalog.HSCodeFilter{
		Search: strings.TrimSpace(q.Get("search")),
		Status: q.Get("status"),
		Skip:   skip(page, defaultPageSize),
		Limit:  defaultPageSize,
	}

	td := render.TemplateData{Title: "HS codes", Nav: navHSCodes}
	data := HSCodesListData{
		Search:   filter.Search,
		Status:   filter.Status,
		Statuses: []string{catalog.StatusApproved, catalog.StatusPendingApproval, catalog.StatusRejected},
	}

	result, err := h.API.HSCodes(r.Context(), filter)
	if err != nil {
		if h.listFailed(w, r, &td, "HS codes", err) {
			return
		}
		result = &catalog.Page[catalog.HSCode]{}
	}
	data.Codes = result.Items
	data.Pagination = buildPagination(page, result.Total, defaultPageSize, adminHSCodes, q)

	td.Data = data
	h.render(w, r, "admin/hscodes", td)
}

// Show handles GET /admin/hscodes/{id}.
func (h *HSCodesHandler) Show(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "id")
	rec, ok := requireRecord(w, r, h.Renderer, h.SessionManager, adminHSCodes, "HS code", code,
		func(code string) (*catalog.HSCodeWithTariffs, error) { return h.API.HSCode(r.Context(), code) })
	if !ok {
		return
	}

	td := render.TemplateData{Title: "HS code " + code, Nav: navHSCodes}
	countries, err := h.Lookups.Countries(r.Context())
	if err != nil {
		td.Warnings = append(td.Warnings, h.warn(r, "countries", err))
	}
	td.Data = HSCodeDetailData{Code: rec, Countries: countries}
	h.render(w, r, "admin/hscodes_show", td)
}

// NewForm handles GET /admin/hscodes/new.
func (h *HSCodesHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "admin/hscodes_form", render.TemplateData{Title: "New HS code", Nav: navHSCodes, Data: HSCodeFormData{}})
}

// Create handles POST /admin/hscodes.
func (h *HSCodesHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.Renderer, adminHSCodes+RouteSuffixNew) {
		return
	}
	form := hsCodeFormFromRequest(r)
	td := render.TemplateData{Title: "New HS code", Nav: navHSCodes, Data: HSCodeFormData{Form: form}}

	err := validate.Struct(form)
	if err == nil && form.HSCode == "" {
		err = validate.Errors{"hs_code": "is required"}
	}
	if err == nil {
		_, err = h.API.CreateHSCode(r.Context(), form.payload())
	}
	if err != nil {
		h.formError(w, r, "admin/hscodes_form", td, "HS code", err)
		return
	}

	h.Lookups.invalidate(r.Context(), cache.EntityHSCodes, cache.EntityApprovalCounts)
	h.record(r, logging.Entry{Category: store.CategorySystem, Message: "Created HS code", EntityType: "hs_code", EntityID: form.HSCode})
	flashSuccess(w, r, h.Renderer, hsCodeURL(form.HSCode), "HS code created")
}

// EditForm handles GET /admin/hscodes/{id}/edit.
func (h *HSCodesHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "id")
	rec, ok := requireRecord(w, r, h.Renderer, h.SessionManager, adminHSCodes, "HS code", code,
		func(code string) (*catalog.HSCodeWithTariffs, error) { return h.API.HSCode(r.Context(), code) })
	if !ok {
		return
	}
	h.render(w, r, "admin/hscodes_form", render.TemplateData{
		Title: "Edit HS code",
		Nav:   navHSCodes,
		Data:  HSCodeFormData{Form: hsCodeFormFrom(rec.HSCode), IsEdit: true},
	})
}

// Update handles POST /admin/hscodes/{id}.
func (h *HSCodesHandler) Update(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "id")
	if !parseFormOrRedirect(w, r, h.Renderer, hsCodeURL(code)) {
		return
	}
	form := hsCodeFormFromRequest(r)
	form.HSCode = code
	td := render.TemplateData{Title: "Edit HS code", Nav: navHSCodes, Data: HSCodeFormData{Form: form, IsEdit: true}}

	err := validate.Struct(form)
	if err == nil {
		_, err = h.API.UpdateHSCode(r.Context(), code, form.payload())
	}
	if err != nil {
		h.formError(w, r, "admin/hscodes_form", td, "HS code", err)
		return
	}

	h.Lookups.invalidate(r.Context(), cache.EntityHSCodes)
	h.record(r, logging.Entry{Category: store.CategorySystem, Message: "Updated HS code", EntityType: "hs_code", EntityID: code})
	flashSuccess(w, r, h.Renderer, hsCodeURL(code), "HS code updated")
}

// Delete handles POST /admin/hscodes/{id}/delete.
func (h *HSCodesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "id")
	if err := h.API.DeleteHSCode(r.Context(), code); err != nil {
		h.fail(w, r, hsCodeURL(code), "Failed to delete HS code", err)
		return
	}
	h.Lookups.invalidate(r.Context(), cache.EntityHSCodes)
	h.record(r, logging.Entry{Category: store.CategorySystem, Message: "Deleted HS code", EntityType: "hs_code", EntityID: code})
	flashSuccess(w, r, h.Renderer, adminHSCodes, "HS code deleted")
}

var maxTariff = decimal.NewFromInt(100)

// tariffRate reads the tariff_rate field as a percentage rounded to two
// places. Empty means nil.
func tariffRate(r *http.Request) (*float64, error) {
	raw := strings.ReplaceAll(formText(r, "tariff_rate"), ",", ".")
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, errors.New("tariff_rate must be a number")
	}
	if d.IsNegative() || d.GreaterThan(maxTariff) {
		return nil, errTariffRange
	}
	rate := d.Round(2).InexactFloat64()
	return &rate, nil
}

// SaveTariff handles POST /admin/hscodes/{id}/tariffs. An existing tariff
// for the country is updated, otherwise one is created.
func (h *HSCodesHandler) SaveTariff(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "id")
	back := hsCodeURL(code)
	if !parseFormOrRedirect(w, r, h.Renderer, back) {
		return
	}
	country := formText(r, "country_name")
	if country == "" {
		flashError(w, r, h.Renderer, back, "Choose a country")
		return
	}
	rate, err := tariffRate(r)
	if err != nil {
		flashError(w, r, h.Renderer, back, "Tariff rate must be a number between 0 and 100")
		return
	}

	existing, err := h.API.Tariffs(r.Context(), code)
	if err != nil {
		h.fail(w, r, back, "Could not load tariffs", err)
		return
	}
	exists := false
	for _, t := range existing {
		if strings.EqualFold(t.CountryName, country) {
			exists = true
			break
		}
	}

	if exists {
		_, err = h.API.UpdateTariff(r.Context(), code, country, rate)
	} else {
		_, err = h.API.CreateTariff(r.Context(), code, country, rate)
	}
	if err != nil {
		h.fail(w, r, back, "Failed to save tariff", err)
		return
	}
	h.record(r, logging.Entry{Category: store.CategorySystem, Message: "Saved tariff", EntityType: "hs_code", EntityID: code, Details: map[string]string{"country": country}})
	flashSuccess(w, r, h.Renderer, back, "Tariff saved")
}

// DeleteTariff handles POST /admin/hscodes/{id}/tariffs/{country}/delete.
func (h *HSCodesHandler) DeleteTariff(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "id")
	country := chi.URLParam(r, "country")
	if err := h.API.DeleteTariff(r.Context(), code, country); err != nil {
		h.fail(w, r, hsCodeURL(code), "Failed to delete tariff", err)
		return
	}
	h.record(r, logging.Entry{Category: store.CategorySystem, Message: "Deleted tariff", EntityType: "hs_code", EntityID: code, Details: map[string]string{"country": country}})
	flashSuccess(w, r, h.Renderer, hsCodeURL(code), "Tariff deleted")
}

// Upload handles POST /admin/hscodes/upload.
func (h *HSCodesHandler) Upload(w http.ResponseWriter, r *http.Request) {
	h.csvUpload(w, r, "HS codes", adminHSCodes, navHSCodes,
		func(ctx context.Context, filename string, body io.Reader) (UploadSummary, error) {
			res, err := h.API.UploadHSCodes(ctx, filename, body)
			if err != nil {
				return UploadSummary{}, err
			}
			return summaryFromBulk(res), nil
		}, cache.EntityHSCodes, cache.EntityApprovalCounts)
}

// Template handles GET /admin/hscodes/template.
func (h *HSCodesHandler) Template(w http.ResponseWriter, r *http.Request) {
	h.downloadTemplate(w, r, adminHSCodes, h.API.HSCodesTemplate)
}
