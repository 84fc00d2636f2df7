// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/partsadmin/internal/cache"
	"github.com/olegiv/partsadmin/internal/catalog"
	"github.com/olegiv/partsadmin/internal/logging"
	"github.com/olegiv/partsadmin/internal/render"
	"github.com/olegiv/partsadmin/internal/store"
	"github.com/olegiv/partsadmin/internal/validate"
)

// PriceTiersHandler handles the price tier screens.
type PriceTiersHandler struct {
	Deps
}

// NewPriceTiersHandler creates a new PriceTiersHandler.
func NewPriceTiersHandler(d Deps) *PriceTiersHandler {
	return &PriceTiersHandler{Deps: d}
}

type priceTierForm struct {
	TierName    string `form:"tier_name" validate:"required,max=100"`
	Description string `form:"description" validate:"max=252"`
	TierKind    string `form:"tier_kind" validate:"max=64"`
}

func priceTierFormFrom(t catalog.PriceTier) priceTierForm {
	return priceTierForm{TierName: t.TierName, Description: t.Description, TierKind: t.TierKind}
}

func priceTierFormFromRequest(r *http.Request) priceTierForm {
	return priceTierForm{
		TierName:    formText(r, "tier_name"),
		Description: cleanText(r.FormValue("description")),
		TierKind:    strings.ToLower(formText(r, "tier_kind")),
	}
}

func (f priceTierForm) payload() catalog.PriceTierPayload {
	return catalog.PriceTierPayload(f)
}

// PriceTiersListData holds data for the price tier list template.
type PriceTiersListData struct {
	Tiers  []catalog.PriceTier
	Search string
}

// PriceTierFormData holds data for the price tier form template.
type PriceTierFormData struct {
	ID     string
	Form   priceTierForm
	IsEdit bool
}

func priceTierURL(id string) string {
	return adminPriceTiers + "/" + url.PathEscape(id) + RouteSuffixEdit
}

// List handles GET /admin/price-tiers.
func (h *PriceTiersHandler) List(w http.ResponseWriter, r *http.Request) {
	search := strings.TrimSpace(r.URL.Query().Get("search"))
	td := render.TemplateData{Title: "Price tiers", Nav: navPriceTiers}

	tiers, err := h.API.PriceTiers(r.Context(), search)
	if err != nil && h.listFailed(w, r, &td, "price tiers", err) {
		return
	}
	td.Data = PriceTiersListData{Tiers: tiers, Search: search}
	h.render(w, r, "admin/price_tiers", td)
}

// NewForm handles GET /admin/price-tiers/new.
func (h *PriceTiersHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "admin/price_tiers_form", render.TemplateData{Title: "New price tier", Nav: navPriceTiers, Data: PriceTierFormData{}})
}

// Create handles POST /admin/price-tiers.
func (h *PriceTiersHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.Renderer, adminPriceTiers+RouteSuffixNew) {
		return
	}
	form := priceTierFormFromRequest(r)

	err := validate.Struct(form)
	if err == nil {
		_, err = h.API.CreatePriceTier(r.Context(), form.payload())
	}
	if err != nil {
		td := render.TemplateData{Title: "New price tier", Nav: navPriceTiers, Data: PriceTierFormData{Form: form}}
		h.formError(w, r, "admin/price_tiers_form", td, "price tier", err)
		return
	}

	h.Lookups.invalidate(r.Context(), cache.EntityPriceTiers)
	h.record(r, logging.Entry{Category: store.CategorySystem, Message: "Created price tier", EntityType: "price_tier", Details: map[string]string{"name": form.TierName}})
	flashSuccess(w, r, h.Renderer, adminPriceTiers, "Price tier created")
}

// EditForm handles GET /admin/price-tiers/{id}/edit.
func (h *PriceTiersHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	t, ok := requireRecord(w, r, h.Renderer, h.SessionManager, adminPriceTiers, "Price tier", id,
		func(id string) (*catalog.PriceTier, error) { return h.API.PriceTier(r.Context(), id) })
	if !ok {
		return
	}
	data := PriceTierFormData{ID: id, Form: priceTierFormFrom(*t), IsEdit: true}
	h.render(w, r, "admin/price_tiers_form", render.TemplateData{Title: "Edit price tier", Nav: navPriceTiers, Data: data})
}

// Update handles POST /admin/price-tiers/{id}.
func (h *PriceTiersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !parseFormOrRedirect(w, r, h.Renderer, priceTierURL(id)) {
		return
	}
	form := priceTierFormFromRequest(r)

	err := validate.Struct(form)
	if err == nil {
		_, err = h.API.UpdatePriceTier(r.Context(), id, form.payload())
	}
	if err != nil {
		td := render.TemplateData{Title: "Edit price tier", Nav: navPriceTiers, Data: PriceTierFormData{ID: id, Form: form, IsEdit: true}}
		h.formError(w, r, "admin/price_tiers_form", td, "price tier", err)
		return
	}

	h.Lookups.invalidate(r.Context(), cache.EntityPriceTiers)
	h.record(r, logging.Entry{Category: store.CategorySystem, Message: "Updated price tier", EntityType: "price_tier", EntityID: id})
	flashSuccess(w, r, h.Renderer, adminPriceTiers, "Price tier updated")
}

// Delete handles POST /admin/price-tiers/{id}/delete.
func (h *PriceTiersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.API.DeletePriceTier(r.Context(), id); err != nil {
		h.fail(w, r, adminPriceTiers, "Failed to delete price tier", err)
		return
	}
	h.Lookups.invalidate(r.Context(), cache.EntityPriceTiers)
	h.record(r, logging.Entry{Category: store.CategorySystem, Message: "Deleted price tier", EntityType: "price_tier", EntityID: id})
	flashSuccess(w, r, h.Renderer, adminPriceTiers, "Price tier deleted")
}

// Upload handles POST /admin/price-tiers/upload.
func (h *PriceTiersHandler) Upload(w http.ResponseWriter, r *http.Request) {
	h.csvUpload(w, r, "price tiers", adminPriceTiers, navPriceTiers,
		func(ctx context.Context, filename string, body io.Reader) (UploadSummary, error) {
			res, err := h.API.UploadPriceTiers(ctx, filename, body)
			if err != nil {
				return UploadSummary{}, err
			}
			return summaryFromBulk(res), nil
		}, cache.EntityPriceTiers)
}

// Template handles GET /admin/price-tiers/template.
func (h *PriceTiersHandler) Template(w http.ResponseWriter, r *http.Request) {
	h.downloadTemplate(w, r, adminPriceTiers, h.API.PriceTiersTemplate)
}
