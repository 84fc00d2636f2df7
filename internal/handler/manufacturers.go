// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/partsadmin/internal/cache"
	"github.com/olegiv/partsadmin/internal/catalog"
	"github.com/olegiv/partsadmin/internal/logging"
	"github.com/olegiv/partsadmin/internal/render"
	"github.com/olegiv/partsadmin/internal/store"
	"github.com/olegiv/partsadmin/internal/validate"
)

// ManufacturersHandler handles the manufacturer screens.
type ManufacturersHandler struct {
	Deps
}

// NewManufacturersHandler creates a new ManufacturersHandler.
func NewManufacturersHandler(d Deps) *ManufacturersHandler {
	return &ManufacturersHandler{Deps: d}
}

var mfgTypes = []string{catalog.MfgTypeOEM, catalog.MfgTypeAPM, catalog.MfgTypeRemanufacturers}

type manufacturerForm struct {
	MfgID         string `form:"mfg_id" validate:"max=20"`
	MfgName       string `form:"mfg_name" validate:"required,max=100"`
	MfgType       string `form:"mfg_type" validate:"omitempty,oneof=OEM APM Remanufacturers"`
	Country       string `form:"country" validate:"max=100"`
	Website       string `form:"website" validate:"omitempty,url"`
	Certification string `form:"certification" validate:"max=255"`
}

func manufacturerFormFrom(m catalog.Manufacturer) manufacturerForm {
	return manufacturerForm{
		MfgID:         m.MfgID,
		MfgName:       m.MfgName,
		MfgType:       m.MfgType,
		Country:       m.Country,
		Website:       m.Website,
		Certification: m.Certification,
	}
}

func manufacturerFormFromRequest(r *http.Request) manufacturerForm {
	return manufacturerForm{
		MfgID:         formText(r, "mfg_id"),
		MfgName:       formText(r, "mfg_name"),
		MfgType:       formText(r, "mfg_type"),
		Country:       formText(r, "country"),
		Website:       formText(r, "website"),
		Certification: formText(r, "certification"),
	}
}

func (f manufacturerForm) payload() catalog.ManufacturerPayload {
	return catalog.ManufacturerPayload(f)
}

// ManufacturersListData holds data for the manufacturer list template.
type ManufacturersListData struct {
	Manufacturers []catalog.Manufacturer
	Pager         Pager
}

// ManufacturerFormData holds data for the manufacturer form template.
type ManufacturerFormData struct {
	ID        string
	Form      manufacturerForm
	Types     []string
	Countries []catalog.Country
	IsEdit    bool
}

func manufacturerURL(id string) string {
	return adminManufacturers + "/" + url.PathEscape(id) + RouteSuffixEdit
}

// List handles GET /admin/manufacturers.
func (h *ManufacturersHandler) List(w http.ResponseWriter, r *http.Request) {
	page := pageParam(r)
	td := render.TemplateData{Title: "Manufacturers", Nav: navManufacturers}

	mfgs, err := h.API.Manufacturers(r.Context(), skip(page, defaultPageSize), defaultPageSize+1)
	if err != nil && h.listFailed(w, r, &td, "manufacturers", err) {
		return
	}
	pager := buildPager(page, len(mfgs), defaultPageSize, adminManufacturers, r.URL.Query())
	if len(mfgs) > defaultPageSize {
		mfgs = mfgs[:defaultPageSize]
	}

	td.Data = ManufacturersListData{Manufacturers: mfgs, Pager: pager}
	h.render(w, r, "admin/manufacturers", td)
}

func (h *ManufacturersHandler) formData(ctx context.Context, data ManufacturerFormData) ManufacturerFormData {
	data.Types = mfgTypes
	data.Countries, _ = h.Lookups.Countries(ctx)
	return data
}

// NewForm handles GET /admin/manufacturers/new.
func (h *ManufacturersHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	data := h.formData(r.Context(), ManufacturerFormData{Form: manufacturerForm{MfgType: catalog.MfgTypeOEM}})
	h.render(w, r, "admin/manufacturers_form", render.TemplateData{Title: "New manufacturer", Nav: navManufacturers, Data: data})
}

// Create handles POST /admin/manufacturers.
func (h *ManufacturersHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.Renderer, adminManufacturers+RouteSuffixNew) {
		return
	}
	form := manufacturerFormFromRequest(r)

	err := validate.Struct(form)
	if err == nil {
		_, err = h.API.CreateManufacturer(r.Context(), form.payload())
	}
	if err != nil {
		td := render.TemplateData{Title: "New manufacturer", Nav: navManufacturers, Data: h.formData(r.Context(), ManufacturerFormData{Form: form})}
		h.formError(w, r, "admin/manufacturers_form", td, "manufacturer", err)
		return
	}

	h.Lookups.invalidate(r.Context(), cache.EntityManufacturers, cache.EntityApprovalCounts)
	h.record(r, logging.Entry{Category: store.CategorySystem, Message: "Created manufacturer", EntityType: "manufacturer", Details: map[string]string{"name": form.MfgName}})
	flashSuccess(w, r, h.Renderer, adminManufacturers, "Manufacturer created")
}

// EditForm handles GET /admin/manufacturers/{id}/edit.
func (h *ManufacturersHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	m, ok := requireRecord(w, r, h.Renderer, h.SessionManager, adminManufacturers, "Manufacturer", id,
		func(id string) (*catalog.Manufacturer, error) { return h.API.Manufacturer(r.Context(), id) })
	if !ok {
		return
	}
	data := h.formData(r.Context(), ManufacturerFormData{ID: id, Form: manufacturerFormFrom(*m), IsEdit: true})
	h.render(w, r, "admin/manufacturers_form", render.TemplateData{Title: "Edit manufacturer", Nav: navManufacturers, Data: data})
}

// Update handles POST /admin/manufacturers/{id}.
func (h *ManufacturersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !parseFormOrRedirect(w, r, h.Renderer, manufacturerURL(id)) {
		return
	}
	form := manufacturerFormFromRequest(r)

	err := validate.Struct(form)
	if err == nil {
		_, err = h.API.UpdateManufacturer(r.Context(), id, form.payload())
	}
	if err != nil {
		td := render.TemplateData{Title: "Edit manufacturer", Nav: navManufacturers, Data: h.formData(r.Context(), ManufacturerFormData{ID: id, Form: form, IsEdit: true})}
		h.formError(w, r, "admin/manufacturers_form", td, "manufacturer", err)
		return
	}

	h.Lookups.invalidate(r.Context(), cache.EntityManufacturers)
	h.record(r, logging.Entry{Category: store.CategorySystem, Message: "Updated manufacturer", EntityType: "manufacturer", EntityID: id})
	flashSuccess(w, r, h.Renderer, adminManufacturers, "Manufacturer updated")
}

// Delete handles POST /admin/manufacturers/{id}/delete.
func (h *ManufacturersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.API.DeleteManufacturer(r.Context(), id); err != nil {
		h.fail(w, r, adminManufacturers, "Failed to delete manufacturer", err)
		return
	}
	h.Lookups.invalidate(r.Context(), cache.EntityManufacturers)
	h.record(r, logging.Entry{Category: store.CategorySystem, Message: "Deleted manufacturer", EntityType: "manufacturer", EntityID: id})
	flashSuccess(w, r, h.Renderer, adminManufacturers, "Manufacturer deleted")
}
