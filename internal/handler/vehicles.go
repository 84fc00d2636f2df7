// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/partsadmin/internal/catalog"
	"github.com/olegiv/partsadmin/internal/logging"
	"github.com/olegiv/partsadmin/internal/render"
	"github.com/olegiv/partsadmin/internal/store"
	"github.com/olegiv/partsadmin/internal/validate"
)

// VehiclesHandler handles the vehicle screens, including VIN prefix
// equivalences and compatible parts.
type VehiclesHandler struct {
	Deps
}

// NewVehiclesHandler creates a new VehiclesHandler.
func NewVehiclesHandler(d Deps) *VehiclesHandler {
	return &VehiclesHandler{Deps: d}
}

// vehicleForm holds Year as text so a bad value is shown back as typed.
type vehicleForm struct {
	VIN          string `form:"vin" validate:"required,len=17,alphanum"`
	Make         string `form:"make" validate:"required,max=50"`
	Model        string `form:"model" validate:"required,max=50"`
	Year         string `form:"year" validate:"required,numeric"`
	Engine       string `form:"engine" validate:"max=50"`
	Trim         string `form:"trim" validate:"max=50"`
	Transmission string `form:"transmission" validate:"max=50"`
	DriveType    string `form:"drive_type" validate:"max=20"`
}

func vehicleFormFrom(v catalog.Vehicle) vehicleForm {
	return vehicleForm{
		VIN:          v.VIN,
		Make:         v.Make,
		Model:        v.Model,
		Year:         strconv.Itoa(v.Year),
		Engine:       v.Engine,
		Trim:         v.Trim,
		Transmission: v.Transmission,
		DriveType:    v.DriveType,
	}
}

func vehicleFormFromRequest(r *http.Request) vehicleForm {
	return vehicleForm{
		VIN:          strings.ToUpper(formText(r, "vin")),
		Make:         formText(r, "make"),
		Model:        formText(r, "model"),
		Year:         formText(r, "year"),
		Engine:       formText(r, "engine"),
		Trim:         formText(r, "trim"),
		Transmission: formText(r, "transmission"),
		DriveType:    formText(r, "drive_type"),
	}
}

// validate checks the tags and the model year range.
func (f vehicleForm) validate() (catalog.VehiclePayload, error) {
	if err := validate.Struct(f); err != nil {
		return catalog.VehiclePayload{}, err
	}
	year, _ := strconv.Atoi(f.Year)
	if year < 1900 || year > time.Now().Year()+1 {
		return catalog.VehiclePayload{}, validate.Errors{"year": "is not a valid model year"}
	}
	return catalog.VehiclePayload{
		VIN:          f.VIN,
		Make:         f.Make,
		Model:        f.Model,
		Year:         year,
		Engine:       f.Engine,
		Trim:         f.Trim,
		Transmission: f.Transmission,
		DriveType:    f.DriveType,
	}, nil
}

// VehiclesListData holds data for the vehicle list template.
type VehiclesListData struct {
	Vehicles   []catalog.Vehicle
	Search     string
	Pagination Pagination
}

// VehicleFormData holds data for the vehicle form template.
type VehicleFormData struct {
	ID     string
	Form   vehicleForm
	IsEdit bool
}

// VehicleDetailData holds data for the vehicle detail template.
type VehicleDetailData struct {
	Vehicle      *catalog.Vehicle
	Equivalences []catalog.VehicleEquivalence
	Compatible   []catalog.VehiclePartCompatibility
}

func vehicleURL(id string) string {
	return adminVehicles + "/" + url.PathEscape(id)
}

// List handles GET /admin/vehicles.
func (h *VehiclesHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := pageParam(r)
	search := strings.TrimSpace(q.Get("search"))
	td := render.TemplateData{Title: "Vehicles", Nav: navVehicles}

	result, err := h.API.Vehicles(r.Context(), search, skip(page, defaultPageSize), defaultPageSize)
	if err != nil {
		if h.listFailed(w, r, &td, "vehicles", err) {
			return
		}
		result = &catalog.Page[catalog.Vehicle]{}
	}

	td.Data = VehiclesListData{
		Vehicles:   result.Items,
		Search:     search,
		Pagination: buildPagination(page, result.Total, defaultPageSize, adminVehicles, q),
	}
	h.render(w, r, "admin/vehicles", td)
}

// Show handles GET /admin/vehicles/{id}.
func (h *VehiclesHandler) Show(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	v, ok := requireRecord(w, r, h.Renderer, h.SessionManager, adminVehicles, "Vehicle", id,
		func(id string) (*catalog.Vehicle, error) { return h.API.Vehicle(r.Context(), id) })
	if !ok {
		return
	}

	td := render.TemplateData{Title: v.Make + " " + v.Model, Nav: navVehicles}
	data := VehicleDetailData{Vehicle: v}
	var err error
	if data.Equivalences, err = h.API.VehicleEquivalences(r.Context(), id); err != nil {
		td.Warnings = append(td.Warnings, h.warn(r, "equivalences", err))
	}
	if data.Compatible, err = h.API.CompatibleParts(r.Context(), id); err != nil {
		td.Warnings = append(td.Warnings, h.warn(r, "compatible parts", err))
	}
	td.Data = data
	h.render(w, r, "admin/vehicles_show", td)
}

// NewForm handles GET /admin/vehicles/new.
func (h *VehiclesHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "admin/vehicles_form", render.TemplateData{Title: "New vehicle", Nav: navVehicles, Data: VehicleFormData{}})
}

// Create handles POST /admin/vehicles.
func (h *VehiclesHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.Renderer, adminVehicles+RouteSuffixNew) {
		return
	}
	form := vehicleFormFromRequest(r)

	payload, err := form.validate()
	var created *catalog.Vehicle
	if err == nil {
		created, err = h.API.CreateVehicle(r.Context(), payload)
	}
	if err != nil {
		td := render.TemplateData{Title: "New vehicle", Nav: navVehicles, Data: VehicleFormData{Form: form}}
		h.formError(w, r, "admin/vehicles_form", td, "vehicle", err)
		return
	}

	h.record(r, logging.Entry{Category: store.CategorySystem, Message: "Created vehicle", EntityType: "vehicle", EntityID: created.ID, Details: map[string]string{"vin": form.VIN}})
	flashSuccess(w, r, h.Renderer, vehicleURL(created.ID), "Vehicle created")
}

// EditForm handles GET /admin/vehicles/{id}/edit.
func (h *VehiclesHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	v, ok := requireRecord(w, r, h.Renderer, h.SessionManager, adminVehicles, "Vehicle", id,
		func(id string) (*catalog.Vehicle, error) { return h.API.Vehicle(r.Context(), id) })
	if !ok {
		return
	}
	h.render(w, r, "admin/vehicles_form", render.TemplateData{
		Title: "Edit vehicle",
		Nav:   navVehicles,
		Data:  VehicleFormData{ID: id, Form: vehicleFormFrom(*v), IsEdit: true},
	})
}

// Update handles POST /admin/vehicles/{id}.
func (h *VehiclesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !parseFormOrRedirect(w, r, h.Renderer, vehicleURL(id)) {
		return
	}
	form := vehicleFormFromRequest(r)

	payload, err := form.validate()
	if err == nil {
		_, err = h.API.UpdateVehicle(r.Context(), id, payload)
	}
	if err != nil {
		td := render.TemplateData{Title: "Edit vehicle", Nav: navVehicles, Data: VehicleFormData{ID: id, Form: form, IsEdit: true}}
		h.formError(w, r, "admin/vehicles_form", td, "vehicle", err)
		return
	}

	h.record(r, logging.Entry{Category: store.CategorySystem, Message: "Updated vehicle", EntityType: "vehicle", EntityID: id})
	flashSuccess(w, r, h.Renderer, vehicleURL(id), "Vehicle updated")
}

// Delete handles POST /admin/vehicles/{id}/delete.
func (h *VehiclesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.API.DeleteVehicle(r.Context(), id); err != nil {
		h.fail(w, r, vehicleURL(id), "Failed to delete vehicle", err)
		return
	}
	h.record(r, logging.Entry{Category: store.CategorySystem, Message: "Deleted vehicle", EntityType: "vehicle", EntityID: id})
	flashSuccess(w, r, h.Renderer, adminVehicles, "Vehicle deleted")
}

// AddEquivalence handles POST /admin/vehicles/{id}/equivalences.
func (h *VehiclesHandler) AddEquivalence(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	back := vehicleURL(id)
	if !parseFormOrRedirect(w, r, h.Renderer, back) {
		return
	}
	p := catalog.VehicleEquivalencePayload{
		VINPrefix:          strings.ToUpper(formText(r, "vin_prefix")),
		EquivalentFamilies: formText(r, "equivalent_families"),
	}
	if p.VINPrefix == "" || p.EquivalentFamilies == "" {
		flashError(w, r, h.Renderer, back, "VIN prefix and equivalent families are required")
		return
	}
	if _, err := h.API.CreateVehicleEquivalence(r.Context(), id, p); err != nil {
		h.fail(w, r, back, "Failed to add equivalence", err)
		return
	}
	h.record(r, logging.Entry{Category: store.CategoryEquivalence, Message: "Added vehicle equivalence", EntityType: "vehicle", EntityID: id, Details: map[string]string{"vin_prefix": p.VINPrefix}})
	flashSuccess(w, r, h.Renderer, back, "Equivalence added")
}

// DeleteEquivalence handles POST /admin/vehicles/{id}/equivalences/{equivID}/delete.
func (h *VehiclesHandler) DeleteEquivalence(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	equivID := chi.URLParam(r, "equivID")
	if err := h.API.DeleteVehicleEquivalence(r.Context(), id, equivID); err != nil {
		h.fail(w, r, vehicleURL(id), "Failed to remove equivalence", err)
		return
	}
	h.record(r, logging.Entry{Category: store.CategoryEquivalence, Message: "Removed vehicle equivalence", EntityType: "vehicle", EntityID: id})
	flashSuccess(w, r, h.Renderer, vehicleURL(id), "Equivalence removed")
}

// AddCompatiblePart handles POST /admin/vehicles/{id}/parts.
func (h *VehiclesHandler) AddCompatiblePart(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	back := vehicleURL(id)
	if !parseFormOrRedirect(w, r, h.Renderer, back) {
		return
	}
	p := catalog.VehiclePartCompatibilityPayload{
		VehicleID: id,
		PartID:    formText(r, "part_id"),
		Notes:     formText(r, "notes"),
	}
	if p.PartID == "" {
		flashError(w, r, h.Renderer, back, "Enter a part ID")
		return
	}
	if _, err := h.API.CreateCompatiblePart(r.Context(), id, p); err != nil {
		h.fail(w, r, back, "Failed to add compatible part", err)
		return
	}
	h.record(r, logging.Entry{Category: store.CategoryEquivalence, Message: "Added compatible part", EntityType: "vehicle", EntityID: id, Details: map[string]string{"part_id": p.PartID}})
	flashSuccess(w, r, h.Renderer, back, "Compatible part added")
}

// DeleteCompatiblePart handles POST /admin/vehicles/{id}/parts/{partID}/delete.
func (h *VehiclesHandler) DeleteCompatiblePart(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	partID := chi.URLParam(r, "partID")
	if err := h.API.DeleteCompatiblePart(r.Context(), id, partID); err != nil {
		h.fail(w, r, vehicleURL(id), "Failed to remove compatible part", err)
		return
	}
	h.record(r, logging.Entry{Category: store.CategoryEquivalence, Message: "Removed compatible part", EntityType: "vehicle", EntityID: id, Details: map[string]string{"part_id": partID}})
	flashSuccess(w, r, h.Renderer, vehicleURL(id), "Compatible part removed")
}

// Upload handles POST /admin/vehicles/upload.
func (h *VehiclesHandler) Upload(w http.ResponseWriter, r *http.Request) {
	h.csvUpload(w, r, "vehicles", adminVehicles, navVehicles,
		func(ctx context.Context, filename string, body io.Reader) (UploadSummary, error) {
			res, err := h.API.UploadVehicles(ctx, filename, body)
			if err != nil {
				return UploadSummary{}, err
			}
			return summaryFromBulk(res), nil
		})
}

// Template handles GET /admin/vehicles/template.
func (h *VehiclesHandler) Template(w http.ResponseWriter, r *http.Request) {
	h.downloadTemplate(w, r, adminVehicles, h.API.VehiclesTemplate)
}
