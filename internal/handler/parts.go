// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/partsadmin/internal/cache"
	"github.com/olegiv/partsadmin/internal/catalog"
	"github.com/olegiv/partsadmin/internal/equivalence"
	"github.com/olegiv/partsadmin/internal/logging"
	"github.com/olegiv/partsadmin/internal/pricing"
	"github.com/olegiv/partsadmin/internal/render"
	"github.com/olegiv/partsadmin/internal/store"
	"github.com/olegiv/partsadmin/internal/validate"
)

// PartsHandler handles the parts catalog and equivalence screens.
type PartsHandler struct {
	Deps
}

// NewPartsHandler creates a new PartsHandler.
func NewPartsHandler(d Deps) *PartsHandler {
	return &PartsHandler{Deps: d}
}

// partForm is the part create/edit form.
type partForm struct {
	PartID      string `form:"part_id" validate:"required,max=12"`
	MfgID       string `form:"mfg_id"`
	PartNameEN  string `form:"part_name_en" validate:"required,max=60"`
	PositionID  string `form:"position_id"`
	DriveSide   string `form:"drive_side" validate:"omitempty,oneof=NA LHD RHD"`
	Designation string `form:"designation" validate:"max=255"`
	MOQ         *int
	Weight      *float64
	Width       *float64
	Length      *float64
	Height      *float64
	Note        string `form:"note" validate:"max=2000"`
	ImageURL    string `form:"image_url" validate:"omitempty,url"`
}

func partFormFrom(p catalog.Part) partForm {
	return partForm{
		PartID:      p.PartID,
		MfgID:       p.MfgID,
		PartNameEN:  p.PartNameEN,
		PositionID:  p.PositionID,
		DriveSide:   p.DriveSide,
		Designation: p.Designation,
		MOQ:         p.MOQ,
		Weight:      p.Weight,
		Width:       p.Width,
		Length:      p.Length,
		Height:      p.Height,
		Note:        p.Note,
		ImageURL:    p.ImageURL,
	}
}

// partFormFromRequest reads the part form. Unparseable numbers are
// reported as field errors next to the other validation errors.
func partFormFromRequest(r *http.Request) (partForm, validate.Errors) {
	f := partForm{
		PartID:      strings.ToUpper(formText(r, "part_id")),
		MfgID:       formText(r, "mfg_id"),
		PartNameEN:  formText(r, "part_name_en"),
		PositionID:  formText(r, "position_id"),
		DriveSide:   formText(r, "drive_side"),
		Designation: formText(r, "designation"),
		Note:        cleanText(r.FormValue("note")),
		ImageURL:    formText(r, "image_url"),
	}
	errs := validate.Errors{}
	var err error
	if f.MOQ, err = optionalInt(r, "moq"); err != nil {
		errs["moq"] = "must be a whole number"
	}
	for key, dst := range map[string]**float64{"weight": &f.Weight, "width": &f.Width, "length": &f.Length, "height": &f.Height} {
		if *dst, err = optionalFloat(r, key); err != nil {
			errs[key] = "must be a number"
		}
	}
	return f, errs
}

func (f partForm) payload() catalog.PartPayload {
	return catalog.PartPayload{
		PartID:      f.PartID,
		MfgID:       f.MfgID,
		PartNameEN:  f.PartNameEN,
		PositionID:  f.PositionID,
		DriveSide:   f.DriveSide,
		Designation: f.Designation,
		MOQ:         f.MOQ,
		Weight:      f.Weight,
		Width:       f.Width,
		Length:      f.Length,
		Height:      f.Height,
		Note:        f.Note,
		ImageURL:    f.ImageURL,
	}
}

// reviewPartForm is the reduced part form of the approval screen.
type reviewPartForm struct {
	PartID      string `form:"part_id" validate:"required,max=12"`
	PartNameEN  string `form:"part_name_en" validate:"max=60"`
	Designation string `form:"designation" validate:"max=255"`
	Note        string `form:"note" validate:"max=2000"`
}

func reviewPartFormFrom(p catalog.Part) reviewPartForm {
	return reviewPartForm{PartID: p.PartID, PartNameEN: p.PartNameEN, Designation: p.Designation, Note: p.Note}
}

func reviewPartFormFromRequest(r *http.Request) reviewPartForm {
	return reviewPartForm{
		PartID:      strings.ToUpper(formText(r, "part_id")),
		PartNameEN:  formText(r, "part_name_en"),
		Designation: formText(r, "designation"),
		Note:        cleanText(r.FormValue("note")),
	}
}

// PartsListData holds data for the parts list template.
type PartsListData struct {
	Parts         []catalog.Part
	Manufacturers []catalog.Manufacturer
	Search        string
	MfgID         string
	PartNameEN    string
	DriveSide     string
	DriveSides    []string
	Pagination    Pagination
}

// PartFormData holds data for the part form template.
type PartFormData struct {
	Part          *catalog.Part
	Form          partForm
	Manufacturers []catalog.Manufacturer
	Positions     []catalog.Position
	DriveSides    []string
	IsEdit        bool
}

// PartDetailData holds data for the part detail and equivalences template.
type PartDetailData struct {
	Part           *catalog.Part
	Equivalences   []catalog.Equivalence
	Summary        *equivalence.Summary
	BulkText       string
	BulkError      string
	Prices         []pricing.Row
	AvailableTiers []catalog.PriceTier
}

var driveSides = []string{catalog.DriveSideNA, catalog.DriveSideLHD, catalog.DriveSideRHD}

func partURL(id string) string {
	return adminParts + "/" + url.PathEscape(id)
}

// List handles GET /admin/parts.
func (h *PartsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := pageParam(r)
	filter := catalog.PartFilter{
		Search:     strings.TrimSpace(q.Get("search")),
		MfgID:      q.Get("mfg_id"),
		PartNameEN: q.Get("part_name_en"),
		DriveSide:  q.Get("drive_side"),
		Page:       page,
		PageSize:   defaultPageSize,
	}

	td := render.TemplateData{Title: "Parts", Nav: navParts}
	data := PartsListData{
		Search:     filter.Search,
		MfgID:      filter.MfgID,
		PartNameEN: filter.PartNameEN,
		DriveSide:  filter.DriveSide,
		DriveSides: driveSides,
	}

	result, err := h.API.Parts(r.Context(), filter)
	if err != nil {
		if h.listFailed(w, r, &td, "parts", err) {
			return
		}
		result = &catalog.Page[catalog.Part]{}
	}
	data.Parts = result.Items
	data.Pagination = buildPagination(page, result.Total, defaultPageSize, adminParts, q)

	if mfgs, err := h.Lookups.Manufacturers(r.Context()); err != nil {
		td.Warnings = append(td.Warnings, h.warn(r, "manufacturers", err))
	} else {
		data.Manufacturers = mfgs
	}

	td.Data = data
	h.render(w, r, "admin/parts", td)
}

func (h *PartsHandler) formData(ctx context.Context, data PartFormData) PartFormData {
	data.Manufacturers, _ = h.Lookups.Manufacturers(ctx)
	data.Positions, _ = h.Lookups.Positions(ctx)
	data.DriveSides = driveSides
	return data
}

// NewForm handles GET /admin/parts/new.
func (h *PartsHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	data := h.formData(r.Context(), PartFormData{Form: partForm{DriveSide: catalog.DriveSideNA}})
	h.render(w, r, "admin/parts_form", render.TemplateData{Title: "New part", Nav: navParts, Data: data})
}

// Create handles POST /admin/parts.
func (h *PartsHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.Renderer, adminParts+RouteSuffixNew) {
		return
	}
	form, errs := partFormFromRequest(r)
	if err := h.validate(form, errs); err != nil {
		h.rerender(w, r, PartFormData{Form: form}, err)
		return
	}

	part, err := h.API.CreatePart(r.Context(), form.payload())
	if err != nil {
		h.rerender(w, r, PartFormData{Form: form}, err)
		return
	}

	h.Lookups.invalidate(r.Context(), cache.EntityParts)
	h.record(r, logging.Entry{Category: store.CategorySystem, Message: "Created part", EntityType: "part", EntityID: part.ID, Details: map[string]string{"part_id": part.PartID}})
	flashSuccess(w, r, h.Renderer, partURL(part.ID), "Part created")
}

// validate merges parse errors with struct validation.
func (h *PartsHandler) validate(form partForm, parseErrs validate.Errors) error {
	err := validate.Struct(form)
	if len(parseErrs) == 0 {
		return err
	}
	if fieldErrs, ok := validate.AsErrors(err); ok {
		for k, v := range fieldErrs {
			parseErrs[k] = v
		}
	}
	return parseErrs
}

// Show handles GET /admin/parts/{id}.
func (h *PartsHandler) Show(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	part, ok := requireRecord(w, r, h.Renderer, h.SessionManager, adminParts, "Part", id,
		func(id string) (*catalog.Part, error) { return h.API.Part(r.Context(), id) })
	if !ok {
		return
	}
	h.renderDetail(w, r, http.StatusOK, PartDetailData{Part: part})
}

// Equivalences handles GET /admin/parts/{id}/equivalences. The list lives
// on the detail page, so the request lands on its equivalences section.
func (h *PartsHandler) Equivalences(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, partURL(chi.URLParam(r, "id"))+"#equivalences", http.StatusSeeOther)
}

// renderDetail loads the equivalences of data.Part and renders the detail page.
func (h *PartsHandler) renderDetail(w http.ResponseWriter, r *http.Request, status int, data PartDetailData) {
	td := render.TemplateData{Title: "Part " + data.Part.PartID, Nav: navParts}
	equivs, err := h.API.Equivalences(r.Context(), data.Part.ID)
	if err != nil && h.listFailed(w, r, &td, "equivalences", err) {
		return
	}
	data.Equivalences = equivs

	// Prices are keyed by the part number.
	prices, err := h.API.PartPrices(r.Context(), data.Part.PartID)
	if err != nil && h.listFailed(w, r, &td, "prices", err) {
		return
	}
	tiers, err := h.Lookups.PriceTiers(r.Context())
	if err != nil && h.listFailed(w, r, &td, "price tiers", err) {
		return
	}
	data.Prices = pricing.Rows(prices, tiers)
	data.AvailableTiers = pricing.AvailableTiers(tiers, prices)
	td.Data = data
	h.renderStatus(w, r, status, "admin/parts_show", td)
}

// EditForm handles GET /admin/parts/{id}/edit.
func (h *PartsHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	part, ok := requireRecord(w, r, h.Renderer, h.SessionManager, adminParts, "Part", id,
		func(id string) (*catalog.Part, error) { return h.API.Part(r.Context(), id) })
	if !ok {
		return
	}
	data := h.formData(r.Context(), PartFormData{Part: part, Form: partFormFrom(*part), IsEdit: true})
	h.render(w, r, "admin/parts_form", render.TemplateData{Title: "Edit part", Nav: navParts, Data: data})
}

// Update handles POST /admin/parts/{id}.
func (h *PartsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !parseFormOrRedirect(w, r, h.Renderer, partURL(id)) {
		return
	}
	form, errs := partFormFromRequest(r)
	current := &catalog.Part{ID: id, PartID: form.PartID}
	if err := h.validate(form, errs); err != nil {
		h.rerender(w, r, PartFormData{Part: current, Form: form, IsEdit: true}, err)
		return
	}

	if _, err := h.API.UpdatePart(r.Context(), id, form.payload()); err != nil {
		h.rerender(w, r, PartFormData{Part: current, Form: form, IsEdit: true}, err)
		return
	}

	h.Lookups.invalidate(r.Context(), cache.EntityParts)
	h.record(r, logging.Entry{Category: store.CategorySystem, Message: "Updated part", EntityType: "part", EntityID: id})
	flashSuccess(w, r, h.Renderer, partURL(id), "Part updated")
}

func (h *PartsHandler) rerender(w http.ResponseWriter, r *http.Request, data PartFormData, err error) {
	if isUnauthorized(err) {
		expireSession(w, r, h.Renderer, h.SessionManager)
		return
	}
	title := "New part"
	if data.IsEdit {
		title = "Edit part"
	}
	td := render.TemplateData{Title: title, Nav: navParts, Data: h.formData(r.Context(), data)}
	if fieldErrs, ok := validate.AsErrors(err); ok {
		td.Errors = fieldErrs
	} else {
		h.logger().Warn("saving part failed", "error", err)
		td.Flash = catalog.Detail(err, "Failed to save part")
		td.FlashType = "error"
	}
	h.renderStatus(w, r, http.StatusUnprocessableEntity, "admin/parts_form", td)
}

// Delete handles POST /admin/parts/{id}/delete.
func (h *PartsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	res, err := h.API.DeletePart(r.Context(), id)
	if err != nil {
		h.fail(w, r, partURL(id), "Failed to delete part", err)
		return
	}
	h.Lookups.invalidate(r.Context(), cache.EntityParts)
	h.record(r, logging.Entry{Category: store.CategorySystem, Message: "Deleted part", EntityType: "part", EntityID: id, Details: map[string]string{"part_id": res.PartID}})

	message := res.Message
	if message == "" {
		message = "Part deleted"
	}
	flashSuccess(w, r, h.Renderer, adminParts, message)
}

// Suggestions handles GET /admin/parts/suggestions?part_name_en= and
// returns dimension defaults learned from parts with the same name.
func (h *PartsHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("part_name_en"))
	if name == "" {
		writeJSON(w, http.StatusOK, catalog.DimensionSuggestions{})
		return
	}
	s, err := h.API.DimensionSuggestions(r.Context(), name)
	if err != nil {
		h.logger().Warn("loading dimension suggestions failed", "name", name, "error", err)
		writeJSONError(w, http.StatusBadGateway, catalog.Detail(err, "Could not load suggestions"))
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// AddEquivalence handles POST /admin/parts/{id}/equivalences.
func (h *PartsHandler) AddEquivalence(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !parseFormOrRedirect(w, r, h.Renderer, partURL(id)) {
		return
	}
	equivID := formText(r, "equivalent_part_id")
	if equivID == "" {
		flashError(w, r, h.Renderer, partURL(id), "Choose the equivalent part")
		return
	}
	if equivID == id {
		flashError(w, r, h.Renderer, partURL(id), "A part cannot be equivalent to itself")
		return
	}

	if err := h.API.CreateEquivalence(r.Context(), id, equivID); err != nil {
		h.fail(w, r, partURL(id), "Failed to add equivalence", err)
		return
	}
	h.record(r, logging.Entry{Category: store.CategoryEquivalence, Message: "Added equivalence", EntityType: "part", EntityID: id, Details: map[string]string{"equivalent_part_id": equivID}})
	flashSuccess(w, r, h.Renderer, partURL(id), "Equivalence added")
}

// BulkEquivalences handles POST /admin/parts/{id}/equivalences/bulk. The
// outcome is rendered on the detail page with every category listed.
func (h *PartsHandler) BulkEquivalences(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !parseFormOrRedirect(w, r, h.Renderer, partURL(id)) {
		return
	}
	part, ok := requireRecord(w, r, h.Renderer, h.SessionManager, adminParts, "Part", id,
		func(id string) (*catalog.Part, error) { return h.API.Part(r.Context(), id) })
	if !ok {
		return
	}

	text := r.FormValue("part_ids")
	summary, err := equivalence.BulkAdd(r.Context(), h.API, id, text)
	switch {
	case errors.Is(err, equivalence.ErrNoPartIDs):
		h.renderDetail(w, r, http.StatusUnprocessableEntity, PartDetailData{Part: part, BulkText: text, BulkError: "Enter at least one part ID"})
		return
	case isUnauthorized(err):
		expireSession(w, r, h.Renderer, h.SessionManager)
		return
	case err != nil:
		h.logger().Warn("bulk equivalences failed", "part", id, "error", err)
		h.renderDetail(w, r, http.StatusUnprocessableEntity, PartDetailData{Part: part, BulkText: text, BulkError: catalog.Detail(err, "Failed to add equivalences")})
		return
	}

	if len(summary.AutoCreatedParts) > 0 {
		h.Lookups.invalidate(r.Context(), cache.EntityParts, cache.EntityApprovalCounts)
	}
	h.record(r, logging.Entry{
		Category:   store.CategoryEquivalence,
		Message:    "Bulk added equivalences",
		EntityType: "part",
		EntityID:   id,
		Details:    map[string]string{"summary": summary.Message()},
	})
	h.renderDetail(w, r, http.StatusOK, PartDetailData{Part: part, Summary: &summary})
}

// DeleteEquivalence handles POST /admin/parts/{id}/equivalences/{equivID}/delete.
func (h *PartsHandler) DeleteEquivalence(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	equivID := chi.URLParam(r, "equivID")
	if err := h.API.DeleteEquivalence(r.Context(), id, equivID); err != nil {
		h.fail(w, r, partURL(id), "Failed to remove equivalence", err)
		return
	}
	h.record(r, logging.Entry{Category: store.CategoryEquivalence, Message: "Removed equivalence", EntityType: "part", EntityID: id, Details: map[string]string{"equivalent_part_id": equivID}})
	flashSuccess(w, r, h.Renderer, partURL(id), "Equivalence removed")
}
