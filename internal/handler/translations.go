// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/partsadmin/internal/cache"
	"github.com/olegiv/partsadmin/internal/catalog"
	"github.com/olegiv/partsadmin/internal/logging"
	"github.com/olegiv/partsadmin/internal/render"
	"github.com/olegiv/partsadmin/internal/store"
	"github.com/olegiv/partsadmin/internal/translation"
	"github.com/olegiv/partsadmin/internal/validate"
)

// TranslationsHandler handles the translation catalog screens.
type TranslationsHandler struct {
	Deps
}

// NewTranslationsHandler creates a new TranslationsHandler.
func NewTranslationsHandler(d Deps) *TranslationsHandler {
	return &TranslationsHandler{Deps: d}
}

// TranslationsListData holds data for the translations list template.
type TranslationsListData struct {
	Translations []catalog.Translation
	Categories   []catalog.Category
	Search       string
	Category     string
	DriveSide    string
	Pagination   Pagination
}

// TranslationFormData holds data for the translation form template.
type TranslationFormData struct {
	Translation *catalog.Translation
	Form        translation.Form
	Categories  []catalog.Category
	HSCodes     []catalog.HSCode
	IsEdit      bool
}

// translationFormFromRequest reads the translation fields of a form.
func translationFormFromRequest(r *http.Request) translation.Form {
	return translation.Form{
		PartNameEN:        formText(r, "part_name_en"),
		PartNamePR:        formText(r, "part_name_pr"),
		PartNameFR:        formText(r, "part_name_fr"),
		HSCode:            formText(r, "hs_code"),
		CategoryEN:        formText(r, "category_en"),
		DriveSideSpecific: formText(r, "drive_side_specific"),
		AlternativeNames:  cleanText(r.FormValue("alternative_names")),
		Links:             formText(r, "links"),
	}
}

// List handles GET /admin/translations.
func (h *TranslationsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := pageParam(r)
	filter := catalog.TranslationFilter{
		Search:            strings.TrimSpace(q.Get("search")),
		CategoryEN:        q.Get("category_en"),
		DriveSideSpecific: q.Get("drive_side_specific"),
		Page:              page,
		PageSize:          defaultPageSize,
	}

	td := render.TemplateData{Title: "Translations", Nav: navTranslations}
	data := TranslationsListData{Search: filter.Search, Category: filter.CategoryEN, DriveSide: filter.DriveSideSpecific}

	result, err := h.API.Translations(r.Context(), filter)
	if err != nil {
		if h.listFailed(w, r, &td, "translations", err) {
			return
		}
		result = &catalog.Page[catalog.Translation]{}
	}
	data.Translations = result.Items
	data.Pagination = buildPagination(page, result.Total, defaultPageSize, adminTranslations, q)

	if cats, err := h.Lookups.Categories(r.Context()); err != nil {
		td.Warnings = append(td.Warnings, h.warn(r, "categories", err))
	} else {
		data.Categories = cats
	}

	td.Data = data
	h.render(w, r, "admin/translations", td)
}

func (h *TranslationsHandler) formData(ctx context.Context, data TranslationFormData) TranslationFormData {
	data.Categories, _ = h.Lookups.Categories(ctx)
	data.HSCodes, _ = h.Lookups.HSCodes(ctx)
	return data
}

// NewForm handles GET /admin/translations/new.
func (h *TranslationsHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	data := h.formData(r.Context(), TranslationFormData{Form: translation.Form{DriveSideSpecific: translation.DefaultDriveSide}})
	h.render(w, r, "admin/translations_form", render.TemplateData{Title: "New translation", Nav: navTranslations, Data: data})
}

// Create handles POST /admin/translations.
func (h *TranslationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.Renderer, adminTranslations+RouteSuffixNew) {
		return
	}
	form := translationFormFromRequest(r)

	err := form.Validate()
	if err == nil {
		err = h.checkNameFree(r.Context(), form.PartNameEN, "")
	}
	if err == nil {
		_, err = h.API.CreateTranslation(r.Context(), form.Payload())
	}
	if err != nil {
		h.rerender(w, r, TranslationFormData{Form: form}, err)
		return
	}

	h.Lookups.invalidate(r.Context(), cache.EntityTranslations)
	h.record(r, logging.Entry{Category: store.CategoryTranslation, Message: "Created translation", EntityType: "translation", Details: map[string]string{"name": form.PartNameEN}})
	flashSuccess(w, r, h.Renderer, adminTranslations, "Translation created")
}

// checkNameFree rejects an English name that another translation already
// uses. The backend does not guarantee uniqueness, so the console checks
// against the cached list.
func (h *TranslationsHandler) checkNameFree(ctx context.Context, name, exceptID string) error {
	all, err := h.Lookups.Translations(ctx)
	if err != nil {
		h.logger().Warn("duplicate name check skipped", "error", err)
		return nil
	}
	sess := translation.NewEditSession(catalog.Translation{ID: exceptID})
	if existing, ok := sess.Find(name, all); ok {
		return validate.Errors{"part_name_en": "already exists as \"" + existing.PartNameEN + "\""}
	}
	return nil
}

// EditForm handles GET /admin/translations/{id}/edit.
func (h *TranslationsHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	t, ok := requireRecord(w, r, h.Renderer, h.SessionManager, adminTranslations, "Translation", id,
		func(id string) (*catalog.Translation, error) { return h.API.Translation(r.Context(), id) })
	if !ok {
		return
	}
	data := h.formData(r.Context(), TranslationFormData{Translation: t, Form: translation.FormFrom(*t), IsEdit: true})
	h.render(w, r, "admin/translations_form", render.TemplateData{Title: "Edit translation", Nav: navTranslations, Data: data})
}

// Update handles POST /admin/translations/{id}.
func (h *TranslationsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !parseFormOrRedirect(w, r, h.Renderer, adminTranslations) {
		return
	}
	form := translationFormFromRequest(r)
	current := &catalog.Translation{ID: id, PartNameEN: form.PartNameEN}

	err := form.Validate()
	if err == nil {
		err = h.checkNameFree(r.Context(), form.PartNameEN, id)
	}
	if err == nil {
		_, err = h.API.UpdateTranslation(r.Context(), id, form.Payload())
	}
	if err != nil {
		h.rerender(w, r, TranslationFormData{Translation: current, Form: form, IsEdit: true}, err)
		return
	}

	h.Lookups.invalidate(r.Context(), cache.EntityTranslations)
	h.record(r, logging.Entry{Category: store.CategoryTranslation, Message: "Updated translation", EntityType: "translation", EntityID: id})
	flashSuccess(w, r, h.Renderer, adminTranslations, "Translation updated")
}

func (h *TranslationsHandler) rerender(w http.ResponseWriter, r *http.Request, data TranslationFormData, err error) {
	if isUnauthorized(err) {
		expireSession(w, r, h.Renderer, h.SessionManager)
		return
	}
	title := "New translation"
	if data.IsEdit {
		title = "Edit translation"
	}
	td := render.TemplateData{Title: title, Nav: navTranslations, Data: h.formData(r.Context(), data)}
	if fieldErrs, ok := validate.AsErrors(err); ok {
		td.Errors = fieldErrs
	} else {
		h.logger().Warn("saving translation failed", "error", err)
		td.Flash = catalog.Detail(err, "Failed to save translation")
		td.FlashType = "error"
	}
	h.renderStatus(w, r, http.StatusUnprocessableEntity, "admin/translations_form", td)
}

// Delete handles POST /admin/translations/{id}/delete.
func (h *TranslationsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.API.DeleteTranslation(r.Context(), id); err != nil {
		h.fail(w, r, adminTranslations, "Failed to delete translation", err)
		return
	}
	h.Lookups.invalidate(r.Context(), cache.EntityTranslations)
	h.record(r, logging.Entry{Category: store.CategoryTranslation, Message: "Deleted translation", EntityType: "translation", EntityID: id})
	flashSuccess(w, r, h.Renderer, adminTranslations, "Translation deleted")
}

// Upload handles POST /admin/translations/upload.
func (h *TranslationsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	h.csvUpload(w, r, "translations", adminTranslations, navTranslations,
		func(ctx context.Context, filename string, body io.Reader) (UploadSummary, error) {
			res, err := h.API.UploadTranslations(ctx, filename, body)
			if err != nil {
				return UploadSummary{}, err
			}
			return summaryFromTranslations(res), nil
		}, cache.EntityTranslations)
}

// Template handles GET /admin/translations/template.
func (h *TranslationsHandler) Template(w http.ResponseWriter, r *http.Request) {
	h.downloadTemplate(w, r, adminTranslations, h.API.TranslationsTemplate)
}
