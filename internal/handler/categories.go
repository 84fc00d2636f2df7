// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/partsadmin/internal/cache"
	"github.com/olegiv/partsadmin/internal/catalog"
	"github.com/olegiv/partsadmin/internal/logging"
	"github.com/olegiv/partsadmin/internal/render"
	"github.com/olegiv/partsadmin/internal/store"
	"github.com/olegiv/partsadmin/internal/validate"
)

// CategoriesHandler handles the category screen. Categories are few, so
// the list and the add form share one page and edits happen inline.
type CategoriesHandler struct {
	Deps
}

// NewCategoriesHandler creates a new CategoriesHandler.
func NewCategoriesHandler(d Deps) *CategoriesHandler {
	return &CategoriesHandler{Deps: d}
}

type categoryForm struct {
	CategoryNameEN string `form:"category_name_en" validate:"required,max=100"`
	CategoryNamePR string `form:"category_name_pr" validate:"max=100"`
	CategoryNameFR string `form:"category_name_fr" validate:"max=100"`
}

func categoryFormFromRequest(r *http.Request) categoryForm {
	return categoryForm{
		CategoryNameEN: formText(r, "category_name_en"),
		CategoryNamePR: formText(r, "category_name_pr"),
		CategoryNameFR: formText(r, "category_name_fr"),
	}
}

// CategoriesData holds data for the categories template.
type CategoriesData struct {
	Categories []catalog.Category
	Form       categoryForm
	EditID     string
}

func (h *CategoriesHandler) page(w http.ResponseWriter, r *http.Request, status int, data CategoriesData, err error) {
	td := render.TemplateData{Title: "Categories", Nav: navCategories}
	cats, lerr := h.API.Categories(r.Context())
	if lerr != nil && h.listFailed(w, r, &td, "categories", lerr) {
		return
	}
	data.Categories = cats
	td.Data = data
	if err != nil {
		h.formError(w, r, "admin/categories", td, "category", err)
		return
	}
	h.renderStatus(w, r, status, "admin/categories", td)
}

// List handles GET /admin/categories. ?edit={id} opens a row for editing.
func (h *CategoriesHandler) List(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, http.StatusOK, CategoriesData{EditID: r.URL.Query().Get("edit")}, nil)
}

// Create handles POST /admin/categories.
func (h *CategoriesHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.Renderer, adminCategories) {
		return
	}
	form := categoryFormFromRequest(r)

	err := validate.Struct(form)
	if err == nil {
		_, err = h.API.CreateCategory(r.Context(), catalog.CategoryPayload(form))
	}
	if err != nil {
		h.page(w, r, http.StatusUnprocessableEntity, CategoriesData{Form: form}, err)
		return
	}

	h.Lookups.invalidate(r.Context(), cache.EntityCategories)
	h.record(r, logging.Entry{Category: store.CategorySystem, Message: "Created category", EntityType: "category", Details: map[string]string{"name": form.CategoryNameEN}})
	flashSuccess(w, r, h.Renderer, adminCategories, "Category created")
}

// Update handles POST /admin/categories/{id}.
func (h *CategoriesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !parseFormOrRedirect(w, r, h.Renderer, adminCategories) {
		return
	}
	form := categoryFormFromRequest(r)

	err := validate.Struct(form)
	if err == nil {
		_, err = h.API.UpdateCategory(r.Context(), id, catalog.CategoryPayload(form))
	}
	if err != nil {
		h.page(w, r, http.StatusUnprocessableEntity, CategoriesData{Form: form, EditID: id}, err)
		return
	}

	h.Lookups.invalidate(r.Context(), cache.EntityCategories)
	h.record(r, logging.Entry{Category: store.CategorySystem, Message: "Updated category", EntityType: "category", EntityID: id})
	flashSuccess(w, r, h.Renderer, adminCategories, "Category updated")
}

// Delete handles POST /admin/categories/{id}/delete.
func (h *CategoriesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.API.DeleteCategory(r.Context(), id); err != nil {
		h.fail(w, r, adminCategories, "Failed to delete category", err)
		return
	}
	h.Lookups.invalidate(r.Context(), cache.EntityCategories)
	h.record(r, logging.Entry{Category: store.CategorySystem, Message: "Deleted category", EntityType: "category", EntityID: id})
	flashSuccess(w, r, h.Renderer, adminCategories, "Category deleted")
}
