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

// PortsHandler handles the port screens.
type PortsHandler struct {
	Deps
}

// NewPortsHandler creates a new PortsHandler.
func NewPortsHandler(d Deps) *PortsHandler {
	return &PortsHandler{Deps: d}
}

var portTypes = []string{catalog.PortTypeSea, catalog.PortTypeAir, catalog.PortTypeLand}

type portForm struct {
	PortCode string `form:"port_code" validate:"required,max=10"`
	PortName string `form:"port_name" validate:"max=100"`
	Country  string `form:"country" validate:"max=100"`
	City     string `form:"city" validate:"max=100"`
	Type     string `form:"type" validate:"omitempty,oneof=Sea Air Land"`
}

func portFormFrom(p catalog.Port) portForm {
	return portForm{PortCode: p.PortCode, PortName: p.PortName, Country: p.Country, City: p.City, Type: p.Type}
}

func portFormFromRequest(r *http.Request) portForm {
	return portForm{
		PortCode: strings.ToUpper(formText(r, "port_code")),
		PortName: formText(r, "port_name"),
		Country:  formText(r, "country"),
		City:     formText(r, "city"),
		Type:     formText(r, "type"),
	}
}

func (f portForm) payload() catalog.PortPayload {
	return catalog.PortPayload(f)
}

// PortsListData holds data for the port list template.
type PortsListData struct {
	Ports  []catalog.Port
	Search string
}

// PortFormData holds data for the port form template.
type PortFormData struct {
	ID        string
	Form      portForm
	Types     []string
	Countries []catalog.Country
	IsEdit    bool
}

func portURL(id string) string {
	return adminPorts + "/" + url.PathEscape(id) + RouteSuffixEdit
}

// List handles GET /admin/ports.
func (h *PortsHandler) List(w http.ResponseWriter, r *http.Request) {
	search := strings.TrimSpace(r.URL.Query().Get("search"))
	td := render.TemplateData{Title: "Ports", Nav: navPorts}

	ports, err := h.API.Ports(r.Context(), search)
	if err != nil && h.listFailed(w, r, &td, "ports", err) {
		return
	}
	td.Data = PortsListData{Ports: ports, Search: search}
	h.render(w, r, "admin/ports", td)
}

func (h *PortsHandler) formData(ctx context.Context, data PortFormData) PortFormData {
	data.Types = portTypes
	data.Countries, _ = h.Lookups.Countries(ctx)
	return data
}

// NewForm handles GET /admin/ports/new.
func (h *PortsHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	data := h.formData(r.Context(), PortFormData{Form: portForm{Type: catalog.PortTypeSea}})
	h.render(w, r, "admin/ports_form", render.TemplateData{Title: "New port", Nav: navPorts, Data: data})
}

// Create handles POST /admin/ports.
func (h *PortsHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.Renderer, adminPorts+RouteSuffixNew) {
		return
	}
	form := portFormFromRequest(r)

	err := validate.Struct(form)
	if err == nil {
		_, err = h.API.CreatePort(r.Context(), form.payload())
	}
	if err != nil {
		td := render.TemplateData{Title: "New port", Nav: navPorts, Data: h.formData(r.Context(), PortFormData{Form: form})}
		h.formError(w, r, "admin/ports_form", td, "port", err)
		return
	}

	h.Lookups.invalidate(r.Context(), cache.EntityPorts, cache.EntityApprovalCounts)
	h.record(r, logging.Entry{Category: store.CategorySystem, Message: "Created port", EntityType: "port", Details: map[string]string{"code": form.PortCode}})
	flashSuccess(w, r, h.Renderer, adminPorts, "Port created")
}

// EditForm handles GET /admin/ports/{id}/edit.
func (h *PortsHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, ok := requireRecord(w, r, h.Renderer, h.SessionManager, adminPorts, "Port", id,
		func(id string) (*catalog.Port, error) { return h.API.Port(r.Context(), id) })
	if !ok {
		return
	}
	data := h.formData(r.Context(), PortFormData{ID: id, Form: portFormFrom(*p), IsEdit: true})
	h.render(w, r, "admin/ports_form", render.TemplateData{Title: "Edit port", Nav: navPorts, Data: data})
}

// Update handles POST /admin/ports/{id}.
func (h *PortsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !parseFormOrRedirect(w, r, h.Renderer, portURL(id)) {
		return
	}
	form := portFormFromRequest(r)

	err := validate.Struct(form)
	if err == nil {
		_, err = h.API.UpdatePort(r.Context(), id, form.payload())
	}
	if err != nil {
		td := render.TemplateData{Title: "Edit port", Nav: navPorts, Data: h.formData(r.Context(), PortFormData{ID: id, Form: form, IsEdit: true})}
		h.formError(w, r, "admin/ports_form", td, "port", err)
		return
	}

	h.Lookups.invalidate(r.Context(), cache.EntityPorts)
	h.record(r, logging.Entry{Category: store.CategorySystem, Message: "Updated port", EntityType: "port", EntityID: id})
	flashSuccess(w, r, h.Renderer, adminPorts, "Port updated")
}

// Delete handles POST /admin/ports/{id}/delete.
func (h *PortsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.API.DeletePort(r.Context(), id); err != nil {
		h.fail(w, r, adminPorts, "Failed to delete port", err)
		return
	}
	h.Lookups.invalidate(r.Context(), cache.EntityPorts)
	h.record(r, logging.Entry{Category: store.CategorySystem, Message: "Deleted port", EntityType: "port", EntityID: id})
	flashSuccess(w, r, h.Renderer, adminPorts, "Port deleted")
}

// Upload handles POST /admin/ports/upload.
func (h *PortsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	h.csvUpload(w, r, "ports", adminPorts, navPorts,
		func(ctx context.Context, filename string, body io.Reader) (UploadSummary, error) {
			res, err := h.API.UploadPorts(ctx, filename, body)
			if err != nil {
				return UploadSummary{}, err
			}
			return summaryFromBulk(res), nil
		}, cache.EntityPorts, cache.EntityApprovalCounts)
}

// Template handles GET /admin/ports/template.
func (h *PortsHandler) Template(w http.ResponseWriter, r *http.Request) {
	h.downloadTemplate(w, r, adminPorts, h.API.PortsTemplate)
}
