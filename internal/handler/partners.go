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

	"github.com/olegiv/partsadmin/internal/catalog"
	"github.com/olegiv/partsadmin/internal/logging"
	"github.com/olegiv/partsadmin/internal/render"
	"github.com/olegiv/partsadmin/internal/store"
	"github.com/olegiv/partsadmin/internal/validate"
)

// PartnersHandler handles partners and their contacts.
type PartnersHandler struct {
	Deps
}

// NewPartnersHandler creates a new PartnersHandler.
func NewPartnersHandler(d Deps) *PartnersHandler {
	return &PartnersHandler{Deps: d}
}

var partnerTypes = []string{catalog.PartnerSupplier, catalog.PartnerCustomer, catalog.PartnerARStorage, catalog.PartnerForwarder}

type partnerForm struct {
	Code         string `form:"code" validate:"max=20"`
	Name         string `form:"name" validate:"required,max=200"`
	StreetNumber string `form:"street_number" validate:"max=200"`
	City         string `form:"city" validate:"max=100"`
	Country      string `form:"country" validate:"max=100"`
	Type         string `form:"type" validate:"required,oneof=supplier customer AR_storage forwarder"`
}

func partnerFormFrom(p catalog.Partner) partnerForm {
	return partnerForm{Code: p.Code, Name: p.Name, StreetNumber: p.StreetNumber, City: p.City, Country: p.Country, Type: p.Type}
}

func partnerFormFromRequest(r *http.Request) partnerForm {
	return partnerForm{
		Code:         formText(r, "code"),
		Name:         formText(r, "name"),
		StreetNumber: formText(r, "street_number"),
		City:         formText(r, "city"),
		Country:      formText(r, "country"),
		Type:         formText(r, "type"),
	}
}

type contactForm struct {
	FullName string `form:"full_name" validate:"required,max=200"`
	JobTitle string `form:"job_title" validate:"max=100"`
	Email    string `form:"email" validate:"omitempty,email"`
	Phone1   string `form:"phone1" validate:"max=50"`
	Phone2   string `form:"phone2" validate:"max=50"`
}

func contactFormFromRequest(r *http.Request) contactForm {
	return contactForm{
		FullName: formText(r, "full_name"),
		JobTitle: formText(r, "job_title"),
		Email:    formText(r, "email"),
		Phone1:   formText(r, "phone1"),
		Phone2:   formText(r, "phone2"),
	}
}

func (f contactForm) payload(partnerID string) catalog.ContactPayload {
	return catalog.ContactPayload{
		PartnerID: partnerID,
		FullName:  f.FullName,
		JobTitle:  f.JobTitle,
		Email:     f.Email,
		Phone1:    f.Phone1,
		Phone2:    f.Phone2,
	}
}

// PartnersListData holds data for the partner list template.
type PartnersListData struct {
	Partners []catalog.Partner
	Search   string
	Type     string
	Types    []string
	Pager    Pager
}

// PartnerFormData holds data for the partner form template.
type PartnerFormData struct {
	ID        string
	Form      partnerForm
	Types     []string
	Countries []catalog.Country
	IsEdit    bool
}

// PartnerDetailData holds data for the partner detail template.
type PartnerDetailData struct {
	Partner  *catalog.Partner
	Contacts []catalog.Contact
	Contact  contactForm
}

func partnerURL(id string) string {
	return adminPartners + "/" + url.PathEscape(id)
}

// List handles GET /admin/partners.
func (h *PartnersHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := pageParam(r)
	filter := catalog.PartnerFilter{
		Search: strings.TrimSpace(q.Get("search")),
		Type:   q.Get("type"),
		Skip:   skip(page, defaultPageSize),
		Limit:  defaultPageSize + 1,
	}
	td := render.TemplateData{Title: "Partners", Nav: navPartners}

	partners, err := h.API.Partners(r.Context(), filter)
	if err != nil && h.listFailed(w, r, &td, "partners", err) {
		return
	}
	pager := buildPager(page, len(partners), defaultPageSize, adminPartners, q)
	if len(partners) > defaultPageSize {
		partners = partners[:defaultPageSize]
	}

	td.Data = PartnersListData{Partners: partners, Search: filter.Search, Type: filter.Type, Types: partnerTypes, Pager: pager}
	h.render(w, r, "admin/partners", td)
}

// Show handles GET /admin/partners/{id}.
func (h *PartnersHandler) Show(w http.ResponseWriter, r *http.Request) {
	h.renderDetail(w, r, http.StatusOK, chi.URLParam(r, "id"), contactForm{}, nil)
}

func (h *PartnersHandler) renderDetail(w http.ResponseWriter, r *http.Request, status int, id string, contact contactForm, errs validate.Errors) {
	p, ok := requireRecord(w, r, h.Renderer, h.SessionManager, adminPartners, "Partner", id,
		func(id string) (*catalog.Partner, error) { return h.API.Partner(r.Context(), id) })
	if !ok {
		return
	}

	td := render.TemplateData{Title: p.Name, Nav: navPartners, Errors: errs}
	contacts := p.Contacts
	if contacts == nil {
		var err error
		if contacts, err = h.API.Contacts(r.Context(), id); err != nil {
			td.Warnings = append(td.Warnings, h.warn(r, "contacts", err))
		}
	}
	td.Data = PartnerDetailData{Partner: p, Contacts: contacts, Contact: contact}
	h.renderStatus(w, r, status, "admin/partners_show", td)
}

func (h *PartnersHandler) formData(ctx context.Context, data PartnerFormData) PartnerFormData {
	data.Types = partnerTypes
	data.Countries, _ = h.Lookups.Countries(ctx)
	return data
}

// NewForm handles GET /admin/partners/new.
func (h *PartnersHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	data := h.formData(r.Context(), PartnerFormData{Form: partnerForm{Type: catalog.PartnerSupplier}})
	h.render(w, r, "admin/partners_form", render.TemplateData{Title: "New partner", Nav: navPartners, Data: data})
}

// Create handles POST /admin/partners.
func (h *PartnersHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.Renderer, adminPartners+RouteSuffixNew) {
		return
	}
	form := partnerFormFromRequest(r)

	err := validate.Struct(form)
	var created *catalog.Partner
	if err == nil {
		created, err = h.API.CreatePartner(r.Context(), catalog.PartnerPayload(form))
	}
	if err != nil {
		td := render.TemplateData{Title: "New partner", Nav: navPartners, Data: h.formData(r.Context(), PartnerFormData{Form: form})}
		h.formError(w, r, "admin/partners_form", td, "partner", err)
		return
	}

	h.record(r, logging.Entry{Category: store.CategorySystem, Message: "Created partner", EntityType: "partner", EntityID: created.ID, Details: map[string]string{"name": form.Name}})
	flashSuccess(w, r, h.Renderer, partnerURL(created.ID), "Partner created")
}

// EditForm handles GET /admin/partners/{id}/edit.
func (h *PartnersHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, ok := requireRecord(w, r, h.Renderer, h.SessionManager, adminPartners, "Partner", id,
		func(id string) (*catalog.Partner, error) { return h.API.Partner(r.Context(), id) })
	if !ok {
		return
	}
	data := h.formData(r.Context(), PartnerFormData{ID: id, Form: partnerFormFrom(*p), IsEdit: true})
	h.render(w, r, "admin/partners_form", render.TemplateData{Title: "Edit partner", Nav: navPartners, Data: data})
}

// Update handles POST /admin/partners/{id}.
func (h *PartnersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !parseFormOrRedirect(w, r, h.Renderer, partnerURL(id)) {
		return
	}
	form := partnerFormFromRequest(r)

	err := validate.Struct(form)
	if err == nil {
		_, err = h.API.UpdatePartner(r.Context(), id, catalog.PartnerPayload(form))
	}
	if err != nil {
		td := render.TemplateData{Title: "Edit partner", Nav: navPartners, Data: h.formData(r.Context(), PartnerFormData{ID: id, Form: form, IsEdit: true})}
		h.formError(w, r, "admin/partners_form", td, "partner", err)
		return
	}

	h.record(r, logging.Entry{Category: store.CategorySystem, Message: "Updated partner", EntityType: "partner", EntityID: id})
	flashSuccess(w, r, h.Renderer, partnerURL(id), "Partner updated")
}

// Delete handles POST /admin/partners/{id}/delete.
func (h *PartnersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.API.DeletePartner(r.Context(), id); err != nil {
		h.fail(w, r, partnerURL(id), "Failed to delete partner", err)
		return
	}
	h.record(r, logging.Entry{Category: store.CategorySystem, Message: "Deleted partner", EntityType: "partner", EntityID: id})
	flashSuccess(w, r, h.Renderer, adminPartners, "Partner deleted")
}

// AddContact handles POST /admin/partners/{id}/contacts.
func (h *PartnersHandler) AddContact(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !parseFormOrRedirect(w, r, h.Renderer, partnerURL(id)) {
		return
	}
	form := contactFormFromRequest(r)

	if err := validate.Struct(form); err != nil {
		errs, _ := validate.AsErrors(err)
		h.renderDetail(w, r, http.StatusUnprocessableEntity, id, form, errs)
		return
	}
	if _, err := h.API.CreateContact(r.Context(), id, form.payload(id)); err != nil {
		h.fail(w, r, partnerURL(id), "Failed to add contact", err)
		return
	}

	h.record(r, logging.Entry{Category: store.CategorySystem, Message: "Added contact", EntityType: "partner", EntityID: id, Details: map[string]string{"name": form.FullName}})
	flashSuccess(w, r, h.Renderer, partnerURL(id), "Contact added")
}

// UpdateContact handles POST /admin/partners/{id}/contacts/{contactID}.
func (h *PartnersHandler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	contactID := chi.URLParam(r, "contactID")
	if !parseFormOrRedirect(w, r, h.Renderer, partnerURL(id)) {
		return
	}
	form := contactFormFromRequest(r)

	if err := validate.Struct(form); err != nil {
		flashError(w, r, h.Renderer, partnerURL(id), "Contact not saved: "+err.Error())
		return
	}
	if _, err := h.API.UpdateContact(r.Context(), contactID, form.payload(id)); err != nil {
		h.fail(w, r, partnerURL(id), "Failed to update contact", err)
		return
	}

	h.record(r, logging.Entry{Category: store.CategorySystem, Message: "Updated contact", EntityType: "contact", EntityID: contactID})
	flashSuccess(w, r, h.Renderer, partnerURL(id), "Contact updated")
}

// DeleteContact handles POST /admin/partners/{id}/contacts/{contactID}/delete.
func (h *PartnersHandler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	contactID := chi.URLParam(r, "contactID")
	if err := h.API.DeleteContact(r.Context(), contactID); err != nil {
		h.fail(w, r, partnerURL(id), "Failed to delete contact", err)
		return
	}
	h.record(r, logging.Entry{Category: store.CategorySystem, Message: "Deleted contact", EntityType: "contact", EntityID: contactID})
	flashSuccess(w, r, h.Renderer, partnerURL(id), "Contact deleted")
}

// Upload handles POST /admin/partners/upload.
func (h *PartnersHandler) Upload(w http.ResponseWriter, r *http.Request) {
	h.csvUpload(w, r, "partners", adminPartners, navPartners,
		func(ctx context.Context, filename string, body io.Reader) (UploadSummary, error) {
			res, err := h.API.UploadPartners(ctx, filename, body)
			if err != nil {
				return UploadSummary{}, err
			}
			return summaryFromBulk(res), nil
		})
}

// Template handles GET /admin/partners/template.
func (h *PartnersHandler) Template(w http.ResponseWriter, r *http.Request) {
	h.downloadTemplate(w, r, adminPartners, h.API.PartnersTemplate)
}
