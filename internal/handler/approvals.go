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

	"github.com/olegiv/partsadmin/internal/approval"
	"github.com/olegiv/partsadmin/internal/catalog"
	"github.com/olegiv/partsadmin/internal/logging"
	"github.com/olegiv/partsadmin/internal/render"
	"github.com/olegiv/partsadmin/internal/store"
	"github.com/olegiv/partsadmin/internal/translation"
	"github.com/olegiv/partsadmin/internal/validate"
)

// approvalHistoryLimit bounds the review history page.
const approvalHistoryLimit = 100

// ApprovalsHandler handles the pending-approval review screens.
type ApprovalsHandler struct {
	Deps
	service *approval.Service
}

// NewApprovalsHandler creates a new ApprovalsHandler.
func NewApprovalsHandler(d Deps, service *approval.Service) *ApprovalsHandler {
	return &ApprovalsHandler{Deps: d, service: service}
}

// TabHeader is one entry of the tab bar.
type TabHeader struct {
	Kind   approval.Kind
	Label  string
	Count  int
	Active bool
	URL    string
}

// ApprovalsData holds data for the approvals template.
type ApprovalsData struct {
	Tabs   []TabHeader
	Active approval.Kind
	Rows   []approval.Row
}

// ApprovalEditData holds data for the pending record edit template.
type ApprovalEditData struct {
	Kind       approval.Kind
	ID         string
	Name       string
	Form       any
	Countries  []catalog.Country
	Categories []catalog.Category
	HSCodes    []catalog.HSCode
	Mode       translation.Mode
	Warning    string
	TargetID   string
}

// ApprovalRejectData holds data for the rejection form template.
type ApprovalRejectData struct {
	Kind   approval.Kind
	Dialog *approval.RejectDialog
	Error  string
}

// ApprovalHistoryData holds data for the review history template.
type ApprovalHistoryData struct {
	Logs       []catalog.ApprovalLog
	EntityType string
	Types      []string
}

func tabURL(kind approval.Kind) string {
	return redirectApprovals + "?tab=" + string(kind)
}

// kindParam reads the {kind} URL parameter. On an unknown kind it
// redirects to the approvals page and returns false.
func (h *ApprovalsHandler) kindParam(w http.ResponseWriter, r *http.Request) (approval.Kind, bool) {
	kind, ok := approval.ParseKind(chi.URLParam(r, "kind"))
	if !ok {
		flashError(w, r, h.Renderer, redirectApprovals, "Unknown approval type")
		return "", false
	}
	return kind, true
}

// List handles GET /admin/approvals. Only the selected tab is loaded;
// the other tabs show their badge count from the approval summary.
func (h *ApprovalsHandler) List(w http.ResponseWriter, r *http.Request) {
	active, ok := approval.ParseKind(r.URL.Query().Get("tab"))
	if !ok {
		active = approval.KindParts
	}

	td := render.TemplateData{Title: "Approvals", Nav: navApprovals}

	counts, err := h.service.BadgeCounts(r.Context())
	if err != nil && h.listFailed(w, r, &td, "approval counts", err) {
		return
	}

	tab, err := h.service.Tab(active)
	if err != nil {
		logAndInternalError(w, "creating approval tab failed", "kind", active, "error", err)
		return
	}
	// The active tab's header shows the rows it listed, which may be
	// fresher than the cached summary.
	activeCount := -1
	tab.OnCountChange(func(n int) { activeCount = n })
	if err := tab.SetActive(r.Context(), true); err != nil && h.listFailed(w, r, &td, "pending "+active.Label(), err) {
		return
	}

	data := ApprovalsData{Active: active, Rows: tab.Rows()}
	for _, k := range approval.Kinds {
		header := TabHeader{Kind: k, Label: k.Label(), Count: counts.Of(k), Active: k == active, URL: tabURL(k)}
		if k == active && activeCount >= 0 {
			header.Count = activeCount
		}
		data.Tabs = append(data.Tabs, header)
	}

	td.Data = data
	h.render(w, r, "admin/approvals", td)
}

// Counts handles GET /admin/approvals/counts for the navigation badge.
func (h *ApprovalsHandler) Counts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.service.BadgeCounts(r.Context())
	if err != nil {
		if isUnauthorized(err) {
			writeJSONError(w, http.StatusUnauthorized, msgSessionExpired)
			return
		}
		h.logger().Warn("loading approval counts failed", "error", err)
		writeJSONError(w, http.StatusBadGateway, catalog.Detail(err, "Could not load approval counts"))
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

// History handles GET /admin/approvals/history.
func (h *ApprovalsHandler) History(w http.ResponseWriter, r *http.Request) {
	entityType := r.URL.Query().Get("entity_type")
	td := render.TemplateData{Title: "Review history", Nav: navApprovals}

	logs, err := h.API.ApprovalLogs(r.Context(), entityType, 0, approvalHistoryLimit)
	if err != nil && h.listFailed(w, r, &td, "review history", err) {
		return
	}

	td.Data = ApprovalHistoryData{
		Logs:       logs,
		EntityType: entityType,
		Types: []string{
			catalog.EntityPart, catalog.EntityTranslation, catalog.EntityHSCode,
			catalog.EntityManufacturer, catalog.EntityPort,
		},
	}
	h.render(w, r, "admin/approvals_history", td)
}

// Approve handles POST /admin/approvals/{kind}/{id}/approve.
func (h *ApprovalsHandler) Approve(w http.ResponseWriter, r *http.Request) {
	kind, ok := h.kindParam(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")

	tab, err := h.service.Tab(kind)
	if err != nil {
		logAndInternalError(w, "creating approval tab failed", "kind", kind, "error", err)
		return
	}
	if err := tab.Approve(r.Context(), id); err != nil {
		h.fail(w, r, tabURL(kind), "Failed to approve "+kind.Singular(), err)
		return
	}

	h.record(r, logging.Entry{
		Category:   store.CategoryApproval,
		Message:    "Approved " + kind.Singular(),
		EntityType: string(kind),
		EntityID:   id,
	})
	flashSuccess(w, r, h.Renderer, tabURL(kind), capitalize(kind.Singular())+" approved")
}

// RejectForm handles GET /admin/approvals/{kind}/{id}/reject.
func (h *ApprovalsHandler) RejectForm(w http.ResponseWriter, r *http.Request) {
	kind, ok := h.kindParam(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")

	row, ok := h.pendingRow(w, r, kind, id)
	if !ok {
		return
	}
	dialog := approval.NewRejectDialog(kind, id, row.Name)
	h.render(w, r, "admin/approvals_reject", render.TemplateData{
		Title: dialog.Title(),
		Nav:   navApprovals,
		Data:  ApprovalRejectData{Kind: kind, Dialog: dialog},
	})
}

// Reject handles POST /admin/approvals/{kind}/{id}/reject. A failure
// re-renders the form with the typed reason and the backend's message.
func (h *ApprovalsHandler) Reject(w http.ResponseWriter, r *http.Request) {
	kind, ok := h.kindParam(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	if !parseFormOrRedirect(w, r, h.Renderer, tabURL(kind)) {
		return
	}

	name := formText(r, "name")
	if name == "" {
		name = id
	}
	dialog := approval.NewRejectDialog(kind, id, name)
	dialog.Reason = cleanText(r.FormValue("reason"))

	tab, err := h.service.Tab(kind)
	if err != nil {
		logAndInternalError(w, "creating approval tab failed", "kind", kind, "error", err)
		return
	}

	err = dialog.Submit(r.Context(), func(ctx context.Context, reason string) error {
		return tab.Reject(ctx, id, reason)
	})
	if err != nil {
		if isUnauthorized(err) {
			expireSession(w, r, h.Renderer, h.SessionManager)
			return
		}
		message := catalog.Detail(err, "Failed to reject "+kind.Singular())
		if errors.Is(err, approval.ErrReasonRequired) {
			message = "Please give a reason for the rejection"
		}
		h.logger().Warn("rejection failed", "kind", kind, "id", id, "error", err)
		h.renderStatus(w, r, http.StatusUnprocessableEntity, "admin/approvals_reject", render.TemplateData{
			Title: dialog.Title(),
			Nav:   navApprovals,
			Data:  ApprovalRejectData{Kind: kind, Dialog: dialog, Error: message},
		})
		return
	}

	h.record(r, logging.Entry{
		Category:   store.CategoryApproval,
		Message:    "Rejected " + kind.Singular(),
		EntityType: string(kind),
		EntityID:   id,
		Details:    map[string]string{"name": name},
	})
	flashSuccess(w, r, h.Renderer, tabURL(kind), capitalize(kind.Singular())+" rejected")
}

// pendingRow loads the tab of kind and finds the pending record id. When
// the record is gone it redirects back to the tab and returns false.
func (h *ApprovalsHandler) pendingRow(w http.ResponseWriter, r *http.Request, kind approval.Kind, id string) (approval.Row, bool) {
	tab, err := h.service.Tab(kind)
	if err != nil {
		logAndInternalError(w, "creating approval tab failed", "kind", kind, "error", err)
		return approval.Row{}, false
	}
	if err := tab.Refresh(r.Context()); err != nil {
		h.fail(w, r, tabURL(kind), "Could not load pending "+kind.Label(), err)
		return approval.Row{}, false
	}
	row, ok := tab.Row(id)
	if !ok {
		flashError(w, r, h.Renderer, tabURL(kind), capitalize(kind.Singular())+" is no longer pending")
		return approval.Row{}, false
	}
	return row, true
}

// EditForm handles GET /admin/approvals/{kind}/{id}/edit.
func (h *ApprovalsHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	kind, ok := h.kindParam(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")

	data, ok := h.editData(w, r, kind, id)
	if !ok {
		return
	}
	h.render(w, r, "admin/approvals_edit", render.TemplateData{
		Title: "Edit pending " + kind.Singular(),
		Nav:   navApprovals,
		Data:  data,
	})
}

// editData loads the record being edited and the reference lists of its
// form. Reference lists that fail to load leave their select empty.
func (h *ApprovalsHandler) editData(w http.ResponseWriter, r *http.Request, kind approval.Kind, id string) (ApprovalEditData, bool) {
	ctx := r.Context()
	data := ApprovalEditData{Kind: kind, ID: id}
	redirect := tabURL(kind)

	switch kind {
	case approval.KindParts:
		part, ok := requireRecord(w, r, h.Renderer, h.SessionManager, redirect, "Part", id,
			func(id string) (*catalog.Part, error) { return h.API.Part(ctx, id) })
		if !ok {
			return data, false
		}
		data.Name = part.PartID
		data.Form = reviewPartFormFrom(*part)
	case approval.KindTranslations:
		t, ok := requireRecord(w, r, h.Renderer, h.SessionManager, redirect, "Translation", id,
			func(id string) (*catalog.Translation, error) { return h.API.Translation(ctx, id) })
		if !ok {
			return data, false
		}
		sess := translation.NewEditSession(*t)
		data.Name = t.PartNameEN
		data.Form = sess.Form
		data.Mode = sess.Mode()
		data.Categories, _ = h.Lookups.Categories(ctx)
		data.HSCodes, _ = h.Lookups.HSCodes(ctx)
	case approval.KindHSCodes:
		code, ok := requireRecord(w, r, h.Renderer, h.SessionManager, redirect, "HS code", id,
			func(id string) (*catalog.HSCodeWithTariffs, error) { return h.API.HSCode(ctx, id) })
		if !ok {
			return data, false
		}
		data.Name = code.HSCode.HSCode
		data.Form = hsCodeFormFrom(code.HSCode)
	case approval.KindManufacturers:
		m, ok := requireRecord(w, r, h.Renderer, h.SessionManager, redirect, "Manufacturer", id,
			func(id string) (*catalog.Manufacturer, error) { return h.API.Manufacturer(ctx, id) })
		if !ok {
			return data, false
		}
		data.Name = m.MfgName
		data.Form = manufacturerFormFrom(*m)
		data.Countries, _ = h.Lookups.Countries(ctx)
	case approval.KindPorts:
		p, ok := requireRecord(w, r, h.Renderer, h.SessionManager, redirect, "Port", id,
			func(id string) (*catalog.Port, error) { return h.API.Port(ctx, id) })
		if !ok {
			return data, false
		}
		data.Name = p.PortCode
		data.Form = portFormFrom(*p)
		data.Countries, _ = h.Lookups.Countries(ctx)
	}
	return data, true
}

// Edit handles POST /admin/approvals/{kind}/{id}/edit.
func (h *ApprovalsHandler) Edit(w http.ResponseWriter, r *http.Request) {
	kind, ok := h.kindParam(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	editURL := redirectApprovals + "/" + string(kind) + "/" + url.PathEscape(id) + RouteSuffixEdit
	if !parseFormOrRedirect(w, r, h.Renderer, editURL) {
		return
	}

	if kind == approval.KindTranslations {
		h.saveTranslation(w, r, id)
		return
	}

	var form any
	switch kind {
	case approval.KindParts:
		form = reviewPartFormFromRequest(r)
	case approval.KindHSCodes:
		form = hsCodeFormFromRequest(r)
	case approval.KindManufacturers:
		form = manufacturerFormFromRequest(r)
	case approval.KindPorts:
		form = portFormFromRequest(r)
	}
	if err := validate.Struct(form); err != nil {
		h.rerenderEdit(w, r, kind, id, form, err)
		return
	}

	tab, err := h.service.Tab(kind)
	if err != nil {
		logAndInternalError(w, "creating approval tab failed", "kind", kind, "error", err)
		return
	}
	if err := tab.Update(r.Context(), id, r.PostForm); err != nil {
		if isUnauthorized(err) {
			expireSession(w, r, h.Renderer, h.SessionManager)
			return
		}
		h.rerenderEdit(w, r, kind, id, form, err)
		return
	}

	h.record(r, logging.Entry{
		Category:   store.CategoryApproval,
		Message:    "Edited pending " + kind.Singular(),
		EntityType: string(kind),
		EntityID:   id,
	})
	flashSuccess(w, r, h.Renderer, tabURL(kind), capitalize(kind.Singular())+" updated")
}

// rerenderEdit shows the edit form again with the submitted values and
// either the field errors or the backend's message.
func (h *ApprovalsHandler) rerenderEdit(w http.ResponseWriter, r *http.Request, kind approval.Kind, id string, form any, err error) {
	ctx := r.Context()
	data := ApprovalEditData{Kind: kind, ID: id, Name: formText(r, "name"), Form: form}
	switch kind {
	case approval.KindManufacturers, approval.KindPorts:
		data.Countries, _ = h.Lookups.Countries(ctx)
	case approval.KindTranslations:
		data.Categories, _ = h.Lookups.Categories(ctx)
		data.HSCodes, _ = h.Lookups.HSCodes(ctx)
	}

	td := render.TemplateData{Title: "Edit pending " + kind.Singular(), Nav: navApprovals, Data: data}
	if fieldErrs, ok := validate.AsErrors(err); ok {
		td.Errors = fieldErrs
	} else {
		h.logger().Warn("saving pending record failed", "kind", kind, "id", id, "error", err)
		td.Flash = catalog.Detail(err, "Failed to save "+kind.Singular())
		td.FlashType = "error"
	}
	h.renderStatus(w, r, http.StatusUnprocessableEntity, "admin/approvals_edit", td)
}

// translationSession rebuilds the edit session of a pending translation
// from the submitted form. Merge detection runs only when the reviewer
// changed the English name. A merge also needs the form to carry the
// target the warning named; confirmed is false when it does not, and the
// session then holds the existing record's values for another look.
func (h *ApprovalsHandler) translationSession(r *http.Request, id string) (sess *translation.EditSession, confirmed bool, err error) {
	ctx := r.Context()
	editing, err := h.API.Translation(ctx, id)
	if err != nil {
		return nil, false, err
	}

	form := translationFormFromRequest(r)
	sess = translation.NewEditSession(*editing)
	if form.PartNameEN == strings.TrimSpace(editing.PartNameEN) {
		sess.Form = form
		return sess, true, nil
	}

	all, err := h.Lookups.Translations(ctx)
	if err != nil {
		return nil, false, err
	}
	sess.ChangeName(form.PartNameEN, all)
	if sess.Mode() == translation.ModeMerge && formText(r, "target_id") != sess.TargetID {
		sess.Form.PartNameEN = form.PartNameEN
		return sess, false, nil
	}
	// Keep what the reviewer submitted; in merge mode the form was already
	// switched to the existing record before these values were typed.
	sess.Form = form
	return sess, true, nil
}

// NameCheck handles POST /admin/approvals/translations/{id}/name-check.
// It reports whether the typed English name belongs to another translation
// and, if so, the values the form switches to.
func (h *ApprovalsHandler) NameCheck(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := r.ParseForm(); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid form data")
		return
	}

	ctx := r.Context()
	editing, ok := requireRecordJSON(w, "Translation", id,
		func(id string) (*catalog.Translation, error) { return h.API.Translation(ctx, id) })
	if !ok {
		return
	}
	sess := translation.NewEditSession(*editing)
	name := formText(r, "part_name_en")
	if name == strings.TrimSpace(editing.PartNameEN) {
		writeJSON(w, http.StatusOK, sess.State())
		return
	}

	all, err := h.Lookups.Translations(ctx)
	if err != nil {
		h.logger().Warn("loading translations for name check failed", "error", err)
		writeJSONError(w, http.StatusBadGateway, catalog.Detail(err, "Could not load translations"))
		return
	}
	sess.Form = translationFormFromRequest(r)
	sess.ChangeName(name, all)
	writeJSON(w, http.StatusOK, sess.State())
}

// saveTranslation saves a pending translation, merging it into an existing
// translation when the English name is already taken.
func (h *ApprovalsHandler) saveTranslation(w http.ResponseWriter, r *http.Request, id string) {
	ctx := r.Context()
	kind := approval.KindTranslations

	sess, confirmed, err := h.translationSession(r, id)
	if err != nil {
		h.fail(w, r, tabURL(kind), "Could not load translation", err)
		return
	}
	if !confirmed {
		h.rerenderTranslation(w, r, sess, http.StatusConflict, nil)
		return
	}

	result, err := sess.Save(ctx, h.API)
	switch {
	case err == nil:
	case errors.Is(err, translation.ErrMergeIncomplete):
		h.service.Notifier().Notify(ctx, kind)
		h.logger().Error("translation merge incomplete", "id", id, "target", sess.TargetID, "error", err)
		flashError(w, r, h.Renderer, tabURL(kind),
			"The existing translation was updated, but the pending duplicate could not be removed. Reject it manually.")
		return
	case isUnauthorized(err):
		expireSession(w, r, h.Renderer, h.SessionManager)
		return
	default:
		h.rerenderTranslation(w, r, sess, http.StatusUnprocessableEntity, err)
		return
	}

	h.service.Notifier().Notify(ctx, kind)
	entry := logging.Entry{
		Category:   store.CategoryTranslation,
		Message:    "Edited pending translation",
		EntityType: string(kind),
		EntityID:   id,
	}
	if result.Mode == translation.ModeMerge {
		entry.Message = "Merged pending translation"
		entry.Details = map[string]string{"target_id": result.TargetID, "name": result.Name}
	}
	h.record(r, entry)
	flashSuccess(w, r, h.Renderer, tabURL(kind), result.Message())
}

// rerenderTranslation shows the edit form again. A nil err re-renders
// only to show the merge warning.
func (h *ApprovalsHandler) rerenderTranslation(w http.ResponseWriter, r *http.Request, sess *translation.EditSession, status int, err error) {
	ctx := r.Context()
	data := ApprovalEditData{
		Kind:     approval.KindTranslations,
		ID:       sess.Editing.ID,
		Name:     sess.Editing.PartNameEN,
		Form:     sess.Form,
		Mode:     sess.Mode(),
		TargetID: sess.TargetID,
		Warning:  sess.Warning,
	}
	data.Categories, _ = h.Lookups.Categories(ctx)
	data.HSCodes, _ = h.Lookups.HSCodes(ctx)

	td := render.TemplateData{Title: "Edit pending translation", Nav: navApprovals, Data: data}
	if fieldErrs, ok := validate.AsErrors(err); ok {
		td.Errors = fieldErrs
	} else if err != nil {
		h.logger().Warn("saving translation failed", "id", sess.Editing.ID, "error", err)
		td.Flash = catalog.Detail(err, "Failed to save translation")
		td.FlashType = "error"
	}
	h.renderStatus(w, r, status, "admin/approvals_edit", td)
}
