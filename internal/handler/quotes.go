// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/partsadmin/internal/catalog"
	"github.com/olegiv/partsadmin/internal/logging"
	"github.com/olegiv/partsadmin/internal/quote"
	"github.com/olegiv/partsadmin/internal/render"
	"github.com/olegiv/partsadmin/internal/session"
	"github.com/olegiv/partsadmin/internal/store"
	"github.com/olegiv/partsadmin/internal/validate"
)

// QuotesHandler handles supplier quote upload and review.
type QuotesHandler struct {
	Deps
}

// NewQuotesHandler creates a new QuotesHandler.
func NewQuotesHandler(d Deps) *QuotesHandler {
	return &QuotesHandler{Deps: d}
}

// QuotesListData holds data for the quote list template.
type QuotesListData struct {
	Quotes     []catalog.ExtractedQuote
	Search     string
	Status     string
	Pagination Pagination
}

// QuoteUploadData holds data for the upload template.
type QuoteUploadData struct {
	MaxMB        int64
	SlowAfterSec int
	SlowMessage  string
	Error        string
}

// QuoteEditData holds data for the quote review template.
type QuoteEditData struct {
	Quote      *catalog.ExtractedQuote
	Form       catalog.ExtractedQuoteUpdate
	Total      float64
	PreviewURL string
	FileURL    string
	ExportURL  string
}

type quoteHeaderForm struct {
	QuoteNumber   string `form:"quote_number" validate:"max=100"`
	QuoteDate     string `form:"quote_date" validate:"omitempty,datetime=2006-01-02"`
	ValidUntil    string `form:"valid_until" validate:"omitempty,datetime=2006-01-02"`
	Currency      string `form:"currency" validate:"required,len=3,alpha"`
	CustomerEmail string `form:"customer_email" validate:"omitempty,email"`
}

func quoteURL(id string) string {
	return adminQuotes + "/" + url.PathEscape(id)
}

func (h *QuotesHandler) maxUploadBytes() int64 {
	if h.MaxUploadBytes > 0 {
		return h.MaxUploadBytes
	}
	return quote.DefaultMaxUploadBytes
}

// List handles GET /admin/quotes.
func (h *QuotesHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := pageParam(r)
	filter := catalog.QuoteFilter{
		Search:           strings.TrimSpace(q.Get("search")),
		ExtractionStatus: q.Get("status"),
		Page:             page,
		PageSize:         defaultPageSize,
	}
	td := render.TemplateData{Title: "Quotes", Nav: navQuotes}

	result, err := h.API.Quotes(r.Context(), filter)
	if err != nil {
		if h.listFailed(w, r, &td, "quotes", err) {
			return
		}
		result = &catalog.Page[catalog.ExtractedQuote]{}
	}

	td.Data = QuotesListData{
		Quotes:     result.Items,
		Search:     filter.Search,
		Status:     filter.ExtractionStatus,
		Pagination: buildPagination(page, result.Total, defaultPageSize, adminQuotes, q),
	}
	h.render(w, r, "admin/quotes", td)
}

func (h *QuotesHandler) uploadData(msg string) QuoteUploadData {
	return QuoteUploadData{
		MaxMB:        h.maxUploadBytes() >> 20,
		SlowAfterSec: int(quote.SlowAfter.Seconds()),
		SlowMessage:  quote.MsgSlowExtracted,
		Error:        msg,
	}
}

// UploadForm handles GET /admin/quotes/upload.
func (h *QuotesHandler) UploadForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "admin/quotes_upload", render.TemplateData{Title: "Upload quote", Nav: navQuotes, Data: h.uploadData("")})
}

// Upload handles POST /admin/quotes/upload. The request blocks until the
// backend finishes extraction; the page shows an elapsed timer meanwhile.
func (h *QuotesHandler) Upload(w http.ResponseWriter, r *http.Request) {
	f, fh, err := uploadedFile(w, r, "file", h.maxUploadBytes())
	if err != nil {
		msg := capitalize(err.Error())
		if errors.Is(err, errNoFile) {
			msg = quote.ErrorMessage(quote.ErrEmptyFile)
		}
		h.uploadFailed(w, r, msg)
		return
	}
	defer func() { _ = f.Close() }()

	contentType := fh.Header.Get("Content-Type")
	res, err := quote.Upload(r.Context(), h.API, fh.Filename, contentType, fh.Size, h.maxUploadBytes(), f)
	if err != nil {
		if isUnauthorized(err) {
			expireSession(w, r, h.Renderer, h.SessionManager)
			return
		}
		h.logger().Warn("quote upload failed", "file", fh.Filename, "error", err)
		h.uploadFailed(w, r, quote.ErrorMessage(err))
		return
	}

	elapsed := quote.FormatElapsed(res.Elapsed)
	h.record(r, logging.Entry{
		Category:   store.CategoryUpload,
		Message:    "Uploaded quote",
		EntityType: "quote",
		EntityID:   res.Quote.ID,
		Details: map[string]string{
			"file":    fh.Filename,
			"elapsed": elapsed,
			"items":   strconv.Itoa(len(res.Quote.Items)),
			"resized": strconv.FormatBool(res.Resized),
		},
	})
	flashSuccess(w, r, h.Renderer, quoteURL(res.Quote.ID), "Quote extracted in "+elapsed)
}

func (h *QuotesHandler) uploadFailed(w http.ResponseWriter, r *http.Request, msg string) {
	h.renderStatus(w, r, http.StatusUnprocessableEntity, "admin/quotes_upload", render.TemplateData{
		Title: "Upload quote",
		Nav:   navQuotes,
		Data:  h.uploadData(msg),
	})
}

func (h *QuotesHandler) editData(r *http.Request, q *catalog.ExtractedQuote, form catalog.ExtractedQuoteUpdate) QuoteEditData {
	return QuoteEditData{
		Quote:      q,
		Form:       form,
		Total:      quote.Total(form.Items),
		PreviewURL: h.API.QuotePreviewURL(q.ID, session.Token(r.Context(), h.SessionManager)),
		FileURL:    quoteURL(q.ID) + "/file",
		ExportURL:  quoteURL(q.ID) + "/export",
	}
}

func updateFrom(q *catalog.ExtractedQuote) catalog.ExtractedQuoteUpdate {
	return catalog.ExtractedQuoteUpdate{
		QuoteNumber:     q.QuoteNumber,
		QuoteDate:       q.QuoteDate,
		ValidUntil:      q.ValidUntil,
		VehicleVIN:      q.VehicleVIN,
		VehicleMake:     q.VehicleMake,
		VehicleModel:    q.VehicleModel,
		CustomerName:    q.CustomerName,
		CustomerCity:    q.CustomerCity,
		CustomerCountry: q.CustomerCountry,
		CustomerPhone:   q.CustomerPhone,
		CustomerEmail:   q.CustomerEmail,
		Currency:        q.Currency,
		OriginIncoterm:  q.OriginIncoterm,
		OriginPort:      q.OriginPort,
		Items:           q.Items,
	}
}

func (h *QuotesHandler) load(w http.ResponseWriter, r *http.Request) (*catalog.ExtractedQuote, bool) {
	return requireRecord(w, r, h.Renderer, h.SessionManager, adminQuotes, "Quote", chi.URLParam(r, "id"),
		func(id string) (*catalog.ExtractedQuote, error) { return h.API.Quote(r.Context(), id) })
}

// Show handles GET /admin/quotes/{id}.
func (h *QuotesHandler) Show(w http.ResponseWriter, r *http.Request) {
	q, ok := h.load(w, r)
	if !ok {
		return
	}
	title := "Quote"
	if q.QuoteNumber != "" {
		title += " " + q.QuoteNumber
	}
	h.render(w, r, "admin/quotes_edit", render.TemplateData{Title: title, Nav: navQuotes, Data: h.editData(r, q, updateFrom(q))})
}

// Update handles POST /admin/quotes/{id}.
func (h *QuotesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !parseFormOrRedirect(w, r, h.Renderer, quoteURL(id)) {
		return
	}
	form := catalog.ExtractedQuoteUpdate{
		QuoteNumber:     formText(r, "quote_number"),
		QuoteDate:       formText(r, "quote_date"),
		ValidUntil:      formText(r, "valid_until"),
		VehicleVIN:      strings.ToUpper(formText(r, "vehicle_vin")),
		VehicleMake:     formText(r, "vehicle_make"),
		VehicleModel:    formText(r, "vehicle_model"),
		CustomerName:    formText(r, "customer_name"),
		CustomerCity:    formText(r, "customer_city"),
		CustomerCountry: formText(r, "customer_country"),
		CustomerPhone:   formText(r, "customer_phone"),
		CustomerEmail:   formText(r, "customer_email"),
		Currency:        strings.ToUpper(formText(r, "currency")),
		OriginIncoterm:  formText(r, "origin_incoterm"),
		OriginPort:      formText(r, "origin_port"),
	}

	err := validate.Struct(quoteHeaderForm{
		QuoteNumber:   form.QuoteNumber,
		QuoteDate:     form.QuoteDate,
		ValidUntil:    form.ValidUntil,
		Currency:      form.Currency,
		CustomerEmail: form.CustomerEmail,
	})
	if err == nil {
		form.Items, err = quote.ParseItems(r.PostForm)
		if err != nil {
			err = validate.Errors{"items": err.Error()}
		}
	}
	if err == nil {
		_, err = h.API.UpdateQuote(r.Context(), id, form)
	}
	if err != nil {
		if form.Items == nil {
			form.Items, _ = quote.ParseItems(r.PostForm)
		}
		q := &catalog.ExtractedQuote{ID: id, QuoteNumber: form.QuoteNumber, Currency: form.Currency}
		if existing, lerr := h.API.Quote(r.Context(), id); lerr == nil {
			q = existing
		}
		td := render.TemplateData{Title: "Quote", Nav: navQuotes, Data: h.editData(r, q, form)}
		h.formError(w, r, "admin/quotes_edit", td, "quote", err)
		return
	}

	h.record(r, logging.Entry{Category: store.CategorySystem, Message: "Updated quote", EntityType: "quote", EntityID: id, Details: map[string]string{"items": strconv.Itoa(len(form.Items))}})
	flashSuccess(w, r, h.Renderer, quoteURL(id), "Quote saved")
}

// Delete handles POST /admin/quotes/{id}/delete.
func (h *QuotesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.API.DeleteQuote(r.Context(), id); err != nil {
		h.fail(w, r, quoteURL(id), "Failed to delete quote", err)
		return
	}
	h.record(r, logging.Entry{Category: store.CategorySystem, Message: "Deleted quote", EntityType: "quote", EntityID: id})
	flashSuccess(w, r, h.Renderer, adminQuotes, "Quote deleted")
}

// File handles GET /admin/quotes/{id}/file and streams the original document.
func (h *QuotesHandler) File(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	f, err := h.API.QuoteFile(r.Context(), id)
	if err != nil {
		h.fail(w, r, quoteURL(id), "Could not download the file", err)
		return
	}
	sendFile(w, f)
}

// Export handles GET /admin/quotes/{id}/export and returns the quote as a
// spreadsheet.
func (h *QuotesHandler) Export(w http.ResponseWriter, r *http.Request) {
	q, ok := h.load(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := quote.WriteXLSX(&buf, q); err != nil {
		h.logger().Error("quote export failed", "error", err, "quote_id", q.ID)
		flashError(w, r, h.Renderer, quoteURL(q.ID), "Could not export the quote")
		return
	}
	sendFile(w, &catalog.File{
		Name:        quote.ExportFilename(q),
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Body:        io.NopCloser(&buf),
	})
}
