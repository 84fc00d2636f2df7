// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/olegiv/partsadmin/internal/catalog"
	"github.com/olegiv/partsadmin/internal/logging"
	"github.com/olegiv/partsadmin/internal/render"
	"github.com/olegiv/partsadmin/internal/store"
)

// UploadSummary is the outcome of a CSV import as shown to the user.
type UploadSummary struct {
	Resource string
	BackURL  string
	Filename string
	Created  int
	Updated  int
	Errors   []string
}

// HasErrors reports whether any row failed.
func (s UploadSummary) HasErrors() bool { return len(s.Errors) > 0 }

func summaryFromBulk(res *catalog.BulkUploadResult) UploadSummary {
	return UploadSummary{Created: res.Created, Updated: res.Updated, Errors: res.Errors}
}

func summaryFromTranslations(res *catalog.TranslationUploadResult) UploadSummary {
	s := UploadSummary{Created: res.SuccessCount}
	for _, e := range res.Errors {
		s.Errors = append(s.Errors, fmt.Sprintf("Row %d: %s", e.Row, e.Error))
	}
	if len(s.Errors) == 0 && res.ErrorCount > 0 {
		s.Errors = append(s.Errors, strconv.Itoa(res.ErrorCount)+" rows failed")
	}
	return s
}

// csvUpload handles a CSV bulk upload form. The file is forwarded as is;
// row-level failures are rendered next to the counts.
func (d Deps) csvUpload(
	w http.ResponseWriter,
	r *http.Request,
	resource, backURL, nav string,
	upload func(ctx context.Context, filename string, body io.Reader) (UploadSummary, error),
	invalidate ...string,
) {
	f, fh, err := uploadedFile(w, r, "file", maxCSVUploadBytes)
	if err != nil {
		flashError(w, r, d.Renderer, backURL, capitalize(err.Error()))
		return
	}
	defer func() { _ = f.Close() }()

	summary, err := upload(r.Context(), fh.Filename, f)
	if err != nil {
		d.fail(w, r, backURL, "Upload failed", err)
		return
	}
	d.Lookups.invalidate(r.Context(), invalidate...)

	summary.Resource = resource
	summary.BackURL = backURL
	summary.Filename = fh.Filename
	d.record(r, logging.Entry{
		Category: store.CategoryUpload,
		Message:  "Uploaded " + resource + " CSV",
		Details: map[string]string{
			"file":    fh.Filename,
			"created": strconv.Itoa(summary.Created),
			"updated": strconv.Itoa(summary.Updated),
			"errors":  strconv.Itoa(len(summary.Errors)),
		},
	})

	d.render(w, r, "admin/upload_result", render.TemplateData{
		Title: capitalize(resource) + " upload",
		Nav:   nav,
		Data:  summary,
	})
}

// downloadTemplate streams a CSV template from the backend.
func (d Deps) downloadTemplate(w http.ResponseWriter, r *http.Request, backURL string, load func(ctx context.Context) (*catalog.File, error)) {
	f, err := load(r.Context())
	if err != nil {
		d.fail(w, r, backURL, "Could not download the template", err)
		return
	}
	sendFile(w, f)
}
