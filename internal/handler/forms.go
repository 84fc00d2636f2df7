// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"fmt"
	"html"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"

	"github.com/olegiv/partsadmin/internal/catalog"
)

// maxCSVUploadBytes bounds reference data CSV uploads.
const maxCSVUploadBytes int64 = 10 << 20

// strictPolicy strips all markup from free text sent to the backend.
var strictPolicy = bluemonday.StrictPolicy()

// cleanText removes markup from s and trims it. Entities the policy
// escapes are decoded again so that plain text round-trips unchanged.
func cleanText(s string) string {
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(s)))
}

// formText returns the trimmed form value of key.
func formText(r *http.Request, key string) string {
	return strings.TrimSpace(r.FormValue(key))
}

// optionalFloat parses an optional decimal field. Empty means nil.
func optionalFloat(r *http.Request, key string) (*float64, error) {
	v := formText(r, key)
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", "."), 64)
	if err != nil {
		return nil, fmt.Errorf("%s must be a number", key)
	}
	return &f, nil
}

// optionalInt parses an optional integer field. Empty means nil.
func optionalInt(r *http.Request, key string) (*int, error) {
	v := formText(r, key)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, fmt.Errorf("%s must be a whole number", key)
	}
	return &n, nil
}

// errNoFile is returned when a multipart upload has no file.
var errNoFile = errors.New("please choose a file to upload")

var errTariffRange = errors.New("tariff rate must be between 0 and 100")

// uploadedFile returns the file posted in field. The caller closes it.
func uploadedFile(w http.ResponseWriter, r *http.Request, field string, maxBytes int64) (multipart.File, *multipart.FileHeader, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+1<<20)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, nil, fmt.Errorf("file is larger than %d MB", maxBytes>>20)
		}
		return nil, nil, errNoFile
	}
	f, fh, err := r.FormFile(field)
	if err != nil {
		return nil, nil, errNoFile
	}
	return f, fh, nil
}

// sendFile streams a backend download to the browser as an attachment.
// It closes the body.
func sendFile(w http.ResponseWriter, f *catalog.File) {
	defer func() { _ = f.Body.Close() }()

	contentType := f.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", f.Name))
	w.Header().Set("Cache-Control", "no-store")
	_, _ = io.Copy(w, f.Body)
}

// capitalize upper-cases the first letter of s.
func capitalize(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if n == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[n:]
}
