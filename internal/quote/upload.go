// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package quote handles supplier quote documents: upload checks before
// extraction, and the item arithmetic of the correction form.
package quote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/olegiv/partsadmin/internal/catalog"
)

// DefaultMaxUploadBytes is the maximum document size.
const DefaultMaxUploadBytes int64 = 50 << 20

// SlowAfter is how long an extraction may run before the screen tells the
// user it is still working.
const SlowAfter = 60 * time.Second

// Upload failure messages shown to the user.
const (
	MsgTimeout       = "Upload timed out. The file may be too large or the extraction service is slow. Please try again."
	MsgUploadFailed  = "Failed to upload and extract quote"
	MsgInvalidType   = "Only PDF, JPEG, and PNG files are allowed"
	MsgTooLarge      = "File size must be less than 50MB"
	MsgSlowExtracted = "Still processing... This may take up to 120 seconds for complex quotes."
)

var (
	// ErrInvalidType is returned for documents that are not PDF, JPEG or PNG.
	ErrInvalidType = errors.New(MsgInvalidType)
	// ErrTooLarge is returned for documents over the size limit.
	ErrTooLarge = errors.New(MsgTooLarge)
	// ErrEmptyFile is returned when no file was chosen.
	ErrEmptyFile = errors.New("no file selected")
)

var allowedTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
	"image/jpg":       true,
}

// AllowedType reports whether contentType is an accepted document type.
func AllowedType(contentType string) bool {
	return allowedTypes[contentType]
}

// Validate checks a document before it is sent for extraction.
func Validate(contentType string, size, maxBytes int64) error {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	switch {
	case size <= 0:
		return ErrEmptyFile
	case !AllowedType(contentType):
		return ErrInvalidType
	case size > maxBytes:
		return ErrTooLarge
	}
	return nil
}

// API is the part of the catalog client uploads need.
type API interface {
	UploadQuote(ctx context.Context, filename string, r io.Reader) (*catalog.ExtractedQuote, error)
}

// Result is a finished extraction.
type Result struct {
	Quote   *catalog.ExtractedQuote
	Elapsed time.Duration
	Resized bool // the photo was rotated or downscaled before sending
}

// Upload validates and sends a document, timing the extraction. Photos
// are prepared with PrepareDocument first; a photo that cannot be decoded
// is sent unchanged and left for the extraction service to judge.
func Upload(ctx context.Context, api API, filename, contentType string, size, maxBytes int64, r io.Reader) (*Result, error) {
	if err := Validate(contentType, size, maxBytes); err != nil {
		return nil, err
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}
	if int64(len(data)) > maxBytes {
		return nil, ErrTooLarge
	}

	doc, err := PrepareDocument(data, contentType)
	if err != nil {
		doc = Prepared{Data: data, ContentType: contentType}
	}

	start := time.Now()
	q, err := api.UploadQuote(ctx, filename, doc.Reader())
	if err != nil {
		return nil, fmt.Errorf("uploading %s: %w", filename, err)
	}
	return &Result{Quote: q, Elapsed: time.Since(start), Resized: doc.Changed}, nil
}

// ErrorMessage converts an upload failure into the text shown to the user.
func ErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrInvalidType), errors.Is(err, ErrTooLarge), errors.Is(err, ErrEmptyFile):
		return err.Error()
	case catalog.IsTimeout(err):
		return MsgTimeout
	}
	return catalog.Detail(err, MsgUploadFailed)
}

// FormatElapsed renders d as m:ss.
func FormatElapsed(d time.Duration) string {
	secs := int(d / time.Second)
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
