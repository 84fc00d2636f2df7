// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package catalog

import (
	"context"
	"io"
)

// allTranslationsPageSize is the page size AllTranslations requests.
const allTranslationsPageSize = 1000

// Translations lists translations.
func (c *Client) Translations(ctx context.Context, f TranslationFilter) (*Page[Translation], error) {
	q := pageQuery(f.Page, f.PageSize)
	setIf(q, "search", f.Search)
	setIf(q, "category_en", f.CategoryEN)
	setIf(q, "drive_side_specific", f.DriveSideSpecific)

	var out Page[Translation]
	if err := c.get(ctx, "/translations/", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AllTranslations fetches every translation matching f, page by page.
// f.Page and f.PageSize are ignored.
func (c *Client) AllTranslations(ctx context.Context, f TranslationFilter) ([]Translation, error) {
	return AllPages(ctx, allTranslationsPageSize, func(ctx context.Context, page, size int) (*Page[Translation], error) {
		f.Page, f.PageSize = page, size
		return c.Translations(ctx, f)
	})
}

// Translation fetches one translation.
func (c *Client) Translation(ctx context.Context, id string) (*Translation, error) {
	var out Translation
	if err := c.get(ctx, "/translations/"+esc(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateTranslation creates a translation. New translations start pending approval.
func (c *Client) CreateTranslation(ctx context.Context, p TranslationPayload) (*Translation, error) {
	var out Translation
	if err := c.post(ctx, "/translations/", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateTranslation replaces the fields of a translation.
func (c *Client) UpdateTranslation(ctx context.Context, id string, p TranslationPayload) (*Translation, error) {
	var out Translation
	if err := c.put(ctx, "/translations/"+esc(id), p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteTranslation deletes a translation.
func (c *Client) DeleteTranslation(ctx context.Context, id string) error {
	return c.delete(ctx, "/translations/"+esc(id), nil)
}

// UploadTranslations imports translations from a CSV file.
func (c *Client) UploadTranslations(ctx context.Context, filename string, r io.Reader) (*TranslationUploadResult, error) {
	var out TranslationUploadResult
	if err := c.upload(ctx, "/translations/bulk-upload", filename, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TranslationsTemplate downloads the CSV import template.
func (c *Client) TranslationsTemplate(ctx context.Context) (*File, error) {
	return c.download(ctx, "/translations/template/download", nil, "translations_template.csv")
}
