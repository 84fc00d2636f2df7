// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package catalog

import (
	"context"
	"io"
)

// HSCodes lists HS codes. The backend returns only approved codes unless
// Status names another approval status.
func (c *Client) HSCodes(ctx context.Context, f HSCodeFilter) (*Page[HSCode], error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	q := skipLimitQuery(f.Skip, limit)
	q.Set("search", f.Search)
	setIf(q, "approval_status", f.Status)

	var out Page[HSCode]
	if err := c.get(ctx, "/hs-codes/", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// HSCode fetches one HS code with its tariffs.
func (c *Client) HSCode(ctx context.Context, code string) (*HSCodeWithTariffs, error) {
	var out HSCodeWithTariffs
	if err := c.get(ctx, "/hs-codes/"+esc(code), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateHSCode creates an HS code.
func (c *Client) CreateHSCode(ctx context.Context, p HSCodePayload) (*HSCode, error) {
	var out HSCode
	if err := c.post(ctx, "/hs-codes/", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateHSCode updates the descriptions of an HS code.
func (c *Client) UpdateHSCode(ctx context.Context, code string, p HSCodePayload) (*HSCode, error) {
	p.HSCode = ""
	var out HSCode
	if err := c.put(ctx, "/hs-codes/"+esc(code), p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteHSCode deletes an HS code.
func (c *Client) DeleteHSCode(ctx context.Context, code string) error {
	return c.delete(ctx, "/hs-codes/"+esc(code), nil)
}

// ApproveHSCode approves a pending HS code.
func (c *Client) ApproveHSCode(ctx context.Context, code, notes string) error {
	return c.post(ctx, "/hs-codes/"+esc(code)+"/approve", reviewAction{ReviewNotes: notes}, nil)
}

// RejectHSCode rejects a pending HS code.
func (c *Client) RejectHSCode(ctx context.Context, code, reason string) error {
	return c.post(ctx, "/hs-codes/"+esc(code)+"/reject", reviewAction{RejectionReason: reason}, nil)
}

// Tariffs lists the tariffs of an HS code.
func (c *Client) Tariffs(ctx context.Context, code string) ([]HSCodeTariff, error) {
	var out []HSCodeTariff
	if err := c.get(ctx, "/hs-codes/"+esc(code)+"/tariffs", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type tariffPayload struct {
	HSCode      string   `json:"hs_code,omitempty"`
	CountryName string   `json:"country_name,omitempty"`
	TariffRate  *float64 `json:"tariff_rate,omitempty"`
}

// CreateTariff adds a country tariff to an HS code.
func (c *Client) CreateTariff(ctx context.Context, code, country string, rate *float64) (*HSCodeTariff, error) {
	var out HSCodeTariff
	body := tariffPayload{HSCode: code, CountryName: country, TariffRate: rate}
	if err := c.post(ctx, "/hs-codes/"+esc(code)+"/tariffs", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateTariff changes a country tariff rate.
func (c *Client) UpdateTariff(ctx context.Context, code, country string, rate *float64) (*HSCodeTariff, error) {
	var out HSCodeTariff
	body := tariffPayload{TariffRate: rate}
	if err := c.put(ctx, "/hs-codes/"+esc(code)+"/tariffs/"+esc(country), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteTariff removes a country tariff.
func (c *Client) DeleteTariff(ctx context.Context, code, country string) error {
	return c.delete(ctx, "/hs-codes/"+esc(code)+"/tariffs/"+esc(country), nil)
}

// UploadHSCodes imports HS codes from a CSV file.
func (c *Client) UploadHSCodes(ctx context.Context, filename string, r io.Reader) (*BulkUploadResult, error) {
	var out BulkUploadResult
	if err := c.upload(ctx, "/hs-codes/bulk-upload", filename, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// HSCodesTemplate downloads the CSV import template.
func (c *Client) HSCodesTemplate(ctx context.Context) (*File, error) {
	return c.download(ctx, "/hs-codes/download/template", nil, "hs_codes_template.csv")
}
