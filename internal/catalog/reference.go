// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package catalog

import (
	"context"
	"io"
	"net/url"
)

// Ports lists ports, optionally filtered by a search term.
func (c *Client) Ports(ctx context.Context, search string) ([]Port, error) {
	q := url.Values{}
	setIf(q, "search", search)
	var out []Port
	if err := c.get(ctx, "/ports/", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Port fetches one port.
func (c *Client) Port(ctx context.Context, id string) (*Port, error) {
	var out Port
	if err := c.get(ctx, "/ports/"+esc(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreatePort creates a port.
func (c *Client) CreatePort(ctx context.Context, p PortPayload) (*Port, error) {
	var out Port
	if err := c.post(ctx, "/ports/", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdatePort updates a port.
func (c *Client) UpdatePort(ctx context.Context, id string, p PortPayload) (*Port, error) {
	var out Port
	if err := c.put(ctx, "/ports/"+esc(id), p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeletePort deletes a port.
func (c *Client) DeletePort(ctx context.Context, id string) error {
	return c.delete(ctx, "/ports/"+esc(id), nil)
}

// UploadPorts imports ports from a CSV file.
func (c *Client) UploadPorts(ctx context.Context, filename string, r io.Reader) (*BulkUploadResult, error) {
	var out BulkUploadResult
	if err := c.upload(ctx, "/ports/bulk", filename, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PortsTemplate downloads the CSV import template.
func (c *Client) PortsTemplate(ctx context.Context) (*File, error) {
	return c.download(ctx, "/ports/template/download", nil, "ports_template.csv")
}

// Countries lists reference countries.
func (c *Client) Countries(ctx context.Context) ([]Country, error) {
	var out []Country
	if err := c.get(ctx, "/countries/", skipLimitQuery(0, 300), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Country fetches one country by ISO code.
func (c *Client) Country(ctx context.Context, code string) (*Country, error) {
	var out Country
	if err := c.get(ctx, "/countries/"+esc(code), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Categories lists part categories.
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	var out []Category
	if err := c.get(ctx, "/categories/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateCategory creates a category.
func (c *Client) CreateCategory(ctx context.Context, p CategoryPayload) (*Category, error) {
	var out Category
	if err := c.post(ctx, "/categories/", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateCategory updates a category.
func (c *Client) UpdateCategory(ctx context.Context, id string, p CategoryPayload) (*Category, error) {
	var out Category
	if err := c.put(ctx, "/categories/"+esc(id), p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteCategory deletes a category.
func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	return c.delete(ctx, "/categories/"+esc(id), nil)
}

// DashboardStats returns the headline counts.
func (c *Client) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	var out DashboardStats
	if err := c.get(ctx, "/dashboard/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
