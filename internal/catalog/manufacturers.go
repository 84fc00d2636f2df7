// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package catalog

import (
	"context"
	"net/http"
	"net/url"
)

// Manufacturers lists manufacturers.
func (c *Client) Manufacturers(ctx context.Context, skip, limit int) ([]Manufacturer, error) {
	if limit <= 0 {
		limit = 100
	}
	var out []Manufacturer
	if err := c.get(ctx, "/manufacturers/", skipLimitQuery(skip, limit), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Manufacturer fetches one manufacturer.
func (c *Client) Manufacturer(ctx context.Context, id string) (*Manufacturer, error) {
	var out Manufacturer
	if err := c.get(ctx, "/manufacturers/"+esc(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateManufacturer creates a manufacturer.
func (c *Client) CreateManufacturer(ctx context.Context, p ManufacturerPayload) (*Manufacturer, error) {
	var out Manufacturer
	if err := c.post(ctx, "/manufacturers/", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateManufacturer updates a manufacturer.
func (c *Client) UpdateManufacturer(ctx context.Context, id string, p ManufacturerPayload) (*Manufacturer, error) {
	var out Manufacturer
	if err := c.put(ctx, "/manufacturers/"+esc(id), p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteManufacturer deletes a manufacturer.
func (c *Client) DeleteManufacturer(ctx context.Context, id string) error {
	return c.delete(ctx, "/manufacturers/"+esc(id), nil)
}

// ApproveManufacturer approves a pending manufacturer.
func (c *Client) ApproveManufacturer(ctx context.Context, id string) error {
	return c.post(ctx, "/manufacturers/"+esc(id)+"/approve", nil, nil)
}

// RejectManufacturer rejects a pending manufacturer. The backend takes
// the reason as a query parameter.
func (c *Client) RejectManufacturer(ctx context.Context, id, reason string) error {
	q := url.Values{}
	q.Set("reason", reason)
	return c.do(ctx, http.MethodPost, "/manufacturers/"+esc(id)+"/reject", q, nil, nil)
}
