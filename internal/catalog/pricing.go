// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package catalog

import (
	"context"
	"io"
	"net/url"
)

// priceTierBatch is the skip/limit window used to read the tier lists.
const priceTierBatch = 1000

// allBatches reads a skip/limit list until a short batch comes back.
func allBatches[T any](ctx context.Context, c *Client, path string, extra url.Values) ([]T, error) {
	var all []T
	for skip := 0; ; skip += priceTierBatch {
		q := skipLimitQuery(skip, priceTierBatch)
		for k, v := range extra {
			q[k] = v
		}
		var batch []T
		if err := c.get(ctx, path, q, &batch); err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < priceTierBatch {
			return all, nil
		}
	}
}

// PriceTiers lists every price tier whose name or description matches search.
func (c *Client) PriceTiers(ctx context.Context, search string) ([]PriceTier, error) {
	q := url.Values{}
	setIf(q, "search", search)
	return allBatches[PriceTier](ctx, c, "/price-tiers/", q)
}

// PriceTier fetches one price tier.
func (c *Client) PriceTier(ctx context.Context, id string) (*PriceTier, error) {
	var out PriceTier
	if err := c.get(ctx, "/price-tiers/"+esc(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreatePriceTier creates a price tier.
func (c *Client) CreatePriceTier(ctx context.Context, p PriceTierPayload) (*PriceTier, error) {
	var out PriceTier
	if err := c.post(ctx, "/price-tiers/", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdatePriceTier updates a price tier.
func (c *Client) UpdatePriceTier(ctx context.Context, id string, p PriceTierPayload) (*PriceTier, error) {
	var out PriceTier
	if err := c.put(ctx, "/price-tiers/"+esc(id), p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeletePriceTier deletes a price tier.
func (c *Client) DeletePriceTier(ctx context.Context, id string) error {
	return c.delete(ctx, "/price-tiers/"+esc(id), nil)
}

// UploadPriceTiers imports price tiers from a CSV file. Rows naming an
// existing tier update it.
func (c *Client) UploadPriceTiers(ctx context.Context, filename string, r io.Reader) (*BulkUploadResult, error) {
	var out BulkUploadResult
	if err := c.upload(ctx, "/price-tiers/bulk", filename, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PriceTiersTemplate downloads the CSV import template.
func (c *Client) PriceTiersTemplate(ctx context.Context) (*File, error) {
	return c.download(ctx, "/price-tiers/template/download", nil, "price_tiers_template.csv")
}

// PartPrices lists the tier prices of a part, keyed by its part number.
func (c *Client) PartPrices(ctx context.Context, partNumber string) ([]PartPrice, error) {
	return allBatches[PartPrice](ctx, c, "/price-tier-maps/part/"+esc(partNumber), nil)
}

// CreatePartPrice sets the price of a part in a tier. The backend refuses
// a second price for the same part and tier.
func (c *Client) CreatePartPrice(ctx context.Context, p PartPricePayload) (*PartPrice, error) {
	var out PartPrice
	if err := c.post(ctx, "/price-tier-maps/", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdatePartPrice changes the amount of an existing tier price.
func (c *Client) UpdatePartPrice(ctx context.Context, id string, price *float64) (*PartPrice, error) {
	var out PartPrice
	if err := c.put(ctx, "/price-tier-maps/"+esc(id), PartPriceUpdate{Price: price}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeletePartPrice removes a tier price.
func (c *Client) DeletePartPrice(ctx context.Context, id string) error {
	return c.delete(ctx, "/price-tier-maps/"+esc(id), nil)
}
