// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package catalog

import (
	"context"
)

// Parts lists parts.
func (c *Client) Parts(ctx context.Context, f PartFilter) (*Page[Part], error) {
	q := pageQuery(f.Page, f.PageSize)
	setIf(q, "search", f.Search)
	setIf(q, "mfg_id", f.MfgID)
	setIf(q, "part_name_en", f.PartNameEN)
	setIf(q, "drive_side", f.DriveSide)

	var out Page[Part]
	if err := c.get(ctx, "/parts/", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Part fetches one part by its record ID.
func (c *Client) Part(ctx context.Context, id string) (*Part, error) {
	var out Part
	if err := c.get(ctx, "/parts/"+esc(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreatePart creates a part.
func (c *Client) CreatePart(ctx context.Context, p PartPayload) (*Part, error) {
	var out Part
	if err := c.post(ctx, "/parts/", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdatePart updates a part.
func (c *Client) UpdatePart(ctx context.Context, id string, p PartPayload) (*Part, error) {
	var out Part
	if err := c.put(ctx, "/parts/"+esc(id), p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeletePart deletes a part.
func (c *Client) DeletePart(ctx context.Context, id string) (*PartDeleteResult, error) {
	var out PartDeleteResult
	if err := c.delete(ctx, "/parts/"+esc(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Equivalences lists the parts equivalent to a part.
func (c *Client) Equivalences(ctx context.Context, partID string) ([]Equivalence, error) {
	var out []Equivalence
	if err := c.get(ctx, "/parts/"+esc(partID)+"/equivalences", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateEquivalence links two parts.
func (c *Client) CreateEquivalence(ctx context.Context, partID, equivalentPartID string) error {
	body := map[string]string{"part_id": partID, "equivalent_part_id": equivalentPartID}
	return c.post(ctx, "/parts/"+esc(partID)+"/equivalences", body, nil)
}

// DeleteEquivalence removes a link between two parts.
func (c *Client) DeleteEquivalence(ctx context.Context, partID, equivalentPartID string) error {
	return c.delete(ctx, "/parts/"+esc(partID)+"/equivalences/"+esc(equivalentPartID), nil)
}

// BulkCreateEquivalences links a part to every listed part identifier.
// Unknown identifiers are created by the backend as pending parts.
func (c *Client) BulkCreateEquivalences(ctx context.Context, partID string, partIDs []string) (*BulkEquivalenceResult, error) {
	body := map[string][]string{"part_ids": partIDs}
	var out BulkEquivalenceResult
	if err := c.post(ctx, "/parts/"+esc(partID)+"/equivalences/bulk", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DimensionSuggestions returns dimension defaults for a part name.
// A 404 means no suggestions and is not an error.
func (c *Client) DimensionSuggestions(ctx context.Context, partNameEN string) (*DimensionSuggestions, error) {
	var out DimensionSuggestions
	err := c.get(ctx, "/parts/suggestions/"+esc(partNameEN), nil, &out)
	if IsNotFound(err) {
		return &DimensionSuggestions{}, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Positions lists part positions.
func (c *Client) Positions(ctx context.Context) ([]Position, error) {
	var out []Position
	if err := c.get(ctx, "/positions/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
