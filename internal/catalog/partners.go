// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package catalog

import (
	"context"
	"io"
)

// Partners lists partners.
func (c *Client) Partners(ctx context.Context, f PartnerFilter) ([]Partner, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 10
	}
	q := skipLimitQuery(f.Skip, limit)
	setIf(q, "search", f.Search)
	setIf(q, "type", f.Type)

	var out []Partner
	if err := c.get(ctx, "/partners/", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Partner fetches one partner with its contacts.
func (c *Client) Partner(ctx context.Context, id string) (*Partner, error) {
	var out Partner
	if err := c.get(ctx, "/partners/"+esc(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreatePartner creates a partner.
func (c *Client) CreatePartner(ctx context.Context, p PartnerPayload) (*Partner, error) {
	var out Partner
	if err := c.post(ctx, "/partners/", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdatePartner updates a partner.
func (c *Client) UpdatePartner(ctx context.Context, id string, p PartnerPayload) (*Partner, error) {
	var out Partner
	if err := c.put(ctx, "/partners/"+esc(id), p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeletePartner deletes a partner.
func (c *Client) DeletePartner(ctx context.Context, id string) error {
	return c.delete(ctx, "/partners/"+esc(id), nil)
}

// Contacts lists the contacts of a partner.
func (c *Client) Contacts(ctx context.Context, partnerID string) ([]Contact, error) {
	var out []Contact
	if err := c.get(ctx, "/partners/"+esc(partnerID)+"/contacts", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateContact adds a contact to a partner.
func (c *Client) CreateContact(ctx context.Context, partnerID string, p ContactPayload) (*Contact, error) {
	p.PartnerID = partnerID
	var out Contact
	if err := c.post(ctx, "/partners/"+esc(partnerID)+"/contacts", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateContact updates a contact.
func (c *Client) UpdateContact(ctx context.Context, contactID string, p ContactPayload) (*Contact, error) {
	p.PartnerID = ""
	var out Contact
	if err := c.put(ctx, "/partners/contacts/"+esc(contactID), p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteContact deletes a contact.
func (c *Client) DeleteContact(ctx context.Context, contactID string) error {
	return c.delete(ctx, "/partners/contacts/"+esc(contactID), nil)
}

// UploadPartners imports partners from a CSV file.
func (c *Client) UploadPartners(ctx context.Context, filename string, r io.Reader) (*BulkUploadResult, error) {
	var out BulkUploadResult
	if err := c.upload(ctx, "/partners/bulk", filename, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PartnersTemplate downloads the CSV import template.
func (c *Client) PartnersTemplate(ctx context.Context) (*File, error) {
	return c.download(ctx, "/partners/template/download", nil, "partners_template.csv")
}
