// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// Entity types used by the generic pending-items endpoint.
const (
	EntityPart         = "part"
	EntityTranslation  = "translation"
	EntityHSCode       = "hs_code"
	EntityManufacturer = "manufacturer"
	EntityPort         = "port"
)

// ApprovalSummary holds pending counts per entity type.
type ApprovalSummary struct {
	PendingParts         int `json:"pending_parts"`
	PendingTranslations  int `json:"pending_translations"`
	PendingHSCodes       int `json:"pending_hscodes"`
	PendingManufacturers int `json:"pending_manufacturers"`
	PendingPorts         int `json:"pending_ports"`
	PendingPartners      int `json:"pending_partners"`
	TotalPending         int `json:"total_pending"`
}

// PendingPart is a part awaiting review.
type PendingPart struct {
	ID              string    `json:"id"`
	PartID          string    `json:"part_id"`
	Designation     string    `json:"designation,omitempty"`
	ApprovalStatus  string    `json:"approval_status"`
	SubmittedAt     Timestamp `json:"submitted_at"`
	ReviewedAt      Timestamp `json:"reviewed_at"`
	RejectionReason string    `json:"rejection_reason,omitempty"`
	CreatedAt       Timestamp `json:"created_at"`
}

// PendingDetails is the entity-specific payload of a PendingItem.
// Concrete types are PendingPartDetails, PendingTranslationDetails,
// PendingHSCodeDetails, PendingManufacturer and PendingPort.
type PendingDetails interface {
	entityType() string
}

// PendingPartDetails describes a pending part.
type PendingPartDetails struct {
	PartID      string `json:"part_id"`
	Designation string `json:"designation,omitempty"`
}

// PendingTranslationDetails describes a pending translation.
type PendingTranslationDetails struct {
	PartNameEN string `json:"part_name_en"`
	PartNamePR string `json:"part_name_pr,omitempty"`
	PartNameFR string `json:"part_name_fr,omitempty"`
}

// PendingHSCodeDetails describes a pending HS code.
type PendingHSCodeDetails struct {
	HSCode        string `json:"hs_code"`
	DescriptionEN string `json:"description_en,omitempty"`
	DescriptionFR string `json:"description_fr,omitempty"`
}

// PendingManufacturer describes a pending manufacturer.
type PendingManufacturer struct {
	MfgName string `json:"mfg_name"`
	MfgType string `json:"mfg_type,omitempty"`
	Country string `json:"country,omitempty"`
	Website string `json:"website,omitempty"`
}

// PendingPort describes a pending port.
type PendingPort struct {
	PortCode string `json:"port_code"`
	PortName string `json:"port_name,omitempty"`
	Country  string `json:"country,omitempty"`
	City     string `json:"city,omitempty"`
	Type     string `json:"type,omitempty"`
}

func (PendingPartDetails) entityType() string        { return EntityPart }
func (PendingTranslationDetails) entityType() string { return EntityTranslation }
func (PendingHSCodeDetails) entityType() string      { return EntityHSCode }
func (PendingManufacturer) entityType() string       { return EntityManufacturer }
func (PendingPort) entityType() string               { return EntityPort }

// PendingItem is a generic pending-approval entry.
type PendingItem struct {
	EntityType       string
	EntityID         string
	EntityIdentifier string
	Status           string
	SubmittedAt      Timestamp
	Details          PendingDetails
}

type pendingItemWire struct {
	EntityType       string          `json:"entity_type"`
	EntityID         string          `json:"entity_id"`
	EntityIdentifier string          `json:"entity_identifier"`
	Status           string          `json:"status"`
	SubmittedAt      Timestamp       `json:"submitted_at"`
	Details          json.RawMessage `json:"details"`
}

// UnmarshalJSON decodes details into the payload type matching entity_type.
func (p *PendingItem) UnmarshalJSON(data []byte) error {
	var w pendingItemWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	var details PendingDetails
	switch w.EntityType {
	case EntityPart:
		details = &PendingPartDetails{}
	case EntityTranslation:
		details = &PendingTranslationDetails{}
	case EntityHSCode:
		details = &PendingHSCodeDetails{}
	case EntityManufacturer:
		details = &PendingManufacturer{}
	case EntityPort:
		details = &PendingPort{}
	default:
		return fmt.Errorf("unknown pending entity type %q", w.EntityType)
	}
	if len(w.Details) > 0 && string(w.Details) != "null" {
		if err := json.Unmarshal(w.Details, details); err != nil {
			return fmt.Errorf("decoding %s details: %w", w.EntityType, err)
		}
	}

	*p = PendingItem{
		EntityType:       w.EntityType,
		EntityID:         w.EntityID,
		EntityIdentifier: w.EntityIdentifier,
		Status:           w.Status,
		SubmittedAt:      w.SubmittedAt,
		Details:          details,
	}
	return nil
}

// MarshalJSON writes the item in the backend's wire shape.
func (p PendingItem) MarshalJSON() ([]byte, error) {
	details, err := json.Marshal(p.Details)
	if err != nil {
		return nil, err
	}
	return json.Marshal(pendingItemWire{
		EntityType:       p.EntityType,
		EntityID:         p.EntityID,
		EntityIdentifier: p.EntityIdentifier,
		Status:           p.Status,
		SubmittedAt:      p.SubmittedAt,
		Details:          details,
	})
}

// Manufacturer returns the manufacturer details, if this is a manufacturer item.
func (p PendingItem) Manufacturer() (*PendingManufacturer, bool) {
	d, ok := p.Details.(*PendingManufacturer)
	return d, ok
}

// Port returns the port details, if this is a port item.
func (p PendingItem) Port() (*PendingPort, bool) {
	d, ok := p.Details.(*PendingPort)
	return d, ok
}

// Translation returns the translation details, if this is a translation item.
func (p PendingItem) Translation() (*PendingTranslationDetails, bool) {
	d, ok := p.Details.(*PendingTranslationDetails)
	return d, ok
}

type reviewAction struct {
	ReviewNotes     string `json:"review_notes,omitempty"`
	RejectionReason string `json:"rejection_reason,omitempty"`
}

// ApprovalSummary returns pending counts per entity type.
func (c *Client) ApprovalSummary(ctx context.Context) (*ApprovalSummary, error) {
	var out ApprovalSummary
	if err := c.get(ctx, "/approvals/summary", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PendingParts lists parts awaiting review.
func (c *Client) PendingParts(ctx context.Context, skip, limit int) ([]PendingPart, error) {
	var out []PendingPart
	if err := c.get(ctx, "/approvals/pending/parts", skipLimitQuery(skip, limit), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PendingItems lists pending items, optionally restricted to one entity type.
func (c *Client) PendingItems(ctx context.Context, entityType string) ([]PendingItem, error) {
	q := url.Values{}
	setIf(q, "entity_type", entityType)
	var out []PendingItem
	if err := c.get(ctx, "/approvals/pending", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ApprovalLogs lists the approval history, optionally for one entity type.
func (c *Client) ApprovalLogs(ctx context.Context, entityType string, skip, limit int) ([]ApprovalLog, error) {
	q := skipLimitQuery(skip, limit)
	setIf(q, "entity_type", entityType)
	var out []ApprovalLog
	if err := c.get(ctx, "/approvals/logs", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) review(ctx context.Context, collection, id, verb string, action reviewAction) error {
	return c.post(ctx, "/approvals/"+collection+"/"+esc(id)+"/"+verb, action, nil)
}

// ApprovePart approves a pending part.
func (c *Client) ApprovePart(ctx context.Context, id, notes string) error {
	return c.review(ctx, "parts", id, "approve", reviewAction{ReviewNotes: notes})
}

// RejectPart rejects a pending part.
func (c *Client) RejectPart(ctx context.Context, id, reason string) error {
	return c.review(ctx, "parts", id, "reject", reviewAction{RejectionReason: reason})
}

// ApproveTranslation approves a pending translation.
func (c *Client) ApproveTranslation(ctx context.Context, id, notes string) error {
	return c.review(ctx, "translations", id, "approve", reviewAction{ReviewNotes: notes})
}

// RejectTranslation rejects a pending translation.
func (c *Client) RejectTranslation(ctx context.Context, id, reason string) error {
	return c.review(ctx, "translations", id, "reject", reviewAction{RejectionReason: reason})
}

// ApprovePort approves a pending port.
func (c *Client) ApprovePort(ctx context.Context, id, notes string) error {
	return c.review(ctx, "ports", id, "approve", reviewAction{ReviewNotes: notes})
}

// RejectPort rejects a pending port.
func (c *Client) RejectPort(ctx context.Context, id, reason string) error {
	return c.review(ctx, "ports", id, "reject", reviewAction{RejectionReason: reason})
}
