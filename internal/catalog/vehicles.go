// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package catalog

import (
	"context"
	"io"
)

// Vehicles lists vehicles.
func (c *Client) Vehicles(ctx context.Context, search string, skip, limit int) (*Page[Vehicle], error) {
	if limit <= 0 {
		limit = 100
	}
	q := skipLimitQuery(skip, limit)
	q.Set("search", search)
	var out Page[Vehicle]
	if err := c.get(ctx, "/vehicles/", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Vehicle fetches one vehicle.
func (c *Client) Vehicle(ctx context.Context, id string) (*Vehicle, error) {
	var out Vehicle
	if err := c.get(ctx, "/vehicles/"+esc(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateVehicle creates a vehicle.
func (c *Client) CreateVehicle(ctx context.Context, p VehiclePayload) (*Vehicle, error) {
	var out Vehicle
	if err := c.post(ctx, "/vehicles/", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateVehicle updates a vehicle.
func (c *Client) UpdateVehicle(ctx context.Context, id string, p VehiclePayload) (*Vehicle, error) {
	var out Vehicle
	if err := c.put(ctx, "/vehicles/"+esc(id), p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteVehicle deletes a vehicle.
func (c *Client) DeleteVehicle(ctx context.Context, id string) error {
	return c.delete(ctx, "/vehicles/"+esc(id), nil)
}

// UploadVehicles imports vehicles from a CSV file.
func (c *Client) UploadVehicles(ctx context.Context, filename string, r io.Reader) (*BulkUploadResult, error) {
	var out BulkUploadResult
	if err := c.upload(ctx, "/vehicles/bulk-upload", filename, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VehiclesTemplate downloads the CSV import template.
func (c *Client) VehiclesTemplate(ctx context.Context) (*File, error) {
	return c.download(ctx, "/vehicles/download/template", nil, "vehicles_template.csv")
}

// VehicleEquivalences lists VIN-prefix equivalences of a vehicle.
func (c *Client) VehicleEquivalences(ctx context.Context, vehicleID string) ([]VehicleEquivalence, error) {
	var out []VehicleEquivalence
	if err := c.get(ctx, "/vehicles/"+esc(vehicleID)+"/equivalences", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateVehicleEquivalence adds a VIN-prefix equivalence.
func (c *Client) CreateVehicleEquivalence(ctx context.Context, vehicleID string, p VehicleEquivalencePayload) (*VehicleEquivalence, error) {
	var out VehicleEquivalence
	if err := c.post(ctx, "/vehicles/"+esc(vehicleID)+"/equivalences", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteVehicleEquivalence removes a VIN-prefix equivalence.
func (c *Client) DeleteVehicleEquivalence(ctx context.Context, vehicleID, equivalenceID string) error {
	return c.delete(ctx, "/vehicles/"+esc(vehicleID)+"/equivalences/"+esc(equivalenceID), nil)
}

// CompatibleParts lists the parts that fit a vehicle.
func (c *Client) CompatibleParts(ctx context.Context, vehicleID string) ([]VehiclePartCompatibility, error) {
	var out []VehiclePartCompatibility
	if err := c.get(ctx, "/vehicles/"+esc(vehicleID)+"/compatible-parts", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateCompatiblePart records that a part fits a vehicle.
func (c *Client) CreateCompatiblePart(ctx context.Context, vehicleID string, p VehiclePartCompatibilityPayload) (*VehiclePartCompatibility, error) {
	p.VehicleID = vehicleID
	var out VehiclePartCompatibility
	if err := c.post(ctx, "/vehicles/"+esc(vehicleID)+"/compatible-parts", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteCompatiblePart removes a vehicle-part compatibility.
func (c *Client) DeleteCompatiblePart(ctx context.Context, vehicleID, partID string) error {
	return c.delete(ctx, "/vehicles/"+esc(vehicleID)+"/compatible-parts/"+esc(partID), nil)
}
