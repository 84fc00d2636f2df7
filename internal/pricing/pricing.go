// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package pricing prepares the tier prices of a part for display and
// checks the amounts reviewers enter.
package pricing

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/olegiv/partsadmin/internal/catalog"
)

var (
	// ErrPriceRequired is returned when no amount was entered.
	ErrPriceRequired = errors.New("enter a price")
	// ErrPriceInvalid is returned for amounts that are not numbers.
	ErrPriceInvalid = errors.New("price must be a number")
	// ErrPriceNegative is returned for amounts below zero.
	ErrPriceNegative = errors.New("price cannot be negative")
)

// ParsePrice reads an amount typed by a reviewer. A decimal comma is
// accepted and the result is rounded to cents.
func ParsePrice(raw string) (float64, error) {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	raw = strings.TrimPrefix(raw, "$")
	if raw == "" {
		return 0, ErrPriceRequired
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, ErrPriceInvalid
	}
	if d.IsNegative() {
		return 0, ErrPriceNegative
	}
	return d.Round(2).InexactFloat64(), nil
}

// FormatPrice renders an amount with two decimals, or "-" when unset.
func FormatPrice(p *float64) string {
	if p == nil {
		return "-"
	}
	return "$" + decimal.NewFromFloat(*p).StringFixed(2)
}

// AvailableTiers returns the tiers the part has no price in yet, in the
// order given.
func AvailableTiers(tiers []catalog.PriceTier, prices []catalog.PartPrice) []catalog.PriceTier {
	priced := make(map[string]bool, len(prices))
	for _, p := range prices {
		priced[p.TierID] = true
	}
	out := make([]catalog.PriceTier, 0, len(tiers))
	for _, t := range tiers {
		if !priced[t.ID] {
			out = append(out, t)
		}
	}
	return out
}

// Row is one tier price as listed on the part page.
type Row struct {
	catalog.PartPrice
	Description string
	Amount      string
}

// Rows joins prices with their tiers. A price whose tier is unknown is
// still listed, under "Unknown tier".
func Rows(prices []catalog.PartPrice, tiers []catalog.PriceTier) []Row {
	byID := make(map[string]catalog.PriceTier, len(tiers))
	for _, t := range tiers {
		byID[t.ID] = t
	}
	rows := make([]Row, 0, len(prices))
	for _, p := range prices {
		row := Row{PartPrice: p, Amount: FormatPrice(p.Price)}
		if t, ok := byID[p.TierID]; ok {
			row.Description = t.Description
			if row.TierName == "" {
				row.TierName = t.TierName
			}
			if row.TierKind == "" {
				row.TierKind = t.TierKind
			}
		}
		if row.TierName == "" {
			row.TierName = "Unknown tier"
		}
		rows = append(rows, row)
	}
	return rows
}
