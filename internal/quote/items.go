// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package quote

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/olegiv/partsadmin/internal/catalog"
)

var hundred = decimal.NewFromInt(100)

// LineTotal is quantity * unit price less a percentage discount, rounded
// to cents.
func LineTotal(quantity, unitPrice, discountPct float64) float64 {
	gross := decimal.NewFromFloat(quantity).Mul(decimal.NewFromFloat(unitPrice))
	factor := decimal.NewFromInt(1).Sub(decimal.NewFromFloat(discountPct).Div(hundred))
	return gross.Mul(factor).Round(2).InexactFloat64()
}

// Total sums the line totals of items.
func Total(items []catalog.ExtractedQuoteItem) float64 {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(decimal.NewFromFloat(it.TotalPrice))
	}
	return sum.Round(2).InexactFloat64()
}

// ParseItems reads the item rows of the correction form. Each column is a
// repeated field (item_part_name, item_quantity, item_unit_price,
// item_tax_code, item_discount); rows without a part name are dropped and
// totals are recomputed.
func ParseItems(form url.Values) ([]catalog.ExtractedQuoteItem, error) {
	names := form["item_part_name"]
	items := make([]catalog.ExtractedQuoteItem, 0, len(names))

	for i, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		qty, err := number(form, "item_quantity", i)
		if err != nil {
			return nil, err
		}
		price, err := number(form, "item_unit_price", i)
		if err != nil {
			return nil, err
		}
		discount, err := number(form, "item_discount", i)
		if err != nil {
			return nil, err
		}

		item := catalog.ExtractedQuoteItem{
			ID:         column(form, "item_id", i),
			PartName:   name,
			Quantity:   qty,
			UnitPrice:  price,
			TaxCode:    column(form, "item_tax_code", i),
			TotalPrice: LineTotal(qty, price, discount),
			Position:   len(items) + 1,
		}
		if discount != 0 {
			item.Discount = &discount
		}
		items = append(items, item)
	}
	return items, nil
}

func column(form url.Values, key string, i int) string {
	vals := form[key]
	if i >= len(vals) {
		return ""
	}
	return strings.TrimSpace(vals[i])
}

func number(form url.Values, key string, i int) (float64, error) {
	raw := column(form, key, i)
	if raw == "" {
		return 0, nil
	}
	v, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", "."))
	if err != nil {
		return 0, fmt.Errorf("row %d: %s %q is not a number", i+1, strings.TrimPrefix(key, "item_"), raw)
	}
	return v.InexactFloat64(), nil
}
