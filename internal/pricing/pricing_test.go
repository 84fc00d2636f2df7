// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/partsadmin/internal/catalog"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr error
	}{
		{"12.5", 12.5, nil},
		{" 12,499 ", 12.5, nil},
		{"$7", 7, nil},
		{"0", 0, nil},
		{"", 0, ErrPriceRequired},
		{"   ", 0, ErrPriceRequired},
		{"abc", 0, ErrPriceInvalid},
		{"-1", 0, ErrPriceNegative},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePrice(tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestFormatPrice(t *testing.T) {
	v := 12.5
	assert.Equal(t, "$12.50", FormatPrice(&v))
	assert.Equal(t, "-", FormatPrice(nil))
}

func tiersFixture() []catalog.PriceTier {
	return []catalog.PriceTier{
		{ID: "tier-w", TierName: "Wholesale", Description: "Garages", TierKind: "wholesale"},
		{ID: "tier-r", TierName: "Retail"},
		{ID: "tier-e", TierName: "Export"},
	}
}

func TestAvailableTiers(t *testing.T) {
	prices := []catalog.PartPrice{{ID: "pp-1", TierID: "tier-r"}}

	got := AvailableTiers(tiersFixture(), prices)

	require.Len(t, got, 2)
	assert.Equal(t, "tier-w", got[0].ID)
	assert.Equal(t, "tier-e", got[1].ID)
	assert.Len(t, AvailableTiers(tiersFixture(), nil), 3)
}

func TestRows(t *testing.T) {
	price := 40.0
	prices := []catalog.PartPrice{
		{ID: "pp-1", TierID: "tier-w", Price: &price},
		{ID: "pp-2", TierID: "tier-r", TierName: "Retail (EU)"},
		{ID: "pp-3", TierID: "tier-gone"},
	}

	rows := Rows(prices, tiersFixture())

	require.Len(t, rows, 3)
	assert.Equal(t, "Wholesale", rows[0].TierName)
	assert.Equal(t, "wholesale", rows[0].TierKind)
	assert.Equal(t, "Garages", rows[0].Description)
	assert.Equal(t, "$40.00", rows[0].Amount)
	assert.Equal(t, "Retail (EU)", rows[1].TierName)
	assert.Equal(t, "-", rows[1].Amount)
	assert.Equal(t, "Unknown tier", rows[2].TierName)
}
