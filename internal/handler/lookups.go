// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"

	"github.com/olegiv/partsadmin/internal/cache"
	"github.com/olegiv/partsadmin/internal/catalog"
)

// lookupLimit bounds the reference lists loaded into select boxes.
const lookupLimit = 1000

// Lookups loads the reference lists offered by select boxes. Lists go
// through the shared cache; keys match the ones the approval tabs use so
// both see the same entries and the same invalidations.
type Lookups struct {
	api   *catalog.Client
	cache *cache.Manager
}

// NewLookups creates the lookup loader. cm may be nil to disable caching.
func NewLookups(api *catalog.Client, cm *cache.Manager) *Lookups {
	return &Lookups{api: api, cache: cm}
}

func cached[T any](ctx context.Context, m *cache.Manager, entity, filter string, load func(context.Context) (T, error)) (T, error) {
	if m == nil {
		return load(ctx)
	}
	return cache.Fetch(ctx, m, entity, filter, load)
}

// invalidate drops cached lists of entity after a mutation.
func (l *Lookups) invalidate(ctx context.Context, entities ...string) {
	if l == nil || l.cache == nil {
		return
	}
	for _, e := range entities {
		l.cache.InvalidateEntity(ctx, e)
	}
}

// Translations returns every translation, however many pages that takes.
// Merge detection and the duplicate name check search this list.
func (l *Lookups) Translations(ctx context.Context) ([]catalog.Translation, error) {
	return cached(ctx, l.cache, cache.EntityTranslations, "all", func(ctx context.Context) ([]catalog.Translation, error) {
		return l.api.AllTranslations(ctx, catalog.TranslationFilter{})
	})
}

// Categories returns every category.
func (l *Lookups) Categories(ctx context.Context) ([]catalog.Category, error) {
	return cached(ctx, l.cache, cache.EntityCategories, "all", l.api.Categories)
}

// HSCodes returns the approved HS codes.
func (l *Lookups) HSCodes(ctx context.Context) ([]catalog.HSCode, error) {
	return cached(ctx, l.cache, cache.EntityHSCodes, "approved", func(ctx context.Context) ([]catalog.HSCode, error) {
		page, err := l.api.HSCodes(ctx, catalog.HSCodeFilter{Limit: lookupLimit, Status: catalog.StatusApproved})
		if err != nil {
			return nil, err
		}
		return page.Items, nil
	})
}

// Manufacturers returns every manufacturer.
func (l *Lookups) Manufacturers(ctx context.Context) ([]catalog.Manufacturer, error) {
	return cached(ctx, l.cache, cache.EntityManufacturers, "all", func(ctx context.Context) ([]catalog.Manufacturer, error) {
		return l.api.Manufacturers(ctx, 0, lookupLimit)
	})
}

// Ports returns every port.
func (l *Lookups) Ports(ctx context.Context) ([]catalog.Port, error) {
	return cached(ctx, l.cache, cache.EntityPorts, "all", func(ctx context.Context) ([]catalog.Port, error) {
		return l.api.Ports(ctx, "")
	})
}

// Countries returns every country.
func (l *Lookups) Countries(ctx context.Context) ([]catalog.Country, error) {
	return cached(ctx, l.cache, cache.EntityCountries, "all", l.api.Countries)
}

// Positions returns every mounting position.
func (l *Lookups) Positions(ctx context.Context) ([]catalog.Position, error) {
	return cached(ctx, l.cache, cache.EntityPositions, "all", l.api.Positions)
}

// PriceTiers returns every price tier.
func (l *Lookups) PriceTiers(ctx context.Context) ([]catalog.PriceTier, error) {
	return cached(ctx, l.cache, cache.EntityPriceTiers, "all", func(ctx context.Context) ([]catalog.PriceTier, error) {
		return l.api.PriceTiers(ctx, "")
	})
}
