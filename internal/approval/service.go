// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package approval

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/olegiv/partsadmin/internal/cache"
)

// Counts holds the number of pending records per kind.
type Counts struct {
	Parts         int `json:"parts"`
	Translations  int `json:"translations"`
	HSCodes       int `json:"hscodes"`
	Manufacturers int `json:"manufacturers"`
	Ports         int `json:"ports"`
	Total         int `json:"total"`
}

// Of returns the count for kind.
func (c Counts) Of(kind Kind) int {
	switch kind {
	case KindParts:
		return c.Parts
	case KindTranslations:
		return c.Translations
	case KindHSCodes:
		return c.HSCodes
	case KindManufacturers:
		return c.Manufacturers
	case KindPorts:
		return c.Ports
	}
	return 0
}

const countsFilter = "summary"

// Service builds approval tabs and keeps the pending counts shown in the
// navigation badge.
type Service struct {
	api      Backend
	cache    *cache.Manager
	notifier *Notifier
	logger   *slog.Logger
}

// NewService creates the approval service. cm may be nil to disable
// caching. The service subscribes to notifier so that every review action
// drops the affected cached lists and refreshes the badge counts.
func NewService(api Backend, cm *cache.Manager, notifier *Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if notifier == nil {
		notifier = NewNotifier(logger)
	}
	s := &Service{api: api, cache: cm, notifier: notifier, logger: logger}

	notifier.Register(Listener{Name: "cache-invalidator", Priority: 0, Fn: s.invalidate})
	notifier.Register(Listener{Name: "badge-counts", Priority: 10, Fn: func(ctx context.Context, _ Kind) error {
		_, err := s.BadgeCounts(ctx)
		return err
	}})
	return s
}

// Notifier returns the notifier review actions are reported to.
func (s *Service) Notifier() *Notifier { return s.notifier }

// NewSource creates the source for kind.
func (s *Service) NewSource(kind Kind) (Source, error) {
	switch kind {
	case KindParts:
		return &PartsSource{api: s.api}, nil
	case KindTranslations:
		return &TranslationsSource{api: s.api, cache: s.cache}, nil
	case KindHSCodes:
		return &HSCodesSource{api: s.api}, nil
	case KindManufacturers:
		return &ManufacturersSource{api: s.api, countries: countries{api: s.api, cache: s.cache}}, nil
	case KindPorts:
		return &PortsSource{api: s.api, countries: countries{api: s.api, cache: s.cache}}, nil
	}
	return nil, fmt.Errorf("unknown approval kind %q", kind)
}

// Tab creates an inactive tab for kind.
func (s *Service) Tab(kind Kind) (*Tab, error) {
	src, err := s.NewSource(kind)
	if err != nil {
		return nil, err
	}
	return NewTab(src, s.notifier, s.logger), nil
}

// BadgeCounts returns the pending counts, from the cache when present.
func (s *Service) BadgeCounts(ctx context.Context) (Counts, error) {
	return fetch(ctx, s.cache, cache.EntityApprovalCounts, countsFilter, s.loadCounts)
}

// RefreshCounts reloads the pending counts from the backend and stores them.
func (s *Service) RefreshCounts(ctx context.Context) (Counts, error) {
	counts, err := s.loadCounts(ctx)
	if err != nil {
		return Counts{}, err
	}
	if s.cache != nil {
		if err := cache.Store(ctx, s.cache, cache.EntityApprovalCounts, countsFilter, counts); err != nil {
			s.logger.Warn("storing approval counts failed", "error", err)
		}
	}
	return counts, nil
}

func (s *Service) loadCounts(ctx context.Context) (Counts, error) {
	sum, err := s.api.ApprovalSummary(ctx)
	if err != nil {
		return Counts{}, err
	}
	return Counts{
		Parts:         sum.PendingParts,
		Translations:  sum.PendingTranslations,
		HSCodes:       sum.PendingHSCodes,
		Manufacturers: sum.PendingManufacturers,
		Ports:         sum.PendingPorts,
		Total:         sum.PendingParts + sum.PendingTranslations + sum.PendingHSCodes + sum.PendingManufacturers + sum.PendingPorts,
	}, nil
}

func (s *Service) invalidate(ctx context.Context, kind Kind) error {
	if s.cache == nil {
		return nil
	}
	if entity := kind.cacheEntity(); entity != "" {
		s.cache.InvalidateEntity(ctx, entity)
	}
	s.cache.InvalidateEntity(ctx, cache.EntityApprovalCounts)
	return nil
}
