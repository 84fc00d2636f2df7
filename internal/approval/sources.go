// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package approval

import (
	"context"
	"net/url"
	"strings"

	"github.com/olegiv/partsadmin/internal/cache"
	"github.com/olegiv/partsadmin/internal/catalog"
)

// pendingListLimit bounds list requests made for a tab.
const pendingListLimit = 1000

// Backend is the part of the catalog API the approval tabs use.
// *catalog.Client implements it.
type Backend interface {
	ApprovalSummary(ctx context.Context) (*catalog.ApprovalSummary, error)
	PendingParts(ctx context.Context, skip, limit int) ([]catalog.PendingPart, error)
	PendingItems(ctx context.Context, entityType string) ([]catalog.PendingItem, error)

	ApprovePart(ctx context.Context, id, notes string) error
	RejectPart(ctx context.Context, id, reason string) error
	UpdatePart(ctx context.Context, id string, p catalog.PartPayload) (*catalog.Part, error)

	ApproveTranslation(ctx context.Context, id, notes string) error
	RejectTranslation(ctx context.Context, id, reason string) error
	UpdateTranslation(ctx context.Context, id string, p catalog.TranslationPayload) (*catalog.Translation, error)
	Translations(ctx context.Context, f catalog.TranslationFilter) (*catalog.Page[catalog.Translation], error)
	Categories(ctx context.Context) ([]catalog.Category, error)

	HSCodes(ctx context.Context, f catalog.HSCodeFilter) (*catalog.Page[catalog.HSCode], error)
	ApproveHSCode(ctx context.Context, code, notes string) error
	RejectHSCode(ctx context.Context, code, reason string) error
	UpdateHSCode(ctx context.Context, code string, p catalog.HSCodePayload) (*catalog.HSCode, error)

	ApproveManufacturer(ctx context.Context, id string) error
	RejectManufacturer(ctx context.Context, id, reason string) error
	UpdateManufacturer(ctx context.Context, id string, p catalog.ManufacturerPayload) (*catalog.Manufacturer, error)

	ApprovePort(ctx context.Context, id, notes string) error
	RejectPort(ctx context.Context, id, reason string) error
	UpdatePort(ctx context.Context, id string, p catalog.PortPayload) (*catalog.Port, error)

	Countries(ctx context.Context) ([]catalog.Country, error)
}

// fetch goes through the shared cache when one is configured.
func fetch[T any](ctx context.Context, m *cache.Manager, entity, filter string, load func(context.Context) (T, error)) (T, error) {
	if m == nil {
		return load(ctx)
	}
	return cache.Fetch(ctx, m, entity, filter, load)
}

func formValue(form url.Values, key string) string {
	return strings.TrimSpace(form.Get(key))
}

// PartsSource serves the parts tab.
type PartsSource struct {
	api Backend
}

// Kind implements Source.
func (s *PartsSource) Kind() Kind { return KindParts }

// Dependencies implements Source.
func (s *PartsSource) Dependencies() []Dependency { return nil }

// Pending implements Source.
func (s *PartsSource) Pending(ctx context.Context) ([]Row, error) {
	parts, err := s.api.PendingParts(ctx, 0, pendingListLimit)
	if err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(parts))
	for _, p := range parts {
		rows = append(rows, Row{
			ID:          p.ID,
			Name:        p.PartID,
			Status:      Status(p.ApprovalStatus),
			SubmittedAt: p.SubmittedAt.Time,
			Fields:      []Field{{Label: "Designation", Value: p.Designation}},
			Record:      p,
		})
	}
	return rows, nil
}

// Approve implements Source.
func (s *PartsSource) Approve(ctx context.Context, id string) error {
	return s.api.ApprovePart(ctx, id, "")
}

// Reject implements Source.
func (s *PartsSource) Reject(ctx context.Context, id, reason string) error {
	return s.api.RejectPart(ctx, id, reason)
}

// Update implements Source.
func (s *PartsSource) Update(ctx context.Context, id string, form url.Values) error {
	_, err := s.api.UpdatePart(ctx, id, catalog.PartPayload{
		PartID:      strings.ToUpper(formValue(form, "part_id")),
		Designation: formValue(form, "designation"),
		PartNameEN:  formValue(form, "part_name_en"),
		Note:        formValue(form, "note"),
	})
	return err
}

// TranslationsSource serves the translations tab. Besides the pending list
// it loads every translation (for duplicate-name detection), the categories
// and the approved HS codes offered in the edit form.
type TranslationsSource struct {
	api   Backend
	cache *cache.Manager

	all        []catalog.Translation
	categories []catalog.Category
	hsCodes    []catalog.HSCode
}

// Kind implements Source.
func (s *TranslationsSource) Kind() Kind { return KindTranslations }

// AllTranslations returns the translations loaded on activation.
func (s *TranslationsSource) AllTranslations() []catalog.Translation { return s.all }

// Categories returns the categories loaded on activation.
func (s *TranslationsSource) Categories() []catalog.Category { return s.categories }

// HSCodes returns the approved HS codes loaded on activation.
func (s *TranslationsSource) HSCodes() []catalog.HSCode { return s.hsCodes }

// Dependencies implements Source.
func (s *TranslationsSource) Dependencies() []Dependency {
	return []Dependency{
		{Name: "translations", Load: func(ctx context.Context) error {
			all, err := fetch(ctx, s.cache, cache.EntityTranslations, "all", func(ctx context.Context) ([]catalog.Translation, error) {
				return catalog.AllPages(ctx, pendingListLimit, func(ctx context.Context, page, size int) (*catalog.Page[catalog.Translation], error) {
					return s.api.Translations(ctx, catalog.TranslationFilter{Page: page, PageSize: size})
				})
			})
			s.all = all
			return err
		}},
		{Name: "categories", Load: func(ctx context.Context) error {
			cats, err := fetch(ctx, s.cache, cache.EntityCategories, "all", s.api.Categories)
			s.categories = cats
			return err
		}},
		{Name: "hs codes", Load: func(ctx context.Context) error {
			codes, err := fetch(ctx, s.cache, cache.EntityHSCodes, "approved", func(ctx context.Context) ([]catalog.HSCode, error) {
				page, err := s.api.HSCodes(ctx, catalog.HSCodeFilter{Limit: pendingListLimit, Status: catalog.StatusApproved})
				if err != nil {
					return nil, err
				}
				return page.Items, nil
			})
			s.hsCodes = codes
			return err
		}},
	}
}

// Pending implements Source.
func (s *TranslationsSource) Pending(ctx context.Context) ([]Row, error) {
	items, err := s.api.PendingItems(ctx, catalog.EntityTranslation)
	if err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(items))
	for _, it := range items {
		row := Row{
			ID:          it.EntityID,
			Name:        it.EntityIdentifier,
			Status:      Status(it.Status),
			SubmittedAt: it.SubmittedAt.Time,
			Record:      it,
		}
		if d, ok := it.Translation(); ok {
			if d.PartNameEN != "" {
				row.Name = d.PartNameEN
			}
			row.Fields = []Field{
				{Label: "Portuguese", Value: d.PartNamePR},
				{Label: "French", Value: d.PartNameFR},
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Approve implements Source.
func (s *TranslationsSource) Approve(ctx context.Context, id string) error {
	return s.api.ApproveTranslation(ctx, id, "")
}

// Reject implements Source.
func (s *TranslationsSource) Reject(ctx context.Context, id, reason string) error {
	return s.api.RejectTranslation(ctx, id, reason)
}

// Update implements Source. Renames that collide with an existing
// translation are handled by the translation edit session instead.
func (s *TranslationsSource) Update(ctx context.Context, id string, form url.Values) error {
	drive := formValue(form, "drive_side_specific")
	if drive == "" {
		drive = "no"
	}
	_, err := s.api.UpdateTranslation(ctx, id, catalog.TranslationPayload{
		PartNameEN:        formValue(form, "part_name_en"),
		PartNamePR:        formValue(form, "part_name_pr"),
		PartNameFR:        formValue(form, "part_name_fr"),
		HSCode:            formValue(form, "hs_code"),
		CategoryEN:        formValue(form, "category_en"),
		DriveSideSpecific: drive,
		AlternativeNames:  formValue(form, "alternative_names"),
		Links:             formValue(form, "links"),
	})
	return err
}

// HSCodesSource serves the HS codes tab. Records are keyed by code.
type HSCodesSource struct {
	api Backend
}

// Kind implements Source.
func (s *HSCodesSource) Kind() Kind { return KindHSCodes }

// Dependencies implements Source.
func (s *HSCodesSource) Dependencies() []Dependency { return nil }

// Pending implements Source.
func (s *HSCodesSource) Pending(ctx context.Context) ([]Row, error) {
	page, err := s.api.HSCodes(ctx, catalog.HSCodeFilter{Limit: pendingListLimit, Status: catalog.StatusPendingApproval})
	if err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(page.Items))
	for _, c := range page.Items {
		rows = append(rows, Row{
			ID:     c.HSCode,
			Name:   c.HSCode,
			Status: Status(c.ApprovalStatus),
			Fields: []Field{
				{Label: "English", Value: c.DescriptionEN},
				{Label: "Portuguese", Value: c.DescriptionPR},
			},
			Record: c,
		})
	}
	return rows, nil
}

// Approve implements Source.
func (s *HSCodesSource) Approve(ctx context.Context, code string) error {
	return s.api.ApproveHSCode(ctx, code, "")
}

// Reject implements Source.
func (s *HSCodesSource) Reject(ctx context.Context, code, reason string) error {
	return s.api.RejectHSCode(ctx, code, reason)
}

// Update implements Source.
func (s *HSCodesSource) Update(ctx context.Context, code string, form url.Values) error {
	_, err := s.api.UpdateHSCode(ctx, code, catalog.HSCodePayload{
		DescriptionEN: formValue(form, "description_en"),
		DescriptionPR: formValue(form, "description_pr"),
		DescriptionPT: formValue(form, "description_pt"),
	})
	return err
}

// countries is the country list shared by the manufacturers and ports tabs.
type countries struct {
	api   Backend
	cache *cache.Manager
	list  []catalog.Country
}

func (c *countries) dependency() Dependency {
	return Dependency{Name: "countries", Load: func(ctx context.Context) error {
		list, err := fetch(ctx, c.cache, cache.EntityCountries, "all", c.api.Countries)
		c.list = list
		return err
	}}
}

// ManufacturersSource serves the manufacturers tab.
type ManufacturersSource struct {
	api       Backend
	countries countries
}

// Kind implements Source.
func (s *ManufacturersSource) Kind() Kind { return KindManufacturers }

// Countries returns the countries loaded on activation.
func (s *ManufacturersSource) Countries() []catalog.Country { return s.countries.list }

// Dependencies implements Source.
func (s *ManufacturersSource) Dependencies() []Dependency {
	return []Dependency{s.countries.dependency()}
}

// Pending implements Source.
func (s *ManufacturersSource) Pending(ctx context.Context) ([]Row, error) {
	items, err := s.api.PendingItems(ctx, catalog.EntityManufacturer)
	if err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(items))
	for _, it := range items {
		row := Row{
			ID:          it.EntityID,
			Name:        it.EntityIdentifier,
			Status:      Status(it.Status),
			SubmittedAt: it.SubmittedAt.Time,
			Record:      it,
		}
		if d, ok := it.Manufacturer(); ok {
			if row.Name == "" {
				row.Name = d.MfgName
			}
			row.Fields = []Field{
				{Label: "Type", Value: d.MfgType},
				{Label: "Country", Value: d.Country},
				{Label: "Website", Value: d.Website},
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Approve implements Source.
func (s *ManufacturersSource) Approve(ctx context.Context, id string) error {
	return s.api.ApproveManufacturer(ctx, id)
}

// Reject implements Source.
func (s *ManufacturersSource) Reject(ctx context.Context, id, reason string) error {
	return s.api.RejectManufacturer(ctx, id, reason)
}

// Update implements Source.
func (s *ManufacturersSource) Update(ctx context.Context, id string, form url.Values) error {
	_, err := s.api.UpdateManufacturer(ctx, id, catalog.ManufacturerPayload{
		MfgName:       formValue(form, "mfg_name"),
		MfgType:       formValue(form, "mfg_type"),
		Country:       formValue(form, "country"),
		Website:       formValue(form, "website"),
		Certification: formValue(form, "certification"),
	})
	return err
}

// PortsSource serves the ports tab.
type PortsSource struct {
	api       Backend
	countries countries
}

// Kind implements Source.
func (s *PortsSource) Kind() Kind { return KindPorts }

// Countries returns the countries loaded on activation.
func (s *PortsSource) Countries() []catalog.Country { return s.countries.list }

// Dependencies implements Source.
func (s *PortsSource) Dependencies() []Dependency {
	return []Dependency{s.countries.dependency()}
}

// Pending implements Source.
func (s *PortsSource) Pending(ctx context.Context) ([]Row, error) {
	items, err := s.api.PendingItems(ctx, catalog.EntityPort)
	if err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(items))
	for _, it := range items {
		row := Row{
			ID:          it.EntityID,
			Name:        it.EntityIdentifier,
			Status:      Status(it.Status),
			SubmittedAt: it.SubmittedAt.Time,
			Record:      it,
		}
		if d, ok := it.Port(); ok {
			row.Fields = []Field{
				{Label: "Code", Value: d.PortCode},
				{Label: "Type", Value: d.Type},
				{Label: "Country", Value: d.Country},
				{Label: "City", Value: d.City},
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Approve implements Source.
func (s *PortsSource) Approve(ctx context.Context, id string) error {
	return s.api.ApprovePort(ctx, id, "")
}

// Reject implements Source.
func (s *PortsSource) Reject(ctx context.Context, id, reason string) error {
	return s.api.RejectPort(ctx, id, reason)
}

// Update implements Source.
func (s *PortsSource) Update(ctx context.Context, id string, form url.Values) error {
	_, err := s.api.UpdatePort(ctx, id, catalog.PortPayload{
		PortCode: strings.ToUpper(formValue(form, "port_code")),
		PortName: formValue(form, "port_name"),
		Country:  formValue(form, "country"),
		City:     formValue(form, "city"),
		Type:     formValue(form, "type"),
	})
	return err
}
