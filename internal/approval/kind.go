// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package approval

import "github.com/olegiv/partsadmin/internal/cache"

// Kind identifies one approval tab.
type Kind string

// Reviewable entity kinds, in tab order.
const (
	KindParts         Kind = "parts"
	KindTranslations  Kind = "translations"
	KindHSCodes       Kind = "hscodes"
	KindManufacturers Kind = "manufacturers"
	KindPorts         Kind = "ports"
)

// Kinds lists every kind in display order.
var Kinds = []Kind{KindParts, KindTranslations, KindHSCodes, KindManufacturers, KindPorts}

// ParseKind converts a URL segment to a Kind.
func ParseKind(s string) (Kind, bool) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// Label is the tab title.
func (k Kind) Label() string {
	switch k {
	case KindParts:
		return "Parts"
	case KindTranslations:
		return "Translations"
	case KindHSCodes:
		return "HS Codes"
	case KindManufacturers:
		return "Manufacturers"
	case KindPorts:
		return "Ports"
	}
	return string(k)
}

// Singular names one record of the kind in running text, e.g.
// "Approved part". Callers capitalize it at the start of a sentence.
func (k Kind) Singular() string {
	switch k {
	case KindParts:
		return "part"
	case KindTranslations:
		return "translation"
	case KindHSCodes:
		return "HS code"
	case KindManufacturers:
		return "manufacturer"
	case KindPorts:
		return "port"
	}
	return string(k)
}

// cacheEntity is the cached list invalidated when records of k change.
func (k Kind) cacheEntity() string {
	switch k {
	case KindParts:
		return cache.EntityParts
	case KindTranslations:
		return cache.EntityTranslations
	case KindHSCodes:
		return cache.EntityHSCodes
	case KindManufacturers:
		return cache.EntityManufacturers
	case KindPorts:
		return cache.EntityPorts
	}
	return ""
}
