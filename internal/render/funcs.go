// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package render

import (
	"fmt"
	"html/template"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/olegiv/partsadmin/internal/approval"
	"github.com/olegiv/partsadmin/internal/catalog"
)

// templateFuncs returns custom template functions.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatDate":     formatDate,
		"formatDateTime": formatDateTime,
		"truncate":       truncate,
		"add": func(a, b int) int {
			return a + b
		},
		"sub": func(a, b int) int {
			return a - b
		},
		"comma":       comma,
		"money":       money,
		"floatVal":    floatVal,
		"intVal":      intVal,
		"statusLabel": statusLabel,
		"statusClass": statusClass,
		"kinds": func() []approval.Kind {
			return approval.Kinds
		},
		"countOf": func(c approval.Counts, k approval.Kind) int {
			return c.Of(k)
		},
		"pathEscape": url.PathEscape,
		"join":       strings.Join,
		"dict":       dict,
		"html": func(s string) template.HTML {
			// Only used for HTML produced by the guide renderer.
			return template.HTML(s)
		},
	}
}

func formatDate(v any) string {
	t := toTime(v)
	if t.IsZero() {
		return "-"
	}
	return t.Format("Jan 2, 2006")
}

func formatDateTime(v any) string {
	t := toTime(v)
	if t.IsZero() {
		return "-"
	}
	return t.Format("Jan 2, 2006 3:04 PM")
}

func toTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case *time.Time:
		if t != nil {
			return *t
		}
	case catalog.Timestamp:
		return t.Time
	case *catalog.Timestamp:
		if t != nil {
			return t.Time
		}
	}
	return time.Time{}
}

// truncate shortens s to length runes, adding an ellipsis.
func truncate(s string, length int) string {
	runes := []rune(s)
	if len(runes) <= length {
		return s
	}
	return string(runes[:length]) + "..."
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func floatVal(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}

func intVal(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}

func statusLabel(s string) string {
	if s == "" {
		return approval.StatusPendingApproval.Label()
	}
	return approval.Status(s).Label()
}

func statusClass(s string) string {
	switch approval.Status(s) {
	case approval.StatusApproved:
		return "badge-success"
	case approval.StatusRejected:
		return "badge-danger"
	case approval.StatusDraft:
		return "badge-muted"
	default:
		return "badge-warning"
	}
}

// dict builds a map from alternating keys and values for partials.
func dict(kv ...any) (map[string]any, error) {
	if len(kv)%2 != 0 {
		return nil, fmt.Errorf("dict: odd number of arguments")
	}
	m := make(map[string]any, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict: key %v is not a string", kv[i])
		}
		m[key] = kv[i+1]
	}
	return m, nil
}

// comma groups thousands: 12345 becomes "12,345".
func comma(v any) string {
	switch n := v.(type) {
	case int:
		return humanize.Comma(int64(n))
	case int64:
		return humanize.Comma(n)
	case float64:
		return humanize.Commaf(n)
	default:
		return fmt.Sprint(v)
	}
}
