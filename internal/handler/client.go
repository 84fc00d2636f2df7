// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net"
	"net/http"

	"github.com/mileusna/useragent"
)

// clientDetails describes where a request came from for sign-in entries.
func (d Deps) clientDetails(r *http.Request) map[string]string {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}

	ua := useragent.Parse(r.UserAgent())
	browser, osName := ua.Name, ua.OS
	if browser == "" {
		browser = "Unknown"
	}
	if osName == "" {
		osName = "Unknown"
	}
	device := "desktop"
	switch {
	case ua.Mobile:
		device = "mobile"
	case ua.Tablet:
		device = "tablet"
	case ua.Bot:
		device = "bot"
	}

	details := map[string]string{
		"ip":      ip,
		"browser": browser,
		"os":      osName,
		"device":  device,
	}
	if country := d.Geo.Country(ip); country != "" {
		details["country"] = country
	}
	return details
}
