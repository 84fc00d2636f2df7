// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

// Route pattern constants for chi router registration.
const (
	// RouteRoot is the root path.
	RouteRoot = "/"
	// RouteLogin is the login route.
	RouteLogin = "/login"
	// RouteLogout is the logout route.
	RouteLogout = "/logout"

	// RouteSuffixNew is the suffix for "new" routes.
	RouteSuffixNew = "/new"
	// RouteSuffixEdit is the suffix for edit routes.
	RouteSuffixEdit = "/edit"
	// RouteSuffixDelete is the suffix for delete routes.
	RouteSuffixDelete = "/delete"
	// RouteSuffixUpload is the suffix for CSV upload routes.
	RouteSuffixUpload = "/upload"
	// RouteSuffixTemplate is the suffix for CSV template downloads.
	RouteSuffixTemplate = "/template"

	// RouteParamID is the ID parameter pattern.
	RouteParamID = "/{id}"

	RouteApprovals     = "/approvals"
	RouteTranslations  = "/translations"
	RouteParts         = "/parts"
	RouteHSCodes       = "/hscodes"
	RouteManufacturers = "/manufacturers"
	RoutePorts         = "/ports"
	RouteCategories    = "/categories"
	RouteVehicles      = "/vehicles"
	RoutePartners      = "/partners"
	RouteQuotes        = "/quotes"
	RouteOptions       = "/options"
	RouteActivity      = "/activity"
	RouteGuide         = "/guide"
	RouteProfile       = "/profile"
	RouteJobs          = "/jobs"
	RoutePriceTiers    = "/price-tiers"
	RouteAuditLogs     = "/audit-logs"
)

// Navigation entries highlighted in the sidebar.
const (
	navDashboard     = "dashboard"
	navApprovals     = "approvals"
	navTranslations  = "translations"
	navParts         = "parts"
	navHSCodes       = "hscodes"
	navManufacturers = "manufacturers"
	navPorts         = "ports"
	navCategories    = "categories"
	navVehicles      = "vehicles"
	navPartners      = "partners"
	navQuotes        = "quotes"
	navActivity      = "activity"
	navGuide         = "guide"
	navJobs          = "jobs"
	navPriceTiers    = "price-tiers"
	navAuditLogs     = "audit-logs"
)

// Admin page URLs used in redirects.
const (
	adminTranslations  = redirectAdmin + RouteTranslations
	adminParts         = redirectAdmin + RouteParts
	adminHSCodes       = redirectAdmin + RouteHSCodes
	adminManufacturers = redirectAdmin + RouteManufacturers
	adminPorts         = redirectAdmin + RoutePorts
	adminCategories    = redirectAdmin + RouteCategories
	adminVehicles      = redirectAdmin + RouteVehicles
	adminPartners      = redirectAdmin + RoutePartners
	adminQuotes        = redirectAdmin + RouteQuotes
	adminPriceTiers    = redirectAdmin + RoutePriceTiers
)
