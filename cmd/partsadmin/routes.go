// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/olegiv/partsadmin/internal/approval"
	"github.com/olegiv/partsadmin/internal/cache"
	"github.com/olegiv/partsadmin/internal/config"
	"github.com/olegiv/partsadmin/internal/guide"
	"github.com/olegiv/partsadmin/internal/handler"
	"github.com/olegiv/partsadmin/internal/middleware"
	"github.com/olegiv/partsadmin/internal/render"
	"github.com/olegiv/partsadmin/internal/scheduler"
	"github.com/olegiv/partsadmin/web"
)

// routerConfig carries the services the router hands to the handlers.
type routerConfig struct {
	cfg             *config.Config
	db              *sql.DB
	deps            handler.Deps
	approvals       *approval.Service
	cacheManager    *cache.Manager
	loginProtection *middleware.LoginProtection
	registry        *scheduler.Registry
	guide           *guide.Guide
	version         string
	apiOrigin       string
}

// newRenderer parses the embedded templates. Every page gets the version,
// the signed-in user and, for signed-in users, the approval badge counts.
func newRenderer(sm *scs.SessionManager, approvals *approval.Service, version string, logger *slog.Logger) (*render.Renderer, error) {
	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return nil, fmt.Errorf("getting templates fs: %w", err)
	}
	renderer, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sm,
		Logger:         logger,
		Decorate: func(r *http.Request, td *render.TemplateData) {
			td.Version = version
			td.User = middleware.GetUser(r)
			if td.User == nil {
				return
			}
			if counts, err := approvals.BadgeCounts(r.Context()); err == nil {
				td.Counts = counts
			}
		},
	})
	if err != nil {
		return nil, fmt.Errorf("initializing renderer: %w", err)
	}
	return renderer, nil
}

// crudHandlers defines the standard CRUD handler methods.
type crudHandlers struct {
	List     http.HandlerFunc
	NewForm  http.HandlerFunc
	Create   http.HandlerFunc
	EditForm http.HandlerFunc
	Update   http.HandlerFunc
	Delete   http.HandlerFunc
}

// registerCRUD registers standard CRUD routes for a resource.
// Routes: GET /, GET /new, POST /, GET /{id}/edit, POST /{id}, POST /{id}/delete
func registerCRUD(r chi.Router, base string, h crudHandlers) {
	baseID := base + handler.RouteParamID
	r.Get(base, h.List)
	r.Get(base+handler.RouteSuffixNew, h.NewForm)
	r.Post(base, h.Create)
	r.Get(baseID+handler.RouteSuffixEdit, h.EditForm)
	r.Post(baseID, h.Update) // HTML forms can't send PUT
	r.Post(baseID+handler.RouteSuffixDelete, h.Delete)
}

// registerCSV registers the bulk upload and template download of a resource.
func registerCSV(r chi.Router, base string, upload, template http.HandlerFunc) {
	r.Post(base+handler.RouteSuffixUpload, upload)
	r.Get(base+handler.RouteSuffixTemplate, template)
}

func newRouter(rc routerConfig) (*chi.Mux, error) {
	cfg := rc.cfg
	sm := rc.deps.SessionManager

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5)) // Gzip compression with level 5
	r.Use(chimw.GetHead)     // Handle HEAD requests for uptime monitoring
	r.Use(middleware.Deadline(30*time.Second, map[string]time.Duration{
		handler.RouteQuotes + handler.RouteSuffixUpload: cfg.UploadTimeout + 15*time.Second,
	}))
	r.Use(middleware.StripTrailingSlash)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{Development: cfg.IsDevelopment(), APIOrigin: rc.apiOrigin}))
	r.Use(sm.LoadAndSave)

	csrfMiddleware := middleware.CSRF(middleware.CSRFOptions{
		Key:            []byte(cfg.SessionSecret),
		Development:    cfg.IsDevelopment(),
		Port:           cfg.ServerPort,
		TrustedOrigins: cfg.TrustedOrigins,
		Logger:         rc.deps.Logger,
	})

	d := rc.deps
	healthHandler := handler.NewHealthHandler(rc.db, d.API, rc.cacheManager, sm, rc.version)
	authHandler := handler.NewAuthHandler(d, rc.loginProtection)
	dashboardHandler := handler.NewDashboardHandler(d, rc.approvals, rc.cacheManager)
	approvalsHandler := handler.NewApprovalsHandler(d, rc.approvals)
	translationsHandler := handler.NewTranslationsHandler(d)
	partsHandler := handler.NewPartsHandler(d)
	hsCodesHandler := handler.NewHSCodesHandler(d)
	manufacturersHandler := handler.NewManufacturersHandler(d)
	portsHandler := handler.NewPortsHandler(d)
	categoriesHandler := handler.NewCategoriesHandler(d)
	vehiclesHandler := handler.NewVehiclesHandler(d)
	partnersHandler := handler.NewPartnersHandler(d)
	quotesHandler := handler.NewQuotesHandler(d)
	optionsHandler := handler.NewOptionsHandler(d)
	activityHandler := handler.NewActivityHandler(d, rc.db)
	guideHandler := handler.NewGuideHandler(d, rc.guide)
	jobsHandler := handler.NewJobsHandler(d, rc.registry)
	priceTiersHandler := handler.NewPriceTiersHandler(d)
	auditLogsHandler := handler.NewAuditLogsHandler(d)

	// Health check routes (public, returns additional details for signed-in callers)
	r.Get("/health", healthHandler.Health)
	r.Get("/health/live", healthHandler.Liveness)
	r.Get("/health/ready", healthHandler.Readiness)

	r.Get(handler.RouteRoot, func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/admin", http.StatusSeeOther)
	})

	// Auth routes (public, with CSRF and login protection)
	r.Group(func(r chi.Router) {
		r.Use(csrfMiddleware)
		r.Use(middleware.NoStore)
		r.Get(handler.RouteLogin, authHandler.LoginForm)
		r.With(rc.loginProtection.Middleware()).Post(handler.RouteLogin, authHandler.Login)
		r.Post(handler.RouteLogout, authHandler.Logout)
	})

	// Admin routes (signed-in reviewers, protected with CSRF)
	r.Route("/admin", func(r chi.Router) {
		r.Use(csrfMiddleware)
		r.Use(middleware.NoStore)
		r.Use(middleware.Auth(sm))
		r.Use(middleware.LoadUser(sm))

		r.Get(handler.RouteRoot, dashboardHandler.Dashboard)
		r.Post("/cache/clear", dashboardHandler.ClearCache)
		r.Get(handler.RouteProfile, authHandler.Profile)
		r.Post(handler.RouteProfile+"/password", authHandler.ChangePassword)

		// Approval workflow
		r.Get(handler.RouteApprovals, approvalsHandler.List)
		r.Get(handler.RouteApprovals+"/counts", approvalsHandler.Counts)
		r.Get(handler.RouteApprovals+"/history", approvalsHandler.History)
		r.Post(handler.RouteApprovals+"/translations/{id}/name-check", approvalsHandler.NameCheck)
		r.Route(handler.RouteApprovals+"/{kind}/{id}", func(r chi.Router) {
			r.Post("/approve", approvalsHandler.Approve)
			r.Get("/reject", approvalsHandler.RejectForm)
			r.Post("/reject", approvalsHandler.Reject)
			r.Get(handler.RouteSuffixEdit, approvalsHandler.EditForm)
			r.Post(handler.RouteSuffixEdit, approvalsHandler.Edit)
		})

		// Combo box options
		r.Get(handler.RouteOptions+"/{kind}", optionsHandler.Options)

		// Translations
		registerCSV(r, handler.RouteTranslations, translationsHandler.Upload, translationsHandler.Template)
		registerCRUD(r, handler.RouteTranslations, crudHandlers{
			List: translationsHandler.List, NewForm: translationsHandler.NewForm, Create: translationsHandler.Create,
			EditForm: translationsHandler.EditForm, Update: translationsHandler.Update, Delete: translationsHandler.Delete,
		})

		// Parts and their equivalences
		r.Get(handler.RouteParts+"/suggestions", partsHandler.Suggestions)
		registerCRUD(r, handler.RouteParts, crudHandlers{
			List: partsHandler.List, NewForm: partsHandler.NewForm, Create: partsHandler.Create,
			EditForm: partsHandler.EditForm, Update: partsHandler.Update, Delete: partsHandler.Delete,
		})
		r.Get(handler.RouteParts+handler.RouteParamID, partsHandler.Show)
		r.Get(handler.RouteParts+"/{id}/equivalences", partsHandler.Equivalences)
		r.Post(handler.RouteParts+"/{id}/equivalences", partsHandler.AddEquivalence)
		r.Post(handler.RouteParts+"/{id}/equivalences/bulk", partsHandler.BulkEquivalences)
		r.Post(handler.RouteParts+"/{id}/equivalences/{equivID}/delete", partsHandler.DeleteEquivalence)
		r.Post(handler.RouteParts+"/{id}/prices", partsHandler.AddPrice)
		r.Post(handler.RouteParts+"/{id}/prices/{priceID}", partsHandler.UpdatePrice)
		r.Post(handler.RouteParts+"/{id}/prices/{priceID}/delete", partsHandler.DeletePrice)

		// Price tiers
		registerCSV(r, handler.RoutePriceTiers, priceTiersHandler.Upload, priceTiersHandler.Template)
		registerCRUD(r, handler.RoutePriceTiers, crudHandlers{
			List: priceTiersHandler.List, NewForm: priceTiersHandler.NewForm, Create: priceTiersHandler.Create,
			EditForm: priceTiersHandler.EditForm, Update: priceTiersHandler.Update, Delete: priceTiersHandler.Delete,
		})

		// HS codes and tariffs
		registerCSV(r, handler.RouteHSCodes, hsCodesHandler.Upload, hsCodesHandler.Template)
		registerCRUD(r, handler.RouteHSCodes, crudHandlers{
			List: hsCodesHandler.List, NewForm: hsCodesHandler.NewForm, Create: hsCodesHandler.Create,
			EditForm: hsCodesHandler.EditForm, Update: hsCodesHandler.Update, Delete: hsCodesHandler.Delete,
		})
		r.Get(handler.RouteHSCodes+handler.RouteParamID, hsCodesHandler.Show)
		r.Post(handler.RouteHSCodes+"/{id}/tariffs", hsCodesHandler.SaveTariff)
		r.Post(handler.RouteHSCodes+"/{id}/tariffs/{country}/delete", hsCodesHandler.DeleteTariff)

		// Manufacturers
		registerCRUD(r, handler.RouteManufacturers, crudHandlers{
			List: manufacturersHandler.List, NewForm: manufacturersHandler.NewForm, Create: manufacturersHandler.Create,
			EditForm: manufacturersHandler.EditForm, Update: manufacturersHandler.Update, Delete: manufacturersHandler.Delete,
		})

		// Ports
		registerCSV(r, handler.RoutePorts, portsHandler.Upload, portsHandler.Template)
		registerCRUD(r, handler.RoutePorts, crudHandlers{
			List: portsHandler.List, NewForm: portsHandler.NewForm, Create: portsHandler.Create,
			EditForm: portsHandler.EditForm, Update: portsHandler.Update, Delete: portsHandler.Delete,
		})

		// Categories (single page with inline editing)
		r.Get(handler.RouteCategories, categoriesHandler.List)
		r.Post(handler.RouteCategories, categoriesHandler.Create)
		r.Post(handler.RouteCategories+handler.RouteParamID, categoriesHandler.Update)
		r.Post(handler.RouteCategories+handler.RouteParamID+handler.RouteSuffixDelete, categoriesHandler.Delete)

		// Vehicles
		registerCSV(r, handler.RouteVehicles, vehiclesHandler.Upload, vehiclesHandler.Template)
		registerCRUD(r, handler.RouteVehicles, crudHandlers{
			List: vehiclesHandler.List, NewForm: vehiclesHandler.NewForm, Create: vehiclesHandler.Create,
			EditForm: vehiclesHandler.EditForm, Update: vehiclesHandler.Update, Delete: vehiclesHandler.Delete,
		})
		r.Get(handler.RouteVehicles+handler.RouteParamID, vehiclesHandler.Show)
		r.Post(handler.RouteVehicles+"/{id}/equivalences", vehiclesHandler.AddEquivalence)
		r.Post(handler.RouteVehicles+"/{id}/equivalences/{equivID}/delete", vehiclesHandler.DeleteEquivalence)
		r.Post(handler.RouteVehicles+"/{id}/parts", vehiclesHandler.AddCompatiblePart)
		r.Post(handler.RouteVehicles+"/{id}/parts/{partID}/delete", vehiclesHandler.DeleteCompatiblePart)

		// Partners and contacts
		registerCSV(r, handler.RoutePartners, partnersHandler.Upload, partnersHandler.Template)
		registerCRUD(r, handler.RoutePartners, crudHandlers{
			List: partnersHandler.List, NewForm: partnersHandler.NewForm, Create: partnersHandler.Create,
			EditForm: partnersHandler.EditForm, Update: partnersHandler.Update, Delete: partnersHandler.Delete,
		})
		r.Get(handler.RoutePartners+handler.RouteParamID, partnersHandler.Show)
		r.Post(handler.RoutePartners+"/{id}/contacts", partnersHandler.AddContact)
		r.Post(handler.RoutePartners+"/{id}/contacts/{contactID}", partnersHandler.UpdateContact)
		r.Post(handler.RoutePartners+"/{id}/contacts/{contactID}/delete", partnersHandler.DeleteContact)

		// Quotes
		r.Get(handler.RouteQuotes, quotesHandler.List)
		r.Get(handler.RouteQuotes+handler.RouteSuffixUpload, quotesHandler.UploadForm)
		r.Post(handler.RouteQuotes+handler.RouteSuffixUpload, quotesHandler.Upload)
		r.Get(handler.RouteQuotes+handler.RouteParamID, quotesHandler.Show)
		r.Post(handler.RouteQuotes+handler.RouteParamID, quotesHandler.Update)
		r.Post(handler.RouteQuotes+handler.RouteParamID+handler.RouteSuffixDelete, quotesHandler.Delete)
		r.Get(handler.RouteQuotes+"/{id}/file", quotesHandler.File)
		r.Get(handler.RouteQuotes+"/{id}/export", quotesHandler.Export)

		// Activity log and guide
		r.Get(handler.RouteActivity, activityHandler.List)
		r.Get(handler.RouteGuide, guideHandler.Index)
		r.Get(handler.RouteGuide+"/{slug}", guideHandler.Show)

		// Admin-only routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin())
			r.Get(handler.RouteJobs, jobsHandler.List)
			r.Post(handler.RouteJobs+"/{name}/run", jobsHandler.Run)
			r.Get(handler.RouteAuditLogs, auditLogsHandler.List)
		})
	})

	// Static file serving
	staticFS, err := fs.Sub(web.Static, "static/dist")
	if err != nil {
		return nil, fmt.Errorf("getting static fs: %w", err)
	}
	// Static assets: cache for 1 year (31536000 seconds)
	staticHandler := middleware.StaticCache(31536000)(http.StripPrefix("/static/dist/", http.FileServer(http.FS(staticFS))))
	r.Handle("/static/dist/*", staticHandler)

	return r, nil
}
