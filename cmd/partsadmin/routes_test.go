// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/partsadmin/internal/approval"
	"github.com/olegiv/partsadmin/internal/cache"
	"github.com/olegiv/partsadmin/internal/catalog"
	"github.com/olegiv/partsadmin/internal/config"
	"github.com/olegiv/partsadmin/internal/guide"
	"github.com/olegiv/partsadmin/internal/handler"
	"github.com/olegiv/partsadmin/internal/logging"
	"github.com/olegiv/partsadmin/internal/middleware"
	"github.com/olegiv/partsadmin/internal/quote"
	"github.com/olegiv/partsadmin/internal/scheduler"
	"github.com/olegiv/partsadmin/internal/session"
	"github.com/olegiv/partsadmin/internal/testutil"
)

type testApp struct {
	backend *testutil.Backend
	router  http.Handler
	sm      *scs.SessionManager
	db      *sql.DB
	jobs    *scheduler.Registry
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	backend := testutil.NewBackend(t)
	db := testutil.TestDB(t)
	logger := testutil.TestLoggerSilent()
	sm := session.New(db, true)

	api := catalog.New(catalog.Options{BaseURL: backend.URL(), Timeout: 2 * time.Second, Logger: logger})
	cm := cache.NewManager(cache.NewMemory(cache.MemoryOptions{DefaultTTL: time.Minute}),
		cache.BackendMemory, time.Minute, logger)
	approvals := approval.NewService(api, cm, approval.NewNotifier(logger), logger)

	jobs := scheduler.New(db, approvals, scheduler.Config{}, logger).Registry()

	renderer, err := newRenderer(sm, approvals, "test", logger)
	require.NoError(t, err)

	cfg := &config.Config{
		SessionSecret: strings.Repeat("s", 32),
		Env:           "development",
		ServerPort:    8080,
	}
	r, err := newRouter(routerConfig{
		cfg: cfg,
		db:  db,
		deps: handler.Deps{
			API:            api,
			Renderer:       renderer,
			SessionManager: sm,
			Lookups:        handler.NewLookups(api, cm),
			Recorder:       logging.NewRecorder(db, logger),
			Logger:         logger,
			MaxUploadBytes: 1 << 20,
		},
		approvals:       approvals,
		cacheManager:    cm,
		loginProtection: middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig()),
		registry:        jobs,
		guide:           guide.New(),
		version:         "test",
		apiOrigin:       backend.Server.URL,
	})
	require.NoError(t, err)

	return &testApp{backend: backend, router: r, sm: sm, db: db, jobs: jobs}
}

func (a *testApp) signIn(t *testing.T, role string) *http.Cookie {
	t.Helper()
	return testutil.SessionCookie(t, a.sm, "tok-rita", session.User{
		ID: "u-1", Name: "Rita Reviewer", Email: "rita@example.com", Role: role,
	})
}

func (a *testApp) get(path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

func (a *testApp) post(path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Sec-Fetch-Site", "same-origin")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

// upload posts data as the "file" field of a multipart form.
func (a *testApp) upload(t *testing.T, path, filename, contentType string, data []byte, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Sec-Fetch-Site", "same-origin")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

// sessionCookie returns the session cookie set by a response, or fallback.
func (a *testApp) sessionCookie(rr *httptest.ResponseRecorder, fallback *http.Cookie) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == a.sm.Cookie.Name {
			return c
		}
	}
	return fallback
}

func (a *testApp) activityCount(t *testing.T, message string) int {
	t.Helper()
	var n int
	require.NoError(t, a.db.QueryRow(`SELECT COUNT(*) FROM activity_log WHERE message = ?`, message).Scan(&n))
	return n
}

func summary(parts int) catalog.ApprovalSummary {
	return catalog.ApprovalSummary{PendingParts: parts, PendingTranslations: 1, TotalPending: parts + 1}
}

func TestHealth_Public(t *testing.T) {
	app := newTestApp(t)
	app.backend.Mux.Get("/approvals/summary", testutil.Reply(http.StatusOK, summary(0)))

	rr := app.get("/health", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.NotContains(t, body, "checks")
}

func TestAdmin_RequiresSession(t *testing.T) {
	app := newTestApp(t)

	rr := app.get("/admin/approvals", nil)

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login", rr.Header().Get("Location"))
}

func TestLoginPage(t *testing.T) {
	app := newTestApp(t)

	rr := app.get("/login", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `action="/login"`)
	assert.Contains(t, rr.Header().Get("Cache-Control"), "no-store")
}

func TestLogin_StoresTokenInSession(t *testing.T) {
	app := newTestApp(t)
	app.backend.Mux.Post("/auth/login/json", testutil.Reply(http.StatusOK, catalog.AuthResponse{AccessToken: "tok-9", TokenType: "bearer"}))
	app.backend.Mux.Get("/auth/me", testutil.Reply(http.StatusOK, catalog.User{
		ID: "u-9", Email: "ana@example.com", FirstName: "Ana", IsActive: true, IsSuperuser: true,
	}))
	app.backend.Mux.Get("/approvals/summary", testutil.Reply(http.StatusOK, summary(3)))

	rr := app.post("/login", url.Values{"email": {"ana@example.com"}, "password": {"secret-pass"}}, nil)

	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/admin", rr.Header().Get("Location"))
	cookie := app.sessionCookie(rr, nil)
	require.NotNil(t, cookie)

	login, ok := app.backend.Find(http.MethodPost, "/auth/login/json")
	require.True(t, ok)
	var creds map[string]string
	login.Decode(t, &creds)
	assert.Equal(t, "ana@example.com", creds["email"])

	// The browser only holds the session cookie; backend calls carry the token.
	counts := app.get("/admin/approvals/counts", cookie)
	require.Equal(t, http.StatusOK, counts.Code)
	var got approval.Counts
	require.NoError(t, json.Unmarshal(counts.Body.Bytes(), &got))
	assert.Equal(t, 3, got.Parts)
	assert.Equal(t, 4, got.Total)

	call, ok := app.backend.Find(http.MethodGet, "/approvals/summary")
	require.True(t, ok)
	assert.Equal(t, "Bearer tok-9", call.Auth)

	var metadata string
	require.NoError(t, app.db.QueryRow(`SELECT metadata FROM activity_log WHERE message = 'User logged in'`).Scan(&metadata))
	assert.Contains(t, metadata, `"ip":"192.0.2.1"`)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	app := newTestApp(t)
	app.backend.Mux.Post("/auth/login/json", testutil.Reply(http.StatusUnauthorized, map[string]string{"detail": "Incorrect email or password"}))

	rr := app.post("/login", url.Values{"email": {"ana@example.com"}, "password": {"wrong"}}, nil)

	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login", rr.Header().Get("Location"))

	page := app.get("/login", app.sessionCookie(rr, nil))
	assert.Contains(t, page.Body.String(), "Invalid email or password")
	assert.Equal(t, 1, app.activityCount(t, "Login failed"))
}

func TestApprovals_ListShowsActiveTab(t *testing.T) {
	app := newTestApp(t)
	app.backend.Mux.Get("/approvals/summary", testutil.Reply(http.StatusOK, summary(2)))
	app.backend.Mux.Get("/approvals/pending/parts", testutil.Reply(http.StatusOK, []catalog.PendingPart{
		{ID: "p-1", PartID: "BRK-001", Designation: "Front brake pad", ApprovalStatus: catalog.StatusPendingApproval},
		{ID: "p-2", PartID: "FLT-220", ApprovalStatus: catalog.StatusPendingApproval},
	}))
	cookie := app.signIn(t, session.RoleEditor)

	rr := app.get("/admin/approvals?tab=parts", cookie)

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "BRK-001")
	assert.Contains(t, body, "FLT-220")
	assert.Contains(t, body, `/admin/approvals/parts/p-1/approve`)
	assert.Contains(t, body, `data-badge="translations"`)
	// Only the active tab's list is requested.
	assert.Equal(t, 0, app.backend.Count(http.MethodGet, "/approvals/pending"))
}

func TestApprovals_ActiveTabCountsListedRows(t *testing.T) {
	app := newTestApp(t)
	app.backend.Mux.Get("/approvals/summary", testutil.Reply(http.StatusOK, summary(5)))
	app.backend.Mux.Get("/approvals/pending/parts", testutil.Reply(http.StatusOK, []catalog.PendingPart{
		{ID: "p-1", PartID: "BRK-001", ApprovalStatus: catalog.StatusPendingApproval},
		{ID: "p-2", PartID: "FLT-220", ApprovalStatus: catalog.StatusPendingApproval},
	}))
	cookie := app.signIn(t, session.RoleEditor)

	rr := app.get("/admin/approvals?tab=parts", cookie)

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `data-badge="parts">2</span>`)
	assert.Contains(t, body, `data-badge="translations">1</span>`)
}

func TestApprovals_Approve(t *testing.T) {
	app := newTestApp(t)
	app.backend.Mux.Post("/approvals/parts/{id}/approve", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	cookie := app.signIn(t, session.RoleEditor)

	rr := app.post("/admin/approvals/parts/p-1/approve", url.Values{}, cookie)

	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/admin/approvals?tab=parts", rr.Header().Get("Location"))
	call, ok := app.backend.Find(http.MethodPost, "/approvals/parts/p-1/approve")
	require.True(t, ok)
	assert.Equal(t, "Bearer tok-rita", call.Auth)
	assert.Equal(t, 1, app.activityCount(t, "Approved part"))
}

func TestApprovals_CrossSitePostRejected(t *testing.T) {
	app := newTestApp(t)
	cookie := app.signIn(t, session.RoleEditor)

	req := httptest.NewRequest(http.MethodPost, "/admin/approvals/parts/p-1/approve", strings.NewReader(""))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Sec-Fetch-Site", "cross-site")
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()
	app.router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Empty(t, app.backend.Requests())
}

func TestApprovals_ApproveWithExpiredToken(t *testing.T) {
	app := newTestApp(t)
	app.backend.Mux.Post("/approvals/parts/{id}/approve", testutil.Reply(http.StatusUnauthorized, map[string]string{"detail": "Token expired"}))
	cookie := app.signIn(t, session.RoleEditor)

	rr := app.post("/admin/approvals/parts/p-1/approve", url.Values{}, cookie)

	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login", rr.Header().Get("Location"))

	// The session is gone, so the admin redirects to the login page.
	next := app.get("/admin/approvals", app.sessionCookie(rr, cookie))
	assert.Equal(t, "/login", next.Header().Get("Location"))
}

func TestApprovals_UnknownKind(t *testing.T) {
	app := newTestApp(t)
	cookie := app.signIn(t, session.RoleEditor)

	rr := app.post("/admin/approvals/widgets/1/approve", url.Values{}, cookie)

	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/admin/approvals", rr.Header().Get("Location"))
	assert.Empty(t, app.backend.Requests())
}

func TestApprovals_RejectRequiresReason(t *testing.T) {
	app := newTestApp(t)
	cookie := app.signIn(t, session.RoleEditor)

	rr := app.post("/admin/approvals/ports/port-7/reject", url.Values{"name": {"PTLIS"}, "reason": {"   "}}, cookie)

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Please give a reason for the rejection")
	assert.Contains(t, body, "Reject port: PTLIS")
	assert.Equal(t, 0, app.backend.Count(http.MethodPost, "/approvals/ports/port-7/reject"))
}

func TestApprovals_RejectSendsTrimmedReason(t *testing.T) {
	app := newTestApp(t)
	app.backend.Mux.Post("/approvals/ports/{id}/reject", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	cookie := app.signIn(t, session.RoleEditor)

	rr := app.post("/admin/approvals/ports/port-7/reject", url.Values{"name": {"PTLIS"}, "reason": {"  Duplicate of PTLEI  "}}, cookie)

	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/admin/approvals?tab=ports", rr.Header().Get("Location"))
	call, ok := app.backend.Find(http.MethodPost, "/approvals/ports/port-7/reject")
	require.True(t, ok)
	var body map[string]string
	call.Decode(t, &body)
	assert.Equal(t, "Duplicate of PTLEI", body["rejection_reason"])
}

func TestApprovals_RejectFailureKeepsReason(t *testing.T) {
	app := newTestApp(t)
	app.backend.Mux.Post("/approvals/ports/{id}/reject", testutil.Reply(http.StatusBadRequest, map[string]string{"detail": "Port is not pending"}))
	cookie := app.signIn(t, session.RoleEditor)

	rr := app.post("/admin/approvals/ports/port-7/reject", url.Values{"name": {"PTLIS"}, "reason": {"Wrong country"}}, cookie)

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Port is not pending")
	assert.Contains(t, body, "Wrong country")
}

func TestOptions_FilterAndCreate(t *testing.T) {
	app := newTestApp(t)
	app.backend.Mux.Get("/categories/", testutil.Reply(http.StatusOK, []catalog.Category{
		{ID: "c-1", CategoryNameEN: "Brakes"},
		{ID: "c-2", CategoryNameEN: "Filters"},
		{ID: "c-3", CategoryNameEN: "Suspension"},
	}))
	cookie := app.signIn(t, session.RoleEditor)

	rr := app.get("/admin/options/categories?q=BRA", cookie)
	require.Equal(t, http.StatusOK, rr.Code)
	var view struct {
		Query   string `json:"query"`
		Options []struct {
			Value string `json:"value"`
		} `json:"options"`
		ShowCreate bool   `json:"show_create"`
		CreateText string `json:"create_text"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &view))
	require.Len(t, view.Options, 1)
	assert.Equal(t, "Brakes", view.Options[0].Value)
	assert.True(t, view.ShowCreate)
	assert.Equal(t, `Create "BRA"`, view.CreateText)

	// An exact value match hides the create entry; the list is cached.
	rr = app.get("/admin/options/categories?q=Brakes", cookie)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &view))
	assert.False(t, view.ShowCreate)
	assert.Equal(t, 1, app.backend.Count(http.MethodGet, "/categories/"))

	rr = app.get("/admin/options/widgets", cookie)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestNameCheck_SwitchesToMerge(t *testing.T) {
	app := newTestApp(t)
	pending := catalog.Translation{ID: "t-new", PartNameEN: "Brake pads front", PartNamePR: "Pastilhas", ApprovalStatus: catalog.StatusPendingApproval}
	existing := catalog.Translation{ID: "t-1", PartNameEN: "Brake pad", PartNamePR: "Pastilha de travão", PartNameFR: "Plaquette", ApprovalStatus: catalog.StatusApproved}
	app.backend.Mux.Get("/translations/{id}", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "id") == pending.ID {
			testutil.JSON(w, http.StatusOK, pending)
			return
		}
		testutil.JSON(w, http.StatusNotFound, map[string]string{"detail": "Translation not found"})
	})
	app.backend.Mux.Get("/translations/", testutil.Reply(http.StatusOK, catalog.Page[catalog.Translation]{
		Items: []catalog.Translation{pending, existing}, Total: 2, Page: 1, PageSize: 1000, Pages: 1,
	}))
	cookie := app.signIn(t, session.RoleEditor)

	rr := app.post("/admin/approvals/translations/t-new/name-check", url.Values{"part_name_en": {"brake PAD"}}, cookie)

	require.Equal(t, http.StatusOK, rr.Code)
	var state struct {
		Form struct {
			PartNameEN string `json:"part_name_en"`
			PartNameFR string `json:"part_name_fr"`
		} `json:"form"`
		Mode     string `json:"mode"`
		TargetID string `json:"target_id"`
		Warning  string `json:"warning"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &state))
	assert.Equal(t, "merge", state.Mode)
	assert.Equal(t, "t-1", state.TargetID)
	assert.Equal(t, "Brake pad", state.Form.PartNameEN)
	assert.Equal(t, "Plaquette", state.Form.PartNameFR)
	assert.Contains(t, state.Warning, "already exists")

	rr = app.post("/admin/approvals/translations/t-new/name-check", url.Values{"part_name_en": {"Brake disc"}}, cookie)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &state))
	assert.Equal(t, "rename", state.Mode)
	assert.Equal(t, "Brake disc", state.Form.PartNameEN)

	rr = app.post("/admin/approvals/translations/t-gone/name-check", url.Values{"part_name_en": {"x"}}, cookie)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestJobs_AdminOnly(t *testing.T) {
	app := newTestApp(t)
	app.backend.Mux.Get("/approvals/summary", testutil.Reply(http.StatusOK, summary(0)))

	rr := app.get("/admin/jobs", app.signIn(t, session.RoleEditor))
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = app.get("/admin/jobs", app.signIn(t, session.RoleAdmin))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Background jobs")
}

func TestJobs_RunNow(t *testing.T) {
	app := newTestApp(t)
	app.backend.Mux.Get("/approvals/summary", testutil.Reply(http.StatusOK, summary(0)))
	runs := 0
	require.NoError(t, app.jobs.Add(scheduler.JobCounts, "Refresh pending approval counts", "@hourly", func() error {
		runs++
		return nil
	}))
	admin := app.signIn(t, session.RoleAdmin)

	rr := app.post("/admin/jobs/"+scheduler.JobCounts+"/run", url.Values{}, admin)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/admin/jobs", rr.Header().Get("Location"))
	assert.Equal(t, 1, runs)
	assert.Equal(t, 1, app.activityCount(t, "Ran job"))

	page := app.get("/admin/jobs", app.sessionCookie(rr, admin))
	assert.Contains(t, page.Body.String(), "manual")
	assert.Contains(t, page.Body.String(), "finished")

	rr = app.post("/admin/jobs/nope/run", url.Values{}, admin)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Contains(t, app.get("/admin/jobs", app.sessionCookie(rr, admin)).Body.String(), "Unknown job nope")
}

func TestStaticAssets(t *testing.T) {
	app := newTestApp(t)

	rr := app.get("/static/dist/admin.js", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Cache-Control"), "max-age=31536000")
	assert.Contains(t, rr.Body.String(), "/admin/options/")
}

// serveTranslations answers the translation endpoints from records.
func (a *testApp) serveTranslations(records ...catalog.Translation) {
	byID := func(id string) (catalog.Translation, bool) {
		for _, t := range records {
			if t.ID == id {
				return t, true
			}
		}
		return catalog.Translation{}, false
	}
	a.backend.Mux.Get("/translations/", testutil.Reply(http.StatusOK, catalog.Page[catalog.Translation]{
		Items: records, Total: len(records), Page: 1, PageSize: 1000, Pages: 1,
	}))
	a.backend.Mux.Get("/translations/{id}", func(w http.ResponseWriter, r *http.Request) {
		if t, ok := byID(chi.URLParam(r, "id")); ok {
			testutil.JSON(w, http.StatusOK, t)
			return
		}
		testutil.JSON(w, http.StatusNotFound, map[string]string{"detail": "Translation not found"})
	})
	a.backend.Mux.Put("/translations/{id}", func(w http.ResponseWriter, r *http.Request) {
		t, _ := byID(chi.URLParam(r, "id"))
		testutil.JSON(w, http.StatusOK, t)
	})
	a.backend.Mux.Delete("/translations/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestTranslationEdit_UnchangedNameUpdatesInPlace(t *testing.T) {
	app := newTestApp(t)
	app.serveTranslations(
		catalog.Translation{ID: "t-new", PartNameEN: "Brake Pad", ApprovalStatus: catalog.StatusPendingApproval},
		catalog.Translation{ID: "t-1", PartNameEN: "brake pad", PartNameFR: "Plaquette", ApprovalStatus: catalog.StatusApproved},
	)
	cookie := app.signIn(t, session.RoleEditor)

	page := app.get("/admin/approvals/translations/t-new/edit", cookie)
	require.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), "Brake Pad")
	assert.NotContains(t, page.Body.String(), "already exists")

	rr := app.post("/admin/approvals/translations/t-new/edit", url.Values{
		"part_name_en": {"Brake Pad"},
		"part_name_fr": {"Plaquette de frein"},
	}, cookie)

	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/admin/approvals?tab=translations", rr.Header().Get("Location"))
	call, ok := app.backend.Find(http.MethodPut, "/translations/t-new")
	require.True(t, ok)
	var payload map[string]any
	call.Decode(t, &payload)
	assert.Equal(t, "Brake Pad", payload["part_name_en"])
	assert.Equal(t, "Plaquette de frein", payload["part_name_fr"])

	// The case-insensitive match with t-1 is the record's own name, not a rename.
	assert.Equal(t, 0, app.backend.Count(http.MethodPut, "/translations/t-1"))
	assert.Equal(t, 0, app.backend.Count(http.MethodDelete, "/translations/t-new"))
	assert.Equal(t, 0, app.backend.Count(http.MethodGet, "/translations/"))
	assert.Equal(t, 1, app.activityCount(t, "Edited pending translation"))
	assert.Equal(t, 0, app.activityCount(t, "Merged pending translation"))
}

func TestTranslationEdit_MergeNeedsConfirmation(t *testing.T) {
	app := newTestApp(t)
	app.serveTranslations(
		catalog.Translation{ID: "t-new", PartNameEN: "Brake pads front", PartNamePR: "Pastilhas", ApprovalStatus: catalog.StatusPendingApproval},
		catalog.Translation{ID: "t-1", PartNameEN: "Brake pad", PartNameFR: "Plaquette", ApprovalStatus: catalog.StatusApproved},
	)
	cookie := app.signIn(t, session.RoleEditor)

	// Typing an existing name without having seen the warning saves nothing.
	rr := app.post("/admin/approvals/translations/t-new/edit", url.Values{
		"part_name_en": {"brake PAD"},
		"part_name_fr": {"Plaquette avant"},
	}, cookie)

	require.Equal(t, http.StatusConflict, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "already exists")
	assert.Contains(t, body, `name="target_id" value="t-1"`)
	assert.Contains(t, body, "Plaquette")
	assert.Equal(t, 0, app.backend.Count(http.MethodPut, "/translations/t-1"))
	assert.Equal(t, 0, app.backend.Count(http.MethodPut, "/translations/t-new"))
	assert.Equal(t, 0, app.backend.Count(http.MethodDelete, "/translations/t-new"))

	// Submitting the warned form merges into the existing record.
	rr = app.post("/admin/approvals/translations/t-new/edit", url.Values{
		"part_name_en": {"Brake pad"},
		"part_name_fr": {"Plaquette avant"},
		"target_id":    {"t-1"},
	}, cookie)

	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/admin/approvals?tab=translations", rr.Header().Get("Location"))

	var writes []testutil.Request
	for _, req := range app.backend.Requests() {
		if req.Method == http.MethodPut || req.Method == http.MethodDelete {
			writes = append(writes, req)
		}
	}
	require.Len(t, writes, 2)
	assert.Equal(t, http.MethodPut, writes[0].Method)
	assert.Equal(t, testutil.APIPrefix+"/translations/t-1", writes[0].Path)
	var payload map[string]any
	writes[0].Decode(t, &payload)
	assert.Equal(t, "Brake pad", payload["part_name_en"])
	assert.Equal(t, "Plaquette avant", payload["part_name_fr"])
	assert.Equal(t, http.MethodDelete, writes[1].Method)
	assert.Equal(t, testutil.APIPrefix+"/translations/t-new", writes[1].Path)
	assert.Equal(t, 1, app.activityCount(t, "Merged pending translation"))
}

func TestNameCheck_OriginalNameIsRename(t *testing.T) {
	app := newTestApp(t)
	app.serveTranslations(
		catalog.Translation{ID: "t-new", PartNameEN: "Brake Pad", ApprovalStatus: catalog.StatusPendingApproval},
		catalog.Translation{ID: "t-1", PartNameEN: "brake pad", ApprovalStatus: catalog.StatusApproved},
	)
	cookie := app.signIn(t, session.RoleEditor)

	rr := app.post("/admin/approvals/translations/t-new/name-check", url.Values{"part_name_en": {"Brake Pad"}}, cookie)

	require.Equal(t, http.StatusOK, rr.Code)
	var state struct {
		Mode     string `json:"mode"`
		TargetID string `json:"target_id"`
		Warning  string `json:"warning"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &state))
	assert.Equal(t, "rename", state.Mode)
	assert.Empty(t, state.TargetID)
	assert.Empty(t, state.Warning)
}

func TestParts_BulkEquivalencesKeepsDuplicates(t *testing.T) {
	app := newTestApp(t)
	app.backend.Mux.Get("/parts/{id}", testutil.Reply(http.StatusOK, catalog.Part{ID: "p-1", PartID: "BRK-001"}))
	app.backend.Mux.Get("/parts/{id}/equivalences", testutil.Reply(http.StatusOK, []catalog.Equivalence{}))
	app.backend.Mux.Post("/parts/{id}/equivalences/bulk", testutil.Reply(http.StatusOK, catalog.BulkEquivalenceResult{
		Created:          1,
		Skipped:          1,
		AutoCreatedParts: []string{"B2"},
		Errors:           []string{},
	}))
	cookie := app.signIn(t, session.RoleEditor)

	rr := app.post("/admin/parts/p-1/equivalences/bulk", url.Values{"part_ids": {"A1\nA1\n\n  B2  "}}, cookie)

	require.Equal(t, http.StatusOK, rr.Code)
	call, ok := app.backend.Find(http.MethodPost, "/parts/p-1/equivalences/bulk")
	require.True(t, ok)
	var sent struct {
		PartIDs []string `json:"part_ids"`
	}
	call.Decode(t, &sent)
	assert.Equal(t, []string{"A1", "A1", "B2"}, sent.PartIDs)

	body := rr.Body.String()
	assert.Contains(t, body, "Added 1 equivalence")
	assert.Contains(t, body, "Skipped 1 duplicate")
	assert.Contains(t, body, "Auto-created 1 new part (pending approval)")
	assert.Contains(t, body, "<li>B2</li>")
	assert.Equal(t, 1, app.activityCount(t, "Bulk added equivalences"))

	rr = app.post("/admin/parts/p-1/equivalences/bulk", url.Values{"part_ids": {" \n "}}, cookie)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), "Enter at least one part ID")
	assert.Equal(t, 1, app.backend.Count(http.MethodPost, "/parts/p-1/equivalences/bulk"))
}

func TestParts_EquivalencesLandsOnDetailSection(t *testing.T) {
	app := newTestApp(t)
	cookie := app.signIn(t, session.RoleEditor)

	rr := app.get("/admin/parts/p-1/equivalences", cookie)

	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/admin/parts/p-1#equivalences", rr.Header().Get("Location"))
}

func TestTranslations_UploadShowsRowErrors(t *testing.T) {
	app := newTestApp(t)
	app.backend.Mux.Post("/translations/bulk-upload", testutil.Reply(http.StatusOK, catalog.TranslationUploadResult{
		SuccessCount: 2,
		ErrorCount:   1,
		Errors:       []catalog.TranslationUploadError{{Row: 3, Error: "part_name_en is required"}},
	}))
	cookie := app.signIn(t, session.RoleEditor)
	csv := []byte("part_name_en,part_name_pr\nBrake pad,Pastilha\nOil filter,Filtro de óleo\n,Sem nome\n")

	rr := app.upload(t, "/admin/translations"+handler.RouteSuffixUpload, "names.csv", "text/csv", csv, cookie)

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "names.csv")
	assert.Contains(t, body, "<dd>2</dd>")
	assert.Contains(t, body, "Row 3: part_name_en is required")
	assert.NotContains(t, body, "Every row was imported")

	call, ok := app.backend.Find(http.MethodPost, "/translations/bulk-upload")
	require.True(t, ok)
	assert.Contains(t, string(call.Body), "Brake pad,Pastilha")
	assert.Equal(t, 1, app.activityCount(t, "Uploaded translations CSV"))
}

func TestPorts_UploadWithoutErrors(t *testing.T) {
	app := newTestApp(t)
	app.backend.Mux.Post("/ports/bulk", testutil.Reply(http.StatusOK, catalog.BulkUploadResult{Created: 4, Updated: 1}))
	cookie := app.signIn(t, session.RoleEditor)

	rr := app.upload(t, "/admin/ports"+handler.RouteSuffixUpload, "ports.csv", "text/csv", []byte("port_code\nPTLIS\n"), cookie)

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "<dd>4</dd>")
	assert.Contains(t, body, "Every row was imported")
}

func TestQuotes_UploadTimeoutMessage(t *testing.T) {
	app := newTestApp(t)
	app.backend.Mux.Post("/extracted-quotes/upload", testutil.Reply(http.StatusGatewayTimeout, map[string]string{"detail": "Gateway Timeout"}))
	cookie := app.signIn(t, session.RoleEditor)

	rr := app.upload(t, "/admin/quotes"+handler.RouteSuffixUpload, "quote.pdf", "application/pdf", []byte("%PDF-1.4\n"), cookie)

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), quote.MsgTimeout)
	assert.Equal(t, 1, app.backend.Count(http.MethodPost, "/extracted-quotes/upload"))
	assert.Equal(t, 0, app.activityCount(t, "Uploaded quote"))
}

func TestQuotes_UploadRejectsUnsupportedType(t *testing.T) {
	app := newTestApp(t)
	cookie := app.signIn(t, session.RoleEditor)

	rr := app.upload(t, "/admin/quotes"+handler.RouteSuffixUpload, "notes.txt", "text/plain", []byte("call back"), cookie)

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), quote.MsgInvalidType)
	assert.Equal(t, 0, app.backend.Count(http.MethodPost, "/extracted-quotes/upload"))
}

func TestPriceTiers_CreateValidates(t *testing.T) {
	app := newTestApp(t)
	app.backend.Mux.Post("/price-tiers/", testutil.Reply(http.StatusCreated, catalog.PriceTier{ID: "t-1", TierName: "Wholesale"}))
	cookie := app.signIn(t, session.RoleEditor)

	rr := app.post("/admin/price-tiers", url.Values{"tier_name": {"  "}, "tier_kind": {"Trade"}}, cookie)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), "is required")
	assert.Equal(t, 0, app.backend.Count(http.MethodPost, "/price-tiers/"))

	rr = app.post("/admin/price-tiers", url.Values{
		"tier_name": {" Wholesale "}, "description": {"Trade customers"}, "tier_kind": {"Trade"},
	}, cookie)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/admin/price-tiers", rr.Header().Get("Location"))

	call, ok := app.backend.Find(http.MethodPost, "/price-tiers/")
	require.True(t, ok)
	var sent catalog.PriceTierPayload
	call.Decode(t, &sent)
	assert.Equal(t, catalog.PriceTierPayload{TierName: "Wholesale", Description: "Trade customers", TierKind: "trade"}, sent)
	assert.Equal(t, 1, app.activityCount(t, "Created price tier"))
}

func TestParts_AddPriceUsesPartNumber(t *testing.T) {
	app := newTestApp(t)
	app.backend.Mux.Get("/parts/{id}", testutil.Reply(http.StatusOK, catalog.Part{ID: "p-1", PartID: "BRK-001"}))
	app.backend.Mux.Get("/parts/{id}/equivalences", testutil.Reply(http.StatusOK, []catalog.Equivalence{}))
	app.backend.Mux.Post("/price-tier-maps/", testutil.Reply(http.StatusCreated, catalog.PartPrice{ID: "pp-2"}))
	price := 12.5
	app.backend.Mux.Get("/price-tier-maps/part/{partNumber}", testutil.Reply(http.StatusOK, []catalog.PartPrice{
		{ID: "pp-1", PartID: "BRK-001", TierID: "t-1", Price: &price},
	}))
	app.backend.Mux.Get("/price-tiers/", testutil.Reply(http.StatusOK, []catalog.PriceTier{
		{ID: "t-1", TierName: "Retail", Description: "Walk-in customers"},
		{ID: "t-2", TierName: "Wholesale"},
	}))
	cookie := app.signIn(t, session.RoleEditor)

	rr := app.post("/admin/parts/p-1/prices", url.Values{"tier_id": {"t-2"}, "price": {"12,50"}}, cookie)

	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/admin/parts/p-1", rr.Header().Get("Location"))
	call, ok := app.backend.Find(http.MethodPost, "/price-tier-maps/")
	require.True(t, ok)
	var sent struct {
		PartID string  `json:"part_id"`
		TierID string  `json:"tier_id"`
		Price  float64 `json:"price"`
	}
	call.Decode(t, &sent)
	assert.Equal(t, "BRK-001", sent.PartID)
	assert.Equal(t, "t-2", sent.TierID)
	assert.InDelta(t, 12.5, sent.Price, 0.001)
	assert.Equal(t, 1, app.activityCount(t, "Added part price"))

	page := app.get("/admin/parts/p-1", app.sessionCookie(rr, cookie))
	require.Equal(t, http.StatusOK, page.Code)
	body := page.Body.String()
	assert.Contains(t, body, "Price added")
	assert.Contains(t, body, "$12.50")
	assert.Contains(t, body, "Walk-in customers")
	assert.Contains(t, body, `<option value="t-2">Wholesale</option>`)
	assert.NotContains(t, body, `<option value="t-1">`)
	_, ok = app.backend.Find(http.MethodGet, "/price-tier-maps/part/BRK-001")
	assert.True(t, ok)
}

func TestParts_AddPriceRejectsBadAmount(t *testing.T) {
	app := newTestApp(t)
	cookie := app.signIn(t, session.RoleEditor)

	rr := app.post("/admin/parts/p-1/prices", url.Values{"tier_id": {"t-1"}, "price": {"-3"}}, cookie)

	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/admin/parts/p-1", rr.Header().Get("Location"))
	assert.Empty(t, app.backend.Requests())
}

func TestAuditLogs_AdminOnly(t *testing.T) {
	app := newTestApp(t)
	app.backend.Mux.Get("/approvals/summary", testutil.Reply(http.StatusOK, summary(0)))
	app.backend.Mux.Get("/audit-logs/", testutil.Reply(http.StatusOK, catalog.Page[catalog.AuditLog]{
		Items: []catalog.AuditLog{{
			ID: "a-1", Action: "UPDATE", EntityType: "parts", EntityIdentifier: "BRK-001",
			Changes: map[string]any{"part_name": "Brake pad"},
		}},
		Total: 1, Page: 1, PageSize: handler.AuditLogsPerPage, Pages: 1,
	}))

	rr := app.get("/admin/audit-logs", app.signIn(t, session.RoleEditor))
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, 0, app.backend.Count(http.MethodGet, "/audit-logs/"))

	rr = app.get("/admin/audit-logs?action=UPDATE&entity_type=bogus&page=2", app.signIn(t, session.RoleAdmin))
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "View changes")
	assert.Contains(t, body, "<code>BRK-001</code>")
	assert.Contains(t, body, "System")
	assert.Contains(t, body, `badge badge-warning`)

	call, ok := app.backend.Find(http.MethodGet, "/audit-logs/")
	require.True(t, ok)
	q, err := url.ParseQuery(call.Query)
	require.NoError(t, err)
	assert.Equal(t, "UPDATE", q.Get("action"))
	assert.Equal(t, "2", q.Get("page"))
	assert.Equal(t, "20", q.Get("page_size"))
	assert.NotContains(t, q, "entity_type")
}
