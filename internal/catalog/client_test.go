// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Options{BaseURL: srv.URL + "/api/v1", Timeout: 2 * time.Second})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestClient_SendsTokenAndRequestID(t *testing.T) {
	var gotAuth, gotReqID, gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotReqID = r.Header.Get("X-Request-ID")
		gotPath = r.URL.Path
		writeJSON(w, http.StatusOK, ApprovalSummary{PendingParts: 2, TotalPending: 5})
	})

	ctx := WithRequestID(WithToken(context.Background(), "tok-123"), "req-1")
	summary, err := c.ApprovalSummary(ctx)
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.Equal(t, "req-1", gotReqID)
	assert.Equal(t, "/api/v1/approvals/summary", gotPath)
	assert.Equal(t, 2, summary.PendingParts)
	assert.Equal(t, 5, summary.TotalPending)
}

func TestClient_GeneratesRequestID(t *testing.T) {
	var gotReqID string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotReqID = r.Header.Get("X-Request-ID")
		writeJSON(w, http.StatusOK, []Category{})
	})

	_, err := c.Categories(context.Background())
	require.NoError(t, err)
	assert.Len(t, gotReqID, 36)
}

func TestClient_ErrorDetail(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"string detail", http.StatusBadRequest, `{"detail":"Translation already exists"}`, "Translation already exists"},
		{"validation detail", http.StatusUnprocessableEntity,
			`{"detail":[{"loc":["body","part_id"],"msg":"too long"},{"loc":["body"],"msg":"bad"}]}`,
			"part_id: too long; bad"},
		{"plain text", http.StatusInternalServerError, "boom", "boom"},
		{"html body", http.StatusBadGateway, "<html>bad gateway</html>", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := c.Translation(context.Background(), "abc")
			require.Error(t, err)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.want, apiErr.Detail)
			assert.Equal(t, tt.status, StatusCode(err))
			if tt.want != "" {
				assert.Equal(t, tt.want, Detail(err, "fallback"))
			} else {
				assert.Equal(t, "fallback", Detail(err, "fallback"))
			}
		})
	}
}

func TestClient_Unauthorized(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Could not validate credentials"})
	})

	_, err := c.Me(context.Background())
	assert.True(t, errors.Is(err, ErrUnauthorized))
}

func TestClient_PendingItemsDecodesDetails(t *testing.T) {
	var gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = io.WriteString(w, `[
			{"entity_type":"manufacturer","entity_id":"m1","entity_identifier":"Bosch","status":"PENDING_APPROVAL",
			 "submitted_at":"2025-03-01T10:00:00","details":{"mfg_name":"Bosch","mfg_type":"OEM","country":"DE","website":"bosch.com"}},
			{"entity_type":"port","entity_id":"p1","entity_identifier":"Hamburg","status":"PENDING_APPROVAL",
			 "submitted_at":null,"details":{"port_code":"DEHAM","port_name":"Hamburg","country":"DE","city":"Hamburg","type":"Sea"}}
		]`)
	})

	items, err := c.PendingItems(context.Background(), EntityManufacturer)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "entity_type=manufacturer", gotQuery)

	mfg, ok := items[0].Manufacturer()
	require.True(t, ok)
	assert.Equal(t, "OEM", mfg.MfgType)
	assert.Equal(t, 2025, items[0].SubmittedAt.Year())

	port, ok := items[1].Port()
	require.True(t, ok)
	assert.Equal(t, "DEHAM", port.PortCode)
	assert.True(t, items[1].SubmittedAt.IsZero())

	_, ok = items[1].Manufacturer()
	assert.False(t, ok)
}

func TestPendingItem_RoundTrip(t *testing.T) {
	in := PendingItem{
		EntityType: EntityTranslation,
		EntityID:   "t1",
		Status:     StatusPendingApproval,
		Details:    &PendingTranslationDetails{PartNameEN: "Brake Pad"},
	}
	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out PendingItem
	require.NoError(t, json.Unmarshal(data, &out))
	details, ok := out.Translation()
	require.True(t, ok)
	assert.Equal(t, "Brake Pad", details.PartNameEN)
}

func TestPendingItem_UnknownType(t *testing.T) {
	var item PendingItem
	err := json.Unmarshal([]byte(`{"entity_type":"spaceship","details":{}}`), &item)
	assert.Error(t, err)
}

func TestClient_UploadSendsMultipartFile(t *testing.T) {
	var gotName, gotBody string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		f, hdr, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		data, _ := io.ReadAll(f)
		gotName, gotBody = hdr.Filename, string(data)
		writeJSON(w, http.StatusOK, BulkUploadResult{Created: 3, Errors: []string{"row 4: bad code"}})
	})

	res, err := c.UploadHSCodes(context.Background(), "codes.csv", strings.NewReader("hs_code\n8708\n"))
	require.NoError(t, err)
	assert.Equal(t, "codes.csv", gotName)
	assert.Equal(t, "hs_code\n8708\n", gotBody)
	assert.Equal(t, 3, res.Created)
	assert.Equal(t, []string{"row 4: bad code"}, res.Errors)
}

func TestClient_DownloadFilename(t *testing.T) {
	tests := []struct {
		name        string
		disposition string
		want        string
	}{
		{"backend name", `attachment; filename="codes-2025.csv"`, "codes-2025.csv"},
		{"default name", "", "hs_codes_template.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if tt.disposition != "" {
					w.Header().Set("Content-Disposition", tt.disposition)
				}
				w.Header().Set("Content-Type", "text/csv")
				_, _ = io.WriteString(w, "hs_code,description_en\n")
			})

			f, err := c.HSCodesTemplate(context.Background())
			require.NoError(t, err)
			defer func() { _ = f.Body.Close() }()

			body, _ := io.ReadAll(f.Body)
			assert.Equal(t, tt.want, f.Name)
			assert.Equal(t, "text/csv", f.ContentType)
			assert.Equal(t, "hs_code,description_en\n", string(body))
		})
	}
}

func TestClient_DimensionSuggestionsNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{"detail": "No suggestions", "count": 0})
	})

	got, err := c.DimensionSuggestions(context.Background(), "Brake Pad")
	require.NoError(t, err)
	assert.Equal(t, 0, got.Count)
	assert.Empty(t, got.Suggestions)
}

func TestClient_RejectManufacturerUsesQuery(t *testing.T) {
	var gotMethod, gotPath, gotReason string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath, gotReason = r.Method, r.URL.Path, r.URL.Query().Get("reason")
		writeJSON(w, http.StatusOK, Manufacturer{ID: "m1"})
	})

	require.NoError(t, c.RejectManufacturer(context.Background(), "m1", "duplicate of Bosch"))
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/api/v1/manufacturers/m1/reject", gotPath)
	assert.Equal(t, "duplicate of Bosch", gotReason)
}

func TestClient_RejectPartSendsReason(t *testing.T) {
	var body map[string]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&body)
		writeJSON(w, http.StatusOK, map[string]string{"status": "rejected"})
	})

	require.NoError(t, c.RejectPart(context.Background(), "p1", "wrong designation"))
	assert.Equal(t, "wrong designation", body["rejection_reason"])
	_, hasNotes := body["review_notes"]
	assert.False(t, hasNotes)
}

func TestClient_HSCodesStatusFilter(t *testing.T) {
	var gotStatus, gotLimit string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotStatus = r.URL.Query().Get("approval_status")
		gotLimit = r.URL.Query().Get("limit")
		writeJSON(w, http.StatusOK, Page[HSCode]{Items: []HSCode{{HSCode: "8708.30"}}, Total: 1, Page: 1, Pages: 1})
	})

	page, err := c.HSCodes(context.Background(), HSCodeFilter{Limit: 1000, Status: StatusPendingApproval})
	require.NoError(t, err)
	assert.Equal(t, StatusPendingApproval, gotStatus)
	assert.Equal(t, "1000", gotLimit)
	assert.Equal(t, "8708.30", page.Items[0].HSCode)
	assert.False(t, page.HasNext())
}

func TestIsTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	_, err := c.DashboardStats(context.Background())
	require.Error(t, err)
	assert.True(t, IsTimeout(err))

	assert.False(t, IsTimeout(nil))
	assert.False(t, IsTimeout(errors.New("connection refused")))
	assert.False(t, IsTimeout(&APIError{Status: http.StatusBadRequest, Detail: "timeout field invalid"}))
	assert.True(t, IsTimeout(context.DeadlineExceeded))
}

func TestTimestamp_Layouts(t *testing.T) {
	for _, in := range []string{
		`"2025-03-01T10:00:00Z"`,
		`"2025-03-01T10:00:00.123456"`,
		`"2025-03-01T10:00:00"`,
		`"2025-03-01"`,
	} {
		var ts Timestamp
		require.NoError(t, json.Unmarshal([]byte(in), &ts), in)
		assert.Equal(t, 2025, ts.Year(), in)
	}

	var ts Timestamp
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &ts))
}

func TestClient_AllTranslationsPagesThrough(t *testing.T) {
	var pages []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		pages = append(pages, q.Get("page"))
		assert.Equal(t, "1000", q.Get("page_size"))
		assert.Equal(t, "pad", q.Get("search"))

		items := make([]Translation, 1000)
		if q.Get("page") == "3" {
			items = items[:7]
		}
		for i := range items {
			items[i].ID = q.Get("page") + "-" + strconv.Itoa(i)
		}
		writeJSON(w, http.StatusOK, Page[Translation]{Items: items, Total: 2007, Pages: 3})
	})

	all, err := c.AllTranslations(context.Background(), TranslationFilter{Search: "pad", Page: 9, PageSize: 5})
	require.NoError(t, err)
	assert.Len(t, all, 2007)
	assert.Equal(t, []string{"1", "2", "3"}, pages)
	assert.Equal(t, "3-6", all[len(all)-1].ID)
}

func TestAllPages(t *testing.T) {
	fetch := func(total int) func(context.Context, int, int) (*Page[int], error) {
		return func(_ context.Context, page, size int) (*Page[int], error) {
			start := (page - 1) * size
			end := min(start+size, total)
			items := make([]int, 0, size)
			for i := start; i < end; i++ {
				items = append(items, i)
			}
			return &Page[int]{Items: items}, nil
		}
	}

	got, err := AllPages(context.Background(), 2, fetch(5))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, got)

	got, err = AllPages(context.Background(), 2, fetch(4))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3}, got)

	boom := errors.New("backend down")
	_, err = AllPages(context.Background(), 2, func(context.Context, int, int) (*Page[int], error) { return nil, boom })
	assert.ErrorIs(t, err, boom)

	endless := func(context.Context, int, int) (*Page[int], error) { return &Page[int]{Items: []int{1, 2}}, nil }
	_, err = AllPages(context.Background(), 2, endless)
	assert.Error(t, err)
}

func TestClient_PriceTiersReadsEveryBatch(t *testing.T) {
	var skips []string
	var searches []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/price-tiers/", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "1000", q.Get("limit"))
		skips = append(skips, q.Get("skip"))
		searches = append(searches, q.Get("search"))

		tiers := make([]PriceTier, 1000)
		if q.Get("skip") == "1000" {
			tiers = tiers[:3]
		}
		for i := range tiers {
			tiers[i].ID = q.Get("skip") + "-" + strconv.Itoa(i)
		}
		writeJSON(w, http.StatusOK, tiers)
	})

	tiers, err := c.PriceTiers(context.Background(), "whole")
	require.NoError(t, err)
	assert.Len(t, tiers, 1003)
	assert.Equal(t, "1000-2", tiers[len(tiers)-1].ID)
	assert.Equal(t, []string{"0", "1000"}, skips)
	assert.Equal(t, []string{"whole", "whole"}, searches)
}

func TestClient_PartPrices(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.EscapedPath()
		gotBody = nil
		if r.Body != nil && r.ContentLength != 0 {
			_ = json.NewDecoder(r.Body).Decode(&gotBody)
		}
		switch r.Method {
		case http.MethodGet:
			_, _ = io.WriteString(w, `[{"id":"pp1","part_id":"AB/12","tier_id":"t1","price":12.5,"tier_name":"Retail"}]`)
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		default:
			_, _ = io.WriteString(w, `{"id":"pp1","part_id":"AB/12","tier_id":"t1","price":9.99}`)
		}
	})
	ctx := context.Background()

	prices, err := c.PartPrices(ctx, "AB/12")
	require.NoError(t, err)
	require.Len(t, prices, 1)
	assert.Equal(t, "/api/v1/price-tier-maps/part/AB%2F12", gotPath)
	require.NotNil(t, prices[0].Price)
	assert.InDelta(t, 12.5, *prices[0].Price, 0.001)

	price := 9.99
	_, err = c.CreatePartPrice(ctx, PartPricePayload{PartID: "AB/12", TierID: "t1", Price: &price})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/api/v1/price-tier-maps/", gotPath)
	assert.Equal(t, map[string]any{"part_id": "AB/12", "tier_id": "t1", "price": 9.99}, gotBody)

	_, err = c.UpdatePartPrice(ctx, "pp1", nil)
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/api/v1/price-tier-maps/pp1", gotPath)
	assert.Equal(t, map[string]any{"price": nil}, gotBody)

	require.NoError(t, c.DeletePartPrice(ctx, "pp1"))
	assert.Equal(t, http.MethodDelete, gotMethod)
}

func TestClient_AuditLogsFilter(t *testing.T) {
	var gotQuery map[string][]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/audit-logs/", r.URL.Path)
		gotQuery = r.URL.Query()
		_, _ = io.WriteString(w, `{"items":[{"id":"a1","action":"UPDATE","entity_type":"parts",
			"changes":{"before":{"part_name":"Pad"},"after":{"part_name":"Brake pad"}},
			"created_at":"2025-06-01T08:30:00"}],"total":1,"page":2,"page_size":20,"pages":2}`)
	})

	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.FixedZone("CEST", 2*60*60))
	page, err := c.AuditLogs(context.Background(), AuditLogFilter{
		Action: "UPDATE", EntityType: "parts", Start: start, Page: 2, PageSize: 20,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"UPDATE"}, gotQuery["action"])
	assert.Equal(t, []string{"parts"}, gotQuery["entity_type"])
	assert.Equal(t, []string{"2025-05-31T22:00:00Z"}, gotQuery["start_date"])
	assert.Equal(t, []string{"2"}, gotQuery["page"])
	assert.Equal(t, []string{"20"}, gotQuery["page_size"])
	assert.NotContains(t, gotQuery, "end_date")
	assert.NotContains(t, gotQuery, "user_id")

	require.Len(t, page.Items, 1)
	assert.Contains(t, page.Items[0].Changes, "after")
	assert.Equal(t, 2025, page.Items[0].CreatedAt.Year())
}
