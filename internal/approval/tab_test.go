// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package approval

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/partsadmin/internal/catalog"
)

func newTestService(t *testing.T, api Backend) *Service {
	t.Helper()
	return NewService(api, nil, NewNotifier(nil), nil)
}

func pendingPartsFixture() []catalog.PendingPart {
	return []catalog.PendingPart{
		{ID: "p1", PartID: "BP1234", Designation: "Front pad", ApprovalStatus: catalog.StatusPendingApproval},
		{ID: "p2", PartID: "OF0001", ApprovalStatus: catalog.StatusPendingApproval},
	}
}

func TestTab_InactiveMakesNoCalls(t *testing.T) {
	api := newFakeBackend()
	svc := newTestService(t, api)

	for _, k := range Kinds {
		tab, err := svc.Tab(k)
		require.NoError(t, err)
		require.NoError(t, tab.SetActive(context.Background(), false))
	}
	assert.Empty(t, api.Calls())
}

func TestTab_ActivationLoadsEachDependencyOnce(t *testing.T) {
	tests := []struct {
		kind Kind
		want []string
	}{
		{KindParts, []string{"PendingParts"}},
		{KindHSCodes, []string{"HSCodes:PENDING_APPROVAL"}},
		{KindTranslations, []string{"PendingItems:translation", "Translations", "Categories", "HSCodes:APPROVED"}},
		{KindManufacturers, []string{"PendingItems:manufacturer", "Countries"}},
		{KindPorts, []string{"PendingItems:port", "Countries"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			api := newFakeBackend()
			tab, err := newTestService(t, api).Tab(tt.kind)
			require.NoError(t, err)

			ctx := context.Background()
			require.NoError(t, tab.SetActive(ctx, true))
			require.NoError(t, tab.SetActive(ctx, true))

			assert.Equal(t, tt.want, api.Calls())
			assert.True(t, tab.Active())
		})
	}
}

func TestTab_ReactivationReloads(t *testing.T) {
	api := newFakeBackend()
	tab, err := newTestService(t, api).Tab(KindParts)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, tab.SetActive(ctx, true))
	require.NoError(t, tab.SetActive(ctx, false))
	require.NoError(t, tab.SetActive(ctx, true))

	assert.Equal(t, 2, api.count("PendingParts"))
}

func TestTab_FiltersNonPendingRows(t *testing.T) {
	api := newFakeBackend()
	api.pendingParts = append(pendingPartsFixture(),
		catalog.PendingPart{ID: "p3", PartID: "XX0001", ApprovalStatus: catalog.StatusApproved})

	tab, err := newTestService(t, api).Tab(KindParts)
	require.NoError(t, err)
	require.NoError(t, tab.SetActive(context.Background(), true))

	assert.Equal(t, 2, tab.Count())
	_, found := tab.Row("p3")
	assert.False(t, found)
	row, found := tab.Row("p1")
	require.True(t, found)
	assert.Equal(t, "BP1234", row.Name)
}

func TestTab_ApproveReloadsThenNotifies(t *testing.T) {
	api := newFakeBackend()
	api.pendingParts = pendingPartsFixture()
	n := NewNotifier(nil)
	tab, err := NewService(api, nil, n, nil).Tab(KindParts)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, tab.SetActive(ctx, true))

	var counts []int
	tab.OnCountChange(func(c int) { counts = append(counts, c) })

	var callsAtNotify []string
	n.Subscribe("observer", func(_ context.Context, kind Kind) error {
		assert.Equal(t, KindParts, kind)
		callsAtNotify = api.Calls()
		return nil
	})

	require.NoError(t, tab.Approve(ctx, "p1"))

	calls := api.Calls()
	// activation, approve, reload; the badge listener may follow.
	assert.Equal(t, []string{"PendingParts", "ApprovePart", "PendingParts"}, calls[:3])
	assert.Equal(t, calls[:3], callsAtNotify[:3])
	assert.Equal(t, []int{1}, counts)
	assert.Equal(t, 1, tab.Count())
}

func TestTab_RejectRequiresReason(t *testing.T) {
	api := newFakeBackend()
	tab, err := newTestService(t, api).Tab(KindParts)
	require.NoError(t, err)

	for _, reason := range []string{"", "   ", "\n\t"} {
		err := tab.Reject(context.Background(), "p1", reason)
		assert.ErrorIs(t, err, ErrReasonRequired)
	}
	assert.Empty(t, api.Calls())
}

func TestTab_RejectSendsTrimmedReason(t *testing.T) {
	api := newFakeBackend()
	api.pendingParts = pendingPartsFixture()
	tab, err := newTestService(t, api).Tab(KindParts)
	require.NoError(t, err)

	require.NoError(t, tab.Reject(context.Background(), "p2", "  duplicate of BP1234 "))
	assert.Equal(t, []string{"duplicate of BP1234"}, api.rejectReasons)
	assert.Equal(t, 1, tab.Count())
}

func TestTab_FailedMutationLeavesList(t *testing.T) {
	api := newFakeBackend()
	api.pendingParts = pendingPartsFixture()
	backendErr := &catalog.APIError{Status: 400, Detail: "Part already reviewed"}
	api.failWith["RejectPart"] = backendErr

	n := NewNotifier(nil)
	notified := false
	n.Subscribe("observer", func(context.Context, Kind) error {
		notified = true
		return nil
	})

	tab, err := NewService(api, nil, n, nil).Tab(KindParts)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, tab.SetActive(ctx, true))

	err = tab.Reject(ctx, "p1", "wrong part number")
	require.Error(t, err)
	assert.True(t, errors.Is(err, backendErr))
	assert.Equal(t, "Part already reviewed", catalog.Detail(err, ""))

	assert.Equal(t, 2, tab.Count())
	assert.Equal(t, 1, api.count("PendingParts"))
	assert.False(t, notified)
}

func TestTab_UpdateSurfacesBackendError(t *testing.T) {
	api := newFakeBackend()
	api.failWith["UpdatePort"] = &catalog.APIError{Status: 422, Detail: "port_code: too long"}

	tab, err := newTestService(t, api).Tab(KindPorts)
	require.NoError(t, err)

	err = tab.Update(context.Background(), "port-1", url.Values{"port_code": {"frlehxx"}})
	require.Error(t, err)
	assert.Equal(t, "port_code: too long", catalog.Detail(err, "failed"))
	assert.Zero(t, api.count("PendingItems:port"))
}

func TestTab_DependencyFailureKeepsRows(t *testing.T) {
	api := newFakeBackend()
	api.pendingItems[catalog.EntityManufacturer] = []catalog.PendingItem{{
		EntityType:       catalog.EntityManufacturer,
		EntityID:         "m1",
		EntityIdentifier: "Bosch",
		Status:           catalog.StatusPendingApproval,
		Details:          &catalog.PendingManufacturer{MfgName: "Bosch", MfgType: catalog.MfgTypeOEM, Country: "DE"},
	}}
	api.failWith["Countries"] = errors.New("connection refused")

	tab, err := newTestService(t, api).Tab(KindManufacturers)
	require.NoError(t, err)

	err = tab.SetActive(context.Background(), true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "countries")

	rows := tab.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "Bosch", rows[0].Name)
	assert.Equal(t, Field{Label: "Country", Value: "DE"}, rows[0].Fields[1])
}

func TestTab_PendingLoadFailure(t *testing.T) {
	api := newFakeBackend()
	api.failWith["HSCodes:PENDING_APPROVAL"] = errors.New("timeout")

	tab, err := newTestService(t, api).Tab(KindHSCodes)
	require.NoError(t, err)

	require.Error(t, tab.SetActive(context.Background(), true))
	assert.Error(t, tab.Err())
	assert.Zero(t, tab.Count())
}
