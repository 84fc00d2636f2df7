// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/partsadmin/internal/catalog"
	"github.com/olegiv/partsadmin/internal/logging"
	"github.com/olegiv/partsadmin/internal/pricing"
	"github.com/olegiv/partsadmin/internal/store"
)

func priceDetails(tierID string, price float64) map[string]string {
	d := map[string]string{"price": strconv.FormatFloat(price, 'f', 2, 64)}
	if tierID != "" {
		d["tier_id"] = tierID
	}
	return d
}

// AddPrice handles POST /admin/parts/{id}/prices.
func (h *PartsHandler) AddPrice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	back := partURL(id)
	if !parseFormOrRedirect(w, r, h.Renderer, back) {
		return
	}
	tierID := formText(r, "tier_id")
	if tierID == "" {
		flashError(w, r, h.Renderer, back, "Choose a price tier")
		return
	}
	price, err := pricing.ParsePrice(r.FormValue("price"))
	if err != nil {
		flashError(w, r, h.Renderer, back, capitalize(err.Error()))
		return
	}
	part, ok := requireRecord(w, r, h.Renderer, h.SessionManager, adminParts, "Part", id,
		func(id string) (*catalog.Part, error) { return h.API.Part(r.Context(), id) })
	if !ok {
		return
	}

	payload := catalog.PartPricePayload{PartID: part.PartID, TierID: tierID, Price: &price}
	if _, err := h.API.CreatePartPrice(r.Context(), payload); err != nil {
		h.fail(w, r, back, "Failed to save price", err)
		return
	}
	h.record(r, logging.Entry{Category: store.CategorySystem, Message: "Added part price", EntityType: "part", EntityID: id, Details: priceDetails(tierID, price)})
	flashSuccess(w, r, h.Renderer, back, "Price added")
}

// UpdatePrice handles POST /admin/parts/{id}/prices/{priceID}.
func (h *PartsHandler) UpdatePrice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	priceID := chi.URLParam(r, "priceID")
	back := partURL(id)
	if !parseFormOrRedirect(w, r, h.Renderer, back) {
		return
	}
	price, err := pricing.ParsePrice(r.FormValue("price"))
	if err != nil {
		flashError(w, r, h.Renderer, back, capitalize(err.Error()))
		return
	}

	if _, err := h.API.UpdatePartPrice(r.Context(), priceID, &price); err != nil {
		h.fail(w, r, back, "Failed to save price", err)
		return
	}
	h.record(r, logging.Entry{Category: store.CategorySystem, Message: "Updated part price", EntityType: "part", EntityID: id, Details: priceDetails("", price)})
	flashSuccess(w, r, h.Renderer, back, "Price updated")
}

// DeletePrice handles POST /admin/parts/{id}/prices/{priceID}/delete.
func (h *PartsHandler) DeletePrice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	priceID := chi.URLParam(r, "priceID")
	if err := h.API.DeletePartPrice(r.Context(), priceID); err != nil {
		h.fail(w, r, partURL(id), "Failed to delete price", err)
		return
	}
	h.record(r, logging.Entry{Category: store.CategorySystem, Message: "Deleted part price", EntityType: "part", EntityID: id, Details: map[string]string{"price_id": priceID}})
	flashSuccess(w, r, h.Renderer, partURL(id), "Price deleted")
}
