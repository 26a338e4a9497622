// Basketd - Market Basket Recommendation Service
// Copyright 2026 Basketd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/basketd/basketd

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/basketd/basketd/internal/logging"
)

// modelSummary is the payload of GET /api/v1/model.
type modelSummary struct {
	Loaded       bool       `json:"loaded"`
	Version      int        `json:"version,omitempty"`
	LoadedAt     *time.Time `json:"loaded_at,omitempty"`
	RuleCount    int        `json:"rule_count"`
	ItemsetCount int        `json:"itemset_count"`
	ProductCount int        `json:"product_count"`
	ItemCounts   int        `json:"item_counts"`
	PairCounts   int        `json:"pair_counts"`
}

// ModelSummary handles GET /api/v1/model.
func (h *Handler) ModelSummary(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	m := h.engine.Model()
	if m == nil {
		rw.Success(modelSummary{Loaded: false})
		return
	}
	loadedAt := m.LoadedAt
	rw.Success(modelSummary{
		Loaded:       true,
		Version:      m.Version,
		LoadedAt:     &loadedAt,
		RuleCount:    m.RuleCount(),
		ItemsetCount: m.ItemsetCount(),
		ProductCount: m.ProductCount(),
		ItemCounts:   len(m.ItemCounts),
		PairCounts:   m.PairCountEntries(),
	})
}

// ModelProducts handles GET /api/v1/model/products with limit/offset
// pagination over the known product catalog.
func (h *Handler) ModelProducts(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	m := h.engine.Model()
	if m == nil {
		rw.NotFound("no model loaded")
		return
	}

	limit := getIntParam(r, "limit", h.apiCfg.DefaultPageSize)
	if limit < 1 {
		limit = h.apiCfg.DefaultPageSize
	}
	if limit > h.apiCfg.MaxPageSize {
		limit = h.apiCfg.MaxPageSize
	}
	offset := getIntParam(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	products := m.Products
	total := len(products)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	page := products[offset:end]

	rw.SuccessWithPagination(page, &PaginationMeta{
		Total:   int64(total),
		Count:   len(page),
		Offset:  offset,
		Limit:   limit,
		HasMore: end < total,
	})
}

// ModelReload handles POST /api/v1/model/reload. Reloads are throttled so a
// misbehaving client cannot hammer the import path.
func (h *Handler) ModelReload(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	if h.reloadLimiter != nil && !h.reloadLimiter.Allow() {
		rw.TooManyRequests("model reload throttled")
		return
	}

	if err := h.manager.Load(r.Context()); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("model reload failed")
		rw.ErrorWithDetails(http.StatusInternalServerError, ErrCodeModelError, "model reload failed", err.Error())
		return
	}

	m := h.engine.Model()
	logging.Ctx(r.Context()).Info().Int("version", m.Version).Msg("model reloaded")

	rw.Success(map[string]interface{}{
		"version":     m.Version,
		"rule_count":  m.RuleCount(),
		"pair_counts": m.PairCountEntries(),
	})
}

// getIntParam extracts an integer query parameter with a default value.
func getIntParam(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}
