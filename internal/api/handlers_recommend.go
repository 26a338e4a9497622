// Basketd - Market Basket Recommendation Service
// Copyright 2026 Basketd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/basketd/basketd

package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/basketd/basketd/internal/logging"
	"github.com/basketd/basketd/internal/metrics"
	"github.com/basketd/basketd/internal/recommend"
)

// recommendRequest is the body of POST /api/v1/recommendations.
type recommendRequest struct {
	// CartItems is the free-text cart contents.
	CartItems []string `json:"cart_items" validate:"required,min=1"`

	// TopN bounds the result length; zero means the configured default.
	TopN int `json:"top_n" validate:"omitempty,gte=0"`

	// MinConfidence overrides the configured confidence threshold.
	// Omitted means default; an explicit 0 admits every rule.
	MinConfidence *float64 `json:"min_confidence" validate:"omitempty,gte=0,lte=1"`

	// MinLift overrides the configured lift threshold.
	MinLift *float64 `json:"min_lift" validate:"omitempty,gte=0"`
}

// Recommendations handles POST /api/v1/recommendations.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req recommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rw.BadRequest("invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		rw.ValidationError("invalid recommendation request", err.Error())
		return
	}

	start := time.Now()
	resp := h.engine.Recommend(recommend.Request{
		CartItems:     req.CartItems,
		TopN:          req.TopN,
		MinConfidence: req.MinConfidence,
		MinLift:       req.MinLift,
		RequestID:     logging.RequestIDFromContext(r.Context()),
	})
	metrics.RecordRecommendation(string(resp.Metadata.Source), len(resp.Items), time.Since(start), resp.Metadata.CacheHit)

	rw.Success(resp)
}

// EngineConfig handles GET /api/v1/recommendations/config.
func (h *Handler) EngineConfig(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(h.engine.GetConfig())
}

// UpdateEngineConfig handles PUT /api/v1/recommendations/config.
func (h *Handler) UpdateEngineConfig(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var cfg recommend.Config
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		rw.BadRequest("invalid request body")
		return
	}
	if err := h.engine.UpdateConfig(&cfg); err != nil {
		rw.ValidationError("invalid engine configuration", err.Error())
		return
	}

	logging.Ctx(r.Context()).Info().
		Float64("min_confidence", cfg.MinConfidence).
		Float64("min_lift", cfg.MinLift).
		Msg("engine configuration updated")
	rw.Success(h.engine.GetConfig())
}

// EngineStats handles GET /api/v1/recommendations/stats.
func (h *Handler) EngineStats(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(h.engine.Stats())
}
