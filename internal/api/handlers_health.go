// Basketd - Market Basket Recommendation Service
// Copyright 2026 Basketd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/basketd/basketd

package api

import (
	"net/http"
	"time"
)

// healthStatus is the payload of GET /health.
type healthStatus struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	ModelLoaded   bool    `json:"model_loaded"`
	ModelVersion  int     `json:"model_version"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// Health handles GET /health. The service is degraded while no model is
// published: requests are still served, but every answer is empty.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	m := h.engine.Model()
	status := "healthy"
	version := 0
	if m == nil {
		status = "degraded"
	} else {
		version = m.Version
	}

	rw.Success(healthStatus{
		Status:        status,
		Version:       Version,
		ModelLoaded:   m != nil,
		ModelVersion:  version,
		UptimeSeconds: time.Since(h.startTime).Seconds(),
	})
}

// HealthLive handles GET /health/live. Always returns 200 while the process
// is serving.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]string{"status": "alive"})
}

// HealthReady handles GET /health/ready. Ready means a model is published
// and queries can produce non-trivial answers.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if h.engine.Model() == nil {
		rw.ServiceUnavailable("no model loaded")
		return
	}
	rw.Success(map[string]string{"status": "ready"})
}
