// Basketd - Market Basket Recommendation Service
// Copyright 2026 Basketd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/basketd/basketd

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/basketd/basketd/internal/config"
)

// Router wires handlers and middleware into the service's HTTP surface.
type Router struct {
	handler    *Handler
	middleware *Middleware
}

// NewRouter creates a router from the handler set and API configuration.
func NewRouter(handler *Handler, apiCfg config.APIConfig) *Router {
	mwCfg := DefaultMiddlewareConfig()
	mwCfg.CORSAllowedOrigins = apiCfg.CORSOrigins
	mwCfg.RateLimitRequests = apiCfg.RateLimitReqs
	mwCfg.RateLimitWindow = apiCfg.RateLimitWindow

	return &Router{
		handler:    handler,
		middleware: NewMiddleware(mwCfg),
	}
}

// Setup configures all HTTP routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order.
	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.middleware.CORS())

	// Health endpoints stay outside the rate limiter so monitoring is
	// never throttled out.
	r.Get("/health", router.handler.Health)
	r.Get("/health/live", router.handler.HealthLive)
	r.Get("/health/ready", router.handler.HealthReady)

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.middleware.RateLimit())
		r.Use(RequestLogging())

		r.Post("/recommendations", router.handler.Recommendations)
		r.Get("/recommendations/config", router.handler.EngineConfig)
		r.Put("/recommendations/config", router.handler.UpdateEngineConfig)
		r.Get("/recommendations/stats", router.handler.EngineStats)

		r.Get("/model", router.handler.ModelSummary)
		r.Get("/model/products", router.handler.ModelProducts)
		r.Post("/model/reload", router.handler.ModelReload)
	})

	return r
}
