// Basketd - Market Basket Recommendation Service
// Copyright 2026 Basketd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/basketd/basketd

/*
Package api provides the HTTP REST API layer for basketd.

Key components:

  - Router: chi route configuration and middleware stack
  - Handler: request handlers for recommendations, engine configuration,
    model management, and health probes
  - Response formatting: standardized JSON envelopes with request metadata
  - Rate limiting: per-IP limiting via httprate, plus a dedicated throttle
    on model reloads
  - CORS: cross-origin support for browser-based storefront integrations

Endpoints:

  - POST /api/v1/recommendations        cart query, ranked results
  - GET  /api/v1/recommendations/config engine thresholds
  - PUT  /api/v1/recommendations/config update thresholds at runtime
  - GET  /api/v1/recommendations/stats  engine counters
  - GET  /api/v1/model                  model summary
  - GET  /api/v1/model/products         paginated product catalog
  - POST /api/v1/model/reload           re-import the export file
  - GET  /health, /health/live, /health/ready, /metrics

All /api/v1 responses use the APIResponse envelope; health and metrics
endpoints are unthrottled so monitoring is never rate limited.
*/
package api
