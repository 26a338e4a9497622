// Basketd - Market Basket Recommendation Service
// Copyright 2026 Basketd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/basketd/basketd

package api

import (
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/time/rate"

	"github.com/basketd/basketd/internal/config"
	"github.com/basketd/basketd/internal/model"
	"github.com/basketd/basketd/internal/recommend"
)

// Version is the service version reported by health endpoints.
const Version = "1.0.0"

// validate is a reusable validator instance
var validate = validator.New()

// Handler holds the dependencies of all API endpoints.
type Handler struct {
	engine    *recommend.Engine
	manager   *model.Manager
	apiCfg    config.APIConfig
	startTime time.Time

	// reloadLimiter throttles POST /api/v1/model/reload; nil disables the
	// throttle.
	reloadLimiter *rate.Limiter
}

// NewHandler creates the API handler set.
func NewHandler(engine *recommend.Engine, manager *model.Manager, apiCfg config.APIConfig) *Handler {
	h := &Handler{
		engine:    engine,
		manager:   manager,
		apiCfg:    apiCfg,
		startTime: time.Now(),
	}
	if apiCfg.ReloadPerMinute > 0 {
		h.reloadLimiter = rate.NewLimiter(rate.Limit(apiCfg.ReloadPerMinute)/rate.Limit(time.Minute.Seconds()), 1)
	}
	return h
}
