// Basketd - Market Basket Recommendation Service
// Copyright 2026 Basketd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/basketd/basketd

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// ReloadChecker matches the model manager's change-detection method. It
// reports whether a reload happened.
type ReloadChecker interface {
	CheckReload(ctx context.Context) (bool, error)
}

// ModelWatcherService polls the model export file and republishes the model
// when the file changes. A failed check is logged and retried on the next
// tick rather than crashing the service; the previously published model
// stays live either way.
type ModelWatcherService struct {
	checker  ReloadChecker
	interval time.Duration
	logger   zerolog.Logger
	name     string
}

// NewModelWatcherService creates a watcher that checks for export changes
// every interval. Non-positive intervals default to 30s.
func NewModelWatcherService(checker ReloadChecker, interval time.Duration, logger zerolog.Logger) *ModelWatcherService {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &ModelWatcherService{
		checker:  checker,
		interval: interval,
		logger:   logger.With().Str("component", "model-watcher").Logger(),
		name:     "model-watcher",
	}
}

// Serve implements suture.Service. It blocks until the context is canceled.
func (s *ModelWatcherService) Serve(ctx context.Context) error {
	s.logger.Info().Dur("interval", s.interval).Msg("model watcher started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			reloaded, err := s.checker.CheckReload(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				s.logger.Warn().Err(err).Msg("model reload check failed")
				continue
			}
			if reloaded {
				s.logger.Info().Msg("model reloaded from changed export")
			}
		}
	}
}

// String implements fmt.Stringer. Suture uses this to identify the service
// in log messages.
func (s *ModelWatcherService) String() string {
	return s.name
}
