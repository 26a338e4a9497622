// Basketd - Market Basket Recommendation Service
// Copyright 2026 Basketd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/basketd/basketd

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"
)

// mockChecker is a test double for the ReloadChecker interface.
type mockChecker struct {
	checkCount atomic.Int32
	reloaded   bool
	err        error
}

func (m *mockChecker) CheckReload(ctx context.Context) (bool, error) {
	m.checkCount.Add(1)
	return m.reloaded, m.err
}

func TestModelWatcherServiceInterface(t *testing.T) {
	var _ suture.Service = (*ModelWatcherService)(nil)
}

func TestNewModelWatcherServiceDefaults(t *testing.T) {
	svc := NewModelWatcherService(&mockChecker{}, 0, zerolog.Nop())
	if svc.interval != 30*time.Second {
		t.Errorf("interval = %v, want default 30s", svc.interval)
	}
	if svc.String() != "model-watcher" {
		t.Errorf("String() = %q, want model-watcher", svc.String())
	}
}

func TestModelWatcherServicePolls(t *testing.T) {
	checker := &mockChecker{reloaded: true}
	svc := NewModelWatcherService(checker, 10*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- svc.Serve(ctx)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() error = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}

	if checker.checkCount.Load() < 2 {
		t.Errorf("check count = %d, want at least 2", checker.checkCount.Load())
	}
}

func TestModelWatcherServiceSurvivesCheckErrors(t *testing.T) {
	checker := &mockChecker{err: errors.New("stat failed")}
	svc := NewModelWatcherService(checker, 10*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- svc.Serve(ctx)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		// Check failures are retried, not propagated; only cancellation
		// ends the loop.
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() error = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}

	if checker.checkCount.Load() < 2 {
		t.Errorf("check count = %d, want at least 2 despite errors", checker.checkCount.Load())
	}
}
