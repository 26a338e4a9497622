// Basketd - Market Basket Recommendation Service
// Copyright 2026 Basketd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/basketd/basketd

package model

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/basketd/basketd/internal/metrics"
	"github.com/basketd/basketd/internal/modelstore"
	"github.com/basketd/basketd/internal/recommend"
)

// ErrNoSource is returned by Bootstrap when neither the export file nor a
// persisted snapshot is available.
var ErrNoSource = errors.New("model: no export file and no snapshot")

// Manager owns the model lifecycle. It imports the miner's export file,
// assigns monotonically increasing versions, publishes models to the engine,
// and mirrors successful imports into the snapshot store so a restart does
// not depend on the export file being present.
type Manager struct {
	mu     sync.Mutex
	path   string
	engine *recommend.Engine
	store  *modelstore.Store // optional; nil disables snapshots
	logger zerolog.Logger

	version int
	lastMod time.Time
}

// NewManager creates a manager for the export file at path. store may be nil.
func NewManager(path string, engine *recommend.Engine, store *modelstore.Store, logger zerolog.Logger) *Manager {
	return &Manager{
		path:   path,
		engine: engine,
		store:  store,
		logger: logger.With().Str("component", "model").Logger(),
	}
}

// Path returns the configured export file path.
func (m *Manager) Path() string {
	return m.path
}

// Version returns the version of the most recently published model, 0 when
// nothing has been published yet.
func (m *Manager) Version() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.version
}

// Load imports the export file, publishes the model and persists a snapshot.
// A failed import leaves the currently published model untouched.
func (m *Manager) Load(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadLocked(ctx)
}

func (m *Manager) loadLocked(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	info, err := os.Stat(m.path)
	if err != nil {
		return fmt.Errorf("stat model file: %w", err)
	}

	loaded, err := LoadFile(m.path)
	if err != nil {
		metrics.RecordModelLoadFailure()
		return err
	}

	m.version++
	loaded.Version = m.version
	loaded.LoadedAt = time.Now()
	m.lastMod = info.ModTime()

	m.engine.SetModel(loaded)
	metrics.RecordModelLoad(loaded.Version, loaded.RuleCount(), loaded.PairCountEntries())
	m.logger.Info().
		Str("path", m.path).
		Int("version", loaded.Version).
		Int("rules", loaded.RuleCount()).
		Int("pair_counts", loaded.PairCountEntries()).
		Msg("model imported")

	if m.store != nil {
		if _, err := m.store.Save(ctx, loaded, m.path); err != nil {
			// The published model is already live; a snapshot failure
			// only affects the next restart.
			m.logger.Warn().Err(err).Msg("snapshot save failed")
		}
	}
	return nil
}

// Bootstrap publishes an initial model: from the export file when present,
// otherwise from the latest persisted snapshot.
func (m *Manager) Bootstrap(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	fileErr := m.loadLocked(ctx)
	if fileErr == nil {
		return nil
	}
	if ctx.Err() != nil {
		return fileErr
	}
	if m.store == nil {
		return fileErr
	}

	snap, meta, snapErr := m.store.Load(ctx)
	if snapErr != nil {
		if errors.Is(snapErr, modelstore.ErrNoSnapshot) {
			return fmt.Errorf("%w: %s", ErrNoSource, fileErr)
		}
		return fmt.Errorf("snapshot load after import failure (%s): %w", fileErr, snapErr)
	}

	m.version = snap.Version
	m.engine.SetModel(snap)
	metrics.RecordModelLoad(snap.Version, snap.RuleCount(), snap.PairCountEntries())
	m.logger.Info().
		Err(fileErr).
		Int("version", snap.Version).
		Time("saved_at", meta.SavedAt).
		Msg("import failed, restored model from snapshot")
	return nil
}

// CheckReload re-imports the export file if its modification time changed
// since the last successful import. It reports whether a reload happened.
func (m *Manager) CheckReload(ctx context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	info, err := os.Stat(m.path)
	if err != nil {
		return false, fmt.Errorf("stat model file: %w", err)
	}
	if info.ModTime().Equal(m.lastMod) {
		return false, nil
	}
	if err := m.loadLocked(ctx); err != nil {
		return false, err
	}
	return true, nil
}
