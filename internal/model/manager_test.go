// Basketd - Market Basket Recommendation Service
// Copyright 2026 Basketd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/basketd/basketd

package model

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"

	"github.com/basketd/basketd/internal/modelstore"
	"github.com/basketd/basketd/internal/recommend"
)

func newTestEngine(t *testing.T) *recommend.Engine {
	t.Helper()
	engine, err := recommend.NewEngine(nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return engine
}

func newTestStore(t *testing.T) *modelstore.Store {
	t.Helper()
	opts := badger.DefaultOptions(t.TempDir())
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		t.Fatalf("open badger: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return modelstore.New(db)
}

func writeExport(t *testing.T, path, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write export: %v", err)
	}
}

func TestManagerLoadPublishes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	writeExport(t, path, fullExport)

	engine := newTestEngine(t)
	mgr := NewManager(path, engine, nil, zerolog.Nop())

	if err := mgr.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if mgr.Version() != 1 {
		t.Errorf("Version() = %d, want 1", mgr.Version())
	}

	m := engine.Model()
	if m == nil {
		t.Fatal("engine has no model after Load")
	}
	if m.Version != 1 {
		t.Errorf("model Version = %d, want 1", m.Version)
	}
	if m.LoadedAt.IsZero() {
		t.Error("model LoadedAt not set")
	}
}

func TestManagerLoadVersionsIncrement(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	writeExport(t, path, fullExport)

	engine := newTestEngine(t)
	mgr := NewManager(path, engine, nil, zerolog.Nop())

	for want := 1; want <= 3; want++ {
		if err := mgr.Load(context.Background()); err != nil {
			t.Fatalf("Load() #%d error = %v", want, err)
		}
		if got := engine.Model().Version; got != want {
			t.Errorf("model Version = %d, want %d", got, want)
		}
	}
}

func TestManagerFailedLoadKeepsCurrentModel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	writeExport(t, path, fullExport)

	engine := newTestEngine(t)
	mgr := NewManager(path, engine, nil, zerolog.Nop())
	if err := mgr.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	writeExport(t, path, `{not json`)
	if err := mgr.Load(context.Background()); err == nil {
		t.Fatal("Load() error = nil on corrupt export")
	}
	if engine.Model() == nil || engine.Model().Version != 1 {
		t.Error("published model disturbed by failed import")
	}
	if mgr.Version() != 1 {
		t.Errorf("Version() = %d, want unchanged 1", mgr.Version())
	}
}

func TestManagerBootstrapFromSnapshot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.json")
	writeExport(t, path, fullExport)
	store := newTestStore(t)

	// First service run imports the file and writes a snapshot.
	first := NewManager(path, newTestEngine(t), store, zerolog.Nop())
	if err := first.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Second run has lost the export file but keeps the store.
	if err := os.Remove(path); err != nil {
		t.Fatalf("remove export: %v", err)
	}
	engine := newTestEngine(t)
	second := NewManager(path, engine, store, zerolog.Nop())
	if err := second.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap() error = %v", err)
	}

	m := engine.Model()
	if m == nil {
		t.Fatal("engine has no model after snapshot bootstrap")
	}
	if m.Version != 1 {
		t.Errorf("model Version = %d, want snapshot's 1", m.Version)
	}
	if second.Version() != 1 {
		t.Errorf("Version() = %d, want resumed 1", second.Version())
	}
}

func TestManagerBootstrapNoSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.json")
	mgr := NewManager(path, newTestEngine(t), newTestStore(t), zerolog.Nop())

	err := mgr.Bootstrap(context.Background())
	if !errors.Is(err, ErrNoSource) {
		t.Errorf("Bootstrap() error = %v, want ErrNoSource", err)
	}
}

func TestManagerCheckReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	writeExport(t, path, fullExport)

	engine := newTestEngine(t)
	mgr := NewManager(path, engine, nil, zerolog.Nop())
	if err := mgr.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	reloaded, err := mgr.CheckReload(context.Background())
	if err != nil {
		t.Fatalf("CheckReload() error = %v", err)
	}
	if reloaded {
		t.Error("CheckReload() reloaded an unchanged file")
	}

	// Rewrite with a bumped mtime; coarse filesystems need the explicit
	// Chtimes to make the change observable.
	writeExport(t, path, fullExport)
	future := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	reloaded, err = mgr.CheckReload(context.Background())
	if err != nil {
		t.Fatalf("CheckReload() error = %v", err)
	}
	if !reloaded {
		t.Error("CheckReload() missed a modified file")
	}
	if got := engine.Model().Version; got != 2 {
		t.Errorf("model Version = %d, want 2 after reload", got)
	}
}
