// Basketd - Market Basket Recommendation Service
// Copyright 2026 Basketd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/basketd/basketd

// Package modelstore persists parsed model snapshots in BadgerDB so the
// service can restart without re-reading the miner's export file.
//
// Snapshots are gob-encoded, gzip-compressed and carry a SHA-256 checksum.
// A metadata record is stored alongside each snapshot for cheap inspection
// without decompressing the payload.
package modelstore

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/basketd/basketd/internal/recommend"
)

// Key layout in BadgerDB.
const (
	snapshotKey = "model:snapshot:latest"
	metadataKey = "model:meta:latest"
)

// ErrNoSnapshot is returned when the store holds no persisted model.
var ErrNoSnapshot = errors.New("modelstore: no snapshot")

// Metadata describes a persisted snapshot.
type Metadata struct {
	// Version is the model version at save time.
	Version int `json:"version"`

	// SourcePath is the file the model was imported from.
	SourcePath string `json:"source_path"`

	// SavedAt is when the snapshot was written.
	SavedAt time.Time `json:"saved_at"`

	// RuleCount, ItemsetCount, ProductCount and PairCount describe the
	// snapshot's contents.
	RuleCount    int `json:"rule_count"`
	ItemsetCount int `json:"itemset_count"`
	ProductCount int `json:"product_count"`
	PairCount    int `json:"pair_count"`

	// Checksum is the SHA-256 of the uncompressed gob payload.
	Checksum string `json:"checksum"`

	// SizeBytes is the compressed payload size.
	SizeBytes int64 `json:"size_bytes"`
}

// snapshot is the gob-encoded payload. Only the model's source collections
// are persisted; derived indexes are rebuilt on load.
type snapshot struct {
	Rules      []recommend.Rule
	Itemsets   []recommend.Itemset
	Products   []string
	ItemCounts map[string]int
	PairCounts []recommend.PairCount
	Version    int
	LoadedAt   time.Time
}

// storedPayload is the on-disk value format: checksum plus compressed gob.
type storedPayload struct {
	Checksum   string
	Compressed []byte
}

// Store persists model snapshots in a BadgerDB instance.
type Store struct {
	db *badger.DB
}

// New creates a store backed by the given BadgerDB handle. The store does
// not own the handle; the caller manages its lifecycle.
func New(db *badger.DB) *Store {
	return &Store{db: db}
}

// Open opens a BadgerDB at dir for exclusive use by a snapshot store.
func Open(dir string) (*Store, *badger.DB, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, nil, fmt.Errorf("open model store: %w", err)
	}
	return New(db), db, nil
}

// Save persists the model as the latest snapshot, replacing any previous one.
func (s *Store) Save(ctx context.Context, m *recommend.Model, sourcePath string) (*Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snap := snapshot{
		Rules:      m.Rules,
		Itemsets:   m.Itemsets,
		Products:   m.Products,
		ItemCounts: m.ItemCounts,
		PairCounts: m.PairCounts,
		Version:    m.Version,
		LoadedAt:   m.LoadedAt,
	}

	var raw bytes.Buffer
	if err := gob.NewEncoder(&raw).Encode(&snap); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}

	hash := sha256.Sum256(raw.Bytes())
	checksum := hex.EncodeToString(hash[:])

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(raw.Bytes()); err != nil {
		return nil, fmt.Errorf("compress snapshot: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return nil, fmt.Errorf("finalize compression: %w", err)
	}

	meta := Metadata{
		Version:      m.Version,
		SourcePath:   sourcePath,
		SavedAt:      time.Now(),
		RuleCount:    m.RuleCount(),
		ItemsetCount: m.ItemsetCount(),
		ProductCount: m.ProductCount(),
		PairCount:    m.PairCountEntries(),
		Checksum:     checksum,
		SizeBytes:    int64(compressed.Len()),
	}

	metaData, err := json.Marshal(&meta)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}

	var payload bytes.Buffer
	if err := gob.NewEncoder(&payload).Encode(&storedPayload{
		Checksum:   checksum,
		Compressed: compressed.Bytes(),
	}); err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(snapshotKey), payload.Bytes()); err != nil {
			return fmt.Errorf("set snapshot: %w", err)
		}
		if err := txn.Set([]byte(metadataKey), metaData); err != nil {
			return fmt.Errorf("set metadata: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &meta, nil
}

// Load restores the latest snapshot, verifying its checksum and rebuilding
// the model's derived indexes.
func (s *Store) Load(ctx context.Context) (*recommend.Model, *Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	var payload storedPayload
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(snapshotKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNoSnapshot
		}
		if err != nil {
			return fmt.Errorf("get snapshot: %w", err)
		}
		return item.Value(func(val []byte) error {
			return gob.NewDecoder(bytes.NewReader(val)).Decode(&payload)
		})
	})
	if err != nil {
		return nil, nil, err
	}

	gzr, err := gzip.NewReader(bytes.NewReader(payload.Compressed))
	if err != nil {
		return nil, nil, fmt.Errorf("decompress snapshot: %w", err)
	}
	defer func() { _ = gzr.Close() }() //nolint:errcheck // error on gzip close after read is not actionable

	raw, err := io.ReadAll(gzr)
	if err != nil {
		return nil, nil, fmt.Errorf("read decompressed snapshot: %w", err)
	}

	hash := sha256.Sum256(raw)
	if checksum := hex.EncodeToString(hash[:]); checksum != payload.Checksum {
		return nil, nil, fmt.Errorf("checksum mismatch: expected %s, got %s", payload.Checksum, checksum)
	}

	var snap snapshot
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&snap); err != nil {
		return nil, nil, fmt.Errorf("decode snapshot: %w", err)
	}

	m := recommend.NewModel(snap.Rules, snap.Itemsets, snap.Products, snap.ItemCounts, snap.PairCounts)
	m.Version = snap.Version
	m.LoadedAt = snap.LoadedAt

	meta, err := s.Meta(ctx)
	if err != nil && !errors.Is(err, ErrNoSnapshot) {
		return nil, nil, err
	}
	return m, meta, nil
}

// Meta returns the latest snapshot's metadata without touching the payload.
func (s *Store) Meta(ctx context.Context) (*Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var meta Metadata
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(metadataKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNoSnapshot
		}
		if err != nil {
			return fmt.Errorf("get metadata: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &meta)
		})
	})
	if err != nil {
		return nil, err
	}
	return &meta, nil
}
