// Basketd - Market Basket Recommendation Service
// Copyright 2026 Basketd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/basketd/basketd

// Package model imports the upstream miner's JSON export and manages the
// engine's model lifecycle: initial load, snapshot bootstrap, and reload.
package model

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/basketd/basketd/internal/recommend"
)

// validate is a reusable validator instance
var validate = validator.New()

// File is the JSON shape of a miner export. Every section is optional:
// a missing or null section degrades the corresponding scoring path rather
// than failing the load. Present sections must be well-formed.
type File struct {
	// Rules is the mined association rule table.
	Rules []recommend.Rule `json:"rules" validate:"omitempty,dive"`

	// FrequentItemsets is informational; the engine does not score with it.
	FrequentItemsets []recommend.Itemset `json:"frequent_itemsets" validate:"omitempty,dive"`

	// Products is the known product catalog. Informational.
	Products []string `json:"products" validate:"omitempty,dive,required"`

	// ItemCounts maps product names to historical occurrence counts.
	ItemCounts map[string]int `json:"item_counts" validate:"omitempty,dive,gte=0"`

	// PairCounts lists unordered pair transaction counts. Pairs are
	// objects rather than tuple keys because JSON has no tuple keys.
	PairCounts []recommend.PairCount `json:"pair_counts" validate:"omitempty,dive"`
}

// Parse decodes and validates a miner export, returning a ready model.
// The model's Version and LoadedAt are left zero; the Manager assigns them.
func Parse(data []byte) (*recommend.Model, error) {
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse model file: %w", err)
	}
	if err := validate.Struct(&f); err != nil {
		return nil, fmt.Errorf("invalid model file: %w", err)
	}
	return recommend.NewModel(f.Rules, f.FrequentItemsets, f.Products, f.ItemCounts, f.PairCounts), nil
}

// LoadFile reads and parses a miner export from disk.
func LoadFile(path string) (*recommend.Model, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from operator configuration
	if err != nil {
		return nil, fmt.Errorf("read model file: %w", err)
	}
	return Parse(data)
}
