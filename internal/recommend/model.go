// Basketd - Market Basket Recommendation Service
// Copyright 2026 Basketd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/basketd/basketd

package recommend

import (
	"sort"
	"time"
)

// Model holds the precomputed artifacts the engine scores against: the mined
// rule table, item/pair occurrence counts, and the informational catalog.
// A Model is immutable after construction; the engine swaps whole models
// atomically on reload.
type Model struct {
	// Rules is the association rule table. May be empty, in which case
	// every query falls through to the co-occurrence path.
	Rules []Rule

	// Itemsets are the miner's frequent itemsets. Informational only.
	Itemsets []Itemset

	// Products is the known product catalog. Informational only.
	Products []string

	// ItemCounts maps a product name to its occurrence count across
	// historical transactions.
	ItemCounts map[string]int

	// PairCounts holds transaction counts for unordered product pairs,
	// in load order.
	PairCounts []PairCount

	// Version increments on every successful load.
	Version int

	// LoadedAt is when this model was loaded.
	LoadedAt time.Time

	// pairsByItem indexes PairCounts by each side's original name so the
	// fallback path avoids a full pair-table scan per cart item. Indices
	// preserve load order, keeping candidate discovery deterministic.
	pairsByItem map[string][]int

	// displayName maps a normalized key to one representative ItemCounts
	// key. Built over sorted keys so collisions resolve deterministically
	// (last-seen, i.e. lexicographically greatest, wins).
	displayName map[string]string

	// totalCount is the sum of all item counts.
	totalCount int
}

// NewModel builds an immutable model from the loader's collections,
// computing the pair index and normalized-name lookup.
func NewModel(rules []Rule, itemsets []Itemset, products []string, itemCounts map[string]int, pairCounts []PairCount) *Model {
	m := &Model{
		Rules:       rules,
		Itemsets:    itemsets,
		Products:    products,
		ItemCounts:  itemCounts,
		PairCounts:  pairCounts,
		pairsByItem: make(map[string][]int, len(pairCounts)),
		displayName: make(map[string]string, len(itemCounts)),
	}

	for i, pair := range pairCounts {
		m.pairsByItem[pair.A] = append(m.pairsByItem[pair.A], i)
		if pair.B != pair.A {
			m.pairsByItem[pair.B] = append(m.pairsByItem[pair.B], i)
		}
	}

	names := make([]string, 0, len(itemCounts))
	for name := range itemCounts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if key := Normalize(name); key != "" {
			m.displayName[key] = name
		}
		m.totalCount += itemCounts[name]
	}

	return m
}

// RuleCount returns the number of loaded rules.
func (m *Model) RuleCount() int { return len(m.Rules) }

// ItemsetCount returns the number of loaded frequent itemsets.
func (m *Model) ItemsetCount() int { return len(m.Itemsets) }

// ProductCount returns the size of the known product catalog.
func (m *Model) ProductCount() int { return len(m.Products) }

// PairCountEntries returns the number of loaded pair counts.
func (m *Model) PairCountEntries() int { return len(m.PairCounts) }

// TotalItemOccurrences returns the sum of all item counts, floored at 1 so
// it is always usable as a denominator.
func (m *Model) TotalItemOccurrences() int {
	if m.totalCount < 1 {
		return 1
	}
	return m.totalCount
}
