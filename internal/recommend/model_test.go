// Basketd - Market Basket Recommendation Service
// Copyright 2026 Basketd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/basketd/basketd

package recommend

import (
	"reflect"
	"testing"
)

func TestNewModelPairIndex(t *testing.T) {
	pairs := []PairCount{
		{A: "bread", B: "butter", Count: 3},
		{A: "milk", B: "bread", Count: 2},
		{A: "tea", B: "tea", Count: 1},
	}
	m := NewModel(nil, nil, nil, nil, pairs)

	tests := []struct {
		item string
		want []int
	}{
		{item: "bread", want: []int{0, 1}},
		{item: "butter", want: []int{0}},
		{item: "milk", want: []int{1}},
		{item: "tea", want: []int{2}}, // self-pair indexed once
		{item: "jam", want: nil},
	}
	for _, tt := range tests {
		if got := m.pairsByItem[tt.item]; !reflect.DeepEqual(got, tt.want) {
			t.Errorf("pairsByItem[%q] = %v, want %v", tt.item, got, tt.want)
		}
	}
}

func TestNewModelDisplayName(t *testing.T) {
	counts := map[string]int{
		"Milk":          3,
		"MILK (SKU: 9)": 2,
		"eggs":          5,
		"   ":           1, // normalizes to empty, no lookup entry
	}
	m := NewModel(nil, nil, nil, counts, nil)

	// Collisions resolve to the lexicographically greatest original: keys
	// are visited in sorted order and the last write wins.
	if got := m.displayName["milk"]; got != "Milk" {
		t.Errorf("displayName[milk] = %q, want %q", got, "Milk")
	}
	if got := m.displayName["eggs"]; got != "eggs" {
		t.Errorf("displayName[eggs] = %q, want %q", got, "eggs")
	}
	if _, ok := m.displayName[""]; ok {
		t.Error("blank-normalizing name produced a lookup entry")
	}
	// Every count participates in the total, including the blank one.
	if got := m.TotalItemOccurrences(); got != 11 {
		t.Errorf("TotalItemOccurrences() = %d, want 11", got)
	}
}

func TestTotalItemOccurrencesFloor(t *testing.T) {
	m := NewModel(nil, nil, nil, nil, nil)
	if got := m.TotalItemOccurrences(); got != 1 {
		t.Errorf("TotalItemOccurrences() = %d, want floor of 1", got)
	}
}

func TestModelCounts(t *testing.T) {
	m := NewModel(
		[]Rule{{Antecedents: []string{"a"}, Consequents: []string{"b"}, Confidence: 0.5, Lift: 1.1, Support: 0.1}},
		[]Itemset{{Items: []string{"a", "b"}, Support: 0.1}},
		[]string{"a", "b", "c"},
		map[string]int{"a": 1},
		[]PairCount{{A: "a", B: "b", Count: 1}},
	)
	if m.RuleCount() != 1 {
		t.Errorf("RuleCount() = %d, want 1", m.RuleCount())
	}
	if m.ItemsetCount() != 1 {
		t.Errorf("ItemsetCount() = %d, want 1", m.ItemsetCount())
	}
	if m.ProductCount() != 3 {
		t.Errorf("ProductCount() = %d, want 3", m.ProductCount())
	}
	if m.PairCountEntries() != 1 {
		t.Errorf("PairCountEntries() = %d, want 1", m.PairCountEntries())
	}
}
