// Basketd - Market Basket Recommendation Service
// Copyright 2026 Basketd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/basketd/basketd

package recommend

import "sort"

// pairAccumulator collects pairwise evidence for one candidate product.
type pairAccumulator struct {
	// pairSum is the total co-occurrence count with cart items.
	pairSum int

	// denSum is the normalizing denominator: each matched pair adds the
	// contributing cart item's own occurrence count. With several cart
	// items contributing pairs to the same candidate the resulting ratio
	// can exceed 1.0; this arithmetic is preserved from the upstream
	// model and must not be "fixed".
	denSum int
}

// recommendFromPairs scores candidates by raw pairwise transaction counts.
// It produces output only when both item counts and pair counts are present
// and at least one cart item is known to the count tables.
func recommendFromPairs(m *Model, cart map[string]struct{}, topN int) []Recommendation {
	if len(m.ItemCounts) == 0 || len(m.PairCounts) == 0 {
		return nil
	}

	known := knownCartItems(m, cart)
	if len(known) == 0 {
		return nil
	}

	scores := make(map[string]*pairAccumulator)
	var order []string // first-seen candidate order

	for _, key := range known {
		original := m.displayName[key]
		count := m.ItemCounts[original]
		if count == 0 {
			continue
		}
		for _, idx := range m.pairsByItem[original] {
			pair := m.PairCounts[idx]
			other := pair.B
			if pair.A != original {
				other = pair.A
			}
			if _, inCart := cart[Normalize(other)]; inCart {
				continue
			}
			acc, ok := scores[other]
			if !ok {
				acc = &pairAccumulator{}
				scores[other] = acc
				order = append(order, other)
			}
			acc.pairSum += pair.Count
			acc.denSum += count
		}
	}

	if len(order) == 0 {
		return nil
	}

	total := m.TotalItemOccurrences()
	recs := make([]Recommendation, 0, len(order))
	for _, product := range order {
		acc := scores[product]
		var confidence float64
		if acc.denSum != 0 {
			confidence = float64(acc.pairSum) / float64(acc.denSum)
		}
		support := float64(m.ItemCounts[product]) / float64(total)
		recs = append(recs, Recommendation{
			Product:    product,
			Confidence: roundTo(confidence, 3),
			Lift:       nil,
			Support:    roundTo(support, 4),
			Score:      roundTo(0.7*confidence+0.3*support, 3),
			Frequency:  m.ItemCounts[product],
			Source:     SourceCooccurrence,
		})
	}
	return rankTruncate(recs, topN)
}

// knownCartItems returns the normalized cart keys that resolve to an
// item-count entry, in sorted order so accumulation and candidate discovery
// are deterministic.
func knownCartItems(m *Model, cart map[string]struct{}) []string {
	known := make([]string, 0, len(cart))
	for key := range cart {
		if _, ok := m.displayName[key]; ok {
			known = append(known, key)
		}
	}
	sort.Strings(known)
	return known
}
