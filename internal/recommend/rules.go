// Basketd - Market Basket Recommendation Service
// Copyright 2026 Basketd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/basketd/basketd

package recommend

import (
	"math"
	"sort"
)

// ruleAccumulator collects contributions from every qualifying rule for one
// resolved product. An explicit fixed-shape record, initialized on first
// sight, keeps the aggregation free of hidden defaults.
type ruleAccumulator struct {
	confidence float64 // running max across contributing rules
	lift       float64 // running max
	support    float64 // running sum
	count      int     // number of contributing rules
}

// recommendFromRules evaluates the rule table against the normalized cart.
// It returns nil when no rule produced any aggregation, signalling the
// caller to consult the co-occurrence fallback. A non-nil result is final
// even when shorter than topN.
func recommendFromRules(m *Model, cart map[string]struct{}, minConfidence, minLift float64, topN int) []Recommendation {
	if len(m.Rules) == 0 {
		return nil
	}

	agg := make(map[string]*ruleAccumulator)
	var order []string // first-seen aggregation order, keeps tie-breaking stable

	for i := range m.Rules {
		rule := &m.Rules[i]
		if !antecedentsInCart(rule.Antecedents, cart) {
			continue
		}
		fresh := newConsequents(rule.Consequents, cart)
		if len(fresh) == 0 {
			continue
		}
		if rule.Confidence < minConfidence || rule.Lift < minLift {
			continue
		}
		for _, product := range fresh {
			acc, ok := agg[product]
			if !ok {
				acc = &ruleAccumulator{}
				agg[product] = acc
				order = append(order, product)
			}
			acc.confidence = math.Max(acc.confidence, rule.Confidence)
			acc.lift = math.Max(acc.lift, rule.Lift)
			acc.support += rule.Support
			acc.count++
		}
	}

	if len(order) == 0 {
		return nil
	}

	recs := make([]Recommendation, 0, len(order))
	for _, product := range order {
		acc := agg[product]
		lift := roundTo(acc.lift, 3)
		recs = append(recs, Recommendation{
			Product:    product,
			Confidence: roundTo(acc.confidence, 3),
			Lift:       &lift,
			Support:    roundTo(acc.support, 4),
			Score:      roundTo(acc.confidence*0.5+acc.lift*0.3+acc.support*0.2, 3),
			Frequency:  acc.count,
			Source:     SourceRules,
		})
	}
	return rankTruncate(recs, topN)
}

// antecedentsInCart reports whether every antecedent's normalized form is
// already present in the cart. An empty antecedent set is vacuously present.
func antecedentsInCart(antecedents []string, cart map[string]struct{}) bool {
	for _, a := range antecedents {
		if _, ok := cart[Normalize(a)]; !ok {
			return false
		}
	}
	return true
}

// newConsequents resolves the consequents the cart does not already contain
// back to original-cased display strings. Consequents are scanned in
// declared order, so a normalized key resolves to the first consequent that
// produces it and aggregation order is deterministic. Already-owned items
// are never recommended again.
func newConsequents(consequents []string, cart map[string]struct{}) []string {
	var fresh []string
	seen := make(map[string]struct{}, len(consequents))
	for _, original := range consequents {
		key := Normalize(original)
		if _, inCart := cart[key]; inCart {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		fresh = append(fresh, original)
	}
	return fresh
}

// rankTruncate sorts recommendations by descending score (stable: ties keep
// first-seen aggregation order) and truncates to topN.
func rankTruncate(recs []Recommendation, topN int) []Recommendation {
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Score > recs[j].Score
	})
	if topN > 0 && len(recs) > topN {
		recs = recs[:topN]
	}
	return recs
}
