// Basketd - Market Basket Recommendation Service
// Copyright 2026 Basketd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/basketd/basketd

package recommend

import "strings"

// skuMarker is the literal annotation prefix appended by upstream catalog
// exports, e.g. "Axis P3225-LVE Network Camera (SKU: 0935-001)".
const skuMarker = " (SKU:"

// Normalize produces the canonical comparison key for a product name:
// leading/trailing whitespace is trimmed, a trailing SKU annotation is cut,
// internal whitespace runs collapse to single spaces, and the result is
// lowercased. Blank or whitespace-only input normalizes to the empty string.
//
// Normalize is idempotent. Keys are used purely for equality and subset
// checks; display output always carries the original text.
func Normalize(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ""
	}
	if i := strings.Index(trimmed, skuMarker); i >= 0 {
		trimmed = trimmed[:i]
	}
	return strings.ToLower(strings.Join(strings.Fields(trimmed), " "))
}

// NormalizeCart collapses raw cart entries into a set of canonical keys.
// Malformed entries (blank or whitespace-only) are silently dropped; order
// and duplicates are irrelevant.
func NormalizeCart(items []string) map[string]struct{} {
	cart := make(map[string]struct{}, len(items))
	for _, item := range items {
		if key := Normalize(item); key != "" {
			cart[key] = struct{}{}
		}
	}
	return cart
}
