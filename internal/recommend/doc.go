// Basketd - Market Basket Recommendation Service
// Copyright 2026 Basketd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/basketd/basketd

// Package recommend implements the market basket recommendation engine.
//
// The engine scores candidate products for a shopping cart using two paths:
//
//  1. Rule-based matching: pre-mined association rules whose antecedent set
//     is fully contained in the cart contribute their consequents, aggregated
//     per product (max confidence, max lift, summed support).
//  2. Co-occurrence fallback: when no rule fires, raw pairwise transaction
//     counts produce a confidence-like score per candidate.
//
// Rule-based results always win: the fallback is never consulted when any
// rule aggregation exists, even if it yields fewer than the requested number
// of recommendations.
//
// Product names are compared via Normalize, which strips SKU annotations,
// collapses whitespace, and lowercases. Output records carry the original
// (un-normalized) product text for display.
//
// The engine holds its model behind an atomic pointer and never mutates it,
// so queries are lock-free and safe for concurrent use; model swaps happen
// atomically on reload. Scoring is a pure, bounded computation over
// in-memory tables and cannot fail: a query always returns a (possibly
// empty) ranked list.
package recommend
