// Basketd - Market Basket Recommendation Service
// Copyright 2026 Basketd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/basketd/basketd

package recommend

import (
	"math"
	"time"
)

// Source identifies which scoring path produced a recommendation.
type Source string

const (
	// SourceRules indicates the recommendation came from association rules.
	SourceRules Source = "rules"
	// SourceCooccurrence indicates the recommendation came from the
	// pairwise co-occurrence fallback.
	SourceCooccurrence Source = "cooccurrence"
	// SourceNone indicates no path produced any recommendation.
	SourceNone Source = "none"
)

// Rule is a pre-mined association rule. Rules are loaded once and read-only
// for the lifetime of the model that holds them.
type Rule struct {
	// Antecedents is the "if you have these items" side of the rule.
	Antecedents []string `json:"antecedents" validate:"required,min=1,dive,required"`

	// Consequents is the "then recommend these items" side of the rule.
	Consequents []string `json:"consequents" validate:"required,min=1,dive,required"`

	// Confidence is P(consequents | antecedents) estimated from
	// historical transactions, in [0, 1].
	Confidence float64 `json:"confidence" validate:"gte=0,lte=1"`

	// Lift is the ratio of observed to expected co-occurrence under
	// independence. Non-negative.
	Lift float64 `json:"lift" validate:"gte=0"`

	// Support is the fraction of transactions containing the rule's
	// itemset, in [0, 1].
	Support float64 `json:"support" validate:"gte=0,lte=1"`
}

// Itemset is a frequent itemset from the upstream miner. The engine does not
// score with itemsets; they are carried for model introspection only.
type Itemset struct {
	Items   []string `json:"items" validate:"required,min=1,dive,required"`
	Support float64  `json:"support" validate:"gte=0,lte=1"`
}

// PairCount records how many historical transactions contained both products
// of an unordered pair.
type PairCount struct {
	A     string `json:"a" validate:"required"`
	B     string `json:"b" validate:"required"`
	Count int    `json:"count" validate:"gte=0"`
}

// Recommendation is a single scored candidate product. Records are ephemeral,
// produced per query; they are flat key/value structures suitable for
// tabular rendering.
type Recommendation struct {
	// Product is the display text, preserving original casing and SKU
	// annotation where the rule or count data carried them.
	Product string `json:"product"`

	// Confidence is the aggregated rule confidence (rules path) or the
	// confidence-like pair ratio (fallback path), rounded to 3 decimals.
	Confidence float64 `json:"confidence"`

	// Lift is the aggregated rule lift rounded to 3 decimals. It is nil on
	// the fallback path: "no lift computed" must serialize as null, never
	// as zero.
	Lift *float64 `json:"lift"`

	// Support is the summed rule support (rules path) or the support-like
	// share of total occurrences (fallback path), rounded to 4 decimals.
	Support float64 `json:"support"`

	// Score is the combined ranking score, rounded to 3 decimals.
	Score float64 `json:"score"`

	// Frequency is the number of contributing rules (rules path) or the
	// candidate's own occurrence count (fallback path).
	Frequency int `json:"frequency"`

	// Source is the scoring path that produced this record.
	Source Source `json:"source"`
}

// Request describes a single recommendation query.
type Request struct {
	// CartItems is the free-text contents of the cart. Duplicates, casing
	// and SKU variants collapse during normalization; malformed entries
	// are silently dropped.
	CartItems []string `json:"cart_items"`

	// TopN bounds the result length. Defaults to Config.DefaultTopN when
	// zero and is clamped to Config.MaxTopN.
	TopN int `json:"top_n,omitempty"`

	// MinConfidence is the rule confidence threshold. Nil means "use the
	// configured default"; an explicit zero admits every rule.
	MinConfidence *float64 `json:"min_confidence,omitempty"`

	// MinLift is the rule lift threshold. Nil means "use the configured
	// default".
	MinLift *float64 `json:"min_lift,omitempty"`

	// RequestID is a unique identifier for tracing. Generated if empty.
	RequestID string `json:"request_id,omitempty"`
}

// Response is the result of a recommendation query.
type Response struct {
	// Items is the ranked recommendation list, sorted by descending score
	// and truncated to the requested TopN.
	Items []Recommendation `json:"items"`

	// Metadata contains timing and diagnostic information.
	Metadata ResponseMetadata `json:"metadata"`
}

// ResponseMetadata contains timing and diagnostic information for a query.
type ResponseMetadata struct {
	// RequestID is the unique request identifier.
	RequestID string `json:"request_id"`

	// Source is the path that produced the items: rules, cooccurrence,
	// or none when the query yielded nothing.
	Source Source `json:"source"`

	// CartSize is the number of distinct normalized cart entries.
	CartSize int `json:"cart_size"`

	// TopN is the resolved result bound.
	TopN int `json:"top_n"`

	// MinConfidence is the resolved confidence threshold.
	MinConfidence float64 `json:"min_confidence"`

	// MinLift is the resolved lift threshold.
	MinLift float64 `json:"min_lift"`

	// LatencyMS is the query latency in milliseconds.
	LatencyMS int64 `json:"latency_ms"`

	// CacheHit indicates whether the result was served from cache.
	CacheHit bool `json:"cache_hit"`

	// ModelVersion is the version of the loaded model.
	ModelVersion int `json:"model_version"`

	// Timestamp is when the response was generated.
	Timestamp time.Time `json:"timestamp"`
}

// EngineStats contains engine counters for observability.
type EngineStats struct {
	Requests    int64 `json:"requests"`
	CacheHits   int64 `json:"cache_hits"`
	CacheMisses int64 `json:"cache_misses"`
}

// roundTo rounds v to the given number of decimal places.
func roundTo(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}
