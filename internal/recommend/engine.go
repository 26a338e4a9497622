// Basketd - Market Basket Recommendation Service
// Copyright 2026 Basketd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/basketd/basketd

package recommend

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/basketd/basketd/internal/cache"
)

// Engine answers recommendation queries against an atomically-swappable
// model. It is safe for concurrent use: queries only read the model snapshot
// they loaded, and SetModel publishes a new snapshot without locking the
// query path.
type Engine struct {
	mu     sync.RWMutex // guards config
	config *Config

	logger zerolog.Logger
	model  atomic.Pointer[Model]

	responses *cache.LRU[*Response]

	requestCount atomic.Int64
	cacheHits    atomic.Int64
	cacheMisses  atomic.Int64
}

// NewEngine creates a recommendation engine with the given configuration.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Engine{
		config:    cfg,
		logger:    logger.With().Str("component", "recommend").Logger(),
		responses: cache.New[*Response](cfg.Cache.MaxEntries, cfg.Cache.TTL),
	}, nil
}

// SetModel publishes a new model snapshot. In-flight queries keep scoring
// against the snapshot they already loaded.
func (e *Engine) SetModel(m *Model) {
	e.model.Store(m)
	e.responses.Purge()

	if m != nil {
		e.logger.Info().
			Int("version", m.Version).
			Int("rules", m.RuleCount()).
			Int("itemsets", m.ItemsetCount()).
			Int("products", m.ProductCount()).
			Int("item_counts", len(m.ItemCounts)).
			Int("pair_counts", m.PairCountEntries()).
			Msg("model published")
	}
}

// Model returns the current model snapshot, or nil when none is loaded.
func (e *Engine) Model() *Model {
	return e.model.Load()
}

// Recommend produces a ranked recommendation list for the cart. Scoring is
// a pure, bounded computation: it cannot fail, and malformed cart entries
// degrade to an empty result rather than an error.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Recommend(req Request) *Response {
	start := time.Now()
	e.requestCount.Add(1)

	cfg := e.GetConfig()
	req = prepareRequest(req, cfg)
	minConfidence, minLift := resolveThresholds(req, cfg)

	logger := e.logger.With().
		Str("request_id", req.RequestID).
		Int("top_n", req.TopN).
		Logger()

	model := e.model.Load()
	cart := NormalizeCart(req.CartItems)

	if len(req.CartItems) == 0 || len(cart) == 0 || model == nil {
		logger.Debug().Int("raw_items", len(req.CartItems)).Msg("empty query")
		return e.buildResponse(req, nil, SourceNone, cart, model, minConfidence, minLift, start)
	}

	cacheKey := responseCacheKey(cart, req.TopN, minConfidence, minLift, model.Version)
	if cfg.Cache.Enabled {
		if cached, ok := e.responses.Get(cacheKey); ok {
			e.cacheHits.Add(1)
			logger.Debug().Msg("cache hit")
			return copyCachedResponse(cached, req.RequestID, start)
		}
		e.cacheMisses.Add(1)
	}

	items := recommendFromRules(model, cart, minConfidence, minLift, req.TopN)
	source := SourceRules
	if items == nil {
		items = recommendFromPairs(model, cart, req.TopN)
		source = SourceCooccurrence
	}
	if len(items) == 0 {
		items = nil
		source = SourceNone
	}

	resp := e.buildResponse(req, items, source, cart, model, minConfidence, minLift, start)
	if cfg.Cache.Enabled {
		e.responses.Add(cacheKey, resp)
	}

	logger.Debug().
		Int("cart_size", len(cart)).
		Int("returned", len(resp.Items)).
		Str("source", string(source)).
		Int64("latency_ms", resp.Metadata.LatencyMS).
		Msg("recommendation complete")

	return resp
}

// GetConfig returns a copy of the current configuration.
func (e *Engine) GetConfig() *Config {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.config.Clone()
}

// UpdateConfig replaces the engine configuration. Cached responses are
// discarded because thresholds participate in cache keys only after
// resolution against the configured defaults.
func (e *Engine) UpdateConfig(cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	e.mu.Lock()
	e.config = cfg.Clone()
	e.mu.Unlock()

	e.responses.Purge()
	e.logger.Info().
		Float64("min_confidence", cfg.MinConfidence).
		Float64("min_lift", cfg.MinLift).
		Int("default_top_n", cfg.DefaultTopN).
		Msg("configuration updated")
	return nil
}

// Stats returns cumulative engine counters.
func (e *Engine) Stats() EngineStats {
	return EngineStats{
		Requests:    e.requestCount.Load(),
		CacheHits:   e.cacheHits.Load(),
		CacheMisses: e.cacheMisses.Load(),
	}
}

// prepareRequest applies defaults and clamps, and generates a request ID if
// the caller did not supply one.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func prepareRequest(req Request, cfg *Config) Request {
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	if req.TopN <= 0 {
		req.TopN = cfg.DefaultTopN
	}
	if req.TopN > cfg.MaxTopN {
		req.TopN = cfg.MaxTopN
	}
	return req
}

// resolveThresholds maps nil thresholds to configured defaults. An explicit
// zero is respected, it is not the same as unset.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func resolveThresholds(req Request, cfg *Config) (minConfidence, minLift float64) {
	minConfidence = cfg.MinConfidence
	if req.MinConfidence != nil {
		minConfidence = *req.MinConfidence
	}
	minLift = cfg.MinLift
	if req.MinLift != nil {
		minLift = *req.MinLift
	}
	return minConfidence, minLift
}

// buildResponse assembles the final response. A nil item slice becomes an
// empty (never null) list.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) buildResponse(req Request, items []Recommendation, source Source, cart map[string]struct{}, model *Model, minConfidence, minLift float64, start time.Time) *Response {
	if items == nil {
		items = []Recommendation{}
	}
	version := 0
	if model != nil {
		version = model.Version
	}
	return &Response{
		Items: items,
		Metadata: ResponseMetadata{
			RequestID:     req.RequestID,
			Source:        source,
			CartSize:      len(cart),
			TopN:          req.TopN,
			MinConfidence: minConfidence,
			MinLift:       minLift,
			LatencyMS:     time.Since(start).Milliseconds(),
			ModelVersion:  version,
			Timestamp:     time.Now(),
		},
	}
}

// responseCacheKey builds a deterministic key from the normalized cart and
// the resolved query parameters. The model version is included so a reload
// implicitly invalidates all prior entries.
func responseCacheKey(cart map[string]struct{}, topN int, minConfidence, minLift float64, modelVersion int) string {
	keys := make([]string, 0, len(cart))
	for key := range cart {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return fmt.Sprintf("v%d:n%d:c%g:l%g:%s", modelVersion, topN, minConfidence, minLift, strings.Join(keys, "\x1f"))
}

// copyCachedResponse returns a fresh response around the cached item slice.
// Items are never mutated after construction, so sharing the slice is safe.
func copyCachedResponse(cached *Response, requestID string, start time.Time) *Response {
	meta := cached.Metadata
	meta.RequestID = requestID
	meta.CacheHit = true
	meta.LatencyMS = time.Since(start).Milliseconds()
	meta.Timestamp = time.Now()
	return &Response{
		Items:    cached.Items,
		Metadata: meta,
	}
}
