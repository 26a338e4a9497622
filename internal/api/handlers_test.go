// Basketd - Market Basket Recommendation Service
// Copyright 2026 Basketd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/basketd/basketd

package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/basketd/basketd/internal/config"
	"github.com/basketd/basketd/internal/model"
	"github.com/basketd/basketd/internal/recommend"
)

const testExport = `{
	"rules": [
		{
			"antecedents": ["bread"],
			"consequents": ["butter"],
			"confidence": 0.8,
			"lift": 2.0,
			"support": 0.1
		}
	],
	"products": ["bread", "butter", "milk", "eggs", "jam"],
	"item_counts": {"milk": 10, "eggs": 5},
	"pair_counts": [{"a": "milk", "b": "eggs", "count": 4}]
}`

// envelope mirrors APIResponse with a raw payload for per-test decoding.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
	Meta    *APIMeta        `json:"meta"`
}

type testServer struct {
	handler http.Handler
	manager *model.Manager
	engine  *recommend.Engine
	path    string
}

func newTestServer(t *testing.T, loadModel bool) *testServer {
	t.Helper()

	engine, err := recommend.NewEngine(nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	path := filepath.Join(t.TempDir(), "model.json")
	if err := os.WriteFile(path, []byte(testExport), 0o600); err != nil {
		t.Fatalf("write export: %v", err)
	}

	manager := model.NewManager(path, engine, nil, zerolog.Nop())
	if loadModel {
		if err := manager.Load(context.Background()); err != nil {
			t.Fatalf("Load() error = %v", err)
		}
	}

	apiCfg := config.APIConfig{
		CORSOrigins:     []string{"*"},
		DefaultPageSize: 2,
		MaxPageSize:     3,
		ReloadPerMinute: 0, // throttle covered separately
	}
	handler := NewHandler(engine, manager, apiCfg)
	return &testServer{
		handler: NewRouter(handler, apiCfg).Setup(),
		manager: manager,
		engine:  engine,
		path:    path,
	}
}

func (ts *testServer) do(t *testing.T, method, target string, body []byte) (*httptest.ResponseRecorder, *envelope) {
	t.Helper()

	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode envelope: %v\nbody: %s", err, rec.Body.String())
		}
	}
	return rec, &env
}

func TestRecommendationsEndpoint(t *testing.T) {
	ts := newTestServer(t, true)

	body := []byte(`{"cart_items": ["Bread (SKU: 001)"]}`)
	rec, env := ts.do(t, http.MethodPost, "/api/v1/recommendations", body)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.String())
	}
	if !env.Success {
		t.Fatalf("success = false: %+v", env.Error)
	}

	var resp recommend.Response
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if len(resp.Items) != 1 {
		t.Fatalf("len(Items) = %d, want 1", len(resp.Items))
	}
	rec0 := resp.Items[0]
	if rec0.Product != "butter" || rec0.Score != 1.02 {
		t.Errorf("item = %+v, want butter at 1.02", rec0)
	}
	if rec0.Lift == nil || *rec0.Lift != 2.0 {
		t.Errorf("Lift = %v, want 2.0", rec0.Lift)
	}
	if resp.Metadata.Source != recommend.SourceRules {
		t.Errorf("Source = %q, want rules", resp.Metadata.Source)
	}
}

func TestRecommendationsFallbackSerializesNullLift(t *testing.T) {
	ts := newTestServer(t, true)

	body := []byte(`{"cart_items": ["milk"]}`)
	rec, env := ts.do(t, http.MethodPost, "/api/v1/recommendations", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	// Inspect raw JSON: the fallback path must serialize lift as null.
	var raw struct {
		Items []map[string]json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(env.Data, &raw); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if len(raw.Items) != 1 {
		t.Fatalf("len(items) = %d, want 1", len(raw.Items))
	}
	if got := string(raw.Items[0]["lift"]); got != "null" {
		t.Errorf("lift = %s, want null", got)
	}
	if got := string(raw.Items[0]["source"]); got != `"cooccurrence"` {
		t.Errorf("source = %s, want cooccurrence", got)
	}
}

func TestRecommendationsValidation(t *testing.T) {
	ts := newTestServer(t, true)

	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "not json", body: `{`, want: http.StatusBadRequest},
		{name: "missing cart", body: `{}`, want: http.StatusBadRequest},
		{name: "empty cart", body: `{"cart_items": []}`, want: http.StatusBadRequest},
		{name: "negative top_n", body: `{"cart_items": ["a"], "top_n": -1}`, want: http.StatusBadRequest},
		{name: "confidence above one", body: `{"cart_items": ["a"], "min_confidence": 1.5}`, want: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := ts.do(t, http.MethodPost, "/api/v1/recommendations", []byte(tt.body))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			if env.Success {
				t.Error("success = true for invalid request")
			}
		})
	}
}

func TestEngineConfigRoundTrip(t *testing.T) {
	ts := newTestServer(t, true)

	rec, env := ts.do(t, http.MethodGet, "/api/v1/recommendations/config", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET config status = %d", rec.Code)
	}
	var cfg recommend.Config
	if err := json.Unmarshal(env.Data, &cfg); err != nil {
		t.Fatalf("decode config: %v", err)
	}
	if cfg.MinConfidence != 0.3 {
		t.Errorf("MinConfidence = %g, want default 0.3", cfg.MinConfidence)
	}

	cfg.MinConfidence = 0.6
	body, _ := json.Marshal(&cfg)
	rec, env = ts.do(t, http.MethodPut, "/api/v1/recommendations/config", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT config status = %d: %s", rec.Code, rec.Body.String())
	}
	var updated recommend.Config
	if err := json.Unmarshal(env.Data, &updated); err != nil {
		t.Fatalf("decode updated config: %v", err)
	}
	if updated.MinConfidence != 0.6 {
		t.Errorf("MinConfidence = %g, want 0.6", updated.MinConfidence)
	}

	// Invalid config is rejected and leaves the active one untouched.
	cfg.MinConfidence = 3
	body, _ = json.Marshal(&cfg)
	rec, _ = ts.do(t, http.MethodPut, "/api/v1/recommendations/config", body)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("PUT invalid config status = %d, want 400", rec.Code)
	}
	if got := ts.engine.GetConfig().MinConfidence; got != 0.6 {
		t.Errorf("active MinConfidence = %g, want 0.6", got)
	}
}

func TestModelSummary(t *testing.T) {
	ts := newTestServer(t, true)

	rec, env := ts.do(t, http.MethodGet, "/api/v1/model", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var summary struct {
		Loaded     bool `json:"loaded"`
		Version    int  `json:"version"`
		RuleCount  int  `json:"rule_count"`
		PairCounts int  `json:"pair_counts"`
	}
	if err := json.Unmarshal(env.Data, &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if !summary.Loaded || summary.Version != 1 || summary.RuleCount != 1 || summary.PairCounts != 1 {
		t.Errorf("summary = %+v", summary)
	}
}

func TestModelSummaryUnloaded(t *testing.T) {
	ts := newTestServer(t, false)

	rec, env := ts.do(t, http.MethodGet, "/api/v1/model", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var summary struct {
		Loaded bool `json:"loaded"`
	}
	if err := json.Unmarshal(env.Data, &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.Loaded {
		t.Error("Loaded = true without a model")
	}
}

func TestModelProductsPagination(t *testing.T) {
	ts := newTestServer(t, true)

	// Default page size is 2 over a 5 product catalog.
	rec, env := ts.do(t, http.MethodGet, "/api/v1/model/products", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var page []string
	if err := json.Unmarshal(env.Data, &page); err != nil {
		t.Fatalf("decode products: %v", err)
	}
	if len(page) != 2 || page[0] != "bread" {
		t.Errorf("page = %v, want first two catalog entries", page)
	}
	p := env.Meta.Pagination
	if p == nil || p.Total != 5 || !p.HasMore {
		t.Errorf("pagination = %+v", p)
	}

	// Limit above the max is clamped to 3.
	rec, env = ts.do(t, http.MethodGet, "/api/v1/model/products?limit=100&offset=3", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if err := json.Unmarshal(env.Data, &page); err != nil {
		t.Fatalf("decode products: %v", err)
	}
	if len(page) != 2 || page[0] != "eggs" || page[1] != "jam" {
		t.Errorf("page = %v, want tail of catalog", page)
	}
	if env.Meta.Pagination.HasMore {
		t.Error("HasMore = true on final page")
	}
}

func TestModelReload(t *testing.T) {
	ts := newTestServer(t, true)

	rec, env := ts.do(t, http.MethodPost, "/api/v1/model/reload", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var result struct {
		Version int `json:"version"`
	}
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.Version != 2 {
		t.Errorf("Version = %d, want 2 after reload", result.Version)
	}

	// Corrupt export makes reload fail without dropping the live model.
	if err := os.WriteFile(ts.path, []byte(`{broken`), 0o600); err != nil {
		t.Fatalf("write export: %v", err)
	}
	rec, env = ts.do(t, http.MethodPost, "/api/v1/model/reload", nil)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if env.Error == nil || env.Error.Code != ErrCodeModelError {
		t.Errorf("error = %+v, want MODEL_ERROR", env.Error)
	}
	if ts.engine.Model() == nil || ts.engine.Model().Version != 2 {
		t.Error("live model disturbed by failed reload")
	}
}

func TestModelReloadThrottle(t *testing.T) {
	engine, err := recommend.NewEngine(nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	path := filepath.Join(t.TempDir(), "model.json")
	if err := os.WriteFile(path, []byte(testExport), 0o600); err != nil {
		t.Fatalf("write export: %v", err)
	}
	manager := model.NewManager(path, engine, nil, zerolog.Nop())

	apiCfg := config.APIConfig{
		DefaultPageSize: 50,
		MaxPageSize:     500,
		ReloadPerMinute: 1, // burst of one, then throttled
	}
	ts := &testServer{handler: NewRouter(NewHandler(engine, manager, apiCfg), apiCfg).Setup()}

	rec, _ := ts.do(t, http.MethodPost, "/api/v1/model/reload", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("first reload status = %d", rec.Code)
	}
	rec, env := ts.do(t, http.MethodPost, "/api/v1/model/reload", nil)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("second reload status = %d, want 429", rec.Code)
	}
	if env.Error == nil || env.Error.Code != ErrCodeTooManyRequests {
		t.Errorf("error = %+v, want TOO_MANY_REQUESTS", env.Error)
	}
}

func TestHealthEndpoints(t *testing.T) {
	ts := newTestServer(t, true)

	rec, env := ts.do(t, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("health status = %d", rec.Code)
	}
	var health struct {
		Status      string `json:"status"`
		ModelLoaded bool   `json:"model_loaded"`
	}
	if err := json.Unmarshal(env.Data, &health); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if health.Status != "healthy" || !health.ModelLoaded {
		t.Errorf("health = %+v", health)
	}

	rec, _ = ts.do(t, http.MethodGet, "/health/live", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("live status = %d", rec.Code)
	}
	rec, _ = ts.do(t, http.MethodGet, "/health/ready", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("ready status = %d", rec.Code)
	}
}

func TestHealthDegradedWithoutModel(t *testing.T) {
	ts := newTestServer(t, false)

	rec, env := ts.do(t, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("health status = %d", rec.Code)
	}
	var health struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(env.Data, &health); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if health.Status != "degraded" {
		t.Errorf("Status = %q, want degraded", health.Status)
	}

	rec, _ = ts.do(t, http.MethodGet, "/health/ready", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("ready status = %d, want 503", rec.Code)
	}
}

func TestRequestIDHeader(t *testing.T) {
	ts := newTestServer(t, true)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/model", nil)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header not set")
	}

	// A caller-supplied ID is echoed back and reflected in the envelope.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/model", nil)
	req.Header.Set("X-Request-ID", "trace-me")
	rec = httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "trace-me" {
		t.Errorf("X-Request-ID = %q, want trace-me", got)
	}
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if env.Meta == nil || env.Meta.RequestID != "trace-me" {
		t.Errorf("meta request id = %+v, want trace-me", env.Meta)
	}
}
