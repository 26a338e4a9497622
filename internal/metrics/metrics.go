// Basketd - Market Basket Recommendation Service
// Copyright 2026 Basketd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/basketd/basketd

// Package metrics provides Prometheus instrumentation for the API surface,
// the recommendation engine, and the model lifecycle.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Recommendation Engine Metrics
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendations_total",
			Help: "Total number of recommendation queries by scoring path",
		},
		[]string{"source"}, // "rules", "cooccurrence", "none"
	)

	RecommendationLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommendation_duration_seconds",
			Help:    "Recommendation scoring duration in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
	)

	RecommendationItems = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommendation_items_returned",
			Help:    "Number of items returned per recommendation query",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
		},
	)

	ResponseCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "response_cache_hits_total",
			Help: "Total number of recommendation response cache hits",
		},
	)

	ResponseCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "response_cache_misses_total",
			Help: "Total number of recommendation response cache misses",
		},
	)

	// Model Lifecycle Metrics
	ModelVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "model_version",
			Help: "Version of the currently published model",
		},
	)

	ModelRules = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "model_rules",
			Help: "Number of association rules in the published model",
		},
	)

	ModelPairCounts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "model_pair_counts",
			Help: "Number of pair count entries in the published model",
		},
	)

	ModelReloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "model_reloads_total",
			Help: "Total number of model reload attempts",
		},
		[]string{"result"}, // "success", "failure"
	)

	ModelLastLoadTime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "model_last_load_timestamp_seconds",
			Help: "Unix timestamp of the last successful model load",
		},
	)
)

// RecordAPIRequest records metrics for a completed API request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordRecommendation records metrics for one recommendation query.
func RecordRecommendation(source string, items int, duration time.Duration, cacheHit bool) {
	RecommendationsTotal.WithLabelValues(source).Inc()
	RecommendationLatency.Observe(duration.Seconds())
	RecommendationItems.Observe(float64(items))
	if cacheHit {
		ResponseCacheHits.Inc()
	} else {
		ResponseCacheMisses.Inc()
	}
}

// RecordModelLoad updates model gauges after a successful load.
func RecordModelLoad(version, rules, pairCounts int) {
	ModelVersion.Set(float64(version))
	ModelRules.Set(float64(rules))
	ModelPairCounts.Set(float64(pairCounts))
	ModelReloadsTotal.WithLabelValues("success").Inc()
	ModelLastLoadTime.SetToCurrentTime()
}

// RecordModelLoadFailure counts a failed model load attempt.
func RecordModelLoadFailure() {
	ModelReloadsTotal.WithLabelValues("failure").Inc()
}

// TrackActiveRequest tracks active request count for in-flight monitoring.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
