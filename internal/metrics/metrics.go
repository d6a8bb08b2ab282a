// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Kindred Contributors

// Package metrics holds the Prometheus collectors exported at /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the registry every kindred collector is registered with.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

// Cache result labels.
const (
	ResultHit   = "hit"
	ResultMiss  = "miss"
	ResultError = "error"
	ResultOK    = "ok"
)

var (
	// CacheRequests counts profile cache operations.
	CacheRequests = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kindred_cache_requests_total",
			Help: "Profile cache operations by operation and result",
		},
		[]string{"op", "result"}, // op: get, put, invalidate
	)

	// CacheTasks counts post-commit cache maintenance tasks.
	CacheTasks = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kindred_cache_tasks_total",
			Help: "Background cache maintenance tasks by kind and result",
		},
		[]string{"kind", "result"},
	)

	// CacheBreakerState is 0 when closed, 1 when half-open, 2 when open.
	CacheBreakerState = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "kindred_cache_breaker_state",
			Help: "Cache circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)

	// MatchCandidates observes how many candidates each match request scanned.
	MatchCandidates = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "kindred_match_candidates",
			Help:    "Candidates scanned per match request",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		},
	)

	// MatchDuration observes end-to-end match latency.
	MatchDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "kindred_match_duration_seconds",
			Help:    "Duration of match requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Handler serves the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
