// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Created: October 2025
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package metrics implements Metrics & Health (C9): Prometheus
// instrumentation plus per-component health aggregation.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds every Prometheus collector the service reports, registered
// once at construction (never at package init, so tests can build
// independent registries).
type Metrics struct {
	SearchesTotal       *prometheus.CounterVec
	ResponseTime        prometheus.Histogram
	TokenizationLatency *prometheus.HistogramVec
	EngineFailures      *prometheus.CounterVec
	InFlightSearches    prometheus.Gauge
	FallbackUsedTotal   prometheus.Counter
	DictionarySize      prometheus.Gauge
	LastReloadTimestamp prometheus.Gauge
	CacheHitsTotal      prometheus.Counter
	CacheMissesTotal    prometheus.Counter

	// InFlight is the authoritative concurrent-in-flight-search count: a
	// ShardedCounter takes the increment/decrement on every request so
	// that hot-path contention never lands on the exported Gauge itself.
	// InFlightSearches.Set is synced from InFlight.Load on each change.
	InFlight *ShardedCounter
}

// New constructs and registers the full metric set against reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SearchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "searchproxy_searches_total",
			Help: "Total searches processed, labeled by outcome.",
		}, []string{"outcome"}),
		ResponseTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "searchproxy_response_time_seconds",
			Help:    "End-to-end search request latency.",
			Buckets: prometheus.DefBuckets,
		}),
		TokenizationLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "searchproxy_tokenization_latency_seconds",
			Help:    "Per-engine tokenization latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"engine"}),
		EngineFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "searchproxy_engine_failures_total",
			Help: "Per-engine tokenization failure count.",
		}, []string{"engine"}),
		InFlightSearches: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "searchproxy_inflight_searches",
			Help: "Concurrent in-flight search requests.",
		}),
		FallbackUsedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "searchproxy_fallback_used_total",
			Help: "Total requests that fell back to a degraded response path.",
		}),
		DictionarySize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "searchproxy_dictionary_size",
			Help: "Number of recognized compound words in the current dictionary.",
		}),
		LastReloadTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "searchproxy_dictionary_last_reload_timestamp_seconds",
			Help: "Unix timestamp of the last successful dictionary reload.",
		}),
		CacheHitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "searchproxy_cache_hits_total",
			Help: "Total result-cache hits.",
		}),
		CacheMissesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "searchproxy_cache_misses_total",
			Help: "Total result-cache misses.",
		}),
		InFlight: NewShardedCounter(),
	}
	reg.MustRegister(
		m.SearchesTotal, m.ResponseTime, m.TokenizationLatency, m.EngineFailures,
		m.InFlightSearches, m.FallbackUsedTotal, m.DictionarySize,
		m.LastReloadTimestamp, m.CacheHitsTotal, m.CacheMissesTotal,
	)
	return m
}

// BeginSearch marks one more search in flight and returns a func that marks
// it finished; callers defer the returned func. The Gauge is synced from
// the ShardedCounter's eventually-consistent total on both ends.
func (m *Metrics) BeginSearch() func() {
	m.InFlight.Add(1)
	m.InFlightSearches.Set(float64(m.InFlight.Load()))
	return func() {
		m.InFlight.Add(-1)
		m.InFlightSearches.Set(float64(m.InFlight.Load()))
	}
}

// ObserveSearch records the outcome and latency of one completed request.
func (m *Metrics) ObserveSearch(outcome string, d time.Duration, fallbackUsed bool) {
	m.SearchesTotal.WithLabelValues(outcome).Inc()
	m.ResponseTime.Observe(d.Seconds())
	if fallbackUsed {
		m.FallbackUsedTotal.Inc()
	}
}

// ObserveTokenization records one engine invocation's latency and outcome.
func (m *Metrics) ObserveTokenization(engine string, d time.Duration, failed bool) {
	m.TokenizationLatency.WithLabelValues(engine).Observe(d.Seconds())
	if failed {
		m.EngineFailures.WithLabelValues(engine).Inc()
	}
}
