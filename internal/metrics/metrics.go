// Package metrics exposes Prometheus collectors for the panel core.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles all collectors. A nil *Metrics is valid and records
// nothing, so instrumentation stays optional in tests.
type Metrics struct {
	registry *prometheus.Registry

	cacheHits          *prometheus.CounterVec
	cacheMisses        *prometheus.CounterVec
	cacheFetchErrors   *prometheus.CounterVec
	cacheInvalidations *prometheus.CounterVec
	cacheDiscarded     prometheus.Counter

	mutations *prometheus.CounterVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	httpInFlight prometheus.Gauge
}

// New creates and registers all collectors on a private registry.
func New(namespace string) *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Cache reads served without a fetch, by key family",
		}, []string{"family"}),
		cacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Cache reads that triggered a fetch, by key family",
		}, []string{"family"}),
		cacheFetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_fetch_errors_total",
			Help:      "Failed fetches, by key family",
		}, []string{"family"}),
		cacheInvalidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_invalidations_total",
			Help:      "Invalidation events, by key family",
		}, []string{"family"}),
		cacheDiscarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_discarded_responses_total",
			Help:      "Fetch responses discarded by generation fencing",
		}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mutations_total",
			Help:      "Mutation outcomes, by action and status",
		}, []string{"action", "status"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Gateway HTTP requests",
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Gateway HTTP request duration",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Gateway HTTP requests currently being served",
		}),
	}

	registry.MustRegister(
		m.cacheHits, m.cacheMisses, m.cacheFetchErrors, m.cacheInvalidations,
		m.cacheDiscarded, m.mutations, m.httpRequests, m.httpDuration, m.httpInFlight,
	)
	return m
}

// Handler serves the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordCacheHit counts a read served from the cache.
func (m *Metrics) RecordCacheHit(family string) {
	if m == nil {
		return
	}
	m.cacheHits.WithLabelValues(family).Inc()
}

// RecordCacheMiss counts a read that triggered a fetch.
func (m *Metrics) RecordCacheMiss(family string) {
	if m == nil {
		return
	}
	m.cacheMisses.WithLabelValues(family).Inc()
}

// RecordFetchError counts a failed fetch.
func (m *Metrics) RecordFetchError(family string) {
	if m == nil {
		return
	}
	m.cacheFetchErrors.WithLabelValues(family).Inc()
}

// RecordInvalidation counts an invalidation event.
func (m *Metrics) RecordInvalidation(family string) {
	if m == nil {
		return
	}
	m.cacheInvalidations.WithLabelValues(family).Inc()
}

// RecordDiscardedResponse counts a response dropped by generation fencing.
func (m *Metrics) RecordDiscardedResponse() {
	if m == nil {
		return
	}
	m.cacheDiscarded.Inc()
}

// RecordMutation counts a settled mutation.
func (m *Metrics) RecordMutation(action, status string) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(action, status).Inc()
}

// RecordHTTPRequest counts a completed gateway request.
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// IncrementInFlight tracks a request starting.
func (m *Metrics) IncrementInFlight() {
	if m == nil {
		return
	}
	m.httpInFlight.Inc()
}

// DecrementInFlight tracks a request finishing.
func (m *Metrics) DecrementInFlight() {
	if m == nil {
		return
	}
	m.httpInFlight.Dec()
}
