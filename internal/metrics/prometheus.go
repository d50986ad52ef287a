package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusMetrics implements Metrics using Prometheus
type PrometheusMetrics struct {
	votesTotal       *prometheus.CounterVec
	decisionsTotal   *prometheus.CounterVec
	decisionDuration prometheus.Histogram

	cacheHitsTotal   *prometheus.CounterVec
	cacheMissesTotal *prometheus.CounterVec

	tokenRequestsTotal   *prometheus.CounterVec
	tokenRequestDuration *prometheus.HistogramVec

	registry *prometheus.Registry
}

// NewPrometheusMetrics creates a new Prometheus metrics instance
func NewPrometheusMetrics(namespace string) *PrometheusMetrics {
	registry := prometheus.NewRegistry()

	// Register standard Go metrics
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	votesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "votes_total",
			Help:      "Total number of handler votes by handler and outcome",
		},
		[]string{"handler", "vote"},
	)

	decisionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decisions_total",
			Help:      "Total number of aggregated authorization decisions",
		},
		[]string{"outcome"},
	)

	// Decision latency: pure in-memory evaluation, sub-millisecond expected
	decisionDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "decision_duration_microseconds",
			Help:      "Authorization decision latency in microseconds",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 5000},
		},
	)

	cacheHitsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "token_cache",
			Name:      "hits_total",
			Help:      "Total number of token cache hits by token kind",
		},
		[]string{"kind"},
	)

	cacheMissesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "token_cache",
			Name:      "misses_total",
			Help:      "Total number of token cache misses by token kind",
		},
		[]string{"kind"},
	)

	tokenRequestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "token_provider",
			Name:      "requests_total",
			Help:      "Total number of identity-provider token requests by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	tokenRequestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "token_provider",
			Name:      "request_duration_seconds",
			Help:      "Identity-provider token request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	registry.MustRegister(
		votesTotal,
		decisionsTotal,
		decisionDuration,
		cacheHitsTotal,
		cacheMissesTotal,
		tokenRequestsTotal,
		tokenRequestDuration,
	)

	return &PrometheusMetrics{
		votesTotal:           votesTotal,
		decisionsTotal:       decisionsTotal,
		decisionDuration:     decisionDuration,
		cacheHitsTotal:       cacheHitsTotal,
		cacheMissesTotal:     cacheMissesTotal,
		tokenRequestsTotal:   tokenRequestsTotal,
		tokenRequestDuration: tokenRequestDuration,
		registry:             registry,
	}
}

// RecordVote records a single handler vote
func (m *PrometheusMetrics) RecordVote(handler string, vote string) {
	m.votesTotal.WithLabelValues(handler, vote).Inc()
}

// RecordDecision records an aggregated decision and its latency
func (m *PrometheusMetrics) RecordDecision(allowed bool, duration time.Duration) {
	outcome := "deny"
	if allowed {
		outcome = "allow"
	}
	m.decisionsTotal.WithLabelValues(outcome).Inc()
	m.decisionDuration.Observe(float64(duration.Microseconds()))
}

// RecordCacheHit records a token cache hit
func (m *PrometheusMetrics) RecordCacheHit(kind string) {
	m.cacheHitsTotal.WithLabelValues(kind).Inc()
}

// RecordCacheMiss records a token cache miss
func (m *PrometheusMetrics) RecordCacheMiss(kind string) {
	m.cacheMissesTotal.WithLabelValues(kind).Inc()
}

// RecordTokenRequest records an identity-provider round trip
func (m *PrometheusMetrics) RecordTokenRequest(kind string, outcome string, duration time.Duration) {
	m.tokenRequestsTotal.WithLabelValues(kind, outcome).Inc()
	m.tokenRequestDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// HTTPHandler returns the Prometheus scrape handler
func (m *PrometheusMetrics) HTTPHandler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
