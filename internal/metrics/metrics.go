// Package metrics provides observability for the access-control core
package metrics

import (
	"net/http"
	"time"
)

// Metrics provides observability for authorization decisions and the
// token-exchange service
type Metrics interface {
	// Authorization metrics
	RecordVote(handler string, vote string)
	RecordDecision(allowed bool, duration time.Duration)

	// Token cache metrics
	RecordCacheHit(kind string)
	RecordCacheMiss(kind string)

	// Identity-provider metrics
	RecordTokenRequest(kind string, outcome string, duration time.Duration)

	// HTTP handler for Prometheus scraping
	HTTPHandler() http.Handler
}

// NoOpMetrics provides a no-op implementation for testing/disabled monitoring
type NoOpMetrics struct{}

// NewNoOpMetrics creates a new no-op metrics instance
func NewNoOpMetrics() *NoOpMetrics {
	return &NoOpMetrics{}
}

func (n *NoOpMetrics) RecordVote(handler string, vote string)                          {}
func (n *NoOpMetrics) RecordDecision(allowed bool, duration time.Duration)             {}
func (n *NoOpMetrics) RecordCacheHit(kind string)                                      {}
func (n *NoOpMetrics) RecordCacheMiss(kind string)                                     {}
func (n *NoOpMetrics) RecordTokenRequest(kind string, outcome string, duration time.Duration) {}

// HTTPHandler returns a no-op handler
func (n *NoOpMetrics) HTTPHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("# NoOp metrics - monitoring disabled\n"))
	})
}
