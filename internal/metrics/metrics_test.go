package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusMetricsExport(t *testing.T) {
	m := NewPrometheusMetrics("gateward")

	m.RecordVote("owned_resource", "grant")
	m.RecordVote("permission_client", "abstain")
	m.RecordDecision(true, 50*time.Microsecond)
	m.RecordDecision(false, 10*time.Microsecond)
	m.RecordCacheHit("no-exchange")
	m.RecordCacheMiss("exchange")
	m.RecordTokenRequest("exchange", "success", 20*time.Millisecond)
	m.RecordTokenRequest("no-exchange", "upstream_error", 5*time.Millisecond)

	rec := httptest.NewRecorder()
	m.HTTPHandler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	text := string(body)

	assert.Contains(t, text, `gateward_votes_total{handler="owned_resource",vote="grant"} 1`)
	assert.Contains(t, text, `gateward_decisions_total{outcome="allow"} 1`)
	assert.Contains(t, text, `gateward_token_cache_hits_total{kind="no-exchange"} 1`)
	assert.Contains(t, text, `gateward_token_provider_requests_total{kind="exchange",outcome="success"} 1`)
}

func TestNoOpMetrics(t *testing.T) {
	m := NewNoOpMetrics()

	// No-op calls must not panic
	m.RecordVote("owned_resource", "grant")
	m.RecordDecision(true, time.Microsecond)
	m.RecordCacheHit("exchange")
	m.RecordCacheMiss("exchange")
	m.RecordTokenRequest("exchange", "success", time.Millisecond)

	rec := httptest.NewRecorder()
	m.HTTPHandler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 200, rec.Code)

	body, _ := io.ReadAll(rec.Body)
	assert.True(t, strings.HasPrefix(string(body), "#"))
}
