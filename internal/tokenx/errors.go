package tokenx

import (
	"fmt"
	"net/http"
)

// UpstreamError signals a failed identity-provider dependency: a network
// failure or a non-2xx token response. The correlation id ties the failure
// to provider-side logs; callers map this to a failed-dependency response.
type UpstreamError struct {
	// Source tags which upstream system failed
	Source string
	// StatusCode is the HTTP status, or 0 for network failures
	StatusCode int
	// CorrelationID is a stable id for cross-service tracing
	CorrelationID string
	// Body carries the raw error body for 400 responses only; other
	// statuses suppress it to avoid echoing unrelated operational detail
	Body string
	// Err is the underlying transport error, if any
	Err error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s request failed (correlation id %s): %v", e.Source, e.CorrelationID, e.Err)
	}
	if e.StatusCode == http.StatusBadRequest && e.Body != "" {
		return fmt.Sprintf("%s returned status %d (correlation id %s): %s", e.Source, e.StatusCode, e.CorrelationID, e.Body)
	}
	return fmt.Sprintf("%s returned status %d (correlation id %s)", e.Source, e.StatusCode, e.CorrelationID)
}

func (e *UpstreamError) Unwrap() error { return e.Err }
