package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveLogin(t *testing.T) {
	before := testutil.ToFloat64(loginsTotal.WithLabelValues("user", "failure"))
	ObserveLogin("user", false)
	assert.Equal(t, before+1, testutil.ToFloat64(loginsTotal.WithLabelValues("user", "failure")))
}

func TestHandlerExposesCollectors(t *testing.T) {
	ObserveHTTPRequest(http.MethodGet, "/v1/movies", http.StatusOK, 3*time.Millisecond)
	ObserveAuditEntry("create", true)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `moviecatalog_http_requests_total{method="GET",route="/v1/movies",status="200"}`)
	assert.Contains(t, body, `moviecatalog_audit_entries_total{action="create",published="true"}`)
}
