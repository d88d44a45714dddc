// Package metrics holds the Prometheus collectors of the movie catalog API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moviecatalog_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "moviecatalog_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	loginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moviecatalog_logins_total",
		Help: "Login attempts by path (admin, user) and result",
	}, []string{"path", "result"})

	auditEntriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moviecatalog_audit_entries_total",
		Help: "Audit entries written, by action and whether the event reached the broker",
	}, []string{"action", "published"})
)

// ObserveHTTPRequest records one served request.  route is the registered
// path pattern, never the raw URL.
func ObserveHTTPRequest(method, route string, status int, d time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// ObserveLogin counts a login attempt.
func ObserveLogin(path string, ok bool) {
	result := "failure"
	if ok {
		result = "success"
	}
	loginsTotal.WithLabelValues(path, result).Inc()
}

// ObserveAuditEntry counts a stored audit entry.
func ObserveAuditEntry(action string, published bool) {
	auditEntriesTotal.WithLabelValues(action, strconv.FormatBool(published)).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
