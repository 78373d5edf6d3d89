// Package metrics Prometheus 指标
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Result labels for authentication metrics.
const (
	ResultSuccess  = "success"
	ResultRejected = "rejected"
	ResultError    = "error"
)

// Action labels for authentication metrics.
const (
	ActionRegister       = "register"
	ActionLogin          = "login"
	ActionSession        = "session"
	ActionChangePassword = "change_password"
)

// Metrics holds the collectors of one registry. A nil *Metrics records
// nothing, so callers never need to check whether metrics are enabled.
type Metrics struct {
	requests     *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	authAttempts *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
// Panics if registration fails (following prometheus convention).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "user_portal_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "user_portal_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		authAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "user_portal_auth_attempts_total",
				Help: "Authentication attempts by action and result",
			},
			[]string{"action", "result"},
		),
	}
	reg.MustRegister(m.requests, m.duration, m.authAttempts)
	return m
}

// RecordRequest counts a finished request and observes its latency.
// route is the registered route pattern, not the raw path.
func (m *Metrics) RecordRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// RecordAuth counts one authentication attempt.
func (m *Metrics) RecordAuth(action, result string) {
	if m == nil {
		return
	}
	m.authAttempts.WithLabelValues(action, result).Inc()
}
