package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics_Registered(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordRequest("GET", "/health", 200, 10*time.Millisecond)
	m.RecordAuth(ActionLogin, ResultSuccess)

	families, err := reg.Gather()
	require.NoError(t, err)

	registered := make(map[string]bool)
	for _, family := range families {
		registered[family.GetName()] = true
	}
	for _, name := range []string{
		"user_portal_http_requests_total",
		"user_portal_http_request_duration_seconds",
		"user_portal_auth_attempts_total",
	} {
		assert.True(t, registered[name], "metric %q should be registered", name)
	}
}

func TestRecordAuth(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordAuth(ActionLogin, ResultRejected)
	m.RecordAuth(ActionLogin, ResultRejected)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.authAttempts.WithLabelValues(ActionLogin, ResultRejected)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.authAttempts.WithLabelValues(ActionLogin, ResultSuccess)))
}

func TestRecordRequest(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordRequest("POST", "/api/auth/login", 401, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("POST", "/api/auth/login", "401")))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordRequest("GET", "/", 200, time.Second)
		m.RecordAuth(ActionSession, ResultError)
	})
}
