package providers

import (
	"io"
	"net/http"
	"net/http/httptest"
	"reployer/internal/structures"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopMetrics_WhenDisabled(t *testing.T) {
	conf := &structures.Config{
		Metrics: structures.MetricsConfig{Enabled: false},
	}
	m := NewMetricsProvider(conf)
	_, ok := m.(*noopMetrics)
	assert.True(t, ok, "should return noopMetrics when disabled")

	// no-op methods must not panic
	m.IncRequestsTotal("/status", 200)
	m.ObserveRequestDuration("/status", time.Millisecond)
	m.IncCacheHits()
	m.IncCacheMisses()
	m.IncPolls("success")
	m.ObserveQueryDuration(time.Millisecond)
	m.SetPlayers(3)
	m.IncEvents("restart")
	m.IncHistoryWriteErrors()
	m.ObserveRotationDuration(time.Millisecond)
	m.SetStreamClients(1)

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestMetricsProvider_ExposesDomainMetrics(t *testing.T) {
	conf := &structures.Config{
		Metrics: structures.MetricsConfig{Enabled: true},
	}
	m := NewMetricsProvider(conf)
	_, ok := m.(*MetricsProvider)
	require.True(t, ok, "should return MetricsProvider when enabled")

	m.IncRequestsTotal("/status", 200)
	m.IncRequestsTotal("/status", 404)
	m.ObserveRequestDuration("/status", 5*time.Millisecond)
	m.IncPolls("success")
	m.IncPolls("failed")
	m.ObserveQueryDuration(20 * time.Millisecond)
	m.SetPlayers(7)
	m.IncEvents("map_change")
	m.IncHistoryWriteErrors()
	m.SetStreamClients(2)

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	body, err := io.ReadAll(rr.Body)
	require.NoError(t, err)

	text := string(body)
	assert.Contains(t, text, `reployer_polls_total{status="failed"} 1`)
	assert.Contains(t, text, `reployer_players 7`)
	assert.Contains(t, text, `reployer_events_total{kind="map_change"} 1`)
	assert.Contains(t, text, `reployer_requests_total{endpoint="/status",status="4xx"} 1`)
	assert.Contains(t, text, `reployer_stream_clients 2`)
}

func TestMetricsProvider_IndependentRegistries(t *testing.T) {
	conf := &structures.Config{Metrics: structures.MetricsConfig{Enabled: true}}
	assert.NotPanics(t, func() {
		NewMetricsProvider(conf)
		NewMetricsProvider(conf)
	})
}

func TestHttpStatusBucket(t *testing.T) {
	tests := []struct {
		code     int
		expected string
	}{
		{100, "1xx"},
		{200, "2xx"},
		{201, "2xx"},
		{301, "3xx"},
		{400, "4xx"},
		{404, "4xx"},
		{500, "5xx"},
		{503, "5xx"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, httpStatusBucket(tt.code))
	}
}
