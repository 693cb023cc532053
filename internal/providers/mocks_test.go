package providers

import (
	"net/http"
	"sync"
	"time"
)

// local mocks to avoid an import cycle with testutil

type testLogger struct {
	mu    sync.Mutex
	warns int
	infos int
}

func (m *testLogger) Errorf(_ TypeEnum, _ string, _ ...interface{}) {}
func (m *testLogger) Warnf(_ TypeEnum, _ string, _ ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.warns++
}
func (m *testLogger) Debugf(_ TypeEnum, _ string, _ ...interface{}) {}
func (m *testLogger) Infof(_ TypeEnum, _ string, _ ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.infos++
}
func (m *testLogger) Fatalf(_ TypeEnum, _ string, _ ...interface{}) {}
func (m *testLogger) Close()                                        {}

type testMetrics struct {
	requestEndpoint string
	requestStatus   int
	requestCalls    int
	durationCalls   int
	hits            int
	misses          int
	events          map[string]int
}

func newTestMetrics() *testMetrics {
	return &testMetrics{events: map[string]int{}}
}

func (m *testMetrics) IncRequestsTotal(endpoint string, status int) {
	m.requestEndpoint = endpoint
	m.requestStatus = status
	m.requestCalls++
}
func (m *testMetrics) ObserveRequestDuration(_ string, _ time.Duration) { m.durationCalls++ }
func (m *testMetrics) IncCacheHits()                                    { m.hits++ }
func (m *testMetrics) IncCacheMisses()                                  { m.misses++ }
func (m *testMetrics) IncPolls(_ string)                                {}
func (m *testMetrics) ObserveQueryDuration(_ time.Duration)             {}
func (m *testMetrics) SetPlayers(_ int)                                 {}
func (m *testMetrics) IncEvents(kind string)                            { m.events[kind]++ }
func (m *testMetrics) IncHistoryWriteErrors()                           {}
func (m *testMetrics) ObserveRotationDuration(_ time.Duration)          {}
func (m *testMetrics) SetStreamClients(_ int)                           {}
func (m *testMetrics) Handler() http.Handler                            { return http.NotFoundHandler() }
