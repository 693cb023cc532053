package testutil

import (
	"context"
	"net/http"
	"reployer/internal/models"
	"reployer/internal/providers"
	"sync"
	"time"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// Count returns how many entries were logged at level.
func (m *MockLogger) Count(level string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.Logs {
		if e.Level == level {
			n++
		}
	}
	return n
}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu      sync.Mutex
	Data    map[string][]byte
	Deleted []string
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

func (m *MockCache) Del(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Data, key)
	m.Deleted = append(m.Deleted, key)
}

// MockCompressor implements the history CompressorInterface with injectable behavior.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	if m.DecompressFn != nil {
		return m.DecompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Close() {}

// MockHistoryStore implements services/interfaces.HistoryStoreInterface in memory.
type MockHistoryStore struct {
	mu        sync.Mutex
	Appended  []models.Observation
	Persisted []models.Observation
	Seeded    []models.Observation
	AppendErr error
	LoadErr   error
	InitErr   error
	RotateErr error
	Rotations int
	window    *models.HistoryWindow
}

func NewMockHistoryStore(capacity int) *MockHistoryStore {
	return &MockHistoryStore{window: models.NewHistoryWindow(capacity)}
}

func (m *MockHistoryStore) Init() error { return m.InitErr }

func (m *MockHistoryStore) Append(o models.Observation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.window.Push(o)
	m.Appended = append(m.Appended, o)
	return m.AppendErr
}

func (m *MockHistoryStore) LoadRecent(maxCount int) ([]models.Observation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	items := m.Persisted
	if maxCount <= 0 {
		return []models.Observation{}, nil
	}
	if len(items) > maxCount {
		items = items[len(items)-maxCount:]
	}
	return append([]models.Observation(nil), items...), nil
}

func (m *MockHistoryStore) Window() []models.Observation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.window.Items()
}

func (m *MockHistoryStore) Seed(items []models.Observation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range items {
		m.window.Push(o)
	}
	m.Seeded = append(m.Seeded, items...)
}

func (m *MockHistoryStore) Rotate() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Rotations++
	return false, m.RotateErr
}

func (m *MockHistoryStore) RotationCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Rotations
}

// MockSink records published snapshots.
type MockSink struct {
	mu        sync.Mutex
	Snapshots []models.Snapshot
}

func (m *MockSink) Publish(snapshot models.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Snapshots = append(m.Snapshots, snapshot)
}

func (m *MockSink) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Snapshots)
}

func (m *MockSink) Last() models.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Snapshots[len(m.Snapshots)-1]
}

// MockSound records played sound events.
type MockSound struct {
	mu     sync.Mutex
	Played []string
}

func (m *MockSound) Play(event string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Played = append(m.Played, event)
}

func (m *MockSound) Events() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Played...)
}

// QueryReply is one scripted answer of MockQuerier.
type QueryReply struct {
	Status *models.ServerStatus
	Err    error
}

// MockQuerier answers with scripted replies; the last reply repeats.
type MockQuerier struct {
	mu      sync.Mutex
	Replies []QueryReply
	Calls   int
	// Block, when set, is waited on before answering.
	Block chan struct{}
}

func (m *MockQuerier) Query(ctx context.Context, _ string, _ time.Duration) (*models.ServerStatus, error) {
	if m.Block != nil {
		select {
		case <-m.Block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if len(m.Replies) == 0 {
		return nil, context.DeadlineExceeded
	}
	idx := min(m.Calls-1, len(m.Replies)-1)
	r := m.Replies[idx]
	return r.Status, r.Err
}

func (m *MockQuerier) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls
}

// MockMetrics implements providers.MetricsProviderInterface and counts the
// domain signals tests assert on.
type MockMetrics struct {
	mu            sync.Mutex
	Polls         map[string]int
	Events        map[string]int
	Players       int
	HistoryErrors int
	Rotations     int
	StreamClients int
	Requests      int
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{Polls: map[string]int{}, Events: map[string]int{}}
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests++
}
func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (m *MockMetrics) IncCacheHits()                                    {}
func (m *MockMetrics) IncCacheMisses()                                  {}
func (m *MockMetrics) IncPolls(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Polls[status]++
}
func (m *MockMetrics) ObserveQueryDuration(_ time.Duration) {}
func (m *MockMetrics) SetPlayers(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Players = count
}
func (m *MockMetrics) IncEvents(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events[kind]++
}
func (m *MockMetrics) IncHistoryWriteErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.HistoryErrors++
}
func (m *MockMetrics) ObserveRotationDuration(_ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Rotations++
}
func (m *MockMetrics) SetStreamClients(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StreamClients = count
}
func (m *MockMetrics) Handler() http.Handler { return http.NotFoundHandler() }

func (m *MockMetrics) PollCount(status string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Polls[status]
}

func (m *MockMetrics) StreamClientCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.StreamClients
}
