package testutil

import (
	"pointsd/internal/models"
	"pointsd/internal/providers"
	"sync"
	"time"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu     sync.Mutex
	Logs   []LogEntry
	Closed bool
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
func (m *MockLogger) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
}

// CountByLevel returns how many entries were logged at the given level.
func (m *MockLogger) CountByLevel(level string) int {
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

// MockBackend implements services.LedgerBackend in memory with injectable
// failures.
type MockBackend struct {
	mu        sync.Mutex
	Users     map[string]*models.LedgerEntry
	LoadErr   error
	SaveErr   error
	SaveCalls int
}

func NewMockBackend() *MockBackend {
	return &MockBackend{Users: make(map[string]*models.LedgerEntry)}
}

func (m *MockBackend) Load() (map[string]*models.LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	out := make(map[string]*models.LedgerEntry, len(m.Users))
	for id, e := range m.Users {
		out[id] = e.Clone()
	}
	return out, nil
}

func (m *MockBackend) Save(users map[string]*models.LedgerEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveCalls++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	out := make(map[string]*models.LedgerEntry, len(users))
	for id, e := range users {
		out[id] = e.Clone()
	}
	m.Users = out
	return nil
}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu   sync.Mutex
	Data map[string][]byte
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

// MockCompressor implements interfaces.CompressorInterface with injectable
// behavior. Defaults to identity.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
	Closed       bool
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

func (m *MockCompressor) Close() { m.Closed = true }

// MockMetrics implements providers.MetricsProviderInterface and records the
// domain counters tests care about.
type MockMetrics struct {
	mu              sync.Mutex
	AwardAttempts   int
	PointsGranted   int
	Evictions       map[string]int
	SessionsTracked int
	UsersKnown      int
	Persists        int
	CacheHits       int
	CacheMisses     int
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{Evictions: make(map[string]int)}
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}

func (m *MockMetrics) IncCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}

func (m *MockMetrics) IncCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMisses++
}

func (m *MockMetrics) IncAwardAttempts() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AwardAttempts++
}

func (m *MockMetrics) AddPointsGranted(points int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PointsGranted += points
}

func (m *MockMetrics) IncEvictions(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Evictions[reason]++
}

func (m *MockMetrics) SetSessionsTracked(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SessionsTracked = count
}

func (m *MockMetrics) SetUsersKnown(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UsersKnown = count
}

func (m *MockMetrics) ObservePersistenceDuration(_ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Persists++
}

func (m *MockMetrics) ObserveAwardPassDuration(_ time.Duration) {}
