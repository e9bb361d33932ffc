package testutil

import (
	"context"
	"creatorstats/internal/models"
	"creatorstats/internal/providers"
	"errors"
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
	for _, l := range m.Logs {
		if l.Level == level {
			n++
		}
	}
	return n
}

// MockMetrics implements providers.MetricsProviderInterface and counts the domain events.
type MockMetrics struct {
	mu             sync.Mutex
	RemoteCalls    map[string]int // key: "platform:outcome"
	Served         map[string]int // key: "platform:source"
	HistoryRecords map[string]int
	CacheHits      int
	CacheMisses    int
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{
		RemoteCalls:    make(map[string]int),
		Served:         make(map[string]int),
		HistoryRecords: make(map[string]int),
	}
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (m *MockMetrics) ObserveStoreWriteDuration(_ time.Duration)        {}

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

func (m *MockMetrics) IncRemoteCalls(platform, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RemoteCalls[platform+":"+outcome]++
}

func (m *MockMetrics) IncSnapshotsServed(platform, source string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Served[platform+":"+source]++
}

func (m *MockMetrics) SetHistoryRecords(platform string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.HistoryRecords[platform] = count
}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu         sync.Mutex
	Data       map[string][]byte
	ClearCalls int
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

func (m *MockCache) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data = make(map[string][]byte)
	m.ClearCalls++
}

// MockCompressor implements storage.CompressorInterface with injectable behavior.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
	// Default: return as-is (identity)
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

var ErrStoreUnavailable = errors.New("store unavailable")

// FailingStore implements storage.Store and fails every operation.
type FailingStore struct{}

func (FailingStore) Get(_ string) ([]byte, bool, error) { return nil, false, ErrStoreUnavailable }
func (FailingStore) Set(_ string, _ []byte) error       { return ErrStoreUnavailable }
func (FailingStore) Remove(_ string) error              { return ErrStoreUnavailable }
func (FailingStore) Close() error                       { return nil }

// MockFetcher implements services.FetcherInterface with canned answers.
type MockFetcher struct {
	mu              sync.Mutex
	P               models.Platform
	IsConnected     bool
	IsSimulated     bool
	Snapshot        models.SnapshotResult
	Items           models.ItemsResult
	Status          models.CallStatus
	CollectErr      error
	Cfg             models.ServiceConfig
	DecodeErr       error
	DecodedConfigs  [][]byte
	DisconnectCalls int
	DemoCalls       int
	CollectCalls    int
	OAuthURL        string
	OAuthErr        error
	OAuthCodes      []string
}

func (m *MockFetcher) Platform() models.Platform { return m.P }
func (m *MockFetcher) Connected() bool           { return m.IsConnected }
func (m *MockFetcher) Simulated() bool           { return m.IsSimulated }

func (m *MockFetcher) GetSnapshot(_ context.Context) models.SnapshotResult {
	return m.Snapshot
}

func (m *MockFetcher) CollectSnapshot(_ context.Context) (models.StatsSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CollectCalls++
	if m.CollectErr != nil {
		return models.StatsSnapshot{}, m.CollectErr
	}
	return m.Snapshot.Snapshot, nil
}

// Collects returns CollectCalls under the lock for tests that collect from goroutines.
func (m *MockFetcher) Collects() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CollectCalls
}

func (m *MockFetcher) GetRecentItems(_ context.Context, _ int) models.ItemsResult {
	return m.Items
}

func (m *MockFetcher) GetSnapshotAndItems(_ context.Context, _ int) (models.SnapshotResult, models.ItemsResult) {
	return m.Snapshot, m.Items
}

func (m *MockFetcher) GetAPICallStatus(_ context.Context) models.CallStatus {
	return m.Status
}

func (m *MockFetcher) ServiceConfig() (models.ServiceConfig, error) {
	return m.Cfg, nil
}

func (m *MockFetcher) DecodeConfig(raw []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DecodeErr != nil {
		return m.DecodeErr
	}
	m.DecodedConfigs = append(m.DecodedConfigs, raw)
	return nil
}

func (m *MockFetcher) Disconnect() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DisconnectCalls++
	return nil
}

func (m *MockFetcher) CacheDemoDataAsReal() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DemoCalls++
	return nil
}

func (m *MockFetcher) AuthURL() (string, error) {
	if m.OAuthErr != nil {
		return "", m.OAuthErr
	}
	return m.OAuthURL, nil
}

func (m *MockFetcher) CompleteOAuth(_ context.Context, code, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.OAuthErr != nil {
		return m.OAuthErr
	}
	m.OAuthCodes = append(m.OAuthCodes, code)
	return nil
}
