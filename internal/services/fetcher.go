package services

import (
	"context"
	"creatorstats/internal/clients"
	"creatorstats/internal/models"
	"creatorstats/internal/providers"
	"creatorstats/internal/storage"
	"creatorstats/internal/structures"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/atomic"
)

// ErrInvalidConfig wraps credential payloads that cannot be decoded.
var ErrInvalidConfig = errors.New("invalid config payload")

type FetcherInterface interface {
	Platform() models.Platform
	// Connected reports whether complete credentials are stored. No upstream call is made.
	Connected() bool
	// Simulated reports that the stored account has no upstream API to collect from.
	Simulated() bool
	// GetSnapshot never fails: it degrades to cached and then synthetic data.
	GetSnapshot(ctx context.Context) models.SnapshotResult
	// CollectSnapshot returns real data only and surfaces typed errors.
	CollectSnapshot(ctx context.Context) (models.StatsSnapshot, error)
	GetRecentItems(ctx context.Context, limit int) models.ItemsResult
	// GetSnapshotAndItems serves both reads of one dashboard view under a single cooldown check.
	GetSnapshotAndItems(ctx context.Context, limit int) (models.SnapshotResult, models.ItemsResult)
	GetAPICallStatus(ctx context.Context) models.CallStatus
	ServiceConfig() (models.ServiceConfig, error)
	DecodeConfig(raw []byte) error
	Disconnect() error
	CacheDemoDataAsReal() error
	// AuthURL starts an OAuth sign-in and returns the consent page to send the user to.
	AuthURL() (string, error)
	CompleteOAuth(ctx context.Context, code, state string) error
}

// Fetcher serves one platform's statistics under a daily call budget and a
// minimum interval between calls. mu serializes the budget and cache
// read-modify-write cycles of this process; other writers to the same store
// are last-write-wins.
type Fetcher[C models.ServiceConfig] struct {
	mu         sync.Mutex
	client     clients.Client[C]
	store      storage.Store
	clock      models.Clock
	loc        *time.Location
	quota      structures.QuotaConfig
	logger     providers.Logger
	metrics    providers.MetricsProviderInterface
	lastSource *atomic.String
}

func NewFetcher[C models.ServiceConfig](
	client clients.Client[C],
	store storage.Store,
	clock models.Clock,
	loc *time.Location,
	quota structures.QuotaConfig,
	logger providers.Logger,
	metrics providers.MetricsProviderInterface,
) *Fetcher[C] {
	return &Fetcher[C]{
		client:     client,
		store:      store,
		clock:      clock,
		loc:        loc,
		quota:      quota,
		logger:     logger,
		metrics:    metrics,
		lastSource: atomic.NewString(""),
	}
}

func (f *Fetcher[C]) Platform() models.Platform {
	return f.client.Platform()
}

func (f *Fetcher[C]) today() string {
	return models.DateKey(f.clock.Now(), f.loc)
}

func (f *Fetcher[C]) loadConfig() (C, error) {
	var cfg C
	_, err := storage.Load(f.store, f.Platform().ConfigKey(), &cfg)
	return cfg, err
}

func (f *Fetcher[C]) loadBudget(today string) models.CallBudgetState {
	var state models.CallBudgetState
	if _, err := storage.Load(f.store, f.Platform().TrackingKey(), &state); err != nil {
		f.logger.Warnf(providers.TypeFetch, "%s: unreadable call tracking, starting fresh: %s", f.Platform(), err)
	}
	return state.ForDay(today)
}

func (f *Fetcher[C]) loadCache() *models.CachedSnapshot {
	var cache models.CachedSnapshot
	ok, err := storage.Load(f.store, f.Platform().CacheKey(), &cache)
	if err != nil {
		f.logger.Warnf(providers.TypeFetch, "%s: unreadable cache ignored: %s", f.Platform(), err)
		return nil
	}
	if !ok {
		return nil
	}
	return &cache
}

func (f *Fetcher[C]) saveCache(cache *models.CachedSnapshot) {
	if err := storage.Save(f.store, f.Platform().CacheKey(), cache); err != nil {
		f.logger.Errorf(providers.TypeFetch, "%s: failed to write cache: %s", f.Platform(), err)
	}
}

func (f *Fetcher[C]) cachedToday(cache *models.CachedSnapshot, today string) bool {
	return cache != nil && models.DateKey(cache.CachedAt, f.loc) == today
}

func (f *Fetcher[C]) configError(cfg C) error {
	missing := f.client.Missing(cfg)
	if len(missing) == 0 {
		missing = []string{"unexpired credentials"}
	}
	return &models.ConfigurationError{Platform: f.Platform(), Missing: missing}
}

func (f *Fetcher[C]) served(source models.Source) {
	f.lastSource.Store(string(source))
	f.metrics.IncSnapshotsServed(string(f.Platform()), string(source))
}

// budgetGate counts every request that reaches the network against the day's budget.
// A batch gate measures the cooldown from the last call made before the batch
// opened, so the requests of one batch do not block each other.
type budgetGate[C models.ServiceConfig] struct {
	f        *Fetcher[C]
	state    models.CallBudgetState
	today    string
	batch    bool
	openedAt time.Time
}

// gateOpener returns the gate a resolve step should use for today.
type gateOpener[C models.ServiceConfig] func(today string) *budgetGate[C]

func (f *Fetcher[C]) newGate(today string) *budgetGate[C] {
	return &budgetGate[C]{f: f, state: f.loadBudget(today), today: today}
}

// batchOpener shares one lazily opened batch gate between resolve steps.
func (f *Fetcher[C]) batchOpener() gateOpener[C] {
	var shared *budgetGate[C]
	return func(today string) *budgetGate[C] {
		if shared == nil {
			shared = f.newGate(today)
			shared.batch = true
			shared.openedAt = shared.state.LastCall
		}
		return shared
	}
}

func (g *budgetGate[C]) Allow() bool {
	if g.state.Exhausted(g.f.quota.DailyMax) {
		return false
	}
	last := g.state
	if g.batch {
		last.LastCall = g.openedAt
	}
	return last.CooldownRemaining(g.f.clock.Now(), g.f.quota.MinInterval) == 0
}

func (g *budgetGate[C]) Record(err error) {
	g.state.Record(g.f.clock.Now(), g.today)

	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	g.f.metrics.IncRemoteCalls(string(g.f.Platform()), outcome)

	if saveErr := storage.Save(g.f.store, g.f.Platform().TrackingKey(), g.state); saveErr != nil {
		g.f.logger.Errorf(providers.TypeFetch, "%s: failed to record call: %s", g.f.Platform(), saveErr)
	}
	g.f.logger.Debugf(providers.TypeFetch, "%s: call recorded, daily count %d/%d",
		g.f.Platform(), g.state.CallsMadeToday, g.f.quota.DailyMax)
}

// resolveStats returns fresh or cached statistics, or the typed error that
// explains why neither is available.
func (f *Fetcher[C]) resolveStats(ctx context.Context, open gateOpener[C]) (models.SnapshotResult, error) {
	cfg, err := f.loadConfig()
	if err != nil {
		f.logger.Warnf(providers.TypeFetch, "%s: unreadable config: %s", f.Platform(), err)
	}
	now := f.clock.Now()
	if !cfg.Complete(now) {
		return models.SnapshotResult{}, f.configError(cfg)
	}
	if f.client.Simulated(cfg) {
		return models.SnapshotResult{}, &models.RemoteCallError{Platform: f.Platform(), Err: clients.ErrSimulated}
	}

	today := f.today()
	cache := f.loadCache()
	if cache.HasStats() && f.cachedToday(cache, today) {
		return cachedResult(cache), nil
	}

	gate := open(today)
	if !gate.Allow() {
		if cache.HasStats() {
			return cachedResult(cache), nil
		}
		return models.SnapshotResult{}, &models.RemoteCallError{Platform: f.Platform(), Blocked: true, Err: clients.ErrBlocked}
	}
	cfg = f.refreshCredentials(ctx, cfg, now)

	snap, err := f.client.FetchStats(ctx, cfg, gate)
	if err != nil {
		f.logger.Warnf(providers.TypeFetch, "%s: stats call failed: %s", f.Platform(), err)
		if cache.HasStats() {
			return cachedResult(cache), nil
		}
		return models.SnapshotResult{}, &models.RemoteCallError{
			Platform:   f.Platform(),
			StatusCode: clients.StatusCode(err),
			Blocked:    errors.Is(err, clients.ErrBlocked),
			Err:        err,
		}
	}

	if cache == nil {
		cache = &models.CachedSnapshot{}
	}
	cache.Stats = &snap
	cache.CachedAt = now
	f.saveCache(cache)

	return models.SnapshotResult{Snapshot: snap, Source: models.SourceFresh, CachedAt: now}, nil
}

func cachedResult(cache *models.CachedSnapshot) models.SnapshotResult {
	return models.SnapshotResult{Snapshot: *cache.Stats, Source: models.SourceCached, CachedAt: cache.CachedAt}
}

func (f *Fetcher[C]) GetSnapshot(ctx context.Context) models.SnapshotResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshot(ctx, f.newGate)
}

func (f *Fetcher[C]) snapshot(ctx context.Context, open gateOpener[C]) models.SnapshotResult {
	res, err := f.resolveStats(ctx, open)
	if err != nil {
		if !models.IsConfigurationError(err) && !errors.Is(err, clients.ErrSimulated) {
			f.logger.Infof(providers.TypeFetch, "%s: serving synthetic data: %s", f.Platform(), err)
		}
		cfg, _ := f.loadConfig()
		snap, _ := f.client.Synthetic(cfg)
		res = models.SnapshotResult{Snapshot: snap, Source: models.SourceSynthetic}
	}
	f.served(res.Source)
	return res
}

func (f *Fetcher[C]) CollectSnapshot(ctx context.Context) (models.StatsSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	res, err := f.resolveStats(ctx, f.newGate)
	if err != nil {
		return models.StatsSnapshot{}, err
	}
	f.served(res.Source)
	return res.Snapshot, nil
}

func (f *Fetcher[C]) GetRecentItems(ctx context.Context, limit int) models.ItemsResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.recentItems(ctx, limit, f.newGate)
}

// GetSnapshotAndItems reads statistics and recent items as one batch: both
// calls are admitted against the cooldown as it stood before the batch, while
// every request still counts against the daily maximum.
func (f *Fetcher[C]) GetSnapshotAndItems(ctx context.Context, limit int) (models.SnapshotResult, models.ItemsResult) {
	f.mu.Lock()
	defer f.mu.Unlock()

	open := f.batchOpener()
	return f.snapshot(ctx, open), f.recentItems(ctx, limit, open)
}

func (f *Fetcher[C]) recentItems(ctx context.Context, limit int, open gateOpener[C]) models.ItemsResult {
	cfg, err := f.loadConfig()
	if err != nil {
		f.logger.Warnf(providers.TypeFetch, "%s: unreadable config: %s", f.Platform(), err)
	}
	synthetic := func() models.ItemsResult {
		_, items := f.client.Synthetic(cfg)
		return models.ItemsResult{Items: items, Source: models.SourceSynthetic}
	}

	now := f.clock.Now()
	if !cfg.Complete(now) || f.client.Simulated(cfg) {
		return synthetic()
	}

	today := f.today()
	cache := f.loadCache()
	if cache.HasItems() && f.cachedToday(cache, today) {
		return models.ItemsResult{Items: cache.Items, Source: models.SourceCached}
	}

	gate := open(today)
	if !gate.Allow() {
		if cache.HasItems() {
			return models.ItemsResult{Items: cache.Items, Source: models.SourceCached}
		}
		return synthetic()
	}
	cfg = f.refreshCredentials(ctx, cfg, now)

	items, err := f.client.FetchRecentItems(ctx, cfg, limit, gate)
	if err != nil {
		f.logger.Warnf(providers.TypeFetch, "%s: recent items call failed: %s", f.Platform(), err)
		if cache.HasItems() {
			return models.ItemsResult{Items: cache.Items, Source: models.SourceCached}
		}
		return synthetic()
	}
	if items == nil {
		items = []models.ContentItem{}
	}

	if cache == nil {
		cache = &models.CachedSnapshot{}
	}
	cache.Items = items
	cache.CachedAt = now
	f.saveCache(cache)

	return models.ItemsResult{Items: items, Source: models.SourceFresh}
}

// GetAPICallStatus inspects the budget without recording anything against it.
func (f *Fetcher[C]) GetAPICallStatus(ctx context.Context) models.CallStatus {
	now := f.clock.Now()
	today := f.today()
	status := models.CallStatus{
		Platform: f.Platform(),
		MaxCalls: f.quota.DailyMax,
		Source:   models.Source(f.lastSource.Load()),
	}

	cfg, err := f.loadConfig()
	if err != nil {
		f.logger.Warnf(providers.TypeFetch, "%s: unreadable config: %s", f.Platform(), err)
	}
	if !cfg.Complete(now) || f.client.Simulated(cfg) {
		status.RemainingCalls = f.quota.DailyMax
		status.CanMakeCall = true
		status.UsingDemoData = true
		status.Reason = "No API configuration"
		if cfg.Complete(now) {
			status.Reason = "Account data is simulated"
		}
		return status
	}

	budget := f.loadBudget(today)
	cache := f.loadCache()

	status.DailyCalls = budget.CallsMadeToday
	status.RemainingCalls = budget.Remaining(f.quota.DailyMax)
	status.LastCall = budget.LastCall
	status.CooldownRemaining = budget.CooldownRemaining(now, f.quota.MinInterval)
	status.QuotaExceeded = budget.Exhausted(f.quota.DailyMax)
	status.RateLimited = status.CooldownRemaining > 0
	status.ActualQuotaExceeded = f.probeExhausted(ctx, cfg, cache, budget, now, today)
	status.CanMakeCall = !status.ActualQuotaExceeded && !status.QuotaExceeded && !status.RateLimited

	hasCache := cache.HasStats() && cache.HasItems()
	status.UsingCachedData = !status.CanMakeCall && hasCache
	status.UsingDemoData = !status.CanMakeCall && !hasCache

	switch {
	case status.QuotaExceeded:
		status.Reason = fmt.Sprintf("Daily quota exceeded - wait until tomorrow (%d calls max)", f.quota.DailyMax)
	case status.RateLimited:
		minutes := int(math.Ceil(status.CooldownRemaining.Minutes()))
		status.Reason = fmt.Sprintf("Rate limited - wait %d minutes (%s cooldown)", minutes, f.quota.MinInterval)
	case status.ActualQuotaExceeded:
		status.Reason = "Upstream API quota exhausted"
	default:
		status.Reason = "Ready"
	}
	return status
}

// probeExhausted asks the upstream API whether it still answers. The probe is
// skipped when today's cache exists or a call was attempted within the skip window.
func (f *Fetcher[C]) probeExhausted(ctx context.Context, cfg C, cache *models.CachedSnapshot, budget models.CallBudgetState, now time.Time, today string) bool {
	if cache.HasStats() && f.cachedToday(cache, today) {
		return false
	}
	if !budget.LastCall.IsZero() && now.Sub(budget.LastCall) < f.quota.ProbeSkipWindow {
		return false
	}

	code, err := f.client.Probe(ctx, cfg)
	if err != nil {
		f.logger.Warnf(providers.TypeFetch, "%s: quota probe failed: %s", f.Platform(), err)
		return true
	}
	return code == 403
}

func (f *Fetcher[C]) Connected() bool {
	cfg, err := f.loadConfig()
	if err != nil {
		return false
	}
	return cfg.Complete(f.clock.Now())
}

func (f *Fetcher[C]) Simulated() bool {
	cfg, err := f.loadConfig()
	if err != nil {
		return false
	}
	return f.client.Simulated(cfg)
}

// Config returns the stored credentials and whether any were stored.
func (f *Fetcher[C]) Config() (C, bool, error) {
	var cfg C
	ok, err := storage.Load(f.store, f.Platform().ConfigKey(), &cfg)
	return cfg, ok, err
}

func (f *Fetcher[C]) ServiceConfig() (models.ServiceConfig, error) {
	cfg, _, err := f.Config()
	return cfg, err
}

func (f *Fetcher[C]) UpdateConfig(cfg C) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return storage.Save(f.store, f.Platform().ConfigKey(), cfg)
}

func (f *Fetcher[C]) DecodeConfig(raw []byte) error {
	var cfg C
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return fmt.Errorf("%w for %s: %s", ErrInvalidConfig, f.Platform(), err)
	}
	return f.UpdateConfig(cfg)
}

// SeedConfig stores cfg only when no config exists yet. It reports whether it wrote.
func (f *Fetcher[C]) SeedConfig(cfg C) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, ok, err := f.store.Get(f.Platform().ConfigKey())
	if err != nil || ok {
		return false, err
	}
	if err := storage.Save(f.store, f.Platform().ConfigKey(), cfg); err != nil {
		return false, err
	}
	return true, nil
}

// Disconnect drops the credentials together with the call tracking and cache
// that belong to them. History is kept.
func (f *Fetcher[C]) Disconnect() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	p := f.Platform()
	return errors.Join(
		f.store.Remove(p.ConfigKey()),
		f.store.Remove(p.TrackingKey()),
		f.store.Remove(p.CacheKey()),
		f.store.Remove(p.OAuthStateKey()),
	)
}

// CacheDemoDataAsReal stores the synthetic snapshot as today's cache.
func (f *Fetcher[C]) CacheDemoDataAsReal() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	cfg, err := f.loadConfig()
	if err != nil {
		return err
	}
	snap, items := f.client.Synthetic(cfg)
	cache := &models.CachedSnapshot{Stats: &snap, Items: items, CachedAt: f.clock.Now()}
	if err := storage.Save(f.store, f.Platform().CacheKey(), cache); err != nil {
		return err
	}
	f.logger.Infof(providers.TypeFetch, "%s: demo data cached as real data", f.Platform())
	return nil
}
