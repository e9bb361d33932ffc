package services

import (
	"context"
	"creatorstats/internal/providers"
	"creatorstats/internal/structures"
	"sync"

	"github.com/roylee0704/gron"
	"go.uber.org/atomic"
)

type SchedulerInterface interface {
	Init()
	Stop()
	// RunOnce collects today's record for every connected platform that lacks one.
	// It returns the number of records added.
	RunOnce(ctx context.Context) int
}

// Scheduler runs the daily collection at start and then on every check interval.
// A run that is still in progress when the next tick fires makes that tick a no-op.
type Scheduler struct {
	config   *structures.Config
	logger   providers.Logger
	registry *Registry
	running  *atomic.Bool
	cron     *gron.Cron
	ctx      context.Context
	cancel   context.CancelFunc
	opsMu    sync.Mutex
	stopOnce sync.Once
}

func NewScheduler(config *structures.Config, logger providers.Logger, registry *Registry) *Scheduler {
	return &Scheduler{
		config:   config,
		logger:   logger,
		registry: registry,
		running:  atomic.NewBool(false),
	}
}

func (s *Scheduler) Init() {
	if !s.config.Collection.Enabled || s.config.Collection.CheckInterval <= 0 {
		s.logger.Infof(providers.TypeCollect, "Daily collection scheduler disabled")
		return
	}

	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.cron = gron.New()
	s.cron.AddFunc(gron.Every(s.config.Collection.CheckInterval), s.tick)
	s.cron.Start()

	go s.tick()
	s.logger.Infof(providers.TypeCollect, "Daily collection scheduled every %s", s.config.Collection.CheckInterval)
}

// tick holds opsMu for the whole run so Stop can wait for it.
func (s *Scheduler) tick() {
	if !s.opsMu.TryLock() {
		s.logger.Debugf(providers.TypeCollect, "Collection run already in progress, skipping")
		return
	}
	defer s.opsMu.Unlock()

	if s.ctx.Err() != nil {
		return
	}
	s.RunOnce(s.ctx)
}

func (s *Scheduler) RunOnce(ctx context.Context) int {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Debugf(providers.TypeCollect, "Collection run already in progress, skipping")
		return 0
	}
	defer s.running.Store(false)

	added := 0
	for _, svc := range s.registry.All() {
		if ctx.Err() != nil {
			break
		}
		if !svc.Fetcher.Connected() || svc.Fetcher.Simulated() {
			continue
		}
		ok, err := svc.Collector.InitializeDailyCollection(ctx)
		if err != nil {
			s.logger.Warnf(providers.TypeCollect, "%s: daily collection failed: %s", svc.Platform(), err)
			continue
		}
		if ok {
			added++
		}
	}
	return added
}

// Stop halts the interval job and waits for a run in progress to finish.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		if s.cron == nil {
			return
		}
		s.cancel()
		s.cron.Stop()

		s.opsMu.Lock()
		s.opsMu.Unlock()
	})
}
