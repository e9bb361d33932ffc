package services

import (
	"context"
	"creatorstats/internal/clients"
	"creatorstats/internal/models"
	"creatorstats/internal/providers"
	"creatorstats/internal/storage"
	"creatorstats/internal/structures"
	"net/http"
	"time"
)

// RecentItemsLimit is how many recent videos or posts are requested per call.
const RecentItemsLimit = 10

// PlatformService bundles the fetcher and collector of one platform.
type PlatformService struct {
	Fetcher   FetcherInterface
	Collector CollectorInterface
	clock     models.Clock
	loc       *time.Location
	logger    providers.Logger
}

func NewPlatformService(fetcher FetcherInterface, collector CollectorInterface, clock models.Clock, loc *time.Location, logger providers.Logger) *PlatformService {
	return &PlatformService{
		Fetcher:   fetcher,
		Collector: collector,
		clock:     clock,
		loc:       loc,
		logger:    logger,
	}
}

func (s *PlatformService) Platform() models.Platform {
	return s.Fetcher.Platform()
}

// history never fails: an unreadable series charts as if empty.
func (s *PlatformService) history() []models.DailyStatRecord {
	series, err := s.Collector.GetHistoricalData()
	if err != nil {
		s.logger.Warnf(providers.TypeApp, "%s: history unavailable for charts: %s", s.Platform(), err)
		return nil
	}
	return series.DailyStats
}

// GetAnalytics returns the snapshot, recent items and both chart series for window.
func (s *PlatformService) GetAnalytics(ctx context.Context, window models.TimeWindow) models.Analytics {
	snap, items := s.Fetcher.GetSnapshotAndItems(ctx, RecentItemsLimit)
	records := s.history()
	now := s.clock.Now()

	views := snap.Snapshot.ViewCount
	if views == 0 {
		views = snap.Snapshot.EngagementCount
	}

	return models.Analytics{
		Snapshot:    snap,
		RecentItems: items,
		Window:      window,
		Followers:   BuildSeries(records, window, float64(snap.Snapshot.FollowerCount), FieldSubscribers, now, s.loc),
		Views:       BuildSeries(records, window, float64(views), FieldViews, now, s.loc),
	}
}

// Registry holds one PlatformService per supported platform.
type Registry struct {
	services map[models.Platform]*PlatformService
}

func NewRegistry(services ...*PlatformService) *Registry {
	r := &Registry{services: make(map[models.Platform]*PlatformService, len(services))}
	for _, s := range services {
		r.services[s.Platform()] = s
	}
	return r
}

func (r *Registry) Get(p models.Platform) (*PlatformService, bool) {
	s, ok := r.services[p]
	return s, ok
}

// All returns the registered services in display order.
func (r *Registry) All() []*PlatformService {
	all := make([]*PlatformService, 0, len(r.services))
	for _, p := range models.Platforms {
		if s, ok := r.services[p]; ok {
			all = append(all, s)
		}
	}
	return all
}

// NewPlatformRegistry builds the three platform services. Credentials from the
// config file are stored only for platforms that have no stored config yet.
func NewPlatformRegistry(
	conf *structures.Config,
	store storage.Store,
	clock models.Clock,
	loc *time.Location,
	httpClient *http.Client,
	logger providers.Logger,
	metrics providers.MetricsProviderInterface,
) (*Registry, error) {
	pc := conf.Platforms

	ytClient := clients.NewYouTubeClient(pc.YouTube.BaseURL, httpClient).WithOAuth(oauthApp(pc.YouTube.OAuth))
	igClient := clients.NewInstagramClient(pc.Instagram.BaseURL, httpClient).WithOAuth(oauthApp(pc.Instagram.OAuth))
	yt := NewFetcher[models.YouTubeConfig](ytClient, store, clock, loc, conf.Quota, logger, metrics)
	ig := NewFetcher[models.InstagramConfig](igClient, store, clock, loc, conf.Quota, logger, metrics)
	th := NewFetcher[models.ThreadsConfig](clients.NewThreadsClient(pc.Threads.BaseURL, httpClient),
		store, clock, loc, conf.Quota, logger, metrics)

	seeds := []struct {
		platform models.Platform
		empty    bool
		seed     func() (bool, error)
	}{
		{models.PlatformYouTube, pc.YouTube.APIKey == "" && pc.YouTube.ChannelID == "", func() (bool, error) {
			return yt.SeedConfig(models.YouTubeConfig{
				APIKey:      pc.YouTube.APIKey,
				ChannelID:   pc.YouTube.ChannelID,
				ChannelName: pc.YouTube.ChannelName,
				ChannelURL:  pc.YouTube.ChannelURL,
			})
		}},
		{models.PlatformInstagram, pc.Instagram.AccessToken == "", func() (bool, error) {
			return ig.SeedConfig(models.InstagramConfig{
				AccessToken: pc.Instagram.AccessToken,
				UserID:      pc.Instagram.UserID,
				Username:    pc.Instagram.Username,
			})
		}},
		{models.PlatformThreads, pc.Threads.Username == "", func() (bool, error) {
			return th.SeedConfig(models.ThreadsConfig{
				Username:    pc.Threads.Username,
				UserID:      pc.Threads.UserID,
				AccessToken: pc.Threads.AccessToken,
			})
		}},
	}
	for _, s := range seeds {
		if s.empty {
			continue
		}
		seeded, err := s.seed()
		if err != nil {
			return nil, err
		}
		if seeded {
			logger.Infof(providers.TypeApp, "%s: credentials seeded from config file", s.platform)
		}
	}

	build := func(f FetcherInterface) *PlatformService {
		return NewPlatformService(f, NewCollector(f, store, clock, loc, logger, metrics), clock, loc, logger)
	}
	return NewRegistry(build(yt), build(ig), build(th)), nil
}

func oauthApp(s structures.OAuthSettings) clients.OAuthApp {
	return clients.OAuthApp{ClientID: s.ClientID, ClientSecret: s.ClientSecret, RedirectURI: s.RedirectURI}
}
