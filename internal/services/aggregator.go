package services

import (
	"context"
	"creatorstats/internal/models"
	"math"
	"time"

	"github.com/samber/lo"
)

type AggregatorInterface interface {
	ConnectedPlatforms() []models.Platform
	Overview(ctx context.Context, window models.TimeWindow) models.Overview
}

// Aggregator merges the connected platforms into one overview. It keeps no state of its own.
type Aggregator struct {
	registry *Registry
	clock    models.Clock
	loc      *time.Location
}

func NewAggregator(registry *Registry, clock models.Clock, loc *time.Location) *Aggregator {
	return &Aggregator{registry: registry, clock: clock, loc: loc}
}

func (a *Aggregator) connected() []*PlatformService {
	return lo.Filter(a.registry.All(), func(s *PlatformService, _ int) bool {
		return s.Fetcher.Connected()
	})
}

func (a *Aggregator) ConnectedPlatforms() []models.Platform {
	return lo.Map(a.connected(), func(s *PlatformService, _ int) models.Platform {
		return s.Platform()
	})
}

// averageEngagement is the mean interaction count per recent item.
func averageEngagement(items []models.ContentItem) float64 {
	if len(items) == 0 {
		return 0
	}
	total := lo.SumBy(items, func(it models.ContentItem) int64 { return it.Engagement() })
	return float64(total) / float64(len(items))
}

func (a *Aggregator) Overview(ctx context.Context, window models.TimeWindow) models.Overview {
	now := a.clock.Now()
	ov := models.Overview{
		Window:     window,
		Platforms:  []models.Platform{},
		Sources:    map[models.Platform]models.Source{},
		Audience:   []models.AudienceShare{},
		Growth:     []models.MultiPlatformPoint{},
		Engagement: []models.MultiPlatformPoint{},
	}

	growth := make(map[models.Platform][]models.ChartBucket)
	engagement := make(map[models.Platform][]models.ChartBucket)

	for _, s := range a.connected() {
		p := s.Platform()
		snap, items := s.Fetcher.GetSnapshotAndItems(ctx, RecentItemsLimit)
		eng := averageEngagement(items.Items)

		ov.Platforms = append(ov.Platforms, p)
		ov.Sources[p] = snap.Source
		ov.Totals.Followers += snap.Snapshot.FollowerCount
		ov.Totals.Views += snap.Snapshot.ViewCount
		ov.Totals.Content += snap.Snapshot.ContentCount
		ov.Totals.Engagement += int64(math.Round(eng))
		ov.Audience = append(ov.Audience, models.AudienceShare{
			Platform: p,
			Name:     p.Label(),
			Value:    snap.Snapshot.FollowerCount,
			Color:    p.Color(),
		})

		growth[p] = BuildSeries(s.history(), window, float64(snap.Snapshot.FollowerCount), FieldSubscribers, now, a.loc)
		engagement[p] = BuildSeries(nil, window, eng, FieldSubscribers, now, a.loc)
	}

	ov.Growth = mergeSeries(ov.Platforms, growth)
	ov.Engagement = mergeSeries(ov.Platforms, engagement)
	return ov
}

// mergeSeries zips per-platform series that share one bucket layout.
func mergeSeries(platforms []models.Platform, series map[models.Platform][]models.ChartBucket) []models.MultiPlatformPoint {
	if len(platforms) == 0 {
		return []models.MultiPlatformPoint{}
	}
	first := series[platforms[0]]
	points := make([]models.MultiPlatformPoint, len(first))
	for i, b := range first {
		points[i] = models.MultiPlatformPoint{
			Label:  b.Label,
			Key:    b.Key,
			Values: make(map[models.Platform]float64, len(platforms)),
		}
		for _, p := range platforms {
			points[i].Values[p] = series[p][i].Value
		}
	}
	return points
}
