package services

import (
	"context"
	"creatorstats/internal/models"
	"creatorstats/internal/providers"
	"creatorstats/internal/storage"
	"errors"
	"math"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
)

type CollectorInterface interface {
	ShouldCollectToday() bool
	// CollectDailyData appends today's record unless one exists. It reports whether a record was added.
	CollectDailyData(ctx context.Context) (models.DailyStatRecord, bool, error)
	InitializeDailyCollection(ctx context.Context) (bool, error)
	GetHistoricalData() (models.HistoricalSeries, error)
	GetDataForPeriod(days int) ([]models.DailyStatRecord, error)
	GetMonthlyData(months int) ([]models.MonthlyAggregate, error)
	LastCollection() (time.Time, error)
	ClearHistoricalData() error
}

// Collector turns the fetcher's real data into one history record per local calendar day.
type Collector struct {
	mu      sync.Mutex
	fetcher FetcherInterface
	store   storage.Store
	clock   models.Clock
	loc     *time.Location
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
}

func NewCollector(fetcher FetcherInterface, store storage.Store, clock models.Clock, loc *time.Location, logger providers.Logger, metrics providers.MetricsProviderInterface) *Collector {
	return &Collector{
		fetcher: fetcher,
		store:   store,
		clock:   clock,
		loc:     loc,
		logger:  logger,
		metrics: metrics,
	}
}

func (c *Collector) platform() models.Platform {
	return c.fetcher.Platform()
}

func (c *Collector) GetHistoricalData() (models.HistoricalSeries, error) {
	series := models.HistoricalSeries{DailyStats: []models.DailyStatRecord{}}
	if _, err := storage.Load(c.store, c.platform().HistoryKey(), &series); err != nil {
		return models.HistoricalSeries{}, err
	}
	if series.DailyStats == nil {
		series.DailyStats = []models.DailyStatRecord{}
	}
	return series, nil
}

func (c *Collector) ShouldCollectToday() bool {
	series, err := c.GetHistoricalData()
	if err != nil {
		c.logger.Warnf(providers.TypeCollect, "%s: unreadable history: %s", c.platform(), err)
		return true
	}
	return !series.Has(models.DateKey(c.clock.Now(), c.loc))
}

func (c *Collector) CollectDailyData(ctx context.Context) (models.DailyStatRecord, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap, err := c.fetcher.CollectSnapshot(ctx)
	if err != nil {
		c.logger.Errorf(providers.TypeCollect, "%s: collection failed: %s", c.platform(), err)
		return models.DailyStatRecord{}, false, err
	}

	series, err := c.GetHistoricalData()
	if err != nil {
		return models.DailyStatRecord{}, false, err
	}

	now := c.clock.Now()
	rec := models.NewDailyStatRecord(models.DateKey(now, c.loc), snap)
	if !series.Append(rec, now) {
		c.logger.Debugf(providers.TypeCollect, "%s: record for %s already exists", c.platform(), rec.Date)
		return rec, false, nil
	}

	if err := storage.Save(c.store, c.platform().HistoryKey(), series); err != nil {
		return models.DailyStatRecord{}, false, err
	}
	if err := storage.Save(c.store, c.platform().CollectionKey(), now); err != nil {
		c.logger.Errorf(providers.TypeCollect, "%s: failed to store collection time: %s", c.platform(), err)
	}
	c.metrics.SetHistoryRecords(string(c.platform()), len(series.DailyStats))
	c.logger.Infof(providers.TypeCollect, "%s: collected %s (%d followers)", c.platform(), rec.Date, rec.SubscriberCount)
	return rec, true, nil
}

// InitializeDailyCollection collects only when today has no record yet.
func (c *Collector) InitializeDailyCollection(ctx context.Context) (bool, error) {
	if !c.ShouldCollectToday() {
		return false, nil
	}
	_, added, err := c.CollectDailyData(ctx)
	return added, err
}

// GetDataForPeriod returns the records of the trailing days calendar days, today included, oldest first.
func (c *Collector) GetDataForPeriod(days int) ([]models.DailyStatRecord, error) {
	series, err := c.GetHistoricalData()
	if err != nil {
		return nil, err
	}
	if days <= 0 {
		return []models.DailyStatRecord{}, nil
	}

	now := c.clock.Now()
	from := models.DateKey(models.StartOfDay(now, c.loc).AddDate(0, 0, -(days - 1)), c.loc)
	to := models.DateKey(now, c.loc)

	records := lo.Filter(series.DailyStats, func(r models.DailyStatRecord, _ int) bool {
		return r.Date >= from && r.Date <= to
	})
	sortByDate(records)
	return records, nil
}

// GetMonthlyData averages the records of each of the trailing months calendar
// months, the current month included. Months without records are omitted.
func (c *Collector) GetMonthlyData(months int) ([]models.MonthlyAggregate, error) {
	series, err := c.GetHistoricalData()
	if err != nil {
		return nil, err
	}
	if months <= 0 {
		return []models.MonthlyAggregate{}, nil
	}

	from := models.StartOfMonth(c.clock.Now(), c.loc).AddDate(0, -(months - 1), 0)
	fromKey := models.DateKey(from, c.loc)

	inRange := lo.Filter(series.DailyStats, func(r models.DailyStatRecord, _ int) bool {
		return len(r.Date) == len(models.DateLayout) && r.Date >= fromKey
	})
	groups := lo.GroupBy(inRange, func(r models.DailyStatRecord) string {
		return r.Date[:7]
	})

	result := make([]models.MonthlyAggregate, 0, len(groups))
	for key, recs := range groups {
		month, err := time.ParseInLocation("2006-01", key, c.loc)
		if err != nil {
			continue
		}
		result = append(result, models.MonthlyAggregate{
			Month:       month.Format("Jan 2006"),
			Key:         key,
			Subscribers: averageOf(recs, FieldSubscribers),
			Views:       averageOf(recs, FieldViews),
			Videos:      averageOf(recs, FieldVideos),
			Count:       len(recs),
		})
	}
	slices.SortFunc(result, func(a, b models.MonthlyAggregate) int {
		return strings.Compare(a.Key, b.Key)
	})
	return result, nil
}

func (c *Collector) LastCollection() (time.Time, error) {
	var at time.Time
	_, err := storage.Load(c.store, c.platform().CollectionKey(), &at)
	return at, err
}

func (c *Collector) ClearHistoricalData() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := errors.Join(
		c.store.Remove(c.platform().HistoryKey()),
		c.store.Remove(c.platform().CollectionKey()),
	)
	if err == nil {
		c.metrics.SetHistoryRecords(string(c.platform()), 0)
		c.logger.Infof(providers.TypeCollect, "%s: historical data cleared", c.platform())
	}
	return err
}

func sortByDate(records []models.DailyStatRecord) {
	slices.SortStableFunc(records, func(a, b models.DailyStatRecord) int {
		return strings.Compare(a.Date, b.Date)
	})
}

func averageOf(records []models.DailyStatRecord, field Field) int64 {
	if len(records) == 0 {
		return 0
	}
	sum := lo.SumBy(records, field.Value)
	return int64(math.Round(float64(sum) / float64(len(records))))
}
