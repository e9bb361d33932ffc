package providers

import (
	"creatorstats/internal/structures"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	IncRemoteCalls(platform, outcome string)
	IncSnapshotsServed(platform, source string)
	ObserveStoreWriteDuration(duration time.Duration)
	SetHistoryRecords(platform string, count int)
}

type MetricsProvider struct {
	requestsTotal      *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
	cacheHits          prometheus.Counter
	cacheMisses        prometheus.Counter
	remoteCalls        *prometheus.CounterVec
	snapshotsServed    *prometheus.CounterVec
	storeWriteDuration prometheus.Histogram
	historyRecords     *prometheus.GaugeVec
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) IncRemoteCalls(platform, outcome string) {
	m.remoteCalls.WithLabelValues(platform, outcome).Inc()
}

func (m *MetricsProvider) IncSnapshotsServed(platform, source string) {
	m.snapshotsServed.WithLabelValues(platform, source).Inc()
}

func (m *MetricsProvider) ObserveStoreWriteDuration(duration time.Duration) {
	m.storeWriteDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) SetHistoryRecords(platform string, count int) {
	m.historyRecords.WithLabelValues(platform).Set(float64(count))
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	return &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "creatorstats_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "creatorstats_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "creatorstats_cache_hits_total",
			Help: "Total number of response cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "creatorstats_cache_misses_total",
			Help: "Total number of response cache misses",
		}),

		remoteCalls: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "creatorstats_remote_calls_total",
			Help: "Upstream API call attempts by outcome",
		}, []string{"platform", "outcome"}),

		snapshotsServed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "creatorstats_snapshots_served_total",
			Help: "Snapshots served by data source (fresh, cached, synthetic)",
		}, []string{"platform", "source"}),

		storeWriteDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "creatorstats_store_write_duration_seconds",
			Help:    "Duration of key-value store writes in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		historyRecords: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "creatorstats_history_records",
			Help: "Number of daily records in the historical series",
		}, []string{"platform"}),
	}
}

// noopMetrics is used when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) IncRemoteCalls(_, _ string)                       {}
func (n *noopMetrics) IncSnapshotsServed(_, _ string)                   {}
func (n *noopMetrics) ObserveStoreWriteDuration(_ time.Duration)        {}
func (n *noopMetrics) SetHistoryRecords(_ string, _ int)                {}

// NoopMetrics is exported for callers that run without the HTTP server (CLI commands).
func NoopMetrics() MetricsProviderInterface {
	return &noopMetrics{}
}
