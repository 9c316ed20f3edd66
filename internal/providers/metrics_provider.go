package providers

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"pointsd/internal/structures"
	"time"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	IncAwardAttempts()
	AddPointsGranted(points int)
	IncEvictions(reason string)
	SetSessionsTracked(count int)
	SetUsersKnown(count int)
	ObservePersistenceDuration(duration time.Duration)
	ObserveAwardPassDuration(duration time.Duration)
}

// Eviction reasons reported by the scheduler.
const (
	EvictReasonCapped    = "capped"
	EvictReasonMalformed = "malformed"
)

type MetricsProvider struct {
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	cacheHits           prometheus.Counter
	cacheMisses         prometheus.Counter
	awardAttempts       prometheus.Counter
	pointsGranted       prometheus.Counter
	evictions           *prometheus.CounterVec
	sessionsTracked     prometheus.Gauge
	usersKnown          prometheus.Gauge
	persistenceDuration prometheus.Histogram
	awardPassDuration   prometheus.Histogram
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

func (m *MetricsProvider) IncAwardAttempts() {
	m.awardAttempts.Inc()
}

func (m *MetricsProvider) AddPointsGranted(points int) {
	m.pointsGranted.Add(float64(points))
}

func (m *MetricsProvider) IncEvictions(reason string) {
	m.evictions.WithLabelValues(reason).Inc()
}

func (m *MetricsProvider) SetSessionsTracked(count int) {
	m.sessionsTracked.Set(float64(count))
}

func (m *MetricsProvider) SetUsersKnown(count int) {
	m.usersKnown.Set(float64(count))
}

func (m *MetricsProvider) ObservePersistenceDuration(duration time.Duration) {
	m.persistenceDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) ObserveAwardPassDuration(duration time.Duration) {
	m.awardPassDuration.Observe(duration.Seconds())
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
			Name: "pointsd_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pointsd_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pointsd_cache_hits_total",
			Help: "Total number of response cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pointsd_cache_misses_total",
			Help: "Total number of response cache misses",
		}),

		awardAttempts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pointsd_award_attempts_total",
			Help: "Total number of per-session award attempts",
		}),

		pointsGranted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pointsd_points_granted_total",
			Help: "Total points granted across all users",
		}),

		evictions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pointsd_session_evictions_total",
			Help: "Sessions evicted from tracking, by reason",
		}, []string{"reason"}),

		sessionsTracked: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "pointsd_sessions_tracked",
			Help: "Number of voice sessions currently tracked",
		}),

		usersKnown: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "pointsd_users_known",
			Help: "Number of users present in the ledger",
		}),

		persistenceDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "pointsd_persistence_duration_seconds",
			Help:    "Duration of ledger persistence operations in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		awardPassDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "pointsd_award_pass_duration_seconds",
			Help:    "Duration of scheduler award passes in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) IncAwardAttempts()                                {}
func (n *noopMetrics) AddPointsGranted(_ int)                           {}
func (n *noopMetrics) IncEvictions(_ string)                            {}
func (n *noopMetrics) SetSessionsTracked(_ int)                         {}
func (n *noopMetrics) SetUsersKnown(_ int)                              {}
func (n *noopMetrics) ObservePersistenceDuration(_ time.Duration)       {}
func (n *noopMetrics) ObserveAwardPassDuration(_ time.Duration)         {}
