package service

import (
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/faculty-achievement-api/internal/models"
)

const metricsNamespace = "faculty_achievements"

// Review outcome labels. Failed reviews are labelled with their lower-cased
// error code, so a partial failure arrives as "partial_failure".
const (
	ReviewOutcomeSuccess        = "success"
	ReviewOutcomePartialFailure = "partial_failure"
)

// MetricsService owns a private Prometheus registry and mirrors the counters
// the admin snapshot endpoint reports.
type MetricsService struct {
	registry *prometheus.Registry
	handler  http.Handler

	requestDuration *prometheus.HistogramVec
	cacheLatency    *prometheus.HistogramVec
	cacheHitRatio   prometheus.Gauge
	reviews         *prometheus.CounterVec
	partialFailures prometheus.Counter
	notifications   *prometheus.CounterVec

	tally metricsTally
}

type metricsTally struct {
	requests        atomic.Uint64
	requestNanos    atomic.Uint64
	cacheHits       atomic.Uint64
	cacheMisses     atomic.Uint64
	reviews         atomic.Uint64
	partialFailures atomic.Uint64
	notifySent      atomic.Uint64
	notifyFailed    atomic.Uint64
}

// NewMetricsService registers the HTTP, cache, review and notification
// collectors plus the standard Go runtime and process collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{Namespace: metricsNamespace}),
	)
	factory := promauto.With(registry)

	return &MetricsService{
		registry: registry,
		handler:  promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		cacheLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "cache",
			Name:      "operation_seconds",
			Help:      "Dashboard cache latency by operation.",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5},
		}, []string{"op"}),
		cacheHitRatio: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "cache",
			Name:      "hit_ratio",
			Help:      "Share of cache lookups served from cache.",
		}),
		reviews: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "reviews_total",
			Help:      "Review attempts by action and outcome.",
		}, []string{"action", "outcome"}),
		partialFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "review_partial_failures_total",
			Help:      "Approvals whose counter increment landed but whose status update failed.",
		}),
		notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "notification_emails_total",
			Help:      "Notification e-mail deliveries by result.",
		}, []string{"result"}),
	}
}

// Handler exposes the Prometheus scrape endpoint.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records one served request against its route template.
func (m *MetricsService) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(duration.Seconds())
	m.tally.requests.Add(1)
	m.tally.requestNanos.Add(uint64(duration.Nanoseconds()))
}

// RecordCacheOperation records a lookup and refreshes the hit ratio gauge.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.WithLabelValues("get").Observe(duration.Seconds())
	if hit {
		m.tally.cacheHits.Add(1)
	} else {
		m.tally.cacheMisses.Add(1)
	}
	m.cacheHitRatio.Set(m.hitRatio())
}

// ObserveCacheWrite records a cache write.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.WithLabelValues("set").Observe(duration.Seconds())
}

// ObserveReview counts a review attempt. A partial failure is also counted on
// its own series so it can be alerted on directly.
func (m *MetricsService) ObserveReview(action, outcome string) {
	if m == nil {
		return
	}
	m.reviews.WithLabelValues(action, outcome).Inc()
	m.tally.reviews.Add(1)
	if outcome == ReviewOutcomePartialFailure {
		m.partialFailures.Inc()
		m.tally.partialFailures.Add(1)
	}
}

// ObserveNotification counts an e-mail delivery attempt.
func (m *MetricsService) ObserveNotification(delivered bool) {
	if m == nil {
		return
	}
	result := "failed"
	counter := &m.tally.notifyFailed
	if delivered {
		result = "sent"
		counter = &m.tally.notifySent
	}
	m.notifications.WithLabelValues(result).Inc()
	counter.Add(1)
}

// Snapshot returns the aggregated counters for the admin API.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	snapshot := models.SystemMetrics{
		RequestsTotal:       m.tally.requests.Load(),
		CacheHitRatio:       m.hitRatio(),
		ReviewsTotal:        m.tally.reviews.Load(),
		PartialFailures:     m.tally.partialFailures.Load(),
		NotificationsSent:   m.tally.notifySent.Load(),
		NotificationsFailed: m.tally.notifyFailed.Load(),
		Goroutines:          runtime.NumGoroutine(),
		GeneratedAt:         time.Now().UTC(),
	}
	if snapshot.RequestsTotal > 0 {
		avg := time.Duration(m.tally.requestNanos.Load() / snapshot.RequestsTotal)
		snapshot.AverageRequestDurationMs = float64(avg) / float64(time.Millisecond)
	}
	return snapshot
}

func (m *MetricsService) hitRatio() float64 {
	hits := m.tally.cacheHits.Load()
	total := hits + m.tally.cacheMisses.Load()
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}
