package service

import (
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Distribution modes used as metric labels.
const (
	DistributionModePreview = "preview"
	DistributionModeApply   = "apply"
	DistributionModeAsync   = "async"
)

// MetricsService encapsulates Prometheus instrumentation for the mission API.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Histogram
	cacheWrite      prometheus.Histogram
	cacheHitRatio   prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	dbQueryDuration *prometheus.HistogramVec

	distributionRuns     *prometheus.CounterVec
	distributionDuration *prometheus.HistogramVec
	missionsGenerated    prometheus.Counter
	missionsPersisted    *prometheus.CounterVec
	distributionWarnings prometheus.Counter

	cacheHitCount  uint64
	cacheMissCount uint64
}

// NewMetricsService registers the collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	m := &MetricsService{
		registry: registry,
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		cacheLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cache_latency_seconds",
			Help:    "Latency for cache lookups",
			Buckets: prometheus.DefBuckets,
		}),
		cacheWrite: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cache_write_seconds",
			Help:    "Latency for cache set operations",
			Buckets: prometheus.DefBuckets,
		}),
		cacheHitRatio: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cache_hit_ratio",
			Help: "Ratio of cache hits to total cache lookups",
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total cache hits",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total cache misses",
		}),
		dbQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Duration of database queries",
			Buckets: prometheus.DefBuckets,
		}, []string{"query"}),
		distributionRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mission_distribution_runs_total",
			Help: "Mission distribution runs by mode and outcome",
		}, []string{"mode", "outcome"}),
		distributionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mission_distribution_duration_seconds",
			Help:    "Time spent loading, distributing and storing missions",
			Buckets: prometheus.DefBuckets,
		}, []string{"mode"}),
		missionsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "missions_generated_total",
			Help: "Missions produced by the distribution engine",
		}),
		missionsPersisted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "missions_persisted_total",
			Help: "Stored missions by result",
		}, []string{"result"}),
		distributionWarnings: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mission_distribution_warnings_total",
			Help: "Warnings emitted by distribution runs",
		}),
	}

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(
		m.requestDuration, m.requestTotal,
		m.cacheLatency, m.cacheWrite, m.cacheHitRatio, m.cacheHits, m.cacheMisses,
		m.dbQueryDuration,
		m.distributionRuns, m.distributionDuration, m.missionsGenerated, m.missionsPersisted, m.distributionWarnings,
		goroutines,
	)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records cache hit/miss metrics and updates hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	total := hits + atomic.LoadUint64(&m.cacheMissCount)
	if total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveDBQuery records database query timing.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(label).Observe(duration.Seconds())
}

// ObserveDistribution records one distribution run.
func (m *MetricsService) ObserveDistribution(mode string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.distributionRuns.WithLabelValues(mode, outcome).Inc()
	m.distributionDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

// RecordGeneratedMissions counts engine output and its warnings.
func (m *MetricsService) RecordGeneratedMissions(missions, warnings int) {
	if m == nil {
		return
	}
	m.missionsGenerated.Add(float64(missions))
	m.distributionWarnings.Add(float64(warnings))
}

// RecordPersistedMissions counts inserted and duplicate missions.
func (m *MetricsService) RecordPersistedMissions(inserted, skipped int) {
	if m == nil {
		return
	}
	m.missionsPersisted.WithLabelValues("inserted").Add(float64(inserted))
	m.missionsPersisted.WithLabelValues("skipped").Add(float64(skipped))
}
