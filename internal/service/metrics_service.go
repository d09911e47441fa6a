package service

import (
	"net/http"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/perda-lpj-api/internal/models"
	"github.com/noah-isme/perda-lpj-api/pkg/jobs"
)

const metricsNamespace = "perda"

// MetricsService owns the Prometheus registry and keeps running totals for the
// /system/metrics snapshot.
type MetricsService struct {
	registry *prometheus.Registry
	handler  http.Handler

	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
	cacheLatency    *prometheus.HistogramVec
	cacheHitRatio   prometheus.Gauge
	compileDuration *prometheus.HistogramVec
	compilePages    prometheus.Histogram

	cacheHitCount        atomic.Uint64
	cacheMissCount       atomic.Uint64
	requestCount         atomic.Uint64
	requestDurationTotal atomic.Int64
	compileCount         atomic.Uint64
	compileFailures      atomic.Uint64
	compileDurationTotal atomic.Int64
	compiledPages        atomic.Uint64

	queueMu sync.RWMutex
	queue   func() jobs.Stats
}

// NewMetricsService registers the HTTP, cache and compile collectors.
func NewMetricsService() *MetricsService {
	m := &MetricsService{registry: prometheus.NewRegistry()}

	m.requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
	m.requestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	m.cacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "cache",
		Name:      "lookups_total",
		Help:      "Document cache lookups by result",
	}, []string{"result"})
	m.cacheLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Subsystem: "cache",
		Name:      "operation_seconds",
		Help:      "Latency of cache reads and writes",
		Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
	}, []string{"op"})
	m.cacheHitRatio = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Subsystem: "cache",
		Name:      "hit_ratio",
		Help:      "Ratio of cache hits to total cache lookups",
	})

	m.compileDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Subsystem: "compile",
		Name:      "duration_seconds",
		Help:      "Duration of report compilations",
		Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
	}, []string{"outcome"})
	m.compilePages = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Subsystem: "compile",
		Name:      "pages",
		Help:      "Page count of compiled reports",
		Buckets:   prometheus.ExponentialBuckets(8, 2, 8),
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "goroutines",
		Help:      "Number of running goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})
	queueDepth := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Subsystem: "compile",
		Name:      "queue_depth",
		Help:      "Compile jobs waiting for a worker",
	}, func() float64 {
		return float64(m.queueStats().Depth)
	})
	queueInFlight := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Subsystem: "compile",
		Name:      "queue_in_flight",
		Help:      "Compile jobs currently being processed",
	}, func() float64 {
		return float64(m.queueStats().InFlight)
	})

	m.registry.MustRegister(
		m.requestDuration, m.requestTotal,
		m.cacheLookups, m.cacheLatency, m.cacheHitRatio,
		m.compileDuration, m.compilePages,
		goroutines, queueDepth, queueInFlight,
	)
	m.handler = promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return m
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

// TrackQueue makes the compile queue's depth visible in gauges and snapshots.
func (m *MetricsService) TrackQueue(stats func() jobs.Stats) {
	if m == nil {
		return
	}
	m.queueMu.Lock()
	m.queue = stats
	m.queueMu.Unlock()
}

func (m *MetricsService) queueStats() jobs.Stats {
	m.queueMu.RLock()
	defer m.queueMu.RUnlock()
	if m.queue == nil {
		return jobs.Stats{}
	}
	return m.queue()
}

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	code := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, code).Inc()
	m.requestCount.Add(1)
	m.requestDurationTotal.Add(duration.Nanoseconds())
}

// RecordCacheOperation records a cache lookup and refreshes the hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.WithLabelValues("get").Observe(duration.Seconds())
	if hit {
		m.cacheLookups.WithLabelValues("hit").Inc()
		m.cacheHitCount.Add(1)
	} else {
		m.cacheLookups.WithLabelValues("miss").Inc()
		m.cacheMissCount.Add(1)
	}
	if ratio, ok := m.hitRatio(); ok {
		m.cacheHitRatio.Set(ratio)
	}
}

// ObserveCacheWrite tracks the duration of cache writes.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.WithLabelValues("set").Observe(duration.Seconds())
}

// ObserveCompile records one assembler run. pages is ignored for failed runs.
func (m *MetricsService) ObserveCompile(duration time.Duration, pages int, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
		m.compileFailures.Add(1)
	} else {
		m.compilePages.Observe(float64(pages))
		m.compiledPages.Add(uint64(pages))
	}
	m.compileDuration.WithLabelValues(outcome).Observe(duration.Seconds())
	m.compileCount.Add(1)
	m.compileDurationTotal.Add(duration.Nanoseconds())
}

func (m *MetricsService) hitRatio() (float64, bool) {
	hits := m.cacheHitCount.Load()
	total := hits + m.cacheMissCount.Load()
	if total == 0 {
		return 0, false
	}
	return float64(hits) / float64(total), true
}

// Snapshot returns aggregated metrics for the system metrics endpoint.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	ratio, _ := m.hitRatio()
	queue := m.queueStats()
	return models.SystemMetrics{
		CacheHitRatio:            ratio,
		CacheHits:                m.cacheHitCount.Load(),
		CacheMisses:              m.cacheMissCount.Load(),
		RequestsTotal:            m.requestCount.Load(),
		AverageRequestDurationMs: averageMillis(m.requestDurationTotal.Load(), m.requestCount.Load()),
		CompilesTotal:            m.compileCount.Load(),
		CompileFailures:          m.compileFailures.Load(),
		AverageCompileDurationMs: averageMillis(m.compileDurationTotal.Load(), m.compileCount.Load()),
		PagesCompiled:            m.compiledPages.Load(),
		QueueDepth:               queue.Depth,
		QueueInFlight:            queue.InFlight,
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}

func averageMillis(totalNanos int64, count uint64) float64 {
	if count == 0 {
		return 0
	}
	return float64(totalNanos) / float64(count) / float64(time.Millisecond)
}
