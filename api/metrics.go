package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so several servers (and tests) can coexist
// in one process.
type Metrics struct {
	registry    *prometheus.Registry
	requests    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	views       *prometheus.CounterVec
	generate    prometheus.Histogram
	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter
	datasetRows prometheus.Gauge
}

// NewMetrics creates and registers every collector.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portemission_http_requests_total",
			Help: "Total count of HTTP requests processed by route and status.",
		}, []string{"route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "portemission_http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		views: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portemission_views_total",
			Help: "Views computed, by view name and result type.",
		}, []string{"view", "type"}),
		generate: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "portemission_generate_duration_seconds",
			Help:    "Time spent synthesizing a dataset snapshot.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "portemission_snapshot_cache_hits_total",
			Help: "Total snapshot cache hits observed.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "portemission_snapshot_cache_misses_total",
			Help: "Total snapshot cache misses observed.",
		}),
		datasetRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "portemission_dataset_rows",
			Help: "Rows in the most recently served dataset.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.duration,
		m.views,
		m.generate,
		m.cacheHits,
		m.cacheMisses,
		m.datasetRows,
	)
	return m
}

// Hit records a snapshot cache hit.
func (m *Metrics) Hit() { m.cacheHits.Inc() }

// Miss records a snapshot cache miss.
func (m *Metrics) Miss() { m.cacheMisses.Inc() }

// ObserveGenerate records one synthesis run.
func (m *Metrics) ObserveGenerate(d time.Duration) { m.generate.Observe(d.Seconds()) }

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) observeView(view, resultType string) {
	m.views.WithLabelValues(view, resultType).Inc()
}

// middleware records count and latency per route template.
func (m *Metrics) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}
