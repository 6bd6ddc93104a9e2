// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	RenderDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chart_render_duration_seconds",
			Help:    "Time spent drawing a chart frame",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
		},
		[]string{"kind"},
	)

	ImageCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chart_image_cache_total",
			Help: "Chart PNG cache lookups by result",
		},
		[]string{"result"},
	)

	SnapshotLoads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snapshot_loads_total",
			Help: "Snapshot loads by trigger",
		},
		[]string{"trigger"},
	)

	SourceFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "record_source_failures_total",
			Help: "Record fetches that failed and were replaced by an empty list",
		},
		[]string{"source"},
	)

	ReloadQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "reload_queue_depth",
			Help: "Snapshot reload jobs waiting for a worker",
		},
	)

	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "chart_sessions_active",
			Help: "Student chart sessions held in memory",
		},
	)
)

// Registry holds every collector above plus the Go runtime collectors.
var Registry = prometheus.NewRegistry()

var initOnce sync.Once

func Init() {
	initOnce.Do(func() {
		Registry.MustRegister(
			RequestCounter,
			RequestDuration,
			RenderDuration,
			ImageCache,
			SnapshotLoads,
			SourceFailures,
			ReloadQueueDepth,
			ActiveSessions,
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	})
}

func ObserveRequest(method, endpoint string, status int, d time.Duration) {
	RequestCounter.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(d.Seconds())
}

func ObserveRender(kind string, d time.Duration) {
	RenderDuration.WithLabelValues(kind).Observe(d.Seconds())
}

func CacheLookup(hit bool) {
	if hit {
		ImageCache.WithLabelValues("hit").Inc()
		return
	}
	ImageCache.WithLabelValues("miss").Inc()
}

func Handler() http.Handler {
	Init()
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
