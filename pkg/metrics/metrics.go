// Package metrics exposes Prometheus metrics for hierarchy builds and ray queries.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/df07/go-raytracer-bvh/pkg/accel"
	"github.com/df07/go-raytracer-bvh/pkg/scene"
)

// Query kinds and results used as label values
const (
	QueryNearest  = "nearest"
	QueryAny      = "any"
	QueryOccluded = "occluded"

	ResultHit  = "hit"
	ResultMiss = "miss"
)

// Metrics owns a registry and the collectors registered on it
type Metrics struct {
	registry *prometheus.Registry

	queries       *prometheus.CounterVec
	queryDuration *prometheus.HistogramVec
	buildDuration prometheus.Histogram
	rebuilds      prometheus.Counter
	nodes         prometheus.Gauge
	leaves        prometheus.Gauge
	depth         prometheus.Gauge
	primitives    prometheus.Gauge
}

// New creates a registry with the bvh collectors plus the standard Go
// runtime and process collectors
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		// queries counts ray queries by kind and result
		queries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bvh_queries_total",
			Help: "Total ray queries by kind and result",
		}, []string{"query", "result"}),

		// queryDuration tracks single query latency
		queryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bvh_query_duration_seconds",
			Help:    "Ray query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0000005, 2, 16), // 0.5us to ~16ms
		}, []string{"query"}),

		buildDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "bvh_build_duration_seconds",
			Help:    "Hierarchy build duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10), // 0.1ms to ~26s
		}),
		rebuilds: factory.NewCounter(prometheus.CounterOpts{
			Name: "bvh_rebuilds_total",
			Help: "Total scene snapshots published",
		}),
		nodes: factory.NewGauge(prometheus.GaugeOpts{
			Name: "bvh_nodes",
			Help: "Number of nodes in the current hierarchy",
		}),
		leaves: factory.NewGauge(prometheus.GaugeOpts{
			Name: "bvh_leaves",
			Help: "Number of leaves in the current hierarchy",
		}),
		depth: factory.NewGauge(prometheus.GaugeOpts{
			Name: "bvh_max_depth",
			Help: "Depth of the deepest leaf in the current hierarchy",
		}),
		primitives: factory.NewGauge(prometheus.GaugeOpts{
			Name: "bvh_primitives",
			Help: "Number of primitives in the current scene",
		}),
	}
}

// Registry returns the registry the collectors live on
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveBuild records the statistics of a freshly built hierarchy
func (m *Metrics) ObserveBuild(stats accel.Stats) {
	m.buildDuration.Observe(stats.BuildTime.Seconds())
	m.nodes.Set(float64(stats.Nodes))
	m.leaves.Set(float64(stats.Leaves))
	m.depth.Set(float64(stats.MaxDepth))
}

// ObserveSnapshot records a published scene snapshot
func (m *Metrics) ObserveSnapshot(snap *scene.Snapshot) {
	m.rebuilds.Inc()
	m.primitives.Set(float64(snap.Len()))
	if stats := snap.Stats(); stats != nil {
		m.ObserveBuild(*stats)
	}
}

func (m *Metrics) observe(query string, hit bool, start time.Time) {
	result := ResultMiss
	if hit {
		result = ResultHit
	}
	m.queries.WithLabelValues(query, result).Inc()
	m.queryDuration.WithLabelValues(query).Observe(time.Since(start).Seconds())
}
