package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "signal_graph"

// Metrics holds the collectors the graph pipeline and its cache report to.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	builds        *prometheus.CounterVec
	buildDuration prometheus.Histogram
	failures      prometheus.Counter
	cacheRequests *prometheus.CounterVec
	nodes         *prometheus.GaugeVec
	links         *prometheus.GaugeVec
}

// New registers the collectors on reg. Pass prometheus.DefaultRegisterer to
// expose them through promhttp.Handler.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		builds: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "builds_total",
			Help:      "Graph builds by result (ok, error).",
		}, []string{"result"}),
		buildDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Wall time of a complete graph build.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		failures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extraction_failures_total",
			Help:      "Note files that could not be read or extracted.",
		}),
		cacheRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "requests_total",
			Help:      "Graph cache lookups by result (hit, miss).",
		}, []string{"result"}),
		nodes: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "nodes",
			Help:      "Nodes in the latest graph by type.",
		}, []string{"type"}),
		links: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "links",
			Help:      "Links in the latest graph by type.",
		}, []string{"type"}),
	}
}

// BuildSucceeded records a finished build and the shape of its graph.
func (m *Metrics) BuildSucceeded(d time.Duration, failures int, nodesByType, linksByType map[string]int) {
	if m == nil {
		return
	}
	m.builds.WithLabelValues("ok").Inc()
	m.buildDuration.Observe(d.Seconds())
	m.failures.Add(float64(failures))

	m.nodes.Reset()
	for t, n := range nodesByType {
		m.nodes.WithLabelValues(t).Set(float64(n))
	}
	m.links.Reset()
	for t, n := range linksByType {
		m.links.WithLabelValues(t).Set(float64(n))
	}
}

func (m *Metrics) BuildFailed(d time.Duration) {
	if m == nil {
		return
	}
	m.builds.WithLabelValues("error").Inc()
	m.buildDuration.Observe(d.Seconds())
}

func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.cacheRequests.WithLabelValues("hit").Inc()
}

func (m *Metrics) CacheMiss() {
	if m == nil {
		return
	}
	m.cacheRequests.WithLabelValues("miss").Inc()
}
