package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the server's Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	toolCalls    *prometheus.CounterVec
	toolDuration *prometheus.HistogramVec
	nodesKept    prometheus.Histogram
	treeTokens   prometheus.Histogram
	liveSessions prometheus.GaugeFunc
}

// NewMetrics registers the collectors on a fresh registry. sessions reports
// the live session count when scraped.
func NewMetrics(namespace string, sessions func() int) *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	m := &Metrics{registry: reg}

	m.toolCalls = f.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_calls_total",
			Help:      "Total number of MCP tool calls",
		},
		[]string{"tool", "status"},
	)
	m.toolDuration = f.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tool_duration_seconds",
			Help:      "MCP tool call duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		},
		[]string{"tool"},
	)
	m.nodesKept = f.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "reduction_kept_ratio",
		Help:      "Share of parsed nodes left after reduction",
		Buckets:   prometheus.LinearBuckets(0.05, 0.1, 10),
	})
	m.treeTokens = f.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "reduced_tree_tokens",
		Help:      "Token count of serialized reduced trees",
		Buckets:   prometheus.ExponentialBuckets(64, 2, 10),
	})
	m.liveSessions = f.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "sessions",
		Help:      "Number of live reduction sessions",
	}, func() float64 { return float64(sessions()) })
	return m
}

// ObserveCall records one tool call.
func (m *Metrics) ObserveCall(tool string, failed bool, elapsed time.Duration) {
	status := "ok"
	if failed {
		status = "error"
	}
	m.toolCalls.WithLabelValues(tool, status).Inc()
	m.toolDuration.WithLabelValues(tool).Observe(elapsed.Seconds())
}

// ObserveReduction records how much of a dump survived and what it costs.
func (m *Metrics) ObserveReduction(parsed, kept, tokens int) {
	if parsed > 0 {
		m.nodesKept.Observe(float64(kept) / float64(parsed))
	}
	m.treeTokens.Observe(float64(tokens))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
