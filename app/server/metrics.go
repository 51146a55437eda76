package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics provides observability for tool calls and the loaded catalog
type Metrics struct {
	registry *prometheus.Registry

	// tool calls by tool name and outcome
	ToolCalls *prometheus.CounterVec

	// tool call latency by tool name
	ToolLatency *prometheus.HistogramVec

	// number of entries in the last loaded catalog
	CatalogEntries prometheus.Gauge
}

// NewMetrics creates metrics registered on a private registry
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		ToolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "border_items_tool_calls_total",
			Help: "Total MCP tool calls by tool and outcome",
		}, []string{"tool", "outcome"}), // outcome: "ok", "error"

		ToolLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "border_items_tool_duration_seconds",
			Help:    "Duration of MCP tool calls including catalog load",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
		}, []string{"tool"}),

		CatalogEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "border_items_catalog_entries",
			Help: "Number of entries in the loaded catalog",
		}),
	}
	m.registry.MustRegister(m.ToolCalls, m.ToolLatency, m.CatalogEntries)
	return m
}

// ObserveCall records one tool call
func (m *Metrics) ObserveCall(tool string, d time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.ToolCalls.WithLabelValues(tool, outcome).Inc()
	m.ToolLatency.WithLabelValues(tool).Observe(d.Seconds())
}

// SetCatalogSize records the number of loaded catalog entries
func (m *Metrics) SetCatalogSize(n int) {
	if m != nil {
		m.CatalogEntries.Set(float64(n))
	}
}

// Handler returns the http handler exposing the metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
