package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "seclab_dashboard"

// Metrics holds the dashboard collectors
type Metrics struct {
	registry *prometheus.Registry

	tableLoads     *prometheus.CounterVec
	tableRows      prometheus.Gauge
	tableLoadedAt  prometheus.Gauge
	renders        *prometheus.CounterVec
	renderDuration prometheus.Histogram
	exports        prometheus.Counter
	exportedRows   prometheus.Counter
	sessions       prometheus.Gauge
}

// New creates and registers the collectors on a private registry
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.tableLoads = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "table_loads_total",
		Help:      "Event table loads by result",
	}, []string{"result"})
	m.tableRows = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "table_rows",
		Help:      "Rows in the currently cached event table",
	})
	m.tableLoadedAt = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "table_loaded_timestamp_seconds",
		Help:      "Unix timestamp of the last successful table load",
	})
	m.renders = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "renders_total",
		Help:      "View renders by trigger",
	}, []string{"trigger"})
	m.renderDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "render_duration_seconds",
		Help:      "Time spent filtering and aggregating one view",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
	})
	m.exports = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "exports_total",
		Help:      "CSV exports served",
	})
	m.exportedRows = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "exported_rows_total",
		Help:      "Rows written to CSV exports",
	})
	m.sessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_sessions",
		Help:      "Connected websocket sessions",
	})

	m.registry.MustRegister(
		m.tableLoads, m.tableRows, m.tableLoadedAt,
		m.renders, m.renderDuration,
		m.exports, m.exportedRows, m.sessions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// TableLoaded records a successful load
func (m *Metrics) TableLoaded(rows int) {
	m.tableLoads.WithLabelValues("success").Inc()
	m.tableRows.Set(float64(rows))
	m.tableLoadedAt.SetToCurrentTime()
}

// TableLoadFailed records a failed load
func (m *Metrics) TableLoadFailed() {
	m.tableLoads.WithLabelValues("error").Inc()
}

// ObserveRender records one render pass
func (m *Metrics) ObserveRender(trigger string, d time.Duration) {
	m.renders.WithLabelValues(trigger).Inc()
	m.renderDuration.Observe(d.Seconds())
}

// Exported records a CSV export
func (m *Metrics) Exported(rows int) {
	m.exports.Inc()
	m.exportedRows.Add(float64(rows))
}

// SessionOpened increments the active session gauge
func (m *Metrics) SessionOpened() {
	m.sessions.Inc()
}

// SessionClosed decrements the active session gauge
func (m *Metrics) SessionClosed() {
	m.sessions.Dec()
}
