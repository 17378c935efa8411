package infra

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "resin"

// MetricsCollector exposes a Metrics instance to Prometheus.
type MetricsCollector struct {
	m *Metrics

	ticks       *prometheus.Desc
	orders      *prometheus.Desc
	fills       *prometheus.Desc
	signals     *prometheus.Desc
	errors      *prometheus.Desc
	avgLatency  *prometheus.Desc
	lineBytes   *prometheus.Desc
	connections *prometheus.Desc
	pnl         *prometheus.Desc
}

// NewMetricsCollector wraps m as a prometheus.Collector.
func NewMetricsCollector(m *Metrics) *MetricsCollector {
	desc := func(name, help string, labels ...string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(metricsNamespace, "", name), help, labels, nil)
	}
	return &MetricsCollector{
		m:           m,
		ticks:       desc("ticks_total", "Ticks processed by the sequencer"),
		orders:      desc("orders_total", "Orders emitted by the strategy"),
		fills:       desc("fills_total", "Paper fills"),
		signals:     desc("signals_total", "Non-hold decisions", "signal"),
		errors:      desc("errors_total", "Errors while processing ticks"),
		avgLatency:  desc("tick_latency_avg_seconds", "Average tick processing latency"),
		lineBytes:   desc("telemetry_line_bytes", "Length of the last telemetry line"),
		connections: desc("feed_connections", "Active feed connections"),
		pnl:         desc("pnl", "PnL of the traded product", "kind"),
	}
}

// Describe implements prometheus.Collector.
func (c *MetricsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.ticks
	ch <- c.orders
	ch <- c.fills
	ch <- c.signals
	ch <- c.errors
	ch <- c.avgLatency
	ch <- c.lineBytes
	ch <- c.connections
	ch <- c.pnl
}

// Collect implements prometheus.Collector.
func (c *MetricsCollector) Collect(ch chan<- prometheus.Metric) {
	snap := c.m.Snapshot()

	ch <- prometheus.MustNewConstMetric(c.ticks, prometheus.CounterValue, float64(snap.TicksProcessed))
	ch <- prometheus.MustNewConstMetric(c.orders, prometheus.CounterValue, float64(snap.OrdersEmitted))
	ch <- prometheus.MustNewConstMetric(c.fills, prometheus.CounterValue, float64(snap.FillsTotal))
	ch <- prometheus.MustNewConstMetric(c.signals, prometheus.CounterValue, float64(snap.Entries), "enter")
	ch <- prometheus.MustNewConstMetric(c.signals, prometheus.CounterValue, float64(snap.TakeProfits), "take_profit")
	ch <- prometheus.MustNewConstMetric(c.signals, prometheus.CounterValue, float64(snap.StopLosses), "stop_loss")
	ch <- prometheus.MustNewConstMetric(c.errors, prometheus.CounterValue, float64(snap.ErrorsTotal))
	ch <- prometheus.MustNewConstMetric(c.avgLatency, prometheus.GaugeValue, time.Duration(snap.AvgLatencyNs).Seconds())
	ch <- prometheus.MustNewConstMetric(c.lineBytes, prometheus.GaugeValue, float64(snap.LastLineBytes))
	ch <- prometheus.MustNewConstMetric(c.connections, prometheus.GaugeValue, float64(snap.ActiveConnections))
	ch <- prometheus.MustNewConstMetric(c.pnl, prometheus.GaugeValue, snap.RealizedPnL, "realized")
	ch <- prometheus.MustNewConstMetric(c.pnl, prometheus.GaugeValue, snap.UnrealizedPnL, "unrealized")
}

// NewMetricsRegistry returns a registry holding the collector for m.
func NewMetricsRegistry(m *Metrics) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(NewMetricsCollector(m))
	return reg
}

// ServeMetrics starts a /metrics endpoint on addr in the background.
func ServeMetrics(addr string, m *Metrics) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(NewMetricsRegistry(m), promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Metrics server failed", slog.Any("error", err))
		}
	}()
	return srv
}
