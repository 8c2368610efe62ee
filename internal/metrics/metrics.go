// Package metrics exposes monitor cycle counters and gauges over Prometheus.
package metrics

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rubanwatch/internal/monitor"
)

// Collector owns a private registry so tests can create collectors freely.
type Collector struct {
	reg *prometheus.Registry

	Vehicles       prometheus.Gauge
	ScheduledTrips prometheus.Gauge
	MissingTrips   prometheus.Gauge
	Duplicates     prometheus.Gauge
	Anomalies      prometheus.Gauge

	Cycles     prometheus.Counter
	FeedErrors prometheus.Counter

	CycleDuration prometheus.Histogram
}

// NewCollector builds and registers all monitor metrics.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		Vehicles: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rubanwatch_vehicles",
			Help: "Vehicles present in the last feed snapshot.",
		}),
		ScheduledTrips: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rubanwatch_scheduled_trips",
			Help: "Trips the static schedule expects to be running now.",
		}),
		MissingTrips: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rubanwatch_missing_trips",
			Help: "Scheduled trips with no vehicle in the feed.",
		}),
		Duplicates: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rubanwatch_duplicate_labels",
			Help: "Vehicle labels reported on more than one trip.",
		}),
		Anomalies: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rubanwatch_anomalies",
			Help: "Vehicles flagged by the anomaly rules in the last cycle.",
		}),
		Cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rubanwatch_cycles_total",
			Help: "Total monitor cycles completed.",
		}),
		FeedErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rubanwatch_feed_errors_total",
			Help: "Total vehicle position fetch or decode failures.",
		}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "rubanwatch_cycle_duration_seconds",
			Help:    "Duration of one monitor cycle.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
	}

	reg.MustRegister(
		c.Vehicles, c.ScheduledTrips, c.MissingTrips, c.Duplicates, c.Anomalies,
		c.Cycles, c.FeedErrors, c.CycleDuration,
	)
	return c
}

// ObserveCycle records one completed cycle.
func (c *Collector) ObserveCycle(report *monitor.Report, elapsed time.Duration) {
	c.Vehicles.Set(float64(len(report.Vehicles)))
	c.ScheduledTrips.Set(float64(len(report.ScheduledTrips)))
	c.MissingTrips.Set(float64(len(report.Missing)))
	c.Duplicates.Set(float64(len(report.Duplicates)))
	c.Anomalies.Set(float64(len(report.Anomalies)))
	c.Cycles.Inc()
	c.CycleDuration.Observe(elapsed.Seconds())
}

// Handler serves the registry in Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}

// Serve starts an HTTP server exposing /metrics on the given address.
func (c *Collector) Serve(addr string, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()
	logger.Info("metrics listening", "addr", addr)
	return srv
}
