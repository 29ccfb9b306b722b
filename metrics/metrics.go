// Package metrics exposes report metrics in the Prometheus format.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the report metrics on their own registry.
type Metrics struct {
	Registry *prometheus.Registry

	reportDuration *prometheus.HistogramVec
	reportRows     prometheus.Histogram
	reportErrors   *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		reportDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "finreport_report_duration_seconds",
				Help:    "Duration of report requests by outcome.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
		reportRows: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "finreport_report_rows",
				Help:    "Operations returned per report page.",
				Buckets: []float64{0, 1, 5, 10, 20, 50, 100},
			},
		),
		reportErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finreport_report_errors_total",
				Help: "Failed report requests by error kind.",
			},
			[]string{"kind"},
		),
	}
}

func (m *Metrics) ObserveReport(outcome string, d time.Duration, rows int) {
	m.reportDuration.WithLabelValues(outcome).Observe(d.Seconds())
	if outcome == "ok" {
		m.reportRows.Observe(float64(rows))
	}
}

func (m *Metrics) IncrReportError(kind string) {
	m.reportErrors.WithLabelValues(kind).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
