// Package metrics exposes Prometheus collectors for the calculation engine,
// the import layer, and the WebSocket hub.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all application collectors, registered on a dedicated
// registry so tests can create isolated instances.
type Metrics struct {
	registry *prometheus.Registry

	CalculationsTotal   *prometheus.CounterVec
	CalculationDuration prometheus.Histogram
	StoresCalculated    prometheus.Counter
	ImportRowsTotal     *prometheus.CounterVec
	ImportsTotal        *prometheus.CounterVec
	JobsInFlight        prometheus.Gauge
	JobsTotal           *prometheus.CounterVec
	WebSocketClients    prometheus.Gauge
	HTTPRequestsTotal   *prometheus.CounterVec
}

// New creates the collectors and registers them on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		CalculationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storepulse",
			Name:      "calculations_total",
			Help:      "Monthly calculations run, by outcome.",
		}, []string{"outcome"}),
		CalculationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "storepulse",
			Name:      "calculation_duration_seconds",
			Help:      "Wall time of a full monthly calculation.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		StoresCalculated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "storepulse",
			Name:      "stores_calculated_total",
			Help:      "Per-store results produced.",
		}),
		ImportRowsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storepulse",
			Name:      "import_rows_total",
			Help:      "Workbook rows processed, by sheet and result.",
		}, []string{"sheet", "result"}),
		ImportsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storepulse",
			Name:      "imports_total",
			Help:      "Workbook imports, by outcome.",
		}, []string{"outcome"}),
		JobsInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "storepulse",
			Name:      "jobs_in_flight",
			Help:      "Calculation jobs currently executing.",
		}),
		JobsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storepulse",
			Name:      "jobs_total",
			Help:      "Calculation jobs finished, by status.",
		}, []string{"status"}),
		WebSocketClients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "storepulse",
			Name:      "websocket_clients",
			Help:      "Connected WebSocket clients.",
		}),
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storepulse",
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by method, path and status.",
		}, []string{"method", "path", "status"}),
	}
}

// Handler returns the Prometheus scrape handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveCalculation records one calculation run.
func (m *Metrics) ObserveCalculation(duration time.Duration, stores int, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.CalculationsTotal.WithLabelValues(outcome).Inc()
	if err == nil {
		m.CalculationDuration.Observe(duration.Seconds())
		m.StoresCalculated.Add(float64(stores))
	}
}
