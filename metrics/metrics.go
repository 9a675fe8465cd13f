// Package metrics provides Prometheus metrics for the calculators and the
// HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every ielec collector. It is separate from the default
// registry so tests can scrape it deterministically.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	// Calculation metrics
	CalculationsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ielec_calculations_total",
			Help: "Total number of calculations by calculator and outcome",
		},
		[]string{"calculator", "outcome"},
	)

	LookupMissesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ielec_lookup_misses_total",
			Help: "Table lookups with no satisfying entry",
		},
		[]string{"table"},
	)

	// HTTP metrics
	RequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ielec_http_requests_total",
			Help: "HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	RequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ielec_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Document and email metrics
	ReportsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ielec_reports_total",
			Help: "Generated documents by calculator and format",
		},
		[]string{"calculator", "format"},
	)

	EmailsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ielec_emails_total",
			Help: "Outgoing emails by provider and status",
		},
		[]string{"provider", "status"},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}

// ObserveRequest records one HTTP request.
func ObserveRequest(method, route string, status int, d time.Duration) {
	RequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	RequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// ObserveCalculation records one calculation. finite is false when the
// input was degenerate and the result holds NaN or Inf.
func ObserveCalculation(calculator string, finite bool) {
	outcome := "ok"
	if !finite {
		outcome = "degenerate"
	}
	CalculationsTotal.WithLabelValues(calculator, outcome).Inc()
}

// ObserveLookupMiss records a table lookup that found no entry.
func ObserveLookupMiss(table string) {
	LookupMissesTotal.WithLabelValues(table).Inc()
}
