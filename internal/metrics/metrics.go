// Package metrics exposes conversion counters for Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JonMunkholm/fastaframes/internal/core"
)

// Metrics holds the collectors for one registry.
type Metrics struct {
	gatherer prometheus.Gatherer

	Conversions *prometheus.CounterVec
	Records     *prometheus.CounterVec
	Warnings    *prometheus.CounterVec
	Duration    *prometheus.HistogramVec
}

// New registers the collectors on reg, prefixed with "fastaframes_".
// reg must also be a Gatherer for Handler to serve it; a
// *prometheus.Registry is both.
func New(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(prometheus.WrapRegistererWithPrefix("fastaframes_", reg))

	return &Metrics{
		gatherer: reg,
		Conversions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "conversions_total",
			Help: "Conversions by direction and outcome.",
		}, []string{"direction", "outcome"}),
		Records: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "records_total",
			Help: "Records converted, by direction.",
		}, []string{"direction"}),
		Warnings: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "warnings_total",
			Help: "Per-record warnings, by code.",
		}, []string{"code"}),
		Duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "conversion_duration_seconds",
			Help:    "Time spent converting, by direction.",
			Buckets: prometheus.DefBuckets,
		}, []string{"direction"}),
	}
}

// Directions.
const (
	ToTable = "to_table"
	ToText  = "to_text"
)

// ObserveWarning counts one warning. It has the core.WarningHandler shape.
func (m *Metrics) ObserveWarning(w core.Warning) {
	m.Warnings.WithLabelValues(w.Code).Inc()
}

// ObserveConversion records the outcome of one conversion.
func (m *Metrics) ObserveConversion(direction string, records int, seconds float64, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.Conversions.WithLabelValues(direction, outcome).Inc()
	m.Duration.WithLabelValues(direction).Observe(seconds)
	if err == nil {
		m.Records.WithLabelValues(direction).Add(float64(records))
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
