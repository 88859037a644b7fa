// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wneessen/weather-widget/internal/lookup"
)

const namespace = "weather_widget"

// Metrics holds the Prometheus collectors for weather lookups.
type Metrics struct {
	registry *prometheus.Registry

	Lookups          *prometheus.CounterVec   // labels: state, kind
	LookupDuration   *prometheus.HistogramVec // labels: state
	UpstreamFailures *prometheus.CounterVec   // labels: source
	LookupInFlight   prometheus.Gauge
}

// NewMetrics creates all lookup metrics on a fresh registry that also carries the Go and
// process collectors.
func NewMetrics() *Metrics {
	m := newMetrics()
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// NewMetricsForTesting creates Metrics without the runtime collectors.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookups_total",
			Help:      "Weather lookups by final state and failure kind.",
		}, []string{"state", "kind"}),
		LookupDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "lookup_duration_seconds",
			Help:      "Duration of a weather lookup including geocoding.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"state"}),
		UpstreamFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_failures_total",
			Help:      "Failed lookups by the upstream service that caused them.",
		}, []string{"source"}),
		LookupInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "lookup_in_flight",
			Help:      "Number of lookups currently running.",
		}),
	}
	m.registry.MustRegister(m.Lookups, m.LookupDuration, m.UpstreamFailures, m.LookupInFlight)
	return m
}

// LookupStarted counts a lookup as running.
func (m *Metrics) LookupStarted() {
	m.LookupInFlight.Inc()
}

// LookupFinished records outcome. Busy rejections are counted but not timed.
func (m *Metrics) LookupFinished(outcome lookup.Outcome, took time.Duration) {
	state := outcome.State.String()
	kind := string(outcome.Kind)
	if kind == "" {
		kind = "none"
	}
	m.Lookups.WithLabelValues(state, kind).Inc()
	if outcome.State == lookup.StateBusy {
		return
	}

	m.LookupInFlight.Dec()
	m.LookupDuration.WithLabelValues(state).Observe(took.Seconds())
	if outcome.Source != "" {
		m.UpstreamFailures.WithLabelValues(outcome.Source).Inc()
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
