// Package metrics exposes Prometheus collectors for ritual dispatches.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Modes reported in the mode label.
const (
	ModeNova      = "nova"
	ModeSimulated = "simulated"
)

// Metrics collects dispatch counters and latencies. A nil *Metrics is a no-op.
type Metrics struct {
	gatherer   prometheus.Gatherer
	dispatches *prometheus.CounterVec
	failures   *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// New registers the bridge collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		gatherer: reg,
		dispatches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "nova_bridge",
				Name:      "dispatch_total",
				Help:      "Completed ritual dispatches by ritual and mode.",
			},
			[]string{"ritual", "mode"},
		),
		failures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "nova_bridge",
				Name:      "dispatch_failures_total",
				Help:      "Ritual dispatches that failed in the automation backend.",
			},
			[]string{"ritual"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "nova_bridge",
				Name:      "dispatch_duration_seconds",
				Help:      "Ritual dispatch duration in seconds.",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
			},
			[]string{"ritual", "mode"},
		),
	}
}

// ObserveDispatch records a successful dispatch.
func (m *Metrics) ObserveDispatch(ritual, mode string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.dispatches.WithLabelValues(ritual, mode).Inc()
	m.duration.WithLabelValues(ritual, mode).Observe(elapsed.Seconds())
}

// ObserveFailure records a dispatch that the backend rejected.
func (m *Metrics) ObserveFailure(ritual string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(ritual).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
