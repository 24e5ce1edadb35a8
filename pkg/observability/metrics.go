// Package observability exposes the engine's Prometheus metrics.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/plumedoc/plume/pkg/domain"
)

// Metrics holds the collectors of one engine instance.
type Metrics struct {
	TurnsTotal         *prometheus.CounterVec
	DocumentsCompleted prometheus.Counter
	FallbackOutcomes   *prometheus.CounterVec
	BreakerOpen        prometheus.Gauge
}

// NewMetrics creates and registers the collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		TurnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "plume",
			Name:      "dialogue_turns_total",
			Help:      "Dialogue turns handled, by state at turn start.",
		}, []string{"state"}),
		DocumentsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "plume",
			Name:      "documents_completed_total",
			Help:      "Documents assembled to completion.",
		}),
		FallbackOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "plume",
			Name:      "fallback_requests_total",
			Help:      "Fallback responder outcomes.",
		}, []string{"outcome"}),
		BreakerOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "plume",
			Name:      "breaker_open",
			Help:      "1 while the generative-service breaker is open.",
		}),
	}
	reg.MustRegister(m.TurnsTotal, m.DocumentsCompleted, m.FallbackOutcomes, m.BreakerOpen)
	return m
}

// ObserveTurn records a dialogue turn.
func (m *Metrics) ObserveTurn(state domain.DialogueState) {
	m.TurnsTotal.WithLabelValues(string(state)).Inc()
}

// ObserveFallback records a fallback outcome and keeps the breaker gauge in
// step with the short-circuit signal.
func (m *Metrics) ObserveFallback(outcome string) {
	m.FallbackOutcomes.WithLabelValues(outcome).Inc()
	if outcome == "short_circuit" {
		m.BreakerOpen.Set(1)
	} else {
		m.BreakerOpen.Set(0)
	}
}
