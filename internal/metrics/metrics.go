// Package metrics exposes Prometheus counters for the save pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the registered collectors. One instance is shared by
// the engine, dispatcher, and API server.
type Metrics struct {
	registry *prometheus.Registry

	TransitionsDetected *prometheus.CounterVec
	NotificationsSent   *prometheus.CounterVec
	RuleEvents          prometheus.Counter
	SavesTotal          *prometheus.CounterVec
}

// New registers the statewatch collectors on a private registry so
// tests can build isolated instances.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		TransitionsDetected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "statewatch_transitions_detected_total",
			Help: "Workflow state transitions detected across save cycles.",
		}, []string{"record_type"}),
		NotificationsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "statewatch_notifications_total",
			Help: "Notification delivery attempts by channel and outcome.",
		}, []string{"channel", "outcome"}),
		RuleEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "statewatch_rule_events_total",
			Help: "State change events emitted to the rules engine.",
		}),
		SavesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "statewatch_saves_total",
			Help: "Record save cycles processed, by record type.",
		}, []string{"record_type"}),
	}

	registry.MustRegister(m.TransitionsDetected, m.NotificationsSent, m.RuleEvents, m.SavesTotal)
	return m
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
