// Package observability provides the Prometheus metrics of the planner.
//
// Logging lives in internal/infrastructure/logging; this package only
// counts what happens to collaborator calls, sessions and reports.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collaborator endpoints.
const (
	EndpointStates   = "get_states"
	EndpointPrice    = "get_price"
	EndpointOptimize = "optimize"
)

// Call outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeFailed   = "failed"
	OutcomeOffline  = "offline"
	OutcomeConflict = "conflict"
)

// Metrics groups the planner's collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	CollaboratorCalls *prometheus.CounterVec
	StaleResponses    prometheus.Counter
	ActiveSessions    prometheus.Gauge
	ReportsRendered   *prometheus.CounterVec
	Exports           *prometheus.CounterVec
}

// NewMetrics creates and registers all collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		CollaboratorCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cropplanner",
			Name:      "collaborator_calls_total",
			Help:      "Calls to the agricultural data service by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		StaleResponses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cropplanner",
			Name:      "stale_responses_total",
			Help:      "Collaborator responses dropped because the selection changed.",
		}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cropplanner",
			Name:      "active_sessions",
			Help:      "Planner sessions currently held in memory.",
		}),
		ReportsRendered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cropplanner",
			Name:      "reports_rendered_total",
			Help:      "Reports rendered by output format.",
		}, []string{"format"}),
		Exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cropplanner",
			Name:      "exports_total",
			Help:      "Report exports by storage driver and outcome.",
		}, []string{"driver", "outcome"}),
	}

	m.registry.MustRegister(
		m.CollaboratorCalls,
		m.StaleResponses,
		m.ActiveSessions,
		m.ReportsRendered,
		m.Exports,
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveCall counts one collaborator call. Safe on a nil receiver.
func (m *Metrics) ObserveCall(endpoint, outcome string) {
	if m == nil {
		return
	}
	m.CollaboratorCalls.WithLabelValues(endpoint, outcome).Inc()
}

// ObserveStale counts a dropped response. Safe on a nil receiver.
func (m *Metrics) ObserveStale() {
	if m == nil {
		return
	}
	m.StaleResponses.Inc()
}

// ObserveReport counts a rendered report. Safe on a nil receiver.
func (m *Metrics) ObserveReport(format string) {
	if m == nil {
		return
	}
	m.ReportsRendered.WithLabelValues(format).Inc()
}

// ObserveExport counts an export attempt. Safe on a nil receiver.
func (m *Metrics) ObserveExport(driver, outcome string) {
	if m == nil {
		return
	}
	m.Exports.WithLabelValues(driver, outcome).Inc()
}

// SessionOpened and SessionClosed track the active session gauge.
func (m *Metrics) SessionOpened() {
	if m != nil {
		m.ActiveSessions.Inc()
	}
}

func (m *Metrics) SessionClosed() {
	if m != nil {
		m.ActiveSessions.Dec()
	}
}
