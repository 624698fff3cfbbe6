/*
Package observability bridges editor lifecycle events into Prometheus metrics.

It consumes domain.LifecycleHooks, so the core stays free of any metrics
dependency; hosts opt in by wiring Hooks() into the editor.
*/
package observability

import (
	"context"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for editor activity.
type Metrics struct {
	transitions *prometheus.CounterVec
	warnings    prometheus.Counter
	findings    *prometheus.CounterVec
}

// NewMetrics creates and registers the collectors on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "espalier_link_transitions_total",
				Help: "Link state machine transitions applied, by operation and resulting status.",
			},
			[]string{"op", "status"},
		),
		warnings: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "espalier_transition_warnings_total",
				Help: "Non-fatal warnings attached to link transitions (e.g. dangling block references).",
			},
		),
		findings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "espalier_consistency_findings_total",
				Help: "Advisory consistency findings emitted, by kind.",
			},
			[]string{"kind"},
		),
	}
	reg.MustRegister(m.transitions, m.warnings, m.findings)
	return m
}

// Hooks returns lifecycle hooks feeding the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTransition: func(_ context.Context, ev *domain.TransitionEvent) {
			m.transitions.WithLabelValues(string(ev.Op), string(ev.Status)).Inc()
			if ev.Warnings > 0 {
				m.warnings.Add(float64(ev.Warnings))
			}
		},
		OnFinding: func(_ context.Context, ev *domain.FindingEvent) {
			m.findings.WithLabelValues(string(ev.Kind)).Inc()
		},
	}
}
