// Package metrics wires dialog lifecycle hooks to Prometheus counters.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/unitpass/passbot/pkg/domain"
)

// Set holds the dialog counters.
type Set struct {
	StepTransitions  *prometheus.CounterVec
	DialogsCompleted prometheus.Counter
	PersistFailures  prometheus.Counter
}

// New creates the dialog counters and registers them on reg.
func New(reg prometheus.Registerer) *Set {
	s := &Set{
		StepTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "passbot_step_transitions_total",
				Help: "Dialog step transitions by target step.",
			},
			[]string{"step"},
		),
		DialogsCompleted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "passbot_dialogs_completed_total",
				Help: "Dialogs that delivered a pass code and persisted it.",
			},
		),
		PersistFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "passbot_persist_failures_total",
				Help: "Completed dialogs the record sink rejected.",
			},
		),
	}
	reg.MustRegister(s.StepTransitions, s.DialogsCompleted, s.PersistFailures)
	return s
}

// Hooks returns the dialog hooks feeding the counters.
func (s *Set) Hooks() domain.Hooks {
	return domain.Hooks{
		OnStepChange: func(_ context.Context, _ int64, _, to domain.Step) {
			s.StepTransitions.WithLabelValues(to.String()).Inc()
		},
		OnCompleted: func(context.Context, *domain.PassCodeRecord) {
			s.DialogsCompleted.Inc()
		},
		OnPersistError: func(context.Context, int64, error) {
			s.PersistFailures.Inc()
		},
	}
}
