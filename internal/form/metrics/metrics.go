package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the onboarding form.
type Metrics struct {
	FormsStarted prometheus.Counter

	// Date synchronizer results by pair, edited side and result
	DateSyncs *prometheus.CounterVec

	// Edits dropped because the pair was already syncing
	IgnoredEdits *prometheus.CounterVec

	// Field errors raised by the validation gate on continue
	FieldErrors *prometheus.CounterVec

	// Continue attempts by step and outcome
	StepTransitions *prometheus.CounterVec

	// Submissions by outcome
	Submissions *prometheus.CounterVec

	SubmitLatency prometheus.Histogram
}

// New creates the form metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		FormsStarted: f.NewCounter(prometheus.CounterOpts{
			Name: "onboarding_forms_started_total",
			Help: "Total onboarding forms started",
		}),

		DateSyncs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "onboarding_date_syncs_total",
			Help: "Date pair edits by pair, edited side and result",
		}, []string{"pair", "side", "result"}), // result: "derived", "unchanged", "error", "cleared"

		IgnoredEdits: f.NewCounterVec(prometheus.CounterOpts{
			Name: "onboarding_date_sync_ignored_total",
			Help: "Re-entrant date edits ignored while a pair was syncing",
		}, []string{"pair"}),

		FieldErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "onboarding_field_errors_total",
			Help: "Field errors blocking continue, by step and kind",
		}, []string{"step", "kind"}),

		StepTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "onboarding_step_transitions_total",
			Help: "Continue attempts by step and outcome",
		}, []string{"step", "outcome"}), // outcome: "completed", "rejected"

		Submissions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "onboarding_submissions_total",
			Help: "Form submissions by outcome",
		}, []string{"outcome"}), // outcome: "accepted", "failed"

		SubmitLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "onboarding_submit_duration_seconds",
			Help:    "Duration of handing a completed draft to the submission transport",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
	}
}

func (m *Metrics) IncrementFormsStarted() {
	if m != nil {
		m.FormsStarted.Inc()
	}
}

// IncrementDateSync records the result of one synchronizer edit.
func (m *Metrics) IncrementDateSync(pair, side, result string) {
	if m != nil {
		m.DateSyncs.WithLabelValues(pair, side, result).Inc()
	}
}

func (m *Metrics) IncrementIgnoredEdit(pair string) {
	if m != nil {
		m.IgnoredEdits.WithLabelValues(pair).Inc()
	}
}

func (m *Metrics) IncrementFieldError(step, kind string) {
	if m != nil {
		m.FieldErrors.WithLabelValues(step, kind).Inc()
	}
}

func (m *Metrics) IncrementStepTransition(step, outcome string) {
	if m != nil {
		m.StepTransitions.WithLabelValues(step, outcome).Inc()
	}
}

// ObserveSubmit records a submission attempt and its latency.
func (m *Metrics) ObserveSubmit(outcome string, d time.Duration) {
	if m != nil {
		m.Submissions.WithLabelValues(outcome).Inc()
		m.SubmitLatency.Observe(d.Seconds())
	}
}
