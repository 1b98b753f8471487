package observability

import (
	"context"

	"github.com/aretw0/onboard/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the wizard collectors.
type Metrics struct {
	StepVisits         *prometheus.CounterVec
	ValidationFailures *prometheus.CounterVec
	Submissions        *prometheus.CounterVec
	SubmitDuration     prometheus.Histogram
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		StepVisits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "onboard_step_visits_total",
				Help: "Total number of step entries",
			},
			[]string{"step"},
		),
		ValidationFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "onboard_validation_failures_total",
				Help: "Forward transitions refused by step validation",
			},
			[]string{"step"},
		),
		Submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "onboard_submissions_total",
				Help: "Registration submissions by outcome",
			},
			[]string{"outcome"},
		),
		SubmitDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "onboard_submit_duration_seconds",
				Help:    "Time between submission start and its outcome",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
	for _, c := range []prometheus.Collector{m.StepVisits, m.ValidationFailures, m.Submissions, m.SubmitDuration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// RegisterPreviewGauge exposes the number of live preview handles.
func RegisterPreviewGauge(reg prometheus.Registerer, live func() int) error {
	return reg.Register(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "onboard_previews_live",
			Help: "Preview handles created and not yet revoked",
		},
		func() float64 { return float64(live()) },
	))
}

// Hooks returns lifecycle hooks recording into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepEnter: func(ctx context.Context, e *domain.StepEvent) {
			m.StepVisits.WithLabelValues(string(e.StepID)).Inc()
		},
		OnValidationFailed: func(ctx context.Context, e *domain.ValidationEvent) {
			m.ValidationFailures.WithLabelValues(string(e.StepID)).Inc()
		},
		OnSubmitResult: func(ctx context.Context, e *domain.SubmitEvent) {
			outcome := "accepted"
			if e.IsError {
				outcome = "failed"
			}
			m.Submissions.WithLabelValues(outcome).Inc()
			m.SubmitDuration.Observe(e.Duration.Seconds())
		},
	}
}
