package observability

import (
	"context"
	"time"

	"github.com/aretw0/taxwizard/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks questionnaire traffic and outcomes.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Answers         *prometheus.CounterVec
	Backs           *prometheus.CounterVec
	Outcomes        *prometheus.CounterVec
	FormsRecommends *prometheus.CounterVec
	AnswersToFinish prometheus.Histogram
	SessionDuration prometheus.Histogram
	StoreDuration   *prometheus.HistogramVec
}

// NewMetrics registers all metrics with reg. A nil reg uses the default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		Answers: f.NewCounterVec(prometheus.CounterOpts{
			Name: "taxwizard_answers_total",
			Help: "Answers recorded, by question and value",
		}, []string{"question", "value"}),
		Backs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "taxwizard_back_total",
			Help: "Backward navigations, by question landed on",
		}, []string{"question"}),
		Outcomes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "taxwizard_outcomes_total",
			Help: "Sessions reaching a terminal status, by status and track",
		}, []string{"status", "track"}),
		FormsRecommends: f.NewCounterVec(prometheus.CounterOpts{
			Name: "taxwizard_forms_recommended_total",
			Help: "Forms named in routing results",
		}, []string{"form"}),
		AnswersToFinish: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "taxwizard_answers_per_outcome",
			Help:    "Number of recorded answers when a session reaches a terminal status",
			Buckets: []float64{1, 2, 3, 4, 5, 6, 8},
		}),
		SessionDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "taxwizard_session_duration_seconds",
			Help:    "Time from session creation to completion",
			Buckets: prometheus.ExponentialBuckets(5, 2, 10),
		}),
		StoreDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "taxwizard_store_duration_seconds",
			Help:    "Duration of session store operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"op"}),
	}
}

// ObserveSession records the lifetime of a session that just completed.
func (m *Metrics) ObserveSession(createdAt, finishedAt time.Time) {
	if m == nil || createdAt.IsZero() {
		return
	}
	m.SessionDuration.Observe(finishedAt.Sub(createdAt).Seconds())
}

// ObserveStore records the duration of a store operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveStore(op string, start time.Time) {
	if m == nil {
		return
	}
	m.StoreDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// Hooks records engine events into the metrics.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	if m == nil {
		return domain.LifecycleHooks{}
	}
	outcome := func(_ context.Context, e *domain.OutcomeEvent) {
		track := ""
		if e.Result != nil {
			track = string(e.Result.Track())
			for _, form := range e.Result.Forms() {
				m.FormsRecommends.WithLabelValues(form).Inc()
			}
		}
		m.Outcomes.WithLabelValues(string(e.Status), track).Inc()
		m.AnswersToFinish.Observe(float64(len(e.Answers)))
	}
	return domain.LifecycleHooks{
		OnAnswer: func(_ context.Context, e *domain.AnswerEvent) {
			m.Answers.WithLabelValues(e.QuestionID, e.Value).Inc()
		},
		OnBack: func(_ context.Context, e *domain.AnswerEvent) {
			m.Backs.WithLabelValues(e.QuestionID).Inc()
		},
		OnComplete: outcome,
		OnBlock:    outcome,
		OnExit:     outcome,
	}
}
