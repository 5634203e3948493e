package metrics

import "github.com/prometheus/client_golang/prometheus"

const (
	OutcomeCreated       = "created"
	OutcomeUpdated       = "updated"
	OutcomeConflictRetry = "conflict_retry"
)

// RatingMetrics counts rating submissions by outcome.
type RatingMetrics struct {
	submissions *prometheus.CounterVec
}

// NewRatingMetrics registers the rating counters on the provided registerer.
func NewRatingMetrics(reg prometheus.Registerer) *RatingMetrics {
	if reg == nil {
		return &RatingMetrics{}
	}
	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rating_submissions_total",
		Help: "Rating submissions, by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(submissions)
	return &RatingMetrics{submissions: submissions}
}

// IncSubmission records a submission outcome.
func (m *RatingMetrics) IncSubmission(outcome string) {
	if m == nil || m.submissions == nil {
		return
	}
	m.submissions.WithLabelValues(normalizeLabel(outcome)).Inc()
}
