package matching

import "github.com/prometheus/client_golang/prometheus"

// Metrics observes scoring runs.
type Metrics struct {
	scores *prometheus.HistogramVec
	runs   prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		scores: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "studyhub_match_score",
			Help:    "Distribution of positive eligibility scores.",
			Buckets: prometheus.LinearBuckets(10, 10, 10),
		}, []string{"study_id"}),
		runs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "studyhub_match_runs_total",
			Help: "Number of find-matches runs.",
		}),
	}
	reg.MustRegister(m.scores, m.runs)
	return m
}

func (m *Metrics) observe(studyID string, matches []*Match) {
	if m == nil {
		return
	}
	m.runs.Inc()
	h := m.scores.WithLabelValues(studyID)
	for _, mt := range matches {
		h.Observe(float64(mt.MatchScore))
	}
}
