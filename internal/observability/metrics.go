package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// latencyBuckets are Prometheus-style buckets (seconds) for request duration.
var latencyBuckets = []float64{0.005, 0.025, 0.1, 0.5, 1, 2.5, 5}

// Metrics holds the Prometheus instruments for the recommender API.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	recommendationsServed prometheus.Counter
	feedbackAccepted      *prometheus.CounterVec
	feedbackDropped       prometheus.Counter
	candidatesRetrieved   prometheus.Histogram
	stageDuration         *prometheus.HistogramVec
	explorationBoosts     prometheus.Counter
}

// NewMetrics creates and registers all instruments on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recommender_http_requests_total",
			Help: "Total HTTP requests by method, route, and status class",
		}, []string{"method", "route", "status_class"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "recommender_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: latencyBuckets,
		}, []string{"method", "route"}),
		recommendationsServed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "recommender_recommendations_served_total",
			Help: "Total recommendation responses served",
		}),
		feedbackAccepted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recommender_feedback_events_total",
			Help: "Feedback events accepted, by action",
		}, []string{"action"}),
		feedbackDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "recommender_feedback_events_dropped_total",
			Help: "Feedback events dropped because the write buffer was full",
		}),
		candidatesRetrieved: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "recommender_candidates_retrieved",
			Help:    "Candidates returned by the retrieval stage per request",
			Buckets: []float64{0, 1, 5, 10, 20, 50, 100},
		}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "recommender_stage_duration_seconds",
			Help:    "Recommendation pipeline stage duration in seconds",
			Buckets: latencyBuckets,
		}, []string{"stage"}),
		explorationBoosts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "recommender_exploration_boosts_total",
			Help: "Ranking passes where an exploration boost was applied",
		}),
	}

	m.registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.recommendationsServed,
		m.feedbackAccepted,
		m.feedbackDropped,
		m.candidatesRetrieved,
		m.stageDuration,
		m.explorationBoosts,
	)

	return m
}

// Handler returns the HTTP handler for GET /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordRequest records one HTTP request.
func (m *Metrics) RecordRequest(method, route, statusClass string, duration time.Duration) {
	m.requestsTotal.WithLabelValues(method, route, statusClass).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordRecommendation records one served recommendation response and the
// size of its retrieval set.
func (m *Metrics) RecordRecommendation(candidates int) {
	m.recommendationsServed.Inc()
	m.candidatesRetrieved.Observe(float64(candidates))
}

// RecordFeedbackAccepted records one accepted feedback event.
func (m *Metrics) RecordFeedbackAccepted(action string) {
	m.feedbackAccepted.WithLabelValues(action).Inc()
}

// RecordFeedbackDropped records one dropped feedback event.
func (m *Metrics) RecordFeedbackDropped() {
	m.feedbackDropped.Inc()
}

// RecordStageDuration records how long one pipeline stage took.
func (m *Metrics) RecordStageDuration(stage string, duration time.Duration) {
	m.stageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordExploration records one ranking pass that applied an exploration boost.
func (m *Metrics) RecordExploration() {
	m.explorationBoosts.Inc()
}
