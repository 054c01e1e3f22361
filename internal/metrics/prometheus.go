package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the match finder

var (
	// Upstream call metrics
	SourceCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchfinder_source_calls_total",
			Help: "Total number of upstream source calls",
		},
		[]string{"source", "endpoint", "status"},
	)

	SourceCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "matchfinder_source_call_duration_seconds",
			Help:    "Duration of upstream source calls in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"source", "endpoint"},
	)

	// Search metrics
	SearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchfinder_searches_total",
			Help: "Total number of searches by outcome",
		},
		[]string{"outcome"},
	)

	SearchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "matchfinder_search_duration_seconds",
			Help:    "Duration of a full multi-source search in seconds",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 20},
		},
	)

	CandidatesFound = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchfinder_candidates_total",
			Help: "Total number of match candidates returned per source",
		},
		[]string{"source"},
	)

	// Stat fetch metrics
	StatOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchfinder_stat_outcomes_total",
			Help: "Total number of box score lookups by final state and stage",
		},
		[]string{"source", "state", "stage"},
	)

	// Session metrics
	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "matchfinder_sessions_active",
			Help: "Number of sessions held by the in-memory session store",
		},
	)

	SessionsSwept = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matchfinder_sessions_swept_total",
			Help: "Total number of expired sessions removed",
		},
	)

	// Error metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchfinder_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)

	// HTTP surface metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchfinder_http_requests_total",
			Help: "Total number of HTTP requests served",
		},
		[]string{"route", "code"},
	)
)

// RecordSourceCall records an upstream call metric
func RecordSourceCall(source, endpoint, status string, duration float64) {
	SourceCallsTotal.WithLabelValues(source, endpoint, status).Inc()
	SourceCallDuration.WithLabelValues(source, endpoint).Observe(duration)
}

// RecordSearch records a completed search
func RecordSearch(outcome string, duration float64) {
	SearchesTotal.WithLabelValues(outcome).Inc()
	SearchDuration.Observe(duration)
}

// RecordCandidates records how many candidates a source produced
func RecordCandidates(source string, count int) {
	CandidatesFound.WithLabelValues(source).Add(float64(count))
}

// RecordStatOutcome records the terminal state of a box score lookup
func RecordStatOutcome(source, state, stage string) {
	StatOutcomesTotal.WithLabelValues(source, state, stage).Inc()
}

// RecordError records an error
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}

// UpdateSessionStats updates the active session gauge
func UpdateSessionStats(active int) {
	SessionsActive.Set(float64(active))
}

// RecordSessionsSwept records a janitor pass
func RecordSessionsSwept(n int) {
	SessionsSwept.Add(float64(n))
}

// RecordHTTPRequest records a served request
func RecordHTTPRequest(route, code string) {
	HTTPRequestsTotal.WithLabelValues(route, code).Inc()
}
