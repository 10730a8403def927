package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CollaboratorDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "collaborator_request_duration_seconds",
			Help:    "Duration of outbound LLM and movie database calls",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"collaborator", "operation", "outcome"},
	)

	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendations_total",
			Help: "Recommendation requests by outcome",
		},
		[]string{"outcome"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tmdb_cache_lookups_total",
			Help: "TMDB lookup cache hits and misses",
		},
		[]string{"result"},
	)
)

// ObserveCollaborator records the duration of one outbound call.
func ObserveCollaborator(collaborator, operation string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	CollaboratorDuration.WithLabelValues(collaborator, operation, outcome).Observe(time.Since(start).Seconds())
}

func RecordRecommendation(outcome string) {
	RecommendationsTotal.WithLabelValues(outcome).Inc()
}

func RecordCacheLookup(hit bool) {
	if hit {
		CacheLookups.WithLabelValues("hit").Inc()
		return
	}
	CacheLookups.WithLabelValues("miss").Inc()
}
