package matching

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	matchRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "matching_requests_total",
		Help: "Match list and compatibility requests by operation and status",
	}, []string{"operation", "status"})

	candidatesScoredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "matching_candidates_scored_total",
		Help: "Candidates run through the compatibility scorer",
	})

	compatibilityScores = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "matching_compatibility_score",
		Help:    "Distribution of final compatibility scores",
		Buckets: prometheus.LinearBuckets(0, 10, 11),
	})

	cacheLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "matching_cache_lookups_total",
		Help: "Result cache lookups by outcome (hit, miss, bypass)",
	}, []string{"outcome"})

	retrievalFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "matching_retrieval_failures_total",
		Help: "Candidate retrieval errors degraded to empty results",
	})
)
