package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SubmissionsTotal counts processed submissions by outcome: "accepted",
// "rejected" (validation), or "failed" (scoring/persistence).
var SubmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "leaderboard_submissions_total",
	Help: "Submissions processed, labeled by outcome.",
}, []string{"outcome"})

// SamplesSkippedTotal counts samples excluded from scoring aggregates.
var SamplesSkippedTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "leaderboard_samples_skipped_total",
	Help: "Samples skipped during scoring (empty after normalization or metric failure).",
})

// SamplesScoredTotal counts samples that contributed to an aggregate.
var SamplesScoredTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "leaderboard_samples_scored_total",
	Help: "Samples successfully scored.",
})
