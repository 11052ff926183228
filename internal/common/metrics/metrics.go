// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	JobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "match_jobs_completed_total",
			Help: "Total number of match jobs completed",
		},
		[]string{"job_type"},
	)

	JobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "match_jobs_failed_total",
			Help: "Total number of match jobs failed",
		},
		[]string{"job_type", "error_code"},
	)

	JobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "match_job_duration_seconds",
			Help: "Duration of match job processing in seconds",
		},
		[]string{"job_type"},
	)

	JobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "match_jobs_active",
			Help: "Number of match jobs currently being processed",
		},
		[]string{"job_type"},
	)

	PairsScored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "match_pairs_scored_total",
			Help: "Total number of pairs run through the full Koota scorer",
		},
	)

	PairsFastRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "match_pairs_fast_rejected_total",
			Help: "Total number of pairs eliminated by the fast-reject filter",
		},
	)

	StaleJobsRequeued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "match_stale_jobs_requeued_total",
			Help: "Total number of stuck jobs reset to queued by the reaper",
		},
	)
)
