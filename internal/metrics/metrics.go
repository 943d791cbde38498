package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "workload"

var (
	once sync.Once

	allocations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "allocations_total",
			Help:      "Count of allocation requests by strategy, mode and outcome.",
		},
		[]string{"strategy", "mode", "outcome"},
	)

	allocatedHours = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "allocated_hours_total",
			Help:      "Hours written as commitments by strategy.",
		},
		[]string{"strategy"},
	)

	allocationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "allocation_duration_seconds",
			Help:      "Time to compute (and commit) an allocation.",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1},
		},
		[]string{"strategy", "mode"},
	)

	staleCommits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_commits_total",
			Help:      "Count of commits rejected because capacity changed since preview.",
		},
	)

	lockWait = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "worker_lock_wait_seconds",
			Help:      "Time spent waiting for a worker's commit lock.",
			Buckets:   []float64{.001, .01, .1, .5, 1, 5},
		},
	)

	blocks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blocks_total",
			Help:      "Count of time blocks by whether they charge capacity.",
		},
		[]string{"charged"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(allocations, allocatedHours, allocationDuration, staleCommits, lockWait, blocks)
	})
}

// ObserveAllocation records one allocation request. mode is "preview" or "commit".
func ObserveAllocation(strategy, mode, outcome string, d time.Duration) {
	allocations.WithLabelValues(strategy, mode, outcome).Inc()
	allocationDuration.WithLabelValues(strategy, mode).Observe(d.Seconds())
}

func AddAllocatedHours(strategy string, hours float64) {
	allocatedHours.WithLabelValues(strategy).Add(hours)
}

func IncStaleCommit() {
	staleCommits.Inc()
}

func ObserveLockWait(d time.Duration) {
	lockWait.Observe(d.Seconds())
}

func IncBlock(charged bool) {
	label := "false"
	if charged {
		label = "true"
	}
	blocks.WithLabelValues(label).Inc()
}
