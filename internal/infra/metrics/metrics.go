// Package metrics provides Prometheus metrics for the roster engine:
// counters and histograms for assignment latency, bandit updates,
// reward distribution, the embedding provider's circuit breaker, the
// intake queue, and health checks.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Assignment ─────────────────────────────────────────────────────────────

// AssignLatency tracks AssignTask duration in seconds, by mode (auto/manual).
var AssignLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "roster",
	Name:      "assign_latency_seconds",
	Help:      "AssignTask call duration in seconds.",
	Buckets:   prometheus.DefBuckets,
}, []string{"mode"})

// AssignmentsTotal tracks completed AssignTask calls by mode and outcome.
var AssignmentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "roster",
	Name:      "assignments_total",
	Help:      "Total AssignTask calls by mode and outcome.",
}, []string{"mode", "outcome"})

// RecommendLatency tracks Recommend call duration in seconds.
var RecommendLatency = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "roster",
	Name:      "recommend_latency_seconds",
	Help:      "Recommend call duration in seconds.",
	Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1},
})

// ─── Bandit ─────────────────────────────────────────────────────────────────

// BanditUpdates tracks LinUCB arm updates following CompleteTask.
var BanditUpdates = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "roster",
	Name:      "bandit_updates_total",
	Help:      "Total LinUCB arm updates performed.",
})

// BanditColdStarts counts candidate arms scored during auto-assignment
// that had no persisted bandit state yet (§4.4 cold start).
var BanditColdStarts = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "roster",
	Name:      "bandit_cold_starts_total",
	Help:      "Total candidate scorings that fell back to the cold-start heuristic.",
})

// ─── Reward ─────────────────────────────────────────────────────────────────

// RewardValue tracks the clamped reward value fed back to the bandit.
var RewardValue = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "roster",
	Name:      "reward_value",
	Help:      "Distribution of clamped reward values (§4.6).",
	Buckets:   []float64{-2, -1.5, -1, -0.5, 0, 0.5, 1, 1.5, 2},
})

// ─── Embedding provider ─────────────────────────────────────────────────────

// EmbeddingCircuitState tracks the embedding provider's circuit-breaker
// state (0=closed, 1=open, 2=half-open).
var EmbeddingCircuitState = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "roster",
	Name:      "embedding_circuit_state",
	Help:      "Embedding provider circuit breaker state (0=closed, 1=open, 2=half-open).",
})

// EmbeddingDegradations tracks calls that fell back to a zero vector
// because the circuit was open or the provider call failed.
var EmbeddingDegradations = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "roster",
	Name:      "embedding_degradations_total",
	Help:      "Total embedding lookups degraded to zero vectors.",
})

// ─── Intake queue ───────────────────────────────────────────────────────────

// IntakeQueueDepth tracks current intake queue depth.
var IntakeQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "roster",
	Name:      "intake_queue_depth",
	Help:      "Current number of tasks waiting in the intake queue.",
})

// IntakeRejections tracks tasks rejected by intake back-pressure.
var IntakeRejections = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "roster",
	Name:      "intake_rejections_total",
	Help:      "Total tasks rejected by intake queue back-pressure.",
})

// ─── Health ─────────────────────────────────────────────────────────────────

// HealthCheckStatus tracks health check results (1=healthy, 0=unhealthy).
var HealthCheckStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "roster",
	Name:      "health_check_status",
	Help:      "Health check result per component (1=healthy, 0=unhealthy).",
}, []string{"check"})
