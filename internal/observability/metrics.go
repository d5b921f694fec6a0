// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the engine.
type Metrics struct {
	// Cycle metrics
	CyclesTotal   *prometheus.CounterVec // track, status
	CycleDuration *prometheus.HistogramVec
	TokensSkipped prometheus.Counter

	// Claim metrics
	ClaimsTotal     *prometheus.CounterVec // platform, status
	ClaimedSolTotal prometheus.Counter

	// Feature execution metrics
	FeatureRuns     *prometheus.CounterVec // feature, status
	FeatureSolSpent *prometheus.CounterVec // feature

	// Distribution metrics
	RevshareHoldersPaid prometheus.Counter
	JackpotWinners      prometheus.Counter
	TokensBurned        prometheus.Counter

	// RPC metrics
	RPCCallLatency *prometheus.HistogramVec
	RPCErrors      *prometheus.CounterVec

	// Health metrics
	LastSuccessfulCycle prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "fee_recycler"
	}

	return &Metrics{
		CyclesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "cycles_total",
			Help:      "Total number of feed cycles by track and status",
		}, []string{"track", "status"}),
		CycleDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "cycle_duration_seconds",
			Help:      "Duration of one per-token feed cycle",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		}, []string{"track"}),
		TokensSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "tokens_skipped_total",
			Help:      "Tokens skipped because their interval was not due",
		}),
		ClaimsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "claims",
			Name:      "claims_total",
			Help:      "Fee claim attempts by platform and status",
		}, []string{"platform", "status"}),
		ClaimedSolTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "claims",
			Name:      "claimed_sol_total",
			Help:      "Cumulative SOL claimed from creator fees",
		}),
		FeatureRuns: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "features",
			Name:      "runs_total",
			Help:      "Feature executions by feature and status",
		}, []string{"feature", "status"}),
		FeatureSolSpent: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "features",
			Name:      "sol_spent_total",
			Help:      "Cumulative SOL spent per feature",
		}, []string{"feature"}),
		RevshareHoldersPaid: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "revshare",
			Name:      "holders_paid_total",
			Help:      "Total holder payouts executed",
		}),
		JackpotWinners: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "jackpot",
			Name:      "winners_total",
			Help:      "Total jackpot payouts executed",
		}),
		TokensBurned: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "buyback",
			Name:      "tokens_burned_total",
			Help:      "Cumulative tokens burned, human units",
		}),
		RPCCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "call_duration_seconds",
			Help:      "Latency of Solana RPC calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		RPCErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "errors_total",
			Help:      "Solana RPC call errors by method",
		}, []string{"method"}),
		LastSuccessfulCycle: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "last_successful_cycle_timestamp",
			Help:      "Unix timestamp of the last successful feed cycle",
		}),
	}
}

// RecordCycle records one per-token cycle outcome.
func (m *Metrics) RecordCycle(track, status string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.CyclesTotal.WithLabelValues(track, status).Inc()
	m.CycleDuration.WithLabelValues(track).Observe(durationSeconds)
}

// RecordClaim records a claim attempt.
func (m *Metrics) RecordClaim(platform, status string, amountSol float64) {
	if m == nil {
		return
	}
	m.ClaimsTotal.WithLabelValues(platform, status).Inc()
	if amountSol > 0 {
		m.ClaimedSolTotal.Add(amountSol)
	}
}

// RecordFeature records a feature execution outcome.
func (m *Metrics) RecordFeature(feature, status string, solSpent float64) {
	if m == nil {
		return
	}
	m.FeatureRuns.WithLabelValues(feature, status).Inc()
	if solSpent > 0 {
		m.FeatureSolSpent.WithLabelValues(feature).Add(solSpent)
	}
}

// Handler returns the HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
