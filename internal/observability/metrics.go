package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Simulation outcomes recorded by SimulationsTotal.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeCached   = "cached"
	OutcomeDegraded = "degraded"
)

var (
	SimulationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ats_simulations_total",
			Help: "Total number of simulations by outcome",
		},
		[]string{"outcome"},
	)

	SimulationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ats_simulation_duration_seconds",
			Help:    "Duration of simulations in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	LayerScore = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ats_layer_score",
			Help:    "Distribution of layer scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
		[]string{"layer"},
	)

	EvaluatorFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ats_evaluator_failures_total",
			Help: "Total number of evaluator errors and panics by layer",
		},
		[]string{"layer"},
	)

	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ats_cache_hits_total",
			Help: "Total number of simulation results served from cache",
		},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ats_http_requests_total",
			Help: "Total number of HTTP requests by route and status code",
		},
		[]string{"route", "code"},
	)
)
