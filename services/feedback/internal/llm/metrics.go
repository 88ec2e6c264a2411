package llm

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_requests_total",
			Help: "Total number of LLM generation requests",
		},
		[]string{"provider", "status"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_request_duration_seconds",
			Help:    "Duration of LLM generation requests in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 15, 30, 60},
		},
		[]string{"provider"},
	)

	// FallbacksTotal counts generations replaced by a deterministic fallback,
	// labeled by the operation that fell back.
	FallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_fallbacks_total",
			Help: "Total number of LLM results replaced by a fallback value",
		},
		[]string{"operation"},
	)
)
