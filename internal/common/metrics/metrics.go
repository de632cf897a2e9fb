// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QueriesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "query_processed_total",
			Help: "Total number of queries processed by handler",
		},
		[]string{"handler", "intent"},
	)

	QueriesFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "query_failed_total",
			Help: "Total number of queries that produced an unsuccessful result",
		},
		[]string{"handler", "error_code"},
	)

	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "query_duration_seconds",
			Help: "Duration of query handling in seconds",
		},
		[]string{"handler"},
	)

	ParseConfidence = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "query_parse_confidence",
			Help:    "Confidence of intent classification per parsed query",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		},
	)

	UnknownIntents = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "query_unknown_intent_total",
			Help: "Total number of queries that fell through to the unknown intent",
		},
	)
)
