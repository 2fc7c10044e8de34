// Package metrics holds the Prometheus collectors of the search service.
// They register with the default registry and are served on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travelsearch_searches_total",
			Help: "Total number of searches by outcome",
		},
		[]string{"outcome"}, // results, no_results, superseded, invalid
	)

	SearchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "travelsearch_search_duration_seconds",
			Help:    "End-to-end search latency",
			Buckets: prometheus.DefBuckets,
		},
	)

	AdapterQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travelsearch_adapter_queries_total",
			Help: "Inventory adapter queries by category and status",
		},
		[]string{"category", "status"}, // ok, error, panic
	)

	AdapterDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "travelsearch_adapter_duration_seconds",
			Help:    "Inventory adapter query latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"category"},
	)

	FallbackTierTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travelsearch_empty_leg_fallback_tier_total",
			Help: "Empty-leg searches by the fallback tier that produced the answer",
		},
		[]string{"tier"},
	)

	ExtractionTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travelsearch_intent_extraction_total",
			Help: "Intent extraction attempts by status",
		},
		[]string{"status"}, // ok, fallback, disabled
	)

	AuditWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travelsearch_audit_writes_total",
			Help: "Audit record writes by status",
		},
		[]string{"status"},
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travelsearch_notifications_total",
			Help: "No-results notifications by channel and status",
		},
		[]string{"channel", "status"},
	)
)
