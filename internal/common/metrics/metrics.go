// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "review_queries_total",
			Help: "Total number of application queries served",
		},
		[]string{"operation"},
	)

	QueriesFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "review_queries_failed_total",
			Help: "Total number of application queries that failed",
		},
		[]string{"operation", "error_code"},
	)

	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "review_query_duration_seconds",
			Help: "Duration of application queries in seconds",
		},
		[]string{"operation"},
	)

	DecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "review_decisions_total",
			Help: "Total number of review decisions by action and outcome",
		},
		[]string{"action", "outcome"},
	)

	ExportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "review_exports_total",
			Help: "Total number of CSV exports generated",
		},
		[]string{"kind"},
	)

	SignedURLsIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "review_signed_urls_issued_total",
			Help: "Total number of document signed URLs issued",
		},
	)

	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "review_notifications_sent_total",
			Help: "Total number of applicant notifications sent by channel and outcome",
		},
		[]string{"channel", "outcome"},
	)
)
