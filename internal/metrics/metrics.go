package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ScheduledTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ubl_deliveries_scheduled_total",
			Help: "Documents accepted and scheduled for delivery",
		},
		[]string{"document_type"},
	)

	ScheduleRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ubl_schedule_rejected_total",
			Help: "Documents refused by the scheduler",
		},
		[]string{"reason"},
	)

	OutboxPublishedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ubl_outbox_published_total",
		Help: "Outbox events published to the broker",
	})

	OutboxPublishFailedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ubl_outbox_publish_failed_total",
		Help: "Outbox events whose publish failed and will be retried",
	})

	DeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ubl_deliveries_total",
			Help: "Delivery attempts by outcome",
		},
		[]string{"outcome"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ubl_http_requests_total",
			Help: "HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ubl_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// delivery outcomes
const (
	OutcomeDelivered   = "delivered"
	OutcomeRejected    = "rejected"
	OutcomeRescheduled = "rescheduled"
	OutcomeFailed      = "failed"
	OutcomeSkipped     = "skipped"
)
