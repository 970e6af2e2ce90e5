package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "khata_http_requests_total",
			Help: "Total HTTP requests by method, path and status code",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "khata_http_request_duration_seconds",
			Help:    "HTTP request latency by method and path",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// BalanceDeltasApplied counts incremental balance updates by mutation
	// kind (create, update, delete).
	BalanceDeltasApplied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "khata_balance_deltas_applied_total",
			Help: "Incremental account balance updates applied, by mutation",
		},
		[]string{"mutation"},
	)

	// BalanceRecalculations counts full recomputations, labelled by trigger
	// (repair for the admin endpoint, race for the lost-update fallback).
	BalanceRecalculations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "khata_balance_recalculations_total",
			Help: "Full account balance recomputations, by trigger",
		},
		[]string{"trigger"},
	)

	AttachmentDeleteFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "khata_attachment_delete_failures_total",
			Help: "Best-effort attachment deletions that failed",
		},
	)
)
