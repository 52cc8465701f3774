package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// InvitationEvents counts invitation lifecycle events by outcome
	// (created|accepted|expired|rejected).
	InvitationEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskhive_invitation_events_total",
			Help: "Total number of workspace invitation lifecycle events",
		},
		[]string{"event"},
	)

	// OwnershipTransfers counts ownership transfer attempts by result
	// (success|failed|compensated).
	OwnershipTransfers = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskhive_ownership_transfers_total",
			Help: "Total number of workspace ownership transfer attempts",
		},
		[]string{"result"},
	)

	// RoleChecks counts membership role evaluations and their outcome (allowed|denied|error).
	RoleChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskhive_role_checks_total",
			Help: "Total number of workspace role checks",
		},
		[]string{"result"},
	)

	// RateLimitRejections counts requests rejected by the rate limiter, by action prefix.
	RateLimitRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskhive_rate_limit_rejections_total",
			Help: "Total number of requests rejected by rate limiting",
		},
		[]string{"prefix"},
	)

	// AuthAttempts records authentication attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskhive_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"result"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "taskhive_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
