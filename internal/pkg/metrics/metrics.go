// Package metrics defines the custom Prometheus metrics for the taskdesk API.
// Metrics are registered with the default registry on package init; request
// level HTTP metrics come from echoprometheus in the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "taskdesk"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginAttemptsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials", "throttled" or "error"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// TokenVerificationsTotal counts session token checks made by the auth middleware.
// Label:
//   - result: "valid", "invalid", "expired" or "absent"
var TokenVerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_verifications_total",
		Help:      "Total number of session token verifications, by result.",
	},
	[]string{"result"},
)

// AccessDeniedTotal counts requests rejected by a route gate.
// Label:
//   - reason: "unauthenticated" or the missing capability (e.g. "canEditClients")
var AccessDeniedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "access_denied_total",
		Help:      "Total number of requests rejected by authentication or permission gates.",
	},
	[]string{"reason"},
)

// ── Database metrics ──────────────────────────────────────────────────────────

// DBConnectAttemptsTotal counts physical connection attempts made by the pool.
// Coalesced callers share one attempt and are not counted separately.
// Label:
//   - result: "success" or "failure"
var DBConnectAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "db_connect_attempts_total",
		Help:      "Total number of MongoDB connection attempts, by result.",
	},
	[]string{"result"},
)

// DBConnectDuration measures how long a connection attempt took.
var DBConnectDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "db_connect_duration_seconds",
		Help:      "Duration of MongoDB connection attempts including the initial ping.",
		Buckets:   prometheus.DefBuckets,
	},
)

// ── Resource metrics ──────────────────────────────────────────────────────────

// MutationsTotal counts successful writes.
// Labels:
//   - resource: "client", "note", "group", "task", "hosting" or "user"
//   - op: "create", "update" or "delete"
var MutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mutations_total",
		Help:      "Total number of successful resource mutations.",
	},
	[]string{"resource", "op"},
)
