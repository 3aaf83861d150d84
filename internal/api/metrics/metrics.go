// Package metrics defines and registers all custom Prometheus metrics for the
// accounts API. It is the single source of truth for metric names, labels, and
// help strings. Metrics register with the default registry on package init.
// Request latency and counts come from echoprometheus under the same namespace.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace prefixes every metric of the service, including the HTTP request
// metrics recorded by echoprometheus.
const Namespace = "accounts"

// ── Account metrics ───────────────────────────────────────────────────────────

// RegistrationsTotal counts successful registrations.
// Label:
//   - role: "creator" or "customer"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "registrations_total",
		Help:      "Total number of accounts registered, by role.",
	},
	[]string{"role"},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "success" or "invalid_credentials"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// DeletionsTotal counts deleted accounts.
// Label:
//   - by: "id" or "username"
var DeletionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "deletions_total",
		Help:      "Total number of accounts deleted, by lookup key.",
	},
	[]string{"by"},
)

// AuthRejectionsTotal counts requests stopped by the auth or authorization gate.
// Label:
//   - reason: "missing_token", "invalid_token" or "forbidden"
var AuthRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "auth_rejections_total",
		Help:      "Total number of requests rejected by authentication or authorization.",
	},
	[]string{"reason"},
)
