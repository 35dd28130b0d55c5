// Package metrics defines all custom Prometheus metrics for the card
// service. It is the single source of truth for metric names, labels, and
// help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "cards"

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "not_found", "bad_credentials", "throttled"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// TokenRefreshesTotal counts access-token refreshes.
// Label:
//   - result: "success" or "rejected"
var TokenRefreshesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_refreshes_total",
		Help:      "Total number of access token refreshes, by result.",
	},
	[]string{"result"},
)

// CardsCreatedTotal counts issued cards.
var CardsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "created_total",
		Help:      "Total number of cards issued.",
	},
)

// StatusChangesTotal counts card status updates.
// Labels:
//   - status: the new status applied (e.g. "BLOCKED")
//   - actor: "admin" (direct overwrite) or "user" (block request)
var StatusChangesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "status_changes_total",
		Help:      "Total number of card status changes, by new status and actor.",
	},
	[]string{"status", "actor"},
)

// TransfersTotal counts transfer attempts.
// Label:
//   - result: "success", "conflict", "not_found", "error"
var TransfersTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transfers_total",
		Help:      "Total number of transfer attempts, by result.",
	},
	[]string{"result"},
)

// TransferDuration measures how long a transfer takes end-to-end,
// including the store transaction.
var TransferDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "transfer_duration_seconds",
		Help:      "Duration of transfer processing from validation to persistence.",
		Buckets:   prometheus.DefBuckets,
	},
)
