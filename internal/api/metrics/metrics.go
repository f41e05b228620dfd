// Package metrics defines and registers all custom Prometheus metrics for the
// library API. It is the single source of truth for metric names, labels, and
// help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "library"

// ── Authentication metrics ────────────────────────────────────────────────────

// AuthOutcomesTotal counts token verification outcomes at the front door.
// Label:
//   - outcome: "verified", "missing_credential", or "invalid_credential"
var AuthOutcomesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_outcomes_total",
		Help:      "Total number of bearer token verification attempts, by outcome.",
	},
	[]string{"outcome"},
)

// ── Authorization gate metrics ────────────────────────────────────────────────

// GateDecisionsTotal counts role gate decisions.
// Labels:
//   - predicate: the gate's predicate name (e.g. "admin_only")
//   - decision: "allowed", "denied_no_record", "denied_role", or "store_error"
var GateDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gate_decisions_total",
		Help:      "Total number of authorization gate decisions, by predicate and decision.",
	},
	[]string{"predicate", "decision"},
)

// RoleLookupDuration measures the per-request role re-read against the user
// store inside the gate.
var RoleLookupDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "role_lookup_duration_seconds",
		Help:      "Duration of the per-request role lookup performed by the authorization gate.",
		Buckets:   prometheus.DefBuckets,
	},
)

// ── Account metrics ───────────────────────────────────────────────────────────

// RegistrationsTotal counts registration calls.
// Label:
//   - result: "created" or "existing"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration requests, by result.",
	},
	[]string{"result"},
)

// ── Payment metrics ───────────────────────────────────────────────────────────

// CheckoutSessionsTotal counts hosted checkout sessions opened.
var CheckoutSessionsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checkout_sessions_total",
		Help:      "Total number of hosted checkout sessions opened.",
	},
)

// PaymentConfirmationsTotal counts confirmation outcomes.
// Label:
//   - result: "confirmed", "replay", or "error"
var PaymentConfirmationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payment_confirmations_total",
		Help:      "Total number of payment confirmation callbacks, by result.",
	},
	[]string{"result"},
)
