// Package services – Prometheus instrumentation for queue operations.
//
// HTTP-level metrics live in the middleware package; the collectors here track
// the domain itself: how many tokens are issued and served per department and
// how often atomic units of work had to be re-run. Label cardinality is
// bounded by the department code set.
package services

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// tokensIssued counts issued tokens by department code and priority flag.
	tokensIssued = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "queue_tokens_issued_total",
			Help: "Total number of tokens issued.",
		},
		[]string{"department", "priority"},
	)

	// tokensServed counts tokens transitioned to SERVED.
	tokensServed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "queue_tokens_served_total",
			Help: "Total number of tokens fully served.",
		},
		[]string{"department"},
	)

	// unitRetries counts re-runs of atomic units of work after lost races,
	// by operation name ("issue_token", "call_next").
	unitRetries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "queue_unit_of_work_retries_total",
			Help: "Total number of atomic unit-of-work re-runs after conflicts.",
		},
		[]string{"operation"},
	)
)

func init() {
	prometheus.MustRegister(tokensIssued, tokensServed, unitRetries)
}
