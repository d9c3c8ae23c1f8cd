// Package services – domain metrics.
//
// Counters for the completion pipeline. HTTP-level metrics live in the
// middleware package; these track the business transitions that matter for
// alerting: how often the completion race is won vs lost, and whether the
// follow-up report actually went out.
package services

import "github.com/prometheus/client_golang/prometheus"

var (
	// completionAttempts counts atomic completion-transition attempts by
	// outcome: "won", "lost", or "error".
	completionAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onboarding_completion_attempts_total",
			Help: "Completion transition attempts by outcome.",
		},
		[]string{"outcome"},
	)

	// notifications counts completion-report dispatch outcomes: "sent",
	// "skipped" (idempotency claim lost), or "failed".
	notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onboarding_notifications_total",
			Help: "Completion notification dispatches by outcome.",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(completionAttempts, notifications)
}
