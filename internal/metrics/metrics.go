// Package metrics defines the Prometheus instrumentation for the application.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RegistrationsTotal counts successful user registrations.
	RegistrationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "registrations_total",
			Help: "Total successful user registrations",
		},
	)

	// LoginAttemptsTotal counts login attempts by result (success, failure, rate_limited).
	LoginAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "login_attempts_total",
			Help: "Total login attempts by result",
		},
		[]string{"result"},
	)

	// ApplicationsCreatedTotal counts created book applications by kind.
	ApplicationsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "applications_created_total",
			Help: "Total book applications created by kind",
		},
		[]string{"kind"},
	)

	// ApplicationReviewsTotal counts admin status transitions by resulting status.
	ApplicationReviewsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "application_reviews_total",
			Help: "Total application reviews by resulting status",
		},
		[]string{"status"},
	)

	// ApplicationsDeletedTotal counts admin hard deletes.
	ApplicationsDeletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "applications_deleted_total",
			Help: "Total applications deleted by an administrator",
		},
	)
)
