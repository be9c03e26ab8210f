// Package metrics provides Prometheus instrumentation for the application.
// This is part of the platform layer and contains no business logic.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	EligibilityGranted  prometheus.Counter
	ReconcileSkipped    prometheus.Counter
	StageConflicts      prometheus.Counter
	MalformedRowSkipped prometheus.Counter
	DonorsRegistered    prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		EligibilityGranted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bloodlink_eligibility_granted_total",
			Help: "Total number of eligibility records created or refreshed by the reconciler",
		}),
		ReconcileSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bloodlink_reconcile_skipped_total",
			Help: "Total number of reconciliation runs that found a gating stage not yet passed",
		}),
		StageConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bloodlink_stage_conflicts_total",
			Help: "Total number of donors resolved to more than one current stage",
		}),
		MalformedRowSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bloodlink_malformed_rows_skipped_total",
			Help: "Total number of record store rows skipped due to decode failures",
		}),
		DonorsRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bloodlink_donors_registered_total",
			Help: "Total number of donors registered through intake",
		}),
	}
}
