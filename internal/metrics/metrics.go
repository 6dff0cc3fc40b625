// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pricediary"

var (
	// EntriesAdded counts entries written to both collections.
	EntriesAdded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "entries_added_total",
		Help:      "Price entries created.",
	})

	// EntryOrphans counts per-user entries left without a global copy or back-link.
	EntryOrphans = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "entry_orphans_total",
		Help:      "Per-user entries whose global write or back-link failed.",
	})

	// EntriesDeleted counts per-user entry deletions.
	EntriesDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "entries_deleted_total",
		Help:      "Price entries deleted by their owner.",
	})

	// GlobalDeleteFailures counts swallowed failures deleting the global copy.
	GlobalDeleteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "global_delete_failures_total",
		Help:      "Failures deleting the global copy of an entry.",
	})

	// FamilyMemberFailures counts member fetches treated as empty during fan-out.
	FamilyMemberFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "family_member_fetch_failures_total",
		Help:      "Family member entry fetches that failed during aggregation.",
	})

	// ScopeFallbacks counts family-scope requests answered with the user's own entries.
	ScopeFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scope_fallbacks_total",
		Help:      "Family scope requests that fell back to the user's own entries.",
	}, []string{"reason"})

	// RPCDuration observes Connect procedure latency.
	RPCDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "rpc_duration_seconds",
		Help:      "Connect RPC latency by procedure and code.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"procedure", "code"})
)
