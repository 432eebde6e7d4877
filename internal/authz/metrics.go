package authz

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authgate_decisions_total",
			Help: "Number of permission decisions, differentiated by outcome.",
		},
		[]string{"outcome"},
	)

	metricLookupFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "authgate_lookup_failures_total",
			Help: "Number of permission checks that failed due to repository errors.",
		},
	)

	metricAuditFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "authgate_audit_failures_total",
			Help: "Number of audit entries that could not be persisted or enqueued.",
		},
	)

	metricMalformedGrants = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "authgate_malformed_grants_total",
			Help: "Number of stored grants skipped because their conditions could not be parsed.",
		},
	)

	metricGroupCycles = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "authgate_group_cycles_total",
			Help: "Number of cycles detected while ascending the permission group hierarchy.",
		},
	)

	metricCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "authgate_decision_cache_hits_total",
			Help: "Number of permission checks served from the decision cache.",
		},
	)

	metricCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "authgate_decision_cache_misses_total",
			Help: "Number of permission checks that missed the decision cache.",
		},
	)
)
