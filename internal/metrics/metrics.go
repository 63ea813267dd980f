// Package metrics exposes Prometheus instrumentation for the sync subsystem.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SyncRuns counts batch executions by kind and outcome.
	SyncRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rankpanel_sync_runs_total",
		Help: "Total sync batch executions by kind and outcome",
	}, []string{"kind", "outcome"})

	// SyncDomainFailures counts per-domain failures contained inside a batch.
	SyncDomainFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rankpanel_sync_domain_failures_total",
		Help: "Per-domain sync failures caught at the domain-iteration boundary",
	}, []string{"kind"})

	// DomainsUpdated counts domain history snapshots written.
	DomainsUpdated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rankpanel_domains_updated_total",
		Help: "Domain history snapshots written",
	})

	// KeywordsUpdated counts keyword history snapshots written.
	KeywordsUpdated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rankpanel_keywords_updated_total",
		Help: "Keyword history snapshots written",
	})

	// URLsAnalyzed counts page-performance analyses persisted.
	URLsAnalyzed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rankpanel_urls_analyzed_total",
		Help: "Page-performance analyses persisted",
	})
)
