package driven

import (
	"context"

	"github.com/ericfisherdev/rankpanel/internal/domain/model"
)

// HistoryStore appends daily traffic snapshots. Writes are upserts keyed by
// (entity id, day): re-running a sync for the same day replaces the snapshot
// instead of producing a duplicate row.
type HistoryStore interface {
	// UpsertDomainDay writes the aggregate snapshot for one domain and day.
	UpsertDomainDay(ctx context.Context, domainID int64, day model.Day, m model.SearchMetrics) error

	// UpsertKeywordDay writes the snapshot for one keyword and day.
	UpsertKeywordDay(ctx context.Context, keywordID int64, day model.Day, m model.SearchMetrics) error

	// ListDomainHistory returns snapshots for a domain, newest first.
	ListDomainHistory(ctx context.Context, domainID int64, limit int) ([]model.DomainHistory, error)

	// ListKeywordHistory returns snapshots for a keyword, newest first.
	ListKeywordHistory(ctx context.Context, keywordID int64, limit int) ([]model.KeywordHistory, error)
}

// PageSpeedStore appends daily page-performance snapshots, upserted by
// (domain, url, strategy, day).
type PageSpeedStore interface {
	UpsertSnapshot(ctx context.Context, snap model.PageSpeedHistory) error

	// ListByDomain returns snapshots for a domain, newest first.
	ListByDomain(ctx context.Context, domainID int64, limit int) ([]model.PageSpeedHistory, error)
}

// SyncRunStore records batch executions for status reporting and audit.
type SyncRunStore interface {
	// Begin inserts an in-flight run and returns its id.
	Begin(ctx context.Context, kind model.SyncRunKind) (int64, error)

	// Finish marks a run complete with its counters and optional error text.
	Finish(ctx context.Context, id int64, run model.SyncRun) error

	// Latest returns the most recent run of the given kind, or (nil, nil).
	Latest(ctx context.Context, kind model.SyncRunKind) (*model.SyncRun, error)
}
