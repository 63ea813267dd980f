package model

import "time"

// SyncRunKind distinguishes the two batch flows in the sync_runs audit table.
type SyncRunKind string

const (
	SyncRunSearch    SyncRunKind = "search"
	SyncRunPageSpeed SyncRunKind = "pagespeed"
)

// SyncRun is a persisted record of one batch execution: when it started and
// finished, what it touched, and the first batch-level error if any. Per-domain
// failures are logged, not recorded here.
type SyncRun struct {
	ID              int64
	Kind            SyncRunKind
	StartedAt       time.Time
	FinishedAt      time.Time // Zero while the run is in flight.
	DomainsUpdated  int
	KeywordsUpdated int
	URLsAnalyzed    int
	Error           string
}
