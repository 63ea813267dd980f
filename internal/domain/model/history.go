package model

import "time"

// SearchMetrics is one aggregate traffic snapshot from the search analytics
// API. Position is the average ranking position and CTR the average
// click-through rate for the period.
type SearchMetrics struct {
	Clicks      int64
	Impressions int64
	Position    float64
	CTR         float64
}

// KeywordMetrics is a per-query row from the search analytics API.
type KeywordMetrics struct {
	Keyword string
	SearchMetrics
}

// DomainHistory is an immutable daily snapshot of aggregate traffic metrics
// for one domain. One row per (domain, day); re-running a sync for the same
// day replaces the snapshot.
type DomainHistory struct {
	ID        int64
	DomainID  int64
	Day       Day
	Metrics   SearchMetrics
	CreatedAt time.Time
}

// KeywordHistory is the per-keyword counterpart of DomainHistory.
type KeywordHistory struct {
	ID        int64
	KeywordID int64
	Day       Day
	Metrics   SearchMetrics
	CreatedAt time.Time
}

// Day is a calendar day in UTC, stored as "2006-01-02".
type Day string

// DayOf truncates t to its UTC calendar day.
func DayOf(t time.Time) Day {
	return Day(t.UTC().Format("2006-01-02"))
}

// String returns the yyyy-mm-dd form.
func (d Day) String() string { return string(d) }
