package model

import "time"

// Keyword is a tracked search query for one domain. Keywords are discovered
// lazily from the analytics feed: the first sync that sees a query string
// creates the row. Identity is the (DomainID, Text) pair, enforced by the
// upsert logic rather than a storage constraint.
type Keyword struct {
	ID       int64
	DomainID int64
	UserID   int64
	Text     string
	AddedAt  time.Time
}
