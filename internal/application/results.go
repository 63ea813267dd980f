package application

// SyncResult is the outcome of one search analytics sync. It is the only
// shape that crosses back to callers of "sync now" actions: failures before
// the per-domain loop set Success=false and Error; per-domain failures are
// logged and reflected only in the counters.
type SyncResult struct {
	Success         bool   `json:"success"`
	DomainsUpdated  int    `json:"domains_updated"`
	KeywordsUpdated int    `json:"keywords_updated"`
	Error           string `json:"error,omitempty"`
}

// PageSpeedSyncResult is the outcome of one page-performance sync batch.
type PageSpeedSyncResult struct {
	Success      bool   `json:"success"`
	URLsAnalyzed int    `json:"urls_analyzed"`
	Error        string `json:"error,omitempty"`
}
