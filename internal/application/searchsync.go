package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/ericfisherdev/rankpanel/internal/domain/model"
	"github.com/ericfisherdev/rankpanel/internal/domain/port/driven"
	"github.com/ericfisherdev/rankpanel/internal/metrics"
)

// queryRowLimit caps the per-query dimension rows fetched per domain.
const queryRowLimit = 500

// SearchSyncService pulls search analytics for a user's domains into the
// history tables and lazily creates tracked keywords as the feed surfaces
// them. Domains are processed sequentially; a failure on one is logged and
// the loop continues.
type SearchSyncService struct {
	tokens       *TokenService
	analytics    driven.SearchAnalyticsClient
	domainStore  driven.DomainStore
	keywordStore driven.KeywordStore
	historyStore driven.HistoryStore
	now          func() time.Time
}

// NewSearchSyncService creates a SearchSyncService with all required dependencies.
func NewSearchSyncService(
	tokens *TokenService,
	analytics driven.SearchAnalyticsClient,
	domainStore driven.DomainStore,
	keywordStore driven.KeywordStore,
	historyStore driven.HistoryStore,
) *SearchSyncService {
	return &SearchSyncService{
		tokens:       tokens,
		analytics:    analytics,
		domainStore:  domainStore,
		keywordStore: keywordStore,
		historyStore: historyStore,
		now:          time.Now,
	}
}

// SyncUser refreshes search analytics history for every domain the user has
// connected to a Search Console property. The window is the trailing 7 days
// ending yesterday; today is excluded to avoid partial-day data. Failures
// before the per-domain loop (token resolution, listing domains) abort the
// whole call as a failed result, never a panic or error return.
func (s *SearchSyncService) SyncUser(ctx context.Context, userID int64) SyncResult {
	accessToken, err := s.tokens.GetValidAccessToken(ctx, userID)
	if err != nil {
		slog.Error("search sync aborted: token resolution failed", "user", userID, "error", err)
		return SyncResult{Success: false, Error: err.Error()}
	}

	domains, err := s.domainStore.ListByUser(ctx, userID)
	if err != nil {
		slog.Error("search sync aborted: listing domains failed", "user", userID, "error", err)
		return SyncResult{Success: false, Error: err.Error()}
	}

	start, end := s.window()

	result := SyncResult{Success: true}
	for _, domain := range domains {
		if domain.Property == "" {
			continue
		}

		if err := s.syncDomain(ctx, accessToken, userID, domain, start, end, &result); err != nil {
			slog.Error("domain search sync failed", "domain", domain.Name, "error", err)
			metrics.SyncDomainFailures.WithLabelValues(string(model.SyncRunSearch)).Inc()
			continue
		}
	}

	slog.Info("search sync complete",
		"user", userID,
		"domains_updated", result.DomainsUpdated,
		"keywords_updated", result.KeywordsUpdated,
		"window_start", start.String(),
		"window_end", end.String(),
	)

	return result
}

// window computes the trailing 7-day window ending yesterday, in UTC days.
func (s *SearchSyncService) window() (start, end model.Day) {
	yesterday := s.now().UTC().AddDate(0, 0, -1)
	return model.DayOf(yesterday.AddDate(0, 0, -6)), model.DayOf(yesterday)
}

// syncDomain writes the aggregate snapshot and the per-keyword snapshots for
// one domain. Counters are incremented as work lands, so a mid-domain failure
// still reports what was written.
func (s *SearchSyncService) syncDomain(ctx context.Context, accessToken string, userID int64, domain model.Domain, start, end model.Day, result *SyncResult) error {
	siteMetrics, err := s.analytics.FetchSiteMetrics(ctx, accessToken, domain.Property, start, end)
	if err != nil {
		return err
	}

	if err := s.historyStore.UpsertDomainDay(ctx, domain.ID, end, siteMetrics); err != nil {
		return err
	}
	result.DomainsUpdated++
	metrics.DomainsUpdated.Inc()

	queryRows, err := s.analytics.FetchQueryMetrics(ctx, accessToken, domain.Property, start, end, queryRowLimit)
	if err != nil {
		return err
	}

	for _, row := range queryRows {
		keyword, err := s.keywordStore.GetOrCreate(ctx, domain.ID, userID, row.Keyword)
		if err != nil {
			slog.Error("keyword upsert failed", "domain", domain.Name, "keyword", row.Keyword, "error", err)
			continue
		}

		if err := s.historyStore.UpsertKeywordDay(ctx, keyword.ID, end, row.SearchMetrics); err != nil {
			slog.Error("keyword history write failed", "domain", domain.Name, "keyword", row.Keyword, "error", err)
			continue
		}

		result.KeywordsUpdated++
		metrics.KeywordsUpdated.Inc()
	}

	return nil
}
