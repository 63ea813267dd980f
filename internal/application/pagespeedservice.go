package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/ericfisherdev/rankpanel/internal/domain/model"
	"github.com/ericfisherdev/rankpanel/internal/domain/port/driven"
	"github.com/ericfisherdev/rankpanel/internal/metrics"
)

// PageSpeedService runs page-performance analyses and appends them to
// history. Batch syncs pace outbound calls at one per second; the external
// API has no per-property quota isolation, so politeness is on us.
type PageSpeedService struct {
	client      driven.PageSpeedClient
	domainStore driven.DomainStore
	store       driven.PageSpeedStore
	limiter     *rate.Limiter
	now         func() time.Time
}

// NewPageSpeedService creates a PageSpeedService with all required dependencies.
func NewPageSpeedService(client driven.PageSpeedClient, domainStore driven.DomainStore, store driven.PageSpeedStore) *PageSpeedService {
	return &PageSpeedService{
		client:      client,
		domainStore: domainStore,
		store:       store,
		limiter:     rate.NewLimiter(rate.Every(time.Second), 1),
		now:         time.Now,
	}
}

// AnalyzeAndSave runs one analysis for the domain's URL on the mobile
// strategy, persists today's snapshot, and returns the metrics. Used
// synchronously by on-demand analysis callers and by the batch flows.
func (s *PageSpeedService) AnalyzeAndSave(ctx context.Context, domainID int64, url string) (model.PageSpeedMetrics, error) {
	m, raw, err := s.client.Analyze(ctx, url, model.StrategyMobile)
	if err != nil {
		return model.PageSpeedMetrics{}, fmt.Errorf("analyze %s: %w", url, err)
	}

	snap := model.PageSpeedHistory{
		DomainID:   domainID,
		URL:        url,
		Strategy:   model.StrategyMobile,
		Day:        model.DayOf(s.now()),
		Metrics:    m,
		RawPayload: raw,
	}
	if err := s.store.UpsertSnapshot(ctx, snap); err != nil {
		return model.PageSpeedMetrics{}, err
	}

	metrics.URLsAnalyzed.Inc()
	return m, nil
}

// SyncUser analyzes the root URL of each of the user's domains, sequentially,
// pacing one call per second. Per-domain failures are logged and the loop
// always completes.
func (s *PageSpeedService) SyncUser(ctx context.Context, userID int64) PageSpeedSyncResult {
	domains, err := s.domainStore.ListByUser(ctx, userID)
	if err != nil {
		slog.Error("pagespeed sync aborted: listing domains failed", "user", userID, "error", err)
		return PageSpeedSyncResult{Success: false, Error: err.Error()}
	}

	result := PageSpeedSyncResult{Success: true}
	result.URLsAnalyzed = s.syncDomains(ctx, domains)

	slog.Info("pagespeed sync complete", "user", userID, "urls_analyzed", result.URLsAnalyzed)
	return result
}

// SyncDomain runs the per-domain update outside a batch (manual trigger).
func (s *PageSpeedService) SyncDomain(ctx context.Context, domainID int64) error {
	domain, err := s.domainStore.GetByID(ctx, domainID)
	if err != nil {
		return err
	}
	if domain == nil {
		return fmt.Errorf("domain %d not found", domainID)
	}

	_, err = s.AnalyzeAndSave(ctx, domain.ID, domain.RootURL())
	return err
}

// syncDomains is the shared sequential loop: wait for the limiter, analyze,
// contain failures. Returns the number of URLs successfully analyzed.
func (s *PageSpeedService) syncDomains(ctx context.Context, domains []model.Domain) int {
	var analyzed int
	for _, domain := range domains {
		if err := s.limiter.Wait(ctx); err != nil {
			slog.Info("pagespeed sync interrupted", "error", err)
			return analyzed
		}

		if _, err := s.AnalyzeAndSave(ctx, domain.ID, domain.RootURL()); err != nil {
			slog.Error("domain pagespeed sync failed", "domain", domain.Name, "error", err)
			metrics.SyncDomainFailures.WithLabelValues(string(model.SyncRunPageSpeed)).Inc()
			continue
		}
		analyzed++
	}
	return analyzed
}
