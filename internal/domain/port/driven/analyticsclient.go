package driven

import (
	"context"
	"time"

	"github.com/ericfisherdev/rankpanel/internal/domain/model"
)

// SearchAnalyticsClient is the ranking/traffic measurement API (Search
// Console). Both calls cover a closed date range of calendar days.
type SearchAnalyticsClient interface {
	// FetchSiteMetrics returns the aggregate metrics for a property over the
	// window. Missing response fields are zero.
	FetchSiteMetrics(ctx context.Context, accessToken, property string, start, end model.Day) (model.SearchMetrics, error)

	// FetchQueryMetrics returns up to limit per-query rows for the window.
	FetchQueryMetrics(ctx context.Context, accessToken, property string, start, end model.Day, limit int) ([]model.KeywordMetrics, error)
}

// PageSpeedClient is the page-performance measurement API. It returns the
// flat extracted metrics plus the raw response payload.
type PageSpeedClient interface {
	Analyze(ctx context.Context, url, strategy string) (model.PageSpeedMetrics, []byte, error)
}

// TokenRefresher exchanges a refresh token for a fresh access token.
// Implementations return the new access token, the (possibly rotated) refresh
// token, and the absolute expiry. A failed exchange propagates unwrapped.
type TokenRefresher interface {
	Refresh(ctx context.Context, refreshToken string) (access, refresh string, expiry time.Time, err error)
}
