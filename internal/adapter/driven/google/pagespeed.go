package google

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/gregjones/httpcache"

	"github.com/ericfisherdev/rankpanel/internal/domain/model"
	"github.com/ericfisherdev/rankpanel/internal/domain/port/driven"
)

const pageSpeedBaseURL = "https://www.googleapis.com/pagespeedonline/v5/runPagespeed"

// Compile-time interface satisfaction check.
var _ driven.PageSpeedClient = (*PageSpeedClient)(nil)

// PageSpeedClient calls the PageSpeed Insights v5 API. The API is keyed, not
// OAuth-scoped; an empty key works at a lower anonymous quota.
type PageSpeedClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewPageSpeedClient creates a client against the production API with an
// in-memory caching transport, so a repeated analysis of the same URL within
// the response's freshness window is served without a network call.
func NewPageSpeedClient(apiKey string) *PageSpeedClient {
	return &PageSpeedClient{
		httpClient: &http.Client{
			Transport: httpcache.NewMemoryCacheTransport(),
			Timeout:   60 * time.Second, // Lighthouse runs take a while.
		},
		baseURL: pageSpeedBaseURL,
		apiKey:  apiKey,
	}
}

// NewPageSpeedClientWithBaseURL creates a client against a custom base URL.
// Intended for tests with an httptest server.
func NewPageSpeedClientWithBaseURL(httpClient *http.Client, baseURL, apiKey string) *PageSpeedClient {
	return &PageSpeedClient{httpClient: httpClient, baseURL: baseURL, apiKey: apiKey}
}

// pageSpeedResponse mirrors the slice of the PSI payload this subsystem reads.
type pageSpeedResponse struct {
	LighthouseResult struct {
		Categories map[string]lighthouseCategory `json:"categories"`
		Audits     map[string]lighthouseAudit    `json:"audits"`
	} `json:"lighthouseResult"`
}

type lighthouseCategory struct {
	Score float64 `json:"score"` // 0..1
}

type lighthouseAudit struct {
	NumericValue float64 `json:"numericValue"`
}

// Analyze runs a PageSpeed analysis for the URL and strategy and returns the
// flat extracted metrics plus the raw payload. Absent categories and audits
// default to 0.
func (c *PageSpeedClient) Analyze(ctx context.Context, pageURL, strategy string) (model.PageSpeedMetrics, []byte, error) {
	params := url.Values{}
	params.Set("url", pageURL)
	params.Set("strategy", strategy)
	for _, category := range []string{"PERFORMANCE", "ACCESSIBILITY", "BEST_PRACTICES", "SEO"} {
		params.Add("category", category)
	}
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return model.PageSpeedMetrics{}, nil, fmt.Errorf("build pagespeed request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.PageSpeedMetrics{}, nil, fmt.Errorf("analyze %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return model.PageSpeedMetrics{}, nil, fmt.Errorf("read pagespeed response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return model.PageSpeedMetrics{}, nil, &APIError{Service: "pagespeed", Status: resp.StatusCode, Body: string(body)}
	}

	var parsed pageSpeedResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return model.PageSpeedMetrics{}, nil, fmt.Errorf("decode pagespeed response: %w", err)
	}

	lr := parsed.LighthouseResult
	metrics := model.PageSpeedMetrics{
		Performance:    categoryScore(lr.Categories, "performance"),
		Accessibility:  categoryScore(lr.Categories, "accessibility"),
		BestPractices:  categoryScore(lr.Categories, "best-practices"),
		SEO:            categoryScore(lr.Categories, "seo"),
		LCPMs:          auditValue(lr.Audits, "largest-contentful-paint"),
		FIDMs:          auditValue(lr.Audits, "max-potential-fid"),
		CLS:            auditValue(lr.Audits, "cumulative-layout-shift") * 1000,
		FCPMs:          auditValue(lr.Audits, "first-contentful-paint"),
		TTFBMs:         auditValue(lr.Audits, "server-response-time"),
		SpeedIndexMs:   auditValue(lr.Audits, "speed-index"),
		BlockingTimeMs: auditValue(lr.Audits, "total-blocking-time"),
	}

	return metrics, body, nil
}

// categoryScore converts a Lighthouse 0..1 category score to 0..100.
func categoryScore(categories map[string]lighthouseCategory, key string) int {
	cat, ok := categories[key]
	if !ok {
		return 0
	}
	return int(math.Round(cat.Score * 100))
}

func auditValue(audits map[string]lighthouseAudit, key string) float64 {
	audit, ok := audits[key]
	if !ok {
		return 0
	}
	return audit.NumericValue
}
