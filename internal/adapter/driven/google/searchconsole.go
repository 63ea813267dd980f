package google

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ericfisherdev/rankpanel/internal/domain/model"
	"github.com/ericfisherdev/rankpanel/internal/domain/port/driven"
)

const searchConsoleBaseURL = "https://www.googleapis.com/webmasters/v3"

// Compile-time interface satisfaction check.
var _ driven.SearchAnalyticsClient = (*SearchConsoleClient)(nil)

// SearchConsoleClient calls the Search Console searchAnalytics/query endpoint.
// Authentication is a per-call bearer token resolved by the token lifecycle
// upstream; the client itself holds no credentials.
type SearchConsoleClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewSearchConsoleClient creates a client against the production API.
func NewSearchConsoleClient() *SearchConsoleClient {
	return &SearchConsoleClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    searchConsoleBaseURL,
	}
}

// NewSearchConsoleClientWithBaseURL creates a client against a custom base URL.
// Intended for tests with an httptest server.
func NewSearchConsoleClientWithBaseURL(httpClient *http.Client, baseURL string) *SearchConsoleClient {
	return &SearchConsoleClient{httpClient: httpClient, baseURL: baseURL}
}

// queryRequest is the searchAnalytics/query request body.
type queryRequest struct {
	StartDate  string   `json:"startDate"`
	EndDate    string   `json:"endDate"`
	Dimensions []string `json:"dimensions,omitempty"`
	RowLimit   int      `json:"rowLimit,omitempty"`
}

// queryResponse is the searchAnalytics/query response body. Absent fields
// unmarshal to zero, which is the defaulting the sync flows rely on.
type queryResponse struct {
	Rows []struct {
		Keys        []string `json:"keys"`
		Clicks      float64  `json:"clicks"`
		Impressions float64  `json:"impressions"`
		CTR         float64  `json:"ctr"`
		Position    float64  `json:"position"`
	} `json:"rows"`
}

// FetchSiteMetrics returns the aggregate metrics for a property over the window.
// An empty rows array (no traffic) yields zero metrics, not an error.
func (c *SearchConsoleClient) FetchSiteMetrics(ctx context.Context, accessToken, property string, start, end model.Day) (model.SearchMetrics, error) {
	resp, err := c.query(ctx, accessToken, property, queryRequest{
		StartDate: start.String(),
		EndDate:   end.String(),
	})
	if err != nil {
		return model.SearchMetrics{}, err
	}

	if len(resp.Rows) == 0 {
		return model.SearchMetrics{}, nil
	}

	row := resp.Rows[0]
	return model.SearchMetrics{
		Clicks:      int64(row.Clicks),
		Impressions: int64(row.Impressions),
		Position:    row.Position,
		CTR:         row.CTR,
	}, nil
}

// FetchQueryMetrics returns up to limit per-query rows for the window. Rows
// without a query key are skipped.
func (c *SearchConsoleClient) FetchQueryMetrics(ctx context.Context, accessToken, property string, start, end model.Day, limit int) ([]model.KeywordMetrics, error) {
	resp, err := c.query(ctx, accessToken, property, queryRequest{
		StartDate:  start.String(),
		EndDate:    end.String(),
		Dimensions: []string{"query"},
		RowLimit:   limit,
	})
	if err != nil {
		return nil, err
	}

	rows := make([]model.KeywordMetrics, 0, len(resp.Rows))
	for _, row := range resp.Rows {
		if len(row.Keys) == 0 || row.Keys[0] == "" {
			continue
		}
		rows = append(rows, model.KeywordMetrics{
			Keyword: row.Keys[0],
			SearchMetrics: model.SearchMetrics{
				Clicks:      int64(row.Clicks),
				Impressions: int64(row.Impressions),
				Position:    row.Position,
				CTR:         row.CTR,
			},
		})
	}

	return rows, nil
}

func (c *SearchConsoleClient) query(ctx context.Context, accessToken, property string, reqBody queryRequest) (*queryResponse, error) {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal query request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/sites/%s/searchAnalytics/query", c.baseURL, url.PathEscape(property))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build query request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", property, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read query response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{Service: "search console", Status: resp.StatusCode, Body: string(respBody)}
	}

	var parsed queryResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("decode query response: %w", err)
	}

	return &parsed, nil
}
