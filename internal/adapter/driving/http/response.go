package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/rankpanel/internal/application"
	"github.com/ericfisherdev/rankpanel/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// SearchMetricsResponse is the JSON representation of one traffic aggregate.
type SearchMetricsResponse struct {
	Clicks      int64   `json:"clicks"`
	Impressions int64   `json:"impressions"`
	Position    float64 `json:"position"`
	CTR         float64 `json:"ctr"`
}

// DomainHistoryResponse is one daily traffic snapshot for a domain.
type DomainHistoryResponse struct {
	DomainID int64                 `json:"domain_id"`
	Day      string                `json:"day"`
	Metrics  SearchMetricsResponse `json:"metrics"`
}

// KeywordHistoryResponse is one daily traffic snapshot for a keyword.
type KeywordHistoryResponse struct {
	KeywordID int64                 `json:"keyword_id"`
	Day       string                `json:"day"`
	Metrics   SearchMetricsResponse `json:"metrics"`
}

// PageSpeedMetricsResponse is the JSON representation of one analysis result.
// Timing fields are milliseconds; CLS keeps the x1000 storage scale.
type PageSpeedMetricsResponse struct {
	Performance    int     `json:"performance"`
	Accessibility  int     `json:"accessibility"`
	BestPractices  int     `json:"best_practices"`
	SEO            int     `json:"seo"`
	LCPMs          float64 `json:"lcp_ms"`
	FIDMs          float64 `json:"fid_ms"`
	CLS            float64 `json:"cls"`
	FCPMs          float64 `json:"fcp_ms"`
	TTFBMs         float64 `json:"ttfb_ms"`
	SpeedIndexMs   float64 `json:"speed_index_ms"`
	BlockingTimeMs float64 `json:"blocking_time_ms"`
}

// PageSpeedSnapshotResponse is one stored daily analysis snapshot.
type PageSpeedSnapshotResponse struct {
	DomainID int64                    `json:"domain_id"`
	URL      string                   `json:"url"`
	Strategy string                   `json:"strategy"`
	Day      string                   `json:"day"`
	Metrics  PageSpeedMetricsResponse `json:"metrics"`
}

// AnalyzeResponse is the on-demand analysis result: the fresh metrics plus the
// derived readability score.
type AnalyzeResponse struct {
	Metrics     PageSpeedMetricsResponse `json:"metrics"`
	Readability model.ReadabilityScore   `json:"readability"`
}

// SyncRunResponse is the JSON representation of one recorded batch run.
type SyncRunResponse struct {
	Kind            string `json:"kind"`
	StartedAt       string `json:"started_at"`
	FinishedAt      string `json:"finished_at,omitempty"`
	DomainsUpdated  int    `json:"domains_updated"`
	KeywordsUpdated int    `json:"keywords_updated"`
	URLsAnalyzed    int    `json:"urls_analyzed"`
	Error           string `json:"error,omitempty"`
}

// SyncStatusResponse is the JSON representation of the scheduler status.
type SyncStatusResponse struct {
	Running bool             `json:"running"`
	NextRun string           `json:"next_run"`
	LastRun *SyncRunResponse `json:"last_run,omitempty"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// toSearchMetricsResponse converts domain search metrics to their JSON representation.
func toSearchMetricsResponse(m model.SearchMetrics) SearchMetricsResponse {
	return SearchMetricsResponse{
		Clicks:      m.Clicks,
		Impressions: m.Impressions,
		Position:    m.Position,
		CTR:         m.CTR,
	}
}

// toDomainHistoryResponse converts a domain history row to its JSON representation.
func toDomainHistoryResponse(h model.DomainHistory) DomainHistoryResponse {
	return DomainHistoryResponse{
		DomainID: h.DomainID,
		Day:      h.Day.String(),
		Metrics:  toSearchMetricsResponse(h.Metrics),
	}
}

// toKeywordHistoryResponse converts a keyword history row to its JSON representation.
func toKeywordHistoryResponse(h model.KeywordHistory) KeywordHistoryResponse {
	return KeywordHistoryResponse{
		KeywordID: h.KeywordID,
		Day:       h.Day.String(),
		Metrics:   toSearchMetricsResponse(h.Metrics),
	}
}

// toPageSpeedMetricsResponse converts analysis metrics to their JSON representation.
func toPageSpeedMetricsResponse(m model.PageSpeedMetrics) PageSpeedMetricsResponse {
	return PageSpeedMetricsResponse{
		Performance:    m.Performance,
		Accessibility:  m.Accessibility,
		BestPractices:  m.BestPractices,
		SEO:            m.SEO,
		LCPMs:          m.LCPMs,
		FIDMs:          m.FIDMs,
		CLS:            m.CLS,
		FCPMs:          m.FCPMs,
		TTFBMs:         m.TTFBMs,
		SpeedIndexMs:   m.SpeedIndexMs,
		BlockingTimeMs: m.BlockingTimeMs,
	}
}

// toPageSpeedSnapshotResponse converts a stored snapshot to its JSON representation.
func toPageSpeedSnapshotResponse(h model.PageSpeedHistory) PageSpeedSnapshotResponse {
	return PageSpeedSnapshotResponse{
		DomainID: h.DomainID,
		URL:      h.URL,
		Strategy: h.Strategy,
		Day:      h.Day.String(),
		Metrics:  toPageSpeedMetricsResponse(h.Metrics),
	}
}

// toSyncStatusResponse converts a scheduler status to its JSON representation.
func toSyncStatusResponse(s application.SchedulerStatus) SyncStatusResponse {
	resp := SyncStatusResponse{
		Running: s.Running,
		NextRun: s.NextRun.UTC().Format(time.RFC3339),
	}
	if s.LastRun != nil {
		run := SyncRunResponse{
			Kind:            string(s.LastRun.Kind),
			StartedAt:       s.LastRun.StartedAt.UTC().Format(time.RFC3339),
			DomainsUpdated:  s.LastRun.DomainsUpdated,
			KeywordsUpdated: s.LastRun.KeywordsUpdated,
			URLsAnalyzed:    s.LastRun.URLsAnalyzed,
			Error:           s.LastRun.Error,
		}
		if !s.LastRun.FinishedAt.IsZero() {
			run.FinishedAt = s.LastRun.FinishedAt.UTC().Format(time.RFC3339)
		}
		resp.LastRun = &run
	}
	return resp
}

// healthNow formats the current instant for the health endpoint.
func healthNow() string {
	return time.Now().UTC().Format(time.RFC3339)
}
