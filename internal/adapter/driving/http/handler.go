package httphandler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ericfisherdev/rankpanel/internal/application"
	"github.com/ericfisherdev/rankpanel/internal/domain/port/driven"
)

const defaultHistoryLimit = 30

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	searchSvc      *application.SearchSyncService
	pagespeedSvc   *application.PageSpeedService
	scheduler      *application.Scheduler
	domainStore    driven.DomainStore
	historyStore   driven.HistoryStore
	pagespeedStore driven.PageSpeedStore
	logger         *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	searchSvc *application.SearchSyncService,
	pagespeedSvc *application.PageSpeedService,
	scheduler *application.Scheduler,
	domainStore driven.DomainStore,
	historyStore driven.HistoryStore,
	pagespeedStore driven.PageSpeedStore,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		searchSvc:      searchSvc,
		pagespeedSvc:   pagespeedSvc,
		scheduler:      scheduler,
		domainStore:    domainStore,
		historyStore:   historyStore,
		pagespeedStore: pagespeedStore,
		logger:         logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/users/{userID}/sync/search", h.SyncSearch)
	mux.HandleFunc("POST /api/v1/users/{userID}/sync/pagespeed", h.SyncPageSpeed)
	mux.HandleFunc("POST /api/v1/domains/{domainID}/analyze", h.AnalyzeDomain)
	mux.HandleFunc("GET /api/v1/domains/{domainID}/history", h.DomainHistory)
	mux.HandleFunc("GET /api/v1/domains/{domainID}/pagespeed", h.PageSpeedHistory)
	mux.HandleFunc("GET /api/v1/keywords/{keywordID}/history", h.KeywordHistory)
	mux.HandleFunc("GET /api/v1/sync/status", h.SyncStatus)
	mux.HandleFunc("GET /api/v1/health", h.Health)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// SyncSearch runs a search analytics sync for one user and returns the result.
// The sync runs synchronously; per-domain failures are reflected only in the
// counters, so the response status is 200 unless the whole batch failed.
func (h *Handler) SyncSearch(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}

	result := h.searchSvc.SyncUser(r.Context(), userID)
	if !result.Success {
		writeJSON(w, http.StatusBadGateway, result)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// SyncPageSpeed runs a page-performance sync for one user's domains.
func (h *Handler) SyncPageSpeed(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}

	result := h.pagespeedSvc.SyncUser(r.Context(), userID)
	if !result.Success {
		writeJSON(w, http.StatusBadGateway, result)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// AnalyzeDomain runs an on-demand analysis for one domain and returns the
// fresh metrics plus the derived readability score. The snapshot is persisted
// as today's entry before responding.
func (h *Handler) AnalyzeDomain(w http.ResponseWriter, r *http.Request) {
	domainID, ok := pathID(w, r, "domainID")
	if !ok {
		return
	}

	domain, err := h.domainStore.GetByID(r.Context(), domainID)
	if err != nil {
		h.logger.Error("failed to load domain", "domain_id", domainID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if domain == nil {
		writeError(w, http.StatusNotFound, "domain not found")
		return
	}

	metrics, err := h.pagespeedSvc.AnalyzeAndSave(r.Context(), domain.ID, domain.RootURL())
	if err != nil {
		h.logger.Error("on-demand analysis failed", "domain", domain.Name, "error", err)
		writeError(w, http.StatusBadGateway, "analysis failed")
		return
	}

	writeJSON(w, http.StatusOK, AnalyzeResponse{
		Metrics:     toPageSpeedMetricsResponse(metrics),
		Readability: application.ReadabilityScore(metrics),
	})
}

// DomainHistory returns the most recent daily traffic snapshots for a domain.
func (h *Handler) DomainHistory(w http.ResponseWriter, r *http.Request) {
	domainID, ok := pathID(w, r, "domainID")
	if !ok {
		return
	}

	rows, err := h.historyStore.ListDomainHistory(r.Context(), domainID, queryLimit(r))
	if err != nil {
		h.logger.Error("failed to list domain history", "domain_id", domainID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]DomainHistoryResponse, 0, len(rows))
	for _, row := range rows {
		resp = append(resp, toDomainHistoryResponse(row))
	}

	writeJSON(w, http.StatusOK, resp)
}

// KeywordHistory returns the most recent daily snapshots for a keyword.
func (h *Handler) KeywordHistory(w http.ResponseWriter, r *http.Request) {
	keywordID, ok := pathID(w, r, "keywordID")
	if !ok {
		return
	}

	rows, err := h.historyStore.ListKeywordHistory(r.Context(), keywordID, queryLimit(r))
	if err != nil {
		h.logger.Error("failed to list keyword history", "keyword_id", keywordID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]KeywordHistoryResponse, 0, len(rows))
	for _, row := range rows {
		resp = append(resp, toKeywordHistoryResponse(row))
	}

	writeJSON(w, http.StatusOK, resp)
}

// PageSpeedHistory returns the most recent analysis snapshots for a domain.
func (h *Handler) PageSpeedHistory(w http.ResponseWriter, r *http.Request) {
	domainID, ok := pathID(w, r, "domainID")
	if !ok {
		return
	}

	rows, err := h.pagespeedStore.ListByDomain(r.Context(), domainID, queryLimit(r))
	if err != nil {
		h.logger.Error("failed to list pagespeed history", "domain_id", domainID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]PageSpeedSnapshotResponse, 0, len(rows))
	for _, row := range rows {
		resp = append(resp, toPageSpeedSnapshotResponse(row))
	}

	writeJSON(w, http.StatusOK, resp)
}

// SyncStatus reports the scheduler's run state and last recorded batch.
func (h *Handler) SyncStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toSyncStatusResponse(h.scheduler.Status(r.Context())))
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   healthNow(),
	})
}

// pathID parses a positive integer path parameter, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

// queryLimit reads the optional ?limit= parameter, falling back to the default.
func queryLimit(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultHistoryLimit
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return defaultHistoryLimit
	}
	return limit
}
