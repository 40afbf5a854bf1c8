package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Ankursingh018as/public-pulse-ai/internal/areas"
	"github.com/Ankursingh018as/public-pulse-ai/internal/cache"
	"github.com/Ankursingh018as/public-pulse-ai/internal/classifier"
	apperrors "github.com/Ankursingh018as/public-pulse-ai/internal/errors"
	"github.com/Ankursingh018as/public-pulse-ai/internal/fusion"
	"github.com/Ankursingh018as/public-pulse-ai/internal/intelligence"
	"github.com/Ankursingh018as/public-pulse-ai/internal/logger"
	"github.com/Ankursingh018as/public-pulse-ai/internal/metrics"
	"github.com/Ankursingh018as/public-pulse-ai/internal/models"
	"github.com/Ankursingh018as/public-pulse-ai/internal/pipeline"
	"github.com/Ankursingh018as/public-pulse-ai/internal/preprocess"
	"github.com/Ankursingh018as/public-pulse-ai/internal/sentiment"
	"github.com/Ankursingh018as/public-pulse-ai/internal/store"
	"github.com/Ankursingh018as/public-pulse-ai/pkg/utils"
)

const (
	defaultSummaryWindow = 24
	maxSummaryWindow     = 168
)

// Handler handles HTTP requests for the API
type Handler struct {
	store      store.Store
	cache      *cache.Cache
	queue      *pipeline.QueueSource
	classifier *classifier.Classifier
	analyzer   *sentiment.Analyzer
	engine     *fusion.Engine
	summarizer *intelligence.Summarizer
	version    string
	buildTime  string
	gitCommit  string
	startTime  time.Time
}

// NewHandler creates a new API handler
func NewHandler(
	st store.Store,
	c *cache.Cache,
	queue *pipeline.QueueSource,
	cls *classifier.Classifier,
	analyzer *sentiment.Analyzer,
	engine *fusion.Engine,
	summarizer *intelligence.Summarizer,
	version, buildTime, gitCommit string,
) *Handler {
	return &Handler{
		store:      st,
		cache:      c,
		queue:      queue,
		classifier: cls,
		analyzer:   analyzer,
		engine:     engine,
		summarizer: summarizer,
		version:    version,
		buildTime:  buildTime,
		gitCommit:  gitCommit,
		startTime:  time.Now(),
	}
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/v1", func(r chi.Router) {
		// Health check endpoints
		r.Get("/health", h.healthHandler)
		r.Get("/health/ready", h.readinessHandler)
		r.Get("/health/live", h.livenessHandler)

		// Ingestion
		r.Post("/reports", h.submitReportHandler)

		// Issue endpoints
		r.Get("/issues", h.getIssuesHandler)
		r.Get("/issues/{id}", h.getIssueHandler)
		r.Post("/issues/{id}/resolve", h.resolveIssueHandler)

		// Risk and prediction endpoints
		r.Get("/predictions", h.getPredictionsHandler)
		r.Get("/risk", h.getRiskHandler)
		r.Get("/risk/demo", h.getRiskDemoHandler)

		// Intelligence endpoints
		r.Get("/summary", h.getSummaryHandler)
		r.Get("/areas", h.getAreasHandler)
		r.Get("/areas/{name}/briefing", h.getAreaBriefingHandler)

		// System info
		r.Get("/version", h.versionHandler)
	})

	// Root health check
	r.Get("/health", h.healthHandler)
}

// healthHandler provides basic health check
func (h *Handler) healthHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
		"version":   h.version,
	}

	h.writeJSONResponse(w, http.StatusOK, response)
}

// readinessHandler checks if the application is ready to serve traffic
func (h *Handler) readinessHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	checks := map[string]string{
		"store": "ok",
		"cache": "disabled",
	}

	statusCode := http.StatusOK

	// Check store health
	if err := h.store.Health(ctx); err != nil {
		checks["store"] = "error: " + err.Error()
		statusCode = http.StatusServiceUnavailable
	}

	if h.cache.Enabled() {
		checks["cache"] = "ok"
	}

	response := map[string]interface{}{
		"status":    "ready",
		"timestamp": time.Now().UTC(),
		"checks":    checks,
	}

	h.writeJSONResponse(w, statusCode, response)
}

// livenessHandler checks if the application is alive
func (h *Handler) livenessHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "alive",
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(h.startTime).String(),
	}

	h.writeJSONResponse(w, http.StatusOK, response)
}

// versionHandler returns version information
func (h *Handler) versionHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"version":    h.version,
		"build_time": h.buildTime,
		"git_commit": h.gitCommit,
	}

	h.writeJSONResponse(w, http.StatusOK, response)
}

// reportResponse is the synchronous acknowledgement for a submitted
// report. Persistence and risk recomputation happen asynchronously.
type reportResponse struct {
	ID         string            `json:"id"`
	Category   string            `json:"category"`
	Confidence float64           `json:"confidence"`
	Area       string            `json:"area"`
	Sentiment  sentiment.Profile `json:"sentiment"`
	Timestamp  time.Time         `json:"timestamp"`
}

// submitReportHandler handles POST /reports. The caller gets the analysis
// back immediately; the pipeline picks the report up on its next poll.
func (h *Handler) submitReportHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var report models.Report
	if err := json.NewDecoder(r.Body).Decode(&report); err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	clean := preprocess.CleanText(report.Text)
	if clean == "" {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "report text is required")
		return
	}

	if report.Source == "" {
		report.Source = "citizen"
	}

	result := h.classifier.Classify(clean)
	profile := h.analyzer.Analyze(clean)
	area := areas.Resolve(clean)

	if err := h.queue.Enqueue(report); err != nil {
		logger.WithContext(ctx).Error("Failed to enqueue report", "error", err)
		h.writeErrorResponse(w, r, http.StatusServiceUnavailable, "ingestion queue is full")
		return
	}

	response := reportResponse{
		ID:         utils.HashString(report.Source + "|" + clean),
		Category:   result.Category,
		Confidence: result.Confidence,
		Area:       area,
		Sentiment:  profile,
		Timestamp:  time.Now().UTC(),
	}

	h.writeJSONResponse(w, http.StatusAccepted, response)
}

// getIssuesHandler handles GET /issues
func (h *Handler) getIssuesHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	q, err := h.parseIssueQuery(r)
	if err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	issues, err := h.store.QueryIssues(ctx, q)
	if err != nil {
		logger.WithContext(ctx).Error("Failed to query issues", "error", err)
		h.writeErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	response := map[string]interface{}{
		"data":      issues,
		"count":     len(issues),
		"timestamp": time.Now().UTC(),
	}

	w.Header().Set("Cache-Control", "public, max-age=60")
	h.writeJSONResponse(w, http.StatusOK, response)
}

// getIssueHandler handles GET /issues/{id}
func (h *Handler) getIssueHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	issueID := chi.URLParam(r, "id")

	if issueID == "" {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "issue ID is required")
		return
	}

	issue, err := h.store.GetIssue(ctx, issueID)
	if err != nil {
		logger.WithContext(ctx).Error("Failed to get issue", "error", err, "issue_id", issueID)
		h.writeErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	if issue == nil {
		h.writeErrorResponse(w, r, http.StatusNotFound, "Issue not found")
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=300")
	h.writeJSONResponse(w, http.StatusOK, issue)
}

// resolveIssueHandler handles POST /issues/{id}/resolve
func (h *Handler) resolveIssueHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	issueID := chi.URLParam(r, "id")

	if issueID == "" {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "issue ID is required")
		return
	}

	issue, err := h.store.GetIssue(ctx, issueID)
	if err != nil {
		logger.WithContext(ctx).Error("Failed to get issue", "error", err, "issue_id", issueID)
		h.writeErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}
	if issue == nil {
		h.writeErrorResponse(w, r, http.StatusNotFound, "Issue not found")
		return
	}

	if err := h.store.ResolveIssue(ctx, issueID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			h.writeErrorResponse(w, r, http.StatusNotFound, "Issue not found")
			return
		}
		logger.WithContext(ctx).Error("Failed to resolve issue", "error", err, "issue_id", issueID)
		h.writeErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	// Resolution changes area risk and city-wide summaries.
	if err := h.cache.InvalidateArea(ctx, issue.AreaName); err != nil {
		logger.WithContext(ctx).Error("Failed to invalidate cache", "error", err, "area", issue.AreaName)
	}

	response := map[string]interface{}{
		"id":        issueID,
		"status":    "resolved",
		"timestamp": time.Now().UTC(),
	}

	h.writeJSONResponse(w, http.StatusOK, response)
}

// getPredictionsHandler handles GET /predictions
func (h *Handler) getPredictionsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	q, err := h.parsePredictionQuery(r)
	if err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	predictions, err := h.store.QueryPredictions(ctx, q)
	if err != nil {
		logger.WithContext(ctx).Error("Failed to query predictions", "error", err)
		h.writeErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	response := map[string]interface{}{
		"data":      predictions,
		"count":     len(predictions),
		"timestamp": time.Now().UTC(),
	}

	w.Header().Set("Cache-Control", "public, max-age=60")
	h.writeJSONResponse(w, http.StatusOK, response)
}

// riskResponse wraps an assessment with the area it was computed for.
type riskResponse struct {
	Area string `json:"area"`
	fusion.Assessment
}

// getRiskHandler handles GET /risk?area=
func (h *Handler) getRiskHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	area := r.URL.Query().Get("area")
	if area == "" {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "area query parameter is required")
		return
	}

	var cached riskResponse
	if hit, err := h.cache.GetRisk(ctx, area, &cached); err == nil && hit {
		h.writeJSONResponse(w, http.StatusOK, cached)
		return
	}

	signals, err := h.gatherSignals(ctx, area)
	if err != nil {
		logger.WithContext(ctx).Error("Failed to gather signals", "error", err, "area", area)
		h.writeErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	start := time.Now()
	assessment := h.engine.CalculateRisk(signals)
	metrics.RecordRiskComputation(area, time.Since(start))

	response := riskResponse{Area: area, Assessment: assessment}
	if err := h.cache.SetRisk(ctx, area, response); err != nil {
		logger.WithContext(ctx).Error("Failed to cache risk", "error", err, "area", area)
	}

	h.writeJSONResponse(w, http.StatusOK, response)
}

// gatherSignals derives fusion inputs from the issue store. The nlp signal
// is the worst unresolved severity in the last day, history is week-long
// report volume. Everything else is left for the engine to impute.
func (h *Handler) gatherSignals(ctx context.Context, area string) (fusion.SignalSet, error) {
	now := time.Now().UTC()
	unresolved := false

	recent, err := h.store.QueryIssues(ctx, models.IssueQuery{
		Areas:    []string{area},
		Resolved: &unresolved,
		Since:    now.Add(-24 * time.Hour),
	})
	if err != nil {
		return nil, err
	}

	weekly, err := h.store.QueryIssues(ctx, models.IssueQuery{
		Areas: []string{area},
		Since: now.Add(-7 * 24 * time.Hour),
	})
	if err != nil {
		return nil, err
	}

	var nlp float64
	for _, issue := range recent {
		if issue.Severity > nlp {
			nlp = issue.Severity
		}
	}

	// Twenty issues in a week saturates the history signal.
	history := utils.Clamp01(float64(len(weekly)) / 20)

	return fusion.SignalSet{
		fusion.SignalNLP:     nlp,
		fusion.SignalHistory: history,
	}, nil
}

// getRiskDemoHandler handles GET /risk/demo. It runs the engine on a
// fixed high-signal scenario so the fusion math can be inspected without
// seeding data.
func (h *Handler) getRiskDemoHandler(w http.ResponseWriter, r *http.Request) {
	assessment := h.engine.DemoScenario()
	h.writeJSONResponse(w, http.StatusOK, riskResponse{Area: "demo", Assessment: assessment})
}

// getSummaryHandler handles GET /summary
func (h *Handler) getSummaryHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	window := defaultSummaryWindow
	if windowStr := r.URL.Query().Get("window"); windowStr != "" {
		parsed, err := strconv.Atoi(windowStr)
		if err != nil || parsed < 1 || parsed > maxSummaryWindow {
			h.writeErrorResponse(w, r, http.StatusBadRequest,
				fmt.Sprintf("window must be between 1 and %d hours", maxSummaryWindow))
			return
		}
		window = parsed
	}

	cacheKey := strconv.Itoa(window) + "h"
	var cached intelligence.ExecutiveSummary
	if hit, err := h.cache.GetSummary(ctx, cacheKey, &cached); err == nil && hit {
		h.writeJSONResponse(w, http.StatusOK, cached)
		return
	}

	now := time.Now().UTC()

	// Active issues older than the window still count, so the issue query
	// looks back further than the summary window itself.
	issues, err := h.store.QueryIssues(ctx, models.IssueQuery{
		Since: now.Add(-30 * 24 * time.Hour),
	})
	if err != nil {
		logger.WithContext(ctx).Error("Failed to query issues", "error", err)
		h.writeErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	predictions, err := h.store.QueryPredictions(ctx, models.PredictionQuery{
		Since: now.Add(-24 * time.Hour),
	})
	if err != nil {
		logger.WithContext(ctx).Error("Failed to query predictions", "error", err)
		h.writeErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	start := time.Now()
	summary := h.summarizer.GenerateExecutiveSummary(
		intelligence.FromIssues(issues),
		intelligence.FromPredictions(predictions),
		window,
	)
	metrics.RecordSummaryGenerated(time.Since(start))

	if err := h.cache.SetSummary(ctx, cacheKey, summary); err != nil {
		logger.WithContext(ctx).Error("Failed to cache summary", "error", err)
	}

	h.writeJSONResponse(w, http.StatusOK, summary)
}

// getAreasHandler handles GET /areas
func (h *Handler) getAreasHandler(w http.ResponseWriter, r *http.Request) {
	all := areas.All()

	response := map[string]interface{}{
		"data":      all,
		"count":     len(all),
		"timestamp": time.Now().UTC(),
	}

	w.Header().Set("Cache-Control", "public, max-age=3600")
	h.writeJSONResponse(w, http.StatusOK, response)
}

// getAreaBriefingHandler handles GET /areas/{name}/briefing
func (h *Handler) getAreaBriefingHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	area := chi.URLParam(r, "name")

	if area == "" {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "area name is required")
		return
	}

	var cached intelligence.AreaBriefing
	if hit, err := h.cache.GetBriefing(ctx, area, &cached); err == nil && hit {
		h.writeJSONResponse(w, http.StatusOK, cached)
		return
	}

	issues, err := h.store.QueryIssues(ctx, models.IssueQuery{
		Areas: []string{area},
		Since: time.Now().UTC().Add(-7 * 24 * time.Hour),
	})
	if err != nil {
		logger.WithContext(ctx).Error("Failed to query issues", "error", err, "area", area)
		h.writeErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	briefing := h.summarizer.GenerateAreaBriefing(area, intelligence.FromIssues(issues))

	if err := h.cache.SetBriefing(ctx, area, briefing); err != nil {
		logger.WithContext(ctx).Error("Failed to cache briefing", "error", err, "area", area)
	}

	h.writeJSONResponse(w, http.StatusOK, briefing)
}

// parseIssueQuery parses query parameters into IssueQuery
func (h *Handler) parseIssueQuery(r *http.Request) (models.IssueQuery, error) {
	q := models.IssueQuery{}

	// Parse limit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return q, fmt.Errorf("invalid limit: %s", limitStr)
		}
		if limit < 0 || limit > 1000 {
			return q, fmt.Errorf("limit must be between 0 and 1000")
		}
		q.Limit = limit
	}

	// Parse offset
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil {
			return q, fmt.Errorf("invalid offset: %s", offsetStr)
		}
		if offset < 0 {
			return q, fmt.Errorf("offset must be non-negative")
		}
		q.Offset = offset
	}

	// Parse time filters
	if sinceStr := r.URL.Query().Get("since"); sinceStr != "" {
		since, err := time.Parse(time.RFC3339, sinceStr)
		if err != nil {
			return q, fmt.Errorf("invalid since format: %s", sinceStr)
		}
		q.Since = since
	}

	if untilStr := r.URL.Query().Get("until"); untilStr != "" {
		until, err := time.Parse(time.RFC3339, untilStr)
		if err != nil {
			return q, fmt.Errorf("invalid until format: %s", untilStr)
		}
		q.Until = until
	}

	// Parse resolved filter
	if resolvedStr := r.URL.Query().Get("resolved"); resolvedStr != "" {
		resolved, err := strconv.ParseBool(resolvedStr)
		if err != nil {
			return q, fmt.Errorf("invalid resolved value: %s", resolvedStr)
		}
		q.Resolved = &resolved
	}

	// Parse severity floor
	if sevStr := r.URL.Query().Get("min_severity"); sevStr != "" {
		sev, err := strconv.ParseFloat(sevStr, 64)
		if err != nil || sev < 0 || sev > 1 {
			return q, fmt.Errorf("invalid min_severity: %s", sevStr)
		}
		q.MinSeverity = sev
	}

	// Parse array filters
	q.Types = r.URL.Query()["type"]
	q.Areas = r.URL.Query()["area"]
	q.Sources = r.URL.Query()["source"]
	q.Statuses = r.URL.Query()["status"]

	return q, nil
}

// parsePredictionQuery parses query parameters into PredictionQuery
func (h *Handler) parsePredictionQuery(r *http.Request) (models.PredictionQuery, error) {
	q := models.PredictionQuery{}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 0 || limit > 1000 {
			return q, fmt.Errorf("limit must be between 0 and 1000")
		}
		q.Limit = limit
	}

	if probStr := r.URL.Query().Get("min_probability"); probStr != "" {
		prob, err := strconv.ParseFloat(probStr, 64)
		if err != nil || prob < 0 || prob > 1 {
			return q, fmt.Errorf("invalid min_probability: %s", probStr)
		}
		q.MinProbability = prob
	}

	if sinceStr := r.URL.Query().Get("since"); sinceStr != "" {
		since, err := time.Parse(time.RFC3339, sinceStr)
		if err != nil {
			return q, fmt.Errorf("invalid since format: %s", sinceStr)
		}
		q.Since = since
	}

	q.Areas = r.URL.Query()["area"]
	q.EventTypes = r.URL.Query()["event_type"]

	return q, nil
}

// writeJSONResponse writes a JSON response
func (h *Handler) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// writeErrorResponse writes a standardized error response
func (h *Handler) writeErrorResponse(w http.ResponseWriter, r *http.Request, statusCode int, message string) {
	response := ErrorResponse{
		Error:     http.StatusText(statusCode),
		Message:   message,
		Timestamp: time.Now().UTC(),
		RequestID: r.Header.Get("X-Request-ID"),
	}

	h.writeJSONResponse(w, statusCode, response)
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}
