package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Ankursingh018as/public-pulse-ai/config"
	"github.com/Ankursingh018as/public-pulse-ai/internal/cache"
	"github.com/Ankursingh018as/public-pulse-ai/internal/classifier"
	"github.com/Ankursingh018as/public-pulse-ai/internal/fusion"
	"github.com/Ankursingh018as/public-pulse-ai/internal/intelligence"
	"github.com/Ankursingh018as/public-pulse-ai/internal/models"
	"github.com/Ankursingh018as/public-pulse-ai/internal/pipeline"
	"github.com/Ankursingh018as/public-pulse-ai/internal/preprocess"
	"github.com/Ankursingh018as/public-pulse-ai/internal/sentiment"
	"github.com/Ankursingh018as/public-pulse-ai/internal/store"
	"github.com/Ankursingh018as/public-pulse-ai/pkg/utils"
)

// MockStore wraps the in-memory store with an injectable health error.
type MockStore struct {
	store.Store
	health error
}

func NewMockStore() *MockStore {
	return &MockStore{Store: store.NewInMemoryStore()}
}

func (m *MockStore) Health(ctx context.Context) error {
	return m.health
}

func (m *MockStore) SetHealthError(err error) {
	m.health = err
}

func newTestRouter(t *testing.T, st store.Store) (*chi.Mux, *pipeline.QueueSource) {
	t.Helper()

	c, err := cache.New(config.RedisConfig{})
	if err != nil {
		t.Fatalf("Failed to create cache: %v", err)
	}

	queue := pipeline.NewQueueSource("api", 16)
	handler := NewHandler(
		st,
		c,
		queue,
		classifier.New(""),
		sentiment.New(),
		fusion.New(),
		intelligence.New(),
		"test-version", "test-build-time", "test-commit",
	)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, queue
}

func seedIssues(t *testing.T, st store.Store, issues []models.Issue) {
	t.Helper()
	if err := st.UpsertIssues(context.Background(), issues); err != nil {
		t.Fatalf("Failed to seed issues: %v", err)
	}
}

func TestHandler_HealthEndpoints(t *testing.T) {
	r, _ := newTestRouter(t, NewMockStore())

	tests := []struct {
		name           string
		endpoint       string
		expectedStatus int
		checkBody      bool
	}{
		{
			name:           "Basic health check",
			endpoint:       "/health",
			expectedStatus: http.StatusOK,
			checkBody:      true,
		},
		{
			name:           "V1 health check",
			endpoint:       "/v1/health",
			expectedStatus: http.StatusOK,
			checkBody:      true,
		},
		{
			name:           "Readiness check - healthy",
			endpoint:       "/v1/health/ready",
			expectedStatus: http.StatusOK,
			checkBody:      true,
		},
		{
			name:           "Liveness check",
			endpoint:       "/v1/health/live",
			expectedStatus: http.StatusOK,
			checkBody:      true,
		},
		{
			name:           "Version endpoint",
			endpoint:       "/v1/version",
			expectedStatus: http.StatusOK,
			checkBody:      false, // Version endpoint doesn't have timestamp
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.endpoint, nil)
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.checkBody {
				contentType := w.Header().Get("Content-Type")
				if contentType != "application/json" {
					t.Errorf("Expected Content-Type application/json, got %s", contentType)
				}

				var response map[string]interface{}
				err := json.NewDecoder(w.Body).Decode(&response)
				if err != nil {
					t.Errorf("Failed to decode JSON response: %v", err)
				}

				if _, exists := response["timestamp"]; !exists {
					t.Error("Expected timestamp in response")
				}
			}
		})
	}
}

func TestHandler_ReadinessCheck_Unhealthy(t *testing.T) {
	st := NewMockStore()
	st.SetHealthError(errors.New("database connection failed"))
	r, _ := newTestRouter(t, st)

	req := httptest.NewRequest("GET", "/v1/health/ready", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status %d, got %d", http.StatusServiceUnavailable, w.Code)
	}
}

func TestHandler_SubmitReport(t *testing.T) {
	r, queue := newTestRouter(t, NewMockStore())

	body := `{"text": "Water pipeline burst near Gotri, urgent!!!", "source": "citizen"}`
	req := httptest.NewRequest("POST", "/v1/reports", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if w.Code != http.StatusAccepted {
		t.Fatalf("Expected status 202, got %d: %s", w.Code, w.Body.String())
	}

	var response reportResponse
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if response.Category != "water" {
		t.Errorf("Category = %q, want water", response.Category)
	}
	if response.Area != "Gotri" {
		t.Errorf("Area = %q, want Gotri", response.Area)
	}

	wantID := utils.HashString("citizen|" + preprocess.CleanText("Water pipeline burst near Gotri, urgent!!!"))
	if response.ID != wantID {
		t.Errorf("ID = %q, want %q", response.ID, wantID)
	}

	if response.Sentiment.Urgency == "" {
		t.Error("Expected sentiment urgency in response")
	}

	// The report should be queued for the pipeline.
	if queue.Depth() != 1 {
		t.Errorf("Queue depth = %d, want 1", queue.Depth())
	}
}

func TestHandler_SubmitReport_DefaultSource(t *testing.T) {
	r, _ := newTestRouter(t, NewMockStore())

	body := `{"text": "Huge traffic jam in Akota"}`
	req := httptest.NewRequest("POST", "/v1/reports", bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if w.Code != http.StatusAccepted {
		t.Fatalf("Expected status 202, got %d", w.Code)
	}

	var response reportResponse
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	wantID := utils.HashString("citizen|" + preprocess.CleanText("Huge traffic jam in Akota"))
	if response.ID != wantID {
		t.Errorf("ID = %q, want %q (source should default to citizen)", response.ID, wantID)
	}
}

func TestHandler_SubmitReport_Invalid(t *testing.T) {
	r, queue := newTestRouter(t, NewMockStore())

	tests := []struct {
		name string
		body string
	}{
		{name: "Malformed JSON", body: `{"text": `},
		{name: "Empty text", body: `{"text": "", "source": "citizen"}`},
		{name: "Whitespace only", body: `{"text": "   ", "source": "citizen"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/v1/reports", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d", w.Code)
			}
		})
	}

	if queue.Depth() != 0 {
		t.Errorf("Queue depth = %d, want 0 after rejected reports", queue.Depth())
	}
}

func TestHandler_SubmitReport_QueueFull(t *testing.T) {
	st := NewMockStore()

	c, err := cache.New(config.RedisConfig{})
	if err != nil {
		t.Fatalf("Failed to create cache: %v", err)
	}

	queue := pipeline.NewQueueSource("api", 1)
	handler := NewHandler(st, c, queue, classifier.New(""), sentiment.New(),
		fusion.New(), intelligence.New(), "v", "b", "c")

	r := chi.NewRouter()
	handler.RegisterRoutes(r)

	submit := func() int {
		body := `{"text": "Garbage overflow near Alkapuri"}`
		req := httptest.NewRequest("POST", "/v1/reports", bytes.NewBufferString(body))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	if code := submit(); code != http.StatusAccepted {
		t.Fatalf("Expected first submission to be accepted, got %d", code)
	}
	if code := submit(); code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 when queue is full, got %d", code)
	}
}

func TestHandler_GetIssues(t *testing.T) {
	st := NewMockStore()

	now := time.Now().UTC()
	seedIssues(t, st, []models.Issue{
		{
			ID:        "issue-1",
			Type:      "water",
			AreaName:  "Gotri",
			Source:    "citizen",
			RawText:   "water leak near gotri",
			Severity:  0.8,
			Status:    "pending",
			CreatedAt: now.Add(-1 * time.Hour),
		},
		{
			ID:        "issue-2",
			Type:      "traffic",
			AreaName:  "Akota",
			Source:    "sensor",
			RawText:   "traffic jam in akota",
			Severity:  0.4,
			Status:    "verified",
			CreatedAt: now.Add(-2 * time.Hour),
		},
	})

	r, _ := newTestRouter(t, st)

	tests := []struct {
		name           string
		queryParams    string
		expectedStatus int
		expectedCount  int
	}{
		{
			name:           "Get all issues",
			queryParams:    "",
			expectedStatus: http.StatusOK,
			expectedCount:  2,
		},
		{
			name:           "Filter by type",
			queryParams:    "?type=water",
			expectedStatus: http.StatusOK,
			expectedCount:  1,
		},
		{
			name:           "Filter by area",
			queryParams:    "?area=Akota",
			expectedStatus: http.StatusOK,
			expectedCount:  1,
		},
		{
			name:           "Filter by severity floor",
			queryParams:    "?min_severity=0.5",
			expectedStatus: http.StatusOK,
			expectedCount:  1,
		},
		{
			name:           "Limit results",
			queryParams:    "?limit=1",
			expectedStatus: http.StatusOK,
			expectedCount:  1,
		},
		{
			name:           "Invalid limit",
			queryParams:    "?limit=invalid",
			expectedStatus: http.StatusBadRequest,
			expectedCount:  0,
		},
		{
			name:           "Limit too high",
			queryParams:    "?limit=2000",
			expectedStatus: http.StatusBadRequest,
			expectedCount:  0,
		},
		{
			name:           "Invalid resolved value",
			queryParams:    "?resolved=maybe",
			expectedStatus: http.StatusBadRequest,
			expectedCount:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/v1/issues"+tt.queryParams, nil)
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.expectedStatus == http.StatusOK {
				var response map[string]interface{}
				err := json.NewDecoder(w.Body).Decode(&response)
				if err != nil {
					t.Errorf("Failed to decode JSON response: %v", err)
				}

				data, ok := response["data"].([]interface{})
				if !ok {
					t.Fatal("Expected data to be an array")
				}

				if len(data) != tt.expectedCount {
					t.Errorf("Expected %d issues, got %d", tt.expectedCount, len(data))
				}

				// Check cache header
				cacheControl := w.Header().Get("Cache-Control")
				if cacheControl != "public, max-age=60" {
					t.Errorf("Expected Cache-Control header, got %s", cacheControl)
				}
			}
		})
	}
}

func TestHandler_GetIssue(t *testing.T) {
	st := NewMockStore()
	seedIssues(t, st, []models.Issue{
		{
			ID:        "test-issue-1",
			Type:      "water",
			AreaName:  "Gotri",
			RawText:   "water leak",
			CreatedAt: time.Now().UTC(),
		},
	})

	r, _ := newTestRouter(t, st)

	tests := []struct {
		name           string
		issueID        string
		expectedStatus int
	}{
		{
			name:           "Get existing issue",
			issueID:        "test-issue-1",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Get non-existent issue",
			issueID:        "non-existent",
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/v1/issues/"+tt.issueID, nil)
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}

func TestHandler_ResolveIssue(t *testing.T) {
	st := NewMockStore()
	seedIssues(t, st, []models.Issue{
		{
			ID:        "issue-1",
			Type:      "garbage",
			AreaName:  "Akota",
			RawText:   "garbage pile",
			CreatedAt: time.Now().UTC(),
		},
	})

	r, _ := newTestRouter(t, st)

	req := httptest.NewRequest("POST", "/v1/issues/issue-1/resolve", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	issue, err := st.GetIssue(context.Background(), "issue-1")
	if err != nil {
		t.Fatalf("Failed to get issue: %v", err)
	}
	if issue == nil || !issue.Resolved {
		t.Error("Expected issue to be marked resolved")
	}

	// Resolving a missing issue returns not found.
	req = httptest.NewRequest("POST", "/v1/issues/ghost/resolve", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestHandler_GetPredictions(t *testing.T) {
	st := NewMockStore()

	now := time.Now().UTC()
	predictions := []models.Prediction{
		{
			ID:          "pred-1",
			EventType:   "water",
			AreaName:    "Gotri",
			Probability: 0.8,
			CreatedAt:   now,
		},
		{
			ID:          "pred-2",
			EventType:   "traffic",
			AreaName:    "Akota",
			Probability: 0.3,
			CreatedAt:   now,
		},
	}
	if err := st.UpsertPredictions(context.Background(), predictions); err != nil {
		t.Fatalf("Failed to seed predictions: %v", err)
	}

	r, _ := newTestRouter(t, st)

	tests := []struct {
		name           string
		queryParams    string
		expectedStatus int
		expectedCount  int
	}{
		{
			name:           "Get all predictions",
			queryParams:    "",
			expectedStatus: http.StatusOK,
			expectedCount:  2,
		},
		{
			name:           "Filter by probability floor",
			queryParams:    "?min_probability=0.5",
			expectedStatus: http.StatusOK,
			expectedCount:  1,
		},
		{
			name:           "Filter by area",
			queryParams:    "?area=Akota",
			expectedStatus: http.StatusOK,
			expectedCount:  1,
		},
		{
			name:           "Invalid probability",
			queryParams:    "?min_probability=2",
			expectedStatus: http.StatusBadRequest,
			expectedCount:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/v1/predictions"+tt.queryParams, nil)
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.expectedStatus == http.StatusOK {
				var response map[string]interface{}
				if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
					t.Fatalf("Failed to decode JSON response: %v", err)
				}
				data, ok := response["data"].([]interface{})
				if !ok {
					t.Fatal("Expected data to be an array")
				}
				if len(data) != tt.expectedCount {
					t.Errorf("Expected %d predictions, got %d", tt.expectedCount, len(data))
				}
			}
		})
	}
}

func TestHandler_GetRisk(t *testing.T) {
	st := NewMockStore()

	now := time.Now().UTC()
	seedIssues(t, st, []models.Issue{
		{
			ID:        "issue-1",
			Type:      "water",
			AreaName:  "Gotri",
			RawText:   "water leak",
			Severity:  0.9,
			CreatedAt: now.Add(-1 * time.Hour),
		},
		{
			ID:        "issue-2",
			Type:      "water",
			AreaName:  "Gotri",
			RawText:   "low pressure",
			Severity:  0.5,
			CreatedAt: now.Add(-2 * time.Hour),
		},
	})

	r, _ := newTestRouter(t, st)

	req := httptest.NewRequest("GET", "/v1/risk?area=Gotri", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var response riskResponse
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if response.Area != "Gotri" {
		t.Errorf("Area = %q, want Gotri", response.Area)
	}
	if response.FinalRisk <= 0 {
		t.Errorf("FinalRisk = %v, want > 0", response.FinalRisk)
	}
	if response.Level == "" {
		t.Error("Expected a risk level")
	}
	if len(response.Breakdown) != 7 {
		t.Errorf("Breakdown has %d signals, want 7", len(response.Breakdown))
	}
	// The nlp signal is the worst unresolved severity in the area.
	if got := response.Breakdown["nlp"]; got != 0.9 {
		t.Errorf("Breakdown[nlp] = %v, want 0.9", got)
	}
}

func TestHandler_GetRisk_MissingArea(t *testing.T) {
	r, _ := newTestRouter(t, NewMockStore())

	req := httptest.NewRequest("GET", "/v1/risk", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestHandler_GetRiskDemo(t *testing.T) {
	r, _ := newTestRouter(t, NewMockStore())

	req := httptest.NewRequest("GET", "/v1/risk/demo", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var response riskResponse
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if response.Level != "CRITICAL" {
		t.Errorf("Level = %q, want CRITICAL", response.Level)
	}
	if response.CorrelationBoost != 0.08 {
		t.Errorf("CorrelationBoost = %v, want 0.08", response.CorrelationBoost)
	}
	if response.FinalRisk != 0.97 {
		t.Errorf("FinalRisk = %v, want 0.97", response.FinalRisk)
	}
}

func TestHandler_GetSummary(t *testing.T) {
	st := NewMockStore()

	now := time.Now().UTC()
	seedIssues(t, st, []models.Issue{
		{
			ID:        "issue-1",
			Type:      "water",
			AreaName:  "Gotri",
			RawText:   "water leak",
			Severity:  0.8,
			Status:    "pending",
			CreatedAt: now.Add(-1 * time.Hour),
		},
		{
			ID:        "issue-2",
			Type:      "traffic",
			AreaName:  "Akota",
			RawText:   "traffic jam",
			Severity:  0.4,
			Status:    "verified",
			CreatedAt: now.Add(-2 * time.Hour),
		},
	})

	r, _ := newTestRouter(t, st)

	req := httptest.NewRequest("GET", "/v1/summary", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var summary intelligence.ExecutiveSummary
	if err := json.NewDecoder(w.Body).Decode(&summary); err != nil {
		t.Fatalf("Failed to decode summary: %v", err)
	}

	if summary.PeriodHours != 24 {
		t.Errorf("PeriodHours = %d, want 24", summary.PeriodHours)
	}
	if summary.Metrics.TotalActive != 2 {
		t.Errorf("TotalActive = %d, want 2", summary.Metrics.TotalActive)
	}
	if summary.HealthScore < 0 || summary.HealthScore > 100 {
		t.Errorf("HealthScore = %d, want 0..100", summary.HealthScore)
	}
	if summary.Narrative == "" {
		t.Error("Expected a narrative")
	}
}

func TestHandler_GetSummary_InvalidWindow(t *testing.T) {
	r, _ := newTestRouter(t, NewMockStore())

	for _, params := range []string{"?window=0", "?window=200", "?window=abc"} {
		req := httptest.NewRequest("GET", "/v1/summary"+params, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("window %s: expected status 400, got %d", params, w.Code)
		}
	}
}

func TestHandler_GetAreas(t *testing.T) {
	r, _ := newTestRouter(t, NewMockStore())

	req := httptest.NewRequest("GET", "/v1/areas", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var response map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	data, ok := response["data"].([]interface{})
	if !ok {
		t.Fatal("Expected data to be an array")
	}
	if len(data) != 17 {
		t.Errorf("Expected 17 areas, got %d", len(data))
	}
}

func TestHandler_GetAreaBriefing(t *testing.T) {
	st := NewMockStore()

	now := time.Now().UTC()
	seedIssues(t, st, []models.Issue{
		{ID: "g-1", Type: "water", AreaName: "Gotri", RawText: "leak", Severity: 0.5, CreatedAt: now.Add(-1 * time.Hour)},
		{ID: "g-2", Type: "water", AreaName: "Gotri", RawText: "leak", Severity: 0.5, CreatedAt: now.Add(-2 * time.Hour)},
		{ID: "g-3", Type: "traffic", AreaName: "Gotri", RawText: "jam", Severity: 0.4, CreatedAt: now.Add(-3 * time.Hour)},
	})

	r, _ := newTestRouter(t, st)

	req := httptest.NewRequest("GET", "/v1/areas/Gotri/briefing", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var briefing intelligence.AreaBriefing
	if err := json.NewDecoder(w.Body).Decode(&briefing); err != nil {
		t.Fatalf("Failed to decode briefing: %v", err)
	}

	if briefing.Area != "Gotri" {
		t.Errorf("Area = %q, want Gotri", briefing.Area)
	}
	if briefing.Zone != "West" {
		t.Errorf("Zone = %q, want West", briefing.Zone)
	}
	if briefing.ActiveIncidents != 3 {
		t.Errorf("ActiveIncidents = %d, want 3", briefing.ActiveIncidents)
	}
	if briefing.RiskLevel != "high" {
		t.Errorf("RiskLevel = %q, want high", briefing.RiskLevel)
	}
	if briefing.PrimaryIssue != "water" {
		t.Errorf("PrimaryIssue = %q, want water", briefing.PrimaryIssue)
	}
}
