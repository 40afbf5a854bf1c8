package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNoOpMetrics(t *testing.T) {
	m := &NoOpMetrics{}

	// None of these should panic
	m.RecordHTTPRequest("GET", "/v1/summary", 200, time.Millisecond)
	m.RecordReportProcessed("citizen", "success")
	m.RecordRiskComputation("Gotri", time.Millisecond)
	m.RecordSummaryGenerated(time.Millisecond)
	m.SetDBConnectionsActive(3)
	m.RecordDBQuery("query", "success")

	h := m.Handler()
	if h == nil {
		t.Fatal("Expected non-nil handler")
	}

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 from no-op handler, got %d", rec.Code)
	}
}

func TestGlobalHelpers(t *testing.T) {
	Init()

	// Package-level helpers delegate to the global instance
	RecordHTTPRequest("POST", "/v1/reports", 200, time.Millisecond)
	RecordReportProcessed("wa", "success")
	RecordRiskComputation("Alkapuri", time.Millisecond)
	RecordSummaryGenerated(2 * time.Millisecond)
	SetDBConnectionsActive(1)
	RecordDBQuery("exec", "error")

	if Handler() == nil {
		t.Fatal("Expected non-nil global handler")
	}
}
