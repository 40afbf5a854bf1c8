package metrics

import (
	"net/http"
	"time"
)

// Metrics interface for dependency injection
type Metrics interface {
	RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration)
	RecordReportProcessed(source, status string)
	RecordRiskComputation(area string, duration time.Duration)
	RecordSummaryGenerated(duration time.Duration)
	SetDBConnectionsActive(count float64)
	RecordDBQuery(operation, status string)
	Handler() http.Handler
}

// NoOpMetrics provides a no-op implementation
type NoOpMetrics struct{}

func (m *NoOpMetrics) RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
}
func (m *NoOpMetrics) RecordReportProcessed(source, status string)              {}
func (m *NoOpMetrics) RecordRiskComputation(area string, duration time.Duration) {}
func (m *NoOpMetrics) RecordSummaryGenerated(duration time.Duration)             {}
func (m *NoOpMetrics) SetDBConnectionsActive(count float64)                      {}
func (m *NoOpMetrics) RecordDBQuery(operation, status string)                    {}
func (m *NoOpMetrics) Handler() http.Handler                                     { return http.NotFoundHandler() }

// Global metrics instance
var globalMetrics Metrics = &NoOpMetrics{}

// Init initializes metrics (no-op for now, can be extended with Prometheus)
func Init() {
	// Keep using no-op metrics until a real backend is wired in
}

// Handler returns the metrics handler
func Handler() http.Handler {
	return globalMetrics.Handler()
}

// RecordHTTPRequest records HTTP request metrics
func RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	globalMetrics.RecordHTTPRequest(method, endpoint, statusCode, duration)
}

// RecordReportProcessed records citizen report processing metrics
func RecordReportProcessed(source, status string) {
	globalMetrics.RecordReportProcessed(source, status)
}

// RecordRiskComputation records per-area risk fusion metrics
func RecordRiskComputation(area string, duration time.Duration) {
	globalMetrics.RecordRiskComputation(area, duration)
}

// RecordSummaryGenerated records executive summary generation metrics
func RecordSummaryGenerated(duration time.Duration) {
	globalMetrics.RecordSummaryGenerated(duration)
}

// SetDBConnectionsActive sets the number of active database connections
func SetDBConnectionsActive(count float64) {
	globalMetrics.SetDBConnectionsActive(count)
}

// RecordDBQuery records database query metrics
func RecordDBQuery(operation, status string) {
	globalMetrics.RecordDBQuery(operation, status)
}
