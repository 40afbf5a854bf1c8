package models

import "time"

// Report is a raw citizen submission before any processing. It is never
// mutated after creation.
type Report struct {
	Text     string            `json:"text"`
	Source   string            `json:"source"` // e.g. "citizen", "sensor", "wa"
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Issue represents a classified civic issue derived from a citizen report
type Issue struct {
	ID         string            `json:"id" db:"id"`
	Type       string            `json:"type" db:"type"`
	AreaName   string            `json:"area_name" db:"area_name"`
	Source     string            `json:"source" db:"source"`
	RawText    string            `json:"raw_text" db:"raw_text"`
	Severity   float64           `json:"severity" db:"severity"`
	Confidence float64           `json:"confidence" db:"confidence"`
	Urgency    string            `json:"urgency" db:"urgency"`
	Language   string            `json:"language" db:"language"`
	Resolved   bool              `json:"resolved" db:"resolved"`
	Status     string            `json:"status" db:"status"` // pending, verified, dismissed
	Metadata   map[string]string `json:"metadata,omitempty" db:"metadata"`
	CreatedAt  time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at" db:"updated_at"`
}

// Prediction represents a stored per-area risk prediction produced by the
// fusion engine. Predictions are superseded, not updated.
type Prediction struct {
	ID          string             `json:"id" db:"id"`
	EventType   string             `json:"event_type" db:"event_type"`
	AreaName    string             `json:"area_name" db:"area_name"`
	Probability float64            `json:"probability" db:"probability"`
	ETAHours    float64            `json:"eta_hours" db:"eta_hours"`
	Confidence  float64            `json:"confidence" db:"confidence"`
	Reasons     []string           `json:"reasons" db:"reasons"`
	Breakdown   map[string]float64 `json:"breakdown" db:"breakdown"`
	CreatedAt   time.Time          `json:"created_at" db:"created_at"`
}

// IssueQuery represents query parameters for filtering issues
type IssueQuery struct {
	IDs         []string  `json:"ids"`
	Types       []string  `json:"types"`
	Areas       []string  `json:"areas"`
	Sources     []string  `json:"sources"`
	Statuses    []string  `json:"statuses"`
	Resolved    *bool     `json:"resolved"`
	MinSeverity float64   `json:"min_severity"`
	Since       time.Time `json:"since"`
	Until       time.Time `json:"until"`
	Limit       int       `json:"limit"`
	Offset      int       `json:"offset"`
}

// Matches checks if an issue matches the query criteria
func (q IssueQuery) Matches(issue Issue) bool {
	if len(q.IDs) > 0 && !contains(q.IDs, issue.ID) {
		return false
	}
	if len(q.Types) > 0 && !contains(q.Types, issue.Type) {
		return false
	}
	if len(q.Areas) > 0 && !contains(q.Areas, issue.AreaName) {
		return false
	}
	if len(q.Sources) > 0 && !contains(q.Sources, issue.Source) {
		return false
	}
	if len(q.Statuses) > 0 && !contains(q.Statuses, issue.Status) {
		return false
	}
	if q.Resolved != nil && issue.Resolved != *q.Resolved {
		return false
	}
	if q.MinSeverity > 0 && issue.Severity < q.MinSeverity {
		return false
	}
	if !q.Since.IsZero() && issue.CreatedAt.Before(q.Since) {
		return false
	}
	if !q.Until.IsZero() && issue.CreatedAt.After(q.Until) {
		return false
	}
	return true
}

// PredictionQuery represents query parameters for filtering predictions
type PredictionQuery struct {
	Areas          []string  `json:"areas"`
	EventTypes     []string  `json:"event_types"`
	MinProbability float64   `json:"min_probability"`
	Since          time.Time `json:"since"`
	Limit          int       `json:"limit"`
}

// Matches checks if a prediction matches the query criteria
func (q PredictionQuery) Matches(p Prediction) bool {
	if len(q.Areas) > 0 && !contains(q.Areas, p.AreaName) {
		return false
	}
	if len(q.EventTypes) > 0 && !contains(q.EventTypes, p.EventType) {
		return false
	}
	if q.MinProbability > 0 && p.Probability < q.MinProbability {
		return false
	}
	if !q.Since.IsZero() && p.CreatedAt.Before(q.Since) {
		return false
	}
	return true
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
