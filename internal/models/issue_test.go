package models

import (
	"testing"
	"time"
)

func boolPtr(b bool) *bool { return &b }

func TestIssueQuery_Matches(t *testing.T) {
	issue := Issue{
		ID:        "issue-1",
		Type:      "water",
		AreaName:  "Gotri",
		Source:    "citizen",
		Status:    "pending",
		Severity:  0.75,
		Resolved:  false,
		CreatedAt: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		name     string
		query    IssueQuery
		expected bool
	}{
		{
			name:     "Empty query matches everything",
			query:    IssueQuery{},
			expected: true,
		},
		{
			name:     "Match by type",
			query:    IssueQuery{Types: []string{"water", "traffic"}},
			expected: true,
		},
		{
			name:     "Mismatch by type",
			query:    IssueQuery{Types: []string{"garbage"}},
			expected: false,
		},
		{
			name:     "Match by area",
			query:    IssueQuery{Areas: []string{"Gotri"}},
			expected: true,
		},
		{
			name:     "Match unresolved",
			query:    IssueQuery{Resolved: boolPtr(false)},
			expected: true,
		},
		{
			name:     "Mismatch resolved",
			query:    IssueQuery{Resolved: boolPtr(true)},
			expected: false,
		},
		{
			name:     "Match min severity",
			query:    IssueQuery{MinSeverity: 0.7},
			expected: true,
		},
		{
			name:     "Mismatch min severity",
			query:    IssueQuery{MinSeverity: 0.8},
			expected: false,
		},
		{
			name:     "Match time range",
			query:    IssueQuery{Since: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), Until: time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)},
			expected: true,
		},
		{
			name:     "Before since",
			query:    IssueQuery{Since: time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)},
			expected: false,
		},
		{
			name:     "Combined filters",
			query:    IssueQuery{Types: []string{"water"}, Areas: []string{"Gotri"}, Statuses: []string{"pending"}},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.query.Matches(issue); got != tt.expected {
				t.Errorf("Matches() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestPredictionQuery_Matches(t *testing.T) {
	pred := Prediction{
		ID:          "pred-1",
		EventType:   "traffic",
		AreaName:    "Gotri",
		Probability: 0.83,
		CreatedAt:   time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		name     string
		query    PredictionQuery
		expected bool
	}{
		{
			name:     "Empty query matches",
			query:    PredictionQuery{},
			expected: true,
		},
		{
			name:     "Match by area and type",
			query:    PredictionQuery{Areas: []string{"Gotri"}, EventTypes: []string{"traffic"}},
			expected: true,
		},
		{
			name:     "Min probability pass",
			query:    PredictionQuery{MinProbability: 0.8},
			expected: true,
		},
		{
			name:     "Min probability fail",
			query:    PredictionQuery{MinProbability: 0.9},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.query.Matches(pred); got != tt.expected {
				t.Errorf("Matches() = %v, want %v", got, tt.expected)
			}
		})
	}
}
