package intelligence

import (
	"time"

	"github.com/Ankursingh018as/public-pulse-ai/internal/models"
)

// IssueRecord is the snapshot view of one issue the summarizer consumes.
// CreatedAt is deliberately loose: upstream producers hand us native times,
// Unix epochs (seconds or milliseconds), or ISO-8601 strings, and a bad
// timestamp must degrade rather than error.
type IssueRecord struct {
	Type      string
	AreaName  string
	Severity  float64
	Resolved  bool
	Status    string
	CreatedAt any
}

// PredictionRecord is the snapshot view of one active prediction.
type PredictionRecord struct {
	EventType   string
	AreaName    string
	Probability float64
}

// FromIssues adapts stored issues into summarizer records.
func FromIssues(issues []models.Issue) []IssueRecord {
	records := make([]IssueRecord, 0, len(issues))
	for _, is := range issues {
		records = append(records, IssueRecord{
			Type:      is.Type,
			AreaName:  is.AreaName,
			Severity:  is.Severity,
			Resolved:  is.Resolved,
			Status:    is.Status,
			CreatedAt: is.CreatedAt,
		})
	}
	return records
}

// FromPredictions adapts stored predictions into summarizer records.
func FromPredictions(predictions []models.Prediction) []PredictionRecord {
	records := make([]PredictionRecord, 0, len(predictions))
	for _, p := range predictions {
		records = append(records, PredictionRecord{
			EventType:   p.EventType,
			AreaName:    p.AreaName,
			Probability: p.Probability,
		})
	}
	return records
}

// epochMillisThreshold disambiguates second vs millisecond Unix epochs.
const epochMillisThreshold = 1e12

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// parseTime coerces the loose CreatedAt field into a time. Unparseable
// values default to one hour ago so a single malformed record cannot sink
// a whole summary.
func (s *Summarizer) parseTime(ts any) time.Time {
	switch v := ts.(type) {
	case time.Time:
		return v
	case int:
		return epochTime(float64(v))
	case int64:
		return epochTime(float64(v))
	case float64:
		return epochTime(v)
	case string:
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return t
			}
		}
	}
	return s.now().Add(-time.Hour)
}

func epochTime(v float64) time.Time {
	if v > epochMillisThreshold {
		return time.UnixMilli(int64(v))
	}
	return time.Unix(int64(v), 0)
}
