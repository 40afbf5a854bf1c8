package intelligence

import (
	"sort"
	"time"

	"github.com/Ankursingh018as/public-pulse-ai/internal/areas"
	"github.com/Ankursingh018as/public-pulse-ai/pkg/utils"
)

// Severity at or above which an unresolved issue counts as critical.
const criticalSeverity = 0.7

// ExecutiveSummary is a point-in-time aggregate over the current issue and
// prediction collections. Recomputed fresh on each request, never persisted.
type ExecutiveSummary struct {
	Timestamp        string           `json:"timestamp"`
	PeriodHours      int              `json:"period_hours"`
	HealthScore      int              `json:"health_score"`
	HealthLabel      string           `json:"health_label"`
	Metrics          SummaryMetrics   `json:"metrics"`
	TypeDistribution map[string]int   `json:"type_distribution"`
	HotspotAreas     []Hotspot        `json:"hotspot_areas"`
	Trend            Trend            `json:"trend"`
	Narrative        string           `json:"narrative"`
	Recommendations  []Recommendation `json:"recommendations"`
	Anomalies        []Anomaly        `json:"anomalies"`
	AIConfidence     float64          `json:"ai_confidence"`
}

type SummaryMetrics struct {
	TotalActive       int `json:"total_active"`
	NewLastPeriod     int `json:"new_last_period"`
	Critical          int `json:"critical"`
	PendingReview     int `json:"pending_review"`
	PredictionsActive int `json:"predictions_active"`
}

type Hotspot struct {
	Area      string  `json:"area"`
	Incidents int     `json:"incidents"`
	Severity  float64 `json:"severity"`
}

type Trend struct {
	Direction       string `json:"direction"`
	ChangePercent   int    `json:"change_percent"`
	FirstHalfCount  int    `json:"first_half_count"`
	SecondHalfCount int    `json:"second_half_count"`
}

type Recommendation struct {
	Priority        string `json:"priority"`
	Area            string `json:"area"`
	Action          string `json:"action"`
	Reason          string `json:"reason"`
	EstimatedImpact string `json:"estimated_impact"`
}

type Anomaly struct {
	Type           string `json:"type"`
	Severity       string `json:"severity"`
	Description    string `json:"description"`
	AffectedType   string `json:"affected_type,omitempty"`
	AffectedArea   string `json:"affected_area,omitempty"`
	Recommendation string `json:"recommendation"`
}

// AreaBriefing is a focused briefing for one area.
type AreaBriefing struct {
	Area                   string         `json:"area"`
	Zone                   string         `json:"zone"`
	PopulationAffected     int            `json:"population_affected"`
	CriticalInfrastructure bool           `json:"critical_infrastructure"`
	ActiveIncidents        int            `json:"active_incidents"`
	PrimaryIssue           string         `json:"primary_issue"`
	RiskLevel              string         `json:"risk_level"`
	IssueBreakdown         map[string]int `json:"issue_breakdown"`
	Recommendation         string         `json:"recommendation"`
}

// Summarizer generates executive summaries and area briefings from issue
// and prediction snapshots. Stateless apart from the clock.
type Summarizer struct {
	now func() time.Time
}

// New creates a new summarizer
func New() *Summarizer {
	return &Summarizer{now: time.Now}
}

// GenerateExecutiveSummary aggregates the supplied snapshots into a city
// status report covering the last windowHours.
func (s *Summarizer) GenerateExecutiveSummary(issues []IssueRecord, predictions []PredictionRecord, windowHours int) ExecutiveSummary {
	now := s.now()
	cutoff := now.Add(-time.Duration(windowHours) * time.Hour)

	recent := 0
	totalActive := 0
	critical := 0
	pending := 0
	typeDist := map[string]int{}
	areaCounts := map[string]int{}
	for _, r := range issues {
		if s.parseTime(r.CreatedAt).After(cutoff) {
			recent++
		}
		if !r.Resolved {
			totalActive++
			typeDist[issueType(r)]++
			areaCounts[areaName(r)]++
			if r.Severity >= criticalSeverity {
				critical++
			}
		}
		if r.Status == "pending" {
			pending++
		}
	}

	hotspots := s.rankHotspots(issues, areaCounts)
	trend := s.calculateTrend(issues, windowHours, now)
	score := healthScore(totalActive, critical, trend, len(predictions))

	return ExecutiveSummary{
		Timestamp:        now.Format(time.RFC3339),
		PeriodHours:      windowHours,
		HealthScore:      score,
		HealthLabel:      healthLabel(score),
		Metrics: SummaryMetrics{
			TotalActive:       totalActive,
			NewLastPeriod:     recent,
			Critical:          critical,
			PendingReview:     pending,
			PredictionsActive: len(predictions),
		},
		TypeDistribution: typeDist,
		HotspotAreas:     hotspots,
		Trend:            trend,
		Narrative:        buildNarrative(totalActive, critical, pending, typeDist, hotspots, trend, predictions),
		Recommendations:  s.buildRecommendations(issues, predictions, typeDist, hotspots, now),
		Anomalies:        s.detectAnomalies(issues, windowHours, now),
		AIConfidence:     0.85,
	}
}

// GenerateAreaBriefing summarizes the state of a single area.
func (s *Summarizer) GenerateAreaBriefing(area string, issues []IssueRecord) AreaBriefing {
	active := make([]IssueRecord, 0)
	maxSeverity := 0.0
	breakdown := map[string]int{}
	for _, r := range issues {
		if r.AreaName != area || r.Resolved {
			continue
		}
		active = append(active, r)
		breakdown[issueType(r)]++
		if r.Severity > maxSeverity {
			maxSeverity = r.Severity
		}
	}

	risk := "low"
	switch {
	case len(active) >= 5 || maxSeverity >= 0.8:
		risk = "critical"
	case len(active) >= 3 || maxSeverity >= 0.6:
		risk = "high"
	case len(active) >= 1:
		risk = "moderate"
	}

	primary := "none"
	if len(breakdown) > 0 {
		primary, _ = dominantKey(breakdown)
	}

	info, _ := areas.Lookup(area)
	return AreaBriefing{
		Area:                   area,
		Zone:                   info.Zone,
		PopulationAffected:     info.Population,
		CriticalInfrastructure: info.CriticalInfra,
		ActiveIncidents:        len(active),
		PrimaryIssue:           primary,
		RiskLevel:              risk,
		IssueBreakdown:         breakdown,
		Recommendation:         areaRecommendation(area, risk),
	}
}

// rankHotspots returns the top five areas by unresolved count, each with
// the mean severity of its unresolved issues. Ties break by area name so
// the ranking is stable.
func (s *Summarizer) rankHotspots(issues []IssueRecord, areaCounts map[string]int) []Hotspot {
	names := make([]string, 0, len(areaCounts))
	for name := range areaCounts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if areaCounts[names[i]] != areaCounts[names[j]] {
			return areaCounts[names[i]] > areaCounts[names[j]]
		}
		return names[i] < names[j]
	})
	if len(names) > 5 {
		names = names[:5]
	}

	hotspots := make([]Hotspot, 0, len(names))
	for _, name := range names {
		var sum float64
		var n int
		for _, r := range issues {
			if !r.Resolved && areaName(r) == name {
				sum += r.Severity
				n++
			}
		}
		sev := 0.0
		if n > 0 {
			sev = utils.Round2(sum / float64(n))
		}
		hotspots = append(hotspots, Hotspot{Area: name, Incidents: areaCounts[name], Severity: sev})
	}
	return hotspots
}

// calculateTrend splits the window into two equal halves and reports the
// percent change in issue count between them.
func (s *Summarizer) calculateTrend(issues []IssueRecord, windowHours int, now time.Time) Trend {
	start := now.Add(-time.Duration(windowHours) * time.Hour)
	half := now.Add(-time.Duration(windowHours) * time.Hour / 2)

	firstHalf, secondHalf := 0, 0
	for _, r := range issues {
		t := s.parseTime(r.CreatedAt)
		switch {
		case t.After(start) && !t.After(half):
			firstHalf++
		case t.After(half) && !t.After(now):
			secondHalf++
		}
	}

	var changePct int
	if firstHalf == 0 {
		if secondHalf > 0 {
			changePct = 100
		}
	} else {
		changePct = int(roundHalfAway(float64(secondHalf-firstHalf) / float64(firstHalf) * 100))
	}

	direction := "stable"
	if changePct > 10 {
		direction = "increasing"
	} else if changePct < -10 {
		direction = "decreasing"
	}

	return Trend{
		Direction:       direction,
		ChangePercent:   changePct,
		FirstHalfCount:  firstHalf,
		SecondHalfCount: secondHalf,
	}
}

// healthScore scores overall city health on [0,100].
func healthScore(active, critical int, trend Trend, predictions int) int {
	score := 100
	score -= minInt(30, active*2)
	score -= minInt(25, critical*8)

	abs := trend.ChangePercent
	if abs < 0 {
		abs = -abs
	}
	if trend.Direction == "increasing" {
		score -= minInt(15, abs/5)
	} else if trend.Direction == "decreasing" {
		score += minInt(10, abs/10)
	}

	score -= minInt(10, predictions*2)

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func healthLabel(score int) string {
	switch {
	case score >= 85:
		return "Excellent"
	case score >= 70:
		return "Good"
	case score >= 55:
		return "Fair"
	case score >= 40:
		return "Concerning"
	default:
		return "Critical"
	}
}

func areaRecommendation(area, risk string) string {
	switch risk {
	case "critical":
		return "Immediate response required in " + area + ". Escalate to zone commander."
	case "high":
		return "Increased monitoring and resource allocation recommended for " + area + "."
	case "moderate":
		return "Standard response protocols active for " + area + ". Monitor for escalation."
	default:
		return area + " operating normally. Continue routine monitoring."
	}
}

// dominantKey returns the map key with the highest count, ties broken by
// name so the result is deterministic.
func dominantKey(counts map[string]int) (string, int) {
	best := ""
	bestCount := -1
	for k, c := range counts {
		if c > bestCount || (c == bestCount && k < best) {
			best, bestCount = k, c
		}
	}
	return best, bestCount
}

func issueType(r IssueRecord) string {
	if r.Type == "" {
		return "other"
	}
	return r.Type
}

func areaName(r IssueRecord) string {
	if r.AreaName == "" {
		return "Unknown"
	}
	return r.AreaName
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func roundHalfAway(v float64) float64 {
	if v < 0 {
		return -roundHalfAway(-v)
	}
	return float64(int(v + 0.5))
}
