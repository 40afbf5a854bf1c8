package intelligence

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Ankursingh018as/public-pulse-ai/internal/areas"
)

var typeLabels = map[string]string{
	"traffic":  "traffic congestion",
	"water":    "water/drainage issues",
	"garbage":  "waste management",
	"light":    "streetlight outages",
	"road":     "road damage",
	"drainage": "drainage problems",
	"noise":    "noise complaints",
}

var resourceMap = map[string]string{
	"traffic":  "traffic police deployment",
	"water":    "drainage/water supply team",
	"garbage":  "sanitation crew dispatch",
	"light":    "electrical maintenance team",
	"road":     "road repair crew",
	"drainage": "drainage/water supply team",
}

// buildNarrative assembles the summary narrative from a fixed clause order:
// status, dominant type, top hotspot, trend, pending review, predictions.
// Absent conditions omit their clause, so the text is fully determined by
// the inputs.
func buildNarrative(totalActive, critical, pending int, typeDist map[string]int, hotspots []Hotspot, trend Trend, predictions []PredictionRecord) string {
	parts := []string{}

	switch {
	case critical >= 3:
		parts = append(parts, fmt.Sprintf("ALERT: %d critical incidents require immediate attention.", critical))
	case totalActive == 0:
		parts = append(parts, "City systems operating normally. No active incidents reported.")
	default:
		parts = append(parts, fmt.Sprintf("Currently tracking %d active %s.", totalActive, plural(totalActive, "incident")))
	}

	if len(typeDist) > 0 {
		topType, topCount := dominantKey(typeDist)
		label := typeLabels[topType]
		if label == "" {
			label = topType
		}
		parts = append(parts, fmt.Sprintf("Primary concern: %s (%d reports).", label, topCount))
	}

	if len(hotspots) > 0 && hotspots[0].Incidents >= 3 {
		parts = append(parts, fmt.Sprintf("Hotspot: %s area with %d active issues.", hotspots[0].Area, hotspots[0].Incidents))
	}

	if trend.Direction == "increasing" {
		parts = append(parts, fmt.Sprintf("Incident rate is increasing (%d%% in the last period).", trend.ChangePercent))
	} else if trend.Direction == "decreasing" {
		parts = append(parts, fmt.Sprintf("Incident rate decreasing (%d%% improvement).", -trend.ChangePercent))
	}

	if pending > 0 {
		parts = append(parts, fmt.Sprintf("%d %s awaiting admin review.", pending, plural(pending, "incident")))
	}

	highRisk := 0
	for _, p := range predictions {
		if p.Probability > 0.7 {
			highRisk++
		}
	}
	if highRisk > 0 {
		parts = append(parts, fmt.Sprintf("AI predicts %d high-risk %s in the coming hours.", highRisk, plural(highRisk, "event")))
	}

	return strings.Join(parts, " ")
}

// buildRecommendations derives resource allocation recommendations: up to
// three from hotspots with at least three incidents, up to three from
// predictions above 0.6 probability, plus a city-wide traffic protocol
// during rush hours. Capped at five, earlier categories first.
func (s *Summarizer) buildRecommendations(issues []IssueRecord, predictions []PredictionRecord, typeDist map[string]int, hotspots []Hotspot, now time.Time) []Recommendation {
	recs := []Recommendation{}

	top := hotspots
	if len(top) > 3 {
		top = top[:3]
	}
	for _, h := range top {
		if h.Incidents < 3 {
			continue
		}
		types := map[string]int{}
		for _, r := range issues {
			if !r.Resolved && areaName(r) == h.Area {
				types[issueType(r)]++
			}
		}
		primary := "general"
		if len(types) > 0 {
			primary, _ = dominantKey(types)
		}
		resource := resourceMap[primary]
		if resource == "" {
			resource = "response team"
		}

		priority := "medium"
		if h.Incidents >= 5 {
			priority = "high"
		}
		info, _ := areas.Lookup(h.Area)
		recs = append(recs, Recommendation{
			Priority:        priority,
			Area:            h.Area,
			Action:          fmt.Sprintf("Deploy %s to %s", resource, h.Area),
			Reason:          fmt.Sprintf("%d active incidents, primarily %s", h.Incidents, primary),
			EstimatedImpact: fmt.Sprintf("Affects ~%d residents", info.Population),
		})
	}

	considered := predictions
	if len(considered) > 3 {
		considered = considered[:3]
	}
	for _, p := range considered {
		if p.Probability <= 0.6 {
			continue
		}
		area := p.AreaName
		if area == "" {
			area = "Unknown"
		}
		eventType := p.EventType
		if eventType == "" {
			eventType = "incident"
		}
		recs = append(recs, Recommendation{
			Priority:        "medium",
			Area:            area,
			Action:          fmt.Sprintf("Pre-position resources for predicted %s in %s", eventType, area),
			Reason:          fmt.Sprintf("AI prediction: %d%% probability", int(roundHalfAway(p.Probability*100))),
			EstimatedImpact: "Proactive prevention",
		})
	}

	hour := now.Hour()
	if (hour >= 7 && hour <= 10) || (hour >= 17 && hour <= 20) {
		if typeDist["traffic"] >= 2 {
			recs = append(recs, Recommendation{
				Priority:        "medium",
				Area:            "City-wide",
				Action:          "Activate peak-hour traffic management protocol",
				Reason:          fmt.Sprintf("Rush hour period with %d traffic incidents", typeDist["traffic"]),
				EstimatedImpact: "Reduced commute delays",
			})
		}
	}

	if len(recs) > 5 {
		recs = recs[:5]
	}
	return recs
}

// detectAnomalies runs three independent checks over the recent issue set
// and returns every match, not just the first.
func (s *Summarizer) detectAnomalies(issues []IssueRecord, windowHours int, now time.Time) []Anomaly {
	anomalies := []Anomaly{}
	cutoff := now.Add(-time.Duration(windowHours) * time.Hour)

	typeCounts := map[string]int{}
	areaCounts := map[string]int{}
	total := 0
	for _, r := range issues {
		if !s.parseTime(r.CreatedAt).After(cutoff) {
			continue
		}
		total++
		typeCounts[issueType(r)]++
		areaCounts[areaName(r)]++
	}
	if total == 0 {
		return anomalies
	}

	for _, typ := range sortedKeys(typeCounts) {
		count := typeCounts[typ]
		ratio := float64(count) / float64(total)
		if ratio > 0.6 && count >= 3 {
			anomalies = append(anomalies, Anomaly{
				Type:           "type_spike",
				Severity:       "warning",
				Description:    fmt.Sprintf("Unusual spike in %s incidents (%d of %d, %d%%)", typ, count, total, int(roundHalfAway(ratio*100))),
				AffectedType:   typ,
				Recommendation: fmt.Sprintf("Investigate root cause of %s surge", typ),
			})
		}
	}

	for _, area := range sortedKeys(areaCounts) {
		count := areaCounts[area]
		if count >= 4 && float64(count)/float64(total) > 0.4 {
			anomalies = append(anomalies, Anomaly{
				Type:           "area_cluster",
				Severity:       "warning",
				Description:    fmt.Sprintf("Geographic incident cluster detected in %s (%d incidents)", area, count),
				AffectedArea:   area,
				Recommendation: fmt.Sprintf("Deploy additional monitoring to %s", area),
			})
		}
	}

	if total >= 10 {
		ratePerHour := float64(total) / float64(maxInt(windowHours, 1))
		if ratePerHour > 2 {
			severity := "warning"
			if ratePerHour > 5 {
				severity = "critical"
			}
			anomalies = append(anomalies, Anomaly{
				Type:           "rate_spike",
				Severity:       severity,
				Description:    fmt.Sprintf("High incident rate: %.1f per hour (normal: ~0.5/hr)", ratePerHour),
				Recommendation: "Activate emergency response protocol",
			})
		}
	}

	return anomalies
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
