package sentiment

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/Ankursingh018as/public-pulse-ai/internal/areas"
	"github.com/Ankursingh018as/public-pulse-ai/pkg/utils"
)

// Urgency levels, ordered from least to most time-critical.
const (
	UrgencyLow      = "low"
	UrgencyModerate = "moderate"
	UrgencyHigh     = "high"
	UrgencyCritical = "critical"
)

// Emotion labels. EmotionNeutral is used when no indicator matches.
const EmotionNeutral = "neutral"

// Profile is the multi-dimensional analysis of a single report text.
type Profile struct {
	Urgency           string   `json:"urgency"`
	UrgencyScore      float64  `json:"urgency_score"`
	Emotion           string   `json:"emotion"`
	EmotionConfidence float64  `json:"emotion_confidence"`
	SeverityScore     float64  `json:"severity_score"`
	Language          string   `json:"language_detected"`
	KeyPhrases        []string `json:"key_phrases"`
	HasLocation       bool     `json:"has_location"`
	Amplified         bool     `json:"amplified"`
}

// BatchProfile aggregates sentiment metrics across many texts.
type BatchProfile struct {
	Count               int            `json:"count"`
	AvgUrgency          float64        `json:"avg_urgency"`
	AvgSeverity         float64        `json:"avg_severity"`
	DominantEmotion     string         `json:"dominant_emotion"`
	Emotions            map[string]int `json:"emotions"`
	UrgencyDistribution map[string]int `json:"urgency_distribution"`
	TopPhrases          []PhraseCount  `json:"top_phrases"`
}

// PhraseCount pairs an extracted key phrase with its occurrence count.
type PhraseCount struct {
	Phrase string `json:"phrase"`
	Count  int    `json:"count"`
}

const maxKeyPhrases = 5

var (
	devanagariRe = regexp.MustCompile(`[\x{0900}-\x{097F}]`)
	gujaratiRe   = regexp.MustCompile(`[\x{0A80}-\x{0AFF}]`)
	digitsRe     = regexp.MustCompile(`\d+`)

	issuePhraseRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(road\s*(?:damage|block|closed|jam|accident))`),
		regexp.MustCompile(`(?i)\b(water\s*(?:logging|leak|shortage|overflow|supply))`),
		regexp.MustCompile(`(?i)\b(garbage\s*(?:dump|overflow|collection|pile|smell))`),
		regexp.MustCompile(`(?i)\b(street\s*(?:light|lamp)\s*(?:not working|broken|off|dark))`),
		regexp.MustCompile(`(?i)\b(traffic\s*(?:jam|signal|congestion|accident|block))`),
		regexp.MustCompile(`(?i)\b(power\s*(?:cut|outage|failure))`),
		regexp.MustCompile(`(?i)\b(sewage\s*(?:overflow|leak|block|smell))`),
	}
	temporalPhraseRe = regexp.MustCompile(`\b(since\s+\w+|for\s+\d+\s+\w+|from\s+\w+)\b`)

	locationRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:near|opposite|behind|beside|at|on)\s+[\w\s]+(?:road|chowk|nagar|colony|society|park|school|hospital|temple|masjid|bridge)\b`),
		regexp.MustCompile(`(?i)\b\w+\s+(?:road|marg|gali|chowk|circle|cross|naka)\b`),
		regexp.MustCompile(`(?i)\b(?:ward|zone|sector|block|phase)\s*[#-]?\s*\d+\b`),
	}
)

// Analyzer performs multi-dimensional sentiment and urgency analysis of
// citizen report text. It is stateless; all methods are safe for concurrent
// use.
type Analyzer struct{}

// New creates a new analyzer instance
func New() *Analyzer {
	return &Analyzer{}
}

// Analyze returns the sentiment profile of a single report text. Blank text
// yields a fixed neutral profile rather than an error.
func (a *Analyzer) Analyze(text string) Profile {
	if strings.TrimSpace(text) == "" {
		return Profile{
			Urgency:           UrgencyLow,
			UrgencyScore:      0.1,
			Emotion:           EmotionNeutral,
			EmotionConfidence: 0.5,
			SeverityScore:     0.2,
			Language:          "en",
			KeyPhrases:        []string{},
			HasLocation:       false,
			Amplified:         false,
		}
	}

	lower := strings.ToLower(strings.TrimSpace(text))

	lang := detectLanguage(lower)
	urgency, urgencyScore := calculateUrgency(lower)
	emotion, emotionConfidence := detectEmotion(lower)
	severity := calculateSeverity(text, lower, urgencyScore)

	amplified := utils.ContainsAny(lower, severityAmplifiers)
	if amplified {
		severity = utils.Clamp01(severity * 1.3)
		urgencyScore = utils.Clamp01(urgencyScore * 1.2)
		// Re-bucket so the label stays consistent with the boosted score
		urgency = bucketForScore(urgencyScore)
	}

	return Profile{
		Urgency:           urgency,
		UrgencyScore:      utils.Round2(urgencyScore),
		Emotion:           emotion,
		EmotionConfidence: utils.Round2(emotionConfidence),
		SeverityScore:     utils.Round2(severity),
		Language:          lang,
		KeyPhrases:        extractKeyPhrases(lower),
		HasLocation:       hasLocation(text),
		Amplified:         amplified,
	}
}

// AnalyzeBatch analyzes multiple texts and aggregates the results: mean
// urgency/severity, dominant emotion, urgency histogram and the ten most
// frequent key phrases.
func (a *Analyzer) AnalyzeBatch(texts []string) BatchProfile {
	if len(texts) == 0 {
		return BatchProfile{
			Count:               0,
			DominantEmotion:     EmotionNeutral,
			Emotions:            map[string]int{},
			UrgencyDistribution: map[string]int{},
			TopPhrases:          []PhraseCount{},
		}
	}

	var sumUrgency, sumSeverity float64
	emotions := make(map[string]int)
	urgencyDist := make(map[string]int)
	phraseCounts := make(map[string]int)
	var phraseOrder []string

	for _, text := range texts {
		p := a.Analyze(text)
		sumUrgency += p.UrgencyScore
		sumSeverity += p.SeverityScore
		emotions[p.Emotion]++
		urgencyDist[p.Urgency]++
		for _, phrase := range p.KeyPhrases {
			if phraseCounts[phrase] == 0 {
				phraseOrder = append(phraseOrder, phrase)
			}
			phraseCounts[phrase]++
		}
	}

	n := float64(len(texts))
	return BatchProfile{
		Count:               len(texts),
		AvgUrgency:          utils.Round2(sumUrgency / n),
		AvgSeverity:         utils.Round2(sumSeverity / n),
		DominantEmotion:     dominantEmotion(emotions),
		Emotions:            emotions,
		UrgencyDistribution: urgencyDist,
		TopPhrases:          topPhrases(phraseCounts, phraseOrder, 10),
	}
}

// detectLanguage applies Unicode range checks, then a romanized-Hindi
// function-word heuristic. Approximate by design.
func detectLanguage(lower string) string {
	if devanagariRe.MatchString(lower) {
		return "hi"
	}
	if gujaratiRe.MatchString(lower) {
		return "gu"
	}

	padded := " " + lower + " "
	markers := 0
	for _, m := range hindiMarkers {
		if strings.Contains(padded, " "+m+" ") {
			markers++
		}
	}
	if markers >= 2 {
		return "hi_transliterated"
	}
	return "en"
}

// calculateUrgency counts keyword hits per tier, across all language lists,
// and resolves tiers in strict priority critical > high > moderate.
func calculateUrgency(lower string) (string, float64) {
	count := func(tier urgencyTier) int {
		return utils.CountHits(lower, tier.en) + utils.CountHits(lower, tier.hi) + utils.CountHits(lower, tier.gu)
	}

	critical := count(criticalTier)
	high := count(highTier)
	moderate := count(moderateTier)

	switch {
	case critical >= 2:
		return UrgencyCritical, min1(0.85 + float64(critical)*0.05)
	case critical >= 1:
		return UrgencyCritical, 0.8
	case high >= 2:
		return UrgencyHigh, minF(0.79, 0.6+float64(high)*0.05)
	case high >= 1:
		return UrgencyHigh, 0.6
	case moderate >= 2:
		return UrgencyModerate, minF(0.59, 0.4+float64(moderate)*0.03)
	case moderate >= 1:
		return UrgencyModerate, 0.35
	default:
		return UrgencyLow, 0.15
	}
}

// bucketForScore maps an urgency score to its level using the fixed bucket
// boundaries: critical >=0.8, high >=0.6, moderate >=0.35, else low.
func bucketForScore(score float64) string {
	switch {
	case score >= 0.8:
		return UrgencyCritical
	case score >= 0.6:
		return UrgencyHigh
	case score >= 0.35:
		return UrgencyModerate
	default:
		return UrgencyLow
	}
}

// detectEmotion picks the emotion set with the most hits; ties resolve by
// the fixed set order. Confidence grows with the winner's share of all hits.
func detectEmotion(lower string) (string, float64) {
	bestEmotion := ""
	bestHits := 0
	total := 0
	for _, set := range emotionSets {
		hits := utils.CountHits(lower, set.keywords)
		total += hits
		if hits > bestHits {
			bestHits = hits
			bestEmotion = set.emotion
		}
	}

	if total == 0 {
		return EmotionNeutral, 0.5
	}

	confidence := 0.5 + (float64(bestHits)/float64(total))*0.4
	if confidence > 0.95 {
		confidence = 0.95
	}
	return bestEmotion, confidence
}

// calculateSeverity builds a severity score from the urgency base plus
// length, intensity (caps and exclamations, taken from the original casing)
// and embedded digit groups.
func calculateSeverity(original, lower string, urgencyScore float64) float64 {
	base := urgencyScore * 0.6

	wordCount := len(strings.Fields(lower))
	lengthFactor := minF(0.15, float64(wordCount)/100)

	upper := 0
	for _, r := range original {
		if unicode.IsUpper(r) {
			upper++
		}
	}
	capsRatio := float64(upper) / float64(max1(len(original)))
	exclamations := strings.Count(original, "!")
	intensity := minF(0.15, capsRatio*0.5+float64(exclamations)*0.03)

	numberFactor := minF(0.1, float64(len(digitsRe.FindAllString(lower, -1)))*0.02)

	return utils.Clamp01(base + lengthFactor + intensity + numberFactor)
}

// extractKeyPhrases matches fixed civic-issue and temporal phrase shapes,
// deduplicates in first-seen order and caps the result at five phrases.
func extractKeyPhrases(lower string) []string {
	var phrases []string
	seen := make(map[string]bool)
	add := func(p string) {
		if p != "" && !seen[p] {
			seen[p] = true
			phrases = append(phrases, p)
		}
	}

	for _, re := range issuePhraseRes {
		for _, m := range re.FindAllStringSubmatch(lower, -1) {
			add(m[1])
		}
	}
	for _, m := range temporalPhraseRe.FindAllStringSubmatch(lower, -1) {
		add(m[1])
	}

	if len(phrases) > maxKeyPhrases {
		phrases = phrases[:maxKeyPhrases]
	}
	if phrases == nil {
		phrases = []string{}
	}
	return phrases
}

// hasLocation checks Indian-address phrase patterns, then the monitored
// area gazetteer.
func hasLocation(text string) bool {
	for _, re := range locationRes {
		if re.MatchString(text) {
			return true
		}
	}
	return areas.Mentioned(text)
}

// dominantEmotion returns the most frequent emotion; ties resolve by the
// fixed emotion set order, then neutral.
func dominantEmotion(counts map[string]int) string {
	best := EmotionNeutral
	bestCount := counts[EmotionNeutral]
	for _, set := range emotionSets {
		if counts[set.emotion] > bestCount {
			best = set.emotion
			bestCount = counts[set.emotion]
		}
	}
	return best
}

// topPhrases ranks phrases by count descending; equal counts keep first-seen
// order so batch output is deterministic.
func topPhrases(counts map[string]int, order []string, limit int) []PhraseCount {
	ranked := make([]PhraseCount, 0, len(order))
	for _, phrase := range order {
		ranked = append(ranked, PhraseCount{Phrase: phrase, Count: counts[phrase]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func min1(v float64) float64 {
	if v > 1.0 {
		return 1.0
	}
	return v
}

func max1(v int) int {
	if v < 1 {
		return 1
	}
	return v
}
