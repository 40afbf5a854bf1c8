package preprocess

import (
	"regexp"
	"strings"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	urlRe        = regexp.MustCompile(`http\S+`)
	locationRe   = regexp.MustCompile(`\b(at|in|near)\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)?)`)
)

// CleanText normalizes raw report text: strips URLs and collapses whitespace.
func CleanText(text string) string {
	if text == "" {
		return ""
	}
	text = urlRe.ReplaceAllString(text, "")
	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Entities holds shallow entities pulled out of report text.
type Entities struct {
	Locations []string `json:"locations"`
}

// ExtractEntities pulls candidate location names from text. Heuristic:
// capitalized words following "at", "in" or "near" are treated as locations
// ("traffic at Genda Circle").
func ExtractEntities(text string) Entities {
	var e Entities
	for _, m := range locationRe.FindAllStringSubmatch(text, -1) {
		e.Locations = append(e.Locations, m[2])
	}
	return e
}
