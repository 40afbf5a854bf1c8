package utils

import "strings"

// ContainsAny checks if the text contains any of the given keywords
func ContainsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

// CountHits counts how many of the given keywords occur as substrings of the text
func CountHits(text string, keywords []string) int {
	hits := 0
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			hits++
		}
	}
	return hits
}

// Clamp01 clamps a score into the [0, 1] range
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Round2 rounds a score to two decimal places
func Round2(v float64) float64 {
	if v < 0 {
		return -Round2(-v)
	}
	return float64(int(v*100+0.5)) / 100
}
