package scorer

import (
	"math"
	"strings"
)

// round2 rounds to two decimal places so scores compare and serialize stably.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ComputeConfidence derives a lead confidence score from service-keyword hits
// in the combined evidence text. Zero hits still yield the 0.3 base: the text
// reached scoring, so some weak signal exists. Three or more hits earn a
// corroboration bonus. The score never exceeds 0.9; certainty is reserved for
// human review.
func (c Config) ComputeConfidence(text string) float64 {
	lower := strings.ToLower(text)
	hits := countPhraseHits(lower, c.ServiceKeywords)

	conf := 0.3 + 0.1*float64(hits)
	if conf > 0.9 {
		conf = 0.9
	}
	if hits >= 3 {
		conf += 0.1
		if conf > 0.9 {
			conf = 0.9
		}
	}
	return round2(conf)
}

// ComputeJobConfidence scores a single job posting as a hiring signal. A
// substantive description (over 500 characters) starts from a higher base,
// transformation-keyword hits and a senior title add boosts, and the result
// is capped at 0.9.
func (c Config) ComputeJobConfidence(title, description string) float64 {
	base := 0.4
	if len(description) > 500 {
		base = 0.6
	}

	text := strings.ToLower(title + " " + description)
	hits := countPhraseHits(text, c.TransformationKeywords)
	switch {
	case hits >= 3:
		base += 0.1
	case hits == 2:
		base += 0.05
	}

	lowerTitle := strings.ToLower(title)
	for _, indicator := range c.SeniorTitleIndicators {
		if strings.Contains(lowerTitle, indicator) {
			base += 0.05
			break
		}
	}

	if base > 0.9 {
		base = 0.9
	}
	return round2(base)
}
