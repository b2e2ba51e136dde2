package scorer

import (
	"strings"

	"github.com/dynamic-campus/leadgen-cli/internal/match"
)

// crossRefTitleIndicators are the job-title fragments that mark a posting as
// transformation-related for the corroboration bonus.
var crossRefTitleIndicators = []string{
	"chief information officer", "cio", "digital transformation",
	"modernization", "strategic", "governance", "cybersecurity",
}

// ComputeCrossRefConfidence scores a corroborated institution: news coverage
// plus hiring activity is a stronger buying signal than either alone, so the
// base starts at 0.6 and source breadth, name similarity, and transformation
// job titles each add boosts. Corroborated leads may reach 0.95, above the
// 0.9 ceiling of single-origin scoring.
func (c Config) ComputeCrossRefConfidence(ref match.CrossReference) float64 {
	conf := 0.6

	switch {
	case len(ref.Articles) >= 3:
		conf += 0.2
	case len(ref.Articles) >= 2:
		conf += 0.1
	}

	if len(ref.Jobs) >= 2 {
		conf += 0.1
	}

	switch {
	case ref.Similarity >= 0.95:
		conf += 0.1
	case ref.Similarity >= 0.9:
		conf += 0.05
	}

	for _, job := range ref.Jobs {
		title := strings.ToLower(job.Title)
		if containsAny(title, crossRefTitleIndicators) {
			conf += 0.05
			break
		}
	}

	if conf > 0.95 {
		conf = 0.95
	}
	return round2(conf)
}

func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}
