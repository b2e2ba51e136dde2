package scorer

import (
	"strings"

	"github.com/dynamic-campus/leadgen-cli/internal/model"
)

// ComputeTier classifies an opportunity into an engagement tier by counting
// trigger-phrase hits per tier rule. A tier wins only with a strictly higher
// hit count than every other tier; ties and zero hits both resolve to Medium,
// the modal engagement size in historical deal data.
func (c Config) ComputeTier(summary string, sourceTitles []string) model.EngagementTier {
	text := strings.ToLower(summary + " " + strings.Join(sourceTitles, " "))

	best := model.TierMedium
	bestHits := 0
	tied := false
	for _, rule := range c.TierRules {
		hits := countPhraseHits(text, rule.Phrases)
		switch {
		case hits > bestHits:
			best = rule.Tier
			bestHits = hits
			tied = false
		case hits == bestHits && hits > 0:
			tied = true
		}
	}
	if bestHits == 0 || tied {
		return model.TierMedium
	}
	return best
}

// countPhraseHits counts how many phrases occur in text at least once. A
// phrase repeated many times still counts once, so one verbose article cannot
// drag a lead into a larger tier on its own.
func countPhraseHits(text string, phrases []string) int {
	hits := 0
	for _, phrase := range phrases {
		if strings.Contains(text, strings.ToLower(phrase)) {
			hits++
		}
	}
	return hits
}
