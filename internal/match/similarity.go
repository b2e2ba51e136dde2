package match

import (
	"strings"

	"github.com/agext/levenshtein"
)

// abbreviationBoost is the floor applied when an abbreviation matches its
// known expansion.
const abbreviationBoost = 0.9

// abbreviations maps normalized short forms to their normalized expansions.
var abbreviations = map[string]string{
	"mit":  "massachusetts institute technology",
	"ucla": "university california los angeles",
	"usc":  "university southern california",
	"nyu":  "new york university",
	"fsu":  "florida state university",
	"osu":  "ohio state university",
}

// Similarity scores how likely two institution names denote the same entity,
// in [0,1]. Empty input scores 0, identical normalized forms score 1.0,
// otherwise an edit-distance similarity ratio over the normalized forms is
// used. Known abbreviations (MIT, UCLA, ...) are raised to at least 0.9 when
// the other name carries the expansion. Symmetric in its arguments.
func Similarity(nameA, nameB string) float64 {
	if nameA == "" || nameB == "" {
		return 0
	}

	normA := Normalize(nameA)
	normB := Normalize(nameB)
	if normA == "" || normB == "" {
		return 0
	}
	if normA == normB {
		return 1.0
	}

	sim := levenshtein.Similarity(normA, normB, nil)

	if expansionMatches(normA, normB) || expansionMatches(normB, normA) {
		if sim < abbreviationBoost {
			sim = abbreviationBoost
		}
	}

	return sim
}

// expansionMatches reports whether abbr is a known abbreviation whose
// expansion is contained in other. The expansion is normalized first (so
// "new york university" compares as "new york" against a name that had its
// suffix stripped) and containment is token-wise, which tolerates connective
// words like "of" that normalization keeps.
func expansionMatches(abbr, other string) bool {
	expansion, ok := abbreviations[abbr]
	if !ok {
		return false
	}

	have := make(map[string]bool)
	for _, tok := range strings.Fields(other) {
		have[tok] = true
	}
	for _, tok := range strings.Fields(Normalize(expansion)) {
		if !have[tok] {
			return false
		}
	}
	return true
}
