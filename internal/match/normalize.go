// Package match identifies when two institution-name strings denote the same
// real-world entity and clusters evidence items by institution.
package match

import (
	"regexp"
	"strings"
)

// institutionSuffixes are stripped from the end of a name, first match wins.
// Order matters: checked top to bottom.
var institutionSuffixes = []string{
	" university",
	" college",
	" institute",
	" academy",
	" school",
	" system",
	" campus",
	" medical center",
}

// institutionPrefixes are stripped from the start of a name, first match wins.
var institutionPrefixes = []string{
	"the ",
	"university of ",
	"college of ",
}

var (
	nonWord    = regexp.MustCompile(`[^\w\s]`)
	multiSpace = regexp.MustCompile(`\s+`)
)

// Normalize lower-cases an institution name, collapses punctuation to
// spaces, strips trailing institutional suffixes and leading prefixes (first
// match wins per pass, repeated until stable so the result is idempotent)
// and trims. Empty input normalizes to the empty string.
func Normalize(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return ""
	}

	// Collapse punctuation before stripping: a suffix hidden behind a hyphen
	// ("Duke-University") must be visible on the first pass, otherwise the
	// transform is not idempotent.
	n = nonWord.ReplaceAllString(n, " ")
	n = multiSpace.ReplaceAllString(n, " ")
	n = strings.TrimSpace(n)

	for {
		stripped := stripOneSuffix(n)
		stripped = stripOnePrefix(stripped)
		if stripped == n {
			break
		}
		n = stripped
	}

	return n
}

func stripOneSuffix(n string) string {
	for _, suffix := range institutionSuffixes {
		if strings.HasSuffix(n, suffix) {
			return strings.TrimSpace(strings.TrimSuffix(n, suffix))
		}
	}
	return n
}

func stripOnePrefix(n string) string {
	for _, prefix := range institutionPrefixes {
		if strings.HasPrefix(n, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(n, prefix))
		}
	}
	return n
}
