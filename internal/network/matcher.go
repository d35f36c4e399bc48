package network

import (
	"regexp"
	"strings"

	"github.com/mozillazg/go-unidecode"
	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

// NameMatcher decides whether two station names denote the same place.
type NameMatcher interface {
	Same(a, b string) bool
}

// ExactMatcher compares names byte for byte.
type ExactMatcher struct{}

func (ExactMatcher) Same(a, b string) bool {
	return a == b
}

// DefaultFuzzyThreshold is the minimum similarity ratio for FuzzyMatcher.
const DefaultFuzzyThreshold = 85

// FuzzyMatcher transliterates and lower-cases both names and accepts them when
// their similarity ratio reaches Threshold.
type FuzzyMatcher struct {
	Threshold int
}

func (m FuzzyMatcher) Same(a, b string) bool {
	if a == b {
		return true
	}
	threshold := m.Threshold
	if threshold <= 0 {
		threshold = DefaultFuzzyThreshold
	}
	return fuzzy.Ratio(normalizeStationName(a), normalizeStationName(b)) >= threshold
}

var (
	openParen  = regexp.MustCompile(`(\S)\(`)
	closeParen = regexp.MustCompile(`\)(\S)`)
)

func normalizeStationName(name string) string {
	name = unidecode.Unidecode(NormalizeCompanyName(name))
	name = strings.ToLower(name)
	name = openParen.ReplaceAllString(name, "$1 (")
	name = closeParen.ReplaceAllString(name, ") $1")
	name = strings.ReplaceAll(name, "-", " ")
	return strings.Join(strings.Fields(name), " ")
}

// MatcherFor returns the matcher registered under a name: "exact" or "fuzzy".
func MatcherFor(kind string, threshold int) NameMatcher {
	if kind == "fuzzy" {
		return FuzzyMatcher{Threshold: threshold}
	}
	return ExactMatcher{}
}
