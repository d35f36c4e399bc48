package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsCompatible(t *testing.T) {
	tests := []struct {
		name     string
		a        LineMeta
		b        LineMeta
		expected bool
	}{
		{"same operator", LineMeta{Company: "東京メトロ"}, LineMeta{Company: "東京メトロ"}, true},
		{"different operators", LineMeta{Company: "東京メトロ"}, LineMeta{Company: "都営"}, false},
		{"national rail group", LineMeta{Company: "JR東日本", Type: "JR"}, LineMeta{Company: "JR東海", Type: "JR"}, true},
		{"one side national rail", LineMeta{Company: "JR東日本", Type: "JR"}, LineMeta{Company: "東急", Type: "私鉄"}, false},
		{"unattributed placeholder", LineMeta{Company: UnattributedCompany}, LineMeta{Company: UnattributedCompany}, false},
		{"unknown placeholder", LineMeta{Company: UnknownValue}, LineMeta{Company: UnknownValue}, false},
		{"empty company", LineMeta{}, LineMeta{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsCompatible(tt.a, tt.b))
			assert.Equal(t, tt.expected, IsCompatible(tt.b, tt.a), "symmetric")
		})
	}
}

func TestExactMatcher(t *testing.T) {
	m := ExactMatcher{}
	assert.True(t, m.Same("新宿", "新宿"))
	assert.False(t, m.Same("新宿", "新宿三丁目"))
}

func TestFuzzyMatcher(t *testing.T) {
	m := FuzzyMatcher{Threshold: 85}

	assert.True(t, m.Same("Frankfurt Hbf", "Frankfurt Hbf"))
	assert.True(t, m.Same("Zürich HB", "Zurich HB"), "diacritics are folded")
	assert.True(t, m.Same("Hbf(Frankfurt)", "hbf (frankfurt)"), "spacing and case are normalised")
	assert.False(t, m.Same("Shibuya", "Shinjuku"))
}

func TestMatcherFor(t *testing.T) {
	assert.IsType(t, ExactMatcher{}, MatcherFor("exact", 0))
	assert.IsType(t, FuzzyMatcher{}, MatcherFor("fuzzy", 90))
	assert.IsType(t, ExactMatcher{}, MatcherFor("", 0))
}
