package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCompanyName(t *testing.T) {
	assert.Equal(t, "JR東日本", NormalizeCompanyName("ＪＲ東日本"))
	assert.Equal(t, "Tokyo Metro", NormalizeCompanyName("  Tokyo \t Metro "))
	assert.Equal(t, "", NormalizeCompanyName(""))
}

func TestCompanyIndexBestKey(t *testing.T) {
	idx := NewCompanyIndex(map[string]CompanyInfo{
		"JR東日本":      {},
		"東京メトロ":      {},
		"Tokyu Corp": {},
	})

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"exact", "東京メトロ", "東京メトロ"},
		{"full width", "ＪＲ東日本", "JR東日本"},
		{"file name contains key", "JR東日本_lines", "JR東日本"},
		{"key contains file name", "Tokyu", "Tokyu Corp"},
		{"no match", "Keikyu", "Keikyu"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, idx.BestKey(tt.input))
		})
	}
}

func TestCatalogue(t *testing.T) {
	g := NewBuilder(nil).
		MergeCompanies(map[string]CompanyInfo{
			"JR北海道": {Region: "北海道", Type: "JR"},
			"JR東日本": {Region: "東北", Type: "JR"},
			"東急":    {Region: "関東", Type: "私鉄"},
		}).
		AddRecords([]Record{{Kind: KindLine, Name: "函館本線"}}, "JR北海道").
		AddRecords([]Record{{Kind: KindLine, Name: "東北本線"}}, "JR東日本").
		AddRecords([]Record{{Kind: KindLine, Name: "東横線"}}, "東急").
		AddRecords([]Record{{Kind: KindLine, Name: "Line 1"}}, "").
		Build()

	cat := g.Catalogue()
	require.Len(t, cat, 3)
	assert.Equal(t, CategoryNational, cat[0].Category)
	assert.Equal(t, CategoryPrivate, cat[1].Category)
	assert.Equal(t, CategoryCity, cat[2].Category)

	require.Len(t, cat[0].Regions, 1, "northern regions are merged")
	assert.Equal(t, "北海道・東北", cat[0].Regions[0].Region)
	assert.Len(t, cat[0].Regions[0].Companies, 2)

	assert.Equal(t, UnattributedCompany, cat[2].Regions[0].Companies[0].Company)
}
