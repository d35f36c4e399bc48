package network

import (
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeCompanyName folds compatibility forms and collapses whitespace so
// "ＪＲ東日本" and "JR東日本 " compare equal.
func NormalizeCompanyName(s string) string {
	return strings.Join(strings.Fields(norm.NFKC.String(s)), " ")
}

// CompanyIndex maps normalised operator names to their table keys.
type CompanyIndex map[string]string

// NewCompanyIndex indexes the keys of an operator table.
func NewCompanyIndex(table map[string]CompanyInfo) CompanyIndex {
	idx := make(CompanyIndex, len(table))
	for k := range table {
		idx[NormalizeCompanyName(k)] = k
	}
	return idx
}

// BestKey resolves a free-form name (typically a data file name) to a table key:
// normalised exact match first, then containment in either direction. Unmatched
// names are returned unchanged.
func (idx CompanyIndex) BestKey(name string) string {
	n := NormalizeCompanyName(name)
	if n == "" {
		return name
	}
	if k, ok := idx[n]; ok {
		return k
	}

	norms := make([]string, 0, len(idx))
	for k := range idx {
		norms = append(norms, k)
	}
	sort.Strings(norms)
	for _, k := range norms {
		if k == "" {
			continue
		}
		if strings.Contains(k, n) || strings.Contains(n, k) {
			return idx[k]
		}
	}
	return name
}

// Line categories used by the catalogue.
const (
	CategoryNational = "JR"
	CategoryPrivate  = "Private"
	CategoryCity     = "City"
)

// CatalogueCompany is one operator inside a catalogue region.
type CatalogueCompany struct {
	Company string   `json:"company"`
	Logo    string   `json:"logo,omitempty"`
	Lines   []string `json:"lines"`
}

// CatalogueRegion groups operators of one region.
type CatalogueRegion struct {
	Region    string             `json:"region"`
	Companies []CatalogueCompany `json:"companies"`
}

// CatalogueCategory groups regions of one operator category.
type CatalogueCategory struct {
	Category string            `json:"category"`
	Regions  []CatalogueRegion `json:"regions"`
}

// Catalogue groups lines by category, region and operator for line pickers.
// Everything is sorted so the output is stable.
func (g *Graph) Catalogue() []CatalogueCategory {
	type companyKey struct{ category, region, company string }
	grouped := map[companyKey]*CatalogueCompany{}

	for _, l := range g.Lines() {
		k := companyKey{
			category: lineCategory(l.Meta.Type),
			region:   normalizeRegion(l.Meta.Region),
			company:  l.Meta.Company,
		}
		c, ok := grouped[k]
		if !ok {
			c = &CatalogueCompany{Company: k.company, Logo: l.Meta.Logo}
			grouped[k] = c
		}
		c.Lines = append(c.Lines, l.Key)
	}

	keys := make([]companyKey, 0, len(grouped))
	for k := range grouped {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.category != b.category {
			return categoryRank(a.category) < categoryRank(b.category)
		}
		if a.region != b.region {
			return a.region < b.region
		}
		return a.company < b.company
	})

	var out []CatalogueCategory
	for _, k := range keys {
		if len(out) == 0 || out[len(out)-1].Category != k.category {
			out = append(out, CatalogueCategory{Category: k.category})
		}
		cat := &out[len(out)-1]
		if len(cat.Regions) == 0 || cat.Regions[len(cat.Regions)-1].Region != k.region {
			cat.Regions = append(cat.Regions, CatalogueRegion{Region: k.region})
		}
		reg := &cat.Regions[len(cat.Regions)-1]
		reg.Companies = append(reg.Companies, *grouped[k])
	}
	return out
}

func lineCategory(lineType string) string {
	switch lineType {
	case NationalRailType:
		return CategoryNational
	case "私鉄", "第三セクター":
		return CategoryPrivate
	default:
		return CategoryCity
	}
}

func categoryRank(c string) int {
	switch c {
	case CategoryNational:
		return 0
	case CategoryPrivate:
		return 1
	default:
		return 2
	}
}

func normalizeRegion(region string) string {
	switch region {
	case "北海道", "東北":
		return "北海道・東北"
	case "九州", "沖縄", "九州・沖縄":
		return "九州・沖縄"
	case "":
		return "其他"
	default:
		return region
	}
}
