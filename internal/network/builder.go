package network

import (
	"github.com/paulmach/orb"
)

// Placeholder operator names. Lines attributed to these are never compatible
// with any other line.
const (
	UnattributedCompany = "上传数据"
	UnknownValue        = "未知"
)

// RecordKind distinguishes line and station records.
type RecordKind int

const (
	KindLine RecordKind = iota
	KindStation
)

func (k RecordKind) String() string {
	switch k {
	case KindLine:
		return "line"
	case KindStation:
		return "station"
	default:
		return "unknown"
	}
}

// Record is one normalised input feature, as produced by the importers.
// For a line record Name is the line name; for a station record Name is the
// station name and Line the line it belongs to.
type Record struct {
	Kind      RecordKind
	Name      string
	Line      string
	ID        string
	Company   string
	Operator  string
	Icon      string
	Color     string
	HighSpeed bool
	Lat       float64
	Lng       float64
	Transfers []string
	Geometry  []orb.LineString
}

// Builder accumulates records into a new Graph. It never touches the graph it
// was seeded from.
type Builder struct {
	lines     map[string]*Line
	features  []GeoFeature
	companies map[string]CompanyInfo
}

// NewBuilder starts a builder from a copy of base. base may be nil.
func NewBuilder(base *Graph) *Builder {
	b := &Builder{
		lines:     map[string]*Line{},
		companies: map[string]CompanyInfo{},
	}
	if base == nil {
		return b
	}

	for k, l := range base.lines {
		cp := *l
		cp.byID = nil
		cp.Stations = make([]Station, len(l.Stations))
		for i, s := range l.Stations {
			s.Transfers = append([]string(nil), s.Transfers...)
			cp.Stations[i] = s
		}
		b.lines[k] = &cp
	}
	b.features = append(b.features, base.features...)
	for k, v := range base.companies {
		b.companies[k] = v
	}
	return b
}

// MergeCompanies folds an operator table into the builder. Later entries win.
// Existing lines only pick up region, type and logo while theirs are unknown.
func (b *Builder) MergeCompanies(table map[string]CompanyInfo) *Builder {
	for name, info := range table {
		b.companies[name] = info
	}

	for _, l := range b.lines {
		info, ok := table[l.Meta.Company]
		if !ok {
			continue
		}
		if isUnknown(l.Meta.Region) || isUnknown(l.Meta.Type) {
			l.Meta.Region = orUnknown(info.Region)
			l.Meta.Type = orUnknown(info.Type)
			l.Meta.Logo = info.Logo
			if l.Meta.Icon == "" {
				l.Meta.Icon = info.Logo
			}
		}
	}
	return b
}

// AddRecords folds records into the builder. defaultCompany is used for
// records that carry no operator of their own.
func (b *Builder) AddRecords(records []Record, defaultCompany string) *Builder {
	for _, r := range records {
		company := ResolveCompany(r.Company, r.Operator, defaultCompany)
		switch r.Kind {
		case KindLine:
			if r.Name == "" {
				continue
			}
			l := b.ensureLine(company, r.Name, r.Icon)
			if r.Color != "" && l.Color == "" {
				l.Color = r.Color
			}
			if r.HighSpeed {
				l.HighSpeed = true
			}
			if len(r.Geometry) > 0 {
				b.features = append(b.features, GeoFeature{
					Company:  company,
					LineName: r.Name,
					Color:    r.Color,
					Parts:    r.Geometry,
				})
			}
		case KindStation:
			if r.Line == "" || r.Name == "" {
				continue
			}
			l := b.ensureLine(company, r.Line, r.Icon)
			b.addStation(l, company, r)
		}
	}
	return b
}

// AddFeature records raw track geometry without touching lines.
func (b *Builder) AddFeature(f GeoFeature) *Builder {
	b.features = append(b.features, f)
	return b
}

// Build publishes the accumulated state as a new immutable Graph.
func (b *Builder) Build() *Graph {
	g := &Graph{
		lines:     make(map[string]*Line, len(b.lines)),
		features:  append([]GeoFeature(nil), b.features...),
		companies: make(map[string]CompanyInfo, len(b.companies)),
	}
	for k, l := range b.lines {
		cp := *l
		cp.Stations = append([]Station(nil), l.Stations...)
		g.lines[k] = &cp
	}
	for k, v := range b.companies {
		g.companies[k] = v
	}
	g.index()
	return g
}

func (b *Builder) ensureLine(company, name, icon string) *Line {
	key := LineKey(company, name)
	if l, ok := b.lines[key]; ok {
		if icon != "" && l.Meta.Icon == "" {
			l.Meta.Icon = icon
		}
		return l
	}

	info, ok := b.companies[company]
	if !ok {
		info = CompanyInfo{Region: UnknownValue, Type: UnknownValue}
	}
	if icon == "" {
		icon = info.Logo
	}

	l := &Line{
		Key:  key,
		Name: name,
		Meta: LineMeta{
			Company: company,
			Region:  orUnknown(info.Region),
			Type:    orUnknown(info.Type),
			Logo:    info.Logo,
			Icon:    icon,
		},
	}
	b.lines[key] = l
	return l
}

func (b *Builder) addStation(l *Line, company string, r Record) {
	if s := findStation(l, r); s != nil {
		if len(s.Transfers) == 0 && len(r.Transfers) > 0 {
			s.Transfers = append([]string(nil), r.Transfers...)
		}
		return
	}

	id := r.ID
	if id == "" {
		id = company + ":" + r.Line + ":" + r.Name
	}
	l.Stations = append(l.Stations, Station{
		ID:        id,
		Name:      r.Name,
		Lat:       r.Lat,
		Lng:       r.Lng,
		Transfers: append([]string(nil), r.Transfers...),
	})
}

// findStation matches by ID first, then by name.
func findStation(l *Line, r Record) *Station {
	if r.ID != "" {
		for i := range l.Stations {
			if l.Stations[i].ID == r.ID {
				return &l.Stations[i]
			}
		}
	}
	for i := range l.Stations {
		if l.Stations[i].Name == r.Name {
			return &l.Stations[i]
		}
	}
	return nil
}

// ResolveCompany picks the operator for a record.
func ResolveCompany(company, operator, defaultCompany string) string {
	for _, c := range []string{company, operator, defaultCompany} {
		if c != "" {
			return c
		}
	}
	return UnattributedCompany
}

func isUnknown(s string) bool {
	return s == "" || s == UnknownValue
}

func orUnknown(s string) string {
	if s == "" {
		return UnknownValue
	}
	return s
}
