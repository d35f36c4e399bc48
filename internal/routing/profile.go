package routing

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"raillog.org/engine/internal/network"
)

// Profile selects the search strategy.
type Profile byte

const (
	// StationProfile is the station-level best-first search.
	StationProfile Profile = iota
	// LineLevelProfile plans over line adjacency first and resolves the
	// transfer stations afterwards.
	LineLevelProfile
)

func (p Profile) String() string {
	switch p {
	case StationProfile:
		return "station"
	case LineLevelProfile:
		return "line-level"
	default:
		return fmt.Sprintf("profile(%d)", byte(p))
	}
}

// ParseProfile converts a profile name. The empty string means StationProfile.
func ParseProfile(s string) (Profile, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "station":
		return StationProfile, nil
	case "line-level", "line":
		return LineLevelProfile, nil
	default:
		return StationProfile, fmt.Errorf("unknown routing profile %q", s)
	}
}

func (p Profile) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *Profile) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseProfile(s)
	*p = parsed
	return err
}

func (p Profile) MarshalYAML() (any, error) {
	return p.String(), nil
}

func (p *Profile) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseProfile(s)
	*p = parsed
	return err
}

// Defaults for Options.
const (
	DefaultTransferPenalty = 5.0
	DefaultHeuristicWeight = 1.1
	DefaultGoalRadiusKm    = 0.2
	DefaultHighSpeedName   = "新幹線"
	DefaultMaxLineDepth    = 15
)

// Options tunes the search. Zero values fall back to the defaults above.
type Options struct {
	// TransferPenalty is the cost of one transfer, in kilometres of riding.
	TransferPenalty float64
	// HeuristicWeight scales the great-circle estimate to the destination.
	HeuristicWeight float64
	// GoalRadiusKm is how close a same-named station on another line must
	// be to the destination to end the search there.
	GoalRadiusKm float64
	// HighSpeedFactor multiplies the ride cost on high-speed lines. Values
	// below 1 prefer them; 0 means no preference.
	HighSpeedFactor float64
	// HighSpeedName marks a line as high-speed when its name contains it.
	HighSpeedName string
	// MaxLineDepth caps the number of lines in a line-level plan.
	MaxLineDepth int
	// LineLevelAnyOperator lets line-level plans transfer between operators
	// that are not compatible, using the relaxed index. Station-level
	// searches always use the strict index.
	LineLevelAnyOperator bool
}

func (o Options) withDefaults() Options {
	if o.TransferPenalty <= 0 {
		o.TransferPenalty = DefaultTransferPenalty
	}
	if o.HeuristicWeight <= 0 {
		o.HeuristicWeight = DefaultHeuristicWeight
	}
	if o.GoalRadiusKm <= 0 {
		o.GoalRadiusKm = DefaultGoalRadiusKm
	}
	if o.HighSpeedFactor <= 0 {
		o.HighSpeedFactor = 1
	}
	if o.HighSpeedName == "" {
		o.HighSpeedName = DefaultHighSpeedName
	}
	if o.MaxLineDepth <= 0 {
		o.MaxLineDepth = DefaultMaxLineDepth
	}
	return o
}

// IsHighSpeed reports whether a line counts as high-speed under o.
func (o Options) IsHighSpeed(l *network.Line) bool {
	return l.HighSpeed || (o.HighSpeedName != "" && strings.Contains(l.Name, o.HighSpeedName))
}
