package appconf

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"raillog.org/engine/internal/geocache"
	"raillog.org/engine/internal/geometry"
	"raillog.org/engine/internal/network"
	"raillog.org/engine/internal/routing"
)

// EngineConfig tunes the routing and geometry engine.
type EngineConfig struct {
	Routing   RoutingConfig   `yaml:"routing"`
	Transfers TransferConfig  `yaml:"transfers"`
	Geometry  GeometryConfig  `yaml:"geometry"`
	Cache     geocache.Config `yaml:"cache"`
	Data      DataConfig      `yaml:"data"`
}

// RoutingConfig maps onto routing.Options.
type RoutingConfig struct {
	Profile          routing.Profile `yaml:"profile"`
	TransferPenalty  float64         `yaml:"transfer_penalty" validate:"gte=0"`
	HeuristicWeight  float64         `yaml:"heuristic_weight" validate:"gte=0,lte=10"`
	GoalRadiusKm     float64         `yaml:"goal_radius_km" validate:"gte=0,lte=5"`
	HighSpeedFactor  float64         `yaml:"high_speed_factor" validate:"gte=0,lte=1"`
	HighSpeedPattern string          `yaml:"high_speed_pattern"`
	MaxLineDepth     int             `yaml:"max_line_depth" validate:"gte=0,lte=100"`
	// LineLevelAnyOperator lets the line-level profile transfer between
	// incompatible operators.
	LineLevelAnyOperator bool `yaml:"line_level_any_operator"`
}

// Options converts the section.
func (c RoutingConfig) Options() routing.Options {
	return routing.Options{
		TransferPenalty: c.TransferPenalty,
		HeuristicWeight: c.HeuristicWeight,
		GoalRadiusKm:    c.GoalRadiusKm,
		HighSpeedFactor: c.HighSpeedFactor,
		HighSpeedName:   c.HighSpeedPattern,
		MaxLineDepth:    c.MaxLineDepth,

		LineLevelAnyOperator: c.LineLevelAnyOperator,
	}
}

// TransferConfig controls transfer inference.
type TransferConfig struct {
	RadiusKm       float64 `yaml:"radius_km" validate:"gte=0,lte=50"`
	Matcher        string  `yaml:"matcher" validate:"omitempty,oneof=exact fuzzy"`
	FuzzyThreshold int     `yaml:"fuzzy_threshold" validate:"gte=0,lte=100"`
}

// Options converts the section.
func (c TransferConfig) Options(strict bool) network.TransferOptions {
	return network.TransferOptions{
		Strict:   strict,
		RadiusKm: c.RadiusKm,
		Matcher:  network.MatcherFor(c.Matcher, c.FuzzyThreshold),
	}
}

// GeometryConfig tunes snapping and slicing.
type GeometryConfig struct {
	SnapThreshold   float64 `yaml:"snap_threshold" validate:"gte=0"`
	LoopToleranceKm float64 `yaml:"loop_tolerance_km" validate:"gte=0"`
}

// Slicer builds the configured slicer.
func (c GeometryConfig) Slicer() geometry.Slicer {
	return geometry.Slicer{LoopToleranceKm: c.LoopToleranceKm}
}

// DataConfig lists the files loaded at start-up. Files may be local paths or
// http(s) URLs; when RefreshInterval is set the whole set is reloaded on that
// period.
type DataConfig struct {
	Companies       string        `yaml:"companies"`
	Files           []string      `yaml:"files" validate:"dive,required"`
	DefaultCompany  string        `yaml:"default_company"`
	RefreshInterval time.Duration `yaml:"refresh_interval" validate:"omitempty,gte=1m"`
}

// DefaultEngineConfig returns the built-in settings.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Routing: RoutingConfig{
			Profile:          routing.StationProfile,
			TransferPenalty:  routing.DefaultTransferPenalty,
			HeuristicWeight:  routing.DefaultHeuristicWeight,
			GoalRadiusKm:     routing.DefaultGoalRadiusKm,
			HighSpeedFactor:  1,
			HighSpeedPattern: routing.DefaultHighSpeedName,
			MaxLineDepth:     routing.DefaultMaxLineDepth,
		},
		Transfers: TransferConfig{
			RadiusKm:       network.DefaultTransferRadiusKm,
			Matcher:        "exact",
			FuzzyThreshold: network.DefaultFuzzyThreshold,
		},
		Geometry: GeometryConfig{
			SnapThreshold:   network.DefaultSnapThreshold,
			LoopToleranceKm: geometry.DefaultLoopToleranceKm,
		},
		Cache: geocache.Config{
			Backend: geocache.BackendMemory,
			Size:    geocache.DefaultMemorySize,
		},
	}
}

// ParseEngineConfig decodes YAML over the defaults and validates the result.
func ParseEngineConfig(data []byte) (EngineConfig, error) {
	cfg := DefaultEngineConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return EngineConfig{}, fmt.Errorf("parsing engine config: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return EngineConfig{}, fmt.Errorf("invalid engine config: %w", err)
	}
	return cfg, nil
}

// LoadEngineConfig reads path, or returns the defaults when path is empty.
func LoadEngineConfig(path string) (EngineConfig, error) {
	if path == "" {
		return DefaultEngineConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return EngineConfig{}, fmt.Errorf("reading engine config: %w", err)
	}
	return ParseEngineConfig(data)
}
