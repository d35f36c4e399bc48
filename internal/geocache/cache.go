// Package geocache stores resolved segment geometries keyed by segment identity.
//
// Recomputing a geometry is idempotent, so stores do not coordinate concurrent
// writers: the SQL backends keep the first value written and the memory
// backend keeps the last. Both are valid.
package geocache

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// DefaultColor is used for segments whose line has no track colour.
const DefaultColor = "#38bdf8"

// Geometry is the cached shape of one segment. Parts are [lat, lng] polylines;
// a loop ridden across its seam produces two parts.
type Geometry struct {
	Parts    [][][2]float64 `json:"coords"`
	Color    string         `json:"color"`
	IsMulti  bool           `json:"isMulti"`
	Fallback bool           `json:"fallback"`
}

// PointCount returns the number of coordinates across all parts.
func (g Geometry) PointCount() int {
	n := 0
	for _, p := range g.Parts {
		n += len(p)
	}
	return n
}

// Cache is a key/value store for segment geometries.
type Cache interface {
	// Get returns the cached geometry and whether it was present.
	Get(ctx context.Context, key string) (Geometry, bool, error)
	Set(ctx context.Context, key string, g Geometry) error
	// Clear drops every entry.
	Clear(ctx context.Context) error
}

// Store is a Cache holding resources that must be released.
type Store interface {
	Cache
	io.Closer
}

// Backend names accepted by Open.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Config selects and tunes a cache backend.
type Config struct {
	Backend     string        `yaml:"backend" validate:"omitempty,oneof=memory sqlite postgres"`
	Size        int           `yaml:"size" validate:"gte=0"`
	TTL         time.Duration `yaml:"ttl" validate:"gte=0"`
	SQLitePath  string        `yaml:"sqlite_path" validate:"required_if=Backend sqlite"`
	PostgresURL string        `yaml:"postgres_url" validate:"required_if=Backend postgres"`
}

// Open builds the configured store. Persistent backends are fronted by an
// in-memory LRU.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (Store, error) {
	memory := NewMemoryCache(cfg.Size, cfg.TTL)

	switch cfg.Backend {
	case "", BackendMemory:
		return memory, nil
	case BackendSQLite:
		back, err := NewSQLiteCache(ctx, cfg.SQLitePath, logger)
		if err != nil {
			return nil, err
		}
		return NewLayered(memory, back, logger), nil
	case BackendPostgres:
		back, err := NewPostgresCache(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, err
		}
		return NewLayered(memory, back, logger), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
