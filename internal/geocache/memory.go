package geocache

import (
	"context"
	"errors"
	"time"

	"github.com/bluele/gcache"
)

// DefaultMemorySize bounds the in-memory LRU when no size is configured.
const DefaultMemorySize = 10000

// MemoryCache is an LRU cache held in process memory.
type MemoryCache struct {
	lru gcache.Cache
}

// NewMemoryCache creates an LRU with the given capacity. ttl of zero keeps
// entries until they are evicted.
func NewMemoryCache(size int, ttl time.Duration) *MemoryCache {
	if size <= 0 {
		size = DefaultMemorySize
	}
	builder := gcache.New(size).LRU()
	if ttl > 0 {
		builder = builder.Expiration(ttl)
	}
	return &MemoryCache{lru: builder.Build()}
}

func (m *MemoryCache) Get(_ context.Context, key string) (Geometry, bool, error) {
	v, err := m.lru.Get(key)
	if errors.Is(err, gcache.KeyNotFoundError) {
		return Geometry{}, false, nil
	}
	if err != nil {
		return Geometry{}, false, err
	}
	g, ok := v.(Geometry)
	return g, ok, nil
}

func (m *MemoryCache) Set(_ context.Context, key string, g Geometry) error {
	return m.lru.Set(key, g)
}

func (m *MemoryCache) Clear(_ context.Context) error {
	m.lru.Purge()
	return nil
}

// Len returns the number of live entries.
func (m *MemoryCache) Len() int {
	return m.lru.Len(true)
}

func (m *MemoryCache) Close() error {
	m.lru.Purge()
	return nil
}
