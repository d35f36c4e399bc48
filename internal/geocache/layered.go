package geocache

import (
	"context"
	"errors"
	"log/slog"

	"raillog.org/engine/internal/logging"
)

// Layered reads through a fast front cache to a persistent back store.
type Layered struct {
	front  *MemoryCache
	back   Store
	logger *slog.Logger
}

// NewLayered fronts back with front.
func NewLayered(front *MemoryCache, back Store, logger *slog.Logger) *Layered {
	return &Layered{front: front, back: back, logger: logger}
}

func (l *Layered) Get(ctx context.Context, key string) (Geometry, bool, error) {
	if g, ok, err := l.front.Get(ctx, key); err == nil && ok {
		return g, true, nil
	}

	g, ok, err := l.back.Get(ctx, key)
	if err != nil || !ok {
		return g, ok, err
	}

	if err := l.front.Set(ctx, key, g); err != nil {
		logging.LogError(l.logger, "failed to warm memory cache", err,
			slog.String("component", "geocache"),
			slog.String("key", key))
	}
	return g, true, nil
}

// Set writes the back store first, then the front.
func (l *Layered) Set(ctx context.Context, key string, g Geometry) error {
	if err := l.back.Set(ctx, key, g); err != nil {
		return err
	}
	return l.front.Set(ctx, key, g)
}

// Clear empties the back store, then the front.
func (l *Layered) Clear(ctx context.Context) error {
	if err := l.back.Clear(ctx); err != nil {
		return err
	}
	return l.front.Clear(ctx)
}

func (l *Layered) Close() error {
	return errors.Join(l.front.Close(), l.back.Close())
}
