package geocache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresCache persists geometries in a shared Postgres database.
type PostgresCache struct {
	pool *pgxpool.Pool
}

// NewPostgresCache connects to databaseURL and ensures the table exists.
func NewPostgresCache(ctx context.Context, databaseURL string) (*PostgresCache, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS segment_geometries (
			key TEXT PRIMARY KEY,
			payload JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create segment_geometries: %w", err)
	}

	return &PostgresCache{pool: pool}, nil
}

func (p *PostgresCache) Get(ctx context.Context, key string) (Geometry, bool, error) {
	var payload []byte
	err := p.pool.QueryRow(ctx, `SELECT payload FROM segment_geometries WHERE key = $1`, key).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return Geometry{}, false, nil
	}
	if err != nil {
		return Geometry{}, false, fmt.Errorf("query geometry %s: %w", key, err)
	}

	var g Geometry
	if err := json.Unmarshal(payload, &g); err != nil {
		return Geometry{}, false, fmt.Errorf("decode geometry %s: %w", key, err)
	}
	return g, true, nil
}

// Set stores g unless the key is already present.
func (p *PostgresCache) Set(ctx context.Context, key string, g Geometry) error {
	payload, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("encode geometry %s: %w", key, err)
	}

	_, err = p.pool.Exec(ctx,
		`INSERT INTO segment_geometries (key, payload) VALUES ($1, $2) ON CONFLICT (key) DO NOTHING`,
		key, payload)
	if err != nil {
		return fmt.Errorf("store geometry %s: %w", key, err)
	}
	return nil
}

func (p *PostgresCache) Clear(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, `DELETE FROM segment_geometries`); err != nil {
		return fmt.Errorf("clear geometries: %w", err)
	}
	return nil
}

func (p *PostgresCache) Close() error {
	p.pool.Close()
	return nil
}
