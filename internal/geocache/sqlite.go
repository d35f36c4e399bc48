package geocache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"raillog.org/engine/internal/logging"
)

// SQLiteCache persists geometries in a SQLite file.
type SQLiteCache struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteCache opens (or creates) the database at path. ":memory:" is
// accepted and keeps everything on a single connection.
func NewSQLiteCache(ctx context.Context, path string, logger *slog.Logger) (*SQLiteCache, error) {
	dsn := path
	if path != ":memory:" {
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := createGeometryTable(ctx, db, logger); err != nil {
		logging.SafeCloseWithLogging(db, logger, "geocache_sqlite_open")
		return nil, err
	}

	return &SQLiteCache{db: db, logger: logger}, nil
}

func createGeometryTable(ctx context.Context, db *sql.DB, logger *slog.Logger) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer logging.SafeRollbackWithLogging(tx, logger, "geocache_create_tables")

	_, err = tx.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS segment_geometries (
			key TEXT PRIMARY KEY,
			payload TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("error creating segment_geometries: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}
	return nil
}

func (s *SQLiteCache) Get(ctx context.Context, key string) (Geometry, bool, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM segment_geometries WHERE key = ?`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return Geometry{}, false, nil
	}
	if err != nil {
		return Geometry{}, false, fmt.Errorf("query geometry %s: %w", key, err)
	}

	var g Geometry
	if err := json.Unmarshal([]byte(payload), &g); err != nil {
		return Geometry{}, false, fmt.Errorf("decode geometry %s: %w", key, err)
	}
	return g, true, nil
}

// Set stores g unless the key is already present.
func (s *SQLiteCache) Set(ctx context.Context, key string, g Geometry) error {
	payload, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("encode geometry %s: %w", key, err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO segment_geometries (key, payload, created_at) VALUES (?, ?, ?)`,
		key, string(payload), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("store geometry %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteCache) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM segment_geometries`); err != nil {
		return fmt.Errorf("clear geometries: %w", err)
	}
	return nil
}

// Count returns the number of stored geometries.
func (s *SQLiteCache) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM segment_geometries`).Scan(&n)
	return n, err
}

func (s *SQLiteCache) Close() error {
	return s.db.Close()
}
