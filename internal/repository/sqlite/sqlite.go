package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"lldpinventory/internal/repository"

	_ "modernc.org/sqlite"
)

// Repository implements repository.Cache using SQLite
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

var _ repository.Cache = (*Repository)(nil)

// New creates a new SQLite repository
func New(dbPath string) (*Repository, error) {
	dsn := dbPath
	if dbPath != ":memory:" {
		dsn = "file:" + dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// every :memory: connection is its own database
	db.SetMaxOpenConns(1)

	repo := &Repository{db: db, now: time.Now}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS inventory_cache (
		key TEXT PRIMARY KEY,
		run_id TEXT NOT NULL,
		snapshot JSON NOT NULL,
		host_count INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_inventory_cache_created ON inventory_cache(created_at);
	`

	_, err := r.db.Exec(schema)
	return err
}

// Get loads the snapshot stored for key
func (r *Repository) Get(ctx context.Context, key string, maxAge time.Duration) (*repository.CacheEntry, error) {
	var row cacheRow
	err := r.db.QueryRowContext(ctx,
		`SELECT `+cacheColumns+` FROM inventory_cache WHERE key = ?`, key,
	).Scan(row.scanArgs()...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query cache: %w", err)
	}

	entry, err := row.toEntry()
	if err != nil {
		return nil, err
	}
	if maxAge > 0 && r.now().Sub(entry.CreatedAt) > maxAge {
		return nil, repository.ErrCacheMiss
	}
	return entry, nil
}

// Put upserts the snapshot for entry.Key. A zero CreatedAt is set to now.
func (r *Repository) Put(ctx context.Context, entry repository.CacheEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = r.now()
	}
	args, err := cacheInsertArgs(entry)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO inventory_cache (`+cacheColumns+`)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			run_id = excluded.run_id,
			snapshot = excluded.snapshot,
			host_count = excluded.host_count,
			created_at = excluded.created_at
	`, args...)
	if err != nil {
		return fmt.Errorf("failed to store cache entry: %w", err)
	}
	return nil
}

// Delete removes the entry for key; a missing key is not an error
func (r *Repository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM inventory_cache WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// Prune removes entries older than maxAge and returns how many were removed
func (r *Repository) Prune(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := r.now().Add(-maxAge).UnixNano()
	res, err := r.db.ExecContext(ctx, `DELETE FROM inventory_cache WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune cache: %w", err)
	}
	return res.RowsAffected()
}

// Close closes the database
func (r *Repository) Close() error {
	return r.db.Close()
}
