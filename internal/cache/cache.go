// Package cache provides the SQLite-backed metadata cache with TTL-based
// staleness and capacity-bounded eviction.
package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/vmunix/sortarr/internal/migrations"

	_ "modernc.org/sqlite"
)

// Store persists metadata lookups across runs. All methods are safe for
// concurrent use; writes are idempotent upserts, so last-writer-wins.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the cache database at path and applies the schema.
// Use ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}

	if _, err := db.Exec(migrations.InitialSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply cache schema: %w", err)
	}

	return &Store{db: db}, nil
}

// NewStore wraps an existing database handle. The schema must already exist.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Key derives the normalized cache key for a title/year pair: lowercased,
// non-alphanumerics stripped, spaces collapsed to underscores, suffixed with
// the year or "any" when the year is unknown.
func Key(title string, year int) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	normalized := strings.Join(strings.Fields(b.String()), "_")

	if year > 0 {
		return fmt.Sprintf("%s_%d", normalized, year)
	}
	return normalized + "_any"
}

// Get retrieves a cached payload by key. Returns nil, false when the key is
// absent or the entry is older than maxAge; a stale row is left in place for
// the next Cleanup sweep.
func (s *Store) Get(ctx context.Context, key string, maxAge time.Duration) ([]byte, bool) {
	var payload string
	var updatedAt time.Time

	err := s.db.QueryRowContext(ctx,
		"SELECT metadata, updated_at FROM media_cache WHERE title_key = ?", key,
	).Scan(&payload, &updatedAt)

	if err != nil || time.Since(updatedAt) >= maxAge {
		return nil, false
	}

	return []byte(payload), true
}

// Set stores a payload under key, replacing any previous entry.
func (s *Store) Set(ctx context.Context, key string, year int, payload []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO media_cache (title_key, year, metadata, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(title_key) DO UPDATE SET
		     year = excluded.year,
		     metadata = excluded.metadata,
		     updated_at = excluded.updated_at`,
		key, year, string(payload), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Delete removes a single entry.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM media_cache WHERE title_key = ?", key)
	if err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

// Cleanup runs the two-phase sweep: first delete entries older than maxAge,
// then, if more than maxItems rows remain, delete the oldest rows until the
// count is at the limit. Returns the total number of rows removed.
func (s *Store) Cleanup(ctx context.Context, maxAge time.Duration, maxItems int) (int64, error) {
	cutoff := time.Now().UTC().Add(-maxAge)

	result, err := s.db.ExecContext(ctx,
		"DELETE FROM media_cache WHERE updated_at < ?", cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("cache cleanup (ttl): %w", err)
	}
	removed, _ := result.RowsAffected()

	if maxItems <= 0 {
		return removed, nil
	}

	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM media_cache").Scan(&count); err != nil {
		return removed, fmt.Errorf("cache cleanup (count): %w", err)
	}

	if count > maxItems {
		result, err = s.db.ExecContext(ctx,
			`DELETE FROM media_cache WHERE title_key IN (
			     SELECT title_key FROM media_cache ORDER BY updated_at ASC LIMIT ?
			 )`,
			count-maxItems,
		)
		if err != nil {
			return removed, fmt.Errorf("cache cleanup (capacity): %w", err)
		}
		n, _ := result.RowsAffected()
		removed += n
	}

	return removed, nil
}

// Clear removes all entries. Returns the number of rows removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM media_cache")
	if err != nil {
		return 0, fmt.Errorf("cache clear: %w", err)
	}
	return result.RowsAffected()
}

// Stats describes the current state of the cache.
type Stats struct {
	Entries int
	Oldest  time.Time
	Newest  time.Time
}

// GetStats reports entry count and the insertion-time range.
func (s *Store) GetStats(ctx context.Context) (Stats, error) {
	var st Stats
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM media_cache").Scan(&st.Entries); err != nil {
		return st, fmt.Errorf("cache stats: %w", err)
	}
	if st.Entries == 0 {
		return st, nil
	}

	// Select the timestamp column directly: aggregates like MIN(updated_at)
	// lose the column's TIMESTAMP declared type, so the driver would hand
	// back a raw string that cannot scan into a time.
	var oldest, newest sql.NullTime
	err := s.db.QueryRowContext(ctx,
		"SELECT updated_at FROM media_cache ORDER BY updated_at ASC LIMIT 1",
	).Scan(&oldest)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return st, fmt.Errorf("cache stats: %w", err)
	}
	err = s.db.QueryRowContext(ctx,
		"SELECT updated_at FROM media_cache ORDER BY updated_at DESC LIMIT 1",
	).Scan(&newest)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return st, fmt.Errorf("cache stats: %w", err)
	}
	st.Oldest = oldest.Time
	st.Newest = newest.Time
	return st, nil
}
