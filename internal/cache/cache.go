// Package cache persists expensive external lookups in an embedded sqlite
// database, one row per key, with time-based expiration.
package cache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// InfiniteTTL disables expiration.
const InfiniteTTL = -1

const schema = `
CREATE TABLE IF NOT EXISTS lookups (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	created_at INTEGER NOT NULL
);`

// Store is a TTL'd key/value cache. Safe for concurrent use.
type Store struct {
	mu  sync.Mutex
	db  *sql.DB
	ttl int64

	// injectable for tests
	now func() time.Time
}

// Open creates the database file (and its directory) if needed.
// ttlSeconds is the entry lifetime; InfiniteTTL disables expiration.
func Open(path string, ttlSeconds int64) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("cache path not specified")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cache schema: %w", err)
	}

	return &Store{db: db, ttl: ttlSeconds, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// expired reports whether an entry created at createdAt is past its TTL.
func (s *Store) expired(createdAt int64) bool {
	if s.ttl == InfiniteTTL {
		return false
	}
	return s.now().Unix()-createdAt >= s.ttl
}

// Get unmarshals the cached value for key into out. It returns false on a
// miss, on an expired entry, or when the stored value does not fit out's
// shape; a malformed entry is purged so the next Set can replace it.
func (s *Store) Get(key string, out any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	var value string
	var createdAt int64
	err := s.db.QueryRow(`SELECT value, created_at FROM lookups WHERE key = ?`, key).
		Scan(&value, &createdAt)
	if err == sql.ErrNoRows {
		return false
	}
	if err != nil {
		log.WithError(err).WithField("key", key).Warn("cache read failed")
		return false
	}
	if s.expired(createdAt) {
		return false
	}

	if err := json.Unmarshal([]byte(value), out); err != nil {
		log.WithField("key", key).Warn("purging malformed cache entry")
		s.deleteLocked(key)
		return false
	}
	return true
}

// Set stores value under key, replacing any previous entry.
func (s *Store) Set(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache value for %s: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.Exec(
		`INSERT INTO lookups (key, value, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, created_at = excluded.created_at`,
		key, string(data), s.now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to write cache entry %s: %w", key, err)
	}
	return nil
}

// Delete removes the entry for key, if present.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteLocked(key)
}

func (s *Store) deleteLocked(key string) error {
	_, err := s.db.Exec(`DELETE FROM lookups WHERE key = ?`, key)
	return err
}

// Fetch returns the cached value for key, computing and caching it on a
// miss. Compute errors are not cached.
func Fetch[T any](s *Store, key string, compute func() (T, error)) (T, error) {
	var cached T
	if s.Get(key, &cached) {
		return cached, nil
	}

	value, err := compute()
	if err != nil {
		return value, err
	}
	if err := s.Set(key, value); err != nil {
		log.WithError(err).WithField("key", key).Warn("failed to cache computed value")
	}
	return value, nil
}

// Stats summarizes the cache contents by key prefix.
type Stats struct {
	Total      int            `json:"total"`
	Expired    int            `json:"expired"`
	ByCategory map[string]int `json:"by_category"`
	Oldest     time.Time      `json:"oldest,omitempty"`
	Newest     time.Time      `json:"newest,omitempty"`
}

var categories = []string{"ols", "ot", "enrichr", "pathway_analysis", "quickgo"}

func categorize(key string) string {
	for _, c := range categories {
		if strings.HasPrefix(key, c+"_") {
			return c
		}
	}
	return "other"
}

// AnalyzeStats walks every entry and tallies counts by service category.
func (s *Store) AnalyzeStats() (*Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT key, created_at FROM lookups`)
	if err != nil {
		return nil, fmt.Errorf("failed to scan cache: %w", err)
	}
	defer rows.Close()

	stats := &Stats{ByCategory: map[string]int{}}
	for rows.Next() {
		var key string
		var createdAt int64
		if err := rows.Scan(&key, &createdAt); err != nil {
			return nil, err
		}
		stats.Total++
		stats.ByCategory[categorize(key)]++
		if s.expired(createdAt) {
			stats.Expired++
		}
		t := time.Unix(createdAt, 0)
		if stats.Oldest.IsZero() || t.Before(stats.Oldest) {
			stats.Oldest = t
		}
		if t.After(stats.Newest) {
			stats.Newest = t
		}
	}
	return stats, rows.Err()
}

// ClearExpired deletes all expired entries and returns how many were removed.
func (s *Store) ClearExpired() (int64, error) {
	if s.ttl == InfiniteTTL {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.Exec(`DELETE FROM lookups WHERE ? - created_at >= ?`, s.now().Unix(), s.ttl)
	if err != nil {
		return 0, fmt.Errorf("failed to clear expired entries: %w", err)
	}
	return res.RowsAffected()
}
