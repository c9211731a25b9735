// Package cache is a small SQLite-backed response cache so repeated
// builds do not refetch the same county tract data from TIGERweb.
package cache

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS fetch_cache (
    id         TEXT PRIMARY KEY,
    key        TEXT NOT NULL UNIQUE,
    body       BLOB NOT NULL,
    created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_fetch_cache_created ON fetch_cache(created_at);
`

// Cache stores raw response bodies keyed by request, with a TTL.
type Cache struct {
	db  *sql.DB
	ttl time.Duration
}

// Open opens or creates the cache database at path.
func Open(path string, ttl time.Duration) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "cache: open")
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "cache: %s", pragma)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "cache: create schema")
	}

	return &Cache{db: db, ttl: ttl}, nil
}

// Get returns the cached body for key. Entries older than the TTL are
// treated as misses and removed.
func (c *Cache) Get(key string) ([]byte, bool, error) {
	var body []byte
	var createdAt time.Time
	err := c.db.QueryRow(
		"SELECT body, created_at FROM fetch_cache WHERE key = ?", key,
	).Scan(&body, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, eris.Wrap(err, "cache: get")
	}

	if c.ttl > 0 && time.Since(createdAt) > c.ttl {
		if _, err := c.db.Exec("DELETE FROM fetch_cache WHERE key = ?", key); err != nil {
			return nil, false, eris.Wrap(err, "cache: evict expired")
		}
		return nil, false, nil
	}
	return body, true, nil
}

// Put stores body under key, replacing any previous entry.
func (c *Cache) Put(key string, body []byte) error {
	_, err := c.db.Exec(
		`INSERT INTO fetch_cache (id, key, body, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET body = excluded.body, created_at = excluded.created_at`,
		uuid.NewString(), key, body, time.Now().UTC(),
	)
	if err != nil {
		return eris.Wrap(err, "cache: put")
	}
	return nil
}

// Purge removes all expired entries and reports how many went.
func (c *Cache) Purge() (int64, error) {
	if c.ttl <= 0 {
		return 0, nil
	}
	res, err := c.db.Exec(
		"DELETE FROM fetch_cache WHERE created_at < ?", time.Now().UTC().Add(-c.ttl),
	)
	if err != nil {
		return 0, eris.Wrap(err, "cache: purge")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, eris.Wrap(err, "cache: purge rows")
	}
	return n, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}
