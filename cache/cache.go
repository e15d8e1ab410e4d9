// Package cache memoizes CRDB responses in SQLite.
//
// Entries are keyed by request kind and URL. An entry older than the
// store's maximum age is treated as a miss and overwritten by the next Put.
package cache

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/crdb/errors"
	"github.com/teranos/crdb/logger"
)

// DefaultMaxAge is how long a cached response stays fresh.
const DefaultMaxAge = 30 * 24 * time.Hour

// Request kinds used in cache keys.
const (
	KindFetch = "fetch"
	KindAll   = "all"
)

// Store is a SQLite-backed response cache. The database must have the
// schema applied by db.Migrate.
type Store struct {
	db     *sql.DB
	maxAge time.Duration
	now    func() time.Time
	logger *zap.SugaredLogger
}

// Stats summarizes the cache contents.
type Stats struct {
	Entries int       `json:"entries" yaml:"entries"`
	Stale   int       `json:"stale" yaml:"stale"`
	Lines   int64     `json:"lines" yaml:"lines"`
	Bytes   int64     `json:"bytes" yaml:"bytes"`
	Oldest  time.Time `json:"oldest" yaml:"oldest"`
	Newest  time.Time `json:"newest" yaml:"newest"`
}

// New returns a store over db. A maxAge of zero or less means DefaultMaxAge.
// log may be nil.
func New(db *sql.DB, maxAge time.Duration, log *zap.SugaredLogger) *Store {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Store{db: db, maxAge: maxAge, now: time.Now, logger: log}
}

// Key builds the cache key for a request kind and URL.
func Key(kind, url string) string {
	return kind + ":" + url
}

// MaxAge returns the staleness threshold.
func (s *Store) MaxAge() time.Duration { return s.maxAge }

// Get returns the cached lines for key. Missing and stale entries fail with
// errors.ErrNotFound.
func (s *Store) Get(ctx context.Context, key string) ([]string, error) {
	var body string
	var fetchedAt int64
	err := s.db.QueryRowContext(ctx,
		"SELECT body, fetched_at FROM responses WHERE key = ?", key,
	).Scan(&body, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrapf(errors.ErrNotFound, "cache miss for %s", key)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read cache entry %s", key)
	}

	age := s.now().Sub(time.Unix(fetchedAt, 0))
	if age > s.maxAge {
		s.logger.Debugw("cache entry stale", logger.FieldKey, key, logger.FieldAge, age.Round(time.Second))
		return nil, errors.Wrapf(errors.ErrNotFound, "cache entry %s is stale", key)
	}
	return strings.Split(body, "\n"), nil
}

// Put stores lines under key, replacing any existing entry.
func (s *Store) Put(ctx context.Context, key, url string, lines []string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO responses (key, url, body, line_count, fetched_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			url = excluded.url,
			body = excluded.body,
			line_count = excluded.line_count,
			fetched_at = excluded.fetched_at`,
		key, url, strings.Join(lines, "\n"), len(lines), s.now().Unix())
	if err != nil {
		return errors.Wrapf(err, "write cache entry %s", key)
	}
	return nil
}

// Clear deletes every entry and reports how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM responses")
	if err != nil {
		return 0, errors.Wrap(err, "clear cache")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "clear cache")
	}
	s.logger.Infow("cache cleared", logger.FieldCount, n)
	return n, nil
}

// Stats reports entry counts, sizes and the fetch time range.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	cutoff := s.now().Add(-s.maxAge).Unix()

	var st Stats
	var oldest, newest sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN fetched_at < ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(line_count), 0),
			COALESCE(SUM(LENGTH(CAST(body AS BLOB))), 0),
			MIN(fetched_at),
			MAX(fetched_at)
		FROM responses`, cutoff,
	).Scan(&st.Entries, &st.Stale, &st.Lines, &st.Bytes, &oldest, &newest)
	if err != nil {
		return Stats{}, errors.Wrap(err, "read cache stats")
	}
	if oldest.Valid {
		st.Oldest = time.Unix(oldest.Int64, 0).UTC()
	}
	if newest.Valid {
		st.Newest = time.Unix(newest.Int64, 0).UTC()
	}
	return st, nil
}
