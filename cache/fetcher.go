package cache

import (
	"context"
	"time"

	"github.com/teranos/crdb/errors"
	"github.com/teranos/crdb/logger"
)

// Fetcher retrieves the response lines for a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string, timeout time.Duration) ([]string, error)
}

// CachedFetcher memoizes a Fetcher in a Store.
type CachedFetcher struct {
	store *Store
	next  Fetcher
	kind  string
}

// Wrap returns a fetcher that answers from store when a fresh entry exists
// and otherwise delegates to next, caching successful responses. Cache
// read and write failures are logged and never fail the fetch.
func Wrap(store *Store, next Fetcher) *CachedFetcher {
	return WrapKind(store, next, KindFetch)
}

// WrapKind is Wrap with a custom request kind in the cache key.
func WrapKind(store *Store, next Fetcher, kind string) *CachedFetcher {
	return &CachedFetcher{store: store, next: next, kind: kind}
}

// Fetch implements Fetcher.
func (c *CachedFetcher) Fetch(ctx context.Context, url string, timeout time.Duration) ([]string, error) {
	key := Key(c.kind, url)
	log := logger.FromContext(ctx, c.store.logger)

	lines, err := c.store.Get(ctx, key)
	switch {
	case err == nil:
		log.Debugw("cache hit", logger.FieldKey, key, logger.FieldCacheHit, true)
		return lines, nil
	case !errors.IsNotFoundError(err):
		log.Warnw("cache read failed", logger.FieldKey, key, logger.FieldError, err)
	}

	lines, err = c.next.Fetch(ctx, url, timeout)
	if err != nil {
		return nil, err
	}
	if err := c.store.Put(ctx, key, url, lines); err != nil {
		log.Warnw("cache write failed", logger.FieldKey, key, logger.FieldError, err)
	}
	log.Debugw("cache miss", logger.FieldKey, key, logger.FieldCacheHit, false)
	return lines, nil
}
