package suggest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/relsearch/core"
	"github.com/poiesic/relsearch/storage"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultCacheTTL is how long cached responses stay valid.
	DefaultCacheTTL = 24 * time.Hour

	// DefaultFlightTimeout bounds a shared fetch on a cache miss.
	DefaultFlightTimeout = 30 * time.Second
)

// CachedFetcher answers from a suggestion cache and falls back to the
// wrapped fetcher on a miss. Cache failures are logged and never surface
// to the caller. Failed fetches are not cached. Concurrent misses for the
// same query share one call to the wrapped fetcher.
type CachedFetcher struct {
	next     Fetcher
	cache    storage.SuggestionCache
	locale   string
	ttl      time.Duration
	inflight singleflight.Group
	timeout  time.Duration
	logger   *slog.Logger
}

var (
	_ Fetcher     = (*CachedFetcher)(nil)
	_ CacheReader = (*CachedFetcher)(nil)
)

// CacheOption configures a CachedFetcher.
type CacheOption func(*CachedFetcher) error

// WithTTL sets how long stored responses remain valid. Zero disables expiry.
func WithTTL(ttl time.Duration) CacheOption {
	return func(f *CachedFetcher) error {
		if ttl < 0 {
			ttl = 0
		}
		f.ttl = ttl
		return nil
	}
}

// WithFlightTimeout bounds the wrapped fetch shared by concurrent misses.
// Default is DefaultFlightTimeout.
func WithFlightTimeout(timeout time.Duration) CacheOption {
	return func(f *CachedFetcher) error {
		if timeout <= 0 {
			return fmt.Errorf("flight timeout must be positive, got %s", timeout)
		}
		f.timeout = timeout
		return nil
	}
}

// WithCacheLogger sets a custom logger.
func WithCacheLogger(logger *slog.Logger) CacheOption {
	return func(f *CachedFetcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		f.logger = logger.With("component", "suggestion-cache")
		return nil
	}
}

// NewCachedFetcher wraps next with cache. The locale partitions cache
// entries and should match the locale next queries with.
func NewCachedFetcher(next Fetcher, cache storage.SuggestionCache, locale string, opts ...CacheOption) (*CachedFetcher, error) {
	if next == nil {
		return nil, ErrFetcherRequired
	}
	if cache == nil {
		return nil, ErrCacheRequired
	}

	f := &CachedFetcher{
		next:    next,
		cache:   cache,
		locale:  locale,
		ttl:     DefaultCacheTTL,
		timeout: DefaultFlightTimeout,
		logger:  slog.Default().With("component", "suggestion-cache"),
	}
	for _, opt := range opts {
		if err := opt(f); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// LookupSuggestions implements CacheReader.
func (f *CachedFetcher) LookupSuggestions(ctx context.Context, query string) ([]string, bool) {
	entry, err := f.cache.GetSuggestions(ctx, f.locale, query)
	switch {
	case err == nil:
		f.logger.Debug("cache hit", "query", query, "count", len(entry.Suggestions))
		return entry.Suggestions, true
	case errors.Is(err, storage.ErrNotFound):
	default:
		f.logger.Warn("cache lookup failed", "query", query, "err", err)
	}
	return nil, false
}

// FetchSuggestions implements Fetcher.
//
// Misses run on a context detached from the caller and bounded by the flight
// timeout, so one caller giving up does not fail the others sharing the
// fetch. Each caller still stops waiting when its own ctx is done.
func (f *CachedFetcher) FetchSuggestions(ctx context.Context, query string) ([]string, error) {
	if suggestions, ok := f.LookupSuggestions(ctx, query); ok {
		return suggestions, nil
	}

	ch := f.inflight.DoChan(query, func() (any, error) {
		flightCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.timeout)
		defer cancel()
		return f.fetchAndStore(flightCtx, query)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}
	if res.Shared {
		f.logger.Debug("shared in-flight fetch", "query", query)
	}

	suggestions := res.Val.([]string)
	out := make([]string, len(suggestions))
	copy(out, suggestions)
	return out, nil
}

func (f *CachedFetcher) fetchAndStore(ctx context.Context, query string) ([]string, error) {
	suggestions, err := f.next.FetchSuggestions(ctx, query)
	if err != nil {
		return nil, err
	}

	putErr := f.cache.PutSuggestions(ctx, &core.CachedSuggestions{
		Query:       query,
		Locale:      f.locale,
		Suggestions: suggestions,
		FetchedAt:   time.Now().UTC(),
	}, f.ttl)
	if putErr != nil {
		f.logger.Warn("cache store failed", "query", query, "err", putErr)
	}

	return suggestions, nil
}
