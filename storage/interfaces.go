package storage

import (
	"context"
	"time"

	"github.com/poiesic/relsearch/core"
)

// SuggestionCache persists suggestion responses so repeated expansions do not
// call the suggestion service again within the cache lifetime.
// Implementations must be thread-safe and support concurrent access.
type SuggestionCache interface {
	// GetSuggestions returns the cached response for a locale and query.
	// Returns ErrNotFound if nothing is cached or the entry expired.
	GetSuggestions(ctx context.Context, locale, query string) (*core.CachedSuggestions, error)

	// PutSuggestions stores a response. Entries expire after ttl; a ttl of
	// zero stores the entry without expiry.
	PutSuggestions(ctx context.Context, entry *core.CachedSuggestions, ttl time.Duration) error

	// Purge removes every cached response and returns how many were removed.
	Purge(ctx context.Context) (int, error)

	// Close releases resources held by the cache.
	Close() error
}
