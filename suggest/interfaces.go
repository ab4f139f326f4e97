package suggest

import "context"

// Fetcher returns autocomplete suggestions for a query.
// Implementations must be thread-safe for concurrent use.
type Fetcher interface {
	// FetchSuggestions returns the suggestions for a normalized query
	// (see core.NormalizeQuery) in the order the service ranked them.
	// Returns an empty slice if the service has no suggestions.
	// Returns an error if the service could not be reached or answered badly.
	FetchSuggestions(ctx context.Context, query string) ([]string, error)
}

// FetcherFunc adapts an ordinary function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, query string) ([]string, error)

// FetchSuggestions calls f(ctx, query).
func (f FetcherFunc) FetchSuggestions(ctx context.Context, query string) ([]string, error) {
	return f(ctx, query)
}

// CacheReader is implemented by fetchers that can answer some queries from a
// local store without reaching the service. Callers that pace service calls
// can consult it first and skip the wait on a hit.
type CacheReader interface {
	// LookupSuggestions returns the stored suggestions for query and true,
	// or nil and false on a miss or lookup failure.
	LookupSuggestions(ctx context.Context, query string) ([]string, bool)
}
