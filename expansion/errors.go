package expansion

import "errors"

var (
	// ErrFetcherRequired is returned when a suggestion fetcher is not provided.
	ErrFetcherRequired = errors.New("suggestion fetcher required")

	// ErrLimiterRequired is returned when a rate limiter is not provided.
	ErrLimiterRequired = errors.New("rate limiter required")

	// ErrExpansionCancelled is returned with a partial result when the
	// context is done before every round finished.
	ErrExpansionCancelled = errors.New("expansion cancelled")
)
