package suggest

import "errors"

var (
	// ErrFetcherRequired is returned when a wrapped fetcher is not provided.
	ErrFetcherRequired = errors.New("fetcher required")

	// ErrCacheRequired is returned when a suggestion cache is not provided.
	ErrCacheRequired = errors.New("suggestion cache required")

	// ErrInvalidLocale is returned when a locale is not a valid BCP 47 tag.
	ErrInvalidLocale = errors.New("invalid locale")

	// ErrUnexpectedStatus is returned when the service answers with a non-2xx status.
	ErrUnexpectedStatus = errors.New("unexpected status")

	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")
)
