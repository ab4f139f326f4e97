package ratelimit

import "errors"

var (
	// ErrInvalidBounds is returned when a jitter range is negative or inverted.
	ErrInvalidBounds = errors.New("invalid delay bounds")

	// ErrInvalidRate is returned when a token bucket rate or burst is not positive.
	ErrInvalidRate = errors.New("invalid rate")
)
