package ngram

import "errors"

var (
	// ErrInvalidMinFrequency indicates a minimum frequency below 1.
	ErrInvalidMinFrequency = errors.New("minimum frequency must be at least 1")
)
