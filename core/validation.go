// Copyright 2026 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ValidateSeed validates a seed query before expansion.
//
// Validation rules:
//   - Query must contain at least one non-space character
//   - Query must be valid UTF-8
func ValidateSeed(query string) error {
	if strings.TrimSpace(query) == "" {
		return ErrEmptyInput
	}
	if !utf8.ValidString(query) {
		return fmt.Errorf("%w: query is not valid UTF-8", ErrEmptyInput)
	}
	return nil
}

// ValidateDepth validates an expansion depth. Zero means no expansion.
func ValidateDepth(depth int) error {
	if depth < 0 {
		return fmt.Errorf("%w: value %d", ErrInvalidDepth, depth)
	}
	return nil
}

// ValidatePhraseLength validates a maximum n-gram phrase length.
func ValidatePhraseLength(n int) error {
	if n < 1 {
		return fmt.Errorf("%w: value %d", ErrInvalidPhraseLength, n)
	}
	return nil
}

// ValidateCachedSuggestions validates a cache entry before it is stored.
func ValidateCachedSuggestions(entry *CachedSuggestions) error {
	if entry == nil {
		return fmt.Errorf("%w: cache entry is nil", ErrEmptyInput)
	}
	if strings.TrimSpace(entry.Query) == "" {
		return fmt.Errorf("%w: cache entry has no query", ErrEmptyInput)
	}
	return nil
}
