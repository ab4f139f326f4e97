package badger

import (
	"encoding/binary"

	"github.com/poiesic/relsearch/core"
)

// Key prefixes for different data types
const (
	suggestionPrefix = "sugg"
)

// makeSuggestionKey generates a key for a cached suggestion response.
// Format: prefix:cacheKey
func makeSuggestionKey(locale, query string) []byte {
	prefix := []byte(suggestionPrefix + ":")
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(core.CacheKey(locale, query)))
	return buf
}
