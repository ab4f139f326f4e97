package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for stored entities.
// It is generated using content-based hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// NormalizeQuery trims leading and trailing whitespace and replaces every
// internal space with a literal '+', the form sent to suggestion services.
// Two queries are equal iff their normalized forms match.
func NormalizeQuery(query string) string {
	return strings.ReplaceAll(strings.TrimSpace(query), " ", "+")
}

// Status reports how completely an expansion ran.
type Status int

const (
	// StatusComplete means every round ran and every fetch succeeded.
	StatusComplete Status = iota + 1
	// StatusPartial means some fetches failed or the run was cancelled.
	StatusPartial
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case StatusComplete:
		return "complete"
	case StatusPartial:
		return "partial"
	default:
		return "unknown"
	}
}

// FetchFailure records a suggestion fetch that failed during expansion.
// The failed query contributed no suggestions for its round.
type FetchFailure struct {
	Query string
	Round int
	Err   error
}

// RoundStats summarizes a single expansion round.
type RoundStats struct {
	Round        int // 1-based
	FrontierSize int // Number of queries eligible for expansion (count == 1)
	Calls        int // Fetches actually issued
	Failures     int
	NewQueries   int // Keys first inserted during this round
	Elapsed      time.Duration
}

// Expansion is the result of expanding a seed query.
type Expansion struct {
	Seed     string         // Normalized seed query
	Depth    int            // Requested number of rounds
	Queries  []string       // Distinct related queries in first-insertion order
	Counts   map[string]int // Occurrence count per query
	Rounds   []RoundStats   // One entry per completed or interrupted round
	Failures []FetchFailure
	Calls    int // Total fetches issued, including the seed fetch
	Status   Status
	Err      error // Cause of a partial result, if any
}

// Partial reports whether the expansion is incomplete.
func (e *Expansion) Partial() bool {
	return e.Status == StatusPartial
}

// NGramRecord is a phrase with its raw and length-weighted frequency.
type NGramRecord struct {
	Phrase            string
	Length            int     // Number of words in Phrase
	AbsoluteFrequency int     // Raw occurrence count across the corpus
	WeightedFrequency float64 // AbsoluteFrequency * Length^2
}

// WeightFor returns the weighted frequency for a phrase of the given length.
func WeightFor(absolute, length int) float64 {
	return float64(absolute) * float64(length*length)
}

// CachedSuggestions is a suggestion response persisted by a suggestion cache.
type CachedSuggestions struct {
	Query       string
	Locale      string
	Suggestions []string
	FetchedAt   time.Time
}

// CacheKey returns the content key identifying a cached response.
func CacheKey(locale, query string) ID {
	return IDFromContent(locale + "\x00" + NormalizeQuery(query))
}
