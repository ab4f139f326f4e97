package expansion

import (
	"strings"

	"github.com/poiesic/relsearch/core"
)

// Multiset counts query occurrences and remembers first-insertion order.
// Queries are keyed by their normalized form; the first spelling seen is
// kept for output. It is not safe for concurrent use.
type Multiset struct {
	counts  map[string]int
	display map[string]string
	order   []string // normalized keys in first-insertion order
}

// NewMultiset creates an empty multiset.
func NewMultiset() *Multiset {
	return &Multiset{
		counts:  make(map[string]int),
		display: make(map[string]string),
	}
}

// Add increments the count for query and reports whether it was new.
// Blank queries are ignored.
func (m *Multiset) Add(query string) bool {
	query = strings.TrimSpace(query)
	key := core.NormalizeQuery(query)
	if key == "" {
		return false
	}

	m.counts[key]++
	if m.counts[key] > 1 {
		return false
	}
	m.display[key] = query
	m.order = append(m.order, key)
	return true
}

// AddAll adds every query in order and returns how many were new.
// Duplicates within queries increment the same key.
func (m *Multiset) AddAll(queries []string) int {
	added := 0
	for _, q := range queries {
		if m.Add(q) {
			added++
		}
	}
	return added
}

// Count returns the occurrence count for query, or 0 if absent.
func (m *Multiset) Count(query string) int {
	return m.counts[core.NormalizeQuery(query)]
}

// Len returns the number of distinct queries.
func (m *Multiset) Len() int {
	return len(m.order)
}

// Keys returns the distinct queries in first-insertion order.
func (m *Multiset) Keys() []string {
	keys := make([]string, len(m.order))
	for i, k := range m.order {
		keys[i] = m.display[k]
	}
	return keys
}

// Frontier returns the queries whose count is exactly one, in first-insertion order.
func (m *Multiset) Frontier() []string {
	var frontier []string
	for _, k := range m.order {
		if m.counts[k] == 1 {
			frontier = append(frontier, m.display[k])
		}
	}
	return frontier
}

// Counts returns a copy of the counts keyed by output spelling.
func (m *Multiset) Counts() map[string]int {
	out := make(map[string]int, len(m.counts))
	for _, k := range m.order {
		out[m.display[k]] = m.counts[k]
	}
	return out
}
