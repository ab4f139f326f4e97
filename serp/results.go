package serp

import "context"

// Result is one organic search result.
type Result struct {
	Rank        int // 1-based position across all pages
	Title       string
	Snippet     string
	Link        string
	DisplayLink string
}

// ResultSet is the ranked organic results for one query.
type ResultSet struct {
	Query        string
	TotalResults int64 // Estimate reported by the API
	Results      []Result
}

// Titles returns the result titles in rank order.
func (r *ResultSet) Titles() []string {
	out := make([]string, 0, len(r.Results))
	for _, res := range r.Results {
		out = append(out, res.Title)
	}
	return out
}

// Snippets returns the result snippets in rank order.
func (r *ResultSet) Snippets() []string {
	out := make([]string, 0, len(r.Results))
	for _, res := range r.Results {
		out = append(out, res.Snippet)
	}
	return out
}

// Searcher fetches organic results.
type Searcher interface {
	Search(ctx context.Context, query string) (*ResultSet, error)
}
