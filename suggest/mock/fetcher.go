package mock

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNoResponse is returned for queries configured to fail without a specific error.
var ErrNoResponse = errors.New("mock fetcher: forced failure")

// MockFetcher is a test double for suggest.Fetcher.
// Responses are looked up by the exact query string the fetcher receives.
// It is safe for concurrent use.
type MockFetcher struct {
	// FetchFunc is called by FetchSuggestions if set.
	// If nil, Responses and Errors are consulted.
	FetchFunc func(ctx context.Context, query string) ([]string, error)

	// Delay is applied before every response and honors ctx cancellation.
	Delay time.Duration

	mu        sync.Mutex
	responses map[string][]string
	errs      map[string]error
	calls     []string
}

// NewMockFetcher creates a mock fetcher returning no suggestions for every query.
func NewMockFetcher() *MockFetcher {
	return &MockFetcher{
		responses: make(map[string][]string),
		errs:      make(map[string]error),
	}
}

// WithResponse registers the suggestions returned for query.
func (m *MockFetcher) WithResponse(query string, suggestions ...string) *MockFetcher {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[query] = suggestions
	return m
}

// WithError makes every fetch for query fail with err.
// A nil err fails with ErrNoResponse.
func (m *MockFetcher) WithError(query string, err error) *MockFetcher {
	if err == nil {
		err = ErrNoResponse
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[query] = err
	return m
}

// FetchSuggestions records the call and returns the configured response.
func (m *MockFetcher) FetchSuggestions(ctx context.Context, query string) ([]string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, query)
	fn := m.FetchFunc
	delay := m.Delay
	resp, hasResp := m.responses[query]
	err := m.errs[query]
	m.mu.Unlock()

	if delay > 0 {
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if fn != nil {
		return fn(ctx, query)
	}
	if err != nil {
		return nil, err
	}
	if !hasResp {
		return []string{}, nil
	}
	out := make([]string, len(resp))
	copy(out, resp)
	return out, nil
}

// CallCount returns the number of fetches issued.
func (m *MockFetcher) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Calls returns the queries fetched, in call order.
func (m *MockFetcher) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallsFor returns how many times query was fetched.
func (m *MockFetcher) CallsFor(query string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c == query {
			n++
		}
	}
	return n
}

// Reset clears recorded calls. Configured responses are kept.
func (m *MockFetcher) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}
