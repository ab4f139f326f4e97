// Package mock provides a test double for suggest.Fetcher.
//
// # Usage in Tests
//
//	fetcher := mock.NewMockFetcher().
//	    WithResponse("python", "python tutorial", "python jobs").
//	    WithResponse("python+tutorial", "python tutorial for beginners").
//	    WithError("python+jobs", nil)
//
//	// Check call counts
//	count := fetcher.CallCount()
//
// Responses are keyed by the exact query received, which for the expansion
// engine is the normalized form produced by core.NormalizeQuery.
package mock
