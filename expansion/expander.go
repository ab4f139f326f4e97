package expansion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/relsearch/core"
	"github.com/poiesic/relsearch/ratelimit"
	"github.com/poiesic/relsearch/suggest"
)

// DefaultCallTimeout bounds every individual suggestion fetch.
const DefaultCallTimeout = 10 * time.Second

// Expander runs depth-bounded, frequency-gated query expansion.
type Expander struct {
	fetcher     suggest.Fetcher
	limiter     ratelimit.Limiter
	pool        *ants.Pool
	workers     int
	callTimeout time.Duration
	logger      *slog.Logger
}

// Option configures an Expander.
type Option func(*Expander) error

// WithWorkers sets how many fetches of a round may run at once.
// Default is 1, which issues calls strictly one after another.
func WithWorkers(size int) Option {
	return func(e *Expander) error {
		if size < 1 {
			size = 1
		}

		// Release old pool
		if e.pool != nil {
			e.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		e.pool = pool
		e.workers = size
		return nil
	}
}

// WithCallTimeout bounds each suggestion fetch. An expired fetch counts as a
// failure for its query. Default is DefaultCallTimeout.
func WithCallTimeout(timeout time.Duration) Option {
	return func(e *Expander) error {
		if timeout <= 0 {
			return fmt.Errorf("call timeout must be positive, got %s", timeout)
		}
		e.callTimeout = timeout
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Expander) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// NewExpander creates an expander that fetches through fetcher and paces
// every call with limiter.
func NewExpander(fetcher suggest.Fetcher, limiter ratelimit.Limiter, opts ...Option) (*Expander, error) {
	if fetcher == nil {
		return nil, ErrFetcherRequired
	}
	if limiter == nil {
		return nil, ErrLimiterRequired
	}

	pool, err := ants.NewPool(1)
	if err != nil {
		return nil, err
	}

	e := &Expander{
		fetcher:     fetcher,
		limiter:     limiter,
		pool:        pool,
		workers:     1,
		callTimeout: DefaultCallTimeout,
		logger:      slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(e); optErr != nil {
			e.Release()
			return nil, optErr
		}
	}

	return e, nil
}

// Workers returns the worker pool size.
func (e *Expander) Workers() int {
	return e.workers
}

// Release releases the worker pool.
// The expander should not be used after calling Release.
func (e *Expander) Release() {
	if e.pool != nil {
		e.pool.Release()
	}
}

// Expand discovers queries related to seed over depth rounds.
// Depth 0 returns only the seed's direct suggestions.
func (e *Expander) Expand(ctx context.Context, seed string, depth int) (*core.Expansion, error) {
	return e.ExpandWithMonitor(ctx, seed, depth, nil)
}

// fetchResult is the outcome of one frontier fetch.
type fetchResult struct {
	attempted   bool // false if cancelled before the call was issued
	suggestions []string
	err         error
}

// ExpandWithMonitor is Expand with progress callbacks.
//
// A failed seed fetch returns a nil expansion and an error wrapping
// core.ErrCollaboratorUnavailable. If ctx is done mid-way, the queries
// accumulated so far are returned with StatusPartial together with an error
// wrapping ErrExpansionCancelled.
func (e *Expander) ExpandWithMonitor(ctx context.Context, seed string, depth int, monitor Monitor) (*core.Expansion, error) {
	if err := core.ValidateSeed(seed); err != nil {
		return nil, err
	}
	if err := core.ValidateDepth(depth); err != nil {
		return nil, err
	}
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	seed = core.NormalizeQuery(seed)
	monitor.Start(seed, depth)
	logger := e.logger.With("seed", seed)

	// Pacing state is per run, so the seed fetch never waits
	limiter := ratelimit.ForRun(e.limiter)

	// 1. Seed fetch; nothing to expand without it
	seedResult := e.fetch(ctx, limiter, seed)
	if seedResult.err != nil {
		logger.Error("seed fetch failed", "err", seedResult.err)
		return nil, fmt.Errorf("%w: seed %q: %w", core.ErrCollaboratorUnavailable, seed, seedResult.err)
	}
	monitor.SeedFetched(seedResult.suggestions)

	set := NewMultiset()
	set.AddAll(seedResult.suggestions)

	result := &core.Expansion{
		Seed:   seed,
		Depth:  depth,
		Calls:  1,
		Status: core.StatusComplete,
	}

	// 2. Rounds
	for round := 1; round <= depth; round++ {
		if err := ctx.Err(); err != nil {
			return e.cancelled(result, set, monitor, err)
		}

		frontier := set.Frontier()
		monitor.StartRound(round, frontier)
		started := time.Now()

		results := e.expandFrontier(ctx, limiter, round, frontier, monitor)

		// Merge after the barrier, in frontier order
		stats := core.RoundStats{Round: round, FrontierSize: len(frontier)}
		for i, r := range results {
			if !r.attempted {
				continue
			}
			stats.Calls++
			if r.err != nil {
				// Calls aborted by cancellation are not per-query failures
				if ctx.Err() != nil && errors.Is(r.err, ctx.Err()) {
					continue
				}
				stats.Failures++
				result.Failures = append(result.Failures, core.FetchFailure{
					Query: frontier[i],
					Round: round,
					Err:   r.err,
				})
				continue
			}
			stats.NewQueries += set.AddAll(r.suggestions)
		}
		stats.Elapsed = time.Since(started)

		result.Calls += stats.Calls
		result.Rounds = append(result.Rounds, stats)
		monitor.FinishRound(stats)
		logger.Debug("round finished",
			"round", round,
			"frontier", stats.FrontierSize,
			"calls", stats.Calls,
			"failures", stats.Failures,
			"new", stats.NewQueries,
			"elapsed", stats.Elapsed)

		if err := ctx.Err(); err != nil {
			return e.cancelled(result, set, monitor, err)
		}
	}

	// 3. Distinct keys in first-insertion order
	e.finish(result, set)
	monitor.Finish(result)
	logger.Info("expansion finished",
		"depth", depth,
		"queries", len(result.Queries),
		"calls", result.Calls,
		"failures", len(result.Failures),
		"status", result.Status)
	return result, nil
}

// expandFrontier fetches every frontier query on the pool and waits for all
// of them. Results are indexed by frontier position.
func (e *Expander) expandFrontier(ctx context.Context, limiter ratelimit.Limiter, round int, frontier []string, monitor Monitor) []fetchResult {
	results := make([]fetchResult, len(frontier))
	var wg sync.WaitGroup

	for i, query := range frontier {
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)
		err := e.pool.Submit(func() {
			defer wg.Done()
			r := e.fetch(ctx, limiter, query)
			results[i] = r
			if !r.attempted {
				return
			}
			if r.err != nil {
				e.logger.Warn("suggestion fetch failed", "round", round, "query", query, "err", r.err)
				monitor.QueryFailed(round, query, r.err)
				return
			}
			monitor.QueryExpanded(round, query, r.suggestions)
		})
		if err != nil {
			wg.Done()
			e.logger.Error("error submitting fetch", "query", query, "err", err)
			results[i] = fetchResult{attempted: true, err: err}
			monitor.QueryFailed(round, query, err)
		}
	}

	wg.Wait()
	return results
}

// fetch issues a single bounded fetch. Answers a cache-backed fetcher can give
// locally skip the limiter; everything else waits for it first.
func (e *Expander) fetch(ctx context.Context, limiter ratelimit.Limiter, query string) fetchResult {
	if reader, ok := e.fetcher.(suggest.CacheReader); ok {
		if suggestions, hit := reader.LookupSuggestions(ctx, core.NormalizeQuery(query)); hit {
			return fetchResult{attempted: true, suggestions: suggestions}
		}
	}

	if err := limiter.Wait(ctx); err != nil {
		return fetchResult{err: err}
	}

	callCtx, cancel := context.WithTimeout(ctx, e.callTimeout)
	defer cancel()

	suggestions, err := e.fetcher.FetchSuggestions(callCtx, core.NormalizeQuery(query))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			err = fmt.Errorf("%w: timed out after %s: %w", core.ErrCollaboratorUnavailable, e.callTimeout, err)
		}
		return fetchResult{attempted: true, err: err}
	}
	return fetchResult{attempted: true, suggestions: suggestions}
}

func (e *Expander) finish(result *core.Expansion, set *Multiset) {
	result.Queries = set.Keys()
	result.Counts = set.Counts()
	if len(result.Failures) > 0 {
		result.Status = core.StatusPartial
	}
}

func (e *Expander) cancelled(result *core.Expansion, set *Multiset, monitor Monitor, cause error) (*core.Expansion, error) {
	e.finish(result, set)
	result.Status = core.StatusPartial
	result.Err = cause
	monitor.Finish(result)
	e.logger.Warn("expansion cancelled, returning partial result",
		"seed", result.Seed,
		"rounds", len(result.Rounds),
		"queries", len(result.Queries),
		"err", cause)
	return result, fmt.Errorf("%w: %w", ErrExpansionCancelled, cause)
}
