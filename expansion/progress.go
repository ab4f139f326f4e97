package expansion

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/poiesic/relsearch/core"
)

// ProgressTracker is a Monitor that reports expansion progress to a writer,
// one overwriting line per round.
type ProgressTracker struct {
	writer    io.Writer
	depth     int
	round     int
	total     int // Frontier size of the current round
	current   int
	failed    int
	startTime time.Time
	started   bool
	mu        sync.Mutex
}

var _ Monitor = (*ProgressTracker)(nil)

// NewProgressTracker creates a new progress tracker.
// writer: where to write progress output (typically os.Stderr)
func NewProgressTracker(writer io.Writer) *ProgressTracker {
	return &ProgressTracker{writer: writer}
}

// Start begins tracking progress.
func (p *ProgressTracker) Start(seed string, depth int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.startTime = time.Now()
	p.started = true
	p.depth = depth
	p.round = 0
	fmt.Fprintf(p.writer, "Expanding %q to depth %d\n", seed, depth)
}

// SeedFetched reports the seed's direct suggestions.
func (p *ProgressTracker) SeedFetched(suggestions []string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.writer, "Seed: %d suggestions\n", len(suggestions))
}

// StartRound resets the per-round counters.
func (p *ProgressTracker) StartRound(round int, frontier []string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.round = round
	p.total = len(frontier)
	p.current = 0
	p.failed = 0
	p.report()
}

// QueryExpanded counts a successful fetch.
func (p *ProgressTracker) QueryExpanded(_ int, _ string, _ []string) {
	p.increment(false)
}

// QueryFailed counts a failed fetch.
func (p *ProgressTracker) QueryFailed(_ int, _ string, _ error) {
	p.increment(true)
}

func (p *ProgressTracker) increment(failed bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}

	p.current++
	if p.current > p.total {
		p.current = p.total
	}
	if failed {
		p.failed++
	}
	p.report()
}

// FinishRound prints the final line for a round.
func (p *ProgressTracker) FinishRound(stats core.RoundStats) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = stats.Calls
	p.report()
	fmt.Fprintf(p.writer, " - %d new\n", stats.NewQueries)
}

// Finish prints the summary line.
func (p *ProgressTracker) Finish(result *core.Expansion) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}

	fmt.Fprintf(p.writer, "Done: %d queries, %d calls, %d failures (%s) in %s\n",
		len(result.Queries), result.Calls, len(result.Failures), result.Status,
		time.Since(p.startTime).Round(time.Millisecond))
}

// Elapsed returns the time elapsed since Start was called.
func (p *ProgressTracker) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return 0
	}

	return time.Since(p.startTime)
}

// report prints the current round progress. Must be called with lock held.
func (p *ProgressTracker) report() {
	elapsed := time.Since(p.startTime)
	rate := 0.0
	if elapsed > 0 {
		rate = float64(p.current) / elapsed.Seconds()
	}

	percentage := 100.0
	if p.total > 0 {
		percentage = float64(p.current) / float64(p.total) * 100.0
	}

	fmt.Fprintf(p.writer, "\rRound %d/%d: %d/%d (%.1f%%) - %d failed - %.1f queries/s",
		p.round, p.depth, p.current, p.total, percentage, p.failed, rate)
}
