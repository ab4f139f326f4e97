package expansion

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/poiesic/relsearch/core"
	"github.com/poiesic/relsearch/suggest/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressTracker_Lines(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressTracker(&buf)

	p.Start("python", 1)
	p.SeedFetched([]string{"python tutorial", "python jobs"})
	p.StartRound(1, []string{"python tutorial", "python jobs"})
	p.QueryExpanded(1, "python tutorial", []string{"python tutorial for beginners"})
	p.QueryFailed(1, "python jobs", assert.AnError)
	p.FinishRound(core.RoundStats{Round: 1, FrontierSize: 2, Calls: 2, Failures: 1, NewQueries: 1})
	p.Finish(&core.Expansion{
		Queries:  []string{"python tutorial", "python jobs", "python tutorial for beginners"},
		Calls:    3,
		Failures: []core.FetchFailure{{Query: "python jobs", Round: 1}},
		Status:   core.StatusPartial,
	})

	out := buf.String()
	assert.Contains(t, out, `Expanding "python" to depth 1`)
	assert.Contains(t, out, "Seed: 2 suggestions")
	assert.Contains(t, out, "\rRound 1/1: 0/2 (0.0%)")
	assert.Contains(t, out, "\rRound 1/1: 2/2 (100.0%) - 1 failed")
	assert.Contains(t, out, " - 1 new\n")
	assert.Contains(t, out, "Done: 3 queries, 3 calls, 1 failures (partial)")
}

func TestProgressTracker_IgnoresEventsBeforeStart(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressTracker(&buf)

	p.QueryExpanded(1, "q", nil)
	p.Finish(&core.Expansion{})

	assert.Empty(t, buf.String())
	assert.Zero(t, p.Elapsed())
}

func TestProgressTracker_AsMonitor(t *testing.T) {
	fetcher := mock.NewMockFetcher().
		WithResponse("python", "python tutorial", "python jobs")
	e := newTestExpander(t, fetcher)

	var buf bytes.Buffer
	p := NewProgressTracker(&buf)

	_, err := e.ExpandWithMonitor(context.Background(), "python", 1, p)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "Done: 2 queries, 3 calls, 0 failures (complete)")
	assert.Greater(t, p.Elapsed(), time.Duration(0))
}
