package ratelimit

import (
	"context"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJitter_InvalidBounds(t *testing.T) {
	_, err := NewJitter(-time.Second, time.Second)
	assert.ErrorIs(t, err, ErrInvalidBounds)

	_, err = NewJitter(2*time.Second, time.Second)
	assert.ErrorIs(t, err, ErrInvalidBounds)
}

func TestDefaultJitter_Bounds(t *testing.T) {
	min, max := DefaultJitter().Bounds()
	assert.Equal(t, time.Second, min)
	assert.Equal(t, 6*time.Second, max)
}

func TestJitter_FirstWaitIsImmediate(t *testing.T) {
	j, err := NewJitter(time.Hour, time.Hour)
	require.NoError(t, err)

	start := time.Now()
	require.NoError(t, j.Wait(context.Background()))
	assert.Less(t, time.Since(start), 100*time.Millisecond, "first call must not be delayed")
}

func TestJitter_ReserveWithinBounds(t *testing.T) {
	j, err := NewJitter(time.Second, 6*time.Second, WithRand(rand.New(rand.NewPCG(1, 2))))
	require.NoError(t, err)

	now := time.Unix(1000, 0)
	j.now = func() time.Time { return now }

	assert.Equal(t, time.Duration(0), j.reserve(), "first reservation is free")

	for i := 0; i < 50; i++ {
		// Advance past the previous slot so each delay is measured from now
		now = j.last.Add(time.Millisecond)
		delay := j.reserve()
		assert.GreaterOrEqual(t, delay, time.Second)
		assert.LessOrEqual(t, delay, 6*time.Second)
	}
}

func TestJitter_ConcurrentReservationsQueue(t *testing.T) {
	j, err := NewJitter(time.Second, time.Second)
	require.NoError(t, err)

	now := time.Unix(1000, 0)
	j.now = func() time.Time { return now }

	j.reserve()
	// Three callers arriving at the same instant get consecutive slots
	assert.Equal(t, 1*time.Second, j.reserve())
	assert.Equal(t, 2*time.Second, j.reserve())
	assert.Equal(t, 3*time.Second, j.reserve())
}

func TestJitter_DeterministicWithSeed(t *testing.T) {
	draws := func() []time.Duration {
		j, err := NewJitter(time.Second, 6*time.Second, WithRand(rand.New(rand.NewPCG(7, 7))))
		require.NoError(t, err)
		now := time.Unix(0, 0)
		j.now = func() time.Time { return now }
		j.reserve()
		var out []time.Duration
		for i := 0; i < 10; i++ {
			now = j.last
			out = append(out, j.reserve())
		}
		return out
	}
	assert.Equal(t, draws(), draws())
}

func TestJitter_ZeroRange(t *testing.T) {
	j, err := NewJitter(0, 0)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, j.Wait(context.Background()))
		}()
	}
	wg.Wait()
}

func TestJitter_WaitHonorsContext(t *testing.T) {
	j, err := NewJitter(time.Hour, time.Hour)
	require.NoError(t, err)
	require.NoError(t, j.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err = j.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestJitter_ShortDelaysSleep(t *testing.T) {
	j, err := NewJitter(10*time.Millisecond, 20*time.Millisecond)
	require.NoError(t, err)

	require.NoError(t, j.Wait(context.Background()))
	start := time.Now()
	require.NoError(t, j.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 9*time.Millisecond)
}

func TestNewTokenBucket_Invalid(t *testing.T) {
	_, err := NewTokenBucket(0, 1)
	assert.ErrorIs(t, err, ErrInvalidRate)

	_, err = NewTokenBucket(1, 0)
	assert.ErrorIs(t, err, ErrInvalidRate)
}

func TestTokenBucket_BurstIsImmediate(t *testing.T) {
	tb, err := NewTokenBucket(1, 3)
	require.NoError(t, err)

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, tb.Wait(context.Background()))
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestTokenBucket_WaitHonorsContext(t *testing.T) {
	tb, err := NewTokenBucket(0.001, 1)
	require.NoError(t, err)
	require.NoError(t, tb.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, tb.Wait(ctx))
}

func TestNop(t *testing.T) {
	assert.NoError(t, Nop{}.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Nop{}.Wait(ctx), context.Canceled)
}

func TestJitter_SessionFirstWaitIsFree(t *testing.T) {
	j, err := NewJitter(time.Hour, time.Hour)
	require.NoError(t, err)
	ctx := context.Background()

	// Spend the parent's free call
	require.NoError(t, j.Wait(ctx))

	session := ForRun(j)
	require.NotSame(t, j, session)
	assert.Zero(t, session.(*Jitter).reserve())

	lo, hi := session.(*Jitter).Bounds()
	assert.Equal(t, time.Hour, lo)
	assert.Equal(t, time.Hour, hi)

	// Sessions do not disturb the parent
	assert.Equal(t, time.Hour, j.reserve())
}

func TestForRun_StatelessLimitersPassThrough(t *testing.T) {
	tb, err := NewTokenBucket(1, 1)
	require.NoError(t, err)
	assert.Same(t, tb, ForRun(tb))
	assert.Equal(t, Nop{}, ForRun(Nop{}))
}
