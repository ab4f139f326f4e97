package ratelimit

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter blocks callers so that calls to a shared service are paced.
// Implementations must be safe for concurrent use.
type Limiter interface {
	// Wait blocks until the next call may proceed.
	// Returns the context error if ctx is done first.
	Wait(ctx context.Context) error
}

// Sessioner is implemented by limiters whose pacing state belongs to a single
// run. Session returns a limiter with the same settings and fresh state.
type Sessioner interface {
	Session() Limiter
}

// ForRun returns the limiter one run should wait on: a fresh session when l
// supports it, otherwise l itself.
func ForRun(l Limiter) Limiter {
	if s, ok := l.(Sessioner); ok {
		return s.Session()
	}
	return l
}

const (
	// DefaultMinDelay is the lower bound of the default jitter range.
	DefaultMinDelay = 1 * time.Second
	// DefaultMaxDelay is the upper bound of the default jitter range.
	DefaultMaxDelay = 6 * time.Second
)

// Jitter spaces calls by a uniformly random delay in [min, max].
// The first Wait returns immediately; every later Wait reserves the slot
// max(now, previous slot) + delay, so concurrent callers queue up behind
// each other instead of firing together.
type Jitter struct {
	min, max time.Duration

	mu      sync.Mutex
	rng     *rand.Rand
	started bool
	last    time.Time
	now     func() time.Time
}

var (
	_ Limiter   = (*Jitter)(nil)
	_ Sessioner = (*Jitter)(nil)
)

// JitterOption configures a Jitter limiter.
type JitterOption func(*Jitter)

// WithRand sets the random source used to draw delays.
func WithRand(rng *rand.Rand) JitterOption {
	return func(j *Jitter) {
		if rng != nil {
			j.rng = rng
		}
	}
}

// NewJitter creates a jitter limiter with delays in [min, max].
func NewJitter(min, max time.Duration, opts ...JitterOption) (*Jitter, error) {
	if min < 0 || max < min {
		return nil, fmt.Errorf("%w: min=%s max=%s", ErrInvalidBounds, min, max)
	}
	j := &Jitter{
		min: min,
		max: max,
		rng: rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x9e3779b97f4a7c15)),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j, nil
}

// DefaultJitter returns a jitter limiter using DefaultMinDelay and DefaultMaxDelay.
func DefaultJitter() *Jitter {
	j, _ := NewJitter(DefaultMinDelay, DefaultMaxDelay)
	return j
}

// Session returns a new Jitter with the same bounds whose first Wait is free
// again. Its random source is seeded from j's.
func (j *Jitter) Session() Limiter {
	j.mu.Lock()
	seed1, seed2 := j.rng.Uint64(), j.rng.Uint64()
	j.mu.Unlock()

	return &Jitter{
		min: j.min,
		max: j.max,
		rng: rand.New(rand.NewPCG(seed1, seed2)),
		now: j.now,
	}
}

// Bounds returns the configured delay range.
func (j *Jitter) Bounds() (time.Duration, time.Duration) {
	return j.min, j.max
}

// Wait implements Limiter.
func (j *Jitter) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	delay := j.reserve()
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// reserve claims the next slot and returns how long the caller must sleep.
func (j *Jitter) reserve() time.Duration {
	j.mu.Lock()
	defer j.mu.Unlock()

	now := j.now()
	if !j.started {
		j.started = true
		j.last = now
		return 0
	}

	base := j.last
	if now.After(base) {
		base = now
	}
	slot := base.Add(j.draw())
	j.last = slot
	return slot.Sub(now)
}

// draw returns a delay in [min, max]. Must be called with lock held.
func (j *Jitter) draw() time.Duration {
	span := j.max - j.min
	if span <= 0 {
		return j.min
	}
	return j.min + time.Duration(j.rng.Int64N(int64(span)+1))
}

// TokenBucket paces calls to a steady rate with a burst allowance.
type TokenBucket struct {
	limiter *rate.Limiter
}

var _ Limiter = (*TokenBucket)(nil)

// NewTokenBucket creates a limiter allowing perSecond calls per second on
// average and up to burst calls at once.
func NewTokenBucket(perSecond float64, burst int) (*TokenBucket, error) {
	if perSecond <= 0 || burst < 1 {
		return nil, fmt.Errorf("%w: rate=%g burst=%d", ErrInvalidRate, perSecond, burst)
	}
	return &TokenBucket{limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}, nil
}

// Wait implements Limiter.
func (t *TokenBucket) Wait(ctx context.Context) error {
	return t.limiter.Wait(ctx)
}

// Nop is a Limiter that never waits.
type Nop struct{}

var _ Limiter = Nop{}

// Wait implements Limiter. It only reports context cancellation.
func (Nop) Wait(ctx context.Context) error {
	return ctx.Err()
}
