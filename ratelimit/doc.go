// Package ratelimit paces calls to external services.
//
// A Limiter is shared by every worker that talks to the same service. Wait
// blocks until the caller may issue its next call or the context is done.
//
//   - Jitter spaces consecutive calls by a random interval drawn uniformly
//     from [Min, Max]. The first call of a limiter's lifetime is never delayed.
//   - TokenBucket enforces a steady request rate with a burst allowance.
//   - Nop never waits and is intended for tests.
package ratelimit
