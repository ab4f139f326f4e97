// Copyright 2026 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package expansion discovers related queries by breadth-first expansion of
// a seed query through a suggestion service.
//
// The Expander fetches the seed's suggestions and then runs a fixed number
// of rounds. Each round expands the frontier: every discovered query whose
// occurrence count is exactly one. Queries suggested by two or more parents
// are considered converged and are never expanded again. Counts accumulate
// across rounds in a Multiset that remembers first-insertion order, which is
// the order of the final query list.
//
// Fetches within a round run on a bounded worker pool and are paced by a
// shared ratelimit.Limiter. Results are merged in frontier order once the
// whole round has finished, so the output is identical to a sequential run
// regardless of pool size or completion order.
//
// A failed fetch for a frontier query is recorded and the round continues.
// A failed seed fetch is fatal. Cancelling the context stops the expansion
// and returns the partial result alongside ErrExpansionCancelled.
package expansion
