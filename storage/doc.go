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


// Package storage provides the storage abstraction layer for relsearch.
//
// Expansion and analysis keep no state between invocations. The only
// persisted data is an optional cache of suggestion responses, which lets
// repeated expansions of overlapping seeds avoid calling the suggestion
// service again within the cache lifetime.
//
// # Constructor Return Type Pattern
//
// Public constructors in implementation packages return interface types:
//
//	cache, err := badger.NewSuggestionCache(backend)  // returns storage.SuggestionCache
//
// This keeps callers independent of BadgerDB specifics and lets tests use
// in-memory or mock caches without modification.
//
// # Usage
//
//	backend, err := badger.OpenBackend("/path/to/cache", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
//	cache, err := badger.NewSuggestionCache(backend)
//
// Use in tests with in-memory storage:
//
//	cache, backend, err := badger.NewMemorySuggestionCache()
//
// # Thread Safety
//
// All cache implementations must be thread-safe and support concurrent
// access from multiple goroutines, since expansion workers share one cache.
package storage
