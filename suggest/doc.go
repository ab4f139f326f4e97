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


// Package suggest fetches autocomplete suggestions for search queries.
//
// The expansion engine depends only on the Fetcher interface. This package
// provides:
//
//   - GoogleClient: queries the public autocomplete endpoint in toolbar
//     format and extracts suggestion strings from the response markup
//   - CachedFetcher: wraps any Fetcher with a storage.SuggestionCache so
//     repeated queries are answered locally within the cache lifetime
//   - suggest/mock: a call-counting test double
//
// Retry policy belongs here rather than in the expansion engine.
// GoogleClient retries failed requests with exponential backoff when
// configured with WithRetries; by default each query is attempted once.
//
// # Usage Example
//
//	client, err := suggest.NewGoogleClient(suggest.WithLocale("en"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	suggestions, err := client.FetchSuggestions(ctx, core.NormalizeQuery("seo tools"))
package suggest
