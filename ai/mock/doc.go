// Copyright 2025 Poiesic Systems
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

// Package mock provides test doubles for the ai interfaces.
//
// The mocks let tests run without an embedding service and give
// deterministic, controllable vectors.
//
// # Usage in Tests
//
//	// Deterministic vectors derived from a text hash
//	mockProvider := mock.NewMockProvider()
//	vector, err := mockProvider.Embedder().EmbedText(ctx, "test")
//
//	// Fixed vectors for chosen texts
//	mockEmbedder := mock.NewMockEmbedder().
//	    WithVector("python tutorial", []float32{1, 0}).
//	    WithVector("learn python", []float32{0.9, 0.1})
//
//	// Check call counts
//	count := mockEmbedder.CallCount()
package mock
