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


package core

import "errors"

// Domain errors
var (
	// ErrCollaboratorUnavailable indicates a suggestion or results call failed
	// because of a network error, timeout or bad response.
	ErrCollaboratorUnavailable = errors.New("collaborator unavailable")

	// ErrEmptyInput indicates the seed query is blank.
	ErrEmptyInput = errors.New("query cannot be empty")

	// ErrInvalidDepth indicates a negative expansion depth.
	ErrInvalidDepth = errors.New("depth cannot be negative")

	// ErrTokenization indicates a corpus item could not be tokenized.
	ErrTokenization = errors.New("text could not be tokenized")

	// ErrInvalidPhraseLength indicates a maximum phrase length below 1.
	ErrInvalidPhraseLength = errors.New("phrase length must be at least 1")
)
