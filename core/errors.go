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


package core

import "errors"

var (
	// ErrInvalidPosting indicates a Posting failed validation.
	ErrInvalidPosting = errors.New("invalid posting")

	// ErrInvalidToken indicates a Token failed validation.
	ErrInvalidToken = errors.New("invalid token")

	// ErrInvalidDocument indicates an Indexable record failed validation.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrEmptyModelType indicates the model type is empty.
	ErrEmptyModelType = errors.New("model type cannot be empty")

	// ErrInvalidModelType indicates the model type contains a NUL byte.
	ErrInvalidModelType = errors.New("model type cannot contain NUL")

	// ErrEmptyModelID indicates the model ID is empty.
	ErrEmptyModelID = errors.New("model id cannot be empty")

	// ErrEmptyTokenValue indicates the token value is empty.
	ErrEmptyTokenValue = errors.New("token value cannot be empty")

	// ErrTokenIDMismatch indicates a token ID was not derived from its value.
	ErrTokenIDMismatch = errors.New("token id does not match value")

	// ErrUnsortedTokenIDs indicates posting token IDs are not strictly ascending.
	ErrUnsortedTokenIDs = errors.New("token ids must be sorted and unique")

	// ErrCorruptRecord indicates serialized bytes could not be decoded.
	ErrCorruptRecord = errors.New("corrupt record")

	// ErrMissingRecord indicates a Hit was built without a resolved record.
	ErrMissingRecord = errors.New("hit requires a resolved record")
)
