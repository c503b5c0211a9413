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


package storage

import (
	"fmt"

	"github.com/poiesic/haystack/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := core.IDMUS.Unmarshal(data)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return id, nil
}

// MarshalCount serializes a counter to bytes.
func MarshalCount(count int64) []byte {
	buf := make([]byte, core.CountMUS.Size(count))
	core.CountMUS.Marshal(count, buf)
	return buf
}

// UnmarshalCount deserializes a counter from bytes.
func UnmarshalCount(data []byte) (int64, error) {
	count, _, err := core.CountMUS.Unmarshal(data)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return count, nil
}

// MarshalToken serializes a Token to bytes.
func MarshalToken(token *core.Token) []byte {
	buf := make([]byte, core.TokenMUS.Size(*token))
	core.TokenMUS.Marshal(*token, buf)
	return buf
}

// UnmarshalToken deserializes a Token from bytes.
func UnmarshalToken(data []byte) (*core.Token, error) {
	token, _, err := core.TokenMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &token, nil
}

// MarshalPosting serializes a Posting to bytes.
func MarshalPosting(posting *core.Posting) []byte {
	buf := make([]byte, core.PostingMUS.Size(*posting))
	core.PostingMUS.Marshal(*posting, buf)
	return buf
}

// UnmarshalPosting deserializes a Posting from bytes.
func UnmarshalPosting(data []byte) (*core.Posting, error) {
	posting, _, err := core.PostingMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &posting, nil
}

// MarshalDocument serializes a Document to bytes.
func MarshalDocument(doc *core.Document) []byte {
	buf := make([]byte, core.DocumentMUS.Size(*doc))
	core.DocumentMUS.Marshal(*doc, buf)
	return buf
}

// UnmarshalDocument deserializes a Document from bytes.
func UnmarshalDocument(data []byte) (*core.Document, error) {
	doc, _, err := core.DocumentMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &doc, nil
}
