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

import (
	"fmt"
	"strings"
)

func ValidateIdentity(identity IdentityHit) error {
	if identity.ModelType == "" {
		return ErrEmptyModelType
	}
	if strings.ContainsRune(identity.ModelType, 0) {
		return ErrInvalidModelType
	}
	if identity.ModelID == "" {
		return ErrEmptyModelID
	}
	return nil
}

func ValidatePosting(posting *Posting) error {
	if posting == nil {
		return fmt.Errorf("%w: posting is nil", ErrInvalidPosting)
	}

	if err := ValidateIdentity(posting.Identity()); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPosting, err)
	}

	for i := 1; i < len(posting.TokenIDs); i++ {
		if posting.TokenIDs[i-1] >= posting.TokenIDs[i] {
			return fmt.Errorf("%w: %w", ErrInvalidPosting, ErrUnsortedTokenIDs)
		}
	}

	return nil
}

func ValidateToken(token *Token) error {
	if token == nil {
		return fmt.Errorf("%w: token is nil", ErrInvalidToken)
	}

	if token.Value == "" {
		return fmt.Errorf("%w: %w", ErrInvalidToken, ErrEmptyTokenValue)
	}

	if token.Id != IDFromContent(token.Value) {
		return fmt.Errorf("%w: %w", ErrInvalidToken, ErrTokenIDMismatch)
	}

	return nil
}

func ValidateIndexable(doc Indexable) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	identity := IdentityHit{ModelType: doc.SearchModelType(), ModelID: doc.SearchModelID()}
	if err := ValidateIdentity(identity); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	return nil
}
