package badger

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/haystack/core"
	"github.com/poiesic/haystack/storage"
)

// TokenRepository implements storage.TokenRepository and storage.StatsProvider for BadgerDB.
// Tokens are written by IndexRepository as postings change.
type TokenRepository struct {
	backend *Backend
}

var (
	_ storage.TokenRepository = (*TokenRepository)(nil)
	_ storage.StatsProvider   = (*TokenRepository)(nil)
)

// NewTokenRepository creates a new TokenRepository.
func NewTokenRepository(backend *Backend) (*TokenRepository, error) {
	return &TokenRepository{
		backend: backend,
	}, nil
}

// Close releases resources. TokenRepository has no resources to release.
func (r *TokenRepository) Close() error {
	return nil
}

// LookupTokens returns the known tokens for values in input order.
// Unknown and repeated values are skipped.
func (r *TokenRepository) LookupTokens(ctx context.Context, values ...string) ([]*core.Token, error) {
	var result []*core.Token
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		seen := make(map[string]struct{}, len(values))
		for _, value := range values {
			if err := ctx.Err(); err != nil {
				return err
			}
			if _, dup := seen[value]; dup {
				continue
			}
			seen[value] = struct{}{}

			token, err := readToken(tx, makeTokenKey(core.IDFromContent(value)))
			if err != nil {
				return err
			}
			// Guard against hash collisions between distinct values.
			if token != nil && token.Value == value {
				result = append(result, token)
			}
		}
		return nil
	}, false)
	return result, err
}

// CorpusTotal returns the number of postings in the index.
func (r *TokenRepository) CorpusTotal(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var total int64
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		total, err = readCount(tx, []byte(corpusTotalKey))
		return err
	}, false)
	return total, err
}

// readToken reads a token from the database.
// Returns nil, nil if the key doesn't exist.
func readToken(tx *badger.Txn, key []byte) (*core.Token, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var token *core.Token
	err = item.Value(func(val []byte) error {
		var err error
		token, err = storage.UnmarshalToken(val)
		return err
	})
	return token, err
}

// readCount reads a counter from the database.
// Returns 0 if the key doesn't exist.
func readCount(tx *badger.Txn, key []byte) (int64, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, err
	}

	var count int64
	err = item.Value(func(val []byte) error {
		var err error
		count, err = storage.UnmarshalCount(val)
		return err
	})
	return count, err
}
