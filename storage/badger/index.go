package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/haystack/core"
	"github.com/poiesic/haystack/storage"
)

// IndexRepository implements storage.IndexRepository for BadgerDB.
//
// Each posting is stored under its identity, with one inverted-list key per
// token so candidates can be found by prefix scan. Token document frequencies
// and the corpus total are kept in step with postings inside the same
// transaction.
type IndexRepository struct {
	backend *Backend
	logger  *slog.Logger
	// Serializes write transactions so token counters never conflict.
	writeMu sync.Mutex
}

var _ storage.IndexRepository = (*IndexRepository)(nil)

// NewIndexRepository creates a new IndexRepository.
func NewIndexRepository(backend *Backend) (*IndexRepository, error) {
	return &IndexRepository{
		backend: backend,
		logger:  backend.logger.With("component", "index"),
	}, nil
}

// Close releases resources. IndexRepository has no resources to release.
func (r *IndexRepository) Close() error {
	return nil
}

// Upsert replaces the posting of every entry in a single transaction.
func (r *IndexRepository) Upsert(ctx context.Context, entries ...storage.Entry) error {
	for _, entry := range entries {
		if err := validateEntry(entry); err != nil {
			return err
		}
	}
	if len(entries) == 0 {
		return nil
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	return r.backend.WithTx(func(tx *badger.Txn) error {
		total, err := readCount(tx, []byte(corpusTotalKey))
		if err != nil {
			return err
		}

		for _, entry := range entries {
			if err := ctx.Err(); err != nil {
				return err
			}
			removed, err := removePosting(tx, entry.Posting.Identity())
			if err != nil {
				return err
			}
			if removed {
				total--
			}
			if err := addPosting(tx, entry); err != nil {
				return err
			}
			total++
		}

		if err := tx.Set([]byte(corpusTotalKey), storage.MarshalCount(total)); err != nil {
			return err
		}
		return commit(tx)
	}, true)
}

// Remove deletes postings. Missing postings are ignored.
func (r *IndexRepository) Remove(ctx context.Context, refs ...core.IdentityHit) error {
	if len(refs) == 0 {
		return nil
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	return r.backend.WithTx(func(tx *badger.Txn) error {
		total, err := readCount(tx, []byte(corpusTotalKey))
		if err != nil {
			return err
		}

		changed := false
		for _, ref := range refs {
			if err := ctx.Err(); err != nil {
				return err
			}
			removed, err := removePosting(tx, ref)
			if err != nil {
				return err
			}
			if removed {
				total--
				changed = true
			}
		}
		if !changed {
			return nil
		}

		if err := tx.Set([]byte(corpusTotalKey), storage.MarshalCount(total)); err != nil {
			return err
		}
		return commit(tx)
	}, true)
}

// GetPosting retrieves the posting for ref.
func (r *IndexRepository) GetPosting(ctx context.Context, ref core.IdentityHit) (*core.Posting, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var result *core.Posting
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readPosting(tx, makePostingKey(ref))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// Execute returns a lazy cursor for spec. The store is not read until a
// cursor method is called.
func (r *IndexRepository) Execute(ctx context.Context, spec storage.QuerySpec) (storage.Cursor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	spec.Filter.TokenIDs = slices.Clone(spec.Filter.TokenIDs)
	spec.Filter.ModelTypes = slices.Clone(spec.Filter.ModelTypes)
	spec.Order = slices.Clone(spec.Order)
	return &cursor{repo: r, spec: spec}, nil
}

// match returns every posting satisfying filter, in no particular order.
func (r *IndexRepository) match(ctx context.Context, filter storage.Filter) ([]*core.Posting, error) {
	if len(filter.TokenIDs) == 0 {
		return nil, nil
	}

	var result []*core.Posting
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		candidates, err := r.candidates(ctx, tx, filter)
		if err != nil {
			return err
		}

		for _, ref := range candidates {
			if err := ctx.Err(); err != nil {
				return err
			}
			posting, err := readPosting(tx, makePostingKey(ref))
			if err != nil {
				return err
			}
			if posting == nil {
				r.logger.Warn("inverted list references missing posting", "model_type", ref.ModelType, "model_id", ref.ModelID)
				continue
			}
			if filter.Matches(posting) {
				result = append(result, posting)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("matched postings", "operator", filter.Operator, "tokens", len(filter.TokenIDs), "matches", len(result))
	return result, nil
}

// candidates collects the identities that may satisfy filter. For OpAll only
// the inverted list of the least frequent token is scanned; for OpAny every
// list is scanned and the union returned.
func (r *IndexRepository) candidates(ctx context.Context, tx *badger.Txn, filter storage.Filter) ([]core.IdentityHit, error) {
	if filter.Operator == storage.OpAll {
		var rarest *core.Token
		for _, id := range filter.TokenIDs {
			token, err := readToken(tx, makeTokenKey(id))
			if err != nil {
				return nil, err
			}
			if token == nil {
				// A token nobody references cannot be in every posting.
				return nil, nil
			}
			if rarest == nil || token.DocumentFrequency < rarest.DocumentFrequency {
				rarest = token
			}
		}
		return scanTokenPostings(ctx, tx, rarest.Id, nil)
	}

	seen := make(map[core.IdentityHit]struct{})
	var result []core.IdentityHit
	for _, id := range filter.TokenIDs {
		refs, err := scanTokenPostings(ctx, tx, id, seen)
		if err != nil {
			return nil, err
		}
		result = append(result, refs...)
	}
	return result, nil
}

// scanTokenPostings returns the identities in a token's inverted list.
// Identities already in seen are skipped; new ones are added to it when seen is non-nil.
func scanTokenPostings(ctx context.Context, tx *badger.Txn, tokenID core.ID, seen map[core.IdentityHit]struct{}) ([]core.IdentityHit, error) {
	prefix := makePartialTokenPostingKey(tokenID)

	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = prefix
	iter := tx.NewIterator(opts)
	defer iter.Close()

	var result []core.IdentityHit
	for iter.Seek(prefix); iter.ValidForPrefix(prefix); iter.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ref, ok := parseTokenPostingKey(iter.Item().Key())
		if !ok {
			return nil, fmt.Errorf("%w: malformed inverted list key", storage.ErrSerializationFailed)
		}
		if seen != nil {
			if _, dup := seen[ref]; dup {
				continue
			}
			seen[ref] = struct{}{}
		}
		result = append(result, ref)
	}
	return result, nil
}

func validateEntry(entry storage.Entry) error {
	if err := core.ValidatePosting(entry.Posting); err != nil {
		return err
	}

	values := make(map[core.ID]bool, len(entry.Tokens))
	for _, token := range entry.Tokens {
		if err := core.ValidateToken(token); err != nil {
			return err
		}
		values[token.Id] = true
	}
	for _, id := range entry.Posting.TokenIDs {
		if !values[id] {
			return fmt.Errorf("%w: token %d has no value", core.ErrInvalidPosting, id)
		}
	}
	return nil
}

// removePosting deletes a posting with its inverted-list keys and decrements
// the document frequency of its tokens. Reports whether a posting existed.
func removePosting(tx *badger.Txn, ref core.IdentityHit) (bool, error) {
	key := makePostingKey(ref)
	old, err := readPosting(tx, key)
	if err != nil {
		return false, err
	}
	if old == nil {
		return false, nil
	}

	for _, tokenID := range old.TokenIDs {
		if err := tx.Delete(makeTokenPostingKey(tokenID, ref)); err != nil {
			return false, err
		}
		if err := adjustTokenFrequency(tx, &core.Token{Id: tokenID}, -1); err != nil {
			return false, err
		}
	}

	return true, tx.Delete(key)
}

// addPosting stores a posting with its inverted-list keys and increments the
// document frequency of its tokens, creating tokens that don't exist yet.
func addPosting(tx *badger.Txn, entry storage.Entry) error {
	posting := entry.Posting
	ref := posting.Identity()

	if err := tx.Set(makePostingKey(ref), storage.MarshalPosting(posting)); err != nil {
		return err
	}

	byID := make(map[core.ID]*core.Token, len(entry.Tokens))
	for _, token := range entry.Tokens {
		byID[token.Id] = token
	}

	for _, tokenID := range posting.TokenIDs {
		if err := tx.Set(makeTokenPostingKey(tokenID, ref), []byte{}); err != nil {
			return err
		}
		if err := adjustTokenFrequency(tx, byID[tokenID], 1); err != nil {
			return err
		}
	}
	return nil
}

// adjustTokenFrequency adds delta to a token's document frequency.
// Tokens whose frequency drops to zero are deleted.
func adjustTokenFrequency(tx *badger.Txn, token *core.Token, delta int64) error {
	key := makeTokenKey(token.Id)
	stored, err := readToken(tx, key)
	if err != nil {
		return err
	}
	if stored == nil {
		if delta < 0 {
			return nil
		}
		stored = &core.Token{Id: token.Id, Value: token.Value}
	}

	stored.DocumentFrequency += delta
	if stored.DocumentFrequency <= 0 {
		return tx.Delete(key)
	}
	return tx.Set(key, storage.MarshalToken(stored))
}

// readPosting reads a posting from the database.
// Returns nil, nil if the key doesn't exist.
func readPosting(tx *badger.Txn, key []byte) (*core.Posting, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var posting *core.Posting
	err = item.Value(func(val []byte) error {
		var err error
		posting, err = storage.UnmarshalPosting(val)
		return err
	})
	return posting, err
}
