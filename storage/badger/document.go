package badger

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/haystack/core"
	"github.com/poiesic/haystack/storage"
)

// DocumentRepository implements storage.DocumentRepository for BadgerDB.
type DocumentRepository struct {
	backend *Backend
}

var _ storage.DocumentRepository = (*DocumentRepository)(nil)

// NewDocumentRepository creates a new DocumentRepository.
func NewDocumentRepository(backend *Backend) (*DocumentRepository, error) {
	return &DocumentRepository{
		backend: backend,
	}, nil
}

// Close releases resources. DocumentRepository has no resources to release.
func (r *DocumentRepository) Close() error {
	return nil
}

// PutDocuments inserts or replaces documents.
func (r *DocumentRepository) PutDocuments(ctx context.Context, docs ...*core.Document) error {
	for _, doc := range docs {
		if doc == nil {
			return fmt.Errorf("%w: document is nil", core.ErrInvalidDocument)
		}
		if err := core.ValidateIndexable(doc); err != nil {
			return err
		}
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, doc := range docs {
			if err := ctx.Err(); err != nil {
				return err
			}
			key := makeDocumentKey(core.IdentityHit{ModelType: doc.Type, ModelID: doc.Id})
			if err := tx.Set(key, storage.MarshalDocument(doc)); err != nil {
				return err
			}
		}
		return commit(tx)
	}, true)
}

// DeleteDocuments removes documents. Missing documents are ignored.
func (r *DocumentRepository) DeleteDocuments(ctx context.Context, refs ...core.IdentityHit) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, ref := range refs {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := tx.Delete(makeDocumentKey(ref)); err != nil {
				return err
			}
		}
		return commit(tx)
	}, true)
}

// GetDocument retrieves a single document.
func (r *DocumentRepository) GetDocument(ctx context.Context, ref core.IdentityHit) (*core.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var result *core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readDocument(tx, makeDocumentKey(ref))
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

// GetDocuments retrieves documents of one model type keyed by ID.
func (r *DocumentRepository) GetDocuments(ctx context.Context, modelType string, ids ...string) (map[string]*core.Document, error) {
	result := make(map[string]*core.Document, len(ids))
	missing := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			if err := ctx.Err(); err != nil {
				return err
			}
			doc, err := readDocument(tx, makeDocumentKey(core.IdentityHit{ModelType: modelType, ModelID: id}))
			if err != nil {
				return err
			}
			if doc == nil {
				missing++
				continue
			}
			result[id] = doc
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	if missing > 0 {
		return result, fmt.Errorf("%w: %d of %d %s documents missing", storage.ErrNotAllFound, missing, len(ids), modelType)
	}
	return result, nil
}

// ListDocuments returns every document of modelType in key order.
func (r *DocumentRepository) ListDocuments(ctx context.Context, modelType string) ([]*core.Document, error) {
	var result []*core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := makeDocumentTypePrefix(modelType)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(prefix); iter.ValidForPrefix(prefix); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			err := iter.Item().Value(func(val []byte) error {
				doc, err := storage.UnmarshalDocument(val)
				if err != nil {
					return err
				}
				result = append(result, doc)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	return result, err
}

// readDocument reads a document from the database.
// Returns nil, nil if the key doesn't exist.
func readDocument(tx *badger.Txn, key []byte) (*core.Document, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var doc *core.Document
	err = item.Value(func(val []byte) error {
		var err error
		doc, err = storage.UnmarshalDocument(val)
		return err
	})
	return doc, err
}
