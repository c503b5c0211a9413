package storage

import (
	"context"

	"github.com/poiesic/haystack/core"
)

// TokenRepository resolves normalized token values to the tokens known to the index.
type TokenRepository interface {
	// LookupTokens returns the tokens whose values are in values, in the order
	// the values were given. Values with no token are omitted, not reported as errors.
	// CorpusTotal is not populated.
	LookupTokens(ctx context.Context, values ...string) ([]*core.Token, error)
}

// StatsProvider exposes corpus statistics used for rarity computation.
type StatsProvider interface {
	// CorpusTotal returns the number of postings in the index.
	CorpusTotal(ctx context.Context) (int64, error)
}

// Entry is a posting together with the tokens it references.
// Tokens must contain one token (Id and Value) per entry in Posting.TokenIDs.
type Entry struct {
	Posting *core.Posting
	Tokens  []*core.Token
}

// IndexRepository stores postings and executes queries against them.
// Implementations must be thread-safe and support concurrent access.
type IndexRepository interface {
	// Execute runs spec and returns a lazy cursor over matching identities.
	// No work against the store happens until a cursor method is called.
	Execute(ctx context.Context, spec QuerySpec) (Cursor, error)

	// Upsert replaces the posting for each entry's (ModelType, ModelID), adjusting
	// token document frequencies and the corpus total. Each call is one transaction.
	Upsert(ctx context.Context, entries ...Entry) error

	// Remove deletes the postings for refs. Missing postings are ignored.
	Remove(ctx context.Context, refs ...core.IdentityHit) error

	// GetPosting retrieves the posting for ref.
	// Returns ErrNotFound if the posting doesn't exist.
	GetPosting(ctx context.Context, ref core.IdentityHit) (*core.Posting, error)

	// Close releases resources held by the repository.
	Close() error
}

// DocumentRepository is a small domain store for core.Document records.
type DocumentRepository interface {
	// PutDocuments inserts or replaces documents.
	PutDocuments(ctx context.Context, docs ...*core.Document) error

	// DeleteDocuments removes documents. Missing documents are ignored.
	DeleteDocuments(ctx context.Context, refs ...core.IdentityHit) error

	// GetDocument retrieves a single document.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, ref core.IdentityHit) (*core.Document, error)

	// GetDocuments retrieves documents of one model type keyed by ID.
	// If some IDs are missing, the found documents are returned with an error wrapping ErrNotAllFound.
	GetDocuments(ctx context.Context, modelType string, ids ...string) (map[string]*core.Document, error)

	// ListDocuments returns every document of modelType, or of all types when modelType is empty.
	ListDocuments(ctx context.Context, modelType string) ([]*core.Document, error)

	// Close releases resources held by the repository.
	Close() error
}
