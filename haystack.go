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


package haystack

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/haystack/config"
	"github.com/poiesic/haystack/core"
	"github.com/poiesic/haystack/denormalize"
	"github.com/poiesic/haystack/indexing"
	"github.com/poiesic/haystack/paginate"
	"github.com/poiesic/haystack/search"
	"github.com/poiesic/haystack/storage"
	"github.com/poiesic/haystack/storage/badger"
	"github.com/poiesic/haystack/tokenizer"
)

// Index ties the store, tokenizer, searcher, denormalizer and indexer together
// over one badger database.
type Index struct {
	cfg          *config.Config
	repos        *badger.Repositories
	tokenizer    *tokenizer.Tokenizer
	searcher     *search.Searcher
	denormalizer *denormalize.Denormalizer
	indexer      *indexing.Indexer
	hooks        *indexing.Hooks
	logger       *slog.Logger
}

// Option configures an Index.
type Option func(*options)

type options struct {
	cfg     *config.Config
	logger  *slog.Logger
	monitor search.Monitor
}

// WithConfig sets the configuration. Default is config.DefaultConfig().
func WithConfig(cfg *config.Config) Option {
	return func(o *options) {
		o.cfg = cfg
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMonitor sets the monitor notified of every query.
func WithMonitor(monitor search.Monitor) Option {
	return func(o *options) {
		o.monitor = monitor
	}
}

// Open opens the index described by the configuration.
func Open(opts ...Option) (*Index, error) {
	o := &options{logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}
	if o.cfg == nil {
		o.cfg = config.DefaultConfig()
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if err := o.cfg.Validate(); err != nil {
		return nil, err
	}

	repos, err := badger.OpenRepositories(o.cfg.Path, o.cfg.InMemory, badger.WithBackendLogger(o.logger))
	if err != nil {
		return nil, err
	}

	idx := &Index{
		cfg:       o.cfg,
		repos:     repos,
		tokenizer: newTokenizer(o.cfg),
		logger:    o.logger,
	}
	if err := idx.init(o.monitor); err != nil {
		idx.Close()
		return nil, err
	}
	return idx, nil
}

// OpenInMemory opens an index that lives only in memory.
func OpenInMemory(opts ...Option) (*Index, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	cfg := config.DefaultConfig()
	if o.cfg != nil {
		copied := *o.cfg
		cfg = &copied
	}
	cfg.InMemory = true
	return Open(append(opts, WithConfig(cfg))...)
}

func newTokenizer(cfg *config.Config) *tokenizer.Tokenizer {
	var opts []tokenizer.Option
	if !cfg.Stemming {
		opts = append(opts, tokenizer.WithoutStemming())
	}
	if cfg.StopWords {
		opts = append(opts, tokenizer.WithStopWords(tokenizer.EnglishStopWords...))
	}
	return tokenizer.New(opts...)
}

func (idx *Index) init(monitor search.Monitor) error {
	ranker, err := search.NewRanker(idx.tokenizer, idx.repos.Tokens, idx.repos.Tokens)
	if err != nil {
		return err
	}
	searchOpts := []search.Option{search.WithLogger(idx.logger)}
	if monitor != nil {
		searchOpts = append(searchOpts, search.WithMonitor(monitor))
	}
	if idx.searcher, err = search.NewSearcher(ranker, idx.repos.Index, searchOpts...); err != nil {
		return err
	}

	if idx.denormalizer, err = idx.NewDenormalizer(); err != nil {
		return err
	}

	if idx.indexer, err = idx.NewIndexer(); err != nil {
		return err
	}
	idx.hooks, err = indexing.NewHooks(idx.indexer, idx.logger)
	return err
}

// Close releases the indexer and closes the store.
func (idx *Index) Close() error {
	if idx.indexer != nil {
		idx.indexer.Release()
	}
	if err := idx.repos.Close(); err != nil {
		idx.logger.Error("error closing index storage", "err", err)
		return err
	}
	return nil
}

// Config returns the configuration the index was opened with.
func (idx *Index) Config() *config.Config {
	return idx.cfg
}

// Tokens returns the token repository.
func (idx *Index) Tokens() storage.TokenRepository {
	return idx.repos.Tokens
}

// Postings returns the index repository.
func (idx *Index) Postings() storage.IndexRepository {
	return idx.repos.Index
}

// Documents returns the bundled document store.
func (idx *Index) Documents() storage.DocumentRepository {
	return idx.repos.Documents
}

// Tokenizer returns the tokenizer shared by indexing and searching.
func (idx *Index) Tokenizer() *tokenizer.Tokenizer {
	return idx.tokenizer
}

// Searcher returns the index's searcher.
func (idx *Index) Searcher() *search.Searcher {
	return idx.searcher
}

// NewSearcher creates a searcher over this index with its own options.
func (idx *Index) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	ranker, err := search.NewRanker(idx.tokenizer, idx.repos.Tokens, idx.repos.Tokens)
	if err != nil {
		return nil, err
	}
	return search.NewSearcher(ranker, idx.repos.Index, append([]search.Option{search.WithLogger(idx.logger)}, opts...)...)
}

// NewDenormalizer creates a denormalizer that resolves every model type from
// the bundled document store unless opts register other collaborators.
func (idx *Index) NewDenormalizer(opts ...denormalize.Option) (*denormalize.Denormalizer, error) {
	base := []denormalize.Option{
		denormalize.WithLogger(idx.logger),
		denormalize.WithResolver(idx.documentCollaborator),
	}
	return denormalize.New(append(base, opts...)...)
}

func (idx *Index) documentCollaborator(modelType string) (denormalize.Collaborator, bool) {
	docs := idx.repos.Documents
	return denormalize.Typed(
		func(ctx context.Context, ids ...string) (map[string]*core.Document, error) {
			return docs.GetDocuments(ctx, modelType, ids...)
		},
		func(ctx context.Context, id string) (*core.Document, error) {
			return docs.GetDocument(ctx, core.IdentityHit{ModelType: modelType, ModelID: id})
		},
	), true
}

// NewIndexer creates an indexer using the index's tokenizer and configured pool
// and batch sizes. Call Release on the returned indexer when done.
func (idx *Index) NewIndexer(opts ...indexing.Option) (*indexing.Indexer, error) {
	base := []indexing.Option{
		indexing.WithLogger(idx.logger),
		indexing.WithBatchSize(idx.cfg.BatchSize),
	}
	if idx.cfg.PoolSize > 0 {
		base = append(base, indexing.WithPoolSize(idx.cfg.PoolSize))
	}
	return indexing.NewIndexer(idx.repos.Index, idx.tokenizer, append(base, opts...)...)
}

// Put stores documents and indexes them.
//
// Documents are stored first. An indexing failure leaves the document stored
// with a stale posting and is returned wrapped with indexing.ErrIndexing.
func (idx *Index) Put(ctx context.Context, docs ...*core.Document) error {
	for _, doc := range docs {
		if doc == nil {
			return fmt.Errorf("%w: document is nil", core.ErrInvalidDocument)
		}
		if err := core.ValidateIndexable(doc); err != nil {
			return err
		}
	}
	if err := idx.repos.Documents.PutDocuments(ctx, docs...); err != nil {
		return err
	}

	var errs []error
	for _, doc := range docs {
		if err := idx.hooks.AfterSave(ctx, doc); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Delete removes documents and their postings.
func (idx *Index) Delete(ctx context.Context, refs ...core.IdentityHit) error {
	if err := idx.repos.Documents.DeleteDocuments(ctx, refs...); err != nil {
		return err
	}

	var errs []error
	for _, ref := range refs {
		doc := &core.Document{Type: ref.ModelType, Id: ref.ModelID}
		if err := idx.hooks.AfterDestroy(ctx, doc); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ReindexAll rebuilds the posting of every stored document.
func (idx *Index) ReindexAll(ctx context.Context, opts ...indexing.Option) (*indexing.Report, error) {
	docs, err := idx.repos.Documents.ListDocuments(ctx, "")
	if err != nil {
		return nil, err
	}

	indexer := idx.indexer
	if len(opts) > 0 {
		if indexer, err = idx.NewIndexer(opts...); err != nil {
			return nil, err
		}
		defer indexer.Release()
	}

	indexables := make([]core.Indexable, len(docs))
	for i, doc := range docs {
		indexables[i] = doc
	}
	return indexer.ReindexAll(ctx, indexables)
}

// Request describes one page of a search.
type Request struct {
	Terms   []string
	Options search.Options
	// Page is 1-based. Zero means the first page.
	Page int
	// Size is the page size. Zero means the configured page size.
	Size int
}

// Results is one page of hydrated hits.
type Results struct {
	Query *search.Query
	// Page holds the hits of the requested page. Hits whose record no longer
	// exists are dropped, so a page may hold fewer items than its size.
	Page *paginate.Window[core.Hit]
}

// Search runs a query, paginates its identities and hydrates the requested page.
func (idx *Index) Search(ctx context.Context, req Request) (*Results, error) {
	page, size := req.Page, req.Size
	if page == 0 {
		page = paginate.DefaultPage
	}
	if size == 0 {
		size = idx.cfg.PageSize
	}

	query, cursor, err := idx.searcher.Search(ctx, req.Options, req.Terms...)
	if err != nil {
		return nil, err
	}

	window, err := paginate.Cursor[core.IdentityHit](ctx, cursor, paginate.Page(page), paginate.Size(size))
	if err != nil {
		return nil, err
	}

	hits, err := idx.denormalizer.Denormalize(ctx, core.AsIdentifiable(window.Items))
	if err != nil {
		return nil, err
	}

	return &Results{
		Query: query,
		Page: &paginate.Window[core.Hit]{
			Items:       hits,
			CurrentPage: window.CurrentPage,
			TotalPages:  window.TotalPages,
			NumPages:    window.NumPages,
			TotalCount:  window.TotalCount,
			Size:        window.Size,
		},
	}, nil
}

// Stats summarizes the contents of the index.
type Stats struct {
	Documents   int
	CorpusTotal int64
}

// Stats counts stored documents and indexed postings.
func (idx *Index) Stats(ctx context.Context) (Stats, error) {
	docs, err := idx.repos.Documents.ListDocuments(ctx, "")
	if err != nil {
		return Stats{}, err
	}
	total, err := idx.repos.Tokens.CorpusTotal(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("reading corpus total: %w", err)
	}
	return Stats{Documents: len(docs), CorpusTotal: total}, nil
}
