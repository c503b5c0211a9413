package indexing

import (
	"context"
	"io"
	"log/slog"
	"maps"
	"runtime"
	"slices"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/haystack/core"
	"github.com/poiesic/haystack/storage"
)

// Analyzer splits text into normalized token values, repeats included.
type Analyzer interface {
	Terms(text string) ([]string, error)
}

// Indexer maintains the postings of indexable records.
type Indexer struct {
	index    storage.IndexRepository
	analyzer Analyzer
	pool     *ants.Pool
	batch    int
	attempts int
	delay    time.Duration
	progress io.Writer
	logger   *slog.Logger
}

// Option configures an Indexer.
type Option func(*Indexer) error

// WithPoolSize sets the worker pool size used by ReindexAll.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(ix *Indexer) error {
		if size < 1 {
			size = 1
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		if ix.pool != nil {
			ix.pool.Release()
		}
		ix.pool = pool
		return nil
	}
}

// WithBatchSize sets how many postings ReindexAll commits per transaction.
// Default is 100.
func WithBatchSize(size int) Option {
	return func(ix *Indexer) error {
		if size < 1 {
			size = 1
		}
		ix.batch = size
		return nil
	}
}

// WithRetry retries failed ReindexAll commits up to attempts times in total,
// waiting delay before the first retry and doubling it after each one.
// Default is a single attempt.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(ix *Indexer) error {
		if attempts < 1 {
			return ErrInvalidMaxAttempts
		}
		ix.attempts = attempts
		ix.delay = delay
		return nil
	}
}

// WithProgress makes ReindexAll report its progress to w.
func WithProgress(w io.Writer) Option {
	return func(ix *Indexer) error {
		ix.progress = w
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(ix *Indexer) error {
		if logger == nil {
			logger = slog.Default()
		}
		ix.logger = logger
		return nil
	}
}

// NewIndexer creates a new Indexer. Call Release when done with it.
func NewIndexer(index storage.IndexRepository, analyzer Analyzer, opts ...Option) (*Indexer, error) {
	if index == nil {
		return nil, ErrIndexRepositoryRequired
	}
	if analyzer == nil {
		return nil, ErrAnalyzerRequired
	}

	ix := &Indexer{
		index:    index,
		analyzer: analyzer,
		batch:    100,
		attempts: 1,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(ix); err != nil {
			ix.Release()
			return nil, err
		}
	}

	if ix.pool == nil {
		if err := WithPoolSize(runtime.NumCPU() / 2)(ix); err != nil {
			return nil, err
		}
	}

	return ix, nil
}

// Release releases the worker pool. The indexer should not be used after calling Release.
func (ix *Indexer) Release() {
	if ix.pool != nil {
		ix.pool.Release()
	}
}

// Add indexes docs, replacing any postings they already have. All documents
// are committed in one transaction; an invalid document fails the whole call.
func (ix *Indexer) Add(ctx context.Context, docs ...core.Indexable) error {
	entries := make([]storage.Entry, 0, len(docs))
	for _, doc := range docs {
		entry, err := ix.Entry(doc)
		if err != nil {
			return err
		}
		entries = append(entries, entry)
	}
	if err := ix.index.Upsert(ctx, entries...); err != nil {
		return err
	}
	ix.logger.Debug("indexed documents", "count", len(entries))
	return nil
}

// Reindex replaces the postings of docs. It is the same operation as Add.
func (ix *Indexer) Reindex(ctx context.Context, docs ...core.Indexable) error {
	return ix.Add(ctx, docs...)
}

// Remove deletes the postings of refs. Refs without a posting are ignored.
func (ix *Indexer) Remove(ctx context.Context, refs ...core.IdentityHit) error {
	if err := ix.index.Remove(ctx, refs...); err != nil {
		return err
	}
	ix.logger.Debug("removed documents", "count", len(refs))
	return nil
}

// Entry analyzes doc into a posting and the tokens it references.
//
// Each keyword term adds 1 to the keyword score of its token and each fulltext
// term adds 1 to the fulltext score, so scores are occurrence counts.
func (ix *Indexer) Entry(doc core.Indexable) (storage.Entry, error) {
	if err := core.ValidateIndexable(doc); err != nil {
		return storage.Entry{}, err
	}

	values := make(map[core.ID]string)
	keyword, err := ix.score(doc.SearchKeywords(), values)
	if err != nil {
		return storage.Entry{}, err
	}
	fulltext, err := ix.score(doc.SearchFulltext(), values)
	if err != nil {
		return storage.Entry{}, err
	}

	posting := &core.Posting{
		ModelType:      doc.SearchModelType(),
		ModelID:        doc.SearchModelID(),
		TokenIDs:       slices.Sorted(maps.Keys(values)),
		KeywordScores:  keyword,
		FulltextScores: fulltext,
		Facets:         cloneFacets(doc.SearchFacets()),
		Score:          doc.SearchScore(),
	}

	tokens := make([]*core.Token, len(posting.TokenIDs))
	for i, id := range posting.TokenIDs {
		tokens[i] = &core.Token{Id: id, Value: values[id]}
	}

	return storage.Entry{Posting: posting, Tokens: tokens}, nil
}

func (ix *Indexer) score(texts []string, values map[core.ID]string) (map[core.ID]float64, error) {
	var scores map[core.ID]float64
	for _, text := range texts {
		terms, err := ix.analyzer.Terms(text)
		if err != nil {
			return nil, err
		}
		for _, term := range terms {
			if term == "" {
				continue
			}
			id := core.IDFromContent(term)
			values[id] = term
			if scores == nil {
				scores = make(map[core.ID]float64)
			}
			scores[id]++
		}
	}
	return scores, nil
}

func cloneFacets(facets []core.Facet) []core.Facet {
	if len(facets) == 0 {
		return nil
	}
	out := make([]core.Facet, 0, len(facets))
	for _, f := range facets {
		if len(f) == 0 {
			continue
		}
		out = append(out, maps.Clone(f))
	}
	return out
}
