package search

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/poiesic/haystack/storage"
)

// Executor runs a query spec against the index store.
type Executor interface {
	Execute(ctx context.Context, spec storage.QuerySpec) (storage.Cursor, error)
}

// Searcher builds boolean token queries from free text and executes them.
type Searcher struct {
	ranker   *Ranker
	executor Executor
	monitor  Monitor
	logger   *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithMonitor sets a monitor notified for every query built.
// Default is a no-op monitor.
func WithMonitor(monitor Monitor) Option {
	return func(s *Searcher) error {
		if monitor == nil {
			monitor = &noopMonitor{}
		}
		s.monitor = monitor
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(ranker *Ranker, executor Executor, opts ...Option) (*Searcher, error) {
	if ranker == nil {
		return nil, ErrRankerRequired
	}
	if executor == nil {
		return nil, ErrExecutorRequired
	}

	s := &Searcher{
		ranker:   ranker,
		executor: executor,
		monitor:  &noopMonitor{},
		logger:   slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Build assembles a query from positional terms and options without running it.
func (s *Searcher) Build(ctx context.Context, opts Options, terms ...string) (*Query, error) {
	op, extra := opts.operator()
	text := combine(terms, extra)
	id := uuid.NewString()
	logger := s.logger.With("query_id", id)

	s.monitor.Start(text)

	started := time.Now()
	ranking, err := s.ranker.Rank(ctx, text)
	if err != nil {
		logger.Error("error ranking query tokens", "text", text, "err", err)
		return nil, err
	}
	s.monitor.AfterRank(ranking, time.Since(started))

	if ranking.Unresolved() > 0 {
		logger.Debug("dropped unknown query values", "unresolved", ranking.Unresolved())
	}

	query := &Query{
		ID:       id,
		Text:     text,
		Operator: op,
		Tokens:   ranking.Tokens,
		Spec:     buildSpec(op, ranking, opts),
	}
	logger.Debug("built query", "text", text, "operator", op, "tokens", len(query.Tokens), "order", query.Spec.Order)

	s.monitor.Finish(query)
	return query, nil
}

// Execute runs a built query and returns a lazy cursor over matching identities.
// A query with no resolved tokens yields an empty cursor without touching the store.
func (s *Searcher) Execute(ctx context.Context, query *Query) (storage.Cursor, error) {
	if query == nil {
		return nil, ErrNilQuery
	}
	if query.Empty() {
		return storage.NewSliceCursor(nil), nil
	}

	cursor, err := s.executor.Execute(ctx, query.Spec)
	if err != nil {
		s.logger.Error("error executing query", "query_id", query.ID, "err", err)
		return nil, err
	}
	return cursor, nil
}

// Search builds and executes a query.
func (s *Searcher) Search(ctx context.Context, opts Options, terms ...string) (*Query, storage.Cursor, error) {
	query, err := s.Build(ctx, opts, terms...)
	if err != nil {
		return nil, nil, err
	}
	cursor, err := s.Execute(ctx, query)
	if err != nil {
		return nil, nil, err
	}
	return query, cursor, nil
}
