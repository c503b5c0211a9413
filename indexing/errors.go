package indexing

import "errors"

var (
	// ErrIndexRepositoryRequired is returned when an index repository is not provided.
	ErrIndexRepositoryRequired = errors.New("index repository required")

	// ErrAnalyzerRequired is returned when an analyzer is not provided.
	ErrAnalyzerRequired = errors.New("analyzer required")

	// ErrIndexerRequired is returned when hooks are created without an indexer.
	ErrIndexerRequired = errors.New("indexer required")

	// ErrInvalidMaxAttempts is returned when a retry policy allows no attempts.
	ErrInvalidMaxAttempts = errors.New("max attempts must be at least 1")

	// ErrIndexing wraps every failure reported by Hooks.
	ErrIndexing = errors.New("indexing failed")
)
