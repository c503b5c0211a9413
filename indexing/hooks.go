package indexing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/haystack/core"
)

// Hooks keeps the index in step with a record store's lifecycle callbacks.
//
// Failures are logged and returned wrapped with ErrIndexing. A record store
// usually treats them as non-fatal: the record is saved, only its posting is stale.
type Hooks struct {
	indexer *Indexer
	logger  *slog.Logger
}

// NewHooks creates hooks backed by indexer.
func NewHooks(indexer *Indexer, logger *slog.Logger) (*Hooks, error) {
	if indexer == nil {
		return nil, ErrIndexerRequired
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Hooks{indexer: indexer, logger: logger}, nil
}

// AfterSave reindexes doc.
func (h *Hooks) AfterSave(ctx context.Context, doc core.Indexable) error {
	if err := h.indexer.Reindex(ctx, doc); err != nil {
		h.logger.Error("error reindexing saved record", "err", err)
		return fmt.Errorf("%w: %w", ErrIndexing, err)
	}
	return nil
}

// AfterDestroy removes the posting of doc.
func (h *Hooks) AfterDestroy(ctx context.Context, doc core.Indexable) error {
	if err := core.ValidateIndexable(doc); err != nil {
		h.logger.Error("error removing destroyed record", "err", err)
		return fmt.Errorf("%w: %w", ErrIndexing, err)
	}

	ref := core.IdentityHit{ModelType: doc.SearchModelType(), ModelID: doc.SearchModelID()}
	if err := h.indexer.Remove(ctx, ref); err != nil {
		h.logger.Error("error removing destroyed record", "model_type", ref.ModelType, "model_id", ref.ModelID, "err", err)
		return fmt.Errorf("%w: %w", ErrIndexing, err)
	}
	return nil
}
