// Package denormalize hydrates identity-only index hits into domain records.
//
// Index entries can outlive the records they point at. Hits whose record
// cannot be found are dropped silently; callers that need to detect drift can
// compare the number of results against the number of hits they passed in.
package denormalize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	"github.com/poiesic/haystack/core"
	"github.com/poiesic/haystack/storage"
	"golang.org/x/sync/errgroup"
)

// Resolver supplies a collaborator for model types that were not registered explicitly.
type Resolver func(modelType string) (Collaborator, bool)

// Denormalizer hydrates hits using one Collaborator per model type.
type Denormalizer struct {
	mu            sync.RWMutex
	collaborators map[string]Collaborator
	resolver      Resolver
	logger        *slog.Logger
}

// Option configures a Denormalizer.
type Option func(*Denormalizer) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(d *Denormalizer) error {
		if logger == nil {
			logger = slog.Default()
		}
		d.logger = logger
		return nil
	}
}

// WithCollaborator registers a collaborator for modelType.
func WithCollaborator(modelType string, c Collaborator) Option {
	return func(d *Denormalizer) error {
		return d.Register(modelType, c)
	}
}

// WithResolver sets a fallback used for model types without a registered collaborator.
func WithResolver(resolver Resolver) Option {
	return func(d *Denormalizer) error {
		d.resolver = resolver
		return nil
	}
}

// New creates a new Denormalizer.
func New(opts ...Option) (*Denormalizer, error) {
	d := &Denormalizer{
		collaborators: make(map[string]Collaborator),
		logger:        slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// Register sets the collaborator for modelType, replacing any previous one.
func (d *Denormalizer) Register(modelType string, c Collaborator) error {
	if modelType == "" {
		return ErrModelTypeRequired
	}
	if c == nil {
		return ErrCollaboratorRequired
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.collaborators[modelType] = c
	return nil
}

func (d *Denormalizer) collaborator(modelType string) (Collaborator, error) {
	d.mu.RLock()
	c, ok := d.collaborators[modelType]
	d.mu.RUnlock()
	if ok {
		return c, nil
	}
	if d.resolver != nil {
		if c, ok := d.resolver(modelType); ok && c != nil {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrCollaboratorNotRegistered, modelType)
}

// entry is one surviving input position.
type entry struct {
	identity core.IdentityHit
	hydrated *core.Hit
}

// Denormalize resolves each hit to its domain record, preserving order.
//
// Nil and zero-identity hits are skipped. Hits that are already hydrated are
// kept as they are, so denormalizing a result twice returns equal hits.
// Records are fetched with one batch call per model type; if a batch is only
// partially satisfiable every ID of that type is fetched individually and the
// missing ones are dropped. Other collaborator errors are returned unchanged.
func (d *Denormalizer) Denormalize(ctx context.Context, hits []core.Identifiable) ([]core.Hit, error) {
	entries := compact(hits)
	if len(entries) == 0 {
		return []core.Hit{}, nil
	}

	groups, order := group(entries)
	collaborators := make(map[string]Collaborator, len(groups))
	for _, modelType := range order {
		c, err := d.collaborator(modelType)
		if err != nil {
			return nil, err
		}
		collaborators[modelType] = c
	}

	var mu sync.Mutex
	records := make(map[core.IdentityHit]any, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	for _, modelType := range order {
		c := collaborators[modelType]
		ids := groups[modelType]
		g.Go(func() error {
			found, err := d.fetch(gctx, modelType, c, ids)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			for id, record := range found {
				records[core.IdentityHit{ModelType: modelType, ModelID: id}] = record
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := make([]core.Hit, 0, len(entries))
	dropped := 0
	for _, e := range entries {
		if e.hydrated != nil {
			result = append(result, *e.hydrated)
			continue
		}
		hit, err := core.NewHit(e.identity, records[e.identity])
		if err != nil {
			dropped++
			continue
		}
		result = append(result, hit)
	}

	if dropped > 0 {
		d.logger.Debug("dropped hits without records", "dropped", dropped, "kept", len(result))
	}
	return result, nil
}

// Records denormalizes hits and returns only their records.
func (d *Denormalizer) Records(ctx context.Context, hits []core.Identifiable) ([]any, error) {
	resolved, err := d.Denormalize(ctx, hits)
	if err != nil {
		return nil, err
	}
	records := make([]any, len(resolved))
	for i, hit := range resolved {
		records[i] = hit.Record()
	}
	return records, nil
}

// fetch loads the records of one model type, falling back to single fetches
// when the batch cannot be fully satisfied.
func (d *Denormalizer) fetch(ctx context.Context, modelType string, c Collaborator, ids []string) (map[string]any, error) {
	found, err := c.FindByIDs(ctx, ids...)
	if err == nil {
		return found, nil
	}
	if !errors.Is(err, storage.ErrNotAllFound) {
		return nil, err
	}

	d.logger.Debug("batch fetch incomplete, fetching individually", "model_type", modelType, "ids", len(ids))

	found = make(map[string]any, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := c.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				continue
			}
			return nil, err
		}
		if record != nil {
			found[id] = record
		}
	}
	return found, nil
}

// compact drops nil and zero-identity hits, preserving order.
func compact(hits []core.Identifiable) []entry {
	entries := make([]entry, 0, len(hits))
	for _, h := range hits {
		var e entry
		switch v := h.(type) {
		case nil:
			continue
		case *core.IdentityHit:
			if v == nil {
				continue
			}
			e.identity = *v
		case core.Hit:
			e.identity, e.hydrated = v.Identity(), &v
		case *core.Hit:
			if v == nil {
				continue
			}
			e.identity, e.hydrated = v.Identity(), v
		default:
			if v := reflect.ValueOf(h); v.Kind() == reflect.Pointer && v.IsNil() {
				continue
			}
			e.identity = h.Identity()
		}
		if e.identity.IsZero() {
			continue
		}
		entries = append(entries, e)
	}
	return entries
}

// group collects the distinct IDs still needing a record for each model type.
// order lists the model types in first-seen order.
func group(entries []entry) (groups map[string][]string, order []string) {
	groups = make(map[string][]string)
	seen := make(map[core.IdentityHit]struct{}, len(entries))
	for _, e := range entries {
		if e.hydrated != nil {
			continue
		}
		if _, dup := seen[e.identity]; dup {
			continue
		}
		seen[e.identity] = struct{}{}
		if _, ok := groups[e.identity.ModelType]; !ok {
			order = append(order, e.identity.ModelType)
		}
		groups[e.identity.ModelType] = append(groups[e.identity.ModelType], e.identity.ModelID)
	}
	return groups, order
}
