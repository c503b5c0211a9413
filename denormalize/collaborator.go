package denormalize

import (
	"context"
)

// Collaborator fetches the domain records of one model type.
type Collaborator interface {
	// FindByIDs fetches records by ID. If only some IDs can be found it must
	// return an error wrapping storage.ErrNotAllFound.
	FindByIDs(ctx context.Context, ids ...string) (map[string]any, error)

	// FindByID fetches one record, returning an error wrapping
	// storage.ErrNotFound when it doesn't exist.
	FindByID(ctx context.Context, id string) (any, error)
}

// Typed adapts typed lookup functions to a Collaborator.
// Zero values returned by either function are treated as missing records.
func Typed[T comparable](
	batch func(ctx context.Context, ids ...string) (map[string]T, error),
	single func(ctx context.Context, id string) (T, error),
) Collaborator {
	return &typed[T]{batch: batch, single: single}
}

type typed[T comparable] struct {
	batch  func(ctx context.Context, ids ...string) (map[string]T, error)
	single func(ctx context.Context, id string) (T, error)
}

func (t *typed[T]) FindByIDs(ctx context.Context, ids ...string) (map[string]any, error) {
	records, err := t.batch(ctx, ids...)
	var zero T
	out := make(map[string]any, len(records))
	for id, record := range records {
		if record != zero {
			out[id] = record
		}
	}
	return out, err
}

func (t *typed[T]) FindByID(ctx context.Context, id string) (any, error) {
	record, err := t.single(ctx, id)
	if err != nil {
		return nil, err
	}
	var zero T
	if record == zero {
		return nil, nil
	}
	return record, nil
}
