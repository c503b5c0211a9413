package badger

import (
	"context"
	"slices"

	"github.com/poiesic/haystack/core"
	"github.com/poiesic/haystack/storage"
)

// cursor evaluates its query against the index every time a result is requested.
type cursor struct {
	repo  *IndexRepository
	spec  storage.QuerySpec
	skip  int
	limit int
}

var _ storage.Cursor = (*cursor)(nil)

func (c *cursor) Skip(n int) storage.Cursor {
	clone := *c
	clone.skip = n
	return &clone
}

func (c *cursor) Limit(n int) storage.Cursor {
	clone := *c
	clone.limit = n
	return &clone
}

func (c *cursor) Count(ctx context.Context) (int, error) {
	postings, err := c.repo.match(ctx, c.spec.Filter)
	if err != nil {
		return 0, err
	}
	return len(postings), nil
}

func (c *cursor) All(ctx context.Context) ([]core.IdentityHit, error) {
	return c.Fetch(ctx, c.skip, c.limit)
}

func (c *cursor) Fetch(ctx context.Context, skip, limit int) ([]core.IdentityHit, error) {
	if _, _, err := storage.Bounds(0, skip, limit); err != nil {
		return nil, err
	}

	postings, err := c.repo.match(ctx, c.spec.Filter)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(postings, c.spec.Order.Compare)

	lo, hi, _ := storage.Bounds(len(postings), skip, limit)
	hits := make([]core.IdentityHit, 0, hi-lo)
	for _, posting := range postings[lo:hi] {
		hits = append(hits, posting.Identity())
	}
	return hits, nil
}
