package storage

import (
	"context"
	"fmt"

	"github.com/poiesic/haystack/core"
)

// Cursor is a lazy, ordered sequence of query results.
// Skip and Limit return a new cursor and never modify the receiver.
// A cursor is valid for as long as the store that produced it is open.
type Cursor interface {
	// Skip returns a cursor that omits the first n results.
	Skip(n int) Cursor

	// Limit returns a cursor yielding at most n results. Zero means no limit.
	Limit(n int) Cursor

	// Count returns the number of matching results, ignoring Skip and Limit.
	Count(ctx context.Context) (int, error)

	// All returns the results within the cursor's skip/limit window.
	All(ctx context.Context) ([]core.IdentityHit, error)

	// Fetch returns limit results after skipping skip, measured from the
	// start of the full result set.
	Fetch(ctx context.Context, skip, limit int) ([]core.IdentityHit, error)
}

// Bounds clamps a skip/limit window to a result set of length total and
// returns the half-open [lo, hi) range. A zero limit means no limit.
func Bounds(total, skip, limit int) (lo, hi int, err error) {
	if skip < 0 || limit < 0 {
		return 0, 0, fmt.Errorf("%w: skip=%d limit=%d", ErrInvalidQuery, skip, limit)
	}
	lo = min(skip, total)
	hi = total
	if limit > 0 && limit < total-lo {
		hi = lo + limit
	}
	return lo, hi, nil
}

// SliceCursor is a Cursor over an already materialized result set.
type SliceCursor struct {
	hits  []core.IdentityHit
	skip  int
	limit int
}

var _ Cursor = (*SliceCursor)(nil)

// NewSliceCursor returns a cursor over hits. The slice is not copied and must
// not be modified afterwards.
func NewSliceCursor(hits []core.IdentityHit) *SliceCursor {
	return &SliceCursor{hits: hits}
}

func (c *SliceCursor) Skip(n int) Cursor {
	clone := *c
	clone.skip = n
	return &clone
}

func (c *SliceCursor) Limit(n int) Cursor {
	clone := *c
	clone.limit = n
	return &clone
}

func (c *SliceCursor) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return len(c.hits), nil
}

func (c *SliceCursor) All(ctx context.Context) ([]core.IdentityHit, error) {
	return c.Fetch(ctx, c.skip, c.limit)
}

func (c *SliceCursor) Fetch(ctx context.Context, skip, limit int) ([]core.IdentityHit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	lo, hi, err := Bounds(len(c.hits), skip, limit)
	if err != nil {
		return nil, err
	}
	out := make([]core.IdentityHit, hi-lo)
	copy(out, c.hits[lo:hi])
	return out, nil
}
