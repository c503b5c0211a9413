package storage

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/poiesic/haystack/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeHits(n int) []core.IdentityHit {
	hits := make([]core.IdentityHit, n)
	for i := range hits {
		hits[i] = core.IdentityHit{ModelType: "item", ModelID: fmt.Sprint(i)}
	}
	return hits
}

func TestBounds(t *testing.T) {
	tests := []struct {
		name               string
		total, skip, limit int
		wantLo, wantHi     int
	}{
		{"no window", 10, 0, 0, 0, 10},
		{"skip only", 10, 3, 0, 3, 10},
		{"limit only", 10, 0, 4, 0, 4},
		{"skip and limit", 10, 3, 4, 3, 7},
		{"limit past end", 10, 8, 5, 8, 10},
		{"skip past end", 10, 12, 5, 10, 10},
		{"huge limit", 10, 3, math.MaxInt, 3, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi, err := Bounds(tt.total, tt.skip, tt.limit)
			require.NoError(t, err)
			assert.Equal(t, tt.wantLo, lo)
			assert.Equal(t, tt.wantHi, hi)
		})
	}

	_, _, err := Bounds(10, -1, 0)
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

func TestSliceCursor(t *testing.T) {
	ctx := context.Background()
	hits := makeHits(10)
	cursor := NewSliceCursor(hits)

	t.Run("count ignores window", func(t *testing.T) {
		count, err := cursor.Skip(5).Limit(2).Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 10, count)
	})

	t.Run("skip and limit are copy-on-write", func(t *testing.T) {
		windowed := cursor.Skip(2).Limit(3)

		got, err := windowed.All(ctx)
		require.NoError(t, err)
		assert.Equal(t, hits[2:5], got)

		all, err := cursor.All(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 10)
	})

	t.Run("fetch", func(t *testing.T) {
		got, err := cursor.Fetch(ctx, 8, 5)
		require.NoError(t, err)
		assert.Equal(t, hits[8:], got)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := cursor.All(cancelled)
		assert.ErrorIs(t, err, context.Canceled)
		_, err = cursor.Count(cancelled)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
