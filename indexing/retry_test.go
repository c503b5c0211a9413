package indexing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/poiesic/haystack/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetry_FirstAttempt(t *testing.T) {
	attempts := 0
	err := retry(context.Background(), slog.Default(), 3, time.Millisecond, func() error {
		attempts++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
}

func TestRetry_EventualSuccess(t *testing.T) {
	attempts := 0
	err := retry(context.Background(), slog.Default(), 5, time.Millisecond, func() error {
		attempts++
		if attempts < 3 {
			return errors.New("conflict")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetry_GivesUp(t *testing.T) {
	attempts := 0
	conflict := errors.New("conflict")
	err := retry(context.Background(), slog.Default(), 3, time.Millisecond, func() error {
		attempts++
		return conflict
	})
	assert.Equal(t, conflict, err)
	assert.Equal(t, 3, attempts)
}

func TestRetry_PermanentError(t *testing.T) {
	attempts := 0
	err := retry(context.Background(), slog.Default(), 5, time.Millisecond, func() error {
		attempts++
		return fmt.Errorf("%w: bad", core.ErrInvalidPosting)
	})
	assert.ErrorIs(t, err, core.ErrInvalidPosting)
	assert.Equal(t, 1, attempts)
}

func TestRetry_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	err := retry(ctx, slog.Default(), 10, time.Millisecond, func() error {
		attempts++
		if attempts == 2 {
			cancel()
		}
		return errors.New("conflict")
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, attempts)
}

func TestRetry_InvalidAttempts(t *testing.T) {
	attempts := 0
	for _, n := range []int{0, -1} {
		err := retry(context.Background(), slog.Default(), n, time.Millisecond, func() error {
			attempts++
			return nil
		})
		assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
	}
	assert.Zero(t, attempts)
}
