package indexing

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/poiesic/haystack/core"
)

// permanent reports whether retrying err cannot help.
func permanent(err error) bool {
	return errors.Is(err, core.ErrInvalidPosting) ||
		errors.Is(err, core.ErrInvalidToken) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// retry runs op up to attempts times, doubling the wait after every failure.
// Permanent errors and cancellation end the loop early. The last error is returned.
func retry(ctx context.Context, logger *slog.Logger, attempts int, delay time.Duration, op func() error) error {
	if attempts < 1 {
		return ErrInvalidMaxAttempts
	}

	var err error
	for attempt := 1; ; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if err = op(); err == nil {
			if attempt > 1 {
				logger.Debug("commit succeeded after retry", "attempt", attempt)
			}
			return nil
		}
		if permanent(err) || attempt == attempts {
			return err
		}

		logger.Debug("commit failed, retrying", "attempt", attempt, "max_attempts", attempts, "err", err)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}
}
