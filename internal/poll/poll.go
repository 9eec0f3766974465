// Package poll repeats a check on a fixed interval until it reports done,
// the deadline passes, or the context is cancelled.
package poll

import (
	"context"
	"errors"
	"time"
)

// ErrTimeout is returned when maxDuration elapses before the check reports done.
var ErrTimeout = errors.New("poll: timed out")

// CheckFunc reports whether polling can stop. A non-nil error stops polling immediately.
type CheckFunc func(ctx context.Context) (done bool, err error)

// Until runs check every interval, starting after the first interval.
// It returns the number of checks made.
func Until(ctx context.Context, interval, maxDuration time.Duration, check CheckFunc) (int, error) {
	if maxDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeoutCause(ctx, maxDuration, ErrTimeout)
		defer cancel()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	polls := 0
	for {
		select {
		case <-ctx.Done():
			if cause := context.Cause(ctx); errors.Is(cause, ErrTimeout) {
				return polls, ErrTimeout
			}
			return polls, ctx.Err()
		case <-ticker.C:
		}

		polls++
		done, err := check(ctx)
		if err != nil {
			return polls, err
		}
		if done {
			return polls, nil
		}
	}
}
