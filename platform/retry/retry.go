// Package retry provides bounded retry with exponential backoff.
// This is part of the platform layer and contains no business logic.
package retry

import (
	"context"
	"errors"
	"time"
)

// Do runs fn up to attempts times, sleeping attempt²·baseDelay between
// tries. It stops early when the context is cancelled. The last error is
// returned if every attempt fails.
func Do(ctx context.Context, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New("retry: invalid attempt count")
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return lastErr
}
