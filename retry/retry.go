package retry

import (
	"context"
	"time"

	"github.com/sitewise/taskcore"
)

// Do executes fn with retry logic. Only provider-unavailable errors are
// retried; configuration and input errors surface immediately. Backoff
// waits respect context cancellation. Returns the result on success, or
// the last error if all attempts fail.
func Do[T any](ctx context.Context, cfg Config, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}

		lastErr = err

		if !taskcore.IsProviderUnavailable(err) {
			return zero, err
		}

		// Don't sleep after the last attempt.
		if attempt < cfg.MaxAttempts-1 {
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(cfg.Delay(attempt)):
			}
		}
	}

	return zero, lastErr
}
