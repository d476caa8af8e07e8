package ai

import (
	"context"
	"time"

	"newsbrief/pkg/logbuf"
)

const (
	// maxRetries is the number of additional attempts after the first.
	maxRetries = 1
	// initialRetryDelay doubles on each subsequent retry.
	initialRetryDelay = time.Second
)

// withRetry runs op, retrying transient failures (per isRetryable) up to
// maxRetries extra attempts with exponential backoff. The delay is scheduled
// against the context, never spun.
func withRetry[T any](ctx context.Context, logs *logbuf.Buffer, op func() (T, error)) (T, error) {
	delay := initialRetryDelay

	result, err := op()
	for retries := maxRetries; err != nil && retries > 0 && isRetryable(err); retries-- {
		logs.Warn("API call failed, retrying", map[string]any{
			"error": err, "attemptsLeft": retries,
		})

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return result, ctx.Err()
		}
		delay *= 2

		result, err = op()
	}
	return result, err
}
