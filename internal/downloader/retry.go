package downloader

import (
	"context"
	"time"
)

// RetryConfig bounds retry behavior for transient download failures.
type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// Retry runs fn up to cfg.MaxAttempts times with exponential backoff,
// consulting shouldRetry to distinguish transient from permanent
// failures. Context cancellation interrupts the wait between attempts.
func Retry[T any](ctx context.Context, cfg RetryConfig, fn func() (T, error), shouldRetry func(error) bool) (T, error) {
	var zero T
	var lastErr error

	delay := cfg.InitialDelay
	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !shouldRetry(err) || attempt == cfg.MaxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}

		delay *= 2
		if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}

	return zero, lastErr
}
