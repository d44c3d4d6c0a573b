package paging

import (
	"context"
	"log/slog"
	"time"

	"github.com/googleapis/gax-go/v2"
)

// RetryOptions configures WithRetry.
type RetryOptions struct {
	MaxRetries int           // retries after the first attempt
	BaseDelay  time.Duration // defaults to 100ms
	MaxDelay   time.Duration // defaults to 30s
	// Retryable decides whether an error is worth another attempt.
	// nil retries every error.
	Retryable func(error) bool
	Logger    *slog.Logger
}

// WithRetry wraps fetch with jittered exponential backoff. The Iterator
// never retries on its own; callers opt in by decorating their FetchFunc.
// The last fetch error is returned unchanged once retries are exhausted.
func WithRetry[T any](fetch FetchFunc[T], opts RetryOptions) FetchFunc[T] {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	base := opts.BaseDelay
	if base <= 0 {
		base = 100 * time.Millisecond
	}

	return func(ctx context.Context, pageToken string, count int) ([]T, string, error) {
		bo := gax.Backoff{Initial: base, Max: opts.MaxDelay, Multiplier: 2}
		for attempt := 0; ; attempt++ {
			items, next, err := fetch(ctx, pageToken, count)
			if err == nil {
				return items, next, nil
			}
			if attempt >= opts.MaxRetries || (opts.Retryable != nil && !opts.Retryable(err)) {
				return nil, "", err
			}

			delay := bo.Pause()
			logger.Debug("retrying page fetch", "attempt", attempt+1, "delay", delay, "err", err)
			if err := gax.Sleep(ctx, delay); err != nil {
				return nil, "", err
			}
		}
	}
}
