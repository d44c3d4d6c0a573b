package connector

import (
	"context"
	"log/slog"
	"time"

	"github.com/googleapis/gax-go/v2"
)

// RetryOptions controls ConnectWithRetry. MaxRetries counts attempts after
// the first one.
type RetryOptions struct {
	MaxRetries int           `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
	BaseDelay  time.Duration `json:"base_delay" yaml:"base_delay" mapstructure:"base_delay"`
	MaxDelay   time.Duration `json:"max_delay" yaml:"max_delay" mapstructure:"max_delay"`
}

func retryConnect(ctx context.Context, opts RetryOptions, connectFn func(context.Context) (Connection, error)) (Connection, error) {
	initial := opts.BaseDelay
	if initial <= 0 {
		initial = time.Second
	}
	bo := gax.Backoff{Initial: initial, Max: opts.MaxDelay, Multiplier: 2}

	for attempt := 0; ; attempt++ {
		conn, err := connectFn(ctx)
		if err == nil {
			return conn, nil
		}
		if attempt >= opts.MaxRetries {
			return nil, err
		}

		delay := bo.Pause()
		slog.Warn("connect failed, retrying", "attempt", attempt+1, "delay", delay, "error", err)
		if err := gax.Sleep(ctx, delay); err != nil {
			return nil, err
		}
	}
}
