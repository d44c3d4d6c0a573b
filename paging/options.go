package paging

import "log/slog"

type config struct {
	logger *slog.Logger
	name   string
}

// Option configures an Iterator.
type Option func(*config)

// WithLogger sets the logger used for page fetch records.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithName labels log records with the listing being walked.
func WithName(name string) Option {
	return func(c *config) { c.name = name }
}
