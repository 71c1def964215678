package builder

import "log/slog"

// Option customizes a Builder.
type Option func(*Builder)

// WithLogger sets the logger used for non-fatal anomaly reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}
