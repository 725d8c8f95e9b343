package logger

import (
	"context"
	"time"
)

// WithLogging wraps an operation with start/finish log lines on the context logger.
func WithLogging[T any](name string, op func(ctx context.Context) (T, error)) func(ctx context.Context) (T, error) {
	return func(ctx context.Context) (T, error) {
		lg := From(ctx).With("operation", name)
		start := time.Now()
		lg.DebugContext(ctx, "operation started")

		result, err := op(ctx)
		if err != nil {
			lg.ErrorContext(ctx, "operation failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
			return result, err
		}

		lg.InfoContext(ctx, "operation completed", "duration_ms", time.Since(start).Milliseconds())
		return result, nil
	}
}
