package logger

import (
	"context"
	"log/slog"
)

// contextKey is a private type for the context keys defined in this package,
// preventing collisions with keys stored by other packages.
type contextKey int

const (
	loggerKey contextKey = iota
	requestIDKey
)

// WithLogger returns a copy of ctx carrying the provided logger. Middleware
// uses this to propagate a request-scoped logger (typically enriched with a
// request ID) down to services and stores.
//
// It panics if logger is nil, since storing a nil logger would turn every
// downstream FromContext call into a latent nil dereference.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	if logger == nil {
		panic("logger cannot be nil")
	}
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the logger stored in ctx, falling back to the process
// default logger when ctx is nil or carries no logger. It never returns nil.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return slog.Default()
	}
	if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

// FromContextOrDefault returns the logger stored in ctx, or defaultLogger
// when ctx is nil or carries no logger. When defaultLogger is also nil it
// falls back to the process default logger, so the result is never nil.
func FromContextOrDefault(ctx context.Context, defaultLogger *slog.Logger) *slog.Logger {
	if defaultLogger == nil {
		defaultLogger = slog.Default()
	}
	if ctx == nil {
		return defaultLogger
	}
	if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return l
	}
	return defaultLogger
}

// WithRequestID returns a copy of ctx carrying the given correlation ID.
// The ID travels alongside the logger so code that needs the raw value
// (error responses, event payloads) can reference the same ID the logs use.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFromContext returns the correlation ID stored in ctx, if any.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(requestIDKey).(string)
	return id, ok
}
