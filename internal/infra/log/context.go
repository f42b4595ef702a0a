package logs

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// ContextKey is a custom type for context keys to avoid collisions.
type ContextKey string

const (
	// KeyRequestID is the key for storing the caller's request or operation ID in context.
	KeyRequestID ContextKey = "request_id"

	// KeyLogger is the key for storing request-scoped logger in context.
	KeyLogger ContextKey = "logger"
)

// RequestIDFromContext extracts the request ID from context.Context.
// If not found, returns empty string.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(KeyRequestID).(string); ok {
		return id
	}

	return ""
}

// WithRequestID returns a new context with the request ID.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, KeyRequestID, requestID)
}

// LoggerFromContext extracts the request-scoped logger from context.Context.
// If not found, returns nil.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(KeyLogger).(*slog.Logger); ok {
		return logger
	}

	return nil
}

// LoggerOrDefault extracts the request-scoped logger from context.Context.
// If not found, returns the provided fallback logger.
func LoggerOrDefault(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}

	return fallback
}

// WithLogger returns a new context with the logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, KeyLogger, logger)
}

// EnsureOperation makes sure ctx carries an operation ID and a logger tagged with it.
// A caller-supplied request ID or logger is kept as is.
func EnsureOperation(ctx context.Context, fallback *slog.Logger) (context.Context, *slog.Logger) {
	if logger := LoggerFromContext(ctx); logger != nil {
		return ctx, logger
	}

	opID := RequestIDFromContext(ctx)
	if opID == "" {
		opID = uuid.New().String()
		ctx = WithRequestID(ctx, opID)
	}

	logger := fallback.With(slog.String("op_id", opID))

	return WithLogger(ctx, logger), logger
}
