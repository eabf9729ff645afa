package logger

import (
	"context"

	"go.uber.org/zap"
)

// loggerKey keys the request-scoped logger stored by the HTTP middleware.
type loggerKey struct{}

// ContextWithLogger stores a logger in the context. The middleware uses
// it to carry a logger tagged with the request id.
func ContextWithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext extracts the request-scoped logger, so handler log lines
// correlate with the canonical request line.
// Returns zap.NewNop() if no logger is found.
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}
