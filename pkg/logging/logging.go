// Package logging configures the global zap logger and carries a request
// id through context so the log lines for one order can be correlated
// across the gateway, the exchange and the feed.
package logging

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// contextKey defines a type for context keys
type contextKey string

const requestIDKey contextKey = "request_id"

// Init builds the production logger at the given level ("debug", "info",
// "warn", "error") and installs it as the zap global. Unknown levels fall
// back to info.
func Init(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zapLevel)
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := config.Build()
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}

// WithRequestID adds request_id to context, generating one when id is empty.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if requestID == "" {
		requestID = uuid.NewString()
	}
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestID retrieves request_id from context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(requestIDKey).(string); ok {
		return reqID
	}
	return ""
}

// S returns the global sugared logger tagged with the context request id.
func S(ctx context.Context) *zap.SugaredLogger {
	if reqID := RequestID(ctx); reqID != "" {
		return zap.S().With("request_id", reqID)
	}
	return zap.S()
}
