package observability

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	"github.com/google/uuid"
)

type contextKey string

const (
	traceIDBytes = 16 // OpenTelemetry trace ID size in bytes
	spanIDBytes  = 8  // OpenTelemetry span ID size in bytes
)

const (
	// TraceIDKey holds the OpenTelemetry trace ID.
	TraceIDKey contextKey = "trace_id"

	// SpanIDKey holds the OpenTelemetry span ID.
	SpanIDKey contextKey = "span_id"

	// RequestIDKey holds the unique request identifier.
	RequestIDKey contextKey = "request_id"

	// ProviderKey holds the upstream provider serving this request.
	ProviderKey contextKey = "provider"

	// ModelKey holds the model name for this request.
	ModelKey contextKey = "model"

	// SessionIDKey holds the consumer session identifier.
	SessionIDKey contextKey = "session_id"
)

func withString(ctx context.Context, key contextKey, value string) context.Context {
	return context.WithValue(ctx, key, value)
}

func stringValue(ctx context.Context, key contextKey) string {
	if value, ok := ctx.Value(key).(string); ok {
		return value
	}
	return ""
}

// WithTraceID injects trace ID into context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return withString(ctx, TraceIDKey, traceID)
}

// WithSpanID injects span ID into context.
func WithSpanID(ctx context.Context, spanID string) context.Context {
	return withString(ctx, SpanIDKey, spanID)
}

// WithRequestID injects request ID into context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return withString(ctx, RequestIDKey, requestID)
}

// WithProvider injects provider name into context.
func WithProvider(ctx context.Context, provider string) context.Context {
	return withString(ctx, ProviderKey, provider)
}

// WithModel injects model name into context.
func WithModel(ctx context.Context, model string) context.Context {
	return withString(ctx, ModelKey, model)
}

// WithSessionID injects the consumer session ID into context.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return withString(ctx, SessionIDKey, sessionID)
}

// GetTraceID extracts trace ID from context.
func GetTraceID(ctx context.Context) string { return stringValue(ctx, TraceIDKey) }

// GetSpanID extracts span ID from context.
func GetSpanID(ctx context.Context) string { return stringValue(ctx, SpanIDKey) }

// GetRequestID extracts request ID from context.
func GetRequestID(ctx context.Context) string { return stringValue(ctx, RequestIDKey) }

// GetProvider extracts provider name from context.
func GetProvider(ctx context.Context) string { return stringValue(ctx, ProviderKey) }

// GetModel extracts model name from context.
func GetModel(ctx context.Context) string { return stringValue(ctx, ModelKey) }

// GetSessionID extracts the consumer session ID from context.
func GetSessionID(ctx context.Context) string { return stringValue(ctx, SessionIDKey) }

// GenerateTraceID generates an OpenTelemetry-compatible trace ID (32 hex chars).
func GenerateTraceID() string {
	return randomHex(traceIDBytes, func() string { return uuid.New().String() })
}

// GenerateSpanID generates an OpenTelemetry-compatible span ID (16 hex chars).
func GenerateSpanID() string {
	return randomHex(spanIDBytes, func() string { return uuid.New().String()[:16] })
}

// GenerateRequestID generates a unique request identifier (UUID).
func GenerateRequestID() string {
	return uuid.New().String()
}

func randomHex(size int, fallback func() string) string {
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return fallback()
	}
	return hex.EncodeToString(buf)
}
