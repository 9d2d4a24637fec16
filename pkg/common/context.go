package common

import (
	"context"
	"time"
)

type contextKey string

const (
	userIDKey    contextKey = "user_id"
	requestIDKey contextKey = "request_id"
	traceIDKey   contextKey = "trace_id"
	startTimeKey contextKey = "start_time"
)

func stringValue(ctx context.Context, key contextKey) (string, bool) {
	v, ok := ctx.Value(key).(string)
	return v, ok
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func GetUserID(ctx context.Context) (string, bool) {
	return stringValue(ctx, userIDKey)
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func GetRequestID(ctx context.Context) (string, bool) {
	return stringValue(ctx, requestIDKey)
}

// WithTraceID stores the X-Ray trace id of the request
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

func GetTraceID(ctx context.Context) (string, bool) {
	return stringValue(ctx, traceIDKey)
}

// WithStartTime marks when the request arrived
func WithStartTime(ctx context.Context, startTime time.Time) context.Context {
	return context.WithValue(ctx, startTimeKey, startTime)
}

// ContextMetadata is what the access log records about a request
type ContextMetadata struct {
	UserID    string
	RequestID string
	TraceID   string
	Duration  time.Duration
}

// ExtractMetadata reads the request metadata; missing values stay empty
func ExtractMetadata(ctx context.Context) ContextMetadata {
	var meta ContextMetadata
	meta.UserID, _ = GetUserID(ctx)
	meta.RequestID, _ = GetRequestID(ctx)
	meta.TraceID, _ = GetTraceID(ctx)
	if start, ok := ctx.Value(startTimeKey).(time.Time); ok {
		meta.Duration = time.Since(start)
	}
	return meta
}
