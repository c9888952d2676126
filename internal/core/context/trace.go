package context

import (
	"context"

	"medledger/internal/core/id"
)

// TraceContext carries per-request correlation IDs. The trace ID follows a
// request across services; the request ID identifies this single request.
type TraceContext struct {
	TraceID   string
	RequestID string
}

type traceContextKey struct{}

// WithTrace stores trace IDs in the context.
func WithTrace(ctx context.Context, trace TraceContext) context.Context {
	return context.WithValue(ctx, traceContextKey{}, trace)
}

// GetTrace returns the trace IDs from the context, if present.
func GetTrace(ctx context.Context) (TraceContext, bool) {
	t, ok := ctx.Value(traceContextKey{}).(TraceContext)
	return t, ok
}

// GetRequestID returns the request ID or an empty string.
func GetRequestID(ctx context.Context) string {
	t, _ := GetTrace(ctx)
	return t.RequestID
}

// NewTraceID generates a fresh trace or request identifier.
func NewTraceID() string {
	return id.New().String()
}
