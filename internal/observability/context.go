package observability

import (
	"context"
)

// Context keys for observability data.
type contextKey string

const (
	requestIDKey contextKey = "request_id"
	toolKey      contextKey = "tool"
)

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFromContext retrieves the request ID from context.
// Returns empty string if not present.
func RequestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// WithTool adds the name of the tool being invoked to the context.
func WithTool(ctx context.Context, tool string) context.Context {
	return context.WithValue(ctx, toolKey, tool)
}

// ToolFromContext retrieves the tool name from context.
// Returns empty string if not present.
func ToolFromContext(ctx context.Context) string {
	if v := ctx.Value(toolKey); v != nil {
		if name, ok := v.(string); ok {
			return name
		}
	}
	return ""
}

// CallContext contains the context data for a single tool invocation.
type CallContext struct {
	RequestID string
	Tool      string
}

// WithCallContext adds all call context to the context.
func WithCallContext(ctx context.Context, cc CallContext) context.Context {
	if cc.RequestID != "" {
		ctx = WithRequestID(ctx, cc.RequestID)
	}
	if cc.Tool != "" {
		ctx = WithTool(ctx, cc.Tool)
	}
	return ctx
}

// CallContextFromContext extracts all call context from the context.
func CallContextFromContext(ctx context.Context) CallContext {
	return CallContext{
		RequestID: RequestIDFromContext(ctx),
		Tool:      ToolFromContext(ctx),
	}
}
