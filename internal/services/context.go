package services

import "context"

type contextKey string

const (
	refreshIDKey contextKey = "refresh_id"
	triggerKey   contextKey = "trigger"
	requestIDKey contextKey = "request_id"
)

// WithRefreshID annotates context with the refresh run identifier.
func WithRefreshID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, refreshIDKey, id)
}

// RefreshIDFromContext extracts the refresh run identifier if present.
func RefreshIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(refreshIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithTrigger annotates context with the refresh trigger name (scheduled/forced/lazy).
func WithTrigger(ctx context.Context, trigger string) context.Context {
	if trigger == "" {
		return ctx
	}
	return context.WithValue(ctx, triggerKey, trigger)
}

// TriggerFromContext returns the refresh trigger name if present.
func TriggerFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(triggerKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
