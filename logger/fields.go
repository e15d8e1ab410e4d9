package logger

import (
	"context"

	"go.uber.org/zap"
)

// Standard field names for structured logging.
const (
	// Identity and context
	FieldRequestID = "request_id"
	FieldComponent = "component"

	// Requests
	FieldURL      = "url"
	FieldQuantity = "quantity"
	FieldFormat   = "format"
	FieldTimeout  = "timeout"

	// Responses
	FieldRows  = "rows"
	FieldLines = "lines"
	FieldBytes = "bytes"

	// Cache
	FieldCacheHit = "cache"
	FieldKey      = "key"
	FieldAge      = "age"

	// Timing
	FieldDurationMS = "duration_ms"

	// Misc
	FieldPath  = "path"
	FieldCount = "count"
	FieldError = "error"
)

type contextKey string

const (
	requestIDKey contextKey = "logger_request_id"
	componentKey contextKey = "logger_component"
)

// WithRequestID adds a request ID to the context for logging
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// WithComponent adds a component name to the context for logging
func WithComponent(ctx context.Context, component string) context.Context {
	return context.WithValue(ctx, componentKey, component)
}

// RequestID returns the request ID carried by ctx, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// FieldsFromContext extracts logging fields from context.
// Returns key-value pairs suitable for use with Infow/Errorw/etc.
func FieldsFromContext(ctx context.Context) []interface{} {
	var fields []interface{}
	if requestID, ok := ctx.Value(requestIDKey).(string); ok && requestID != "" {
		fields = append(fields, FieldRequestID, requestID)
	}
	if component, ok := ctx.Value(componentKey).(string); ok && component != "" {
		fields = append(fields, FieldComponent, component)
	}
	return fields
}

// FromContext returns base with the fields carried by ctx. A nil base
// means the global Logger.
func FromContext(ctx context.Context, base *zap.SugaredLogger) *zap.SugaredLogger {
	if base == nil {
		base = Logger
	}
	fields := FieldsFromContext(ctx)
	if len(fields) == 0 {
		return base
	}
	return base.With(fields...)
}

// ComponentLogger returns a named logger for a specific component.
//
//	cache := logger.ComponentLogger("crdb.cache")
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}
