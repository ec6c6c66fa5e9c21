package log

import "context"

// Logger is the logging interface the rest of the service depends on.
// It is context-aware so adapters can fold request tracing data into
// every event.
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...map[string]interface{})
	Info(ctx context.Context, msg string, fields ...map[string]interface{})
	Warn(ctx context.Context, msg string, fields ...map[string]interface{})
	Error(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	Fatal(ctx context.Context, msg string, err error, fields ...map[string]interface{})

	// With returns a new logger carrying the given structured fields.
	With(fields map[string]interface{}) Logger
}
