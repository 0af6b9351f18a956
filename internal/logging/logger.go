// Package logging defines a minimal structured-logging interface used across
// the project. Implementations can wrap slog, zap, zerolog, etc.
package logging

import "context"

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Info(ctx, "opening store", "path", path, "backend", backend)
type Logger interface {
	// Debug logs a verbose diagnostic message.
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs a warning message for unusual but non-fatal conditions.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs an error message for failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}

// Discard is a Logger that drops everything. Useful as a default when the
// caller does not care about diagnostics.
type Discard struct{}

func (Discard) Debug(context.Context, string, ...any) {}
func (Discard) Info(context.Context, string, ...any)  {}
func (Discard) Warn(context.Context, string, ...any)  {}
func (Discard) Error(context.Context, string, ...any) {}
func (d Discard) With(...any) Logger                  { return d }
