// Package logging defines the structured-logging interface used by the sync
// layer. The engine and the façade only depend on Logger; the slog-backed
// implementation lives in slog.go.
package logging

import "context"

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key-value pairs, e.g.:
//
//	log.Warn(ctx, "remote list failed", "collection", "messages", "error", err)
type Logger interface {
	// Debug logs diagnostic detail (snapshot sizes, state transitions).
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs recovered failures: remote errors, cache parse errors.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs failures that lose data durability, e.g. cache writes.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key-value pairs.
	With(args ...any) Logger
}
