// Package logging constructs the application's slog loggers and provides
// the standardized attribute helpers and context-derived fields used across
// the pipeline. File output is rotated with lumberjack.
package logging
