// Package log provides structured logging with verbosity levels for
// taskdelta, wrapping log/slog with kubectl-style -v=N verbosity.
package log

import "log/slog"

// LevelTrace is a custom trace level, more verbose than debug.
const LevelTrace = slog.Level(-8)

// Verbosity level constants for documentation and reference.
const (
	VerbosityError = 0 // Errors only (quiet)
	VerbosityWarn  = 1 // + Warnings
	VerbosityInfo  = 2 // + Info (state loaded, filter summaries)
	VerbosityDebug = 3 // + Debug (per-entry classification, timing)
	VerbosityTrace = 4 // + Trace (full tree dumps)
)

// VerbosityToLevel maps -v=N to a slog level.
func VerbosityToLevel(v int) slog.Level {
	switch {
	case v <= 0:
		return slog.LevelError
	case v == 1:
		return slog.LevelWarn
	case v == 2:
		return slog.LevelInfo
	case v == 3:
		return slog.LevelDebug
	default:
		return LevelTrace
	}
}

// LevelName returns the display name for a level, including custom levels.
func LevelName(l slog.Level) string {
	if l <= LevelTrace {
		return "TRACE"
	}
	return l.String()
}
