package log

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// HandlerOptions configures the log handler.
type HandlerOptions struct {
	Level  slog.Leveler
	Format string // "text" or "json"
	Output io.Writer
}

// NewHandler creates the appropriate handler for the options.
func NewHandler(opts HandlerOptions) slog.Handler {
	if opts.Output == nil {
		opts.Output = os.Stderr // Always stderr, never stdout
	}

	handlerOpts := &slog.HandlerOptions{
		Level:       opts.Level,
		ReplaceAttr: replaceLevelNames,
	}

	if opts.Format == "json" {
		return slog.NewJSONHandler(opts.Output, handlerOpts)
	}
	return slog.NewTextHandler(opts.Output, handlerOpts)
}

// replaceLevelNames customizes level display (TRACE, etc.).
func replaceLevelNames(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.LevelKey {
		if level, ok := a.Value.Any().(slog.Level); ok {
			a.Value = slog.StringValue(LevelName(level))
		}
	}
	return a
}

// discardHandler discards all log records.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }
