package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// ConsoleAppenderName is the name of the console appender installed on the default root.
const ConsoleAppenderName = "console"

// New creates a JSON-formatted logger on its own root with optional context extractors.
func New(extractors ...ContextExtractor) *slog.Logger {
	root := NewRoot(NewConsoleAppender(ConsoleAppenderName, os.Stdout, slog.LevelInfo))
	return root.Logger(extractors...)
}

// NewConsoleAppender creates an appender that writes JSON lines to w
// for records at or above level. Stop is a no-op; w is owned by the caller.
func NewConsoleAppender(name string, w io.Writer, level slog.Leveler) Appender {
	return &handlerAppender{
		Handler: slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}),
		name:    name,
	}
}

// NewHandlerAppender exposes any slog.Handler as a named appender.
// Stop calls stop if it is not nil.
func NewHandlerAppender(name string, h slog.Handler, stop func(context.Context) error) Appender {
	return &handlerAppender{Handler: h, name: name, stop: stop}
}

type handlerAppender struct {
	slog.Handler
	name string
	stop func(context.Context) error
}

func (a *handlerAppender) Name() string {
	return a.name
}

func (a *handlerAppender) Stop(ctx context.Context) error {
	if a.stop == nil {
		return nil
	}
	return a.stop(ctx)
}
