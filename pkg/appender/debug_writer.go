package appender

import (
	"bytes"
	"io"
	"log/slog"

	"github.com/dmitrymomot/logsentry/pkg/logger"
)

// DebugLoggerName is the logger name carried by Sentry SDK debug output.
// The self-reporting guard rejects it, so SDK diagnostics never loop back into Sentry.
const DebugLoggerName = "sentry.debug"

// DebugWriter returns a writer that logs each line written to it at DEBUG level.
// Pass it as sentry.ClientOptions.DebugWriter to route SDK diagnostics through slog.
func DebugWriter(log *slog.Logger) io.Writer {
	if log == nil {
		log = logger.NewNope()
	}
	return &debugWriter{log: logger.Named(log, DebugLoggerName)}
}

type debugWriter struct {
	log *slog.Logger
}

func (w *debugWriter) Write(p []byte) (int, error) {
	for line := range bytes.Lines(p) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		w.log.Debug(string(line))
	}
	return len(p), nil
}
