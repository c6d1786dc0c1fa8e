// Package logger provides the logging root that every slog record in a
// process flows through, plus the severity levels and console appenders used
// around it.
//
// This package extends the standard library's log/slog with an explicit,
// process-wide registry of appenders. Sinks such as the Sentry appender
// attach to a [Root] and receive every record exactly once, while loggers
// derived from the root keep working when the set of appenders changes.
//
// # Overview
//
// The package provides:
//   - [Root], the registry of attached [Appender] values with a fan-out handler
//   - Context extractors that automatically inject request-scoped values (e.g., request IDs)
//   - [Level], a severity threshold decodable from names (TRACE < DEBUG < INFO < WARN < ERROR)
//   - JSON console appenders and a no-op logger
//
// # Basic Usage
//
// Create a root, attach appenders and log through it:
//
//	root := logger.NewRoot(
//		logger.NewConsoleAppender("console", os.Stdout, slog.LevelInfo),
//	)
//	log := root.Logger(requestIDExtractor)
//	log.InfoContext(ctx, "request processed", slog.Int("status", 200))
//
// The process-wide root is returned by [DefaultRoot]. Calling Install makes
// it the destination of slog.Default:
//
//	logger.DefaultRoot().Install()
//
// # Logger Names
//
// Records identify their origin with the [LoggerKey] attribute:
//
//	log := logger.Named(slog.Default(), "billing")
//
// Filters use this attribute to reject records, for example the sink's own
// diagnostics.
//
// # Context Extractors
//
// A ContextExtractor is a function that extracts a log attribute from context:
//
//	type ContextExtractor func(ctx context.Context) (slog.Attr, bool)
//
// Extractors are called on every log call, ensuring fresh values for request-scoped data.
// Return false from the extractor to skip adding the attribute for that log entry.
//
// # Lifecycle
//
// Root mutation (Attach, Detach, DetachAndStopAll) is intended for startup
// and shutdown. Logging through the root is lock-free and safe for concurrent
// use at any time.
package logger
