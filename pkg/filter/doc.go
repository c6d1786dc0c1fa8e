// Package filter provides admission filters that decide which log records
// reach an error-reporting sink.
//
// A [Filter] returns one of [Accept], [Deny] or [Neutral] for an [Event].
// Filters are combined into a [Chain] that short-circuits on the first Deny
// and accepts everything else:
//
//	chain := filter.NewChain(
//		filter.Threshold(slog.LevelWarn),
//		[]filter.Filter{filter.DenyLoggers("healthcheck")},
//		filter.SelfReportingGuard(),
//	)
//
// # Self-Reporting Guard
//
// [SelfReportingGuard] is always the last element of an appender chain. It
// denies records emitted by the Sentry SDK or by the appender itself,
// identified by the logger.LoggerKey attribute or by [SelfReportingMarker],
// so that a failing client never reports its own failures in a loop.
//
// # Stateful Filters
//
// Filters that keep state implement [Lifecycle]. [Chain.Start] activates them
// before the sink receives records; [RateLimit] is the bundled example.
package filter
