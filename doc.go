// Package logsentry forwards application log records to Sentry.
//
// Records logged through log/slog flow into a logging root, a registry of
// appenders. Bootstrap builds a Sentry appender and registers it on the
// root, so every record at or above the threshold becomes a Sentry event:
//
//	a, err := logsentry.Bootstrap(os.Getenv("SENTRY_DSN"),
//	    logsentry.WithEnvironment("production"),
//	    logsentry.WithTags(map[string]string{"team": "infra"}),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer a.Stop(context.Background())
//
//	slog.Error("disk full") // reported to Sentry
//
// By default Bootstrap registers on [logger.DefaultRoot], replaces any
// other appender there and installs the root as the slog default. Use
// WithCleanRootLogger(false) to keep the console output, or WithRoot to
// manage a root explicitly.
//
// Declarative configuration is read with [ConfigFromEnv] and passed to
// [BootstrapConfig]:
//
//	cfg, err := logsentry.ConfigFromEnv()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	a, err := logsentry.BootstrapConfig(cfg, logsentry.WithCleanRootLogger(false))
//
// # Packages
//
//   - pkg/logger: the logging root, levels and console appenders
//   - pkg/filter: the filter chain, the self-reporting guard and rate limiting
//   - pkg/appender: the Sentry appender, its configuration and configurators
package logsentry
