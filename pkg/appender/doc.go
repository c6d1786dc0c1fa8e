// Package appender provides a logging sink that reports log records to Sentry.
//
// An [Appender] is a [logger.Appender]: it attaches to a [logger.Root] and
// receives every record logged through it. Records pass a filter chain made of
// a severity threshold, the filters supplied by the pipeline and a guard that
// rejects the Sentry client's own diagnostics. Admitted records become Sentry
// events or breadcrumbs on a hub private to the appender.
//
// # Configuration
//
// [Config] holds the declarative settings. Optional fields are pointers and
// nil collections, so "absent" and "empty" are distinguishable:
//
//	cfg := appender.Config{
//		Endpoint:    "https://public@o0.ingest.sentry.io/1",
//		Environment: appender.Some("production"),
//		Tags:        map[string]string{"team": "infra"},
//	}
//
// Config can also be read from SENTRY_* environment variables with
// [ConfigFromEnv] or from YAML with [ParseConfig] and [LoadConfigFile].
//
// # Configurators
//
// Settings that cannot be expressed declaratively are applied by a
// [Configurator] registered under a name and selected with Config.Configurator:
//
//	appender.Register("sampling", func() appender.Configurator {
//		return appender.ConfiguratorFunc(func(o *appender.SentryOptions) {
//			o.SampleRate = 0.25
//		})
//	})
//
// The built-in "redact" configurator masks sensitive attribute values.
//
// # Lifecycle
//
// [Build] validates the configuration and returns a configured appender
// without touching the network. Start activates it; Stop flushes pending
// events and releases the client. Stop is idempotent and once it returns no
// further records are delivered.
//
//	a, err := appender.Build(root, cfg, appender.WithMetrics(prometheus.DefaultRegisterer))
//	if err != nil {
//		return err
//	}
//	if err := a.Start(); err != nil {
//		return err
//	}
//	if err := root.Attach(a); err != nil {
//		return err
//	}
//	defer a.Stop(context.Background())
//
// Logging never fails because of the sink: delivery errors are absorbed.
package appender
