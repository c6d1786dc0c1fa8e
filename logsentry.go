package logsentry

import (
	"github.com/dmitrymomot/logsentry/pkg/appender"
	"github.com/dmitrymomot/logsentry/pkg/logger"
)

// Type aliases - public API
type (
	// Appender is the Sentry logging sink.
	Appender = appender.Appender

	// Config holds the declarative Sentry appender settings.
	Config = appender.Config

	// Root is the registry of appenders every record flows through.
	Root = logger.Root
)

// ConfigFromEnv reads Config from SENTRY_* environment variables.
func ConfigFromEnv() (Config, error) {
	return appender.ConfigFromEnv()
}
