package appender

import (
	"errors"
	"log/slog"
	"slices"
	"strings"

	"github.com/getsentry/sentry-go"

	"github.com/dmitrymomot/logsentry/pkg/logger"
)

// DefaultThreshold is the severity used when Config.Threshold is absent.
const DefaultThreshold = slog.LevelError

// Config holds the declarative Sentry appender settings.
// Optional settings are pointers or nil collections: nil means "do not set",
// which leaves the Sentry SDK default (often derived from SENTRY_* variables) in place.
// Embed this in your app config for env parsing with caarlos0/env.
type Config struct {
	// Sentry DSN identifying the project. Required.
	Endpoint string `env:"SENTRY_DSN" yaml:"dsn"`

	// Free-text tags attached to every event.
	Environment *string `env:"SENTRY_ENVIRONMENT" yaml:"environment"`
	Release     *string `env:"SENTRY_RELEASE" yaml:"release"`
	ServerName  *string `env:"SENTRY_SERVER_NAME" yaml:"serverName"`

	// Tags applied to every event, e.g. SENTRY_TAGS="team:infra,tier:backend".
	Tags map[string]string `env:"SENTRY_TAGS" yaml:"tags"`

	// Module prefixes that mark stack frames as application or library code.
	InAppIncludes []string `env:"SENTRY_IN_APP_INCLUDES" yaml:"inAppIncludes"`
	InAppExcludes []string `env:"SENTRY_IN_APP_EXCLUDES" yaml:"inAppExcludes"`

	// Name of a registered Configurator invoked before the appender is finalized.
	Configurator *string `env:"SENTRY_CONFIGURATOR" yaml:"configurator"`

	// Minimum severity for both events and breadcrumbs. Defaults to DefaultThreshold.
	Threshold *logger.Level `env:"SENTRY_THRESHOLD" yaml:"threshold"`

	// Routes Sentry SDK debug output into slog under the "sentry.debug" logger.
	Debug bool `env:"SENTRY_DEBUG" yaml:"debug"`
}

// Some returns a pointer to v, for filling optional Config fields.
func Some[T any](v T) *T {
	return &v
}

// Validate checks the settings that must hold before anything is built.
func (c Config) Validate() error {
	return validateEndpoint(c.Endpoint)
}

func validateEndpoint(endpoint string) error {
	if strings.TrimSpace(endpoint) == "" {
		return errors.Join(ErrConfiguration, ErrEndpointRequired)
	}
	if _, err := sentry.NewDsn(endpoint); err != nil {
		return errors.Join(ErrConfiguration, ErrInvalidEndpoint, err)
	}
	return nil
}

// ThresholdLevel returns the configured threshold or DefaultThreshold.
func (c Config) ThresholdLevel() slog.Level {
	if c.Threshold == nil {
		return DefaultThreshold
	}
	return c.Threshold.Level()
}

// SentryOptions assembles the mutable options a Configurator receives.
// Each present setting is applied independently; absent ones are left unset.
func (c Config) SentryOptions() *SentryOptions {
	threshold := c.ThresholdLevel()
	opts := &SentryOptions{
		ClientOptions: sentry.ClientOptions{
			Dsn:   c.Endpoint,
			Debug: c.Debug,
		},
	}
	opts.SetThreshold(threshold)

	if c.Environment != nil {
		opts.Environment = *c.Environment
	}
	if c.Release != nil {
		opts.Release = *c.Release
	}
	if c.ServerName != nil {
		opts.ServerName = *c.ServerName
	}
	for k, v := range c.Tags {
		opts.SetTag(k, v)
	}
	for _, prefix := range c.InAppIncludes {
		opts.AddInAppInclude(prefix)
	}
	for _, prefix := range c.InAppExcludes {
		opts.AddInAppExclude(prefix)
	}
	return opts
}

// SentryOptions is the in-progress appender configuration: the Sentry client
// options plus the settings the appender applies on top of them.
// Configurators may override any field.
type SentryOptions struct {
	sentry.ClientOptions

	// Module prefixes whose frames are marked in-app / not in-app.
	// Includes take precedence over excludes.
	InAppIncludes []string
	InAppExcludes []string

	// Records at or above MinimumEventLevel become Sentry events; records at
	// or above MinimumBreadcrumbLevel are kept as breadcrumbs for later events.
	MinimumEventLevel      slog.Level
	MinimumBreadcrumbLevel slog.Level
}

// SetTag sets a tag applied to every event.
func (o *SentryOptions) SetTag(key, value string) {
	if o.Tags == nil {
		o.Tags = make(map[string]string)
	}
	o.Tags[key] = value
}

// AddInAppInclude marks frames of modules with the given prefix as application code.
func (o *SentryOptions) AddInAppInclude(prefix string) {
	o.InAppIncludes = append(o.InAppIncludes, prefix)
}

// AddInAppExclude marks frames of modules with the given prefix as library code.
func (o *SentryOptions) AddInAppExclude(prefix string) {
	o.InAppExcludes = append(o.InAppExcludes, prefix)
}

// SetThreshold sets the event and breadcrumb minimums to the same level.
func (o *SentryOptions) SetThreshold(level slog.Level) {
	o.MinimumEventLevel = level
	o.MinimumBreadcrumbLevel = level
}

// threshold is the lowest level the appender has any use for.
func (o *SentryOptions) threshold() slog.Level {
	return min(o.MinimumEventLevel, o.MinimumBreadcrumbLevel)
}

func (o *SentryOptions) clone() SentryOptions {
	c := *o
	if o.Tags != nil {
		c.Tags = make(map[string]string, len(o.Tags))
		for k, v := range o.Tags {
			c.Tags[k] = v
		}
	}
	c.InAppIncludes = slices.Clone(o.InAppIncludes)
	c.InAppExcludes = slices.Clone(o.InAppExcludes)
	return c
}
