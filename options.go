package logsentry

import (
	"log/slog"
	"maps"
	"time"

	"github.com/dmitrymomot/logsentry/pkg/appender"
	"github.com/dmitrymomot/logsentry/pkg/logger"
)

const defaultStopTimeout = 5 * time.Second

type options struct {
	root         *logger.Root
	cleanRoot    bool
	stopTimeout  time.Duration
	threshold    *slog.Level
	environment  *string
	release      *string
	serverName   *string
	tags         map[string]string
	appenderOpts []appender.Option
}

// Option configures Bootstrap.
type Option func(*options)

// WithRoot sets the root the appender is registered on.
// Defaults to logger.DefaultRoot().
func WithRoot(root *logger.Root) Option {
	return func(o *options) {
		if root != nil {
			o.root = root
		}
	}
}

// WithCleanRootLogger controls whether every other appender is detached and
// stopped before the Sentry appender is attached.
// Defaults to true.
func WithCleanRootLogger(clean bool) Option {
	return func(o *options) {
		o.cleanRoot = clean
	}
}

// WithThreshold sets the minimum severity reported to Sentry.
// Defaults to ERROR.
func WithThreshold(level slog.Level) Option {
	return func(o *options) {
		o.threshold = &level
	}
}

// WithEnvironment sets the environment tag.
func WithEnvironment(env string) Option {
	return func(o *options) {
		o.environment = &env
	}
}

// WithRelease sets the release tag.
func WithRelease(release string) Option {
	return func(o *options) {
		o.release = &release
	}
}

// WithServerName sets the server name tag.
func WithServerName(name string) Option {
	return func(o *options) {
		o.serverName = &name
	}
}

// WithTags adds tags applied to every event.
func WithTags(tags map[string]string) Option {
	return func(o *options) {
		if o.tags == nil {
			o.tags = make(map[string]string, len(tags))
		}
		maps.Copy(o.tags, tags)
	}
}

// WithStopTimeout bounds how long stopping replaced appenders may take.
// Defaults to 5 seconds.
func WithStopTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.stopTimeout = d
		}
	}
}

// WithAppenderOptions passes options through to appender.Build.
func WithAppenderOptions(opts ...appender.Option) Option {
	return func(o *options) {
		o.appenderOpts = append(o.appenderOpts, opts...)
	}
}

func newOptions(opts ...Option) *options {
	o := &options{
		cleanRoot:   true,
		stopTimeout: defaultStopTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.root == nil {
		o.root = logger.DefaultRoot()
	}
	return o
}

// applyTo overrides the settings given as options; the rest of cfg is kept.
func (o *options) applyTo(cfg Config) Config {
	if o.threshold != nil {
		level := logger.Level(*o.threshold)
		cfg.Threshold = &level
	}
	if o.environment != nil {
		cfg.Environment = o.environment
	}
	if o.release != nil {
		cfg.Release = o.release
	}
	if o.serverName != nil {
		cfg.ServerName = o.serverName
	}
	if o.tags != nil {
		merged := make(map[string]string, len(cfg.Tags)+len(o.tags))
		maps.Copy(merged, cfg.Tags)
		maps.Copy(merged, o.tags)
		cfg.Tags = merged
	}
	return cfg
}
