package appender

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/logsentry/pkg/filter"
	"github.com/dmitrymomot/logsentry/pkg/logger"
)

const (
	// DefaultName is the name an appender is attached under unless WithName is given.
	DefaultName = "sentry"

	// DefaultFlushTimeout bounds how long Stop waits for buffered events.
	DefaultFlushTimeout = 2 * time.Second

	// InternalLoggerName is the logger name of the appender's own diagnostics.
	InternalLoggerName = "sentry.appender"
)

type buildOptions struct {
	name         string
	filters      []filter.Factory
	transport    sentry.Transport
	registry     *Registry
	metrics      *Metrics
	log          *slog.Logger
	flushTimeout time.Duration
}

// Option configures Build.
type Option func(*buildOptions)

// WithName sets the name the appender is attached under.
func WithName(name string) Option {
	return func(o *buildOptions) {
		if name != "" {
			o.name = name
		}
	}
}

// WithFilters adds filters supplied by the logging pipeline. They run after
// the severity threshold and before the self-reporting guard, in the order given.
// Stateful filters (those implementing filter.Lifecycle) see only records the
// guard lets through, so internal records never consume their state.
func WithFilters(factories ...filter.Factory) Option {
	return func(o *buildOptions) {
		o.filters = append(o.filters, factories...)
	}
}

// WithTransport sets the transport events are delivered through.
// It overrides any transport chosen by a configurator.
func WithTransport(t sentry.Transport) Option {
	return func(o *buildOptions) {
		o.transport = t
	}
}

// WithRegistry sets the registry configurators are resolved from.
func WithRegistry(r *Registry) Option {
	return func(o *buildOptions) {
		if r != nil {
			o.registry = r
		}
	}
}

// WithMetrics registers the appender counters with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *buildOptions) {
		o.metrics = NewMetrics(reg)
	}
}

// WithLogger sets the logger for the appender's own diagnostics.
// Defaults to a logger on the root the appender is built for.
func WithLogger(l *slog.Logger) Option {
	return func(o *buildOptions) {
		if l != nil {
			o.log = l
		}
	}
}

// WithFlushTimeout bounds how long Stop waits for buffered events.
func WithFlushTimeout(d time.Duration) Option {
	return func(o *buildOptions) {
		if d > 0 {
			o.flushTimeout = d
		}
	}
}

// Build creates a configured appender for root from cfg.
//
// It validates cfg, assembles the Sentry options, runs the configurator named
// by cfg.Configurator, builds the filter chain and creates a Sentry client
// bound to a private hub. Nothing is attached to root and no network I/O
// happens; call Start and attach the appender to begin reporting.
//
// Build panics if root is nil.
func Build(root *logger.Root, cfg Config, opts ...Option) (*Appender, error) {
	if root == nil {
		panic("appender: Build called with nil root")
	}

	o := &buildOptions{
		name:         DefaultName,
		registry:     DefaultRegistry,
		flushTimeout: DefaultFlushTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.log == nil {
		o.log = root.Logger()
	}
	internal := logger.Named(o.log, InternalLoggerName)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	options := cfg.SentryOptions()
	if cfg.Configurator != nil {
		name := *cfg.Configurator
		c, err := o.registry.Resolve(name)
		if err != nil {
			return nil, err
		}
		if err := apply(name, c, options); err != nil {
			return nil, err
		}
		if err := validateEndpoint(options.Dsn); err != nil {
			return nil, err
		}
	}

	supplied := make([]filter.Filter, 0, len(o.filters))
	for i, factory := range o.filters {
		if factory == nil {
			continue
		}
		f, err := factory.Build()
		if err != nil {
			return nil, errors.Join(ErrConfiguration, ErrFilterFactory, fmt.Errorf("filter %d: %w", i, err))
		}
		supplied = append(supplied, f)
	}
	chain := filter.NewChain(filter.Threshold(options.threshold()), supplied, filter.SelfReportingGuard())

	clientOptions := options.ClientOptions
	if o.transport != nil {
		clientOptions.Transport = o.transport
	}
	if clientOptions.Debug && clientOptions.DebugWriter == nil {
		clientOptions.DebugWriter = DebugWriter(o.log)
	}

	client, err := sentry.NewClient(clientOptions)
	if err != nil {
		return nil, errors.Join(ErrConfiguration, ErrClient, err)
	}
	if len(options.InAppIncludes) > 0 || len(options.InAppExcludes) > 0 {
		client.AddEventProcessor(inAppProcessor(options.InAppIncludes, options.InAppExcludes))
	}

	c := &core{
		name:         o.name,
		opts:         options.clone(),
		chain:        chain,
		client:       client,
		hub:          sentry.NewHub(client, sentry.NewScope()),
		log:          internal,
		metrics:      o.metrics,
		flushTimeout: o.flushTimeout,
	}
	c.opts.ClientOptions = client.Options()
	c.state.Advance(StateCreated, StateConfigured)

	return &Appender{core: c}, nil
}
