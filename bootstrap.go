package logsentry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/logsentry/pkg/appender"
	"github.com/dmitrymomot/logsentry/pkg/logger"
)

// ErrBootstrap is returned when the appender was built but could not be registered.
var ErrBootstrap = errors.New("logsentry: bootstrap failed")

// Bootstrap reports log records at or above ERROR to the Sentry project
// identified by endpoint.
//
// The appender is built and started first, so configuration and filter
// errors surface before the root is touched. An appender already registered
// under the same name is then stopped and replaced; with
// WithCleanRootLogger(true), the default, every other appender is detached
// and stopped as well. The new appender is attached last. When the root is logger.DefaultRoot(), it is installed as
// the slog default.
//
// Bootstrap must not be called concurrently with itself.
func Bootstrap(endpoint string, opts ...Option) (*Appender, error) {
	return BootstrapConfig(Config{Endpoint: endpoint}, opts...)
}

// BootstrapConfig is Bootstrap with a complete configuration, for example one
// read by ConfigFromEnv. Options override the matching cfg fields.
func BootstrapConfig(cfg Config, opts ...Option) (*Appender, error) {
	o := newOptions(opts...)
	root := o.root

	a, err := appender.Build(root, o.applyTo(cfg), o.appenderOpts...)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), o.stopTimeout)
	defer cancel()

	// A failed start must leave the root as it was.
	if err := a.Start(); err != nil {
		_ = a.Stop(ctx)
		return nil, errors.Join(ErrBootstrap, err)
	}

	var stopErrs []error
	if prior, ok := root.Detach(a.Name()); ok {
		if err := prior.Stop(ctx); err != nil {
			stopErrs = append(stopErrs, fmt.Errorf("stop %s: %w", prior.Name(), err))
		}
	}
	if o.cleanRoot {
		if err := root.DetachAndStopAll(ctx); err != nil {
			stopErrs = append(stopErrs, err)
		}
	}

	if err := root.Attach(a); err != nil {
		_ = a.Stop(ctx)
		return nil, errors.Join(ErrBootstrap, err)
	}
	if root.IsDefault() {
		root.Install()
	}

	log := logger.Named(root.Logger(), "sentry.bootstrap")
	if len(stopErrs) > 0 {
		log.Warn("replaced appenders did not stop cleanly", slog.Any("error", errors.Join(stopErrs...)))
	}
	log.Info("sentry appender registered",
		slog.String("appender", a.Name()),
		slog.String("threshold", a.Options().MinimumEventLevel.String()),
	)
	return a, nil
}
