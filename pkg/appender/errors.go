package appender

import (
	"errors"
	"fmt"
)

// Configuration errors. They are returned by Build before any network or
// filesystem activity and are always joined with ErrConfiguration.
var (
	ErrConfiguration    = errors.New("appender: invalid configuration")
	ErrEndpointRequired = errors.New("appender: endpoint required")
	ErrInvalidEndpoint  = errors.New("appender: invalid endpoint")
	ErrFilterFactory    = errors.New("appender: failed to build filter")
	ErrClient           = errors.New("appender: failed to create sentry client")
)

// Extension point errors. They are wrapped in *ExtensionResolutionError.
var (
	ErrExtensionResolution = errors.New("appender: extension resolution failed")
	ErrUnknownConfigurator = errors.New("appender: unknown configurator")
	ErrNoConstructor       = errors.New("appender: configurator has no constructor")
	ErrConstructorFailed   = errors.New("appender: configurator constructor failed")
	ErrNotConfigurator     = errors.New("appender: value does not implement Configurator")
	ErrConfigureFailed     = errors.New("appender: configurator failed")
)

// Lifecycle errors.
var (
	// ErrInvalidState is returned when a lifecycle method is called in a
	// state it cannot transition from, e.g. Start after Stop.
	ErrInvalidState = errors.New("appender: invalid state transition")

	// ErrNotRunning is returned by health checks when the appender is not running.
	ErrNotRunning = errors.New("appender: not running")
)

// ExtensionResolutionError reports a configurator that could not be resolved,
// instantiated or run. It matches both ErrExtensionResolution and its cause
// with errors.Is.
type ExtensionResolutionError struct {
	Name string
	Err  error
}

func (e *ExtensionResolutionError) Error() string {
	return fmt.Sprintf("appender: configurator %q: %v", e.Name, e.Err)
}

func (e *ExtensionResolutionError) Unwrap() []error {
	return []error{ErrExtensionResolution, e.Err}
}
