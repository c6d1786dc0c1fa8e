package appender

import (
	"fmt"
	"slices"
	"sync"
)

// Configurator customizes the appender options before the appender is
// finalized, for settings that static configuration cannot express
// (BeforeSend hooks, sampling, custom transports).
// It is invoked once, synchronously, during Build.
type Configurator interface {
	Configure(opts *SentryOptions)
}

// ConfiguratorFunc adapts a function to the Configurator interface.
type ConfiguratorFunc func(opts *SentryOptions)

// Configure calls f(opts).
func (f ConfiguratorFunc) Configure(opts *SentryOptions) {
	f(opts)
}

// Registry maps configurator names to zero-argument constructors.
// Applications populate it at startup; Config.Configurator selects an entry.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]func() any
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]func() any)}
}

// DefaultRegistry is the process-wide registry used by Build unless
// WithRegistry is given. It contains the built-in "redact" configurator.
var DefaultRegistry = NewRegistry()

func init() {
	Register(RedactConfiguratorName, func() Configurator {
		return NewRedactConfigurator()
	})
}

// Register adds a constructor to DefaultRegistry.
func Register(name string, factory func() Configurator) {
	DefaultRegistry.Register(name, factory)
}

// RegisterAny adds an untyped constructor to DefaultRegistry.
func RegisterAny(name string, factory func() any) {
	DefaultRegistry.RegisterAny(name, factory)
}

// Register adds a typed constructor. A later registration under the same
// name replaces the earlier one.
func (r *Registry) Register(name string, factory func() Configurator) {
	if factory == nil {
		r.RegisterAny(name, nil)
		return
	}
	r.RegisterAny(name, func() any { return factory() })
}

// RegisterAny adds a constructor whose result is checked for the
// Configurator capability only when it is resolved. It serves plugin tables
// where entries are looked up as plain values.
func (r *Registry) RegisterAny(name string, factory func() any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Resolve instantiates the configurator registered under name.
// Every failure is reported as *ExtensionResolutionError.
func (r *Registry) Resolve(name string) (Configurator, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()

	switch {
	case !ok:
		return nil, &ExtensionResolutionError{Name: name, Err: ErrUnknownConfigurator}
	case factory == nil:
		return nil, &ExtensionResolutionError{Name: name, Err: ErrNoConstructor}
	}

	v, err := construct(factory)
	if err != nil {
		return nil, &ExtensionResolutionError{Name: name, Err: err}
	}

	c, ok := v.(Configurator)
	if !ok {
		return nil, &ExtensionResolutionError{
			Name: name,
			Err:  fmt.Errorf("%w: got %T", ErrNotConfigurator, v),
		}
	}
	return c, nil
}

func construct(factory func() any) (v any, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: panic: %v", ErrConstructorFailed, p)
		}
	}()

	v = factory()
	if v == nil {
		return nil, fmt.Errorf("%w: constructor returned nil", ErrConstructorFailed)
	}
	return v, nil
}

// apply runs c against opts, reporting a panic as *ExtensionResolutionError.
func apply(name string, c Configurator, opts *SentryOptions) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &ExtensionResolutionError{
				Name: name,
				Err:  fmt.Errorf("%w: panic: %v", ErrConfigureFailed, p),
			}
		}
	}()

	c.Configure(opts)
	return nil
}
