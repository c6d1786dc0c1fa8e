package logger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Root errors.
var (
	// ErrDuplicateAppender is returned when attaching an appender whose name
	// is already attached to the root.
	ErrDuplicateAppender = errors.New("logger: appender already attached")

	// ErrNilAppender is returned when attaching a nil appender.
	ErrNilAppender = errors.New("logger: appender is nil")
)

// Appender is a named destination attached to a Root.
// Implementations must be safe for concurrent use.
type Appender interface {
	slog.Handler

	// Name identifies the appender within a root.
	Name() string

	// Stop releases the appender resources. It must be idempotent.
	Stop(ctx context.Context) error
}

// Root is the top of the logging hierarchy: the set of appenders that every
// record logged through it reaches, each exactly once.
//
// Attachment changes are visible to every logger derived from the root,
// including loggers created with With or WithGroup before the change.
// Mutations are meant to happen during startup; reads are lock-free.
type Root struct {
	mu         sync.Mutex
	appenders  []Appender
	generation uint64
	current    atomic.Pointer[snapshot]
}

type snapshot struct {
	generation uint64
	handler    slog.Handler
}

// NewRoot creates a root with the given appenders attached.
// It panics if two appenders share a name.
func NewRoot(appenders ...Appender) *Root {
	r := &Root{}
	r.publish()
	for _, a := range appenders {
		if err := r.Attach(a); err != nil {
			panic(err)
		}
	}
	return r
}

var (
	defaultRoot     atomic.Pointer[Root]
	defaultRootOnce sync.Once
)

// DefaultRoot returns the process-wide root.
// It starts with a JSON console appender on stdout at INFO level.
func DefaultRoot() *Root {
	defaultRootOnce.Do(func() {
		defaultRoot.Store(NewRoot(NewConsoleAppender(ConsoleAppenderName, os.Stdout, slog.LevelInfo)))
	})
	return defaultRoot.Load()
}

// IsDefault reports whether r is the process-wide root.
// Unlike comparing against DefaultRoot, it never creates the default root.
func (r *Root) IsDefault() bool {
	return r != nil && defaultRoot.Load() == r
}

// Attach adds an appender to the root.
func (r *Root) Attach(a Appender) error {
	if a == nil {
		return ErrNilAppender
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexOf(a.Name()) >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateAppender, a.Name())
	}
	r.appenders = append(r.appenders, a)
	r.publish()
	return nil
}

// Detach removes the named appender from the root without stopping it.
func (r *Root) Detach(name string) (Appender, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(name)
	if i < 0 {
		return nil, false
	}
	a := r.appenders[i]
	r.appenders = slices.Delete(r.appenders, i, i+1)
	r.publish()
	return a, true
}

// Lookup returns the named appender if it is attached.
func (r *Root) Lookup(name string) (Appender, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if i := r.indexOf(name); i >= 0 {
		return r.appenders[i], true
	}
	return nil, false
}

// Appenders returns the attached appenders in attachment order.
func (r *Root) Appenders() []Appender {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.appenders)
}

// DetachAndStopAll detaches every appender except the ones named in keep,
// then stops the detached appenders concurrently.
// Detachment happens first, so no record reaches an appender being stopped.
func (r *Root) DetachAndStopAll(ctx context.Context, keep ...string) error {
	r.mu.Lock()
	var detached []Appender
	kept := r.appenders[:0:0]
	for _, a := range r.appenders {
		if slices.Contains(keep, a.Name()) {
			kept = append(kept, a)
			continue
		}
		detached = append(detached, a)
	}
	r.appenders = kept
	r.publish()
	r.mu.Unlock()

	var g errgroup.Group
	for _, a := range detached {
		g.Go(func() error {
			if err := a.Stop(ctx); err != nil {
				return fmt.Errorf("logger: stop appender %s: %w", a.Name(), err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Handler returns a handler that dispatches to the attached appenders.
func (r *Root) Handler() slog.Handler {
	return &rootHandler{root: r}
}

// Logger returns a logger writing to the root.
// Extractors add context-derived attributes to every record.
func (r *Root) Logger(extractors ...ContextExtractor) *slog.Logger {
	return slog.New(newRootHandler(r, extractors))
}

// Install makes the root the destination of slog.Default and of the
// standard log package.
func (r *Root) Install(extractors ...ContextExtractor) {
	slog.SetDefault(r.Logger(extractors...))
}

// publish rebuilds the dispatch snapshot. Callers hold r.mu.
func (r *Root) publish() {
	handlers := make([]slog.Handler, len(r.appenders))
	for i, a := range r.appenders {
		handlers[i] = a
	}
	r.generation++
	r.current.Store(&snapshot{
		generation: r.generation,
		handler:    newMultiHandler(handlers...),
	})
}

func (r *Root) indexOf(name string) int {
	return slices.IndexFunc(r.appenders, func(a Appender) bool {
		return a.Name() == name
	})
}
