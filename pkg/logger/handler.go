package logger

import (
	"context"
	"log/slog"
	"slices"
	"sync/atomic"
)

// Attribute keys that identify where a record comes from.
// Filters read them to make admission decisions.
const (
	// LoggerKey holds the name of the component that emitted a record.
	LoggerKey = "logger"
	// MarkerKey holds a free-form marker attached to a record.
	MarkerKey = "marker"
)

// Named returns a logger whose records carry name under LoggerKey.
func Named(l *slog.Logger, name string) *slog.Logger {
	return l.With(slog.String(LoggerKey, name))
}

// ContextExtractor extracts a slog attribute from context.
type ContextExtractor func(ctx context.Context) (slog.Attr, bool)

// rootHandler dispatches records to the appenders currently attached to a root.
// Extraction occurs per-log-call to capture fresh request-scoped values (e.g., request IDs).
type rootHandler struct {
	root       *Root
	extractors []ContextExtractor
	// derive replays WithAttrs/WithGroup calls on the current appender set.
	derive []func(slog.Handler) slog.Handler
	cache  atomic.Pointer[snapshot]
}

// newRootHandler filters nil extractors to prevent runtime panics from misconfigured options.
func newRootHandler(root *Root, extractors []ContextExtractor) *rootHandler {
	clean := make([]ContextExtractor, 0, len(extractors))
	for _, ex := range extractors {
		if ex != nil {
			clean = append(clean, ex)
		}
	}
	return &rootHandler{root: root, extractors: clean}
}

func (h *rootHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.target().Enabled(ctx, level)
}

// Handle extracts context attributes and delegates to the attached appenders.
func (h *rootHandler) Handle(ctx context.Context, rec slog.Record) error {
	for _, ex := range h.extractors {
		if attr, ok := ex(ctx); ok {
			rec.AddAttrs(attr)
		}
	}
	return h.target().Handle(ctx, rec)
}

func (h *rootHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	attrs = slices.Clone(attrs)
	return h.with(func(next slog.Handler) slog.Handler {
		return next.WithAttrs(attrs)
	})
}

func (h *rootHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return h.with(func(next slog.Handler) slog.Handler {
		return next.WithGroup(name)
	})
}

func (h *rootHandler) with(step func(slog.Handler) slog.Handler) *rootHandler {
	derive := make([]func(slog.Handler) slog.Handler, 0, len(h.derive)+1)
	derive = append(derive, h.derive...)
	derive = append(derive, step)
	return &rootHandler{
		root:       h.root,
		extractors: h.extractors,
		derive:     derive,
	}
}

// target returns the dispatch handler for the current appender set,
// rebuilding the derived chain only when attachments changed.
func (h *rootHandler) target() slog.Handler {
	current := h.root.current.Load()
	if len(h.derive) == 0 {
		return current.handler
	}
	if cached := h.cache.Load(); cached != nil && cached.generation == current.generation {
		return cached.handler
	}

	next := current.handler
	for _, step := range h.derive {
		next = step(next)
	}
	h.cache.Store(&snapshot{generation: current.generation, handler: next})
	return next
}
