package appender

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"

	"github.com/dmitrymomot/logsentry/internal/lifecycle"
	"github.com/dmitrymomot/logsentry/pkg/filter"
	"github.com/dmitrymomot/logsentry/pkg/logger"
)

// State is the lifecycle stage of an appender.
type State = lifecycle.State

// Appender lifecycle states. Transitions only move forward.
const (
	StateCreated    = lifecycle.Created
	StateConfigured = lifecycle.Configured
	StateRunning    = lifecycle.Running
	StateStopped    = lifecycle.Stopped
)

// LevelFatal is the slog level reported to Sentry as "fatal".
const LevelFatal = sentryslog.LevelFatal

// Appender is a logging sink that forwards records to Sentry.
//
// It implements logger.Appender. Records pass the filter chain before they
// reach the Sentry client; records at or above the event minimum become
// events and records at or above the breadcrumb minimum are remembered as
// breadcrumbs for later events. Delivery failures are never reported back to
// the caller.
//
// Handlers derived with WithAttrs and WithGroup share the lifecycle of the
// appender they were derived from.
type Appender struct {
	*core
	attrs  []slog.Attr
	groups []string
}

type core struct {
	name         string
	opts         SentryOptions
	chain        *filter.Chain
	client       *sentry.Client
	hub          *sentry.Hub
	log          *slog.Logger
	metrics      *Metrics
	flushTimeout time.Duration

	state    lifecycle.Machine
	gate     lifecycle.Gate
	stopOnce sync.Once
	stopErr  error
}

// Name returns the name the appender is attached under.
func (a *Appender) Name() string {
	return a.name
}

// State returns the current lifecycle state.
func (a *Appender) State() State {
	return a.state.Current()
}

// Chain returns the filter chain in effect.
func (a *Appender) Chain() *filter.Chain {
	return a.chain
}

// Options returns a copy of the finalized options.
func (a *Appender) Options() SentryOptions {
	return a.opts.clone()
}

// Hub returns the hub events are captured on. It is private to the appender
// and never installed as sentry.CurrentHub.
func (a *Appender) Hub() *sentry.Hub {
	return a.hub
}

// Start activates the filter chain and begins accepting records.
// It is valid only once, from the configured state. If a filter fails to
// start the appender stays configured and the error is returned.
func (a *Appender) Start() error {
	if state := a.state.Current(); state != StateConfigured {
		return fmt.Errorf("%w: cannot start from %s", ErrInvalidState, state)
	}
	if err := a.chain.Start(); err != nil {
		return err
	}
	if !a.state.Advance(StateConfigured, StateRunning) {
		a.chain.Stop()
		return fmt.Errorf("%w: cannot start from %s", ErrInvalidState, a.state.Current())
	}

	a.log.Debug("sentry appender started",
		slog.String("appender", a.name),
		slog.String("min_event_level", a.opts.MinimumEventLevel.String()),
	)
	return nil
}

// Stop stops accepting records, waits for in-flight deliveries bounded by
// ctx, flushes buffered events and releases the Sentry client.
// It is idempotent; every call returns the result of the first.
func (a *Appender) Stop(ctx context.Context) error {
	a.stopOnce.Do(func() {
		a.stopErr = a.stop(ctx)
	})
	return a.stopErr
}

func (a *Appender) stop(ctx context.Context) error {
	var previous State
	for {
		previous = a.state.Current()
		if previous == StateStopped || a.state.Advance(previous, StateStopped) {
			break
		}
	}

	err := a.gate.Close(ctx)
	if previous == StateRunning {
		a.chain.Stop()
	}

	flushCtx, cancel := context.WithTimeout(ctx, a.flushTimeout)
	defer cancel()
	if !a.client.FlushWithContext(flushCtx) {
		a.log.Warn("sentry appender flush timed out", slog.String("appender", a.name))
	}
	a.client.Close()

	a.log.Debug("sentry appender stopped", slog.String("appender", a.name))
	return err
}

// Enabled reports whether records at level could be forwarded.
func (a *Appender) Enabled(_ context.Context, level slog.Level) bool {
	return a.state.Current() == StateRunning && level >= a.opts.threshold()
}

// Handle filters the record and forwards it to Sentry.
// It always returns nil: the sink never fails the logging call.
func (a *Appender) Handle(ctx context.Context, rec slog.Record) error {
	if a.state.Current() != StateRunning {
		a.metrics.event(a.name, ResultDropped)
		return nil
	}

	ev := filter.NewEvent(rec, a.attrs)
	if a.chain.Decide(ev) == filter.Deny {
		a.metrics.event(a.name, ResultDenied)
		return nil
	}

	if !a.gate.Enter() {
		a.metrics.event(a.name, ResultDropped)
		return nil
	}
	defer a.gate.Leave()

	a.forward(ctx, rec, ev)
	return nil
}

func (a *Appender) forward(_ context.Context, rec slog.Record, ev filter.Event) {
	level := sentryLevel(rec.Level)

	if rec.Level >= a.opts.MinimumEventLevel {
		event := sentryslog.DefaultConverter(false, nil, a.attrs, a.groups, &rec, a.hub)
		event.Level = level
		if ev.Logger != "" {
			event.Logger = ev.Logger
			delete(event.Extra, logger.LoggerKey)
		}
		a.hub.CaptureEvent(event)
		a.metrics.event(a.name, ResultAccepted)
	}

	if rec.Level >= a.opts.MinimumBreadcrumbLevel {
		category := ev.Logger
		if category == "" {
			category = "log"
		}
		a.hub.AddBreadcrumb(&sentry.Breadcrumb{
			Type:      "default",
			Category:  category,
			Message:   rec.Message,
			Level:     level,
			Data:      breadcrumbData(ev.Attrs),
			Timestamp: rec.Time,
		}, nil)
		a.metrics.breadcrumb(a.name)
	}
}

// WithAttrs returns a handler that adds attrs to every forwarded record.
func (a *Appender) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return a
	}
	return &Appender{
		core:   a.core,
		attrs:  appendToGroup(a.groups, a.attrs, attrs),
		groups: a.groups,
	}
}

// WithGroup returns a handler that nests subsequent attributes under name.
func (a *Appender) WithGroup(name string) slog.Handler {
	if name == "" {
		return a
	}
	return &Appender{
		core:   a.core,
		attrs:  a.attrs,
		groups: append(slices.Clip(a.groups), name),
	}
}

// appendToGroup adds attrs under the group path, merging into an existing
// group attribute with the same key.
func appendToGroup(groups []string, current, attrs []slog.Attr) []slog.Attr {
	out := slices.Clone(current)
	if len(groups) == 0 {
		return append(out, attrs...)
	}

	for i, attr := range out {
		if attr.Key == groups[0] && attr.Value.Kind() == slog.KindGroup {
			out[i] = groupAttr(groups[0], appendToGroup(groups[1:], attr.Value.Group(), attrs))
			return out
		}
	}
	return append(out, groupAttr(groups[0], appendToGroup(groups[1:], nil, attrs)))
}

func groupAttr(key string, attrs []slog.Attr) slog.Attr {
	return slog.Attr{Key: key, Value: slog.GroupValue(attrs...)}
}

func breadcrumbData(attrs []slog.Attr) map[string]any {
	data := make(map[string]any, len(attrs))
	for _, attr := range attrs {
		if attr.Key == "" || attr.Key == logger.LoggerKey {
			continue
		}
		data[attr.Key] = attrValue(attr.Value)
	}
	if len(data) == 0 {
		return nil
	}
	return data
}

func attrValue(v slog.Value) any {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindGroup:
		m := make(map[string]any, len(v.Group()))
		for _, attr := range v.Group() {
			m[attr.Key] = attrValue(attr.Value)
		}
		return m
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return v.Any()
	default:
		return v.Any()
	}
}

// sentryLevel maps a slog level onto the Sentry severity scale.
// Levels below DEBUG (TRACE) report as debug.
func sentryLevel(level slog.Level) sentry.Level {
	switch {
	case level < slog.LevelInfo:
		return sentry.LevelDebug
	case level < slog.LevelWarn:
		return sentry.LevelInfo
	case level < slog.LevelError:
		return sentry.LevelWarning
	case level < LevelFatal:
		return sentry.LevelError
	default:
		return sentry.LevelFatal
	}
}

var _ logger.Appender = (*Appender)(nil)
