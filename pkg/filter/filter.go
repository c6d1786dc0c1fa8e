package filter

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/logsentry/pkg/logger"
)

// Decision is the outcome of evaluating a filter against an event.
type Decision int

const (
	// Neutral defers the decision to the next filter in the chain.
	Neutral Decision = iota
	// Accept admits the event. Later filters still run and may deny it.
	Accept
	// Deny drops the event and stops the chain.
	Deny
)

func (d Decision) String() string {
	switch d {
	case Neutral:
		return "neutral"
	case Accept:
		return "accept"
	case Deny:
		return "deny"
	default:
		return "unknown"
	}
}

// Event is the read-only view of a log record that filters evaluate.
type Event struct {
	Time    time.Time
	Level   slog.Level
	Message string
	// Logger is the value of the logger.LoggerKey attribute, if any.
	Logger string
	// Marker is the value of the logger.MarkerKey attribute, if any.
	Marker string
	// Attrs holds the handler attributes followed by the record attributes.
	Attrs []slog.Attr
}

// NewEvent builds an Event from a record and the attributes accumulated by
// the handler through WithAttrs. Only top-level attributes are considered
// for Logger and Marker; record attributes win over handler attributes.
func NewEvent(rec slog.Record, handlerAttrs []slog.Attr) Event {
	ev := Event{
		Time:    rec.Time,
		Level:   rec.Level,
		Message: rec.Message,
		Attrs:   make([]slog.Attr, 0, len(handlerAttrs)+rec.NumAttrs()),
	}
	ev.Attrs = append(ev.Attrs, handlerAttrs...)
	rec.Attrs(func(a slog.Attr) bool {
		ev.Attrs = append(ev.Attrs, a)
		return true
	})

	for _, a := range ev.Attrs {
		switch a.Key {
		case logger.LoggerKey:
			ev.Logger = a.Value.Resolve().String()
		case logger.MarkerKey:
			ev.Marker = a.Value.Resolve().String()
		}
	}
	return ev
}

// Filter is a single admission predicate over an event.
// Implementations must not mutate the event and must be safe for concurrent use.
type Filter interface {
	Decide(ev Event) Decision
}

// Func adapts a function to the Filter interface.
type Func func(ev Event) Decision

// Decide calls f(ev).
func (f Func) Decide(ev Event) Decision {
	return f(ev)
}

// Lifecycle is implemented by filters that hold resources or state and must
// be activated before use.
type Lifecycle interface {
	Start() error
	Stop()
}

// Factory builds a filter. It is how a surrounding logging pipeline supplies
// its own filters to an appender.
type Factory interface {
	Build() (Filter, error)
}

// FactoryFunc adapts a function to the Factory interface.
type FactoryFunc func() (Filter, error)

// Build calls f().
func (f FactoryFunc) Build() (Filter, error) {
	return f()
}

// Static returns a factory that always yields f.
func Static(f Filter) Factory {
	return FactoryFunc(func() (Filter, error) {
		return f, nil
	})
}
