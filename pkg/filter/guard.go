package filter

import "strings"

// SelfReportingMarker marks records emitted by the error-reporting sink itself.
// Records carrying it under logger.MarkerKey are always denied by the guard.
const SelfReportingMarker = "sentry-internal"

// InternalLoggers are the logger names used by the Sentry SDK and by the
// appender for their own diagnostics.
var InternalLoggers = []string{
	"sentry",
	"github.com/getsentry/sentry-go",
}

// SelfReportingGuard denies events emitted by the error-reporting client's
// own internals, so that a failing or chatty client never reports on itself.
// Without prefixes it uses InternalLoggers.
//
// An event is denied when its logger name equals a prefix or is nested below
// it ("sentry.transport", "github.com/getsentry/sentry-go/internal"), or when
// it carries SelfReportingMarker.
func SelfReportingGuard(prefixes ...string) Filter {
	if len(prefixes) == 0 {
		prefixes = InternalLoggers
	}
	return &guard{prefixes: append([]string(nil), prefixes...)}
}

type guard struct {
	prefixes []string
}

func (g *guard) Decide(ev Event) Decision {
	if ev.Marker == SelfReportingMarker {
		return Deny
	}
	if ev.Logger != "" && matchesLogger(ev.Logger, g.prefixes) {
		return Deny
	}
	return Neutral
}

// IsSelfReportingGuard reports whether f was created by SelfReportingGuard.
func IsSelfReportingGuard(f Filter) bool {
	_, ok := f.(*guard)
	return ok
}

// DenyLoggers denies events whose logger name equals or is nested below one
// of the given names. Use it to keep noisy components out of a sink.
func DenyLoggers(names ...string) Filter {
	names = append([]string(nil), names...)
	return Func(func(ev Event) Decision {
		if ev.Logger != "" && matchesLogger(ev.Logger, names) {
			return Deny
		}
		return Neutral
	})
}

func matchesLogger(name string, prefixes []string) bool {
	for _, p := range prefixes {
		if p == "" {
			continue
		}
		if name == p {
			return true
		}
		if strings.HasPrefix(name, p) {
			switch name[len(p)] {
			case '.', '/':
				return true
			}
		}
	}
	return false
}
