package appender

import (
	"strings"

	"github.com/getsentry/sentry-go"
)

// inAppProcessor marks stack frames as application or library code by module
// prefix. A frame matching an include prefix is in-app even if it also
// matches an exclude prefix. Frames matching neither keep the SDK's verdict.
func inAppProcessor(includes, excludes []string) sentry.EventProcessor {
	return func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
		for i := range event.Exception {
			markFrames(event.Exception[i].Stacktrace, includes, excludes)
		}
		for i := range event.Threads {
			markFrames(event.Threads[i].Stacktrace, includes, excludes)
		}
		return event
	}
}

func markFrames(st *sentry.Stacktrace, includes, excludes []string) {
	if st == nil {
		return
	}
	for i := range st.Frames {
		frame := &st.Frames[i]
		switch {
		case hasModulePrefix(frame.Module, includes):
			frame.InApp = true
		case hasModulePrefix(frame.Module, excludes):
			frame.InApp = false
		}
	}
}

func hasModulePrefix(module string, prefixes []string) bool {
	if module == "" {
		return false
	}
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(module, p) {
			return true
		}
	}
	return false
}
