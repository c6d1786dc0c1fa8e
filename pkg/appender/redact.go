package appender

import (
	"strings"

	"github.com/getsentry/sentry-go"
)

const (
	// RedactConfiguratorName is the registry name of the built-in redacting configurator.
	RedactConfiguratorName = "redact"

	// RedactedPlaceholder replaces redacted values.
	RedactedPlaceholder = "[REDACTED]"
)

// DefaultRedactedKeys are the attribute keys redacted by NewRedactConfigurator.
var DefaultRedactedKeys = []string{"password", "token", "secret", "authorization", "api_key"}

// RedactConfigurator replaces sensitive values in event extras and
// breadcrumb data before they leave the process. Keys match case-insensitively,
// at any nesting depth. Existing BeforeSend and BeforeBreadcrumb hooks still run
// after redaction.
type RedactConfigurator struct {
	Keys []string
}

// NewRedactConfigurator creates a configurator redacting DefaultRedactedKeys.
func NewRedactConfigurator() RedactConfigurator {
	return RedactConfigurator{Keys: DefaultRedactedKeys}
}

// Configure implements Configurator.
func (c RedactConfigurator) Configure(opts *SentryOptions) {
	keys := make(map[string]struct{}, len(c.Keys))
	for _, k := range c.Keys {
		keys[strings.ToLower(k)] = struct{}{}
	}

	beforeSend := opts.BeforeSend
	opts.BeforeSend = func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
		redactMap(event.Extra, keys)
		for _, b := range event.Breadcrumbs {
			redactMap(b.Data, keys)
		}
		if beforeSend != nil {
			return beforeSend(event, hint)
		}
		return event
	}

	beforeBreadcrumb := opts.BeforeBreadcrumb
	opts.BeforeBreadcrumb = func(b *sentry.Breadcrumb, hint *sentry.BreadcrumbHint) *sentry.Breadcrumb {
		redactMap(b.Data, keys)
		if beforeBreadcrumb != nil {
			return beforeBreadcrumb(b, hint)
		}
		return b
	}
}

func redactMap(m map[string]any, keys map[string]struct{}) {
	for k, v := range m {
		if _, ok := keys[strings.ToLower(k)]; ok {
			m[k] = RedactedPlaceholder
			continue
		}
		if nested, ok := v.(map[string]any); ok {
			redactMap(nested, keys)
		}
	}
}
