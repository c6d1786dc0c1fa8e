package appender

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Event outcomes recorded by Metrics.
const (
	ResultAccepted = "accepted"
	ResultDenied   = "denied"
	ResultDropped  = "dropped"
)

// Metrics counts what the appender does with the records it receives.
// A nil *Metrics records nothing.
type Metrics struct {
	events      *prometheus.CounterVec
	breadcrumbs *prometheus.CounterVec
}

// NewMetrics creates the appender collectors and registers them with reg.
// Collectors already registered by an earlier appender are reused, so several
// appenders, or successive instances of one, share a registry.
// A nil reg creates unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		events: registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "logsentry",
			Subsystem: "appender",
			Name:      "events_total",
			Help:      "Log records handled by the Sentry appender, by outcome.",
		}, []string{"appender", "result"})),
		breadcrumbs: registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "logsentry",
			Subsystem: "appender",
			Name:      "breadcrumbs_total",
			Help:      "Breadcrumbs recorded by the Sentry appender.",
		}, []string{"appender"})),
	}
}

func registerCounterVec(reg prometheus.Registerer, c *prometheus.CounterVec) *prometheus.CounterVec {
	if reg == nil {
		return c
	}
	err := reg.Register(c)
	if err == nil {
		return c
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
			return existing
		}
	}
	// A conflicting collector owns the name; count locally instead.
	return c
}

func (m *Metrics) event(appender, result string) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(appender, result).Inc()
}

func (m *Metrics) breadcrumb(appender string) {
	if m == nil {
		return
	}
	m.breadcrumbs.WithLabelValues(appender).Inc()
}
