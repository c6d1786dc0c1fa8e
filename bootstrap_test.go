package logsentry_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/logsentry"
	"github.com/dmitrymomot/logsentry/pkg/appender"
	"github.com/dmitrymomot/logsentry/pkg/filter"
	"github.com/dmitrymomot/logsentry/pkg/logger"
)

const testDSN = "https://public@example.com/1"

// stubAppender is an appender that only counts Stop calls.
type stubAppender struct {
	slog.Handler
	name  string
	stops atomic.Int32
}

func newStub(name string) *stubAppender {
	return &stubAppender{Handler: slog.DiscardHandler, name: name}
}

func (s *stubAppender) Name() string { return s.name }

func (s *stubAppender) Stop(context.Context) error {
	s.stops.Add(1)
	return nil
}

func withMock(transport *sentry.MockTransport) logsentry.Option {
	return logsentry.WithAppenderOptions(appender.WithTransport(transport))
}

func names(root *logger.Root) []string {
	var out []string
	for _, a := range root.Appenders() {
		out = append(out, a.Name())
	}
	return out
}

func TestBootstrap_CleanRoot(t *testing.T) {
	t.Parallel()

	console := newStub("console")
	file := newStub("file")
	root := logger.NewRoot(console, file)

	a, err := logsentry.Bootstrap(testDSN, logsentry.WithRoot(root), withMock(&sentry.MockTransport{}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Stop(context.Background()) })

	require.Equal(t, []string{appender.DefaultName}, names(root))
	require.Equal(t, appender.StateRunning, a.State())
	require.EqualValues(t, 1, console.stops.Load())
	require.EqualValues(t, 1, file.stops.Load())
}

func TestBootstrap_KeepRoot(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	root := logger.NewRoot(logger.NewConsoleAppender("console", &buf, slog.LevelInfo))
	transport := &sentry.MockTransport{}

	a, err := logsentry.Bootstrap(testDSN,
		logsentry.WithRoot(root),
		logsentry.WithCleanRootLogger(false),
		withMock(transport),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Stop(context.Background()) })

	require.ElementsMatch(t, []string{"console", appender.DefaultName}, names(root))

	root.Logger().Error("disk full")
	require.Len(t, transport.Events(), 1)
	require.Contains(t, buf.String(), "disk full")
}

func TestBootstrap_ReplacesPriorInstance(t *testing.T) {
	t.Parallel()

	root := logger.NewRoot()
	first, err := logsentry.Bootstrap(testDSN, logsentry.WithRoot(root), withMock(&sentry.MockTransport{}))
	require.NoError(t, err)

	transport := &sentry.MockTransport{}
	second, err := logsentry.Bootstrap(testDSN, logsentry.WithRoot(root), withMock(transport))
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Stop(context.Background()) })

	require.Equal(t, appender.StateStopped, first.State())
	require.Equal(t, appender.StateRunning, second.State())
	require.Equal(t, []string{appender.DefaultName}, names(root))

	root.Logger().Error("after replacement")
	require.Len(t, transport.Events(), 1)
}

func TestBootstrap_InvalidConfigLeavesRootUntouched(t *testing.T) {
	t.Parallel()

	console := newStub("console")
	root := logger.NewRoot(console)

	_, err := logsentry.Bootstrap("", logsentry.WithRoot(root))
	require.ErrorIs(t, err, appender.ErrEndpointRequired)

	_, err = logsentry.Bootstrap("not a dsn", logsentry.WithRoot(root))
	require.ErrorIs(t, err, appender.ErrInvalidEndpoint)

	require.Equal(t, []string{"console"}, names(root))
	require.Zero(t, console.stops.Load())
}

func TestBootstrap_StartFailureLeavesRootUntouched(t *testing.T) {
	t.Parallel()

	console := newStub("console")
	file := newStub("file")
	root := logger.NewRoot(console, file)

	_, err := logsentry.Bootstrap(testDSN,
		logsentry.WithRoot(root),
		withMock(&sentry.MockTransport{}),
		logsentry.WithAppenderOptions(appender.WithFilters(filter.Static(filter.RateLimit(0, 0)))),
	)
	require.ErrorIs(t, err, logsentry.ErrBootstrap)
	require.ErrorIs(t, err, filter.ErrInvalidRate)

	require.Equal(t, []string{"console", "file"}, names(root))
	require.Zero(t, console.stops.Load())
	require.Zero(t, file.stops.Load())
}

func TestBootstrap_StartFailureKeepsPriorInstance(t *testing.T) {
	t.Parallel()

	root := logger.NewRoot()
	transport := &sentry.MockTransport{}
	prior, err := logsentry.Bootstrap(testDSN, logsentry.WithRoot(root), withMock(transport))
	require.NoError(t, err)
	t.Cleanup(func() { _ = prior.Stop(context.Background()) })

	_, err = logsentry.Bootstrap(testDSN,
		logsentry.WithRoot(root),
		withMock(&sentry.MockTransport{}),
		logsentry.WithAppenderOptions(appender.WithFilters(filter.Static(filter.RateLimit(0, 0)))),
	)
	require.ErrorIs(t, err, logsentry.ErrBootstrap)
	require.Equal(t, appender.StateRunning, prior.State())

	root.Logger().Error("still reported")
	require.Len(t, transport.Events(), 1)
}

func TestBootstrap_TwiceWithSameMetricsRegistry(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	root := logger.NewRoot()
	metrics := logsentry.WithAppenderOptions(appender.WithMetrics(reg))

	first, err := logsentry.Bootstrap(testDSN, logsentry.WithRoot(root), withMock(&sentry.MockTransport{}), metrics)
	require.NoError(t, err)
	root.Logger().Error("first")

	var second *logsentry.Appender
	require.NotPanics(t, func() {
		second, err = logsentry.Bootstrap(testDSN, logsentry.WithRoot(root), withMock(&sentry.MockTransport{}), metrics)
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Stop(context.Background()) })
	root.Logger().Error("second")

	require.Equal(t, appender.StateStopped, first.State())

	expected := `
# HELP logsentry_appender_events_total Log records handled by the Sentry appender, by outcome.
# TYPE logsentry_appender_events_total counter
logsentry_appender_events_total{appender="sentry",result="accepted"} 2
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "logsentry_appender_events_total"))
}

func TestBootstrap_Options(t *testing.T) {
	t.Parallel()

	root := logger.NewRoot()
	transport := &sentry.MockTransport{}

	a, err := logsentry.BootstrapConfig(logsentry.Config{
		Endpoint: testDSN,
		Release:  appender.Some("v1"),
		Tags:     map[string]string{"team": "platform", "tier": "backend"},
	},
		logsentry.WithRoot(root),
		logsentry.WithThreshold(slog.LevelWarn),
		logsentry.WithEnvironment("production"),
		logsentry.WithServerName("web-1"),
		logsentry.WithTags(map[string]string{"team": "infra"}),
		withMock(transport),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Stop(context.Background()) })

	opts := a.Options()
	assert.Equal(t, slog.LevelWarn, opts.MinimumEventLevel)
	assert.Equal(t, "production", opts.Environment)
	assert.Equal(t, "v1", opts.Release)
	assert.Equal(t, "web-1", opts.ServerName)
	assert.Equal(t, map[string]string{"team": "infra", "tier": "backend"}, opts.Tags)

	log := root.Logger()
	log.Info("ignored")
	log.Warn("slow query")

	events := transport.Events()
	require.Len(t, events, 1)
	assert.Equal(t, sentry.LevelWarning, events[0].Level)
	assert.Equal(t, "infra", events[0].Tags["team"])
	assert.Equal(t, "production", events[0].Environment)
}

// Not parallel: mutates the process default root and slog.Default.
func TestBootstrap_DefaultRoot(t *testing.T) {
	previous := slog.Default()
	root := logger.DefaultRoot()
	transport := &sentry.MockTransport{}

	a, err := logsentry.Bootstrap(testDSN, withMock(transport))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = a.Stop(context.Background())
		root.Detach(a.Name())
		slog.SetDefault(previous)
	})

	require.Equal(t, []string{appender.DefaultName}, names(root))

	slog.Error("via slog default")
	events := transport.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "via slog default", events[0].Message)
}
