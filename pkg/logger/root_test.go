package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/logsentry/pkg/logger"
)

// recordingAppender collects records and counts Stop calls.
type recordingAppender struct {
	name    string
	mu      sync.Mutex
	records []slog.Record
	stops   atomic.Int32
	stopErr error
}

func newRecordingAppender(name string) *recordingAppender {
	return &recordingAppender{name: name}
}

func (a *recordingAppender) Name() string { return a.name }

func (a *recordingAppender) Enabled(context.Context, slog.Level) bool { return true }

func (a *recordingAppender) Handle(_ context.Context, rec slog.Record) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, rec)
	return nil
}

func (a *recordingAppender) WithAttrs([]slog.Attr) slog.Handler { return a }

func (a *recordingAppender) WithGroup(string) slog.Handler { return a }

func (a *recordingAppender) Stop(context.Context) error {
	a.stops.Add(1)
	return a.stopErr
}

func (a *recordingAppender) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.records)
}

type failingHandler struct{}

func (failingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (failingHandler) Handle(context.Context, slog.Record) error { return errors.New("write failed") }

func (h failingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }

func (h failingHandler) WithGroup(string) slog.Handler { return h }

var timeZero time.Time

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

// --- Root: attachment ---

func TestRoot_Attach(t *testing.T) {
	t.Parallel()

	t.Run("every appender receives each record once", func(t *testing.T) {
		t.Parallel()

		a := newRecordingAppender("a")
		b := newRecordingAppender("b")
		root := logger.NewRoot(a, b)

		root.Logger().Info("hello")

		require.Equal(t, 1, a.count())
		require.Equal(t, 1, b.count())
	})

	t.Run("rejects duplicate names", func(t *testing.T) {
		t.Parallel()

		root := logger.NewRoot(newRecordingAppender("a"))
		err := root.Attach(newRecordingAppender("a"))
		require.ErrorIs(t, err, logger.ErrDuplicateAppender)
		require.Len(t, root.Appenders(), 1)
	})

	t.Run("rejects nil appender", func(t *testing.T) {
		t.Parallel()

		root := logger.NewRoot()
		require.ErrorIs(t, root.Attach(nil), logger.ErrNilAppender)
	})

	t.Run("NewRoot panics on duplicate names", func(t *testing.T) {
		t.Parallel()

		require.Panics(t, func() {
			logger.NewRoot(newRecordingAppender("a"), newRecordingAppender("a"))
		})
	})

	t.Run("empty root drops records", func(t *testing.T) {
		t.Parallel()

		root := logger.NewRoot()
		log := root.Logger()
		require.False(t, log.Enabled(context.Background(), slog.LevelError))
		log.Error("nobody listens")
	})
}

func TestRoot_Detach(t *testing.T) {
	t.Parallel()

	t.Run("detached appender stops receiving records without being stopped", func(t *testing.T) {
		t.Parallel()

		a := newRecordingAppender("a")
		root := logger.NewRoot(a)
		log := root.Logger()

		log.Info("first")
		got, ok := root.Detach("a")
		require.True(t, ok)
		require.Same(t, a, got)
		log.Info("second")

		require.Equal(t, 1, a.count())
		require.Zero(t, a.stops.Load())
	})

	t.Run("unknown name", func(t *testing.T) {
		t.Parallel()

		root := logger.NewRoot()
		_, ok := root.Detach("missing")
		require.False(t, ok)
	})
}

func TestRoot_Lookup(t *testing.T) {
	t.Parallel()

	a := newRecordingAppender("a")
	root := logger.NewRoot(a)

	got, ok := root.Lookup("a")
	require.True(t, ok)
	require.Same(t, a, got)

	_, ok = root.Lookup("b")
	require.False(t, ok)
}

func TestRoot_DetachAndStopAll(t *testing.T) {
	t.Parallel()

	t.Run("stops and detaches every appender", func(t *testing.T) {
		t.Parallel()

		a := newRecordingAppender("a")
		b := newRecordingAppender("b")
		root := logger.NewRoot(a, b)

		require.NoError(t, root.DetachAndStopAll(context.Background()))
		require.Empty(t, root.Appenders())
		require.EqualValues(t, 1, a.stops.Load())
		require.EqualValues(t, 1, b.stops.Load())
	})

	t.Run("keeps named appenders", func(t *testing.T) {
		t.Parallel()

		a := newRecordingAppender("a")
		b := newRecordingAppender("b")
		root := logger.NewRoot(a, b)

		require.NoError(t, root.DetachAndStopAll(context.Background(), "b"))
		appenders := root.Appenders()
		require.Len(t, appenders, 1)
		require.Equal(t, "b", appenders[0].Name())
		require.Zero(t, b.stops.Load())
	})

	t.Run("reports stop errors after detaching", func(t *testing.T) {
		t.Parallel()

		a := newRecordingAppender("a")
		a.stopErr = errors.New("boom")
		root := logger.NewRoot(a)

		err := root.DetachAndStopAll(context.Background())
		require.Error(t, err)
		require.Contains(t, err.Error(), "boom")
		require.Empty(t, root.Appenders())
	})
}

// --- Root: handler ---

func TestRoot_DerivedLoggers(t *testing.T) {
	t.Parallel()

	t.Run("derived logger sees appenders attached later", func(t *testing.T) {
		t.Parallel()

		root := logger.NewRoot()
		log := root.Logger().With("component", "billing").WithGroup("req")

		var buf bytes.Buffer
		require.NoError(t, root.Attach(logger.NewConsoleAppender("console", &buf, slog.LevelInfo)))

		log.Info("charged", "amount", 10)

		lines := decodeLines(t, &buf)
		require.Len(t, lines, 1)
		require.Equal(t, "billing", lines[0]["component"])
		require.Equal(t, map[string]any{"amount": float64(10)}, lines[0]["req"])
	})

	t.Run("derived logger stops writing to detached appender", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		root := logger.NewRoot(logger.NewConsoleAppender("console", &buf, slog.LevelInfo))
		log := root.Logger().With("k", "v")

		log.Info("one")
		_, ok := root.Detach("console")
		require.True(t, ok)
		log.Info("two")

		require.Len(t, decodeLines(t, &buf), 1)
	})

	t.Run("context extractors add attributes", func(t *testing.T) {
		t.Parallel()

		type ctxKey struct{}
		extractor := func(ctx context.Context) (slog.Attr, bool) {
			if v, ok := ctx.Value(ctxKey{}).(string); ok {
				return slog.String("request_id", v), true
			}
			return slog.Attr{}, false
		}

		var buf bytes.Buffer
		root := logger.NewRoot(logger.NewConsoleAppender("console", &buf, slog.LevelInfo))
		log := root.Logger(extractor, nil)

		ctx := context.WithValue(context.Background(), ctxKey{}, "abc-123")
		log.InfoContext(ctx, "with id")
		log.Info("without id")

		lines := decodeLines(t, &buf)
		require.Len(t, lines, 2)
		require.Equal(t, "abc-123", lines[0]["request_id"])
		require.NotContains(t, lines[1], "request_id")
	})

	t.Run("console appender respects its level", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		root := logger.NewRoot(logger.NewConsoleAppender("console", &buf, slog.LevelWarn))
		log := root.Logger()

		log.Info("skipped")
		log.Warn("kept")

		lines := decodeLines(t, &buf)
		require.Len(t, lines, 1)
		require.Equal(t, "kept", lines[0]["msg"])
	})

	t.Run("named logger carries the logger attribute", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		root := logger.NewRoot(logger.NewConsoleAppender("console", &buf, slog.LevelInfo))

		logger.Named(root.Logger(), "sentry.appender").Info("hi")

		lines := decodeLines(t, &buf)
		require.Len(t, lines, 1)
		require.Equal(t, "sentry.appender", lines[0][logger.LoggerKey])
	})
}

func TestRoot_HandlerErrorsDoNotStopFanOut(t *testing.T) {
	t.Parallel()

	failing := logger.NewHandlerAppender("failing", failingHandler{}, nil)
	a := newRecordingAppender("a")
	root := logger.NewRoot(failing, a)

	err := root.Handler().Handle(context.Background(), slog.NewRecord(timeZero, slog.LevelInfo, "msg", 0))
	require.Error(t, err)
	require.Equal(t, 1, a.count())
}

func TestHandlerAppender_Stop(t *testing.T) {
	t.Parallel()

	var called bool
	a := logger.NewHandlerAppender("h", slog.DiscardHandler, func(context.Context) error {
		called = true
		return nil
	})
	require.NoError(t, a.Stop(context.Background()))
	require.True(t, called)

	console := logger.NewConsoleAppender("c", &bytes.Buffer{}, slog.LevelInfo)
	require.NoError(t, console.Stop(context.Background()))
}

func TestNewNope(t *testing.T) {
	t.Parallel()

	log := logger.NewNope()
	require.False(t, log.Enabled(context.Background(), slog.LevelError))
}

func TestDefaultRoot(t *testing.T) {
	t.Parallel()

	root := logger.DefaultRoot()
	require.Same(t, root, logger.DefaultRoot())

	_, ok := root.Lookup(logger.ConsoleAppenderName)
	require.True(t, ok)
	require.True(t, root.IsDefault())
	require.False(t, logger.NewRoot().IsDefault())

	var nilRoot *logger.Root
	require.False(t, nilRoot.IsDefault())
}
