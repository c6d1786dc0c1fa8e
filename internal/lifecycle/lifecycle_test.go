package lifecycle_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/logsentry/internal/lifecycle"
)

func TestMachine_Advance(t *testing.T) {
	t.Parallel()

	t.Run("moves forward through every state", func(t *testing.T) {
		t.Parallel()

		var m lifecycle.Machine
		require.Equal(t, lifecycle.Created, m.Current())
		require.True(t, m.Advance(lifecycle.Created, lifecycle.Configured))
		require.True(t, m.Advance(lifecycle.Configured, lifecycle.Running))
		require.True(t, m.Advance(lifecycle.Running, lifecycle.Stopped))
		require.Equal(t, lifecycle.Stopped, m.Current())
	})

	t.Run("rejects backward transitions", func(t *testing.T) {
		t.Parallel()

		var m lifecycle.Machine
		require.True(t, m.Advance(lifecycle.Created, lifecycle.Running))
		require.False(t, m.Advance(lifecycle.Running, lifecycle.Configured))
		require.False(t, m.Advance(lifecycle.Running, lifecycle.Running))
		require.Equal(t, lifecycle.Running, m.Current())
	})

	t.Run("rejects transition from a state it is not in", func(t *testing.T) {
		t.Parallel()

		var m lifecycle.Machine
		require.False(t, m.Advance(lifecycle.Configured, lifecycle.Running))
		require.Equal(t, lifecycle.Created, m.Current())
	})

	t.Run("no re-entry once stopped", func(t *testing.T) {
		t.Parallel()

		var m lifecycle.Machine
		require.True(t, m.Advance(lifecycle.Created, lifecycle.Stopped))
		require.False(t, m.Advance(lifecycle.Created, lifecycle.Configured))
		require.False(t, m.Advance(lifecycle.Stopped, lifecycle.Running))
	})
}

func TestState_String(t *testing.T) {
	t.Parallel()

	require.Equal(t, "created", lifecycle.Created.String())
	require.Equal(t, "configured", lifecycle.Configured.String())
	require.Equal(t, "running", lifecycle.Running.String())
	require.Equal(t, "stopped", lifecycle.Stopped.String())
	require.Equal(t, "unknown", lifecycle.State(42).String())
}

func TestGate(t *testing.T) {
	t.Parallel()

	t.Run("admits until closed", func(t *testing.T) {
		t.Parallel()

		var g lifecycle.Gate
		require.True(t, g.Enter())
		g.Leave()

		require.NoError(t, g.Close(context.Background()))
		require.True(t, g.Closed())
		require.False(t, g.Enter())
	})

	t.Run("close waits for in-flight callers", func(t *testing.T) {
		t.Parallel()

		var g lifecycle.Gate
		require.True(t, g.Enter())

		released := make(chan struct{})
		go func() {
			time.Sleep(20 * time.Millisecond)
			close(released)
			g.Leave()
		}()

		require.NoError(t, g.Close(context.Background()))
		select {
		case <-released:
		default:
			t.Fatal("Close returned before in-flight caller left")
		}
	})

	t.Run("close is bounded by context", func(t *testing.T) {
		t.Parallel()

		var g lifecycle.Gate
		require.True(t, g.Enter())
		defer g.Leave()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		err := g.Close(ctx)
		require.ErrorIs(t, err, context.DeadlineExceeded)
		require.False(t, g.Enter())
	})

	t.Run("close twice is safe", func(t *testing.T) {
		t.Parallel()

		var g lifecycle.Gate
		require.NoError(t, g.Close(context.Background()))
		require.NoError(t, g.Close(context.Background()))
	})

	t.Run("concurrent callers", func(t *testing.T) {
		t.Parallel()

		var (
			g  lifecycle.Gate
			wg sync.WaitGroup
		)
		for range 50 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if g.Enter() {
					g.Leave()
				}
			}()
		}
		wg.Wait()
		require.NoError(t, g.Close(context.Background()))
	})
}
