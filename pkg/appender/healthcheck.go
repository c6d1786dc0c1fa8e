package appender

import (
	"context"
	"fmt"
)

// Healthcheck returns a check function reporting whether the appender is running.
func Healthcheck(a *Appender) func(context.Context) error {
	return func(context.Context) error {
		if a == nil {
			return ErrNotRunning
		}
		if state := a.State(); state != StateRunning {
			return fmt.Errorf("%w: %s", ErrNotRunning, state)
		}
		return nil
	}
}

// Shutdown returns a function that stops the appender, flushing pending events.
func Shutdown(a *Appender) func(context.Context) error {
	return func(ctx context.Context) error {
		return a.Stop(ctx)
	}
}
