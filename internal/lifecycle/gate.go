package lifecycle

import (
	"context"
	"sync"
)

// Gate admits concurrent callers until it is closed.
// Close waits for admitted callers to leave, so once it returns no admitted
// work is left running and no new work can be admitted.
type Gate struct {
	mu       sync.Mutex
	closed   bool
	inflight int
	drained  chan struct{}
}

// Enter admits a caller. It returns false once the gate is closed.
// Every successful Enter must be paired with Leave.
func (g *Gate) Enter() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return false
	}
	g.inflight++
	return true
}

// Leave releases a caller admitted by Enter.
func (g *Gate) Leave() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.inflight--
	if g.closed && g.inflight == 0 && g.drained != nil {
		close(g.drained)
		g.drained = nil
	}
}

// Close stops admitting callers and waits for in-flight ones to leave.
// The wait is bounded by ctx; the gate stays closed even if ctx expires.
// Calling Close on a closed gate waits for the remaining callers again.
func (g *Gate) Close(ctx context.Context) error {
	g.mu.Lock()
	g.closed = true
	if g.inflight == 0 {
		g.mu.Unlock()
		return nil
	}
	if g.drained == nil {
		g.drained = make(chan struct{})
	}
	drained := g.drained
	g.mu.Unlock()

	select {
	case <-drained:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Closed reports whether Close has been called.
func (g *Gate) Closed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.closed
}
