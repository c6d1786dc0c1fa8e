package lifecycle

import "sync/atomic"

// State is a lifecycle stage of a component. Transitions only move forward.
type State int32

const (
	Created State = iota
	Configured
	Running
	Stopped
)

func (s State) String() string {
	switch s {
	case Created:
		return "created"
	case Configured:
		return "configured"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Machine holds a State and guards forward-only transitions.
// The zero value is in the Created state and safe for concurrent use.
type Machine struct {
	state atomic.Int32
}

// Current returns the current state.
func (m *Machine) Current() State {
	return State(m.state.Load())
}

// Advance moves from one state to a later one.
// Returns false if the machine is not in from, or if to does not follow from.
func (m *Machine) Advance(from, to State) bool {
	if to <= from {
		return false
	}
	return m.state.CompareAndSwap(int32(from), int32(to))
}
