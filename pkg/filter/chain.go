package filter

import (
	"errors"
	"fmt"
	"slices"
)

// ErrStart is returned when a filter in the chain fails to activate.
var ErrStart = errors.New("filter: failed to start")

// Chain is an ordered, immutable sequence of filters.
//
// Evaluation stops at the first Deny; if no filter denies, the event is
// accepted. NewChain always places the guard last, so it can deny events
// that every upstream filter left neutral or accepted.
type Chain struct {
	filters []Filter
}

// NewChain assembles the standard order: the severity threshold, the
// filters supplied by the logging pipeline, then the guard.
// Nil filters are skipped.
//
// When a supplied filter implements Lifecycle, the guard is also placed
// directly in front of the first such filter, so records it would deny
// never reach stateful filters (a rate limiter does not spend tokens on
// them). The guard stays last in either case.
func NewChain(threshold Filter, supplied []Filter, guard Filter) *Chain {
	filters := make([]Filter, 0, len(supplied)+3)
	filters = appendNonNil(filters, threshold)
	guarded := guard == nil
	for _, f := range supplied {
		if f == nil {
			continue
		}
		if _, stateful := f.(Lifecycle); stateful && !guarded {
			filters = append(filters, guard)
			guarded = true
		}
		filters = append(filters, f)
	}
	filters = appendNonNil(filters, guard)
	return &Chain{filters: filters}
}

func appendNonNil(filters []Filter, f Filter) []Filter {
	if f == nil {
		return filters
	}
	return append(filters, f)
}

// Decide evaluates the chain. The result is Accept or Deny, never Neutral.
func (c *Chain) Decide(ev Event) Decision {
	for _, f := range c.filters {
		if f.Decide(ev) == Deny {
			return Deny
		}
	}
	return Accept
}

// Filters returns a copy of the chain elements in evaluation order.
func (c *Chain) Filters() []Filter {
	return slices.Clone(c.filters)
}

// Last returns the final element of the chain, or nil for an empty chain.
func (c *Chain) Last() Filter {
	if len(c.filters) == 0 {
		return nil
	}
	return c.filters[len(c.filters)-1]
}

// Len returns the number of filters in the chain.
func (c *Chain) Len() int {
	return len(c.filters)
}

// Start activates every filter implementing Lifecycle, in order.
// On failure the filters already started are stopped again.
func (c *Chain) Start() error {
	var started []Lifecycle
	for i, f := range c.filters {
		lc, ok := f.(Lifecycle)
		if !ok {
			continue
		}
		if err := lc.Start(); err != nil {
			for _, s := range slices.Backward(started) {
				s.Stop()
			}
			return errors.Join(ErrStart, fmt.Errorf("filter %d (%T): %w", i, f, err))
		}
		started = append(started, lc)
	}
	return nil
}

// Stop deactivates every filter implementing Lifecycle, in reverse order.
func (c *Chain) Stop() {
	for _, f := range slices.Backward(c.filters) {
		if lc, ok := f.(Lifecycle); ok {
			lc.Stop()
		}
	}
}
