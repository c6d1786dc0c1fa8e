package filter

import (
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/time/rate"
)

// ErrInvalidRate is returned by RateLimit.Start for a non-positive limit or burst.
var ErrInvalidRate = errors.New("filter: rate limit must be positive")

// RateLimit denies events once more than limit events per second (with the
// given burst) have been evaluated. It must be started before use; until
// then, and after Stop, it is neutral.
//
// The limiter is owned by the filter; it is the only state the filter keeps.
func RateLimit(limit rate.Limit, burst int) *RateLimitFilter {
	return &RateLimitFilter{limit: limit, burst: burst}
}

// RateLimitFilter is the filter returned by RateLimit.
type RateLimitFilter struct {
	limit   rate.Limit
	burst   int
	limiter atomic.Pointer[rate.Limiter]
}

// Start creates the limiter.
func (f *RateLimitFilter) Start() error {
	if f.limit <= 0 || f.burst <= 0 {
		return fmt.Errorf("%w: limit=%v burst=%d", ErrInvalidRate, f.limit, f.burst)
	}
	f.limiter.Store(rate.NewLimiter(f.limit, f.burst))
	return nil
}

// Stop drops the limiter.
func (f *RateLimitFilter) Stop() {
	f.limiter.Store(nil)
}

// Decide implements Filter.
func (f *RateLimitFilter) Decide(Event) Decision {
	l := f.limiter.Load()
	if l == nil {
		return Neutral
	}
	if !l.Allow() {
		return Deny
	}
	return Neutral
}
