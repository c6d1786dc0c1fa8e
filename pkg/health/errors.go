package health

import "errors"

var (
	// ErrCheckFailed wraps the error returned by a failing check.
	ErrCheckFailed = errors.New("health: check failed")

	// ErrCheckTimeout is reported when a check outlives the check timeout.
	ErrCheckTimeout = errors.New("health: check timeout")
)
