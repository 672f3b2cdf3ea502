package health

import "errors"

var (
	// ErrCheckFailed wraps the cause of a failed dependency check.
	ErrCheckFailed = errors.New("health: check failed")

	// ErrCheckTimeout indicates a check outlived the aggregator timeout.
	ErrCheckTimeout = errors.New("health: check timeout")

	// ErrCheckerNotFound indicates a checker was not found.
	ErrCheckerNotFound = errors.New("health: checker not found")
)
