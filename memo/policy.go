package memo

import (
	"fmt"
	"strings"
)

// FailurePolicy decides what a Memo does when its store is unavailable.
type FailurePolicy int

const (
	// FailClosed fails the call with ErrCacheUnavailable.
	FailClosed FailurePolicy = iota
	// FailOpen runs the transform without touching the store.
	FailOpen
)

// String returns the configuration name of the policy.
func (p FailurePolicy) String() string {
	switch p {
	case FailClosed:
		return "fail"
	case FailOpen:
		return "bypass"
	default:
		return "unknown"
	}
}

// ParseFailurePolicy parses a configuration value.
// Accepted: fail|closed and bypass|open. Empty means FailClosed.
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fail", "closed":
		return FailClosed, nil
	case "bypass", "open":
		return FailOpen, nil
	default:
		return FailClosed, fmt.Errorf("memo: unknown failure policy %q", s)
	}
}
