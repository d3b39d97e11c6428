package router

import (
	"fmt"
	"strings"
)

// RouteError reports a routing call that exhausted its attempts. The
// primary model's failure is the authoritative cause and is reachable
// through errors.Is / errors.As; any fallback attempt is recorded as
// annotation in Attempts.
type RouteError struct {
	AgentID  string
	Op       string
	Primary  error
	Attempts []Attempt
}

func (e *RouteError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "route %s for agent %s: %v", e.Op, e.AgentID, e.Primary)
	switch {
	case len(e.Attempts) < 2:
		b.WriteString(" (no fallback configured)")
	default:
		last := e.Attempts[len(e.Attempts)-1]
		fmt.Fprintf(&b, " (fallback %s also failed: %v)", last.ModelID, last.Err)
	}
	return b.String()
}

func (e *RouteError) Unwrap() error { return e.Primary }

// FallbackAttempted reports whether a fallback hop was tried.
func (e *RouteError) FallbackAttempted() bool {
	for _, a := range e.Attempts {
		if a.Fallback {
			return true
		}
	}
	return false
}
