package repository

import "fmt"

type policyKind int

const (
	openToFallback policyKind = iota
	closedPropagate
	defaultValue
)

// Policy decides what a failed remote read turns into.
type Policy struct {
	kind  policyKind
	value int
}

var (
	// OpenToFallback hides the failure and serves the fallback catalog.
	OpenToFallback = Policy{kind: openToFallback}

	// ClosedPropagate returns the original error to the caller.
	ClosedPropagate = Policy{kind: closedPropagate}
)

// DefaultValue hides the failure and serves a fixed value.
func DefaultValue(v int) Policy {
	return Policy{kind: defaultValue, value: v}
}

// Propagates reports whether failures reach the caller.
func (p Policy) Propagates() bool { return p.kind == closedPropagate }

// Value returns the substitute for DefaultValue policies.
func (p Policy) Value() int { return p.value }

func (p Policy) String() string {
	switch p.kind {
	case openToFallback:
		return "fallback"
	case closedPropagate:
		return "propagate"
	case defaultValue:
		return fmt.Sprintf("default(%d)", p.value)
	default:
		return "unknown"
	}
}

// label is the metric label; it omits the default value to bound cardinality.
func (p Policy) label() string {
	if p.kind == defaultValue {
		return "default"
	}
	return p.String()
}
