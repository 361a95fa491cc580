package ttl

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why an accessor operation failed.
type ErrorKind int

const (
	// InvocationFailed means the parameter store could not be reached:
	// tool missing, permission denied on read, key absent.
	InvocationFailed ErrorKind = iota
	// ParseFailed means the store answered with text that is not "key = <int>".
	ParseFailed
	// Rejected means the store refused to apply a value.
	Rejected
)

// String returns the string representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case InvocationFailed:
		return "invocation failed"
	case ParseFailed:
		return "parse failed"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Operation names used in Error.
const (
	OpGet = "get"
	OpSet = "set"
)

// Error is returned by Accessor operations.
type Error struct {
	Op   string
	Kind ErrorKind
	Key  string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == OpSet {
		return fmt.Sprintf("Failed to set TTL value: %v", e.Err)
	}
	return fmt.Sprintf("Failed to get TTL values: %v", e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the ErrorKind carried by err, and false when err is not an
// accessor error.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
