package sysctl

import (
	"errors"
	"fmt"
	"strings"
)

// Kernel parameter errors.
var (
	// ErrToolNotFound indicates the sysctl binary could not be started
	ErrToolNotFound = errors.New("sysctl tool not found")

	// ErrCommandFailed indicates the command ran but exited non-zero
	ErrCommandFailed = errors.New("command failed")

	// ErrMalformedOutput indicates a line did not have the form "key = value"
	ErrMalformedOutput = errors.New("malformed sysctl output")

	// ErrUnknownKey indicates the parameter does not exist in the store
	ErrUnknownKey = errors.New("unknown kernel parameter")

	// ErrInvalidValue indicates the store refused the value
	ErrInvalidValue = errors.New("invalid value for kernel parameter")

	// ErrPermissionDenied indicates the caller may not change the parameter
	ErrPermissionDenied = errors.New("permission denied")

	// ErrUnsupported indicates the backend is not available on this OS
	ErrUnsupported = errors.New("backend not supported on this platform")

	// ErrUnknownBackend indicates NewStore was asked for a backend it does not know
	ErrUnknownBackend = errors.New("unknown kernel parameter backend")
)

// CommandError describes a command that exited with a non-zero status.
type CommandError struct {
	Name     string
	Args     []string
	ExitCode int
	Stderr   string
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s %s: exit status %d", e.Name, strings.Join(e.Args, " "), e.ExitCode)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

// Unwrap lets errors.Is match ErrCommandFailed.
func (e *CommandError) Unwrap() error {
	return ErrCommandFailed
}

// IsRejected reports whether err means the parameter store refused a value,
// as opposed to the store being unreachable.
func IsRejected(err error) bool {
	return errors.Is(err, ErrCommandFailed) ||
		errors.Is(err, ErrInvalidValue) ||
		errors.Is(err, ErrPermissionDenied)
}
