// Package sysctl provides access to kernel parameters such as
// net.ipv4.ip_default_ttl through interchangeable backends.
package sysctl

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Store reads and writes kernel parameters by their dotted sysctl key.
//
// Read returns the text a sysctl(8) query prints, "key = value". Write sets
// the parameter; the backend (ultimately the kernel) is the only validator.
type Store interface {
	Read(ctx context.Context, key string) (string, error)
	Write(ctx context.Context, key, value string) error
}

// Backend names accepted by NewStore.
const (
	BackendSysctl = "sysctl"
	BackendProcfs = "procfs"
	BackendMemory = "memory"
)

// DefaultToolPath is the sysctl binary looked up in PATH.
const DefaultToolPath = "sysctl"

// NewStore returns the Store for the named backend. An empty backend selects
// the sysctl command. toolPath is only used by the sysctl backend.
func NewStore(backend, toolPath string) (Store, error) {
	switch backend {
	case "", BackendSysctl:
		return NewCommandStore(toolPath, nil), nil
	case BackendProcfs:
		return NewProcStore(), nil
	case BackendMemory:
		return NewMemoryStore(nil), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
}

// ParseLine extracts the integer value from a "key = value" line.
func ParseLine(text string) (int, error) {
	_, value, ok := strings.Cut(text, "=")
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrMalformedOutput, strings.TrimSpace(text))
	}

	value = strings.TrimSpace(value)
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid integer %q", ErrMalformedOutput, value)
	}
	return n, nil
}

// FormatLine renders a key and value the way sysctl(8) prints them.
func FormatLine(key, value string) string {
	return key + " = " + value + "\n"
}
