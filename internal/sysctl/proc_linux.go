//go:build linux

package sysctl

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"syscall"

	cnisysctl "github.com/containernetworking/plugins/pkg/utils/sysctl"
)

// ProcStore accesses kernel parameters through /proc/sys directly, without
// spawning a process.
type ProcStore struct{}

// NewProcStore creates a /proc/sys backed store.
func NewProcStore() *ProcStore {
	return &ProcStore{}
}

// Read returns the parameter rendered as "key = value".
func (s *ProcStore) Read(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	value, err := cnisysctl.Sysctl(key)
	if err != nil {
		return "", procError(key, err)
	}
	return FormatLine(key, value), nil
}

// Write stores value into the parameter file.
func (s *ProcStore) Write(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := cnisysctl.Sysctl(key, value); err != nil {
		return procError(key, err)
	}
	return nil
}

// procError maps file system errors from /proc/sys onto the package errors.
func procError(key string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	case errors.Is(err, syscall.EINVAL):
		return fmt.Errorf("%w: %s: %v", ErrInvalidValue, key, err)
	case errors.Is(err, fs.ErrPermission), errors.Is(err, syscall.EPERM):
		return fmt.Errorf("%w: %s: %v", ErrPermissionDenied, key, err)
	}
	return fmt.Errorf("%s: %w", key, err)
}
