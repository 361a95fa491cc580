//go:build !linux

package sysctl

import "context"

// ProcStore is only available on Linux; elsewhere every call fails with
// ErrUnsupported.
type ProcStore struct{}

// NewProcStore creates a /proc/sys backed store.
func NewProcStore() *ProcStore {
	return &ProcStore{}
}

// Read always returns ErrUnsupported.
func (s *ProcStore) Read(ctx context.Context, key string) (string, error) {
	return "", ErrUnsupported
}

// Write always returns ErrUnsupported.
func (s *ProcStore) Write(ctx context.Context, key, value string) error {
	return ErrUnsupported
}
