package sysctl

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// Well-known kernel parameter keys.
const (
	KeyIPv4DefaultTTL = "net.ipv4.ip_default_ttl"
	KeyIPv6HopLimit   = "net.ipv6.conf.all.hop_limit"
)

// DefaultSeed holds the values a fresh Linux kernel boots with.
var DefaultSeed = map[string]string{
	KeyIPv4DefaultTTL: "64",
	KeyIPv6HopLimit:   "64",
}

// ValidateFunc decides whether a store accepts value for key.
type ValidateFunc func(key, value string) error

// MemoryStore keeps parameters in process memory. It is useful for dry runs
// and for substituting the kernel in tests.
type MemoryStore struct {
	mu       sync.RWMutex
	values   map[string]string
	validate ValidateFunc
	writes   int
}

// NewMemoryStore creates a store holding a copy of seed. A nil seed uses
// DefaultSeed.
func NewMemoryStore(seed map[string]string) *MemoryStore {
	if seed == nil {
		seed = DefaultSeed
	}

	values := make(map[string]string, len(seed))
	for k, v := range seed {
		values[k] = v
	}
	return &MemoryStore{values: values, validate: ValidateOctet}
}

// SetValidator replaces the write validator. nil accepts every value.
func (s *MemoryStore) SetValidator(fn ValidateFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.validate = fn
}

// Read returns the parameter as "key = value".
func (s *MemoryStore) Read(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.values[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return FormatLine(key, value), nil
}

// Write stores value under an existing key.
func (s *MemoryStore) Write(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.values[key]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if s.validate != nil {
		if err := s.validate(key, value); err != nil {
			return err
		}
	}

	s.values[key] = strings.TrimSpace(value)
	s.writes++
	return nil
}

// Value returns the raw stored value.
func (s *MemoryStore) Value(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// Writes returns the number of successful writes.
func (s *MemoryStore) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

// ValidateOctet accepts integers in [0,255], the range of both the IPv4 TTL
// and IPv6 hop limit header fields.
func ValidateOctet(key, value string) error {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < 0 || n > 255 {
		return fmt.Errorf("%w: %s=%s", ErrInvalidValue, key, value)
	}
	return nil
}
