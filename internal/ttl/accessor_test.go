package ttl

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/KilimcininKorOglu/ttlctl/internal/sysctl"
)

// fakeStore answers reads with canned text and fails writes on demand.
type fakeStore struct {
	mu        sync.Mutex
	lines     map[string]string
	readErrs  map[string]error
	writeErrs map[string]error
	written   []string
}

func (s *fakeStore) Read(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.readErrs[key]; ok {
		return "", err
	}
	return s.lines[key], nil
}

func (s *fakeStore) Write(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.writeErrs[key]; ok {
		return err
	}
	s.written = append(s.written, key+"="+value)
	return nil
}

func newObservedAccessor(store sysctl.Store) (*Accessor, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return New(store, zap.New(core).Sugar()), logs
}

func TestAccessor_Get(t *testing.T) {
	store := &fakeStore{lines: map[string]string{
		KeyIPv4: "net.ipv4.ip_default_ttl = 64\n",
		KeyIPv6: "net.ipv6.conf.all.hop_limit = 64\n",
	}}
	a, logs := newObservedAccessor(store)

	reading, err := a.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Reading{IPv4: 64, IPv6: 64}, reading)
	assert.True(t, reading.Equal(64))
	assert.Zero(t, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
}

func TestAccessor_GetFailures(t *testing.T) {
	tests := []struct {
		name     string
		store    *fakeStore
		wantKind ErrorKind
		wantKey  string
		contains string
	}{
		{
			name: "malformed ipv4 line",
			store: &fakeStore{lines: map[string]string{
				KeyIPv4: "net.ipv4.ip_default_ttl 64\n",
				KeyIPv6: "net.ipv6.conf.all.hop_limit = 64\n",
			}},
			wantKind: ParseFailed,
			wantKey:  KeyIPv4,
			contains: "malformed",
		},
		{
			name: "non-integer ipv6 value",
			store: &fakeStore{lines: map[string]string{
				KeyIPv4: "net.ipv4.ip_default_ttl = 64\n",
				KeyIPv6: "net.ipv6.conf.all.hop_limit = lots\n",
			}},
			wantKind: ParseFailed,
			wantKey:  KeyIPv6,
			contains: "lots",
		},
		{
			name: "tool missing",
			store: &fakeStore{
				lines:    map[string]string{KeyIPv6: "net.ipv6.conf.all.hop_limit = 64\n"},
				readErrs: map[string]error{KeyIPv4: fmt.Errorf("%w: exec: \"sysctl\": executable file not found in $PATH", sysctl.ErrToolNotFound)},
			},
			wantKind: InvocationFailed,
			wantKey:  KeyIPv4,
			contains: "not found",
		},
		{
			name: "key absent",
			store: &fakeStore{
				lines:    map[string]string{KeyIPv4: "net.ipv4.ip_default_ttl = 64\n"},
				readErrs: map[string]error{KeyIPv6: fmt.Errorf("%w: %s", sysctl.ErrUnknownKey, KeyIPv6)},
			},
			wantKind: InvocationFailed,
			wantKey:  KeyIPv6,
			contains: "unknown kernel parameter",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, logs := newObservedAccessor(tt.store)

			reading, err := a.Get(context.Background())
			require.Error(t, err)
			assert.Equal(t, Reading{}, reading)

			var accErr *Error
			require.ErrorAs(t, err, &accErr)
			assert.Equal(t, OpGet, accErr.Op)
			assert.Equal(t, tt.wantKind, accErr.Kind)
			assert.Equal(t, tt.wantKey, accErr.Key)
			assert.True(t, strings.HasPrefix(err.Error(), "Failed to get TTL values: "))
			assert.Contains(t, err.Error(), tt.contains)

			errLogs := logs.FilterLevelExact(zapcore.ErrorLevel).All()
			require.Len(t, errLogs, 1)
			assert.True(t, strings.HasPrefix(errLogs[0].Message, "Error getting TTL values: "))
		})
	}
}

func TestAccessor_SetThenGetRoundTrip(t *testing.T) {
	store := sysctl.NewMemoryStore(nil)
	a := New(store, nil)
	ctx := context.Background()

	for _, v := range []int{0, 1, 64, 128, 255} {
		require.NoError(t, a.Set(ctx, v))

		reading, err := a.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, Reading{IPv4: v, IPv6: v}, reading)
	}
}

func TestAccessor_SetWritesIPv4First(t *testing.T) {
	store := &fakeStore{}
	a := New(store, nil)

	require.NoError(t, a.Set(context.Background(), 128))
	assert.Equal(t, []string{
		"net.ipv4.ip_default_ttl=128",
		"net.ipv6.conf.all.hop_limit=128",
	}, store.written)
}

func TestAccessor_SetOutOfRangeRejected(t *testing.T) {
	store := sysctl.NewMemoryStore(nil)
	a, logs := newObservedAccessor(store)

	err := a.Set(context.Background(), 256)
	require.Error(t, err)

	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, Rejected, kind)
	assert.True(t, strings.HasPrefix(err.Error(), "Failed to set TTL value: "))
	assert.Equal(t, 1, logs.FilterMessageSnippet("Error setting TTL value").Len())

	reading, err := a.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Reading{IPv4: 64, IPv6: 64}, reading)
}

func TestAccessor_SetValuePassesThrough(t *testing.T) {
	store := &fakeStore{}
	a := New(store, nil)

	require.NoError(t, a.SetValue(context.Background(), "abc"))
	assert.Equal(t, "net.ipv4.ip_default_ttl=abc", store.written[0])

	mem := sysctl.NewMemoryStore(nil)
	err := New(mem, nil).SetValue(context.Background(), "abc")
	kind, _ := KindOf(err)
	assert.Equal(t, Rejected, kind)
}

func TestAccessor_SetPartialFailureKeepsIPv4(t *testing.T) {
	store := sysctl.NewMemoryStore(nil)
	store.SetValidator(func(key, value string) error {
		if key == KeyIPv6 {
			return fmt.Errorf("%w: %s", sysctl.ErrPermissionDenied, key)
		}
		return nil
	})
	a, logs := newObservedAccessor(store)
	ctx := context.Background()

	err := a.Set(ctx, 128)
	require.Error(t, err)

	var accErr *Error
	require.ErrorAs(t, err, &accErr)
	assert.Equal(t, Rejected, accErr.Kind)
	assert.Equal(t, KeyIPv6, accErr.Key)
	assert.ErrorIs(t, err, sysctl.ErrPermissionDenied)
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.ErrorLevel).Len())

	reading, err := a.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, Reading{IPv4: 128, IPv6: 64}, reading)
}

func TestAccessor_SetInvocationFailure(t *testing.T) {
	store := &fakeStore{writeErrs: map[string]error{
		KeyIPv4: fmt.Errorf("%w: sysctl", sysctl.ErrToolNotFound),
	}}
	a := New(store, nil)

	err := a.Set(context.Background(), 64)
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, InvocationFailed, kind)
	assert.Empty(t, store.written)
}

func TestAccessor_ConcurrentUse(t *testing.T) {
	a := New(sysctl.NewMemoryStore(nil), nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			_ = a.Set(ctx, v)
			_, _ = a.Get(ctx)
		}(i + 1)
	}
	wg.Wait()

	_, err := a.Get(ctx)
	assert.NoError(t, err)
}

func TestKindOf(t *testing.T) {
	_, ok := KindOf(errors.New("plain"))
	assert.False(t, ok)

	kind, ok := KindOf(fmt.Errorf("wrapped: %w", &Error{Op: OpSet, Kind: Rejected}))
	assert.True(t, ok)
	assert.Equal(t, Rejected, kind)
}

func TestErrorKind_String(t *testing.T) {
	assert.Equal(t, "invocation failed", InvocationFailed.String())
	assert.Equal(t, "parse failed", ParseFailed.String())
	assert.Equal(t, "rejected", Rejected.String())
	assert.Equal(t, "unknown", ErrorKind(42).String())
}
