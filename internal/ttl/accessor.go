// Package ttl reads and writes the default IPv4 TTL and IPv6 hop limit of
// the running kernel.
package ttl

import (
	"context"
	"errors"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/KilimcininKorOglu/ttlctl/internal/sysctl"
)

// Keys of the parameters the accessor manages.
const (
	KeyIPv4 = sysctl.KeyIPv4DefaultTTL
	KeyIPv6 = sysctl.KeyIPv6HopLimit
)

// Reading is a snapshot of the current defaults. It is never cached.
type Reading struct {
	IPv4 int `json:"ipv4"`
	IPv6 int `json:"ipv6"`
}

// Equal reports whether both families carry value.
func (r Reading) Equal(value int) bool {
	return r.IPv4 == value && r.IPv6 == value
}

// Accessor reads and writes TTL defaults through a kernel parameter store.
// It holds no mutable state and is safe for concurrent use.
type Accessor struct {
	store sysctl.Store
	log   *zap.SugaredLogger
}

// New creates an accessor. A nil logger discards log output.
func New(store sysctl.Store, log *zap.SugaredLogger) *Accessor {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Accessor{store: store, log: log}
}

// Get queries both families. Either failure fails the whole call; no partial
// reading is returned.
func (a *Accessor) Get(ctx context.Context) (Reading, error) {
	var reading Reading

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := a.read(gctx, KeyIPv4)
		reading.IPv4 = v
		return err
	})
	g.Go(func() error {
		v, err := a.read(gctx, KeyIPv6)
		reading.IPv6 = v
		return err
	})

	if err := g.Wait(); err != nil {
		a.log.Errorf("Error getting TTL values: %s", err)
		return Reading{}, &Error{Op: OpGet, Kind: kindOfRead(err), Key: keyOf(err), Err: err}
	}
	return reading, nil
}

// Set writes ttl to both families.
func (a *Accessor) Set(ctx context.Context, ttl int) error {
	return a.SetValue(ctx, strconv.Itoa(ttl))
}

// SetValue writes value to the IPv4 key and then to the IPv6 key. The value
// is not checked here; the store decides what it accepts. When the IPv6 write
// fails after the IPv4 write succeeded, the IPv4 change stays in effect.
func (a *Accessor) SetValue(ctx context.Context, value string) error {
	for _, key := range []string{KeyIPv4, KeyIPv6} {
		if err := a.store.Write(ctx, key, value); err != nil {
			kind := InvocationFailed
			if sysctl.IsRejected(err) {
				kind = Rejected
			}
			a.log.Errorf("Error setting TTL value: %s", err)
			return &Error{Op: OpSet, Kind: kind, Key: key, Err: err}
		}
		a.log.Debugw("kernel parameter written", "key", key, "value", value)
	}
	return nil
}

// keyError tags a read failure with the key that produced it.
type keyError struct {
	key  string
	kind ErrorKind
	err  error
}

func (e *keyError) Error() string { return e.err.Error() }
func (e *keyError) Unwrap() error { return e.err }

func (a *Accessor) read(ctx context.Context, key string) (int, error) {
	text, err := a.store.Read(ctx, key)
	if err != nil {
		return 0, &keyError{key: key, kind: InvocationFailed, err: err}
	}

	v, err := sysctl.ParseLine(text)
	if err != nil {
		return 0, &keyError{key: key, kind: ParseFailed, err: err}
	}
	return v, nil
}

func kindOfRead(err error) ErrorKind {
	var ke *keyError
	if errors.As(err, &ke) {
		return ke.kind
	}
	return InvocationFailed
}

func keyOf(err error) string {
	var ke *keyError
	if errors.As(err, &ke) {
		return ke.key
	}
	return ""
}
