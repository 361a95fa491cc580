// Package sockopt reports the TTL and hop limit that newly created sockets
// inherit from the kernel defaults.
package sockopt

import (
	"context"
	"fmt"
	"net"

	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

// Observation holds the per-family socket defaults. A family whose socket
// could not be opened carries its error instead of a value.
type Observation struct {
	IPv4    int
	IPv6    int
	IPv4Err error
	IPv6Err error
}

// Observe opens one unconnected UDP socket per family on the loopback address
// and reads IP_TTL and IPV6_UNICAST_HOPS from it. No packets are sent.
func Observe(ctx context.Context) Observation {
	var obs Observation
	obs.IPv4, obs.IPv4Err = IPv4TTL(ctx)
	obs.IPv6, obs.IPv6Err = IPv6HopLimit(ctx)
	return obs
}

// IPv4TTL returns the unicast TTL of a fresh IPv4 socket.
func IPv4TTL(ctx context.Context) (int, error) {
	conn, err := listen(ctx, "udp4", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	ttl, err := ipv4.NewConn(conn).TTL()
	if err != nil {
		return 0, fmt.Errorf("read IP_TTL: %w", err)
	}
	return ttl, nil
}

// IPv6HopLimit returns the unicast hop limit of a fresh IPv6 socket.
func IPv6HopLimit(ctx context.Context) (int, error) {
	conn, err := listen(ctx, "udp6", "[::1]:0")
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	hops, err := ipv6.NewConn(conn).HopLimit()
	if err != nil {
		return 0, fmt.Errorf("read IPV6_UNICAST_HOPS: %w", err)
	}
	return hops, nil
}

// listen opens a packet socket and returns it as a net.Conn, which is what
// the x/net option wrappers expect.
func listen(ctx context.Context, network, address string) (net.Conn, error) {
	var lc net.ListenConfig
	pc, err := lc.ListenPacket(ctx, network, address)
	if err != nil {
		return nil, fmt.Errorf("open %s socket: %w", network, err)
	}

	conn, ok := pc.(*net.UDPConn)
	if !ok {
		pc.Close()
		return nil, fmt.Errorf("open %s socket: unexpected type %T", network, pc)
	}
	return conn, nil
}
