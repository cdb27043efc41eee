// Package probe measures round-trip times to a single host on a fixed cadence.
//
// A Prober owns one Transport and emits one Record per tick onto a shared
// channel. Ticks are scheduled at absolute instants (start + n*interval) so
// slow probes never push later ticks back.
package probe

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/rileyhilliard/pingspark/internal/errors"
)

// Record is one probe outcome. OK is false when the echo failed, in which
// case RTT is zero and carries no meaning.
type Record struct {
	HostID int
	Seq    uint64
	RTT    time.Duration
	OK     bool
}

// Transport sends one echo request per call and waits for its reply.
type Transport interface {
	Probe(ctx context.Context) (time.Duration, error)
	Close() error
}

// Dialer opens a Transport to an already-resolved address.
type Dialer func(addr *net.IPAddr) (Transport, error)

// Observer is told about every probe outcome. Used for metrics.
type Observer interface {
	ObserveProbe(host string, rtt time.Duration, ok bool)
}

type nopObserver struct{}

func (nopObserver) ObserveProbe(string, time.Duration, bool) {}

// Resolve turns a host name or literal IPv4/IPv6 address into an IP address.
func Resolve(host string) (*net.IPAddr, error) {
	addr, err := net.ResolveIPAddr("ip", host)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrResolve,
			fmt.Sprintf("Cannot resolve host '%s'", host),
			"Check the address in the hosts list or your DNS settings")
	}
	return addr, nil
}
