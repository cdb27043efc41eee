package probe

import (
	"context"
	"fmt"
	"net"
	"os"
	"sync/atomic"
	"time"

	"github.com/rileyhilliard/pingspark/internal/errors"
	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

// IANA protocol numbers used by icmp.ParseMessage.
const (
	protocolICMP     = 1
	protocolIPv6ICMP = 58
)

const (
	defaultPayloadSize = 32
	maxPacketSize      = 1500
)

// echoIDs hands out a distinct echo identifier to each transport in the
// process, so raw sockets can tell replies for different hosts apart.
var echoIDs atomic.Uint32

func init() {
	echoIDs.Store(uint32(os.Getpid()))
}

// ICMPOptions configures an ICMPTransport.
type ICMPOptions struct {
	// Privileged uses raw sockets (root or CAP_NET_RAW). Otherwise datagram
	// ping sockets are used, which on Linux require net.ipv4.ping_group_range
	// to include the current group.
	Privileged bool

	// Timeout bounds the wait for a reply to one request.
	Timeout time.Duration

	// PayloadSize is the number of data bytes in each echo request.
	PayloadSize int
}

// ICMPTransport sends ICMP echo requests to one address.
// It is not safe for concurrent use; each Prober owns its own transport.
type ICMPTransport struct {
	conn    *icmp.PacketConn
	addr    *net.IPAddr
	dst     net.Addr
	v6      bool
	opts    ICMPOptions
	id      int
	seq     uint16
	payload []byte
	readBuf []byte
	now     func() time.Time
}

// DialICMP opens an ICMP socket suitable for addr's address family.
func DialICMP(addr *net.IPAddr, opts ICMPOptions) (*ICMPTransport, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Second
	}
	if opts.PayloadSize <= 0 {
		opts.PayloadSize = defaultPayloadSize
	}

	v6 := addr.IP.To4() == nil
	network, listen := "udp4", "0.0.0.0"
	switch {
	case v6 && opts.Privileged:
		network, listen = "ip6:ipv6-icmp", "::"
	case v6:
		network, listen = "udp6", "::"
	case opts.Privileged:
		network = "ip4:icmp"
	}

	conn, err := icmp.ListenPacket(network, listen)
	if err != nil {
		suggestion := "Allow unprivileged ping sockets (sysctl net.ipv4.ping_group_range) or set probe.privileged: true and run as root"
		if opts.Privileged {
			suggestion = "Raw ICMP sockets need root or CAP_NET_RAW"
		}
		return nil, errors.WrapWithCode(err, errors.ErrTransport,
			fmt.Sprintf("Cannot open %s socket for %s", network, addr),
			suggestion)
	}

	var dst net.Addr = addr
	if !opts.Privileged {
		dst = &net.UDPAddr{IP: addr.IP, Zone: addr.Zone}
	}

	payload := make([]byte, opts.PayloadSize)
	for i := range payload {
		payload[i] = byte('a' + i%26)
	}

	return &ICMPTransport{
		conn:    conn,
		addr:    addr,
		dst:     dst,
		v6:      v6,
		opts:    opts,
		id:      int(echoIDs.Add(1) & 0xffff),
		payload: payload,
		readBuf: make([]byte, maxPacketSize),
		now:     time.Now,
	}, nil
}

// Dialer returns a Dialer that opens ICMP transports with opts.
func (o ICMPOptions) Dialer() Dialer {
	return func(addr *net.IPAddr) (Transport, error) {
		return DialICMP(addr, o)
	}
}

// Probe sends one echo request and waits for the matching reply.
func (t *ICMPTransport) Probe(ctx context.Context) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	t.seq++
	seq := int(t.seq)

	msg := icmp.Message{
		Type: ipv4.ICMPTypeEcho,
		Body: &icmp.Echo{ID: t.id, Seq: seq, Data: t.payload},
	}
	if t.v6 {
		msg.Type = ipv6.ICMPTypeEchoRequest
	}
	wb, err := msg.Marshal(nil)
	if err != nil {
		return 0, fmt.Errorf("encode echo for %s: %w", t.addr, err)
	}

	deadline := t.now().Add(t.opts.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := t.conn.SetReadDeadline(deadline); err != nil {
		return 0, fmt.Errorf("set deadline for %s: %w", t.addr, err)
	}

	start := t.now()
	if _, err := t.conn.WriteTo(wb, t.dst); err != nil {
		return 0, fmt.Errorf("send echo to %s: %w", t.addr, err)
	}

	for {
		n, peer, err := t.conn.ReadFrom(t.readBuf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				return 0, fmt.Errorf("no echo reply from %s within %s", t.addr, t.opts.Timeout)
			}
			return 0, fmt.Errorf("read reply from %s: %w", t.addr, err)
		}
		rtt := t.now().Sub(start)

		if !t.isReply(peer, t.readBuf[:n], seq) {
			continue
		}
		return rtt, nil
	}
}

// isReply reports whether b is the echo reply to our request seq from our target.
func (t *ICMPTransport) isReply(peer net.Addr, b []byte, seq int) bool {
	if !peerIP(peer).Equal(t.addr.IP) {
		return false
	}

	proto := protocolICMP
	if t.v6 {
		proto = protocolIPv6ICMP
	}
	rm, err := icmp.ParseMessage(proto, b)
	if err != nil {
		return false
	}
	if rm.Type != ipv4.ICMPTypeEchoReply && rm.Type != ipv6.ICMPTypeEchoReply {
		return false
	}
	echo, ok := rm.Body.(*icmp.Echo)
	if !ok || echo.Seq != seq {
		return false
	}
	// Datagram ping sockets rewrite the identifier, and the kernel already
	// filters replies per socket.
	if t.opts.Privileged && echo.ID != t.id {
		return false
	}
	return true
}

// Close releases the socket.
func (t *ICMPTransport) Close() error {
	return t.conn.Close()
}

func peerIP(addr net.Addr) net.IP {
	switch a := addr.(type) {
	case *net.IPAddr:
		return a.IP
	case *net.UDPAddr:
		return a.IP
	default:
		return nil
	}
}
