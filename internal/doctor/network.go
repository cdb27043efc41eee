package doctor

import (
	"context"
	"fmt"
	"net"

	"github.com/rileyhilliard/pingspark/internal/probe"
)

// SocketCheck opens and closes an ICMP socket to confirm the process has
// permission to send echo requests.
type SocketCheck struct {
	Privileged bool
	Dialer     probe.Dialer
}

func (c *SocketCheck) Name() string     { return "icmp_socket" }
func (c *SocketCheck) Category() string { return CategoryICMP }

func (c *SocketCheck) Run(context.Context) CheckResult {
	dial := c.Dialer
	if dial == nil {
		dial = probe.ICMPOptions{Privileged: c.Privileged}.Dialer()
	}

	kind := "unprivileged ping socket"
	suggestion := "Allow ping sockets with: sudo sysctl -w net.ipv4.ping_group_range=\"0 2147483647\"\n" +
		"or set probe.privileged: true and run as root"
	if c.Privileged {
		kind = "raw ICMP socket"
		suggestion = "Run as root or grant CAP_NET_RAW: sudo setcap cap_net_raw+ep $(which pingspark)"
	}

	t, err := dial(&net.IPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Cannot open %s: %v", kind, err),
			Suggestion: suggestion,
		}
	}
	_ = t.Close()

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("Can open %s", kind),
	}
}

func (c *SocketCheck) Fix() error { return nil }

// HostCheck resolves one configured host and sends it a single echo request.
type HostCheck struct {
	Host    string
	Resolve func(string) (*net.IPAddr, error)
	Dialer  probe.Dialer
}

func (c *HostCheck) Name() string     { return "host_" + c.Host }
func (c *HostCheck) Category() string { return CategoryHosts }

func (c *HostCheck) Run(ctx context.Context) CheckResult {
	resolve := c.Resolve
	if resolve == nil {
		resolve = probe.Resolve
	}

	addr, err := resolve(c.Host)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("%s: cannot resolve", c.Host),
			Suggestion: "Fix the entry in the hosts list; this host would not be probed",
		}
	}

	if c.Dialer == nil {
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusPass,
			Message: fmt.Sprintf("%s resolves to %s", c.Host, addr),
		}
	}

	t, err := c.Dialer(addr)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("%s: cannot open socket: %v", c.Host, err),
			Suggestion: "See the ICMP section above",
		}
	}
	defer t.Close()

	rtt, err := t.Probe(ctx)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    fmt.Sprintf("%s (%s): %v", c.Host, addr, err),
			Suggestion: "The host may drop ICMP; it will plot as gaps",
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("%s (%s) replied in %d ms", c.Host, addr, rtt.Milliseconds()),
	}
}

func (c *HostCheck) Fix() error { return nil }

// NewHostChecks returns one HostCheck per host.
func NewHostChecks(hosts []string, resolve func(string) (*net.IPAddr, error), dialer probe.Dialer) []Check {
	checks := make([]Check, 0, len(hosts))
	for _, h := range hosts {
		checks = append(checks, &HostCheck{Host: h, Resolve: resolve, Dialer: dialer})
	}
	return checks
}
