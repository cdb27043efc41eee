package probe

import (
	"context"
	"time"

	"github.com/rileyhilliard/pingspark/internal/logger"
)

// SleepFunc blocks until the wall clock reaches t or ctx is done.
type SleepFunc func(ctx context.Context, t time.Time) error

// Prober drives one Transport on a fixed cadence.
type Prober struct {
	hostID    int
	host      string
	transport Transport
	out       chan<- Record
	interval  time.Duration

	sleep    SleepFunc
	log      logger.Logger
	observer Observer
}

// Option configures a Prober.
type Option func(*Prober)

// WithSleep replaces the wall-clock sleep, for tests.
func WithSleep(fn SleepFunc) Option {
	return func(p *Prober) {
		if fn != nil {
			p.sleep = fn
		}
	}
}

// WithLogger sets the logger used for transport errors.
func WithLogger(l logger.Logger) Option {
	return func(p *Prober) {
		if l != nil {
			p.log = l
		}
	}
}

// WithObserver reports every probe outcome to o.
func WithObserver(o Observer) Option {
	return func(p *Prober) {
		if o != nil {
			p.observer = o
		}
	}
}

// NewProber creates a prober for hostID that emits onto out every interval.
func NewProber(hostID int, host string, t Transport, out chan<- Record, interval time.Duration, opts ...Option) *Prober {
	p := &Prober{
		hostID:    hostID,
		host:      host,
		transport: t,
		out:       out,
		interval:  interval,
		sleep:     SleepUntil,
		log:       logger.NewEnvLogger("[probe]"),
		observer:  nopObserver{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run probes until ctx is cancelled, which is the only way it returns.
//
// Tick n is scheduled at start + n*interval. A failed probe still emits a
// record (OK == false) and advances seq. Sends on out block, so a stalled
// consumer stalls the prober rather than losing records.
func (p *Prober) Run(ctx context.Context, start time.Time) error {
	for seq := uint64(0); ; seq++ {
		rtt, err := p.transport.Probe(ctx)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		rec := Record{HostID: p.hostID, Seq: seq}
		if err != nil {
			p.log.Warn("%s seq=%d: %v", p.host, seq, err)
		} else {
			rec.RTT = rtt
			rec.OK = true
		}
		p.observer.ObserveProbe(p.host, rtt, rec.OK)

		select {
		case p.out <- rec:
		case <-ctx.Done():
			return ctx.Err()
		}

		next := start.Add(time.Duration(seq+1) * p.interval)
		if err := p.sleep(ctx, next); err != nil {
			return err
		}
	}
}

// SleepUntil waits until t. It returns immediately when t has passed.
func SleepUntil(ctx context.Context, t time.Time) error {
	d := time.Until(t)
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
