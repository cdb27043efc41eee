// Package aggregate folds probe records into a fixed-length rolling window
// of time slots and emits a millisecond snapshot after every accepted record.
//
// An Aggregator is owned by a single goroutine. All probers feed one channel
// and the aggregator drains it one record at a time, so the window is never
// shared.
package aggregate

import (
	"context"
	"fmt"

	"github.com/rileyhilliard/pingspark/internal/logger"
	"github.com/rileyhilliard/pingspark/internal/probe"
)

// Snapshot holds one floor-mean millisecond value per slot, oldest first.
// 0 means the slot has no samples.
type Snapshot []uint64

// Mode selects how records are keyed into slots.
type Mode string

const (
	// Merged ignores the host id: samples from different hosts that share a
	// seq land in the same slot and are averaged together.
	Merged Mode = "merged"
	// PerHost keeps one window per host. Position i of the snapshot is the
	// floor mean of the non-zero per-host values at position i.
	PerHost Mode = "per-host"
)

// ParseMode converts a config string to a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case Merged, PerHost:
		return Mode(s), nil
	case "":
		return Merged, nil
	default:
		return "", fmt.Errorf("unknown window mode %q", s)
	}
}

// Observer is told about dropped records and emitted snapshots.
type Observer interface {
	ObserveDropped(reason string)
	ObserveSnapshot()
}

type nopObserver struct{}

func (nopObserver) ObserveDropped(string) {}
func (nopObserver) ObserveSnapshot()      {}

// Drop reasons reported to the Observer.
const (
	DropFailed  = "failed"
	DropEvicted = "evicted"
)

// Aggregator maintains the rolling window(s).
type Aggregator struct {
	size    int
	mode    Mode
	merged  *Window
	perHost map[int]*Window
	hostIDs []int // creation order, for deterministic merging

	log      logger.Logger
	observer Observer
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithMode sets the keying policy. Default is Merged.
func WithMode(m Mode) Option {
	return func(a *Aggregator) {
		if m != "" {
			a.mode = m
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.log = l
		}
	}
}

// WithObserver reports drops and emissions to o.
func WithObserver(o Observer) Option {
	return func(a *Aggregator) {
		if o != nil {
			a.observer = o
		}
	}
}

// New creates an aggregator whose snapshots have size entries.
func New(size int, opts ...Option) *Aggregator {
	if size < 1 {
		size = 1
	}
	a := &Aggregator{
		size:     size,
		mode:     Merged,
		perHost:  make(map[int]*Window),
		log:      logger.NewEnvLogger("[aggregate]"),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.mode == Merged {
		a.merged = NewWindow(size)
	}
	return a
}

// Size is the number of slots in every snapshot.
func (a *Aggregator) Size() int {
	return a.size
}

// Accept folds rec into the window. It returns the new snapshot and true when
// the record changed the window; failed records and records whose slot was
// already evicted return false and leave the window untouched.
func (a *Aggregator) Accept(rec probe.Record) (Snapshot, bool) {
	if !rec.OK {
		a.observer.ObserveDropped(DropFailed)
		return nil, false
	}

	w := a.windowFor(rec.HostID)
	if !fold(w, rec) {
		a.log.Debug("dropping host=%d seq=%d: slot already evicted", rec.HostID, rec.Seq)
		a.observer.ObserveDropped(DropEvicted)
		return nil, false
	}

	a.observer.ObserveSnapshot()
	return a.snapshot(), true
}

// Run drains in until ctx is done or in is closed, sending one snapshot per
// accepted record on out. Sends block, so a slow consumer stalls the
// aggregator and, through in, the probers.
func (a *Aggregator) Run(ctx context.Context, in <-chan probe.Record, out chan<- Snapshot) error {
	for {
		var rec probe.Record
		select {
		case <-ctx.Done():
			return ctx.Err()
		case r, ok := <-in:
			if !ok {
				return nil
			}
			rec = r
		}

		snap, ok := a.Accept(rec)
		if !ok {
			continue
		}

		select {
		case out <- snap:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (a *Aggregator) windowFor(hostID int) *Window {
	if a.mode == Merged {
		return a.merged
	}
	w, ok := a.perHost[hostID]
	if !ok {
		w = NewWindow(a.size)
		a.perHost[hostID] = w
		a.hostIDs = append(a.hostIDs, hostID)
	}
	return w
}

// fold applies one successful record to w. It reports false when the record
// maps to a slot that is no longer in the window.
func fold(w *Window, rec probe.Record) bool {
	if w.Newer(rec.Seq) {
		w.Push(rec.Seq, rec.RTT)
		return true
	}
	slot := w.Find(rec.Seq)
	if slot == nil {
		return false
	}
	slot.Samples = append(slot.Samples, rec.RTT)
	return true
}

func (a *Aggregator) snapshot() Snapshot {
	if a.mode == Merged {
		return Snapshot(a.merged.Means())
	}

	sums := make([]uint64, a.size)
	counts := make([]uint64, a.size)
	for _, id := range a.hostIDs {
		for i, v := range a.perHost[id].Means() {
			if v == 0 {
				continue
			}
			sums[i] += v
			counts[i]++
		}
	}

	snap := make(Snapshot, a.size)
	for i := range snap {
		if counts[i] > 0 {
			snap[i] = sums[i] / counts[i]
		}
	}
	return snap
}
