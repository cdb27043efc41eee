package aggregate

import "time"

// Slot is one logical tick in the rolling window.
type Slot struct {
	Seq     uint64
	Samples []time.Duration

	// placeholder marks the pre-fill slots. They hold no samples, never match
	// a lookup and are older than every real seq.
	placeholder bool
}

// MeanMillis returns the floor of the mean sample in whole milliseconds.
// Each sample is truncated to milliseconds before summing. Empty slots are 0.
func (s *Slot) MeanMillis() uint64 {
	if len(s.Samples) == 0 {
		return 0
	}
	var sum uint64
	for _, d := range s.Samples {
		if d > 0 {
			sum += uint64(d.Milliseconds())
		}
	}
	return sum / uint64(len(s.Samples))
}

// Window is a fixed-size circular buffer of slots, always full.
// After NewWindow it holds size placeholder slots; Push overwrites the oldest.
type Window struct {
	slots []Slot
	head  int // oldest slot, and the next one Push overwrites
}

// NewWindow creates a window of size placeholder slots.
func NewWindow(size int) *Window {
	if size < 1 {
		size = 1
	}
	w := &Window{slots: make([]Slot, size)}
	for i := range w.slots {
		w.slots[i].placeholder = true
	}
	return w
}

// Len is always the configured size.
func (w *Window) Len() int {
	return len(w.slots)
}

// at returns the slot at logical position i, where 0 is the oldest.
func (w *Window) at(i int) *Slot {
	return &w.slots[(w.head+i)%len(w.slots)]
}

// Last returns the newest slot.
func (w *Window) Last() *Slot {
	return w.at(len(w.slots) - 1)
}

// Newer reports whether seq belongs after the newest slot.
func (w *Window) Newer(seq uint64) bool {
	last := w.Last()
	return last.placeholder || seq > last.Seq
}

// Push appends a new slot holding one sample, evicting the oldest.
func (w *Window) Push(seq uint64, rtt time.Duration) {
	w.slots[w.head] = Slot{Seq: seq, Samples: []time.Duration{rtt}}
	w.head = (w.head + 1) % len(w.slots)
}

// Find scans for the slot with seq. Positions shift on every push, so the
// lookup is by equality rather than by index arithmetic.
func (w *Window) Find(seq uint64) *Slot {
	for i := 0; i < len(w.slots); i++ {
		s := w.at(i)
		if !s.placeholder && s.Seq == seq {
			return s
		}
	}
	return nil
}

// Means returns MeanMillis for every slot, oldest first.
func (w *Window) Means() []uint64 {
	out := make([]uint64, len(w.slots))
	for i := range out {
		out[i] = w.at(i).MeanMillis()
	}
	return out
}

// Slots returns copies of the slots, oldest first.
func (w *Window) Slots() []Slot {
	out := make([]Slot, len(w.slots))
	for i := range out {
		s := w.at(i)
		out[i] = Slot{Seq: s.Seq, Samples: append([]time.Duration(nil), s.Samples...), placeholder: s.placeholder}
	}
	return out
}
