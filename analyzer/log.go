package analyzer

import "github.com/dashql-run/dashql-core/instance"

// ring is the rotating fixed-size instance log of §4.9: "a bounded,
// power-of-two-sized ring of prior program instances, retained so a
// caller can inspect or diff against recent history; the oldest entry is
// silently overwritten once the ring is full." It is a plain slot array
// rather than a channel or container/ring, since the façade is the only
// reader and writer and never needs concurrent access.
type ring struct {
	slots []*instance.ProgramInstance
	mask  int
	next  int
	size  int
}

// newRing allocates a ring of capacity, rounded up to the next power of
// two (§4.9's default is 64).
func newRing(capacity int) *ring {
	cap := 1
	for cap < capacity {
		cap <<= 1
	}
	return &ring{slots: make([]*instance.ProgramInstance, cap), mask: cap - 1}
}

// push records inst as the newest entry, evicting the oldest once full.
func (r *ring) push(inst *instance.ProgramInstance) {
	r.slots[r.next] = inst
	r.next = (r.next + 1) & r.mask
	if r.size < len(r.slots) {
		r.size++
	}
}

// top returns the most recently pushed instance, if any.
func (r *ring) top() (*instance.ProgramInstance, bool) {
	if r.size == 0 {
		return nil, false
	}
	idx := (r.next - 1) & r.mask
	return r.slots[idx], true
}

// at returns the entry offset back from the newest (0 is the newest,
// size-1 is the oldest still retained).
func (r *ring) at(offsetFromNewest int) (*instance.ProgramInstance, bool) {
	if offsetFromNewest < 0 || offsetFromNewest >= r.size {
		return nil, false
	}
	idx := (r.next - 1 - offsetFromNewest) & r.mask
	return r.slots[idx], true
}
