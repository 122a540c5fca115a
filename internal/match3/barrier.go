package match3

// Barrier tracks the transitions scheduled for one phase. Each transition
// identity is released at most once; unknown or repeated IDs are ignored.
type Barrier struct {
	pending map[uint64]struct{}
}

// Arm registers transitions that must complete before the barrier drains.
func (b *Barrier) Arm(ts []Transition) {
	if b.pending == nil {
		b.pending = make(map[uint64]struct{}, len(ts))
	}
	for _, t := range ts {
		b.pending[t.ID] = struct{}{}
	}
}

// Done releases id. It returns true only for the first release of an armed ID.
func (b *Barrier) Done(id uint64) bool {
	if _, ok := b.pending[id]; !ok {
		return false
	}
	delete(b.pending, id)
	return true
}

// Pending returns the number of transitions still in flight.
func (b *Barrier) Pending() int {
	return len(b.pending)
}

// Drained reports whether nothing is in flight.
func (b *Barrier) Drained() bool {
	return len(b.pending) == 0
}

// Reset forgets all pending transitions. Later completions become stale.
func (b *Barrier) Reset() {
	b.pending = nil
}
