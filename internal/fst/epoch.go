package fst

import (
	"sync"
	"sync/atomic"
)

// pinnedNone marks a slot whose owner is not inside a read critical
// section.
const pinnedNone = ^uint64(0)

// pinSlot is one reader pin. While a lookup is in flight the slot holds
// the global version the reader observed on entry; retired arenas with a
// retirement version at or above any pinned version stay allocated.
type pinSlot struct {
	version atomic.Uint64

	// Freelist link, stored as slot id + 1 (0 terminates the list).
	nextFree atomic.Uint32
	id       uint32
}

// pinRegistry hands out pin slots to readers and lets the reclaimer
// enumerate every slot ever created. Slots are never removed: released
// slots go onto a tagged-index Treiber freelist and are reused, so the
// registry size is bounded by the peak number of concurrent readers.
//
// The freelist head packs a 32-bit ABA tag with the 32-bit id+1 of the
// top slot; the tag increments on every successful push or pop so a
// stale head read can never be swapped back in.
type pinRegistry struct {
	mu    sync.Mutex
	slots atomic.Pointer[[]*pinSlot]

	freeHead atomic.Uint64
}

func (r *pinRegistry) acquire() *pinSlot {
	for {
		head := r.freeHead.Load()
		top := uint32(head)
		if top == 0 {
			return r.grow()
		}
		slots := *r.slots.Load()
		slot := slots[top-1]
		next := slot.nextFree.Load()
		tag := (head>>32 + 1) << 32
		if r.freeHead.CompareAndSwap(head, tag|uint64(next)) {
			return slot
		}
	}
}

func (r *pinRegistry) release(slot *pinSlot) {
	for {
		head := r.freeHead.Load()
		slot.nextFree.Store(uint32(head))
		tag := (head>>32 + 1) << 32
		if r.freeHead.CompareAndSwap(head, tag|uint64(slot.id+1)) {
			return
		}
	}
}

func (r *pinRegistry) grow() *pinSlot {
	r.mu.Lock()
	defer r.mu.Unlock()

	var existing []*pinSlot
	if p := r.slots.Load(); p != nil {
		existing = *p
	}
	slot := &pinSlot{id: uint32(len(existing))}
	slot.version.Store(pinnedNone)

	next := make([]*pinSlot, len(existing)+1)
	copy(next, existing)
	next[len(existing)] = slot
	r.slots.Store(&next)
	return slot
}

// snapshot returns the current slot list for enumeration. The list is
// append-only, so a snapshot can only miss slots created afterwards;
// those slots cannot be pinned to a version older than the caller
// already observed.
func (r *pinRegistry) snapshot() []*pinSlot {
	p := r.slots.Load()
	if p == nil {
		return nil
	}
	return *p
}

// retireQueue is the FIFO list of superseded arenas. Only the compactor
// appends; reclamation pops from the front.
type retireQueue struct {
	mu      sync.Mutex
	entries []retiredArena
}

func (q *retireQueue) push(entry retiredArena) {
	q.mu.Lock()
	q.entries = append(q.entries, entry)
	q.mu.Unlock()
}

func (q *retireQueue) popIf(safe func(retiredArena) bool) (retiredArena, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.entries) == 0 {
		return retiredArena{}, false
	}
	head := q.entries[0]
	if !safe(head) {
		return retiredArena{}, false
	}
	q.entries[0] = retiredArena{}
	q.entries = q.entries[1:]
	return head, true
}

func (q *retireQueue) drain() []retiredArena {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.entries
	q.entries = nil
	return out
}

// pin records the observed global version into the reader's slot. It
// must happen before the reader touches arena memory; the sequentially
// consistent store orders it against the compactor's version bump.
func (e *EpochControl) pin(slot *pinSlot) {
	slot.version.Store(e.globalVersion.Load())
}

func (e *EpochControl) unpin(slot *pinSlot) {
	slot.version.Store(pinnedNone)
}

// oldestPinned returns the smallest version currently pinned by any
// reader, or pinnedNone when no reader is pinned.
func (e *EpochControl) oldestPinned() uint64 {
	oldest := uint64(pinnedNone)
	for _, slot := range e.registry.snapshot() {
		if v := slot.version.Load(); v < oldest {
			oldest = v
		}
	}
	return oldest
}

// TryCleanup walks the retirement queue oldest-first and frees every
// arena whose retirement version is below all pinned versions. The walk
// stops at the first arena still covered by a pin: nothing newer is
// freed out of order. Reclamation is opportunistic and never blocks; a
// declined free is retried on a later call.
func (g *Engine) TryCleanup() int {
	freed := 0
	for {
		oldest := g.epochs.oldestPinned()
		entry, ok := g.epochs.retired.popIf(func(r retiredArena) bool {
			return oldest > r.version
		})
		if !ok {
			break
		}
		entry.arena.Free()
		freed++
		g.stats.arenasFreed.Add(1)
	}
	if freed > 0 {
		tracer().Debugf("reclaimed %d retired arena(s)", freed)
	}
	return freed
}
