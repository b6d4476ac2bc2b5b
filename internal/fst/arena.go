package fst

import (
	"errors"
	"fmt"
	"sync/atomic"
)

var (
	ErrArenaFull  = errors.New("arena capacity exceeded")
	ErrArenaFreed = errors.New("arena already freed")
)

// Arena is one generation of contiguous state storage. The word slice is
// owned exclusively by the engine; retired arenas are never mutated
// structurally, only their per-state statistics words may still be
// touched by readers pinned to an older generation.
type Arena struct {
	generation uint64
	words      []uint64
	freed      bool
}

func newArena(generation uint64, capacityWords int) *Arena {
	if capacityWords < minArenaWords {
		capacityWords = minArenaWords
	}
	return &Arena{
		generation: generation,
		words:      make([]uint64, capacityWords),
	}
}

func (a *Arena) Generation() uint64 {
	return a.generation
}

func (a *Arena) CapacityWords() int {
	return len(a.words)
}

func (a *Arena) IsFreed() bool {
	return a.freed
}

func (a *Arena) Free() {
	if a.freed {
		return
	}
	a.freed = true
	a.words = nil
}

// checkState validates that offset addresses a full state record inside
// the arena. A violation means the state index or the arena pointer is
// corrupted; that is not an input-driven outcome, so it is fatal.
func (a *Arena) checkState(offset uint64) {
	if offset+stateWords > uint64(len(a.words)) {
		panic(fmt.Sprintf("fst: state offset %d exceeds arena of %d words (generation %d)",
			offset, len(a.words), a.generation))
	}
}

//go:inline
func (a *Arena) load(i uint64) uint64 {
	return atomic.LoadUint64(&a.words[i])
}

//go:inline
func (a *Arena) store(i uint64, v uint64) {
	atomic.StoreUint64(&a.words[i], v)
}

//go:inline
func (a *Arena) cas(i uint64, old, new uint64) bool {
	return atomic.CompareAndSwapUint64(&a.words[i], old, new)
}

// bumpStats records one observed input symbol on the state at base:
// a hit-count increment and a shift of the symbol into the rolling
// sketch. Both are CAS retry loops; lost updates under contention are
// acceptable since the counters only steer a heuristic.
func (a *Arena) bumpStats(base uint64, symbol byte) {
	for {
		old := a.load(base + wordHits)
		hits := ((old & slotValueMask) + 1) & slotValueMask
		if a.cas(base+wordHits, old, (old&^slotValueMask)|hits) {
			break
		}
	}
	for {
		old := a.load(base + wordSketch)
		next := (old << 8) | uint64(symbol)
		if a.cas(base+wordSketch, old, next) {
			break
		}
	}
}

func (a *Arena) hitCount(base uint64) uint32 {
	return uint32(a.load(base+wordHits) & slotValueMask)
}
