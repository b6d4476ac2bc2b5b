package fst

import (
	"runtime"
	"sync/atomic"
)

// MemoryManager owns the published arena and the state index. The index
// and the current pointer are read on every lookup; everything else is
// writer-only state guarded by the engine's writer mutex.
type MemoryManager struct {
	maxStates    int
	growthFactor float64

	current    atomic.Pointer[Arena]
	stateIndex []atomic.Uint64

	// Writer-only bump allocator head for the current arena.
	allocHead uint64
}

// EpochControl tracks the generation counter, the reader pin registry,
// and the FIFO queue of retired arenas awaiting reclamation.
type EpochControl struct {
	globalVersion atomic.Uint64
	registry      pinRegistry

	retired retireQueue
}

type retiredArena struct {
	arena   *Arena
	version uint64
}

func (m *MemoryManager) init(maxStates int, capacityWords int, growthFactor float64) {
	m.maxStates = maxStates
	m.growthFactor = growthFactor
	m.stateIndex = make([]atomic.Uint64, maxStates)
	m.current.Store(newArena(1, capacityWords))
}

func (e *EpochControl) init() {
	e.globalVersion.Store(1)
}

// resolve loads a generation-consistent (arena, offset) pair for a state.
// The index entry carries the generation it was written for; combining an
// entry with an arena of a different generation would address relocated
// memory, so on mismatch the read restarts. The window where entries run
// ahead of publication is the tail of an in-flight compaction, which keeps
// the retry loop short-lived.
func (m *MemoryManager) resolve(stateID int) (*Arena, uint64, bool) {
	for {
		arena := m.current.Load()
		if arena == nil {
			return nil, 0, false
		}
		entry := m.stateIndex[stateID].Load()
		if entry == 0 {
			return nil, 0, false
		}
		if entryGeneration(entry) != arena.generation&maxGeneration {
			// Entry written for a generation that is not published yet
			// (or no longer published); spin until the compactor's
			// pointer swap lands.
			runtime.Gosched()
			continue
		}
		offset := entryOffset(entry)
		arena.checkState(offset)
		return arena, offset, true
	}
}
