package fst

import (
	asyncq "github.com/lowentropy/sigmafst/internal/async"
)

// EdgeInstall is one queued ingestion operation: give stateID an
// outgoing edge for Symbol resolving to Value with the given skip
// length. A zero Value with zero Skip clears the edge.
type EdgeInstall struct {
	StateID int
	Symbol  byte
	Value   uint32
	Skip    uint16
}

// AddState bump-allocates a zeroed state record in the current arena and
// publishes its index entry. Population is serialized with compaction by
// the writer mutex; readers may resolve the state as soon as AddState
// returns (all its edges miss until installed).
func (g *Engine) AddState(stateID int) error {
	g.writerMu.Lock()
	defer g.writerMu.Unlock()
	return g.addStateLocked(stateID)
}

func (g *Engine) addStateLocked(stateID int) error {
	if stateID < 0 || stateID >= g.memory.maxStates {
		return ErrStateRange
	}
	if g.memory.stateIndex[stateID].Load() != 0 {
		return ErrStateExists
	}
	arena := g.memory.current.Load()
	if arena == nil {
		return ErrArenaFreed
	}
	if g.memory.allocHead+stateWords > uint64(len(arena.words)) {
		return ErrArenaFull
	}
	if g.memory.allocHead > maxStateOffset {
		return ErrArenaFull
	}

	offset := g.memory.allocHead
	g.memory.allocHead += stateWords
	// A fresh arena region is already zeroed, so the record is fully
	// initialized the moment the entry becomes visible.
	g.memory.stateIndex[stateID].Store(makeIndexEntry(arena.generation&maxGeneration, offset))
	return nil
}

// SetEdge installs (or clears) the jump-table slot of stateID for one
// input byte. The store is atomic so concurrent lookups observe either
// the old or the new edge, never a torn one.
func (g *Engine) SetEdge(stateID int, symbol byte, value uint32, skip uint16) error {
	g.writerMu.Lock()
	defer g.writerMu.Unlock()
	return g.setEdgeLocked(stateID, symbol, value, skip)
}

func (g *Engine) setEdgeLocked(stateID int, symbol byte, value uint32, skip uint16) error {
	if stateID < 0 || stateID >= g.memory.maxStates {
		return ErrStateRange
	}
	entry := g.memory.stateIndex[stateID].Load()
	if entry == 0 {
		return ErrUnknownState
	}
	arena := g.memory.current.Load()
	if arena == nil {
		return ErrArenaFreed
	}
	offset := entryOffset(entry)
	arena.checkState(offset)
	arena.store(offset+wordJump+uint64(symbol), makeSlot(value, skip))
	return nil
}

// DrainInstallQueue applies queued edge installs in order, creating
// missing states on first touch. maxOps <= 0 drains until the queue is
// empty. Returns the number of installs applied; on error the preceding
// installs remain applied.
func (g *Engine) DrainInstallQueue(queue *asyncq.RingBuffer[EdgeInstall], maxOps int) (int, error) {
	g.writerMu.Lock()
	defer g.writerMu.Unlock()

	applied := 0
	for maxOps <= 0 || applied < maxOps {
		op, ok := queue.Dequeue()
		if !ok {
			break
		}
		if err := g.addStateLocked(op.StateID); err != nil && err != ErrStateExists {
			return applied, err
		}
		if err := g.setEdgeLocked(op.StateID, op.Symbol, op.Value, op.Skip); err != nil {
			return applied, err
		}
		applied++
	}
	return applied, nil
}
