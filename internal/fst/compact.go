package fst

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Compact relocates every live state into a freshly allocated arena,
// densely packed, runs the sigma analysis on each copied record, and
// republishes the new arena as current. Compaction is single-writer and
// runs concurrently with any number of readers; it changes physical
// layout only, so lookup results are identical before and after (modulo
// newly installed highways and the mutable statistics words).
//
// On ErrArenaFull the compaction is abandoned before any index entry is
// touched and the engine keeps serving from its previous arena.
func (g *Engine) Compact() error {
	g.writerMu.Lock()
	defer g.writerMu.Unlock()

	old := g.memory.current.Load()
	if old == nil {
		return ErrArenaFreed
	}
	newGen := old.generation + 1
	if newGen > maxGeneration {
		return ErrGenerationOverflow
	}

	live := 0
	for i := range g.memory.stateIndex {
		if g.memory.stateIndex[i].Load() != 0 {
			live++
		}
	}
	required := live * stateWords

	capacityWords := old.CapacityWords()
	if g.memory.growthFactor > 1 && required*growthUtilDen > capacityWords*growthUtilNum {
		grown := int(float64(capacityWords) * g.memory.growthFactor)
		if grown > capacityWords {
			capacityWords = grown
		}
	}
	if required > capacityWords || uint64(required) > maxStateOffset {
		return ErrArenaFull
	}

	next := newArena(newGen, capacityWords)

	copied := uint64(0)
	paved := uint64(0)
	newHead := uint64(0)
	for i := range g.memory.stateIndex {
		entry := g.memory.stateIndex[i].Load()
		if entry == 0 {
			continue
		}
		offset := entryOffset(entry)
		old.checkState(offset)

		dst := next.words[newHead : newHead+stateWords]
		for w := uint64(0); w < stateWords; w++ {
			dst[w] = old.load(offset + w)
		}
		if g.verifyCompaction {
			g.verifyCopy(old, offset, dst, i)
		}
		if analyzeSigma(dst, g.minShortcutHits) {
			paved++
		}

		g.memory.stateIndex[i].Store(makeIndexEntry(newGen&maxGeneration, newHead))
		newHead += stateWords
		copied++
	}

	// Publish. The sequentially consistent pointer store is the full
	// fence of the protocol: no reader can load the new base and then
	// act on pre-publication assumptions, and the generation tag on
	// every index entry catches the reverse interleaving.
	version := g.epochs.globalVersion.Add(1)
	g.memory.current.Store(next)
	g.memory.allocHead = newHead

	g.epochs.retired.push(retiredArena{arena: old, version: version})
	g.stats.arenasRetired.Add(1)
	g.stats.compactions.Add(1)
	g.stats.statesCopied.Add(copied)
	g.stats.shortcutsInstalled.Add(paved)
	tracer().Debugf("compacted generation %d: %d state(s), %d highway(s) paved, %d/%d words",
		version, copied, paved, newHead, capacityWords)

	g.TryCleanup()
	return nil
}

// verifyCopy digests the immutable words of the source and destination
// records and treats any difference as memory corruption. The hit
// counter and sketch words are excluded since concurrent readers keep
// updating them on the retiring arena.
func (g *Engine) verifyCopy(old *Arena, offset uint64, dst []uint64, stateID int) {
	src := digestState(func(w uint64) uint64 { return old.load(offset + w) })
	got := digestState(func(w uint64) uint64 { return dst[w] })
	if src != got {
		panic(fmt.Sprintf("fst: compaction copy of state %d corrupted: src=%#x dst=%#x",
			stateID, src, got))
	}
}

func digestState(word func(uint64) uint64) uint64 {
	var d xxhash.Digest
	d.Reset()
	var buf [8]byte
	for w := uint64(0); w < stateWords; w++ {
		if w == wordHits || w == wordSketch {
			continue
		}
		binary.LittleEndian.PutUint64(buf[:], word(w))
		_, _ = d.Write(buf[:])
	}
	return d.Sum64()
}
