package fst

import (
	"errors"
	"sync"
	"sync/atomic"
)

var (
	ErrBadCapacity        = errors.New("arena capacity must hold at least one state record")
	ErrBadStateCount      = errors.New("max states must be positive")
	ErrStateRange         = errors.New("state id out of range")
	ErrStateExists        = errors.New("state already populated")
	ErrUnknownState       = errors.New("state not populated")
	ErrGenerationOverflow = errors.New("arena generation exceeds uint32")
)

type Config struct {
	// MaxStates fixes the state index length for the engine's lifetime.
	MaxStates int

	// ArenaCapacityBytes sizes every arena generation. Rounded down to
	// whole 64-bit words.
	ArenaCapacityBytes int

	// MinShortcutHits is the minimum observed hit count before a state
	// is considered for a sigma highway. Zero selects the default of 4.
	MinShortcutHits uint32

	// GrowthFactor > 1 lets a compaction allocate a proportionally
	// larger arena when the live set exceeds 3/4 of the current
	// capacity. Values <= 1 keep the capacity fixed.
	GrowthFactor float64

	// VerifyCompaction re-digests every copied state record and treats
	// a mismatch as memory corruption.
	VerifyCompaction bool
}

type Engine struct {
	writerMu sync.Mutex

	minShortcutHits  uint32
	verifyCompaction bool

	memory MemoryManager
	epochs EpochControl
	stats  engineStats
}

type engineStats struct {
	lookups            atomic.Uint64
	misses             atomic.Uint64
	compactions        atomic.Uint64
	statesCopied       atomic.Uint64
	shortcutsInstalled atomic.Uint64
	arenasRetired      atomic.Uint64
	arenasFreed        atomic.Uint64
}

// Stats is a point-in-time snapshot of the engine's monotonic counters.
type Stats struct {
	Lookups            uint64
	Misses             uint64
	Compactions        uint64
	StatesCopied       uint64
	ShortcutsInstalled uint64
	ArenasRetired      uint64
	ArenasFreed        uint64
}

func New(cfg Config) (*Engine, error) {
	if cfg.MaxStates <= 0 {
		return nil, ErrBadStateCount
	}
	capacityWords := cfg.ArenaCapacityBytes / 8
	if capacityWords < stateWords {
		return nil, ErrBadCapacity
	}
	minHits := cfg.MinShortcutHits
	if minHits == 0 {
		minHits = defaultMinShortcutHits
	}

	g := &Engine{
		minShortcutHits:  minHits,
		verifyCompaction: cfg.VerifyCompaction,
	}
	g.memory.init(cfg.MaxStates, capacityWords, cfg.GrowthFactor)
	g.epochs.init()
	return g, nil
}

func (g *Engine) Stats() Stats {
	return Stats{
		Lookups:            g.stats.lookups.Load(),
		Misses:             g.stats.misses.Load(),
		Compactions:        g.stats.compactions.Load(),
		StatesCopied:       g.stats.statesCopied.Load(),
		ShortcutsInstalled: g.stats.shortcutsInstalled.Load(),
		ArenasRetired:      g.stats.arenasRetired.Load(),
		ArenasFreed:        g.stats.arenasFreed.Load(),
	}
}

// Generation returns the currently published arena generation.
func (g *Engine) Generation() uint64 {
	return g.epochs.globalVersion.Load()
}

// PendingReclaim reports how many retired arenas are still awaiting
// reclamation.
func (g *Engine) PendingReclaim() int {
	g.epochs.retired.mu.Lock()
	defer g.epochs.retired.mu.Unlock()
	return len(g.epochs.retired.entries)
}

// Close frees the current arena and every retired arena regardless of
// reader pins. Callers must have quiesced all readers first; Close is
// not synchronized against in-flight lookups.
func (g *Engine) Close() {
	g.writerMu.Lock()
	defer g.writerMu.Unlock()

	if arena := g.memory.current.Swap(nil); arena != nil {
		arena.Free()
	}
	for _, entry := range g.epochs.retired.drain() {
		entry.arena.Free()
		g.stats.arenasFreed.Add(1)
	}
	for i := range g.memory.stateIndex {
		g.memory.stateIndex[i].Store(0)
	}
	g.memory.allocHead = 0
}
