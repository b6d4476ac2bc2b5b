package fst

// Transition resolves the outgoing edge of stateID for the input byte at
// key[pos]. It returns the decoded 32-bit payoff value (zero-extended)
// and true on a hit, or false on a miss. Out-of-range state, position
// past the end of the key, an empty jump slot, and a failed sigma
// highway match are all the same miss; callers needing diagnostics must
// re-derive them from their own key data.
//
// The read path never blocks. The reader's epoch slot stays pinned for
// the full duration of the call, so a concurrent compaction can retire
// the arena under us but never free it.
func (g *Engine) Transition(stateID int, key []byte, pos int) (uint64, bool) {
	g.stats.lookups.Add(1)
	if stateID < 0 || stateID >= g.memory.maxStates || pos < 0 || pos >= len(key) {
		g.stats.misses.Add(1)
		return 0, false
	}

	slot := g.epochs.registry.acquire()
	g.epochs.pin(slot)
	defer func() {
		g.epochs.unpin(slot)
		g.epochs.registry.release(slot)
	}()

	arena, base, ok := g.memory.resolve(stateID)
	if !ok {
		g.stats.misses.Add(1)
		return 0, false
	}

	symbol := key[pos]
	arena.bumpStats(base, symbol)

	entry := arena.load(base + wordJump + uint64(symbol))
	if entry == 0 {
		g.stats.misses.Add(1)
		return 0, false
	}

	if skip := slotSkip(entry); skip > 1 {
		if pos+skip > len(key) || !matchesSigma(arena, base, key, pos, skip) {
			g.stats.misses.Add(1)
			return 0, false
		}
	}
	return slotValue(entry), true
}

// HitCount reports the lookup counter recorded on a state since its
// history began (counts survive compaction).
func (g *Engine) HitCount(stateID int) (uint32, bool) {
	if stateID < 0 || stateID >= g.memory.maxStates {
		return 0, false
	}

	slot := g.epochs.registry.acquire()
	g.epochs.pin(slot)
	defer func() {
		g.epochs.unpin(slot)
		g.epochs.registry.release(slot)
	}()

	arena, base, ok := g.memory.resolve(stateID)
	if !ok {
		return 0, false
	}
	return arena.hitCount(base), true
}
