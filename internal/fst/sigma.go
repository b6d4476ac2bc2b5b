package fst

// matchesSigma checks the masked highway window of a skip-length edge.
// The window starts at the leading byte of the run, so a skip of k
// consumes key[pos : pos+k] in one step. An installed mask supersedes
// the plain single-byte edge: a window mismatch is a miss even though
// the jump slot itself matched.
func matchesSigma(arena *Arena, base uint64, key []byte, pos int, skip int) bool {
	mask := arena.words[base+wordMask]
	sigKey := arena.words[base+wordKey]
	if mask == 0 {
		return true
	}

	width := skip
	if width > 8 {
		width = 8
	}
	if pos+width > len(key) {
		return false
	}
	actual := windowAt(key, pos, width)
	return (actual & mask) == (sigKey & mask)
}

// analyzeSigma inspects a freshly copied state record and installs a
// sigma highway when its recent history is uniform. The heuristic is
// conservative: it requires a minimum number of observations and all
// eight sketch symbols identical and non-zero, so a sparse or varied
// path is simply left on the ordinary jump-table route. A wrongly
// predicted highway is still safe because the mask is re-checked against
// live input bytes on every use.
//
// The caller passes the state's words inside the not-yet-published
// arena, so plain stores are fine here.
func analyzeSigma(state []uint64, minHits uint32) bool {
	hits := uint32(state[wordHits] & slotValueMask)
	if hits < minHits {
		return false
	}
	sketch := state[wordSketch]
	if sketch == 0 {
		return false
	}

	first := byte(sketch)
	for i := 1; i < sketchSymbols; i++ {
		if byte(sketch>>(i*8)) != first {
			return false
		}
	}
	if first == 0 {
		return false
	}

	state[wordMask] = sigmaMaskFull
	state[wordKey] = uint64(first) * sigmaSpread

	// Pave the highway: the uniform byte's edge now consumes the whole
	// window, and the masked re-check above guards every use of it.
	slotIdx := wordJump + uint64(first)
	if slot := state[slotIdx]; slot != 0 {
		state[slotIdx] = makeSlot(uint32(slotValue(slot)), sigmaWindow)
	}
	return true
}
