package fst

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uniformSketch(b byte) uint64 {
	var s uint64
	for i := 0; i < sketchSymbols; i++ {
		s = (s << 8) | uint64(b)
	}
	return s
}

func TestAnalyzeSigmaInstallsHighway(t *testing.T) {
	state := make([]uint64, stateWords)
	state[wordHits] = 8
	state[wordSketch] = uniformSketch('a')
	state[wordJump+'a'] = makeSlot(42, 1)

	require.True(t, analyzeSigma(state, defaultMinShortcutHits))
	assert.Equal(t, sigmaMaskFull, state[wordMask])
	assert.Equal(t, uint64('a')*sigmaSpread, state[wordKey])

	slot := state[wordJump+'a']
	assert.Equal(t, uint64(42), slotValue(slot))
	assert.Equal(t, sigmaWindow, slotSkip(slot))
}

func TestAnalyzeSigmaRejectsWeakSignal(t *testing.T) {
	// Too few observations.
	state := make([]uint64, stateWords)
	state[wordHits] = 2
	state[wordSketch] = uniformSketch('a')
	require.False(t, analyzeSigma(state, defaultMinShortcutHits))
	assert.Zero(t, state[wordMask])

	// Varied history.
	state = make([]uint64, stateWords)
	state[wordHits] = 100
	state[wordSketch] = uniformSketch('a') ^ 0xFF00
	require.False(t, analyzeSigma(state, defaultMinShortcutHits))
	assert.Zero(t, state[wordMask])

	// Empty history.
	state = make([]uint64, stateWords)
	state[wordHits] = 100
	require.False(t, analyzeSigma(state, defaultMinShortcutHits))
	assert.Zero(t, state[wordMask])
}

func TestMatchesSigmaWindow(t *testing.T) {
	arena := newArena(1, minArenaWords)
	arena.words[wordMask] = sigmaMaskFull
	arena.words[wordKey] = uint64('a') * sigmaSpread

	assert.True(t, matchesSigma(arena, 0, []byte("aaaa"), 0, 4))
	assert.True(t, matchesSigma(arena, 0, []byte("aaaax"), 0, 4))
	assert.False(t, matchesSigma(arena, 0, []byte("aaab"), 0, 4))
	assert.False(t, matchesSigma(arena, 0, []byte("aaa"), 0, 4)) // runs past end

	// Zero mask means no highway installed: always passes.
	arena.words[wordMask] = 0
	assert.True(t, matchesSigma(arena, 0, []byte("zzzz"), 0, 4))
}

func TestSlotCodecRoundTrip(t *testing.T) {
	slot := makeSlot(0xDEADBEEF, 3)
	assert.Equal(t, uint64(0xDEADBEEF), slotValue(slot))
	assert.Equal(t, 3, slotSkip(slot))

	entry := makeIndexEntry(7, 520)
	assert.Equal(t, uint64(7), entryGeneration(entry))
	assert.Equal(t, uint64(520), entryOffset(entry))
}

func TestWindowAt(t *testing.T) {
	input := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9}
	assert.Equal(t, uint64(0x0807060504030201), windowAt(input, 0, 8))
	assert.Equal(t, uint64(0x0908070605040302), windowAt(input, 1, 8))
	assert.Equal(t, uint64(0x030201), windowAt(input, 0, 3))
}
