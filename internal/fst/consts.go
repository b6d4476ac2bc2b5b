package fst

// State record layout, in 64-bit words.
const (
	SigmaSize = 256

	wordHits   = 0 // hit counter in the low 32 bits
	wordMask   = 1
	wordKey    = 2
	wordSketch = 3
	wordJump   = 4

	headerWords = 4
	stateWords  = headerWords + SigmaSize
	StateBytes  = stateWords * 8
)

// Jump slot packing: bits 0-31 value, bits 32-47 skip length.
const (
	slotValueMask uint64 = 0xFFFFFFFF
	slotSkipShift uint64 = 32
	slotSkipMask  uint64 = 0xFFFF
)

// Sigma highway window.
const (
	sketchSymbols = 8
	sigmaWindow   = 4
	sigmaMaskFull = uint64(0xFFFFFFFF)
	sigmaSpread   = uint64(0x01010101)
)

// Internal sizing and bounds.
const (
	minArenaWords = stateWords

	defaultMinShortcutHits = 4
	growthUtilNum          = 3
	growthUtilDen          = 4

	maxStateOffset = uint64(^uint32(0))
	maxGeneration  = uint64(^uint32(0))
)
