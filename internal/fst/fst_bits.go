package fst

import "encoding/binary"

//go:inline
func makeSlot(value uint32, skip uint16) uint64 {
	return uint64(value) | (uint64(skip) << slotSkipShift)
}

//go:inline
func slotValue(slot uint64) uint64 {
	return slot & slotValueMask
}

//go:inline
func slotSkip(slot uint64) int {
	return int((slot >> slotSkipShift) & slotSkipMask)
}

// Index entries pack the owning generation into the high 32 bits and the
// state's word offset into the low 32 bits. Zero is the invalid sentinel;
// generations start at 1 so a live entry is never zero.

//go:inline
func makeIndexEntry(generation uint64, offset uint64) uint64 {
	return (generation << 32) | offset
}

//go:inline
func entryGeneration(entry uint64) uint64 {
	return entry >> 32
}

//go:inline
func entryOffset(entry uint64) uint64 {
	return entry & 0xFFFFFFFF
}

// windowAt assembles up to 8 input bytes starting at pos into a
// little-endian word. Uses a single wide read when a full word is
// available, a byte loop otherwise.
//
//go:inline
func windowAt(input []byte, pos int, width int) uint64 {
	if width > 8 {
		width = 8
	}
	if width == 8 && pos+8 <= len(input) {
		return binary.LittleEndian.Uint64(input[pos:])
	}
	var w uint64
	for i := 0; i < width; i++ {
		w |= uint64(input[pos+i]) << (i * 8)
	}
	return w
}
