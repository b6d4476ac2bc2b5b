package fst

// Compile-time layout checks. The record geometry is load-bearing for
// offset arithmetic across arena generations; a drifted constant should
// fail the build, not corrupt lookups.

const expectedStateBytes = 2080 // 32-byte header + 256 * 8-byte jump table

var _ [StateBytes - expectedStateBytes]byte
var _ [expectedStateBytes - StateBytes]byte

var _ [stateWords - (headerWords + SigmaSize)]byte
var _ [(headerWords + SigmaSize) - stateWords]byte

var _ [wordJump - headerWords]byte
var _ [headerWords - wordJump]byte

// The sigma window must fit the 64-bit mask word.
var _ [8 - sigmaWindow]byte
