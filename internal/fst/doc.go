/*
Package fst implements an in-memory finite-state transducer that serves
concurrent key lookups without blocking while a background compaction pass
reorganizes its storage.

All state records live in a single contiguous arena (a word slice owned
exclusively by the engine). Readers resolve transitions against whatever
arena generation is currently published; a single-writer compactor copies
the live states into a fresh arena, analyzes each state's recorded usage
pattern, and republishes with one atomic pointer swap. Superseded arenas
are retired, not freed: an epoch reclaimer frees them once no pinned
reader can still observe the generation they belonged to.

States that see a sustained run of one identical input byte get a
"sigma highway" installed at compaction time: a masked multi-byte match
that consumes the whole run in a single transition instead of one state
hop per byte.
*/
package fst

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'sigmafst'
func tracer() tracing.Trace {
	return tracing.Select("sigmafst")
}
