package fst

import (
	"sync/atomic"
	"testing"
)

func seedBenchEngine(b *testing.B, states int) *Engine {
	b.Helper()
	g, err := New(Config{
		MaxStates:          states,
		ArenaCapacityBytes: 2 * states * StateBytes,
	})
	if err != nil {
		b.Fatalf("engine init failed: %v", err)
	}
	for i := 0; i < states; i++ {
		if err := g.AddState(i); err != nil {
			b.Fatalf("seed state %d failed: %v", i, err)
		}
		for sym := 0; sym < 8; sym++ {
			if err := g.SetEdge(i, byte('a'+sym), uint32(i<<8|sym), 1); err != nil {
				b.Fatalf("seed edge failed: %v", err)
			}
		}
	}
	return g
}

func BenchmarkTransition(b *testing.B) {
	g := seedBenchEngine(b, 64)
	defer g.Close()

	key := []byte("abcdefgh")
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, ok := g.Transition(i&63, key, i&7); !ok {
			b.Fatalf("unexpected miss at %d", i)
		}
	}
}

func BenchmarkTransitionParallelWithCompaction(b *testing.B) {
	g := seedBenchEngine(b, 64)
	defer g.Close()

	stop := make(chan struct{})
	done := make(chan struct{})
	var compactions atomic.Uint64
	go func() {
		defer close(done)
		for {
			select {
			case <-stop:
				return
			default:
				if err := g.Compact(); err != nil {
					return
				}
				compactions.Add(1)
			}
		}
	}()

	key := []byte("abcdefgh")
	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		idx := 0
		for pb.Next() {
			_, _ = g.Transition(idx&63, key, idx&7)
			idx++
		}
	})
	b.StopTimer()
	close(stop)
	<-done

	stats := g.Stats()
	b.ReportMetric(float64(compactions.Load()), "compactions")
	b.ReportMetric(float64(stats.ArenasFreed), "arenas_freed")
	b.ReportMetric(float64(stats.ShortcutsInstalled), "highways_paved")
}

func BenchmarkCompact(b *testing.B) {
	g := seedBenchEngine(b, 256)
	defer g.Close()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := g.Compact(); err != nil {
			b.Fatalf("compact failed: %v", err)
		}
	}
	b.StopTimer()
	b.ReportMetric(float64(g.Stats().StatesCopied)/float64(b.N), "states_copied_per_op")
}
