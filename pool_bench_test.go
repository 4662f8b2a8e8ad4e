//go:build bench

package cvbuilder

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"testing"
)

// BenchmarkResolvePoolSize benchmarks pool size calculation.
func BenchmarkResolvePoolSize(b *testing.B) {
	workers := []int{0, 1, 2, 4, 8}

	for _, w := range workers {
		b.Run(workerName(w), func(b *testing.B) {
			b.ReportAllocs()

			for b.Loop() {
				_ = ResolvePoolSize(w)
			}
		})
	}
}

func workerName(w int) string {
	if w == 0 {
		return "auto"
	}
	return fmt.Sprintf("%d", w)
}

// newBenchPool returns a warmed pool of builders backed by a fake engine.
func newBenchPool(b *testing.B, size int) *BuilderPool {
	b.Helper()

	pool := NewBuilderPool(size, WithSettleDelay(0), WithRasterizers(workingEngine("fake")))
	builders := make([]*Builder, size)
	for i := range builders {
		bl, err := pool.Acquire()
		if err != nil {
			b.Fatalf("Acquire() error = %v", err)
		}
		builders[i] = bl
	}
	for _, bl := range builders {
		pool.Release(bl)
	}
	b.Cleanup(func() { _ = pool.Close() })
	return pool
}

// BenchmarkBuilderPoolAcquireRelease benchmarks the acquire/release cycle
// on a warm pool.
func BenchmarkBuilderPoolAcquireRelease(b *testing.B) {
	for _, size := range []int{1, 2, 4, 8} {
		b.Run(fmt.Sprintf("size_%d", size), func(b *testing.B) {
			pool := newBenchPool(b, size)

			b.ReportAllocs()
			for b.Loop() {
				bl, err := pool.Acquire()
				if err != nil {
					b.Fatal(err)
				}
				pool.Release(bl)
			}
		})
	}
}

// BenchmarkBuilderPoolContention benchmarks a pool of 4 builders shared by
// more goroutines than it holds.
func BenchmarkBuilderPoolContention(b *testing.B) {
	for _, g := range []int{4, 8, 16, 32} {
		b.Run(fmt.Sprintf("goroutines_%d", g), func(b *testing.B) {
			pool := newBenchPool(b, 4)
			perGoroutine := max(b.N/g, 1)

			b.ReportAllocs()
			b.ResetTimer()

			var wg sync.WaitGroup
			for range g {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for range perGoroutine {
						bl, err := pool.Acquire()
						if err != nil {
							return
						}
						runtime.Gosched()
						pool.Release(bl)
					}
				}()
			}
			wg.Wait()
		})
	}
}

// BenchmarkBuilderPoolExport benchmarks parallel HTML exports through the
// pool, which covers rendering and the export guard.
func BenchmarkBuilderPoolExport(b *testing.B) {
	pool := newBenchPool(b, runtime.GOMAXPROCS(0))
	doc := sampleDocument()

	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			bl, err := pool.Acquire()
			if err != nil {
				b.Error(err)
				return
			}
			if _, err := bl.Export(context.Background(), doc, ExportHTML); err != nil {
				b.Error(err)
			}
			pool.Release(bl)
		}
	})
}
