package layout

import (
	"fmt"
	"testing"

	"github.com/vanderheijden86/entropy/pkg/testutil"

	"gonum.org/v1/gonum/spatial/r2"
)

func benchmarkTick(b *testing.B, size int, theta float64) {
	gen := testutil.NewDefault()
	g := gen.ToGraph(gen.Random(size, 4/float64(size)))

	cfg := DefaultConfig()
	cfg.Theta = theta
	cfg.BarnesHutMin = 2

	store := NewStore(r2.Vec{}, 500, 1)
	store.Reconcile(g.Nodes, g.Edges)
	sim := NewSimulation(store, cfg)
	sim.SetAlphaTarget(0.5)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sim.Tick()
	}
}

func BenchmarkTick(b *testing.B) {
	for _, size := range []int{50, 200, 1000} {
		b.Run(fmt.Sprintf("exact_%d", size), func(b *testing.B) {
			benchmarkTick(b, size, 0)
		})
		b.Run(fmt.Sprintf("barneshut_%d", size), func(b *testing.B) {
			benchmarkTick(b, size, 0.9)
		})
	}
}

func BenchmarkReconcile(b *testing.B) {
	gen := testutil.NewDefault()
	g := gen.ToGraph(gen.Grid(30, 30))
	store := NewStore(r2.Vec{}, 500, 1)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		store.Reconcile(g.Nodes, g.Edges)
	}
}
