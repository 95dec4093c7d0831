//go:build ignore

// generate_testdata.go writes the graph datasets used for manual layout
// benchmarking with `entropy simulate --timings`.
// Usage: go run scripts/generate_testdata.go
//
// Creates:
//
//	testdata/bench/small.json   (100 nodes)
//	testdata/bench/medium.json  (500 nodes)
//	testdata/bench/large.jsonl  (2000 nodes)
//	testdata/bench/grid.yaml    (30x30 grid)
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vanderheijden86/entropy/pkg/loader"
	"github.com/vanderheijden86/entropy/pkg/model"
	"github.com/vanderheijden86/entropy/pkg/testutil"
)

type datasetSpec struct {
	file  string
	build func(g *testutil.Generator) testutil.GraphFixture
}

var datasets = []datasetSpec{
	{"small.json", func(g *testutil.Generator) testutil.GraphFixture { return g.Random(100, density(100)) }},
	{"medium.json", func(g *testutil.Generator) testutil.GraphFixture { return g.Random(500, density(500)) }},
	{"large.jsonl", func(g *testutil.Generator) testutil.GraphFixture { return g.Random(2000, density(2000)) }},
	{"grid.yaml", func(g *testutil.Generator) testutil.GraphFixture { return g.Grid(30, 30) }},
}

func main() {
	outputDir := filepath.Join("testdata", "bench")

	for i, ds := range datasets {
		cfg := testutil.DefaultConfig()
		cfg.Seed = int64(i + 1)
		cfg.EdgeKind = model.EdgeDependsOn
		cfg.Strength = 0 // random in [0.5, 1]

		gen := testutil.New(cfg)
		g := gen.ToGraph(ds.build(gen))

		path := filepath.Join(outputDir, ds.file)
		if err := loader.Save(path, g); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", path, err)
			os.Exit(1)
		}
		fmt.Printf("  Written %s (%d nodes, %d edges)\n", path, len(g.Nodes), len(g.Edges))
	}

	fmt.Println("\nDone! Datasets created in", outputDir)
}

// density keeps the mean degree near three regardless of size.
func density(size int) float64 {
	return 3 / float64(size-1)
}
