// Package testutil provides test fixture generators for various graph topologies.
// All generators produce deterministic output for reproducible tests.
package testutil

import (
	"fmt"
	"math/rand"

	"github.com/vanderheijden86/entropy/pkg/model"
)

// GraphFixture is an abstract graph: node names plus [from_idx, to_idx]
// edges. ToGraph turns it into model data the engine consumes.
type GraphFixture struct {
	Description string
	Nodes       []string
	Edges       [][2]int
	Properties  Properties
}

// Properties holds optional metadata about the fixture.
type Properties struct {
	IsConnected bool
	HasSelfLoop bool
	Components  int
}

// GeneratorConfig controls how fixtures are turned into model graphs.
type GeneratorConfig struct {
	Seed     int64            // Random seed for determinism
	Kinds    []model.NodeKind // Kind rotation (nil = all kinds)
	EdgeKind model.EdgeKind   // Kind for every generated edge
	Strength float64          // Edge strength (0 = random in [0.5, 1])
}

// DefaultConfig returns a config suitable for most tests.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:     42,
		EdgeKind: model.EdgeRelatesTo,
		Strength: 1,
	}
}

// Generator creates test fixtures with various topologies.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
}

// New creates a Generator with the given config.
func New(cfg GeneratorConfig) *Generator {
	if len(cfg.Kinds) == 0 {
		cfg.Kinds = model.NodeKinds
	}
	if cfg.EdgeKind == "" {
		cfg.EdgeKind = model.EdgeRelatesTo
	}
	return &Generator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}
}

// NewDefault creates a Generator with default config.
func NewDefault() *Generator {
	return New(DefaultConfig())
}

// Chain creates a path n0 - n1 - ... - n{size-1}.
func (g *Generator) Chain(size int) GraphFixture {
	nodes := names("n", size)
	var edges [][2]int
	for i := 1; i < size; i++ {
		edges = append(edges, [2]int{i - 1, i})
	}
	return GraphFixture{
		Description: fmt.Sprintf("Chain of %d nodes", size),
		Nodes:       nodes,
		Edges:       edges,
		Properties:  Properties{IsConnected: true, Components: min(size, 1)},
	}
}

// Star creates a hub linked to every spoke.
func (g *Generator) Star(spokes int) GraphFixture {
	nodes := append([]string{"hub"}, names("spoke", spokes)...)
	edges := make([][2]int, spokes)
	for i := range edges {
		edges[i] = [2]int{0, i + 1}
	}
	return GraphFixture{
		Description: fmt.Sprintf("Star with hub and %d spokes", spokes),
		Nodes:       nodes,
		Edges:       edges,
		Properties:  Properties{IsConnected: true, Components: 1},
	}
}

// Cycle creates a ring n0 - n1 - ... - n{size-1} - n0.
func (g *Generator) Cycle(size int) GraphFixture {
	nodes := names("n", size)
	edges := make([][2]int, size)
	for i := range edges {
		edges[i] = [2]int{i, (i + 1) % size}
	}
	return GraphFixture{
		Description: fmt.Sprintf("Cycle of %d nodes", size),
		Nodes:       nodes,
		Edges:       edges,
		Properties:  Properties{IsConnected: true, HasSelfLoop: size == 1, Components: 1},
	}
}

// Grid creates a rows x cols lattice.
func (g *Generator) Grid(rows, cols int) GraphFixture {
	var nodes []string
	var edges [][2]int
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			i := r*cols + c
			nodes = append(nodes, fmt.Sprintf("g%d_%d", r, c))
			if c > 0 {
				edges = append(edges, [2]int{i - 1, i})
			}
			if r > 0 {
				edges = append(edges, [2]int{i - cols, i})
			}
		}
	}
	return GraphFixture{
		Description: fmt.Sprintf("Grid %dx%d", rows, cols),
		Nodes:       nodes,
		Edges:       edges,
		Properties:  Properties{IsConnected: true, Components: 1},
	}
}

// Tree creates a tree with given depth and branching factor.
func (g *Generator) Tree(depth, breadth int) GraphFixture {
	if depth < 1 {
		depth = 1
	}
	if breadth < 1 {
		breadth = 1
	}
	nodes := []string{"t0"}
	var edges [][2]int
	level := []int{0}
	for d := 1; d < depth; d++ {
		var next []int
		for _, parent := range level {
			for b := 0; b < breadth; b++ {
				i := len(nodes)
				nodes = append(nodes, fmt.Sprintf("t%d", i))
				edges = append(edges, [2]int{parent, i})
				next = append(next, i)
			}
		}
		level = next
	}
	return GraphFixture{
		Description: fmt.Sprintf("Tree depth %d breadth %d", depth, breadth),
		Nodes:       nodes,
		Edges:       edges,
		Properties:  Properties{IsConnected: true, Components: 1},
	}
}

// Disconnected creates count isolated nodes.
func (g *Generator) Disconnected(count int) GraphFixture {
	return GraphFixture{
		Description: fmt.Sprintf("%d isolated nodes", count),
		Nodes:       names("iso", count),
		Properties:  Properties{IsConnected: count <= 1, Components: count},
	}
}

// SelfLoop creates a single node with a self-referential edge.
func (g *Generator) SelfLoop() GraphFixture {
	return GraphFixture{
		Description: "Single node with self-loop",
		Nodes:       []string{"n0"},
		Edges:       [][2]int{{0, 0}},
		Properties:  Properties{IsConnected: true, HasSelfLoop: true, Components: 1},
	}
}

// Random creates a graph with size nodes where each pair is linked with
// probability density.
func (g *Generator) Random(size int, density float64) GraphFixture {
	nodes := names("r", size)
	var edges [][2]int
	for i := 0; i < size; i++ {
		for j := i + 1; j < size; j++ {
			if g.rng.Float64() < density {
				edges = append(edges, [2]int{i, j})
			}
		}
	}
	return GraphFixture{
		Description: fmt.Sprintf("Random graph of %d nodes, density %.2f", size, density),
		Nodes:       nodes,
		Edges:       edges,
	}
}

// ToGraph converts a fixture to model data. Kinds rotate through the
// configured list; edges get IDs e0, e1, ...
func (g *Generator) ToGraph(f GraphFixture) model.Graph {
	out := model.Graph{
		Nodes: make([]model.Node, len(f.Nodes)),
		Edges: make([]model.Edge, len(f.Edges)),
	}
	for i, name := range f.Nodes {
		out.Nodes[i] = model.Node{
			ID:    name,
			Kind:  g.cfg.Kinds[i%len(g.cfg.Kinds)],
			Title: name,
		}
	}
	for i, e := range f.Edges {
		strength := g.cfg.Strength
		if strength == 0 {
			strength = 0.5 + g.rng.Float64()/2
		}
		out.Edges[i] = model.Edge{
			ID:       fmt.Sprintf("e%d", i),
			Source:   f.Nodes[e[0]],
			Target:   f.Nodes[e[1]],
			Kind:     g.cfg.EdgeKind,
			Strength: strength,
		}
	}
	return out
}

func names(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s%d", prefix, i)
	}
	return out
}
