package analysis

import (
	"math"
	"reflect"
	"testing"

	"github.com/vanderheijden86/entropy/pkg/model"
)

func edge(src, dst string, kind model.EdgeKind) model.Edge {
	return model.Edge{Source: src, Target: dst, Kind: kind}
}

func nodes(ids ...string) []model.Node {
	out := make([]model.Node, len(ids))
	for i, id := range ids {
		out[i] = model.Node{ID: id, Kind: model.KindTask}
	}
	return out
}

func TestEmptyGraph(t *testing.T) {
	s := Analyze(model.Graph{})
	if s.Nodes != 0 || s.Edges != 0 || len(s.Components) != 0 {
		t.Errorf("unexpected stats for empty graph: %+v", s)
	}
	if len(s.Top(5)) != 0 {
		t.Error("Top on empty graph should be empty")
	}
}

func TestComponentsAndDensity(t *testing.T) {
	g := model.Graph{
		Nodes: nodes("a", "b", "c", "d", "e"),
		Edges: []model.Edge{
			edge("a", "b", model.EdgeRelatesTo),
			edge("b", "c", model.EdgePartOf),
			edge("d", "e", model.EdgeRelatesTo),
			edge("a", "a", model.EdgeRelatesTo),     // self-loop
			edge("a", "ghost", model.EdgeRelatesTo), // dangling
		},
	}
	s := Analyze(g)

	if s.Nodes != 5 || s.Edges != 3 {
		t.Errorf("nodes=%d edges=%d, want 5 and 3", s.Nodes, s.Edges)
	}
	want := [][]string{{"a", "b", "c"}, {"d", "e"}}
	if !reflect.DeepEqual(s.Components, want) {
		t.Errorf("components = %v, want %v", s.Components, want)
	}
	if got := s.Density; math.Abs(got-0.3) > 1e-9 {
		t.Errorf("density = %v, want 0.3", got)
	}
	if s.Degree["b"] != 2 || s.Degree["a"] != 1 {
		t.Errorf("degree = %v", s.Degree)
	}
	if !reflect.DeepEqual(s.Articulation, []string{"b"}) {
		t.Errorf("articulation = %v, want [b]", s.Articulation)
	}
}

func TestCyclesOnlyFollowDirectedKinds(t *testing.T) {
	g := model.Graph{
		Nodes: nodes("a", "b", "c", "x", "y"),
		Edges: []model.Edge{
			edge("a", "b", model.EdgeDependsOn),
			edge("b", "c", model.EdgeBlocks),
			edge("c", "a", model.EdgeDependsOn),
			// relates_to never forms a cycle
			edge("x", "y", model.EdgeRelatesTo),
			edge("y", "x", model.EdgeRelatesTo),
		},
	}
	s := Analyze(g)
	want := [][]string{{"a", "b", "c"}}
	if !reflect.DeepEqual(s.Cycles, want) {
		t.Errorf("cycles = %v, want %v", s.Cycles, want)
	}
}

func TestKCore(t *testing.T) {
	// Triangle a-b-c with a pendant d on c.
	g := model.Graph{
		Nodes: nodes("a", "b", "c", "d"),
		Edges: []model.Edge{
			edge("a", "b", model.EdgeRelatesTo),
			edge("b", "c", model.EdgeRelatesTo),
			edge("c", "a", model.EdgeRelatesTo),
			edge("c", "d", model.EdgeRelatesTo),
		},
	}
	s := Analyze(g)
	want := map[string]int{"a": 2, "b": 2, "c": 2, "d": 1}
	if !reflect.DeepEqual(s.Core, want) {
		t.Errorf("core = %v, want %v", s.Core, want)
	}
}

func TestPageRankFavorsDependedOn(t *testing.T) {
	g := model.Graph{
		Nodes: nodes("lib", "app1", "app2", "app3"),
		Edges: []model.Edge{
			edge("app1", "lib", model.EdgeDependsOn),
			edge("app2", "lib", model.EdgeDependsOn),
			edge("app3", "lib", model.EdgeDependsOn),
		},
	}
	s := Analyze(g)

	sum := 0.0
	for _, pr := range s.PageRank {
		sum += pr
	}
	if math.Abs(sum-1) > 1e-3 {
		t.Errorf("pagerank sums to %v, want 1", sum)
	}
	top := s.Top(1)
	if len(top) != 1 || top[0].ID != "lib" || top[0].Degree != 3 {
		t.Errorf("top = %+v, want lib with degree 3", top)
	}
	if all := s.Top(-1); len(all) != 4 {
		t.Errorf("Top(-1) returned %d rows, want 4", len(all))
	}
}

func TestDuplicateNodeIDsIgnored(t *testing.T) {
	g := model.Graph{Nodes: nodes("a", "a", "b")}
	if s := Analyze(g); s.Nodes != 2 {
		t.Errorf("nodes = %d, want 2", s.Nodes)
	}
}
