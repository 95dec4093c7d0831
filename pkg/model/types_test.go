package model

import (
	"math"
	"testing"
)

func TestNodeKindNormalize(t *testing.T) {
	tests := []struct {
		in   NodeKind
		want NodeKind
	}{
		{KindRepo, KindRepo},
		{KindAgent, KindAgent},
		{"", KindMisc},
		{"spaceship", KindMisc},
	}
	for _, tt := range tests {
		if got := tt.in.Normalize(); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEdgeWeightClamped(t *testing.T) {
	tests := []struct {
		strength float64
		want     float64
	}{
		{0.5, 0.5},
		{-1, 0},
		{3, 1},
		{math.NaN(), 0},
	}
	for _, tt := range tests {
		e := Edge{Strength: tt.strength}
		if got := e.Weight(); got != tt.want {
			t.Errorf("Weight(%v) = %v, want %v", tt.strength, got, tt.want)
		}
	}
}

func TestEdgeKindStyle(t *testing.T) {
	if !EdgeDependsOn.Dashed() || !EdgeDependsOn.Directed() {
		t.Error("depends_on should be dashed and directed")
	}
	if EdgeBlocks.Dashed() || !EdgeBlocks.Directed() {
		t.Error("blocks should be solid and directed")
	}
	if EdgeRelatesTo.Dashed() || EdgeRelatesTo.Directed() {
		t.Error("relates_to should be solid and undirected")
	}
}

func TestValidate(t *testing.T) {
	if err := (Node{}).Validate(); err == nil {
		t.Error("expected error for empty node id")
	}
	if err := (Node{ID: "a", Kind: "bogus"}).Validate(); err == nil {
		t.Error("expected error for invalid kind")
	}
	if err := (Node{ID: "a"}).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := (Edge{ID: "e1", Source: "a"}).Validate(); err == nil {
		t.Error("expected error for missing target")
	}
	if err := (Edge{ID: "e1", Source: "a", Target: "zzz"}).Validate(); err != nil {
		t.Errorf("dangling edge should validate, got %v", err)
	}
}

func TestFilterKinds(t *testing.T) {
	g := Graph{
		Nodes: []Node{{ID: "r", Kind: KindRepo}, {ID: "d", Kind: KindDoc}, {ID: "x"}},
		Edges: []Edge{{ID: "e1", Source: "r", Target: "d"}},
	}

	all := g.FilterKinds()
	if len(all.Nodes) != 3 {
		t.Fatalf("empty filter should keep all nodes, got %d", len(all.Nodes))
	}

	repos := g.FilterKinds(KindRepo, KindMisc)
	if len(repos.Nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(repos.Nodes))
	}
	if repos.NodeByID("d") != nil {
		t.Error("doc node should be filtered out")
	}
	if len(repos.Edges) != 1 {
		t.Error("edges are carried over untouched")
	}
}

func TestLabelFallsBackToID(t *testing.T) {
	if got := (Node{ID: "n1"}).Label(); got != "n1" {
		t.Errorf("Label() = %q", got)
	}
	if got := (Node{ID: "n1", Title: "Roadmap"}).Label(); got != "Roadmap" {
		t.Errorf("Label() = %q", got)
	}
}
