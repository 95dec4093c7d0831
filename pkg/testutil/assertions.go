package testutil

import (
	"math"
	"testing"

	"github.com/vanderheijden86/entropy/pkg/model"
)

// AssertNodeCount verifies the expected number of nodes.
func AssertNodeCount(t *testing.T, g model.Graph, expected int) {
	t.Helper()
	if len(g.Nodes) != expected {
		t.Errorf("expected %d nodes, got %d", expected, len(g.Nodes))
	}
}

// AssertNoDuplicateIDs verifies all node IDs are unique.
func AssertNoDuplicateIDs(t *testing.T, g model.Graph) {
	t.Helper()
	seen := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		if seen[n.ID] {
			t.Errorf("duplicate node ID: %s", n.ID)
		}
		seen[n.ID] = true
	}
}

// AssertAllValid verifies all nodes and edges pass validation.
func AssertAllValid(t *testing.T, g model.Graph) {
	t.Helper()
	for i, n := range g.Nodes {
		if err := n.Validate(); err != nil {
			t.Errorf("node %d (%s) invalid: %v", i, n.ID, err)
		}
	}
	for i, e := range g.Edges {
		if err := e.Validate(); err != nil {
			t.Errorf("edge %d (%s) invalid: %v", i, e.ID, err)
		}
	}
}

// AssertEdgeExists verifies an edge between the two IDs exists in either
// direction.
func AssertEdgeExists(t *testing.T, g model.Graph, a, b string) {
	t.Helper()
	for _, e := range g.Edges {
		if (e.Source == a && e.Target == b) || (e.Source == b && e.Target == a) {
			return
		}
	}
	t.Errorf("expected edge between %s and %s not found", a, b)
}

// AssertFinite fails for any NaN or infinite value.
func AssertFinite(t *testing.T, name string, vals ...float64) {
	t.Helper()
	for i, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("%s[%d] is not finite: %v", name, i, v)
		}
	}
}

// AssertNear fails when got is further than tol from want.
func AssertNear(t *testing.T, name string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s = %v, want %v ± %v", name, got, want, tol)
	}
}
