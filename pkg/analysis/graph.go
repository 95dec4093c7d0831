// Package analysis computes structural statistics of a graph dataset:
// connected components, dependency cycles, PageRank, k-core numbers and
// articulation points. It backs `entropy stats`.
package analysis

import (
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/vanderheijden86/entropy/pkg/debug"
	"github.com/vanderheijden86/entropy/pkg/model"
)

// PageRank parameters.
const (
	damping   = 0.85
	tolerance = 1e-6
)

// Stats is the result of Analyze.
type Stats struct {
	Nodes   int     `json:"nodes"`
	Edges   int     `json:"edges"`
	Density float64 `json:"density"`

	// Components lists weakly connected components, largest first.
	Components [][]string `json:"components"`
	// Cycles lists strongly connected groups over depends_on and blocks
	// edges. A non-empty list means the dependencies cannot be ordered.
	Cycles [][]string `json:"cycles,omitempty"`
	// Articulation lists nodes whose removal disconnects their component.
	Articulation []string `json:"articulation,omitempty"`

	Degree   map[string]int     `json:"degree"`
	Core     map[string]int     `json:"core"`
	PageRank map[string]float64 `json:"pagerank"`
}

// Ranked is one row of Stats.Top.
type Ranked struct {
	ID       string  `json:"id"`
	PageRank float64 `json:"pagerank"`
	Degree   int     `json:"degree"`
	Core     int     `json:"core"`
}

// Top returns the n highest PageRank nodes, ties broken by ID.
func (s Stats) Top(n int) []Ranked {
	out := make([]Ranked, 0, len(s.PageRank))
	for id, pr := range s.PageRank {
		out = append(out, Ranked{ID: id, PageRank: pr, Degree: s.Degree[id], Core: s.Core[id]})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PageRank != out[j].PageRank {
			return out[i].PageRank > out[j].PageRank
		}
		return out[i].ID < out[j].ID
	})
	if n >= 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

// Analyzer holds gonum views of one graph.
type Analyzer struct {
	directed   *simple.DirectedGraph
	undirected *simple.UndirectedGraph
	idToNode   map[string]int64
	nodeToID   map[int64]string
	edges      int
}

// NewAnalyzer indexes g. Self-loops and edges to unknown nodes are ignored.
// Every edge joins the undirected view; only depends_on and blocks edges
// join the directed one.
func NewAnalyzer(g model.Graph) *Analyzer {
	a := &Analyzer{
		directed:   simple.NewDirectedGraph(),
		undirected: simple.NewUndirectedGraph(),
		idToNode:   make(map[string]int64, len(g.Nodes)),
		nodeToID:   make(map[int64]string, len(g.Nodes)),
	}

	for i, n := range g.Nodes {
		if _, dup := a.idToNode[n.ID]; dup {
			continue
		}
		id := int64(i)
		a.directed.AddNode(simple.Node(id))
		a.undirected.AddNode(simple.Node(id))
		a.idToNode[n.ID] = id
		a.nodeToID[id] = n.ID
	}

	for _, e := range g.Edges {
		u, ok1 := a.idToNode[e.Source]
		v, ok2 := a.idToNode[e.Target]
		if !ok1 || !ok2 || u == v {
			continue
		}
		a.edges++
		a.undirected.SetEdge(simple.Edge{F: simple.Node(u), T: simple.Node(v)})
		if e.Kind.Directed() {
			a.directed.SetEdge(simple.Edge{F: simple.Node(u), T: simple.Node(v)})
		}
	}
	return a
}

// Analyze computes every statistic.
func (a *Analyzer) Analyze() Stats {
	defer debug.LogEnterExit("analysis.Analyze")()

	n := len(a.idToNode)
	s := Stats{
		Nodes:    n,
		Edges:    a.edges,
		Degree:   make(map[string]int, n),
		Core:     make(map[string]int, n),
		PageRank: make(map[string]float64, n),
	}
	if n == 0 {
		return s
	}
	links := 0
	for id, key := range a.idToNode {
		d := a.undirected.From(key).Len()
		s.Degree[id] = d
		links += d
	}
	if n > 1 {
		s.Density = float64(links/2) / float64(n*(n-1)/2)
	}

	s.Components = a.names(topo.ConnectedComponents(a.undirected))
	sort.SliceStable(s.Components, func(i, j int) bool {
		if len(s.Components[i]) != len(s.Components[j]) {
			return len(s.Components[i]) > len(s.Components[j])
		}
		return s.Components[i][0] < s.Components[j][0]
	})

	for _, scc := range a.names(topo.TarjanSCC(a.directed)) {
		if len(scc) > 1 {
			s.Cycles = append(s.Cycles, scc)
		}
	}
	sort.Slice(s.Cycles, func(i, j int) bool { return s.Cycles[i][0] < s.Cycles[j][0] })

	for key, pr := range network.PageRank(a.directed, damping, tolerance) {
		s.PageRank[a.nodeToID[key]] = pr
	}
	for key, k := range computeKCore(a.undirected) {
		s.Core[a.nodeToID[key]] = k
	}
	for key := range findArticulationPoints(a.undirected) {
		s.Articulation = append(s.Articulation, a.nodeToID[key])
	}
	sort.Strings(s.Articulation)

	return s
}

// Analyze is shorthand for NewAnalyzer(g).Analyze().
func Analyze(g model.Graph) Stats {
	return NewAnalyzer(g).Analyze()
}

// names maps node groups to sorted ID lists.
func (a *Analyzer) names(groups [][]graph.Node) [][]string {
	out := make([][]string, 0, len(groups))
	for _, group := range groups {
		ids := make([]string, len(group))
		for i, n := range group {
			ids[i] = a.nodeToID[n.ID()]
		}
		sort.Strings(ids)
		out = append(out, ids)
	}
	return out
}

// computeKCore returns core numbers using iterative k peeling.
func computeKCore(g *simple.UndirectedGraph) map[int64]int {
	deg := make(map[int64]int)
	adj := make(map[int64][]int64)
	nodes := g.Nodes()
	for nodes.Next() {
		id := nodes.Node().ID()
		it := g.From(id)
		for it.Next() {
			adj[id] = append(adj[id], it.Node().ID())
		}
		deg[id] = len(adj[id])
	}

	core := make(map[int64]int, len(deg))
	removed := make(map[int64]bool, len(deg))
	maxDeg := 0
	for _, d := range deg {
		maxDeg = max(maxDeg, d)
	}

	for k := 1; k <= maxDeg; k++ {
		var queue []int64
		for id, d := range deg {
			if !removed[id] && d < k {
				queue = append(queue, id)
			}
		}
		for len(queue) > 0 {
			v := queue[len(queue)-1]
			queue = queue[:len(queue)-1]
			if removed[v] {
				continue
			}
			removed[v] = true
			core[v] = k - 1
			for _, nbr := range adj[v] {
				if removed[nbr] {
					continue
				}
				deg[nbr]--
				if deg[nbr] < k {
					queue = append(queue, nbr)
				}
			}
		}
	}

	for id := range deg {
		if !removed[id] {
			core[id] = maxDeg
		}
	}
	return core
}

// findArticulationPoints runs Tarjan's cut vertex search.
func findArticulationPoints(g *simple.UndirectedGraph) map[int64]bool {
	const noParent int64 = -1

	var timeIdx int
	disc := make(map[int64]int)
	low := make(map[int64]int)
	parent := make(map[int64]int64)
	ap := make(map[int64]bool)

	var dfs func(v int64)
	dfs = func(v int64) {
		timeIdx++
		disc[v], low[v] = timeIdx, timeIdx
		children := 0

		it := g.From(v)
		for it.Next() {
			u := it.Node().ID()
			if disc[u] == 0 {
				parent[u] = v
				children++
				dfs(u)
				low[v] = min(low[v], low[u])
				if parent[v] == noParent && children > 1 {
					ap[v] = true
				}
				if parent[v] != noParent && low[u] >= disc[v] {
					ap[v] = true
				}
			} else if u != parent[v] {
				low[v] = min(low[v], disc[u])
			}
		}
	}

	nodes := g.Nodes()
	for nodes.Next() {
		id := nodes.Node().ID()
		if disc[id] == 0 {
			parent[id] = noParent
			dfs(id)
		}
	}
	return ap
}
