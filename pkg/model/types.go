// Package model defines the knowledge-graph data the layout engine consumes.
//
// Nodes and edges are owned by whatever store feeds the engine; the engine only
// reads IDs, kinds and edge strengths. Everything else (titles, metadata) is
// display data carried through for renderers.
package model

import (
	"fmt"
	"strings"
)

// NodeKind categorizes a node. It selects visual defaults only; the physics
// treats every kind the same.
type NodeKind string

const (
	KindRepo    NodeKind = "repo"
	KindDoc     NodeKind = "doc"
	KindTask    NodeKind = "task"
	KindAgent   NodeKind = "ai_agent"
	KindMisc    NodeKind = "misc"
	defaultKind          = KindMisc
)

// NodeKinds lists every known kind in display order.
var NodeKinds = []NodeKind{KindRepo, KindDoc, KindTask, KindAgent, KindMisc}

// IsValid reports whether k is one of the known kinds.
func (k NodeKind) IsValid() bool {
	switch k {
	case KindRepo, KindDoc, KindTask, KindAgent, KindMisc:
		return true
	}
	return false
}

// Normalize maps unknown or empty kinds to misc.
func (k NodeKind) Normalize() NodeKind {
	if k.IsValid() {
		return k
	}
	return defaultKind
}

// EdgeKind categorizes a relationship between two nodes.
type EdgeKind string

const (
	EdgeDependsOn EdgeKind = "depends_on"
	EdgePartOf    EdgeKind = "part_of"
	EdgeRelatesTo EdgeKind = "relates_to"
	EdgeBlocks    EdgeKind = "blocks"
)

// IsValid reports whether k is one of the known edge kinds.
func (k EdgeKind) IsValid() bool {
	switch k {
	case EdgeDependsOn, EdgePartOf, EdgeRelatesTo, EdgeBlocks:
		return true
	}
	return false
}

// Directed reports whether edges of this kind are drawn with an arrow head.
func (k EdgeKind) Directed() bool {
	return k == EdgeDependsOn || k == EdgeBlocks
}

// Dashed reports whether edges of this kind are drawn dashed.
func (k EdgeKind) Dashed() bool {
	return k == EdgeDependsOn
}

// Metadata is free-form display data attached to a node.
type Metadata struct {
	Language   string `json:"language,omitempty" yaml:"language,omitempty"`
	Stars      int    `json:"stars,omitempty" yaml:"stars,omitempty"`
	URL        string `json:"url,omitempty" yaml:"url,omitempty"`
	Status     string `json:"status,omitempty" yaml:"status,omitempty"`
	Priority   string `json:"priority,omitempty" yaml:"priority,omitempty"`
	Assignee   string `json:"assignee,omitempty" yaml:"assignee,omitempty"`
	App        string `json:"app,omitempty" yaml:"app,omitempty"`
	Visibility string `json:"visibility,omitempty" yaml:"visibility,omitempty"`
	Progress   int    `json:"progress,omitempty" yaml:"progress,omitempty"`
}

// Node is a single item in the knowledge graph.
type Node struct {
	ID          string   `json:"id" yaml:"id"`
	Kind        NodeKind `json:"type" yaml:"type"`
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Tags        []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Metadata    Metadata `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Label returns the title, falling back to the ID.
func (n Node) Label() string {
	if strings.TrimSpace(n.Title) != "" {
		return n.Title
	}
	return n.ID
}

// Validate checks the node's required fields.
func (n Node) Validate() error {
	if strings.TrimSpace(n.ID) == "" {
		return fmt.Errorf("node id cannot be empty")
	}
	if n.Kind != "" && !n.Kind.IsValid() {
		return fmt.Errorf("node %s: invalid kind %q", n.ID, n.Kind)
	}
	return nil
}

// Edge links two nodes by ID.
type Edge struct {
	ID       string   `json:"id" yaml:"id"`
	Source   string   `json:"source" yaml:"source"`
	Target   string   `json:"target" yaml:"target"`
	Kind     EdgeKind `json:"type" yaml:"type"`
	Strength float64  `json:"strength" yaml:"strength"`
}

// Weight returns the edge strength clamped to [0, 1].
func (e Edge) Weight() float64 {
	switch {
	case e.Strength != e.Strength: // NaN
		return 0
	case e.Strength < 0:
		return 0
	case e.Strength > 1:
		return 1
	}
	return e.Strength
}

// Validate checks the edge's required fields. Dangling endpoints are not an
// error; the engine simply ignores such edges.
func (e Edge) Validate() error {
	if strings.TrimSpace(e.Source) == "" || strings.TrimSpace(e.Target) == "" {
		return fmt.Errorf("edge %s: source and target are required", e.ID)
	}
	if e.Kind != "" && !e.Kind.IsValid() {
		return fmt.Errorf("edge %s: invalid kind %q", e.ID, e.Kind)
	}
	return nil
}

// Graph is an ordered collection of nodes and edges.
type Graph struct {
	Nodes []Node `json:"nodes" yaml:"nodes"`
	Edges []Edge `json:"edges" yaml:"edges"`
}

// NodeByID returns a pointer to the node with the given ID, or nil.
func (g *Graph) NodeByID(id string) *Node {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i]
		}
	}
	return nil
}

// FilterKinds returns a copy of the graph keeping only nodes of the given
// kinds. Edges are kept untouched; edges pointing at removed nodes become
// dangling and are ignored downstream. An empty kinds list keeps everything.
func (g Graph) FilterKinds(kinds ...NodeKind) Graph {
	if len(kinds) == 0 {
		return g
	}
	keep := make(map[NodeKind]bool, len(kinds))
	for _, k := range kinds {
		keep[k.Normalize()] = true
	}
	out := Graph{Edges: g.Edges}
	for _, n := range g.Nodes {
		if keep[n.Kind.Normalize()] {
			out.Nodes = append(out.Nodes, n)
		}
	}
	return out
}
