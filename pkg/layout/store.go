package layout

import (
	"math"
	"math/rand"
	"strconv"

	"github.com/vanderheijden86/entropy/pkg/model"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/spatial/r2"
)

// Body is the simulation state tracked for one node. FX and FY, when set, pin
// the node on that axis; they are replaced rather than written through, so
// copies of a Body never alias live pin state.
type Body struct {
	ID     string
	Kind   model.NodeKind
	X, Y   float64
	VX, VY float64
	FX, FY *float64

	num int64 // stable node id in the topology graph
}

// Pinned reports whether either axis is fixed.
func (b *Body) Pinned() bool {
	return b.FX != nil || b.FY != nil
}

// Finite reports whether the position is usable for forces and rendering.
func (b *Body) Finite() bool {
	return isFinite(b.X) && isFinite(b.Y)
}

// Pos returns the position as a vector.
func (b *Body) Pos() r2.Vec {
	return r2.Vec{X: b.X, Y: b.Y}
}

// Position is a read-only copy of a body's state handed to renderers.
type Position struct {
	ID     string
	Kind   model.NodeKind
	X, Y   float64
	Pinned bool
}

// Finite reports whether the copied position is usable.
func (p Position) Finite() bool {
	return isFinite(p.X) && isFinite(p.Y)
}

// Link is a read-only view of an active edge.
type Link struct {
	ID       string
	Source   string
	Target   string
	Kind     model.EdgeKind
	Strength float64
}

type link struct {
	Link
	source, target *Body
}

// ReconcileStats summarises one Reconcile call.
type ReconcileStats struct {
	Added       int
	Removed     int
	Kept        int
	ActiveEdges int
}

// Changed reports whether the tracked node set changed.
func (s ReconcileStats) Changed() bool {
	return s.Added > 0 || s.Removed > 0
}

// Store is the spatial model: the authoritative position and velocity of
// every tracked node, plus the set of edges whose endpoints both exist.
// Store is not safe for concurrent use; the engine serialises access.
type Store struct {
	bodies []*Body
	byID   map[string]*Body
	byNum  map[int64]*Body
	links  []link
	topo   *simple.UndirectedGraph

	center r2.Vec
	jitter float64
	rng    *rand.Rand
	next   int64
}

// NewStore creates an empty store seeding new nodes around center with the
// given jitter half-width.
func NewStore(center r2.Vec, jitter float64, seed int64) *Store {
	if jitter <= 0 {
		jitter = DefaultConfig().SeedJitter
	}
	return &Store{
		byID:   make(map[string]*Body),
		byNum:  make(map[int64]*Body),
		topo:   simple.NewUndirectedGraph(),
		center: center,
		jitter: jitter,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// Center returns the seeding and centering point.
func (s *Store) Center() r2.Vec { return s.center }

// SetCenter moves the seeding and centering point, e.g. on resize.
func (s *Store) SetCenter(c r2.Vec) { s.center = c }

// Len returns the number of tracked nodes.
func (s *Store) Len() int { return len(s.bodies) }

// Reconcile merges an external node and edge list into the store. Tracked
// nodes keep their position, velocity and pin; new nodes are seeded near the
// center with random jitter; nodes missing upstream are dropped. Nodes whose
// position went non-finite are re-seeded.
func (s *Store) Reconcile(nodes []model.Node, edges []model.Edge) ReconcileStats {
	var stats ReconcileStats

	bodies := make([]*Body, 0, len(nodes))
	byID := make(map[string]*Body, len(nodes))
	for _, n := range nodes {
		if n.ID == "" {
			continue
		}
		if _, dup := byID[n.ID]; dup {
			continue // first occurrence wins
		}
		b, ok := s.byID[n.ID]
		if ok {
			stats.Kept++
			if !b.Finite() {
				s.seed(b)
			}
		} else {
			stats.Added++
			b = &Body{ID: n.ID, num: s.next}
			s.next++
			s.seed(b)
		}
		b.Kind = n.Kind.Normalize()
		bodies = append(bodies, b)
		byID[n.ID] = b
	}
	for id := range s.byID {
		if _, ok := byID[id]; !ok {
			stats.Removed++
		}
	}

	s.bodies = bodies
	s.byID = byID
	s.byNum = make(map[int64]*Body, len(bodies))
	for _, b := range bodies {
		s.byNum[b.num] = b
	}
	s.relink(edges)
	stats.ActiveEdges = len(s.links)
	return stats
}

func (s *Store) relink(edges []model.Edge) {
	s.links = s.links[:0]
	s.topo = simple.NewUndirectedGraph()
	for _, b := range s.bodies {
		s.topo.AddNode(simple.Node(b.num))
	}
	for i, e := range edges {
		src, ok1 := s.byID[e.Source]
		dst, ok2 := s.byID[e.Target]
		if !ok1 || !ok2 || src == dst {
			continue
		}
		id := e.ID
		if id == "" {
			id = edgeID(i)
		}
		s.links = append(s.links, link{
			Link: Link{
				ID:       id,
				Source:   e.Source,
				Target:   e.Target,
				Kind:     e.Kind,
				Strength: e.Weight(),
			},
			source: src,
			target: dst,
		})
		if !s.topo.HasEdgeBetween(src.num, dst.num) {
			s.topo.SetEdge(s.topo.NewEdge(simple.Node(src.num), simple.Node(dst.num)))
		}
	}
}

func (s *Store) seed(b *Body) {
	b.X = s.center.X + (s.rng.Float64()-0.5)*2*s.jitter
	b.Y = s.center.Y + (s.rng.Float64()-0.5)*2*s.jitter
	b.VX, b.VY = 0, 0
}

// Body returns a copy of the tracked state for id.
func (s *Store) Body(id string) (Body, bool) {
	b, ok := s.byID[id]
	if !ok {
		return Body{}, false
	}
	return *b, true
}

// Has reports whether id is tracked.
func (s *Store) Has(id string) bool {
	_, ok := s.byID[id]
	return ok
}

// Positions returns a copy of every tracked position in input order,
// including non-finite ones; callers filter with Position.Finite.
func (s *Store) Positions() []Position {
	out := make([]Position, len(s.bodies))
	for i, b := range s.bodies {
		out[i] = Position{ID: b.ID, Kind: b.Kind, X: b.X, Y: b.Y, Pinned: b.Pinned()}
	}
	return out
}

// Links returns a copy of the active edges.
func (s *Store) Links() []Link {
	out := make([]Link, len(s.links))
	for i, l := range s.links {
		out[i] = l.Link
	}
	return out
}

// Neighbors returns the IDs of nodes sharing an active edge with id.
func (s *Store) Neighbors(id string) []string {
	b, ok := s.byID[id]
	if !ok {
		return nil
	}
	it := s.topo.From(b.num)
	out := make([]string, 0, it.Len())
	for it.Next() {
		if nb, ok := s.byNum[it.Node().ID()]; ok {
			out = append(out, nb.ID)
		}
	}
	return out
}

// Degree returns the number of distinct neighbors of id.
func (s *Store) Degree(id string) int {
	b, ok := s.byID[id]
	if !ok {
		return 0
	}
	return s.topo.From(b.num).Len()
}

// Pin fixes both axes of id at (x, y). The body's position and velocity
// follow on the next tick.
func (s *Store) Pin(id string, x, y float64) bool {
	return s.SetPin(id, &x, &y)
}

// SetPin fixes each axis for which a value is given and releases the others.
func (s *Store) SetPin(id string, fx, fy *float64) bool {
	b, ok := s.byID[id]
	if !ok {
		return false
	}
	b.FX = copyFloat(fx)
	b.FY = copyFloat(fy)
	return true
}

// Unpin releases both axes of id. Velocity is left as is.
func (s *Store) Unpin(id string) bool {
	return s.SetPin(id, nil, nil)
}

// Scatter moves every unpinned node to a random point inside the rectangle
// [min, max] and clears its velocity.
func (s *Store) Scatter(min, max r2.Vec) {
	w, h := max.X-min.X, max.Y-min.Y
	for _, b := range s.bodies {
		if b.Pinned() {
			continue
		}
		b.X = min.X + s.rng.Float64()*w
		b.Y = min.Y + s.rng.Float64()*h
		b.VX, b.VY = 0, 0
	}
}

// NodeAt returns the finite node nearest to p within radius.
func (s *Store) NodeAt(p r2.Vec, radius float64) (string, bool) {
	best := ""
	bestD := radius * radius
	for _, b := range s.bodies {
		if !b.Finite() {
			continue
		}
		d := r2.Norm2(r2.Sub(b.Pos(), p))
		if d <= bestD {
			best, bestD = b.ID, d
		}
	}
	return best, best != ""
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// edgeID names an edge that arrived without an ID after its position.
func edgeID(i int) string {
	return "e" + strconv.Itoa(i+1)
}
