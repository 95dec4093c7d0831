// Package render projects simulation state into screen-space drawables.
//
// The Projector owns no mutable layout state. Each call to Project reads a
// copy of the node positions, the active links, the viewport transform and
// the interaction state, and returns a new immutable Frame. Nodes with
// non-finite positions are left out, as are edges touching them.
package render

import (
	"image/color"
	"math"

	"github.com/vanderheijden86/entropy/pkg/interact"
	"github.com/vanderheijden86/entropy/pkg/layout"
	"github.com/vanderheijden86/entropy/pkg/metrics"
	"github.com/vanderheijden86/entropy/pkg/model"
	"github.com/vanderheijden86/entropy/pkg/viewport"

	"gonum.org/v1/gonum/spatial/r2"
)

// NodeSprite is one node ready to draw.
type NodeSprite struct {
	ID     string
	Kind   model.NodeKind
	Label  string
	World  r2.Vec
	Screen r2.Vec
	Radius float64 // screen pixels
	Style  NodeStyle

	Selected bool
	Hovered  bool
	Dragged  bool
	Pinned   bool
	Dimmed   bool
	Opacity  float64
}

// EdgePath is one edge ready to draw, in screen coordinates.
type EdgePath struct {
	ID     string
	Source string
	Target string
	Kind   model.EdgeKind
	Path   Quad

	Highlighted bool
	Dashed      bool
	Arrow       bool
	Core        color.RGBA
	Glow        color.RGBA
	Width       float64
	GlowWidth   float64
	Opacity     float64
}

// Frame is the read-only output of one projection.
type Frame struct {
	Variant   string
	Size      viewport.Size
	Transform viewport.Transform
	State     interact.State
	Nodes     []NodeSprite
	Edges     []EdgePath

	Alpha   float64
	Running bool
	Tick    int
}

// Node looks up a sprite by ID.
func (f *Frame) Node(id string) (NodeSprite, bool) {
	for _, n := range f.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return NodeSprite{}, false
}

// Edge looks up a path by ID.
func (f *Frame) Edge(id string) (EdgePath, bool) {
	for _, e := range f.Edges {
		if e.ID == id {
			return e, true
		}
	}
	return EdgePath{}, false
}

// Empty reports whether nothing is drawable.
func (f *Frame) Empty() bool {
	return f == nil || len(f.Nodes) == 0
}

// Topology answers adjacency questions about the active links.
type Topology interface {
	Neighbors(id string) []string
	Degree(id string) int
}

// Input is everything a projection reads.
type Input struct {
	Positions []layout.Position
	Links     []layout.Link
	Labels    map[string]string
	Topology  Topology // optional; adjacency is derived from Links when nil
	Transform viewport.Transform
	Size      viewport.Size
	State     interact.State
}

// Projector maps layout state to frames using a Variant.
type Projector struct {
	variant Variant
}

// NewProjector creates a projector with the given skin.
func NewProjector(v Variant) *Projector {
	return &Projector{variant: v}
}

// Variant returns the skin in use.
func (p *Projector) Variant() Variant { return p.variant }

// SetVariant switches skins.
func (p *Projector) SetVariant(v Variant) { p.variant = v }

// Project builds a frame.
func (p *Projector) Project(in Input) *Frame {
	defer metrics.Timer(metrics.Project)()

	v := p.variant
	t := in.Transform
	f := &Frame{
		Variant:   v.Name,
		Size:      in.Size,
		Transform: t,
		State:     in.State,
		Nodes:     make([]NodeSprite, 0, len(in.Positions)),
		Edges:     make([]EdgePath, 0, len(in.Links)),
	}

	neighbors := p.neighbors(in)
	focus := in.State.Focus()
	sel := in.State.Selected

	kinds := make(map[string]model.NodeKind, len(in.Positions))
	visible := make(map[string]r2.Vec, len(in.Positions))
	for _, pos := range in.Positions {
		if !pos.Finite() {
			continue
		}
		world := r2.Vec{X: pos.X, Y: pos.Y}
		kinds[pos.ID] = pos.Kind
		visible[pos.ID] = world

		s := NodeSprite{
			ID:       pos.ID,
			Kind:     pos.Kind,
			Label:    label(in.Labels, pos.ID),
			World:    world,
			Screen:   t.Apply(world),
			Style:    v.Style(pos.Kind),
			Selected: pos.ID == sel,
			Hovered:  pos.ID == in.State.Hovered,
			Dragged:  pos.ID == in.State.Dragged,
			Pinned:   pos.Pinned,
			Opacity:  1,
		}
		r := v.NodeRadius
		if s.Hovered || s.Dragged {
			r = v.HoverRadius
		}
		if v.DegreeScale > 0 {
			r *= 1 + v.DegreeScale*math.Log1p(float64(p.degree(in, pos.ID)))
		}
		s.Radius = r * t.K
		if sel != "" && !s.Selected && !neighbors[pos.ID] {
			s.Dimmed = true
			s.Opacity = v.DimOpacity
		}
		f.Nodes = append(f.Nodes, s)
	}

	for _, l := range in.Links {
		sw, ok1 := visible[l.Source]
		tw, ok2 := visible[l.Target]
		if !ok1 || !ok2 {
			continue
		}
		q := Curve(t.Apply(sw), t.Apply(tw), v.Curvature)
		if !q.finite() {
			continue
		}
		e := EdgePath{
			ID:          l.ID,
			Source:      l.Source,
			Target:      l.Target,
			Kind:        l.Kind,
			Path:        q,
			Highlighted: focus != "" && (l.Source == focus || l.Target == focus),
			Dashed:      l.Kind.Dashed(),
			Arrow:       l.Kind.Directed(),
			Core:        v.EdgeCore,
			Glow:        v.EdgeColor,
			Width:       v.EdgeWidth * t.K,
			GlowWidth:   v.GlowWidth * t.K,
			Opacity:     v.EdgeOpacity,
		}
		if v.EdgeColorBySource {
			e.Glow = v.Style(kinds[l.Source]).Stroke
		}
		if e.Highlighted {
			e.Width = v.EdgeWidthHighlight * t.K
			e.GlowWidth = v.GlowWidthHighlight * t.K
			e.Opacity = v.EdgeOpacityFocus
		}
		f.Edges = append(f.Edges, e)
	}
	return f
}

// neighbors returns the set of nodes adjacent to the selection.
func (p *Projector) neighbors(in Input) map[string]bool {
	sel := in.State.Selected
	if sel == "" {
		return nil
	}
	nb := make(map[string]bool)
	if in.Topology != nil {
		for _, id := range in.Topology.Neighbors(sel) {
			nb[id] = true
		}
	} else {
		for _, l := range in.Links {
			if l.Source == sel {
				nb[l.Target] = true
			}
			if l.Target == sel {
				nb[l.Source] = true
			}
		}
	}
	return nb
}

func (p *Projector) degree(in Input, id string) int {
	if in.Topology != nil {
		return in.Topology.Degree(id)
	}
	n := 0
	for _, l := range in.Links {
		if l.Source == id || l.Target == id {
			n++
		}
	}
	return n
}

func label(labels map[string]string, id string) string {
	if l, ok := labels[id]; ok && l != "" {
		return l
	}
	return id
}

func finite(p r2.Vec) bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}
