package render

import (
	"math"
	"strings"
	"testing"

	"github.com/vanderheijden86/entropy/pkg/interact"
	"github.com/vanderheijden86/entropy/pkg/layout"
	"github.com/vanderheijden86/entropy/pkg/model"
	"github.com/vanderheijden86/entropy/pkg/viewport"

	"gonum.org/v1/gonum/spatial/r2"
)

func sampleInput() Input {
	return Input{
		Positions: []layout.Position{
			{ID: "a", Kind: model.KindRepo, X: 0, Y: 0},
			{ID: "b", Kind: model.KindDoc, X: 100, Y: 0},
			{ID: "c", Kind: model.KindTask, X: 0, Y: 100},
			{ID: "bad", Kind: model.KindMisc, X: math.NaN(), Y: 0},
		},
		Links: []layout.Link{
			{ID: "ab", Source: "a", Target: "b", Kind: model.EdgeDependsOn, Strength: 1},
			{ID: "bc", Source: "b", Target: "c", Kind: model.EdgeRelatesTo, Strength: 1},
			{ID: "abad", Source: "a", Target: "bad", Kind: model.EdgeBlocks, Strength: 1},
		},
		Labels:    map[string]string{"a": "Alpha"},
		Transform: viewport.Transform{X: 10, Y: 20, K: 2},
		Size:      viewport.Size{W: 800, H: 600},
	}
}

func TestCurve(t *testing.T) {
	q := Curve(r2.Vec{X: 0, Y: 0}, r2.Vec{X: 100, Y: 0}, 0.1)
	if q.C != (r2.Vec{X: 50, Y: -10}) {
		t.Errorf("control point = %v, want (50,-10)", q.C)
	}
	if got := q.SVGPath(); got != "M 0.00,0.00 Q 50.00,-10.00 100.00,0.00" {
		t.Errorf("SVGPath = %q", got)
	}
	if q.At(0) != q.P0 || q.At(1) != q.P1 {
		t.Error("curve should start at P0 and end at P1")
	}
	mid := q.At(0.5)
	if mid.X != 50 || mid.Y != -5 {
		t.Errorf("At(0.5) = %v, want (50,-5)", mid)
	}
	if pts := q.Sample(4); len(pts) != 5 {
		t.Errorf("Sample(4) returned %d points", len(pts))
	}
	if l := q.Length(); l < 100 || l > 101 {
		t.Errorf("Length = %v, want slightly above 100", l)
	}
	if tan := q.Tangent(1); tan.X <= 0 || tan.Y <= 0 {
		t.Errorf("end tangent = %v, should point down-right into P1", tan)
	}
}

func TestProjectSkipsNonFinite(t *testing.T) {
	f := NewProjector(Neon()).Project(sampleInput())

	if len(f.Nodes) != 3 {
		t.Fatalf("nodes = %d, want 3", len(f.Nodes))
	}
	if _, ok := f.Node("bad"); ok {
		t.Error("non-finite node should be excluded")
	}
	if len(f.Edges) != 2 {
		t.Fatalf("edges = %d, want 2", len(f.Edges))
	}
	if _, ok := f.Edge("abad"); ok {
		t.Error("edge to a non-finite node should be excluded")
	}
}

func TestProjectAppliesTransform(t *testing.T) {
	f := NewProjector(Neon()).Project(sampleInput())

	b, _ := f.Node("b")
	if b.Screen != (r2.Vec{X: 210, Y: 20}) {
		t.Errorf("b screen = %v, want (210,20)", b.Screen)
	}
	if b.Radius != Neon().NodeRadius*2 {
		t.Errorf("radius should scale with K, got %v", b.Radius)
	}
	ab, _ := f.Edge("ab")
	if ab.Path.P0 != (r2.Vec{X: 10, Y: 20}) || ab.Path.P1 != b.Screen {
		t.Errorf("edge endpoints %v -> %v", ab.Path.P0, ab.Path.P1)
	}
	if !strings.HasPrefix(ab.Path.SVGPath(), "M 10.00,20.00 Q") {
		t.Errorf("unexpected path %q", ab.Path.SVGPath())
	}
}

func TestEdgeStyling(t *testing.T) {
	f := NewProjector(Neon()).Project(sampleInput())

	ab, _ := f.Edge("ab")
	if !ab.Dashed || !ab.Arrow {
		t.Error("depends_on should be dashed with an arrow")
	}
	if ab.Glow != Neon().Style(model.KindRepo).Stroke {
		t.Errorf("neon glow should take the source color, got %v", ab.Glow)
	}
	bc, _ := f.Edge("bc")
	if bc.Dashed || bc.Arrow {
		t.Error("relates_to should be solid without arrow")
	}
}

func TestLabels(t *testing.T) {
	f := NewProjector(Neon()).Project(sampleInput())
	a, _ := f.Node("a")
	b, _ := f.Node("b")
	if a.Label != "Alpha" || b.Label != "b" {
		t.Errorf("labels = %q, %q", a.Label, b.Label)
	}
}

func TestSelectionDimsAndHighlights(t *testing.T) {
	in := sampleInput()
	in.State = interact.State{Selected: "a"}
	f := NewProjector(Neon()).Project(in)

	a, _ := f.Node("a")
	b, _ := f.Node("b")
	c, _ := f.Node("c")
	if !a.Selected || a.Dimmed {
		t.Errorf("selected node state: %+v", a)
	}
	if b.Dimmed {
		t.Error("neighbor of the selection should not be dimmed")
	}
	if !c.Dimmed || c.Opacity != Neon().DimOpacity {
		t.Errorf("unrelated node should be dimmed: %+v", c)
	}

	ab, _ := f.Edge("ab")
	bc, _ := f.Edge("bc")
	if !ab.Highlighted || bc.Highlighted {
		t.Errorf("highlight: ab=%v bc=%v", ab.Highlighted, bc.Highlighted)
	}
	if ab.Width != Neon().EdgeWidthHighlight*2 {
		t.Errorf("highlighted width = %v", ab.Width)
	}
}

func TestHoverHighlightsWithoutDimming(t *testing.T) {
	in := sampleInput()
	in.State = interact.State{Hovered: "c"}
	f := NewProjector(Neon()).Project(in)

	for _, n := range f.Nodes {
		if n.Dimmed {
			t.Errorf("%s dimmed without a selection", n.ID)
		}
	}
	bc, _ := f.Edge("bc")
	if !bc.Highlighted {
		t.Error("edge touching the hovered node should be highlighted")
	}
	c, _ := f.Node("c")
	if c.Radius != Neon().HoverRadius*2 {
		t.Errorf("hovered radius = %v", c.Radius)
	}
}

type fakeTopology map[string][]string

func (f fakeTopology) Neighbors(id string) []string { return f[id] }
func (f fakeTopology) Degree(id string) int         { return len(f[id]) }

func TestTopologyDrivesDimmingAndSize(t *testing.T) {
	in := sampleInput()
	in.State = interact.State{Selected: "a"}
	in.Topology = fakeTopology{"a": {"c"}, "c": {"a", "b", "x"}}
	f := NewProjector(Soft()).Project(in)

	b, _ := f.Node("b")
	c, _ := f.Node("c")
	if !b.Dimmed || c.Dimmed {
		t.Errorf("topology neighbors should decide dimming: b=%v c=%v", b.Dimmed, c.Dimmed)
	}
	if c.Radius <= b.Radius {
		t.Errorf("soft variant should grow high-degree nodes: c=%v b=%v", c.Radius, b.Radius)
	}
}

func TestVariantByName(t *testing.T) {
	for _, name := range VariantNames() {
		v, err := VariantByName(name)
		if err != nil || v.Name != name {
			t.Errorf("VariantByName(%q) = %q, %v", name, v.Name, err)
		}
		for _, k := range model.NodeKinds {
			if v.Style(k).Fill.A == 0 {
				t.Errorf("%s: kind %s has no fill", name, k)
			}
		}
	}
	if _, err := VariantByName("vaporwave"); err == nil {
		t.Error("unknown variant should fail")
	}
	if got := Neon().Style("bogus"); got != Neon().Style(model.KindMisc) {
		t.Error("unknown kinds should use the misc style")
	}
}

func TestEmptyFrame(t *testing.T) {
	var nilFrame *Frame
	if !nilFrame.Empty() {
		t.Error("nil frame should be empty")
	}
	f := NewProjector(Soft()).Project(Input{Transform: viewport.Identity})
	if !f.Empty() || len(f.Edges) != 0 {
		t.Error("projection of nothing should be empty")
	}
}
