package export

import (
	"bytes"
	"encoding/xml"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vanderheijden86/entropy/pkg/interact"
	"github.com/vanderheijden86/entropy/pkg/layout"
	"github.com/vanderheijden86/entropy/pkg/model"
	"github.com/vanderheijden86/entropy/pkg/render"
	"github.com/vanderheijden86/entropy/pkg/viewport"
)

func testFrame(t *testing.T, variant render.Variant) *render.Frame {
	t.Helper()
	in := render.Input{
		Positions: []layout.Position{
			{ID: "api", Kind: model.KindRepo, X: 200, Y: 150},
			{ID: "docs", Kind: model.KindDoc, X: 500, Y: 200},
			{ID: "fix<bug>", Kind: model.KindTask, X: 350, Y: 420},
		},
		Links: []layout.Link{
			{ID: "e1", Source: "api", Target: "docs", Kind: model.EdgeDependsOn, Strength: 1},
			{ID: "e2", Source: "docs", Target: "fix<bug>", Kind: model.EdgeBlocks, Strength: 1},
			{ID: "e3", Source: "fix<bug>", Target: "api", Kind: model.EdgeRelatesTo, Strength: 1},
		},
		Labels:    map[string]string{"api": "API & Gateway"},
		Transform: viewport.Identity,
		Size:      viewport.Size{W: 800, H: 600},
		State:     interact.State{Selected: "api"},
	}
	return render.NewProjector(variant).Project(in)
}

// svgDoc is the subset of the SVG tree the tests inspect.
type svgDoc struct {
	XMLName xml.Name   `xml:"svg"`
	Width   string     `xml:"width,attr"`
	Height  string     `xml:"height,attr"`
	Groups  []svgGroup `xml:"g"`
}

type svgGroup struct {
	ID      string     `xml:"id,attr"`
	Paths   []svgPath  `xml:"path"`
	Polys   []struct{} `xml:"polygon"`
	Groups  []svgGroup `xml:"g"`
	Circles []struct{} `xml:"circle"`
	Texts   []string   `xml:"text"`
}

type svgPath struct {
	ID    string `xml:"id,attr"`
	Class string `xml:"class,attr"`
	D     string `xml:"d,attr"`
	Style string `xml:"style,attr"`
}

func parseSVG(t *testing.T, data []byte) svgDoc {
	t.Helper()
	var doc svgDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		t.Fatalf("SVG is not valid XML: %v\n%s", err, data)
	}
	return doc
}

func group(t *testing.T, doc svgDoc, id string) svgGroup {
	t.Helper()
	for _, g := range doc.Groups {
		if g.ID == id {
			return g
		}
	}
	t.Fatalf("group %q not found", id)
	return svgGroup{}
}

func TestSVGStructure(t *testing.T) {
	frame := testFrame(t, render.Neon())
	var buf bytes.Buffer
	if err := Write(&buf, frame, Options{Labels: true, Title: "Knowledge graph"}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	doc := parseSVG(t, buf.Bytes())

	if doc.Width != "800" || doc.Height != "600" {
		t.Errorf("size = %sx%s, want 800x600", doc.Width, doc.Height)
	}

	edges := group(t, doc, "edges")
	var core int
	for _, p := range edges.Paths {
		if p.Class != "edge" {
			continue
		}
		core++
		if !strings.HasPrefix(p.D, "M ") || !strings.Contains(p.D, " Q ") {
			t.Errorf("edge %s is not a quadratic path: %q", p.ID, p.D)
		}
	}
	if core != len(frame.Edges) {
		t.Errorf("core edge paths = %d, want one per visible edge (%d)", core, len(frame.Edges))
	}
	if len(edges.Polys) != 2 {
		t.Errorf("arrow heads = %d, want 2 (depends_on and blocks)", len(edges.Polys))
	}

	nodes := group(t, doc, "nodes")
	if len(nodes.Groups) != len(frame.Nodes) {
		t.Errorf("node groups = %d, want %d", len(nodes.Groups), len(frame.Nodes))
	}
	found := false
	for _, g := range nodes.Groups {
		for _, txt := range g.Texts {
			if txt == "API & Gateway" {
				found = true
			}
		}
	}
	if !found {
		t.Error("escaped label text not found")
	}
}

func TestSVGDashedDependsOn(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, testFrame(t, render.Neon()), Options{}); err != nil {
		t.Fatal(err)
	}
	doc := parseSVG(t, buf.Bytes())
	for _, p := range group(t, doc, "edges").Paths {
		if p.Class != "edge" {
			continue
		}
		dashed := strings.Contains(p.Style, "stroke-dasharray")
		if want := p.ID == "edge-e1"; dashed != want {
			t.Errorf("%s dashed = %v, want %v", p.ID, dashed, want)
		}
	}
}

func TestSoftVariantHasNoGlowPaths(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, testFrame(t, render.Soft()), Options{Legend: true}); err != nil {
		t.Fatal(err)
	}
	doc := parseSVG(t, buf.Bytes())
	for _, p := range group(t, doc, "edges").Paths {
		if p.Class == "edge-glow" {
			t.Fatalf("soft variant drew a glow stroke: %+v", p)
		}
	}
}

func TestPNG(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, testFrame(t, render.Neon()), Options{Format: "png", Labels: true, Legend: true}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 800 || b.Dy() != 600 {
		t.Errorf("bounds = %v", b)
	}
}

func TestSaveSnapshotInfersFormat(t *testing.T) {
	dir := t.TempDir()
	frame := testFrame(t, render.Neon())

	tests := []struct {
		name   string
		file   string
		format string
		isPNG  bool
	}{
		{"svg by extension", "out/graph.svg", "", false},
		{"png by extension", "graph.PNG", "", true},
		{"explicit format wins", "graph.img", "png", true},
		{"unknown extension defaults to svg", "graph.out", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			if err := SaveSnapshot(path, frame, Options{Format: tt.format}); err != nil {
				t.Fatalf("SaveSnapshot: %v", err)
			}
			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			gotPNG := bytes.HasPrefix(data, []byte("\x89PNG"))
			if gotPNG != tt.isPNG {
				t.Errorf("png = %v, want %v", gotPNG, tt.isPNG)
			}
		})
	}
}

func TestErrors(t *testing.T) {
	if err := Write(&bytes.Buffer{}, &render.Frame{}, Options{}); !errors.Is(err, ErrNoNodes) {
		t.Errorf("empty frame: err = %v, want ErrNoNodes", err)
	}
	if err := SaveSnapshot(filepath.Join(t.TempDir(), "x.svg"), nil, Options{}); !errors.Is(err, ErrNoNodes) {
		t.Errorf("nil frame: err = %v, want ErrNoNodes", err)
	}
	frame := testFrame(t, render.Neon())
	if err := Write(&bytes.Buffer{}, frame, Options{Format: "gif"}); err == nil {
		t.Error("expected error for unsupported format")
	}
	if err := SaveSnapshot("", frame, Options{}); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly-ten", 11, "exactly-ten"},
		{"a longer label", 8, "a lon..."},
		{"abc", 2, "ab"},
		{"héllo wörld", 7, "héll..."},
		{"x", 0, ""},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
