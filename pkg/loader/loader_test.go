package loader

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vanderheijden86/entropy/pkg/model"
	"github.com/vanderheijden86/entropy/pkg/testutil"
)

func collect(warnings *[]string) ParseOptions {
	return ParseOptions{WarningHandler: func(msg string) { *warnings = append(*warnings, msg) }}
}

func TestSample(t *testing.T) {
	g := Sample()
	testutil.AssertNoDuplicateIDs(t, g)
	testutil.AssertAllValid(t, g)

	kinds := map[model.NodeKind]bool{}
	for _, n := range g.Nodes {
		kinds[n.Kind] = true
	}
	for _, k := range model.NodeKinds {
		if !kinds[k] {
			t.Errorf("sample has no %s node", k)
		}
	}
	for _, e := range g.Edges {
		if g.NodeByID(e.Source) == nil || g.NodeByID(e.Target) == nil {
			t.Errorf("sample edge %s dangles", e.ID)
		}
	}
}

func TestParseJSON(t *testing.T) {
	input := "\xEF\xBB\xBF" + `{
		"nodes": [
			{"id": "a", "type": "repo", "title": "Alpha"},
			{"id": " b ", "type": "spaceship"},
			{"id": "", "type": "doc"}
		],
		"edges": [
			{"source": "a", "target": "b", "type": "blocks", "strength": 7},
			{"id": "x", "source": "a", "target": "ghost", "strength": -1},
			{"id": "y", "source": "", "target": "a"}
		]
	}`
	var warnings []string
	g, err := Parse(strings.NewReader(input), FormatJSON, collect(&warnings))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	testutil.AssertNodeCount(t, g, 2)
	if g.Nodes[1].ID != "b" || g.Nodes[1].Kind != model.KindMisc {
		t.Errorf("node b = %+v, want trimmed id and misc kind", g.Nodes[1])
	}
	if len(g.Edges) != 2 {
		t.Fatalf("edges = %d, want 2", len(g.Edges))
	}
	if e := g.Edges[0]; e.ID != "e0" || e.Strength != 1 || e.Kind != model.EdgeBlocks {
		t.Errorf("first edge = %+v, want id e0, clamped strength 1", e)
	}
	if e := g.Edges[1]; e.Target != "ghost" || e.Strength != 0 || e.Kind != model.EdgeRelatesTo {
		t.Errorf("dangling edge = %+v, should be kept with strength 0 and default kind", e)
	}
	if len(warnings) != 3 {
		t.Errorf("warnings = %q, want 3", warnings)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		format Format
		want   error
	}{
		{"duplicate node", `{"nodes":[{"id":"a"},{"id":"a"}]}`, FormatJSON, ErrDuplicateID},
		{"no nodes", `{"nodes":[],"edges":[]}`, FormatJSON, ErrEmptyGraph},
		{"empty yaml", ``, FormatYAML, ErrEmptyGraph},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input), tt.format, ParseOptions{WarningHandler: func(string) {}})
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := Parse(strings.NewReader(`{nope`), FormatJSON, ParseOptions{}); err == nil {
		t.Error("malformed JSON should fail")
	}
	if _, err := Parse(strings.NewReader(`{}`), Format("toml"), ParseOptions{}); err == nil {
		t.Error("unknown format should fail")
	}
	g, err := Parse(strings.NewReader(`{"nodes":[]}`), FormatJSON, ParseOptions{AllowEmpty: true})
	if err != nil || len(g.Nodes) != 0 {
		t.Errorf("AllowEmpty: %v, %+v", err, g)
	}
}

func TestParseYAML(t *testing.T) {
	input := `
nodes:
  - id: api
    type: repo
    title: API
    tags: [go]
    metadata:
      stars: 12
  - id: spec
    type: doc
edges:
  - id: l1
    source: spec
    target: api
    type: part_of
    strength: 0.5
`
	g, err := Parse(strings.NewReader(input), FormatYAML, ParseOptions{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	testutil.AssertNodeCount(t, g, 2)
	testutil.AssertEdgeExists(t, g, "spec", "api")
	if n := g.NodeByID("api"); n.Metadata.Stars != 12 || len(n.Tags) != 1 {
		t.Errorf("api = %+v", n)
	}
}

func TestParseJSONL(t *testing.T) {
	input := strings.Join([]string{
		`{"id":"a","type":"task","title":"A"}`,
		``,
		`{"id":"b","type":"agent"}`,
		`not json`,
		`{"id":"l","source":"a","target":"b","type":"depends_on","strength":0.25}`,
	}, "\n")
	var warnings []string
	g, err := Parse(strings.NewReader(input), FormatJSONL, collect(&warnings))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	testutil.AssertNodeCount(t, g, 2)
	if len(g.Edges) != 1 || g.Edges[0].Kind != model.EdgeDependsOn || g.Edges[0].Strength != 0.25 {
		t.Errorf("edges = %+v", g.Edges)
	}
	// "agent" is not a kind; the malformed line is skipped.
	if len(warnings) != 2 {
		t.Errorf("warnings = %q, want 2", warnings)
	}
}

func TestParseJSONLLongLine(t *testing.T) {
	long := `{"id":"big","title":"` + strings.Repeat("x", 200) + `"}`
	input := long + "\n" + `{"id":"ok"}`
	var warnings []string
	opts := collect(&warnings)
	opts.BufferSize = 64
	g, err := Parse(strings.NewReader(input), FormatJSONL, opts)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(g.Nodes) != 1 || g.Nodes[0].ID != "ok" {
		t.Errorf("nodes = %+v, want only ok", g.Nodes)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "too long") {
		t.Errorf("warnings = %q", warnings)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	want := Sample()
	for _, name := range []string{"graph.json", "graph.yaml", "graph.jsonl"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := Save(path, want); err != nil {
				t.Fatalf("Save: %v", err)
			}
			got, err := Load(path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if len(got.Nodes) != len(want.Nodes) || len(got.Edges) != len(want.Edges) {
				t.Fatalf("round trip: %d/%d nodes, %d/%d edges",
					len(got.Nodes), len(want.Nodes), len(got.Edges), len(want.Edges))
			}
			for i := range want.Nodes {
				if got.Nodes[i].ID != want.Nodes[i].ID || got.Nodes[i].Title != want.Nodes[i].Title {
					t.Errorf("node %d: %+v != %+v", i, got.Nodes[i], want.Nodes[i])
				}
			}
			for i := range want.Edges {
				if got.Edges[i] != want.Edges[i] {
					t.Errorf("edge %d: %+v != %+v", i, got.Edges[i], want.Edges[i])
				}
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err == nil || !strings.Contains(err.Error(), "no graph found") {
		t.Errorf("err = %v", err)
	}
}

func TestFormatFor(t *testing.T) {
	tests := map[string]Format{
		"g.json":   FormatJSON,
		"g.YAML":   FormatYAML,
		"g.yml":    FormatYAML,
		"g.jsonl":  FormatJSONL,
		"g.ndjson": FormatJSONL,
		"g":        FormatJSON,
	}
	for path, want := range tests {
		if got := FormatFor(path); got != want {
			t.Errorf("FormatFor(%q) = %s, want %s", path, got, want)
		}
	}
}

func TestWriteJSONIsIndented(t *testing.T) {
	var buf bytes.Buffer
	g := model.Graph{Nodes: []model.Node{{ID: "a", Kind: model.KindDoc}}}
	if err := Write(&buf, g, FormatJSON); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "\n  \"nodes\"") {
		t.Errorf("output not indented:\n%s", buf.String())
	}
}

func TestMissingStrengthDefaults(t *testing.T) {
	inputs := map[Format]string{
		FormatJSON:  `{"nodes":[{"id":"a"},{"id":"b"}],"edges":[{"source":"a","target":"b"},{"source":"b","target":"a","strength":0}]}`,
		FormatYAML:  "nodes: [{id: a}, {id: b}]\nedges:\n  - {source: a, target: b}\n  - {source: b, target: a, strength: 0}\n",
		FormatJSONL: "{\"id\":\"a\"}\n{\"id\":\"b\"}\n{\"source\":\"a\",\"target\":\"b\"}\n{\"source\":\"b\",\"target\":\"a\",\"strength\":0}\n",
	}
	for format, input := range inputs {
		t.Run(string(format), func(t *testing.T) {
			g, err := Parse(strings.NewReader(input), format, ParseOptions{WarningHandler: func(string) {}})
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if len(g.Edges) != 2 {
				t.Fatalf("edges = %+v", g.Edges)
			}
			if g.Edges[0].Strength != DefaultStrength {
				t.Errorf("missing strength = %v, want %v", g.Edges[0].Strength, DefaultStrength)
			}
			if g.Edges[1].Strength != 0 {
				t.Errorf("explicit zero strength = %v, want 0", g.Edges[1].Strength)
			}
		})
	}
}
