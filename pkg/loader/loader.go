// Package loader reads and writes graph datasets.
//
// Three formats are understood, picked by file extension:
//
//	.json        {"nodes": [...], "edges": [...]}
//	.yaml, .yml  the same document in YAML
//	.jsonl       one node or edge object per line; lines with a "source"
//	             field are edges
//
// Loaded graphs are normalized before they are returned: unknown node kinds
// become misc, edges without an ID get e<index>, edges without a strength
// get DefaultStrength and strength is clamped to [0, 1]. Dangling edges are
// kept; the engine ignores them.
package loader

import (
	"bufio"
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vanderheijden86/entropy/pkg/debug"
	"github.com/vanderheijden86/entropy/pkg/metrics"
	"github.com/vanderheijden86/entropy/pkg/model"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

var (
	// ErrEmptyGraph is returned when a dataset contains no nodes.
	ErrEmptyGraph = errors.New("graph has no nodes")
	// ErrDuplicateID is returned when two nodes share an ID.
	ErrDuplicateID = errors.New("duplicate node id")
)

// Format is a dataset encoding.
type Format string

const (
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatJSONL Format = "jsonl"
)

// FormatFor infers the format from a file name. Unknown extensions are
// treated as JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".jsonl", ".ndjson":
		return FormatJSONL
	default:
		return FormatJSON
	}
}

// DefaultStrength is the strength of an edge that does not set one.
const DefaultStrength = 1.0

// DefaultMaxBufferSize is the longest JSONL line accepted (10MB).
const DefaultMaxBufferSize = 1024 * 1024 * 10

// ParseOptions configures Parse.
type ParseOptions struct {
	// WarningHandler is called for skipped records. If nil, warnings are
	// printed to os.Stderr.
	WarningHandler func(string)

	// BufferSize caps the JSONL line length. Longer lines are skipped with a
	// warning. If 0, DefaultMaxBufferSize is used.
	BufferSize int

	// AllowEmpty accepts datasets without nodes.
	AllowEmpty bool
}

func (o ParseOptions) warn(msg string) {
	if o.WarningHandler != nil {
		o.WarningHandler(msg)
		return
	}
	fmt.Fprintf(os.Stderr, "Warning: %s\n", msg)
}

//go:embed sample.json
var sampleJSON []byte

// Sample returns the built-in demo graph.
func Sample() model.Graph {
	g, err := Parse(bytes.NewReader(sampleJSON), FormatJSON, ParseOptions{})
	if err != nil {
		panic(fmt.Sprintf("embedded sample graph is invalid: %v", err))
	}
	return g
}

// Load reads a graph file.
func Load(path string) (model.Graph, error) {
	return LoadWithOptions(path, ParseOptions{})
}

// LoadWithOptions reads a graph file with custom options.
func LoadWithOptions(path string, opts ParseOptions) (model.Graph, error) {
	defer metrics.Timer(metrics.GraphLoad)()

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.Graph{}, fmt.Errorf("no graph found at %s", path)
		}
		return model.Graph{}, fmt.Errorf("failed to open graph file: %w", err)
	}
	defer file.Close()

	g, err := Parse(file, FormatFor(path), opts)
	if err != nil {
		return model.Graph{}, fmt.Errorf("%s: %w", path, err)
	}
	debug.Log("loader: %s -> %d nodes, %d edges", path, len(g.Nodes), len(g.Edges))
	return g, nil
}

// Parse decodes and normalizes a graph from r.
func Parse(r io.Reader, format Format, opts ParseOptions) (model.Graph, error) {
	var (
		doc document
		err error
	)
	switch format {
	case FormatJSONL:
		doc, err = parseJSONL(r, opts)
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&doc)
		if errors.Is(err, io.EOF) {
			err = nil
		}
	case FormatJSON, "":
		var data []byte
		data, err = io.ReadAll(r)
		if err == nil {
			err = json.Unmarshal(stripBOM(data), &doc)
		}
	default:
		return model.Graph{}, fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return model.Graph{}, fmt.Errorf("decode %s: %w", format, err)
	}
	return Normalize(doc.graph(), opts)
}

// document is the on-disk graph. Strength is a pointer so a missing value
// can be told apart from an explicit zero.
type document struct {
	Nodes []model.Node `json:"nodes" yaml:"nodes"`
	Edges []edgeDoc    `json:"edges" yaml:"edges"`
}

type edgeDoc struct {
	ID       string         `json:"id" yaml:"id"`
	Source   string         `json:"source" yaml:"source"`
	Target   string         `json:"target" yaml:"target"`
	Kind     model.EdgeKind `json:"type" yaml:"type"`
	Strength *float64       `json:"strength" yaml:"strength"`
}

func (e edgeDoc) edge() model.Edge {
	out := model.Edge{ID: e.ID, Source: e.Source, Target: e.Target, Kind: e.Kind, Strength: DefaultStrength}
	if e.Strength != nil {
		out.Strength = *e.Strength
	}
	return out
}

func (d document) graph() model.Graph {
	g := model.Graph{Nodes: d.Nodes}
	if len(d.Edges) > 0 {
		g.Edges = make([]model.Edge, len(d.Edges))
		for i, e := range d.Edges {
			g.Edges[i] = e.edge()
		}
	}
	return g
}

// Normalize validates g and returns a cleaned copy. Duplicate node IDs are
// an error; other problems are repaired or skipped with a warning.
func Normalize(g model.Graph, opts ParseOptions) (model.Graph, error) {
	out := model.Graph{
		Nodes: make([]model.Node, 0, len(g.Nodes)),
		Edges: make([]model.Edge, 0, len(g.Edges)),
	}

	seen := make(map[string]bool, len(g.Nodes))
	for i, n := range g.Nodes {
		n.ID = strings.TrimSpace(n.ID)
		if n.ID == "" {
			opts.warn(fmt.Sprintf("skipping node %d: id cannot be empty", i))
			continue
		}
		if seen[n.ID] {
			return model.Graph{}, fmt.Errorf("%w: %s", ErrDuplicateID, n.ID)
		}
		seen[n.ID] = true
		if !n.Kind.IsValid() {
			if n.Kind != "" {
				opts.warn(fmt.Sprintf("node %s: unknown kind %q, using %s", n.ID, n.Kind, model.KindMisc))
			}
			n.Kind = n.Kind.Normalize()
		}
		out.Nodes = append(out.Nodes, n)
	}
	if len(out.Nodes) == 0 && !opts.AllowEmpty {
		return model.Graph{}, ErrEmptyGraph
	}

	edgeIDs := make(map[string]bool, len(g.Edges))
	for i, e := range g.Edges {
		if strings.TrimSpace(e.Source) == "" || strings.TrimSpace(e.Target) == "" {
			opts.warn(fmt.Sprintf("skipping edge %d: source and target are required", i))
			continue
		}
		if e.ID == "" {
			e.ID = "e" + strconv.Itoa(i)
		}
		if edgeIDs[e.ID] {
			opts.warn(fmt.Sprintf("skipping edge %d: duplicate id %s", i, e.ID))
			continue
		}
		edgeIDs[e.ID] = true
		if !e.Kind.IsValid() {
			if e.Kind != "" {
				opts.warn(fmt.Sprintf("edge %s: unknown kind %q, using %s", e.ID, e.Kind, model.EdgeRelatesTo))
			}
			e.Kind = model.EdgeRelatesTo
		}
		e.Strength = e.Weight()
		out.Edges = append(out.Edges, e)
	}
	return out, nil
}

// record is one JSONL line: a node, or an edge when Source is set.
type record struct {
	model.Node
	Source   string   `json:"source"`
	Target   string   `json:"target"`
	Strength *float64 `json:"strength"`
}

func parseJSONL(r io.Reader, opts ParseOptions) (document, error) {
	var doc document

	maxCapacity := opts.BufferSize
	if maxCapacity <= 0 {
		maxCapacity = DefaultMaxBufferSize
	}
	reader := bufio.NewReaderSize(r, maxCapacity)

	lineNum := 0
	for {
		lineNum++
		line, isPrefix, err := reader.ReadLine()
		if err != nil {
			if err == io.EOF {
				break
			}
			return document{}, fmt.Errorf("error reading graph stream at line %d: %w", lineNum, err)
		}

		if isPrefix {
			opts.warn(fmt.Sprintf("skipping line %d: line too long (exceeds %d bytes)", lineNum, maxCapacity))
			for isPrefix {
				_, isPrefix, err = reader.ReadLine()
				if err == io.EOF {
					break
				}
				if err != nil {
					return document{}, fmt.Errorf("error skipping long line at line %d: %w", lineNum, err)
				}
			}
			continue
		}

		if lineNum == 1 {
			line = stripBOM(line)
		}
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		var rec record
		if err := json.Unmarshal(line, &rec); err != nil {
			opts.warn(fmt.Sprintf("skipping malformed JSON on line %d: %v", lineNum, err))
			continue
		}
		if rec.Source != "" || rec.Target != "" {
			doc.Edges = append(doc.Edges, edgeDoc{
				ID:       rec.ID,
				Source:   rec.Source,
				Target:   rec.Target,
				Kind:     model.EdgeKind(rec.Node.Kind),
				Strength: rec.Strength,
			})
			continue
		}
		doc.Nodes = append(doc.Nodes, rec.Node)
	}
	return doc, nil
}

// stripBOM removes the UTF-8 Byte Order Mark if present.
func stripBOM(b []byte) []byte {
	if len(b) >= 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		return b[3:]
	}
	return b
}

// Save writes g to path in the format its extension names.
func Save(path string, g model.Graph) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	if err := Write(file, g, FormatFor(path)); err != nil {
		return err
	}
	return file.Close()
}

// Write encodes g to w.
func Write(w io.Writer, g model.Graph, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(g); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case FormatJSONL:
		enc := json.NewEncoder(w)
		for _, n := range g.Nodes {
			if err := enc.Encode(n); err != nil {
				return fmt.Errorf("encode node %s: %w", n.ID, err)
			}
		}
		for _, e := range g.Edges {
			if err := enc.Encode(e); err != nil {
				return fmt.Errorf("encode edge %s: %w", e.ID, err)
			}
		}
		return nil
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(g); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	}
}
