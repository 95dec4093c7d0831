// Package export writes projected frames to static image files.
package export

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/vanderheijden86/entropy/pkg/debug"
	"github.com/vanderheijden86/entropy/pkg/metrics"
	"github.com/vanderheijden86/entropy/pkg/model"
	"github.com/vanderheijden86/entropy/pkg/render"

	"gonum.org/v1/gonum/spatial/r2"
)

// ErrNoNodes is returned when a frame has nothing to draw.
var ErrNoNodes = errors.New("frame has no drawable nodes")

// Options controls snapshot output.
type Options struct {
	Format string // "svg" or "png" (case-insensitive). If empty, inferred from the path.
	Title  string // Optional caption drawn in the top-left corner
	Labels bool   // Draw node labels
	Legend bool   // Draw the node kind legend
}

// SaveSnapshot renders frame to path as SVG or PNG.
func SaveSnapshot(path string, frame *render.Frame, opts Options) error {
	defer metrics.Timer(metrics.Export)()

	if frame.Empty() {
		return ErrNoNodes
	}
	if path == "" {
		return fmt.Errorf("output path is required")
	}
	format, err := resolveFormat(path, opts.Format)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	debug.Log("export: %s %d nodes, %d edges -> %s", format, len(frame.Nodes), len(frame.Edges), path)
	switch format {
	case "png":
		err = writePNG(file, frame, opts)
	default:
		err = writeSVG(file, frame, opts)
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", format, err)
	}
	return file.Close()
}

// Write renders frame to w in the given format.
func Write(w io.Writer, frame *render.Frame, opts Options) error {
	defer metrics.Timer(metrics.Export)()

	if frame.Empty() {
		return ErrNoNodes
	}
	switch strings.ToLower(strings.TrimPrefix(opts.Format, ".")) {
	case "png":
		return writePNG(w, frame, opts)
	case "svg", "":
		return writeSVG(w, frame, opts)
	default:
		return fmt.Errorf("unsupported format %q (want svg or png)", opts.Format)
	}
}

func resolveFormat(path, format string) (string, error) {
	format = strings.ToLower(strings.TrimPrefix(format, "."))
	if format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".png":
			format = "png"
		default:
			format = "svg"
		}
	}
	if format != "svg" && format != "png" {
		return "", fmt.Errorf("unsupported format %q (want svg or png)", format)
	}
	return format, nil
}

// --- shared geometry -------------------------------------------------------

// canvasSize returns the integer pixel size of the frame, at least 1x1.
func canvasSize(f *render.Frame) (int, int) {
	w := int(math.Ceil(f.Size.W))
	h := int(math.Ceil(f.Size.H))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

// arrowHead returns the three corners of the arrow at the target end of e,
// with its tip on the target node's rim.
func arrowHead(e render.EdgePath, targetRadius, size float64) (tip, left, right r2.Vec, ok bool) {
	dir := e.Path.Tangent(1)
	n := r2.Norm(dir)
	if n == 0 || math.IsNaN(n) {
		return tip, left, right, false
	}
	dir = r2.Scale(1/n, dir)
	tip = r2.Sub(e.Path.P1, r2.Scale(targetRadius, dir))
	base := r2.Sub(tip, r2.Scale(size*1.5, dir))
	perp := r2.Vec{X: -dir.Y, Y: dir.X}
	left = r2.Add(base, r2.Scale(size, perp))
	right = r2.Sub(base, r2.Scale(size, perp))
	return tip, left, right, true
}

func radii(f *render.Frame) map[string]float64 {
	out := make(map[string]float64, len(f.Nodes))
	for _, n := range f.Nodes {
		out[n.ID] = n.Radius
	}
	return out
}

// variantOf resolves the skin a frame was projected with.
func variantOf(f *render.Frame) render.Variant {
	v, err := render.VariantByName(f.Variant)
	if err != nil {
		return render.Neon()
	}
	return v
}

func legendKinds() []model.NodeKind {
	return model.NodeKinds
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func opacity(c color.RGBA) float64 {
	return float64(c.A) / 255
}
