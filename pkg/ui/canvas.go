package ui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/vanderheijden86/entropy/pkg/render"
)

// One terminal cell covers CellW x CellH screen pixels of the engine's
// canvas, split into a 2x4 braille dot grid.
const (
	CellW = 8
	CellH = 16

	dotW = CellW / 2
	dotH = CellH / 4

	dashLen = 12 // screen pixels on, then off
)

// brailleBits[row][col] is the dot bit for a sub-cell position.
var brailleBits = [4][2]rune{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

type cell struct {
	glyph rune // 0 means braille dots only
	dots  rune
	fg    string
	bold  bool
	cont  bool // right half of a wide glyph
}

// Canvas is a grid of terminal cells that frame geometry is rasterized
// onto. Glyphs (nodes, labels) always win over line dots.
type Canvas struct {
	cols, rows int
	cells      []cell
}

// NewCanvas creates an empty canvas.
func NewCanvas(cols, rows int) *Canvas {
	cols, rows = max(cols, 0), max(rows, 0)
	return &Canvas{cols: cols, rows: rows, cells: make([]cell, cols*rows)}
}

// Size returns the canvas dimensions in cells.
func (c *Canvas) Size() (cols, rows int) { return c.cols, c.rows }

func (c *Canvas) at(col, row int) *cell {
	if col < 0 || row < 0 || col >= c.cols || row >= c.rows {
		return nil
	}
	return &c.cells[row*c.cols+col]
}

// Plot sets the braille dot under screen point p.
func (c *Canvas) Plot(p r2.Vec, fg string) {
	if math.IsNaN(p.X) || math.IsNaN(p.Y) || p.X < 0 || p.Y < 0 {
		return
	}
	dx, dy := int(p.X)/dotW, int(p.Y)/dotH
	cl := c.at(dx/2, dy/4)
	if cl == nil || cl.glyph != 0 || cl.cont {
		return
	}
	cl.dots |= brailleBits[dy%4][dx%2]
	cl.fg = fg
}

// Path rasterizes a curve, skipping the parts inside the endpoint nodes.
func (c *Canvas) Path(q render.Quad, trimStart, trimEnd float64, dashed bool, fg string) {
	length := q.Length()
	if length <= 0 || math.IsNaN(length) || math.IsInf(length, 0) {
		return
	}
	step := math.Min(dotW, dotH) / 2
	n := int(length/step) + 1
	for i := 0; i <= n; i++ {
		s := length * float64(i) / float64(n)
		if s < trimStart || s > length-trimEnd {
			continue
		}
		if dashed && int(s/dashLen)%2 == 1 {
			continue
		}
		c.Plot(q.At(s/length), fg)
	}
}

// Glyph places a single rune at a cell.
func (c *Canvas) Glyph(col, row int, r rune, fg string, bold bool) {
	if cl := c.at(col, row); cl != nil {
		*cl = cell{glyph: r, fg: fg, bold: bold}
	}
}

// Text writes s starting at a cell, clipped at the right edge. Wide runes
// take two cells.
func (c *Canvas) Text(col, row int, s string, fg string, bold bool) {
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if col+w > c.cols {
			return
		}
		c.Glyph(col, row, r, fg, bold)
		if w == 2 {
			if cl := c.at(col+1, row); cl != nil {
				*cl = cell{cont: true}
			}
		}
		col += w
	}
}

// Cell maps a screen point to the cell containing it.
func Cell(p r2.Vec) (col, row int) {
	return int(math.Floor(p.X / CellW)), int(math.Floor(p.Y / CellH))
}

// CellCenter is the screen point at the middle of a cell.
func CellCenter(col, row int) r2.Vec {
	return r2.Vec{X: (float64(col) + 0.5) * CellW, Y: (float64(row) + 0.5) * CellH}
}

func glyphOf(cl cell) rune {
	switch {
	case cl.glyph != 0:
		return cl.glyph
	case cl.dots != 0:
		return 0x2800 + cl.dots
	default:
		return ' '
	}
}

// Lines returns the canvas as plain text rows.
func (c *Canvas) Lines() []string {
	out := make([]string, c.rows)
	var sb strings.Builder
	for row := 0; row < c.rows; row++ {
		sb.Reset()
		for col := 0; col < c.cols; col++ {
			cl := c.cells[row*c.cols+col]
			if cl.cont {
				continue
			}
			sb.WriteRune(glyphOf(cl))
		}
		out[row] = sb.String()
	}
	return out
}

// Render returns the canvas as styled rows. Runs of cells with the same
// color share one style.
func (c *Canvas) Render(r *lipgloss.Renderer) string {
	type key struct {
		fg   string
		bold bool
	}
	styles := map[key]lipgloss.Style{}
	style := func(k key) lipgloss.Style {
		s, ok := styles[k]
		if !ok {
			s = r.NewStyle().Foreground(ThemeFg(k.fg)).Bold(k.bold)
			styles[k] = s
		}
		return s
	}

	var out, run strings.Builder
	for row := 0; row < c.rows; row++ {
		if row > 0 {
			out.WriteByte('\n')
		}
		var cur key
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if cur.fg == "" {
				out.WriteString(run.String())
			} else {
				out.WriteString(style(cur).Render(run.String()))
			}
			run.Reset()
		}
		for col := 0; col < c.cols; col++ {
			cl := c.cells[row*c.cols+col]
			if cl.cont {
				continue
			}
			k := key{fg: cl.fg, bold: cl.bold}
			if cl.glyph == 0 && cl.dots == 0 {
				k = key{}
			}
			if k != cur {
				flush()
				cur = k
			}
			run.WriteRune(glyphOf(cl))
		}
		flush()
	}
	return out.String()
}

// Draw rasterizes a frame: edges first, then nodes and their labels.
func (c *Canvas) Draw(f *render.Frame, v render.Variant, labels bool) {
	if f == nil {
		return
	}
	radius := make(map[string]float64, len(f.Nodes))
	for _, n := range f.Nodes {
		radius[n.ID] = n.Radius
	}
	for _, e := range f.Edges {
		col := e.Glow
		if e.GlowWidth <= 0 {
			col = e.Core
		}
		fg := hexColor(col, v.Background, math.Max(e.Opacity, 0.35))
		c.Path(e.Path, radius[e.Source], radius[e.Target], e.Dashed, fg)
		if e.Arrow {
			c.arrow(e, radius[e.Target], fg)
		}
	}

	// Selected and hovered nodes draw last so their labels stay on top.
	order := make([]render.NodeSprite, 0, len(f.Nodes))
	var front []render.NodeSprite
	for _, n := range f.Nodes {
		if n.Selected || n.Hovered || n.Dragged {
			front = append(front, n)
			continue
		}
		order = append(order, n)
	}
	for _, n := range append(order, front...) {
		c.node(n, v, labels)
	}
}

func (c *Canvas) arrow(e render.EdgePath, targetRadius float64, fg string) {
	length := e.Path.Length()
	if length <= targetRadius {
		return
	}
	t := 1 - (targetRadius+dotH)/length
	tip := e.Path.At(t)
	dir := e.Path.Tangent(t)
	col, row := Cell(tip)
	c.Glyph(col, row, arrowGlyph(dir), fg, true)
}

func arrowGlyph(d r2.Vec) rune {
	// Screen y grows downward; cells are twice as tall as wide.
	if math.Abs(d.X) >= math.Abs(d.Y) {
		if d.X >= 0 {
			return '▸'
		}
		return '◂'
	}
	if d.Y >= 0 {
		return '▾'
	}
	return '▴'
}

func (c *Canvas) node(n render.NodeSprite, v render.Variant, labels bool) {
	col, row := Cell(n.Screen)
	opacity := n.Opacity
	if n.Dimmed {
		opacity = v.DimOpacity
	}
	fg := hexColor(n.Style.Stroke, v.Background, math.Max(opacity, 0.3))

	glyph := '●'
	switch {
	case n.Selected:
		glyph = '◉'
	case n.Pinned || n.Dragged:
		glyph = '◆'
	case n.Hovered:
		glyph = '○'
	}
	c.Glyph(col, row, glyph, fg, n.Selected || n.Hovered)

	if !labels || n.Label == "" {
		return
	}
	if n.Dimmed && !n.Hovered {
		return
	}
	text := runewidth.Truncate(n.Label, labelWidth, "…")
	labelFg := hexColor(v.LabelColor, v.Background, math.Max(opacity, 0.5))
	c.Text(col+2, row, text, labelFg, n.Selected)
}

// labelWidth caps label width in cells.
const labelWidth = 20
