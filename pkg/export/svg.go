package export

import (
	"fmt"
	"html"
	"io"
	"math"
	"strings"

	"github.com/vanderheijden86/entropy/pkg/render"

	svg "github.com/ajstarks/svgo"
)

const labelMaxRunes = 24

func writeSVG(w io.Writer, f *render.Frame, opts Options) error {
	v := variantOf(f)
	width, height := canvasSize(f)
	r := radii(f)

	canvas := svg.New(w)
	canvas.Start(width, height)
	canvas.Rect(0, 0, width, height, fmt.Sprintf("fill:%s", css(v.Background)))

	canvas.Gid("edges")
	for _, e := range f.Edges {
		drawEdgeSVG(canvas, v, e, r[e.Target])
	}
	canvas.Gend()

	canvas.Gid("nodes")
	for _, n := range f.Nodes {
		drawNodeSVG(canvas, v, n, opts.Labels)
	}
	canvas.Gend()

	if opts.Title != "" {
		canvas.Text(16, 24, opts.Title, fmt.Sprintf("fill:%s;font-size:14px;font-family:monospace;font-weight:bold", css(v.LabelColor)))
	}
	if opts.Legend {
		drawLegendSVG(canvas, v, width)
	}

	canvas.End()
	return nil
}

func drawEdgeSVG(canvas *svg.SVG, v render.Variant, e render.EdgePath, targetRadius float64) {
	d := e.Path.SVGPath()
	dash := ""
	if e.Dashed && len(v.Dash) > 0 {
		parts := make([]string, len(v.Dash))
		for i, x := range v.Dash {
			parts[i] = fmt.Sprintf("%g", x)
		}
		dash = ";stroke-dasharray:" + strings.Join(parts, ",")
	}

	if e.GlowWidth > 0 {
		canvas.Path(d, fmt.Sprintf("fill:none;stroke:%s;stroke-width:%.2f;stroke-linecap:round;opacity:%.2f%s",
			css(e.Glow), e.GlowWidth, e.Opacity*v.GlowOpacity, dash), `class="edge-glow"`)
	}
	core := e.Core
	if e.GlowWidth == 0 {
		core = e.Glow
	}
	canvas.Path(d, fmt.Sprintf("fill:none;stroke:%s;stroke-width:%.2f;stroke-linecap:round;opacity:%.2f%s",
		css(core), e.Width, e.Opacity, dash), fmt.Sprintf(`id="edge-%s"`, html.EscapeString(e.ID)), `class="edge"`)

	if !e.Arrow {
		return
	}
	tip, left, right, ok := arrowHead(e, targetRadius, v.ArrowSize)
	if !ok {
		return
	}
	canvas.Polygon(
		[]int{round(tip.X), round(left.X), round(right.X)},
		[]int{round(tip.Y), round(left.Y), round(right.Y)},
		fmt.Sprintf("fill:%s;opacity:%.2f", css(e.Glow), e.Opacity),
	)
}

func drawNodeSVG(canvas *svg.SVG, v render.Variant, n render.NodeSprite, labels bool) {
	x, y := round(n.Screen.X), round(n.Screen.Y)
	rad := round(n.Radius)
	if rad < 1 {
		rad = 1
	}

	canvas.Group(fmt.Sprintf(`id="node-%s"`, html.EscapeString(n.ID)), fmt.Sprintf("opacity:%.2f", n.Opacity))
	if v.GlowRadius > 0 {
		glow := round(n.Radius * v.GlowRadius / v.NodeRadius)
		canvas.Circle(x, y, glow, fmt.Sprintf("fill:%s;opacity:%.2f", css(n.Style.Glow), v.GlowOpacity*0.4))
	}
	strokeWidth := 2.0
	if n.Selected || n.Hovered || n.Dragged {
		strokeWidth = 3
	}
	canvas.Circle(x, y, rad, fmt.Sprintf("fill:%s;fill-opacity:%.2f;stroke:%s;stroke-opacity:%.2f;stroke-width:%.1f",
		css(n.Style.Fill), opacity(n.Style.Fill), css(n.Style.Stroke), opacity(n.Style.Stroke), strokeWidth))
	if labels && n.Label != "" {
		offset := round(v.LabelOffset * n.Radius / v.NodeRadius)
		canvas.Text(x, y+offset, truncate(n.Label, labelMaxRunes),
			fmt.Sprintf("fill:%s;fill-opacity:%.2f;font-size:12px;font-family:monospace;text-anchor:middle",
				css(v.LabelColor), opacity(v.LabelColor)))
	}
	canvas.Gend()
}

func drawLegendSVG(canvas *svg.SVG, v render.Variant, width int) {
	kinds := legendKinds()
	boxW, rowH := 130, 18
	x, y := width-boxW-16, 16
	canvas.Roundrect(x, y, boxW, rowH*len(kinds)+12, 8, 8, "fill:#000000;fill-opacity:0.4")
	for i, k := range kinds {
		ry := y + 16 + i*rowH
		s := v.Style(k)
		canvas.Circle(x+14, ry-4, 5, fmt.Sprintf("fill:%s", css(s.Stroke)))
		canvas.Text(x+26, ry, string(k), fmt.Sprintf("fill:%s;font-size:11px;font-family:monospace", css(v.LabelColor)))
	}
}

func round(f float64) int {
	return int(math.Round(f))
}
