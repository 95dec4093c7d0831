package export

import (
	"image/color"
	"io"

	"github.com/vanderheijden86/entropy/pkg/render"

	"git.sr.ht/~sbinet/gg"
	"golang.org/x/image/font/basicfont"
)

func writePNG(w io.Writer, f *render.Frame, opts Options) error {
	v := variantOf(f)
	width, height := canvasSize(f)
	r := radii(f)

	dc := gg.NewContext(width, height)
	dc.SetColor(fade(v.Background, 1))
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	for _, e := range f.Edges {
		drawEdgePNG(dc, v, e, r[e.Target])
	}
	for _, n := range f.Nodes {
		drawNodePNG(dc, v, n, opts.Labels)
	}

	if opts.Title != "" {
		dc.SetColor(fade(v.LabelColor, 1))
		dc.DrawStringAnchored(opts.Title, 16, 20, 0, 0.5)
	}
	if opts.Legend {
		drawLegendPNG(dc, v, width)
	}

	return dc.EncodePNG(w)
}

// fade converts a palette color to non-premultiplied form with its alpha
// scaled by a. Palette alphas are straight, not premultiplied.
func fade(c color.RGBA, a float64) color.NRGBA {
	if a > 1 {
		a = 1
	}
	if a < 0 {
		a = 0
	}
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(float64(c.A) * a)}
}

func tracePath(dc *gg.Context, e render.EdgePath) {
	q := e.Path
	dc.NewSubPath()
	dc.MoveTo(q.P0.X, q.P0.Y)
	dc.QuadraticTo(q.C.X, q.C.Y, q.P1.X, q.P1.Y)
}

func drawEdgePNG(dc *gg.Context, v render.Variant, e render.EdgePath, targetRadius float64) {
	if e.Dashed && len(v.Dash) > 0 {
		dc.SetDash(v.Dash...)
	} else {
		dc.SetDash()
	}
	dc.SetLineCapRound()

	if e.GlowWidth > 0 {
		tracePath(dc, e)
		dc.SetColor(fade(e.Glow, e.Opacity*v.GlowOpacity))
		dc.SetLineWidth(e.GlowWidth)
		dc.Stroke()
	}
	core := e.Core
	if e.GlowWidth == 0 {
		core = e.Glow
	}
	tracePath(dc, e)
	dc.SetColor(fade(core, e.Opacity))
	dc.SetLineWidth(e.Width)
	dc.Stroke()
	dc.SetDash()

	if !e.Arrow {
		return
	}
	tip, left, right, ok := arrowHead(e, targetRadius, v.ArrowSize)
	if !ok {
		return
	}
	dc.SetColor(fade(e.Glow, e.Opacity))
	dc.NewSubPath()
	dc.MoveTo(tip.X, tip.Y)
	dc.LineTo(left.X, left.Y)
	dc.LineTo(right.X, right.Y)
	dc.ClosePath()
	dc.Fill()
}

func drawNodePNG(dc *gg.Context, v render.Variant, n render.NodeSprite, labels bool) {
	x, y := n.Screen.X, n.Screen.Y

	if v.GlowRadius > 0 && v.NodeRadius > 0 {
		dc.SetColor(fade(n.Style.Glow, v.GlowOpacity*0.4*n.Opacity))
		dc.DrawCircle(x, y, n.Radius*v.GlowRadius/v.NodeRadius)
		dc.Fill()
	}

	dc.SetColor(fade(n.Style.Fill, n.Opacity))
	dc.DrawCircle(x, y, n.Radius)
	dc.Fill()

	dc.SetColor(fade(n.Style.Stroke, n.Opacity))
	dc.SetLineWidth(2)
	if n.Selected || n.Hovered || n.Dragged {
		dc.SetLineWidth(3)
	}
	dc.DrawCircle(x, y, n.Radius)
	dc.Stroke()

	if labels && n.Label != "" && v.NodeRadius > 0 {
		dc.SetColor(fade(v.LabelColor, n.Opacity))
		dc.DrawStringAnchored(truncate(n.Label, labelMaxRunes), x, y+v.LabelOffset*n.Radius/v.NodeRadius, 0.5, 0.5)
	}
}

func drawLegendPNG(dc *gg.Context, v render.Variant, width int) {
	kinds := legendKinds()
	boxW, rowH := 130.0, 18.0
	x, y := float64(width)-boxW-16, 16.0
	dc.SetColor(color.NRGBA{A: 0x66})
	dc.DrawRoundedRectangle(x, y, boxW, rowH*float64(len(kinds))+12, 8)
	dc.Fill()
	for i, k := range kinds {
		ry := y + 16 + float64(i)*rowH
		dc.SetColor(fade(v.Style(k).Stroke, 1))
		dc.DrawCircle(x+14, ry-4, 5)
		dc.Fill()
		dc.SetColor(fade(v.LabelColor, 1))
		dc.DrawStringAnchored(string(k), x+26, ry-4, 0, 0.5)
	}
}
