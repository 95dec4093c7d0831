package render

import (
	"fmt"
	"image/color"
	"sort"

	"github.com/vanderheijden86/entropy/pkg/model"
)

// NodeStyle holds the colors of one node kind.
type NodeStyle struct {
	Stroke color.RGBA
	Fill   color.RGBA
	Glow   color.RGBA
}

// Variant is a rendering skin. Every variant projects the same geometry;
// only sizes, colors and opacities differ.
type Variant struct {
	Name       string
	Background color.RGBA
	Palette    map[model.NodeKind]NodeStyle

	NodeRadius  float64 // world units
	HoverRadius float64
	DegreeScale float64 // radius grows by DegreeScale*ln(1+degree)
	GlowRadius  float64
	GlowOpacity float64

	EdgeCore           color.RGBA // core line color
	EdgeColorBySource  bool       // glow takes the source node's stroke color
	EdgeColor          color.RGBA // glow color when not by source
	EdgeWidth          float64
	EdgeWidthHighlight float64
	GlowWidth          float64 // 0 disables the outer glow stroke
	GlowWidthHighlight float64
	EdgeOpacity        float64
	EdgeOpacityFocus   float64
	Dash               []float64
	ArrowSize          float64

	// Curvature bends each edge: the control point sits at the midpoint
	// offset by Curvature times the perpendicular of the edge vector.
	Curvature float64

	DimOpacity  float64
	LabelColor  color.RGBA
	LabelOffset float64
}

// Style returns the palette entry for kind, falling back to misc.
func (v Variant) Style(kind model.NodeKind) NodeStyle {
	if s, ok := v.Palette[kind.Normalize()]; ok {
		return s
	}
	return v.Palette[model.KindMisc]
}

// WithNodeRadius returns a copy of v scaled so its base node radius is r.
// Hover and glow radii keep their proportions. Non-positive r returns v.
func (v Variant) WithNodeRadius(r float64) Variant {
	if r <= 0 || v.NodeRadius <= 0 {
		return v
	}
	k := r / v.NodeRadius
	v.NodeRadius = r
	v.HoverRadius *= k
	v.GlowRadius *= k
	return v
}

func hex(c uint32) color.RGBA {
	return color.RGBA{R: uint8(c >> 16), G: uint8(c >> 8), B: uint8(c), A: 0xff}
}

func withAlpha(c color.RGBA, a float64) color.RGBA {
	c.A = uint8(a*255 + 0.5)
	return c
}

func neonStyle(c uint32, fill float64) NodeStyle {
	s := hex(c)
	return NodeStyle{Stroke: s, Fill: withAlpha(s, fill), Glow: s}
}

// Neon is the dashboard canvas skin: saturated strokes with a wide glow
// under a thin white core line.
func Neon() Variant {
	return Variant{
		Name:       "neon",
		Background: hex(0x0a0a0f),
		Palette: map[model.NodeKind]NodeStyle{
			model.KindRepo:  neonStyle(0xa855f7, 0.6),
			model.KindDoc:   neonStyle(0xff00ff, 0.6),
			model.KindTask:  neonStyle(0x00ffff, 0.6),
			model.KindAgent: neonStyle(0x00ff88, 0.7),
			model.KindMisc:  neonStyle(0xffd700, 0.6),
		},
		NodeRadius:         28,
		HoverRadius:        32,
		GlowRadius:         40,
		GlowOpacity:        0.5,
		EdgeCore:           hex(0xffffff),
		EdgeColorBySource:  true,
		EdgeWidth:          1.5,
		EdgeWidthHighlight: 2.5,
		GlowWidth:          5,
		GlowWidthHighlight: 8,
		EdgeOpacity:        0.9,
		EdgeOpacityFocus:   1,
		Dash:               []float64{12, 6},
		ArrowSize:          6,
		Curvature:          0.1,
		DimOpacity:         0.3,
		LabelColor:         hex(0xffffff),
		LabelOffset:        44,
	}
}

func softStyle(c uint32) NodeStyle {
	s := hex(c)
	return NodeStyle{Stroke: withAlpha(hex(0xffffff), 0.2), Fill: s, Glow: withAlpha(s, 0.5)}
}

// Soft is the landing preview skin: gradient-like fills, faint links and a
// soft halo.
func Soft() Variant {
	return Variant{
		Name:       "soft",
		Background: hex(0x0f0f1a),
		Palette: map[model.NodeKind]NodeStyle{
			model.KindRepo:  softStyle(0x667eea),
			model.KindDoc:   softStyle(0xf093fb),
			model.KindTask:  softStyle(0x4facfe),
			model.KindAgent: softStyle(0x43e97b),
			model.KindMisc:  softStyle(0xa0aec0),
		},
		NodeRadius:         20,
		HoverRadius:        25,
		DegreeScale:        0.15,
		GlowRadius:         30,
		GlowOpacity:        0.3,
		EdgeCore:           hex(0x667eea),
		EdgeColor:          hex(0x43e97b),
		EdgeWidth:          1.5,
		EdgeWidthHighlight: 2,
		EdgeOpacity:        0.2,
		EdgeOpacityFocus:   0.6,
		Dash:               []float64{6, 4},
		ArrowSize:          4,
		Curvature:          0.1,
		DimOpacity:         0.3,
		LabelColor:         withAlpha(hex(0xffffff), 0.6),
		LabelOffset:        35,
	}
}

var variants = map[string]func() Variant{
	"neon": Neon,
	"soft": Soft,
}

// VariantByName looks up a built-in variant.
func VariantByName(name string) (Variant, error) {
	fn, ok := variants[name]
	if !ok {
		return Variant{}, fmt.Errorf("unknown render variant %q (want one of %v)", name, VariantNames())
	}
	return fn(), nil
}

// VariantNames lists the built-in variants.
func VariantNames() []string {
	names := make([]string, 0, len(variants))
	for n := range variants {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
