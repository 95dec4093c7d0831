// Package viewport holds the pan and zoom state of the graph canvas.
//
// A Transform maps world (simulation) coordinates to screen coordinates by
// scaling and then translating: screen = (X, Y) + K * world. The scale K is
// kept inside [MinScale, MaxScale] by every mutating operation. Programmatic
// moves (fit to content, focus) animate over a fixed duration; user pans and
// zooms take effect immediately and cancel any running animation.
package viewport

import (
	"fmt"
	"math"
	"time"

	"github.com/vanderheijden86/entropy/pkg/debug"
	"github.com/vanderheijden86/entropy/pkg/metrics"

	"gonum.org/v1/gonum/spatial/r2"
)

// Transform is a uniform scale followed by a translation.
type Transform struct {
	X, Y float64 // translation in screen pixels
	K    float64 // scale
}

// Identity is the transform that leaves coordinates unchanged.
var Identity = Transform{K: 1}

// Apply maps a world point to the screen.
func (t Transform) Apply(p r2.Vec) r2.Vec {
	return r2.Vec{X: t.X + t.K*p.X, Y: t.Y + t.K*p.Y}
}

// Invert maps a screen point back into world coordinates.
func (t Transform) Invert(p r2.Vec) r2.Vec {
	return r2.Vec{X: (p.X - t.X) / t.K, Y: (p.Y - t.Y) / t.K}
}

// String formats the transform like an SVG transform attribute.
func (t Transform) String() string {
	return fmt.Sprintf("translate(%g,%g) scale(%g)", t.X, t.Y, t.K)
}

// Size is the viewport size in screen pixels.
type Size struct {
	W, H float64
}

// Center returns the screen point at the middle of the viewport.
func (s Size) Center() r2.Vec {
	return r2.Vec{X: s.W / 2, Y: s.H / 2}
}

// Config holds the zoom bounds and fit parameters.
type Config struct {
	MinScale    float64       `yaml:"min_scale" toml:"min_scale" json:"min_scale"`
	MaxScale    float64       `yaml:"max_scale" toml:"max_scale" json:"max_scale"`
	MaxFitScale float64       `yaml:"max_fit_scale" toml:"max_fit_scale" json:"max_fit_scale"`
	FitPadding  float64       `yaml:"fit_padding" toml:"fit_padding" json:"fit_padding"`
	FitDuration time.Duration `yaml:"-" toml:"-" json:"-"`
	ZoomStep    float64       `yaml:"zoom_step" toml:"zoom_step" json:"zoom_step"`

	// Half extents added around each node position when fitting, so node
	// cards are fully visible.
	NodeExtentX float64 `yaml:"node_extent_x" toml:"node_extent_x" json:"node_extent_x"`
	NodeExtentY float64 `yaml:"node_extent_y" toml:"node_extent_y" json:"node_extent_y"`
}

// DefaultConfig returns the dashboard canvas bounds.
func DefaultConfig() Config {
	return Config{
		MinScale:    0.1,
		MaxScale:    3,
		MaxFitScale: 1.5,
		FitPadding:  100,
		FitDuration: 750 * time.Millisecond,
		ZoomStep:    0.2,
		NodeExtentX: 80,
		NodeExtentY: 60,
	}
}

// Validate reports inconsistent bounds.
func (c Config) Validate() error {
	switch {
	case c.MinScale <= 0:
		return fmt.Errorf("min_scale must be positive, got %v", c.MinScale)
	case c.MaxScale < c.MinScale:
		return fmt.Errorf("max_scale %v is below min_scale %v", c.MaxScale, c.MinScale)
	case c.MaxFitScale <= 0:
		return fmt.Errorf("max_fit_scale must be positive, got %v", c.MaxFitScale)
	case c.FitPadding < 0 || c.NodeExtentX < 0 || c.NodeExtentY < 0:
		return fmt.Errorf("fit padding and node extents must not be negative")
	case c.FitDuration < 0:
		return fmt.Errorf("fit_duration must not be negative")
	}
	return nil
}

// Option configures a Viewport.
type Option func(*Viewport)

// WithClock replaces time.Now, for tests and offline rendering.
func WithClock(now func() time.Time) Option {
	return func(v *Viewport) { v.now = now }
}

// WithTransform sets the initial transform.
func WithTransform(t Transform) Option {
	return func(v *Viewport) { v.cur = t }
}

type transition struct {
	from, to Transform
	start    time.Time
	dur      time.Duration
}

func (tr *transition) at(now time.Time) (Transform, bool) {
	u := float64(now.Sub(tr.start)) / float64(tr.dur)
	if u >= 1 || tr.dur <= 0 {
		return tr.to, true
	}
	if u < 0 {
		u = 0
	}
	e := easeCubicInOut(u)
	return Transform{
		X: tr.from.X + (tr.to.X-tr.from.X)*e,
		Y: tr.from.Y + (tr.to.Y-tr.from.Y)*e,
		K: tr.from.K * math.Pow(tr.to.K/tr.from.K, e),
	}, false
}

func easeCubicInOut(t float64) float64 {
	t *= 2
	if t <= 1 {
		return t * t * t / 2
	}
	t -= 2
	return (t*t*t + 2) / 2
}

// Viewport owns the current transform and any running transition. It is not
// safe for concurrent use.
type Viewport struct {
	cfg  Config
	size Size
	cur  Transform
	anim *transition
	now  func() time.Time
}

// New creates a viewport of the given size at the identity transform.
func New(cfg Config, size Size, opts ...Option) *Viewport {
	v := &Viewport{cfg: cfg, size: size, cur: Identity, now: time.Now}
	for _, opt := range opts {
		opt(v)
	}
	v.cur.K = v.clamp(v.cur.K)
	return v
}

// Config returns the bounds in use.
func (v *Viewport) Config() Config { return v.cfg }

// Size returns the viewport size.
func (v *Viewport) Size() Size { return v.size }

// Resize changes the viewport size without moving content.
func (v *Viewport) Resize(s Size) { v.size = s }

// Transform returns the transform at the current time, finishing the
// transition once its duration has elapsed.
func (v *Viewport) Transform() Transform {
	if v.anim == nil {
		return v.cur
	}
	t, done := v.anim.at(v.now())
	v.cur = t
	if done {
		v.anim = nil
	}
	return t
}

// Animating reports whether a transition is still running.
func (v *Viewport) Animating() bool {
	v.Transform()
	return v.anim != nil
}

// Target returns where the viewport is heading: the transition end, or the
// current transform when idle.
func (v *Viewport) Target() Transform {
	if v.anim != nil {
		return v.anim.to
	}
	return v.cur
}

// settle freezes a running transition at its current value.
func (v *Viewport) settle() Transform {
	t := v.Transform()
	v.anim = nil
	return t
}

func (v *Viewport) clamp(k float64) float64 {
	if math.IsNaN(k) || k < v.cfg.MinScale {
		return v.cfg.MinScale
	}
	if k > v.cfg.MaxScale {
		return v.cfg.MaxScale
	}
	return k
}

// ZoomBy multiplies the scale by (1 + delta), clamped to the configured
// range, keeping the screen point center visually fixed.
func (v *Viewport) ZoomBy(delta float64, center r2.Vec) {
	t := v.settle()
	v.cur = v.zoomAround(t, t.K*(1+delta), center)
}

func (v *Viewport) zoomAround(t Transform, k float64, center r2.Vec) Transform {
	world := t.Invert(center)
	k = v.clamp(k)
	return Transform{X: center.X - k*world.X, Y: center.Y - k*world.Y, K: k}
}

// SetZoom sets the scale directly, around the viewport center.
func (v *Viewport) SetZoom(k float64) {
	t := v.settle()
	v.cur = v.zoomAround(t, k, v.size.Center())
}

// ZoomIn zooms one step around the viewport center.
func (v *Viewport) ZoomIn() { v.ZoomBy(v.cfg.ZoomStep, v.size.Center()) }

// ZoomOut zooms out one step around the viewport center.
func (v *Viewport) ZoomOut() { v.ZoomBy(-v.cfg.ZoomStep, v.size.Center()) }

// PanBy moves the content by (dx, dy) screen pixels. Panning is unbounded.
func (v *Viewport) PanBy(dx, dy float64) {
	t := v.settle()
	t.X += dx
	t.Y += dy
	v.cur = t
}

// PanTo sets the translation directly.
func (v *Viewport) PanTo(x, y float64) {
	t := v.settle()
	t.X, t.Y = x, y
	v.cur = t
}

// Jump sets the whole transform immediately, clamping its scale.
func (v *Viewport) Jump(t Transform) {
	v.anim = nil
	t.K = v.clamp(t.K)
	v.cur = t
}

// FitTarget computes the transform that frames every finite point inside a
// viewport of the given size with padding on each side. It reports false
// when there is nothing finite to frame.
func (v *Viewport) FitTarget(points []r2.Vec, size Size, padding float64) (Transform, bool) {
	lo := r2.Vec{X: math.Inf(1), Y: math.Inf(1)}
	hi := r2.Vec{X: math.Inf(-1), Y: math.Inf(-1)}
	n := 0
	for _, p := range points {
		if !finite(p) {
			continue
		}
		n++
		lo.X, lo.Y = math.Min(lo.X, p.X), math.Min(lo.Y, p.Y)
		hi.X, hi.Y = math.Max(hi.X, p.X), math.Max(hi.Y, p.Y)
	}
	if n == 0 || size.W <= 0 || size.H <= 0 {
		return Transform{}, false
	}
	lo = r2.Sub(lo, r2.Vec{X: v.cfg.NodeExtentX, Y: v.cfg.NodeExtentY})
	hi = r2.Add(hi, r2.Vec{X: v.cfg.NodeExtentX, Y: v.cfg.NodeExtentY})

	w, h := hi.X-lo.X, hi.Y-lo.Y
	k := v.cfg.MaxFitScale
	if w > 0 {
		k = math.Min(k, (size.W-2*padding)/w)
	}
	if h > 0 {
		k = math.Min(k, (size.H-2*padding)/h)
	}
	k = v.clamp(k)

	mid := r2.Scale(0.5, r2.Add(lo, hi))
	return Transform{X: size.W/2 - k*mid.X, Y: size.H/2 - k*mid.Y, K: k}, true
}

// FitToContent animates to the transform returned by FitTarget. It is a
// no-op when no point is finite. Calling it again with the same points
// returns the same target and does not restart the transition.
func (v *Viewport) FitToContent(points []r2.Vec, size Size, padding float64) (Transform, bool) {
	defer metrics.Timer(metrics.FitToView)()
	target, ok := v.FitTarget(points, size, padding)
	if !ok {
		return Transform{}, false
	}
	v.animateTo(target)
	debug.Log("viewport: fit %d points -> %s", len(points), target)
	return target, true
}

// Fit frames points in the viewport's own size with the configured padding.
func (v *Viewport) Fit(points []r2.Vec) (Transform, bool) {
	return v.FitToContent(points, v.size, v.cfg.FitPadding)
}

// Focus animates so the world point p sits at the viewport center at the
// current scale.
func (v *Viewport) Focus(p r2.Vec) {
	if !finite(p) {
		return
	}
	k := v.Target().K
	c := v.size.Center()
	v.animateTo(Transform{X: c.X - k*p.X, Y: c.Y - k*p.Y, K: k})
}

func (v *Viewport) animateTo(target Transform) {
	if v.anim != nil && v.anim.to == target {
		return
	}
	from := v.settle()
	if from == target || v.cfg.FitDuration <= 0 {
		v.cur = target
		return
	}
	v.anim = &transition{from: from, to: target, start: v.now(), dur: v.cfg.FitDuration}
}

func finite(p r2.Vec) bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}
