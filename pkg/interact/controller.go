// Package interact turns pointer events into drag, hover and selection state.
//
// The Controller never moves nodes itself. Dragging pins the node through the
// Physics interface and the integrator does the rest; panning goes through
// the Camera. Screen coordinates are mapped to the world through the
// camera's current transform.
package interact

import (
	"math"

	"github.com/vanderheijden86/entropy/pkg/debug"
	"github.com/vanderheijden86/entropy/pkg/viewport"

	"gonum.org/v1/gonum/spatial/r2"
)

// Physics is the part of the simulation the controller drives.
type Physics interface {
	Pin(id string, x, y float64) bool
	Unpin(id string) bool
	SetAlphaTarget(a float64)
	Restart()
}

// Camera is the part of the viewport the controller reads and pans.
type Camera interface {
	Transform() viewport.Transform
	PanBy(dx, dy float64)
}

// HitTester finds the node under a world point.
type HitTester interface {
	NodeAt(p r2.Vec, radius float64) (string, bool)
}

// State is the interaction state exposed to renderers. Empty strings mean
// none. Hovered and Selected are independent.
type State struct {
	Selected string
	Hovered  string
	Dragged  string
}

// Focus returns the node whose neighborhood should be highlighted: the
// selection, else the hovered node.
func (s State) Focus() string {
	if s.Selected != "" {
		return s.Selected
	}
	return s.Hovered
}

// Config tunes hit testing and click detection.
type Config struct {
	// ClickSlop is how far, in screen pixels, the pointer may travel between
	// down and up and still count as a click. Zero means any motion makes
	// it a drag.
	ClickSlop float64 `yaml:"click_slop" toml:"click_slop" json:"click_slop"`
	// HitRadius is the node pick radius in world units.
	HitRadius float64 `yaml:"hit_radius" toml:"hit_radius" json:"hit_radius"`
	// DragAlphaTarget keeps the simulation warm while a node is held.
	DragAlphaTarget float64 `yaml:"drag_alpha_target" toml:"drag_alpha_target" json:"drag_alpha_target"`
}

// DefaultConfig matches the dashboard canvas.
func DefaultConfig() Config {
	return Config{ClickSlop: 0, HitRadius: 40, DragAlphaTarget: 0.3}
}

type mode int

const (
	modeIdle mode = iota
	modeDrag
	modePan
)

// Option configures a Controller.
type Option func(*Controller)

// WithOnSelect registers a callback run whenever the selection changes.
func WithOnSelect(fn func(id string)) Option {
	return func(c *Controller) { c.onSelect = fn }
}

// Controller is the interaction state machine. It is not safe for concurrent
// use.
type Controller struct {
	cfg     Config
	physics Physics
	camera  Camera
	hits    HitTester

	state State
	mode  mode
	down  r2.Vec // pointer position at press
	last  r2.Vec // last pointer position while panning
	moved bool

	onSelect func(string)
}

// New creates a controller.
func New(cfg Config, physics Physics, camera Camera, hits HitTester, opts ...Option) *Controller {
	c := &Controller{cfg: cfg, physics: physics, camera: camera, hits: hits}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a copy of the current interaction state.
func (c *Controller) State() State { return c.state }

// Dragging reports whether a node is held.
func (c *Controller) Dragging() bool { return c.mode == modeDrag }

// Panning reports whether a background drag is moving the camera.
func (c *Controller) Panning() bool { return c.mode == modePan }

func (c *Controller) world(p r2.Vec) r2.Vec {
	return c.camera.Transform().Invert(p)
}

func (c *Controller) hit(p r2.Vec) (string, bool) {
	return c.hits.NodeAt(c.world(p), c.cfg.HitRadius)
}

// PointerDown handles a press at screen point p. On a node it starts a drag:
// the node is pinned under the pointer and the simulation reheated. On the
// background it clears the selection and starts panning. A press while a
// drag is already active is ignored.
func (c *Controller) PointerDown(p r2.Vec) {
	if c.mode != modeIdle {
		return
	}
	c.down, c.last, c.moved = p, p, false

	id, ok := c.hit(p)
	if !ok {
		c.setSelected("")
		c.mode = modePan
		return
	}
	w := c.world(p)
	c.physics.Pin(id, w.X, w.Y)
	c.physics.SetAlphaTarget(c.cfg.DragAlphaTarget)
	c.physics.Restart()
	c.state.Dragged = id
	c.mode = modeDrag
	debug.Log("interact: drag start %s at (%.1f,%.1f)", id, w.X, w.Y)
}

// PointerMove handles motion to screen point p.
func (c *Controller) PointerMove(p r2.Vec) {
	switch c.mode {
	case modeDrag:
		if math.Hypot(p.X-c.down.X, p.Y-c.down.Y) > c.cfg.ClickSlop {
			c.moved = true
		}
		w := c.world(p)
		c.physics.Pin(c.state.Dragged, w.X, w.Y)
	case modePan:
		c.camera.PanBy(p.X-c.last.X, p.Y-c.last.Y)
		c.last = p
	default:
		id, _ := c.hit(p)
		c.state.Hovered = id
	}
}

// PointerUp handles a release at screen point p. Releasing a node unpins it
// and lets the simulation cool; if the pointer never moved it is a click and
// selects the node.
func (c *Controller) PointerUp(p r2.Vec) {
	switch c.mode {
	case modeDrag:
		id := c.state.Dragged
		c.endDrag()
		if !c.moved {
			c.setSelected(id)
		}
		debug.Log("interact: drag end %s (click=%v)", id, !c.moved)
	case modePan:
		c.mode = modeIdle
	}
}

// PointerCancel aborts a drag or pan without selecting, e.g. when the pointer
// leaves the canvas.
func (c *Controller) PointerCancel() {
	switch c.mode {
	case modeDrag:
		c.endDrag()
	case modePan:
		c.mode = modeIdle
	}
}

func (c *Controller) endDrag() {
	c.physics.Unpin(c.state.Dragged)
	c.physics.SetAlphaTarget(0)
	c.state.Dragged = ""
	c.mode = modeIdle
}

// PointerEnter marks id as hovered, for front ends with per-node hit regions.
func (c *Controller) PointerEnter(id string) { c.state.Hovered = id }

// PointerLeave clears the hover if it is on id.
func (c *Controller) PointerLeave(id string) {
	if c.state.Hovered == id {
		c.state.Hovered = ""
	}
}

// Select sets the selection directly, e.g. from a command palette.
func (c *Controller) Select(id string) { c.setSelected(id) }

// ClearSelection deselects.
func (c *Controller) ClearSelection() { c.setSelected("") }

func (c *Controller) setSelected(id string) {
	if c.state.Selected == id {
		return
	}
	c.state.Selected = id
	if c.onSelect != nil {
		c.onSelect(id)
	}
}

// Prune drops references to nodes for which keep returns false. A drag on a
// removed node ends without touching the physics.
func (c *Controller) Prune(keep func(id string) bool) {
	if c.state.Selected != "" && !keep(c.state.Selected) {
		c.setSelected("")
	}
	if c.state.Hovered != "" && !keep(c.state.Hovered) {
		c.state.Hovered = ""
	}
	if c.mode == modeDrag && !keep(c.state.Dragged) {
		c.physics.SetAlphaTarget(0)
		c.state.Dragged = ""
		c.mode = modeIdle
	}
}
