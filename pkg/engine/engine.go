// Package engine wires the layout, viewport, interaction and render packages
// into one object that a front end can drive.
//
// The components underneath are single-goroutine types. Engine serialises
// every call with one mutex and publishes each committed frame through an
// atomic pointer, so Frame can be read from any goroutine without locking
// and never observes a half-applied tick.
package engine

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vanderheijden86/entropy/pkg/debug"
	"github.com/vanderheijden86/entropy/pkg/interact"
	"github.com/vanderheijden86/entropy/pkg/layout"
	"github.com/vanderheijden86/entropy/pkg/model"
	"github.com/vanderheijden86/entropy/pkg/render"
	"github.com/vanderheijden86/entropy/pkg/viewport"

	"gonum.org/v1/gonum/spatial/r2"
)

// Config bundles the settings of every component.
type Config struct {
	Physics     layout.Config
	Viewport    viewport.Config
	Interaction interact.Config
	Variant     string
	Size        viewport.Size

	// NodeRadius overrides the variant's base node radius when positive.
	NodeRadius float64

	// FrameInterval is the runner's tick period.
	FrameInterval time.Duration
	// RenderEvery publishes a frame every n physics steps. Physics always
	// steps; only projection is throttled.
	RenderEvery int
	// AutoFitDelay is how long after the first non-empty frame the view is
	// fitted to the content once. Negative disables it.
	AutoFitDelay time.Duration
	// ScatterSize is the box AutoLayout spreads nodes over, centered on the
	// layout center.
	ScatterSize viewport.Size
}

// DefaultConfig returns the dashboard canvas settings.
func DefaultConfig() Config {
	return Config{
		Physics:       layout.DefaultConfig(),
		Viewport:      viewport.DefaultConfig(),
		Interaction:   interact.DefaultConfig(),
		Variant:       "neon",
		Size:          viewport.Size{W: 800, H: 600},
		FrameInterval: 16 * time.Millisecond,
		RenderEvery:   1,
		AutoFitDelay:  1500 * time.Millisecond,
		ScatterSize:   viewport.Size{W: 800, H: 600},
	}
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Physics.Validate(); err != nil {
		return fmt.Errorf("physics: %w", err)
	}
	if err := c.Viewport.Validate(); err != nil {
		return fmt.Errorf("viewport: %w", err)
	}
	if _, err := render.VariantByName(c.Variant); err != nil {
		return err
	}
	if c.NodeRadius < 0 {
		return fmt.Errorf("node_radius must not be negative, got %v", c.NodeRadius)
	}
	if c.FrameInterval <= 0 {
		return fmt.Errorf("frame_interval must be positive, got %v", c.FrameInterval)
	}
	if c.RenderEvery < 1 {
		return fmt.Errorf("render_every must be at least 1, got %d", c.RenderEvery)
	}
	return nil
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces time.Now for the engine and its viewport.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithOnSelect registers a callback run when the selection changes. It is
// called with the engine lock held and must not call back into the engine.
func WithOnSelect(fn func(id string)) Option {
	return func(e *Engine) { e.onSelect = fn }
}

// Engine owns the spatial model, integrator, viewport, interaction
// controller and projector for one canvas.
type Engine struct {
	mu sync.Mutex

	cfg      Config
	now      func() time.Time
	onSelect func(string)

	graph  model.Graph
	filter []model.NodeKind
	labels map[string]string

	store *layout.Store
	sim   *layout.Simulation
	view  *viewport.Viewport
	ctl   *interact.Controller
	proj  *render.Projector

	frame       atomic.Pointer[render.Frame]
	sinceRender int
	animating   bool
	firstFrame  time.Time
	autoFitted  bool
}

// New creates an engine with no graph loaded.
func New(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}
	variant, _ := render.VariantByName(cfg.Variant)
	variant = variant.WithNodeRadius(cfg.NodeRadius)

	e := &Engine{cfg: cfg, now: time.Now, labels: map[string]string{}}
	for _, opt := range opts {
		opt(e)
	}

	e.store = layout.NewStore(cfg.Size.Center(), cfg.Physics.SeedJitter, cfg.Physics.Seed)
	e.sim = layout.NewSimulation(e.store, cfg.Physics)
	e.view = viewport.New(cfg.Viewport, cfg.Size, viewport.WithClock(e.now))

	icfg := cfg.Interaction
	icfg.DragAlphaTarget = cfg.Physics.DragAlphaTarget
	var ctlOpts []interact.Option
	if e.onSelect != nil {
		ctlOpts = append(ctlOpts, interact.WithOnSelect(e.onSelect))
	}
	e.ctl = interact.New(icfg, e.sim, e.view, e.store, ctlOpts...)
	e.proj = render.NewProjector(variant)

	e.publish()
	return e, nil
}

// Config returns the settings the engine was built with.
func (e *Engine) Config() Config { return e.cfg }

// SetGraph replaces the upstream node and edge lists. Layout state of nodes
// that persist is kept; the simulation is reheated only when the node set
// changed.
func (e *Engine) SetGraph(g model.Graph) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.graph = g
	e.reconcile()
}

// SetFilter restricts the simulated nodes to the given kinds. No kinds
// means all. Filtered-out nodes leave the layout; kept nodes keep their
// state.
func (e *Engine) SetFilter(kinds ...model.NodeKind) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.filter = append([]model.NodeKind(nil), kinds...)
	e.reconcile()
}

// Filter returns the active kind filter.
func (e *Engine) Filter() []model.NodeKind {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]model.NodeKind(nil), e.filter...)
}

func (e *Engine) reconcile() {
	g := e.graph.FilterKinds(e.filter...)
	stats := e.store.Reconcile(g.Nodes, g.Edges)

	e.labels = make(map[string]string, len(g.Nodes))
	for _, n := range g.Nodes {
		e.labels[n.ID] = n.Label()
	}
	e.ctl.Prune(e.store.Has)
	if stats.Changed() {
		e.sim.Reheat()
	}
	debug.Log("engine: reconcile +%d -%d =%d, %d active edges",
		stats.Added, stats.Removed, stats.Kept, stats.ActiveEdges)
	e.publish()
}

// Graph returns the last graph passed to SetGraph.
func (e *Engine) Graph() model.Graph {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.graph
}

// Node returns the upstream record for id.
func (e *Engine) Node(id string) (model.Node, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if n := e.graph.NodeByID(id); n != nil {
		return *n, true
	}
	return model.Node{}, false
}

// Tick advances physics one step, runs the pending auto-fit, and publishes a
// frame when due. It reports whether anything on screen may have changed.
func (e *Engine) Tick() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	stepped := e.sim.Tick()
	e.maybeAutoFit()
	animating := e.view.Animating()
	settled := e.animating && !animating
	e.animating = animating

	if stepped {
		e.sinceRender++
	}
	switch {
	case stepped && e.sinceRender >= e.cfg.RenderEvery,
		stepped && !e.sim.Running(),
		animating, settled:
		e.publish()
	}
	return stepped || animating || settled
}

func (e *Engine) maybeAutoFit() {
	if e.autoFitted || e.cfg.AutoFitDelay < 0 || e.firstFrame.IsZero() {
		return
	}
	if e.now().Sub(e.firstFrame) < e.cfg.AutoFitDelay {
		return
	}
	e.autoFitted = true
	e.fit()
}

// publish projects the current state and swaps it in.
func (e *Engine) publish() {
	in := render.Input{
		Positions: e.store.Positions(),
		Links:     e.store.Links(),
		Labels:    e.labels,
		Topology:  e.store,
		Transform: e.view.Transform(),
		Size:      e.view.Size(),
		State:     e.ctl.State(),
	}
	f := e.proj.Project(in)
	f.Alpha = e.sim.Alpha()
	f.Running = e.sim.Running()
	f.Tick = e.sim.Ticks()
	e.frame.Store(f)
	e.sinceRender = 0

	if e.firstFrame.IsZero() && !f.Empty() {
		e.firstFrame = e.now()
	}
}

// Frame returns the most recently published frame. It never blocks.
func (e *Engine) Frame() *render.Frame {
	return e.frame.Load()
}

// PointerDown forwards a press at screen point p.
func (e *Engine) PointerDown(p r2.Vec) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ctl.PointerDown(p)
	e.publish()
}

// PointerMove forwards pointer motion.
func (e *Engine) PointerMove(p r2.Vec) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ctl.PointerMove(p)
	e.publish()
}

// PointerUp forwards a release.
func (e *Engine) PointerUp(p r2.Vec) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ctl.PointerUp(p)
	e.publish()
}

// PointerCancel ends any gesture without a click and clears hover, as when
// the pointer leaves the canvas.
func (e *Engine) PointerCancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ctl.PointerCancel()
	e.ctl.PointerLeave(e.ctl.State().Hovered)
	e.publish()
}

// Wheel zooms around screen point at. Positive notches scroll down and zoom
// out.
func (e *Engine) Wheel(notches float64, at r2.Vec) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.view.ZoomBy(-notches*e.cfg.Viewport.ZoomStep, at)
	e.publish()
}

// Select sets the selection directly.
func (e *Engine) Select(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.store.Has(id) {
		return
	}
	e.ctl.Select(id)
	e.publish()
}

// ClearSelection deselects.
func (e *Engine) ClearSelection() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ctl.ClearSelection()
	e.publish()
}

// SetCursor turns on the cursor field at screen point p.
func (e *Engine) SetCursor(p r2.Vec) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sim.SetCursor(e.view.Transform().Invert(p))
}

// ClearCursor turns the cursor field off.
func (e *Engine) ClearCursor() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sim.ClearCursor()
}

// FitToView animates the viewport to frame every finite node. It reports
// false, leaving the view alone, when there is nothing to frame.
func (e *Engine) FitToView() (viewport.Transform, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.autoFitted = true
	return e.fit()
}

func (e *Engine) fit() (viewport.Transform, bool) {
	positions := e.store.Positions()
	points := make([]r2.Vec, 0, len(positions))
	for _, p := range positions {
		points = append(points, r2.Vec{X: p.X, Y: p.Y})
	}
	t, ok := e.view.Fit(points)
	if ok {
		e.publish()
	}
	return t, ok
}

// Reheat raises the temperature so the layout moves again.
func (e *Engine) Reheat() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sim.Reheat()
}

// AutoLayout scatters every unpinned node over the scatter box and reheats.
func (e *Engine) AutoLayout() {
	e.mu.Lock()
	defer e.mu.Unlock()
	c := e.store.Center()
	half := r2.Vec{X: e.cfg.ScatterSize.W / 2, Y: e.cfg.ScatterSize.H / 2}
	e.sim.Scatter(r2.Sub(c, half), r2.Add(c, half))
	e.publish()
}

// SetZoom sets the scale around the viewport center.
func (e *Engine) SetZoom(k float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.view.SetZoom(k)
	e.publish()
}

// ZoomIn zooms one step in.
func (e *Engine) ZoomIn() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.view.ZoomIn()
	e.publish()
}

// ZoomOut zooms one step out.
func (e *Engine) ZoomOut() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.view.ZoomOut()
	e.publish()
}

// PanBy moves the content by screen pixels.
func (e *Engine) PanBy(dx, dy float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.view.PanBy(dx, dy)
	e.publish()
}

// PanTo sets the translation.
func (e *Engine) PanTo(x, y float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.view.PanTo(x, y)
	e.publish()
}

// Focus animates so node id sits at the viewport center. It reports whether
// the node is tracked and finite.
func (e *Engine) Focus(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	b, ok := e.store.Body(id)
	if !ok || !b.Finite() {
		return false
	}
	e.view.Focus(b.Pos())
	e.publish()
	return true
}

// Resize changes the canvas size. The world is not moved; call FitToView to
// re-frame.
func (e *Engine) Resize(s viewport.Size) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.view.Resize(s)
	e.publish()
}

// SetVariant switches the render skin by name.
func (e *Engine) SetVariant(name string) error {
	v, err := render.VariantByName(name)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.proj.SetVariant(v.WithNodeRadius(e.cfg.NodeRadius))
	e.publish()
	return nil
}

// State returns the interaction state.
func (e *Engine) State() interact.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ctl.State()
}

// Alpha returns the simulation temperature.
func (e *Engine) Alpha() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sim.Alpha()
}

// Running reports whether the simulation is still stepping.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sim.Running()
}

// Positions returns a copy of every tracked node position.
func (e *Engine) Positions() []layout.Position {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Positions()
}

// Transform returns the current viewport transform.
func (e *Engine) Transform() viewport.Transform {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.view.Transform()
}
