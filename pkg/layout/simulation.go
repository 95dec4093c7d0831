package layout

import (
	"math/rand"

	"github.com/vanderheijden86/entropy/pkg/debug"
	"github.com/vanderheijden86/entropy/pkg/metrics"

	"gonum.org/v1/gonum/spatial/r2"
)

// Simulation is the force integrator. Each Tick computes forces from a
// snapshot of the previous positions and then integrates every node with a
// damped Euler step. The temperature alpha scales all forces except
// collision and decays toward alphaTarget; once it drops under AlphaMin the
// simulation stops stepping until restarted or reheated.
//
// Simulation is not safe for concurrent use.
type Simulation struct {
	cfg   Config
	store *Store
	rng   *rand.Rand

	alpha       float64
	alphaTarget float64
	stopped     bool
	ticks       int

	cursor    r2.Vec
	hasCursor bool

	snap []sample
}

// sample is the read-phase copy of one live body.
type sample struct {
	body   *Body
	pos    r2.Vec
	force  r2.Vec
	pinned bool
}

// NewSimulation creates a simulation over store, starting hot.
func NewSimulation(store *Store, cfg Config) *Simulation {
	return &Simulation{
		cfg:   cfg,
		store: store,
		rng:   rand.New(rand.NewSource(cfg.Seed + 1)),
		alpha: 1,
	}
}

// Config returns the force constants in use.
func (s *Simulation) Config() Config { return s.cfg }

// Store returns the spatial model the simulation writes to.
func (s *Simulation) Store() *Store { return s.store }

// Alpha returns the current temperature.
func (s *Simulation) Alpha() float64 { return s.alpha }

// AlphaTarget returns the temperature alpha decays toward.
func (s *Simulation) AlphaTarget() float64 { return s.alphaTarget }

// Ticks returns the number of steps taken.
func (s *Simulation) Ticks() int { return s.ticks }

// SetAlpha sets the temperature directly.
func (s *Simulation) SetAlpha(a float64) {
	if a < 0 {
		a = 0
	}
	s.alpha = a
}

// SetAlphaTarget sets the temperature alpha decays toward. Dragging uses a
// positive target to keep the layout live; releasing sets it back to zero.
func (s *Simulation) SetAlphaTarget(a float64) {
	if a < 0 {
		a = 0
	}
	s.alphaTarget = a
}

// Running reports whether the next Tick will step.
func (s *Simulation) Running() bool { return !s.stopped }

// Restart resumes stepping without touching alpha.
func (s *Simulation) Restart() { s.stopped = false }

// Stop halts stepping immediately.
func (s *Simulation) Stop() { s.stopped = true }

// Reheat raises alpha to ReheatAlpha and resumes stepping.
func (s *Simulation) Reheat() {
	s.alpha = s.cfg.ReheatAlpha
	s.stopped = false
}

// Pin fixes a node at (x, y).
func (s *Simulation) Pin(id string, x, y float64) bool { return s.store.Pin(id, x, y) }

// Unpin releases a node.
func (s *Simulation) Unpin(id string) bool { return s.store.Unpin(id) }

// SetCursor enables the cursor field at world point p and nudges alpha so
// nearby nodes respond.
func (s *Simulation) SetCursor(p r2.Vec) {
	s.cursor = p
	s.hasCursor = true
	if s.alpha < s.cfg.CursorAlpha {
		s.alpha = s.cfg.CursorAlpha
	}
	s.stopped = false
}

// ClearCursor disables the cursor field.
func (s *Simulation) ClearCursor() { s.hasCursor = false }

// Scatter re-seeds unpinned nodes inside [min, max] and reheats.
func (s *Simulation) Scatter(min, max r2.Vec) {
	s.store.Scatter(min, max)
	s.Reheat()
}

// Energy returns the sum of squared velocities of finite nodes.
func (s *Simulation) Energy() float64 {
	var e float64
	for _, b := range s.store.bodies {
		if b.Finite() && isFinite(b.VX) && isFinite(b.VY) {
			e += b.VX*b.VX + b.VY*b.VY
		}
	}
	return e
}

// Tick advances the simulation by one step. It returns false without doing
// anything when the simulation is stopped or there are no nodes.
func (s *Simulation) Tick() bool {
	if s.stopped {
		return false
	}
	if len(s.store.bodies) == 0 {
		s.stopped = true
		return false
	}
	defer metrics.Timer(metrics.Tick)()

	s.alpha += (s.alphaTarget - s.alpha) * s.cfg.AlphaDecay

	s.read()
	s.applyCharge()
	s.applyLinks()
	s.applyCenter()
	s.applyAxes()
	s.applyCursor()
	s.applyCollide()
	s.write()

	s.ticks++
	if s.alpha < s.cfg.AlphaMin {
		s.stopped = true
		debug.Log("layout: cooled after %d ticks (alpha %.4f)", s.ticks, s.alpha)
	}
	return true
}

// read copies the previous tick's positions of every finite body. Forces are
// accumulated against these copies only. A non-finite body snaps its pinned
// axes first and rejoins once both coordinates are finite again.
func (s *Simulation) read() {
	s.snap = s.snap[:0]
	for _, b := range s.store.bodies {
		if !b.Finite() {
			snapToPin(b)
			if !b.Finite() {
				continue
			}
		}
		s.snap = append(s.snap, sample{body: b, pos: b.Pos(), pinned: b.Pinned()})
	}
}

// write integrates the accumulated forces. Pinned axes snap to the pin and
// carry no velocity.
func (s *Simulation) write() {
	keep := s.cfg.VelocityRetention
	for i := range s.snap {
		sm := &s.snap[i]
		b := sm.body
		if b.FX != nil {
			b.X, b.VX = *b.FX, 0
		} else {
			b.VX = (b.VX + sm.force.X) * keep
			b.X += b.VX
		}
		if b.FY != nil {
			b.Y, b.VY = *b.FY, 0
		} else {
			b.VY = (b.VY + sm.force.Y) * keep
			b.Y += b.VY
		}
		if !b.Finite() {
			debug.Log("layout: node %s went non-finite", b.ID)
		}
	}
}

// snapToPin moves the pinned axes of b onto their pins with no velocity.
func snapToPin(b *Body) {
	if b.FX != nil {
		b.X, b.VX = *b.FX, 0
	}
	if b.FY != nil {
		b.Y, b.VY = *b.FY, 0
	}
}

// jiggle returns a tiny random vector used to separate coincident points.
func (s *Simulation) jiggle() r2.Vec {
	return r2.Vec{X: (s.rng.Float64() - 0.5) * 1e-6, Y: (s.rng.Float64() - 0.5) * 1e-6}
}

// nonZero returns v, or a jiggle when v is the zero vector.
func (s *Simulation) nonZero(v r2.Vec) r2.Vec {
	if v.X == 0 && v.Y == 0 {
		return s.jiggle()
	}
	return v
}
