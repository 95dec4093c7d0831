package layout

import (
	"math"

	"github.com/vanderheijden86/entropy/pkg/debug"

	"gonum.org/v1/gonum/spatial/barneshut"
	"gonum.org/v1/gonum/spatial/r2"
)

// linkBias is the share of a link's correction applied to each endpoint.
// Every node has unit mass, so the split is even.
const linkBias = 0.5

// chargeAt returns the many-body contribution on a node from a body of mass m
// offset by v, using the inverse distance form with a floor and a cutoff.
func (s *Simulation) chargeAt(v r2.Vec, m float64) r2.Vec {
	l := r2.Norm2(v)
	if dmax := s.cfg.DistanceMax; dmax > 0 && l >= dmax*dmax {
		return r2.Vec{}
	}
	if min2 := s.cfg.DistanceMin * s.cfg.DistanceMin; l < min2 {
		l = math.Sqrt(min2 * l)
	}
	if l == 0 {
		return r2.Vec{}
	}
	return r2.Scale(s.cfg.Charge*m*s.alpha/l, v)
}

func (s *Simulation) applyCharge() {
	if s.cfg.Charge == 0 || len(s.snap) < 2 {
		return
	}
	if s.cfg.Theta > 0 && len(s.snap) >= s.cfg.BarnesHutMin {
		err := s.chargeBarnesHut()
		if err == nil {
			return
		}
		debug.Log("layout: barnes-hut failed, using exact repulsion: %v", err)
	}
	s.chargeExact()
}

// chargeExact sums every pair once and applies the result to both ends.
func (s *Simulation) chargeExact() {
	for i := range s.snap {
		a := &s.snap[i]
		for j := i + 1; j < len(s.snap); j++ {
			b := &s.snap[j]
			v := r2.Sub(b.pos, a.pos)
			if v.X == 0 && v.Y == 0 {
				v = s.jiggle()
			}
			f := s.chargeAt(v, 1)
			a.force = r2.Add(a.force, f)
			b.force = r2.Sub(b.force, f)
		}
	}
}

// particle adapts a snapshot entry to the barneshut tree.
type particle struct {
	pos r2.Vec
}

func (p *particle) Coord2() r2.Vec { return p.pos }
func (p *particle) Mass() float64  { return 1 }

// chargeBarnesHut approximates the many-body force with a quadtree. Points
// that land on the same coordinate are nudged apart first since the tree
// cannot split them.
func (s *Simulation) chargeBarnesHut() error {
	particles := make([]*particle, len(s.snap))
	bodies := make([]barneshut.Particle2, len(s.snap))
	seen := make(map[r2.Vec]bool, len(s.snap))
	for i := range s.snap {
		p := s.snap[i].pos
		for seen[p] {
			p = r2.Add(p, s.jiggle())
		}
		seen[p] = true
		particles[i] = &particle{pos: p}
		bodies[i] = particles[i]
	}
	plane, err := barneshut.NewPlane(bodies)
	if err != nil {
		return err
	}
	force := func(p1, p2 barneshut.Particle2, _, m2 float64, v r2.Vec) r2.Vec {
		if p1 == p2 || (v.X == 0 && v.Y == 0) {
			return r2.Vec{}
		}
		return s.chargeAt(v, m2)
	}
	for i, p := range particles {
		s.snap[i].force = r2.Add(s.snap[i].force, plane.ForceOn(p, s.cfg.Theta, force))
	}
	return nil
}

// applyLinks pulls the endpoints of every active link toward LinkDistance.
func (s *Simulation) applyLinks() {
	if s.cfg.LinkStrength == 0 {
		return
	}
	idx := s.indexSnapshot()
	for _, l := range s.store.links {
		si, ok1 := idx[l.source]
		ti, ok2 := idx[l.target]
		if !ok1 || !ok2 {
			continue
		}
		k := l.Strength * s.cfg.LinkStrength
		if k == 0 {
			continue
		}
		src, dst := &s.snap[si], &s.snap[ti]
		v := s.nonZero(r2.Sub(dst.pos, src.pos))
		d := r2.Norm(v)
		f := r2.Scale((d-s.cfg.LinkDistance)/d*s.alpha*k, v)
		dst.force = r2.Sub(dst.force, r2.Scale(linkBias, f))
		src.force = r2.Add(src.force, r2.Scale(1-linkBias, f))
	}
}

func (s *Simulation) indexSnapshot() map[*Body]int {
	idx := make(map[*Body]int, len(s.snap))
	for i := range s.snap {
		idx[s.snap[i].body] = i
	}
	return idx
}

// applyCenter nudges every node by the offset between the centroid and the
// configured center.
func (s *Simulation) applyCenter() {
	if s.cfg.CenterStrength == 0 || len(s.snap) == 0 {
		return
	}
	var sum r2.Vec
	for i := range s.snap {
		sum = r2.Add(sum, s.snap[i].pos)
	}
	mean := r2.Scale(1/float64(len(s.snap)), sum)
	shift := r2.Scale(s.cfg.CenterStrength*s.alpha, r2.Sub(s.store.center, mean))
	for i := range s.snap {
		s.snap[i].force = r2.Add(s.snap[i].force, shift)
	}
}

// applyAxes pulls each node toward the vertical and horizontal lines through
// the center.
func (s *Simulation) applyAxes() {
	if s.cfg.AxisStrength == 0 {
		return
	}
	k := s.cfg.AxisStrength * s.alpha
	c := s.store.center
	for i := range s.snap {
		sm := &s.snap[i]
		sm.force.X += (c.X - sm.pos.X) * k
		sm.force.Y += (c.Y - sm.pos.Y) * k
	}
}

// applyCursor repels nodes near the cursor point.
func (s *Simulation) applyCursor() {
	if !s.hasCursor || s.cfg.CursorCharge == 0 {
		return
	}
	r2max := s.cfg.CursorRadius * s.cfg.CursorRadius
	for i := range s.snap {
		sm := &s.snap[i]
		v := r2.Sub(s.cursor, sm.pos)
		l := r2.Norm2(v)
		if l >= r2max {
			continue
		}
		if l < 1 {
			v = s.nonZero(v)
			l = 1
		}
		sm.force = r2.Add(sm.force, r2.Scale(s.cfg.CursorCharge*s.alpha/l, v))
	}
}

// applyCollide separates overlapping nodes. It is not scaled by alpha, so
// overlap keeps resolving while the layout cools. Candidate pairs come from a
// uniform grid with cells one diameter wide.
func (s *Simulation) applyCollide() {
	r := s.cfg.CollideRadius
	if r <= 0 || s.cfg.CollideStrength == 0 || len(s.snap) < 2 {
		return
	}
	diam := 2 * r
	type cell struct{ x, y int64 }
	key := func(p r2.Vec) cell {
		return cell{int64(math.Floor(p.X / diam)), int64(math.Floor(p.Y / diam))}
	}
	grid := make(map[cell][]int, len(s.snap))
	for i := range s.snap {
		k := key(s.snap[i].pos)
		grid[k] = append(grid[k], i)
	}
	for i := range s.snap {
		a := &s.snap[i]
		k := key(a.pos)
		for dx := int64(-1); dx <= 1; dx++ {
			for dy := int64(-1); dy <= 1; dy++ {
				for _, j := range grid[cell{k.x + dx, k.y + dy}] {
					if j <= i {
						continue
					}
					b := &s.snap[j]
					v := r2.Sub(a.pos, b.pos)
					d2 := r2.Norm2(v)
					if d2 >= diam*diam {
						continue
					}
					v = s.nonZero(v)
					d := r2.Norm(v)
					push := r2.Scale((diam-d)/d*s.cfg.CollideStrength*0.5, v)
					a.force = r2.Add(a.force, push)
					b.force = r2.Sub(b.force, push)
				}
			}
		}
	}
}
