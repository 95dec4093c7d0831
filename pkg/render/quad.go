package render

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"
)

// Quad is a quadratic Bézier curve from P0 to P1 bent toward C.
type Quad struct {
	P0, C, P1 r2.Vec
}

// Curve builds the edge curve between s and t. The control point is the
// midpoint pushed sideways by curvature times the edge vector rotated a
// quarter turn, so every edge bends the same way relative to its direction.
func Curve(s, t r2.Vec, curvature float64) Quad {
	dx, dy := t.X-s.X, t.Y-s.Y
	c := r2.Vec{
		X: (s.X+t.X)/2 + dy*curvature,
		Y: (s.Y+t.Y)/2 - dx*curvature,
	}
	return Quad{P0: s, C: c, P1: t}
}

// At evaluates the curve at t in [0, 1].
func (q Quad) At(t float64) r2.Vec {
	u := 1 - t
	return r2.Add(r2.Add(r2.Scale(u*u, q.P0), r2.Scale(2*u*t, q.C)), r2.Scale(t*t, q.P1))
}

// Tangent returns the derivative at t.
func (q Quad) Tangent(t float64) r2.Vec {
	return r2.Add(r2.Scale(2*(1-t), r2.Sub(q.C, q.P0)), r2.Scale(2*t, r2.Sub(q.P1, q.C)))
}

// Sample returns n+1 evenly spaced points along the curve, endpoints
// included.
func (q Quad) Sample(n int) []r2.Vec {
	if n < 1 {
		n = 1
	}
	out := make([]r2.Vec, n+1)
	for i := 0; i <= n; i++ {
		out[i] = q.At(float64(i) / float64(n))
	}
	return out
}

// Length approximates the arc length with a 16-segment polyline.
func (q Quad) Length() float64 {
	pts := q.Sample(16)
	var l float64
	for i := 1; i < len(pts); i++ {
		l += r2.Norm(r2.Sub(pts[i], pts[i-1]))
	}
	return l
}

// SVGPath formats the curve as SVG path data.
func (q Quad) SVGPath() string {
	return fmt.Sprintf("M %.2f,%.2f Q %.2f,%.2f %.2f,%.2f", q.P0.X, q.P0.Y, q.C.X, q.C.Y, q.P1.X, q.P1.Y)
}

func (q Quad) finite() bool {
	return finite(q.P0) && finite(q.C) && finite(q.P1)
}
