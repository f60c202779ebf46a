package geom

import "gonum.org/v1/gonum/spatial/r2"

// Quad is a quadratic Bézier curve from P0 to P1 with control point C.
// A straight segment is represented with C at the chord midpoint.
type Quad struct {
	P0, C, P1 r2.Vec
}

// Bend returns the curve from a to b whose control point is displaced from
// the chord midpoint by offset along the chord's left normal. The curve's
// apex sits at half the control displacement, so the control point is
// placed at twice the requested offset.
func Bend(a, b r2.Vec, offset float64) Quad {
	mid := Lerp(a, b, 0.5)
	n := Perp(SafeUnit(r2.Sub(b, a), r2.Vec{X: 1}))
	return Quad{P0: a, C: r2.Add(mid, r2.Scale(2*offset, n)), P1: b}
}

// At evaluates the curve at parameter t in [0, 1].
func (q Quad) At(t float64) r2.Vec {
	u := 1 - t
	p := r2.Scale(u*u, q.P0)
	p = r2.Add(p, r2.Scale(2*u*t, q.C))
	return r2.Add(p, r2.Scale(t*t, q.P1))
}

// Tangent returns the unit tangent at parameter t.
func (q Quad) Tangent(t float64) r2.Vec {
	d := r2.Add(
		r2.Scale(2*(1-t), r2.Sub(q.C, q.P0)),
		r2.Scale(2*t, r2.Sub(q.P1, q.C)),
	)
	return SafeUnit(d, SafeUnit(r2.Sub(q.P1, q.P0), r2.Vec{X: 1}))
}

// curveSamples is the polyline resolution used for arc-length queries.
const curveSamples = 32

// Length approximates the arc length of the curve.
func (q Quad) Length() float64 {
	var l float64
	prev := q.P0
	for i := 1; i <= curveSamples; i++ {
		p := q.At(float64(i) / curveSamples)
		l += Distance(prev, p)
		prev = p
	}
	return l
}

// AtLength returns the curve parameter whose arc length from P0 is s,
// clamped to [0, 1].
func (q Quad) AtLength(s float64) float64 {
	if s <= 0 {
		return 0
	}
	var l float64
	prev := q.P0
	for i := 1; i <= curveSamples; i++ {
		t := float64(i) / curveSamples
		p := q.At(t)
		seg := Distance(prev, p)
		if l+seg >= s && seg > 0 {
			return t - (1-(s-l)/seg)/curveSamples
		}
		l += seg
		prev = p
	}
	return 1
}

// Trim returns the sub-curve outside circles of radius ra around P0 and rb
// around P1, approximated by re-bending between the trimmed endpoints.
// ok is false when nothing of the curve remains visible.
func (q Quad) Trim(ra, rb float64) (Quad, bool) {
	total := q.Length()
	if total <= ra+rb {
		return q, false
	}
	t0 := q.AtLength(ra)
	t1 := q.AtLength(total - rb)
	a, b := q.At(t0), q.At(t1)
	// Evaluate the control of the sub-curve [t0, t1] by blossoming.
	c := r2.Add(
		r2.Scale(1-t0, Lerp(q.P0, q.C, t1)),
		r2.Scale(t0, Lerp(q.C, q.P1, t1)),
	)
	return Quad{P0: a, C: c, P1: b}, true
}
