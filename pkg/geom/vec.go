package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Epsilon is the smallest distance treated as non-zero.
const Epsilon = 1e-9

// V is shorthand for constructing a vector.
func V(x, y float64) r2.Vec { return r2.Vec{X: x, Y: y} }

// Finite reports whether both components are finite numbers.
func Finite(v r2.Vec) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b r2.Vec) float64 {
	return r2.Norm(r2.Sub(b, a))
}

// Perp returns v rotated by +90 degrees.
func Perp(v r2.Vec) r2.Vec { return r2.Vec{X: -v.Y, Y: v.X} }

// Lerp interpolates linearly between a (t=0) and b (t=1).
func Lerp(a, b r2.Vec, t float64) r2.Vec {
	return r2.Add(a, r2.Scale(t, r2.Sub(b, a)))
}

// SafeUnit returns the unit vector of v, or fallback when v is too short
// to have a meaningful direction.
func SafeUnit(v, fallback r2.Vec) r2.Vec {
	n := r2.Norm(v)
	if n < Epsilon || math.IsNaN(n) || math.IsInf(n, 0) {
		return fallback
	}
	return r2.Scale(1/n, v)
}

// Direction returns a deterministic unit vector for index i, spreading
// successive indices around the circle by the golden angle. Used to break
// ties between coincident points.
func Direction(i int) r2.Vec {
	const golden = 2.399963229728653
	a := float64(i) * golden
	return r2.Vec{X: math.Cos(a), Y: math.Sin(a)}
}

// ClampNorm scales v down so its length does not exceed max.
func ClampNorm(v r2.Vec, max float64) r2.Vec {
	n := r2.Norm(v)
	if n <= max || n == 0 {
		return v
	}
	return r2.Scale(max/n, v)
}

// Angle returns the direction of v in radians.
func Angle(v r2.Vec) float64 { return math.Atan2(v.Y, v.X) }

// Polar returns the point at distance r from c in direction theta.
func Polar(c r2.Vec, r, theta float64) r2.Vec {
	return r2.Vec{X: c.X + r*math.Cos(theta), Y: c.Y + r*math.Sin(theta)}
}
