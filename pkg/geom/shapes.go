package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// CircleBox returns the bounding box of a circle.
func CircleBox(c r2.Vec, r float64) r2.Box {
	return r2.Box{
		Min: r2.Vec{X: c.X - r, Y: c.Y - r},
		Max: r2.Vec{X: c.X + r, Y: c.Y + r},
	}
}

// CenteredBox returns a box of the given size centered on c.
func CenteredBox(c, size r2.Vec) r2.Box {
	h := r2.Scale(0.5, size)
	return r2.Box{Min: r2.Sub(c, h), Max: r2.Add(c, h)}
}

// Bounds returns the union of boxes. The zero Box is returned for no input.
func Bounds(boxes ...r2.Box) r2.Box {
	if len(boxes) == 0 {
		return r2.Box{}
	}
	out := boxes[0]
	for _, b := range boxes[1:] {
		out.Min.X = math.Min(out.Min.X, b.Min.X)
		out.Min.Y = math.Min(out.Min.Y, b.Min.Y)
		out.Max.X = math.Max(out.Max.X, b.Max.X)
		out.Max.Y = math.Max(out.Max.Y, b.Max.Y)
	}
	return out
}

// Pad grows b by d on every side.
func Pad(b r2.Box, d float64) r2.Box {
	return r2.Box{
		Min: r2.Vec{X: b.Min.X - d, Y: b.Min.Y - d},
		Max: r2.Vec{X: b.Max.X + d, Y: b.Max.Y + d},
	}
}

// Overlap reports whether two boxes share interior area.
func Overlap(a, b r2.Box) bool {
	return a.Min.X < b.Max.X && b.Min.X < a.Max.X &&
		a.Min.Y < b.Max.Y && b.Min.Y < a.Max.Y
}

// Center returns the center of b.
func Center(b r2.Box) r2.Vec {
	return r2.Scale(0.5, r2.Add(b.Min, b.Max))
}

// Size returns the width and height of b.
func Size(b r2.Box) r2.Vec {
	return r2.Sub(b.Max, b.Min)
}

// TrimSegment returns the part of the segment a→b lying outside the circles
// of radius ra around a and rb around b. ok is false when the circles
// overlap and no visible segment remains.
func TrimSegment(a r2.Vec, ra float64, b r2.Vec, rb float64) (start, end r2.Vec, ok bool) {
	d := Distance(a, b)
	if d <= ra+rb || d < Epsilon {
		return a, b, false
	}
	u := r2.Scale(1/d, r2.Sub(b, a))
	return r2.Add(a, r2.Scale(ra, u)), r2.Sub(b, r2.Scale(rb, u)), true
}

// FullTurn is one full revolution in radians.
const FullTurn = 2 * math.Pi

// Wedge is an angular slice of a circle, in radians, measured clockwise
// from twelve o'clock as pie charts are conventionally drawn.
type Wedge struct {
	Start float64
	Span  float64
}

// End returns the end angle of the wedge.
func (w Wedge) End() float64 { return w.Start + w.Span }

// WedgePoint returns the point on the circle (c, r) at pie angle a.
func WedgePoint(c r2.Vec, r, a float64) r2.Vec {
	return r2.Vec{X: c.X + r*math.Sin(a), Y: c.Y - r*math.Cos(a)}
}
