package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// LabelBox is a label's footprint as seen by [Declutter].
type LabelBox struct {
	Center r2.Vec
	Size   r2.Vec

	// Pinned labels take part in collisions but are never moved.
	Pinned bool
}

// Declutter nudges overlapping labels apart.
//
// Only pairs whose centers lie within radius of each other are considered.
// Each overlapping pair is separated along the axis of least penetration,
// split evenly unless one side is pinned. The pass repeats up to iterations
// times or until no pair overlaps. The returned slice holds one
// displacement per input label, in input order; pinned labels always get
// the zero vector.
//
// The result depends only on the input order, so repeated calls with the
// same labels produce identical nudges.
func Declutter(labels []LabelBox, radius float64, iterations int) []r2.Vec {
	nudges := make([]r2.Vec, len(labels))
	if len(labels) < 2 || radius <= 0 {
		return nudges
	}

	pos := make([]r2.Vec, len(labels))
	for i, l := range labels {
		pos[i] = l.Center
	}

	for it := 0; it < iterations; it++ {
		moved := false
		for i := range labels {
			for j := i + 1; j < len(labels); j++ {
				a, b := labels[i], labels[j]
				if a.Pinned && b.Pinned {
					continue
				}
				if Distance(pos[i], pos[j]) > radius {
					continue
				}
				push, ok := separation(pos[i], a.Size, pos[j], b.Size, i+j)
				if !ok {
					continue
				}
				moved = true
				switch {
				case a.Pinned:
					pos[j] = r2.Add(pos[j], push)
				case b.Pinned:
					pos[i] = r2.Sub(pos[i], push)
				default:
					half := r2.Scale(0.5, push)
					pos[i] = r2.Sub(pos[i], half)
					pos[j] = r2.Add(pos[j], half)
				}
			}
		}
		if !moved {
			break
		}
	}

	for i, l := range labels {
		if !l.Pinned {
			nudges[i] = r2.Sub(pos[i], l.Center)
		}
	}
	return nudges
}

// separation returns the displacement that moves box b off box a along the
// axis of least penetration. ok is false when the boxes do not overlap.
func separation(ca, sa, cb, sb r2.Vec, salt int) (r2.Vec, bool) {
	d := r2.Sub(cb, ca)
	ox := (sa.X+sb.X)/2 - math.Abs(d.X)
	oy := (sa.Y+sb.Y)/2 - math.Abs(d.Y)
	if ox <= 0 || oy <= 0 {
		return r2.Vec{}, false
	}
	if math.Abs(d.X) < Epsilon && math.Abs(d.Y) < Epsilon {
		dir := Direction(salt)
		return r2.Scale(math.Min(ox, oy), dir), true
	}
	if ox < oy {
		return r2.Vec{X: math.Copysign(ox, d.X)}, true
	}
	return r2.Vec{Y: math.Copysign(oy, d.Y)}, true
}
