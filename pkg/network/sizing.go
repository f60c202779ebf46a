package network

import (
	"math"

	"github.com/matzehuels/haplonet/pkg/errors"
)

// Default radius parameters. With these a node of frequency 1 is about 7.6
// units across and each doubling of frequency adds 10.
const (
	DefaultRadiusA      = 10
	DefaultRadiusB      = 2
	DefaultRadiusC      = 0.2
	DefaultRadiusD      = 1
	DefaultRadiusE      = 0
	DefaultRadiusF      = 5
	DefaultVertexRadius = 2.5
)

// Sizing maps a node's frequency to its radius:
//
//	r(x) = A·log_B(C·x + D) + E·x + F
//
// Zero-frequency nodes get VertexRadius. Setting A or C to zero drops the
// logarithmic term.
type Sizing struct {
	A, B, C, D, E, F float64
	VertexRadius     float64
}

// DefaultSizing returns the default radius function.
func DefaultSizing() Sizing {
	return Sizing{
		A: DefaultRadiusA, B: DefaultRadiusB, C: DefaultRadiusC,
		D: DefaultRadiusD, E: DefaultRadiusE, F: DefaultRadiusF,
		VertexRadius: DefaultVertexRadius,
	}
}

// Validate checks that the function is defined and non-decreasing for all
// non-negative weights.
func (s Sizing) Validate() error {
	for _, v := range []float64{s.A, s.B, s.C, s.D, s.E, s.F, s.VertexRadius} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.New(errors.ErrCodeInvalidConfig, "radius parameters must be finite")
		}
	}
	if s.logTerm() {
		if s.B <= 0 || s.B == 1 {
			return errors.New(errors.ErrCodeInvalidConfig, "radius log base must be positive and not 1")
		}
		if s.D <= 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "radius offset D must be positive")
		}
		if s.C < 0 || (s.A < 0) != (s.B < 1) {
			return errors.New(errors.ErrCodeInvalidConfig, "radius function must not decrease with weight")
		}
	}
	if s.E < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "radius slope E must not be negative")
	}
	if s.VertexRadius <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "vertex radius must be positive")
	}
	return nil
}

func (s Sizing) logTerm() bool { return s.A != 0 && s.C != 0 }

// Radius returns the radius for a node of weight w. The result is always
// finite and at least VertexRadius.
func (s Sizing) Radius(w float64) float64 {
	if w <= 0 || math.IsNaN(w) {
		return s.VertexRadius
	}
	r := s.E*w + s.F
	if s.logTerm() {
		r += s.A * math.Log(s.C*w+s.D) / math.Log(s.B)
	}
	if math.IsNaN(r) || math.IsInf(r, 0) || r < s.VertexRadius {
		return s.VertexRadius
	}
	return r
}
