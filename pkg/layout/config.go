package layout

import (
	"math"

	"github.com/matzehuels/haplonet/pkg/errors"
)

// Default tuning. They are calibrated for the default radius function,
// which yields radii between 2.5 and roughly 100 for typical frequencies.
const (
	DefaultRepulsion     = 5.0
	DefaultSpring        = 0.1
	DefaultCentering     = 0.05
	DefaultEdgeLength    = 20.0
	DefaultEpsilon       = 1e-3
	DefaultMaxIterations = 2000
	DefaultMaxStep       = 10.0
	DefaultMinDistance   = 0.5
)

// Seeding selects the initial placement.
type Seeding string

// Seeding modes.
const (
	// SeedAuto picks SeedRadial for networks built from a tree and
	// SeedCircular otherwise.
	SeedAuto     Seeding = "auto"
	SeedRadial   Seeding = "radial"
	SeedCircular Seeding = "circular"
	SeedRandom   Seeding = "random"
)

// Config tunes the relaxation.
type Config struct {
	Repulsion  float64 // pairwise repulsion constant
	Spring     float64 // edge spring constant
	Centering  float64 // fraction of the centroid offset removed per step
	EdgeLength float64 // target gap per mutation

	Epsilon       float64 // convergence threshold on the largest displacement
	MaxIterations int     // soft cap per relaxation run
	MaxStep       float64 // largest displacement of one node in one step
	MinDistance   float64 // distance floor for force computation

	Seeding Seeding
	Seed    int64 // noise seed for SeedRandom and degenerate recovery
}

// DefaultConfig returns the default tuning.
func DefaultConfig() Config {
	return Config{
		Repulsion:     DefaultRepulsion,
		Spring:        DefaultSpring,
		Centering:     DefaultCentering,
		EdgeLength:    DefaultEdgeLength,
		Epsilon:       DefaultEpsilon,
		MaxIterations: DefaultMaxIterations,
		MaxStep:       DefaultMaxStep,
		MinDistance:   DefaultMinDistance,
		Seeding:       SeedAuto,
	}
}

// WithDefaults returns c with defaults in the zero fields that have no
// meaning of their own. Repulsion, Centering and EdgeLength are kept as
// given, since zero switches the force or the per-mutation gap off; start
// from DefaultConfig to get their default values.
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	if c.Spring == 0 {
		c.Spring = d.Spring
	}
	if c.Epsilon == 0 {
		c.Epsilon = d.Epsilon
	}
	if c.MaxIterations == 0 {
		c.MaxIterations = d.MaxIterations
	}
	if c.MaxStep == 0 {
		c.MaxStep = d.MaxStep
	}
	if c.MinDistance == 0 {
		c.MinDistance = d.MinDistance
	}
	if c.Seeding == "" {
		c.Seeding = d.Seeding
	}
	return c
}

// Validate checks that every constant is finite and in range.
func (c Config) Validate() error {
	for name, v := range map[string]float64{
		"repulsion":    c.Repulsion,
		"spring":       c.Spring,
		"centering":    c.Centering,
		"edge length":  c.EdgeLength,
		"epsilon":      c.Epsilon,
		"max step":     c.MaxStep,
		"min distance": c.MinDistance,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "layout %s must be a finite non-negative number, got %v", name, v)
		}
	}
	if c.Spring <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "layout spring must be positive")
	}
	if c.Centering >= 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "layout centering must be below 1, got %v", c.Centering)
	}
	if c.Epsilon <= 0 || c.MaxStep <= 0 || c.MinDistance <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "layout epsilon, max step and min distance must be positive")
	}
	if c.MaxIterations <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "layout max iterations must be positive, got %d", c.MaxIterations)
	}
	switch c.Seeding {
	case SeedAuto, SeedRadial, SeedCircular, SeedRandom:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown seeding %q", c.Seeding)
	}
	return nil
}
