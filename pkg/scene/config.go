package scene

import (
	"math"
	"time"

	"github.com/matzehuels/haplonet/pkg/errors"
	"github.com/matzehuels/haplonet/pkg/layout"
	"github.com/matzehuels/haplonet/pkg/network"
)

// Default tuning, as returned by DefaultConfig.
const (
	DefaultStepInterval     = 16 * time.Millisecond
	DefaultMaxStepsPerFrame = 8
	DefaultLabelRadius      = 80.0
	DefaultLabelIterations  = 8
	DefaultLabelPadding     = 4.0
	DefaultFontSize         = 12.0
	DefaultCurvatureSpacing = 24.0
	DefaultEdgeCutoff       = 3
	DefaultTickSpacing      = 6.0
	DefaultBarLength        = 12.0
	DefaultHistoryLimit     = 256
)

// Config tunes the controller.
type Config struct {
	Layout layout.Config

	// StepInterval is the simulated time one layout step stands for.
	StepInterval time.Duration
	// MaxStepsPerFrame bounds the work done by one Advance call.
	MaxStepsPerFrame int

	// LabelRadius limits declutter to labels whose centers are this close.
	LabelRadius     float64
	LabelIterations int
	LabelPadding    float64
	FontSize        float64

	// CurvatureSpacing is the apex distance between neighboring parallel
	// edges.
	CurvatureSpacing float64

	EdgeStyle   network.EdgeStyle
	EdgeCutoff  int
	TickSpacing float64
	BarLength   float64

	NodeTemplate   string
	EdgeTemplate   string
	HideNodeLabels bool
	HideEdgeLabels bool

	// Haploweb adds links between nodes sharing members to snapshots.
	Haploweb bool

	// DragRecursive makes a node drag carry the node's subtree along.
	DragRecursive bool
	// DragRotational makes a node drag swing the node around its parent
	// instead of translating it. Roots always translate.
	DragRotational bool

	HistoryLimit int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Layout:           layout.DefaultConfig(),
		StepInterval:     DefaultStepInterval,
		MaxStepsPerFrame: DefaultMaxStepsPerFrame,
		LabelRadius:      DefaultLabelRadius,
		LabelIterations:  DefaultLabelIterations,
		LabelPadding:     DefaultLabelPadding,
		FontSize:         DefaultFontSize,
		CurvatureSpacing: DefaultCurvatureSpacing,
		EdgeStyle:        network.StyleBubbles,
		EdgeCutoff:       DefaultEdgeCutoff,
		TickSpacing:      DefaultTickSpacing,
		BarLength:        DefaultBarLength,
		NodeTemplate:     network.DefaultNodeTemplate,
		EdgeTemplate:     network.DefaultEdgeTemplate,
		DragRecursive:    true,
		DragRotational:   true,
		HistoryLimit:     DefaultHistoryLimit,
	}
}

// WithDefaults returns c with defaults in the zero fields that have no
// meaning of their own. Fields where zero is a setting are kept:
// LabelRadius, LabelIterations and LabelPadding (no decluttering), EdgeCutoff
// (styles never switch), HistoryLimit (unbounded) and the drag modes.
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	c.Layout = c.Layout.WithDefaults()
	if c.StepInterval == 0 {
		c.StepInterval = d.StepInterval
	}
	if c.MaxStepsPerFrame == 0 {
		c.MaxStepsPerFrame = d.MaxStepsPerFrame
	}
	if c.FontSize == 0 {
		c.FontSize = d.FontSize
	}
	if c.CurvatureSpacing == 0 {
		c.CurvatureSpacing = d.CurvatureSpacing
	}
	if c.EdgeStyle == "" {
		c.EdgeStyle = d.EdgeStyle
	}
	if c.TickSpacing == 0 {
		c.TickSpacing = d.TickSpacing
	}
	if c.BarLength == 0 {
		c.BarLength = d.BarLength
	}
	if c.NodeTemplate == "" {
		c.NodeTemplate = d.NodeTemplate
	}
	if c.EdgeTemplate == "" {
		c.EdgeTemplate = d.EdgeTemplate
	}
	return c
}

// Validate checks every field.
func (c Config) Validate() error {
	if err := c.Layout.Validate(); err != nil {
		return err
	}
	if c.StepInterval <= 0 || c.MaxStepsPerFrame <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "step interval and steps per frame must be positive")
	}
	for name, v := range map[string]float64{
		"label radius":      c.LabelRadius,
		"label padding":     c.LabelPadding,
		"font size":         c.FontSize,
		"curvature spacing": c.CurvatureSpacing,
		"tick spacing":      c.TickSpacing,
		"bar length":        c.BarLength,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "%s must be a finite non-negative number, got %v", name, v)
		}
	}
	if c.CurvatureSpacing <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "curvature spacing must be positive")
	}
	if c.LabelIterations < 0 || c.EdgeCutoff < 0 || c.HistoryLimit < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "label iterations, edge cutoff and history limit must not be negative")
	}
	if !network.ValidStyles[c.EdgeStyle] {
		return errors.New(errors.ErrCodeInvalidConfig, "unknown edge style %q", c.EdgeStyle)
	}
	return nil
}
