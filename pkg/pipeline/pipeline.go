// Package pipeline runs haplonet's import → layout → render pipeline.
//
// The CLI uses this package for every batch command. By centralizing the
// stages we get the same caching, logging and validation whether a scene is
// computed from a raw description or re-rendered from a saved document.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Import: read a tree, graph or edge-list description (and optionally a
//     partition file) into a network
//  2. Layout: relax the network to equilibrium inside a scene controller
//  3. Render: draw the scene's snapshot in each requested format
//
// Layouts are cached as scene documents keyed by the hash of the input
// bytes and the tuning; artifacts are cached by the hash of the scene
// document and the render options.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Input:   "haplotypes.json",
//	    Formats: []string{"svg"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	doc, hit, err := runner.Layout(ctx, opts)
//	artifacts, hit, err := runner.Render(ctx, ctrl, opts)
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/haplonet/pkg/cache"
	"github.com/matzehuels/haplonet/pkg/document"
	pkgio "github.com/matzehuels/haplonet/pkg/io"
	"github.com/matzehuels/haplonet/pkg/network"
	"github.com/matzehuels/haplonet/pkg/render"
	"github.com/matzehuels/haplonet/pkg/scene"
)

// Defaults applied by SetDefaults.
const (
	// DefaultMaxSteps caps the total relaxation work of one batch layout,
	// counted in layout steps. The layout's own MaxIterations normally
	// stops it much earlier.
	DefaultMaxSteps = 1_000_000

	DefaultMargin   = render.DefaultMargin
	DefaultScale    = render.DefaultScale
	DefaultFontSize = render.DefaultFontSize
)

// Options contains all configuration for a pipeline run.
type Options struct {
	// Import options
	Input     string       `json:"input"`
	Format    pkgio.Format `json:"format,omitempty"`
	Partition string       `json:"partition,omitempty"`
	Network   network.Options

	// Layout options
	Scene    scene.Config
	MaxSteps int  `json:"max_steps,omitempty"`
	Refresh  bool `json:"refresh,omitempty"`
	Title    string

	// Render options
	Formats    []string `json:"formats,omitempty"`
	Margin     float64  `json:"margin,omitempty"`
	Scale      float64  `json:"scale,omitempty"`
	FontSize   float64  `json:"font_size,omitempty"`
	Background string   `json:"background,omitempty"`
	Haploweb   bool     `json:"haploweb,omitempty"`
	Legend     bool     `json:"legend,omitempty"`

	Logger *log.Logger `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Document is the settled scene, ready to be saved.
	Document *document.Document

	// InputHash is the content hash of the input and partition files.
	InputHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	Iterations int
	ImportTime time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the settled scene came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	_, err := render.ParseFormat(format)
	return err
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// SetDefaults fills zero fields. An all-zero Scene becomes
// [scene.DefaultConfig]. It is idempotent.
func (o *Options) SetDefaults() {
	if o.Scene == (scene.Config{}) {
		o.Scene = scene.DefaultConfig()
	}
	if o.MaxSteps == 0 {
		o.MaxSteps = DefaultMaxSteps
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{string(render.FormatSVG)}
	}
	if o.Margin == 0 {
		o.Margin = DefaultMargin
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.FontSize == 0 {
		o.FontSize = DefaultFontSize
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout checks the options used by the import and layout
// stages.
func (o *Options) ValidateForLayout() error {
	o.SetDefaults()
	if o.Input == "" {
		return fmt.Errorf("input is required")
	}
	if o.MaxSteps < 0 {
		return fmt.Errorf("max_steps must be positive, got %d", o.MaxSteps)
	}
	return o.Scene.WithDefaults().Validate()
}

// ValidateForRender checks the options used by the render stage.
func (o *Options) ValidateForRender() error {
	o.SetDefaults()
	if o.Margin < 0 {
		return fmt.Errorf("margin must not be negative, got %v", o.Margin)
	}
	if o.Scale <= 0 {
		return fmt.Errorf("scale must be positive, got %v", o.Scale)
	}
	return ValidateFormats(o.Formats)
}

// LayoutKeyOpts returns cache key options for the layout stage.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	cfg := o.Scene.WithDefaults()
	return cache.LayoutKeyOpts{
		Format:  string(o.Format),
		Network: o.Network,
		Layout:  cfg.Layout,
	}
}

// ArtifactKeyOpts returns cache key options for one rendered format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{
		Format:     format,
		Margin:     o.Margin,
		FontSize:   o.FontSize,
		Background: o.Background,
		Haploweb:   o.Haploweb,
		Legend:     o.Legend,
		Title:      o.Title,
	}
	if format == string(render.FormatPNG) {
		k.Scale = o.Scale
	}
	return k
}

// RenderOptions converts the render fields to renderer options.
func (o *Options) RenderOptions() []render.Option {
	opts := []render.Option{
		render.WithMargin(o.Margin),
		render.WithScale(o.Scale),
		render.WithFontSize(o.FontSize),
	}
	if o.Background != "" {
		opts = append(opts, render.WithBackground(o.Background))
	}
	if o.Haploweb {
		opts = append(opts, render.WithHaploweb())
	}
	if o.Legend {
		opts = append(opts, render.WithLegend())
	}
	if o.Title != "" {
		opts = append(opts, render.WithTitle(o.Title))
	}
	return opts
}
