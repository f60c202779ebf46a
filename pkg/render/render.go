package render

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/haplonet/pkg/errors"
	"github.com/matzehuels/haplonet/pkg/geom"
	"github.com/matzehuels/haplonet/pkg/scene"
)

// Format names an output format.
type Format string

// Output formats.
const (
	FormatSVG  Format = "svg"
	FormatPNG  Format = "png"
	FormatDOT  Format = "dot"
	FormatJSON Format = "json"

	// FormatNeato is SVG drawn by Graphviz from the pinned DOT graph.
	FormatNeato Format = "neato.svg"
)

// Formats lists the supported output formats.
var Formats = []Format{FormatSVG, FormatPNG, FormatDOT, FormatNeato, FormatJSON}

// Defaults for options left unset.
const (
	DefaultMargin     = 20.0
	DefaultScale      = 2.0
	DefaultFontSize   = 12.0
	DefaultStroke     = "#222222"
	DefaultSelection  = "#ff8c00"
	DefaultWebColor   = "#7f7f7f"
	DefaultBackground = ""
	dotRadius         = 2
)

// Option configures rendering.
type Option func(*options)

type options struct {
	margin     float64
	scale      float64
	fontSize   float64
	background string
	stroke     string
	haploweb   bool
	legend     bool
	title      string
}

func newOptions(opts []Option) options {
	o := options{
		margin:     DefaultMargin,
		scale:      DefaultScale,
		fontSize:   DefaultFontSize,
		background: DefaultBackground,
		stroke:     DefaultStroke,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithMargin sets the blank border around the drawing.
func WithMargin(m float64) Option { return func(o *options) { o.margin = m } }

// WithScale sets the raster scale factor for PNG output.
func WithScale(s float64) Option { return func(o *options) { o.scale = s } }

// WithFontSize sets the label font size.
func WithFontSize(s float64) Option { return func(o *options) { o.fontSize = s } }

// WithBackground fills the frame with a color. Empty leaves it transparent.
func WithBackground(c string) Option { return func(o *options) { o.background = c } }

// WithStroke sets the outline and edge color.
func WithStroke(c string) Option { return func(o *options) { o.stroke = c } }

// WithHaploweb draws shared-member links.
func WithHaploweb() Option { return func(o *options) { o.haploweb = true } }

// WithLegend draws a group color legend in the top-left corner.
func WithLegend() Option { return func(o *options) { o.legend = true } }

// WithTitle sets the document title where the format supports one.
func WithTitle(t string) Option { return func(o *options) { o.title = t } }

// Render renders the snapshot in the given format.
func Render(s scene.Snapshot, format Format, opts ...Option) ([]byte, error) {
	switch format {
	case FormatSVG:
		return RenderSVG(s, opts...), nil
	case FormatPNG:
		return RenderPNG(s, opts...)
	case FormatDOT:
		return []byte(ToDOT(s, opts...)), nil
	case FormatNeato:
		return RenderDOT(context.Background(), ToDOT(s, opts...))
	case FormatJSON:
		return RenderJSON(s, opts...)
	}
	return nil, errors.New(errors.ErrCodeUnsupported, "unsupported output format %q", format)
}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", errors.New(errors.ErrCodeUnsupported, "unsupported output format %q", s)
}

// frame maps scene coordinates into the output.
type frame struct {
	origin r2.Vec
	size   r2.Vec
}

func newFrame(s scene.Snapshot, o options) frame {
	b := geom.Pad(s.Bounds, o.margin)
	size := geom.Size(b)
	return frame{origin: b.Min, size: r2.Vec{X: math.Max(size.X, 1), Y: math.Max(size.Y, 1)}}
}

func (f frame) at(p r2.Vec) r2.Vec { return r2.Sub(p, f.origin) }

// wedgePath returns an SVG path for a pie wedge. A full turn is drawn as
// two half arcs since a single arc cannot close on itself.
func wedgePath(c r2.Vec, r float64, w geom.Wedge) string {
	if w.Span >= geom.FullTurn-geom.Epsilon {
		top := geom.WedgePoint(c, r, 0)
		bottom := geom.WedgePoint(c, r, math.Pi)
		return fmt.Sprintf("M%.2f,%.2f A%.2f,%.2f 0 1 1 %.2f,%.2f A%.2f,%.2f 0 1 1 %.2f,%.2f Z",
			top.X, top.Y, r, r, bottom.X, bottom.Y, r, r, top.X, top.Y)
	}
	a := geom.WedgePoint(c, r, w.Start)
	b := geom.WedgePoint(c, r, w.End())
	large := 0
	if w.Span > math.Pi {
		large = 1
	}
	return fmt.Sprintf("M%.2f,%.2f L%.2f,%.2f A%.2f,%.2f 0 %d 1 %.2f,%.2f Z",
		c.X, c.Y, a.X, a.Y, r, r, large, b.X, b.Y)
}

var fullWedge = geom.Wedge{Span: geom.FullTurn}

func quadPath(q geom.Quad) string {
	return fmt.Sprintf("M%.2f,%.2f Q%.2f,%.2f %.2f,%.2f", q.P0.X, q.P0.Y, q.C.X, q.C.Y, q.P1.X, q.P1.Y)
}

func (f frame) quad(q geom.Quad) geom.Quad {
	return geom.Quad{P0: f.at(q.P0), C: f.at(q.C), P1: f.at(q.P1)}
}

// strike returns the endpoints of a tick drawn across the edge.
func strike(t scene.Tick) (r2.Vec, r2.Vec) {
	n := r2.Scale(t.Length/2, geom.Perp(t.Dir))
	return r2.Sub(t.Pos, n), r2.Add(t.Pos, n)
}

// webArc bends a haploweb link away from the straight edge between the
// same nodes.
func webArc(a, b r2.Vec) geom.Quad {
	return geom.Bend(a, b, 0.2*geom.Distance(a, b))
}

func edgeColor(e scene.EdgeView, o options) string {
	if e.Selected {
		return DefaultSelection
	}
	return o.stroke
}
