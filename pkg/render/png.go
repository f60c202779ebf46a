package render

import (
	"bytes"
	"math"

	"github.com/fogleman/gg"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/haplonet/pkg/errors"
	"github.com/matzehuels/haplonet/pkg/geom"
	"github.com/matzehuels/haplonet/pkg/scene"
)

// RenderPNG rasterizes the snapshot. The image is the output frame scaled
// by the WithScale factor.
func RenderPNG(s scene.Snapshot, opts ...Option) ([]byte, error) {
	o := newOptions(opts)
	if o.scale <= 0 || math.IsNaN(o.scale) || math.IsInf(o.scale, 0) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "png scale must be positive, got %v", o.scale)
	}
	f := newFrame(s, o)
	w, h := int(math.Ceil(f.size.X*o.scale)), int(math.Ceil(f.size.Y*o.scale))

	dc := gg.NewContext(w, h)
	if o.background != "" {
		dc.SetHexColor(o.background)
		dc.Clear()
	}
	dc.Scale(o.scale, o.scale)

	if o.haploweb {
		dc.SetHexColor(DefaultWebColor)
		dc.SetLineWidth(1)
		dc.SetDash(4, 3)
		for _, l := range s.Web {
			a, okA := s.Node(l.A)
			b, okB := s.Node(l.B)
			if !okA || !okB {
				continue
			}
			pngQuad(dc, webArc(f.at(a.Pos), f.at(b.Pos)))
			dc.Stroke()
		}
		dc.SetDash()
	}

	for _, e := range s.Edges {
		if !e.Hidden {
			pngEdge(dc, f, e, o)
		}
	}
	for _, n := range s.Nodes {
		pngNode(dc, f, n, o)
	}

	dc.SetHexColor(o.stroke)
	for _, n := range s.Nodes {
		pngLabel(dc, f, n.Label)
	}
	for _, e := range s.Edges {
		pngLabel(dc, f, e.Label)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode png")
	}
	return buf.Bytes(), nil
}

func pngQuad(dc *gg.Context, q geom.Quad) {
	dc.NewSubPath()
	dc.MoveTo(q.P0.X, q.P0.Y)
	dc.QuadraticTo(q.C.X, q.C.Y, q.P1.X, q.P1.Y)
}

func pngEdge(dc *gg.Context, f frame, e scene.EdgeView, o options) {
	dc.SetHexColor(edgeColor(e, o))
	dc.SetLineWidth(1.5)
	pngQuad(dc, f.quad(e.Visible))
	dc.Stroke()
	for _, t := range e.Ticks {
		p := f.at(t.Pos)
		if t.Length == 0 {
			dc.DrawCircle(p.X, p.Y, dotRadius)
			dc.Fill()
			continue
		}
		a, b := strike(scene.Tick{Pos: p, Dir: t.Dir, Length: t.Length})
		dc.DrawLine(a.X, a.Y, b.X, b.Y)
		dc.Stroke()
	}
}

// pieAngle converts a clockwise-from-twelve pie angle to gg's angle, which
// runs from three o'clock towards +Y.
func pieAngle(a float64) float64 { return a - math.Pi/2 }

func pngNode(dc *gg.Context, f frame, n scene.NodeView, o options) {
	c := f.at(n.Pos)
	if n.Vertex || len(n.Slices) == 0 {
		dc.SetHexColor(n.Fill)
		dc.DrawCircle(c.X, c.Y, n.Radius)
		dc.Fill()
	} else {
		for _, sl := range n.Slices {
			dc.SetHexColor(sl.Color)
			pngWedge(dc, c, n.Radius, sl.Wedge)
			dc.Fill()
		}
	}
	outline := o.stroke
	if n.Selected {
		outline = DefaultSelection
	}
	dc.SetHexColor(outline)
	dc.SetLineWidth(1)
	dc.DrawCircle(c.X, c.Y, n.Radius)
	dc.Stroke()
}

func pngWedge(dc *gg.Context, c r2.Vec, r float64, w geom.Wedge) {
	if w.Span >= geom.FullTurn-geom.Epsilon {
		dc.DrawCircle(c.X, c.Y, r)
		return
	}
	dc.NewSubPath()
	dc.MoveTo(c.X, c.Y)
	dc.DrawArc(c.X, c.Y, r, pieAngle(w.Start), pieAngle(w.End()))
	dc.ClosePath()
}

func pngLabel(dc *gg.Context, f frame, l *scene.LabelView) {
	if l == nil || l.Text == "" {
		return
	}
	c := f.at(l.Center)
	if l.Rotation != 0 {
		dc.Push()
		dc.RotateAbout(gg.Radians(l.Rotation), c.X, c.Y)
		dc.DrawStringAnchored(l.Text, c.X, c.Y, 0.5, 0.5)
		dc.Pop()
		return
	}
	dc.DrawStringAnchored(l.Text, c.X, c.Y, 0.5, 0.5)
}
