package render

import (
	"bytes"
	"fmt"
	"math"

	svg "github.com/ajstarks/svgo"

	"github.com/matzehuels/haplonet/pkg/scene"
)

// RenderSVG draws the snapshot as an SVG document.
func RenderSVG(s scene.Snapshot, opts ...Option) []byte {
	o := newOptions(opts)
	f := newFrame(s, o)

	var buf bytes.Buffer
	canvas := svg.New(&buf)
	w, h := int(math.Ceil(f.size.X)), int(math.Ceil(f.size.Y))
	canvas.Start(w, h)
	if o.title != "" {
		canvas.Title(o.title)
	}
	if o.background != "" {
		canvas.Rect(0, 0, w, h, "fill:"+o.background)
	}

	if o.haploweb {
		canvas.Gid("haploweb")
		for _, l := range s.Web {
			a, okA := s.Node(l.A)
			b, okB := s.Node(l.B)
			if !okA || !okB {
				continue
			}
			canvas.Path(quadPath(webArc(f.at(a.Pos), f.at(b.Pos))),
				fmt.Sprintf("fill:none;stroke:%s;stroke-width:1;stroke-dasharray:4,3", DefaultWebColor))
		}
		canvas.Gend()
	}

	canvas.Gid("edges")
	for _, e := range s.Edges {
		if e.Hidden {
			continue
		}
		svgEdge(canvas, f, e, o)
	}
	canvas.Gend()

	canvas.Gid("nodes")
	for _, n := range s.Nodes {
		svgNode(canvas, f, n, o)
	}
	canvas.Gend()

	canvas.Gid("labels")
	for _, n := range s.Nodes {
		svgLabel(canvas, f, n.Label, o)
	}
	for _, e := range s.Edges {
		svgLabel(canvas, f, e.Label, o)
	}
	canvas.Gend()

	if o.legend {
		svgLegend(canvas, s, o)
	}
	canvas.End()
	return buf.Bytes()
}

func svgEdge(canvas *svg.SVG, f frame, e scene.EdgeView, o options) {
	color := edgeColor(e, o)
	canvas.Path(quadPath(f.quad(e.Visible)),
		fmt.Sprintf("fill:none;stroke:%s;stroke-width:1.5", color))
	for _, t := range e.Ticks {
		p := f.at(t.Pos)
		if t.Length == 0 {
			canvas.Circle(round(p.X), round(p.Y), dotRadius, "fill:"+color)
			continue
		}
		a, b := strike(scene.Tick{Pos: p, Dir: t.Dir, Length: t.Length})
		canvas.Path(fmt.Sprintf("M%.2f,%.2f L%.2f,%.2f", a.X, a.Y, b.X, b.Y),
			fmt.Sprintf("stroke:%s;stroke-width:1.5", color))
	}
}

func svgNode(canvas *svg.SVG, f frame, n scene.NodeView, o options) {
	c := f.at(n.Pos)
	outline := o.stroke
	if n.Selected {
		outline = DefaultSelection
	}
	if n.Vertex || len(n.Slices) == 0 {
		canvas.Path(wedgePath(c, n.Radius, fullWedge),
			fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1", n.Fill, outline))
		return
	}
	canvas.Group(fmt.Sprintf(`id="node-%s"`, n.ID))
	for _, sl := range n.Slices {
		canvas.Path(wedgePath(c, n.Radius, sl.Wedge), "stroke:none;fill:"+sl.Color)
	}
	canvas.Path(wedgePath(c, n.Radius, fullWedge),
		fmt.Sprintf("fill:none;stroke:%s;stroke-width:1", outline))
	canvas.Gend()
}

func svgLabel(canvas *svg.SVG, f frame, l *scene.LabelView, o options) {
	if l == nil || l.Text == "" {
		return
	}
	c := f.at(l.Center)
	// Text is anchored on its baseline; shift by a third of the font size to
	// centre it vertically.
	x, y := round(c.X), round(c.Y+o.fontSize/3)
	style := fmt.Sprintf("text-anchor:middle;font-family:sans-serif;font-size:%.0fpx;fill:%s", o.fontSize, o.stroke)
	if l.Rotation != 0 {
		canvas.Gtransform(fmt.Sprintf("rotate(%.2f,%d,%d)", l.Rotation, round(c.X), round(c.Y)))
		canvas.Text(x, y, l.Text, style)
		canvas.Gend()
		return
	}
	canvas.Text(x, y, l.Text, style)
}

func svgLegend(canvas *svg.SVG, s scene.Snapshot, o options) {
	if len(s.Groups) == 0 {
		return
	}
	size := int(o.fontSize)
	canvas.Gid("legend")
	for i, g := range s.Groups {
		y := size/2 + i*(size+size/2)
		canvas.Rect(size/2, y, size, size, fmt.Sprintf("fill:%s;stroke:%s", g.Color, o.stroke))
		canvas.Text(2*size, y+size-2, g.Name,
			fmt.Sprintf("font-family:sans-serif;font-size:%dpx;fill:%s", size, o.stroke))
	}
	canvas.Gend()
}

func round(v float64) int { return int(math.Round(v)) }

