package scene

import (
	"unicode/utf8"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/haplonet/pkg/geom"
	"github.com/matzehuels/haplonet/pkg/network"
)

// Text metrics used to size labels without a font.
const (
	charWidth  = 0.6
	lineHeight = 1.2
)

// Offset returns the curvature offset of edge id: its apex distance from
// the chord, measured along the left normal of From→To. Parallel edges get
// symmetric distinct offsets in creation order.
func (c *Controller) Offset(id network.EdgeID) float64 {
	e := c.net.Edge(id)
	if e == nil {
		return 0
	}
	i, n := c.net.Parallel(id)
	off := network.CurvatureSlot(i, n) * c.cfg.CurvatureSpacing
	if e.From != e.Pair().A {
		off = -off
	}
	return off
}

// curve returns the centre-to-centre curve of e.
func (c *Controller) curve(e *network.Edge) geom.Quad {
	a := c.net.Node(e.From).Pos
	b := c.net.Node(e.To).Pos
	return geom.Bend(a, b, c.Offset(e.ID))
}

// visible returns the part of e drawn between the node boundaries.
func (c *Controller) visible(e *network.Edge) (geom.Quad, bool) {
	return c.curve(e).Trim(c.net.Radius(e.From), c.net.Radius(e.To))
}

// edgeFrame returns the unit tangent and left normal at the middle of e.
func (c *Controller) edgeFrame(e *network.Edge) (t, n r2.Vec) {
	t = c.curve(e).Tangent(0.5)
	return t, geom.Perp(t)
}

func (c *Controller) style(e *network.Edge) network.EdgeStyle {
	s := e.Style
	if s == "" {
		s = c.cfg.EdgeStyle
	}
	return s.Resolve(e.Weight, c.cfg.EdgeCutoff)
}

func (c *Controller) textSize(text string) r2.Vec {
	n := float64(utf8.RuneCountInString(text))
	return r2.Vec{
		X: c.cfg.FontSize*charWidth*n + 2*c.cfg.LabelPadding,
		Y: c.cfg.FontSize*lineHeight + 2*c.cfg.LabelPadding,
	}
}

// ticks places the mutation marks of an edge along its visible curve.
func (c *Controller) ticks(style network.EdgeStyle, weight int, q geom.Quad) (ticks []Tick, overflow bool) {
	length := q.Length()
	at := func(s float64, size float64) Tick {
		t := q.AtLength(s)
		return Tick{Pos: q.At(t), Dir: q.Tangent(t), Length: size}
	}
	spacing := c.cfg.TickSpacing
	switch style {
	case network.StyleBubbles:
		if weight < 2 {
			return nil, false
		}
		for k := 1; k < weight; k++ {
			ticks = append(ticks, at(length*float64(k)/float64(weight), 0))
		}
		return ticks, float64(weight-1)*spacing > length
	case network.StyleBars:
		mid := (float64(weight) - 1) / 2
		for k := 0; k < weight; k++ {
			ticks = append(ticks, at(length/2+(float64(k)-mid)*spacing, c.cfg.BarLength))
		}
		return ticks, float64(weight-1)*spacing > length
	case network.StyleCollapsed:
		return []Tick{
			at(length/2-spacing/2, c.cfg.BarLength),
			at(length/2+spacing/2, c.cfg.BarLength),
		}, spacing > length
	}
	return nil, false
}

// refresh re-places labels when anything changed since the last call.
func (c *Controller) refresh() {
	if !c.dirty && c.labels != nil {
		return
	}
	c.dirty = false

	var (
		refs  []Ref
		views []LabelView
		boxes []geom.LabelBox
	)
	add := func(r Ref, v LabelView) {
		refs = append(refs, r)
		views = append(views, v)
		boxes = append(boxes, geom.LabelBox{Center: v.Center, Size: v.Size, Pinned: v.Moved || c.dragged(r)})
	}

	if !c.cfg.HideNodeLabels {
		for _, node := range c.net.Nodes() {
			if node.IsVertex() {
				continue
			}
			r := NodeLabelRef(node.ID)
			text := network.NodeLabel(c.cfg.NodeTemplate, node)
			add(r, LabelView{
				Text:     text,
				Center:   r2.Add(node.Pos, c.labelOffset(r, node.Label)),
				Size:     c.textSize(text),
				Rotation: node.Label.Rotation,
				Moved:    node.Label.Moved,
			})
		}
	}
	if !c.cfg.HideEdgeLabels {
		for _, e := range c.net.Edges() {
			if !c.style(e).HasText() {
				continue
			}
			q, ok := c.visible(e)
			if !ok {
				continue
			}
			r := EdgeLabelRef(e.ID)
			t, n := c.edgeFrame(e)
			off := c.labelOffset(r, e.Label)
			text := network.EdgeLabel(c.cfg.EdgeTemplate, e)
			add(r, LabelView{
				Text:     text,
				Center:   r2.Add(q.At(0.5), r2.Add(r2.Scale(off.X, t), r2.Scale(off.Y, n))),
				Size:     c.textSize(text),
				Rotation: e.Label.Rotation,
				Moved:    e.Label.Moved,
			})
		}
	}

	nudges := geom.Declutter(boxes, c.cfg.LabelRadius, c.cfg.LabelIterations)
	c.labels = make(map[Ref]LabelView, len(refs))
	for i, r := range refs {
		v := views[i]
		v.Center = r2.Add(v.Center, nudges[i])
		c.labels[r] = v
	}
}

// labelOffset returns the stored offset of a label, or the live one while
// it is being dragged.
func (c *Controller) labelOffset(r Ref, l network.Label) r2.Vec {
	if c.dragged(r) {
		return c.drag.offset
	}
	return l.Offset
}

func (c *Controller) dragged(r Ref) bool { return c.drag != nil && c.drag.ref == r }

// Label returns the placed label of a node or edge, if it is shown.
func (c *Controller) Label(r Ref) (LabelView, bool) {
	c.refresh()
	v, ok := c.labels[r]
	return v, ok
}
