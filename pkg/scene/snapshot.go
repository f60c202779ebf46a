package scene

import (
	"slices"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/haplonet/pkg/geom"
	"github.com/matzehuels/haplonet/pkg/network"
)

// Snapshot is a read-only copy of everything needed to draw the scene.
// It shares no memory with the controller.
type Snapshot struct {
	State  State
	Bounds r2.Box
	Nodes  []NodeView
	Edges  []EdgeView
	Groups []network.Group
	// Web holds shared-member links when Config.Haploweb is set.
	Web       []network.WebLink
	Selection []Ref
}

// NodeView is a node as drawn.
type NodeView struct {
	ID      string
	Names   []string
	Members []string
	Weight  float64
	Pos     r2.Vec
	Radius  float64
	Vertex  bool
	// Fill colors the unknown wedge and vertices.
	Fill     string
	Slices   []network.Slice
	Sets     []string
	Selected bool
	Label    *LabelView
}

// EdgeView is an edge as drawn.
type EdgeView struct {
	ID     network.EdgeID
	From   string
	To     string
	Weight int
	Style  network.EdgeStyle
	// Offset is the curvature offset; zero for a straight edge.
	Offset float64
	// Curve runs centre to centre; Visible is trimmed to the node
	// boundaries and is meaningless when Hidden.
	Curve    geom.Quad
	Visible  geom.Quad
	Hidden   bool
	Overflow bool
	Ticks    []Tick
	Selected bool
	Label    *LabelView
}

// Tick is one mutation mark. Dots have zero Length; bars and strikes are
// drawn across the edge, perpendicular to Dir.
type Tick struct {
	Pos    r2.Vec
	Dir    r2.Vec
	Length float64
}

// LabelView is a placed label.
type LabelView struct {
	Text     string
	Center   r2.Vec
	Size     r2.Vec
	Rotation float64
	Moved    bool
}

// Box returns the label footprint.
func (l LabelView) Box() r2.Box { return geom.CenteredBox(l.Center, l.Size) }

// Snapshot returns the current scene.
func (c *Controller) Snapshot() Snapshot {
	c.refresh()
	s := Snapshot{State: c.state, Selection: c.Selection()}

	var boxes []r2.Box
	label := func(r Ref) *LabelView {
		v, ok := c.labels[r]
		if !ok {
			return nil
		}
		boxes = append(boxes, v.Box())
		return &v
	}

	fill := c.net.Palette().Default
	for _, node := range c.net.Nodes() {
		v := NodeView{
			ID:       node.ID,
			Names:    slices.Clone(node.Names),
			Members:  slices.Clone(node.Members),
			Weight:   node.Weight,
			Pos:      node.Pos,
			Radius:   c.net.Radius(node.ID),
			Vertex:   node.IsVertex(),
			Fill:     fill,
			Slices:   c.net.Pie(node.ID),
			Sets:     slices.Clone(node.Sets),
			Selected: c.Selected(NodeRef(node.ID)),
			Label:    label(NodeLabelRef(node.ID)),
		}
		if node.Color != "" {
			v.Fill = node.Color
		}
		for i := range v.Slices {
			if v.Slices[i].Name == network.UnknownSlice {
				v.Slices[i].Color = v.Fill
			}
		}
		boxes = append(boxes, geom.CircleBox(v.Pos, v.Radius))
		s.Nodes = append(s.Nodes, v)
	}

	for _, e := range c.net.Edges() {
		v := EdgeView{
			ID:       e.ID,
			From:     e.From,
			To:       e.To,
			Weight:   e.Weight,
			Style:    c.style(e),
			Offset:   c.Offset(e.ID),
			Curve:    c.curve(e),
			Selected: c.Selected(EdgeRef(e.ID)),
			Label:    label(EdgeLabelRef(e.ID)),
		}
		q, ok := v.Curve.Trim(c.net.Radius(e.From), c.net.Radius(e.To))
		v.Visible, v.Hidden = q, !ok
		if ok {
			v.Ticks, v.Overflow = c.ticks(v.Style, e.Weight, q)
		}
		s.Edges = append(s.Edges, v)
	}

	for _, g := range c.net.Groups() {
		s.Groups = append(s.Groups, *g.Clone())
	}
	if c.cfg.Haploweb {
		s.Web = c.net.Haploweb()
	}
	s.Bounds = geom.Bounds(boxes...)
	return s
}

// Node returns the view of one node.
func (s Snapshot) Node(id string) (NodeView, bool) {
	i := slices.IndexFunc(s.Nodes, func(v NodeView) bool { return v.ID == id })
	if i < 0 {
		return NodeView{}, false
	}
	return s.Nodes[i], true
}

// Edge returns the view of one edge.
func (s Snapshot) Edge(id network.EdgeID) (EdgeView, bool) {
	i := slices.IndexFunc(s.Edges, func(v EdgeView) bool { return v.ID == id })
	if i < 0 {
		return EdgeView{}, false
	}
	return s.Edges[i], true
}
