package scene

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/haplonet/pkg/geom"
	"github.com/matzehuels/haplonet/pkg/network"
)

func edgeView(t *testing.T, c *Controller, id network.EdgeID) EdgeView {
	t.Helper()
	v, ok := c.Snapshot().Edge(id)
	if !ok {
		t.Fatalf("edge %d missing from snapshot", id)
	}
	return v
}

func TestTicks(t *testing.T) {
	tests := []struct {
		name     string
		style    network.EdgeStyle
		weight   int
		want     network.EdgeStyle
		ticks    int
		overflow bool
	}{
		{"BubblesSingle", network.StyleBubbles, 1, network.StyleBubbles, 0, false},
		{"Bubbles", network.StyleBubbles, 3, network.StyleBubbles, 2, false},
		{"BubblesPastCutoff", network.StyleBubbles, 5, network.StyleDotsWithText, 0, false},
		{"Bars", network.StyleBars, 3, network.StyleBars, 3, false},
		{"Collapsed", network.StyleBars, 9, network.StyleCollapsed, 2, false},
		{"Plain", network.StylePlain, 2, network.StylePlain, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := controller(t, pair(t, 200), configWith(func(c *Config) { c.EdgeStyle = tt.style }))
			id, err := c.Connect("a", "b", tt.weight)
			if err != nil {
				t.Fatal(err)
			}
			v := edgeView(t, c, id)
			if v.Style != tt.want {
				t.Errorf("style = %s, want %s", v.Style, tt.want)
			}
			if len(v.Ticks) != tt.ticks {
				t.Errorf("ticks = %d, want %d", len(v.Ticks), tt.ticks)
			}
			if v.Overflow != tt.overflow || v.Hidden {
				t.Errorf("overflow = %v, hidden = %v", v.Overflow, v.Hidden)
			}
			for _, tick := range v.Ticks {
				if math.Abs(tick.Pos.Y) > 1e-6 || tick.Pos.X <= v.Visible.P0.X || tick.Pos.X >= v.Visible.P1.X {
					t.Errorf("tick %v outside the visible edge", tick.Pos)
				}
			}
		})
	}
}

func TestBubblesAreEvenlySpaced(t *testing.T) {
	c := controller(t, pair(t, 200), DefaultConfig())
	id, err := c.Connect("a", "b", 3)
	if err != nil {
		t.Fatal(err)
	}
	v := edgeView(t, c, id)
	length := v.Visible.P1.X - v.Visible.P0.X
	for k, tick := range v.Ticks {
		want := v.Visible.P0.X + length*float64(k+1)/3
		if math.Abs(tick.Pos.X-want) > 0.5 {
			t.Errorf("tick %d at x=%v, want %v", k, tick.Pos.X, want)
		}
	}
}

func TestOverflowAndHidden(t *testing.T) {
	r := network.DefaultSizing().Radius(1)

	c := controller(t, pair(t, 2*r+10), DefaultConfig())
	id, err := c.Connect("a", "b", 3)
	if err != nil {
		t.Fatal(err)
	}
	if v := edgeView(t, c, id); !v.Overflow || v.Hidden {
		t.Errorf("short edge: overflow = %v, hidden = %v", v.Overflow, v.Hidden)
	}

	c = controller(t, pair(t, r), DefaultConfig())
	id, err = c.Connect("a", "b", 5)
	if err != nil {
		t.Fatal(err)
	}
	if v := edgeView(t, c, id); !v.Hidden || len(v.Ticks) != 0 {
		t.Errorf("overlapping nodes: hidden = %v, ticks = %d", v.Hidden, len(v.Ticks))
	}
	if _, ok := c.Label(EdgeLabelRef(id)); ok {
		t.Error("hidden edge has a label")
	}
}

func TestSnapshotNodes(t *testing.T) {
	n, err := network.BuildFromTree([]network.TreeEntry{
		{ID: "r", Weight: 4, Subdivisions: []network.Subdivision{{Name: "x", Weight: 3}}, Members: []string{"m1"}},
		{ID: "v", Parent: "r", Mutations: 1},
		{ID: "l", Parent: "v", Mutations: 1, Weight: 1, Members: []string{"m1"}},
	}, network.Options{})
	if err != nil {
		t.Fatal(err)
	}
	c := controller(t, n, configWith(func(c *Config) { c.Haploweb = true }))
	c.Relayout()
	c.Settle(settleSteps)
	if err := c.Select(NodeRef("l")); err != nil {
		t.Fatal(err)
	}
	snap := c.Snapshot()

	r, _ := snap.Node("r")
	if len(r.Slices) != 2 || r.Slices[1].Name != network.UnknownSlice || r.Slices[1].Color != r.Fill {
		t.Errorf("root slices = %+v", r.Slices)
	}
	if r.Label == nil || r.Label.Text != "r" {
		t.Errorf("root label = %+v", r.Label)
	}
	v, _ := snap.Node("v")
	if !v.Vertex || v.Label != nil || v.Radius != n.Sizing().VertexRadius {
		t.Errorf("vertex view = %+v", v)
	}
	l, _ := snap.Node("l")
	if !l.Selected || r.Selected {
		t.Error("selection not reflected")
	}
	if len(snap.Web) != 1 || snap.Web[0].A != "r" || snap.Web[0].B != "l" {
		t.Errorf("web = %+v", snap.Web)
	}
	for _, node := range snap.Nodes {
		box := geom.CircleBox(node.Pos, node.Radius)
		if box.Min.X < snap.Bounds.Min.X || box.Max.Y > snap.Bounds.Max.Y {
			t.Errorf("node %s outside bounds %+v", node.ID, snap.Bounds)
		}
	}
	if len(snap.Groups) != 1 || snap.Groups[0].Name != "x" {
		t.Errorf("groups = %+v", snap.Groups)
	}
}

func TestLabelsDeclutter(t *testing.T) {
	n, err := network.BuildFromGraph(
		[]network.GraphNode{{ID: "alpha", Weight: 1}, {ID: "bravo", Weight: 1}},
		nil, network.Options{},
	)
	if err != nil {
		t.Fatal(err)
	}
	n.SetPos("alpha", r2.Vec{})
	n.SetPos("bravo", r2.Vec{X: 4})
	c := controller(t, n, DefaultConfig())

	a, _ := c.Label(NodeLabelRef("alpha"))
	b, _ := c.Label(NodeLabelRef("bravo"))
	if geom.Overlap(a.Box(), b.Box()) {
		t.Errorf("labels overlap: %+v %+v", a, b)
	}

	c2 := controller(t, n.Clone(), configWith(func(c *Config) { c.HideNodeLabels = true }))
	if _, ok := c2.Label(NodeLabelRef("alpha")); ok {
		t.Error("hidden node label shown")
	}
}
