package network

import (
	"math"
	"reflect"
	"slices"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/haplonet/pkg/errors"
)

// state captures everything an undo must restore.
type state struct {
	Order  []string
	Nodes  map[string]Node
	Edges  map[EdgeID]Edge
	Groups []Group
}

func capture(n *Network) state {
	s := state{Order: n.NodeIDs(), Nodes: map[string]Node{}, Edges: map[EdgeID]Edge{}}
	for _, node := range n.Nodes() {
		s.Nodes[node.ID] = *node.Clone()
	}
	for _, e := range n.Edges() {
		s.Edges[e.ID] = *e
	}
	for _, g := range n.Groups() {
		s.Groups = append(s.Groups, *g.Clone())
	}
	return s
}

func threeNodeTree(t *testing.T) *Network {
	t.Helper()
	n, err := BuildFromTree([]TreeEntry{
		{ID: "root", Weight: 10, Subdivisions: []Subdivision{{Name: "north", Weight: 6}, {Name: "south", Weight: 3}}},
		{ID: "a", Parent: "root", Mutations: 1, Weight: 5, Subdivisions: []Subdivision{{Name: "north", Weight: 5}}},
		{ID: "b", Parent: "root", Mutations: 1, Weight: 3, Subdivisions: []Subdivision{{Name: "south", Weight: 1}}},
	}, Options{})
	if err != nil {
		t.Fatalf("BuildFromTree: %v", err)
	}
	return n
}

func TestBuildFromTree(t *testing.T) {
	n := threeNodeTree(t)

	if n.Len() != 3 {
		t.Errorf("Len() = %d, want 3", n.Len())
	}
	if n.EdgeCount() != 2 {
		t.Errorf("EdgeCount() = %d, want 2", n.EdgeCount())
	}
	if n.Root() != "root" {
		t.Errorf("Root() = %q, want root", n.Root())
	}
	for _, e := range n.Edges() {
		if e.Weight != 1 {
			t.Errorf("edge %s-%s weight = %d, want 1", e.From, e.To, e.Weight)
		}
		if e.From != "root" {
			t.Errorf("edge %d From = %q, want root", e.ID, e.From)
		}
	}
	if r, ra, rb := n.Radius("root"), n.Radius("a"), n.Radius("b"); !(r > ra && ra > rb) {
		t.Errorf("radii root=%v a=%v b=%v, want strictly decreasing", r, ra, rb)
	}
	if got := n.Node("a").Names; !slices.Equal(got, []string{"a"}) {
		t.Errorf("Names = %v, want [a]", got)
	}

	groups := n.Groups()
	if len(groups) != 2 || groups[0].Name != "north" || groups[1].Name != "south" {
		t.Fatalf("groups = %+v, want north, south", groups)
	}
	if groups[0].Color == groups[1].Color {
		t.Errorf("groups share color %s", groups[0].Color)
	}
}

func TestBuildFromTreeInvalid(t *testing.T) {
	tests := []struct {
		name    string
		entries []TreeEntry
	}{
		{"Empty", nil},
		{"DanglingParent", []TreeEntry{{ID: "r"}, {ID: "a", Parent: "missing"}}},
		{"TwoRoots", []TreeEntry{{ID: "r"}, {ID: "s"}}},
		{"NoRoot", []TreeEntry{{ID: "a", Parent: "b"}, {ID: "b", Parent: "a"}}},
		{"Cycle", []TreeEntry{{ID: "r"}, {ID: "a", Parent: "b"}, {ID: "b", Parent: "a"}}},
		{"SelfParent", []TreeEntry{{ID: "r"}, {ID: "a", Parent: "a"}}},
		{"NegativeWeight", []TreeEntry{{ID: "r", Weight: -1}}},
		{"NegativeDistance", []TreeEntry{{ID: "r"}, {ID: "a", Parent: "r", Mutations: -2}}},
		{"NegativeSubdivision", []TreeEntry{{ID: "r", Subdivisions: []Subdivision{{Name: "x", Weight: -1}}}}},
		{"DuplicateSubdivision", []TreeEntry{{ID: "r", Subdivisions: []Subdivision{{Name: "x"}, {Name: "x"}}}}},
		{"Duplicate", []TreeEntry{{ID: "r"}, {ID: "r", Parent: "r"}}},
		{"EmptyID", []TreeEntry{{ID: ""}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := BuildFromTree(tt.entries, Options{})
			if err == nil {
				t.Fatal("expected error")
			}
			if n != nil {
				t.Error("expected no network on error")
			}
			if !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("code = %s, want INVALID_INPUT (%v)", errors.GetCode(err), err)
			}
		})
	}
}

func TestBuildFromGraph(t *testing.T) {
	n, err := BuildFromGraph(
		[]GraphNode{{ID: "a", Weight: 2}, {ID: "b", Weight: 1}},
		[]GraphEdge{{A: "a", B: "b", Mutations: 1}, {A: "b", B: "c", Mutations: 3}, {A: "a", B: "b", Mutations: 2}},
		Options{},
	)
	if err != nil {
		t.Fatalf("BuildFromGraph: %v", err)
	}
	if got := n.NodeIDs(); !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Errorf("NodeIDs() = %v, want [a b c]", got)
	}
	if n.EdgeCount() != 3 {
		t.Errorf("EdgeCount() = %d, want 3", n.EdgeCount())
	}
	if !n.Node("c").IsVertex() {
		t.Error("edge-only node should be a zero-weight vertex")
	}
	if n.Root() != "" {
		t.Errorf("Root() = %q, want empty", n.Root())
	}
	between := n.Between("b", "a")
	if len(between) != 2 {
		t.Fatalf("Between(b, a) = %d edges, want 2", len(between))
	}
	for i, e := range between {
		idx, count := n.Parallel(e.ID)
		if idx != i || count != 2 {
			t.Errorf("Parallel(%d) = (%d, %d), want (%d, 2)", e.ID, idx, count, i)
		}
	}
	if got := n.Neighbors("b"); !slices.Equal(got, []string{"a", "c"}) {
		t.Errorf("Neighbors(b) = %v", got)
	}
}

func TestBuildFromGraphInvalid(t *testing.T) {
	tests := []struct {
		name  string
		nodes []GraphNode
		edges []GraphEdge
	}{
		{"Empty", nil, nil},
		{"SelfLoop", nil, []GraphEdge{{A: "a", B: "a"}}},
		{"NegativeDistance", nil, []GraphEdge{{A: "a", B: "b", Mutations: -1}}},
		{"NegativeWeight", []GraphNode{{ID: "a", Weight: -3}}, nil},
		{"NaNWeight", []GraphNode{{ID: "a", Weight: math.NaN()}}, nil},
		{"Duplicate", []GraphNode{{ID: "a"}, {ID: "a"}}, nil},
		{"BlankEndpoint", nil, []GraphEdge{{A: "a", B: " "}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildFromGraph(tt.nodes, tt.edges, Options{})
			if !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("err = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestBuildUnknownPalette(t *testing.T) {
	_, err := BuildFromGraph([]GraphNode{{ID: "a"}}, nil, Options{Palette: "nope"})
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("err = %v, want INVALID_CONFIG", err)
	}
}

func TestCurvatureSlot(t *testing.T) {
	tests := []struct {
		count int
		want  []float64
	}{
		{1, []float64{0}},
		{2, []float64{-0.5, 0.5}},
		{3, []float64{-1, 1, 0}},
		{4, []float64{-1.5, 1.5, -0.5, 0.5}},
		{5, []float64{-2, 2, -1, 1, 0}},
	}
	for _, tt := range tests {
		var got []float64
		for i := 0; i < tt.count; i++ {
			got = append(got, CurvatureSlot(i, tt.count))
		}
		if !slices.Equal(got, tt.want) {
			t.Errorf("count %d: slots = %v, want %v", tt.count, got, tt.want)
		}
	}

	for k := 1; k <= 12; k++ {
		seen := map[float64]bool{}
		var sum float64
		for i := 0; i < k; i++ {
			s := CurvatureSlot(i, k)
			if seen[s] {
				t.Errorf("count %d: duplicate slot %v", k, s)
			}
			seen[s] = true
			sum += s
		}
		if math.Abs(sum) > 1e-12 {
			t.Errorf("count %d: slots not symmetric, sum %v", k, sum)
		}
	}
}

func TestPie(t *testing.T) {
	n := threeNodeTree(t)

	pie := n.Pie("root")
	if len(pie) != 3 {
		t.Fatalf("root pie has %d slices, want 3", len(pie))
	}
	if pie[2].Name != UnknownSlice || pie[2].Weight != 1 {
		t.Errorf("unknown slice = %+v, want weight 1", pie[2])
	}
	var total float64
	for _, s := range pie {
		total += s.Span
	}
	if math.Abs(total-2*math.Pi) > 1e-9 {
		t.Errorf("spans sum to %v, want 2π", total)
	}
	if pie[0].Start != 0 || math.Abs(pie[0].Span-2*math.Pi*0.6) > 1e-9 {
		t.Errorf("first slice = %+v", pie[0])
	}

	if got := n.Pie("a"); len(got) != 1 || got[0].Name != "north" {
		t.Errorf("pie(a) = %+v, want a single north slice", got)
	}

	if _, err := n.DeleteGroup("north"); err != nil {
		t.Fatal(err)
	}
	pie = n.Pie("root")
	if len(pie) != 2 || pie[1].Name != UnknownSlice || pie[1].Weight != 7 {
		t.Errorf("after delete, pie(root) = %+v, want south + unknown 7", pie)
	}

	vertex, _ := BuildFromGraph([]GraphNode{{ID: "v"}}, nil, Options{})
	if got := vertex.Pie("v"); got != nil {
		t.Errorf("zero-weight pie = %+v, want nil", got)
	}
}

func TestPieOverfull(t *testing.T) {
	n, err := BuildFromGraph([]GraphNode{{ID: "a", Weight: 1, Subdivisions: []Subdivision{{Name: "x", Weight: 2}, {Name: "y", Weight: 2}}}}, nil, Options{})
	if err != nil {
		t.Fatal(err)
	}
	pie := n.Pie("a")
	if len(pie) != 2 {
		t.Fatalf("pie = %+v, want two slices and no unknown", pie)
	}
	if math.Abs(pie[0].Span-math.Pi) > 1e-9 {
		t.Errorf("span = %v, want π", pie[0].Span)
	}
}

func TestSizing(t *testing.T) {
	s := DefaultSizing()
	if err := s.Validate(); err != nil {
		t.Fatalf("default sizing invalid: %v", err)
	}
	if got := s.Radius(0); got != DefaultVertexRadius {
		t.Errorf("Radius(0) = %v, want %v", got, DefaultVertexRadius)
	}
	prev := 0.0
	for _, w := range []float64{1, 2, 5, 10, 100, 1e6} {
		r := s.Radius(w)
		if r <= prev || math.IsInf(r, 0) {
			t.Errorf("Radius(%v) = %v, not increasing from %v", w, r, prev)
		}
		prev = r
	}
	if got := s.Radius(5); math.Abs(got-15) > 1e-9 {
		t.Errorf("Radius(5) = %v, want 15", got)
	}

	bad := []Sizing{
		{A: 1, B: 1, C: 1, D: 1, VertexRadius: 1},
		{A: 1, B: 2, C: 1, D: 0, VertexRadius: 1},
		{A: 1, B: 2, C: 1, D: 1, E: -1, VertexRadius: 1},
		{A: -1, B: 2, C: 1, D: 1, VertexRadius: 1},
		{A: 1, B: 2, C: 1, D: 1},
		{A: math.NaN(), B: 2, C: 1, D: 1, VertexRadius: 1},
	}
	for i, b := range bad {
		if err := b.Validate(); !errors.Is(err, errors.ErrCodeInvalidConfig) {
			t.Errorf("case %d: Validate() = %v, want INVALID_CONFIG", i, err)
		}
	}
}

func TestLabels(t *testing.T) {
	n := threeNodeTree(t)
	if got := NodeLabel("NAME (WEIGHT)", n.Node("root")); got != "root (10)" {
		t.Errorf("NodeLabel = %q", got)
	}
	if got := EdgeLabel(DefaultEdgeTemplate, n.Edges()[0]); got != "(1)" {
		t.Errorf("EdgeLabel = %q", got)
	}
}

func TestEdgeStyleResolve(t *testing.T) {
	tests := []struct {
		style  EdgeStyle
		weight int
		cutoff int
		want   EdgeStyle
	}{
		{StyleBubbles, 3, 3, StyleBubbles},
		{StyleBubbles, 4, 3, StyleDotsWithText},
		{StyleBars, 4, 3, StyleCollapsed},
		{StylePlain, 9, 3, StylePlainWithText},
		{StyleCollapsed, 9, 3, StyleCollapsed},
		{StyleBubbles, 99, 0, StyleBubbles},
	}
	for _, tt := range tests {
		if got := tt.style.Resolve(tt.weight, tt.cutoff); got != tt.want {
			t.Errorf("%s.Resolve(%d, %d) = %s, want %s", tt.style, tt.weight, tt.cutoff, got, tt.want)
		}
	}
}

func TestHaploweb(t *testing.T) {
	n, err := BuildFromGraph([]GraphNode{
		{ID: "a", Members: []string{"s1", "s2"}},
		{ID: "b", Members: []string{"s2", "s3"}},
		{ID: "c", Members: []string{"s4"}},
		{ID: "d", Members: []string{"s1", "s3"}},
	}, nil, Options{})
	if err != nil {
		t.Fatal(err)
	}
	links := n.Haploweb()
	want := []WebLink{
		{A: "a", B: "b", Shared: []string{"s2"}},
		{A: "a", B: "d", Shared: []string{"s1"}},
		{A: "b", B: "d", Shared: []string{"s3"}},
	}
	if !reflect.DeepEqual(links, want) {
		t.Errorf("Haploweb() = %+v, want %+v", links, want)
	}
}

func TestSetPosAndClone(t *testing.T) {
	n := threeNodeTree(t)
	n.SetPos("a", r2.Vec{X: 3, Y: 4})
	c := n.Clone()
	n.SetPos("a", r2.Vec{X: 9, Y: 9})
	if got := c.Node("a").Pos; got != (r2.Vec{X: 3, Y: 4}) {
		t.Errorf("clone position = %v, want (3,4)", got)
	}
	if n.SetPos("missing", r2.Vec{}) {
		t.Error("SetPos on missing node should report false")
	}
}

func TestPaletteBeyondList(t *testing.T) {
	p, _ := LookupPalette("set1")
	seen := make(map[string]bool)
	for i := 0; i < len(p.Colors)+12; i++ {
		c := p.Color(i)
		if _, err := errors.NormalizeColor(c); err != nil {
			t.Fatalf("Color(%d) = %q: %v", i, c, err)
		}
		if seen[c] {
			t.Errorf("Color(%d) = %q repeats", i, c)
		}
		seen[c] = true
	}
	if p.Color(len(p.Colors)+3) != p.Color(len(p.Colors)+3) {
		t.Error("generated colors are not deterministic")
	}
}

func TestRestoreRoundTrip(t *testing.T) {
	n := multiGraph(t)
	if _, err := n.DeleteEdges(4); err != nil {
		t.Fatal(err)
	}
	if _, err := n.SetEdgeLabel(1, Label{Offset: r2.Vec{X: 3}, Moved: true}); err != nil {
		t.Fatal(err)
	}
	if _, err := n.Tag("clade", "a", "b"); err != nil {
		t.Fatal(err)
	}

	back, err := Restore(n.Parts(), Options{})
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if !reflect.DeepEqual(back.Parts(), n.Parts()) {
		t.Errorf("restored parts differ:\n got %+v\nwant %+v", back.Parts(), n.Parts())
	}
	op, err := back.Connect("a", "d", 1)
	if err != nil {
		t.Fatal(err)
	}
	if id := op.Edges[0].After.ID; id != 4 {
		t.Errorf("next edge id = %d, want 4", id)
	}
}

func TestRestoreInvalid(t *testing.T) {
	base := func() Parts {
		return Parts{
			Nodes:  []Node{{ID: "a", Weight: 1}, {ID: "b", Weight: 1}},
			Edges:  []Edge{{ID: 0, From: "a", To: "b", Weight: 1}},
			Groups: []Group{{Name: "g", Color: "#ffffff", Subpops: []string{"x"}}},
		}
	}
	tests := []struct {
		name   string
		mutate func(p *Parts)
	}{
		{"DuplicateNode", func(p *Parts) { p.Nodes = append(p.Nodes, Node{ID: "a"}) }},
		{"DanglingEdge", func(p *Parts) { p.Edges[0].To = "zz" }},
		{"SelfLoop", func(p *Parts) { p.Edges[0].To = "a" }},
		{"DuplicateEdge", func(p *Parts) { p.Edges = append(p.Edges, p.Edges[0]) }},
		{"BadStyle", func(p *Parts) { p.Edges[0].Style = "wavy" }},
		{"BadColor", func(p *Parts) { p.Groups[0].Color = "teal-ish" }},
		{"SharedSubpop", func(p *Parts) {
			p.Groups = append(p.Groups, Group{Name: "h", Color: "#000000", Subpops: []string{"x"}})
		}},
		{"NaNPosition", func(p *Parts) { p.Nodes[0].Pos.X = math.NaN() }},
		{"MissingRoot", func(p *Parts) { p.Root = "zz" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := base()
			tt.mutate(&p)
			n, err := Restore(p, Options{})
			if n != nil || !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("Restore() = %v, %v; want INVALID_INPUT", n, err)
			}
		})
	}
}
