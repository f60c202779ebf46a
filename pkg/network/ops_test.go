package network

import (
	"reflect"
	"slices"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/haplonet/pkg/errors"
)

func multiGraph(t *testing.T) *Network {
	t.Helper()
	n, err := BuildFromGraph(
		[]GraphNode{
			{ID: "a", Weight: 4, Subdivisions: []Subdivision{{Name: "x", Weight: 3}}, Members: []string{"m1", "m2"}},
			{ID: "b", Weight: 2, Subdivisions: []Subdivision{{Name: "x", Weight: 1}, {Name: "y", Weight: 1}}, Members: []string{"m3"}},
			{ID: "c", Weight: 1, Members: []string{"m4"}},
			{ID: "d", Weight: 0},
		},
		[]GraphEdge{
			{A: "a", B: "b", Mutations: 1},
			{A: "b", B: "c", Mutations: 2},
			{A: "c", B: "a", Mutations: 1},
			{A: "a", B: "b", Mutations: 3},
			{A: "c", B: "d", Mutations: 1},
		},
		Options{},
	)
	if err != nil {
		t.Fatalf("BuildFromGraph: %v", err)
	}
	for i, id := range n.NodeIDs() {
		n.SetPos(id, r2.Vec{X: float64(i * 10), Y: float64(i)})
	}
	return n
}

func TestUndoRestoresExactState(t *testing.T) {
	tests := []struct {
		name string
		do   func(n *Network) (*Op, error)
	}{
		{"Merge", func(n *Network) (*Op, error) { return n.MergeNodes("a", "c") }},
		{"MergeParallel", func(n *Network) (*Op, error) { return n.MergeNodes("b", "a") }},
		{"DeleteNode", func(n *Network) (*Op, error) { return n.DeleteNodes("b") }},
		{"DeleteSeveral", func(n *Network) (*Op, error) { return n.DeleteNodes("d", "a") }},
		{"DeleteEdge", func(n *Network) (*Op, error) { return n.DeleteEdges(0) }},
		{"Connect", func(n *Network) (*Op, error) { return n.Connect("a", "d", 4) }},
		{"AddNode", func(n *Network) (*Op, error) { return n.AddNode(Node{ID: "e", Weight: 1}) }},
		{"AddGroup", func(n *Network) (*Op, error) { return n.AddGroup("both", "#123456", "x", "y") }},
		{"RenameGroup", func(n *Network) (*Op, error) { return n.RenameGroup("x", "west") }},
		{"DeleteGroup", func(n *Network) (*Op, error) { return n.DeleteGroup("x") }},
		{"Recolor", func(n *Network) (*Op, error) { return n.Recolor("y", "#000") }},
		{"AssignSubpop", func(n *Network) (*Op, error) { return n.AssignSubpop("y", "x") }},
		{"ReleaseSubpop", func(n *Network) (*Op, error) { return n.AssignSubpop("y", "") }},
		{"Partition", func(n *Network) (*Op, error) {
			return n.ApplyPartition(map[string]string{"m1": "p", "m2": "q", "m3": "p"})
		}},
		{"Move", func(n *Network) (*Op, error) { return n.Move(map[string]r2.Vec{"a": {X: -5, Y: 7}}) }},
		{"NodeLabel", func(n *Network) (*Op, error) {
			return n.SetNodeLabel("b", Label{Offset: r2.Vec{X: 1, Y: 2}, Rotation: 0.5, Moved: true})
		}},
		{"EdgeLabel", func(n *Network) (*Op, error) { return n.SetEdgeLabel(1, Label{Offset: r2.Vec{X: 3}, Moved: true}) }},
		{"EdgeStyle", func(n *Network) (*Op, error) { return n.SetEdgeStyle(StyleBars, 0, 2) }},
		{"Tag", func(n *Network) (*Op, error) { return n.Tag("focus", "a", "b") }},
		{"RecolorNodes", func(n *Network) (*Op, error) { return n.RecolorNodes("#ff0000", "d") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := multiGraph(t)
			before := capture(n)

			op, err := tt.do(n)
			if err != nil {
				t.Fatalf("mutation failed: %v", err)
			}
			after := capture(n)
			if reflect.DeepEqual(before, after) {
				t.Fatal("mutation changed nothing")
			}

			if err := n.Revert(op); err != nil {
				t.Fatalf("Revert: %v", err)
			}
			if got := capture(n); !reflect.DeepEqual(got, before) {
				t.Errorf("after undo:\n got %+v\nwant %+v", got, before)
			}

			if err := n.Apply(op); err != nil {
				t.Fatalf("Apply: %v", err)
			}
			if got := capture(n); !reflect.DeepEqual(got, after) {
				t.Errorf("after redo:\n got %+v\nwant %+v", got, after)
			}
		})
	}
}

func TestMergeNodes(t *testing.T) {
	n := multiGraph(t)
	if _, err := n.Tag("left", "a"); err != nil {
		t.Fatal(err)
	}
	if _, err := n.Tag("right", "b"); err != nil {
		t.Fatal(err)
	}

	if _, err := n.MergeNodes("b", "a"); err != nil {
		t.Fatalf("MergeNodes: %v", err)
	}
	if n.Has("b") {
		t.Error("absorbed node still present")
	}
	a := n.Node("a")
	if a.Weight != 6 {
		t.Errorf("Weight = %v, want 6", a.Weight)
	}
	if !slices.Equal(a.Names, []string{"a", "b"}) {
		t.Errorf("Names = %v", a.Names)
	}
	if !slices.Equal(a.Members, []string{"m1", "m2", "m3"}) {
		t.Errorf("Members = %v", a.Members)
	}
	if !slices.Equal(a.Sets, []string{"left", "right"}) {
		t.Errorf("Sets = %v, want union", a.Sets)
	}
	want := []Subdivision{{Name: "x", Weight: 4}, {Name: "y", Weight: 1}}
	if !slices.Equal(a.Subdivisions, want) {
		t.Errorf("Subdivisions = %v, want %v", a.Subdivisions, want)
	}
	if a.Pos != (r2.Vec{X: 0, Y: 0}) {
		t.Errorf("target moved to %v", a.Pos)
	}

	// Both a-b edges would have become self-loops.
	if n.EdgeCount() != 3 {
		t.Errorf("EdgeCount() = %d, want 3", n.EdgeCount())
	}
	for _, e := range n.Edges() {
		if e.Touches("b") || e.From == e.To {
			t.Errorf("edge %+v still references b or loops", e)
		}
	}
	// The b-c edge was re-pointed and keeps its ID, so a-c is now a bundle.
	if got := len(n.Between("a", "c")); got != 2 {
		t.Errorf("Between(a, c) = %d, want 2", got)
	}
	if e := n.Edge(1); e == nil || e.From != "a" || e.To != "c" {
		t.Errorf("edge 1 = %+v, want a→c", e)
	}
}

func TestMergeNodesInvalid(t *testing.T) {
	tests := []struct {
		name             string
		absorbed, target string
	}{
		{"Self", "a", "a"},
		{"MissingAbsorbed", "zz", "a"},
		{"MissingTarget", "a", "zz"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := multiGraph(t)
			before := capture(n)
			_, err := n.MergeNodes(tt.absorbed, tt.target)
			if !errors.Is(err, errors.ErrCodeInvalidMerge) {
				t.Errorf("err = %v, want INVALID_MERGE", err)
			}
			if !reflect.DeepEqual(capture(n), before) {
				t.Error("failed merge modified the network")
			}
		})
	}
}

func TestDeleteNodeCascades(t *testing.T) {
	n := multiGraph(t)
	if _, err := n.DeleteNodes("c"); err != nil {
		t.Fatal(err)
	}
	for _, e := range n.Edges() {
		if !n.Has(e.From) || !n.Has(e.To) {
			t.Errorf("orphan edge %+v", e)
		}
	}
	if n.EdgeCount() != 2 {
		t.Errorf("EdgeCount() = %d, want 2", n.EdgeCount())
	}
	if got := n.Incident("d"); len(got) != 0 {
		t.Errorf("Incident(d) = %v, want none", got)
	}
}

func TestInvalidMutationsLeaveState(t *testing.T) {
	tests := []struct {
		name string
		code errors.Code
		do   func(n *Network) (*Op, error)
	}{
		{"ConnectSelf", errors.ErrCodeInvalidOperation, func(n *Network) (*Op, error) { return n.Connect("a", "a", 1) }},
		{"ConnectMissing", errors.ErrCodeNotFound, func(n *Network) (*Op, error) { return n.Connect("a", "zz", 1) }},
		{"ConnectNegative", errors.ErrCodeInvalidOperation, func(n *Network) (*Op, error) { return n.Connect("a", "b", -1) }},
		{"DeleteMissingAmongValid", errors.ErrCodeNotFound, func(n *Network) (*Op, error) { return n.DeleteNodes("a", "zz") }},
		{"DeleteMissingEdge", errors.ErrCodeNotFound, func(n *Network) (*Op, error) { return n.DeleteEdges(0, 99) }},
		{"DuplicateGroup", errors.ErrCodeInvalidOperation, func(n *Network) (*Op, error) { return n.AddGroup("x", "#fff") }},
		{"BadColor", errors.ErrCodeInvalidColor, func(n *Network) (*Op, error) { return n.Recolor("x", "chartreuse-ish") }},
		{"RenameToExisting", errors.ErrCodeInvalidOperation, func(n *Network) (*Op, error) { return n.RenameGroup("x", "y") }},
		{"RenameMissing", errors.ErrCodeNotFound, func(n *Network) (*Op, error) { return n.RenameGroup("nope", "z") }},
		{"MoveNaN", errors.ErrCodeInvalidOperation, func(n *Network) (*Op, error) {
			return n.Move(map[string]r2.Vec{"a": {X: nan()}})
		}},
		{"TagNothingNew", errors.ErrCodeInvalidOperation, func(n *Network) (*Op, error) { return n.Untag("none", "a") }},
		{"UnknownStyle", errors.ErrCodeInvalidOperation, func(n *Network) (*Op, error) { return n.SetEdgeStyle("zigzag", 0) }},
		{"AddExistingNode", errors.ErrCodeInvalidOperation, func(n *Network) (*Op, error) { return n.AddNode(Node{ID: "a"}) }},
		{"AddUnnamedNode", errors.ErrCodeInvalidOperation, func(n *Network) (*Op, error) { return n.AddNode(Node{ID: ""}) }},
		{"UnnamedGroup", errors.ErrCodeInvalidOperation, func(n *Network) (*Op, error) { return n.AddGroup("", "#fff") }},
		{"PaddedSubpop", errors.ErrCodeInvalidOperation, func(n *Network) (*Op, error) { return n.AddGroup("z", "#fff", " north") }},
		{"RenameToPadded", errors.ErrCodeInvalidOperation, func(n *Network) (*Op, error) { return n.RenameGroup("x", " z ") }},
		{"UnnamedSet", errors.ErrCodeInvalidOperation, func(n *Network) (*Op, error) { return n.Tag("", "a") }},
		{"AssignControlChars", errors.ErrCodeInvalidOperation, func(n *Network) (*Op, error) { return n.AssignSubpop("so\nuth", "x") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := multiGraph(t)
			before := capture(n)
			op, err := tt.do(n)
			if op != nil {
				t.Error("expected no op")
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
			if !reflect.DeepEqual(capture(n), before) {
				t.Error("rejected mutation modified the network")
			}
		})
	}
}

func TestReplayMismatch(t *testing.T) {
	n := multiGraph(t)
	op, err := n.DeleteNodes("d")
	if err != nil {
		t.Fatal(err)
	}
	before := capture(n)
	if err := n.Apply(op); !errors.Is(err, errors.ErrCodeInvalidOperation) {
		t.Errorf("double apply err = %v, want INVALID_OPERATION", err)
	}
	if !reflect.DeepEqual(capture(n), before) {
		t.Error("failed replay modified the network")
	}
}

func TestParallelIndexAfterUndo(t *testing.T) {
	n := multiGraph(t)
	op, err := n.DeleteEdges(0)
	if err != nil {
		t.Fatal(err)
	}
	if idx, count := n.Parallel(3); idx != 0 || count != 1 {
		t.Errorf("after delete Parallel(3) = (%d, %d), want (0, 1)", idx, count)
	}
	if err := n.Revert(op); err != nil {
		t.Fatal(err)
	}
	if idx, count := n.Parallel(3); idx != 1 || count != 2 {
		t.Errorf("after undo Parallel(3) = (%d, %d), want (1, 2)", idx, count)
	}
	if idx, _ := n.Parallel(0); idx != 0 {
		t.Errorf("after undo Parallel(0) index = %d, want 0", idx)
	}
}

func TestConnectAfterUndoUsesFreshID(t *testing.T) {
	n := multiGraph(t)
	op, err := n.Connect("a", "d", 1)
	if err != nil {
		t.Fatal(err)
	}
	first := op.Edges[0].After.ID
	if err := n.Revert(op); err != nil {
		t.Fatal(err)
	}
	op2, err := n.Connect("a", "d", 1)
	if err != nil {
		t.Fatal(err)
	}
	if op2.Edges[0].After.ID == first {
		t.Errorf("edge ID %d reused", first)
	}
}

func TestApplyPartition(t *testing.T) {
	n := multiGraph(t)
	_, err := n.ApplyPartition(map[string]string{"m1": "south", "m2": "north", "m3": "south", "m4": "x"})
	if err != nil {
		t.Fatal(err)
	}
	want := []Subdivision{{Name: "north", Weight: 1}, {Name: "south", Weight: 1}}
	if got := n.Node("a").Subdivisions; !slices.Equal(got, want) {
		t.Errorf("a subdivisions = %v, want %v", got, want)
	}
	if n.GroupOf("north") == nil || n.GroupOf("south") == nil {
		t.Error("new sub-populations did not get groups")
	}
	if g := n.GroupOf("x"); g == nil || g.Name != "x" {
		t.Error("existing group should be reused")
	}
	if got := len(n.Groups()); got != 4 {
		t.Errorf("groups = %d, want 4", got)
	}
}

func TestGroupEdits(t *testing.T) {
	n := multiGraph(t)
	if _, err := n.AddGroup("all", "", "x", "y"); err != nil {
		t.Fatal(err)
	}
	if g := n.Group("x"); g == nil || len(g.Subpops) != 0 {
		t.Errorf("x still owns %v", g)
	}
	all := n.Group("all")
	if all == nil || all.Color != n.Palette().Color(2) {
		t.Errorf("group all = %+v, want palette color 2", all)
	}
	if _, err := n.RenameGroup("all", "every"); err != nil {
		t.Fatal(err)
	}
	if g := n.GroupOf("y"); g == nil || g.Name != "every" {
		t.Errorf("GroupOf(y) = %+v, want every", g)
	}
	if _, err := n.Recolor("every", "#ABCDEF"); err != nil {
		t.Fatal(err)
	}
	if got := n.Group("every").Color; got != "#abcdef" {
		t.Errorf("Color = %s, want #abcdef", got)
	}
	if _, err := n.DeleteGroup("every"); err != nil {
		t.Fatal(err)
	}
	if pie := n.Pie("b"); len(pie) != 1 || pie[0].Name != UnknownSlice {
		t.Errorf("pie(b) = %+v, want all unknown", pie)
	}
}

func TestOnChange(t *testing.T) {
	n := multiGraph(t)
	var got []Change
	cancel := n.OnChange(func(c Change) { got = append(got, c) })

	op, err := n.MergeNodes("d", "c")
	if err != nil {
		t.Fatal(err)
	}
	if err := n.Revert(op); err != nil {
		t.Fatal(err)
	}
	cancel()
	if _, err := n.Connect("a", "c", 1); err != nil {
		t.Fatal(err)
	}

	if len(got) != 2 {
		t.Fatalf("got %d changes, want 2", len(got))
	}
	if got[0].Kind != OpMerge || got[0].Reverted {
		t.Errorf("first change = %+v", got[0])
	}
	if !got[1].Reverted {
		t.Error("second change should be a revert")
	}
	if !slices.Equal(got[0].Nodes, []string{"d", "c"}) {
		t.Errorf("changed nodes = %v", got[0].Nodes)
	}
}

func TestRecordMoves(t *testing.T) {
	n := multiGraph(t)
	base := n.Positions()
	if op := n.RecordMoves(base); op != nil {
		t.Errorf("RecordMoves with no movement = %+v, want nil", op)
	}
	n.SetPos("b", r2.Vec{X: 100, Y: 100})
	op := n.RecordMoves(base)
	if op == nil || len(op.Nodes) != 1 {
		t.Fatalf("RecordMoves = %+v, want one node", op)
	}
	if err := n.Revert(op); err != nil {
		t.Fatal(err)
	}
	if got := n.Node("b").Pos; got != base["b"] {
		t.Errorf("after revert b at %v, want %v", got, base["b"])
	}
}

func TestFoldMoves(t *testing.T) {
	n := multiGraph(t)
	base := n.Positions()
	before := capture(n)

	op, err := n.MergeNodes("d", "c")
	if err != nil {
		t.Fatal(err)
	}
	n.SetPos("c", r2.Vec{X: 1, Y: 1})
	n.SetPos("a", r2.Vec{X: 2, Y: 2})
	n.FoldMoves(op, base)
	after := capture(n)

	if err := n.Revert(op); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(capture(n), before) {
		t.Error("revert of folded op did not restore positions")
	}
	if err := n.Apply(op); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(capture(n), after) {
		t.Error("apply of folded op did not restore settled positions")
	}
}

func nan() float64 {
	var zero float64
	return zero / zero
}
