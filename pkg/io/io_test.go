package io

import (
	"bytes"
	stderrors "errors"
	"io/fs"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/haplonet/pkg/errors"
	"github.com/matzehuels/haplonet/pkg/network"
)

const treeJSON = `{
  "nodes": [
    {"id": "H1", "weight": 10, "subdivisions": [{"name": "north", "weight": 6}]},
    {"id": "H2", "parent": "H1", "mutations": 1, "weight": 5, "members": ["s1", "s2"]},
    {"id": "H3", "parent": "H1", "mutations": 2, "weight": 3}
  ]
}`

const graphJSON = `{
  "nodes": [{"id": "a", "weight": 2}, {"id": "b", "weight": 1}],
  "edges": [{"a": "a", "b": "b", "mutations": 2}, {"a": "b", "b": "x", "mutations": 1}]
}`

func TestReadTree(t *testing.T) {
	n, err := ReadTree(strings.NewReader(treeJSON), network.Options{})
	if err != nil {
		t.Fatalf("ReadTree: %v", err)
	}
	if n.Len() != 3 || n.EdgeCount() != 2 || n.Root() != "H1" {
		t.Errorf("got %d nodes, %d edges, root %q", n.Len(), n.EdgeCount(), n.Root())
	}
	if got := n.Node("H2").Members; !reflect.DeepEqual(got, []string{"s1", "s2"}) {
		t.Errorf("members = %v", got)
	}
	if w, ok := n.Node("H1").Subdivision("north"); !ok || w != 6 {
		t.Errorf("subdivision = %v, %v", w, ok)
	}
	if e := n.Between("H1", "H3"); len(e) != 1 || e[0].Weight != 2 {
		t.Errorf("H1-H3 edges = %+v", e)
	}
}

func TestReadGraph(t *testing.T) {
	n, err := ReadGraph(strings.NewReader(graphJSON), network.Options{})
	if err != nil {
		t.Fatalf("ReadGraph: %v", err)
	}
	if n.Len() != 3 || n.EdgeCount() != 2 {
		t.Fatalf("got %d nodes, %d edges", n.Len(), n.EdgeCount())
	}
	if x := n.Node("x"); x == nil || !x.IsVertex() {
		t.Errorf("edge-only node = %+v", x)
	}
}

func TestReadEdgeList(t *testing.T) {
	src := `
# two haplotypes and a vertex
node H1 10 north=6 south=4
node H2 5
H1 H2 1
H2 V1 3
V1 H3
`
	n, err := ReadEdgeList(strings.NewReader(src), network.Options{})
	if err != nil {
		t.Fatalf("ReadEdgeList: %v", err)
	}
	if got := n.NodeIDs(); !reflect.DeepEqual(got, []string{"H1", "H2", "V1", "H3"}) {
		t.Errorf("ids = %v", got)
	}
	if e := n.Between("V1", "H3"); len(e) != 1 || e[0].Weight != 1 {
		t.Errorf("default distance edge = %+v", e)
	}
	if got := len(n.Node("H1").Subdivisions); got != 2 {
		t.Errorf("subdivisions = %d", got)
	}
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		input  string
		code   errors.Code
	}{
		{"BadJSON", FormatTree, `{"nodes": [`, errors.ErrCodeInvalidFormat},
		{"UnknownField", FormatTree, `{"nodes": [{"id": "a", "colour": 1}]}`, errors.ErrCodeInvalidFormat},
		{"DanglingParent", FormatTree, `{"nodes": [{"id": "a"}, {"id": "b", "parent": "zz"}]}`, errors.ErrCodeInvalidInput},
		{"NegativeWeight", FormatGraph, `{"nodes": [{"id": "a", "weight": -1}], "edges": []}`, errors.ErrCodeInvalidInput},
		{"SelfLoop", FormatEdges, "a a 1", errors.ErrCodeInvalidInput},
		{"BadDistance", FormatEdges, "a b x", errors.ErrCodeInvalidFormat},
		{"TooManyFields", FormatEdges, "a b 1 2", errors.ErrCodeInvalidFormat},
		{"BadSubdivision", FormatEdges, "node a 1 north", errors.ErrCodeInvalidFormat},
		{"UnknownFormat", Format("nexus"), "", errors.ErrCodeUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := Read(strings.NewReader(tt.input), tt.format, network.Options{})
			if n != nil {
				t.Error("partial network returned")
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		path string
		data string
		want Format
	}{
		{"net.json", treeJSON, FormatTree},
		{"net.json", graphJSON, FormatGraph},
		{"net.txt", treeJSON, FormatEdges},
		{"net", "a b 1\n", FormatEdges},
	}
	for _, tt := range tests {
		if got := Detect(tt.path, []byte(tt.data)); got != tt.want {
			t.Errorf("Detect(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestGraphRoundTrip(t *testing.T) {
	n, err := ReadTree(strings.NewReader(treeJSON), network.Options{})
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "graph.json")
	if err := ExportGraph(n, path); err != nil {
		t.Fatalf("ExportGraph: %v", err)
	}
	back, err := Import(path, FormatAuto, network.Options{})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if !reflect.DeepEqual(back.NodeIDs(), n.NodeIDs()) || back.EdgeCount() != n.EdgeCount() {
		t.Fatalf("round trip changed structure")
	}
	for _, node := range n.Nodes() {
		got := back.Node(node.ID)
		if got.Weight != node.Weight || !reflect.DeepEqual(got.Subdivisions, node.Subdivisions) || !reflect.DeepEqual(got.Members, node.Members) {
			t.Errorf("node %s: got %+v, want %+v", node.ID, got, node)
		}
	}
	for i, e := range n.Edges() {
		got := back.Edges()[i]
		if got.From != e.From || got.To != e.To || got.Weight != e.Weight {
			t.Errorf("edge %d: got %+v, want %+v", i, got, e)
		}
	}
}

func TestReadPartition(t *testing.T) {
	got, err := ReadPartition(strings.NewReader("# member\tpop\ns1\tnorth\ns2,south\ns3 north\n"))
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]string{"s1": "north", "s2": "south", "s3": "north"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("partition = %v", got)
	}
	if _, err := ReadPartition(strings.NewReader("s1 north\ns1 south\n")); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("conflicting member: %v", err)
	}
	if _, err := ReadPartition(strings.NewReader("s1\n")); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("short line: %v", err)
	}
}

func TestImportMissingFile(t *testing.T) {
	_, err := Import(filepath.Join(t.TempDir(), "nope.json"), FormatAuto, network.Options{})
	if !stderrors.Is(err, fs.ErrNotExist) {
		t.Errorf("err = %v", err)
	}
	var buf bytes.Buffer
	if err := WriteGraph(mustTree(t), &buf); err != nil || buf.Len() == 0 {
		t.Errorf("WriteGraph: %v", err)
	}
}

func mustTree(t *testing.T) *network.Network {
	t.Helper()
	n, err := ReadTree(strings.NewReader(treeJSON), network.Options{})
	if err != nil {
		t.Fatal(err)
	}
	return n
}
