package network

import (
	"slices"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/matzehuels/haplonet/pkg/errors"
)

// TreeEntry is one node of a rooted tree description.
type TreeEntry struct {
	ID string
	// Parent is empty for the root.
	Parent string
	// Mutations is the distance to the parent.
	Mutations    int
	Weight       float64
	Subdivisions []Subdivision
	Members      []string
}

// GraphNode carries the frequency data of one node of a graph description.
type GraphNode struct {
	ID           string
	Weight       float64
	Subdivisions []Subdivision
	Members      []string
}

// GraphEdge is one edge of a graph description.
type GraphEdge struct {
	A, B      string
	Mutations int
}

// BuildFromTree builds a network with one node per entry and one edge per
// parent link. The description must have exactly one root, every parent
// must exist and there must be no cycles.
func BuildFromTree(entries []TreeEntry, opts Options) (*Network, error) {
	if len(entries) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "tree has no nodes")
	}
	index := make(map[string]int64, len(entries))
	var root string
	for i, e := range entries {
		if err := errors.ValidateName("node", e.ID); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "entry %d", i)
		}
		if _, dup := index[e.ID]; dup {
			return nil, errors.New(errors.ErrCodeInvalidInput, "duplicate node %q", e.ID)
		}
		index[e.ID] = int64(i)
		if e.Parent == "" {
			if root != "" {
				return nil, errors.New(errors.ErrCodeInvalidInput, "tree has more than one root: %q and %q", root, e.ID)
			}
			root = e.ID
		}
	}
	if root == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "tree has no root")
	}

	g := simple.NewDirectedGraph()
	for i := range entries {
		g.AddNode(simple.Node(int64(i)))
	}
	for _, e := range entries {
		if e.Parent == "" {
			continue
		}
		if e.Parent == e.ID {
			return nil, errors.New(errors.ErrCodeInvalidInput, "node %q is its own parent", e.ID)
		}
		p, ok := index[e.Parent]
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidInput, "node %q has unknown parent %q", e.ID, e.Parent)
		}
		if e.Mutations < 0 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "node %q has negative distance %d", e.ID, e.Mutations)
		}
		g.SetEdge(g.NewEdge(simple.Node(p), simple.Node(index[e.ID])))
	}
	if _, err := topo.Sort(g); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "tree contains a cycle")
	}

	nodes := make([]Node, len(entries))
	for i, e := range entries {
		nodes[i] = Node{ID: e.ID, Weight: e.Weight, Subdivisions: e.Subdivisions, Members: e.Members}
		if err := validateNodeData(&nodes[i]); err != nil {
			return nil, err
		}
	}

	n, err := New(opts)
	if err != nil {
		return nil, err
	}
	for i := range nodes {
		n.insert(&nodes[i])
	}
	for _, e := range entries {
		if e.Parent != "" {
			n.link(e.Parent, e.ID, e.Mutations)
		}
	}
	n.root = root
	n.seedGroups()
	n.reindex()
	return n, nil
}

// BuildFromGraph builds a network with one node per distinct identifier
// and one edge per description entry. Identifiers that appear only in
// edges become zero-weight nodes, appended in order of first appearance.
func BuildFromGraph(data []GraphNode, edges []GraphEdge, opts Options) (*Network, error) {
	var nodes []Node
	index := make(map[string]int)
	for i, d := range data {
		if err := errors.ValidateName("node", d.ID); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "node %d", i)
		}
		if _, dup := index[d.ID]; dup {
			return nil, errors.New(errors.ErrCodeInvalidInput, "duplicate node %q", d.ID)
		}
		index[d.ID] = len(nodes)
		nodes = append(nodes, Node{ID: d.ID, Weight: d.Weight, Subdivisions: d.Subdivisions, Members: d.Members})
	}
	for i, e := range edges {
		for _, id := range []string{e.A, e.B} {
			if err := errors.ValidateName("node", id); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "edge %d", i)
			}
			if _, ok := index[id]; !ok {
				index[id] = len(nodes)
				nodes = append(nodes, Node{ID: id})
			}
		}
		if e.A == e.B {
			return nil, errors.New(errors.ErrCodeInvalidInput, "edge %d is a self-loop on %q", i, e.A)
		}
		if e.Mutations < 0 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "edge %d has negative distance %d", i, e.Mutations)
		}
	}
	if len(nodes) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "graph has no nodes")
	}
	for i := range nodes {
		if err := validateNodeData(&nodes[i]); err != nil {
			return nil, err
		}
	}

	n, err := New(opts)
	if err != nil {
		return nil, err
	}
	for i := range nodes {
		n.insert(&nodes[i])
	}
	for _, e := range edges {
		n.link(e.A, e.B, e.Mutations)
	}
	n.seedGroups()
	n.reindex()
	return n, nil
}

// validateNodeData checks weights and subdivisions. Errors are
// INVALID_INPUT.
func validateNodeData(node *Node) error {
	if err := errors.ValidateWeight("node "+node.ID, node.Weight); err != nil {
		return err
	}
	seen := make(map[string]bool, len(node.Subdivisions))
	for _, d := range node.Subdivisions {
		if err := errors.ValidateName("sub-population", d.Name); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "node %q", node.ID)
		}
		if seen[d.Name] {
			return errors.New(errors.ErrCodeInvalidInput, "node %q lists sub-population %q twice", node.ID, d.Name)
		}
		seen[d.Name] = true
		if err := errors.ValidateWeight("sub-population "+d.Name, d.Weight); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "node %q", node.ID)
		}
	}
	for _, m := range node.Members {
		if err := errors.ValidateName("member", m); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "node %q", node.ID)
		}
	}
	return nil
}

func normalizeNode(node *Node) {
	if len(node.Names) == 0 {
		node.Names = []string{node.ID}
	}
	node.Names = union(node.Names, nil)
	node.Members = union(node.Members, nil)
	node.Sets = union(node.Sets, nil)
	node.Subdivisions = slices.Clone(node.Subdivisions)
}

// insert adds a validated node without recording an Op.
func (n *Network) insert(node *Node) {
	normalizeNode(node)
	n.nodes[node.ID] = node.Clone()
	n.order = append(n.order, node.ID)
}

// link adds an edge without recording an Op.
func (n *Network) link(from, to string, weight int) EdgeID {
	id := n.nextEdge
	n.nextEdge++
	n.edges[id] = &Edge{ID: id, From: from, To: to, Weight: weight}
	return id
}

// seedGroups creates one group per sub-population, in first-seen order.
func (n *Network) seedGroups() {
	for _, sp := range n.Subpops() {
		if n.GroupOf(sp) != nil || n.groupIndex(sp) >= 0 {
			continue
		}
		n.groups = append(n.groups, &Group{Name: sp, Color: n.palette.Color(len(n.groups)), Subpops: []string{sp}})
	}
}
