package network

import (
	"slices"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/haplonet/pkg/errors"
)

// Network is a haplotype network: nodes, edges and groups.
type Network struct {
	nodes map[string]*Node
	order []string

	edges    map[EdgeID]*Edge
	nextEdge EdgeID

	groups []*Group

	root    string
	sizing  Sizing
	palette Palette

	// Derived, rebuilt after every Op.
	pairs    map[Pair][]EdgeID
	incident map[string][]EdgeID

	listeners    map[int]func(Change)
	nextListener int
}

// Options configures how a network is built.
type Options struct {
	// Sizing is the radius function. The zero value selects DefaultSizing.
	Sizing Sizing

	// Palette names the palette used to color groups created from
	// subdivision names. Empty selects DefaultPalette.
	Palette string
}

func (o Options) sizing() Sizing {
	if o.Sizing == (Sizing{}) {
		return DefaultSizing()
	}
	return o.Sizing
}

func (o Options) palette() (Palette, error) {
	name := o.Palette
	if name == "" {
		name = DefaultPalette
	}
	p, ok := LookupPalette(name)
	if !ok {
		return Palette{}, errors.New(errors.ErrCodeInvalidConfig, "unknown palette %q", o.Palette)
	}
	return p, nil
}

// New returns an empty network.
func New(opts Options) (*Network, error) {
	s := opts.sizing()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	p, err := opts.palette()
	if err != nil {
		return nil, err
	}
	n := &Network{
		nodes:     make(map[string]*Node),
		edges:     make(map[EdgeID]*Edge),
		sizing:    s,
		palette:   p,
		listeners: make(map[int]func(Change)),
	}
	n.reindex()
	return n, nil
}

// Len returns the number of nodes.
func (n *Network) Len() int { return len(n.order) }

// EdgeCount returns the number of edges.
func (n *Network) EdgeCount() int { return len(n.edges) }

// Root returns the root node of a network built from a tree, or "" if the
// network was built from a graph or the root has been removed.
func (n *Network) Root() string {
	if _, ok := n.nodes[n.root]; !ok {
		return ""
	}
	return n.root
}

// Node returns the node with the given ID, or nil. The returned value is
// owned by the network and must not be modified.
func (n *Network) Node(id string) *Node { return n.nodes[id] }

// Has reports whether a node with the given ID exists.
func (n *Network) Has(id string) bool {
	_, ok := n.nodes[id]
	return ok
}

// NodeIDs returns node IDs in insertion order.
func (n *Network) NodeIDs() []string { return slices.Clone(n.order) }

// Nodes returns all nodes in insertion order.
func (n *Network) Nodes() []*Node {
	out := make([]*Node, len(n.order))
	for i, id := range n.order {
		out[i] = n.nodes[id]
	}
	return out
}

// Index returns the insertion position of node id, or -1.
func (n *Network) Index(id string) int { return slices.Index(n.order, id) }

// Edge returns the edge with the given ID, or nil.
func (n *Network) Edge(id EdgeID) *Edge { return n.edges[id] }

// Edges returns all edges in creation order.
func (n *Network) Edges() []*Edge {
	ids := make([]EdgeID, 0, len(n.edges))
	for id := range n.edges {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]*Edge, len(ids))
	for i, id := range ids {
		out[i] = n.edges[id]
	}
	return out
}

// Incident returns the edges touching node id in creation order.
func (n *Network) Incident(id string) []*Edge {
	ids := n.incident[id]
	out := make([]*Edge, len(ids))
	for i, eid := range ids {
		out[i] = n.edges[eid]
	}
	return out
}

// Neighbors returns the distinct nodes adjacent to id, sorted.
func (n *Network) Neighbors(id string) []string {
	var out []string
	for _, eid := range n.incident[id] {
		out = append(out, n.edges[eid].Other(id))
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Between returns the edges joining a and b in creation order.
func (n *Network) Between(a, b string) []*Edge {
	ids := n.pairs[MakePair(a, b)]
	out := make([]*Edge, len(ids))
	for i, id := range ids {
		out[i] = n.edges[id]
	}
	return out
}

// Parallel returns the creation-order position of edge id among the edges
// joining the same pair, and the size of that bundle. It returns (0, 0) for
// unknown edges.
func (n *Network) Parallel(id EdgeID) (index, count int) {
	e := n.edges[id]
	if e == nil {
		return 0, 0
	}
	ids := n.pairs[e.Pair()]
	return slices.Index(ids, id), len(ids)
}

// CurvatureSlot returns the curvature offset, in units of the configured
// spacing, for the index-th of count parallel edges. Offsets for a bundle
// are the count values centered on zero (…, −1, 0, 1, … for odd counts,
// …, −0.5, 0.5, … for even ones), dealt out from the outside in
// alternating sides so that the newest edge takes the innermost free slot.
// Offsets are relative to the canonical Pair orientation.
func CurvatureSlot(index, count int) float64 {
	if count <= 1 || index < 0 || index >= count {
		return 0
	}
	var slot int
	if index%2 == 0 {
		slot = index / 2
	} else {
		slot = count - 1 - (index-1)/2
	}
	return float64(slot) - float64(count-1)/2
}

// Groups returns groups in creation order.
func (n *Network) Groups() []*Group { return slices.Clone(n.groups) }

// Group returns the named group, or nil.
func (n *Network) Group(name string) *Group {
	if i := n.groupIndex(name); i >= 0 {
		return n.groups[i]
	}
	return nil
}

// GroupOf returns the group owning the sub-population, or nil.
func (n *Network) GroupOf(subpop string) *Group {
	for _, g := range n.groups {
		if g.Has(subpop) {
			return g
		}
	}
	return nil
}

// Subpops returns every sub-population named by any node, in first-seen
// order.
func (n *Network) Subpops() []string {
	var out []string
	seen := make(map[string]bool)
	for _, id := range n.order {
		for _, d := range n.nodes[id].Subdivisions {
			if !seen[d.Name] {
				seen[d.Name] = true
				out = append(out, d.Name)
			}
		}
	}
	return out
}

func (n *Network) groupIndex(name string) int {
	return slices.IndexFunc(n.groups, func(g *Group) bool { return g.Name == name })
}

// Sets returns the names of all node sets in use, sorted.
func (n *Network) Sets() []string {
	var out []string
	for _, node := range n.nodes {
		out = append(out, node.Sets...)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// SetMembers returns the IDs of nodes in the named set, in insertion order.
func (n *Network) SetMembers(name string) []string {
	var out []string
	for _, id := range n.order {
		if n.nodes[id].InSet(name) {
			out = append(out, id)
		}
	}
	return out
}

// Sizing returns the radius function.
func (n *Network) Sizing() Sizing { return n.sizing }

// SetSizing replaces the radius function.
func (n *Network) SetSizing(s Sizing) error {
	if err := s.Validate(); err != nil {
		return err
	}
	n.sizing = s
	n.emit(Change{Kind: OpResize, Nodes: n.NodeIDs()})
	return nil
}

// Palette returns the palette used for new groups.
func (n *Network) Palette() Palette { return n.palette }

// Radius returns the radius of node id, or 0 for unknown nodes.
func (n *Network) Radius(id string) float64 {
	node := n.nodes[id]
	if node == nil {
		return 0
	}
	return n.sizing.Radius(node.Weight)
}

// SetPos moves node id without recording an Op. It is the write path for
// layout steps; committed moves go through [Network.Move].
func (n *Network) SetPos(id string, p r2.Vec) bool {
	node := n.nodes[id]
	if node == nil {
		return false
	}
	node.Pos = p
	return true
}

// Positions returns a copy of all node positions.
func (n *Network) Positions() map[string]r2.Vec {
	out := make(map[string]r2.Vec, len(n.nodes))
	for id, node := range n.nodes {
		out[id] = node.Pos
	}
	return out
}

// SharedMembers returns the sample members present in both a and b, sorted.
func (n *Network) SharedMembers(a, b string) []string {
	na, nb := n.nodes[a], n.nodes[b]
	if na == nil || nb == nil {
		return nil
	}
	var out []string
	for _, m := range na.Members {
		if _, ok := slices.BinarySearch(nb.Members, m); ok {
			out = append(out, m)
		}
	}
	return out
}

// WebLink connects two nodes that share sample members.
type WebLink struct {
	A, B   string
	Shared []string
}

// Haploweb returns a link for every pair of distinct nodes sharing at least
// one member, ordered by node insertion order.
func (n *Network) Haploweb() []WebLink {
	owners := make(map[string][]int)
	for i, id := range n.order {
		for _, m := range n.nodes[id].Members {
			owners[m] = append(owners[m], i)
		}
	}
	seen := make(map[[2]int]bool)
	var links []WebLink
	for _, idx := range owners {
		for x := 0; x < len(idx); x++ {
			for y := x + 1; y < len(idx); y++ {
				k := [2]int{idx[x], idx[y]}
				if k[0] == k[1] || seen[k] {
					continue
				}
				seen[k] = true
				a, b := n.order[k[0]], n.order[k[1]]
				links = append(links, WebLink{A: a, B: b, Shared: n.SharedMembers(a, b)})
			}
		}
	}
	sort.Slice(links, func(i, j int) bool {
		ai, bi := n.Index(links[i].A), n.Index(links[i].B)
		aj, bj := n.Index(links[j].A), n.Index(links[j].B)
		if ai != aj {
			return ai < aj
		}
		return bi < bj
	})
	return links
}

// Clone returns a deep copy of the network without listeners.
func (n *Network) Clone() *Network {
	c := &Network{
		nodes:     make(map[string]*Node, len(n.nodes)),
		order:     slices.Clone(n.order),
		edges:     make(map[EdgeID]*Edge, len(n.edges)),
		nextEdge:  n.nextEdge,
		root:      n.root,
		sizing:    n.sizing,
		palette:   n.palette,
		listeners: make(map[int]func(Change)),
	}
	for id, node := range n.nodes {
		c.nodes[id] = node.Clone()
	}
	for id, e := range n.edges {
		c.edges[id] = e.Clone()
	}
	for _, g := range n.groups {
		c.groups = append(c.groups, g.Clone())
	}
	c.reindex()
	return c
}

// reindex rebuilds the derived adjacency and parallel-edge indexes.
func (n *Network) reindex() {
	n.pairs = make(map[Pair][]EdgeID)
	n.incident = make(map[string][]EdgeID)
	for _, e := range n.Edges() {
		p := e.Pair()
		n.pairs[p] = append(n.pairs[p], e.ID)
		n.incident[e.From] = append(n.incident[e.From], e.ID)
		n.incident[e.To] = append(n.incident[e.To], e.ID)
	}
}
