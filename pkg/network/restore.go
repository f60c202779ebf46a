package network

import (
	"github.com/matzehuels/haplonet/pkg/errors"
	"github.com/matzehuels/haplonet/pkg/geom"
)

// Parts is the complete persistent state of a network.
type Parts struct {
	Nodes  []Node
	Edges  []Edge
	Groups []Group
	Root   string
}

// Parts returns deep copies of every node, edge and group, in insertion,
// ID and group order.
func (n *Network) Parts() Parts {
	p := Parts{Root: n.Root()}
	for _, node := range n.Nodes() {
		p.Nodes = append(p.Nodes, *node.Clone())
	}
	for _, e := range n.Edges() {
		p.Edges = append(p.Edges, *e.Clone())
	}
	for _, g := range n.groups {
		p.Groups = append(p.Groups, *g.Clone())
	}
	return p
}

// Restore rebuilds a network from parts, keeping node order, edge IDs,
// positions, labels and groups exactly as given. New edges continue after
// the largest restored edge ID. Errors are INVALID_INPUT and no network is
// returned.
func Restore(p Parts, opts Options) (*Network, error) {
	n, err := New(opts)
	if err != nil {
		return nil, err
	}

	for i := range p.Nodes {
		node := p.Nodes[i]
		if err := errors.ValidateName("node", node.ID); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "node %d", i)
		}
		if n.Has(node.ID) {
			return nil, errors.New(errors.ErrCodeInvalidInput, "duplicate node %q", node.ID)
		}
		if err := validateNodeData(&node); err != nil {
			return nil, err
		}
		if !geom.Finite(node.Pos) || !geom.Finite(node.Label.Offset) {
			return nil, errors.New(errors.ErrCodeInvalidInput, "node %q has a non-finite position", node.ID)
		}
		if node.Color != "" {
			c, err := errors.NormalizeColor(node.Color)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "node %q", node.ID)
			}
			node.Color = c
		}
		n.insert(&node)
	}

	for _, e := range p.Edges {
		if _, dup := n.edges[e.ID]; dup || e.ID < 0 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "invalid or duplicate edge id %d", e.ID)
		}
		if !n.Has(e.From) || !n.Has(e.To) {
			return nil, errors.New(errors.ErrCodeInvalidInput, "edge %d references a missing node", e.ID)
		}
		if e.From == e.To {
			return nil, errors.New(errors.ErrCodeInvalidInput, "edge %d is a self-loop on %q", e.ID, e.From)
		}
		if e.Weight < 0 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "edge %d has negative distance %d", e.ID, e.Weight)
		}
		if e.Style != "" && !ValidStyles[e.Style] {
			return nil, errors.New(errors.ErrCodeInvalidInput, "edge %d has unknown style %q", e.ID, e.Style)
		}
		if !geom.Finite(e.Label.Offset) {
			return nil, errors.New(errors.ErrCodeInvalidInput, "edge %d has a non-finite label offset", e.ID)
		}
		n.edges[e.ID] = e.Clone()
		n.nextEdge = max(n.nextEdge, e.ID+1)
	}

	owner := make(map[string]string)
	for _, g := range p.Groups {
		if err := errors.ValidateName("group", g.Name); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "group")
		}
		if n.groupIndex(g.Name) >= 0 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "duplicate group %q", g.Name)
		}
		c, err := errors.NormalizeColor(g.Color)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "group %q", g.Name)
		}
		g := g.Clone()
		g.Color = c
		for _, sp := range g.Subpops {
			if prev, ok := owner[sp]; ok {
				return nil, errors.New(errors.ErrCodeInvalidInput, "sub-population %q belongs to both %q and %q", sp, prev, g.Name)
			}
			owner[sp] = g.Name
		}
		n.groups = append(n.groups, g)
	}

	if p.Root != "" && !n.Has(p.Root) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "root %q not found", p.Root)
	}
	n.root = p.Root
	n.reindex()
	return n, nil
}
