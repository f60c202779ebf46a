package scene

import (
	"fmt"

	"github.com/matzehuels/haplonet/pkg/network"
)

// Kind classifies scene items.
type Kind uint8

// Item kinds.
const (
	KindNode Kind = iota
	KindEdge
	KindNodeLabel
	KindEdgeLabel
)

func (k Kind) String() string {
	switch k {
	case KindNode:
		return "node"
	case KindEdge:
		return "edge"
	case KindNodeLabel:
		return "node label"
	case KindEdgeLabel:
		return "edge label"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Capability is a set of interactions an item supports.
type Capability uint8

// Capabilities.
const (
	Drawable Capability = 1 << iota
	Draggable
	Selectable
)

// Caps returns the capabilities of items of kind k.
func (k Kind) Caps() Capability {
	switch k {
	case KindNode:
		return Drawable | Draggable | Selectable
	case KindEdge:
		return Drawable | Selectable
	case KindNodeLabel, KindEdgeLabel:
		return Drawable | Draggable
	}
	return 0
}

// Can reports whether items of kind k support every capability in c.
func (k Kind) Can(c Capability) bool { return k.Caps()&c == c }

// Ref identifies one scene item. Node and node-label refs use Node; edge
// and edge-label refs use Edge.
type Ref struct {
	Kind Kind
	Node string
	Edge network.EdgeID
}

// NodeRef refers to a node.
func NodeRef(id string) Ref { return Ref{Kind: KindNode, Node: id} }

// EdgeRef refers to an edge.
func EdgeRef(id network.EdgeID) Ref { return Ref{Kind: KindEdge, Edge: id} }

// NodeLabelRef refers to a node's label.
func NodeLabelRef(id string) Ref { return Ref{Kind: KindNodeLabel, Node: id} }

// EdgeLabelRef refers to an edge's label.
func EdgeLabelRef(id network.EdgeID) Ref { return Ref{Kind: KindEdgeLabel, Edge: id} }

func (r Ref) String() string {
	switch r.Kind {
	case KindNode, KindNodeLabel:
		return fmt.Sprintf("%s %s", r.Kind, r.Node)
	}
	return fmt.Sprintf("%s %d", r.Kind, r.Edge)
}

// exists reports whether the item r refers to is present in net.
func (r Ref) exists(net *network.Network) bool {
	switch r.Kind {
	case KindNode, KindNodeLabel:
		return net.Has(r.Node)
	case KindEdge, KindEdgeLabel:
		return net.Edge(r.Edge) != nil
	}
	return false
}

func compareRefs(a, b Ref) int {
	if a.Kind != b.Kind {
		return int(a.Kind) - int(b.Kind)
	}
	switch {
	case a.Node < b.Node:
		return -1
	case a.Node > b.Node:
		return 1
	case a.Edge < b.Edge:
		return -1
	case a.Edge > b.Edge:
		return 1
	}
	return 0
}
