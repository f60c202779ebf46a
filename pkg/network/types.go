package network

import (
	"slices"

	"gonum.org/v1/gonum/spatial/r2"
)

// EdgeID identifies an edge. IDs are assigned in creation order and never
// reused within a network, so they double as a stable creation timestamp.
type EdgeID int64

// Subdivision is the share of a node's frequency observed in one
// sub-population.
type Subdivision struct {
	Name   string  `json:"name" bson:"name"`
	Weight float64 `json:"weight" bson:"weight"`
}

// Label is the text attached to a node or edge. Offset is relative to the
// owner's default anchor; Moved marks labels the user placed by hand, which
// are kept out of automatic decluttering.
type Label struct {
	Offset   r2.Vec  `json:"offset" bson:"offset"`
	Rotation float64 `json:"rotation,omitempty" bson:"rotation,omitempty"`
	Moved    bool    `json:"moved,omitempty" bson:"moved,omitempty"`
}

// Node is a haplotype.
type Node struct {
	ID string

	// Names are the haplotype names merged into this node, sorted.
	Names []string

	// Members are the underlying sample names, sorted. They feed
	// [Network.ApplyPartition] and the haploweb.
	Members []string

	Weight       float64
	Subdivisions []Subdivision

	Pos   r2.Vec
	Label Label

	// Sets are the user-defined node sets this node belongs to, sorted.
	Sets []string

	// Color overrides the fill of nodes without subdivisions. Empty means
	// the default fill.
	Color string
}

// IsVertex reports whether n is a zero-frequency (hypothetical) haplotype.
func (n *Node) IsVertex() bool { return n.Weight <= 0 }

// NamedWeight returns the sum of the subdivision weights.
func (n *Node) NamedWeight() float64 {
	var s float64
	for _, d := range n.Subdivisions {
		s += d.Weight
	}
	return s
}

// Unknown returns the weight not accounted for by named subdivisions.
func (n *Node) Unknown() float64 {
	return max(0, n.Weight-n.NamedWeight())
}

// Subdivision returns the weight recorded for the named sub-population.
func (n *Node) Subdivision(name string) (float64, bool) {
	for _, d := range n.Subdivisions {
		if d.Name == name {
			return d.Weight, true
		}
	}
	return 0, false
}

// InSet reports whether n belongs to the named node set.
func (n *Node) InSet(name string) bool {
	_, ok := slices.BinarySearch(n.Sets, name)
	return ok
}

// Clone returns a deep copy of n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	c.Names = slices.Clone(n.Names)
	c.Members = slices.Clone(n.Members)
	c.Subdivisions = slices.Clone(n.Subdivisions)
	c.Sets = slices.Clone(n.Sets)
	return &c
}

// EdgeStyle selects how an edge's mutation count is drawn.
type EdgeStyle string

// Edge styles.
const (
	StyleBubbles       EdgeStyle = "bubbles"
	StyleBars          EdgeStyle = "bars"
	StylePlain         EdgeStyle = "plain"
	StyleDotsWithText  EdgeStyle = "dots_with_text"
	StylePlainWithText EdgeStyle = "plain_with_text"
	StyleCollapsed     EdgeStyle = "collapsed"
)

// ValidStyles is the set of supported edge styles.
var ValidStyles = map[EdgeStyle]bool{
	StyleBubbles:       true,
	StyleBars:          true,
	StylePlain:         true,
	StyleDotsWithText:  true,
	StylePlainWithText: true,
	StyleCollapsed:     true,
}

// cutoffStyles maps a base style to the style used past the weight cutoff.
var cutoffStyles = map[EdgeStyle]EdgeStyle{
	StyleBubbles: StyleDotsWithText,
	StyleBars:    StyleCollapsed,
	StylePlain:   StylePlainWithText,
}

// Resolve returns the style to draw an edge of the given weight with, when
// s is the default style and cutoff the largest weight drawn with ticks.
// A cutoff of zero disables the switch.
func (s EdgeStyle) Resolve(weight, cutoff int) EdgeStyle {
	if cutoff <= 0 || weight <= cutoff {
		return s
	}
	if alt, ok := cutoffStyles[s]; ok {
		return alt
	}
	return s
}

// HasTicks reports whether the style draws one mark per mutation.
func (s EdgeStyle) HasTicks() bool {
	return s == StyleBubbles || s == StyleBars
}

// HasText reports whether the style shows the edge label.
func (s EdgeStyle) HasText() bool {
	switch s {
	case StyleDotsWithText, StylePlainWithText, StyleCollapsed:
		return true
	}
	return false
}

// Edge joins two distinct nodes. It is undirected, but From/To is kept so
// that ticks and labels render with a stable orientation.
type Edge struct {
	ID     EdgeID
	From   string
	To     string
	Weight int

	// Style overrides the scene's default edge style when non-empty.
	Style EdgeStyle
	Label Label
}

// Other returns the endpoint of e that is not id.
func (e *Edge) Other(id string) string {
	if e.From == id {
		return e.To
	}
	return e.From
}

// Touches reports whether id is an endpoint of e.
func (e *Edge) Touches(id string) bool { return e.From == id || e.To == id }

// Pair returns the endpoints in canonical (sorted) order.
func (e *Edge) Pair() Pair { return MakePair(e.From, e.To) }

// Clone returns a copy of e.
func (e *Edge) Clone() *Edge {
	if e == nil {
		return nil
	}
	c := *e
	return &c
}

// Pair is an unordered node pair in canonical order (A < B).
type Pair struct{ A, B string }

// MakePair returns the canonical pair for x and y.
func MakePair(x, y string) Pair {
	if y < x {
		x, y = y, x
	}
	return Pair{A: x, B: y}
}

// Group is a named set of sub-populations sharing a display color.
// Subdivisions whose sub-population belongs to no group are drawn in the
// unknown wedge.
type Group struct {
	Name    string
	Color   string
	Subpops []string
}

// Has reports whether the sub-population belongs to g.
func (g *Group) Has(subpop string) bool { return slices.Contains(g.Subpops, subpop) }

// Clone returns a deep copy of g.
func (g *Group) Clone() *Group {
	if g == nil {
		return nil
	}
	c := *g
	c.Subpops = slices.Clone(g.Subpops)
	return &c
}
