package network

import (
	"github.com/matzehuels/haplonet/pkg/geom"
)

// Slice is one wedge of a node's pie.
type Slice struct {
	// Name is the sub-population, or UnknownSlice.
	Name string
	// Group is the owning group, empty for the unknown wedge.
	Group  string
	Color  string
	Weight float64
	geom.Wedge
}

// UnknownSlice names the wedge holding weight not attributed to any group.
const UnknownSlice = ""

const geomEpsilon = 1e-12

// Pie returns the wedges for node id, clockwise from 12 o'clock in
// subdivision order, followed by the unknown remainder. Zero-weight
// subdivisions are skipped. The spans add up to a full turn unless the
// node has no weight at all, in which case nil is returned.
//
// Subdivisions whose sub-population belongs to no group are folded into the
// unknown wedge, and unknown is max(0, weight − named) so a node whose named
// subdivisions exceed its weight is drawn proportionally to the named sum.
func (n *Network) Pie(id string) []Slice {
	node := n.nodes[id]
	if node == nil {
		return nil
	}
	var slices []Slice
	var named float64
	for _, d := range node.Subdivisions {
		g := n.GroupOf(d.Name)
		if g == nil || d.Weight <= 0 {
			continue
		}
		slices = append(slices, Slice{Name: d.Name, Group: g.Name, Color: g.Color, Weight: d.Weight})
		named += d.Weight
	}
	if unknown := node.Weight - named; unknown > geomEpsilon {
		slices = append(slices, Slice{Name: UnknownSlice, Weight: unknown})
	}
	total := max(node.Weight, named)
	if total <= 0 || len(slices) == 0 {
		return nil
	}
	var start float64
	for i := range slices {
		span := geom.FullTurn * slices[i].Weight / total
		slices[i].Wedge = geom.Wedge{Start: start, Span: span}
		start += span
	}
	// Absorb rounding so the last wedge closes the circle exactly.
	last := &slices[len(slices)-1]
	last.Span = geom.FullTurn - last.Start
	return slices
}
