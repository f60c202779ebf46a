package network

import (
	"cmp"
	"fmt"
	"slices"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/haplonet/pkg/errors"
	"github.com/matzehuels/haplonet/pkg/geom"
)

// commit applies a freshly built op and returns it.
func (n *Network) commit(op *Op) (*Op, error) {
	if op.Empty() {
		return nil, errors.New(errors.ErrCodeInvalidOperation, "%s: nothing to change", op.Title)
	}
	if err := n.Apply(op); err != nil {
		return nil, err
	}
	return op, nil
}

func (n *Network) modify(id string) NodeChange {
	node := n.nodes[id]
	return NodeChange{Before: node.Clone(), After: node.Clone(), Index: n.Index(id)}
}

func (n *Network) modifyGroup(i int) GroupChange {
	return GroupChange{Before: n.groups[i].Clone(), After: n.groups[i].Clone(), Index: i}
}

func (n *Network) need(id string) error {
	if _, ok := n.nodes[id]; !ok {
		return errors.New(errors.ErrCodeNotFound, "node %q not found", id)
	}
	return nil
}

func (n *Network) needGroup(name string) (int, error) {
	i := n.groupIndex(name)
	if i < 0 {
		return -1, errors.New(errors.ErrCodeNotFound, "group %q not found", name)
	}
	return i, nil
}

// editName checks a name handed to an edit. A bad name rejects the edit,
// so it is an INVALID_OPERATION like any other refused edit.
func editName(kind, name string) error {
	if err := errors.ValidateName(kind, name); err != nil {
		return errors.New(errors.ErrCodeInvalidOperation, "%s", errors.UserMessage(err))
	}
	return nil
}

// AddNode inserts a new node at the end of the insertion order. The node's
// Weight and Subdivisions are validated and its Names default to its ID.
func (n *Network) AddNode(node Node) (*Op, error) {
	if err := editName("node", node.ID); err != nil {
		return nil, err
	}
	if n.Has(node.ID) {
		return nil, errors.New(errors.ErrCodeInvalidOperation, "node %q already exists", node.ID)
	}
	if err := validateNodeData(&node); err != nil {
		return nil, err
	}
	if !geom.Finite(node.Pos) {
		return nil, errors.New(errors.ErrCodeInvalidOperation, "node %q has a non-finite position", node.ID)
	}
	normalizeNode(&node)
	return n.commit(&Op{
		Kind:  OpAddNode,
		Title: fmt.Sprintf("Add %s", node.ID),
		Nodes: []NodeChange{{After: node.Clone(), Index: len(n.order)}},
	})
}

// Connect adds an edge of the given mutation weight between two distinct
// existing nodes. Parallel edges are allowed.
func (n *Network) Connect(from, to string, weight int) (*Op, error) {
	if err := n.need(from); err != nil {
		return nil, err
	}
	if err := n.need(to); err != nil {
		return nil, err
	}
	if from == to {
		return nil, errors.New(errors.ErrCodeInvalidOperation, "cannot connect %q to itself", from)
	}
	if weight < 0 {
		return nil, errors.New(errors.ErrCodeInvalidOperation, "edge weight must not be negative, got %d", weight)
	}
	e := &Edge{ID: n.nextEdge, From: from, To: to, Weight: weight}
	return n.commit(&Op{
		Kind:  OpConnect,
		Title: fmt.Sprintf("Connect %s to %s", from, to),
		Edges: []EdgeChange{{After: e}},
	})
}

// DeleteEdges removes the given edges.
func (n *Network) DeleteEdges(ids ...EdgeID) (*Op, error) {
	op := &Op{Kind: OpDeleteEdge, Title: "Delete edges"}
	seen := make(map[EdgeID]bool)
	for _, id := range ids {
		e := n.edges[id]
		if e == nil {
			return nil, errors.New(errors.ErrCodeNotFound, "edge %d not found", id)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		op.Edges = append(op.Edges, EdgeChange{Before: e.Clone()})
	}
	if len(op.Edges) == 1 {
		e := op.Edges[0].Before
		op.Title = fmt.Sprintf("Delete edge %s-%s", e.From, e.To)
	}
	return n.commit(op)
}

// DeleteNodes removes the given nodes together with every incident edge.
func (n *Network) DeleteNodes(ids ...string) (*Op, error) {
	op := &Op{Kind: OpDeleteNode, Title: "Delete nodes"}
	doomed := make(map[string]bool)
	for _, id := range ids {
		if err := n.need(id); err != nil {
			return nil, err
		}
		if doomed[id] {
			continue
		}
		doomed[id] = true
		op.Nodes = append(op.Nodes, NodeChange{Before: n.nodes[id].Clone(), Index: n.Index(id)})
	}
	for _, e := range n.Edges() {
		if doomed[e.From] || doomed[e.To] {
			op.Edges = append(op.Edges, EdgeChange{Before: e.Clone()})
		}
	}
	if len(op.Nodes) == 1 {
		op.Title = fmt.Sprintf("Delete %s", op.Nodes[0].Before.ID)
	}
	return n.commit(op)
}

// MergeNodes merges node absorbed into node target. The target keeps its
// identity, position and label; it gains the absorbed node's names,
// members, weight, subdivision weights and set memberships. Edges of the
// absorbed node are re-pointed to the target, except those joining the two
// nodes, which would become self-loops and are dropped.
func (n *Network) MergeNodes(absorbed, target string) (*Op, error) {
	if absorbed == target {
		return nil, errors.New(errors.ErrCodeInvalidMerge, "cannot merge %q into itself", absorbed)
	}
	a, b := n.nodes[absorbed], n.nodes[target]
	if a == nil {
		return nil, errors.New(errors.ErrCodeInvalidMerge, "cannot merge: node %q not found", absorbed)
	}
	if b == nil {
		return nil, errors.New(errors.ErrCodeInvalidMerge, "cannot merge: node %q not found", target)
	}

	merged := b.Clone()
	merged.Names = union(b.Names, a.Names)
	merged.Members = union(b.Members, a.Members)
	merged.Sets = union(b.Sets, a.Sets)
	merged.Weight = a.Weight + b.Weight
	for _, d := range a.Subdivisions {
		i := slices.IndexFunc(merged.Subdivisions, func(x Subdivision) bool { return x.Name == d.Name })
		if i < 0 {
			merged.Subdivisions = append(merged.Subdivisions, d)
		} else {
			merged.Subdivisions[i].Weight += d.Weight
		}
	}
	if merged.Color == "" {
		merged.Color = a.Color
	}

	op := &Op{
		Kind:  OpMerge,
		Title: fmt.Sprintf("Merge %s into %s", absorbed, target),
		Nodes: []NodeChange{
			{Before: a.Clone(), Index: n.Index(absorbed)},
			{Before: b.Clone(), After: merged, Index: n.Index(target)},
		},
	}
	for _, e := range n.Incident(absorbed) {
		if e.Other(absorbed) == target {
			op.Edges = append(op.Edges, EdgeChange{Before: e.Clone()})
			continue
		}
		re := e.Clone()
		if re.From == absorbed {
			re.From = target
		} else {
			re.To = target
		}
		op.Edges = append(op.Edges, EdgeChange{Before: e.Clone(), After: re})
	}
	return n.commit(op)
}

// union returns the sorted, de-duplicated union of a and b.
func union(a, b []string) []string {
	out := slices.Concat(a, b)
	slices.Sort(out)
	return slices.Compact(out)
}

// Move sets the positions of the given nodes.
func (n *Network) Move(moves map[string]r2.Vec) (*Op, error) {
	op := &Op{Kind: OpMove, Title: "Move nodes"}
	for _, id := range n.order {
		p, ok := moves[id]
		if !ok {
			continue
		}
		if !geom.Finite(p) {
			return nil, errors.New(errors.ErrCodeInvalidOperation, "non-finite position for %q", id)
		}
		c := n.modify(id)
		c.After.Pos = p
		op.Nodes = append(op.Nodes, c)
	}
	for id := range moves {
		if err := n.need(id); err != nil {
			return nil, err
		}
	}
	return n.commit(op)
}

// SetNodeLabel replaces the label placement of node id.
func (n *Network) SetNodeLabel(id string, l Label) (*Op, error) {
	if err := n.need(id); err != nil {
		return nil, err
	}
	if !geom.Finite(l.Offset) {
		return nil, errors.New(errors.ErrCodeInvalidOperation, "non-finite label offset")
	}
	c := n.modify(id)
	c.After.Label = l
	return n.commit(&Op{Kind: OpLabelMove, Title: fmt.Sprintf("Move label of %s", id), Nodes: []NodeChange{c}})
}

// SetEdgeLabel replaces the label placement of edge id.
func (n *Network) SetEdgeLabel(id EdgeID, l Label) (*Op, error) {
	e := n.edges[id]
	if e == nil {
		return nil, errors.New(errors.ErrCodeNotFound, "edge %d not found", id)
	}
	if !geom.Finite(l.Offset) {
		return nil, errors.New(errors.ErrCodeInvalidOperation, "non-finite label offset")
	}
	after := e.Clone()
	after.Label = l
	return n.commit(&Op{
		Kind:  OpLabelMove,
		Title: fmt.Sprintf("Move label of edge %s-%s", e.From, e.To),
		Edges: []EdgeChange{{Before: e.Clone(), After: after}},
	})
}

// SetEdgeStyle sets the style override of the given edges. An empty style
// restores the default.
func (n *Network) SetEdgeStyle(style EdgeStyle, ids ...EdgeID) (*Op, error) {
	if style != "" && !ValidStyles[style] {
		return nil, errors.New(errors.ErrCodeInvalidOperation, "unknown edge style %q", style)
	}
	op := &Op{Kind: OpStyle, Title: fmt.Sprintf("Set edge style %s", style)}
	for _, id := range ids {
		e := n.edges[id]
		if e == nil {
			return nil, errors.New(errors.ErrCodeNotFound, "edge %d not found", id)
		}
		if e.Style == style {
			continue
		}
		after := e.Clone()
		after.Style = style
		op.Edges = append(op.Edges, EdgeChange{Before: e.Clone(), After: after})
	}
	return n.commit(op)
}

// Tag adds the given nodes to the named node set.
func (n *Network) Tag(set string, ids ...string) (*Op, error) {
	return n.retag(set, true, ids)
}

// Untag removes the given nodes from the named node set.
func (n *Network) Untag(set string, ids ...string) (*Op, error) {
	return n.retag(set, false, ids)
}

func (n *Network) retag(set string, add bool, ids []string) (*Op, error) {
	if err := editName("set", set); err != nil {
		return nil, err
	}
	title := fmt.Sprintf("Add to set %s", set)
	if !add {
		title = fmt.Sprintf("Remove from set %s", set)
	}
	op := &Op{Kind: OpTag, Title: title}
	seen := make(map[string]bool)
	for _, id := range ids {
		if err := n.need(id); err != nil {
			return nil, err
		}
		if seen[id] || n.nodes[id].InSet(set) == add {
			continue
		}
		seen[id] = true
		c := n.modify(id)
		if add {
			c.After.Sets = union(c.After.Sets, []string{set})
		} else {
			c.After.Sets = slices.DeleteFunc(c.After.Sets, func(s string) bool { return s == set })
		}
		op.Nodes = append(op.Nodes, c)
	}
	return n.commit(op)
}

// RecolorNodes sets the fill override of the given nodes. An empty color
// clears it.
func (n *Network) RecolorNodes(color string, ids ...string) (*Op, error) {
	if color != "" {
		c, err := errors.NormalizeColor(color)
		if err != nil {
			return nil, err
		}
		color = c
	}
	op := &Op{Kind: OpRecolor, Title: "Recolor nodes"}
	for _, id := range ids {
		if err := n.need(id); err != nil {
			return nil, err
		}
		if n.nodes[id].Color == color || slices.ContainsFunc(op.Nodes, func(c NodeChange) bool { return c.id() == id }) {
			continue
		}
		c := n.modify(id)
		c.After.Color = color
		op.Nodes = append(op.Nodes, c)
	}
	return n.commit(op)
}

// AddGroup creates a group with the given color owning the listed
// sub-populations. Sub-populations already owned by another group move to
// the new one. An empty color picks the next palette color.
func (n *Network) AddGroup(name, color string, subpops ...string) (*Op, error) {
	if err := editName("group", name); err != nil {
		return nil, err
	}
	if n.groupIndex(name) >= 0 {
		return nil, errors.New(errors.ErrCodeInvalidOperation, "group %q already exists", name)
	}
	if color == "" {
		color = n.palette.Color(len(n.groups))
	}
	color, err := errors.NormalizeColor(color)
	if err != nil {
		return nil, err
	}
	g := &Group{Name: name, Color: color}
	for _, sp := range subpops {
		if err := editName("sub-population", sp); err != nil {
			return nil, err
		}
		if !g.Has(sp) {
			g.Subpops = append(g.Subpops, sp)
		}
	}
	op := &Op{Kind: OpGroupAdd, Title: fmt.Sprintf("Add group %s", name)}
	op.Groups = n.releaseSubpops(g.Subpops, "")
	op.Groups = append(op.Groups, GroupChange{After: g, Index: len(n.groups)})
	return n.commit(op)
}

// releaseSubpops returns changes removing subpops from every group other
// than keep.
func (n *Network) releaseSubpops(subpops []string, keep string) []GroupChange {
	var out []GroupChange
	for i, g := range n.groups {
		if g.Name == keep || !slices.ContainsFunc(subpops, g.Has) {
			continue
		}
		c := n.modifyGroup(i)
		c.After.Subpops = slices.DeleteFunc(c.After.Subpops, func(s string) bool { return slices.Contains(subpops, s) })
		out = append(out, c)
	}
	return out
}

// AssignSubpop moves a sub-population into the named group. An empty group
// name releases it into the unknown bucket.
func (n *Network) AssignSubpop(subpop, group string) (*Op, error) {
	if err := editName("sub-population", subpop); err != nil {
		return nil, err
	}
	op := &Op{Kind: OpGroupAssign, Title: fmt.Sprintf("Assign %s", subpop)}
	if group != "" {
		i, err := n.needGroup(group)
		if err != nil {
			return nil, err
		}
		if n.groups[i].Has(subpop) {
			return nil, errors.New(errors.ErrCodeInvalidOperation, "%q already belongs to group %q", subpop, group)
		}
		op.Title = fmt.Sprintf("Assign %s to %s", subpop, group)
		op.Groups = n.releaseSubpops([]string{subpop}, group)
		c := n.modifyGroup(i)
		c.After.Subpops = append(c.After.Subpops, subpop)
		op.Groups = append(op.Groups, c)
	} else {
		op.Groups = n.releaseSubpops([]string{subpop}, "")
	}
	return n.commit(op)
}

// RenameGroup renames a group. Pie wedges follow the group, so no node
// changes.
func (n *Network) RenameGroup(old, name string) (*Op, error) {
	i, err := n.needGroup(old)
	if err != nil {
		return nil, err
	}
	if err := editName("group", name); err != nil {
		return nil, err
	}
	if old == name {
		return nil, errors.New(errors.ErrCodeInvalidOperation, "group %q already has that name", old)
	}
	if n.groupIndex(name) >= 0 {
		return nil, errors.New(errors.ErrCodeInvalidOperation, "group %q already exists", name)
	}
	c := n.modifyGroup(i)
	c.After.Name = name
	return n.commit(&Op{Kind: OpGroupRename, Title: fmt.Sprintf("Rename group %s to %s", old, name), Groups: []GroupChange{c}})
}

// DeleteGroup removes a group. Its sub-populations fall into every node's
// unknown wedge.
func (n *Network) DeleteGroup(name string) (*Op, error) {
	i, err := n.needGroup(name)
	if err != nil {
		return nil, err
	}
	return n.commit(&Op{
		Kind:   OpGroupDelete,
		Title:  fmt.Sprintf("Delete group %s", name),
		Groups: []GroupChange{{Before: n.groups[i].Clone(), Index: i}},
	})
}

// Recolor changes a group's color.
func (n *Network) Recolor(name, color string) (*Op, error) {
	i, err := n.needGroup(name)
	if err != nil {
		return nil, err
	}
	color, err = errors.NormalizeColor(color)
	if err != nil {
		return nil, err
	}
	if n.groups[i].Color == color {
		return nil, errors.New(errors.ErrCodeInvalidOperation, "group %q already has color %s", name, color)
	}
	c := n.modifyGroup(i)
	c.After.Color = color
	return n.commit(&Op{Kind: OpRecolor, Title: fmt.Sprintf("Recolor group %s", name), Groups: []GroupChange{c}})
}

// ApplyPartition recomputes every node's subdivisions from its members,
// counting one unit of weight per member assigned to a sub-population.
// Members missing from the partition count towards the unknown wedge.
// Sub-populations not yet owned by a group get a new group each, colored
// from the palette.
func (n *Network) ApplyPartition(partition map[string]string) (*Op, error) {
	if len(partition) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "empty partition")
	}
	op := &Op{Kind: OpPartition, Title: "Apply partition"}
	var fresh []string
	for _, id := range n.order {
		node := n.nodes[id]
		var subs []Subdivision
		for _, m := range node.Members {
			sp, ok := partition[m]
			if !ok {
				continue
			}
			if err := errors.ValidateName("sub-population", sp); err != nil {
				return nil, err
			}
			i := slices.IndexFunc(subs, func(d Subdivision) bool { return d.Name == sp })
			if i < 0 {
				subs = append(subs, Subdivision{Name: sp, Weight: 1})
			} else {
				subs[i].Weight++
			}
			if n.GroupOf(sp) == nil && !slices.Contains(fresh, sp) {
				fresh = append(fresh, sp)
			}
		}
		slices.SortFunc(subs, func(a, b Subdivision) int { return cmp.Compare(a.Name, b.Name) })
		if slices.Equal(subs, node.Subdivisions) {
			continue
		}
		c := n.modify(id)
		c.After.Subdivisions = subs
		op.Nodes = append(op.Nodes, c)
	}
	slices.Sort(fresh)
	for i, sp := range fresh {
		if n.groupIndex(sp) >= 0 {
			return nil, errors.New(errors.ErrCodeInvalidOperation, "group %q exists but does not own sub-population %q", sp, sp)
		}
		idx := len(n.groups) + i
		op.Groups = append(op.Groups, GroupChange{
			After: &Group{Name: sp, Color: n.palette.Color(idx), Subpops: []string{sp}},
			Index: idx,
		})
	}
	return n.commit(op)
}
