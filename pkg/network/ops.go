package network

import (
	"slices"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/haplonet/pkg/errors"
)

// OpKind tags an [Op] with the user action that produced it.
type OpKind string

// Op kinds.
const (
	OpAddNode     OpKind = "add_node"
	OpMerge       OpKind = "merge"
	OpDeleteNode  OpKind = "delete_node"
	OpDeleteEdge  OpKind = "delete_edge"
	OpConnect     OpKind = "connect"
	OpGroupAdd    OpKind = "group_add"
	OpGroupRename OpKind = "group_rename"
	OpGroupAssign OpKind = "group_assign"
	OpGroupDelete OpKind = "group_delete"
	OpRecolor     OpKind = "recolor"
	OpPartition   OpKind = "partition"
	OpMove        OpKind = "move"
	OpLabelMove   OpKind = "label_move"
	OpTag         OpKind = "tag"
	OpStyle       OpKind = "style"

	// OpResize is only ever reported through Change; it has no Op.
	OpResize OpKind = "resize"
)

// NodeChange records one node's state before and after an Op. A nil Before
// means the Op creates the node; a nil After means it removes it. Index is
// the node's insertion position in whichever state it exists in.
type NodeChange struct {
	Before, After *Node
	Index         int
}

func (c NodeChange) id() string {
	if c.Before != nil {
		return c.Before.ID
	}
	return c.After.ID
}

// EdgeChange records one edge's state before and after an Op.
type EdgeChange struct {
	Before, After *Edge
}

func (c EdgeChange) id() EdgeID {
	if c.Before != nil {
		return c.Before.ID
	}
	return c.After.ID
}

// GroupChange records one group's state before and after an Op. Renames
// keep the Index.
type GroupChange struct {
	Before, After *Group
	Index         int
}

// Op is a reversible mutation: deep copies of every entity it touches, as
// they were before and after. Applying an Op sets each entity to its After
// state; reverting sets it to Before. Ops hold no references into the
// network, so an Op can be replayed any number of times.
type Op struct {
	Kind   OpKind
	Title  string
	Nodes  []NodeChange
	Edges  []EdgeChange
	Groups []GroupChange
}

// Empty reports whether the Op changes nothing.
func (op *Op) Empty() bool {
	return op == nil || len(op.Nodes)+len(op.Edges)+len(op.Groups) == 0
}

// Change describes an applied or reverted Op to listeners.
type Change struct {
	Kind     OpKind
	Reverted bool
	Nodes    []string
	Edges    []EdgeID
	Groups   []string
}

// OnChange registers fn to be called after every applied or reverted Op.
// The returned function unregisters it.
func (n *Network) OnChange(fn func(Change)) (cancel func()) {
	id := n.nextListener
	n.nextListener++
	n.listeners[id] = fn
	return func() { delete(n.listeners, id) }
}

func (n *Network) emit(c Change) {
	keys := make([]int, 0, len(n.listeners))
	for k := range n.listeners {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		n.listeners[k](c)
	}
}

// Apply sets every entity touched by op to its After state.
func (n *Network) Apply(op *Op) error { return n.replay(op, false) }

// Revert sets every entity touched by op to its Before state.
func (n *Network) Revert(op *Op) error { return n.replay(op, true) }

func (n *Network) replay(op *Op, reverse bool) error {
	if op == nil {
		return errors.New(errors.ErrCodeInvalidOperation, "nil operation")
	}
	if err := n.check(op, reverse); err != nil {
		return err
	}

	// Groups: removals, then in-place updates, then inserts by position.
	var ginserts []GroupChange
	for _, c := range op.Groups {
		from, to := c.Before, c.After
		if reverse {
			from, to = to, from
		}
		switch {
		case to == nil:
			i := n.groupIndex(from.Name)
			n.groups = slices.Delete(n.groups, i, i+1)
		case from == nil:
			ginserts = append(ginserts, GroupChange{After: to, Index: c.Index})
		default:
			n.groups[n.groupIndex(from.Name)] = to.Clone()
		}
	}
	slices.SortFunc(ginserts, func(a, b GroupChange) int { return a.Index - b.Index })
	for _, c := range ginserts {
		n.groups = slices.Insert(n.groups, min(c.Index, len(n.groups)), c.After.Clone())
	}

	// Nodes, same order of work.
	var ninserts []NodeChange
	for _, c := range op.Nodes {
		from, to := c.Before, c.After
		if reverse {
			from, to = to, from
		}
		switch {
		case to == nil:
			delete(n.nodes, from.ID)
			n.order = slices.DeleteFunc(n.order, func(id string) bool { return id == from.ID })
		case from == nil:
			ninserts = append(ninserts, NodeChange{After: to, Index: c.Index})
		default:
			n.nodes[to.ID] = to.Clone()
		}
	}
	slices.SortFunc(ninserts, func(a, b NodeChange) int { return a.Index - b.Index })
	for _, c := range ninserts {
		n.nodes[c.After.ID] = c.After.Clone()
		n.order = slices.Insert(n.order, min(c.Index, len(n.order)), c.After.ID)
	}

	for _, c := range op.Edges {
		from, to := c.Before, c.After
		if reverse {
			from, to = to, from
		}
		if to == nil {
			delete(n.edges, from.ID)
			continue
		}
		n.edges[to.ID] = to.Clone()
		if to.ID >= n.nextEdge {
			n.nextEdge = to.ID + 1
		}
	}

	n.reindex()
	n.emit(op.change(reverse))
	return nil
}

// check verifies that op can be replayed against the current state and that
// the result keeps every edge attached to existing, distinct nodes.
func (n *Network) check(op *Op, reverse bool) error {
	removed := make(map[string]bool)
	added := make(map[string]bool)
	for _, c := range op.Nodes {
		from, to := c.Before, c.After
		if reverse {
			from, to = to, from
		}
		if from == nil && to == nil {
			return errors.New(errors.ErrCodeInvalidOperation, "empty node change")
		}
		id := c.id()
		_, exists := n.nodes[id]
		if (from != nil) != exists {
			return errors.New(errors.ErrCodeInvalidOperation, "operation does not match current state of node %q", id)
		}
		if to == nil {
			removed[id] = true
		} else if from == nil {
			added[id] = true
		}
	}
	alive := func(id string) bool {
		if added[id] {
			return true
		}
		_, ok := n.nodes[id]
		return ok && !removed[id]
	}

	touched := make(map[EdgeID]bool)
	for _, c := range op.Edges {
		from, to := c.Before, c.After
		if reverse {
			from, to = to, from
		}
		if from == nil && to == nil {
			return errors.New(errors.ErrCodeInvalidOperation, "empty edge change")
		}
		id := c.id()
		touched[id] = true
		_, exists := n.edges[id]
		if (from != nil) != exists {
			return errors.New(errors.ErrCodeInvalidOperation, "operation does not match current state of edge %d", id)
		}
		if to != nil {
			if to.From == to.To {
				return errors.New(errors.ErrCodeInvalidOperation, "edge %d would be a self-loop", id)
			}
			if !alive(to.From) || !alive(to.To) {
				return errors.New(errors.ErrCodeInvalidOperation, "edge %d would reference a missing node", id)
			}
		}
	}
	for id, e := range n.edges {
		if touched[id] {
			continue
		}
		if !alive(e.From) || !alive(e.To) {
			return errors.New(errors.ErrCodeInvalidOperation, "edge %d would be left dangling", id)
		}
	}

	for _, c := range op.Groups {
		from, to := c.Before, c.After
		if reverse {
			from, to = to, from
		}
		switch {
		case from == nil && to == nil:
			return errors.New(errors.ErrCodeInvalidOperation, "empty group change")
		case from == nil:
			if n.groupIndex(to.Name) >= 0 {
				return errors.New(errors.ErrCodeInvalidOperation, "group %q already exists", to.Name)
			}
		default:
			if n.groupIndex(from.Name) < 0 {
				return errors.New(errors.ErrCodeInvalidOperation, "operation does not match current state of group %q", from.Name)
			}
			if to != nil && to.Name != from.Name && n.groupIndex(to.Name) >= 0 {
				return errors.New(errors.ErrCodeInvalidOperation, "group %q already exists", to.Name)
			}
		}
	}
	return nil
}

func (op *Op) change(reverse bool) Change {
	c := Change{Kind: op.Kind, Reverted: reverse}
	for _, nc := range op.Nodes {
		c.Nodes = append(c.Nodes, nc.id())
	}
	for _, ec := range op.Edges {
		c.Edges = append(c.Edges, ec.id())
	}
	for _, gc := range op.Groups {
		if gc.Before != nil {
			c.Groups = append(c.Groups, gc.Before.Name)
		}
		if gc.After != nil && (gc.Before == nil || gc.After.Name != gc.Before.Name) {
			c.Groups = append(c.Groups, gc.After.Name)
		}
	}
	return c
}

// RecordMoves returns an OpMove for every node whose position differs from
// base, treating the current positions as already applied. It returns nil
// when nothing moved.
func (n *Network) RecordMoves(base map[string]r2.Vec) *Op {
	op := &Op{Kind: OpMove, Title: "Move nodes"}
	n.FoldMoves(op, base)
	if op.Empty() {
		return nil
	}
	return op
}

// FoldMoves extends op, which must already be applied, so that it also
// covers position changes made since base was captured. After replaying
// the extended op nodes land where they are now; reverting it puts them
// back where they were in base.
func (n *Network) FoldMoves(op *Op, base map[string]r2.Vec) {
	for _, id := range n.order {
		node := n.nodes[id]
		from, ok := base[id]
		if !ok || from == node.Pos {
			continue
		}
		i := slices.IndexFunc(op.Nodes, func(c NodeChange) bool { return c.id() == id })
		if i >= 0 {
			if op.Nodes[i].After != nil {
				op.Nodes[i].After.Pos = node.Pos
			}
			continue
		}
		before := node.Clone()
		before.Pos = from
		op.Nodes = append(op.Nodes, NodeChange{Before: before, After: node.Clone(), Index: n.Index(id)})
	}
}
