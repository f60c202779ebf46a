package scene

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/haplonet/pkg/errors"
	"github.com/matzehuels/haplonet/pkg/network"
)

// do runs one user edit made of one or more network mutations. The edit is
// atomic: if a later mutation fails the earlier ones are reverted and the
// network is left as it was. On success the edit becomes one undo entry.
// When relax is set the layout relaxes afterwards and the settled
// positions are folded into the same entry.
func (c *Controller) do(title string, relax bool, steps ...func() (*network.Op, error)) error {
	c.interrupt()
	var ops []*network.Op
	for _, step := range steps {
		op, err := step()
		if err != nil {
			for i := len(ops) - 1; i >= 0; i-- {
				if rerr := c.net.Revert(ops[i]); rerr != nil {
					return errors.Wrap(errors.ErrCodeInternal, rerr, "roll back %s", title)
				}
			}
			c.refresh()
			return err
		}
		if op != nil {
			ops = append(ops, op)
		}
	}
	if len(ops) == 0 {
		return errors.New(errors.ErrCodeInvalidOperation, "%s: nothing to change", title)
	}
	if title == "" {
		title = ops[0].Title
	}
	c.push(entry{title: title, ops: ops})
	if relax {
		c.beginRelax(true)
	}
	c.refresh()
	return nil
}

// AddNode inserts a node and relaxes around it.
func (c *Controller) AddNode(node network.Node) error {
	return c.do("", true, func() (*network.Op, error) { return c.net.AddNode(node) })
}

// Merge merges node absorbed into node target.
func (c *Controller) Merge(absorbed, target string) error {
	return c.do("", true, func() (*network.Op, error) { return c.net.MergeNodes(absorbed, target) })
}

// DeleteNodes removes nodes together with their edges.
func (c *Controller) DeleteNodes(ids ...string) error {
	return c.do("", true, func() (*network.Op, error) { return c.net.DeleteNodes(ids...) })
}

// DeleteEdges removes edges.
func (c *Controller) DeleteEdges(ids ...network.EdgeID) error {
	return c.do("", true, func() (*network.Op, error) { return c.net.DeleteEdges(ids...) })
}

// DeleteSelection removes every selected node and edge as one edit.
func (c *Controller) DeleteSelection() error {
	var nodes []string
	var edges []network.EdgeID
	for _, r := range c.Selection() {
		switch r.Kind {
		case KindNode:
			nodes = append(nodes, r.Node)
		case KindEdge:
			edges = append(edges, r.Edge)
		}
	}
	// Edges cascading from deleted nodes are not deleted twice.
	var loose []network.EdgeID
	for _, id := range edges {
		e := c.net.Edge(id)
		if !c.Selected(NodeRef(e.From)) && !c.Selected(NodeRef(e.To)) {
			loose = append(loose, id)
		}
	}
	var steps []func() (*network.Op, error)
	if len(loose) > 0 {
		steps = append(steps, func() (*network.Op, error) { return c.net.DeleteEdges(loose...) })
	}
	if len(nodes) > 0 {
		steps = append(steps, func() (*network.Op, error) { return c.net.DeleteNodes(nodes...) })
	}
	return c.do("Delete selection", true, steps...)
}

// Connect adds an edge and returns its id.
func (c *Controller) Connect(from, to string, weight int) (network.EdgeID, error) {
	var id network.EdgeID
	err := c.do("", true, func() (*network.Op, error) {
		op, err := c.net.Connect(from, to, weight)
		if err == nil {
			id = op.Edges[0].After.ID
		}
		return op, err
	})
	return id, err
}

// MoveNodes shifts the given nodes by delta and relaxes the rest around
// them.
func (c *Controller) MoveNodes(delta r2.Vec, ids ...string) error {
	return c.do("", true, func() (*network.Op, error) {
		moves := make(map[string]r2.Vec, len(ids))
		for _, id := range ids {
			node := c.net.Node(id)
			if node == nil {
				return nil, errors.New(errors.ErrCodeNotFound, "node %q not found", id)
			}
			moves[id] = r2.Add(node.Pos, delta)
		}
		return c.net.Move(moves)
	})
}

// MoveSet shifts every member of a set.
func (c *Controller) MoveSet(set string, delta r2.Vec) error {
	ids, err := c.members(set)
	if err != nil {
		return err
	}
	return c.MoveNodes(delta, ids...)
}

// RecolorNodes sets the fill override of nodes. An empty color clears it.
func (c *Controller) RecolorNodes(color string, ids ...string) error {
	return c.do("", false, func() (*network.Op, error) { return c.net.RecolorNodes(color, ids...) })
}

// RecolorSet sets the fill override of every member of a set.
func (c *Controller) RecolorSet(set, color string) error {
	ids, err := c.members(set)
	if err != nil {
		return err
	}
	return c.RecolorNodes(color, ids...)
}

func (c *Controller) members(set string) ([]string, error) {
	ids := c.net.SetMembers(set)
	if len(ids) == 0 {
		return nil, errors.New(errors.ErrCodeNotFound, "set %q has no members", set)
	}
	return ids, nil
}

// Tag adds nodes to a named set.
func (c *Controller) Tag(set string, ids ...string) error {
	return c.do("", false, func() (*network.Op, error) { return c.net.Tag(set, ids...) })
}

// Untag removes nodes from a named set.
func (c *Controller) Untag(set string, ids ...string) error {
	return c.do("", false, func() (*network.Op, error) { return c.net.Untag(set, ids...) })
}

// TagSelection adds the selected nodes to a named set.
func (c *Controller) TagSelection(set string) error {
	ids := c.SelectedNodes()
	if len(ids) == 0 {
		return errors.New(errors.ErrCodeInvalidOperation, "no nodes selected")
	}
	return c.Tag(set, ids...)
}

// SetEdgeStyle overrides the style of edges. An empty style restores the
// scene default.
func (c *Controller) SetEdgeStyle(style network.EdgeStyle, ids ...network.EdgeID) error {
	return c.do("", false, func() (*network.Op, error) { return c.net.SetEdgeStyle(style, ids...) })
}

// AddGroup creates a group.
func (c *Controller) AddGroup(name, color string, subpops ...string) error {
	return c.do("", false, func() (*network.Op, error) { return c.net.AddGroup(name, color, subpops...) })
}

// RenameGroup renames a group.
func (c *Controller) RenameGroup(old, name string) error {
	return c.do("", false, func() (*network.Op, error) { return c.net.RenameGroup(old, name) })
}

// DeleteGroup removes a group; its sub-populations become unknown.
func (c *Controller) DeleteGroup(name string) error {
	return c.do("", false, func() (*network.Op, error) { return c.net.DeleteGroup(name) })
}

// RecolorGroup changes a group's color.
func (c *Controller) RecolorGroup(name, color string) error {
	return c.do("", false, func() (*network.Op, error) { return c.net.Recolor(name, color) })
}

// AssignSubpop moves a sub-population into a group.
func (c *Controller) AssignSubpop(subpop, group string) error {
	return c.do("", false, func() (*network.Op, error) { return c.net.AssignSubpop(subpop, group) })
}

// ApplyPartition recomputes subdivisions from a member→sub-population map.
func (c *Controller) ApplyPartition(partition map[string]string) error {
	return c.do("", false, func() (*network.Op, error) { return c.net.ApplyPartition(partition) })
}
