package scene

import (
	"maps"
	"slices"

	"github.com/matzehuels/haplonet/pkg/errors"
)

// Select replaces the selection with refs.
func (c *Controller) Select(refs ...Ref) error {
	for _, r := range refs {
		if err := c.selectable(r); err != nil {
			return err
		}
	}
	clear(c.selection)
	for _, r := range refs {
		c.selection[r] = struct{}{}
	}
	c.dirty = true
	return nil
}

// Toggle flips the selection state of r.
func (c *Controller) Toggle(r Ref) error {
	if err := c.selectable(r); err != nil {
		return err
	}
	if _, ok := c.selection[r]; ok {
		delete(c.selection, r)
	} else {
		c.selection[r] = struct{}{}
	}
	c.dirty = true
	return nil
}

// SelectSet selects the members of a named set.
func (c *Controller) SelectSet(set string) error {
	ids, err := c.members(set)
	if err != nil {
		return err
	}
	refs := make([]Ref, len(ids))
	for i, id := range ids {
		refs[i] = NodeRef(id)
	}
	return c.Select(refs...)
}

// ClearSelection deselects everything.
func (c *Controller) ClearSelection() {
	clear(c.selection)
	c.dirty = true
}

// Selection returns the selected items in a stable order.
func (c *Controller) Selection() []Ref {
	return slices.SortedFunc(maps.Keys(c.selection), compareRefs)
}

// SelectedNodes returns the ids of the selected nodes in insertion order.
func (c *Controller) SelectedNodes() []string {
	var ids []string
	for _, id := range c.net.NodeIDs() {
		if c.Selected(NodeRef(id)) {
			ids = append(ids, id)
		}
	}
	return ids
}

// Selected reports whether r is selected.
func (c *Controller) Selected(r Ref) bool {
	_, ok := c.selection[r]
	return ok
}

func (c *Controller) selectable(r Ref) error {
	if !r.Kind.Can(Selectable) {
		return errors.New(errors.ErrCodeInvalidOperation, "%s cannot be selected", r.Kind)
	}
	if !r.exists(c.net) {
		return errors.New(errors.ErrCodeNotFound, "%s not found", r)
	}
	return nil
}
