package scene

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/haplonet/pkg/errors"
	"github.com/matzehuels/haplonet/pkg/geom"
	"github.com/matzehuels/haplonet/pkg/network"
)

// drag is an in-progress pointer drag of a node or a label.
type drag struct {
	ref   Ref
	start r2.Vec // pointer at grab time

	// Nodes only. locked holds the grab-time positions of every node the
	// drag carries. A rotational drag swings them about center by the
	// pointer's turn since angle.
	locked map[string]r2.Vec
	rotate bool
	center r2.Vec
	angle  float64

	// Labels only.
	label  network.Label
	offset r2.Vec
}

// Dragging returns the item being dragged, if any.
func (c *Controller) Dragging() (Ref, bool) {
	if c.drag == nil {
		return Ref{}, false
	}
	return c.drag.ref, true
}

// BeginDrag grabs a draggable item at the given pointer position. Dragging
// a node pins it, and with [Config.DragRecursive] its subtree, and starts
// relaxing; dragging a label only moves the label.
func (c *Controller) BeginDrag(ref Ref, pointer r2.Vec) error {
	if !ref.Kind.Can(Draggable) {
		return errors.New(errors.ErrCodeInvalidOperation, "%s cannot be dragged", ref.Kind)
	}
	if !ref.exists(c.net) {
		return errors.New(errors.ErrCodeNotFound, "%s not found", ref)
	}
	if !geom.Finite(pointer) {
		return errors.New(errors.ErrCodeInvalidOperation, "non-finite pointer position")
	}
	c.interrupt()

	d := &drag{ref: ref, start: pointer}
	switch ref.Kind {
	case KindNode:
		c.lockSubtree(d, pointer)
		c.drag = d
		c.beginRelax(false)
		for id, p := range d.locked {
			c.engine.Pin(id, p)
		}
	case KindNodeLabel:
		d.label = c.net.Node(ref.Node).Label
		d.offset = d.label.Offset
		c.drag = d
	case KindEdgeLabel:
		d.label = c.net.Edge(ref.Edge).Label
		d.offset = d.label.Offset
		c.drag = d
	}
	c.dirty = true
	return nil
}

// DragTo follows the pointer. A node and the nodes it carries either
// translate by the pointer's travel or, for a rotational drag, turn about
// the node's parent by the pointer's change of angle.
func (c *Controller) DragTo(pointer r2.Vec) error {
	d := c.drag
	if d == nil {
		return errors.New(errors.ErrCodeInvalidOperation, "no drag in progress")
	}
	if !geom.Finite(pointer) {
		return errors.New(errors.ErrCodeInvalidOperation, "non-finite pointer position")
	}
	switch d.ref.Kind {
	case KindNode:
		for id, p := range d.locked {
			c.engine.Pin(id, d.place(p, pointer))
		}
		c.engine.Restart()
	case KindNodeLabel:
		d.offset = r2.Add(d.label.Offset, r2.Sub(pointer, d.start))
	case KindEdgeLabel:
		// Edge label offsets live in the edge's frame.
		t, n := c.edgeFrame(c.net.Edge(d.ref.Edge))
		delta := r2.Sub(pointer, d.start)
		d.offset = r2.Add(d.label.Offset, r2.Vec{X: r2.Dot(delta, t), Y: r2.Dot(delta, n)})
	}
	c.dirty = true
	return nil
}

// EndDrag releases the dragged item. A node keeps relaxing and its final
// position is recorded once the scene settles; a label move is recorded
// immediately.
func (c *Controller) EndDrag() error {
	if c.drag == nil {
		return errors.New(errors.ErrCodeInvalidOperation, "no drag in progress")
	}
	return c.finishDrag(true)
}

// CancelDrag aborts a label drag without recording it. A node drag is
// released as with EndDrag, since the network already moved.
func (c *Controller) CancelDrag() {
	if c.drag != nil {
		_ = c.finishDrag(false)
	}
}

func (c *Controller) finishDrag(commit bool) error {
	d := c.drag
	c.drag = nil
	c.dirty = true
	switch d.ref.Kind {
	case KindNode:
		for id := range d.locked {
			c.engine.Unpin(id)
		}
		c.engine.Restart()
		return nil
	case KindNodeLabel, KindEdgeLabel:
		if !commit || d.offset == d.label.Offset {
			return nil
		}
		l := d.label
		l.Offset = d.offset
		l.Moved = true
		return c.setLabel(d.ref, l, "Move label")
	}
	return nil
}

// lockSubtree records the nodes a drag of d.ref carries and whether it
// rotates. Roots always translate.
func (c *Controller) lockSubtree(d *drag, pointer r2.Vec) {
	d.locked = map[string]r2.Vec{d.ref.Node: c.net.Node(d.ref.Node).Pos}
	if !c.cfg.DragRecursive && !c.cfg.DragRotational {
		return
	}
	parents := c.net.Parents()
	if c.cfg.DragRecursive {
		for _, id := range network.Descendants(parents, d.ref.Node) {
			d.locked[id] = c.net.Node(id).Pos
		}
	}
	if parent, ok := parents[d.ref.Node]; ok && c.cfg.DragRotational {
		d.rotate = true
		d.center = c.net.Node(parent).Pos
		d.angle = geom.Angle(r2.Sub(pointer, d.center))
	}
}

// place returns where a node locked at p goes with the pointer at pointer.
func (d *drag) place(p, pointer r2.Vec) r2.Vec {
	if d.rotate {
		return r2.Rotate(p, geom.Angle(r2.Sub(pointer, d.center))-d.angle, d.center)
	}
	return r2.Add(p, r2.Sub(pointer, d.start))
}

// RotateLabel turns a label to the given angle in degrees.
func (c *Controller) RotateLabel(ref Ref, angle float64) error {
	if math.IsNaN(angle) || math.IsInf(angle, 0) {
		return errors.New(errors.ErrCodeInvalidOperation, "non-finite label rotation")
	}
	l, err := c.label(ref)
	if err != nil {
		return err
	}
	if l.Rotation == angle {
		return errors.New(errors.ErrCodeInvalidOperation, "%s is already at %g degrees", ref, angle)
	}
	l.Rotation = angle
	return c.setLabel(ref, l, "Rotate label")
}

// MoveLabel places a label at the given offset from its default anchor and
// excludes it from automatic decluttering.
func (c *Controller) MoveLabel(ref Ref, offset r2.Vec) error {
	l, err := c.label(ref)
	if err != nil {
		return err
	}
	l.Offset = offset
	l.Moved = true
	return c.setLabel(ref, l, "Move label")
}

// ResetLabel returns a label to its default anchor.
func (c *Controller) ResetLabel(ref Ref) error {
	l, err := c.label(ref)
	if err != nil {
		return err
	}
	if l == (network.Label{}) {
		return errors.New(errors.ErrCodeInvalidOperation, "%s is already at its default position", ref)
	}
	return c.setLabel(ref, network.Label{}, "Reset label")
}

func (c *Controller) label(ref Ref) (network.Label, error) {
	switch ref.Kind {
	case KindNodeLabel:
		if n := c.net.Node(ref.Node); n != nil {
			return n.Label, nil
		}
	case KindEdgeLabel:
		if e := c.net.Edge(ref.Edge); e != nil {
			return e.Label, nil
		}
	default:
		return network.Label{}, errors.New(errors.ErrCodeInvalidOperation, "%s is not a label", ref)
	}
	return network.Label{}, errors.New(errors.ErrCodeNotFound, "%s not found", ref)
}

func (c *Controller) setLabel(ref Ref, l network.Label, title string) error {
	return c.do(title, false, func() (*network.Op, error) {
		if ref.Kind == KindNodeLabel {
			return c.net.SetNodeLabel(ref.Node, l)
		}
		return c.net.SetEdgeLabel(ref.Edge, l)
	})
}
