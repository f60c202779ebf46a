package scene

import (
	"time"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/haplonet/pkg/errors"
	"github.com/matzehuels/haplonet/pkg/layout"
	"github.com/matzehuels/haplonet/pkg/network"
)

// State is the layout state of the scene.
type State uint8

// States.
const (
	Static State = iota
	Relaxing
)

func (s State) String() string {
	if s == Relaxing {
		return "relaxing"
	}
	return "static"
}

// entry is one undoable user action.
type entry struct {
	title string
	ops   []*network.Op
}

// pending tracks a relaxation whose end state has not been recorded yet.
type pending struct {
	base map[string]r2.Vec
	// fold is true when the settled positions belong to the entry on top
	// of the undo stack rather than to a separate move.
	fold bool
}

// Controller owns a network during interactive editing. It is not safe for
// concurrent use; drive it from one event loop.
type Controller struct {
	cfg    Config
	net    *network.Network
	engine *layout.Engine
	state  State

	acc     time.Duration
	pending *pending
	drag    *drag

	undo []entry
	redo []entry

	selection map[Ref]struct{}

	// Placed labels, rebuilt by refresh.
	labels map[Ref]LabelView
	dirty  bool

	cancel func()

	Logger *log.Logger

	// OnStateChange, if set, is called on every transition.
	OnStateChange func(from, to State)
}

// New returns a controller for net. The network's current positions are
// taken as-is; call Relayout to compute fresh ones.
func New(net *network.Network, cfg Config) (*Controller, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	engine, err := layout.New(net, cfg.Layout)
	if err != nil {
		return nil, err
	}
	c := &Controller{
		cfg:       cfg,
		net:       net,
		engine:    engine,
		selection: make(map[Ref]struct{}),
		dirty:     true,
		Logger:    log.Default(),
	}
	engine.OnDegenerate = func(err *errors.DegenerateError) {
		c.Logger.Debug("reseeded node", "node", err.NodeID, "iteration", err.Iteration)
	}
	c.cancel = net.OnChange(c.onChange)
	return c, nil
}

// Close detaches the controller from its network.
func (c *Controller) Close() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// Network returns the controlled network. Mutate it through the controller
// so that edits are recorded.
func (c *Controller) Network() *network.Network { return c.net }

// Config returns the controller configuration.
func (c *Controller) Config() Config { return c.cfg }

// Iterations returns the number of layout steps since relaxation last
// restarted.
func (c *Controller) Iterations() int { return c.engine.Iterations() }

// State returns the current layout state.
func (c *Controller) State() State { return c.state }

func (c *Controller) setState(s State) {
	if s == c.state {
		return
	}
	from := c.state
	c.state = s
	if s == Static {
		c.acc = 0
	}
	if c.OnStateChange != nil {
		c.OnStateChange(from, s)
	}
}

// onChange keeps the engine and derived geometry in step with the network.
func (c *Controller) onChange(network.Change) {
	c.engine.Sync()
	for r := range c.selection {
		if !r.exists(c.net) {
			delete(c.selection, r)
		}
	}
	if c.drag != nil && !c.drag.ref.exists(c.net) {
		c.drag = nil
	}
	c.dirty = true
}

// Advance moves the simulation forward by dt and returns the new state.
// While relaxing it runs one layout step per StepInterval of accumulated
// time, at most MaxStepsPerFrame per call, then re-places labels.
func (c *Controller) Advance(dt time.Duration) State {
	if c.state == Static {
		return Static
	}
	c.acc += dt
	steps := int(c.acc / c.cfg.StepInterval)
	if steps > c.cfg.MaxStepsPerFrame {
		steps = c.cfg.MaxStepsPerFrame
		c.acc = 0
	} else {
		c.acc -= time.Duration(steps) * c.cfg.StepInterval
	}
	if steps == 0 {
		return c.state
	}

	if c.drag != nil && c.drag.ref.Kind == KindNode {
		for i := 0; i < steps; i++ {
			c.engine.Step()
		}
	} else if _, done := c.engine.RunBudget(steps); done {
		c.settle()
	}
	c.dirty = true
	c.refresh()
	return c.state
}

// Settle advances until the scene is static or maxSteps layout steps have
// run, and reports whether it settled. An active node drag is released
// first.
func (c *Controller) Settle(maxSteps int) bool {
	if c.drag != nil && c.drag.ref.Kind == KindNode {
		_ = c.EndDrag()
	}
	for n := 0; c.state == Relaxing && n < maxSteps; n += c.cfg.MaxStepsPerFrame {
		c.Advance(time.Duration(c.cfg.MaxStepsPerFrame) * c.cfg.StepInterval)
	}
	return c.state == Static
}

// settle records the resting positions and returns to Static.
func (c *Controller) settle() {
	c.flush()
	c.setState(Static)
}

// beginRelax starts a relaxation. The current positions become the
// baseline the settled state is compared against.
func (c *Controller) beginRelax(fold bool) {
	c.pending = &pending{base: c.net.Positions(), fold: fold}
	c.engine.Restart()
	c.acc = 0
	c.setState(Relaxing)
}

// flush records the positions reached by an in-flight relaxation, either
// into the entry that started it or as a new move entry.
func (c *Controller) flush() {
	p := c.pending
	if p == nil {
		return
	}
	c.pending = nil
	if p.fold && len(c.undo) > 0 {
		top := c.undo[len(c.undo)-1]
		c.net.FoldMoves(top.ops[len(top.ops)-1], p.base)
		return
	}
	if op := c.net.RecordMoves(p.base); op != nil {
		c.push(entry{title: op.Title, ops: []*network.Op{op}})
	}
}

func (c *Controller) push(e entry) {
	c.undo = append(c.undo, e)
	if over := len(c.undo) - c.cfg.HistoryLimit; c.cfg.HistoryLimit > 0 && over > 0 {
		c.undo = append(c.undo[:0], c.undo[over:]...)
	}
	c.redo = nil
}

// interrupt ends any drag, records any relaxation in progress and stops
// it, so that a new edit or an undo starts from a checkpoint.
func (c *Controller) interrupt() {
	if c.drag != nil {
		_ = c.finishDrag(false)
	}
	c.flush()
	c.setState(Static)
}

// Stop freezes the scene where it is. A relaxation in progress is recorded
// as if it had settled.
func (c *Controller) Stop() { c.interrupt() }

// CanUndo reports whether there is an entry to undo.
func (c *Controller) CanUndo() bool { return len(c.undo) > 0 || c.pending != nil && !c.pending.fold }

// CanRedo reports whether there is an entry to redo.
func (c *Controller) CanRedo() bool { return len(c.redo) > 0 }

// History returns the titles of the undo and redo stacks, oldest first.
func (c *Controller) History() (undo, redo []string) {
	for _, e := range c.undo {
		undo = append(undo, e.title)
	}
	for _, e := range c.redo {
		redo = append(redo, e.title)
	}
	return undo, redo
}

// Undo reverts the most recent entry and stops any relaxation. It returns a
// NOTHING_TO_UNDO error when the history is empty.
func (c *Controller) Undo() error {
	c.interrupt()
	if len(c.undo) == 0 {
		return errors.New(errors.ErrCodeNothingToUndo, "nothing to undo")
	}
	e := c.undo[len(c.undo)-1]
	for i := len(e.ops) - 1; i >= 0; i-- {
		if err := c.net.Revert(e.ops[i]); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "undo %s", e.title)
		}
	}
	c.undo = c.undo[:len(c.undo)-1]
	c.redo = append(c.redo, e)
	c.Logger.Debug("undo", "entry", e.title, "remaining", len(c.undo))
	c.setState(Static)
	c.refresh()
	return nil
}

// Redo re-applies the most recently undone entry.
func (c *Controller) Redo() error {
	c.interrupt()
	if len(c.redo) == 0 {
		return errors.New(errors.ErrCodeNothingToUndo, "nothing to redo")
	}
	e := c.redo[len(c.redo)-1]
	for _, op := range e.ops {
		if err := c.net.Apply(op); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "redo %s", e.title)
		}
	}
	c.redo = c.redo[:len(c.redo)-1]
	c.undo = append(c.undo, e)
	c.Logger.Debug("redo", "entry", e.title)
	c.setState(Static)
	c.refresh()
	return nil
}

// Relayout reseeds every node and relaxes from scratch. The result is one
// undoable move.
func (c *Controller) Relayout() {
	c.interrupt()
	base := c.net.Positions()
	c.engine.Seed()
	c.pending = &pending{base: base}
	c.engine.Restart()
	c.acc = 0
	c.setState(Relaxing)
	c.dirty = true
}

// Relax restarts relaxation from the current positions.
func (c *Controller) Relax() {
	c.interrupt()
	c.beginRelax(false)
}
