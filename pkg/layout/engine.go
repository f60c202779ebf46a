package layout

import (
	"math"

	"github.com/ojrac/opensimplex-go"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/haplonet/pkg/errors"
	"github.com/matzehuels/haplonet/pkg/geom"
	"github.com/matzehuels/haplonet/pkg/network"
	"github.com/matzehuels/haplonet/pkg/observability"
)

// spring is one node pair joined by at least one edge.
type spring struct {
	i, j   int
	length float64
}

// Result summarizes a relaxation run.
type Result struct {
	Iterations      int
	Converged       bool
	MaxDisplacement float64
	Recovered       int // nodes reseeded after a non-finite update
}

// Engine relaxes the positions of one network.
type Engine struct {
	cfg Config
	net *network.Network

	ids     []string
	index   map[string]int
	pos     []r2.Vec
	radius  []float64
	degree  []int
	springs []spring

	pins map[string]r2.Vec

	iter      int
	recovered int
	noise     opensimplex.Noise

	// OnDegenerate, if set, is called for every node reseeded after a
	// non-finite update.
	OnDegenerate func(*errors.DegenerateError)
}

// New returns an engine for net. The config goes through
// [Config.WithDefaults] first.
func New(net *network.Network, cfg Config) (*Engine, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		cfg:   cfg,
		net:   net,
		pins:  make(map[string]r2.Vec),
		noise: opensimplex.New(cfg.Seed),
	}
	e.Sync()
	return e, nil
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config { return e.cfg }

// Iterations returns the number of steps since the last Restart.
func (e *Engine) Iterations() int { return e.iter }

// Restart resets the iteration count so a new run gets the full budget.
func (e *Engine) Restart() {
	e.iter = 0
	e.recovered = 0
}

// Sync re-reads topology, radii and positions from the network. Call it
// after every structural change. Pins on nodes that no longer exist are
// dropped.
func (e *Engine) Sync() {
	nodes := e.net.Nodes()
	e.ids = make([]string, len(nodes))
	e.index = make(map[string]int, len(nodes))
	e.pos = make([]r2.Vec, len(nodes))
	e.radius = make([]float64, len(nodes))
	e.degree = make([]int, len(nodes))
	for i, n := range nodes {
		e.ids[i] = n.ID
		e.index[n.ID] = i
		e.pos[i] = n.Pos
		e.radius[i] = e.net.Radius(n.ID)
	}
	for id := range e.pins {
		if _, ok := e.index[id]; !ok {
			delete(e.pins, id)
		}
	}

	e.springs = e.springs[:0]
	seen := make(map[network.Pair]int)
	var weights [][]int
	for _, edge := range e.net.Edges() {
		p := edge.Pair()
		k, ok := seen[p]
		if !ok {
			k = len(e.springs)
			seen[p] = k
			i, j := e.index[edge.From], e.index[edge.To]
			e.springs = append(e.springs, spring{i: i, j: j})
			weights = append(weights, nil)
			e.degree[i]++
			e.degree[j]++
		}
		weights[k] = append(weights[k], edge.Weight)
	}
	for k := range e.springs {
		s := &e.springs[k]
		var sum int
		for _, w := range weights[k] {
			sum += w
		}
		mean := float64(sum) / float64(len(weights[k]))
		s.length = e.TargetLength(mean, e.radius[s.i], e.radius[s.j])
	}

	for i := range e.pos {
		if !geom.Finite(e.pos[i]) {
			e.pos[i] = e.reseed(i)
			e.net.SetPos(e.ids[i], e.pos[i])
		}
	}
}

// TargetLength returns the resting center distance of an edge of the given
// mutation weight between nodes of radius ra and rb.
func (e *Engine) TargetLength(weight, ra, rb float64) float64 {
	return e.cfg.EdgeLength*weight + ra + rb
}

// Pin holds node id at p until Unpin. Pinned nodes still exert forces on
// the others.
func (e *Engine) Pin(id string, p r2.Vec) bool {
	i, ok := e.index[id]
	if !ok || !geom.Finite(p) {
		return false
	}
	e.pins[id] = p
	e.pos[i] = p
	e.net.SetPos(id, p)
	return true
}

// Unpin releases node id.
func (e *Engine) Unpin(id string) { delete(e.pins, id) }

// Pinned reports whether any node is pinned.
func (e *Engine) Pinned() bool { return len(e.pins) > 0 }

// Step performs one relaxation pass over every node and writes the new
// positions to the network. It returns the largest displacement of an
// unpinned node.
func (e *Engine) Step() float64 {
	n := len(e.pos)
	if n == 0 {
		return 0
	}
	force := make([]r2.Vec, n)

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			delta := r2.Sub(e.pos[i], e.pos[j])
			d := r2.Norm(delta)
			dir := geom.SafeUnit(delta, geom.Direction(i+j))
			d = math.Max(d, e.cfg.MinDistance)
			f := r2.Scale(e.cfg.Repulsion*e.radius[i]*e.radius[j]/(d*d), dir)
			force[i] = r2.Add(force[i], f)
			force[j] = r2.Sub(force[j], f)
		}
	}

	for _, s := range e.springs {
		delta := r2.Sub(e.pos[s.j], e.pos[s.i])
		d := r2.Norm(delta)
		dir := geom.SafeUnit(delta, geom.Direction(s.i+s.j))
		f := r2.Scale(e.cfg.Spring*(d-s.length), dir)
		force[s.i] = r2.Add(force[s.i], f)
		force[s.j] = r2.Sub(force[s.j], f)
	}

	var shift r2.Vec
	if len(e.pins) == 0 && e.cfg.Centering > 0 {
		var c r2.Vec
		for _, p := range e.pos {
			c = r2.Add(c, p)
		}
		shift = r2.Scale(-e.cfg.Centering/float64(n), c)
	}

	next := make([]r2.Vec, n)
	var moved float64
	for i := range e.pos {
		if p, ok := e.pins[e.ids[i]]; ok {
			next[i] = p
			continue
		}
		// Degree-normalized step.
		d := r2.Scale(1/(1+e.cfg.Spring*float64(e.degree[i])), force[i])
		d = r2.Add(geom.ClampNorm(d, e.cfg.MaxStep), shift)
		p := r2.Add(e.pos[i], d)
		if !geom.Finite(p) {
			p = e.reseed(i)
		}
		next[i] = p
		moved = math.Max(moved, geom.Distance(e.pos[i], p))
	}

	e.pos = next
	e.iter++
	for i, id := range e.ids {
		e.net.SetPos(id, e.pos[i])
	}
	return moved
}

// Run steps until convergence or MaxIterations, counted from the last
// Restart.
func (e *Engine) Run() Result {
	res, _ := e.RunBudget(e.cfg.MaxIterations)
	observability.Layout().OnSettle(res.Iterations, res.Converged, res.MaxDisplacement)
	return res
}

// RunBudget performs at most budget steps. done is true once the run has
// converged or exhausted MaxIterations; callers keep calling RunBudget
// until then.
func (e *Engine) RunBudget(budget int) (res Result, done bool) {
	res.MaxDisplacement = math.Inf(1)
	for k := 0; k < budget; k++ {
		if e.iter >= e.cfg.MaxIterations {
			done = true
			break
		}
		res.MaxDisplacement = e.Step()
		if res.MaxDisplacement < e.cfg.Epsilon {
			res.Converged = true
			done = true
			break
		}
	}
	if e.iter >= e.cfg.MaxIterations {
		done = true
	}
	if len(e.pos) == 0 {
		res.MaxDisplacement = 0
		res.Converged = true
		done = true
	}
	res.Iterations = e.iter
	res.Recovered = e.recovered
	return res, done
}

// reseed returns a finite position for node i next to its finite
// neighbors, or near the origin, offset by a noise-driven direction.
func (e *Engine) reseed(i int) r2.Vec {
	err := &errors.DegenerateError{NodeID: e.ids[i], Iteration: e.iter}
	e.recovered++
	if e.OnDegenerate != nil {
		e.OnDegenerate(err)
	}
	observability.Layout().OnDegenerate(err.NodeID, err.Iteration)

	var anchor r2.Vec
	var count int
	for _, s := range e.springs {
		var other int
		switch i {
		case s.i:
			other = s.j
		case s.j:
			other = s.i
		default:
			continue
		}
		if p := e.pos[other]; geom.Finite(p) {
			anchor = r2.Add(anchor, p)
			count++
		}
	}
	if count > 0 {
		anchor = r2.Scale(1/float64(count), anchor)
	}
	a := math.Pi * (1 + e.noise.Eval2(float64(i)*0.37, float64(e.iter)*0.11))
	r := e.radius[i] + e.cfg.EdgeLength
	return geom.Polar(anchor, r, a)
}

// Relax seeds net and runs the relaxation to completion.
func Relax(net *network.Network, cfg Config) (Result, error) {
	e, err := New(net, cfg)
	if err != nil {
		return Result{}, err
	}
	e.Seed()
	return e.Run(), nil
}
