package layout

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
	"gonum.org/v1/gonum/graph/traverse"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/haplonet/pkg/geom"
)

// Seed places every node according to the configured seeding, writes the
// positions to the network and restarts the iteration count. Pinned nodes
// keep their pin position.
func (e *Engine) Seed() {
	mode := e.cfg.Seeding
	if mode == SeedAuto {
		mode = SeedCircular
		if e.net.Root() != "" {
			mode = SeedRadial
		}
	}
	switch mode {
	case SeedRadial:
		e.seedRadial()
	case SeedRandom:
		e.seedRandom()
	default:
		e.seedCircular()
	}
	for i, id := range e.ids {
		if p, ok := e.pins[id]; ok {
			e.pos[i] = p
		}
		e.net.SetPos(id, e.pos[i])
	}
	e.Restart()
}

func (e *Engine) seedCircular() {
	n := len(e.pos)
	if n == 1 {
		e.pos[0] = r2.Vec{}
	}
	if n <= 1 {
		return
	}
	var circumference float64
	for _, r := range e.radius {
		circumference += 2*r + e.cfg.EdgeLength
	}
	radius := math.Max(circumference/geom.FullTurn, e.cfg.EdgeLength)
	for i := range e.pos {
		a := -math.Pi/2 + geom.FullTurn*float64(i)/float64(n)
		e.pos[i] = geom.Polar(r2.Vec{}, radius, a)
	}
}

func (e *Engine) seedRandom() {
	n := len(e.pos)
	if n == 0 {
		return
	}
	var span float64
	for _, r := range e.radius {
		span += 2*r + e.cfg.EdgeLength
	}
	span = span / float64(n) * math.Sqrt(float64(n))
	for i := range e.pos {
		t := float64(i)*0.71 + 0.5
		e.pos[i] = r2.Vec{
			X: span * e.noise.Eval2(t, 0.3),
			Y: span * e.noise.Eval2(0.3, t+17.5),
		}
	}
}

// seedRadial lays out each connected component as a radial tree around its
// root (the network root, or else the largest node), with every subtree
// given an angular wedge proportional to its leaf count and every child
// placed at its spring's rest length from its parent. Components are then
// lined up left to right.
func (e *Engine) seedRadial() {
	n := len(e.pos)
	if n == 0 {
		return
	}
	g := simple.NewUndirectedGraph()
	for i := 0; i < n; i++ {
		g.AddNode(simple.Node(int64(i)))
	}
	adj := make([][]int, n)
	rest := make(map[[2]int]float64)
	for _, s := range e.springs {
		g.SetEdge(g.NewEdge(simple.Node(int64(s.i)), simple.Node(int64(s.j))))
		adj[s.i] = append(adj[s.i], s.j)
		adj[s.j] = append(adj[s.j], s.i)
		rest[[2]int{s.i, s.j}] = s.length
		rest[[2]int{s.j, s.i}] = s.length
	}
	for i := range adj {
		slices.Sort(adj[i])
	}

	var comps [][]int
	for _, c := range topo.ConnectedComponents(g) {
		idx := make([]int, len(c))
		for k, node := range c {
			idx[k] = int(node.ID())
		}
		slices.Sort(idx)
		comps = append(comps, idx)
	}
	slices.SortFunc(comps, func(a, b []int) int { return a[0] - b[0] })

	rootID, hasRoot := e.index[e.net.Root()]
	var cursor float64
	for _, comp := range comps {
		root := comp[0]
		if hasRoot && slices.Contains(comp, rootID) {
			root = rootID
		} else {
			for _, i := range comp {
				if e.radius[i] > e.radius[root] {
					root = i
				}
			}
		}

		depth := make(map[int]int, len(comp))
		var bf traverse.BreadthFirst
		bf.Walk(g, simple.Node(int64(root)), func(node graph.Node, d int) bool {
			depth[int(node.ID())] = d
			return false
		})

		// Parent is the lowest-index neighbor one level up, so the tree is
		// independent of traversal order.
		children := make(map[int][]int)
		for _, v := range comp {
			if v == root {
				continue
			}
			for _, u := range adj[v] {
				if depth[u] == depth[v]-1 {
					children[u] = append(children[u], v)
					break
				}
			}
		}

		byDepth := slices.Clone(comp)
		slices.SortStableFunc(byDepth, func(a, b int) int { return depth[b] - depth[a] })
		leaves := make(map[int]int, len(comp))
		for _, v := range byDepth {
			if len(children[v]) == 0 {
				leaves[v] = 1
				continue
			}
			for _, c := range children[v] {
				leaves[v] += leaves[c]
			}
		}

		e.pos[root] = r2.Vec{}
		var place func(v int, start, span float64)
		place = func(v int, start, span float64) {
			for _, c := range children[v] {
				w := span * float64(leaves[c]) / float64(leaves[v])
				e.pos[c] = geom.Polar(e.pos[v], rest[[2]int{v, c}], start+w/2)
				place(c, start, w)
				start += w
			}
		}
		place(root, -math.Pi/2, geom.FullTurn)

		if len(comps) == 1 {
			return
		}

		// Line components up along x.
		minX, maxX := math.Inf(1), math.Inf(-1)
		for _, v := range comp {
			minX = math.Min(minX, e.pos[v].X-e.radius[v])
			maxX = math.Max(maxX, e.pos[v].X+e.radius[v])
		}
		dx := cursor - minX
		for _, v := range comp {
			e.pos[v] = r2.Add(e.pos[v], r2.Vec{X: dx})
		}
		cursor += maxX - minX + e.cfg.EdgeLength
	}

	shift := r2.Vec{X: -(cursor - e.cfg.EdgeLength) / 2}
	for i := range e.pos {
		e.pos[i] = r2.Add(e.pos[i], shift)
	}
}
