package network

import (
	"slices"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
	"gonum.org/v1/gonum/graph/traverse"
)

// Parents returns the parent of every node that has one. Each connected
// component is rooted at the network root when it contains it and at its
// largest node otherwise, ties going to the earlier node. A node's parent
// is its earliest neighbor one breadth-first level nearer that root, so
// the result does not depend on edge order.
func (n *Network) Parents() map[string]string {
	g := simple.NewUndirectedGraph()
	index := make(map[string]int, len(n.order))
	for i, id := range n.order {
		index[id] = i
		g.AddNode(simple.Node(int64(i)))
	}
	for _, e := range n.edges {
		a, b := index[e.From], index[e.To]
		if a != b {
			g.SetEdge(g.NewEdge(simple.Node(int64(a)), simple.Node(int64(b))))
		}
	}

	parents := make(map[string]string)
	root, hasRoot := index[n.Root()]
	for _, c := range topo.ConnectedComponents(g) {
		comp := make([]int, len(c))
		for k, node := range c {
			comp[k] = int(node.ID())
		}
		slices.Sort(comp)

		top := comp[0]
		if hasRoot && slices.Contains(comp, root) {
			top = root
		} else {
			for _, i := range comp {
				if n.Radius(n.order[i]) > n.Radius(n.order[top]) {
					top = i
				}
			}
		}

		depth := make(map[int]int, len(comp))
		var bf traverse.BreadthFirst
		bf.Walk(g, simple.Node(int64(top)), func(node graph.Node, d int) bool {
			depth[int(node.ID())] = d
			return false
		})

		for _, v := range comp {
			if v == top {
				continue
			}
			id := n.order[v]
			best := -1
			for _, u := range n.Neighbors(id) {
				if j := index[u]; depth[j] == depth[v]-1 && (best < 0 || j < best) {
					best = j
				}
			}
			if best >= 0 {
				parents[id] = n.order[best]
			}
		}
	}
	return parents
}

// Descendants returns every node below id in the tree given by parents,
// nearest first.
func Descendants(parents map[string]string, id string) []string {
	children := make(map[string][]string)
	for child, parent := range parents {
		children[parent] = append(children[parent], child)
	}
	var out []string
	queue := []string{id}
	for len(queue) > 0 {
		next := children[queue[0]]
		slices.Sort(next)
		out = append(out, next...)
		queue = append(queue[1:], next...)
	}
	return out
}
