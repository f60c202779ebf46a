// Package network implements the haplotype network data model.
//
// A [Network] owns its nodes (haplotypes), edges (mutational distances) and
// groups (colored sub-populations). Nodes carry a frequency weight that
// drives their radius and an ordered list of [Subdivision] weights rendered
// as pie wedges; edges carry an integer mutation count rendered as tick
// marks. Labels hang off nodes and edges and die with them.
//
// # Building
//
// Networks are built from either description:
//
//	net, err := network.BuildFromTree(entries, network.Options{})
//	net, err := network.BuildFromGraph(nodes, edges, network.Options{})
//
// Malformed input fails with an INVALID_INPUT error before anything is
// constructed.
//
// # Mutation
//
// Every structural mutation (merge, delete, connect, group edits, committed
// moves) is expressed as an [Op]: a tagged record of before/after copies of
// each touched entity. Mutating methods validate first, build the Op, apply
// it and return it. [Network.Revert] and [Network.Apply] replay an Op in
// either direction, which is how the scene controller implements undo and
// redo. A rejected mutation leaves the network exactly as it was.
//
// Registered listeners (see [Network.OnChange]) receive a [Change] after
// every applied or reverted Op.
//
// # Multi-edges
//
// Several edges may join the same pair of nodes. Each gets a parallel slot
// ordered by creation (edge IDs are monotonic), recomputed after every Op
// that touches the pair. See [Network.Parallel] and [CurvatureSlot].
//
// # Concurrency
//
// A Network is not safe for concurrent use. It is designed to be driven
// from a single event loop.
package network
