// Package layout places haplotype networks with a force-directed relaxation
// tuned for nodes of widely varying radius.
//
// Three forces act on every node:
//
//   - Repulsion between every pair, Repulsion·rA·rB/d², so large pies push
//     harder and keep clear of each other.
//   - A spring along every edge towards EdgeLength·mutations + rA + rB, so
//     the visible gap between two pies grows with their mutational distance.
//   - A weak centering pull that translates the whole layout towards the
//     origin without distorting it.
//
// An [Engine] holds a working copy of the positions. [Engine.Seed] places
// nodes deterministically (radially by depth for trees, on a circle or by
// seeded noise for general graphs), and [Engine.Step] performs one
// relaxation pass, writing the new positions back to the network in one go.
// [Engine.Run] steps until the largest displacement drops below Epsilon or
// MaxIterations is reached; hitting the cap is reported but is not an
// error. [Engine.RunBudget] runs a bounded number of steps so callers driving
// an event loop can yield between chunks.
//
// Positions never become non-finite: a node whose update produces NaN or ±Inf
// is reseeded next to its neighbors and the event is reported through
// [Engine.OnDegenerate] and the observability layout hooks.
//
// The same Engine drives the interactive scene: nodes can be pinned to a
// pointer position with [Engine.Pin] and the topology re-read after
// structural edits with [Engine.Sync].
package layout
