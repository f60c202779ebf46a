// Package scene implements the interactive controller that owns a laid-out
// haplotype network while it is being edited.
//
// A [Controller] is a state machine over two states. It rests in [Static]
// and enters [Relaxing] after any edit that moves or rewires nodes: a
// merge, a deletion, a new connection, a bulk move, a relayout, or a node
// drag. While relaxing, every call to [Controller.Advance] runs a bounded
// number of layout steps (see package layout) with the dragged node pinned
// under the pointer, then re-places labels. When the layout converges and
// no drag is active, the controller records the settled positions and
// returns to Static.
//
// # Dragging
//
// A node drag carries the node's subtree when [Config.DragRecursive] is set,
// the tree being the breadth-first tree from the network root (see
// [network.Network.Parents]). With [Config.DragRotational] a node that has a
// parent swings about the parent instead of translating. Carried nodes are
// pinned at their translated or rotated positions every frame while the
// rest of the network relaxes around them.
//
// Advance is a plain step function. Callers drive it from a render loop, a
// timer or a test:
//
//	for c.Advance(16*time.Millisecond) == scene.Relaxing {
//	}
//
// # Undo
//
// Every edit is recorded as one history entry made of [network.Op] records.
// Relaxation ticks are not recorded individually; the positions a relaxation
// settles into are folded into the entry of the edit that started it, or
// recorded as a separate move when a drag started it. [Controller.Undo]
// therefore restores the exact state before the edit, positions included,
// and interrupts any relaxation in progress.
//
// # Snapshot
//
// [Controller.Snapshot] returns everything a renderer or serializer needs:
// positions, radii, pie wedges, trimmed and curved edge geometry with tick
// marks, placed labels, group colors and the selection. It is a copy;
// nothing in it aliases controller state.
package scene
