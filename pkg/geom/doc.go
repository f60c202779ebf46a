// Package geom provides the planar geometry used by the layout engine and
// the scene controller.
//
// Vectors and boxes are gonum's [r2.Vec] and [r2.Box]; this package adds the
// guarded operations a force simulation needs (unit vectors that never divide
// by zero, finiteness checks, magnitude clamping), circle/segment helpers for
// attaching edges to pie nodes, quadratic Bézier helpers for curved
// multi-edges, and [Declutter], the local overlap-avoidance pass for labels.
//
// All functions are pure and safe for concurrent use.
package geom
