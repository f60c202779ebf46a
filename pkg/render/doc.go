// Package render draws scene snapshots.
//
// # Overview
//
// Every renderer consumes a [scene.Snapshot] and nothing else, so output is
// a pure function of the snapshot and the options:
//
//   - [RenderSVG] writes vector output with github.com/ajstarks/svgo
//   - [RenderPNG] rasterizes with github.com/fogleman/gg
//   - [ToDOT] writes the pinned layout as DOT, and [RenderDOT] has Graphviz
//     draw it ([FormatNeato])
//   - [RenderJSON] exports the drawn geometry for external tools
//
// [Render] dispatches on a [Format] name:
//
//	snap := ctrl.Snapshot()
//	svg, err := render.Render(snap, render.FormatSVG, render.WithMargin(40))
//
// # Coordinates
//
// Scene coordinates are y-down. The output frame is the snapshot bounds
// grown by the margin, translated so that its top-left corner is the
// origin. Pie wedges run clockwise from twelve o'clock.
//
// # Styles
//
// Edges are drawn as their visible (trimmed) curves. Mutation ticks are
// dots for zero-length ticks and short strokes across the edge otherwise.
// Hidden edges, whose nodes overlap, are skipped. Haploweb links are drawn
// as dashed arcs when the snapshot carries them and [WithHaploweb] is set.
package render
