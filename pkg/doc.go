// Package pkg provides the core libraries for haplonet haplotype networks.
//
// # Overview
//
// Haplonet turns a haplotype tree or graph into a force-directed network
// drawing: nodes are pies sized by frequency and split by sub-population,
// edges carry one tick per mutation. The scene can then be edited with
// merges, deletions, new connections, drags and recolors, all undoable. The
// pkg directory is organized into four main areas:
//
//  1. Model: [network], [layout], [geom]
//  2. Interaction: [scene]
//  3. Persistence: [document], [store], [cache], [config]
//  4. Output and orchestration: [render], [pipeline], [io]
//
// # Architecture
//
// The typical data flow through haplonet:
//
//	Tree / graph / edge-list description (+ partition)
//	         ↓
//	    [io] package (parse into a network)
//	         ↓
//	    [scene] package (controller relaxes the [layout] engine)
//	         ↓
//	    [document] package (persist the settled scene)
//	         ↓
//	    [render] package (SVG/PNG/DOT/JSON output)
//
// # Quick Start
//
// Lay out a tree and render it:
//
//	import (
//	    "context"
//	    "os"
//
//	    "github.com/matzehuels/haplonet/pkg/io"
//	    "github.com/matzehuels/haplonet/pkg/network"
//	    "github.com/matzehuels/haplonet/pkg/pipeline"
//	    "github.com/matzehuels/haplonet/pkg/render"
//	    "github.com/matzehuels/haplonet/pkg/scene"
//	)
//
//	// 1. Read the description
//	n, _ := io.Import("cytb.tree.json", io.FormatAuto, network.Options{})
//
//	// 2. Relax to equilibrium
//	c, _, _ := pipeline.Settle(context.Background(), n, scene.DefaultConfig(), pipeline.DefaultMaxSteps)
//	defer c.Close()
//
//	// 3. Render the snapshot
//	svg, _ := render.Render(c.Snapshot(), render.FormatSVG, render.WithLegend())
//	os.WriteFile("cytb.svg", svg, 0o644)
//
// # Main Packages
//
// [network] - The haplotype graph: nodes with names, members, weights and
// sub-population slices; edges with mutation counts and styles; groups that
// color sub-populations. Every mutation is an invertible Op, which is what
// makes undo exact.
//
// [layout] - The force-directed engine (repulsion, springs, centering) with
// seeding strategies and degenerate-position recovery.
//
// [scene] - The interactive controller. It owns a network and an engine,
// runs the relaxation state machine, keeps the undo and redo stacks, and
// produces read-only snapshots with placed labels and mutation ticks.
//
// [geom] - Vectors, quadratic curves, pie wedges and label declutter.
//
// [document] - The persisted scene format (JSON with bson tags).
//
// [store] - Named scene storage on disk or in MongoDB.
//
// [cache] - Layout and artifact cache on disk or in Redis.
//
// [config] - The TOML configuration file.
//
// [render] - Drawing snapshots as SVG, PNG, Graphviz DOT and JSON.
//
// [pipeline] - The import → layout → render runner used by the CLI.
//
// [io] - Tree, graph, edge-list and partition readers plus graph export.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/scene/...              # Specific package
//	go test -run Example                 # Examples only
//	go test -tags integration ./pkg/...  # Include Redis and MongoDB tests
package pkg
