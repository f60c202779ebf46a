package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/haplonet/pkg/document"
	"github.com/matzehuels/haplonet/pkg/errors"
	pkgio "github.com/matzehuels/haplonet/pkg/io"
	"github.com/matzehuels/haplonet/pkg/network"
	"github.com/matzehuels/haplonet/pkg/pipeline"
	"github.com/matzehuels/haplonet/pkg/scene"
)

// editOpts holds the command-line flags for the edit command. Every
// operation flag may be repeated.
type editOpts struct {
	output    string
	fromStore bool
	partition string
	undo      int
	maxSteps  int

	merge       []string // absorbed:target
	deleteNodes []string
	deleteEdges []int64
	connect     []string // from:to[:weight]
	move        []string // id[,id...]:dx:dy
	recolor     []string // color:id[,id...]
	tag         []string // set:id[,id...]
	untag       []string // set:id[,id...]
	edgeStyle   []string // style:edge[,edge...]
	addGroup    []string // name:color[:subpop,...]
	renameGroup []string // old:new
	deleteGroup []string
	assign      []string // subpop:group
}

// edit is one parsed operation.
type edit struct {
	name  string
	apply func(*scene.Controller) error
}

// editCommand creates the edit command for scripted scene changes.
func (c *CLI) editCommand() *cobra.Command {
	opts := editOpts{maxSteps: pipeline.DefaultMaxSteps}

	cmd := &cobra.Command{
		Use:   "edit [scene]",
		Short: "Apply editing operations to a scene",
		Long: `Apply editing operations to a scene without opening the viewer.

Operations run in this order: partition, merge, delete, delete-edge,
connect, move, recolor, tag, untag, edge-style, group, rename-group,
delete-group, assign. Operations that change the topology relax the
network afterwards. --undo N then reverts the last N operations.

The scene is overwritten unless -o is given.`,
		Example: `  haplonet edit net.scene.json --merge H7:H2 --connect H3:H5:2
  haplonet edit net.scene.json --group North:#1f77b4:pop1,pop2 --assign pop3:North
  haplonet edit net.scene.json --recolor '#ff0000':H1,H4 --undo 1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			edits, err := parseEdits(opts)
			if err != nil {
				return err
			}
			return c.runEdit(cmd.Context(), args[0], opts, edits)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "", "output file (default: overwrite the input)")
	f.BoolVar(&opts.fromStore, "id", false, "load and save the scene in the store by ID")
	f.StringVarP(&opts.partition, "partition", "p", "", "recompute pie slices from a partition file")
	f.IntVar(&opts.undo, "undo", 0, "undo the last N operations")
	f.IntVar(&opts.maxSteps, "max-steps", opts.maxSteps, "relaxation step budget per operation")
	f.StringArrayVar(&opts.merge, "merge", nil, "merge node into another (absorbed:target)")
	f.StringSliceVar(&opts.deleteNodes, "delete", nil, "delete nodes")
	f.Int64SliceVar(&opts.deleteEdges, "delete-edge", nil, "delete edges by id")
	f.StringArrayVar(&opts.connect, "connect", nil, "connect two nodes (from:to[:mutations])")
	f.StringArrayVar(&opts.move, "move", nil, "move nodes (id[,id]:dx:dy)")
	f.StringArrayVar(&opts.recolor, "recolor", nil, "set node fill (color:id[,id])")
	f.StringArrayVar(&opts.tag, "tag", nil, "add nodes to a set (set:id[,id])")
	f.StringArrayVar(&opts.untag, "untag", nil, "remove nodes from a set (set:id[,id])")
	f.StringArrayVar(&opts.edgeStyle, "edge-style", nil, "override edge style (style:edge[,edge])")
	f.StringArrayVar(&opts.addGroup, "group", nil, "add a group (name:color[:subpop,subpop])")
	f.StringArrayVar(&opts.renameGroup, "rename-group", nil, "rename a group (old:new)")
	f.StringSliceVar(&opts.deleteGroup, "delete-group", nil, "delete groups")
	f.StringArrayVar(&opts.assign, "assign", nil, "move a sub-population into a group (subpop:group)")

	return cmd
}

// runEdit applies edits to the scene and saves it.
func (c *CLI) runEdit(ctx context.Context, ref string, opts editOpts, edits []edit) error {
	if opts.partition != "" {
		partition, err := pkgio.ImportPartition(opts.partition)
		if err != nil {
			return err
		}
		edits = append([]edit{{"partition", func(s *scene.Controller) error { return s.ApplyPartition(partition) }}}, edits...)
	}
	if len(edits) == 0 && opts.undo == 0 {
		return fmt.Errorf("no operations given")
	}

	doc, err := c.loadScene(ctx, ref, opts.fromStore)
	if err != nil {
		return err
	}
	ctrl, err := doc.Open()
	if err != nil {
		return fmt.Errorf("open scene: %w", err)
	}
	defer ctrl.Close()
	ctrl.Logger = c.Logger

	st := startStage(c.Logger, "edit")
	if err := applyEdits(ctx, ctrl, edits, opts.maxSteps); err != nil {
		return err
	}
	for i := 0; i < opts.undo; i++ {
		if err := ctrl.Undo(); err != nil {
			return fmt.Errorf("undo %d: %w", i+1, err)
		}
	}
	st.done("applied edits", "edits", len(edits), "undone", opts.undo)
	if undo, redo := ctrl.History(); len(undo)+len(redo) > 0 {
		c.Logger.Debug("history", "undo", undo, "redo", redo)
	}

	doc.Update(ctrl)
	if opts.fromStore {
		if err := c.saveToStore(ctx, doc); err != nil {
			return err
		}
	} else {
		path := opts.output
		if path == "" {
			path = ref
		}
		if err := document.Save(doc, path); err != nil {
			return fmt.Errorf("write output %s: %w", path, err)
		}
		printSuccess("Scene updated")
		printFile(path)
	}
	undo, _ := ctrl.History()
	printSummary(summary{nodes: len(doc.Nodes), edges: len(doc.Edges), undo: len(undo)})
	return nil
}

// applyEdits runs each edit and lets the network come to rest before the
// next one.
func applyEdits(ctx context.Context, ctrl *scene.Controller, edits []edit, maxSteps int) error {
	for _, e := range edits {
		if err := e.apply(ctrl); err != nil {
			return fmt.Errorf("%s: %w", e.name, err)
		}
		if err := pipeline.Relax(ctx, ctrl, maxSteps); err != nil {
			return err
		}
		loggerFromContext(ctx).Debug("applied edit", "edit", e.name, "steps", ctrl.Iterations())
	}
	return nil
}

// parseEdits turns the operation flags into edits in application order.
func parseEdits(o editOpts) ([]edit, error) {
	var edits []edit
	add := func(name string, fn func(*scene.Controller) error) {
		edits = append(edits, edit{name: name, apply: fn})
	}

	for _, arg := range o.merge {
		parts, err := splitArg("merge", arg, 2, 2)
		if err != nil {
			return nil, err
		}
		add("merge "+arg, func(s *scene.Controller) error { return s.Merge(parts[0], parts[1]) })
	}
	if len(o.deleteNodes) > 0 {
		ids := o.deleteNodes
		add("delete", func(s *scene.Controller) error { return s.DeleteNodes(ids...) })
	}
	if len(o.deleteEdges) > 0 {
		ids := make([]network.EdgeID, len(o.deleteEdges))
		for i, id := range o.deleteEdges {
			ids[i] = network.EdgeID(id)
		}
		add("delete-edge", func(s *scene.Controller) error { return s.DeleteEdges(ids...) })
	}
	for _, arg := range o.connect {
		parts, err := splitArg("connect", arg, 2, 3)
		if err != nil {
			return nil, err
		}
		weight := 1
		if len(parts) == 3 {
			if weight, err = strconv.Atoi(parts[2]); err != nil {
				return nil, errors.New(errors.ErrCodeInvalidInput, "connect %q: bad mutation count", arg)
			}
		}
		add("connect "+arg, func(s *scene.Controller) error {
			_, err := s.Connect(parts[0], parts[1], weight)
			return err
		})
	}
	for _, arg := range o.move {
		parts, err := splitArg("move", arg, 3, 3)
		if err != nil {
			return nil, err
		}
		dx, errX := strconv.ParseFloat(parts[1], 64)
		dy, errY := strconv.ParseFloat(parts[2], 64)
		if errX != nil || errY != nil {
			return nil, errors.New(errors.ErrCodeInvalidInput, "move %q: bad offset", arg)
		}
		ids := splitList(parts[0])
		add("move "+arg, func(s *scene.Controller) error { return s.MoveNodes(r2.Vec{X: dx, Y: dy}, ids...) })
	}
	for _, arg := range o.recolor {
		parts, err := splitArg("recolor", arg, 2, 2)
		if err != nil {
			return nil, err
		}
		ids := splitList(parts[1])
		add("recolor "+arg, func(s *scene.Controller) error { return s.RecolorNodes(parts[0], ids...) })
	}
	for _, arg := range o.tag {
		parts, err := splitArg("tag", arg, 2, 2)
		if err != nil {
			return nil, err
		}
		ids := splitList(parts[1])
		add("tag "+arg, func(s *scene.Controller) error { return s.Tag(parts[0], ids...) })
	}
	for _, arg := range o.untag {
		parts, err := splitArg("untag", arg, 2, 2)
		if err != nil {
			return nil, err
		}
		ids := splitList(parts[1])
		add("untag "+arg, func(s *scene.Controller) error { return s.Untag(parts[0], ids...) })
	}
	for _, arg := range o.edgeStyle {
		parts, err := splitArg("edge-style", arg, 2, 2)
		if err != nil {
			return nil, err
		}
		style := network.EdgeStyle(parts[0])
		if !network.ValidStyles[style] {
			return nil, errors.New(errors.ErrCodeInvalidInput, "edge-style %q: unknown style", arg)
		}
		var ids []network.EdgeID
		for _, raw := range splitList(parts[1]) {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return nil, errors.New(errors.ErrCodeInvalidInput, "edge-style %q: bad edge id %q", arg, raw)
			}
			ids = append(ids, network.EdgeID(id))
		}
		add("edge-style "+arg, func(s *scene.Controller) error { return s.SetEdgeStyle(style, ids...) })
	}
	for _, arg := range o.addGroup {
		parts, err := splitArg("group", arg, 2, 3)
		if err != nil {
			return nil, err
		}
		var subpops []string
		if len(parts) == 3 {
			subpops = splitList(parts[2])
		}
		add("group "+arg, func(s *scene.Controller) error { return s.AddGroup(parts[0], parts[1], subpops...) })
	}
	for _, arg := range o.renameGroup {
		parts, err := splitArg("rename-group", arg, 2, 2)
		if err != nil {
			return nil, err
		}
		add("rename-group "+arg, func(s *scene.Controller) error { return s.RenameGroup(parts[0], parts[1]) })
	}
	for _, name := range o.deleteGroup {
		add("delete-group "+name, func(s *scene.Controller) error { return s.DeleteGroup(name) })
	}
	for _, arg := range o.assign {
		parts, err := splitArg("assign", arg, 2, 2)
		if err != nil {
			return nil, err
		}
		add("assign "+arg, func(s *scene.Controller) error { return s.AssignSubpop(parts[0], parts[1]) })
	}
	return edits, nil
}

// splitArg splits a colon-separated flag value into between lo and hi
// non-empty parts.
func splitArg(flag, arg string, lo, hi int) ([]string, error) {
	parts := strings.SplitN(arg, ":", hi)
	if len(parts) < lo {
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s %q: want %d colon-separated fields", flag, arg, lo)
	}
	for _, p := range parts {
		if p == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "%s %q: empty field", flag, arg)
		}
	}
	return parts, nil
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// saveToStore keeps doc in the configured store.
func (c *CLI) saveToStore(ctx context.Context, doc *document.Document) error {
	s, err := c.newStore(ctx)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer s.Close(ctx)
	if err := s.Save(ctx, doc); err != nil {
		return fmt.Errorf("save scene: %w", err)
	}
	printSuccess("Stored scene %s", StyleHighlight.Render(doc.ID))
	return nil
}
