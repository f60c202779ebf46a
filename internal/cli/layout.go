package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/haplonet/pkg/document"
	pkgio "github.com/matzehuels/haplonet/pkg/io"
	"github.com/matzehuels/haplonet/pkg/pipeline"
)

// layoutOpts holds the command-line flags for the layout command.
type layoutOpts struct {
	output    string
	format    string
	partition string
	title     string
	noCache   bool
	refresh   bool
	save      bool
	haploweb  bool
	maxSteps  int
}

// layoutCommand creates the layout command for settling a network.
func (c *CLI) layoutCommand() *cobra.Command {
	var opts layoutOpts

	cmd := &cobra.Command{
		Use:   "layout [input]",
		Short: "Compute a network layout from a tree, graph or edge list",
		Long: `Compute a network layout from a haplotype description.

The input is a tree JSON, a graph JSON or a whitespace-separated edge list;
the format is detected from the extension and content unless --format is
given. An optional partition file (member<TAB>subpopulation per line) splits
nodes into pie slices.

The network is relaxed to equilibrium and written as a scene document that
'render', 'edit' and 'view' accept. Results are cached for faster reruns.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <input>"+sceneExt+")")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "input format: tree, graph, edges (default: detect)")
	cmd.Flags().StringVarP(&opts.partition, "partition", "p", "", "member to subpopulation mapping")
	cmd.Flags().StringVar(&opts.title, "title", "", "scene title")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even when cached")
	cmd.Flags().BoolVar(&opts.save, "save", false, "also keep the scene in the store")
	cmd.Flags().BoolVar(&opts.haploweb, "haploweb", false, "record shared-member links in the scene")
	cmd.Flags().IntVar(&opts.maxSteps, "max-steps", pipeline.DefaultMaxSteps, "relaxation step budget")

	return cmd
}

// runLayout imports the input, settles it, and writes the scene.
func (c *CLI) runLayout(ctx context.Context, input string, lo layoutOpts) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if lo.format != "" && !slices.Contains(pkgio.Formats, pkgio.Format(lo.format)) {
		return fmt.Errorf("unknown input format %q", lo.format)
	}

	runner, err := c.newRunner(ctx, lo.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := pipelineOptions(cfg)
	opts.Input = input
	opts.Format = pkgio.Format(lo.format)
	opts.Partition = lo.partition
	opts.Title = lo.title
	opts.Refresh = lo.refresh
	opts.MaxSteps = lo.maxSteps
	opts.Scene.Haploweb = opts.Scene.Haploweb || lo.haploweb
	opts.Logger = c.Logger

	st := startStage(c.Logger, "layout")
	spinner := newRelaxSpinner(ctx, os.Stderr, "Relaxing network...")
	spinner.Start()

	doc, cacheHit, err := runner.Layout(pipeline.WithProgress(ctx, spinner.progress), opts)
	steps := spinner.Stop()
	if err != nil {
		return fmt.Errorf("compute layout: %w", err)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	st.done("settled", "nodes", len(doc.Nodes), "steps", steps, "cached", cacheHit)

	outputPath := lo.output
	if outputPath == "" {
		outputPath = strings.TrimSuffix(input, filepath.Ext(input)) + sceneExt
	}
	if err := document.Save(doc, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printSummary(summary{nodes: len(doc.Nodes), edges: len(doc.Edges), steps: steps, cached: cacheHit, fresh: !cacheHit})

	if lo.save {
		if err := c.saveToStore(ctx, doc); err != nil {
			return err
		}
	}

	printNewline()
	printNextStep("Render", appName+" render "+outputPath)
	return nil
}
