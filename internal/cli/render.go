package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output     string  // output file path (or base path for multiple outputs)
	formats    string  // comma-separated output formats
	fromStore  bool    // treat the argument as a store ID
	noCache    bool    // bypass the artifact cache
	margin     float64 // padding around the drawing
	scale      float64 // PNG pixel scale
	fontSize   float64 // label font size
	background string  // background fill
	title      string  // SVG title
	haploweb   bool    // draw shared-member links
	legend     bool    // draw the group legend
}

// renderCommand creates the render command for drawing a scene.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [scene]",
		Short: "Render a scene to SVG, PNG, DOT or JSON",
		Long: `Render a scene document produced by 'layout' or 'edit'.

Positions are drawn exactly as saved; no relaxation runs. neato.svg is
the pinned DOT graph drawn by Graphviz. Several formats
can be requested at once, in which case -o is used as the base path.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], opts, cmd.Flags().Changed)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): svg (default), png, dot, neato.svg, json (comma-separated)")
	cmd.Flags().BoolVar(&opts.fromStore, "id", false, "load the scene from the store by ID")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().Float64Var(&opts.margin, "margin", 0, "margin around the network")
	cmd.Flags().Float64Var(&opts.scale, "scale", 0, "PNG pixel scale")
	cmd.Flags().Float64Var(&opts.fontSize, "font-size", 0, "label font size")
	cmd.Flags().StringVar(&opts.background, "background", "", "background color")
	cmd.Flags().StringVar(&opts.title, "title", "", "override the scene title")
	cmd.Flags().BoolVar(&opts.haploweb, "haploweb", false, "draw links between nodes sharing members")
	cmd.Flags().BoolVar(&opts.legend, "legend", false, "draw the group legend")

	return cmd
}

// runRender loads the scene, renders every format, and writes outputs.
func (c *CLI) runRender(ctx context.Context, ref string, ro renderOpts, changed func(string) bool) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	doc, err := c.loadScene(ctx, ref, ro.fromStore)
	if err != nil {
		return err
	}
	if ro.title != "" {
		doc.Title = ro.title
	}

	// Flags override the configuration only when given.
	opts := pipelineOptions(cfg)
	opts.Formats = parseFormats(ro.formats, cfg.Render.Formats)
	if changed("margin") {
		opts.Margin = ro.margin
	}
	if changed("scale") {
		opts.Scale = ro.scale
	}
	if changed("font-size") {
		opts.FontSize = ro.fontSize
	}
	if changed("background") {
		opts.Background = ro.background
	}
	opts.Haploweb = opts.Haploweb || ro.haploweb
	opts.Legend = opts.Legend || ro.legend
	opts.Title = doc.Title
	opts.Logger = c.Logger
	if err := opts.ValidateForRender(); err != nil {
		return err
	}

	ctrl, err := doc.Open()
	if err != nil {
		return fmt.Errorf("open scene: %w", err)
	}
	defer ctrl.Close()
	ctrl.Logger = c.Logger

	runner, err := c.newRunner(ctx, ro.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	st := startStage(c.Logger, "render")
	artifacts, cacheHit, err := runner.Render(ctx, ctrl, opts)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	st.done("rendered", "formats", strings.Join(opts.Formats, ","), "cached", cacheHit)

	paths, err := writeArtifacts(artifacts, opts.Formats, outputBase(ref, ro), ro.output != "" && len(opts.Formats) == 1)
	if err != nil {
		return err
	}

	printSuccess("Render complete")
	for _, p := range paths {
		printFile(p)
	}
	printSummary(summary{nodes: len(doc.Nodes), edges: len(doc.Edges), cached: cacheHit, fresh: !cacheHit})
	return nil
}

// outputBase returns the path artifacts are named after.
func outputBase(ref string, ro renderOpts) string {
	if ro.output != "" {
		return ro.output
	}
	if ro.fromStore {
		return ref
	}
	base := strings.TrimSuffix(ref, sceneExt)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// writeArtifacts writes one file per format. With exact set, base is used
// verbatim; otherwise each file gets the format as its extension.
func writeArtifacts(artifacts map[string][]byte, formats []string, base string, exact bool) ([]string, error) {
	var paths []string
	for _, format := range formats {
		path := base
		if !exact {
			path = strings.TrimSuffix(base, "."+format) + "." + format
		}
		if err := os.WriteFile(path, artifacts[format], 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
