package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/haplonet/pkg/observability"
	"github.com/matzehuels/haplonet/pkg/render"
	"github.com/matzehuels/haplonet/pkg/scene"
)

// RenderSnapshot draws s in every format of opts. Haploweb links are added
// from c's network when requested and the scene does not carry them.
func RenderSnapshot(ctx context.Context, c *scene.Controller, opts Options) (artifacts map[string][]byte, err error) {
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	defer func() {
		hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	}()

	snap := c.Snapshot()
	if opts.Haploweb && snap.Web == nil {
		snap.Web = c.Network().Haploweb()
	}
	ropts := opts.RenderOptions()

	artifacts = make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		f, err := render.ParseFormat(format)
		if err != nil {
			return nil, err
		}
		data, err := render.Render(snap, f, ropts...)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}
