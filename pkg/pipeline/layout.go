package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/haplonet/pkg/network"
	"github.com/matzehuels/haplonet/pkg/observability"
	"github.com/matzehuels/haplonet/pkg/scene"
)

// settleChunk is the number of layout steps run between context checks
// and progress reports.
const settleChunk = 512

// Progress receives the controller's step count after every chunk of a
// relaxation.
type Progress func(iterations int)

type progressKey struct{}

// WithProgress returns a context under which Settle and Relax report their
// progress to fn.
func WithProgress(ctx context.Context, fn Progress) context.Context {
	return context.WithValue(ctx, progressKey{}, fn)
}

func progressFrom(ctx context.Context) Progress {
	fn, _ := ctx.Value(progressKey{}).(Progress)
	return fn
}

// Settle seeds n and relaxes it to a resting state inside a new scene
// controller. The caller owns the returned controller. The run stops early
// with ctx's error when ctx is done, or after maxSteps layout steps.
func Settle(ctx context.Context, n *network.Network, cfg scene.Config, maxSteps int) (c *scene.Controller, iterations int, err error) {
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, n.Len())
	start := time.Now()
	defer func() {
		hooks.OnLayoutComplete(ctx, iterations, time.Since(start), err)
	}()

	c, err = scene.New(n, cfg)
	if err != nil {
		return nil, 0, err
	}
	c.Relayout()
	if err := Relax(ctx, c, maxSteps); err != nil {
		c.Close()
		return nil, c.Iterations(), err
	}
	return c, c.Iterations(), nil
}

// Relax runs c's current relaxation until the scene is static. Past
// maxSteps layout steps the relaxation is stopped where it is, keeping the
// positions reached so far undoable.
func Relax(ctx context.Context, c *scene.Controller, maxSteps int) error {
	report := progressFrom(ctx)
	for steps := 0; c.State() == scene.Relaxing && steps < maxSteps; steps += settleChunk {
		if err := ctx.Err(); err != nil {
			return err
		}
		c.Settle(settleChunk)
		if report != nil {
			report(c.Iterations())
		}
	}
	if c.State() == scene.Relaxing {
		c.Stop()
	}
	return nil
}
