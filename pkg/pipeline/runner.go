package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/haplonet/pkg/cache"
	"github.com/matzehuels/haplonet/pkg/document"
	"github.com/matzehuels/haplonet/pkg/observability"
	"github.com/matzehuels/haplonet/pkg/scene"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger; it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete import → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if err := opts.ValidateForRender(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}
	doc, stats, hit, err := r.layout(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Document = doc
	result.InputHash = stats.inputHash
	result.Stats = stats.Stats
	result.CacheInfo.LayoutHit = hit

	ctrl, err := doc.Open()
	if err != nil {
		return nil, fmt.Errorf("open scene: %w", err)
	}
	defer ctrl.Close()
	ctrl.Logger = r.Logger

	renderStart := time.Now()
	artifacts, renderHit, err := r.Render(ctx, ctrl, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)
	return result, nil
}

type layoutStats struct {
	Stats
	inputHash string
}

// Layout imports opts.Input and returns the settled scene document, from
// cache when possible. The bool reports a cache hit.
func (r *Runner) Layout(ctx context.Context, opts Options) (*document.Document, bool, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return nil, false, fmt.Errorf("invalid options: %w", err)
	}
	doc, _, hit, err := r.layout(ctx, opts)
	return doc, hit, err
}

func (r *Runner) layout(ctx context.Context, opts Options) (*document.Document, layoutStats, bool, error) {
	var stats layoutStats

	importStart := time.Now()
	in, err := readInput(opts)
	if err != nil {
		return nil, stats, false, err
	}
	stats.inputHash = in.hash()
	keyOpts := opts.LayoutKeyOpts()
	keyOpts.Format = string(in.format)
	key := r.Keyer.LayoutKey(stats.inputHash, keyOpts)

	if !opts.Refresh {
		if doc, ok := r.cached(ctx, key); ok {
			stats.NodeCount, stats.EdgeCount = len(doc.Nodes), len(doc.Edges)
			r.Logger.Info("loaded layout from cache", "nodes", stats.NodeCount, "edges", stats.EdgeCount)
			now := time.Now().UTC().Truncate(time.Millisecond)
			doc.ID, doc.Created, doc.Modified = uuid.NewString(), now, now
			if opts.Title != "" {
				doc.Title = opts.Title
			}
			return doc, stats, true, nil
		}
	}

	n, err := in.build(ctx, opts)
	if err != nil {
		return nil, stats, false, err
	}
	stats.ImportTime = time.Since(importStart)
	stats.NodeCount, stats.EdgeCount = n.Len(), len(n.Edges())
	r.Logger.Info("imported network",
		"format", in.format,
		"nodes", stats.NodeCount,
		"edges", stats.EdgeCount,
		"duration", stats.ImportTime)

	cfg := opts.Scene
	cfg.Haploweb = cfg.Haploweb || opts.Haploweb
	layoutStart := time.Now()
	ctrl, iterations, err := Settle(ctx, n, cfg, opts.MaxSteps)
	if err != nil {
		return nil, stats, false, fmt.Errorf("layout: %w", err)
	}
	defer ctrl.Close()
	stats.LayoutTime = time.Since(layoutStart)
	stats.Iterations = iterations
	r.Logger.Info("computed layout",
		"nodes", stats.NodeCount,
		"iterations", iterations,
		"duration", stats.LayoutTime)

	doc := document.New(ctrl, opts.Title)
	if data, err := document.Marshal(doc); err == nil {
		r.store(ctx, "layout", key, data, cache.LayoutTTL)
	}
	return doc, stats, false, nil
}

func (r *Runner) cached(ctx context.Context, key string) (*document.Document, bool) {
	var data []byte
	var hit bool
	err := cache.RetryWithBackoff(ctx, func() (err error) {
		data, hit, err = r.Cache.Get(ctx, key)
		return err
	})
	if err != nil {
		r.Logger.Warn("cache read failed", "error", err)
		return nil, false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, "layout")
		return nil, false
	}
	doc, err := document.Unmarshal(data)
	if err != nil {
		r.Logger.Debug("discarding unreadable cache entry", "error", err)
		_ = r.Cache.Delete(ctx, key)
		observability.Cache().OnCacheMiss(ctx, "layout")
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, "layout")
	return doc, true
}

func (r *Runner) store(ctx context.Context, keyType, key string, data []byte, ttl time.Duration) {
	err := cache.RetryWithBackoff(ctx, func() error {
		return r.Cache.Set(ctx, key, data, ttl)
	})
	if err != nil {
		r.Logger.Warn("cache write failed", "type", keyType, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// Render draws the controller's scene in every format of opts, serving
// artifacts from cache when every format is cached. The bool reports a
// full cache hit.
func (r *Runner) Render(ctx context.Context, c *scene.Controller, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	// Hash the scene content without ID or timestamps, so the same scene
	// saved twice shares artifacts.
	content, err := document.Marshal(document.FromNetwork(c.Network(), c.Config()))
	if err != nil {
		return nil, false, fmt.Errorf("serialize scene for cache key: %w", err)
	}
	sceneHash := cache.Hash(content)

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(sceneHash, opts.ArtifactKeyOpts(format))
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil || !hit {
			break
		}
		artifacts[format] = data
	}
	if len(artifacts) == len(opts.Formats) {
		observability.Cache().OnCacheHit(ctx, "artifact")
		return artifacts, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, "artifact")

	rendered, err := RenderSnapshot(ctx, c, opts)
	if err != nil {
		return nil, false, err
	}
	for format, data := range rendered {
		r.store(ctx, "artifact", r.Keyer.ArtifactKey(sceneHash, opts.ArtifactKeyOpts(format)), data, cache.ArtifactTTL)
	}
	return rendered, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
