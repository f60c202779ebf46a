// Package cache memoizes computed layouts and rendered artifacts.
//
// Relaxing a large network to equilibrium is the expensive step of the
// pipeline, and its result depends only on the input description and the
// tuning. The pipeline keys a [Cache] by a hash of both so that re-running
// the same command is instant.
//
// Backends:
//   - [FileCache] stores entries as files under a directory (the CLI default)
//   - [RedisCache] shares entries between machines through Redis
//   - [NullCache] disables caching
//
// Keys are built by a [Keyer]. [ScopedKeyer] prefixes every key so several
// projects can share one Redis database.
package cache

import (
	"context"
	"time"

	"github.com/matzehuels/haplonet/pkg/layout"
	"github.com/matzehuels/haplonet/pkg/network"
)

// Cache stores opaque values by key. A zero TTL never expires.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Default TTLs.
const (
	LayoutTTL   = 7 * 24 * time.Hour
	ArtifactTTL = 24 * time.Hour
)

// LayoutKeyOpts are the inputs besides the description that determine a
// layout.
type LayoutKeyOpts struct {
	Format    string          `json:"format"`
	Network   network.Options `json:"network"`
	Layout    layout.Config   `json:"layout"`
	Partition string          `json:"partition,omitempty"` // hash of the partition file
}

// ArtifactKeyOpts are the render settings that determine an artifact.
type ArtifactKeyOpts struct {
	Format     string  `json:"format"`
	Margin     float64 `json:"margin"`
	Scale      float64 `json:"scale,omitempty"`
	FontSize   float64 `json:"font_size"`
	Background string  `json:"background,omitempty"`
	Haploweb   bool    `json:"haploweb,omitempty"`
	Legend     bool    `json:"legend,omitempty"`
	Title      string  `json:"title,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	// LayoutKey keys a settled scene document by the hash of its input.
	LayoutKey(inputHash string, opts LayoutKeyOpts) string
	// ArtifactKey keys rendered output by the hash of the scene document.
	ArtifactKey(sceneHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes key options into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey implements Keyer.
func (DefaultKeyer) LayoutKey(inputHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", inputHash, opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(sceneHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", sceneHash, opts)
}
