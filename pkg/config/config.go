// Package config loads haplonet's TOML configuration file.
//
// The file lives at $XDG_CONFIG_HOME/haplonet/config.toml (or
// ~/.config/haplonet/config.toml) unless --config names another one. The
// file is decoded over [Default], so every key is optional and an empty
// file is a valid configuration. A key that is present is taken as
// written, zero included:
//
//	[layout]
//	repulsion = 800
//	centering = 0   # no pull towards the origin
//	seed = 42
//
//	[edges]
//	style = "bars"
//	cutoff = 5
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//
// Unknown keys are rejected with INVALID_CONFIG so that typos do not pass
// silently.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/haplonet/pkg/errors"
	"github.com/matzehuels/haplonet/pkg/layout"
	"github.com/matzehuels/haplonet/pkg/network"
	"github.com/matzehuels/haplonet/pkg/render"
	"github.com/matzehuels/haplonet/pkg/scene"
)

// Config is the whole configuration file.
type Config struct {
	Layout LayoutConfig `toml:"layout"`
	Scene  SceneConfig  `toml:"scene"`
	Nodes  NodesConfig  `toml:"nodes"`
	Edges  EdgesConfig  `toml:"edges"`
	Render RenderConfig `toml:"render"`
	Cache  CacheConfig  `toml:"cache"`
	Store  StoreConfig  `toml:"store"`
}

// LayoutConfig tunes the relaxation.
type LayoutConfig struct {
	Repulsion     float64 `toml:"repulsion"`
	Spring        float64 `toml:"spring"`
	Centering     float64 `toml:"centering"`
	Epsilon       float64 `toml:"epsilon"`
	MaxIterations int     `toml:"max_iterations"`
	StepSize      float64 `toml:"step_size"`
	EdgeLength    float64 `toml:"edge_length"`
	MinDistance   float64 `toml:"min_distance"`
	Seeding       string  `toml:"seeding"`
	Seed          int64   `toml:"seed"`
}

// SceneConfig tunes the interactive scene.
type SceneConfig struct {
	LabelOverlapRadius float64 `toml:"label_overlap_radius"`
	LabelPadding       float64 `toml:"label_padding"`
	CurvatureSpacing   float64 `toml:"curvature_spacing"`
	StepIterations     int     `toml:"step_iterations"`
	FontSize           float64 `toml:"font_size"`
	NodeTemplate       string  `toml:"node_template"`
	EdgeTemplate       string  `toml:"edge_template"`
	HideNodeLabels     bool    `toml:"hide_node_labels"`
	HideEdgeLabels     bool    `toml:"hide_edge_labels"`
	HistoryLimit       int     `toml:"history_limit"`
	LabelIterations    int     `toml:"label_iterations"`
	DragRecursive      bool    `toml:"drag_recursive"`
	DragRotational     bool    `toml:"drag_rotational"`
}

// NodesConfig is the radius function a*log_b(c*x+d) + e*x + f and the
// group palette.
type NodesConfig struct {
	A            float64 `toml:"a"`
	B            float64 `toml:"b"`
	C            float64 `toml:"c"`
	D            float64 `toml:"d"`
	E            float64 `toml:"e"`
	F            float64 `toml:"f"`
	VertexRadius float64 `toml:"vertex_radius"`
	Palette      string  `toml:"palette"`
}

// EdgesConfig selects the default edge style.
type EdgesConfig struct {
	Style       string  `toml:"style"`
	Cutoff      int     `toml:"cutoff"`
	TickSpacing float64 `toml:"tick_spacing"`
	BarLength   float64 `toml:"bar_length"`
}

// RenderConfig holds export defaults.
type RenderConfig struct {
	Formats    []string `toml:"formats"`
	Margin     float64  `toml:"margin"`
	Scale      float64  `toml:"scale"`
	FontSize   float64  `toml:"font_size"`
	Background string   `toml:"background"`
	Haploweb   bool     `toml:"haploweb"`
	Legend     bool     `toml:"legend"`
}

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// CacheConfig selects the layout cache backend.
type CacheConfig struct {
	Backend  string `toml:"backend"`
	Dir      string `toml:"dir"`
	RedisURL string `toml:"redis_url"`
	Prefix   string `toml:"prefix"`
}

// Store backends.
const (
	StoreFile  = "file"
	StoreMongo = "mongo"
)

// StoreConfig selects where named scenes are kept.
type StoreConfig struct {
	Backend  string `toml:"backend"`
	Dir      string `toml:"dir"`
	MongoURI string `toml:"mongo_uri"`
	Database string `toml:"database"`
}

// Default returns the configuration used when no file exists. Its
// tunables are the library defaults.
func Default() *Config {
	l := layout.DefaultConfig()
	sc := scene.DefaultConfig()
	sz := network.DefaultSizing()
	return &Config{
		Layout: LayoutConfig{
			Repulsion:     l.Repulsion,
			Spring:        l.Spring,
			Centering:     l.Centering,
			Epsilon:       l.Epsilon,
			MaxIterations: l.MaxIterations,
			StepSize:      l.MaxStep,
			EdgeLength:    l.EdgeLength,
			MinDistance:   l.MinDistance,
			Seeding:       string(l.Seeding),
		},
		Scene: SceneConfig{
			LabelOverlapRadius: sc.LabelRadius,
			LabelPadding:       sc.LabelPadding,
			CurvatureSpacing:   sc.CurvatureSpacing,
			StepIterations:     sc.MaxStepsPerFrame,
			FontSize:           sc.FontSize,
			NodeTemplate:       sc.NodeTemplate,
			EdgeTemplate:       sc.EdgeTemplate,
			HistoryLimit:       sc.HistoryLimit,
			LabelIterations:    sc.LabelIterations,
			DragRecursive:      sc.DragRecursive,
			DragRotational:     sc.DragRotational,
		},
		Nodes: NodesConfig{A: sz.A, B: sz.B, C: sz.C, D: sz.D, E: sz.E, F: sz.F, VertexRadius: sz.VertexRadius},
		Edges: EdgesConfig{
			Style:       string(sc.EdgeStyle),
			Cutoff:      sc.EdgeCutoff,
			TickSpacing: sc.TickSpacing,
			BarLength:   sc.BarLength,
		},
		Cache: CacheConfig{Backend: CacheFile, Prefix: "haplonet:"},
		Store: StoreConfig{Backend: StoreFile, Database: "haplonet"},
	}
}

// Dir returns the haplonet config directory.
func Dir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "haplonet")
}

// DefaultPath returns the config file path used without --config.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the file at path. An empty path reads DefaultPath, and a
// missing default file yields Default; a missing explicit path is an
// error.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates a configuration.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown config keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path, creating the directory.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.SceneConfig().WithDefaults().Validate(); err != nil {
		return err
	}
	if err := c.Sizing().Validate(); err != nil {
		return err
	}
	if c.Nodes.Palette != "" && !slices.Contains(network.PaletteNames(), c.Nodes.Palette) {
		return errors.New(errors.ErrCodeInvalidConfig, "unknown palette %q (have %s)",
			c.Nodes.Palette, strings.Join(network.PaletteNames(), ", "))
	}
	for _, f := range c.Render.Formats {
		if _, err := render.ParseFormat(f); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "render.formats")
		}
	}
	if c.Render.Margin < 0 || c.Render.Scale < 0 || c.Render.FontSize < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "render margin, scale and font_size must not be negative")
	}
	if c.Render.Background != "" {
		if _, err := errors.NormalizeColor(c.Render.Background); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "render.background")
		}
	}
	switch c.Cache.Backend {
	case "", CacheFile, CacheNone:
	case CacheRedis:
		if c.Cache.RedisURL == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.redis_url is required for the redis backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}
	switch c.Store.Backend {
	case "", StoreFile:
	case StoreMongo:
		if c.Store.MongoURI == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "store.mongo_uri is required for the mongo backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown store backend %q", c.Store.Backend)
	}
	return nil
}

// LayoutConfig returns the relaxation tuning.
func (c *Config) LayoutConfig() layout.Config {
	l := c.Layout
	return layout.Config{
		Repulsion:     l.Repulsion,
		Spring:        l.Spring,
		Centering:     l.Centering,
		EdgeLength:    l.EdgeLength,
		Epsilon:       l.Epsilon,
		MaxIterations: l.MaxIterations,
		MaxStep:       l.StepSize,
		MinDistance:   l.MinDistance,
		Seeding:       layout.Seeding(l.Seeding),
		Seed:          l.Seed,
	}
}

// SceneConfig returns the controller configuration. Values are passed
// through as written; settings the file has no key for keep their
// defaults.
func (c *Config) SceneConfig() scene.Config {
	s := c.Scene
	sc := scene.DefaultConfig()
	sc.Layout = c.LayoutConfig()
	sc.MaxStepsPerFrame = s.StepIterations
	sc.LabelRadius = s.LabelOverlapRadius
	sc.LabelIterations = s.LabelIterations
	sc.LabelPadding = s.LabelPadding
	sc.FontSize = s.FontSize
	sc.CurvatureSpacing = s.CurvatureSpacing
	sc.EdgeStyle = network.EdgeStyle(c.Edges.Style)
	sc.EdgeCutoff = c.Edges.Cutoff
	sc.TickSpacing = c.Edges.TickSpacing
	sc.BarLength = c.Edges.BarLength
	sc.NodeTemplate = s.NodeTemplate
	sc.EdgeTemplate = s.EdgeTemplate
	sc.HideNodeLabels = s.HideNodeLabels
	sc.HideEdgeLabels = s.HideEdgeLabels
	sc.Haploweb = c.Render.Haploweb
	sc.HistoryLimit = s.HistoryLimit
	sc.DragRecursive = s.DragRecursive
	sc.DragRotational = s.DragRotational
	return sc
}

// Sizing returns the radius function.
func (c *Config) Sizing() network.Sizing {
	n := c.Nodes
	s := network.Sizing{A: n.A, B: n.B, C: n.C, D: n.D, E: n.E, F: n.F, VertexRadius: n.VertexRadius}
	if s == (network.Sizing{}) {
		return network.DefaultSizing()
	}
	if s.VertexRadius == 0 {
		s.VertexRadius = network.DefaultVertexRadius
	}
	return s
}

// NetworkOptions returns the options for building networks.
func (c *Config) NetworkOptions() network.Options {
	return network.Options{Sizing: c.Sizing(), Palette: c.Nodes.Palette}
}

// CacheDir returns the file cache directory.
func (c *Config) CacheDir() string {
	if c.Cache.Dir != "" {
		return c.Cache.Dir
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "haplonet")
}

// StoreDir returns the file store directory.
func (c *Config) StoreDir() string {
	if c.Store.Dir != "" {
		return c.Store.Dir
	}
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dir, "haplonet", "scenes")
}
