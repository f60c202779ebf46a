package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/haplonet/pkg/errors"
	"github.com/matzehuels/haplonet/pkg/layout"
	"github.com/matzehuels/haplonet/pkg/network"
	"github.com/matzehuels/haplonet/pkg/scene"
)

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := cfg.SceneConfig(); got != scene.DefaultConfig() {
		t.Errorf("SceneConfig = %+v, want defaults", got)
	}
	if got := cfg.Sizing(); got != network.DefaultSizing() {
		t.Errorf("Sizing = %+v, want defaults", got)
	}
	if cfg.Cache.Backend != CacheFile || cfg.Store.Backend != StoreFile {
		t.Errorf("backends = %q, %q", cfg.Cache.Backend, cfg.Store.Backend)
	}
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
[layout]
repulsion = 900
step_size = 4
seeding = "circular"
seed = 7

[scene]
label_overlap_radius = 50
step_iterations = 3
node_template = "NAME (WEIGHT)"

[nodes]
a = 0
e = 2
f = 4
palette = "set1"

[edges]
style = "bars"
cutoff = 5

[render]
formats = ["svg", "png"]
margin = 12
haploweb = true
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	l := cfg.LayoutConfig()
	if l.Repulsion != 900 || l.MaxStep != 4 || l.Seeding != layout.SeedCircular || l.Seed != 7 {
		t.Errorf("LayoutConfig = %+v", l)
	}
	if l.Spring != layout.DefaultSpring {
		t.Errorf("unset spring = %v, want default", l.Spring)
	}

	s := cfg.SceneConfig()
	if s.LabelRadius != 50 || s.MaxStepsPerFrame != 3 || s.NodeTemplate != "NAME (WEIGHT)" {
		t.Errorf("SceneConfig = %+v", s)
	}
	if s.EdgeStyle != network.StyleBars || s.EdgeCutoff != 5 || !s.Haploweb {
		t.Errorf("edge settings = %v %v %v", s.EdgeStyle, s.EdgeCutoff, s.Haploweb)
	}

	sz := cfg.Sizing()
	if sz.E != 2 || sz.F != 4 || sz.VertexRadius != network.DefaultVertexRadius {
		t.Errorf("Sizing = %+v", sz)
	}
	if got := sz.Radius(3); got != 10 {
		t.Errorf("Radius(3) = %v, want 10", got)
	}
	if opts := cfg.NetworkOptions(); opts.Palette != "set1" {
		t.Errorf("Palette = %q", opts.Palette)
	}
}

func TestParseKeepsZero(t *testing.T) {
	cfg, err := Parse([]byte(`
[layout]
centering = 0
repulsion = 0

[scene]
label_iterations = 0
history_limit = 0
drag_rotational = false

[edges]
cutoff = 0
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	s := cfg.SceneConfig().WithDefaults()
	if s.Layout.Centering != 0 || s.Layout.Repulsion != 0 {
		t.Errorf("centering, repulsion = %v, %v, want 0, 0", s.Layout.Centering, s.Layout.Repulsion)
	}
	if s.LabelIterations != 0 || s.HistoryLimit != 0 || s.EdgeCutoff != 0 {
		t.Errorf("label iterations, history, cutoff = %d, %d, %d, want zeros",
			s.LabelIterations, s.HistoryLimit, s.EdgeCutoff)
	}
	if s.DragRotational || !s.DragRecursive {
		t.Errorf("drag modes = rotational %v, recursive %v", s.DragRotational, s.DragRecursive)
	}
	if got := s.EdgeStyle.Resolve(10, s.EdgeCutoff); got != network.StyleBubbles {
		t.Errorf("Resolve(10) with cutoff 0 = %q, want bubbles", got)
	}
	if s.Layout.Spring != layout.DefaultSpring || s.LabelRadius != scene.DefaultLabelRadius {
		t.Errorf("unset keys lost their defaults: %+v", s)
	}

	n, err := network.New(network.Options{})
	if err != nil {
		t.Fatal(err)
	}
	c, err := scene.New(n, s)
	if err != nil {
		t.Fatalf("scene.New: %v", err)
	}
	defer c.Close()
	if got := c.Config(); got.Layout.Centering != 0 || got.EdgeCutoff != 0 {
		t.Errorf("controller config = %+v", got)
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		toml string
	}{
		{"syntax", `[layout`},
		{"unknown key", "[layout]\nrepulsoin = 3"},
		{"unknown section", "[server]\nport = 80"},
		{"negative repulsion", "[layout]\nrepulsion = -1"},
		{"bad style", "[edges]\nstyle = \"zigzag\""},
		{"bad palette", "[nodes]\npalette = \"neon\""},
		{"bad log base", "[nodes]\na = 10\nb = 1\nc = 0.2\nd = 1"},
		{"bad format", "[render]\nformats = [\"pdf\"]"},
		{"bad background", "[render]\nbackground = \"white\""},
		{"redis without url", "[cache]\nbackend = \"redis\""},
		{"unknown cache", "[cache]\nbackend = \"memcached\""},
		{"mongo without uri", "[store]\nbackend = \"mongo\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.toml))
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("Parse() error = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load default without file: %v", err)
	}
	if cfg.Cache.Backend != CacheFile {
		t.Errorf("Backend = %q", cfg.Cache.Backend)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("Load of a missing explicit path succeeded")
	}

	if err := os.MkdirAll(Dir(), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(DefaultPath(), []byte("[edges]\ncutoff = 9\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err = Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Edges.Cutoff != 9 {
		t.Errorf("Cutoff = %d, want 9", cfg.Edges.Cutoff)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := Default()
	cfg.Layout.Seed = 11
	cfg.Edges.Style = "plain"
	cfg.Render.Formats = []string{"svg"}
	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Layout.Seed != 11 || got.Edges.Style != "plain" || len(got.Render.Formats) != 1 {
		t.Errorf("round trip = %+v", got)
	}
}

func TestDirs(t *testing.T) {
	cfg := Default()
	cfg.Cache.Dir = "/tmp/c"
	cfg.Store.Dir = "/tmp/s"
	if cfg.CacheDir() != "/tmp/c" || cfg.StoreDir() != "/tmp/s" {
		t.Errorf("dirs = %q, %q", cfg.CacheDir(), cfg.StoreDir())
	}
	t.Setenv("XDG_DATA_HOME", "/data")
	if got := Default().StoreDir(); got != filepath.Join("/data", "haplonet", "scenes") {
		t.Errorf("StoreDir = %q", got)
	}
}
