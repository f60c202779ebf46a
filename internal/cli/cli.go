// Package cli implements the haplonet command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/haplonet/pkg/buildinfo"
	"github.com/matzehuels/haplonet/pkg/cache"
	"github.com/matzehuels/haplonet/pkg/config"
	"github.com/matzehuels/haplonet/pkg/document"
	"github.com/matzehuels/haplonet/pkg/pipeline"
	"github.com/matzehuels/haplonet/pkg/render"
	"github.com/matzehuels/haplonet/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for display.
	appName = "haplonet"

	// sceneExt is appended to derived scene paths.
	sceneExt = ".scene.json"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
	LogError = log.ErrorLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// ConfigPath overrides config.DefaultPath when set.
	ConfigPath string
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Haplonet lays out and edits haplotype networks",
		Long: `Haplonet turns haplotype trees and graphs into force-directed network
drawings with frequency-scaled pie nodes and mutation ticks, and lets you
edit the result with full undo.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", "", "config file (default: "+config.DefaultPath()+")")

	// Register all subcommands
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.storeCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig loads the configuration once per process.
func (c *CLI) loadConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.ConfigPath)
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	ch, err := c.newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(ch, nil, c.Logger), nil
}

// newCache opens the configured cache backend. An unreachable backend
// disables caching rather than failing the command.
func (c *CLI) newCache(ctx context.Context, cfg *config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	ch, err := openCache(ctx, cfg)
	if errors.Is(err, cache.ErrUnavailable) {
		c.Logger.Warn("cache disabled", "backend", cfg.Cache.Backend, "error", err)
		return cache.NewNullCache(), nil
	}
	return ch, err
}

// newStore opens the configured scene store.
func (c *CLI) newStore(ctx context.Context) (store.Store, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Store.Backend == config.StoreMongo {
		return store.NewMongoStore(ctx, cfg.Store.MongoURI, cfg.Store.Database)
	}
	return store.NewFileStore(cfg.StoreDir())
}

// loadScene reads a scene document from a file, or from the store when
// fromStore is set and ref is a document ID.
func (c *CLI) loadScene(ctx context.Context, ref string, fromStore bool) (*document.Document, error) {
	if !fromStore {
		d, err := document.Load(ref)
		if err != nil {
			return nil, fmt.Errorf("load scene %s: %w", ref, err)
		}
		return d, nil
	}
	s, err := c.newStore(ctx)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	defer s.Close(ctx)
	return s.Load(ctx, ref)
}

// =============================================================================
// Options Helpers
// =============================================================================

// pipelineOptions seeds pipeline options from the configuration.
func pipelineOptions(cfg *config.Config) pipeline.Options {
	r := cfg.Render
	return pipeline.Options{
		Network:    cfg.NetworkOptions(),
		Scene:      cfg.SceneConfig(),
		Formats:    r.Formats,
		Margin:     r.Margin,
		Scale:      r.Scale,
		FontSize:   r.FontSize,
		Background: r.Background,
		Haploweb:   r.Haploweb,
		Legend:     r.Legend,
	}
}

// parseFormats parses a comma-separated format string into a slice.
// An empty string keeps fallback.
func parseFormats(s string, fallback []string) []string {
	if s == "" {
		if len(fallback) == 0 {
			return []string{string(render.FormatSVG)}
		}
		return fallback
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
