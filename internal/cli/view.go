package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/haplonet/pkg/document"
)

// viewCommand creates the interactive viewer command.
func (c *CLI) viewCommand() *cobra.Command {
	var (
		fromStore bool
		output    string
		relax     bool
	)

	cmd := &cobra.Command{
		Use:   "view [scene]",
		Short: "Explore and edit a scene in the terminal",
		Long: `Open a scene in an interactive terminal viewer.

Select nodes with tab, move the selected node with the arrow keys (the rest
of the network relaxes around it), toggle relaxation with space, and undo or
redo with u and U. Press s to save and q to quit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runView(cmd.Context(), args[0], fromStore, output, relax)
		},
	}

	cmd.Flags().BoolVar(&fromStore, "id", false, "load and save the scene in the store by ID")
	cmd.Flags().StringVarP(&output, "output", "o", "", "save to this file (default: overwrite the input)")
	cmd.Flags().BoolVar(&relax, "relax", false, "start relaxing immediately")

	return cmd
}

func (c *CLI) runView(ctx context.Context, ref string, fromStore bool, output string, relax bool) error {
	doc, err := c.loadScene(ctx, ref, fromStore)
	if err != nil {
		return err
	}
	ctrl, err := doc.Open()
	if err != nil {
		return fmt.Errorf("open scene: %w", err)
	}
	defer ctrl.Close()
	ctrl.Logger = c.Logger
	if relax {
		ctrl.Relax()
	}

	save := func(d *document.Document) error {
		if fromStore {
			s, err := c.newStore(ctx)
			if err != nil {
				return err
			}
			defer s.Close(ctx)
			return s.Save(ctx, d)
		}
		path := output
		if path == "" {
			path = ref
		}
		return document.Save(d, path)
	}

	// The viewer owns the terminal; keep log lines out of it.
	level := c.Logger.GetLevel()
	c.Logger.SetLevel(LogError)
	defer c.Logger.SetLevel(level)

	p := tea.NewProgram(NewViewerModel(ctrl, doc, save), tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("viewer: %w", err)
	}
	if m, ok := final.(ViewerModel); ok && m.Saved {
		printSuccess("Scene saved")
	}
	return nil
}
