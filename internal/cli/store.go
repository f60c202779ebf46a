package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/haplonet/pkg/document"
	"github.com/matzehuels/haplonet/pkg/store"
)

// storeCommand creates the scene store command.
func (c *CLI) storeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Keep named scenes in the configured store",
		Long: `Keep scenes in the configured store (a directory of JSON files by default,
or MongoDB with store.backend = "mongo").`,
	}

	cmd.AddCommand(c.storeListCommand())
	cmd.AddCommand(c.storePutCommand())
	cmd.AddCommand(c.storeGetCommand())
	cmd.AddCommand(c.storeDeleteCommand())

	return cmd
}

// storeListCommand creates the "store list" subcommand.
func (c *CLI) storeListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored scenes, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := c.newStore(ctx)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer s.Close(ctx)

			summaries, err := s.List(ctx)
			if err != nil {
				return err
			}
			if len(summaries) == 0 {
				printInfo("No stored scenes")
				return nil
			}
			fmt.Println(summaryTable(summaries, time.Now()))
			return nil
		},
	}
}

// storePutCommand creates the "store put" subcommand.
func (c *CLI) storePutCommand() *cobra.Command {
	var title string
	cmd := &cobra.Command{
		Use:   "put [scene]",
		Short: "Store a scene file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := document.Load(args[0])
			if err != nil {
				return err
			}
			if title != "" {
				doc.Title = title
			}
			return c.saveToStore(cmd.Context(), doc)
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "override the scene title")
	return cmd
}

// storeGetCommand creates the "store get" subcommand.
func (c *CLI) storeGetCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "get [id]",
		Short: "Write a stored scene to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := c.loadScene(cmd.Context(), args[0], true)
			if err != nil {
				return err
			}
			path := output
			if path == "" {
				path = doc.ID + sceneExt
			}
			if err := document.Save(doc, path); err != nil {
				return err
			}
			printSuccess("Scene written")
			printFile(path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <id>"+sceneExt+")")
	return cmd
}

// storeDeleteCommand creates the "store delete" subcommand.
func (c *CLI) storeDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete [id]...",
		Aliases: []string{"rm"},
		Short:   "Delete stored scenes",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := c.newStore(ctx)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer s.Close(ctx)
			for _, id := range args {
				if err := s.Delete(ctx, id); err != nil {
					return err
				}
				printSuccess("Deleted %s", id)
			}
			return nil
		},
	}
}

// summaryTable formats store summaries like the rest of the CLI's tables.
func summaryTable(summaries []store.Summary, now time.Time) string {
	rows := make([][]string, len(summaries))
	for i, s := range summaries {
		title := s.Title
		if title == "" {
			title = "—"
		}
		rows[i] = []string{s.ID, title, strconv.Itoa(s.Nodes), formatRelativeTime(s.Modified, now)}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Title", "Nodes", "Modified").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		String()
}

// formatRelativeTime renders t relative to now, e.g. "3h ago".
func formatRelativeTime(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 30*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Format("2006-01-02")
	}
}
