package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/chartdeck/pkg/export"
	"github.com/matzehuels/chartdeck/pkg/pipeline"
	"github.com/matzehuels/chartdeck/pkg/session"
	"github.com/matzehuels/chartdeck/pkg/surface"
)

// interactiveCommand creates the interactive terminal UI command.
func (c *CLI) interactiveCommand() *cobra.Command {
	var (
		outputDir string
		noCache   bool
	)

	cmd := &cobra.Command{
		Use:     "interactive",
		Aliases: []string{"ui"},
		Short:   "Generate and export charts from a terminal UI",
		Long: `Generate and export charts from a terminal UI.

Type the number of charts (1-500, clamped as you type) and press enter to
render them. Press e to export the current charts to a Word document in the
output directory. A new batch replaces the previous one.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.baseOptions()
			if cmd.Flags().Changed("output") || opts.OutputDir == "" {
				opts.OutputDir = outputDir
			}
			return c.runInteractive(cmd.Context(), opts, noCache)
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", ".", "output directory for exported documents")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the conversion cache")

	return cmd
}

func (c *CLI) runInteractive(ctx context.Context, opts pipeline.Options, noCache bool) error {
	runner, err := c.newRunner(surface.NewMemory(), nil, "", noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Cache.Close()

	// The TUI owns the terminal; keep log output to warnings and above.
	level := c.Logger.GetLevel()
	c.SetLogLevel(max(level, LogWarn))
	defer c.SetLogLevel(level)

	model := NewChartModel(ctx,
		func(listen func(done, total int)) *session.Controller {
			return session.NewController(runner,
				session.WithOptions(opts),
				session.WithGenerateProgress(listen),
				session.WithExportProgress(listen),
			)
		},
		func(res *export.Result) (string, error) {
			return runner.Save(res, opts)
		},
	)

	if _, err := tea.NewProgram(model, tea.WithContext(ctx)).Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("run interactive UI: %w", err)
	}
	return nil
}
