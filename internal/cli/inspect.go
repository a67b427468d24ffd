package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/layoutfix/pkg/pipeline"
)

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		flags runFlags
		plain bool
	)

	cmd := &cobra.Command{
		Use:   "inspect <draft>",
		Short: "Browse a corrected layout interactively",
		Long: `Correct a draft without writing it and open an interactive browser over
the corrected layers. Selecting a layer shows the corrections applied to
it; tab lists every correction. Use --plain for a one-shot table when no
terminal is attached.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			doc, err := pipeline.ReadDocument(args[0])
			if err != nil {
				return err
			}

			runner, err := c.newRunner(ctx, flags.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			res, err := runner.Execute(ctx, doc.Layers, doc.Analysis, c.options(doc, flags))
			if err != nil {
				return err
			}

			model := NewInspectModel(args[0], res)
			if plain {
				model.ShowAll = true
				model.Height = len(res.Layers)
				fmt.Fprintln(c.out, model.View())
				return nil
			}
			if _, err := tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen()).Run(); err != nil {
				return fmt.Errorf("inspect: %w", err)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&plain, "plain", false, "print the layer table and corrections instead of opening the browser")

	return cmd
}
