package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/layoutfix/pkg/critic"
	"github.com/matzehuels/layoutfix/pkg/imageanalysis"
	"github.com/matzehuels/layoutfix/pkg/pipeline"
)

// critiqueCommand creates the critique command.
func (c *CLI) critiqueCommand() *cobra.Command {
	var (
		width, height float64
		strict        bool
		asJSON        bool
	)

	cmd := &cobra.Command{
		Use:   "critique <draft>",
		Short: "Score a layout without correcting it",
		Long: `Score a layout on six weighted criteria and check the hard gates.

A NEEDS_REVISION verdict is a normal result; pass --strict to turn it into
a non-zero exit status for CI checks.`,
		Example: `  layoutfix critique post.corrected.json
  layoutfix critique post.json --strict`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			doc, err := pipeline.ReadDocument(args[0])
			if err != nil {
				return err
			}

			opts := c.options(doc, runFlags{width: width, height: height})
			runner, err := c.newRunner(ctx, true)
			if err != nil {
				return err
			}
			defer runner.Close()

			an := imageanalysis.Default()
			if doc.Analysis != nil {
				an = *doc.Analysis
			}
			res, err := runner.Critique(ctx, doc.Layers, an, opts)
			if err != nil {
				return err
			}

			if asJSON {
				if err := c.writeJSON(res); err != nil {
					return err
				}
			} else {
				printCritique(c.out, res, c.criticWeights())
			}
			if strict && !res.Passed {
				return fmt.Errorf("layout needs revision (score %.1f)", res.TotalScore)
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&width, "width", 0, "canvas width (default: draft canvas, then config)")
	cmd.Flags().Float64Var(&height, "height", 0, "canvas height (default: draft canvas, then config)")
	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when the verdict is NEEDS_REVISION")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the critique as JSON")

	return cmd
}

// criticWeights overlays configured weights on the defaults.
func (c *CLI) criticWeights() map[critic.Criterion]float64 {
	w := critic.DefaultWeights()
	for k, v := range c.Config.Critic.Weights {
		w[k] = v
	}
	return w
}
