package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/layoutfix/pkg/pipeline"
)

// correctCommand creates the correct command.
func (c *CLI) correctCommand() *cobra.Command {
	var (
		flags  runFlags
		output string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "correct <draft>",
		Short: "Correct a layout draft and critique the result",
		Long: `Correct a layout draft (JSON or YAML) and score the result.

The draft is either a bare array of layers or a document with "canvas",
"layers" and optional "analysis", "image_url" and "brand" keys. The
corrected document is written next to the draft as <name>.corrected.<ext>
unless --output is given.`,
		Example: `  layoutfix correct post.json
  layoutfix correct story.yaml --width 1080 --height 1920 --validate
  layoutfix correct post.json --image-url https://cdn.example.com/photo.jpg --brand acme`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, flags.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			res, out, err := c.correctFile(ctx, runner, args[0], output, flags)
			if err != nil {
				return err
			}
			if asJSON {
				return c.writeJSON(res)
			}
			c.printResult(args[0], out, res)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output path (default: <draft>.corrected.<ext>)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full pipeline result as JSON")

	return cmd
}

// correctFile runs the pipeline over one draft and writes the corrected
// document. It returns the run result and the output path.
func (c *CLI) correctFile(ctx context.Context, runner *pipeline.Runner, path, output string, f runFlags) (*pipeline.Result, string, error) {
	logger := loggerFromContext(ctx)
	start := time.Now()

	doc, err := pipeline.ReadDocument(path)
	if err != nil {
		return nil, "", err
	}
	opts := c.options(doc, f)
	res, err := runner.Execute(ctx, doc.Layers, doc.Analysis, opts)
	if err != nil {
		return nil, "", err
	}

	if output == "" {
		output = pipeline.OutputPath(path)
	}
	out := correctedDocument(doc, res, opts)
	if err := pipeline.WriteDocument(output, out); err != nil {
		return nil, "", err
	}

	logger.Debug("corrected draft", "draft", path, "output", output, "run", res.RunID, "elapsed", time.Since(start))
	return res, output, nil
}

// correctedDocument carries the draft's metadata over to the result layers.
func correctedDocument(doc pipeline.Document, res *pipeline.Result, opts pipeline.Options) pipeline.Document {
	w, h := opts.Width, opts.Height
	if w == 0 {
		w = pipeline.DefaultWidth
	}
	if h == 0 {
		h = pipeline.DefaultHeight
	}
	an := res.Analysis
	return pipeline.Document{
		Canvas:   pipeline.Canvas{Width: w, Height: h},
		Layers:   res.Layers,
		Analysis: &an,
		ImageURL: doc.ImageURL,
		Brand:    opts.Brand,
	}
}

func (c *CLI) printResult(draft, output string, res *pipeline.Result) {
	printSuccess(c.out, "Corrected %s %s", StyleValue.Render(draft), StyleDim.Render("("+res.Archetype+")"))
	printStats(c.out, res)
	printCorrections(c.out, res.Corrections)
	printVerdict(c.out, res.Critique)
	for _, g := range res.Critique.GateFailures {
		printDetail(c.out, "gate: %s", g)
	}
	printFile(c.out, output)
	if !res.Critique.Passed {
		printNextStep(c.out, "See why", "layoutfix critique "+output)
	}
}
