package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/layoutfix/pkg/archetype"
	"github.com/matzehuels/layoutfix/pkg/errors"
	"github.com/matzehuels/layoutfix/pkg/layer"
)

// archetypeOutput is the JSON form of the archetype command.
type archetypeOutput struct {
	Selected  string              `json:"selected"`
	Archetype archetype.Archetype `json:"archetype"`
	Recent    []string            `json:"recent"`
	Scores    []archetype.Score   `json:"scores"`
}

// archetypeCommand creates the archetype command.
func (c *CLI) archetypeCommand() *cobra.Command {
	var (
		focalX, focalY float64
		recent         []string
		brand          string
		width, height  int
		asJSON         bool
	)

	cmd := &cobra.Command{
		Use:   "archetype",
		Short: "Pick a composition archetype for a focal point",
		Long: `Score every composition archetype for a normalized focal point and pick
the best one. Archetypes in --recent, or recently used by --brand, are
penalized so consecutive posts vary. With --brand the pick is recorded in
the brand's history.`,
		Example: `  layoutfix archetype --focal-x 0.8 --focal-y 0.3
  layoutfix archetype --focal-x 0.5 --focal-y 0.7 --recent hero_left,bottom_focus
  layoutfix archetype --focal-x 0.2 --focal-y 0.5 --brand acme`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if focalX < 0 || focalX > 1 || focalY < 0 || focalY > 1 {
				return errors.New(errors.ErrCodeInvalidInput, "focal point (%.2f, %.2f) must be within [0, 1]", focalX, focalY)
			}
			focal := archetype.Focal{X: focalX, Y: focalY}

			runner, err := c.newRunner(ctx, brand == "")
			if err != nil {
				return err
			}
			defer runner.Close()

			catalog := runner.Catalog()
			if len(recent) == 0 && brand != "" {
				recent = runner.History().Recent(ctx, brand)
			}
			picked := catalog.Select(focal, recent)
			if brand != "" {
				if _, err := runner.History().Record(ctx, brand, picked); err != nil {
					loggerFromContext(ctx).Warn("record archetype history", "brand", brand, "err", err)
				}
			}

			if width <= 0 {
				width = int(c.Config.Canvas.Width)
			}
			if height <= 0 {
				height = int(c.Config.Canvas.Height)
			}
			arch := catalog.Get(picked).Scale(width, height)

			if asJSON {
				return c.writeJSON(archetypeOutput{
					Selected:  picked,
					Archetype: arch,
					Recent:    recent,
					Scores:    catalog.Ranked(focal, recent),
				})
			}

			printArchetypeScores(c.out, catalog.Ranked(focal, recent), picked, catalog)
			printSuccess(c.out, "%s %s", StyleHighlight.Render(picked), StyleDim.Render(arch.Description))
			printKeyValue(c.out, "text zone", formatRect(arch.TextZone))
			printKeyValue(c.out, "photo zone", formatRect(arch.PhotoZone))
			printKeyValue(c.out, "cta", fmt.Sprintf("%s %s", arch.CTAPosition, formatRect(arch.CTARect(width, height))))
			if arch.OverlayRequired {
				printKeyValue(c.out, "overlay", fmt.Sprintf("%.0f%%", arch.Overlay()*100))
			}
			if len(recent) > 0 {
				printDetail(c.out, "penalized: %s", truncateList(recent, 4))
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&focalX, "focal-x", archetype.CenterFocal.X, "normalized focal point x")
	cmd.Flags().Float64Var(&focalY, "focal-y", archetype.CenterFocal.Y, "normalized focal point y")
	cmd.Flags().StringSliceVar(&recent, "recent", nil, "recently used archetypes (overrides brand history)")
	cmd.Flags().StringVar(&brand, "brand", "", "brand whose history to use and update")
	cmd.Flags().IntVar(&width, "width", 0, "canvas width for zone geometry (default: config)")
	cmd.Flags().IntVar(&height, "height", 0, "canvas height for zone geometry (default: config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the selection as JSON")

	return cmd
}

func formatRect(r layer.Rect) string {
	return fmt.Sprintf("%.0f,%.0f %.0f×%.0f", r.X, r.Y, r.Width, r.Height)
}
