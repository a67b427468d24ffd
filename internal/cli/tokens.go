package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/layoutfix/pkg/tokens"
)

// tokensCommand creates the tokens command.
func (c *CLI) tokensCommand() *cobra.Command {
	var (
		industry string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "tokens",
		Short: "Show the design-token scales",
		Long: `Show the design tokens corrections snap to: the modular font scale with
line heights and tracking, the spacing scale, corner radii, stroke widths,
safe margins for the configured canvas, the brand palette and the
industry font pairings. A custom token file is set with "tokens" in the
config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tk, err := c.loadTokens()
			if err != nil {
				return err
			}
			if asJSON {
				return c.writeJSON(tk)
			}
			if industry != "" {
				c.printFontPair(industry, tk.FontsFor(industry))
				return nil
			}
			c.printTokens(tk)
			return nil
		},
	}

	cmd.Flags().StringVar(&industry, "industry", "", "only show the font pairing for this industry")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the token set as JSON")

	return cmd
}

func (c *CLI) loadTokens() (tokens.Tokens, error) {
	if c.Config.Tokens == "" {
		return tokens.Default(), nil
	}
	return tokens.LoadFile(c.Config.Tokens)
}

func (c *CLI) printTokens(tk tokens.Tokens) {
	w := c.out

	fmt.Fprintln(w, StyleTitle.Render("Font scale"))
	rows := make([][]string, 0, len(tk.FontScale))
	for _, s := range tk.FontScale {
		rows = append(rows, []string{
			s.Name,
			strconv.Itoa(s.Size),
			fmt.Sprintf("%.3f", tk.LineHeight(s.Size, tokens.HeadlineNormal)),
			fmt.Sprintf("%.3f", tk.LineHeight(s.Size, tokens.BodyNormal)),
			fmt.Sprintf("%+.3fem", tk.TrackingFor(s.Size)),
		})
	}
	fmt.Fprintln(w, newTable("Step", "Size", "Headline LH", "Body LH", "Tracking").Rows(rows...).Render())

	fmt.Fprintln(w, StyleTitle.Render("Scales"))
	fmt.Fprintln(w, newTable("Scale", "Values").Rows(
		[]string{"spacing", joinInts(tk.Spacing)},
		[]string{"corner radii", joinInts(tk.CornerRadii)},
		[]string{"stroke widths", joinInts(tk.StrokeWidths)},
		[]string{"baseline", strconv.Itoa(tk.BaselineUnit)},
	).Render())

	cw, ch := int(c.Config.Canvas.Width), int(c.Config.Canvas.Height)
	m := tk.SafeMargins(cw, ch)
	printKeyValue(w, "canvas", fmt.Sprintf("%d×%d", cw, ch))
	printKeyValue(w, "margins", fmt.Sprintf("left %d · right %d · top %d · bottom %d", m.Left, m.Right, m.Top, m.Bottom))
	fmt.Fprintln(w)

	fmt.Fprintln(w, StyleTitle.Render("Palette"))
	for _, e := range tk.Colors.Entries() {
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(e.Hex)).Render("■")
		fmt.Fprintf(w, "  %s %-14s %s\n", swatch, e.Name, StyleDim.Render(e.Hex))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, StyleTitle.Render("Industries"))
	rows = rows[:0]
	for _, name := range sortedKeys(tk.Industries) {
		fp := tk.Industries[name]
		rows = append(rows, []string{name, headingLabel(fp), fp.Body + " " + fp.BodyWeight, fmt.Sprintf("%.3f", fp.ScaleRatio)})
	}
	fmt.Fprintln(w, newTable("Industry", "Heading", "Body", "Ratio").Rows(rows...).Render())
}

func (c *CLI) printFontPair(industry string, fp tokens.FontPair) {
	if _, ok := c.industries()[industry]; !ok {
		printWarning(c.out, "unknown industry %q, showing %s", industry, tokens.DefaultIndustry)
	}
	printKeyValue(c.out, "heading", headingLabel(fp))
	printKeyValue(c.out, "body", fp.Body+" "+fp.BodyWeight)
	printKeyValue(c.out, "scale ratio", fmt.Sprintf("%.3f", fp.ScaleRatio))
}

func (c *CLI) industries() map[string]tokens.FontPair {
	tk, err := c.loadTokens()
	if err != nil {
		return tokens.Default().Industries
	}
	return tk.Industries
}

func headingLabel(fp tokens.FontPair) string {
	s := fp.Heading + " " + fp.HeadingWeight
	if fp.HeadingStyle != "" {
		s += " " + fp.HeadingStyle
	}
	return s
}

func joinInts(vs []int) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}
