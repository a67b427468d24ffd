package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/layoutfix/pkg/archetype"
	"github.com/matzehuels/layoutfix/pkg/correction"
	"github.com/matzehuels/layoutfix/pkg/critic"
	"github.com/matzehuels/layoutfix/pkg/pipeline"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - paths
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight for emphasized values.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for numeric values.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	// StyleError for failures.
	StyleError = lipgloss.NewStyle().Foreground(colorRed)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)

	styleHeader = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	styleBorder = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconSuccess.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

func printError(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconError.Render(iconError)+" "+fmt.Sprintf(format, args...))
}

func printWarning(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconWarning.Render(iconWarning)+" "+StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconInfo.Render(iconInfo)+" "+fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line.
func printDetail(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a file output line.
func printFile(w io.Writer, path string) {
	fmt.Fprintln(w, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

// printKeyValue prints a labeled value.
func printKeyValue(w io.Writer, key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Fprintln(w, keyStyle.Render(key)+" "+StyleValue.Render(value))
}

// printNextStep prints a suggested next command.
func printNextStep(w io.Writer, description, cmd string) {
	fmt.Fprintln(w, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

// =============================================================================
// Run Summaries
// =============================================================================

// printStats prints run statistics on a single line.
func printStats(w io.Writer, res *pipeline.Result) {
	parts := []string{
		fmt.Sprintf("%d layers", res.Stats.Layers),
		fmt.Sprintf("%d corrections", len(res.Corrections)),
	}
	if res.Revisions > 0 {
		parts = append(parts, fmt.Sprintf("%d revisions", res.Revisions))
	}

	status, statusStyle := iconFresh, styleComputed
	if res.CacheInfo.CorrectHit {
		status, statusStyle = iconCached, styleCached
	}

	line := "  "
	for i, part := range parts {
		if i > 0 {
			line += StyleDim.Render(" · ")
		}
		line += StyleDim.Render(part)
	}
	line += StyleDim.Render(" · ") + statusStyle.Render(status)
	fmt.Fprintln(w, line)
}

// printCorrections groups correction records by type, in first-seen order.
func printCorrections(w io.Writer, recs []correction.Record) {
	if len(recs) == 0 {
		printDetail(w, "no corrections needed")
		return
	}
	var order []string
	counts := map[string]int{}
	layers := map[string][]string{}
	for _, r := range recs {
		if counts[r.Type] == 0 {
			order = append(order, r.Type)
		}
		counts[r.Type]++
		if r.Layer != "" && !contains(layers[r.Type], r.Layer) {
			layers[r.Type] = append(layers[r.Type], r.Layer)
		}
	}

	rows := make([][]string, 0, len(order))
	for _, typ := range order {
		rows = append(rows, []string{typ, fmt.Sprint(counts[typ]), truncateList(layers[typ], 4)})
	}
	fmt.Fprintln(w, newTable("Correction", "Count", "Layers").Rows(rows...).Render())
}

// printCritique renders the score table, gate failures and suggestions.
func printCritique(w io.Writer, res critic.Result, weights map[critic.Criterion]float64) {
	rows := make([][]string, 0, len(res.Scores)+1)
	for _, c := range critic.Criteria() {
		rows = append(rows, []string{string(c), fmt.Sprintf("%.2f", weights[c]), fmt.Sprintf("%.1f", res.Scores[c])})
	}
	rows = append(rows, []string{"total", "", fmt.Sprintf("%.1f", res.TotalScore)})

	t := newTable("Criterion", "Weight", "Score").Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == headerRow {
				return styleHeader
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			if row == len(rows)-1 {
				return base.Bold(true)
			}
			if col == 2 && row < len(rows)-1 {
				return base.Foreground(scoreColor(res.Scores[critic.Criteria()[row]]))
			}
			return base
		})
	fmt.Fprintln(w, t.Render())

	printVerdict(w, res)
	for _, g := range res.GateFailures {
		printDetail(w, "gate: %s", g)
	}
	for _, is := range res.Issues {
		printDetail(w, "issue: %s", is)
	}
	if len(res.Suggestions) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, StyleTitle.Render("Suggestions"))
		for _, s := range res.Suggestions {
			fmt.Fprintln(w, "  "+StyleDim.Render(iconInfo)+" "+s)
		}
	}
}

func printVerdict(w io.Writer, res critic.Result) {
	if res.Passed {
		printSuccess(w, "%s %s", StyleSuccess.Render(string(res.Verdict)), StyleDim.Render(fmt.Sprintf("(%.1f)", res.TotalScore)))
		return
	}
	printError(w, "%s %s", StyleError.Render(string(res.Verdict)), StyleDim.Render(fmt.Sprintf("(%.1f)", res.TotalScore)))
}

// printArchetypeScores renders the ranked archetype table, marking the pick.
func printArchetypeScores(w io.Writer, scores []archetype.Score, picked string, catalog archetype.Catalog) {
	rows := make([][]string, 0, len(scores))
	for _, s := range scores {
		mark := ""
		if s.Name == picked {
			mark = iconSuccess
		}
		rows = append(rows, []string{mark, s.Name, catalog.Get(s.Name).Title, fmt.Sprintf("%.1f", s.Score)})
	}
	t := newTable("", "Archetype", "Title", "Score").Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == headerRow {
				return styleHeader
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			if row < len(scores) && scores[row].Name == picked {
				return base.Foreground(colorGreen).Bold(true)
			}
			return base
		})
	fmt.Fprintln(w, t.Render())
}

// =============================================================================
// Utilities
// =============================================================================

// headerRow is the row index lipgloss tables pass to StyleFunc for headers.
const headerRow = -1

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleBorder).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == headerRow {
				return styleHeader
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
}

func scoreColor(score float64) lipgloss.Color {
	switch {
	case score >= 75:
		return colorGreen
	case score >= 60:
		return colorYellow
	default:
		return colorRed
	}
}

func marshalIndent(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

// truncateList joins up to n items and summarizes the rest.
func truncateList(items []string, n int) string {
	if len(items) <= n {
		return strings.Join(items, ", ")
	}
	return strings.Join(items[:n], ", ") + fmt.Sprintf(" +%d", len(items)-n)
}

// sortedKeys returns map keys in lexical order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
