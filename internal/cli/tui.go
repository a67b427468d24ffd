package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/layoutfix/pkg/correction"
	"github.com/matzehuels/layoutfix/pkg/layer"
	"github.com/matzehuels/layoutfix/pkg/pipeline"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// InspectModel - Interactive corrected-layout browser
// =============================================================================

// InspectModel is the bubbletea model for browsing a corrected layout. The
// table lists the corrected layers; the pane below shows the correction
// records that touched the selected layer.
type InspectModel struct {
	Title  string
	Result *pipeline.Result
	Cursor int
	Height int
	Offset int

	// ShowAll lists every correction instead of the selected layer's.
	ShowAll bool

	byLayer map[string][]correction.Record
}

// NewInspectModel creates a browser over a pipeline result.
func NewInspectModel(title string, res *pipeline.Result) InspectModel {
	byLayer := map[string][]correction.Record{}
	for _, rec := range res.Corrections {
		byLayer[rec.Layer] = append(byLayer[rec.Layer], rec)
	}
	return InspectModel{
		Title:   title,
		Result:  res,
		Height:  12,
		byLayer: byLayer,
	}
}

func (m InspectModel) Init() tea.Cmd {
	return nil
}

func (m InspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Result.Layers)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "home", "g":
			m.Cursor, m.Offset = 0, 0
		case "end", "G":
			m.Cursor = max(len(m.Result.Layers)-1, 0)
			m.Offset = max(m.Cursor-m.Height+1, 0)
		case "tab", "a":
			m.ShowAll = !m.ShowAll
		}
	case tea.WindowSizeMsg:
		// Leave room for the header, the corrections pane and the footer.
		m.Height = max(msg.Height/2-4, 5)
	}
	return m, nil
}

// Selected returns the layer under the cursor.
func (m InspectModel) Selected() (layer.Layer, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.Result.Layers) {
		return layer.Layer{}, false
	}
	return m.Result.Layers[m.Cursor], true
}

// Records returns the corrections shown in the lower pane.
func (m InspectModel) Records() []correction.Record {
	if m.ShowAll {
		return m.Result.Corrections
	}
	l, ok := m.Selected()
	if !ok {
		return nil
	}
	return m.byLayer[l.Name]
}

func (m InspectModel) View() string {
	var b strings.Builder
	res := m.Result

	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("  ")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("%s · %s %.1f", res.Archetype, res.Critique.Verdict, res.Critique.TotalScore)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  tab all corrections  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(res.Layers))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		l := res.Layers[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		font := "—"
		if l.IsText() {
			font = fmt.Sprintf("%.0f", l.Properties.FontSize)
		}
		fixes := "—"
		if n := len(m.byLayer[l.Name]); n > 0 {
			fixes = fmt.Sprint(n)
		}
		rows = append(rows, []string{
			cursor, l.Name, string(l.Kind), string(l.Role),
			fmt.Sprintf("%.0f,%.0f", l.X, l.Y),
			fmt.Sprintf("%.0f×%.0f", l.Width, l.Height),
			font, fixes,
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleBorder).
		Headers("", "Layer", "Kind", "Role", "Position", "Size", "Font", "Fixes").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == headerRow {
				return styleHeader
			}
			idx := m.Offset + row
			if idx >= len(res.Layers) {
				return lipgloss.NewStyle()
			}
			touched := len(m.byLayer[res.Layers[idx].Name]) > 0
			base := lipgloss.NewStyle()
			switch {
			case idx == m.Cursor && touched:
				return base.Foreground(colorGreen).Bold(true)
			case idx == m.Cursor:
				return base.Bold(true)
			case touched:
				return base.Foreground(colorGreen)
			case col >= 4:
				return base.Foreground(colorDim)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", min(m.Cursor+1, len(res.Layers)), len(res.Layers))))
	b.WriteString("\n\n")

	b.WriteString(m.recordsView())
	return b.String()
}

func (m InspectModel) recordsView() string {
	var b strings.Builder
	title := "All corrections"
	if !m.ShowAll {
		if l, ok := m.Selected(); ok {
			title = "Corrections to " + l.Name
		}
	}
	b.WriteString(listSelectedStyle.Render(title))
	b.WriteString("\n")

	recs := m.Records()
	if len(recs) == 0 {
		b.WriteString(listDimStyle.Render("  none"))
		b.WriteString("\n")
		return b.String()
	}
	for _, rec := range recs {
		line := "  " + StyleHighlight.Render(rec.Type)
		if m.ShowAll && rec.Layer != "" {
			line += " " + StyleValue.Render(rec.Layer)
		}
		if rec.Before != nil || rec.After != nil {
			line += listDimStyle.Render(fmt.Sprintf("  %v %s %v", formatValue(rec.Before), iconArrow, formatValue(rec.After)))
		}
		if rec.Reason != "" {
			line += listDimStyle.Render("  " + rec.Reason)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// formatValue renders a correction's before/after value compactly.
func formatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return "—"
	case float64:
		return fmt.Sprintf("%g", v)
	case string:
		return v
	default:
		s := fmt.Sprintf("%v", v)
		if len(s) > 40 {
			s = s[:37] + "..."
		}
		return s
	}
}
