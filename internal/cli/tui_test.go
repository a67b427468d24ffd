package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/layoutfix/pkg/correction"
	"github.com/matzehuels/layoutfix/pkg/critic"
	"github.com/matzehuels/layoutfix/pkg/layer"
	"github.com/matzehuels/layoutfix/pkg/pipeline"
)

func inspectResult() *pipeline.Result {
	return &pipeline.Result{
		Archetype: "hero_left",
		Layers: []layer.Layer{
			layer.New("background", layer.KindRectangle, 0, 0, 1080, 1080, layer.Properties{}),
			layer.New("headline", layer.KindText, 108, 200, 600, 120, layer.Properties{FontSize: 61}),
			layer.New("cta_button", layer.KindTextbox, 430, 920, 220, 50, layer.Properties{FontSize: 20}),
		},
		Corrections: []correction.Record{
			{Type: "typography_hierarchy", Layer: "headline", Before: 20.0, After: 61.0},
			{Type: "margin_fix", Layer: "headline", Reason: "left margin"},
			{Type: "cta_added", Layer: "cta_button"},
		},
		Critique: critic.Result{Verdict: critic.Approved, TotalScore: 81.5},
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestInspectModelNavigation(t *testing.T) {
	var m tea.Model = NewInspectModel("post.json", inspectResult())

	if got := m.(InspectModel).Records(); len(got) != 0 {
		t.Errorf("background records = %v, want none", got)
	}

	m, _ = m.Update(key("down"))
	im := m.(InspectModel)
	if l, _ := im.Selected(); l.Name != "headline" {
		t.Fatalf("selected %s, want headline", l.Name)
	}
	if got := im.Records(); len(got) != 2 {
		t.Errorf("headline records = %d, want 2", len(got))
	}

	m, _ = m.Update(key("down"))
	m, _ = m.Update(key("down"))
	if m.(InspectModel).Cursor != 2 {
		t.Errorf("cursor moved past the last layer: %d", m.(InspectModel).Cursor)
	}

	m, _ = m.Update(key("tab"))
	if got := m.(InspectModel).Records(); len(got) != 3 {
		t.Errorf("all records = %d, want 3", len(got))
	}

	m, _ = m.Update(key("g"))
	if m.(InspectModel).Cursor != 0 {
		t.Error("g should jump to the first layer")
	}

	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Error("q should quit")
	}
}

func TestInspectModelView(t *testing.T) {
	m := NewInspectModel("post.json", inspectResult())
	m.Cursor = 1
	view := m.View()
	for _, want := range []string{"post.json", "hero_left", "APPROVED", "headline", "cta_button", "Corrections to headline", "typography_hierarchy", "left margin"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if strings.Contains(view, "cta_added") {
		t.Error("view shows corrections of an unselected layer")
	}
}
