package critic

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/layoutfix/pkg/imageanalysis"
	"github.com/matzehuels/layoutfix/pkg/layer"
)

func txt(name string, x, y, w, h, fs float64, fill string) layer.Layer {
	return layer.New(name, layer.KindText, x, y, w, h, layer.Properties{Text: name, FontSize: fs, Fill: fill})
}

func noAnalysis() imageanalysis.Analysis { return imageanalysis.Analysis{} }

func premiumLayout() []layer.Layer {
	return []layer.Layer{
		layer.New("background", layer.KindRectangle, 0, 0, 1080, 1080, layer.Properties{Fill: "#1E3A5F"}),
		layer.New("overlay", layer.KindRectangle, 0, 0, 1080, 1080, layer.Properties{Fill: "#000000", Opacity: 0.5}),
		txt("headline", 80, 300, 920, 100, 49, "#FFFFFF"),
		txt("subtext", 80, 420, 920, 50, 20, "#CCCCCC"),
		layer.New("cta_button", layer.KindTextbox, 430, 920, 220, 50, layer.Properties{
			Text:          "Learn More",
			FontSize:      16,
			Fill:          "#D4AF37",
			ShadowEnabled: true,
			ShadowBlur:    8,
			ShadowOffsetY: 4,
			ShadowOpacity: 0.12,
		}),
	}
}

func TestCritiqueApprovesPremiumLayout(t *testing.T) {
	an := imageanalysis.Analysis{Success: true, Colors: &imageanalysis.Colors{AccentCandidates: []string{"#D4AF37"}}}
	res := New().Critique(context.Background(), premiumLayout(), an, 1080, 1080)

	assert.True(t, res.Passed, "gate failures: %v, issues: %v", res.GateFailures, res.Issues)
	assert.GreaterOrEqual(t, res.TotalScore, 75.0)
	assert.Equal(t, Approved, res.Verdict)
	assert.Empty(t, res.GateFailures)
	assert.Equal(t, 80.0, res.Scores[Integration])
	assert.Len(t, res.Scores, len(Criteria()))
}

func TestCritiqueSmallHeadline(t *testing.T) {
	ls := []layer.Layer{txt("headline", 80, 300, 920, 50, 20, "#FFFFFF")}
	res := New().Critique(context.Background(), ls, noAnalysis(), 1080, 1080)

	assert.Less(t, res.Scores[Typography], 100.0)
	assert.True(t, res.HasIssue("Headline too small"))
	assert.Contains(t, res.Suggestions, "Increase headline to 39px or 49px for scroll-stopping impact")
	assert.Equal(t, NeedsRevision, res.Verdict)
}

func TestCritiqueCTAWithoutShadow(t *testing.T) {
	ls := []layer.Layer{
		txt("headline", 80, 300, 920, 100, 49, "#FFFFFF"),
		layer.New("cta_button", layer.KindTextbox, 430, 920, 220, 50, layer.Properties{Text: "Click", Fill: "#D4AF37"}),
	}
	res := New().Critique(context.Background(), ls, noAnalysis(), 1080, 1080)

	assert.Equal(t, 75.0, res.Scores[Depth])
	assert.True(t, res.HasIssue("CTA button lacks elevation"))
	assert.True(t, res.HasIssue("depth:flat"))
}

func TestCritiqueFocalPointOverlap(t *testing.T) {
	ls := []layer.Layer{txt("headline", 200, 200, 400, 100, 49, "#000000")}
	an := imageanalysis.Analysis{
		Success:   true,
		BusyZones: []imageanalysis.Zone{{X: 150, Y: 150, Width: 500, Height: 500}},
	}
	res := New().Critique(context.Background(), ls, an, 1080, 1080)

	assert.Equal(t, 70.0, res.Scores[Integration])
	assert.True(t, res.HasIssue("overlaps with focal point"))
	assert.Contains(t, res.GateFailures, "critical_issue:integration:overlap")
	assert.False(t, res.Passed)
}

func TestCritiqueTouchingZoneCountsAsOverlap(t *testing.T) {
	ls := []layer.Layer{txt("headline", 100, 100, 50, 50, 49, "#000000")}
	an := imageanalysis.Analysis{BusyZones: []imageanalysis.Zone{{X: 150, Y: 150, Width: 100, Height: 100}}}
	res := New().Critique(context.Background(), ls, an, 1080, 1080)
	assert.True(t, res.HasIssue("integration:overlap"))
}

func TestCritiqueFullBleedNeedsOverlay(t *testing.T) {
	ls := []layer.Layer{
		layer.New("photo", layer.KindImage, 0, 0, 1080, 1080, layer.Properties{}),
		txt("headline", 80, 300, 920, 100, 49, "#000000"),
	}
	res := New().Critique(context.Background(), ls, imageanalysis.Analysis{Success: true}, 1080, 1080)

	assert.True(t, res.HasIssue("overlay for readability"))
	assert.Equal(t, 80.0, res.Scores[Integration])
	assert.Contains(t, res.Suggestions, "Add dark overlay (opacity 0.5-0.6) between image and text")
}

func TestCritiqueModularScaleSuggestion(t *testing.T) {
	ls := []layer.Layer{
		txt("text1", 0, 0, 0, 0, 18, ""),
		txt("text2", 0, 0, 0, 0, 19, ""),
	}
	res := New().Critique(context.Background(), ls, noAnalysis(), 1080, 1080)
	assert.Contains(t, res.Suggestions, "Use font sizes from Major Third scale: 13, 16, 20, 25, 31, 39, 49, 61px")
}

func TestCritiqueNoText(t *testing.T) {
	res := New().Critique(context.Background(), nil, noAnalysis(), 1080, 1080)
	assert.Equal(t, 50.0, res.Scores[Typography])
	assert.Contains(t, res.Issues, "No text layers found")
}

func TestCritiqueWhiteTextWithoutSupport(t *testing.T) {
	ls := []layer.Layer{txt("headline", 80, 300, 920, 100, 49, "#ffffff")}
	res := New().Critique(context.Background(), ls, noAnalysis(), 1080, 1080)
	assert.True(t, res.HasIssue("color:contrast"))
	assert.Contains(t, res.GateFailures, "critical_issue:color:contrast")
}

func TestCheckGates(t *testing.T) {
	c := New()
	tests := []struct {
		name   string
		scores map[Criterion]float64
		issues []string
		want   []string
	}{
		{"clean", map[Criterion]float64{Integration: 80}, []string{"aesthetic:weight - x", "integration:analysis - y"}, []string{}},
		{"low integration", map[Criterion]float64{Integration: 50}, nil, []string{"integration_score:50 < 60"}},
		{"one non-cosmetic allowed", map[Criterion]float64{Integration: 100}, []string{"typography:scale - x"}, []string{}},
		{
			"too many issues",
			map[Criterion]float64{Integration: 100},
			[]string{"typography:scale - x", "depth:flat - y"},
			[]string{"issue_count:2 > 1"},
		},
		{
			"critical pattern",
			map[Criterion]float64{Integration: 100},
			[]string{"color:contrast - z"},
			[]string{"critical_issue:color:contrast"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.checkGates(tt.scores, tt.issues))
		})
	}
}

func TestWithConfig(t *testing.T) {
	c := New(WithConfig(Config{MinimumScore: 90}))
	cfg := c.Config()
	assert.Equal(t, 90.0, cfg.MinimumScore)
	assert.Equal(t, DefaultMinimumIntegrationScore, cfg.MinimumIntegrationScore)
	assert.Equal(t, DefaultWeights(), cfg.Weights)

	var sum float64
	for _, w := range DefaultWeights() {
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestApplyFixes(t *testing.T) {
	ls := []layer.Layer{
		txt("headline", 80, 300, 920, 100, 25, ""),
		layer.New("cta_button", layer.KindTextbox, 430, 920, 220, 50, layer.Properties{Text: "Click"}),
	}
	res := Result{Issues: []string{
		"typography:headline - Headline too small (25px).",
		"depth:cta - CTA button lacks elevation.",
	}}
	got := New().ApplyFixes(ls, res)

	require.Len(t, got, 2)
	assert.Equal(t, 39.0, got[0].Properties.FontSize)
	assert.True(t, got[1].Properties.ShadowEnabled)
	assert.Equal(t, 25.0, ls[0].Properties.FontSize, "input must not change")
}

func TestApplyFixesWithoutMatchingIssues(t *testing.T) {
	ls := []layer.Layer{txt("headline", 80, 300, 920, 100, 25, "")}
	got := New().ApplyFixes(ls, Result{Issues: []string{"composition:crowded - x"}})
	assert.Equal(t, ls, got)
}

func TestSuggestionsDeduplicated(t *testing.T) {
	got := Suggestions([]string{
		"integration:overlap - Text 'a' overlaps with focal point at (1, 2)",
		"integration:overlap - Text 'b' overlaps with focal point at (1, 2)",
		"depth:flat - No shadows used.",
	})
	assert.Equal(t, []string{
		"Move text to safe zone or add semi-transparent overlay",
		"Add subtle shadow to CTA button: blur 8px, opacity 12%",
	}, got)
}

func TestAestheticHelpers(t *testing.T) {
	centered := []layer.Layer{
		txt("headline", 140, 100, 800, 100, 61, ""),
		txt("subtext", 240, 300, 600, 50, 20, ""),
		txt("body", 340, 400, 400, 50, 16, ""),
	}
	assert.False(t, Asymmetric(centered, 1080))
	assert.True(t, Asymmetric(centered[:2], 1080))

	assert.False(t, Dynamic(centered), "no accent")
	withLine := append(centered, layer.New("divider", layer.KindLine, 100, 250, 120, 4, layer.Properties{}))
	assert.True(t, Dynamic(withLine))

	headlineOnly := []layer.Layer{txt("headline", 0, 0, 100, 100, 61, ""), txt("headline_2", 0, 0, 100, 100, 61, "")}
	assert.False(t, Dynamic(headlineOnly), "a headline name is not a decorative line")

	ok, d := WeightBalanced([]layer.Layer{txt("headline", 0, 0, 1, 1, 95, "")})
	assert.True(t, ok)
	assert.Equal(t, 100.0, d.Headline)
}

func TestCoverage(t *testing.T) {
	ls := []layer.Layer{
		layer.New("background", layer.KindRectangle, 0, 0, 1080, 1080, layer.Properties{}),
		layer.New("photo", layer.KindImage, 0, 0, 1080, 540, layer.Properties{}),
		layer.New("card", layer.KindRectangle, 0, 540, 540, 540, layer.Properties{}),
	}
	assert.InDelta(t, 0.75, Coverage(ls, 1080, 1080), 1e-9)
}
