package color

import (
	"math"
	"strings"
	"testing"

	"github.com/matzehuels/layoutfix/pkg/layer"
)

func TestHexToHSL(t *testing.T) {
	tests := []struct {
		hex  string
		want HSL
	}{
		{"#FF0000", HSL{0, 1, 0.5}},
		{"#00FFFF", HSL{180, 1, 0.5}},
		{"#FFFFFF", HSL{0, 0, 1}},
		{"#000", HSL{0, 0, 0}},
		{"#808080", HSL{0, 0, 0.502}},
		{"#FF00FF", HSL{300, 1, 0.5}},
	}
	for _, tt := range tests {
		t.Run(tt.hex, func(t *testing.T) {
			if got := HexToHSL(tt.hex); got != tt.want {
				t.Errorf("HexToHSL(%s) = %+v, want %+v", tt.hex, got, tt.want)
			}
		})
	}
}

func TestHSLRoundTrip(t *testing.T) {
	for _, hex := range []string{"#1E3A5F", "#D4AF37", "#8BA3BE", "#FF5500", "#123456", "#FEFEFE"} {
		back := HexToHSL(hex).Hex()
		r1, g1, b1 := RGB255(hex)
		r2, g2, b2 := RGB255(back)
		for _, d := range []int{int(r1) - int(r2), int(g1) - int(g2), int(b1) - int(b2)} {
			if d < -1 || d > 1 {
				t.Errorf("round trip %s -> %s drifted more than 1", hex, back)
			}
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"#abc":                 "#AABBCC",
		"ff0000":               "#FF0000",
		"rgba(0, 128, 255, 1)": "#0080FF",
		"white":                "#FFFFFF",
	}
	for in, want := range tests {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValidatePaletteComplementary(t *testing.T) {
	got := ValidatePalette([]string{"#FF0000", "#00FFFF"})
	if got.HarmonyType != Complementary {
		t.Errorf("HarmonyType = %s, want complementary", got.HarmonyType)
	}
	if math.Abs(got.Confidence-1) > 1e-9 {
		t.Errorf("Confidence = %v, want 1", got.Confidence)
	}
	// Both colors are vibrant, so only the vibrancy penalty applies.
	if got.Score != 85 || !got.Valid {
		t.Errorf("Score = %d valid=%v, want 85 valid", got.Score, got.Valid)
	}
	if got.VibrancyRatio != 1 {
		t.Errorf("VibrancyRatio = %v", got.VibrancyRatio)
	}
	if len(got.Suggestions) != 1 || !strings.HasPrefix(got.Suggestions[0], "Add a vibrant accent like") {
		t.Errorf("Suggestions = %v", got.Suggestions)
	}
}

func TestValidatePaletteSingle(t *testing.T) {
	got := ValidatePalette([]string{"#123456"})
	if !got.Valid || got.Score != 100 || got.HarmonyType != Single {
		t.Errorf("ValidatePalette(single) = %+v", got)
	}
}

func TestValidatePalettePenalties(t *testing.T) {
	// Three fully saturated hues at identical lightness.
	got := ValidatePalette([]string{"#FF0000", "#00FF40", "#6000FF"})
	want := []string{"color:vibrancy", "color:saturation", "color:contrast"}
	for _, w := range want {
		found := false
		for _, is := range got.Issues {
			if strings.HasPrefix(is, w) {
				found = true
			}
		}
		if !found {
			t.Errorf("missing issue %q in %v", w, got.Issues)
		}
	}
	if got.Valid {
		t.Errorf("expected invalid palette, score %d", got.Score)
	}
}

func TestDetectHarmony(t *testing.T) {
	tests := []struct {
		name   string
		colors []HSL
		want   Harmony
	}{
		{"grays", []HSL{{0, 0, 0.2}, {0, 0.05, 0.8}}, Monochromatic},
		{"analogous", []HSL{{10, 0.5, 0.5}, {25, 0.5, 0.5}}, Analogous},
		{"triadic", []HSL{{0, 0.5, 0.5}, {120, 0.5, 0.5}, {240, 0.5, 0.5}}, Triadic},
		{"square", []HSL{{0, 0.5, 0.5}, {90, 0.5, 0.5}}, Square},
		{"unknown", []HSL{{0, 0.5, 0.5}, {60, 0.5, 0.5}}, Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got, _ := DetectHarmony(tt.colors); got != tt.want {
				t.Errorf("DetectHarmony() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestSuggestAccent(t *testing.T) {
	// Hue 0 -> 180, lightness 0.5 -> 0.7.
	if got := SuggestAccent("#FF0000", Complementary); got != "#66FFFF" {
		t.Errorf("SuggestAccent() = %s, want #66FFFF", got)
	}
	if got := SuggestAccent("#FF0000", "bogus"); got != "#66FFFF" {
		t.Errorf("unknown harmony should use 180, got %s", got)
	}
}

func TestGeneratePalette(t *testing.T) {
	got := GeneratePalette("#FF0000", Triadic, 3)
	if len(got) != 3 || got[0] != "#FF0000" {
		t.Fatalf("GeneratePalette() = %v", got)
	}
	if h := HexToHSL(got[2]).H; math.Abs(h-120) > 1 {
		t.Errorf("last hue = %v, want 120", h)
	}
	if len(GeneratePalette("#FF0000", Triadic, 1)) != 1 {
		t.Error("count 1 should return the base only")
	}
}

func TestAreHarmonious(t *testing.T) {
	tests := []struct {
		a, b string
		want Harmony
	}{
		{"#FF0000", "#00FFFF", Complementary},
		{"#FF0000", "#FF4000", Analogous},
		{"#FF0000", "#00FF00", Triadic},
		{"#FF0000", "#FFFF00", None},
	}
	for _, tt := range tests {
		got := AreHarmonious(tt.a, tt.b)
		if got.Type != tt.want || got.Harmonious != (tt.want != None) {
			t.Errorf("AreHarmonious(%s, %s) = %+v, want %s", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestMakeVibrant(t *testing.T) {
	if got := HexToHSL(MakeVibrant("#806060")); got.L != 0.5 {
		t.Errorf("lightness = %v, want 0.5", got.L)
	}
}

func TestValidateContrast(t *testing.T) {
	same := ValidateContrast("#FFFFFF", "#FFFFFF")
	if same.Ratio != 1 || same.PassesAANormal {
		t.Errorf("white on white = %+v", same)
	}
	bw := ValidateContrast("#000000", "#FFFFFF")
	if bw.Ratio != 21 || !bw.PassesAAANormal || !bw.PassesAAALarge {
		t.Errorf("black on white = %+v", bw)
	}
	gray := ValidateContrast("#777777", "#FFFFFF")
	if gray.PassesAANormal || !gray.PassesAALarge {
		t.Errorf("#777 on white = %+v", gray)
	}
}

func TestSuggestTextColor(t *testing.T) {
	tests := []struct {
		bg, pref, want string
	}{
		{"#FFFFFF", "#FFFFFF", "#000000"},
		{"#000000", "#D4AF37", "#D4AF37"},
		{"#1E3A5F", "", "#FFFFFF"},
		{"#777777", "#888888", "#000000"},
	}
	for _, tt := range tests {
		if got := SuggestTextColor(tt.bg, tt.pref); got != tt.want {
			t.Errorf("SuggestTextColor(%s, %s) = %s, want %s", tt.bg, tt.pref, got, tt.want)
		}
	}
}

func TestFixContrastIssues(t *testing.T) {
	ls := []layer.Layer{
		layer.New("background", layer.KindRectangle, 0, 0, 1080, 1080, layer.Properties{Fill: "#1A1A2E"}),
		layer.New("headline", layer.KindText, 80, 100, 900, 120, layer.Properties{FontSize: 49, Fill: "#222222"}),
		layer.New("cta_button", layer.KindTextbox, 80, 900, 280, 60, layer.Properties{Fill: "#D4AF37", TextColor: "#1A1A2E"}),
	}
	issues := ValidateLayers(ls, "")
	if len(issues) != 2 {
		t.Fatalf("ValidateLayers() = %d issues, want 2: %+v", len(issues), issues)
	}
	if !strings.Contains(issues[0].Message, "below WCAG AA minimum (3:1)") {
		t.Errorf("message = %q", issues[0].Message)
	}

	fixed, fixes := FixContrastIssues(ls, "")
	if len(fixes) != 2 {
		t.Fatalf("fixes = %+v", fixes)
	}
	if fixed[1].Properties.Fill != "#FFFFFF" {
		t.Errorf("headline fill = %s", fixed[1].Properties.Fill)
	}
	if fixed[2].Properties.TextColor != "#FFFFFF" || fixed[2].Properties.Fill != "#D4AF37" {
		t.Errorf("cta props = %+v", fixed[2].Properties)
	}
	if ls[1].Properties.Fill != "#222222" {
		t.Error("FixContrastIssues mutated its input")
	}
	if len(ValidateLayers(fixed, "")) != 0 {
		t.Error("fixed layers still fail")
	}
}

func TestFindBackground(t *testing.T) {
	band := layer.New("band", layer.KindRectangle, 0, 600, 1080, 300, layer.Properties{Fill: "#112233"})
	text := layer.New("copy", layer.KindText, 80, 700, 400, 40, layer.Properties{})
	if got := FindBackground(text, []layer.Layer{band, text}, "#FFFFFF"); got != "#112233" {
		t.Errorf("FindBackground() = %s", got)
	}
	text.Y = 100
	if got := FindBackground(text, []layer.Layer{band, text}, "#EEEEEE"); got != "#EEEEEE" {
		t.Errorf("FindBackground() = %s, want fallback", got)
	}
}
