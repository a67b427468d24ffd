package color

import (
	"fmt"
	"math"

	"github.com/matzehuels/layoutfix/pkg/layer"
)

// WCAG 2.x contrast thresholds.
const (
	AANormal  = 4.5
	AALarge   = 3.0
	AAANormal = 7.0
	AAALarge  = 4.5

	// LargeTextSize is the font size in px from which the large-text
	// thresholds apply.
	LargeTextSize = 24.0
)

const (
	White = "#FFFFFF"
	Black = "#000000"

	// DefaultBackground is used when no rectangle sits behind a text layer.
	DefaultBackground = White
)

// Contrast is the outcome of [ValidateContrast]. Ratio is rounded to two
// decimals and the pass flags are computed from the rounded value.
type Contrast struct {
	Ratio           float64 `json:"ratio"`
	PassesAANormal  bool    `json:"passes_aa_normal"`
	PassesAALarge   bool    `json:"passes_aa_large"`
	PassesAAANormal bool    `json:"passes_aaa_normal"`
	PassesAAALarge  bool    `json:"passes_aaa_large"`
}

// Luminance is the WCAG relative luminance of a color in [0, 1].
func Luminance(hex string) float64 {
	r, g, b := RGB255(hex)
	lin := func(c uint8) float64 {
		v := float64(c) / 255
		if v <= 0.03928 {
			return v / 12.92
		}
		return math.Pow((v+0.055)/1.055, 2.4)
	}
	return 0.2126*lin(r) + 0.7152*lin(g) + 0.0722*lin(b)
}

// Ratio is the unrounded contrast ratio between two colors, in [1, 21].
func Ratio(a, b string) float64 {
	la, lb := Luminance(a), Luminance(b)
	hi, lo := math.Max(la, lb), math.Min(la, lb)
	return (hi + 0.05) / (lo + 0.05)
}

// ValidateContrast checks text against background at every WCAG level.
func ValidateContrast(text, background string) Contrast {
	r := round(Ratio(text, background), 2)
	return Contrast{
		Ratio:           r,
		PassesAANormal:  r >= AANormal,
		PassesAALarge:   r >= AALarge,
		PassesAAANormal: r >= AAANormal,
		PassesAAALarge:  r >= AAALarge,
	}
}

// HasEnoughContrast reports whether two colors meet AA for the text size.
func HasEnoughContrast(a, b string, large bool) bool {
	return Ratio(a, b) >= minRatio(large)
}

// SuggestTextColor returns preferred if it reaches AA normal against
// background, then white, then black. When none does, the higher of white
// and black wins, with black on a tie.
func SuggestTextColor(background, preferred string) string {
	if preferred == "" {
		preferred = White
	}
	for _, c := range []string{preferred, White, Black} {
		if Ratio(c, background) >= AANormal {
			return c
		}
	}
	if Ratio(White, background) > Ratio(Black, background) {
		return White
	}
	return Black
}

// Issue is a text layer that fails AA contrast.
type Issue struct {
	Layer         string  `json:"layer"`
	Type          string  `json:"type"`
	Message       string  `json:"message"`
	CurrentRatio  float64 `json:"current_ratio"`
	RequiredRatio float64 `json:"required_ratio"`
	TextColor     string  `json:"text_color"`
	Background    string  `json:"background_color"`
	Suggested     string  `json:"suggested_color"`
}

// Fix records a text color replaced by [FixContrastIssues].
type Fix struct {
	Layer    string `json:"layer"`
	OldColor string `json:"old_color"`
	NewColor string `json:"new_color"`
}

// ValidateLayers reports every text layer whose color fails AA against the
// background found behind it. The input is not modified.
func ValidateLayers(ls []layer.Layer, background string) []Issue {
	var issues []Issue
	for _, l := range ls {
		if !l.IsText() {
			continue
		}
		text, bg, c, need := check(l, ls, background)
		if c.Ratio >= need {
			continue
		}
		issues = append(issues, Issue{
			Layer:         l.Name,
			Type:          "contrast_violation",
			Message:       fmt.Sprintf("Contrast ratio %s:1 is below WCAG AA minimum (%s:1)", fmtRatio(c.Ratio), fmtRatio(need)),
			CurrentRatio:  c.Ratio,
			RequiredRatio: need,
			TextColor:     text,
			Background:    bg,
			Suggested:     SuggestTextColor(bg, text),
		})
	}
	return issues
}

// FixContrastIssues replaces failing text colors. Textboxes get a new
// textColor; plain text gets a new fill.
func FixContrastIssues(ls []layer.Layer, background string) ([]layer.Layer, []Fix) {
	out := layer.CloneAll(ls)
	var fixes []Fix
	for i, l := range out {
		if !l.IsText() {
			continue
		}
		text, bg, c, need := check(l, out, background)
		if c.Ratio >= need {
			continue
		}
		next := SuggestTextColor(bg, text)
		if l.Kind == layer.KindTextbox {
			out[i].Properties.TextColor = next
		} else {
			out[i].Properties.Fill = next
		}
		fixes = append(fixes, Fix{Layer: l.Name, OldColor: text, NewColor: next})
	}
	return out, fixes
}

// TextColor is the color a text layer renders its glyphs in. Textboxes draw
// their label in textColor on a fill; plain text is drawn in fill.
func TextColor(l layer.Layer) string {
	p := l.Properties
	if l.Kind == layer.KindTextbox && p.TextColor != "" {
		return p.TextColor
	}
	if p.Fill != "" {
		return p.Fill
	}
	if p.TextColor != "" {
		return p.TextColor
	}
	return layer.DefaultFill
}

func check(l layer.Layer, all []layer.Layer, background string) (string, string, Contrast, float64) {
	text := TextColor(l)
	bg := FindBackground(l, all, background)
	fs := l.Properties.FontSize
	if fs == 0 {
		fs = layer.DefaultFontSize
	}
	return text, bg, ValidateContrast(text, bg), minRatio(fs >= LargeTextSize)
}

// FindBackground returns the fill of the first rectangle that plausibly sits
// behind l: one named background/bg, or a full-width band (at least
// 1000×100) whose vertical span contains l's top edge.
func FindBackground(l layer.Layer, all []layer.Layer, fallback string) string {
	if fallback == "" {
		fallback = DefaultBackground
	}
	for _, o := range all {
		if o.Kind != layer.KindRectangle {
			continue
		}
		fill := o.Properties.Fill
		if fill == "" {
			fill = fallback
		}
		if o.NameHas("background", "bg") {
			return fill
		}
		if o.Width >= 1000 && o.Height >= 100 && l.Y >= o.Y && l.Y <= o.Y+o.Height {
			return fill
		}
	}
	return fallback
}

func minRatio(large bool) float64 {
	if large {
		return AALarge
	}
	return AANormal
}

func fmtRatio(v float64) string {
	return fmt.Sprintf("%g", v)
}
