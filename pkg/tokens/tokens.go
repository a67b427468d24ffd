// Package tokens provides the design-token scales every correction stage
// snaps to: a modular font scale, an 8pt spacing scale, allowed corner radii
// and stroke widths, line-height and tracking tables, and the 80% safe-margin
// rule.
//
// Tokens is an immutable configuration value. Build one with [Default] (or
// [LoadFile] for a TOML override) and pass it to the components that need it.
package tokens

import "slices"

// Step is a named entry of the font scale.
type Step struct {
	Name string `toml:"name" json:"name"`
	Size int    `toml:"size" json:"size"`
}

// Tokens holds the canonical design scales.
type Tokens struct {
	// FontScale is the modular scale (ratio 1.25, base 16) in ascending order.
	FontScale []Step `toml:"font_scale" json:"font_scale"`
	// Spacing is the 8pt spacing scale.
	Spacing []int `toml:"spacing" json:"spacing"`
	// BaselineUnit is the grid every line height is rounded up to.
	BaselineUnit int `toml:"baseline_unit" json:"baseline_unit"`
	// SafeMarginRatio is the per-side margin as a fraction of the dimension.
	SafeMarginRatio float64 `toml:"safe_margin_ratio" json:"safe_margin_ratio"`
	// MinMargin is the smallest margin in pixels regardless of canvas size.
	MinMargin int `toml:"min_margin" json:"min_margin"`

	LineHeights  map[Context]float64 `toml:"line_heights" json:"line_heights"`
	Tracking     map[string]float64  `toml:"tracking" json:"tracking"`
	CornerRadii  []int               `toml:"corner_radii" json:"corner_radii"`
	StrokeWidths []int               `toml:"stroke_widths" json:"stroke_widths"`

	Industries map[string]FontPair `toml:"industries" json:"industries"`
	Colors     Palette             `toml:"colors" json:"colors"`
}

// Context selects a line-height multiplier.
type Context string

// Line-height contexts.
const (
	HeadlineTight  Context = "headline_tight"
	HeadlineNormal Context = "headline_normal"
	BodyTight      Context = "body_tight"
	BodyNormal     Context = "body_normal"
	BodyLoose      Context = "body_loose"
)

// PillRadius is the corner radius that renders a fully rounded pill.
const PillRadius = 500

// Default returns the standard token set.
func Default() Tokens {
	return Tokens{
		FontScale: []Step{
			{"xs", 13}, {"sm", 16}, {"md", 20}, {"lg", 25}, {"xl", 31},
			{"2xl", 39}, {"3xl", 49}, {"4xl", 61}, {"5xl", 76}, {"6xl", 95},
		},
		Spacing:         []int{8, 16, 24, 32, 48, 64, 80, 96, 120},
		BaselineUnit:    8,
		SafeMarginRatio: 0.10,
		MinMargin:       80,
		LineHeights: map[Context]float64{
			HeadlineTight:  1.1,
			HeadlineNormal: 1.2,
			BodyTight:      1.4,
			BodyNormal:     1.5,
			BodyLoose:      1.75,
		},
		Tracking: map[string]float64{
			"xs": 0.05, "sm": 0.02, "md": 0.0, "lg": -0.01, "xl": -0.02,
			"2xl": -0.02, "3xl": -0.015, "4xl": -0.01, "5xl": -0.005, "6xl": 0.0,
		},
		CornerRadii:  []int{0, 8, 12, 16, 24, PillRadius},
		StrokeWidths: []int{1, 2, 3, 4, 6, 8},
		Industries:   defaultIndustries(),
		Colors:       DefaultPalette(),
	}
}

// FontSizes returns the font scale values in ascending order.
func (t Tokens) FontSizes() []int {
	out := make([]int, len(t.FontScale))
	for i, s := range t.FontScale {
		out[i] = s.Size
	}
	return out
}

// FontSize returns the size of a named scale step, or 0 if unknown.
func (t Tokens) FontSize(name string) int {
	for _, s := range t.FontScale {
		if s.Name == name {
			return s.Size
		}
	}
	return 0
}

// InScale reports whether size is exactly a font scale value.
func (t Tokens) InScale(size int) bool {
	return slices.Contains(t.FontSizes(), size)
}

// NextFontSize returns the first scale value strictly above size, or
// fallback when size is at or beyond the top of the scale.
func (t Tokens) NextFontSize(size float64, fallback int) int {
	for _, s := range t.FontScale {
		if float64(s.Size) > size {
			return s.Size
		}
	}
	return fallback
}

// merge fills zero-valued fields of t from d.
func (t Tokens) merge(d Tokens) Tokens {
	if len(t.FontScale) == 0 {
		t.FontScale = d.FontScale
	}
	if len(t.Spacing) == 0 {
		t.Spacing = d.Spacing
	}
	if t.BaselineUnit == 0 {
		t.BaselineUnit = d.BaselineUnit
	}
	if t.SafeMarginRatio == 0 {
		t.SafeMarginRatio = d.SafeMarginRatio
	}
	if t.MinMargin == 0 {
		t.MinMargin = d.MinMargin
	}
	if len(t.LineHeights) == 0 {
		t.LineHeights = d.LineHeights
	}
	if len(t.Tracking) == 0 {
		t.Tracking = d.Tracking
	}
	if len(t.CornerRadii) == 0 {
		t.CornerRadii = d.CornerRadii
	}
	if len(t.StrokeWidths) == 0 {
		t.StrokeWidths = d.StrokeWidths
	}
	if len(t.Industries) == 0 {
		t.Industries = d.Industries
	}
	t.Colors = t.Colors.withDefaults(d.Colors)
	return t
}
