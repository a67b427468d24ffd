package tokens

import (
	"math"

	"github.com/matzehuels/layoutfix/pkg/layer"
)

// Closest returns the scale entry nearest to value by absolute difference.
// Ties resolve to the earliest entry. An empty scale returns value truncated.
func Closest(value int, scale []int) int {
	if len(scale) == 0 {
		return value
	}
	closest := scale[0]
	minDiff := abs(scale[0] - value)
	for _, s := range scale {
		if d := abs(s - value); d < minDiff {
			minDiff = d
			closest = s
		}
	}
	return closest
}

// SnapFontSize returns the nearest font scale value. Fractional sizes are
// truncated before matching.
func (t Tokens) SnapFontSize(size float64) int {
	return Closest(int(size), t.FontSizes())
}

// SnapSpacing returns the nearest spacing scale value.
func (t Tokens) SnapSpacing(v float64) int {
	return Closest(int(v), t.Spacing)
}

// SnapCornerRadius returns the nearest allowed corner radius.
func (t Tokens) SnapCornerRadius(r float64) int {
	return Closest(int(r), t.CornerRadii)
}

// SnapStrokeWidth returns the nearest allowed stroke width.
func (t Tokens) SnapStrokeWidth(w float64) int {
	return Closest(int(w), t.StrokeWidths)
}

// SnapLayer snaps the font size, corner radius, stroke width and padding of l
// to their token scales. Unset properties are left alone.
func (t Tokens) SnapLayer(l layer.Layer) layer.Layer {
	out := layer.Clone(l)
	p := &out.Properties
	if p.FontSize > 0 {
		p.FontSize = float64(t.SnapFontSize(p.FontSize))
	}
	if p.CornerRadius != 0 {
		p.CornerRadius = float64(t.SnapCornerRadius(p.CornerRadius))
	}
	if p.StrokeWidth != 0 {
		p.StrokeWidth = float64(t.SnapStrokeWidth(p.StrokeWidth))
	}
	if p.Padding != 0 {
		p.Padding = float64(t.SnapSpacing(p.Padding))
	}
	return out
}

// SnapLayers applies SnapLayer to every layer.
func (t Tokens) SnapLayers(ls []layer.Layer) []layer.Layer {
	out := make([]layer.Layer, len(ls))
	for i, l := range ls {
		out[i] = t.SnapLayer(l)
	}
	return out
}

// =============================================================================
// Vertical rhythm
// =============================================================================

// LineHeight returns the line-height multiplier for fontSize in context,
// with the resulting pixel line height rounded up to the baseline grid.
// Unknown contexts use 1.5.
func (t Tokens) LineHeight(fontSize int, ctx Context) float64 {
	if fontSize <= 0 {
		return 0
	}
	mult, ok := t.LineHeights[ctx]
	if !ok {
		mult = 1.5
	}
	unit := float64(t.BaselineUnit)
	snapped := math.Ceil(float64(fontSize)*mult/unit) * unit
	return round(snapped/float64(fontSize), 3)
}

// StepName returns the name of the scale step closest to fontSize.
func (t Tokens) StepName(fontSize int) string {
	best, minDiff := "", math.MaxInt
	for _, s := range t.FontScale {
		if d := abs(s.Size - fontSize); d < minDiff {
			minDiff = d
			best = s.Name
		}
	}
	return best
}

// TrackingFor returns the letter-spacing in em for fontSize.
func (t Tokens) TrackingFor(fontSize int) float64 {
	return t.Tracking[t.StepName(fontSize)]
}

// ContextFor picks the line-height context for a layer. CTAs are tight,
// subtext uses the tight body context, headlines the normal headline context.
func ContextFor(l layer.Layer) Context {
	switch {
	case l.Kind == layer.KindTextbox || l.NameHas("cta", "button"):
		return HeadlineTight
	case l.NameHas("subtext", "subtitle", "sub_"):
		return BodyTight
	case l.NameHas("headline", "title"):
		return HeadlineNormal
	}
	return BodyNormal
}

// ApplyVerticalRhythm sets a baseline-aligned line height and a size-based
// letter-spacing on text layers that do not define them. A line height of
// exactly 1.2 counts as the renderer default and is replaced too.
func (t Tokens) ApplyVerticalRhythm(l layer.Layer) layer.Layer {
	if !l.IsText() {
		return l
	}
	out := layer.Clone(l)
	p := &out.Properties
	fs := int(p.FontSize)
	if p.LineHeight == 0 || p.LineHeight == 1.2 {
		p.LineHeight = t.LineHeight(fs, ContextFor(out))
	}
	if p.LetterSpacing == 0 {
		p.LetterSpacing = round(t.TrackingFor(fs)*float64(fs), 1)
	}
	return out
}

// ApplyVerticalRhythmAll applies ApplyVerticalRhythm to every layer.
func (t Tokens) ApplyVerticalRhythmAll(ls []layer.Layer) []layer.Layer {
	out := make([]layer.Layer, len(ls))
	for i, l := range ls {
		out[i] = t.ApplyVerticalRhythm(l)
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
