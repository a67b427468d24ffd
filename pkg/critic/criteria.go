package critic

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/matzehuels/layoutfix/pkg/color"
	"github.com/matzehuels/layoutfix/pkg/elevation"
	"github.com/matzehuels/layoutfix/pkg/imageanalysis"
	"github.com/matzehuels/layoutfix/pkg/layer"
	"github.com/matzehuels/layoutfix/pkg/typography"
)

// Modular scale ratios accepted between adjacent distinct font sizes.
const (
	MinScaleRatio = 1.15
	MaxScaleRatio = 1.45
)

// Visual weight bands, inclusive, as percentages of summed font size.
const (
	HeadlineWeightMin, HeadlineWeightMax = 55.0, 85.0
	SubtextWeightMin, SubtextWeightMax   = 10.0, 35.0
	CTAWeightMin, CTAWeightMax           = 5.0, 20.0
)

// defaultWidth stands in for a text layer without a width.
const defaultWidth = 200

func fontSize(l layer.Layer) float64 {
	if l.Properties.FontSize > 0 {
		return l.Properties.FontSize
	}
	return layer.DefaultFontSize
}

func widthOf(l layer.Layer) float64 {
	if l.Width > 0 {
		return l.Width
	}
	return defaultWidth
}

func fontSizes(text []layer.Layer) []float64 {
	out := make([]float64, len(text))
	for i, l := range text {
		out[i] = fontSize(l)
	}
	return out
}

func distinct(vs []float64) []float64 {
	s := slices.Clone(vs)
	slices.Sort(s)
	return slices.Compact(s)
}

func (c *Critic) evaluateTypography(ls []layer.Layer) evaluation {
	text := layer.TextLayers(ls)
	if len(text) == 0 {
		return evaluation{score: 50, issues: []string{"No text layers found"}}
	}
	score := 100.0
	var issues []string

	sizes := fontSizes(text)
	uniq := distinct(sizes)
	for i := 1; i < len(uniq); i++ {
		ratio := uniq[i] / uniq[i-1]
		if ratio < MinScaleRatio || ratio > MaxScaleRatio {
			issues = append(issues, fmt.Sprintf(
				"typography:scale - Font sizes %gpx and %gpx don't follow modular scale (ratio: %g)",
				uniq[i-1], uniq[i], math.Round(ratio*100)/100))
			score -= 15
		}
	}

	if top := slices.Max(sizes); top < c.cfg.PremiumHeadlineSize {
		issues = append(issues, fmt.Sprintf(
			"typography:headline - Headline too small (%gpx). Premium requires %gpx+ for impact",
			top, c.cfg.PremiumHeadlineSize))
		score -= 20
	}

	if len(uniq) < 2 && len(text) > 1 {
		issues = append(issues, "typography:variety - All text layers have same size. Use hierarchy for visual interest")
		score -= 10
	}
	return evaluation{score: max(0, score), issues: issues}
}

// alignsWithGrid reports whether a text layer starts on a vertical third,
// is centered, or hugs the left or right edge (within 100px).
func alignsWithGrid(l layer.Layer, width float64) bool {
	third := width / 3
	w := widthOf(l)
	return math.Abs(l.X-third) < 50 ||
		math.Abs(l.X-2*third) < 50 ||
		math.Abs(l.X+w/2-width/2) < 50 ||
		l.X < 100 ||
		l.X+w > width-100
}

// Coverage returns the share of the canvas covered by rectangles and
// images, ignoring backgrounds and overlays.
func Coverage(ls []layer.Layer, width, height float64) float64 {
	if width <= 0 || height <= 0 {
		return 0
	}
	var area float64
	for _, l := range ls {
		if l.Kind != layer.KindRectangle && l.Kind != layer.KindImage {
			continue
		}
		if l.NameHas("background", "overlay") {
			continue
		}
		area += l.Width * l.Height
	}
	return area / (width * height)
}

func (c *Critic) evaluateComposition(ls []layer.Layer, width, height float64) evaluation {
	score := 100.0
	var issues []string
	for _, l := range layer.TextLayers(ls) {
		if alignsWithGrid(l, width) || l.X <= 120 || l.X >= width-320 {
			continue
		}
		issues = append(issues, fmt.Sprintf(
			"composition:alignment - Text '%s' not aligned with composition grid (x=%g)", l.Name, l.X))
		score -= 10
	}

	if cov := Coverage(ls, width, height); cov > c.cfg.MaxCoverage {
		issues = append(issues, fmt.Sprintf(
			"composition:crowded - Design too crowded (%g%% coverage). Premium needs breathing room",
			math.Round(cov*100)))
		score -= 25
	}
	return evaluation{score: max(0, score), issues: issues}
}

// paletteColors collects text fills and rectangle/textbox fills, keeping
// only chromatic mid-lightness colors in first-seen order.
func paletteColors(ls []layer.Layer) []string {
	var raw []string
	for _, l := range ls {
		if l.IsText() {
			raw = append(raw, textFill(l))
		}
	}
	for _, l := range ls {
		if l.Kind != layer.KindRectangle && l.Kind != layer.KindTextbox {
			continue
		}
		if f := l.Properties.Fill; f != "" && f != "transparent" {
			raw = append(raw, f)
		}
	}
	seen := make(map[string]bool)
	var out []string
	for _, c := range raw {
		if seen[c] {
			continue
		}
		seen[c] = true
		hsl := color.HexToHSL(c)
		if hsl.S > 0.1 && hsl.L > 0.1 && hsl.L < 0.9 {
			out = append(out, c)
		}
	}
	return out
}

func textFill(l layer.Layer) string {
	if l.Properties.Fill != "" {
		return l.Properties.Fill
	}
	return layer.DefaultFill
}

func (c *Critic) evaluateColor(ls []layer.Layer) evaluation {
	score := 100.0
	var issues []string

	supported := slices.ContainsFunc(ls, func(l layer.Layer) bool { return l.NameHas("overlay", "background") })
	for _, l := range layer.TextLayers(ls) {
		if strings.EqualFold(textFill(l), color.White) && !supported {
			issues = append(issues, "color:contrast - White text without dark background/overlay detected")
			score -= 20
		}
	}

	if pal := paletteColors(ls); len(pal) >= 2 {
		h := color.ValidatePalette(pal)
		if !h.Valid {
			issues = append(issues, h.Issues...)
			score -= float64(100-h.Score) * 0.3
		}
	}

	if !slices.ContainsFunc(ls, func(l layer.Layer) bool { return l.NameHas("accent", "cta") }) {
		issues = append(issues, "color:accent - No accent color element found. Add visual pop with accent")
		score -= 10
	}
	return evaluation{score: max(0, score), issues: issues}
}

func (c *Critic) evaluateDepth(ls []layer.Layer) evaluation {
	score := 100.0
	var issues []string
	var shadow, cta, ctaShadow bool
	for _, l := range ls {
		on := l.Properties.ShadowEnabled
		shadow = shadow || on
		if elevation.IsCTA(l) {
			cta = true
			ctaShadow = ctaShadow || on
		}
	}
	if cta && !ctaShadow {
		issues = append(issues, "depth:cta - CTA button lacks elevation. Add shadow for floating effect")
		score -= 15
	}
	if !shadow {
		issues = append(issues, "depth:flat - No shadows used. Premium designs use subtle elevation")
		score -= 10
	}
	return evaluation{score: max(0, score), issues: issues}
}

// FullBleedRatio is the share of each canvas dimension an image must cover
// to count as full-bleed.
const FullBleedRatio = 0.9

func (c *Critic) evaluateIntegration(ls []layer.Layer, an imageanalysis.Analysis, width, height float64) evaluation {
	score := 100.0
	var issues []string

	var fullBleed, overlay bool
	for _, l := range ls {
		if l.Kind == layer.KindImage && l.Width >= width*FullBleedRatio && l.Height >= height*FullBleedRatio {
			fullBleed = true
		}
		if l.NameHas("overlay") {
			overlay = true
		}
	}
	text := layer.TextLayers(ls)
	if fullBleed && len(text) > 0 && !overlay {
		issues = append(issues, "integration:overlay - Full-bleed image with text needs overlay for readability")
		score -= 20
	}

	if len(an.BusyZones) == 0 {
		if len(issues) == 0 {
			return evaluation{score: 80, issues: []string{
				"integration:analysis - No image analysis available for focal point check",
			}}
		}
		return evaluation{score: max(0, score), issues: issues}
	}

	for _, l := range text {
		for _, z := range an.BusyZones {
			if l.Rect().Intersects(z.Rect()) {
				issues = append(issues, fmt.Sprintf(
					"integration:overlap - Text '%s' overlaps with focal point at (%g, %g)", l.Name, z.X, z.Y))
				score -= 30
			}
		}
	}
	return evaluation{score: max(0, score), issues: issues}
}

func (c *Critic) evaluateAesthetic(ls []layer.Layer, width float64) evaluation {
	score := 100.0
	var issues []string

	if ok, d := WeightBalanced(ls); !ok {
		issues = append(issues, fmt.Sprintf(
			"aesthetic:weight - Visual weight distribution off. Target: 70%% headline, 20%% subtext, 10%% CTA. Current: Headline %g%%, Subtext %g%%, CTA %g%%",
			d.Headline, d.Subtext, d.CTA))
		score -= 20
	}
	if !Asymmetric(ls, width) {
		issues = append(issues, "aesthetic:asymmetry - Layout too symmetric/static. Add visual tension with off-center elements")
		score -= 15
	}
	if !Dynamic(ls) {
		issues = append(issues, "aesthetic:dynamism - Layout lacks visual interest. Add accent elements or size variation")
		score -= 15
	}
	c.logger.Debug("aesthetic quality", "score", max(0, score), "issues", len(issues))
	return evaluation{score: max(0, score), issues: issues}
}

// WeightBalanced checks the 70-20-10 rule with inclusive bands. Layouts
// with fewer than two text layers, or no sized roles, always pass.
func WeightBalanced(ls []layer.Layer) (bool, typography.Distribution) {
	if layer.CountText(ls) < 2 {
		return true, typography.Distribution{Headline: 100}
	}
	w := typography.VisualWeight(ls)
	d := w.Distribution
	if d == (typography.Distribution{}) {
		return true, d
	}
	in := func(v, lo, hi float64) bool { return v >= lo && v <= hi }
	ok := in(d.Headline, HeadlineWeightMin, HeadlineWeightMax) &&
		in(d.Subtext, SubtextWeightMin, SubtextWeightMax) &&
		in(d.CTA, CTAWeightMin, CTAWeightMax)
	return ok, d
}

// Asymmetric reports whether the layout avoids the static look of centering
// everything: fewer than 80% of text layers sit within 50px of the vertical
// axis. Two or fewer text layers always pass.
func Asymmetric(ls []layer.Layer, width float64) bool {
	text := layer.TextLayers(ls)
	if len(text) <= 2 {
		return true
	}
	centered := 0
	for _, l := range text {
		if math.Abs(l.X+widthOf(l)/2-width/2) < 50 {
			centered++
		}
	}
	return float64(centered)/float64(len(text)) < 0.8
}

// Dynamic reports whether the layout has an accent or decorative line and
// at least a 2× spread of font sizes.
func Dynamic(ls []layer.Layer) bool {
	var accent bool
	for _, l := range ls {
		if l.NameHas("accent", "highlight") {
			accent = true
		}
		if l.Kind == layer.KindLine || (!l.IsText() && l.NameHas("line", "divider")) {
			accent = true
		}
	}
	sizes := fontSizes(layer.TextLayers(ls))
	if !accent || len(distinct(sizes)) < 2 {
		return false
	}
	return slices.Max(sizes)/slices.Min(sizes) >= 2
}
