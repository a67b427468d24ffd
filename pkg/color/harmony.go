package color

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// Harmony names a hue relationship between palette colors.
type Harmony string

const (
	Complementary      Harmony = "complementary"
	Analogous          Harmony = "analogous"
	Triadic            Harmony = "triadic"
	SplitComplementary Harmony = "split_complementary"
	Square             Harmony = "square"

	// Outcomes of detection that are not hue patterns.
	Single        Harmony = "single"
	Monochromatic Harmony = "monochromatic"
	Unknown       Harmony = "unknown"
	None          Harmony = "none"
)

// HarmonyTolerance is the hue deviation in degrees still counted as a match.
const HarmonyTolerance = 15.0

// Vibrancy thresholds. A color is vibrant when its saturation reaches
// VibrantSaturation and its lightness lies strictly inside (0.2, 0.8).
const (
	VibrantSaturation = 0.3
	MinVibrancyRatio  = 0.2
	MaxVibrancyRatio  = 0.5
	HighSaturation    = 0.6
	MinLightnessRange = 0.3
	MinPaletteScore   = 70
)

type harmonyAngle struct {
	kind  Harmony
	angle float64
}

// harmonies is checked in order; earlier entries win ties.
var harmonies = []harmonyAngle{
	{Complementary, 180},
	{Analogous, 30},
	{Triadic, 120},
	{SplitComplementary, 150},
	{Square, 90},
}

// Harmonies returns the recognized hue patterns in detection order.
func Harmonies() []Harmony {
	out := make([]Harmony, len(harmonies))
	for i, h := range harmonies {
		out[i] = h.kind
	}
	return out
}

// Angle returns the hue offset for a pattern. Unknown patterns use 180.
func (h Harmony) Angle() float64 {
	for _, ha := range harmonies {
		if ha.kind == h {
			return ha.angle
		}
	}
	return 180
}

// PaletteResult is the outcome of [ValidatePalette].
type PaletteResult struct {
	Valid         bool     `json:"valid"`
	Score         int      `json:"score"`
	HarmonyType   Harmony  `json:"harmony_type"`
	Confidence    float64  `json:"harmony_confidence"`
	VibrancyRatio float64  `json:"vibrancy_ratio"`
	Issues        []string `json:"issues"`
	Suggestions   []string `json:"suggestions"`
}

// ValidatePalette scores a palette out of 100 on harmony, vibrancy balance,
// saturation and lightness variety. Palettes of fewer than two colors are
// always valid.
func ValidatePalette(colors []string) PaletteResult {
	if len(colors) < 2 {
		return PaletteResult{Valid: true, Score: 100, HarmonyType: Single, Confidence: 1, Issues: []string{}, Suggestions: []string{}}
	}

	hsls := make([]HSL, len(colors))
	for i, c := range colors {
		hsls[i] = HexToHSL(c)
	}

	score := 100
	issues := []string{}
	kind, confidence := DetectHarmony(hsls)

	ratio, msg := vibrancy(hsls)
	if msg != "" {
		issues = append(issues, "color:vibrancy - "+msg)
		score -= 15
	}

	if kind == Unknown && len(colors) > 2 {
		issues = append(issues, "color:harmony - Colors don't follow any recognized harmony pattern")
		score -= 20
	}

	saturated := 0
	for _, c := range hsls {
		if c.S > HighSaturation {
			saturated++
		}
	}
	if saturated > 2 {
		issues = append(issues, fmt.Sprintf("color:saturation - Too many highly saturated colors (%d). Limit to 1-2 for balance", saturated))
		score -= 10
	}

	lo, hi := hsls[0].L, hsls[0].L
	for _, c := range hsls[1:] {
		lo, hi = math.Min(lo, c.L), math.Max(hi, c.L)
	}
	if hi-lo < MinLightnessRange && len(colors) > 2 {
		issues = append(issues, "color:contrast - Insufficient lightness variety. Add light/dark contrast")
		score -= 10
	}

	return PaletteResult{
		Valid:         score >= MinPaletteScore,
		Score:         max(0, score),
		HarmonyType:   kind,
		Confidence:    confidence,
		VibrancyRatio: ratio,
		Issues:        issues,
		Suggestions:   Suggestions(issues, colors),
	}
}

// DetectHarmony finds the hue pattern that best fits a palette. Colors with
// saturation below 0.1 carry no usable hue and are ignored. A pattern must
// score above zero to be reported; otherwise the result is [Unknown].
func DetectHarmony(colors []HSL) (Harmony, float64) {
	if len(colors) < 2 {
		return Single, 1
	}
	var hues []float64
	for _, c := range colors {
		if c.S >= 0.1 {
			hues = append(hues, c.H)
		}
	}
	if len(hues) < 2 {
		return Monochromatic, 1
	}

	best, bestScore := Unknown, 0.0
	for _, ha := range harmonies {
		if s := harmonyMatch(hues, ha); s > bestScore {
			best, bestScore = ha.kind, s
		}
	}
	return best, bestScore
}

// harmonyMatch averages per-pair closeness to the pattern angle.
func harmonyMatch(hues []float64, ha harmonyAngle) float64 {
	var total float64
	pairs := 0
	for i := range hues {
		for j := i + 1; j < len(hues); j++ {
			pairs++
			total += pairScore(hueDistance(hues[i], hues[j]), ha)
		}
	}
	if pairs == 0 {
		return 0
	}
	return total / float64(pairs)
}

func pairScore(diff float64, ha harmonyAngle) float64 {
	if ha.kind == Analogous {
		if diff <= ha.angle {
			return 1 - diff/ha.angle
		}
		return 0
	}
	if dev := math.Abs(diff - ha.angle); dev <= HarmonyTolerance {
		return 1 - dev/HarmonyTolerance
	}
	return 0
}

// hueDistance is the shorter way around the color wheel, in [0, 180].
func hueDistance(a, b float64) float64 {
	d := math.Abs(a - b)
	if d > 180 {
		d = 360 - d
	}
	return d
}

func vibrancy(colors []HSL) (float64, string) {
	n := 0
	for _, c := range colors {
		if c.S >= VibrantSaturation && c.L > 0.2 && c.L < 0.8 {
			n++
		}
	}
	var ratio float64
	if len(colors) > 0 {
		ratio = float64(n) / float64(len(colors))
	}
	switch {
	case ratio < MinVibrancyRatio:
		return round(ratio, 2), "Palette lacks vibrant colors. Add a saturated accent"
	case ratio > MaxVibrancyRatio:
		return round(ratio, 2), "Too many vibrant colors. Add neutral tones for balance"
	}
	return round(ratio, 2), ""
}

// SuggestAccent rotates primary by the pattern angle, keeps saturation at
// 0.5 or above, and shifts lightness 0.2 away from the original.
func SuggestAccent(primary string, kind Harmony) string {
	c := HexToHSL(primary)
	l := math.Min(0.7, c.L+0.2)
	if c.L > 0.5 {
		l = math.Max(0.3, c.L-0.2)
	}
	return HSLToHex(HSL{
		H: math.Mod(c.H+kind.Angle(), 360),
		S: math.Max(c.S, 0.5),
		L: l,
	})
}

// GeneratePalette derives count colors from base. The first entry is base
// itself; the rest are spread evenly across the pattern angle with
// alternating saturation and lightness offsets.
func GeneratePalette(base string, kind Harmony, count int) []string {
	out := []string{base}
	if count < 2 {
		return out
	}
	c := HexToHSL(base)
	angle := kind.Angle()
	for i := 1; i < count; i++ {
		ds, dl := -0.1, 0.15
		if i%2 == 1 {
			ds, dl = 0.1, -0.15
		}
		out = append(out, HSLToHex(HSL{
			H: math.Mod(c.H+angle*float64(i)/float64(count-1), 360),
			S: math.Max(0.1, math.Min(1, c.S+ds)),
			L: math.Max(0.15, math.Min(0.85, c.L+dl)),
		}))
	}
	return out
}

// PairResult is the outcome of [AreHarmonious].
type PairResult struct {
	Harmonious bool    `json:"harmonious"`
	Type       Harmony `json:"type"`
	Confidence float64 `json:"confidence"`
}

// AreHarmonious reports the first pattern, in detection order, that two
// colors satisfy.
func AreHarmonious(a, b string) PairResult {
	diff := hueDistance(HexToHSL(a).H, HexToHSL(b).H)
	for _, ha := range harmonies {
		if ha.kind == Analogous {
			if diff <= ha.angle {
				return PairResult{true, Analogous, 1 - diff/ha.angle}
			}
			continue
		}
		if dev := math.Abs(diff - ha.angle); dev <= HarmonyTolerance {
			return PairResult{true, ha.kind, 1 - dev/HarmonyTolerance}
		}
	}
	return PairResult{Type: None}
}

// MakeVibrant raises saturation by 0.3 and sets lightness to 0.5.
func MakeVibrant(hex string) string {
	c := HexToHSL(hex)
	c.S = math.Min(1, c.S+0.3)
	c.L = 0.5
	return HSLToHex(c)
}

// Suggestions maps palette issues to remedies. Duplicates are dropped.
func Suggestions(issues, colors []string) []string {
	out := []string{}
	add := func(s string) {
		if !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	for _, issue := range issues {
		if strings.Contains(issue, "harmony") && len(colors) > 0 {
			add(fmt.Sprintf("Consider using %s as an accent color for harmony", SuggestAccent(colors[0], Complementary)))
		}
		if strings.Contains(issue, "vibrancy") && len(colors) > 0 {
			add(fmt.Sprintf("Add a vibrant accent like %s", MakeVibrant(colors[0])))
		}
		if strings.Contains(issue, "saturation") {
			add("Replace some saturated colors with neutrals (#F5F5F5, #333333)")
		}
		if strings.Contains(issue, "lightness") {
			add("Add contrast with a very light (#F8F8F8) or very dark (#1A1A1A) color")
		}
	}
	return out
}
