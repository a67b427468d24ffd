// Package color implements palette harmony analysis and WCAG contrast checks.
//
// Colors are exchanged as hex strings ("#RRGGBB" or "#RGB"). Parsing also
// accepts rgb()/rgba() functions and the keywords white, black and
// transparent; anything else is treated as black so callers never have to
// handle a parse error mid-pipeline.
package color

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// HSL is a color in hue (degrees, [0, 360)), saturation and lightness
// ([0, 1]).
type HSL struct {
	H float64 `json:"h"`
	S float64 `json:"s"`
	L float64 `json:"l"`
}

// achromaticEpsilon is the channel spread below which a color has no hue.
const achromaticEpsilon = 1e-4

var rgbFunc = regexp.MustCompile(`^rgba?\(\s*([0-9.]+)\s*,\s*([0-9.]+)\s*,\s*([0-9.]+)\s*(?:,\s*[0-9.]+\s*)?\)$`)

// Parse converts a color string to a colorful.Color. The second result is
// false when the input could not be understood.
func Parse(s string) (colorful.Color, bool) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "white":
		return colorful.Color{R: 1, G: 1, B: 1}, true
	case "black", "transparent", "none", "":
		return colorful.Color{}, s != ""
	}
	if m := rgbFunc.FindStringSubmatch(strings.ToLower(s)); m != nil {
		ch := func(v string) float64 {
			f, _ := strconv.ParseFloat(v, 64)
			return math.Max(0, math.Min(255, f)) / 255
		}
		return colorful.Color{R: ch(m[1]), G: ch(m[2]), B: ch(m[3])}, true
	}
	if s[0] != '#' {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return colorful.Color{}, false
	}
	return c, true
}

// RGB255 returns the 8-bit channels of a color string.
func RGB255(s string) (r, g, b uint8) {
	c, _ := Parse(s)
	return c.Clamped().RGB255()
}

// Normalize returns s as uppercase "#RRGGBB". Unparseable input is returned
// uppercased and unchanged otherwise.
func Normalize(s string) string {
	c, ok := Parse(s)
	if !ok {
		return strings.ToUpper(strings.TrimSpace(s))
	}
	return toHex(c)
}

// HexToHSL converts a hex color to HSL. Hue is rounded to one decimal,
// saturation and lightness to three.
func HexToHSL(hex string) HSL {
	c, _ := Parse(hex)
	r, g, b := c.R, c.G, c.B
	hi := math.Max(r, math.Max(g, b))
	lo := math.Min(r, math.Min(g, b))
	delta := hi - lo
	l := (hi + lo) / 2

	var h, s float64
	if delta >= achromaticEpsilon {
		den := hi + lo
		if l > 0.5 {
			den = 2 - hi - lo
		}
		if den > achromaticEpsilon {
			s = delta / den
		}
		switch {
		case math.Abs(hi-r) < achromaticEpsilon:
			h = 60 * math.Mod((g-b)/delta, 6)
			if g < b {
				h += 360
			}
		case math.Abs(hi-g) < achromaticEpsilon:
			h = 60 * ((b-r)/delta + 2)
		default:
			h = 60 * ((r-g)/delta + 4)
		}
	}
	return HSL{H: round(h, 1), S: round(s, 3), L: round(l, 3)}
}

// HSLToHex converts HSL back to uppercase "#RRGGBB". Hue wraps modulo 360;
// saturation and lightness are clamped to [0, 1].
func HSLToHex(c HSL) string {
	h := math.Mod(c.H, 360)
	if h < 0 {
		h += 360
	}
	s := clamp01(c.S)
	l := clamp01(c.L)
	return toHex(colorful.Hsl(h, s, l))
}

// Hex returns the uppercase hex form of a color.
func (c HSL) Hex() string { return HSLToHex(c) }

func toHex(c colorful.Color) string {
	r, g, b := c.Clamped().RGB255()
	return fmt.Sprintf("#%02X%02X%02X", r, g, b)
}

func clamp01(v float64) float64 { return math.Max(0, math.Min(1, v)) }

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
