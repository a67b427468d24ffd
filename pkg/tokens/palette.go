package tokens

import (
	"fmt"
	"strconv"

	"github.com/lucasb-eyer/go-colorful"
)

// Palette is the set of brand colors stages may draw from.
type Palette struct {
	Primary         string `toml:"primary" json:"primary"`
	Secondary       string `toml:"secondary" json:"secondary"`
	Accent          string `toml:"accent" json:"accent"`
	TextLight       string `toml:"text_light" json:"text_light"`
	TextMuted       string `toml:"text_muted" json:"text_muted"`
	TextDark        string `toml:"text_dark" json:"text_dark"`
	BackgroundDark  string `toml:"background_dark" json:"background_dark"`
	BackgroundLight string `toml:"background_light" json:"background_light"`
}

// DefaultPalette is used when no brand colors are supplied. TextMuted is a
// 70% tint of Primary.
func DefaultPalette() Palette {
	return Palette{
		Primary:         "#1E3A5F",
		Secondary:       "#0F2544",
		Accent:          "#D4AF37",
		TextLight:       "#FFFFFF",
		TextMuted:       "#8BA3BE",
		TextDark:        "#1A1A2E",
		BackgroundDark:  "#1A1A2E",
		BackgroundLight: "#FFFFFF",
	}
}

// BrandPalette builds a palette from brand overrides. Missing entries fall
// back to the defaults; a missing TextMuted is derived from the brand
// primary with [SubtextColor].
func BrandPalette(brand Palette) Palette {
	derived := brand.TextMuted == ""
	p := brand.withDefaults(DefaultPalette())
	if derived && brand.Primary != "" {
		p.TextMuted = SubtextColor(p.Primary)
	}
	return p
}

func (p Palette) withDefaults(d Palette) Palette {
	pick := func(v, def string) string {
		if v == "" {
			return def
		}
		return v
	}
	return Palette{
		Primary:         pick(p.Primary, d.Primary),
		Secondary:       pick(p.Secondary, d.Secondary),
		Accent:          pick(p.Accent, d.Accent),
		TextLight:       pick(p.TextLight, d.TextLight),
		TextMuted:       pick(p.TextMuted, d.TextMuted),
		TextDark:        pick(p.TextDark, d.TextDark),
		BackgroundDark:  pick(p.BackgroundDark, d.BackgroundDark),
		BackgroundLight: pick(p.BackgroundLight, d.BackgroundLight),
	}
}

// Entry is a named palette color.
type Entry struct {
	Name string
	Hex  string
}

// Entries lists the palette in a stable order.
func (p Palette) Entries() []Entry {
	return []Entry{
		{"primary", p.Primary},
		{"secondary", p.Secondary},
		{"accent", p.Accent},
		{"text_light", p.TextLight},
		{"text_muted", p.TextMuted},
		{"text_dark", p.TextDark},
		{"background_dark", p.BackgroundDark},
		{"background_light", p.BackgroundLight},
	}
}

// ImageColors are colors extracted from a photo by image analysis.
type ImageColors struct {
	AccentCandidates []string `json:"accent_candidates,omitempty"`
	Vibrant          string   `json:"vibrant,omitempty"`
	Muted            string   `json:"muted,omitempty"`
	Dominant         string   `json:"dominant,omitempty"`
}

// MergeWithImageColors appends photo-derived accent options to the palette
// entries. Empty values are dropped.
func (p Palette) MergeWithImageColors(img ImageColors) []Entry {
	out := p.Entries()
	add := func(name, hex string) {
		if hex != "" {
			out = append(out, Entry{name, hex})
		}
	}
	for i, c := range img.AccentCandidates {
		if i >= 2 {
			break
		}
		add("image_accent_"+strconv.Itoa(i+1), c)
	}
	add("image_vibrant", img.Vibrant)
	add("image_muted", img.Muted)
	return out
}

// SubtextColor derives a harmonious muted color from a background: a 70%
// mix toward white on dark backgrounds, or 70% of each channel on light ones.
// Luminance uses the perceptual 0.299/0.587/0.114 weights; unparseable input
// is treated as black.
func SubtextColor(background string) string {
	r, g, b := rgb255(background)
	lum := (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 255
	mix := func(c int) int {
		if lum < 0.5 {
			return clamp255(int(float64(c) + 0.7*float64(255-c)))
		}
		return clamp255(int(float64(c) * 0.7))
	}
	return fmt.Sprintf("#%02X%02X%02X", mix(r), mix(g), mix(b))
}

// OverlayColor renders background as an rgba() string with the given opacity.
func OverlayColor(background string, opacity float64) string {
	r, g, b := rgb255(background)
	return fmt.Sprintf("rgba(%d,%d,%d,%s)", r, g, b, strconv.FormatFloat(opacity, 'f', -1, 64))
}

func rgb255(hex string) (int, int, int) {
	c, err := colorful.Hex(normalizeHex(hex))
	if err != nil {
		return 0, 0, 0
	}
	r, g, b := c.RGB255()
	return int(r), int(g), int(b)
}

// normalizeHex adds a missing leading '#'.
func normalizeHex(s string) string {
	if s != "" && s[0] != '#' {
		return "#" + s
	}
	return s
}

func clamp255(v int) int { return max(0, min(255, v)) }
