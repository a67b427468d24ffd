// Package imageanalysis models the photo analysis supplied by the external
// image-analysis provider and adapts layouts to it.
//
// The provider reports a focal point, per-quadrant brightness, dominant
// colors, and zones where text is safe or should be avoided. Zones are
// expressed on a 1080×1080 analysis canvas. When the provider cannot be
// reached, [Default] stands in: a centered focal point, neutral brightness,
// one bottom safe zone and one centered busy zone.
package imageanalysis

import (
	"strings"

	"github.com/matzehuels/layoutfix/pkg/archetype"
	"github.com/matzehuels/layoutfix/pkg/layer"
	"github.com/matzehuels/layoutfix/pkg/tokens"
)

// AnalysisSize is the edge length of the canvas zones are reported on.
const AnalysisSize = 1080

// Point is a 2D coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// FocalPoint is the visual center of interest in the photo.
type FocalPoint struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Normalized Point   `json:"normalized"`
}

// Brightness holds average luma per quadrant in [0, 1].
type Brightness struct {
	TopLeft     float64 `json:"top-left"`
	TopRight    float64 `json:"top-right"`
	BottomLeft  float64 `json:"bottom-left"`
	BottomRight float64 `json:"bottom-right"`
	Overall     float64 `json:"overall"`
	IsDark      bool    `json:"is_dark"`
}

// Zone is a region of the photo, either safe for text or busy.
type Zone struct {
	Position             string   `json:"position"`
	X                    float64  `json:"x"`
	Y                    float64  `json:"y"`
	Width                float64  `json:"width"`
	Height               float64  `json:"height"`
	RecommendedTextColor string   `json:"recommended_text_color,omitempty"`
	Brightness           *float64 `json:"brightness,omitempty"`
	Reason               string   `json:"reason,omitempty"`
}

// Rect returns the zone bounds.
func (z Zone) Rect() layer.Rect {
	return layer.Rect{X: z.X, Y: z.Y, Width: z.Width, Height: z.Height}
}

// Luma returns the zone brightness, treating an unknown value as fully
// bright.
func (z Zone) Luma() float64 {
	if z.Brightness == nil {
		return 1
	}
	return *z.Brightness
}

// Colors is the palette extracted from the photo.
type Colors struct {
	Vibrant          string         `json:"vibrant,omitempty"`
	Muted            string         `json:"muted,omitempty"`
	DarkVibrant      string         `json:"dark_vibrant,omitempty"`
	DarkMuted        string         `json:"dark_muted,omitempty"`
	LightVibrant     string         `json:"light_vibrant,omitempty"`
	LightMuted       string         `json:"light_muted,omitempty"`
	AccentCandidates []string       `json:"accent_candidates,omitempty"`
	Populations      map[string]int `json:"populations,omitempty"`
}

// byName returns the swatch reported under a population key.
func (c Colors) byName(name string) string {
	switch name {
	case "vibrant":
		return c.Vibrant
	case "muted":
		return c.Muted
	case "dark_vibrant":
		return c.DarkVibrant
	case "dark_muted":
		return c.DarkMuted
	}
	return ""
}

// Dominant returns the swatch with the largest population, or Vibrant when
// no populations were reported.
func (c Colors) Dominant() string {
	dominant, best := c.Vibrant, 0
	for _, name := range []string{"vibrant", "muted", "dark_vibrant", "dark_muted"} {
		if n := c.Populations[name]; n > best && c.byName(name) != "" {
			dominant, best = c.byName(name), n
		}
	}
	return dominant
}

// Analysis is the provider's result for one image.
type Analysis struct {
	Success               bool       `json:"success"`
	FocalPoint            FocalPoint `json:"focal_point"`
	Brightness            Brightness `json:"brightness"`
	Colors                *Colors    `json:"colors,omitempty"`
	SuggestedTextPosition string     `json:"suggested_text_position,omitempty"`
	SafeZones             []Zone     `json:"safe_zones"`
	BusyZones             []Zone     `json:"busy_zones"`
}

// Default is the analysis used when the provider is unavailable.
func Default() Analysis {
	return Analysis{
		Success: false,
		FocalPoint: FocalPoint{
			X: 540, Y: 540,
			Normalized: Point{X: 0.5, Y: 0.5},
		},
		Brightness: Brightness{
			TopLeft: 0.5, TopRight: 0.5, BottomLeft: 0.5, BottomRight: 0.5,
			Overall: 0.5,
		},
		SuggestedTextPosition: "bottom",
		SafeZones: []Zone{{
			Position: "bottom", X: 40, Y: 780, Width: 1000, Height: 260,
			RecommendedTextColor: "#FFFFFF",
		}},
		BusyZones: []Zone{{
			Position: "center", X: 270, Y: 270, Width: 540, Height: 540,
			Reason: "Default busy zone (center)",
		}},
	}
}

// Focal returns the normalized focal point for archetype selection.
func (a Analysis) Focal() archetype.Focal {
	return archetype.Focal{X: a.FocalPoint.Normalized.X, Y: a.FocalPoint.Normalized.Y}
}

// ImageColors converts the extracted palette for token merging.
func (a Analysis) ImageColors() tokens.ImageColors {
	if a.Colors == nil {
		return tokens.ImageColors{}
	}
	return tokens.ImageColors{
		AccentCandidates: a.Colors.AccentCandidates,
		Vibrant:          a.Colors.Vibrant,
		Muted:            a.Colors.Muted,
		Dominant:         a.Colors.Dominant(),
	}
}

// RecommendedTextColor returns the text color of the first safe zone whose
// position contains position, falling back to white on dark photos and
// black otherwise.
func RecommendedTextColor(a Analysis, position string) string {
	for _, z := range a.SafeZones {
		if strings.Contains(z.Position, position) {
			if z.RecommendedTextColor == "" {
				return "#FFFFFF"
			}
			return z.RecommendedTextColor
		}
	}
	if a.Brightness.IsDark {
		return "#FFFFFF"
	}
	return "#000000"
}

// FindPhoto returns the first image layer or layer named like a photo.
func FindPhoto(ls []layer.Layer) (layer.Layer, bool) {
	for _, l := range ls {
		if l.Kind == layer.KindImage || l.NameHas("photo") {
			return l, true
		}
	}
	return layer.Layer{}, false
}

// ScaleToPhoto maps zones from the analysis canvas onto the photo layer's
// bounds. Heights are clipped at the photo bottom; coordinates truncate to
// whole pixels.
func ScaleToPhoto(zones []Zone, photo layer.Rect) []Zone {
	out := make([]Zone, 0, len(zones))
	for _, z := range zones {
		x := photo.X + z.X/AnalysisSize*photo.Width
		y := photo.Y + z.Y/AnalysisSize*photo.Height
		w := z.Width / AnalysisSize * photo.Width
		h := z.Height / AnalysisSize * photo.Height
		h = min(h, photo.Height-(y-photo.Y))

		pos := z.Position
		if pos == "" {
			pos = "focal"
		}
		reason := z.Reason
		if reason == "" {
			reason = "Scaled from image analysis"
		}
		out = append(out, Zone{
			Position: pos,
			X:        float64(int(x)),
			Y:        float64(int(y)),
			Width:    float64(int(w)),
			Height:   float64(int(h)),
			Reason:   reason,
		})
	}
	return out
}

// OverlapsAny reports whether r overlaps any zone.
func OverlapsAny(r layer.Rect, zones []Zone) bool {
	for _, z := range zones {
		if r.Overlaps(z.Rect()) {
			return true
		}
	}
	return false
}

// BusyRatio returns the summed busy-zone area divided by the photo area.
func BusyRatio(zones []Zone, photo layer.Rect) float64 {
	area := photo.Area()
	if area <= 0 {
		return 0
	}
	var busy float64
	for _, z := range zones {
		busy += z.Width * z.Height
	}
	return busy / area
}
