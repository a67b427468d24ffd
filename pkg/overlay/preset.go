package overlay

import "slices"

// Preset names.
const (
	BottomFade    = "bottom_fade"
	TopFade       = "top_fade"
	SideFadeLeft  = "side_fade_left"
	SideFadeRight = "side_fade_right"
	Vignette      = "vignette"
)

// Preset describes a gradient scrim. Linear presets fade from StartOpacity
// at the text edge to EndOpacity; Angle follows the renderer convention (0
// bottom-to-top, 90 left-to-right, 180 top-to-bottom, 270 right-to-left).
// Coverage is the fraction of the canvas a side fade spans.
type Preset struct {
	Name         string  `toml:"name" json:"name"`
	Angle        float64 `toml:"angle" json:"angle"`
	Radial       bool    `toml:"radial" json:"radial,omitempty"`
	StartOpacity float64 `toml:"start_opacity" json:"start_opacity"`
	EndOpacity   float64 `toml:"end_opacity" json:"end_opacity"`
	Coverage     float64 `toml:"coverage" json:"coverage"`
}

// Vertical reports whether the gradient runs top-to-bottom or the reverse.
func (p Preset) Vertical() bool { return !p.Radial && (p.Angle == 0 || p.Angle == 180) }

// Presets is an immutable preset table keyed by name.
type Presets map[string]Preset

// DefaultPresets returns the built-in presets.
func DefaultPresets() Presets {
	return Presets{
		BottomFade:    {Name: BottomFade, Angle: 0, StartOpacity: 0.85, EndOpacity: 0, Coverage: 0.35},
		TopFade:       {Name: TopFade, Angle: 180, StartOpacity: 0.8, EndOpacity: 0, Coverage: 0.3},
		SideFadeLeft:  {Name: SideFadeLeft, Angle: 90, StartOpacity: 0.8, EndOpacity: 0, Coverage: 0.2},
		SideFadeRight: {Name: SideFadeRight, Angle: 270, StartOpacity: 0.8, EndOpacity: 0, Coverage: 0.2},
		Vignette:      {Name: Vignette, Radial: true, StartOpacity: 0, EndOpacity: 0.6},
	}
}

// Get returns the named preset, falling back to bottom fade.
func (ps Presets) Get(name string) Preset {
	if p, ok := ps[name]; ok {
		return p
	}
	if p, ok := ps[BottomFade]; ok {
		return p
	}
	return DefaultPresets()[BottomFade]
}

// Names lists preset names in sorted order.
func (ps Presets) Names() []string {
	out := make([]string, 0, len(ps))
	for k := range ps {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// Detect picks a preset from the average text position: text in the bottom
// 40% gets a bottom fade, the top 30% a top fade, then the left or right
// 35% a side fade. Centered text defaults to a bottom fade.
func Detect(avgX, avgY, width, height float64) string {
	switch {
	case avgY > height*0.6:
		return BottomFade
	case avgY < height*0.3:
		return TopFade
	case avgX < width*0.35:
		return SideFadeLeft
	case avgX > width*0.65:
		return SideFadeRight
	}
	return BottomFade
}
